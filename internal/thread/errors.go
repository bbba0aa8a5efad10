package thread

import "errors"

// ErrInvariant is wrapped by every error reporting a broken internal
// invariant. Such errors indicate a bug in this package, never bad input.
var ErrInvariant = errors.New("thread: internal invariant violated")

// ErrUnsupportedAlgorithm is returned by NewEngine for unknown algorithms.
var ErrUnsupportedAlgorithm = errors.New("thread: unsupported threading algorithm")
