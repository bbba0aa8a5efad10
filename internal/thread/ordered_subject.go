package thread

import (
	"fmt"

	sortthread "github.com/emersion/go-imap-sortthread"
)

// NewEngine returns the threading engine implementing alg.
func NewEngine(alg sortthread.ThreadAlgorithm, opts Options) (Engine, error) {
	switch alg {
	case sortthread.References:
		return NewThreader(opts), nil
	case sortthread.OrderedSubject:
		return NewSubjectThreader(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, alg)
	}
}

// SubjectThreader implements the ORDEREDSUBJECT algorithm of RFC 5256:
// messages are grouped by base subject, the first message of a group becomes
// the parent and every later one its child. References are ignored.
//
// Records are expected in date order; the input order is kept.
type SubjectThreader struct{}

// NewSubjectThreader returns an ORDEREDSUBJECT engine.
func NewSubjectThreader() *SubjectThreader {
	return &SubjectThreader{}
}

// Thread threads records by base subject and returns the first root.
func (*SubjectThreader) Thread(records []Record) (Record, error) {
	var roots []Record
	heads := make(map[string]int)
	kids := make(map[int][]Record)

	seen := make(map[Record]bool)
	for _, r := range records {
		if r == nil || r.IsDummy() || seen[r] {
			continue
		}
		seen[r] = true
		base, _ := sortthread.GetBaseSubject(r.RawSubject())
		if base == "" {
			roots = append(roots, r)
			continue
		}
		if i, ok := heads[base]; ok {
			kids[i] = append(kids[i], r)
			continue
		}
		heads[base] = len(roots)
		roots = append(roots, r)
	}

	for i, r := range roots {
		children := kids[i]
		r.SetChild(nil)
		if len(children) > 0 {
			r.SetChild(children[0])
		}
		for j, c := range children {
			c.SetChild(nil)
			c.SetNext(nil)
			if j+1 < len(children) {
				c.SetNext(children[j+1])
			}
		}
		r.SetNext(nil)
		if i+1 < len(roots) {
			r.SetNext(roots[i+1])
		}
	}

	if len(roots) == 0 {
		return nil, nil
	}
	return roots[0], nil
}
