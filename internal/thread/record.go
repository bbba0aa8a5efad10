// Package thread reconstructs reply trees from flat sets of email messages.
//
// The references engine follows Jamie Zawinski's threading algorithm
// (https://www.jwz.org/doc/threading.html): messages are linked through their
// References chains, placeholder nodes stand in for ancestors that were never
// seen, and root-level trees with matching subjects are merged as a fallback.
package thread

// Record is a message that can be threaded.
//
// The threading engines only read from a Record until the tree is complete;
// after that SetNext and SetChild are called on every record in the result, so
// the caller must not share records between concurrent threading calls.
// Implementations must be comparable, usually pointers: a record passed twice
// is threaded once.
type Record interface {
	// MessageThreadID returns the Message-ID. An empty string means the
	// message is unidentified and is never matched against references.
	MessageThreadID() string

	// MessageThreadReferences returns the referenced Message-IDs ordered from
	// the oldest to the youngest ancestor. When the message has no References
	// header, the In-Reply-To id should be returned instead.
	MessageThreadReferences() []string

	// RawSubject returns the decoded subject with no simplification applied.
	RawSubject() string

	// SimplifiedSubject returns the subject used for grouping, usually the
	// result of SimplifySubject. An empty string opts out of subject grouping.
	SimplifiedSubject() string

	// SubjectIsReply reports whether a reply or forward marker was removed
	// while simplifying the subject.
	SubjectIsReply() bool

	SetNext(next Record)
	SetChild(child Record)
	Next() Record
	Child() Record

	// MakeDummy creates a placeholder record standing in for a message that is
	// not part of the input. forID is the Message-ID it replaces, when known.
	MakeDummy(forID string) Record

	// IsDummy reports whether the record is a placeholder. Placeholders in the
	// input are ignored.
	IsDummy() bool
}

// Engine threads a set of records and returns the first root of the result.
type Engine interface {
	Thread(records []Record) (Record, error)
}
