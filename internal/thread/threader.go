package thread

import (
	"fmt"
	"iter"
	"slices"

	"github.com/google/uuid"
)

// Options controls the references threader.
type Options struct {
	// InsistOnRe keeps root-level messages with the same simplified subject
	// apart unless one of them carries a reply marker. When false, a later
	// message without a marker is attached below the earlier one.
	InsistOnRe bool
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{InsistOnRe: true}
}

// Threader arranges messages into reply trees using their References chains,
// falling back to subjects for messages without usable references.
//
// A Threader keeps no state between calls.
type Threader struct {
	opts Options
}

// NewThreader returns a references threader configured with opts.
func NewThreader(opts Options) *Threader {
	return &Threader{opts: opts}
}

// Thread threads records and returns the first record of the root set, or nil
// when there is nothing to thread. The result tree is written into the
// records through SetChild and SetNext.
func (t *Threader) Thread(records []Record) (Record, error) {
	return t.ThreadSeq(slices.Values(records))
}

// ThreadSeq is like Thread but consumes any sequence of records.
func (t *Threader) ThreadSeq(records iter.Seq[Record]) (Record, error) {
	run := &threading{
		opts:  t.opts,
		index: make(map[string]int),
	}

	seen := make(map[Record]bool)
	for r := range records {
		if r == nil || r.IsDummy() || seen[r] {
			continue
		}
		seen[r] = true
		if err := run.add(r); err != nil {
			return nil, err
		}
	}
	if len(run.arena.nodes) == 0 {
		return nil, nil
	}

	if err := run.collectRootSet(); err != nil {
		return nil, err
	}
	run.arena.reverseChildren(run.root)
	run.pruneEmptyContainers()
	run.gatherSubjects()

	return run.flush()
}

// threading holds the state of one Thread call.
type threading struct {
	opts  Options
	arena arena
	index map[string]int
	root  int
}

// add wraps r in a container, indexes it under its Message-ID and links the
// containers of its references together.
func (t *threading) add(r Record) error {
	a := &t.arena
	id := r.MessageThreadID()

	c, present := t.index[id]
	switch {
	case id == "" || (present && !a.empty(c)):
		// Unidentified, or a second message with the same id. Give it an id of
		// its own so that neither message is lost.
		bogus := "<bogus-id:" + uuid.NewString() + ">"
		c = a.alloc(id, r)
		t.index[bogus] = c
	case present:
		a.nodes[c].record = r
	default:
		c = a.alloc(id, r)
		t.index[id] = c
	}

	// With references A B C D, make D a child of C, C of B and so on, unless
	// they already have parents or the link would close a loop.
	parentRef := none
	for _, refID := range r.MessageThreadReferences() {
		if refID == "" {
			continue
		}
		ref, ok := t.index[refID]
		if !ok {
			ref = a.alloc(refID, nil)
			t.index[refID] = ref
		}

		if parentRef != none &&
			a.nodes[ref].parent == none &&
			parentRef != ref &&
			!a.contains(ref, parentRef) {
			a.prependChild(parentRef, ref)
		}
		parentRef = ref
	}

	// The last reference is the parent, unless that introduces a loop.
	if parentRef != none && (parentRef == c || a.contains(c, parentRef)) {
		parentRef = none
	}

	// A parent set before the message itself was seen was only inferred from
	// someone else's references. The message's own references win.
	if a.nodes[c].parent != none {
		if !a.unlink(c) {
			return fmt.Errorf("%w: container %q missing from its parent's children", ErrInvariant, a.nodes[c].forID)
		}
	}

	if parentRef != none {
		a.prependChild(parentRef, c)
	}
	return nil
}

// collectRootSet puts every parentless container under a synthetic root and
// drops the id index.
func (t *threading) collectRootSet() error {
	a := &t.arena
	count := len(a.nodes)
	t.root = a.alloc("", nil)

	for i := 0; i < count; i++ {
		if a.nodes[i].parent != none {
			continue
		}
		if a.nodes[i].next != none {
			return fmt.Errorf("%w: root container %q already has a sibling", ErrInvariant, a.nodes[i].forID)
		}
		a.nodes[i].next = a.nodes[t.root].child
		a.nodes[t.root].child = i
	}

	t.index = nil
	return nil
}

// flush hands the finished tree over to the records and returns the first
// root record.
func (t *threading) flush() (Record, error) {
	a := &t.arena
	root := a.nodes[t.root]
	if root.next != none {
		return nil, fmt.Errorf("%w: synthetic root has a sibling", ErrInvariant)
	}
	if root.child == none {
		return nil, nil
	}

	// Placeholders left in the root set bind several threads together; the
	// caller needs a record for them.
	var reachable []int
	stack := []int{root.child}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for ; n != none; n = a.nodes[n].next {
			if a.nodes[n].record == nil {
				rep := a.subjectOf(n)
				if rep == nil {
					return nil, fmt.Errorf("%w: placeholder %q has no messages below it", ErrInvariant, a.nodes[n].forID)
				}
				a.nodes[n].record = rep.MakeDummy(a.nodes[n].forID)
			}
			reachable = append(reachable, n)
			if c := a.nodes[n].child; c != none {
				stack = append(stack, c)
			}
		}
	}

	for _, n := range reachable {
		r := a.nodes[n].record
		r.SetChild(t.recordAt(a.nodes[n].child))
		r.SetNext(t.recordAt(a.nodes[n].next))
	}

	return a.nodes[root.child].record, nil
}

func (t *threading) recordAt(i int) Record {
	if i == none {
		return nil
	}
	return t.arena.nodes[i].record
}
