package thread

import "iter"

// All returns a pre-order walk over a threaded result: each record is
// followed by its children's subtrees, then by its next sibling. The walk can
// be restarted and only reads the tree as it goes.
func All(root Record) iter.Seq[Record] {
	return func(yield func(Record) bool) {
		stack := []Record{root}
		for len(stack) > 0 {
			r := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if r == nil {
				continue
			}
			if !yield(r) {
				return
			}
			// Push the sibling first so the child subtree is visited before it.
			stack = append(stack, r.Next(), r.Child())
		}
	}
}

// Count returns the number of non-placeholder records in a threaded result.
func Count(root Record) int {
	n := 0
	for r := range All(root) {
		if !r.IsDummy() {
			n++
		}
	}
	return n
}

// Roots returns the root records of a threaded result in order.
func Roots(root Record) iter.Seq[Record] {
	return func(yield func(Record) bool) {
		for r := root; r != nil; r = r.Next() {
			if !yield(r) {
				return
			}
		}
	}
}

// Children returns the direct children of r in order.
func Children(r Record) iter.Seq[Record] {
	if r == nil {
		return Roots(nil)
	}
	return Roots(r.Child())
}
