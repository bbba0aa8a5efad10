package thread

// none marks an absent link between containers.
const none = -1

// container wraps zero or one record. A container without a record is a
// placeholder for a message that was referenced but never seen.
type container struct {
	record Record
	forID  string
	parent int
	child  int
	next   int
}

// arena owns every container of a single threading call. Containers refer to
// each other by index; allocation order doubles as the deterministic
// iteration order of the id index.
type arena struct {
	nodes []container
}

func (a *arena) alloc(forID string, r Record) int {
	a.nodes = append(a.nodes, container{
		record: r,
		forID:  forID,
		parent: none,
		child:  none,
		next:   none,
	})
	return len(a.nodes) - 1
}

func (a *arena) empty(i int) bool {
	return a.nodes[i].record == nil
}

// isReply reports whether i holds a message whose subject carried a reply marker.
func (a *arena) isReply(i int) bool {
	r := a.nodes[i].record
	return r != nil && r.SubjectIsReply()
}

// contains reports whether target is a strict descendant of root.
func (a *arena) contains(root, target int) bool {
	first := a.nodes[root].child
	if first == none {
		return false
	}
	stack := []int{first}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == target {
			return true
		}
		if c := a.nodes[n].child; c != none {
			stack = append(stack, c)
		}
		if s := a.nodes[n].next; s != none {
			stack = append(stack, s)
		}
	}
	return false
}

// prependChild makes c the first child of p.
func (a *arena) prependChild(p, c int) {
	a.nodes[c].parent = p
	a.nodes[c].next = a.nodes[p].child
	a.nodes[p].child = c
}

// appendChildren moves the sibling chain starting at kids to the end of p's
// child list.
func (a *arena) appendChildren(p, kids int) {
	if kids == none {
		return
	}
	for k := kids; k != none; k = a.nodes[k].next {
		a.nodes[k].parent = p
	}
	tail := a.nodes[p].child
	if tail == none {
		a.nodes[p].child = kids
		return
	}
	for a.nodes[tail].next != none {
		tail = a.nodes[tail].next
	}
	a.nodes[tail].next = kids
}

// unlink removes c from its parent's child list. It returns false if c is not
// found there.
func (a *arena) unlink(c int) bool {
	p := a.nodes[c].parent
	prev := none
	rest := a.nodes[p].child
	for rest != none && rest != c {
		prev = rest
		rest = a.nodes[rest].next
	}
	if rest == none {
		return false
	}
	if prev == none {
		a.nodes[p].child = a.nodes[c].next
	} else {
		a.nodes[prev].next = a.nodes[c].next
	}
	a.nodes[c].next = none
	a.nodes[c].parent = none
	return true
}

// reverseChildren reverses every child list in the subtree below root.
func (a *arena) reverseChildren(root int) {
	stack := []int{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		prev := none
		for kid := a.nodes[n].child; kid != none; {
			rest := a.nodes[kid].next
			a.nodes[kid].next = prev
			prev = kid
			kid = rest
		}
		a.nodes[n].child = prev

		for kid := prev; kid != none; kid = a.nodes[kid].next {
			if a.nodes[kid].child != none {
				stack = append(stack, kid)
			}
		}
	}
}

// subjectOf returns the record that represents i when grouping by subject.
// Root-level placeholders are represented by their first child.
func (a *arena) subjectOf(i int) Record {
	for i != none {
		if r := a.nodes[i].record; r != nil {
			return r
		}
		i = a.nodes[i].child
	}
	return nil
}
