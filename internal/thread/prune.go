package thread

// pruneEmptyContainers discards placeholders that carry no information.
// Afterwards placeholders only remain at the root level, each with at least
// two children.
func (t *threading) pruneEmptyContainers() {
	lists := []int{t.root}
	for len(lists) > 0 {
		owner := lists[len(lists)-1]
		lists = lists[:len(lists)-1]
		lists = t.pruneList(owner, lists)
	}

	// Pruning below a root-level placeholder can leave it with fewer than two
	// children. Its remaining children are all messages by now, so a second
	// pass over the root set settles it.
	t.pruneList(t.root, nil)
}

// pruneList prunes the child list of owner and appends to pending every
// message container whose own children still need pruning.
func (t *threading) pruneList(owner int, pending []int) []int {
	a := &t.arena
	atRoot := owner == t.root

	// link points prev (or owner, when prev is none) at n.
	link := func(prev, n int) {
		if prev == none {
			a.nodes[owner].child = n
		} else {
			a.nodes[prev].next = n
		}
	}

	prev := none
	cur := a.nodes[owner].child
	for cur != none {
		n := a.nodes[cur]
		switch {
		case n.record == nil && n.child == none:
			// A placeholder with no children. These come from References
			// lines that disagree, e.g. A refs "1 2 3" and B refs "1 3"
			// leaves 2 childless when 3 ends up below 1.
			link(prev, n.next)
			a.nodes[cur].next = none
			cur = n.next

		case n.record == nil && (!atRoot || a.nodes[n.child].next == none):
			// A placeholder with children: promote them to this level. At
			// the root level only a single child is promoted, so that
			// placeholders keep binding unrelated threads together.
			kids := n.child
			tail := kids
			for {
				a.nodes[tail].parent = n.parent
				if a.nodes[tail].next == none {
					break
				}
				tail = a.nodes[tail].next
			}
			a.nodes[tail].next = n.next
			link(prev, kids)

			a.nodes[cur].child = none
			a.nodes[cur].next = none

			// The promoted children are examined next, they may be
			// placeholders themselves.
			cur = kids

		default:
			if n.child != none {
				pending = append(pending, cur)
			}
			prev = cur
			cur = n.next
		}
	}
	return pending
}
