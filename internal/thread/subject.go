package thread

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// replyMarkers are the subject prefixes recognized as reply or forward
// markers, compared case-insensitively.
var replyMarkers = map[string]bool{
	"re":   true,
	"fw":   true,
	"fwd":  true,
	"aw":   true,
	"wg":   true,
	"sv":   true,
	"vs":   true,
	"antw": true,
	"odp":  true,
	"tr":   true,
	"rif":  true,
	"res":  true,
}

var folder = cases.Fold()

// SimplifySubject strips leading reply and forward markers such as "Re:",
// "Fwd:", "Re[2]:" or "AW(3):" from subject and normalizes the rest for
// comparison. isReply reports whether any marker was removed. A subject with
// nothing but markers and whitespace simplifies to "".
func SimplifySubject(subject string) (simplified string, isReply bool) {
	s := subject
	for {
		rest, ok := stripMarker(s)
		if !ok {
			break
		}
		s = rest
		isReply = true
	}

	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return "", isReply
	}
	return folder.String(norm.NFC.String(s)), isReply
}

// stripMarker removes one marker from the front of s.
func stripMarker(s string) (string, bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)

	end := strings.IndexFunc(s, func(r rune) bool { return !unicode.IsLetter(r) })
	if end <= 0 {
		return s, false
	}
	if !replyMarkers[strings.ToLower(s[:end])] {
		return s, false
	}
	rest := strings.TrimLeftFunc(s[end:], unicode.IsSpace)

	// Optional reply count: "Re[2]:" or "Re(2):".
	if len(rest) > 0 && (rest[0] == '[' || rest[0] == '(') {
		closing := byte(']')
		if rest[0] == '(' {
			closing = ')'
		}
		i := 1
		for i < len(rest) && rest[i] >= '0' && rest[i] <= '9' {
			i++
		}
		if i == 1 || i >= len(rest) || rest[i] != closing {
			return s, false
		}
		rest = strings.TrimLeftFunc(rest[i+1:], unicode.IsSpace)
	}

	if !strings.HasPrefix(rest, ":") {
		return s, false
	}
	return rest[1:], true
}

// gatherSubjects merges root-level threads whose simplified subjects match,
// so that messages without References headers still get threaded.
func (t *threading) gatherSubjects() {
	a := &t.arena
	table := make(map[string]int)

	for c := a.nodes[t.root].child; c != none; c = a.nodes[c].next {
		rep := a.subjectOf(c)
		if rep == nil {
			continue
		}
		subj := rep.SimplifiedSubject()
		if subj == "" {
			continue
		}

		// Prefer a placeholder as the head of a subject, then a message
		// without a reply marker, since that one is likely the original.
		old, ok := table[subj]
		if !ok ||
			(a.empty(c) && !a.empty(old)) ||
			(!a.empty(old) && a.isReply(old) && !a.empty(c) && !a.isReply(c)) {
			table[subj] = c
		}
	}
	if len(table) == 0 {
		return
	}

	prev := none
	for c := a.nodes[t.root].child; c != none; {
		rest := a.nodes[c].next

		old, merge := t.subjectMatch(table, c)
		if merge {
			merge = t.mergeIntoRoot(old, c)
		}
		if merge {
			// c left the root set, prev stays where it is.
			if prev == none {
				a.nodes[t.root].child = rest
			} else {
				a.nodes[prev].next = rest
			}
		} else {
			prev = c
		}
		c = rest
	}
}

// subjectMatch returns the table entry c should be merged into, if any.
func (t *threading) subjectMatch(table map[string]int, c int) (int, bool) {
	rep := t.arena.subjectOf(c)
	if rep == nil {
		return none, false
	}
	subj := rep.SimplifiedSubject()
	if subj == "" {
		// Subjectless messages are never grouped together.
		return none, false
	}
	old, ok := table[subj]
	if !ok || old == c {
		return none, false
	}
	return old, true
}

// mergeIntoRoot merges the root-level container c into old. c must still be
// linked into the root set; the caller unlinks it when true is returned.
func (t *threading) mergeIntoRoot(old, c int) bool {
	a := &t.arena

	switch {
	case a.empty(old) && a.empty(c):
		// Two placeholders: old adopts c's children, c goes away.
		kids := a.nodes[c].child
		a.nodes[c].child = none
		a.nodes[c].next = none
		a.appendChildren(old, kids)

	case a.empty(old) || (a.isReply(c) && !a.isReply(old)):
		a.nodes[c].next = none
		a.appendChildren(old, c)

	case !a.isReply(c) && !a.isReply(old):
		// Same subject and neither is marked as a reply. Without the
		// marker this is only a guess, so it is opt-in.
		if t.opts.InsistOnRe {
			return false
		}
		a.nodes[c].next = none
		a.appendChildren(old, c)

	default:
		// Both look like replies: make them siblings below a new
		// placeholder. old itself becomes the placeholder so the table
		// keeps pointing at the root level.
		moved := a.alloc(a.nodes[old].forID, a.nodes[old].record)
		kids := a.nodes[old].child
		a.nodes[old].record = nil
		a.nodes[old].forID = ""
		a.nodes[old].child = none
		a.appendChildren(moved, kids)

		a.nodes[c].next = none
		a.appendChildren(old, moved)
		a.appendChildren(old, c)
	}
	return true
}
