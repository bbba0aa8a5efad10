package thread

import "strings"

// Format renders a threaded result in the nested parenthesized notation of
// IMAP THREAD responses, e.g. "(1)(2 3)(4(5)(6))": every root thread is
// enclosed in parentheses, a message with one child continues the chain after
// a space, and a message with several children encloses each child's subtree
// in its own parentheses.
//
// token supplies the text for a record. Placeholders, and records rejected by
// allow when it is non-nil, contribute no text; their children are rendered
// in their place without an extra pair of parentheses.
func Format(root Record, token func(Record) string, allow func(Record) bool) string {
	f := formatter{token: token, allow: allow}
	var sb strings.Builder
	for r := range Roots(root) {
		if s := f.subtree(r); s != "" {
			sb.WriteByte('(')
			sb.WriteString(s)
			sb.WriteByte(')')
		}
	}
	return sb.String()
}

type formatter struct {
	token func(Record) string
	allow func(Record) bool
}

func (f formatter) own(r Record) string {
	if r.IsDummy() || (f.allow != nil && !f.allow(r)) {
		return ""
	}
	return f.token(r)
}

// subtree renders r and its descendants without enclosing parentheses.
// Single-child chains are followed iteratively.
func (f formatter) subtree(r Record) string {
	var sb strings.Builder
	for r != nil {
		if tok := f.own(r); tok != "" {
			if sb.Len() > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(tok)
		}

		kid := r.Child()
		if kid == nil {
			break
		}
		if kid.Next() == nil {
			r = kid
			continue
		}

		var parts []string
		for c := range Roots(kid) {
			if s := f.subtree(c); s != "" {
				parts = append(parts, s)
			}
		}
		switch {
		case len(parts) == 1:
			// A lone part continues the chain; nested parts attach directly,
			// as they do after a token with several children.
			if sb.Len() > 0 && !strings.HasPrefix(parts[0], "(") {
				sb.WriteByte(' ')
			}
			sb.WriteString(parts[0])
		default:
			for _, p := range parts {
				sb.WriteByte('(')
				sb.WriteString(p)
				sb.WriteByte(')')
			}
		}
		break
	}
	return sb.String()
}
