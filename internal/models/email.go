package models

import (
	"strconv"
	"strings"
	"time"

	"github.com/vdavid/mailthread/internal/thread"
)

// Thread summarizes one root-level thread of a threading result.
type Thread struct {
	StableThreadID string     `json:"stable_thread_id"`
	Subject        string     `json:"subject"`
	MessageCount   int        `json:"message_count"`
	Messages       []*Message `json:"messages,omitempty"`
}

// Message is a message record as delivered by the fetch layer, with headers
// already decoded. It implements thread.Record.
type Message struct {
	MessageIDHeader string     `json:"message_id_header"`
	InReplyTo       string     `json:"in_reply_to,omitempty"`
	References      []string   `json:"references,omitempty"`
	FromAddress     string     `json:"from_address,omitempty"`
	SentAt          *time.Time `json:"sent_at,omitempty"`
	Subject         string     `json:"subject"`
	IMAPFolderName  string     `json:"imap_folder_name"`
	SeqNum          uint32     `json:"seq_num"`
	// IMAPUID is zero when the UID is unknown.
	IMAPUID uint32 `json:"imap_uid,omitempty"`

	next  thread.Record
	child thread.Record

	subjectParsed bool
	simplified    string
	isReply       bool
}

// Token returns the compact identifier used in thread listings: the UID when
// useUID is set and known, folder:seq otherwise.
func (m *Message) Token(useUID bool) string {
	if useUID && m.IMAPUID != 0 {
		return strconv.FormatUint(uint64(m.IMAPUID), 10)
	}
	if m.IMAPFolderName == "" {
		return strconv.FormatUint(uint64(m.SeqNum), 10)
	}
	return m.IMAPFolderName + ":" + strconv.FormatUint(uint64(m.SeqNum), 10)
}

func (m *Message) MessageThreadID() string {
	return strings.TrimSpace(m.MessageIDHeader)
}

// MessageThreadReferences returns the References ids, falling back to
// In-Reply-To. Empty ids, repeats, the message's own id and ids that are
// really the sender's address are dropped.
func (m *Message) MessageThreadReferences() []string {
	raw := m.References
	if len(raw) == 0 && strings.TrimSpace(m.InReplyTo) != "" {
		raw = []string{m.InReplyTo}
	}

	self := m.MessageThreadID()
	sender := ""
	if addr := senderAddress(m.FromAddress); addr != "" {
		sender = "<" + addr + ">"
	}

	refs := make([]string, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for _, r := range raw {
		r = strings.TrimSpace(r)
		if r == "" || r == self || seen[r] || (sender != "" && strings.EqualFold(r, sender)) {
			continue
		}
		seen[r] = true
		refs = append(refs, r)
	}
	return refs
}

func (m *Message) RawSubject() string {
	return m.Subject
}

func (m *Message) SimplifiedSubject() string {
	m.parseSubject()
	return m.simplified
}

func (m *Message) SubjectIsReply() bool {
	m.parseSubject()
	return m.isReply
}

func (m *Message) parseSubject() {
	if m.subjectParsed {
		return
	}
	m.simplified, m.isReply = thread.SimplifySubject(m.Subject)
	m.subjectParsed = true
}

func (m *Message) SetNext(next thread.Record) {
	m.next = next
}

func (m *Message) SetChild(child thread.Record) {
	m.child = child
}

func (m *Message) Next() thread.Record {
	return m.next
}

func (m *Message) Child() thread.Record {
	return m.child
}

func (m *Message) MakeDummy(forID string) thread.Record {
	return &Placeholder{ForID: forID}
}

func (m *Message) IsDummy() bool {
	return false
}

// Placeholder stands in for a message that is referenced but not present,
// binding several root-level threads together.
type Placeholder struct {
	ForID string

	next  thread.Record
	child thread.Record
}

func (p *Placeholder) MessageThreadID() string           { return p.ForID }
func (p *Placeholder) MessageThreadReferences() []string { return []string{} }
func (p *Placeholder) SimplifiedSubject() string         { return "" }
func (p *Placeholder) SubjectIsReply() bool              { return false }
func (p *Placeholder) SetNext(next thread.Record)        { p.next = next }
func (p *Placeholder) SetChild(child thread.Record)      { p.child = child }
func (p *Placeholder) Next() thread.Record               { return p.next }
func (p *Placeholder) Child() thread.Record              { return p.child }
func (p *Placeholder) IsDummy() bool                     { return true }

// RawSubject returns the subject of the first child, if any.
func (p *Placeholder) RawSubject() string {
	if p.child == nil {
		return ""
	}
	return p.child.RawSubject()
}

func (p *Placeholder) MakeDummy(forID string) thread.Record {
	return &Placeholder{ForID: forID}
}

// senderAddress extracts the bare address from "Name <addr>" or "addr".
func senderAddress(from string) string {
	from = strings.TrimSpace(from)
	if i := strings.LastIndexByte(from, '<'); i >= 0 {
		if j := strings.IndexByte(from[i:], '>'); j > 0 {
			return from[i+1 : i+j]
		}
	}
	if strings.Contains(from, "@") && !strings.ContainsAny(from, " <>") {
		return from
	}
	return ""
}
