package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessageThreadReferences(t *testing.T) {
	tests := []struct {
		name     string
		msg      Message
		expected []string
	}{
		{
			name:     "no references",
			msg:      Message{MessageIDHeader: "<a@x>"},
			expected: []string{},
		},
		{
			name:     "references in order",
			msg:      Message{MessageIDHeader: "<c@x>", References: []string{"<a@x>", "<b@x>"}},
			expected: []string{"<a@x>", "<b@x>"},
		},
		{
			name:     "in-reply-to used without references",
			msg:      Message{MessageIDHeader: "<b@x>", InReplyTo: " <a@x> "},
			expected: []string{"<a@x>"},
		},
		{
			name:     "references win over in-reply-to",
			msg:      Message{MessageIDHeader: "<c@x>", InReplyTo: "<z@x>", References: []string{"<a@x>"}},
			expected: []string{"<a@x>"},
		},
		{
			name: "drops empty, repeated and own ids",
			msg: Message{
				MessageIDHeader: "<c@x>",
				References:      []string{"<c@x>", "", "<a@x>", "<b@x>", "<a@x>"},
			},
			expected: []string{"<a@x>", "<b@x>"},
		},
		{
			name: "drops the sender's address",
			msg: Message{
				MessageIDHeader: "<c@x>",
				FromAddress:     "Jane Doe <jane@example.com>",
				References:      []string{"<jane@example.com>", "<a@x>"},
			},
			expected: []string{"<a@x>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.msg.MessageThreadReferences())
		})
	}
}

func TestMessageSubject(t *testing.T) {
	m := &Message{Subject: "Re: Quarterly numbers"}
	assert.Equal(t, "quarterly numbers", m.SimplifiedSubject())
	assert.True(t, m.SubjectIsReply())
	assert.Equal(t, "Re: Quarterly numbers", m.RawSubject())

	// Memoized on first use.
	m.Subject = "Something else"
	assert.Equal(t, "quarterly numbers", m.SimplifiedSubject())
}

func TestMessageToken(t *testing.T) {
	m := &Message{IMAPFolderName: "INBOX", SeqNum: 7, IMAPUID: 1042}
	assert.Equal(t, "INBOX:7", m.Token(false))
	assert.Equal(t, "1042", m.Token(true))

	m.IMAPUID = 0
	assert.Equal(t, "INBOX:7", m.Token(true))

	m.IMAPFolderName = ""
	assert.Equal(t, "7", m.Token(false))
}

func TestPlaceholder(t *testing.T) {
	m := &Message{MessageIDHeader: "<a@x>", Subject: "Hello"}
	dummy := m.MakeDummy("<ghost@x>")

	assert.True(t, dummy.IsDummy())
	assert.False(t, m.IsDummy())
	assert.Equal(t, "<ghost@x>", dummy.MessageThreadID())
	assert.Empty(t, dummy.MessageThreadReferences())
	assert.Equal(t, "", dummy.SimplifiedSubject())
	assert.Equal(t, "", dummy.RawSubject())

	dummy.SetChild(m)
	assert.Equal(t, "Hello", dummy.RawSubject())
	assert.Same(t, m, dummy.Child())
}

func TestSenderAddress(t *testing.T) {
	tests := map[string]string{
		"Jane Doe <jane@example.com>": "jane@example.com",
		"jane@example.com":            "jane@example.com",
		"  <a@b>  ":                   "a@b",
		"Jane Doe":                    "",
		"":                            "",
	}
	for in, expected := range tests {
		assert.Equal(t, expected, senderAddress(in), "senderAddress(%q)", in)
	}
}
