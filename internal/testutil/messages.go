package testutil

import (
	"strings"

	"github.com/vdavid/mailthread/internal/models"
	"github.com/vdavid/mailthread/internal/thread"
)

// NewMessage returns a message in INBOX with the given id, subject and
// references. The sequence number is assigned by Records.
func NewMessage(id, subject string, refs ...string) *models.Message {
	return &models.Message{
		MessageIDHeader: id,
		Subject:         subject,
		References:      refs,
		IMAPFolderName:  "INBOX",
	}
}

// Records numbers messages 1..n in order and returns them as thread records.
func Records(msgs ...*models.Message) []thread.Record {
	records := make([]thread.Record, 0, len(msgs))
	for i, m := range msgs {
		m.SeqNum = uint32(i + 1)
		records = append(records, m)
	}
	return records
}

// Shape renders a threaded result compactly for assertions: each record by
// its Message-ID (placeholders as "*"), children in brackets, siblings
// separated by spaces. For example "a[b[c]] d *[x y]".
func Shape(root thread.Record) string {
	var sb strings.Builder
	writeShape(&sb, root)
	return sb.String()
}

func writeShape(sb *strings.Builder, r thread.Record) {
	first := true
	for ; r != nil; r = r.Next() {
		if !first {
			sb.WriteByte(' ')
		}
		first = false
		if r.IsDummy() {
			sb.WriteByte('*')
		} else {
			sb.WriteString(r.MessageThreadID())
		}
		if r.Child() != nil {
			sb.WriteByte('[')
			writeShape(sb, r.Child())
			sb.WriteByte(']')
		}
	}
}
