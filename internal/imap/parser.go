package imap

import (
	"fmt"
	"io"
	"net/mail"
	"strings"

	"github.com/emersion/go-imap"
	"github.com/vdavid/mailthread/internal/models"
)

// ParseMessage converts a fetched IMAP message to our Message model. The
// References header is read from any HEADER body section present in the
// fetch response; see ThreadFetchItems.
func ParseMessage(imapMsg *imap.Message, folderName string) (*models.Message, error) {
	if imapMsg == nil {
		return nil, fmt.Errorf("imap message is nil")
	}

	msg := &models.Message{
		IMAPFolderName: folderName,
		SeqNum:         imapMsg.SeqNum,
		IMAPUID:        imapMsg.Uid,
	}

	if imapMsg.Envelope != nil {
		if len(imapMsg.Envelope.From) > 0 {
			msg.FromAddress = formatAddress(imapMsg.Envelope.From[0])
		}

		msg.Subject = imapMsg.Envelope.Subject
		if !imapMsg.Envelope.Date.IsZero() {
			msg.SentAt = &imapMsg.Envelope.Date
		}
		msg.MessageIDHeader = ParseMessageID(imapMsg.Envelope.MessageId)
		msg.InReplyTo = ParseMessageID(imapMsg.Envelope.InReplyTo)
	}

	refs, err := referencesHeader(imapMsg)
	if err != nil {
		return nil, err
	}
	msg.References = ParseReferences(refs)

	return msg, nil
}

// referencesHeader returns the raw References header from the message's
// header body sections, or "" when none was fetched.
func referencesHeader(imapMsg *imap.Message) (string, error) {
	for section, literal := range imapMsg.Body {
		if section == nil || literal == nil || section.Specifier != imap.HeaderSpecifier || len(section.Path) > 0 {
			continue
		}

		raw, err := io.ReadAll(literal)
		if err != nil {
			return "", fmt.Errorf("failed to read header section: %w", err)
		}

		// A header section has no body, so make sure the reader sees the
		// terminating blank line even when the server left it out.
		header := strings.TrimRight(string(raw), "\r\n") + "\r\n\r\n"
		parsed, err := mail.ReadMessage(strings.NewReader(header))
		if err != nil {
			return "", fmt.Errorf("failed to parse header section: %w", err)
		}
		if refs := parsed.Header.Get("References"); refs != "" {
			return refs, nil
		}
	}
	return "", nil
}

// ParseReferences extracts Message-IDs from a References header value, in
// header order. Ids are returned with their angle brackets. Bare tokens that
// look like addresses are accepted from clients that drop the brackets.
func ParseReferences(raw string) []string {
	var refs []string
	for len(raw) > 0 {
		start := strings.IndexByte(raw, '<')
		if start < 0 {
			refs = append(refs, bareIDs(raw)...)
			break
		}
		refs = append(refs, bareIDs(raw[:start])...)

		end := strings.IndexByte(raw[start:], '>')
		if end < 0 {
			break
		}
		if id := strings.TrimSpace(raw[start+1 : start+end]); id != "" {
			refs = append(refs, "<"+id+">")
		}
		raw = raw[start+end+1:]
	}
	return refs
}

func bareIDs(s string) []string {
	var ids []string
	for _, f := range strings.Fields(s) {
		f = strings.Trim(f, ",;")
		if strings.Contains(f, "@") {
			ids = append(ids, "<"+f+">")
		}
	}
	return ids
}

// ParseMessageID returns the first Message-ID in a Message-ID or In-Reply-To
// header value, or "" when there is none.
func ParseMessageID(raw string) string {
	refs := ParseReferences(raw)
	if len(refs) == 0 {
		return ""
	}
	return refs[0]
}

// formatAddress formats an IMAP address to a string.
func formatAddress(address *imap.Address) string {
	if address == nil {
		return ""
	}

	if address.MailboxName == "" && address.HostName == "" {
		return ""
	}

	if address.PersonalName != "" {
		return fmt.Sprintf("%s <%s@%s>", address.PersonalName, address.MailboxName, address.HostName)
	}

	return fmt.Sprintf("%s@%s", address.MailboxName, address.HostName)
}
