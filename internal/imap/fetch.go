package imap

import (
	"github.com/emersion/go-imap"
)

// ReferencesSection is the header section requested for threading. Peek keeps
// the fetch from setting \Seen.
func ReferencesSection() *imap.BodySectionName {
	return &imap.BodySectionName{
		BodyPartName: imap.BodyPartName{
			Specifier: imap.HeaderSpecifier,
			Fields:    []string{"REFERENCES"},
		},
		Peek: true,
	}
}

// ThreadFetchItems returns the FETCH items ParseMessage needs to build a
// threadable message.
func ThreadFetchItems() []imap.FetchItem {
	return []imap.FetchItem{
		imap.FetchEnvelope,
		imap.FetchUid,
		imap.FetchFlags,
		ReferencesSection().FetchItem(),
	}
}
