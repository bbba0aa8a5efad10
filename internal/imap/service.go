package imap

import (
	"context"
	"fmt"
	"log"

	"github.com/emersion/go-imap"
	"github.com/vdavid/mailthread/internal/models"
	"github.com/vdavid/mailthread/internal/thread"
)

// FolderThreads is the threaded view of one folder's messages.
type FolderThreads struct {
	FolderName string
	Root       thread.Record
	Threads    []models.Thread
	// RootOf maps each message number to the number of its thread root.
	RootOf map[uint32]uint32
	// Response is the THREAD response body for the folder.
	Response string
}

// Service threads fetched IMAP messages.
type Service struct {
	engine thread.Engine
	useUID bool
}

// NewService creates a new threading service. useUID selects UIDs rather than
// sequence numbers as message numbers in results.
func NewService(engine thread.Engine, useUID bool) *Service {
	return &Service{
		engine: engine,
		useUID: useUID,
	}
}

// ThreadFolder parses the fetched messages of a folder and threads them.
// Messages that cannot be parsed are logged and skipped.
func (s *Service) ThreadFolder(ctx context.Context, folderName string, fetched []*imap.Message) (*FolderThreads, error) {
	records := make([]thread.Record, 0, len(fetched))
	for _, imapMsg := range fetched {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if imapMsg == nil {
			continue
		}

		msg, err := ParseMessage(imapMsg, folderName)
		if err != nil {
			log.Printf("Warning: Failed to parse message UID %d: %v", imapMsg.Uid, err)
			continue
		}
		records = append(records, msg)
	}

	return s.ThreadMessages(ctx, folderName, records)
}

// ThreadMessages threads already parsed records of a folder.
func (s *Service) ThreadMessages(ctx context.Context, folderName string, records []thread.Record) (*FolderThreads, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if len(records) == 0 {
		log.Printf("No messages found in folder %s", folderName)
		return &FolderThreads{FolderName: folderName, RootOf: map[uint32]uint32{}}, nil
	}

	root, err := s.engine.Thread(records)
	if err != nil {
		return nil, fmt.Errorf("failed to thread folder %s: %w", folderName, err)
	}

	result := &FolderThreads{
		FolderName: folderName,
		Root:       root,
		Threads:    Summarize(root),
		RootOf:     MapThreadToRoot(ToSortThreads(root, s.useUID)),
		Response:   FormatThreadResponse(root, s.useUID, nil),
	}

	log.Printf("Found %d threads in folder %s", len(result.Threads), folderName)

	return result, nil
}
