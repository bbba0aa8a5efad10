package imap

import (
	"context"

	"github.com/emersion/go-imap"
	"github.com/vdavid/mailthread/internal/thread"
)

// ThreadService defines the interface for threading folders.
// This interface allows callers to be tested with mock implementations.
type ThreadService interface {
	// ThreadFolder parses fetched messages and threads them.
	ThreadFolder(ctx context.Context, folderName string, fetched []*imap.Message) (*FolderThreads, error)

	// ThreadMessages threads already parsed records.
	ThreadMessages(ctx context.Context, folderName string, records []thread.Record) (*FolderThreads, error)
}

// Ensure Service implements ThreadService interface
var _ ThreadService = (*Service)(nil)
