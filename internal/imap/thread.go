package imap

import (
	"strconv"

	sortthread "github.com/emersion/go-imap-sortthread"
	"github.com/vdavid/mailthread/internal/models"
	"github.com/vdavid/mailthread/internal/thread"
)

// messageNumber returns the UID or sequence number of a record, or 0 for
// placeholders and records that are not messages. A message whose UID is
// unknown falls back to its sequence number, as Message.Token does.
func messageNumber(r thread.Record, useUID bool) uint32 {
	m, ok := r.(*models.Message)
	if !ok || r.IsDummy() {
		return 0
	}
	if useUID && m.IMAPUID != 0 {
		return m.IMAPUID
	}
	return m.SeqNum
}

// ToSortThreads converts a threaded result to the tree type used by the
// sortthread THREAD extension. Placeholders get Id 0.
func ToSortThreads(root thread.Record, useUID bool) []*sortthread.Thread {
	type frame struct {
		first  thread.Record
		parent *sortthread.Thread
	}

	var roots []*sortthread.Thread
	stack := []frame{{first: root}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for r := f.first; r != nil; r = r.Next() {
			node := &sortthread.Thread{Id: messageNumber(r, useUID)}
			if f.parent == nil {
				roots = append(roots, node)
			} else {
				f.parent.Children = append(f.parent.Children, node)
			}
			if r.Child() != nil {
				stack = append(stack, frame{first: r.Child(), parent: node})
			}
		}
	}
	return roots
}

// MapThreadToRoot maps every message number in threads to the number of its
// thread root. A placeholder root is represented by its first numbered
// descendant.
func MapThreadToRoot(threads []*sortthread.Thread) map[uint32]uint32 {
	roots := make(map[uint32]uint32)
	for _, t := range threads {
		if t == nil {
			continue
		}

		var members []uint32
		rootID := uint32(0)
		stack := []*sortthread.Thread{t}
		for len(stack) > 0 {
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if n == nil {
				continue
			}
			if n.Id != 0 {
				if rootID == 0 {
					rootID = n.Id
				}
				members = append(members, n.Id)
			}
			for i := len(n.Children) - 1; i >= 0; i-- {
				stack = append(stack, n.Children[i])
			}
		}

		for _, id := range members {
			roots[id] = rootID
		}
	}
	return roots
}

// FormatThreadResponse renders a threaded result as the body of an IMAP
// THREAD response, e.g. "(1 2)(3(4)(5))". When allow is non-empty only those
// message numbers are listed, with the tree shape kept around them.
func FormatThreadResponse(root thread.Record, useUID bool, allow []uint32) string {
	var allowed func(thread.Record) bool
	if len(allow) > 0 {
		set := make(map[uint32]bool, len(allow))
		for _, n := range allow {
			set[n] = true
		}
		allowed = func(r thread.Record) bool {
			return set[messageNumber(r, useUID)]
		}
	}

	token := func(r thread.Record) string {
		n := messageNumber(r, useUID)
		if n == 0 {
			return ""
		}
		return strconv.FormatUint(uint64(n), 10)
	}
	return thread.Format(root, token, allowed)
}

// StableThreadID returns the Message-ID identifying the thread rooted at r.
// For a placeholder root that is the id it stands in for, falling back to the
// first real message below it.
func StableThreadID(r thread.Record) string {
	if r == nil {
		return ""
	}
	if !r.IsDummy() || r.MessageThreadID() != "" {
		return r.MessageThreadID()
	}
	for d := range thread.All(r.Child()) {
		if !d.IsDummy() {
			return d.MessageThreadID()
		}
	}
	return ""
}

// Summarize lists the root-level threads of a threaded result.
func Summarize(root thread.Record) []models.Thread {
	var threads []models.Thread
	for r := range thread.Roots(root) {
		t := models.Thread{
			StableThreadID: StableThreadID(r),
			Subject:        r.RawSubject(),
		}
		if m, ok := r.(*models.Message); ok {
			t.Messages = append(t.Messages, m)
		}
		for d := range thread.All(r.Child()) {
			if m, ok := d.(*models.Message); ok {
				t.Messages = append(t.Messages, m)
			}
		}
		t.MessageCount = len(t.Messages)
		threads = append(threads, t)
	}
	return threads
}
