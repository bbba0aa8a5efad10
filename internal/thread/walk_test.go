package thread_test

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vdavid/mailthread/internal/testutil"
	"github.com/vdavid/mailthread/internal/thread"
)

func TestAll(t *testing.T) {
	root, err := thread.NewThreader(thread.DefaultOptions()).Thread(testutil.Records(
		testutil.NewMessage("a", "One"),
		testutil.NewMessage("b", "", "a"),
		testutil.NewMessage("c", "", "a"),
		testutil.NewMessage("d", "", "a", "c"),
		testutil.NewMessage("e", "Two"),
	))
	require.NoError(t, err)

	walk := thread.All(root)
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, ids(root))

	// The sequence can be restarted and stopped early.
	var firstTwo []string
	for r := range walk {
		firstTwo = append(firstTwo, r.MessageThreadID())
		if len(firstTwo) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"a", "b"}, firstTwo)
	assert.Len(t, slices.Collect(walk), 5)
}

func TestRootsAndChildren(t *testing.T) {
	root, err := thread.NewThreader(thread.DefaultOptions()).Thread(testutil.Records(
		testutil.NewMessage("a", "One"),
		testutil.NewMessage("b", "", "a"),
		testutil.NewMessage("c", "", "a"),
		testutil.NewMessage("e", "Two"),
	))
	require.NoError(t, err)

	var roots []string
	for r := range thread.Roots(root) {
		roots = append(roots, r.MessageThreadID())
	}
	assert.Equal(t, []string{"a", "e"}, roots)

	var kids []string
	for r := range thread.Children(root) {
		kids = append(kids, r.MessageThreadID())
	}
	assert.Equal(t, []string{"b", "c"}, kids)

	assert.Empty(t, slices.Collect(thread.Children(nil)))
}

func TestCount_SkipsPlaceholders(t *testing.T) {
	root, err := thread.NewThreader(thread.DefaultOptions()).Thread(testutil.Records(
		testutil.NewMessage("p", "", "ghost"),
		testutil.NewMessage("q", "", "ghost"),
	))
	require.NoError(t, err)

	assert.Len(t, slices.Collect(thread.All(root)), 3)
	assert.Equal(t, 2, thread.Count(root))
	assert.Equal(t, 0, thread.Count(nil))
}
