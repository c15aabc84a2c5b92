package progress_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goopey7/brig/internal/progress"
)

func TestInsertFindRemove(t *testing.T) {
	r := progress.NewRegistry()
	s := progress.NewSyncState("x", "A", "B")

	_, ok := r.FindByDataset("x")
	assert.False(t, ok)

	r.Insert(s)
	found, ok := r.FindByDataset("x")
	require.True(t, ok)
	assert.Same(t, s, found)

	r.Remove(s)
	_, ok = r.FindByDataset("x")
	assert.False(t, ok)
}

func TestMultipleDestinationsCoexist(t *testing.T) {
	r := progress.NewRegistry()
	toB := progress.NewSyncState("x", "A", "B")
	toC := progress.NewSyncState("x", "A", "C")

	r.Insert(toB)
	r.Insert(toC)
	assert.Len(t, r.Snapshot(), 2)

	r.Remove(toB)
	assert.Len(t, r.Snapshot(), 1)
}

func TestSentNeverExceedsTotalInView(t *testing.T) {
	s := progress.NewSyncState("x", "A", "B")
	s.SetTotal(100)
	s.AddSent(40)
	s.AddSent(40)

	r := progress.NewRegistry()
	r.Insert(s)
	view := r.Snapshot()[0]
	assert.LessOrEqual(t, view.SentBytes, view.TotalBytes)
	assert.EqualValues(t, 80, view.SentBytes)
}

func TestRecentThroughputAbsentUntilATransferCompletes(t *testing.T) {
	r := progress.NewRegistry()
	s := progress.NewSyncState("x", "A", "B")
	r.Insert(s)

	_, _, ok := r.RecentThroughput()
	assert.False(t, ok)
	assert.Zero(t, r.Snapshot()[0].RecentThroughputBytesPerSec)

	s.SetTotal(1024)
	s.AddSent(1024)
	r.Remove(s)

	mean, _, ok := r.RecentThroughput()
	require.True(t, ok)
	assert.Greater(t, mean, 0.0)
}
