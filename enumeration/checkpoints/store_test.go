package checkpoints

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestStoreSaveLoadAcrossReopen verifies that checkpoints saved to a store are available both before and after the
// store is flushed, closed and reopened.
func TestStoreSaveLoadAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkpoints.db")
	labels := []string{"a", "b", "c"}

	store, err := OpenStore(path)
	require.NoError(t, err)

	// Save two checkpoints for the same run. Only the latest one should be visible.
	runID := NewRunID()
	first := NewEnvelope(runID, labels, 3, 2, capturePartialCheckpoint(t, labels, 2))
	second := NewEnvelope(runID, labels, 3, 5, capturePartialCheckpoint(t, labels, 5))
	require.NoError(t, store.Save(first))
	require.NoError(t, store.Save(second))

	// The writes are still pending, but should be visible.
	loaded, err := store.Load(runID)
	require.NoError(t, err)
	assert.EqualValues(t, second, loaded)

	// Reopen the database and ensure the write was persisted on close.
	require.NoError(t, store.Close())
	store, err = OpenStore(path)
	require.NoError(t, err)
	defer store.Close()

	loaded, err = store.Load(runID)
	require.NoError(t, err)
	assert.EqualValues(t, second, loaded)
}

// TestStoreFlushThreshold verifies that reaching the flush threshold writes pending checkpoints to disk.
func TestStoreFlushThreshold(t *testing.T) {
	store, err := OpenStore(filepath.Join(t.TempDir(), "checkpoints.db"))
	require.NoError(t, err)
	defer store.Close()
	store.SetFlushThreshold(2)

	labels := []string{"a", "b"}
	require.NoError(t, store.Save(NewEnvelope(NewRunID(), labels, 2, 0, capturePartialCheckpoint(t, labels, 0))))
	assert.Equal(t, 1, store.PendingWrites())
	require.NoError(t, store.Save(NewEnvelope(NewRunID(), labels, 2, 1, capturePartialCheckpoint(t, labels, 1))))
	assert.Equal(t, 0, store.PendingWrites())
}

// TestStoreListAndDelete verifies that runs are listed in run ID order and can be deleted.
func TestStoreListAndDelete(t *testing.T) {
	store, err := OpenStore(filepath.Join(t.TempDir(), "checkpoints.db"))
	require.NoError(t, err)
	defer store.Close()

	labels := []string{"x", "y"}
	runIDs := []string{"run-c", "run-a", "run-b"}
	for _, runID := range runIDs {
		require.NoError(t, store.Save(NewEnvelope(runID, labels, 2, 0, capturePartialCheckpoint(t, labels, 0))))
	}

	listed, err := store.List()
	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.EqualValues(t, "run-a", listed[0].RunID)
	assert.EqualValues(t, "run-b", listed[1].RunID)
	assert.EqualValues(t, "run-c", listed[2].RunID)

	// Delete one run and ensure it is gone.
	require.NoError(t, store.Delete("run-b"))
	_, err = store.Load("run-b")
	assert.ErrorIs(t, err, ErrCheckpointNotFound)
	assert.ErrorIs(t, store.Delete("run-b"), ErrCheckpointNotFound)

	listed, err = store.List()
	require.NoError(t, err)
	assert.Len(t, listed, 2)
}

// TestStoreRejectsMissingRunID verifies that envelopes must carry a run ID to be saved.
func TestStoreRejectsMissingRunID(t *testing.T) {
	store, err := OpenStore(filepath.Join(t.TempDir(), "checkpoints.db"))
	require.NoError(t, err)
	defer store.Close()

	assert.Error(t, store.Save(&Envelope{}))
}
