package store

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/outreach-cli/internal/model"
)

func TestStatusFile_MissingFileIsEmpty(t *testing.T) {
	f := NewStatusFile(t.TempDir(), "batch1")
	statuses, err := f.Load()
	require.NoError(t, err)
	assert.Empty(t, statuses)
}

func TestStatusFile_RecordAndLoad(t *testing.T) {
	f := NewStatusFile(t.TempDir(), "batch1")

	require.NoError(t, f.Record("https://linkedin.com/in/ann", model.MessageStatusSent, ""))

	statuses, err := f.Load()
	require.NoError(t, err)
	require.Contains(t, statuses, "https://linkedin.com/in/ann")
	assert.Equal(t, model.MessageStatusSent, statuses["https://linkedin.com/in/ann"].Status)
	assert.False(t, statuses["https://linkedin.com/in/ann"].LastUpdated.IsZero())
}

func TestStatusFile_SaveMergesExisting(t *testing.T) {
	f := NewStatusFile(t.TempDir(), "batch1")

	require.NoError(t, f.Record("https://linkedin.com/in/ann", model.MessageStatusSent, ""))
	require.NoError(t, f.Record("https://linkedin.com/in/bob", model.MessageStatusFailed, "no message button"))

	statuses, err := f.Load()
	require.NoError(t, err)
	assert.Len(t, statuses, 2, "earlier entries survive later writes")
	assert.Equal(t, "no message button", statuses["https://linkedin.com/in/bob"].ErrorMessage)
}

func TestStatusFile_RecordOverwritesSameURL(t *testing.T) {
	f := NewStatusFile(t.TempDir(), "batch1")

	require.NoError(t, f.Record("https://linkedin.com/in/ann", model.MessageStatusInProgress, ""))
	require.NoError(t, f.Record("https://linkedin.com/in/ann", model.MessageStatusSent, ""))

	statuses, err := f.Load()
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.Equal(t, model.MessageStatusSent, statuses["https://linkedin.com/in/ann"].Status)
}

func TestStatusFile_CorruptFileErrors(t *testing.T) {
	dir := t.TempDir()
	f := NewStatusFile(dir, "batch1")
	require.NoError(t, os.WriteFile(f.Path(), []byte("not json"), 0o644))

	_, err := f.Load()
	assert.Error(t, err)
}

func TestStatusFile_NoTempFileLeftBehind(t *testing.T) {
	dir := t.TempDir()
	f := NewStatusFile(dir, "batch1")
	require.NoError(t, f.Record("https://linkedin.com/in/ann", model.MessageStatusSent, ""))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "batch1.status.json", entries[0].Name())
}
