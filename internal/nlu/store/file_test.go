package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"defi-nlu/internal/nlu/snapshot"
)

// ==========================
// File Snapshot Store Tests
// ==========================

func TestFileSnapshotStore_SaveLoad(t *testing.T) {
	ctx := context.Background()
	s := NewFileSnapshotStore(filepath.Join(t.TempDir(), "model.json"))

	_, err := s.Load(ctx)
	assert.ErrorIs(t, err, ErrSnapshotNotFound)

	m := createTestModel(t)
	require.NoError(t, s.Save(ctx, m))

	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, m.ID, loaded.ID)
	assert.Equal(t, m.Classes(), loaded.Classes())

	entries, err := os.ReadDir(filepath.Dir(s.Path()))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestFileSnapshotStore_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("corrupt file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "model.json")
		require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o600))

		_, err := NewFileSnapshotStore(path).Load(ctx)
		assert.ErrorIs(t, err, snapshot.ErrInvalidSnapshot)
	})

	t.Run("missing directory", func(t *testing.T) {
		s := NewFileSnapshotStore(filepath.Join(t.TempDir(), "nope", "model.json"))
		assert.Error(t, s.Save(ctx, createTestModel(t)))
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		s := NewFileSnapshotStore(filepath.Join(t.TempDir(), "model.json"))
		assert.ErrorIs(t, s.Save(cctx, createTestModel(t)), context.Canceled)
		_, err := s.Load(cctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
