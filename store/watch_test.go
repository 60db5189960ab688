package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWatchReportsWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "db.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 16)
	require.NoError(t, Watch(ctx, path, func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	}))

	// Unrelated files in the same directory are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte(`{}`), 0o644))
	select {
	case <-changed:
		t.Fatal("change reported for unrelated file")
	case <-time.After(200 * time.Millisecond):
	}

	backend, err := NewFileBackend(path)
	require.NoError(t, err)
	require.NoError(t, backend.Write(ctx, []byte(`{"users":[]}`)))

	select {
	case <-changed:
	case <-time.After(2 * time.Second):
		t.Fatal("no change reported after write")
	}
}
