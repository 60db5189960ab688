package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice/pkg/apperror"
)

func openFileStore(t *testing.T, path string) *Store {
	t.Helper()
	backend, err := NewFileBackend(path)
	require.NoError(t, err)
	st, err := Open(context.Background(), backend)
	require.NoError(t, err)
	return st
}

func readRaw(t *testing.T, path string) map[string]json.RawMessage {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	return raw
}

func TestOpenMissingFileWritesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "db.json")
	openFileStore(t, path)

	raw := readRaw(t, path)
	for _, name := range Collections {
		assert.JSONEq(t, `[]`, string(raw[name]), "collection %s", name)
	}
}

func TestOpenEmptyFileWritesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	require.NoError(t, os.WriteFile(path, []byte("  \n"), 0o644))
	openFileStore(t, path)

	raw := readRaw(t, path)
	assert.Len(t, raw, 3)
}

func TestOpenMalformedFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"users": [`), 0o644))

	backend, err := NewFileBackend(path)
	require.NoError(t, err)
	_, err = Open(context.Background(), backend)
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindPersistence))

	// The corrupt file is left for an operator to inspect.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"users": [`, string(data))
}

func TestOpenFillsMissingCollections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"users": [{"id": "u1"}], "audit": null}`), 0o644))
	st := openFileStore(t, path)

	doc, err := st.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Len(t, doc.Collection(Users), 1)
	assert.NotNil(t, doc.Collection(Tables))
	assert.NotNil(t, doc.Collection(Audit))
	assert.Empty(t, doc.Collection(Audit))
}

func TestUpdateRoundTripAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "db.json")
	st := openFileStore(t, path)

	const n = 5
	for i := 0; i < n; i++ {
		err := st.Update(ctx, func(doc Document) error {
			rec := Record{"id": fmt.Sprintf("id-%d", i), "n": json.Number(fmt.Sprint(i)), "big": json.Number("9007199254740993")}
			doc.SetCollection(Tables, append(doc.Collection(Tables), rec))
			return nil
		})
		require.NoError(t, err)
	}

	reopened := openFileStore(t, path)
	doc, err := reopened.Snapshot(ctx)
	require.NoError(t, err)
	tables := doc.Collection(Tables)
	require.Len(t, tables, n)
	for i, rec := range tables {
		assert.Equal(t, fmt.Sprintf("id-%d", i), rec.ID())
		assert.Equal(t, json.Number(fmt.Sprint(i)), rec["n"])
		assert.Equal(t, json.Number("9007199254740993"), rec["big"])
	}
}

func TestUpdateErrorSkipsCommit(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "db.json")
	st := openFileStore(t, path)

	boom := errors.New("boom")
	err := st.Update(ctx, func(doc Document) error {
		doc.SetCollection(Users, []Record{{"id": "x"}})
		return boom
	})
	assert.ErrorIs(t, err, boom)

	doc, err := st.Snapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, doc.Collection(Users))
}

func TestViewSeesExternalEdits(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "db.json")
	st := openFileStore(t, path)

	require.NoError(t, os.WriteFile(path, []byte(`{"users":[{"id":"ext"}],"tables":[],"audit":[]}`), 0o644))

	var ids []string
	err := st.View(ctx, func(doc Document) error {
		for _, rec := range doc.Collection(Users) {
			ids = append(ids, rec.ID())
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"ext"}, ids)
}

func TestConcurrentUpdatesAreNotLost(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "db.json")
	st := openFileStore(t, path)

	const workers = 40
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := Collections[i%len(Collections)]
			err := st.Update(ctx, func(doc Document) error {
				doc.SetCollection(name, append(doc.Collection(name), Record{"id": fmt.Sprintf("r%d", i)}))
				return nil
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	doc, err := openFileStore(t, path).Snapshot(ctx)
	require.NoError(t, err)
	total := 0
	for _, name := range Collections {
		total += len(doc.Collection(name))
	}
	assert.Equal(t, workers, total)
}

func TestFileBackendLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "db.json")
	st := openFileStore(t, path)
	for i := 0; i < 3; i++ {
		require.NoError(t, st.Commit(context.Background()))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "db.json", entries[0].Name())
}

type failingBackend struct {
	data     []byte
	writeErr error
}

func (b *failingBackend) Read(context.Context) ([]byte, error) { return b.data, nil }
func (b *failingBackend) Write(context.Context, []byte) error  { return b.writeErr }
func (b *failingBackend) Close() error                         { return nil }

func TestCommitFailureIsPersistenceError(t *testing.T) {
	backend := &failingBackend{data: []byte(`{"users":[],"tables":[],"audit":[]}`), writeErr: errors.New("disk full")}
	st, err := Open(context.Background(), backend)
	require.NoError(t, err)

	err = st.Update(context.Background(), func(doc Document) error { return nil })
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindPersistence))
	assert.ErrorIs(t, err, backend.writeErr)
}

func TestIsCollection(t *testing.T) {
	assert.True(t, IsCollection(Users))
	assert.True(t, IsCollection(Audit))
	assert.False(t, IsCollection("comments"))
}
