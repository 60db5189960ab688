package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice/internal/record/repository"
	"backoffice/pkg/apperror"
	"backoffice/socket"
	"backoffice/store"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []socket.Event
}

func (n *recordingNotifier) Publish(ev socket.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
}

func newService(t *testing.T) (*RecordService, *recordingNotifier) {
	t.Helper()
	backend, err := store.NewFileBackend(filepath.Join(t.TempDir(), "db.json"))
	require.NoError(t, err)
	st, err := store.Open(context.Background(), backend)
	require.NoError(t, err)

	n := &recordingNotifier{}
	svc := NewRecordService(n,
		repository.NewRecordRepository(st, store.Users),
		repository.NewRecordRepository(st, store.Audit, repository.WithServerTimestamp()),
	)
	return svc, n
}

func TestCreatePublishesEvent(t *testing.T) {
	svc, n := newService(t)

	rec, err := svc.Create(context.Background(), store.Users, store.Record{"name": "Jo"})
	require.NoError(t, err)

	require.Len(t, n.events, 1)
	ev := n.events[0]
	assert.Equal(t, socket.CreateType, ev.Type)
	assert.Equal(t, store.Users, ev.Collection)
	assert.Equal(t, rec.ID(), ev.ID)
	assert.Contains(t, string(ev.Payload), `"name":"Jo"`)
}

func TestDeletePublishesOnlyWhenRemoved(t *testing.T) {
	ctx := context.Background()
	svc, n := newService(t)

	rec, err := svc.Create(ctx, store.Users, store.Record{})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, store.Users, "missing"))
	require.NoError(t, svc.Delete(ctx, store.Users, rec.ID()))

	require.Len(t, n.events, 2)
	assert.Equal(t, socket.DeleteType, n.events[1].Type)
	assert.Equal(t, rec.ID(), n.events[1].ID)
}

func TestUnknownCollectionIsNotFound(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.List(context.Background(), store.Tables)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))

	_, err = svc.Create(context.Background(), "comments", store.Record{})
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestDeleteRequiresID(t *testing.T) {
	svc, _ := newService(t)
	err := svc.Delete(context.Background(), store.Users, "")
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}

func TestNilNotifier(t *testing.T) {
	backend, err := store.NewFileBackend(filepath.Join(t.TempDir(), "db.json"))
	require.NoError(t, err)
	st, err := store.Open(context.Background(), backend)
	require.NoError(t, err)

	svc := NewRecordService(nil, repository.NewRecordRepository(st, store.Tables))
	_, err = svc.Create(context.Background(), store.Tables, store.Record{"seats": 4})
	assert.NoError(t, err)
}
