package service

import (
	"context"
	"encoding/json"

	"backoffice/internal/record/repository"
	"backoffice/pkg/apperror"
	"backoffice/pkg/logger"
	"backoffice/socket"
	"backoffice/store"
)

// Notifier receives change events after successful mutations.
type Notifier interface {
	Publish(ev socket.Event)
}

type RecordService struct {
	Repos map[string]*repository.RecordRepository
	Hub   Notifier
}

func NewRecordService(hub Notifier, repos ...*repository.RecordRepository) *RecordService {
	s := &RecordService{Repos: make(map[string]*repository.RecordRepository, len(repos)), Hub: hub}
	for _, repo := range repos {
		s.Repos[repo.Collection] = repo
	}
	return s
}

func (s *RecordService) List(ctx context.Context, collection string) ([]store.Record, error) {
	repo, err := s.repo(collection)
	if err != nil {
		return nil, err
	}
	return repo.List(ctx)
}

func (s *RecordService) Create(ctx context.Context, collection string, fields store.Record) (store.Record, error) {
	repo, err := s.repo(collection)
	if err != nil {
		return nil, err
	}
	rec, err := repo.Create(ctx, fields)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		logger.Sugar.Errorf("Failed to marshal %s event payload: %v", collection, err)
		payload = nil
	}
	s.publish(socket.Event{Type: socket.CreateType, Collection: collection, ID: rec.ID(), Payload: payload})
	return rec, nil
}

// Delete is idempotent; a change event is only published when something was removed.
func (s *RecordService) Delete(ctx context.Context, collection, id string) error {
	repo, err := s.repo(collection)
	if err != nil {
		return err
	}
	if id == "" {
		return apperror.Validation("id is required")
	}
	removed, err := repo.DeleteByID(ctx, id)
	if err != nil {
		return err
	}
	if removed > 0 {
		s.publish(socket.Event{Type: socket.DeleteType, Collection: collection, ID: id})
	}
	return nil
}

func (s *RecordService) publish(ev socket.Event) {
	if s.Hub != nil {
		s.Hub.Publish(ev)
	}
}

func (s *RecordService) repo(collection string) (*repository.RecordRepository, error) {
	repo, ok := s.Repos[collection]
	if !ok {
		return nil, apperror.NotFound("unknown collection " + collection)
	}
	return repo, nil
}
