// Package store owns the single persisted document behind the service.
//
// Every read and every mutation runs under one mutex: the document is reloaded
// from the backend, the caller's function runs against it, and mutations are
// committed before the lock is released. Concurrent writers therefore never
// overwrite each other's changes.
package store

import (
	"bytes"
	"context"
	"sync"

	"backoffice/pkg/apperror"
	"backoffice/pkg/logger"
)

type Store struct {
	backend Backend

	mu  sync.Mutex
	doc Document
}

// Open loads the document from backend. Malformed content is returned as a
// persistence error and is never overwritten.
func Open(ctx context.Context, backend Backend) (*Store, error) {
	s := &Store{backend: backend}
	if err := s.Load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Load reads the backend. Absent or empty content initializes and persists
// the default document.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	empty, err := s.read(ctx)
	if err != nil {
		return err
	}
	if empty {
		logger.Sugar.Info("Store is empty, writing default document")
		return s.commit(ctx)
	}
	return nil
}

// Reload re-reads the backend, discarding any uncommitted in-memory state.
func (s *Store) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.read(ctx)
	return err
}

// Commit writes the in-memory document to the backend.
func (s *Store) Commit(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit(ctx)
}

// View reloads the document and passes it to fn. fn must not modify it or
// keep references past its return.
func (s *Store) View(ctx context.Context, fn func(Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.read(ctx); err != nil {
		return err
	}
	return fn(s.doc)
}

// Update reloads the document, lets fn mutate it and commits the result.
// Nothing is written if fn returns an error.
func (s *Store) Update(ctx context.Context, fn func(Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.read(ctx); err != nil {
		return err
	}
	if err := fn(s.doc); err != nil {
		return err
	}
	return s.commit(ctx)
}

// Snapshot returns a copy of the current document.
func (s *Store) Snapshot(ctx context.Context) (Document, error) {
	var doc Document
	err := s.View(ctx, func(d Document) error {
		doc = d.Clone()
		return nil
	})
	return doc, err
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// read replaces s.doc with the backend content and reports whether the
// backend was empty. s.doc is left untouched on error.
func (s *Store) read(ctx context.Context) (bool, error) {
	data, err := s.backend.Read(ctx)
	if err != nil {
		logger.Sugar.Errorf("Failed to read store: %v", err)
		return false, apperror.Persistence("failed to read store", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		s.doc = NewDocument()
		return true, nil
	}
	doc, err := decodeDocument(data)
	if err != nil {
		logger.Sugar.Errorf("Store content is malformed: %v", err)
		return false, apperror.Persistence("store content is malformed", err)
	}
	s.doc = doc
	return false, nil
}

func (s *Store) commit(ctx context.Context) error {
	data, err := encodeDocument(s.doc)
	if err != nil {
		return apperror.Persistence("failed to encode store", err)
	}
	if err := s.backend.Write(ctx, data); err != nil {
		logger.Sugar.Errorf("Failed to write store: %v", err)
		return apperror.Persistence("failed to write store", err)
	}
	return nil
}
