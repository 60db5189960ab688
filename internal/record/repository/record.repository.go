package repository

import (
	"context"
	"errors"
	"time"

	"backoffice/pkg/idgen"
	"backoffice/pkg/logger"
	"backoffice/store"
)

// maxIDAttempts bounds retries when a generated id is already taken.
const maxIDAttempts = 8

var errIDExhausted = errors.New("could not generate an unused id")

// RecordRepository provides CRUD over one collection of the store.
type RecordRepository struct {
	Store      *store.Store
	Collection string

	ids       idgen.Generator
	now       func() time.Time
	stampTime bool
}

type Option func(*RecordRepository)

// WithServerTimestamp makes Create set the timestamp field to the server time,
// replacing any value supplied by the caller.
func WithServerTimestamp() Option {
	return func(r *RecordRepository) { r.stampTime = true }
}

func WithIDGenerator(g idgen.Generator) Option {
	return func(r *RecordRepository) { r.ids = g }
}

func WithClock(now func() time.Time) Option {
	return func(r *RecordRepository) { r.now = now }
}

func NewRecordRepository(st *store.Store, collection string, opts ...Option) *RecordRepository {
	r := &RecordRepository{
		Store:      st,
		Collection: collection,
		ids:        idgen.NanoID{},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// List returns the collection's records in insertion order.
func (r *RecordRepository) List(ctx context.Context) ([]store.Record, error) {
	var records []store.Record
	err := r.Store.View(ctx, func(doc store.Document) error {
		current := doc.Collection(r.Collection)
		records = make([]store.Record, 0, len(current))
		for _, rec := range current {
			records = append(records, rec.Clone())
		}
		return nil
	})
	if err != nil {
		logger.Sugar.Errorf("Failed to list %s: %v", r.Collection, err)
		return nil, err
	}
	return records, nil
}

// Create appends fields as a new record with a server-assigned id and returns it.
func (r *RecordRepository) Create(ctx context.Context, fields store.Record) (store.Record, error) {
	rec := fields.Clone()
	if rec == nil {
		rec = store.Record{}
	}
	err := r.Store.Update(ctx, func(doc store.Document) error {
		current := doc.Collection(r.Collection)
		id, err := r.newID(current)
		if err != nil {
			return err
		}
		rec[store.FieldID] = id
		if r.stampTime {
			rec[store.FieldTimestamp] = r.now().UnixMilli()
		}
		doc.SetCollection(r.Collection, append(current, rec))
		return nil
	})
	if err != nil {
		logger.Sugar.Errorf("Failed to create record in %s: %v", r.Collection, err)
		return nil, err
	}
	return rec.Clone(), nil
}

// DeleteByID removes every record with the given id and returns how many were
// removed. Deleting an unknown id is not an error.
func (r *RecordRepository) DeleteByID(ctx context.Context, id string) (int, error) {
	removed := 0
	err := r.Store.Update(ctx, func(doc store.Document) error {
		current := doc.Collection(r.Collection)
		kept := make([]store.Record, 0, len(current))
		for _, rec := range current {
			if rec.ID() == id {
				removed++
				continue
			}
			kept = append(kept, rec)
		}
		doc.SetCollection(r.Collection, kept)
		return nil
	})
	if err != nil {
		logger.Sugar.Errorf("Failed to delete %s from %s: %v", id, r.Collection, err)
		return 0, err
	}
	return removed, nil
}

func (r *RecordRepository) newID(existing []store.Record) (string, error) {
	taken := make(map[string]struct{}, len(existing))
	for _, rec := range existing {
		taken[rec.ID()] = struct{}{}
	}
	for i := 0; i < maxIDAttempts; i++ {
		id, err := r.ids.NewID()
		if err != nil {
			return "", err
		}
		if _, dup := taken[id]; !dup {
			return id, nil
		}
	}
	return "", errIDExhausted
}
