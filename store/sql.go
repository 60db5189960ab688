package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// DefaultDocumentName is the row the service reads and writes.
const DefaultDocumentName = "main"

// SQLBackend keeps the document as one row of the documents table. The
// statements work unchanged on PostgreSQL and SQLite.
type SQLBackend struct {
	DB   *sql.DB
	Name string
}

// NewSQLBackend ensures the documents table exists and returns a backend for
// the named row.
func NewSQLBackend(ctx context.Context, db *sql.DB, name string) (*SQLBackend, error) {
	if name == "" {
		name = DefaultDocumentName
	}
	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS documents (name TEXT PRIMARY KEY, body TEXT NOT NULL)`)
	if err != nil {
		return nil, fmt.Errorf("failed to create documents table: %w", err)
	}
	return &SQLBackend{DB: db, Name: name}, nil
}

func (b *SQLBackend) Read(ctx context.Context) ([]byte, error) {
	var body string
	err := b.DB.QueryRowContext(ctx, `SELECT body FROM documents WHERE name = $1`, b.Name).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read document %s: %w", b.Name, err)
	}
	return []byte(body), nil
}

func (b *SQLBackend) Write(ctx context.Context, data []byte) error {
	_, err := b.DB.ExecContext(ctx, `INSERT INTO documents (name, body) VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET body = EXCLUDED.body`, b.Name, string(data))
	if err != nil {
		return fmt.Errorf("failed to write document %s: %w", b.Name, err)
	}
	return nil
}

func (b *SQLBackend) Close() error {
	return b.DB.Close()
}
