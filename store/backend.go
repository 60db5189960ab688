package store

import "context"

// Backend is the durable storage behind a Store. It moves the serialized
// document as a whole and knows nothing about collections.
type Backend interface {
	// Read returns the stored bytes, or nil if nothing has been stored yet.
	Read(ctx context.Context) ([]byte, error)
	// Write replaces the stored bytes. Readers never observe a partial write.
	Write(ctx context.Context, data []byte) error
	Close() error
}
