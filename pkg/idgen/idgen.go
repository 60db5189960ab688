// Package idgen generates short, URL-safe record identifiers backed by nanoid.
package idgen

import (
	"fmt"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// Alphabet is the character set of generated ids. It contains only characters
// that need no escaping in a URL path segment.
const Alphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Length is the number of characters in a generated id.
const Length = 21

// Generator produces new identifiers.
type Generator interface {
	NewID() (string, error)
}

// NanoID is the default Generator.
type NanoID struct{}

// NewID returns a fresh random id.
func (NanoID) NewID() (string, error) {
	id, err := nanoid.Generate(Alphabet, Length)
	if err != nil {
		return "", fmt.Errorf("idgen: %w", err)
	}
	return id, nil
}

// Generate returns a fresh id from the default generator.
func Generate() (string, error) {
	return NanoID{}.NewID()
}
