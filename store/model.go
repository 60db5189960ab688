package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
)

// Collection names. A Document always carries all three.
const (
	Users  = "users"
	Tables = "tables"
	Audit  = "audit"
)

// Reserved record fields owned by the service.
const (
	FieldID        = "id"
	FieldTimestamp = "timestamp"
)

// Collections lists every collection in a Document.
var Collections = []string{Users, Tables, Audit}

// IsCollection reports whether name is a known collection.
func IsCollection(name string) bool {
	for _, c := range Collections {
		if c == name {
			return true
		}
	}
	return false
}

// Record is a schema-less entity. Values are JSON-compatible; numbers decoded
// from storage or requests are json.Number so they round-trip unchanged.
type Record map[string]any

// ID returns the record's id, or "" if it has none.
func (r Record) ID() string {
	id, _ := r[FieldID].(string)
	return id
}

// Clone returns a shallow copy. A nil record stays nil.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Document is the root of the persisted store: collection name -> ordered records.
type Document map[string][]Record

// NewDocument returns the default shape with every collection empty.
func NewDocument() Document {
	doc := Document{}
	doc.normalize()
	return doc
}

// Collection returns the records of the named collection.
func (d Document) Collection(name string) []Record {
	return d[name]
}

// SetCollection replaces the records of the named collection.
func (d Document) SetCollection(name string, records []Record) {
	if records == nil {
		records = []Record{}
	}
	d[name] = records
}

// Clone copies the document and each record in it.
func (d Document) Clone() Document {
	out := make(Document, len(d))
	for name, records := range d {
		cp := make([]Record, len(records))
		for i, rec := range records {
			cp[i] = rec.Clone()
		}
		out[name] = cp
	}
	return out
}

func (d Document) normalize() {
	for _, name := range Collections {
		if d[name] == nil {
			d[name] = []Record{}
		}
	}
}

func decodeDocument(data []byte) (Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after document")
	}
	if doc == nil {
		doc = Document{}
	}
	doc.normalize()
	return doc, nil
}

func encodeDocument(doc Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
