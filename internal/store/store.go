// Package store defines the document-store boundary used for all durable
// state: an opaque collection/id keyed store with merge-write semantics.
package store

import "context"

// Document is one stored record.
type Document struct {
	ID   string
	Data map[string]any
}

// Store is the persistence boundary. Writes with merge=true update only the
// top-level fields present in the payload and preserve the rest of the stored
// document (field-level last-write-wins, no optimistic locking).
type Store interface {
	// Get returns the document data, or nil with a nil error when the
	// document does not exist.
	Get(ctx context.Context, collection, id string) (map[string]any, error)
	// Set writes fields under collection/id. With merge=true untouched
	// fields in the stored document are preserved.
	Set(ctx context.Context, collection, id string, fields map[string]any, merge bool) error
	// Query returns documents whose data contains all filter fields,
	// ordered by orderBy ("field" ascending, "-field" descending, "" for
	// store order).
	Query(ctx context.Context, collection string, filters map[string]any, orderBy string) ([]Document, error)
	// Close releases store resources.
	Close() error
}
