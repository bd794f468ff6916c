// Package store defines the document-store capability the board is written
// against. Documents live at slash-separated paths ("tenants/t1/areas/free");
// the final segment is the document id, everything before it the collection.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by Get/Update when no document exists at the path.
	ErrNotFound = errors.New("document not found")
	// ErrConflict aborts a transaction whose optimistic precondition failed.
	ErrConflict = errors.New("conflict: concurrent write detected")
)

// Document is the raw field map of one stored document.
type Document map[string]any

// Snapshot pairs a document with its id within a collection read.
type Snapshot struct {
	ID   string
	Path string
	Data Document
}

// Tx is the view handed to a transaction function. Reads see committed state
// locked for the duration of the transaction; writes are buffered and applied
// atomically iff the function returns nil.
type Tx interface {
	Get(ctx context.Context, path string) (Document, error)
	Set(path string, data Document)
	// Merge buffers a partial write: fields overlay the document's committed
	// state (or a prior buffered write), leaving other fields untouched.
	Merge(ctx context.Context, path string, fields Document)
}

// Store is the adapter contract. Implementations must serialize transactions
// touching the same document.
type Store interface {
	Get(ctx context.Context, path string) (Document, error)
	// Set writes fields at path, creating the document if needed. With merge
	// true existing fields not present in the input are kept.
	Set(ctx context.Context, path string, fields Document, merge bool) error
	// Update modifies fields of an existing document; ErrNotFound if absent.
	Update(ctx context.Context, path string, fields Document) error
	// Append adds an auto-id document to a collection and returns the id.
	Append(ctx context.Context, collection string, fields Document) (string, error)
	GetAll(ctx context.Context, collection string) ([]Snapshot, error)
	RunTransaction(ctx context.Context, fn func(tx Tx) error) error
	// Subscribe invokes fn with a full collection snapshot now and after every
	// change to the collection. The returned func cancels the subscription.
	Subscribe(collection string, fn func([]Snapshot)) (func(), error)
}

// DataTo decodes a document into a typed value via JSON round-trip.
func DataTo(doc Document, out any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	return nil
}

// DataFrom encodes a typed value into a document field map.
func DataFrom(v any) (Document, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode value: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode value: %w", err)
	}
	return doc, nil
}
