package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("document not found")
	ErrAlreadyExists = errors.New("document already exists")
)

// Document is one schemaless record keyed by collection and id.
type Document map[string]interface{}

// Where is an equality predicate on a top-level document field. The store
// supports no other comparison and no joins.
type Where struct {
	Field string
	Value interface{}
}

// Event is one change notification delivered to subscribers. Doc is the
// full document after the write, nil when the document was deleted.
type Event struct {
	Collection string
	ID         string
	Doc        Document
}

// DocumentStore is the persistence contract the services are written
// against. Update merges the partial document into the stored one at the
// top level; a field written with a whole array replaces that array.
type DocumentStore interface {
	Create(ctx context.Context, collection, id string, doc Document) error
	Get(ctx context.Context, collection, id string) (Document, error)
	Query(ctx context.Context, collection string, filters ...Where) ([]Document, error)
	Update(ctx context.Context, collection, id string, partial Document) error
	Delete(ctx context.Context, collection, id string) error
	// Subscribe streams changes to a collection until the returned cancel
	// func is called. Callers must cancel on teardown.
	Subscribe(ctx context.Context, collection string) (<-chan Event, func())
}

// BlobStore uploads a blob and returns its public URL.
type BlobStore interface {
	Upload(ctx context.Context, path, contentType string, data []byte) (string, error)
}

// Encode converts a typed model into a Document via its JSON form, so the
// stored shape matches the wire shape exactly.
func Encode(v interface{}) (Document, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	return doc, nil
}

// Decode converts a Document back into a typed model.
func Decode(doc Document, v interface{}) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to decode document: %w", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to decode document: %w", err)
	}
	return nil
}
