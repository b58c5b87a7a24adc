package gateway

import (
	"context"
	"encoding/json"
	"sync"
)

// MemoryStore is an in-process DocumentStore used in tests and local
// development. Documents are deep-copied on the way in and out so callers
// never share state with the store.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]map[string]Document
	hub  *Hub
}

func NewMemoryStore(hub *Hub) *MemoryStore {
	if hub == nil {
		hub = NewHub(nil)
	}
	return &MemoryStore{
		data: make(map[string]map[string]Document),
		hub:  hub,
	}
}

func (m *MemoryStore) Create(ctx context.Context, collection, id string, doc Document) error {
	m.mu.Lock()
	if m.data[collection] == nil {
		m.data[collection] = make(map[string]Document)
	}
	if _, ok := m.data[collection][id]; ok {
		m.mu.Unlock()
		return ErrAlreadyExists
	}
	stored := copyDocument(doc)
	m.data[collection][id] = stored
	m.mu.Unlock()

	m.hub.Notify(ctx, Event{Collection: collection, ID: id, Doc: copyDocument(stored)})
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, collection, id string) (Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.data[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyDocument(doc), nil
}

func (m *MemoryStore) Query(ctx context.Context, collection string, filters ...Where) ([]Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Document
	for _, doc := range m.data[collection] {
		if matches(doc, filters) {
			out = append(out, copyDocument(doc))
		}
	}
	return out, nil
}

func (m *MemoryStore) Update(ctx context.Context, collection, id string, partial Document) error {
	m.mu.Lock()
	doc, ok := m.data[collection][id]
	if !ok {
		m.mu.Unlock()
		return ErrNotFound
	}
	// Top-level merge, same semantics as the Postgres jsonb || operator.
	for k, v := range copyDocument(partial) {
		doc[k] = v
	}
	snapshot := copyDocument(doc)
	m.mu.Unlock()

	m.hub.Notify(ctx, Event{Collection: collection, ID: id, Doc: snapshot})
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	m.mu.Lock()
	if _, ok := m.data[collection][id]; !ok {
		m.mu.Unlock()
		return ErrNotFound
	}
	delete(m.data[collection], id)
	m.mu.Unlock()

	m.hub.Notify(ctx, Event{Collection: collection, ID: id})
	return nil
}

func (m *MemoryStore) Subscribe(ctx context.Context, collection string) (<-chan Event, func()) {
	return m.hub.Subscribe(ctx, collection)
}

func matches(doc Document, filters []Where) bool {
	for _, f := range filters {
		got, ok := doc[f.Field]
		if !ok {
			return false
		}
		if !jsonEqual(got, f.Value) {
			return false
		}
	}
	return true
}

// jsonEqual compares through the JSON form so that e.g. int filter values
// match the float64 numbers json.Unmarshal produces.
func jsonEqual(a, b interface{}) bool {
	ra, err := json.Marshal(a)
	if err != nil {
		return false
	}
	rb, err := json.Marshal(b)
	if err != nil {
		return false
	}
	return string(ra) == string(rb)
}

func copyDocument(doc Document) Document {
	if doc == nil {
		return nil
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return Document{}
	}
	var out Document
	if err := json.Unmarshal(raw, &out); err != nil {
		return Document{}
	}
	return out
}
