package gateway

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// PostgresStore keeps one JSONB row per (collection, id). Equality filters
// are evaluated with jsonb containment, merge-updates with the || operator,
// which replaces whole top-level fields the way the services expect.
type PostgresStore struct {
	db  *sql.DB
	hub *Hub
}

func NewPostgresStore(db *sql.DB, hub *Hub) *PostgresStore {
	if hub == nil {
		hub = NewHub(nil)
	}
	return &PostgresStore{db: db, hub: hub}
}

func (p *PostgresStore) Create(ctx context.Context, collection, id string, doc Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}
	_, err = p.db.ExecContext(ctx, `
		INSERT INTO documents (collection, id, doc)
		VALUES ($1, $2, $3)
	`, collection, id, raw)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrAlreadyExists
		}
		return fmt.Errorf("failed to create document: %w", err)
	}

	p.hub.Notify(ctx, Event{Collection: collection, ID: id, Doc: copyDocument(doc)})
	return nil
}

func (p *PostgresStore) Get(ctx context.Context, collection, id string) (Document, error) {
	var raw []byte
	err := p.db.QueryRowContext(ctx, `
		SELECT doc FROM documents
		WHERE collection = $1 AND id = $2
	`, collection, id).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document: %w", err)
	}
	return doc, nil
}

func (p *PostgresStore) Query(ctx context.Context, collection string, filters ...Where) ([]Document, error) {
	query := `SELECT doc FROM documents WHERE collection = $1`
	args := []interface{}{collection}

	if len(filters) > 0 {
		match := make(map[string]interface{}, len(filters))
		for _, f := range filters {
			match[f.Field] = f.Value
		}
		raw, err := json.Marshal(match)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal filters: %w", err)
		}
		query += ` AND doc @> $2`
		args = append(args, raw)
	}

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		var doc Document
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("failed to unmarshal document: %w", err)
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

func (p *PostgresStore) Update(ctx context.Context, collection, id string, partial Document) error {
	raw, err := json.Marshal(partial)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	var merged []byte
	err = p.db.QueryRowContext(ctx, `
		UPDATE documents
		SET doc = doc || $3, updated_at = NOW()
		WHERE collection = $1 AND id = $2
		RETURNING doc
	`, collection, id, raw).Scan(&merged)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(merged, &doc); err != nil {
		return fmt.Errorf("failed to unmarshal document: %w", err)
	}
	p.hub.Notify(ctx, Event{Collection: collection, ID: id, Doc: doc})
	return nil
}

func (p *PostgresStore) Delete(ctx context.Context, collection, id string) error {
	res, err := p.db.ExecContext(ctx, `
		DELETE FROM documents
		WHERE collection = $1 AND id = $2
	`, collection, id)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	p.hub.Notify(ctx, Event{Collection: collection, ID: id})
	return nil
}

func (p *PostgresStore) Subscribe(ctx context.Context, collection string) (<-chan Event, func()) {
	return p.hub.Subscribe(ctx, collection)
}
