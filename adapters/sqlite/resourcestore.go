package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/artpar/pagekit/ports"
)

// ResourceStore persists one collection's items as JSON documents.
type ResourceStore struct {
	db         *DB
	collection string
	ids        ports.IDGenerator
	clock      ports.Clock
}

// NewResourceStore creates a store for the named collection.
func NewResourceStore(db *DB, collection string, ids ports.IDGenerator, clock ports.Clock) *ResourceStore {
	return &ResourceStore{
		db:         db,
		collection: collection,
		ids:        ids,
		clock:      clock,
	}
}

// Get retrieves an item by id.
func (s *ResourceStore) Get(ctx context.Context, id string) (ports.Item, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		"SELECT data FROM documents WHERE collection = ? AND id = ?",
		s.collection, id,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query document: %w", err)
	}

	return decodeItem(data)
}

// Save creates or updates an item, assigning an id when absent.
func (s *ResourceStore) Save(ctx context.Context, item ports.Item) (ports.Item, error) {
	saved := item.Clone()
	if saved.ID() == "" {
		saved.SetID(s.ids.New())
	}

	data, err := json.Marshal(saved)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}

	now := s.clock.Now().UTC()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (collection, id, data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (collection, id) DO UPDATE SET
			data = excluded.data,
			updated_at = excluded.updated_at
	`, s.collection, saved.ID(), string(data), now, now)
	if err != nil {
		return nil, fmt.Errorf("upsert document: %w", err)
	}

	return saved, nil
}

// Remove deletes an item by id.
func (s *ResourceStore) Remove(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM documents WHERE collection = ? AND id = ?",
		s.collection, id,
	)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ports.ErrNotFound
	}
	return nil
}

// List returns all items in the collection ordered by id.
func (s *ResourceStore) List(ctx context.Context) ([]ports.Item, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT data FROM documents WHERE collection = ? ORDER BY id",
		s.collection,
	)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	var items []ports.Item
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		item, err := decodeItem(data)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func decodeItem(data string) (ports.Item, error) {
	var item ports.Item
	if err := json.Unmarshal([]byte(data), &item); err != nil {
		return nil, fmt.Errorf("unmarshal document: %w", err)
	}
	return item, nil
}

// Ensure interface compliance.
var _ ports.Collection = (*ResourceStore)(nil)
