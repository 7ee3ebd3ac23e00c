package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SavedSearch is a named search criteria set kept across sessions.
type SavedSearch struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Criteria  json.RawMessage `json:"criteria"`
	CreatedAt time.Time       `json:"createdAt"`
}

// SaveSearch stores a search under a fresh id and returns it.
func (s *Store) SaveSearch(ctx context.Context, name string, criteria json.RawMessage) (*SavedSearch, error) {
	if len(criteria) == 0 {
		criteria = json.RawMessage("{}")
	}

	search := &SavedSearch{
		ID:        uuid.NewString(),
		Name:      name,
		Criteria:  criteria,
		CreatedAt: time.Now(),
	}

	_, err := s.db.Conn().ExecContext(ctx, `
		INSERT INTO saved_searches (id, name, criteria, created_at)
		VALUES (?, ?, ?, ?)`,
		search.ID, search.Name, string(search.Criteria), search.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to save search: %w", err)
	}
	return search, nil
}

// ListSearches returns all saved searches, newest first.
func (s *Store) ListSearches(ctx context.Context) ([]*SavedSearch, error) {
	rows, err := s.db.Conn().QueryContext(ctx, `
		SELECT id, name, criteria, created_at
		FROM saved_searches
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list searches: %w", err)
	}
	defer func() { _ = rows.Close() }()

	searches := []*SavedSearch{}
	for rows.Next() {
		var search SavedSearch
		var criteria string
		if err := rows.Scan(&search.ID, &search.Name, &criteria, &search.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan search: %w", err)
		}
		search.Criteria = json.RawMessage(criteria)
		searches = append(searches, &search)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate searches: %w", err)
	}
	return searches, nil
}

// DeleteSearch removes a saved search.
func (s *Store) DeleteSearch(ctx context.Context, id string) error {
	result, err := s.db.Conn().ExecContext(ctx, `DELETE FROM saved_searches WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete search: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("search %s not found", id)
	}
	return nil
}
