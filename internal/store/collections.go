package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/portalmtg/portal/internal/collection"
)

// Store provides collection and saved-search persistence. It satisfies
// collection.Remote.
type Store struct {
	db *DB
}

// NewStore creates a store over an open database.
func NewStore(db *DB) *Store {
	return &Store{db: db}
}

// CreateCollection inserts a new collection row.
func (s *Store) CreateCollection(ctx context.Context, col *collection.Collection) error {
	owned, quantities, buy, print, err := encodeLists(col)
	if err != nil {
		return err
	}

	_, err = s.db.Conn().ExecContext(ctx, `
		INSERT INTO collections
			(id, name, filter_type, filter_value, query,
			 owned_card_ids, quantities, buy_list_ids, print_list_ids,
			 created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		col.ID, col.Name, col.FilterType, col.FilterValue, col.Query,
		owned, quantities, buy, print,
		col.CreatedAt, col.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}
	return nil
}

// DeleteCollection removes a collection row.
func (s *Store) DeleteCollection(ctx context.Context, id string) error {
	result, err := s.db.Conn().ExecContext(ctx, `DELETE FROM collections WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("collection %s not found", id)
	}
	return nil
}

// ApplyCardOperation re-applies a card operation to the durable copy of
// the collection inside a transaction, using the same action semantics as
// the in-memory mutator.
func (s *Store) ApplyCardOperation(ctx context.Context, op collection.CardOperation) error {
	if !collection.ValidAction(op.Action) {
		return fmt.Errorf("unknown action %q", op.Action)
	}

	tx, err := s.db.Conn().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	col, err := scanCollection(tx.QueryRowContext(ctx, selectCollection+` WHERE id = ?`, op.CollectionID))
	if err != nil {
		return err
	}

	if err := col.Apply(op); err != nil {
		return err
	}

	owned, quantities, buy, print, err := encodeLists(col)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE collections
		SET owned_card_ids = ?, quantities = ?, buy_list_ids = ?, print_list_ids = ?, updated_at = ?
		WHERE id = ?`,
		owned, quantities, buy, print, time.Now(), op.CollectionID,
	)
	if err != nil {
		return fmt.Errorf("failed to update collection: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit card operation: %w", err)
	}
	return nil
}

// GetCollection loads one collection by id.
func (s *Store) GetCollection(ctx context.Context, id string) (*collection.Collection, error) {
	return scanCollection(s.db.Conn().QueryRowContext(ctx, selectCollection+` WHERE id = ?`, id))
}

// ListCollections loads all collections ordered by creation time.
func (s *Store) ListCollections(ctx context.Context) ([]*collection.Collection, error) {
	rows, err := s.db.Conn().QueryContext(ctx, selectCollection+` ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var cols []*collection.Collection
	for rows.Next() {
		col, err := scanCollection(rows)
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate collections: %w", err)
	}
	if cols == nil {
		cols = []*collection.Collection{}
	}
	return cols, nil
}

const selectCollection = `
	SELECT id, name, filter_type, filter_value, query,
	       owned_card_ids, quantities, buy_list_ids, print_list_ids,
	       created_at, updated_at
	FROM collections`

// rowScanner abstracts *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanCollection(row rowScanner) (*collection.Collection, error) {
	var col collection.Collection
	var owned, quantities, buy, print string

	err := row.Scan(
		&col.ID, &col.Name, &col.FilterType, &col.FilterValue, &col.Query,
		&owned, &quantities, &buy, &print,
		&col.CreatedAt, &col.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("collection not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan collection: %w", err)
	}

	if err := json.Unmarshal([]byte(owned), &col.OwnedCardIDs); err != nil {
		return nil, fmt.Errorf("failed to decode owned card ids: %w", err)
	}
	if err := json.Unmarshal([]byte(quantities), &col.Quantities); err != nil {
		return nil, fmt.Errorf("failed to decode quantities: %w", err)
	}
	if err := json.Unmarshal([]byte(buy), &col.BuyListIDs); err != nil {
		return nil, fmt.Errorf("failed to decode buy list: %w", err)
	}
	if err := json.Unmarshal([]byte(print), &col.PrintListIDs); err != nil {
		return nil, fmt.Errorf("failed to decode print list: %w", err)
	}

	return &col, nil
}

func encodeLists(col *collection.Collection) (owned, quantities, buy, print string, err error) {
	ownedBytes, err := json.Marshal(col.OwnedCardIDs)
	if err != nil {
		return "", "", "", "", fmt.Errorf("failed to encode owned card ids: %w", err)
	}
	quantityBytes, err := json.Marshal(col.Quantities)
	if err != nil {
		return "", "", "", "", fmt.Errorf("failed to encode quantities: %w", err)
	}
	buyBytes, err := json.Marshal(col.BuyListIDs)
	if err != nil {
		return "", "", "", "", fmt.Errorf("failed to encode buy list: %w", err)
	}
	printBytes, err := json.Marshal(col.PrintListIDs)
	if err != nil {
		return "", "", "", "", fmt.Errorf("failed to encode print list: %w", err)
	}
	return string(ownedBytes), string(quantityBytes), string(buyBytes), string(printBytes), nil
}
