package store

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portalmtg/portal/internal/collection"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	cfg := DefaultConfig(filepath.Join(t.TempDir(), "portal.db"))
	cfg.AutoMigrate = true

	db, err := Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewStore(db)
}

func newStoredCollection(name string) *collection.Collection {
	now := time.Now()
	return &collection.Collection{
		ID:           uuid.NewString(),
		Name:         name,
		OwnedCardIDs: []string{},
		Quantities:   map[string]int{},
		BuyListIDs:   []string{},
		PrintListIDs: []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestCreateAndGetCollection(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	col := newStoredCollection("Modern Staples")
	col.FilterType = "set"
	col.FilterValue = "mh3"
	col.OwnedCardIDs = []string{"card-1", "card-2"}
	col.Quantities = map[string]int{"card-1": 4, "card-2": 1}
	col.BuyListIDs = []string{"card-3"}

	require.NoError(t, store.CreateCollection(ctx, col))

	got, err := store.GetCollection(ctx, col.ID)
	require.NoError(t, err)

	assert.Equal(t, col.ID, got.ID)
	assert.Equal(t, "Modern Staples", got.Name)
	assert.Equal(t, "set", got.FilterType)
	assert.Equal(t, "mh3", got.FilterValue)
	assert.Equal(t, []string{"card-1", "card-2"}, got.OwnedCardIDs)
	assert.Equal(t, map[string]int{"card-1": 4, "card-2": 1}, got.Quantities)
	assert.Equal(t, []string{"card-3"}, got.BuyListIDs)
	assert.Empty(t, got.PrintListIDs)
}

func TestGetCollectionNotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.GetCollection(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestListCollectionsOrderedByCreation(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	first := newStoredCollection("First")
	first.CreatedAt = time.Now().Add(-time.Hour)
	second := newStoredCollection("Second")

	require.NoError(t, store.CreateCollection(ctx, second))
	require.NoError(t, store.CreateCollection(ctx, first))

	cols, err := store.ListCollections(ctx)
	require.NoError(t, err)
	require.Len(t, cols, 2)
	assert.Equal(t, "First", cols[0].Name)
	assert.Equal(t, "Second", cols[1].Name)
}

func TestListCollectionsEmpty(t *testing.T) {
	store := setupTestStore(t)

	cols, err := store.ListCollections(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, cols)
	assert.Empty(t, cols)
}

func TestDeleteCollection(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	col := newStoredCollection("Doomed")
	require.NoError(t, store.CreateCollection(ctx, col))

	require.NoError(t, store.DeleteCollection(ctx, col.ID))

	_, err := store.GetCollection(ctx, col.ID)
	assert.Error(t, err)
}

func TestDeleteCollectionNotFound(t *testing.T) {
	store := setupTestStore(t)

	err := store.DeleteCollection(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestApplyCardOperationPersists(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	col := newStoredCollection("Mutable")
	require.NoError(t, store.CreateCollection(ctx, col))

	apply := func(cardID string, action collection.Action, qty int) error {
		return store.ApplyCardOperation(ctx, collection.CardOperation{
			CollectionID: col.ID,
			CardID:       cardID,
			Action:       action,
			Quantity:     qty,
		})
	}

	require.NoError(t, apply("card-1", collection.ActionAdd, 2))
	require.NoError(t, apply("card-1", collection.ActionAdd, 1))
	require.NoError(t, apply("card-2", collection.ActionAdd, 0))
	require.NoError(t, apply("card-1", collection.ActionUpdate, 4))
	require.NoError(t, apply("card-3", collection.ActionAddToBuy, 0))
	require.NoError(t, apply("card-3", collection.ActionAddToBuy, 0))
	require.NoError(t, apply("card-1", collection.ActionAddToPrint, 0))
	require.NoError(t, apply("card-2", collection.ActionRemove, 0))

	got, err := store.GetCollection(ctx, col.ID)
	require.NoError(t, err)

	assert.Equal(t, []string{"card-1"}, got.OwnedCardIDs)
	assert.Equal(t, map[string]int{"card-1": 4}, got.Quantities)
	assert.Equal(t, []string{"card-3"}, got.BuyListIDs)
	assert.Equal(t, []string{"card-1"}, got.PrintListIDs)
	assert.False(t, got.UpdatedAt.Before(col.UpdatedAt))
}

func TestApplyCardOperationRejectsUnknownAction(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	col := newStoredCollection("Guarded")
	require.NoError(t, store.CreateCollection(ctx, col))

	err := store.ApplyCardOperation(ctx, collection.CardOperation{
		CollectionID: col.ID,
		CardID:       "card-1",
		Action:       "obliterate",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown action")
}

func TestApplyCardOperationUpdateNotOwned(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	col := newStoredCollection("Strict")
	require.NoError(t, store.CreateCollection(ctx, col))

	err := store.ApplyCardOperation(ctx, collection.CardOperation{
		CollectionID: col.ID,
		CardID:       "card-1",
		Action:       collection.ActionUpdate,
		Quantity:     3,
	})
	require.Error(t, err)

	got, err := store.GetCollection(ctx, col.ID)
	require.NoError(t, err)
	assert.Empty(t, got.OwnedCardIDs)
}

func TestApplyCardOperationMissingCollection(t *testing.T) {
	store := setupTestStore(t)

	err := store.ApplyCardOperation(context.Background(), collection.CardOperation{
		CollectionID: "missing",
		CardID:       "card-1",
		Action:       collection.ActionAdd,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSaveAndListSearches(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	first, err := store.SaveSearch(ctx, "burn spells", json.RawMessage(`{"colors":["R"],"cmcMax":3}`))
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)

	// Nudge created_at apart so DESC ordering is deterministic.
	time.Sleep(5 * time.Millisecond)

	second, err := store.SaveSearch(ctx, "counterspells", nil)
	require.NoError(t, err)
	assert.Equal(t, json.RawMessage("{}"), second.Criteria)

	searches, err := store.ListSearches(ctx)
	require.NoError(t, err)
	require.Len(t, searches, 2)
	assert.Equal(t, "counterspells", searches[0].Name)
	assert.Equal(t, "burn spells", searches[1].Name)
	assert.JSONEq(t, `{"colors":["R"],"cmcMax":3}`, string(searches[1].Criteria))
}

func TestDeleteSearch(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	search, err := store.SaveSearch(ctx, "ramp", json.RawMessage(`{}`))
	require.NoError(t, err)

	require.NoError(t, store.DeleteSearch(ctx, search.ID))

	searches, err := store.ListSearches(ctx)
	require.NoError(t, err)
	assert.Empty(t, searches)
}

func TestDeleteSearchNotFound(t *testing.T) {
	store := setupTestStore(t)

	err := store.DeleteSearch(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
