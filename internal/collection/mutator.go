package collection

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/portalmtg/portal/internal/events"
)

// Remote is the persistence facade the mutator synchronizes against.
type Remote interface {
	CreateCollection(ctx context.Context, col *Collection) error
	DeleteCollection(ctx context.Context, id string) error
	ApplyCardOperation(ctx context.Context, op CardOperation) error
	ListCollections(ctx context.Context) ([]*Collection, error)
}

// Manager holds the in-memory collection list and applies the optimistic
// mutation protocol: every card operation mutates local state first, then
// the identical operation is dispatched to the remote store without
// blocking the caller. A remote failure is surfaced through the
// collection's sync state and a collection:sync_failed event; the local
// mutation is never rolled back.
type Manager struct {
	mu         sync.Mutex
	remote     Remote
	dispatcher *events.Dispatcher

	collections []*Collection
	activeID    string

	// pendingOps counts in-flight remote calls per collection id so a
	// burst of rapid operations settles to Synced only once all of them
	// have come back.
	pendingOps map[string]int

	wg sync.WaitGroup
}

// NewManager creates a collection manager. dispatcher may be nil.
func NewManager(remote Remote, dispatcher *events.Dispatcher) *Manager {
	return &Manager{
		remote:     remote,
		dispatcher: dispatcher,
		pendingOps: make(map[string]int),
	}
}

// Load replaces local state with the collections held by the remote store.
func (m *Manager) Load(ctx context.Context) error {
	cols, err := m.remote.ListCollections(ctx)
	if err != nil {
		return fmt.Errorf("failed to load collections: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.collections = cols
	for _, col := range m.collections {
		col.SyncState = SyncStateSynced
	}
	if m.activeID == "" && len(m.collections) > 0 {
		m.activeID = m.collections[0].ID
	}
	return nil
}

// List returns deep copies of all collections.
func (m *Manager) List() []*Collection {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Collection, len(m.collections))
	for i, col := range m.collections {
		out[i] = col.Clone()
	}
	return out
}

// Get returns a deep copy of one collection.
func (m *Manager) Get(id string) (*Collection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	col := m.find(id)
	if col == nil {
		return nil, fmt.Errorf("collection %s not found", id)
	}
	return col.Clone(), nil
}

// ActiveID returns the currently selected collection id, if any.
func (m *Manager) ActiveID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activeID
}

// SetActive selects a collection.
func (m *Manager) SetActive(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.find(id) == nil {
		return fmt.Errorf("collection %s not found", id)
	}
	m.activeID = id
	return nil
}

// Create creates an empty collection. Creation is remote-first: if the
// store rejects it, nothing is added locally.
func (m *Manager) Create(ctx context.Context, name, filterType, filterValue, query string) (*Collection, error) {
	return m.create(ctx, name, filterType, filterValue, query, nil, nil)
}

// CreateFromImport creates a collection whose owned cards and quantities
// come from a reconciled import run, set atomically in one shot rather than
// replayed as individual add operations.
func (m *Manager) CreateFromImport(ctx context.Context, name string, ids []string, quantities map[string]int) (*Collection, error) {
	return m.create(ctx, name, "list", "Imported", "(custom list)", ids, quantities)
}

func (m *Manager) create(ctx context.Context, name, filterType, filterValue, query string, ids []string, quantities map[string]int) (*Collection, error) {
	if name == "" {
		return nil, fmt.Errorf("collection name is required")
	}
	if ids == nil {
		ids = []string{}
	}
	if quantities == nil {
		quantities = map[string]int{}
	}

	now := time.Now()
	col := &Collection{
		ID:           uuid.NewString(),
		Name:         name,
		FilterType:   filterType,
		FilterValue:  filterValue,
		Query:        query,
		OwnedCardIDs: append([]string{}, ids...),
		Quantities:   quantities,
		BuyListIDs:   []string{},
		PrintListIDs: []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
		SyncState:    SyncStateSynced,
	}

	if err := m.remote.CreateCollection(ctx, col); err != nil {
		return nil, fmt.Errorf("failed to create collection: %w", err)
	}

	m.mu.Lock()
	m.collections = append(m.collections, col)
	m.activeID = col.ID
	m.mu.Unlock()

	if m.dispatcher != nil {
		m.dispatcher.Dispatch(events.Event{
			Type: events.TypeCollectionCreated,
			Data: events.CollectionCreated{CollectionID: col.ID, Name: col.Name, CardCount: len(col.OwnedCardIDs)},
		})
	}
	return col.Clone(), nil
}

// Delete removes a collection locally first, reassigning the active
// selection when the deleted collection was active, then issues the remote
// delete. A remote failure is surfaced but the local entry is not restored.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	col := m.find(id)
	if col == nil {
		m.mu.Unlock()
		return fmt.Errorf("collection %s not found", id)
	}

	remaining := m.collections[:0]
	for _, c := range m.collections {
		if c.ID != id {
			remaining = append(remaining, c)
		}
	}
	m.collections = remaining
	if m.activeID == id {
		m.activeID = ""
		if len(m.collections) > 0 {
			m.activeID = m.collections[0].ID
		}
	}
	m.mu.Unlock()

	if m.dispatcher != nil {
		m.dispatcher.Dispatch(events.Event{
			Type: events.TypeCollectionDeleted,
			Data: events.CollectionDeleted{CollectionID: id},
		})
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		if err := m.remote.DeleteCollection(context.Background(), id); err != nil {
			log.Printf("[Collection] Remote delete failed for %s: %v", id, err)
			m.surfaceFailure(id, "delete", err)
		}
	}()
	return nil
}

// Apply runs one card operation: validate, mutate locally, then dispatch
// the identical operation to the remote store in the background.
func (m *Manager) Apply(op CardOperation) error {
	if !ValidAction(op.Action) {
		return fmt.Errorf("unknown action %q", op.Action)
	}
	if op.CardID == "" {
		return fmt.Errorf("card id is required")
	}

	m.mu.Lock()
	col := m.find(op.CollectionID)
	if col == nil {
		m.mu.Unlock()
		return fmt.Errorf("collection %s not found", op.CollectionID)
	}
	if err := col.Apply(op); err != nil {
		m.mu.Unlock()
		return err
	}
	col.SyncState = SyncStatePending
	m.pendingOps[col.ID]++
	m.mu.Unlock()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		err := m.remote.ApplyCardOperation(context.Background(), op)

		m.mu.Lock()
		m.pendingOps[op.CollectionID]--
		settled := m.pendingOps[op.CollectionID] == 0
		if c := m.find(op.CollectionID); c != nil {
			if err != nil {
				c.SyncState = SyncStateFailed
				c.SyncError = err.Error()
			} else if settled && c.SyncState != SyncStateFailed {
				c.SyncState = SyncStateSynced
				c.SyncError = ""
			}
		}
		m.mu.Unlock()

		if err != nil {
			log.Printf("[Collection] Remote sync failed for %s %s: %v", op.Action, op.CollectionID, err)
			m.surfaceFailure(op.CollectionID, string(op.Action), err)
		}
	}()
	return nil
}

// Convenience wrappers for the seven actions.

func (m *Manager) AddCard(collectionID, cardID string, quantity int) error {
	return m.Apply(CardOperation{CollectionID: collectionID, CardID: cardID, Action: ActionAdd, Quantity: quantity})
}

func (m *Manager) RemoveCard(collectionID, cardID string) error {
	return m.Apply(CardOperation{CollectionID: collectionID, CardID: cardID, Action: ActionRemove})
}

func (m *Manager) UpdateQuantity(collectionID, cardID string, quantity int) error {
	return m.Apply(CardOperation{CollectionID: collectionID, CardID: cardID, Action: ActionUpdate, Quantity: quantity})
}

func (m *Manager) AddToBuy(collectionID, cardID string) error {
	return m.Apply(CardOperation{CollectionID: collectionID, CardID: cardID, Action: ActionAddToBuy})
}

func (m *Manager) RemoveFromBuy(collectionID, cardID string) error {
	return m.Apply(CardOperation{CollectionID: collectionID, CardID: cardID, Action: ActionRemoveFromBuy})
}

func (m *Manager) AddToPrint(collectionID, cardID string) error {
	return m.Apply(CardOperation{CollectionID: collectionID, CardID: cardID, Action: ActionAddToPrint})
}

func (m *Manager) RemoveFromPrint(collectionID, cardID string) error {
	return m.Apply(CardOperation{CollectionID: collectionID, CardID: cardID, Action: ActionRemoveFromPrint})
}

// Flush blocks until every in-flight remote call has completed. Used at
// shutdown and by tests.
func (m *Manager) Flush() {
	m.wg.Wait()
}

func (m *Manager) surfaceFailure(collectionID, action string, err error) {
	if m.dispatcher == nil {
		return
	}
	m.dispatcher.Dispatch(events.Event{
		Type: events.TypeCollectionSyncFailed,
		Data: events.CollectionSyncFailed{CollectionID: collectionID, Action: action, Error: err.Error()},
	})
}

// find returns the collection with the given id. Caller holds m.mu.
func (m *Manager) find(id string) *Collection {
	for _, col := range m.collections {
		if col.ID == id {
			return col
		}
	}
	return nil
}
