package importwatch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/portalmtg/portal/internal/collection"
	"github.com/portalmtg/portal/internal/events"
	"github.com/portalmtg/portal/internal/importer"
	"github.com/portalmtg/portal/internal/scryfall"
)

type nameResolver struct {
	cards map[string]scryfall.Card
}

func (r *nameResolver) ResolveIdentifiers(_ context.Context, identifiers []scryfall.CardIdentifier) []scryfall.Card {
	var cards []scryfall.Card
	for _, id := range identifiers {
		if card, ok := r.cards[strings.ToLower(id.Name)]; ok {
			cards = append(cards, card)
		}
	}
	return cards
}

type memoryRemote struct {
	mu   sync.Mutex
	cols map[string]*collection.Collection
}

func newMemoryRemote() *memoryRemote {
	return &memoryRemote{cols: make(map[string]*collection.Collection)}
}

func (r *memoryRemote) CreateCollection(_ context.Context, col *collection.Collection) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cols[col.ID] = col.Clone()
	return nil
}

func (r *memoryRemote) DeleteCollection(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.cols, id)
	return nil
}

func (r *memoryRemote) ApplyCardOperation(_ context.Context, _ collection.CardOperation) error {
	return nil
}

func (r *memoryRemote) ListCollections(_ context.Context) ([]*collection.Collection, error) {
	return []*collection.Collection{}, nil
}

type importObserver struct {
	mu     sync.Mutex
	events []events.Event
}

func (o *importObserver) OnEvent(event events.Event) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, event)
	return nil
}

func (o *importObserver) Name() string { return "importObserver" }

func (o *importObserver) ShouldHandle(eventType string) bool {
	return eventType == events.TypeImportCompleted
}

func newTestWatcher(t *testing.T) (*Watcher, *collection.Manager, *importObserver, string) {
	t.Helper()

	dir := t.TempDir()
	resolver := &nameResolver{cards: map[string]scryfall.Card{
		"evolution sage": {ID: "sage-1", Name: "Evolution Sage", SetCode: "war"},
		"devoted druid":  {ID: "druid-1", Name: "Devoted Druid", SetCode: "shm"},
	}}
	svc := importer.NewService(resolver, nil)

	manager := collection.NewManager(newMemoryRemote(), nil)
	dispatcher := events.NewDispatcher()
	observer := &importObserver{}
	dispatcher.Register(observer)

	w, err := New(dir, svc, manager, dispatcher)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return w, manager, observer, dir
}

func TestNewRejectsMissingDir(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing"), nil, nil, nil)
	if err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestNewRejectsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not-a-dir.txt")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := New(path, nil, nil, nil)
	if err == nil || !strings.Contains(err.Error(), "not a directory") {
		t.Fatalf("expected not-a-directory error, got %v", err)
	}
}

func TestSupportedFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"deck.txt", true},
		{"export.CSV", true},
		{"snapshot.json", true},
		{"notes.md", false},
		{"deck.txt.swp", false},
		{"noext", false},
	}

	for _, tt := range tests {
		if got := supportedFile(tt.path); got != tt.want {
			t.Errorf("supportedFile(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestImportFileText(t *testing.T) {
	w, manager, observer, dir := newTestWatcher(t)

	path := filepath.Join(dir, "my binder.txt")
	content := "2 Evolution Sage\n1 Devoted Druid\n1 Imaginary Card\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	w.importFile(context.Background(), path)
	manager.Flush()

	cols := manager.List()
	if len(cols) != 1 {
		t.Fatalf("expected 1 collection, got %d", len(cols))
	}
	col := cols[0]
	if col.Name != "my binder" {
		t.Errorf("collection name = %q, want %q", col.Name, "my binder")
	}
	if col.Quantities["sage-1"] != 2 {
		t.Errorf("sage quantity = %d, want 2", col.Quantities["sage-1"])
	}
	if col.Quantities["druid-1"] != 1 {
		t.Errorf("druid quantity = %d, want 1", col.Quantities["druid-1"])
	}

	observer.mu.Lock()
	defer observer.mu.Unlock()
	if len(observer.events) != 1 {
		t.Fatalf("expected 1 import event, got %d", len(observer.events))
	}
	payload, ok := observer.events[0].Data.(events.ImportCompleted)
	if !ok {
		t.Fatalf("unexpected payload type %T", observer.events[0].Data)
	}
	if payload.CollectionID != col.ID {
		t.Errorf("event collection id = %q, want %q", payload.CollectionID, col.ID)
	}
	if payload.Resolved != 2 || payload.Unresolved != 1 {
		t.Errorf("event counts = %d resolved / %d unresolved, want 2/1", payload.Resolved, payload.Unresolved)
	}
}

func TestImportFileSnapshot(t *testing.T) {
	w, manager, _, dir := newTestWatcher(t)

	path := filepath.Join(dir, "backup.json")
	content := `{"data":{"all_cards":[{"id":"sage-1"},{"id":"sage-1"},{"id":"sage-1"},{"id":"druid-1"}]}}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	w.importFile(context.Background(), path)
	manager.Flush()

	cols := manager.List()
	if len(cols) != 1 {
		t.Fatalf("expected 1 collection, got %d", len(cols))
	}
	if cols[0].Quantities["sage-1"] != 3 {
		t.Errorf("sage quantity = %d, want 3", cols[0].Quantities["sage-1"])
	}
}

func TestImportFileMalformedSnapshot(t *testing.T) {
	w, manager, observer, dir := newTestWatcher(t)

	path := filepath.Join(dir, "broken.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	w.importFile(context.Background(), path)
	manager.Flush()

	if len(manager.List()) != 0 {
		t.Error("malformed snapshot created a collection")
	}
	observer.mu.Lock()
	defer observer.mu.Unlock()
	if len(observer.events) != 0 {
		t.Error("malformed snapshot dispatched an import event")
	}
}
