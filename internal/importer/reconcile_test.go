package importer

import (
	"reflect"
	"testing"

	"github.com/portalmtg/portal/internal/scryfall"
)

func TestReconcile_QuantitiesFollowEntries(t *testing.T) {
	pending := []PendingEntry{
		{Name: "Evolution Sage", Quantity: 2},
		{Name: "Devoted Druid", Quantity: 1},
	}
	resolved := []scryfall.Card{
		{ID: "druid-1", Name: "Devoted Druid"},
		{ID: "sage-1", Name: "Evolution Sage"},
	}

	holding, unresolved := Reconcile(pending, resolved)

	if unresolved != 0 {
		t.Errorf("Expected no unresolved entries, got %d", unresolved)
	}
	if holding.Quantities["sage-1"] != 2 {
		t.Errorf("Expected Evolution Sage quantity 2, got %d", holding.Quantities["sage-1"])
	}
	if holding.Quantities["druid-1"] != 1 {
		t.Errorf("Expected Devoted Druid quantity 1, got %d", holding.Quantities["druid-1"])
	}
}

func TestReconcile_UnmatchedEntryCountsUnresolved(t *testing.T) {
	pending := []PendingEntry{
		{Name: "Nonexistent Card", Quantity: 3},
		{Name: "Giant Growth", Quantity: 1},
	}
	resolved := []scryfall.Card{
		{ID: "gg-1", Name: "Giant Growth"},
	}

	holding, unresolved := Reconcile(pending, resolved)

	if unresolved != 1 {
		t.Errorf("Expected 1 unresolved entry, got %d", unresolved)
	}
	if holding.Total() != 1 {
		t.Errorf("Expected only Giant Growth in holding, total %d", holding.Total())
	}
}

func TestReconcile_EachEntryConsumedOnce(t *testing.T) {
	// One ambiguous name resolving to two printings must not double the
	// requested quantity.
	pending := []PendingEntry{
		{Name: "Lightning Bolt", Quantity: 4},
	}
	resolved := []scryfall.Card{
		{ID: "bolt-m10", Name: "Lightning Bolt", SetCode: "m10"},
		{ID: "bolt-2ed", Name: "Lightning Bolt", SetCode: "2ed"},
	}

	holding, unresolved := Reconcile(pending, resolved)

	if unresolved != 0 {
		t.Errorf("Expected no unresolved entries, got %d", unresolved)
	}
	if holding.Total() != 4 {
		t.Errorf("Expected holding total 4 (entry consumed once), got %d", holding.Total())
	}
	if len(holding.IDs) != 1 {
		t.Errorf("Expected a single canonical id, got %v", holding.IDs)
	}
}

func TestReconcile_HoldingNeverExceedsRequested(t *testing.T) {
	pending := []PendingEntry{
		{Name: "Llanowar Elves", Quantity: 2},
		{Name: "Llanowar Elves", Quantity: 3},
	}
	resolved := []scryfall.Card{
		{ID: "elves-1", Name: "Llanowar Elves"},
		{ID: "elves-1", Name: "Llanowar Elves"},
		{ID: "elves-1", Name: "Llanowar Elves"},
	}

	holding, _ := Reconcile(pending, resolved)

	requested := 0
	for _, p := range pending {
		requested += p.Quantity
	}
	if holding.Total() > requested {
		t.Errorf("Holding total %d exceeds requested total %d", holding.Total(), requested)
	}
	if holding.Quantities["elves-1"] != 5 {
		t.Errorf("Expected both entries consumed for 5 copies, got %d", holding.Quantities["elves-1"])
	}
}

func TestReconcile_ThreeTierMatching(t *testing.T) {
	pending := []PendingEntry{
		{Set: "war", CollectorNumber: "159", Quantity: 1},
		{Name: "Devoted Druid", Set: "mh1", Quantity: 2},
		{Name: "Giant Growth", Quantity: 3},
	}
	resolved := []scryfall.Card{
		{ID: "sage", Name: "Evolution Sage", SetCode: "WAR", CollectorNumber: "159"},
		{ID: "druid", Name: "devoted druid", SetCode: "MH1"},
		{ID: "growth", Name: "GIANT GROWTH", SetCode: "lea"},
	}

	holding, unresolved := Reconcile(pending, resolved)

	if unresolved != 0 {
		t.Fatalf("Expected case-insensitive matches on every tier, %d unresolved", unresolved)
	}
	want := map[string]int{"sage": 1, "druid": 2, "growth": 3}
	if !reflect.DeepEqual(holding.Quantities, want) {
		t.Errorf("Unexpected quantities:\n got %v\nwant %v", holding.Quantities, want)
	}
}

func TestReconcile_Deterministic(t *testing.T) {
	pending := []PendingEntry{
		{Name: "Forest", Quantity: 1},
		{Name: "Forest", Quantity: 2},
	}
	resolved := []scryfall.Card{
		{ID: "forest-a", Name: "Forest"},
		{ID: "forest-b", Name: "Forest"},
	}

	first, _ := Reconcile(pending, resolved)
	for i := 0; i < 10; i++ {
		again, _ := Reconcile(pending, resolved)
		if !reflect.DeepEqual(first.Quantities, again.Quantities) {
			t.Fatalf("Reconcile not deterministic: %v vs %v", first.Quantities, again.Quantities)
		}
	}

	// First card consumes the first entry, second card the second.
	if first.Quantities["forest-a"] != 1 || first.Quantities["forest-b"] != 2 {
		t.Errorf("Expected in-order consumption, got %v", first.Quantities)
	}
}

func TestReconcile_Empty(t *testing.T) {
	holding, unresolved := Reconcile(nil, nil)

	if holding.Total() != 0 || unresolved != 0 {
		t.Errorf("Expected empty result, got total %d unresolved %d", holding.Total(), unresolved)
	}
}
