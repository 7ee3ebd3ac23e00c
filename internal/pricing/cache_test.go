package pricing

import (
	"strings"
	"testing"
)

func TestSessionCache_PutGet(t *testing.T) {
	cache := NewSessionCache()

	cache.Put(PriceKey("Evolution Sage", "war"), 12.5)

	var price float64
	if !cache.Get(PriceKey("Evolution Sage", "war"), &price) {
		t.Fatal("Expected cache hit")
	}
	if price != 12.5 {
		t.Errorf("Expected 12.5, got %v", price)
	}

	if cache.Get(PriceKey("Other Card", "war"), &price) {
		t.Error("Expected cache miss for unknown key")
	}
}

func TestSessionCache_StructValues(t *testing.T) {
	type payload struct {
		Names []string `json:"names"`
	}

	cache := NewSessionCache()
	cache.Put(SearchKey("t:elf"), payload{Names: []string{"Llanowar Elves"}})

	var got payload
	if !cache.Get(SearchKey("t:elf"), &got) {
		t.Fatal("Expected cache hit")
	}
	if len(got.Names) != 1 || got.Names[0] != "Llanowar Elves" {
		t.Errorf("Round trip mangled value: %+v", got)
	}
}

func TestSessionCache_ClearOnlyPrefix(t *testing.T) {
	cache := NewSessionCache()
	cache.Put(PriceKey("a", "b"), 1.0)
	cache.Put(SetsKey(), []string{"war"})
	cache.Put("unrelated_key", "kept")

	cleared := cache.Clear()

	if cleared != 2 {
		t.Errorf("Expected 2 cleared entries, got %d", cleared)
	}
	var kept string
	if !cache.Get("unrelated_key", &kept) || kept != "kept" {
		t.Error("Expected non-prefixed key to survive Clear")
	}
	if cache.Len() != 1 {
		t.Errorf("Expected 1 remaining entry, got %d", cache.Len())
	}
}

func TestSessionCache_Delete(t *testing.T) {
	cache := NewSessionCache()
	cache.Put(RulingsKey("abc"), []string{"ruling"})

	cache.Delete(RulingsKey("abc"))

	var v []string
	if cache.Get(RulingsKey("abc"), &v) {
		t.Error("Expected key to be gone after Delete")
	}
}

func TestKeyBuilders_CarryPrefix(t *testing.T) {
	keys := []string{
		SearchKey("q"),
		PriceKey("name", "set"),
		RulingsKey("id"),
		SetsKey(),
		CreatureTypesKey(),
	}
	for _, key := range keys {
		if !strings.HasPrefix(key, CachePrefix) {
			t.Errorf("Key %q missing namespace prefix", key)
		}
	}
}
