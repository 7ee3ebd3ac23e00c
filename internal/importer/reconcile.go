package importer

import (
	"strings"

	"github.com/portalmtg/portal/internal/scryfall"
)

// Reconcile matches resolved canonical cards back to the pending entries
// that produced them and accumulates quantities per canonical id.
//
// Each resolved card consumes the first not-yet-consumed pending entry that
// matches it under the same three-tier rule used to build the lookup key:
// set + collector number equality, else name + set equality, else name
// equality, all case-insensitive. Consuming an entry at most once keeps the
// invariant sum(holding quantities) <= sum(requested quantities) even when
// an ambiguous name resolves to several printings.
//
// Entries never consumed contribute nothing and are reported as the
// unresolved count. The catalog does not preserve request order within a
// chunk, so matching is by content, never by position.
func Reconcile(pending []PendingEntry, resolved []scryfall.Card) (Holding, int) {
	holding := NewHolding()
	consumed := make([]bool, len(pending))

	for _, card := range resolved {
		idx := -1
		for i, p := range pending {
			if consumed[i] {
				continue
			}
			if matches(p, card) {
				idx = i
				break
			}
		}
		if idx < 0 {
			continue
		}
		consumed[idx] = true
		holding.Add(card.ID, pending[idx].Quantity)
	}

	unresolved := 0
	for _, c := range consumed {
		if !c {
			unresolved++
		}
	}
	return holding, unresolved
}

// matches applies the three-tier content match between a pending entry and
// a canonical card.
func matches(p PendingEntry, card scryfall.Card) bool {
	if p.Set != "" && p.CollectorNumber != "" {
		return strings.EqualFold(p.Set, card.SetCode) && p.CollectorNumber == card.CollectorNumber
	}
	if p.Set != "" && p.Name != "" {
		return strings.EqualFold(p.Name, card.Name) && strings.EqualFold(p.Set, card.SetCode)
	}
	return p.Name != "" && strings.EqualFold(p.Name, card.Name)
}
