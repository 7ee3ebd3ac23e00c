package importer

import (
	"context"
	"log"

	"github.com/portalmtg/portal/internal/scryfall"
)

// Resolver is the catalog contract the import pipeline depends on.
// *scryfall.Client satisfies it.
type Resolver interface {
	ResolveIdentifiers(ctx context.Context, identifiers []scryfall.CardIdentifier) []scryfall.Card
}

// Service runs the full import pipeline: normalize, resolve, reconcile.
type Service struct {
	resolver Resolver
	mapCode  SetCodeMapper
}

// NewService creates an import service. mapCode may be nil.
func NewService(resolver Resolver, mapCode SetCodeMapper) *Service {
	return &Service{resolver: resolver, mapCode: mapCode}
}

// Result summarizes one import run.
type Result struct {
	Holding    Holding
	Resolved   int // canonical cards matched with quantity
	Unresolved int // pending entries with no matching card
	Skipped    int // malformed records dropped at normalization
}

// ImportText imports a line-oriented "<qty>? <name>" list.
func (s *Service) ImportText(ctx context.Context, text string) Result {
	entries, skipped := ParseTextLines(text)
	return s.resolve(ctx, entries, skipped)
}

// ImportCSV imports spreadsheet-style vendor rows.
func (s *Service) ImportCSV(ctx context.Context, text string) Result {
	entries, skipped := ParseVendorCSV(text, s.mapCode)
	return s.resolve(ctx, entries, skipped)
}

// ImportSnapshot imports a structured export carrying canonical ids,
// bypassing catalog resolution.
func (s *Service) ImportSnapshot(data []byte) (Result, error) {
	holding, skipped, err := ParseSnapshot(data)
	if err != nil {
		return Result{Holding: NewHolding()}, err
	}
	return Result{
		Holding:  holding,
		Resolved: len(holding.IDs),
		Skipped:  skipped,
	}, nil
}

func (s *Service) resolve(ctx context.Context, entries []PendingEntry, skipped int) Result {
	if len(entries) == 0 {
		return Result{Holding: NewHolding(), Skipped: skipped}
	}

	cards := s.resolver.ResolveIdentifiers(ctx, BuildIdentifiers(entries))
	holding, unresolved := Reconcile(entries, cards)

	if unresolved > 0 || skipped > 0 {
		log.Printf("[Importer] Import finished: %d resolved, %d unresolved, %d skipped",
			len(holding.IDs), unresolved, skipped)
	}

	return Result{
		Holding:    holding,
		Resolved:   len(holding.IDs),
		Unresolved: unresolved,
		Skipped:    skipped,
	}
}
