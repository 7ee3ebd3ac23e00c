// Package importer turns raw card lists into canonical catalog holdings.
// It normalizes heterogeneous import shapes into pending entries, resolves
// them through the catalog's batch endpoint, and reconciles quantities back
// onto the canonical ids the catalog returns.
package importer

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/portalmtg/portal/internal/scryfall"
)

// PendingEntry is one normalized import record awaiting resolution.
// Set and CollectorNumber are optional; Quantity is always >= 1.
type PendingEntry struct {
	Name            string
	Set             string
	CollectorNumber string
	Quantity        int
}

// Holding maps canonical card ids to accumulated owned quantities.
// IDs preserves first-seen order for stable collection creation.
type Holding struct {
	IDs        []string
	Quantities map[string]int
}

// NewHolding returns an empty holding.
func NewHolding() Holding {
	return Holding{IDs: []string{}, Quantities: map[string]int{}}
}

// Add accumulates quantity for a canonical id.
func (h *Holding) Add(id string, quantity int) {
	if _, ok := h.Quantities[id]; !ok {
		h.IDs = append(h.IDs, id)
	}
	h.Quantities[id] += quantity
}

// Total returns the sum of all quantities in the holding.
func (h *Holding) Total() int {
	total := 0
	for _, q := range h.Quantities {
		total += q
	}
	return total
}

// lineRe captures an optional leading quantity and the card name.
var lineRe = regexp.MustCompile(`^(?:(\d+)\s+)?(.+)$`)

// numericRe matches a line that is only digits: a quantity with no name.
var numericRe = regexp.MustCompile(`^\d+$`)

// ParseTextLines parses line-oriented imports of the form "<qty>? <name>".
// Quantity defaults to 1 when absent or non-numeric. Lines with no
// extractable name are dropped and counted.
func ParseTextLines(text string) (entries []PendingEntry, skipped int) {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		m := lineRe.FindStringSubmatch(line)
		if m == nil || strings.TrimSpace(m[2]) == "" || numericRe.MatchString(m[2]) {
			skipped++
			continue
		}

		qty := 1
		if m[1] != "" {
			if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
				qty = n
			}
		}

		entries = append(entries, PendingEntry{
			Name:     strings.TrimSpace(m[2]),
			Quantity: qty,
		})
	}
	return entries, skipped
}

// Vendor CSV column layout: set code at 2, English name at 4, quantity
// at 5, collector number at 11.
const (
	csvColSetCode   = 2
	csvColName      = 4
	csvColQuantity  = 5
	csvColCollector = 11
)

// SetCodeMapper translates a vendor set code to a catalog set code.
type SetCodeMapper func(string) string

// ParseVendorCSV parses spreadsheet-style vendor rows. The vendor quotes
// cells that contain commas, so cells are split with a quote-aware scanner.
// A header row is detected by the "edicao" column title. mapCode may be nil,
// in which case set codes are lowercased as-is.
func ParseVendorCSV(text string, mapCode SetCodeMapper) (entries []PendingEntry, skipped int) {
	if mapCode == nil {
		mapCode = strings.ToLower
	}

	lines := []string{}
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return nil, 0
	}

	start := 0
	if strings.Contains(strings.ToLower(lines[0]), "edicao") {
		start = 1
	}

	for _, line := range lines[start:] {
		row := splitQuoted(line)
		if len(row) <= csvColQuantity {
			skipped++
			continue
		}

		name := row[csvColName]
		if name == "" {
			skipped++
			continue
		}

		qty, err := strconv.Atoi(row[csvColQuantity])
		if err != nil || qty < 1 {
			qty = 1
		}

		collector := ""
		if len(row) > csvColCollector {
			collector = row[csvColCollector]
		}

		entries = append(entries, PendingEntry{
			Name:            name,
			Set:             mapCode(row[csvColSetCode]),
			CollectorNumber: collector,
			Quantity:        qty,
		})
	}
	return entries, skipped
}

// splitQuoted splits a CSV row on commas, ignoring commas inside
// double-quoted cells, and strips the surrounding quotes.
func splitQuoted(line string) []string {
	var cells []string
	var cell strings.Builder
	inQuotes := false

	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == ',' && !inQuotes:
			cells = append(cells, strings.TrimSpace(cell.String()))
			cell.Reset()
		default:
			cell.WriteRune(r)
		}
	}
	cells = append(cells, strings.TrimSpace(cell.String()))
	return cells
}

// snapshot is the structured export shape carrying canonical ids directly.
type snapshot struct {
	Data struct {
		AllCards []struct {
			ID string `json:"id"`
		} `json:"all_cards"`
	} `json:"data"`
}

// ParseSnapshot parses a structured export that already names canonical ids,
// bypassing resolution entirely. Each occurrence of an id counts as
// quantity 1; duplicates accumulate. Records without an id are dropped and
// counted.
func ParseSnapshot(data []byte) (Holding, int, error) {
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return NewHolding(), 0, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	if snap.Data.AllCards == nil {
		return NewHolding(), 0, fmt.Errorf("snapshot missing data.all_cards array")
	}

	holding := NewHolding()
	skipped := 0
	for _, card := range snap.Data.AllCards {
		if card.ID == "" {
			skipped++
			continue
		}
		holding.Add(card.ID, 1)
	}
	return holding, skipped, nil
}

// BuildIdentifiers converts pending entries to catalog lookup keys using the
// priority rule: set+collector number, else name+set, else name only.
func BuildIdentifiers(pending []PendingEntry) []scryfall.CardIdentifier {
	identifiers := make([]scryfall.CardIdentifier, len(pending))
	for i, p := range pending {
		switch {
		case p.Set != "" && p.CollectorNumber != "":
			identifiers[i] = scryfall.CardIdentifier{Set: p.Set, CollectorNumber: p.CollectorNumber}
		case p.Set != "" && p.Name != "":
			identifiers[i] = scryfall.CardIdentifier{Name: p.Name, Set: p.Set}
		default:
			identifiers[i] = scryfall.CardIdentifier{Name: p.Name}
		}
	}
	return identifiers
}
