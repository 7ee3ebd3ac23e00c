// Package collection implements the collection mutator: optimistic local
// ownership state for owned/buy/print lists, synchronized to a durable
// remote store through a fixed set of card-operation actions.
package collection

import (
	"fmt"
	"time"
)

// SyncState tracks how a collection's local state relates to the remote
// store. There is no rollback: a failed remote mutation leaves the local
// optimistic state in place and the collection tagged Failed.
type SyncState string

const (
	SyncStateSynced  SyncState = "synced"
	SyncStatePending SyncState = "pending"
	SyncStateFailed  SyncState = "failed"
)

// Action is one of the fixed card-operation actions understood by both the
// local mutator and the remote store.
type Action string

const (
	ActionAdd             Action = "add"
	ActionRemove          Action = "remove"
	ActionUpdate          Action = "update"
	ActionAddToBuy        Action = "addToBuy"
	ActionRemoveFromBuy   Action = "removeFromBuy"
	ActionAddToPrint      Action = "addToPrint"
	ActionRemoveFromPrint Action = "removeFromPrint"
)

// ValidAction reports whether a is one of the seven known actions.
func ValidAction(a Action) bool {
	switch a {
	case ActionAdd, ActionRemove, ActionUpdate,
		ActionAddToBuy, ActionRemoveFromBuy,
		ActionAddToPrint, ActionRemoveFromPrint:
		return true
	}
	return false
}

// CardOperation is one card-level mutation against a collection.
type CardOperation struct {
	CollectionID string `json:"collectionId"`
	CardID       string `json:"cardId"`
	Action       Action `json:"action"`
	Quantity     int    `json:"quantity,omitempty"`
}

// Collection is a user collection. Every id in Quantities is in
// OwnedCardIDs and vice versa; the buy and print lists are independent
// sets that may reference cards not owned.
type Collection struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	FilterType   string         `json:"filterType,omitempty"`
	FilterValue  string         `json:"filterValue,omitempty"`
	Query        string         `json:"query,omitempty"`
	OwnedCardIDs []string       `json:"ownedCardIds"`
	Quantities   map[string]int `json:"quantities"`
	BuyListIDs   []string       `json:"buyListIds"`
	PrintListIDs []string       `json:"printListIds"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	SyncState    SyncState      `json:"syncState"`
	SyncError    string         `json:"syncError,omitempty"`
}

// Owns reports whether cardID is in the owned set.
func (c *Collection) Owns(cardID string) bool {
	return containsID(c.OwnedCardIDs, cardID)
}

// Clone returns a deep copy, safe to hand to other goroutines.
func (c *Collection) Clone() *Collection {
	clone := *c
	clone.OwnedCardIDs = append([]string{}, c.OwnedCardIDs...)
	clone.BuyListIDs = append([]string{}, c.BuyListIDs...)
	clone.PrintListIDs = append([]string{}, c.PrintListIDs...)
	clone.Quantities = make(map[string]int, len(c.Quantities))
	for id, q := range c.Quantities {
		clone.Quantities[id] = q
	}
	return &clone
}

// Apply mutates the collection in place according to op. The remote store
// re-applies the same operation with these semantics, so local and durable
// state converge.
func (c *Collection) Apply(op CardOperation) error {
	qty := op.Quantity
	if qty < 1 {
		qty = 1
	}

	switch op.Action {
	case ActionAdd:
		if c.Owns(op.CardID) {
			c.Quantities[op.CardID] += qty
		} else {
			c.OwnedCardIDs = append(c.OwnedCardIDs, op.CardID)
			c.Quantities[op.CardID] = qty
		}

	case ActionRemove:
		c.OwnedCardIDs = removeID(c.OwnedCardIDs, op.CardID)
		delete(c.Quantities, op.CardID)

	case ActionUpdate:
		if !c.Owns(op.CardID) {
			return fmt.Errorf("card %s is not in collection %s", op.CardID, c.ID)
		}
		if op.Quantity < 1 {
			return fmt.Errorf("quantity must be >= 1, got %d", op.Quantity)
		}
		c.Quantities[op.CardID] = op.Quantity

	case ActionAddToBuy:
		if !containsID(c.BuyListIDs, op.CardID) {
			c.BuyListIDs = append(c.BuyListIDs, op.CardID)
		}

	case ActionRemoveFromBuy:
		c.BuyListIDs = removeID(c.BuyListIDs, op.CardID)

	case ActionAddToPrint:
		if !containsID(c.PrintListIDs, op.CardID) {
			c.PrintListIDs = append(c.PrintListIDs, op.CardID)
		}

	case ActionRemoveFromPrint:
		c.PrintListIDs = removeID(c.PrintListIDs, op.CardID)

	default:
		return fmt.Errorf("unknown action %q", op.Action)
	}

	c.UpdatedAt = time.Now()
	return nil
}

func containsID(ids []string, id string) bool {
	for _, existing := range ids {
		if existing == id {
			return true
		}
	}
	return false
}

func removeID(ids []string, id string) []string {
	out := ids[:0]
	for _, existing := range ids {
		if existing != id {
			out = append(out, existing)
		}
	}
	return out
}
