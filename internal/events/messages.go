package events

// Event types dispatched by the engine.
const (
	TypePriceUpdated         = "price:updated"
	TypeCollectionCreated    = "collection:created"
	TypeCollectionDeleted    = "collection:deleted"
	TypeCollectionSyncFailed = "collection:sync_failed"
	TypeImportCompleted      = "import:completed"
)

// PriceUpdated is the payload for a completed price lookup.
type PriceUpdated struct {
	Name  string  `json:"name"`
	Set   string  `json:"set"`
	Price float64 `json:"price"`
}

// CollectionCreated is the payload for a newly created collection.
type CollectionCreated struct {
	CollectionID string `json:"collectionId"`
	Name         string `json:"name"`
	CardCount    int    `json:"cardCount"`
}

// CollectionDeleted is the payload for a locally deleted collection.
type CollectionDeleted struct {
	CollectionID string `json:"collectionId"`
}

// CollectionSyncFailed reports a remote mutation that did not apply. The
// optimistic local state is kept; this event is the only surfaced signal.
type CollectionSyncFailed struct {
	CollectionID string `json:"collectionId"`
	Action       string `json:"action"`
	Error        string `json:"error"`
}

// ImportCompleted summarizes a finished import run.
type ImportCompleted struct {
	CollectionID string `json:"collectionId"`
	Name         string `json:"name"`
	Resolved     int    `json:"resolved"`
	Unresolved   int    `json:"unresolved"`
	Skipped      int    `json:"skipped"`
}
