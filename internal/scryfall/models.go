package scryfall

import "fmt"

// Card represents a canonical catalog record for one printing of a card.
// Cards are created by the catalog service and never mutated locally.
type Card struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	ManaCost        string            `json:"mana_cost,omitempty"`
	CMC             float64           `json:"cmc,omitempty"`
	TypeLine        string            `json:"type_line,omitempty"`
	OracleText      string            `json:"oracle_text,omitempty"`
	Colors          []string          `json:"colors,omitempty"`
	Rarity          string            `json:"rarity,omitempty"`
	SetCode         string            `json:"set"`
	SetName         string            `json:"set_name,omitempty"`
	CollectorNumber string            `json:"collector_number,omitempty"`
	ReleasedAt      string            `json:"released_at,omitempty"`
	Artist          string            `json:"artist,omitempty"`
	Power           string            `json:"power,omitempty"`
	Toughness       string            `json:"toughness,omitempty"`
	Prices          Prices            `json:"prices"`
	ImageURIs       *ImageURIs        `json:"image_uris,omitempty"`
	CardFaces       []CardFace        `json:"card_faces,omitempty"`
	Legalities      map[string]string `json:"legalities,omitempty"`
}

// Prices holds the catalog's own price metadata (strings per the API).
type Prices struct {
	USD string `json:"usd,omitempty"`
	EUR string `json:"eur,omitempty"`
	Tix string `json:"tix,omitempty"`
}

// ImageURIs holds the image variants for a card face.
type ImageURIs struct {
	Small   string `json:"small,omitempty"`
	Normal  string `json:"normal,omitempty"`
	Large   string `json:"large,omitempty"`
	ArtCrop string `json:"art_crop,omitempty"`
}

// CardFace is one face of a multi-faced card.
type CardFace struct {
	Name       string     `json:"name"`
	ManaCost   string     `json:"mana_cost,omitempty"`
	OracleText string     `json:"oracle_text,omitempty"`
	Colors     []string   `json:"colors,omitempty"`
	Power      string     `json:"power,omitempty"`
	Toughness  string     `json:"toughness,omitempty"`
	ImageURIs  *ImageURIs `json:"image_uris,omitempty"`
}

// SearchResult is one page of a paginated card search.
type SearchResult struct {
	Object     string `json:"object"`
	TotalCards int    `json:"total_cards"`
	HasMore    bool   `json:"has_more"`
	NextPage   string `json:"next_page,omitempty"`
	Data       []Card `json:"data"`
}

// Set represents a card set.
type Set struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	SetType string `json:"set_type"`
}

// SetList is the response from the /sets endpoint.
type SetList struct {
	Data []Set `json:"data"`
}

// Catalog is the response shape for catalog endpoints such as creature-types.
type Catalog struct {
	Data []string `json:"data"`
}

// Ruling is a single published ruling for a card.
type Ruling struct {
	PublishedAt string `json:"published_at"`
	Comment     string `json:"comment"`
}

// RulingList is the response from the /cards/{id}/rulings endpoint.
type RulingList struct {
	Data []Ruling `json:"data"`
}

// NotFoundError indicates the requested resource does not exist.
type NotFoundError struct {
	URL string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("resource not found: %s", e.URL)
}

// APIError is a structured error response from the catalog service.
type APIError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Details string `json:"details"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error %d (%s): %s", e.Status, e.Code, e.Details)
}
