package scryfall

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// MaxBatchSize is the maximum number of identifiers per batch request
// (Scryfall's documented limit for /cards/collection).
const MaxBatchSize = 75

// CardIdentifier is a loose card identifier for the /cards/collection
// endpoint. Exactly one lookup shape should be populated: id alone,
// name+set, set+collector_number, or name alone.
type CardIdentifier struct {
	ID              string `json:"id,omitempty"`
	Name            string `json:"name,omitempty"`
	Set             string `json:"set,omitempty"`
	CollectorNumber string `json:"collector_number,omitempty"`
}

// CollectionRequest is the request body for /cards/collection.
type CollectionRequest struct {
	Identifiers []CardIdentifier `json:"identifiers"`
}

// CollectionResponse is the response from /cards/collection.
type CollectionResponse struct {
	Object   string           `json:"object"`
	NotFound []CardIdentifier `json:"not_found"`
	Data     []Card           `json:"data"`
}

// ResolveIdentifiers resolves a batch of loose identifiers to canonical
// cards. Identifiers are partitioned into chunks of at most MaxBatchSize
// and the chunks are issued strictly sequentially with a short pause
// between them, keeping the concurrent load on the catalog at one request.
//
// A chunk that fails is skipped: its cards are simply absent from the
// result. The returned slice may therefore hold fewer records than
// identifiers were requested, and order within a chunk follows the
// catalog's response order, not the request order.
func (c *Client) ResolveIdentifiers(ctx context.Context, identifiers []CardIdentifier) []Card {
	if len(identifiers) == 0 {
		return []Card{}
	}

	var all []Card

	for i := 0; i < len(identifiers); i += MaxBatchSize {
		end := i + MaxBatchSize
		if end > len(identifiers) {
			end = len(identifiers)
		}

		if i > 0 {
			time.Sleep(c.chunkDelay)
		}

		cards, _, err := c.doCollectionRequest(ctx, identifiers[i:end])
		if err != nil {
			log.Printf("[Scryfall] Batch chunk %d-%d failed, skipping: %v", i, end, err)
			continue
		}
		all = append(all, cards...)
	}

	if all == nil {
		all = []Card{}
	}
	return all
}

// ResolveIdentifiersStrict resolves identifiers like ResolveIdentifiers but
// fails the whole batch on the first chunk error. It also reports which
// identifiers the catalog could not match.
func (c *Client) ResolveIdentifiersStrict(ctx context.Context, identifiers []CardIdentifier) ([]Card, []CardIdentifier, error) {
	if len(identifiers) == 0 {
		return []Card{}, nil, nil
	}

	var all []Card
	var allNotFound []CardIdentifier

	for i := 0; i < len(identifiers); i += MaxBatchSize {
		end := i + MaxBatchSize
		if end > len(identifiers) {
			end = len(identifiers)
		}

		if i > 0 {
			time.Sleep(c.chunkDelay)
		}

		cards, notFound, err := c.doCollectionRequest(ctx, identifiers[i:end])
		if err != nil {
			return nil, nil, fmt.Errorf("failed to fetch batch %d-%d: %w", i, end, err)
		}
		all = append(all, cards...)
		allNotFound = append(allNotFound, notFound...)
	}

	return all, allNotFound, nil
}

// doCollectionRequest performs one POST to /cards/collection.
func (c *Client) doCollectionRequest(ctx context.Context, identifiers []CardIdentifier) ([]Card, []CardIdentifier, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, nil, fmt.Errorf("rate limiter error: %w", err)
	}

	jsonBody, err := json.Marshal(CollectionRequest{Identifiers: identifiers})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/cards/collection", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch cards from catalog: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, nil, fmt.Errorf("catalog returned status %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var collectionResp CollectionResponse
	if err := json.Unmarshal(body, &collectionResp); err != nil {
		return nil, nil, fmt.Errorf("failed to parse catalog response: %w", err)
	}

	return collectionResp.Data, collectionResp.NotFound, nil
}
