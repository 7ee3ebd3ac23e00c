// Package scryfall provides a rate-limited client for the Scryfall card
// catalog, including the batch collection endpoint used for import
// resolution.
package scryfall

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the production catalog endpoint.
	DefaultBaseURL = "https://api.scryfall.com"

	rateLimitDelay = 100 * time.Millisecond // 10 req/sec
	requestTimeout = 30 * time.Second
	maxRetries     = 3
	initialBackoff = 1 * time.Second
	maxBackoff     = 16 * time.Second

	// pageDelay is the pause between search result pages.
	pageDelay = 50 * time.Millisecond
)

// Client is a Scryfall API client with rate limiting and retries.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	userAgent   string
	chunkDelay  time.Duration
}

// Options configures a Client. The zero value selects production defaults.
type Options struct {
	// BaseURL overrides the catalog endpoint, mainly for tests.
	BaseURL string

	// ChunkDelay is the pause between sequential batch chunk requests.
	// Default: 50ms.
	ChunkDelay time.Duration
}

// NewClient creates a new catalog client.
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.ChunkDelay == 0 {
		opts.ChunkDelay = 50 * time.Millisecond
	}

	return &Client{
		baseURL: opts.BaseURL,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		rateLimiter: rate.NewLimiter(rate.Every(rateLimitDelay), 1),
		userAgent:   "portal-mtg/1.0",
		chunkDelay:  opts.ChunkDelay,
	}
}

// GetCard retrieves a card by its catalog ID.
func (c *Client) GetCard(ctx context.Context, id string) (*Card, error) {
	var card Card
	if err := c.doRequest(ctx, fmt.Sprintf("%s/cards/%s", c.baseURL, id), &card); err != nil {
		return nil, fmt.Errorf("failed to get card %s: %w", id, err)
	}
	return &card, nil
}

// GetSets retrieves the list of all sets.
func (c *Client) GetSets(ctx context.Context) (*SetList, error) {
	var sets SetList
	if err := c.doRequest(ctx, c.baseURL+"/sets", &sets); err != nil {
		return nil, fmt.Errorf("failed to get sets: %w", err)
	}
	return &sets, nil
}

// GetCreatureTypes retrieves the creature type catalog.
func (c *Client) GetCreatureTypes(ctx context.Context) ([]string, error) {
	var catalog Catalog
	if err := c.doRequest(ctx, c.baseURL+"/catalog/creature-types", &catalog); err != nil {
		return nil, fmt.Errorf("failed to get creature types: %w", err)
	}
	return catalog.Data, nil
}

// GetCardRulings retrieves published rulings for a card.
func (c *Client) GetCardRulings(ctx context.Context, cardID string) ([]Ruling, error) {
	var rulings RulingList
	if err := c.doRequest(ctx, fmt.Sprintf("%s/cards/%s/rulings", c.baseURL, cardID), &rulings); err != nil {
		return nil, fmt.Errorf("failed to get rulings for %s: %w", cardID, err)
	}
	return rulings.Data, nil
}

// SearchCards performs a full-text search and returns a single result page.
func (c *Client) SearchCards(ctx context.Context, query string) (*SearchResult, error) {
	u := fmt.Sprintf("%s/cards/search?q=%s&unique=prints&order=released&dir=desc", c.baseURL, url.QueryEscape(query))

	var result SearchResult
	if err := c.doRequest(ctx, u, &result); err != nil {
		return nil, fmt.Errorf("failed to search cards with query %q: %w", query, err)
	}
	return &result, nil
}

// SearchAllCards follows server-driven pagination until the catalog reports
// no more pages. onPage, when non-nil, is invoked with the accumulated cards
// after each page arrives. A page failure after the first returns the cards
// collected so far rather than an error.
func (c *Client) SearchAllCards(ctx context.Context, query string, onPage func([]Card)) ([]Card, error) {
	page, err := c.SearchCards(ctx, query)
	if err != nil {
		var notFound *NotFoundError
		if errors.As(err, &notFound) {
			return []Card{}, nil
		}
		return nil, err
	}

	all := append([]Card{}, page.Data...)
	if onPage != nil {
		onPage(all)
	}

	for page.HasMore && page.NextPage != "" {
		time.Sleep(pageDelay)

		var next SearchResult
		if err := c.doRequest(ctx, page.NextPage, &next); err != nil {
			// Partial results beat nothing.
			return all, nil
		}
		all = append(all, next.Data...)
		if onPage != nil {
			onPage(all)
		}
		page = &next
	}

	return all, nil
}

// GetCardPrintings returns all printings of a card by exact name.
func (c *Client) GetCardPrintings(ctx context.Context, name string) ([]Card, error) {
	return c.SearchAllCards(ctx, fmt.Sprintf("!%q unique:prints", name), nil)
}

// doRequest performs a GET with rate limiting and retry logic.
func (c *Client) doRequest(ctx context.Context, url string, result interface{}) error {
	var lastErr error
	backoff := initialBackoff

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter error: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("HTTP request failed: %w", err)
			if attempt < maxRetries {
				time.Sleep(backoff)
				backoff = minDuration(backoff*2, maxBackoff)
				continue
			}
			return lastErr
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()

		switch resp.StatusCode {
		case http.StatusOK:
			if readErr != nil {
				return fmt.Errorf("failed to read response body: %w", readErr)
			}
			if err := json.Unmarshal(body, result); err != nil {
				return fmt.Errorf("failed to parse JSON response: %w", err)
			}
			return nil

		case http.StatusTooManyRequests:
			lastErr = fmt.Errorf("rate limited (HTTP 429)")
			if attempt < maxRetries {
				if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
					if duration, err := time.ParseDuration(retryAfter + "s"); err == nil {
						time.Sleep(duration)
					} else {
						time.Sleep(backoff)
					}
				} else {
					time.Sleep(backoff)
				}
				backoff = minDuration(backoff*2, maxBackoff)
				continue
			}
			return lastErr

		case http.StatusNotFound:
			return &NotFoundError{URL: url}

		default:
			var apiErr APIError
			if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Details != "" {
				return &apiErr
			}
			return fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
		}
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}
