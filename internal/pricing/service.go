package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/portalmtg/portal/internal/events"
)

const (
	// DefaultRelayURL is the CORS relay the price source is fetched through.
	DefaultRelayURL = "https://api.allorigins.win/get?url="

	// DefaultSourceURL is the price source site.
	DefaultSourceURL = "https://www.ligamagic.com.br/"

	// DefaultQueueDelay is the pause after each request, success or
	// failure, to avoid hammering the relay.
	DefaultQueueDelay = 300 * time.Millisecond

	// setLookahead bounds how far past a set-name match the tier-1
	// extraction looks for a price.
	setLookahead = 2048

	queueCapacity = 256
)

// Request is one queued price lookup.
type Request struct {
	Name        string
	Set         string
	BypassCache bool

	// result is buffered (capacity 1); a caller that stops waiting leaves
	// the value unobserved without blocking the worker.
	result chan float64
}

// Options configures a pricing Service. Zero values select defaults.
type Options struct {
	RelayURL   string
	SourceURL  string
	QueueDelay time.Duration
	RateURL    string
}

// Service answers price lookups for (name, set) pairs. Cache hits resolve
// immediately; everything else goes through a FIFO queue drained by a
// single worker, so at most one outbound fetch is in flight at any time.
//
// A successful extraction (price > 0) is cached for the session. Failures
// resolve to 0 and are never cached, so a later retry or bypass can
// succeed. Network failure at any stage resolves 0 rather than erroring:
// price is best-effort enrichment.
type Service struct {
	cache      *SessionCache
	rates      *RateSource
	dispatcher *events.Dispatcher
	httpClient *http.Client

	relayURL  string
	sourceURL string
	delay     time.Duration

	queue chan *Request
	done  chan struct{}
}

// NewService creates a pricing service. dispatcher may be nil, in which
// case no price events are emitted. Call Run in a goroutine to start the
// queue worker.
func NewService(cache *SessionCache, dispatcher *events.Dispatcher, opts Options) *Service {
	if opts.RelayURL == "" {
		opts.RelayURL = DefaultRelayURL
	}
	if opts.SourceURL == "" {
		opts.SourceURL = DefaultSourceURL
	}
	if opts.QueueDelay == 0 {
		opts.QueueDelay = DefaultQueueDelay
	}

	return &Service{
		cache:      cache,
		rates:      NewRateSource(opts.RateURL),
		dispatcher: dispatcher,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		relayURL:   opts.RelayURL,
		sourceURL:  opts.SourceURL,
		delay:      opts.QueueDelay,
		queue:      make(chan *Request, queueCapacity),
		done:       make(chan struct{}),
	}
}

// Rates exposes the USD to BRL rate source.
func (s *Service) Rates() *RateSource { return s.rates }

// Cache exposes the session cache.
func (s *Service) Cache() *SessionCache { return s.cache }

// GetPrice resolves a price for (name, set). A cache hit (unless bypassed)
// resolves immediately; otherwise the request is enqueued and the returned
// channel receives the price when the worker completes it. The channel is
// buffered, so abandoning it is safe: the fetch still runs, its result is
// simply unobserved.
func (s *Service) GetPrice(name, set string, bypassCache bool) <-chan float64 {
	result := make(chan float64, 1)

	if !bypassCache {
		var cached float64
		if s.cache.Get(PriceKey(name, set), &cached) {
			result <- cached
			return result
		}
	}

	req := &Request{Name: name, Set: set, BypassCache: bypassCache, result: result}
	select {
	case s.queue <- req:
	default:
		// Queue full: resolve 0 rather than block the caller.
		log.Printf("[Pricing] Queue full, dropping request for %q (%s)", name, set)
		result <- 0
	}
	return result
}

// Run drains the queue one request at a time until Stop is called. Requests
// are serviced FIFO with a fixed pacing delay after each one.
func (s *Service) Run() {
	for {
		select {
		case <-s.done:
			return
		case req := <-s.queue:
			price := s.fetch(req)
			req.result <- price

			if price > 0 && s.dispatcher != nil {
				// Async so a slow observer never stalls the queue.
				s.dispatcher.DispatchAsync(events.Event{
					Type: events.TypePriceUpdated,
					Data: events.PriceUpdated{Name: req.Name, Set: req.Set, Price: price},
				})
			}

			select {
			case <-s.done:
				return
			case <-time.After(s.delay):
			}
		}
	}
}

// Stop terminates the queue worker. Queued requests are left unserviced.
func (s *Service) Stop() {
	close(s.done)
}

// QueueLen returns the number of requests waiting in the queue.
func (s *Service) QueueLen() int { return len(s.queue) }

// relayResponse is the JSON envelope the CORS relay wraps pages in.
type relayResponse struct {
	Contents string `json:"contents"`
}

// fetch retrieves the source page for a card and extracts a price.
// Any failure returns 0; only positive prices are cached.
func (s *Service) fetch(req *Request) float64 {
	target := fmt.Sprintf("%s?view=cards/card&card=%s", s.sourceURL, url.QueryEscape(req.Name))

	httpReq, err := http.NewRequest(http.MethodGet, s.relayURL+url.QueryEscape(target), nil)
	if err != nil {
		return 0
	}

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		log.Printf("[Pricing] Fetch failed for %q: %v", req.Name, err)
		return 0
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil || resp.StatusCode != http.StatusOK {
		return 0
	}

	var relay relayResponse
	if err := json.Unmarshal(body, &relay); err != nil || relay.Contents == "" {
		return 0
	}

	price := ExtractPrice(relay.Contents, req.Set)
	if price > 0 {
		s.cache.Put(PriceKey(req.Name, req.Set), price)
	}
	return price
}

// ExtractPrice runs the two-tier extraction over raw page text. Tier 1
// looks for the set's display name followed, within a bounded window, by a
// currency amount. Tier 2 falls back to the minimum of every currency
// amount on the page. Returns 0 when nothing parseable is found.
func ExtractPrice(contents, setName string) float64 {
	if clean := normalizeSetName(setName); clean != "" {
		// Locate and slice the same lowered string: lowering can change
		// byte length, so an index into it must not be applied to the
		// original text.
		lower := strings.ToLower(contents)
		if idx := strings.Index(lower, clean); idx >= 0 {
			end := idx + len(clean) + setLookahead
			if end > len(lower) {
				end = len(lower)
			}
			if m := priceRe.FindStringSubmatch(lower[idx:end]); m != nil {
				if v, ok := ParseBRL(m[1]); ok {
					return v
				}
			}
		}
	}

	amounts := extractAmounts(contents)
	if len(amounts) == 0 {
		return 0
	}
	return minAmount(amounts).InexactFloat64()
}

// setNameNoise strips suffixes whose wording differs between the catalog
// and the price source.
var setNameNoise = []string{" edition", " set", " core set"}

func normalizeSetName(name string) string {
	lower := strings.ToLower(name)
	for _, noise := range setNameNoise {
		lower = strings.ReplaceAll(lower, noise, "")
	}
	return strings.TrimSpace(lower)
}

// ConvertUSD converts a catalog USD price string to BRL using the session
// exchange rate. Returns 0 for empty or unparseable input.
func (s *Service) ConvertUSD(ctx context.Context, usd string) float64 {
	if usd == "" {
		return 0
	}
	v, err := strconv.ParseFloat(usd, 64)
	if err != nil || v <= 0 {
		return 0
	}
	return v * s.rates.Rate(ctx)
}
