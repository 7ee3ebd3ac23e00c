package pricing

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"
)

const (
	// DefaultRateURL is the USD to BRL exchange rate endpoint.
	DefaultRateURL = "https://economia.awesomeapi.com.br/last/USD-BRL"

	// fallbackRate is used when the rate source is unreachable.
	fallbackRate = 6.0
)

// RateSource resolves the USD to BRL exchange rate once per process and
// caches it. Failures fall back to a fixed rate silently; the rate is an
// enrichment, not a dependency.
type RateSource struct {
	url        string
	httpClient *http.Client

	once sync.Once
	rate float64
}

// NewRateSource creates a rate source. An empty url selects the default
// endpoint.
func NewRateSource(url string) *RateSource {
	if url == "" {
		url = DefaultRateURL
	}
	return &RateSource{
		url:        url,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		rate:       fallbackRate,
	}
}

type rateResponse struct {
	USDBRL struct {
		Bid string `json:"bid"`
	} `json:"USDBRL"`
}

// Rate returns the USD to BRL rate, fetching it on first use.
func (r *RateSource) Rate(ctx context.Context) float64 {
	r.once.Do(func() {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
		if err != nil {
			return
		}
		resp, err := r.httpClient.Do(req)
		if err != nil {
			log.Printf("[Pricing] Exchange rate fetch failed, using fallback %.2f: %v", fallbackRate, err)
			return
		}
		defer func() { _ = resp.Body.Close() }()

		var body rateResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return
		}
		if bid, err := strconv.ParseFloat(body.USDBRL.Bid, 64); err == nil && bid > 0 {
			r.rate = bid
		}
	})
	return r.rate
}
