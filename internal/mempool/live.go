package mempool

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/eugenenazirov/fee-simulator/internal/packer"
)

// DefaultAPIURL is the public mempool.space endpoint serving a sample of
// recently seen transactions. The sample is only a glimpse of the full pool,
// which is fine for simulation purposes.
const DefaultAPIURL = "https://mempool.space/api/mempool/recent"

const defaultFetchTimeout = 10 * time.Second

// recentTx mirrors the wire shape of the recent-transactions endpoint.
type recentTx struct {
	TxID  string `json:"txid"`
	Fee   int64  `json:"fee"`
	VSize int64  `json:"vsize"`
	Value int64  `json:"value"`
}

// LiveSource fetches candidates from a mempool.space-style HTTP API.
type LiveSource struct {
	url     string
	client  *http.Client
	limiter *rate.Limiter
}

// LiveOption configures a LiveSource.
type LiveOption func(*LiveSource)

// WithHTTPClient overrides the HTTP client (primarily for tests).
func WithHTTPClient(client *http.Client) LiveOption {
	return func(s *LiveSource) {
		s.client = client
	}
}

// WithFetchTimeout bounds a single fetch, applied via the request context.
func WithFetchTimeout(timeout time.Duration) LiveOption {
	return func(s *LiveSource) {
		if timeout > 0 {
			s.client.Timeout = timeout
		}
	}
}

// NewLiveSource creates a live source for the given endpoint URL. Repeated
// fetches are throttled to one per second so serve-mode refreshes cannot
// hammer the public API.
func NewLiveSource(url string, opts ...LiveOption) *LiveSource {
	if url == "" {
		url = DefaultAPIURL
	}
	s := &LiveSource{
		url:     url,
		client:  &http.Client{Timeout: defaultFetchTimeout},
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name implements Source.
func (s *LiveSource) Name() string {
	return "live"
}

// Fetch implements Source.
func (s *LiveSource) Fetch(ctx context.Context) (Set, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return Set{}, fmt.Errorf("fetch throttle: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return Set{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return Set{}, fmt.Errorf("query mempool API: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return Set{}, fmt.Errorf("mempool API returned status %d", resp.StatusCode)
	}

	var raw []recentTx
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return Set{}, fmt.Errorf("decode mempool API response: %w", err)
	}

	set := Set{Candidates: make([]packer.Candidate, 0, len(raw))}
	for _, tx := range raw {
		if tx.TxID == "" {
			set.Skipped++
			continue
		}
		candidate, err := packer.NewCandidate(tx.TxID, tx.Fee, tx.VSize)
		if err != nil {
			set.Skipped++
			continue
		}
		set.Candidates = append(set.Candidates, candidate)
	}

	return set, nil
}
