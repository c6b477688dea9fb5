package mempool

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestLiveSourceFetch(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/mempool/recent" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"txid": "f00d", "fee": 8000, "vsize": 400, "value": 125000},
			{"txid": "beef", "fee": 4000, "vsize": 400, "value": 90000},
			{"txid": "", "fee": 100, "vsize": 100},
			{"txid": "bad", "fee": 100, "vsize": 0}
		]`))
	}))
	t.Cleanup(server.Close)

	src := NewLiveSource(server.URL + "/api/mempool/recent")
	if src.Name() != "live" {
		t.Fatalf("unexpected source name %q", src.Name())
	}

	set, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if len(set.Candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(set.Candidates))
	}
	if set.Skipped != 2 {
		t.Fatalf("expected 2 skipped records, got %d", set.Skipped)
	}
	if set.Candidates[0].ID != "f00d" || set.Candidates[0].Rate != 20.0 {
		t.Fatalf("unexpected candidate mapping: %+v", set.Candidates[0])
	}
}

func TestLiveSourceNonOKStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream overloaded", http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)

	if _, err := NewLiveSource(server.URL).Fetch(context.Background()); err == nil {
		t.Fatalf("expected error for non-200 response")
	}
}

func TestLiveSourceMalformedBody(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"oops"`))
	}))
	t.Cleanup(server.Close)

	if _, err := NewLiveSource(server.URL).Fetch(context.Background()); err == nil {
		t.Fatalf("expected error for malformed body")
	}
}

func TestLiveSourceTimeout(t *testing.T) {
	t.Parallel()

	blocked := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-blocked
	}))
	t.Cleanup(func() {
		close(blocked)
		server.Close()
	})

	src := NewLiveSource(server.URL, WithFetchTimeout(50*time.Millisecond))
	if _, err := src.Fetch(context.Background()); err == nil {
		t.Fatalf("expected timeout error")
	}
}

func TestLiveSourceDefaultURL(t *testing.T) {
	t.Parallel()

	if src := NewLiveSource(""); src.url != DefaultAPIURL {
		t.Fatalf("expected default URL, got %s", src.url)
	}
}
