package boxstats

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/boxlax/fantasy-core/internal/platform/logging"
	"github.com/boxlax/fantasy-core/internal/platform/resilience"
	"github.com/boxlax/fantasy-core/internal/usecase"
)

const scheduleBody = `{
	"data": [
		{
			"game_id": "g1",
			"season": "s1",
			"week": 1,
			"start_at": "2026-01-10T19:00:00Z",
			"home_team_id": "TOR",
			"away_team_id": "BUF",
			"home_score": 12,
			"away_score": 9,
			"winner_team_id": "TOR",
			"loser_team_id": "BUF",
			"revision_at": "2026-01-10T23:00:00Z"
		},
		{
			"game_id": "g2",
			"season": "s1",
			"week": 2,
			"start_at": "2026-01-17T19:30:00Z",
			"home_team_id": "SAS",
			"away_team_id": "CGY"
		},
		{
			"game_id": "g-broken",
			"season": "s1",
			"week": 2,
			"start_at": "next friday",
			"home_team_id": "CGY",
			"away_team_id": "TOR"
		}
	]
}`

func newTestClient(serverURL string, maxRetries int, breaker resilience.CircuitBreakerConfig) *Client {
	return NewClient(ClientConfig{
		BaseURL:        serverURL,
		Token:          "feed-token",
		Timeout:        2 * time.Second,
		MaxRetries:     maxRetries,
		Logger:         logging.NewNop(),
		CircuitBreaker: breaker,
	})
}

func TestFetchSeason(t *testing.T) {
	var gotPath, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(scheduleBody))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 0, resilience.CircuitBreakerConfig{})
	records, err := client.FetchSeason(context.Background(), "s1")
	if err != nil {
		t.Fatalf("fetch season: %v", err)
	}

	if gotPath != "/seasons/s1/schedule" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
	if gotAuth != "Bearer feed-token" {
		t.Fatalf("unexpected authorization header: %s", gotAuth)
	}

	// The malformed third record is skipped, not fatal.
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	first := records[0]
	if first.ExternalID != "g1" || first.Week != 1 {
		t.Fatalf("unexpected first record: %+v", first)
	}
	if first.HomeScore == nil || *first.HomeScore != 12 {
		t.Fatalf("unexpected home score: %v", first.HomeScore)
	}
	if !first.RevisionAt.Equal(time.Date(2026, 1, 10, 23, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected revision: %v", first.RevisionAt)
	}

	// Without a revision stamp the start time stands in for it.
	second := records[1]
	if !second.RevisionAt.Equal(second.StartAt) {
		t.Fatalf("missing revision must default to start: %v vs %v", second.RevisionAt, second.StartAt)
	}
	if second.HomeScore != nil {
		t.Fatalf("upcoming game must carry no score, got %v", second.HomeScore)
	}
}

func TestFetchSeason_RetriesTransientStatus(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"data": []}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 1, resilience.CircuitBreakerConfig{})
	records, err := client.FetchSeason(context.Background(), "s1")
	if err != nil {
		t.Fatalf("fetch season: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected empty schedule, got %d records", len(records))
	}
	if calls.Load() != 2 {
		t.Fatalf("expected one retry, saw %d calls", calls.Load())
	}
}

func TestFetchSeason_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error": "unknown season"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 3, resilience.CircuitBreakerConfig{})
	_, err := client.FetchSeason(context.Background(), "s1")
	if err == nil {
		t.Fatalf("expected an error for 404")
	}
	if !strings.Contains(err.Error(), "status=404") {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("client errors must not retry, saw %d calls", calls.Load())
	}
}

func TestFetchSeason_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := newTestClient(server.URL, 0, resilience.CircuitBreakerConfig{})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.FetchSeason(ctx, "s1")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected the context deadline, got %v", err)
	}
}

func TestFetchSeason_BreakerRejectsAfterFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(server.URL, 0, resilience.CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 1,
		OpenTimeout:      time.Minute,
	})
	ctx := context.Background()

	if _, err := client.FetchSeason(ctx, "s1"); err == nil {
		t.Fatalf("expected a transport failure")
	}

	_, err := client.FetchSeason(ctx, "s1")
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("tripped breaker must report unavailability, got %v", err)
	}
}

func TestFetchSeason_RequiresSeason(t *testing.T) {
	client := newTestClient("http://feed.invalid", 0, resilience.CircuitBreakerConfig{})
	if _, err := client.FetchSeason(context.Background(), "  "); err == nil {
		t.Fatalf("blank season must fail before any request")
	}
}
