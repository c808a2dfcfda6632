// Package boxstats is the adapter for the league's schedule and results feed.
package boxstats

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/boxlax/fantasy-core/internal/platform/logging"
	"github.com/boxlax/fantasy-core/internal/platform/resilience"
	"github.com/boxlax/fantasy-core/internal/usecase"
	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
)

const defaultBaseURL = "https://feed.boxstats.example.com/v1"

var errTransient = crerr.New("boxstats transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Token          string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client fetches season schedules from the feed. It collapses concurrent
// fetches for the same season and trips a breaker on repeated transport
// failures so a provider outage cannot pile up goroutines.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	token          string
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		token:          strings.TrimSpace(cfg.Token),
		maxRetries:     maxRetries,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(cfg.CircuitBreaker),
		circuitEnabled: cfg.CircuitBreaker.Enabled,
	}
}

type scheduleEnvelope struct {
	Data []scheduleItem `json:"data"`
}

type scheduleItem struct {
	GameID     string `json:"game_id"`
	Season     string `json:"season"`
	Week       int    `json:"week"`
	StartAt    string `json:"start_at"`
	HomeTeamID string `json:"home_team_id"`
	AwayTeamID string `json:"away_team_id"`
	HomeScore  *int   `json:"home_score"`
	AwayScore  *int   `json:"away_score"`
	Winner     string `json:"winner_team_id"`
	Loser      string `json:"loser_team_id"`
	RevisionAt string `json:"revision_at"`
}

// FetchSeason returns every schedule record the feed currently has for the
// season. The returned slice carries the provider's revision stamps; guarding
// against stale data happens downstream.
func (c *Client) FetchSeason(ctx context.Context, season string) ([]usecase.ScheduleRecord, error) {
	season = strings.TrimSpace(season)
	if season == "" {
		return nil, fmt.Errorf("season is required")
	}

	path := "/seasons/" + url.PathEscape(season) + "/schedule"
	var envelope scheduleEnvelope
	if err := c.doJSON(ctx, path, &envelope); err != nil {
		return nil, fmt.Errorf("fetch season schedule season=%s: %w", season, err)
	}

	out := make([]usecase.ScheduleRecord, 0, len(envelope.Data))
	for _, item := range envelope.Data {
		record, err := itemToRecord(item)
		if err != nil {
			c.logger.WarnContext(ctx, "skipping malformed feed record",
				"season", season, "game_id", item.GameID, "error", err)
			continue
		}
		out = append(out, record)
	}
	return out, nil
}

func itemToRecord(item scheduleItem) (usecase.ScheduleRecord, error) {
	if item.GameID == "" {
		return usecase.ScheduleRecord{}, fmt.Errorf("missing game id")
	}

	startAt, err := time.Parse(time.RFC3339, item.StartAt)
	if err != nil {
		return usecase.ScheduleRecord{}, fmt.Errorf("parse start_at %q: %w", item.StartAt, err)
	}

	revisionAt := startAt
	if item.RevisionAt != "" {
		revisionAt, err = time.Parse(time.RFC3339, item.RevisionAt)
		if err != nil {
			return usecase.ScheduleRecord{}, fmt.Errorf("parse revision_at %q: %w", item.RevisionAt, err)
		}
	}

	return usecase.ScheduleRecord{
		ExternalID: item.GameID,
		Season:     item.Season,
		Week:       item.Week,
		StartAt:    startAt,
		HomeTeamID: item.HomeTeamID,
		AwayTeamID: item.AwayTeamID,
		HomeScore:  item.HomeScore,
		AwayScore:  item.AwayScore,
		Winner:     item.Winner,
		Loser:      item.Loser,
		RevisionAt: revisionAt,
	}, nil
}

func (c *Client) doJSON(ctx context.Context, path string, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "boxstats circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("%w: schedule feed is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	fullURL := c.baseURL + path
	out, err, _ := c.flight.Do(path, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && stderrors.Is(reqErr, errTransient) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return err
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode feed payload: %w", err)
	}
	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = fmt.Errorf("%w: send request: %v", errTransient, err)
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 6<<20))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", errTransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case isRetryableStatus(resp.StatusCode):
				lastErr = fmt.Errorf("%w: feed status=%d", errTransient, resp.StatusCode)
			default:
				return nil, fmt.Errorf("feed status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("feed request failed")
	}
	c.logger.WarnContext(ctx, "boxstats request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func isRetryableStatus(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

func abbreviateBody(raw []byte) string {
	const limit = 256
	if len(raw) <= limit {
		return string(raw)
	}
	return string(raw[:limit]) + "..."
}
