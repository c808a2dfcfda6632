package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/boxlax/fantasy-core/internal/domain/fantasy"
	"github.com/boxlax/fantasy-core/internal/infrastructure/repository/memory"
	"github.com/boxlax/fantasy-core/internal/platform/cache"
	"github.com/boxlax/fantasy-core/internal/platform/logging"
	"github.com/boxlax/fantasy-core/internal/usecase"
	sonic "github.com/bytedance/sonic"
)

const testJobToken = "job-secret"

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	store := memory.NewScheduleStore(memory.SeedGames(), memory.SeedWeeks())
	logger := logging.NewNop()

	scheduleService := usecase.NewScheduleService(store.Games(), store.Weeks(), cache.NewStore(), logger)
	lockService := usecase.NewRosterLockService(scheduleService, 3*time.Hour, logger)
	scoringService := usecase.NewScoringService(
		store.Games(),
		memory.NewPlayerRepository(memory.SeedPlayers()),
		memory.NewStatsRepository(memory.SeedStatLines()),
		memory.NewScoringRepository(),
		fantasy.DefaultRules(),
		logger,
	)
	draftService := usecase.NewDraftService(memory.NewDraftRepository(memory.SeedDrafts(), memory.SeedPicks()), logger)
	syncService := usecase.NewSyncService(nil, scheduleService, time.Second, 2, logger)

	handler := NewHandler(scheduleService, lockService, scoringService, draftService, syncService, logger)
	return NewRouter(handler, logger, []string{"*"}, testJobToken)
}

func doRequest(t *testing.T, router http.Handler, method, path, token, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("X-Internal-Job-Token", token)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var envelope map[string]any
	if rec.Body.Len() > 0 {
		if err := sonic.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
			t.Fatalf("unmarshal %s %s response: %v", method, path, err)
		}
	}
	return rec, envelope
}

func TestRouter_Healthz(t *testing.T) {
	router := newTestRouter(t)

	rec, body := doRequest(t, router, http.MethodGet, "/healthz", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body["apiVersion"] != "2.0" {
		t.Fatalf("unexpected envelope: %v", body)
	}
}

func TestRouter_SeasonGames(t *testing.T) {
	router := newTestRouter(t)

	rec, body := doRequest(t, router, http.MethodGet, "/v1/seasons/nll-2026/games", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	games, ok := body["data"].([]any)
	if !ok || len(games) != 4 {
		t.Fatalf("expected 4 seeded games, got %v", body["data"])
	}

	rec, _ = doRequest(t, router, http.MethodGet, "/v1/seasons/nll-2026/weeks/2/games", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRouter_WeekLockState(t *testing.T) {
	router := newTestRouter(t)

	// Week 1 is fully played in the seed data, so it is locked at any time.
	rec, body := doRequest(t, router, http.MethodGet,
		"/v1/seasons/nll-2026/weeks/1/lock?at=2026-01-01T00:00:00Z", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	data, _ := body["data"].(map[string]any)
	if locked, _ := data["locked"].(bool); !locked {
		t.Fatalf("fully played week must be locked: %v", data)
	}

	// Week 2 has not started yet at this instant.
	rec, body = doRequest(t, router, http.MethodGet,
		"/v1/seasons/nll-2026/weeks/2/lock?at=2026-01-08T00:00:00Z", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	data, _ = body["data"].(map[string]any)
	if locked, _ := data["locked"].(bool); locked {
		t.Fatalf("upcoming week must be unlocked: %v", data)
	}

	rec, _ = doRequest(t, router, http.MethodGet, "/v1/seasons/nll-2026/weeks/9/lock", "", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown week: expected 404, got %d", rec.Code)
	}

	rec, _ = doRequest(t, router, http.MethodGet, "/v1/seasons/nll-2026/weeks/zero/lock", "", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad week segment: expected 400, got %d", rec.Code)
	}
}

func TestRouter_ScoreGameLifecycle(t *testing.T) {
	router := newTestRouter(t)

	// Internal routes refuse anonymous callers.
	rec, _ := doRequest(t, router, http.MethodPost, "/v1/games/nll-2026-0101/score", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	rec, body := doRequest(t, router, http.MethodPost, "/v1/games/nll-2026-0101/score", testJobToken, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", rec.Code, body)
	}
	data, _ := body["data"].(map[string]any)
	if applied, _ := data["applied"].(bool); !applied {
		t.Fatalf("first scoring must apply: %v", data)
	}

	rec, body = doRequest(t, router, http.MethodPost, "/v1/games/nll-2026-0101/score", testJobToken, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	data, _ = body["data"].(map[string]any)
	if applied, _ := data["applied"].(bool); applied {
		t.Fatalf("repeat scoring must be a no-op: %v", data)
	}

	rec, body = doRequest(t, router, http.MethodGet, "/v1/games/nll-2026-0101/points", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	points, _ := body["data"].([]any)
	if len(points) != 5 {
		t.Fatalf("expected 5 scored players, got %d", len(points))
	}

	// Week 2 games have no result yet.
	rec, _ = doRequest(t, router, http.MethodPost, "/v1/games/nll-2026-0201/score", testJobToken, "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("unplayed game: expected 409, got %d", rec.Code)
	}
}

func TestRouter_DraftLifecycle(t *testing.T) {
	router := newTestRouter(t)

	rec, _ := doRequest(t, router, http.MethodPut, "/v1/drafts/rookie-2026/order", testJobToken,
		`{"pick_ids": ["pick-4", "pick-3", "pick-2", "pick-1"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("reorder: expected 200, got %d", rec.Code)
	}

	rec, body := doRequest(t, router, http.MethodGet, "/v1/drafts/rookie-2026/order", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get order: expected 200, got %d", rec.Code)
	}
	data, _ := body["data"].(map[string]any)
	picks, _ := data["picks"].([]any)
	if len(picks) != 4 {
		t.Fatalf("expected 4 picks, got %d", len(picks))
	}
	first, _ := picks[0].(map[string]any)
	if first["id"] != "pick-4" {
		t.Fatalf("unexpected first pick: %v", first)
	}

	rec, _ = doRequest(t, router, http.MethodPut, "/v1/drafts/rookie-2026/order", testJobToken,
		`{"pick_ids": ["pick-1", "pick-1", "pick-2", "pick-3"]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("duplicate pick: expected 400, got %d", rec.Code)
	}

	rec, _ = doRequest(t, router, http.MethodPut, "/v1/drafts/rookie-2026/order", testJobToken, `{"pick_ids": []}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty pick list: expected 400, got %d", rec.Code)
	}

	rec, _ = doRequest(t, router, http.MethodPost, "/v1/drafts/rookie-2026/finalize", testJobToken, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("finalize: expected 200, got %d", rec.Code)
	}

	rec, _ = doRequest(t, router, http.MethodPut, "/v1/drafts/rookie-2026/order", testJobToken,
		`{"pick_ids": ["pick-1", "pick-2", "pick-3", "pick-4"]}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("reorder after finalize: expected 409, got %d", rec.Code)
	}
}

func TestRouter_OverrideAndCache(t *testing.T) {
	router := newTestRouter(t)

	rec, _ := doRequest(t, router, http.MethodPut, "/v1/seasons/nll-2026/weeks/2/override", testJobToken,
		`{"mode": "lock", "set_by": "commish"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("set override: expected 200, got %d", rec.Code)
	}

	rec, body := doRequest(t, router, http.MethodGet,
		"/v1/seasons/nll-2026/weeks/2/lock?at=2026-01-08T00:00:00Z", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("lock state: expected 200, got %d", rec.Code)
	}
	data, _ := body["data"].(map[string]any)
	if locked, _ := data["locked"].(bool); !locked {
		t.Fatalf("override must force the lock: %v", data)
	}

	rec, _ = doRequest(t, router, http.MethodPut, "/v1/seasons/nll-2026/weeks/2/override", testJobToken,
		`{"mode": "freeze", "set_by": "commish"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad mode: expected 400, got %d", rec.Code)
	}

	rec, _ = doRequest(t, router, http.MethodDelete, "/v1/admin/schedule-cache?season=nll-2026", testJobToken, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("clear cache: expected 200, got %d", rec.Code)
	}
}

func TestRouter_SyncWithoutSource(t *testing.T) {
	router := newTestRouter(t)

	rec, _ := doRequest(t, router, http.MethodPost, "/v1/internal/sync/schedule", testJobToken,
		`{"season": "nll-2026"}`)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("sync with no source: expected 503, got %d", rec.Code)
	}
}
