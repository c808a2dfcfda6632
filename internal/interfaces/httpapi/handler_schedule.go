package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/boxlax/fantasy-core/internal/domain/game"
	"github.com/boxlax/fantasy-core/internal/domain/week"
	"github.com/boxlax/fantasy-core/internal/usecase"
	sonic "github.com/bytedance/sonic"
)

type gameDTO struct {
	ID           string     `json:"id"`
	Season       string     `json:"season"`
	Week         int        `json:"week"`
	StartAt      time.Time  `json:"start_at"`
	HomeTeamID   string     `json:"home_team_id"`
	AwayTeamID   string     `json:"away_team_id"`
	HomeScore    *int       `json:"home_score,omitempty"`
	AwayScore    *int       `json:"away_score,omitempty"`
	WinnerTeamID string     `json:"winner_team_id,omitempty"`
	LoserTeamID  string     `json:"loser_team_id,omitempty"`
	RevisionAt   time.Time  `json:"revision_at"`
	ScoredAt     *time.Time `json:"scored_at,omitempty"`
}

type lockStateDTO struct {
	Season      string     `json:"season"`
	Week        int        `json:"week"`
	Locked      bool       `json:"locked"`
	LockAt      *time.Time `json:"lock_at,omitempty"`
	UnlockAt    *time.Time `json:"unlock_at,omitempty"`
	EvaluatedAt time.Time  `json:"evaluated_at"`
}

type setOverrideRequest struct {
	Mode  string `json:"mode" validate:"required,oneof=lock unlock none"`
	SetBy string `json:"set_by" validate:"required,max=100"`
}

func gameToDTO(item game.Game) gameDTO {
	return gameDTO{
		ID:           item.ID,
		Season:       item.Season,
		Week:         item.Week,
		StartAt:      item.StartAt,
		HomeTeamID:   item.HomeTeamID,
		AwayTeamID:   item.AwayTeamID,
		HomeScore:    item.HomeScore,
		AwayScore:    item.AwayScore,
		WinnerTeamID: item.WinnerTeamID,
		LoserTeamID:  item.LoserTeamID,
		RevisionAt:   item.RevisionAt,
		ScoredAt:     item.ScoredAt,
	}
}

func gamesToDTOs(items []game.Game) []gameDTO {
	out := make([]gameDTO, 0, len(items))
	for _, item := range items {
		out = append(out, gameToDTO(item))
	}
	return out
}

func (h *Handler) ListSeasonGames(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListSeasonGames")
	defer span.End()

	season := r.PathValue("season")
	games, err := h.scheduleService.GamesForSeason(ctx, season)
	if err != nil {
		h.logger.WarnContext(ctx, "list season games failed", "season", season, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, gamesToDTOs(games))
}

func (h *Handler) ListWeekGames(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListWeekGames")
	defer span.End()

	season := r.PathValue("season")
	number, err := parseWeekNumber(r.PathValue("week"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	games, err := h.scheduleService.GamesForWeek(ctx, season, number)
	if err != nil {
		h.logger.WarnContext(ctx, "list week games failed", "season", season, "week", number, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, gamesToDTOs(games))
}

func (h *Handler) ListCompletedGames(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListCompletedGames")
	defer span.End()

	rawSince := strings.TrimSpace(r.URL.Query().Get("since"))
	if rawSince == "" {
		writeError(ctx, w, fmt.Errorf("%w: since query parameter is required", usecase.ErrInvalidInput))
		return
	}
	since, err := time.Parse(time.RFC3339, rawSince)
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: since must be RFC3339", usecase.ErrInvalidInput))
		return
	}

	games, err := h.scheduleService.CompletedGamesSince(ctx, since)
	if err != nil {
		h.logger.WarnContext(ctx, "list completed games failed", "since", rawSince, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, gamesToDTOs(games))
}

func (h *Handler) GetWeekLockState(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetWeekLockState")
	defer span.End()

	season := r.PathValue("season")
	number, err := parseWeekNumber(r.PathValue("week"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	at := time.Now()
	if rawAt := strings.TrimSpace(r.URL.Query().Get("at")); rawAt != "" {
		at, err = time.Parse(time.RFC3339, rawAt)
		if err != nil {
			writeError(ctx, w, fmt.Errorf("%w: at must be RFC3339", usecase.ErrInvalidInput))
			return
		}
	}

	locked, err := h.lockService.IsLocked(ctx, season, number, at)
	if err != nil {
		h.logger.WarnContext(ctx, "lock evaluation failed", "season", season, "week", number, "error", err)
		writeError(ctx, w, err)
		return
	}

	lockAt, unlockAt, err := h.lockService.LockWindow(ctx, season, number)
	if err != nil {
		h.logger.WarnContext(ctx, "lock window lookup failed", "season", season, "week", number, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, lockStateDTO{
		Season:      season,
		Week:        number,
		Locked:      locked,
		LockAt:      lockAt,
		UnlockAt:    unlockAt,
		EvaluatedAt: at,
	})
}

func (h *Handler) SetWeekOverride(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SetWeekOverride")
	defer span.End()

	season := r.PathValue("season")
	number, err := parseWeekNumber(r.PathValue("week"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req setOverrideRequest
	if err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid request body: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	var override *week.Override
	if req.Mode != "none" {
		override = &week.Override{
			Mode:  week.OverrideMode(req.Mode),
			SetBy: req.SetBy,
			SetAt: time.Now(),
		}
	}

	if err := h.scheduleService.SetWeekOverride(ctx, season, number, override); err != nil {
		h.logger.WarnContext(ctx, "set week override failed", "season", season, "week", number, "mode", req.Mode, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]any{
		"season": season,
		"week":   number,
		"mode":   req.Mode,
	})
}

func (h *Handler) ClearScheduleCache(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ClearScheduleCache")
	defer span.End()

	season := strings.TrimSpace(r.URL.Query().Get("season"))
	h.scheduleService.ClearCache(ctx, season)

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"cleared": season})
}

func parseWeekNumber(raw string) (int, error) {
	number, err := strconv.Atoi(raw)
	if err != nil || number <= 0 {
		return 0, fmt.Errorf("%w: week must be a positive integer", usecase.ErrInvalidInput)
	}
	return number, nil
}
