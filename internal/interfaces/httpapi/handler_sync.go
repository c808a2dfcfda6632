package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/boxlax/fantasy-core/internal/usecase"
	sonic "github.com/bytedance/sonic"
)

type runSyncRequest struct {
	Season string `json:"season" validate:"required,max=50"`
}

type syncGameResultDTO struct {
	GameID  string `json:"game_id"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type syncResultDTO struct {
	Season     string              `json:"season"`
	Fetched    int                 `json:"fetched"`
	Applied    int                 `json:"applied"`
	Rejected   int                 `json:"rejected"`
	Failed     int                 `json:"failed"`
	Games      []syncGameResultDTO `json:"games"`
	StartedAt  time.Time           `json:"started_at"`
	DurationMs int64               `json:"duration_ms"`
}

func (h *Handler) RunScheduleSync(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunScheduleSync")
	defer span.End()

	var req runSyncRequest
	if err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid request body: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.syncService.SyncSeason(ctx, req.Season)
	if err != nil {
		h.logger.ErrorContext(ctx, "schedule sync failed", "season", req.Season, "error", err)
		writeError(ctx, w, err)
		return
	}

	games := make([]syncGameResultDTO, 0, len(result.Games))
	for _, item := range result.Games {
		games = append(games, syncGameResultDTO{
			GameID:  item.GameID,
			Status:  item.Status,
			Message: item.Message,
		})
	}

	writeSuccess(ctx, w, http.StatusOK, syncResultDTO{
		Season:     result.Season,
		Fetched:    result.Fetched,
		Applied:    result.AppliedCount,
		Rejected:   result.RejectedCount,
		Failed:     result.FailedCount,
		Games:      games,
		StartedAt:  result.StartedAt,
		DurationMs: result.DurationMs,
	})
}
