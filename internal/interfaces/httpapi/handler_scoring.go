package httpapi

import (
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/boxlax/fantasy-core/internal/domain/fantasy"
	"github.com/boxlax/fantasy-core/internal/domain/scoring"
)

type playerPointsDTO struct {
	PlayerID   string    `json:"player_id"`
	Points     string    `json:"points"`
	PointsRaw  int64     `json:"points_raw"`
	ComputedAt time.Time `json:"computed_at"`
}

type scoreGameResponseDTO struct {
	GameID  string            `json:"game_id"`
	Applied bool              `json:"applied"`
	Deltas  []playerPointsDTO `json:"deltas"`
}

func pointsToDTOs(rows []scoring.PlayerGamePoints) []playerPointsDTO {
	out := make([]playerPointsDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, playerPointsDTO{
			PlayerID:   row.PlayerID,
			Points:     row.Points.String(),
			PointsRaw:  int64(row.Points),
			ComputedAt: row.ComputedAt,
		})
	}
	return out
}

func deltasToDTOs(deltas map[string]fantasy.Points, at time.Time) []playerPointsDTO {
	out := make([]playerPointsDTO, 0, len(deltas))
	for playerID, points := range deltas {
		out = append(out, playerPointsDTO{
			PlayerID:   playerID,
			Points:     points.String(),
			PointsRaw:  int64(points),
			ComputedAt: at,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlayerID < out[j].PlayerID })
	return out
}

// ScoreGame applies the fantasy computation for one completed game. Passing
// force=true recomputes even when the game was already scored, for corrected
// results.
func (h *Handler) ScoreGame(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ScoreGame")
	defer span.End()

	gameID := r.PathValue("gameID")
	force, _ := strconv.ParseBool(strings.TrimSpace(r.URL.Query().Get("force")))

	var (
		deltas  map[string]fantasy.Points
		applied bool
		err     error
	)
	if force {
		deltas, err = h.scoringService.RescoreGame(ctx, gameID)
		applied = err == nil
	} else {
		deltas, applied, err = h.scoringService.ApplyGameScore(ctx, gameID)
	}
	if err != nil {
		h.logger.WarnContext(ctx, "score game failed", "game_id", gameID, "force", force, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, scoreGameResponseDTO{
		GameID:  gameID,
		Applied: applied,
		Deltas:  deltasToDTOs(deltas, time.Now()),
	})
}

func (h *Handler) ListGamePoints(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListGamePoints")
	defer span.End()

	gameID := r.PathValue("gameID")
	rows, err := h.scoringService.GamePoints(ctx, gameID)
	if err != nil {
		h.logger.WarnContext(ctx, "list game points failed", "game_id", gameID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, pointsToDTOs(rows))
}
