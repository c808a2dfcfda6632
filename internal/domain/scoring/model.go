package scoring

import (
	"time"

	"github.com/boxlax/fantasy-core/internal/domain/fantasy"
)

// PlayerGamePoints is the persisted fantasy point delta one player earned in
// one game. Rows are keyed by (game, player) so re-running a computation
// replaces rather than accumulates.
type PlayerGamePoints struct {
	GameID     string
	PlayerID   string
	Points     fantasy.Points
	ComputedAt time.Time
}
