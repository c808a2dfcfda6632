package week

import (
	"context"

	"github.com/boxlax/fantasy-core/internal/domain/game"
)

// Snapshot pairs a week with its games as read in one consistent view. Lock
// evaluation must never mix window bounds from one version of the week with a
// game list from another.
type Snapshot struct {
	Week  Week
	Games []game.Game
}

type Repository interface {
	GetByNumber(ctx context.Context, season string, number int) (Week, bool, error)
	Upsert(ctx context.Context, item Week) error
	SetOverride(ctx context.Context, season string, number int, override *Override) error
	SnapshotWithGames(ctx context.Context, season string, number int) (Snapshot, bool, error)
}
