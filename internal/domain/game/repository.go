package game

import (
	"context"
	"time"
)

// Repository exposes the persisted schedule mirror.
type Repository interface {
	GetByID(ctx context.Context, id string) (Game, bool, error)
	ListBySeason(ctx context.Context, season string) ([]Game, error)
	ListCompletedSince(ctx context.Context, since time.Time) ([]Game, error)
	// Upsert writes the whole row, score triple included, in one atomic
	// step, applying Reconcile against the stored row. Stale records are
	// dropped without error.
	Upsert(ctx context.Context, item Game) error
	// MarkScored flips the scored flag once; it reports false when the flag
	// was already set.
	MarkScored(ctx context.Context, id string, at time.Time) (bool, error)
}
