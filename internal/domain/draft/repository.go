package draft

import (
	"context"
	"time"
)

type Repository interface {
	GetByID(ctx context.Context, id string) (Draft, bool, error)
	// ListPicks returns the draft's picks ordered by slot.
	ListPicks(ctx context.Context, draftID string) ([]Pick, error)
	SavePickOrder(ctx context.Context, draftID string, picks []Pick) error
	SetFinalized(ctx context.Context, draftID string, at time.Time) error
}
