package stats

import "context"

type Repository interface {
	ListByGame(ctx context.Context, gameID string) ([]Line, error)
	Upsert(ctx context.Context, line Line) error
}
