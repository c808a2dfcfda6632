package scoring

import "context"

type Repository interface {
	ListByGame(ctx context.Context, gameID string) ([]PlayerGamePoints, error)
	UpsertGamePoints(ctx context.Context, gameID string, rows []PlayerGamePoints) error
}
