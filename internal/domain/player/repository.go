package player

import "context"

type Repository interface {
	GetByIDs(ctx context.Context, ids []string) ([]Player, error)
	Upsert(ctx context.Context, item Player) error
}
