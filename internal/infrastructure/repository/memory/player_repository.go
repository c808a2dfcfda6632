package memory

import (
	"context"
	"sync"

	"github.com/boxlax/fantasy-core/internal/domain/player"
)

type PlayerRepository struct {
	mu    sync.RWMutex
	items map[string]player.Player
}

func NewPlayerRepository(players []player.Player) *PlayerRepository {
	items := make(map[string]player.Player, len(players))
	for _, item := range players {
		items[item.ID] = item
	}
	return &PlayerRepository{items: items}
}

func (r *PlayerRepository) GetByIDs(_ context.Context, ids []string) ([]player.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]player.Player, 0, len(ids))
	for _, id := range ids {
		if item, ok := r.items[id]; ok {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *PlayerRepository) Upsert(_ context.Context, item player.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[item.ID] = item
	return nil
}
