package memory

import (
	"context"
	"sync"

	"github.com/boxlax/fantasy-core/internal/domain/scoring"
)

type ScoringRepository struct {
	mu     sync.RWMutex
	byGame map[string]map[string]scoring.PlayerGamePoints
}

func NewScoringRepository() *ScoringRepository {
	return &ScoringRepository{byGame: make(map[string]map[string]scoring.PlayerGamePoints)}
}

func (r *ScoringRepository) ListByGame(_ context.Context, gameID string) ([]scoring.PlayerGamePoints, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows := r.byGame[gameID]
	out := make([]scoring.PlayerGamePoints, 0, len(rows))
	for _, row := range rows {
		out = append(out, row)
	}
	return out, nil
}

func (r *ScoringRepository) UpsertGamePoints(_ context.Context, gameID string, rows []scoring.PlayerGamePoints) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	byPlayer, ok := r.byGame[gameID]
	if !ok {
		byPlayer = make(map[string]scoring.PlayerGamePoints, len(rows))
		r.byGame[gameID] = byPlayer
	}
	for _, row := range rows {
		byPlayer[row.PlayerID] = row
	}
	return nil
}
