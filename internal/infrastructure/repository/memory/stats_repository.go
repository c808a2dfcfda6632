package memory

import (
	"context"
	"sync"

	"github.com/boxlax/fantasy-core/internal/domain/stats"
)

type StatsRepository struct {
	mu      sync.RWMutex
	byGame  map[string][]stats.Line
	lineIdx map[string]map[string]int
}

func NewStatsRepository(lines []stats.Line) *StatsRepository {
	r := &StatsRepository{
		byGame:  make(map[string][]stats.Line),
		lineIdx: make(map[string]map[string]int),
	}
	for _, line := range lines {
		r.put(line)
	}
	return r
}

func (r *StatsRepository) ListByGame(_ context.Context, gameID string) ([]stats.Line, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := r.byGame[gameID]
	out := make([]stats.Line, 0, len(items))
	out = append(out, items...)
	return out, nil
}

func (r *StatsRepository) Upsert(_ context.Context, line stats.Line) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.put(line)
	return nil
}

func (r *StatsRepository) put(line stats.Line) {
	idx, ok := r.lineIdx[line.GameID]
	if !ok {
		idx = make(map[string]int)
		r.lineIdx[line.GameID] = idx
	}
	if pos, exists := idx[line.PlayerID]; exists {
		r.byGame[line.GameID][pos] = line
		return
	}
	idx[line.PlayerID] = len(r.byGame[line.GameID])
	r.byGame[line.GameID] = append(r.byGame[line.GameID], line)
}
