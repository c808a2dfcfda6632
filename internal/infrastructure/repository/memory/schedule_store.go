package memory

import (
	"context"
	"sync"
	"time"

	"github.com/boxlax/fantasy-core/internal/domain/game"
	"github.com/boxlax/fantasy-core/internal/domain/week"
)

// ScheduleStore keeps games and weeks behind one mutex so that a week
// snapshot observes a single consistent version of both, and a game upsert
// publishes the whole score triple in one step.
type ScheduleStore struct {
	mu    sync.RWMutex
	games map[string]game.Game
	weeks map[weekKey]week.Week
}

type weekKey struct {
	season string
	number int
}

func NewScheduleStore(games []game.Game, weeks []week.Week) *ScheduleStore {
	s := &ScheduleStore{
		games: make(map[string]game.Game, len(games)),
		weeks: make(map[weekKey]week.Week, len(weeks)),
	}
	for _, item := range games {
		s.games[item.ID] = item
	}
	for _, item := range weeks {
		s.weeks[weekKey{season: item.Season, number: item.Number}] = item
	}
	return s
}

// Games returns the game.Repository view of the store.
func (s *ScheduleStore) Games() *GameRepository { return &GameRepository{store: s} }

// Weeks returns the week.Repository view of the store.
func (s *ScheduleStore) Weeks() *WeekRepository { return &WeekRepository{store: s} }

type GameRepository struct {
	store *ScheduleStore
}

func (r *GameRepository) GetByID(_ context.Context, id string) (game.Game, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	item, ok := r.store.games[id]
	return item, ok, nil
}

func (r *GameRepository) ListBySeason(_ context.Context, season string) ([]game.Game, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]game.Game, 0)
	for _, item := range r.store.games {
		if item.Season == season {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *GameRepository) ListCompletedSince(_ context.Context, since time.Time) ([]game.Game, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]game.Game, 0)
	for _, item := range r.store.games {
		if item.Completed() && !item.StartAt.Before(since) {
			out = append(out, item)
		}
	}
	return out, nil
}

// Upsert reconciles the record against the stored row under the write
// lock, so a stale record loses even when it raced past a service-level
// freshness check.
func (r *GameRepository) Upsert(_ context.Context, item game.Game) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if existing, ok := r.store.games[item.ID]; ok {
		next, apply := game.Reconcile(existing, item)
		if !apply {
			return nil
		}
		item = next
	}
	r.store.games[item.ID] = item
	return nil
}

func (r *GameRepository) MarkScored(_ context.Context, id string, at time.Time) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	item, ok := r.store.games[id]
	if !ok || item.ScoredAt != nil {
		return false, nil
	}
	item.ScoredAt = &at
	r.store.games[id] = item
	return true, nil
}

type WeekRepository struct {
	store *ScheduleStore
}

func (r *WeekRepository) GetByNumber(_ context.Context, season string, number int) (week.Week, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	item, ok := r.store.weeks[weekKey{season: season, number: number}]
	return item, ok, nil
}

func (r *WeekRepository) Upsert(_ context.Context, item week.Week) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.weeks[weekKey{season: item.Season, number: item.Number}] = item
	return nil
}

func (r *WeekRepository) SetOverride(_ context.Context, season string, number int, override *week.Override) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	key := weekKey{season: season, number: number}
	item, ok := r.store.weeks[key]
	if !ok {
		return nil
	}
	if override == nil {
		item.Override = nil
	} else {
		copied := *override
		item.Override = &copied
	}
	r.store.weeks[key] = item
	return nil
}

func (r *WeekRepository) SnapshotWithGames(_ context.Context, season string, number int) (week.Snapshot, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	item, ok := r.store.weeks[weekKey{season: season, number: number}]
	if !ok {
		return week.Snapshot{}, false, nil
	}

	games := make([]game.Game, 0)
	for _, g := range r.store.games {
		if g.Season == season && g.Week == number {
			games = append(games, g)
		}
	}
	return week.Snapshot{Week: item, Games: games}, true, nil
}
