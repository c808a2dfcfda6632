package cache

import (
	"context"
	"fmt"
	"sync"

	"github.com/boxlax/fantasy-core/internal/platform/resilience"
)

// Store memoizes season-level schedule reads. Entries never expire on their
// own: a cached schedule stays valid until a write through the mirror
// invalidates it, because staleness here is a correctness problem, not a
// tuning knob.
//
// Each season carries a generation counter. A loader snapshots the
// generation before it reads the backing store; its result is only
// installed if no invalidation ran in between. Without that check a slow
// loader could cache a snapshot taken before a concurrent write, and with
// no expiry the stale entry would never heal.
type Store struct {
	mu      sync.RWMutex
	entries map[string]any
	epoch   uint64
	gens    map[string]uint64
	flight  resilience.SingleFlight
}

func NewStore() *Store {
	return &Store{
		entries: make(map[string]any),
		gens:    make(map[string]uint64),
	}
}

func (s *Store) Get(_ context.Context, season string) (any, bool) {
	if season == "" {
		return nil, false
	}

	s.mu.RLock()
	value, ok := s.entries[season]
	s.mu.RUnlock()
	return value, ok
}

func (s *Store) Set(_ context.Context, season string, value any) {
	if season == "" {
		return
	}

	s.mu.Lock()
	s.entries[season] = value
	s.mu.Unlock()
}

// Invalidate drops one season's entry. It must complete before the write
// that triggered it is reported done. Bumping the generation also voids
// any load that started against the pre-write state.
func (s *Store) Invalidate(_ context.Context, season string) {
	if season == "" {
		return
	}

	s.mu.Lock()
	delete(s.entries, season)
	s.gens[season]++
	s.mu.Unlock()
}

func (s *Store) InvalidateAll(_ context.Context) {
	s.mu.Lock()
	s.entries = make(map[string]any)
	s.epoch++
	s.mu.Unlock()
}

func (s *Store) generation(season string) (epoch, gen uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epoch, s.gens[season]
}

// install caches the loaded value unless the season was invalidated after
// the generation snapshot was taken.
func (s *Store) install(season string, value any, epoch, gen uint64) {
	s.mu.Lock()
	if s.epoch == epoch && s.gens[season] == gen {
		s.entries[season] = value
	}
	s.mu.Unlock()
}

// GetOrLoad returns the cached value or loads it once, deduplicating
// concurrent loads for the same season.
func (s *Store) GetOrLoad(ctx context.Context, season string, loader func(context.Context) (any, error)) (any, error) {
	if loader == nil {
		return nil, fmt.Errorf("loader is required")
	}
	if season == "" {
		return loader(ctx)
	}

	if value, ok := s.Get(ctx, season); ok {
		return value, nil
	}

	value, err, _ := s.flight.Do(season, func() (any, error) {
		if cached, ok := s.Get(ctx, season); ok {
			return cached, nil
		}

		epoch, gen := s.generation(season)
		loaded, loadErr := loader(ctx)
		if loadErr != nil {
			return nil, loadErr
		}
		s.install(season, loaded, epoch, gen)
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}

	return value, nil
}
