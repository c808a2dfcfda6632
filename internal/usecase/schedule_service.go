package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/boxlax/fantasy-core/internal/domain/game"
	"github.com/boxlax/fantasy-core/internal/domain/week"
	"github.com/boxlax/fantasy-core/internal/platform/cache"
	"github.com/boxlax/fantasy-core/internal/platform/logging"
)

// ScheduleService is the schedule mirror: the authoritative, last-synced
// record of games. All lock and scoring reads go through it.
type ScheduleService struct {
	gameRepo game.Repository
	weekRepo week.Repository
	cache    *cache.Store
	logger   *logging.Logger
	now      func() time.Time
}

func NewScheduleService(
	gameRepo game.Repository,
	weekRepo week.Repository,
	store *cache.Store,
	logger *logging.Logger,
) *ScheduleService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ScheduleService{
		gameRepo: gameRepo,
		weekRepo: weekRepo,
		cache:    store,
		logger:   logger,
		now:      time.Now,
	}
}

// UpsertGame applies one synchronized record, keyed by the stable external
// game ID. Records that violate the score/outcome invariant are rejected and
// the stored row keeps its prior value. A record may only take a game from
// scored back to unscored when its revision is strictly newer, so a stale
// fetch can never clobber a confirmed result.
func (s *ScheduleService) UpsertGame(ctx context.Context, item game.Game) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScheduleService.UpsertGame")
	defer span.End()

	if item.ID == "" || item.Season == "" {
		return fmt.Errorf("%w: game id and season are required", ErrInvalidInput)
	}
	if item.Week <= 0 {
		return fmt.Errorf("%w: game week must be positive", ErrInvalidInput)
	}

	item = item.ResolveOutcome()
	if err := item.ValidateScoreState(); err != nil {
		s.logger.WarnContext(ctx, "rejected schedule record",
			"game_id", item.ID,
			"season", item.Season,
			"error", err,
		)
		return fmt.Errorf("%w: game=%s: %v", ErrInconsistentScore, item.ID, err)
	}

	// The read here only classifies the skip for logging. The repository
	// re-runs game.Reconcile under its own write lock; a record that races
	// past this check still cannot clobber a newer stored row.
	existing, exists, err := s.gameRepo.GetByID(ctx, item.ID)
	if err != nil {
		return fmt.Errorf("get game before upsert: %w", err)
	}
	if exists {
		if _, apply := game.Reconcile(existing, item); !apply {
			if existing.Completed() && !item.Completed() {
				s.logger.WarnContext(ctx, "ignored stale unscored record for completed game",
					"game_id", item.ID,
					"stored_revision", existing.RevisionAt,
					"incoming_revision", item.RevisionAt,
				)
			} else {
				s.logger.DebugContext(ctx, "ignored stale schedule record",
					"game_id", item.ID,
					"stored_revision", existing.RevisionAt,
					"incoming_revision", item.RevisionAt,
				)
			}
			return nil
		}
	}

	if err := s.gameRepo.Upsert(ctx, item); err != nil {
		return fmt.Errorf("upsert game %s: %w", item.ID, err)
	}

	// The upsert is not complete until the season entry is gone; a reader
	// arriving after this call returns must see the new schedule.
	if s.cache != nil {
		s.cache.Invalidate(ctx, item.Season)
	}

	return nil
}

// GamesForWeek returns the week's games ordered by start time. Reads go
// through the season cache; the cache is only ever stale-free because every
// mirror write invalidates it synchronously.
func (s *ScheduleService) GamesForWeek(ctx context.Context, season string, number int) ([]game.Game, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScheduleService.GamesForWeek")
	defer span.End()

	all, err := s.GamesForSeason(ctx, season)
	if err != nil {
		return nil, err
	}

	out := make([]game.Game, 0, len(all))
	for _, item := range all {
		if item.Week == number {
			out = append(out, item)
		}
	}
	return out, nil
}

func (s *ScheduleService) GamesForSeason(ctx context.Context, season string) ([]game.Game, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScheduleService.GamesForSeason")
	defer span.End()

	if season == "" {
		return nil, fmt.Errorf("%w: season is required", ErrInvalidInput)
	}

	if s.cache == nil {
		return s.loadSeason(ctx, season)
	}

	value, err := s.cache.GetOrLoad(ctx, season, func(ctx context.Context) (any, error) {
		return s.loadSeason(ctx, season)
	})
	if err != nil {
		return nil, err
	}

	items, ok := value.([]game.Game)
	if !ok {
		return nil, fmt.Errorf("unexpected cache payload for season %s", season)
	}
	// Callers get their own copy; the cached slice is shared.
	return append([]game.Game(nil), items...), nil
}

// CompletedGamesSince enumerates finished games for the scoring driver. Each
// call re-reads the store, never the cache: scoring inputs must reflect the
// current mirror, and a fresh call restarts the enumeration from scratch.
func (s *ScheduleService) CompletedGamesSince(ctx context.Context, since time.Time) ([]game.Game, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScheduleService.CompletedGamesSince")
	defer span.End()

	items, err := s.gameRepo.ListCompletedSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("list completed games: %w", err)
	}

	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].StartAt.Equal(items[j].StartAt) {
			return items[i].StartAt.Before(items[j].StartAt)
		}
		return items[i].ID < items[j].ID
	})
	return items, nil
}

// WeekSnapshot reads a week and its games in one consistent view for lock
// evaluation. It bypasses the cache on purpose.
func (s *ScheduleService) WeekSnapshot(ctx context.Context, season string, number int) (week.Snapshot, bool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScheduleService.WeekSnapshot")
	defer span.End()

	snap, ok, err := s.weekRepo.SnapshotWithGames(ctx, season, number)
	if err != nil {
		return week.Snapshot{}, false, fmt.Errorf("snapshot week %s/%d: %w", season, number, err)
	}
	return snap, ok, nil
}

func (s *ScheduleService) UpsertWeek(ctx context.Context, item week.Week) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScheduleService.UpsertWeek")
	defer span.End()

	if err := item.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.weekRepo.Upsert(ctx, item); err != nil {
		return fmt.Errorf("upsert week %s/%d: %w", item.Season, item.Number, err)
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, item.Season)
	}
	return nil
}

// SetWeekOverride records a commissioner force-lock/force-unlock, or clears
// it when override is nil.
func (s *ScheduleService) SetWeekOverride(ctx context.Context, season string, number int, override *week.Override) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScheduleService.SetWeekOverride")
	defer span.End()

	if override != nil {
		if override.Mode != week.OverrideForceLock && override.Mode != week.OverrideForceUnlock {
			return fmt.Errorf("%w: unknown override mode %q", ErrInvalidInput, override.Mode)
		}
		if override.SetBy == "" {
			return fmt.Errorf("%w: override requires the acting commissioner", ErrInvalidInput)
		}
		if override.SetAt.IsZero() {
			override.SetAt = s.now().UTC()
		}
	}

	_, exists, err := s.weekRepo.GetByNumber(ctx, season, number)
	if err != nil {
		return fmt.Errorf("get week before override: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: week=%s/%d", ErrNotFound, season, number)
	}

	if err := s.weekRepo.SetOverride(ctx, season, number, override); err != nil {
		return fmt.Errorf("set override week=%s/%d: %w", season, number, err)
	}
	return nil
}

// ClearCache drops one season's cached schedule, or all of them when season
// is empty. This is the only maintenance action exposed to the admin layer.
func (s *ScheduleService) ClearCache(ctx context.Context, season string) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScheduleService.ClearCache")
	defer span.End()

	if s.cache == nil {
		return
	}
	if season == "" {
		s.cache.InvalidateAll(ctx)
		return
	}
	s.cache.Invalidate(ctx, season)
}

func (s *ScheduleService) loadSeason(ctx context.Context, season string) ([]game.Game, error) {
	items, err := s.gameRepo.ListBySeason(ctx, season)
	if err != nil {
		return nil, fmt.Errorf("list games by season: %w", err)
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Week != items[j].Week {
			return items[i].Week < items[j].Week
		}
		if !items[i].StartAt.Equal(items[j].StartAt) {
			return items[i].StartAt.Before(items[j].StartAt)
		}
		return items[i].ID < items[j].ID
	})
	return items, nil
}
