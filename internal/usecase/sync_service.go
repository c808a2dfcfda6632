package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/boxlax/fantasy-core/internal/domain/game"
	"github.com/boxlax/fantasy-core/internal/platform/logging"
)

const (
	syncStatusApplied  = "applied"
	syncStatusRejected = "rejected"
	syncStatusFailed   = "failed"
)

type SyncGameResult struct {
	GameID  string
	Status  string
	Message string
}

type SyncResult struct {
	Season        string
	Fetched       int
	AppliedCount  int
	RejectedCount int
	FailedCount   int
	Games         []SyncGameResult
	StartedAt     time.Time
	DurationMs    int64
}

// SyncService drives a season refresh: one bounded fetch from the feed, then
// concurrent guarded upserts into the mirror. A fetch that times out leaves
// the mirror exactly as it was; partial results are never applied.
type SyncService struct {
	source       ScheduleSource
	schedule     *ScheduleService
	fetchTimeout time.Duration
	workerCount  int
	logger       *logging.Logger
	now          func() time.Time
}

func NewSyncService(
	source ScheduleSource,
	schedule *ScheduleService,
	fetchTimeout time.Duration,
	workerCount int,
	logger *logging.Logger,
) *SyncService {
	if logger == nil {
		logger = logging.Default()
	}
	if fetchTimeout <= 0 {
		fetchTimeout = 30 * time.Second
	}
	if workerCount < 1 {
		workerCount = 4
	}
	return &SyncService{
		source:       source,
		schedule:     schedule,
		fetchTimeout: fetchTimeout,
		workerCount:  workerCount,
		logger:       logger,
		now:          time.Now,
	}
}

func (s *SyncService) SyncSeason(ctx context.Context, season string) (SyncResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SyncService.SyncSeason")
	defer span.End()

	if season == "" {
		return SyncResult{}, fmt.Errorf("%w: season is required", ErrInvalidInput)
	}
	if s.source == nil {
		return SyncResult{}, fmt.Errorf("%w: no schedule source configured", ErrDependencyUnavailable)
	}

	startedAt := s.now().UTC()

	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	records, err := s.source.FetchSeason(fetchCtx, season)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(fetchCtx.Err(), context.DeadlineExceeded) {
			return SyncResult{}, fmt.Errorf("%w: season=%s: %v", ErrUpstreamTimeout, season, err)
		}
		return SyncResult{}, fmt.Errorf("fetch season %s: %w", season, err)
	}

	result := SyncResult{
		Season:    season,
		Fetched:   len(records),
		StartedAt: startedAt,
		Games:     make([]SyncGameResult, 0, len(records)),
	}
	if len(records) == 0 {
		result.DurationMs = time.Since(startedAt).Milliseconds()
		return result, nil
	}

	pool, err := ants.NewPool(s.workerCount)
	if err != nil {
		return SyncResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	rows := make(chan SyncGameResult, len(records))
	var applied, rejected, failed atomic.Int32

	if err := s.dispatchUpserts(ctx, pool, records, rows, &applied, &rejected, &failed); err != nil {
		return SyncResult{}, err
	}
	close(rows)

	for row := range rows {
		result.Games = append(result.Games, row)
	}
	sort.SliceStable(result.Games, func(i, j int) bool {
		return result.Games[i].GameID < result.Games[j].GameID
	})

	result.AppliedCount = int(applied.Load())
	result.RejectedCount = int(rejected.Load())
	result.FailedCount = int(failed.Load())
	result.DurationMs = time.Since(startedAt).Milliseconds()

	s.logger.InfoContext(ctx, "season sync finished",
		"season", season,
		"fetched", result.Fetched,
		"applied", result.AppliedCount,
		"rejected", result.RejectedCount,
		"failed", result.FailedCount,
		"duration_ms", result.DurationMs,
	)
	return result, nil
}

// taskPool is the slice of the ants pool the dispatcher needs.
type taskPool interface {
	Submit(task func()) error
}

// dispatchUpserts fans the records out over the pool and blocks until
// every submitted upsert has finished. When a submission fails it still
// waits for the in-flight workers before returning, so no upsert keeps
// mutating the mirror after the sync has reported its error. The rows
// channel is sized for all records, so finished workers never block on it.
func (s *SyncService) dispatchUpserts(
	ctx context.Context,
	pool taskPool,
	records []ScheduleRecord,
	rows chan<- SyncGameResult,
	applied, rejected, failed *atomic.Int32,
) error {
	var workers sync.WaitGroup
	for _, record := range records {
		record := record
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			row := SyncGameResult{GameID: record.ExternalID, Status: syncStatusApplied}
			if upsertErr := s.schedule.UpsertGame(ctx, recordToGame(record)); upsertErr != nil {
				switch {
				case errors.Is(upsertErr, ErrInconsistentScore), errors.Is(upsertErr, ErrInvalidInput):
					row.Status = syncStatusRejected
				default:
					row.Status = syncStatusFailed
				}
				row.Message = upsertErr.Error()
			}

			switch row.Status {
			case syncStatusApplied:
				applied.Add(1)
			case syncStatusRejected:
				rejected.Add(1)
			default:
				failed.Add(1)
			}
			rows <- row
		}); err != nil {
			workers.Done()
			workers.Wait()
			return fmt.Errorf("submit upsert to worker pool: %w", err)
		}
	}

	workers.Wait()
	return nil
}

func recordToGame(record ScheduleRecord) game.Game {
	return game.Game{
		ID:           record.ExternalID,
		Season:       record.Season,
		Week:         record.Week,
		StartAt:      record.StartAt,
		HomeTeamID:   record.HomeTeamID,
		AwayTeamID:   record.AwayTeamID,
		HomeScore:    record.HomeScore,
		AwayScore:    record.AwayScore,
		WinnerTeamID: record.Winner,
		LoserTeamID:  record.Loser,
		RevisionAt:   record.RevisionAt,
	}
}
