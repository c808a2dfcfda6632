package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/boxlax/fantasy-core/internal/domain/game"
	"github.com/boxlax/fantasy-core/internal/domain/week"
	"github.com/boxlax/fantasy-core/internal/platform/logging"
)

// RosterLockService answers whether lineup edits are permitted for a week at
// a given instant. Apart from an unknown week, every question has a definite
// boolean answer: conflicts are settled by priority, not by erroring.
//
// Priority, highest first: commissioner override, empty week (unlocked),
// fully-completed week (locked), explicit window, derived window.
type RosterLockService struct {
	schedule     *ScheduleService
	unlockBuffer time.Duration
	logger       *logging.Logger
}

func NewRosterLockService(schedule *ScheduleService, unlockBuffer time.Duration, logger *logging.Logger) *RosterLockService {
	if logger == nil {
		logger = logging.Default()
	}
	return &RosterLockService{
		schedule:     schedule,
		unlockBuffer: unlockBuffer,
		logger:       logger,
	}
}

func (s *RosterLockService) IsLocked(ctx context.Context, season string, number int, at time.Time) (bool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterLockService.IsLocked")
	defer span.End()

	snap, exists, err := s.schedule.WeekSnapshot(ctx, season, number)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, fmt.Errorf("%w: week=%s/%d", ErrNotFound, season, number)
	}

	return s.evaluate(snap, at), nil
}

// LockWindow reports the effective lock and unlock instants for a week, for
// display purposes. The unlock pointer is nil when the lock never
// auto-releases. Overrides and the completed-week rule still outrank these
// bounds at decision time.
func (s *RosterLockService) LockWindow(ctx context.Context, season string, number int) (*time.Time, *time.Time, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterLockService.LockWindow")
	defer span.End()

	snap, exists, err := s.schedule.WeekSnapshot(ctx, season, number)
	if err != nil {
		return nil, nil, err
	}
	if !exists {
		return nil, nil, fmt.Errorf("%w: week=%s/%d", ErrNotFound, season, number)
	}

	lockAt, unlockAt, ok := s.window(snap.Week, snap.Games)
	if !ok {
		return nil, nil, nil
	}
	return &lockAt, unlockAt, nil
}

func (s *RosterLockService) evaluate(snap week.Snapshot, at time.Time) bool {
	if ov := snap.Week.Override; ov != nil {
		return ov.Mode == week.OverrideForceLock
	}

	if len(snap.Games) == 0 {
		return false
	}

	// Once every game has a result the week stays locked even if the
	// computed unlock has not elapsed: reopening would let managers edit
	// against known outcomes.
	if allCompleted(snap.Games) {
		return true
	}

	lockAt, unlockAt, ok := s.window(snap.Week, snap.Games)
	if !ok {
		return false
	}
	if at.Before(lockAt) {
		return false
	}
	if unlockAt == nil {
		return true
	}
	return at.Before(*unlockAt)
}

// window resolves the effective lock bounds. Explicit week times win; absent
// a lock time it is derived conservatively from the earliest start in the
// week, so no lineup can change once any game is underway. The derived
// unlock is the last start plus the configured buffer.
func (s *RosterLockService) window(w week.Week, games []game.Game) (time.Time, *time.Time, bool) {
	var lockAt time.Time
	if w.LockAt != nil {
		lockAt = *w.LockAt
	} else {
		earliest, ok := earliestStart(games)
		if !ok {
			return time.Time{}, nil, false
		}
		lockAt = earliest
	}

	if w.LockAt != nil {
		// Explicit windows release only through an explicit unlock time.
		if w.UnlockAt == nil {
			return lockAt, nil, true
		}
		unlockAt := *w.UnlockAt
		return lockAt, &unlockAt, true
	}

	if w.UnlockAt != nil {
		unlockAt := *w.UnlockAt
		return lockAt, &unlockAt, true
	}

	latest, ok := latestStart(games)
	if !ok {
		return time.Time{}, nil, false
	}
	unlockAt := latest.Add(s.unlockBuffer)
	return lockAt, &unlockAt, true
}

func allCompleted(games []game.Game) bool {
	for _, item := range games {
		if !item.Completed() {
			return false
		}
	}
	return true
}

func earliestStart(games []game.Game) (time.Time, bool) {
	var min time.Time
	for _, item := range games {
		if item.StartAt.IsZero() {
			continue
		}
		if min.IsZero() || item.StartAt.Before(min) {
			min = item.StartAt
		}
	}
	return min, !min.IsZero()
}

func latestStart(games []game.Game) (time.Time, bool) {
	var max time.Time
	for _, item := range games {
		if item.StartAt.After(max) {
			max = item.StartAt
		}
	}
	return max, !max.IsZero()
}
