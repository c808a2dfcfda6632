package memory

import (
	"context"
	"testing"
	"time"

	"github.com/boxlax/fantasy-core/internal/domain/game"
)

func mirrorRow(id string, revisionAt time.Time) game.Game {
	return game.Game{
		ID:         id,
		Season:     "s1",
		Week:       1,
		StartAt:    time.Date(2026, 1, 10, 19, 0, 0, 0, time.UTC),
		HomeTeamID: "TOR",
		AwayTeamID: "BUF",
		RevisionAt: revisionAt,
	}
}

func confirmedRow(id string, revisionAt time.Time) game.Game {
	item := mirrorRow(id, revisionAt)
	item.HomeScore = intPtr(12)
	item.AwayScore = intPtr(9)
	item.WinnerTeamID = "TOR"
	item.LoserTeamID = "BUF"
	scoredAt := revisionAt.Add(time.Minute)
	item.ScoredAt = &scoredAt
	return item
}

// A record read before a newer result was stored can arrive at the
// repository after it. The write itself must drop it, regardless of any
// freshness check the caller ran earlier.
func TestGameRepositoryUpsert_LateStaleRecordLoses(t *testing.T) {
	rev := time.Date(2026, 1, 10, 22, 0, 0, 0, time.UTC)
	repo := NewScheduleStore([]game.Game{confirmedRow("g1", rev)}, nil).Games()
	ctx := context.Background()

	stale := mirrorRow("g1", rev.Add(-time.Hour))
	if err := repo.Upsert(ctx, stale); err != nil {
		t.Fatalf("upsert stale record: %v", err)
	}

	got, ok, err := repo.GetByID(ctx, "g1")
	if err != nil || !ok {
		t.Fatalf("get game: ok=%v err=%v", ok, err)
	}
	if !got.Completed() {
		t.Fatalf("stale record must not reopen a completed game")
	}
	if !got.RevisionAt.Equal(rev) {
		t.Fatalf("stored revision changed to %v", got.RevisionAt)
	}
	if got.ScoredAt == nil {
		t.Fatalf("stale record must not clear the scored mark")
	}
}

func TestGameRepositoryUpsert_EqualRevisionCannotReopenCompletedGame(t *testing.T) {
	rev := time.Date(2026, 1, 10, 22, 0, 0, 0, time.UTC)
	repo := NewScheduleStore([]game.Game{confirmedRow("g1", rev)}, nil).Games()
	ctx := context.Background()

	if err := repo.Upsert(ctx, mirrorRow("g1", rev)); err != nil {
		t.Fatalf("upsert record: %v", err)
	}

	got, _, err := repo.GetByID(ctx, "g1")
	if err != nil {
		t.Fatalf("get game: %v", err)
	}
	if !got.Completed() {
		t.Fatalf("equal-revision unscored record must not reopen the game")
	}
}

func TestGameRepositoryUpsert_NewerCorrectionApplies(t *testing.T) {
	rev := time.Date(2026, 1, 10, 22, 0, 0, 0, time.UTC)
	repo := NewScheduleStore([]game.Game{confirmedRow("g1", rev)}, nil).Games()
	ctx := context.Background()

	correction := mirrorRow("g1", rev.Add(time.Hour))
	if err := repo.Upsert(ctx, correction); err != nil {
		t.Fatalf("upsert correction: %v", err)
	}

	got, _, err := repo.GetByID(ctx, "g1")
	if err != nil {
		t.Fatalf("get game: %v", err)
	}
	if got.Completed() {
		t.Fatalf("strictly newer unscored record must reopen the game")
	}
	if got.ScoredAt != nil {
		t.Fatalf("reopened game must drop the scored mark")
	}
}

func TestGameRepositoryUpsert_UnchangedResultKeepsScoredMark(t *testing.T) {
	rev := time.Date(2026, 1, 10, 22, 0, 0, 0, time.UTC)
	repo := NewScheduleStore([]game.Game{confirmedRow("g1", rev)}, nil).Games()
	ctx := context.Background()

	refresh := confirmedRow("g1", rev.Add(time.Hour))
	refresh.ScoredAt = nil
	if err := repo.Upsert(ctx, refresh); err != nil {
		t.Fatalf("upsert refresh: %v", err)
	}

	got, _, err := repo.GetByID(ctx, "g1")
	if err != nil {
		t.Fatalf("get game: %v", err)
	}
	if got.ScoredAt == nil {
		t.Fatalf("refresh with the same result must keep the scored mark")
	}
	if !got.RevisionAt.Equal(rev.Add(time.Hour)) {
		t.Fatalf("refresh must still advance the revision, got %v", got.RevisionAt)
	}
}
