package usecase

import (
	"context"
	"time"
)

// ScheduleRecord is one game row as handed over by the feed adapter. The
// adapter owns authentication, retries and rate limiting; records arriving
// here are syntactically valid but not yet checked against the mirror's
// invariants.
type ScheduleRecord struct {
	ExternalID string
	Season     string
	Week       int
	StartAt    time.Time
	HomeTeamID string
	AwayTeamID string
	HomeScore  *int
	AwayScore  *int
	Winner     string
	Loser      string
	RevisionAt time.Time
}

// ScheduleSource is the boundary to the external schedule/score feed.
type ScheduleSource interface {
	FetchSeason(ctx context.Context, season string) ([]ScheduleRecord, error)
}
