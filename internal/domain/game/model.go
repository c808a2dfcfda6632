package game

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrScorePartial    = errors.New("score fields are partially set")
	ErrOutcomeMismatch = errors.New("winner/loser labels contradict the score")
)

// Game mirrors one real-world game as last synchronized from the provider.
// The score triple (scores, winner, loser) is either fully absent or fully
// resolved; a draw keeps both scores set with empty winner/loser.
type Game struct {
	ID           string
	Season       string
	Week         int
	StartAt      time.Time
	HomeTeamID   string
	AwayTeamID   string
	HomeScore    *int
	AwayScore    *int
	WinnerTeamID string
	LoserTeamID  string
	RevisionAt   time.Time
	ScoredAt     *time.Time
}

func (g Game) Completed() bool {
	return g.HomeScore != nil && g.AwayScore != nil
}

func (g Game) Draw() bool {
	return g.Completed() && *g.HomeScore == *g.AwayScore
}

func (g Game) Scored() bool {
	return g.ScoredAt != nil
}

// ResolveOutcome fills winner/loser from the scores when the provider sent a
// decisive result without labels. It never overwrites labels already present.
func (g Game) ResolveOutcome() Game {
	if !g.Completed() || g.Draw() {
		return g
	}
	if g.WinnerTeamID != "" || g.LoserTeamID != "" {
		return g
	}
	if *g.HomeScore > *g.AwayScore {
		g.WinnerTeamID = g.HomeTeamID
		g.LoserTeamID = g.AwayTeamID
	} else {
		g.WinnerTeamID = g.AwayTeamID
		g.LoserTeamID = g.HomeTeamID
	}
	return g
}

// SameScore reports whether two records carry the same result.
func (g Game) SameScore(other Game) bool {
	if g.Completed() != other.Completed() {
		return false
	}
	if !g.Completed() {
		return true
	}
	return *g.HomeScore == *other.HomeScore && *g.AwayScore == *other.AwayScore
}

// Reconcile decides how an incoming record lands on the stored row. It
// returns the row to store and false when the record is stale: an older
// revision, or an unscored record trying to reopen a completed game
// without being strictly newer. An unchanged result keeps the stored
// scored mark so a schedule refresh cannot reopen exactly-once
// application. Repositories apply Reconcile under their own write lock;
// callers racing on the same game cannot interleave around it.
func Reconcile(existing, incoming Game) (Game, bool) {
	strictlyNewer := incoming.RevisionAt.After(existing.RevisionAt)
	if existing.Completed() && !incoming.Completed() && !strictlyNewer {
		return existing, false
	}
	if incoming.RevisionAt.Before(existing.RevisionAt) {
		return existing, false
	}
	if existing.SameScore(incoming) {
		incoming.ScoredAt = existing.ScoredAt
	}
	return incoming, true
}

// ValidateScoreState enforces the score/outcome invariant.
func (g Game) ValidateScoreState() error {
	if (g.HomeScore == nil) != (g.AwayScore == nil) {
		return ErrScorePartial
	}

	if !g.Completed() {
		if g.WinnerTeamID != "" || g.LoserTeamID != "" {
			return fmt.Errorf("%w: outcome labels set on an unplayed game", ErrOutcomeMismatch)
		}
		return nil
	}

	if g.Draw() {
		if g.WinnerTeamID != "" || g.LoserTeamID != "" {
			return fmt.Errorf("%w: drawn game carries winner/loser labels", ErrOutcomeMismatch)
		}
		return nil
	}

	if g.WinnerTeamID == "" || g.LoserTeamID == "" {
		return fmt.Errorf("%w: decisive game is missing winner/loser labels", ErrOutcomeMismatch)
	}
	if g.WinnerTeamID == g.LoserTeamID {
		return fmt.Errorf("%w: winner and loser are the same team", ErrOutcomeMismatch)
	}

	expectedWinner := g.HomeTeamID
	expectedLoser := g.AwayTeamID
	if *g.AwayScore > *g.HomeScore {
		expectedWinner, expectedLoser = g.AwayTeamID, g.HomeTeamID
	}
	if g.WinnerTeamID != expectedWinner || g.LoserTeamID != expectedLoser {
		return fmt.Errorf("%w: labels say %s over %s", ErrOutcomeMismatch, g.WinnerTeamID, g.LoserTeamID)
	}

	return nil
}
