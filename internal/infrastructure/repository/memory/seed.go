package memory

import (
	"time"

	"github.com/boxlax/fantasy-core/internal/domain/draft"
	"github.com/boxlax/fantasy-core/internal/domain/game"
	"github.com/boxlax/fantasy-core/internal/domain/player"
	"github.com/boxlax/fantasy-core/internal/domain/stats"
	"github.com/boxlax/fantasy-core/internal/domain/week"
)

const seedSeason = "nll-2026"

func intPtr(v int) *int { return &v }

// SeedGames returns a small two-week schedule for local development: week 1
// fully played, week 2 still upcoming.
func SeedGames() []game.Game {
	revision := time.Date(2026, 1, 4, 6, 0, 0, 0, time.UTC)
	return []game.Game{
		{
			ID:           "nll-2026-0101",
			Season:       seedSeason,
			Week:         1,
			StartAt:      time.Date(2026, 1, 2, 19, 0, 0, 0, time.UTC),
			HomeTeamID:   "TOR",
			AwayTeamID:   "BUF",
			HomeScore:    intPtr(12),
			AwayScore:    intPtr(9),
			WinnerTeamID: "TOR",
			LoserTeamID:  "BUF",
			RevisionAt:   revision,
		},
		{
			ID:         "nll-2026-0102",
			Season:     seedSeason,
			Week:       1,
			StartAt:    time.Date(2026, 1, 3, 0, 30, 0, 0, time.UTC),
			HomeTeamID: "SAS",
			AwayTeamID: "CGY",
			HomeScore:  intPtr(10),
			AwayScore:  intPtr(10),
			RevisionAt: revision,
		},
		{
			ID:         "nll-2026-0201",
			Season:     seedSeason,
			Week:       2,
			StartAt:    time.Date(2026, 1, 9, 19, 30, 0, 0, time.UTC),
			HomeTeamID: "BUF",
			AwayTeamID: "SAS",
			RevisionAt: revision,
		},
		{
			ID:         "nll-2026-0202",
			Season:     seedSeason,
			Week:       2,
			StartAt:    time.Date(2026, 1, 10, 2, 0, 0, 0, time.UTC),
			HomeTeamID: "CGY",
			AwayTeamID: "TOR",
			RevisionAt: revision,
		},
	}
}

func SeedWeeks() []week.Week {
	return []week.Week{
		{Season: seedSeason, Number: 1},
		{Season: seedSeason, Number: 2},
	}
}

func SeedPlayers() []player.Player {
	return []player.Player{
		{ID: "p-tor-01", Name: "D. Keenan", TeamID: "TOR", Position: player.PositionOffence},
		{ID: "p-tor-02", Name: "M. Byrne", TeamID: "TOR", Position: player.PositionDefence},
		{ID: "p-tor-03", Name: "R. Okafor", TeamID: "TOR", Position: player.PositionGoalie},
		{ID: "p-buf-01", Name: "J. Tavano", TeamID: "BUF", Position: player.PositionTransition},
		{ID: "p-buf-02", Name: "C. Marsh", TeamID: "BUF", Position: player.PositionTransition, AssignedSide: player.SideDefence},
		{ID: "p-sas-01", Name: "K. Lafleur", TeamID: "SAS", Position: player.PositionOffence},
		{ID: "p-cgy-01", Name: "A. Whitcombe", TeamID: "CGY", Position: player.PositionGoalie},
	}
}

func SeedStatLines() []stats.Line {
	return []stats.Line{
		{GameID: "nll-2026-0101", PlayerID: "p-tor-01", Goals: 4, Assists: 3, LooseBalls: 2},
		{GameID: "nll-2026-0101", PlayerID: "p-tor-02", Goals: 0, Assists: 1, LooseBalls: 6, CausedTurnovers: 3},
		{GameID: "nll-2026-0101", PlayerID: "p-tor-03", Saves: 41, GoalsAgainst: 9},
		{GameID: "nll-2026-0101", PlayerID: "p-buf-01", Goals: 2, Assists: 1, LooseBalls: 4, CausedTurnovers: 1},
		{GameID: "nll-2026-0101", PlayerID: "p-buf-02", Goals: 1, LooseBalls: 5, CausedTurnovers: 2},
		{GameID: "nll-2026-0102", PlayerID: "p-sas-01", Goals: 3, Assists: 4, LooseBalls: 1},
		{GameID: "nll-2026-0102", PlayerID: "p-cgy-01", Saves: 38, GoalsAgainst: 10},
	}
}

func SeedDrafts() []draft.Draft {
	return []draft.Draft{
		{ID: "rookie-2026", Season: seedSeason},
	}
}

func SeedPicks() []draft.Pick {
	return []draft.Pick{
		{ID: "pick-1", DraftID: "rookie-2026", Slot: 1, TeamID: "CGY"},
		{ID: "pick-2", DraftID: "rookie-2026", Slot: 2, TeamID: "BUF"},
		{ID: "pick-3", DraftID: "rookie-2026", Slot: 3, TeamID: "SAS"},
		{ID: "pick-4", DraftID: "rookie-2026", Slot: 4, TeamID: "TOR"},
	}
}
