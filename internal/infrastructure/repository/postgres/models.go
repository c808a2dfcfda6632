package postgres

import (
	"database/sql"
	"time"

	"github.com/boxlax/fantasy-core/internal/domain/draft"
	"github.com/boxlax/fantasy-core/internal/domain/fantasy"
	"github.com/boxlax/fantasy-core/internal/domain/game"
	"github.com/boxlax/fantasy-core/internal/domain/player"
	"github.com/boxlax/fantasy-core/internal/domain/scoring"
	"github.com/boxlax/fantasy-core/internal/domain/stats"
	"github.com/boxlax/fantasy-core/internal/domain/week"
)

type gameTableModel struct {
	ID           string        `db:"id"`
	Season       string        `db:"season"`
	Week         int           `db:"week"`
	StartAt      time.Time     `db:"start_at"`
	HomeTeamID   string        `db:"home_team_id"`
	AwayTeamID   string        `db:"away_team_id"`
	HomeScore    sql.NullInt32 `db:"home_score"`
	AwayScore    sql.NullInt32 `db:"away_score"`
	WinnerTeamID string        `db:"winner_team_id"`
	LoserTeamID  string        `db:"loser_team_id"`
	RevisionAt   time.Time     `db:"revision_at"`
	ScoredAt     *time.Time    `db:"scored_at"`
}

func gameToTable(item game.Game) gameTableModel {
	return gameTableModel{
		ID:           item.ID,
		Season:       item.Season,
		Week:         item.Week,
		StartAt:      item.StartAt.UTC(),
		HomeTeamID:   item.HomeTeamID,
		AwayTeamID:   item.AwayTeamID,
		HomeScore:    nullableScore(item.HomeScore),
		AwayScore:    nullableScore(item.AwayScore),
		WinnerTeamID: item.WinnerTeamID,
		LoserTeamID:  item.LoserTeamID,
		RevisionAt:   item.RevisionAt.UTC(),
		ScoredAt:     item.ScoredAt,
	}
}

func gameToDomain(row gameTableModel) game.Game {
	return game.Game{
		ID:           row.ID,
		Season:       row.Season,
		Week:         row.Week,
		StartAt:      row.StartAt,
		HomeTeamID:   row.HomeTeamID,
		AwayTeamID:   row.AwayTeamID,
		HomeScore:    scoreToIntPtr(row.HomeScore),
		AwayScore:    scoreToIntPtr(row.AwayScore),
		WinnerTeamID: row.WinnerTeamID,
		LoserTeamID:  row.LoserTeamID,
		RevisionAt:   row.RevisionAt,
		ScoredAt:     row.ScoredAt,
	}
}

type weekTableModel struct {
	Season        string         `db:"season"`
	Number        int            `db:"number"`
	LockAt        *time.Time     `db:"lock_at"`
	UnlockAt      *time.Time     `db:"unlock_at"`
	OverrideMode  sql.NullString `db:"override_mode"`
	OverrideSetBy sql.NullString `db:"override_set_by"`
	OverrideSetAt *time.Time     `db:"override_set_at"`
}

func weekToTable(item week.Week) weekTableModel {
	row := weekTableModel{
		Season:   item.Season,
		Number:   item.Number,
		LockAt:   item.LockAt,
		UnlockAt: item.UnlockAt,
	}
	if item.Override != nil {
		setAt := item.Override.SetAt
		row.OverrideMode = sql.NullString{String: string(item.Override.Mode), Valid: true}
		row.OverrideSetBy = sql.NullString{String: item.Override.SetBy, Valid: true}
		row.OverrideSetAt = &setAt
	}
	return row
}

func weekToDomain(row weekTableModel) week.Week {
	out := week.Week{
		Season:   row.Season,
		Number:   row.Number,
		LockAt:   row.LockAt,
		UnlockAt: row.UnlockAt,
	}
	if row.OverrideMode.Valid {
		override := week.Override{
			Mode:  week.OverrideMode(row.OverrideMode.String),
			SetBy: row.OverrideSetBy.String,
		}
		if row.OverrideSetAt != nil {
			override.SetAt = *row.OverrideSetAt
		}
		out.Override = &override
	}
	return out
}

type playerTableModel struct {
	ID           string `db:"id"`
	Name         string `db:"name"`
	TeamID       string `db:"team_id"`
	Position     string `db:"position"`
	AssignedSide string `db:"assigned_side"`
}

func playerToDomain(row playerTableModel) player.Player {
	return player.Player{
		ID:           row.ID,
		Name:         row.Name,
		TeamID:       row.TeamID,
		Position:     player.Position(row.Position),
		AssignedSide: player.Side(row.AssignedSide),
	}
}

type statLineTableModel struct {
	GameID          string `db:"game_id"`
	PlayerID        string `db:"player_id"`
	Goals           int    `db:"goals"`
	Assists         int    `db:"assists"`
	LooseBalls      int    `db:"loose_balls"`
	CausedTurnovers int    `db:"caused_turnovers"`
	Saves           int    `db:"saves"`
	GoalsAgainst    int    `db:"goals_against"`
}

func statLineToDomain(row statLineTableModel) stats.Line {
	return stats.Line{
		GameID:          row.GameID,
		PlayerID:        row.PlayerID,
		Goals:           row.Goals,
		Assists:         row.Assists,
		LooseBalls:      row.LooseBalls,
		CausedTurnovers: row.CausedTurnovers,
		Saves:           row.Saves,
		GoalsAgainst:    row.GoalsAgainst,
	}
}

type playerGamePointsTableModel struct {
	GameID     string    `db:"game_id"`
	PlayerID   string    `db:"player_id"`
	Points     int64     `db:"points"`
	ComputedAt time.Time `db:"computed_at"`
}

func pointsToDomain(row playerGamePointsTableModel) scoring.PlayerGamePoints {
	return scoring.PlayerGamePoints{
		GameID:     row.GameID,
		PlayerID:   row.PlayerID,
		Points:     fantasy.Points(row.Points),
		ComputedAt: row.ComputedAt,
	}
}

type draftTableModel struct {
	ID          string     `db:"id"`
	Season      string     `db:"season"`
	Finalized   bool       `db:"finalized"`
	FinalizedAt *time.Time `db:"finalized_at"`
}

type pickTableModel struct {
	ID             string `db:"id"`
	DraftID        string `db:"draft_id"`
	Slot           int    `db:"slot"`
	TeamID         string `db:"team_id"`
	OrderFinalized bool   `db:"order_finalized"`
}

func pickToDomain(row pickTableModel) draft.Pick {
	return draft.Pick{
		ID:             row.ID,
		DraftID:        row.DraftID,
		Slot:           row.Slot,
		TeamID:         row.TeamID,
		OrderFinalized: row.OrderFinalized,
	}
}

func nullableScore(v *int) sql.NullInt32 {
	if v == nil {
		return sql.NullInt32{}
	}
	return sql.NullInt32{Int32: int32(*v), Valid: true}
}

func scoreToIntPtr(v sql.NullInt32) *int {
	if !v.Valid {
		return nil
	}
	out := int(v.Int32)
	return &out
}
