package postgres

import (
	"context"
	"fmt"

	"github.com/boxlax/fantasy-core/internal/domain/stats"
	"github.com/jmoiron/sqlx"
)

type StatsRepository struct {
	db *sqlx.DB
}

func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

func (r *StatsRepository) ListByGame(ctx context.Context, gameID string) ([]stats.Line, error) {
	var rows []statLineTableModel
	err := r.db.SelectContext(ctx, &rows,
		`SELECT * FROM player_game_stats WHERE game_id = $1 ORDER BY player_id`, gameID)
	if err != nil {
		return nil, fmt.Errorf("list stat lines by game: %w", err)
	}

	out := make([]stats.Line, 0, len(rows))
	for _, row := range rows {
		out = append(out, statLineToDomain(row))
	}
	return out, nil
}

func (r *StatsRepository) Upsert(ctx context.Context, line stats.Line) error {
	_, err := r.db.NamedExecContext(ctx, `INSERT INTO player_game_stats (
		game_id, player_id, goals, assists, loose_balls, caused_turnovers, saves, goals_against
	) VALUES (
		:game_id, :player_id, :goals, :assists, :loose_balls, :caused_turnovers, :saves, :goals_against
	)
	ON CONFLICT (game_id, player_id) DO UPDATE SET
		goals = EXCLUDED.goals,
		assists = EXCLUDED.assists,
		loose_balls = EXCLUDED.loose_balls,
		caused_turnovers = EXCLUDED.caused_turnovers,
		saves = EXCLUDED.saves,
		goals_against = EXCLUDED.goals_against`, statLineTableModel{
		GameID:          line.GameID,
		PlayerID:        line.PlayerID,
		Goals:           line.Goals,
		Assists:         line.Assists,
		LooseBalls:      line.LooseBalls,
		CausedTurnovers: line.CausedTurnovers,
		Saves:           line.Saves,
		GoalsAgainst:    line.GoalsAgainst,
	})
	if err != nil {
		return fmt.Errorf("upsert stat line: %w", err)
	}
	return nil
}
