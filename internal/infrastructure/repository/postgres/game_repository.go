package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/boxlax/fantasy-core/internal/domain/game"
	"github.com/jmoiron/sqlx"
)

type GameRepository struct {
	db *sqlx.DB
}

func NewGameRepository(db *sqlx.DB) *GameRepository {
	return &GameRepository{db: db}
}

func (r *GameRepository) GetByID(ctx context.Context, id string) (game.Game, bool, error) {
	var row gameTableModel
	err := r.db.GetContext(ctx, &row, `SELECT * FROM games WHERE id = $1`, id)
	if err != nil {
		if isNotFound(err) {
			return game.Game{}, false, nil
		}
		return game.Game{}, false, fmt.Errorf("get game: %w", err)
	}
	return gameToDomain(row), true, nil
}

func (r *GameRepository) ListBySeason(ctx context.Context, season string) ([]game.Game, error) {
	var rows []gameTableModel
	err := r.db.SelectContext(ctx, &rows,
		`SELECT * FROM games WHERE season = $1 ORDER BY week, start_at, id`, season)
	if err != nil {
		return nil, fmt.Errorf("list games by season: %w", err)
	}

	out := make([]game.Game, 0, len(rows))
	for _, row := range rows {
		out = append(out, gameToDomain(row))
	}
	return out, nil
}

func (r *GameRepository) ListCompletedSince(ctx context.Context, since time.Time) ([]game.Game, error) {
	var rows []gameTableModel
	err := r.db.SelectContext(ctx, &rows,
		`SELECT * FROM games
		 WHERE home_score IS NOT NULL AND start_at >= $1
		 ORDER BY start_at, id`, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("list completed games: %w", err)
	}

	out := make([]game.Game, 0, len(rows))
	for _, row := range rows {
		out = append(out, gameToDomain(row))
	}
	return out, nil
}

// Upsert applies game.Reconcile in SQL so the guard runs atomically on
// the row itself. The WHERE clause drops older revisions and unscored
// records that are not strictly newer than a completed row; the CASE
// keeps scored_at when the result is unchanged.
func (r *GameRepository) Upsert(ctx context.Context, item game.Game) error {
	_, err := r.db.NamedExecContext(ctx, `INSERT INTO games (
		id, season, week, start_at, home_team_id, away_team_id,
		home_score, away_score, winner_team_id, loser_team_id, revision_at, scored_at
	) VALUES (
		:id, :season, :week, :start_at, :home_team_id, :away_team_id,
		:home_score, :away_score, :winner_team_id, :loser_team_id, :revision_at, :scored_at
	)
	ON CONFLICT (id) DO UPDATE SET
		season = EXCLUDED.season,
		week = EXCLUDED.week,
		start_at = EXCLUDED.start_at,
		home_team_id = EXCLUDED.home_team_id,
		away_team_id = EXCLUDED.away_team_id,
		home_score = EXCLUDED.home_score,
		away_score = EXCLUDED.away_score,
		winner_team_id = EXCLUDED.winner_team_id,
		loser_team_id = EXCLUDED.loser_team_id,
		revision_at = EXCLUDED.revision_at,
		scored_at = CASE
			WHEN games.home_score IS NOT DISTINCT FROM EXCLUDED.home_score
				AND games.away_score IS NOT DISTINCT FROM EXCLUDED.away_score
			THEN games.scored_at
			ELSE EXCLUDED.scored_at
		END
	WHERE games.revision_at <= EXCLUDED.revision_at
		AND (games.home_score IS NULL
			OR EXCLUDED.home_score IS NOT NULL
			OR games.revision_at < EXCLUDED.revision_at)`, gameToTable(item))
	if err != nil {
		return fmt.Errorf("upsert game: %w", err)
	}
	return nil
}

func (r *GameRepository) MarkScored(ctx context.Context, id string, at time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE games SET scored_at = $2 WHERE id = $1 AND scored_at IS NULL`, id, at.UTC())
	if err != nil {
		return false, fmt.Errorf("mark game scored: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark game scored rows affected: %w", err)
	}
	return affected > 0, nil
}
