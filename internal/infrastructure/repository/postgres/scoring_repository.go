package postgres

import (
	"context"
	"fmt"

	"github.com/boxlax/fantasy-core/internal/domain/scoring"
	"github.com/jmoiron/sqlx"
)

type ScoringRepository struct {
	db *sqlx.DB
}

func NewScoringRepository(db *sqlx.DB) *ScoringRepository {
	return &ScoringRepository{db: db}
}

func (r *ScoringRepository) ListByGame(ctx context.Context, gameID string) ([]scoring.PlayerGamePoints, error) {
	var rows []playerGamePointsTableModel
	err := r.db.SelectContext(ctx, &rows,
		`SELECT * FROM player_game_points WHERE game_id = $1 ORDER BY player_id`, gameID)
	if err != nil {
		return nil, fmt.Errorf("list game points: %w", err)
	}

	out := make([]scoring.PlayerGamePoints, 0, len(rows))
	for _, row := range rows {
		out = append(out, pointsToDomain(row))
	}
	return out, nil
}

// UpsertGamePoints replaces the game's point rows in one transaction. Rows are
// keyed by (game, player) so a rescore overwrites instead of accumulating.
func (r *ScoringRepository) UpsertGamePoints(ctx context.Context, gameID string, rows []scoring.PlayerGamePoints) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx upsert game points: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM player_game_points WHERE game_id = $1`, gameID); err != nil {
		return fmt.Errorf("clear game points: %w", err)
	}

	for _, row := range rows {
		_, err := tx.NamedExecContext(ctx, `INSERT INTO player_game_points (
			game_id, player_id, points, computed_at
		) VALUES (
			:game_id, :player_id, :points, :computed_at
		)
		ON CONFLICT (game_id, player_id) DO UPDATE SET
			points = EXCLUDED.points,
			computed_at = EXCLUDED.computed_at`, playerGamePointsTableModel{
			GameID:     gameID,
			PlayerID:   row.PlayerID,
			Points:     int64(row.Points),
			ComputedAt: row.ComputedAt.UTC(),
		})
		if err != nil {
			return fmt.Errorf("upsert game points for player %s: %w", row.PlayerID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert game points tx: %w", err)
	}
	return nil
}
