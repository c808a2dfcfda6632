package postgres

import (
	"context"
	"fmt"

	"github.com/boxlax/fantasy-core/internal/domain/player"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type PlayerRepository struct {
	db *sqlx.DB
}

func NewPlayerRepository(db *sqlx.DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

func (r *PlayerRepository) GetByIDs(ctx context.Context, ids []string) ([]player.Player, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var rows []playerTableModel
	err := r.db.SelectContext(ctx, &rows,
		`SELECT * FROM players WHERE id = ANY($1) ORDER BY id`, pq.StringArray(ids))
	if err != nil {
		return nil, fmt.Errorf("list players by ids: %w", err)
	}

	out := make([]player.Player, 0, len(rows))
	for _, row := range rows {
		out = append(out, playerToDomain(row))
	}
	return out, nil
}

func (r *PlayerRepository) Upsert(ctx context.Context, item player.Player) error {
	_, err := r.db.NamedExecContext(ctx, `INSERT INTO players (
		id, name, team_id, position, assigned_side
	) VALUES (
		:id, :name, :team_id, :position, :assigned_side
	)
	ON CONFLICT (id) DO UPDATE SET
		name = EXCLUDED.name,
		team_id = EXCLUDED.team_id,
		position = EXCLUDED.position,
		assigned_side = EXCLUDED.assigned_side`, playerTableModel{
		ID:           item.ID,
		Name:         item.Name,
		TeamID:       item.TeamID,
		Position:     string(item.Position),
		AssignedSide: string(item.AssignedSide),
	})
	if err != nil {
		return fmt.Errorf("upsert player: %w", err)
	}
	return nil
}
