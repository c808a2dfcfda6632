package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/boxlax/fantasy-core/internal/domain/game"
	"github.com/boxlax/fantasy-core/internal/domain/week"
	"github.com/jmoiron/sqlx"
)

type WeekRepository struct {
	db *sqlx.DB
}

func NewWeekRepository(db *sqlx.DB) *WeekRepository {
	return &WeekRepository{db: db}
}

func (r *WeekRepository) GetByNumber(ctx context.Context, season string, number int) (week.Week, bool, error) {
	var row weekTableModel
	err := r.db.GetContext(ctx, &row,
		`SELECT * FROM weeks WHERE season = $1 AND number = $2`, season, number)
	if err != nil {
		if isNotFound(err) {
			return week.Week{}, false, nil
		}
		return week.Week{}, false, fmt.Errorf("get week: %w", err)
	}
	return weekToDomain(row), true, nil
}

func (r *WeekRepository) Upsert(ctx context.Context, item week.Week) error {
	_, err := r.db.NamedExecContext(ctx, `INSERT INTO weeks (
		season, number, lock_at, unlock_at, override_mode, override_set_by, override_set_at
	) VALUES (
		:season, :number, :lock_at, :unlock_at, :override_mode, :override_set_by, :override_set_at
	)
	ON CONFLICT (season, number) DO UPDATE SET
		lock_at = EXCLUDED.lock_at,
		unlock_at = EXCLUDED.unlock_at,
		override_mode = EXCLUDED.override_mode,
		override_set_by = EXCLUDED.override_set_by,
		override_set_at = EXCLUDED.override_set_at`, weekToTable(item))
	if err != nil {
		return fmt.Errorf("upsert week: %w", err)
	}
	return nil
}

func (r *WeekRepository) SetOverride(ctx context.Context, season string, number int, override *week.Override) error {
	var mode, setBy sql.NullString
	var setAt *time.Time
	if override != nil {
		at := override.SetAt
		mode = sql.NullString{String: string(override.Mode), Valid: true}
		setBy = sql.NullString{String: override.SetBy, Valid: true}
		setAt = &at
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE weeks SET override_mode = $3, override_set_by = $4, override_set_at = $5
		 WHERE season = $1 AND number = $2`,
		season, number, mode, setBy, setAt)
	if err != nil {
		return fmt.Errorf("set week override: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set week override rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SnapshotWithGames reads the week row and its games inside one repeatable
// read transaction so lock evaluation never mixes versions.
func (r *WeekRepository) SnapshotWithGames(ctx context.Context, season string, number int) (week.Snapshot, bool, error) {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{
		Isolation: sql.LevelRepeatableRead,
		ReadOnly:  true,
	})
	if err != nil {
		return week.Snapshot{}, false, fmt.Errorf("begin snapshot tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var weekRow weekTableModel
	err = tx.GetContext(ctx, &weekRow,
		`SELECT * FROM weeks WHERE season = $1 AND number = $2`, season, number)
	if err != nil {
		if isNotFound(err) {
			return week.Snapshot{}, false, nil
		}
		return week.Snapshot{}, false, fmt.Errorf("snapshot week: %w", err)
	}

	var gameRows []gameTableModel
	err = tx.SelectContext(ctx, &gameRows,
		`SELECT * FROM games WHERE season = $1 AND week = $2 ORDER BY start_at, id`, season, number)
	if err != nil {
		return week.Snapshot{}, false, fmt.Errorf("snapshot week games: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return week.Snapshot{}, false, fmt.Errorf("commit snapshot tx: %w", err)
	}

	games := make([]game.Game, 0, len(gameRows))
	for _, row := range gameRows {
		games = append(games, gameToDomain(row))
	}
	return week.Snapshot{Week: weekToDomain(weekRow), Games: games}, true, nil
}
