package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/boxlax/fantasy-core/internal/domain/draft"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type DraftRepository struct {
	db *sqlx.DB
}

func NewDraftRepository(db *sqlx.DB) *DraftRepository {
	return &DraftRepository{db: db}
}

func (r *DraftRepository) GetByID(ctx context.Context, id string) (draft.Draft, bool, error) {
	var row draftTableModel
	err := r.db.GetContext(ctx, &row, `SELECT * FROM drafts WHERE id = $1`, id)
	if err != nil {
		if isNotFound(err) {
			return draft.Draft{}, false, nil
		}
		return draft.Draft{}, false, fmt.Errorf("get draft: %w", err)
	}
	return draft.Draft{
		ID:          row.ID,
		Season:      row.Season,
		Finalized:   row.Finalized,
		FinalizedAt: row.FinalizedAt,
	}, true, nil
}

func (r *DraftRepository) ListPicks(ctx context.Context, draftID string) ([]draft.Pick, error) {
	var rows []pickTableModel
	err := r.db.SelectContext(ctx, &rows,
		`SELECT * FROM rookie_picks WHERE draft_id = $1 ORDER BY slot`, draftID)
	if err != nil {
		return nil, fmt.Errorf("list draft picks: %w", err)
	}

	out := make([]draft.Pick, 0, len(rows))
	for _, row := range rows {
		out = append(out, pickToDomain(row))
	}
	return out, nil
}

// SavePickOrder rewrites slot assignments inside one transaction. Slots are
// parked on negative values first so the unique (draft_id, slot) index never
// sees two picks on the same slot mid-update.
func (r *DraftRepository) SavePickOrder(ctx context.Context, draftID string, picks []draft.Pick) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx save pick order: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	ids := make([]string, 0, len(picks))
	for _, pick := range picks {
		ids = append(ids, pick.ID)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE rookie_picks SET slot = -slot WHERE draft_id = $1 AND id = ANY($2)`,
		draftID, pq.StringArray(ids)); err != nil {
		return fmt.Errorf("park pick slots: %w", err)
	}

	for _, pick := range picks {
		res, err := tx.ExecContext(ctx,
			`UPDATE rookie_picks SET slot = $3 WHERE draft_id = $1 AND id = $2`,
			draftID, pick.ID, pick.Slot)
		if err != nil {
			return fmt.Errorf("save pick %s slot: %w", pick.ID, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("save pick %s rows affected: %w", pick.ID, err)
		}
		if affected == 0 {
			return fmt.Errorf("pick %s not found in draft %s", pick.ID, draftID)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save pick order tx: %w", err)
	}
	return nil
}

func (r *DraftRepository) SetFinalized(ctx context.Context, draftID string, at time.Time) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx finalize draft: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	res, err := tx.ExecContext(ctx,
		`UPDATE drafts SET finalized = TRUE, finalized_at = $2 WHERE id = $1 AND NOT finalized`,
		draftID, at.UTC())
	if err != nil {
		return fmt.Errorf("finalize draft: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finalize draft rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("draft %s not found or already finalized", draftID)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE rookie_picks SET order_finalized = TRUE WHERE draft_id = $1`, draftID); err != nil {
		return fmt.Errorf("finalize draft picks: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit finalize draft tx: %w", err)
	}
	return nil
}
