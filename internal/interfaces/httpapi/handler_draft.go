package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/boxlax/fantasy-core/internal/domain/draft"
	"github.com/boxlax/fantasy-core/internal/usecase"
	sonic "github.com/bytedance/sonic"
)

type pickDTO struct {
	ID             string `json:"id"`
	Slot           int    `json:"slot"`
	TeamID         string `json:"team_id"`
	OrderFinalized bool   `json:"order_finalized"`
}

type draftOrderDTO struct {
	DraftID string    `json:"draft_id"`
	Picks   []pickDTO `json:"picks"`
}

type finalizeDraftDTO struct {
	DraftID     string     `json:"draft_id"`
	Finalized   bool       `json:"finalized"`
	FinalizedAt *time.Time `json:"finalized_at,omitempty"`
}

type reorderDraftRequest struct {
	PickIDs []string `json:"pick_ids" validate:"required,min=1,dive,required"`
}

func picksToDTOs(picks []draft.Pick) []pickDTO {
	out := make([]pickDTO, 0, len(picks))
	for _, pick := range picks {
		out = append(out, pickDTO{
			ID:             pick.ID,
			Slot:           pick.Slot,
			TeamID:         pick.TeamID,
			OrderFinalized: pick.OrderFinalized,
		})
	}
	return out
}

func (h *Handler) GetDraftOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetDraftOrder")
	defer span.End()

	draftID := r.PathValue("draftID")
	picks, err := h.draftService.Order(ctx, draftID)
	if err != nil {
		h.logger.WarnContext(ctx, "get draft order failed", "draft_id", draftID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, draftOrderDTO{DraftID: draftID, Picks: picksToDTOs(picks)})
}

func (h *Handler) ReorderDraft(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ReorderDraft")
	defer span.End()

	draftID := r.PathValue("draftID")

	var req reorderDraftRequest
	if err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid request body: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	picks, err := h.draftService.Reorder(ctx, draftID, req.PickIDs)
	if err != nil {
		h.logger.WarnContext(ctx, "reorder draft failed", "draft_id", draftID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, draftOrderDTO{DraftID: draftID, Picks: picksToDTOs(picks)})
}

func (h *Handler) FinalizeDraft(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.FinalizeDraft")
	defer span.End()

	draftID := r.PathValue("draftID")
	finalized, err := h.draftService.Finalize(ctx, draftID)
	if err != nil {
		h.logger.WarnContext(ctx, "finalize draft failed", "draft_id", draftID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, finalizeDraftDTO{
		DraftID:     finalized.ID,
		Finalized:   finalized.Finalized,
		FinalizedAt: finalized.FinalizedAt,
	})
}
