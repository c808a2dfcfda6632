package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/boxlax/fantasy-core/internal/platform/logging"
	"github.com/boxlax/fantasy-core/internal/usecase"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	scheduleService *usecase.ScheduleService
	lockService     *usecase.RosterLockService
	scoringService  *usecase.ScoringService
	draftService    *usecase.DraftService
	syncService     *usecase.SyncService
	logger          *logging.Logger
	validator       *validator.Validate
}

func NewHandler(
	scheduleService *usecase.ScheduleService,
	lockService *usecase.RosterLockService,
	scoringService *usecase.ScoringService,
	draftService *usecase.DraftService,
	syncService *usecase.SyncService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		scheduleService: scheduleService,
		lockService:     lockService,
		scoringService:  scoringService,
		draftService:    draftService,
		syncService:     syncService,
		logger:          logger,
		validator:       validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}
