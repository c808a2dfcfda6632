package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/boxlax/fantasy-core/internal/domain/draft"
	"github.com/boxlax/fantasy-core/internal/platform/logging"
)

// DraftService owns the rookie draft pick sequence. Each draft has a single
// logical writer: concurrent commissioner reorders on the same draft are
// serialized, while different drafts proceed independently.
type DraftService struct {
	draftRepo draft.Repository
	logger    *logging.Logger
	now       func() time.Time

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

func NewDraftService(draftRepo draft.Repository, logger *logging.Logger) *DraftService {
	if logger == nil {
		logger = logging.Default()
	}
	return &DraftService{
		draftRepo: draftRepo,
		logger:    logger,
		now:       time.Now,
		locks:     make(map[string]*sync.Mutex),
	}
}

func (s *DraftService) Order(ctx context.Context, draftID string) ([]draft.Pick, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DraftService.Order")
	defer span.End()

	if _, err := s.getDraft(ctx, draftID); err != nil {
		return nil, err
	}

	picks, err := s.draftRepo.ListPicks(ctx, draftID)
	if err != nil {
		return nil, fmt.Errorf("list picks draft=%s: %w", draftID, err)
	}
	sort.SliceStable(picks, func(i, j int) bool {
		return picks[i].Slot < picks[j].Slot
	})
	return picks, nil
}

// Reorder replaces the sequence of the draft's unfinalized picks. The
// submission must be a permutation of exactly the unfinalized pick IDs: a
// missing, repeated or invented ID fails the whole request. Already
// finalized picks keep their slots.
func (s *DraftService) Reorder(ctx context.Context, draftID string, orderedPickIDs []string) ([]draft.Pick, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DraftService.Reorder")
	defer span.End()

	unlock := s.lockDraft(draftID)
	defer unlock()

	d, err := s.getDraft(ctx, draftID)
	if err != nil {
		return nil, err
	}
	if d.Finalized {
		return nil, fmt.Errorf("%w: draft=%s", ErrAlreadyFinalized, draftID)
	}

	picks, err := s.draftRepo.ListPicks(ctx, draftID)
	if err != nil {
		return nil, fmt.Errorf("list picks draft=%s: %w", draftID, err)
	}

	pending := make(map[string]draft.Pick)
	freeSlots := make([]int, 0, len(picks))
	kept := make([]draft.Pick, 0, len(picks))
	for _, pick := range picks {
		if pick.OrderFinalized {
			kept = append(kept, pick)
			continue
		}
		pending[pick.ID] = pick
		freeSlots = append(freeSlots, pick.Slot)
	}
	sort.Ints(freeSlots)

	if len(orderedPickIDs) != len(pending) {
		return nil, fmt.Errorf("%w: expected %d pick ids, got %d", ErrInvalidOrder, len(pending), len(orderedPickIDs))
	}
	seen := make(map[string]struct{}, len(orderedPickIDs))
	for _, id := range orderedPickIDs {
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: duplicate pick id %s", ErrInvalidOrder, id)
		}
		seen[id] = struct{}{}
		if _, ok := pending[id]; !ok {
			return nil, fmt.Errorf("%w: unknown or finalized pick id %s", ErrInvalidOrder, id)
		}
	}

	next := make([]draft.Pick, 0, len(picks))
	next = append(next, kept...)
	for idx, id := range orderedPickIDs {
		pick := pending[id]
		pick.Slot = freeSlots[idx]
		next = append(next, pick)
	}
	sort.SliceStable(next, func(i, j int) bool {
		return next[i].Slot < next[j].Slot
	})

	if err := s.draftRepo.SavePickOrder(ctx, draftID, next); err != nil {
		return nil, fmt.Errorf("save pick order draft=%s: %w", draftID, err)
	}

	s.logger.InfoContext(ctx, "draft reordered",
		"draft_id", draftID,
		"picks", len(orderedPickIDs),
	)
	return next, nil
}

// Finalize freezes the pick order permanently.
func (s *DraftService) Finalize(ctx context.Context, draftID string) (draft.Draft, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DraftService.Finalize")
	defer span.End()

	unlock := s.lockDraft(draftID)
	defer unlock()

	d, err := s.getDraft(ctx, draftID)
	if err != nil {
		return draft.Draft{}, err
	}
	if d.Finalized {
		return draft.Draft{}, fmt.Errorf("%w: draft=%s", ErrAlreadyFinalized, draftID)
	}

	now := s.now().UTC()
	if err := s.draftRepo.SetFinalized(ctx, draftID, now); err != nil {
		return draft.Draft{}, fmt.Errorf("finalize draft=%s: %w", draftID, err)
	}

	d.Finalized = true
	d.FinalizedAt = &now
	s.logger.InfoContext(ctx, "draft finalized", "draft_id", draftID)
	return d, nil
}

func (s *DraftService) getDraft(ctx context.Context, draftID string) (draft.Draft, error) {
	if draftID == "" {
		return draft.Draft{}, fmt.Errorf("%w: draft id is required", ErrInvalidInput)
	}
	d, exists, err := s.draftRepo.GetByID(ctx, draftID)
	if err != nil {
		return draft.Draft{}, fmt.Errorf("get draft %s: %w", draftID, err)
	}
	if !exists {
		return draft.Draft{}, fmt.Errorf("%w: draft=%s", ErrNotFound, draftID)
	}
	return d, nil
}

// lockDraft takes the draft's exclusive writer lock, creating it on first
// use. Locks are never removed; the set of drafts is small and bounded.
func (s *DraftService) lockDraft(draftID string) func() {
	s.locksMu.Lock()
	mu, ok := s.locks[draftID]
	if !ok {
		mu = &sync.Mutex{}
		s.locks[draftID] = mu
	}
	s.locksMu.Unlock()

	mu.Lock()
	return mu.Unlock
}
