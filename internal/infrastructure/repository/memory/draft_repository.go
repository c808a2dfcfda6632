package memory

import (
	"context"
	"sync"
	"time"

	"github.com/boxlax/fantasy-core/internal/domain/draft"
)

type DraftRepository struct {
	mu     sync.RWMutex
	drafts map[string]draft.Draft
	picks  map[string][]draft.Pick
}

func NewDraftRepository(drafts []draft.Draft, picks []draft.Pick) *DraftRepository {
	r := &DraftRepository{
		drafts: make(map[string]draft.Draft, len(drafts)),
		picks:  make(map[string][]draft.Pick),
	}
	for _, item := range drafts {
		r.drafts[item.ID] = item
	}
	for _, pick := range picks {
		r.picks[pick.DraftID] = append(r.picks[pick.DraftID], pick)
	}
	return r
}

func (r *DraftRepository) GetByID(_ context.Context, id string) (draft.Draft, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.drafts[id]
	return item, ok, nil
}

func (r *DraftRepository) ListPicks(_ context.Context, draftID string) ([]draft.Pick, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := r.picks[draftID]
	out := make([]draft.Pick, 0, len(items))
	out = append(out, items...)
	return out, nil
}

func (r *DraftRepository) SavePickOrder(_ context.Context, draftID string, picks []draft.Pick) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.picks[draftID] = append([]draft.Pick(nil), picks...)
	return nil
}

func (r *DraftRepository) SetFinalized(_ context.Context, draftID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.drafts[draftID]
	if !ok {
		return nil
	}
	item.Finalized = true
	item.FinalizedAt = &at
	r.drafts[draftID] = item

	picks := r.picks[draftID]
	for idx := range picks {
		picks[idx].OrderFinalized = true
	}
	return nil
}
