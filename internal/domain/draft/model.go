package draft

import "time"

// Draft is a rookie draft's ordering state. OPEN drafts accept commissioner
// reorders of the pending picks; finalization is terminal.
type Draft struct {
	ID          string
	Season      string
	Finalized   bool
	FinalizedAt *time.Time
}

// Pick is one future rookie pick. Slot is the 1-based position in the draft
// sequence. Once OrderFinalized is set the slot can never move again.
type Pick struct {
	ID             string
	DraftID        string
	Slot           int
	TeamID         string
	OrderFinalized bool
}
