package week

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvertedWindow = errors.New("lock time must be before unlock time")

type OverrideMode string

const (
	OverrideForceLock   OverrideMode = "lock"
	OverrideForceUnlock OverrideMode = "unlock"
)

// Override is a commissioner decision that outranks any computed window.
// SetBy/SetAt keep the action auditable.
type Override struct {
	Mode  OverrideMode
	SetBy string
	SetAt time.Time
}

// Week is one ordered period of a season. LockAt/UnlockAt are optional; when
// absent the lock window is derived from the week's game start times.
type Week struct {
	Season   string
	Number   int
	LockAt   *time.Time
	UnlockAt *time.Time
	Override *Override
}

func (w Week) Validate() error {
	if w.Season == "" || w.Number <= 0 {
		return fmt.Errorf("week requires a season and a positive number")
	}
	if w.LockAt != nil && w.UnlockAt != nil && !w.LockAt.Before(*w.UnlockAt) {
		return fmt.Errorf("%w: lock=%s unlock=%s", ErrInvertedWindow, w.LockAt, w.UnlockAt)
	}
	if w.Override != nil {
		switch w.Override.Mode {
		case OverrideForceLock, OverrideForceUnlock:
		default:
			return fmt.Errorf("unknown override mode %q", w.Override.Mode)
		}
		if w.Override.SetBy == "" {
			return fmt.Errorf("override requires the acting commissioner")
		}
	}
	return nil
}
