package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrNotReady              = errors.New("game is not ready for scoring")
	ErrInvalidOrder          = errors.New("invalid pick ordering")
	ErrAlreadyFinalized      = errors.New("draft order already finalized")
	ErrUpstreamTimeout       = errors.New("schedule fetch exceeded its deadline")
	ErrInconsistentScore     = errors.New("upstream score data violates the outcome invariant")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)
