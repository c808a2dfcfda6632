package player

import (
	"errors"
	"fmt"
)

type Position string

const (
	PositionOffence    Position = "O"
	PositionDefence    Position = "D"
	PositionTransition Position = "T"
	PositionGoalie     Position = "G"
)

var AllPositions = map[Position]struct{}{
	PositionOffence:    {},
	PositionDefence:    {},
	PositionTransition: {},
	PositionGoalie:     {},
}

// Side is the optional scoring-side override for transition players.
type Side string

const (
	SideUnset   Side = ""
	SideOffence Side = "O"
	SideDefence Side = "D"
)

var ErrInvalidSide = errors.New("assigned side is only valid for transition players")

// Player belongs to at most one team; an empty TeamID means unrostered.
type Player struct {
	ID           string
	Name         string
	TeamID       string
	Position     Position
	AssignedSide Side
}

func (p Player) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("player id is required")
	}
	if _, ok := AllPositions[p.Position]; !ok {
		return fmt.Errorf("unknown position %q", p.Position)
	}
	switch p.AssignedSide {
	case SideUnset:
	case SideOffence, SideDefence:
		if p.Position != PositionTransition {
			return fmt.Errorf("%w: position=%s", ErrInvalidSide, p.Position)
		}
	default:
		return fmt.Errorf("unknown assigned side %q", p.AssignedSide)
	}
	return nil
}
