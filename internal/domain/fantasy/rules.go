package fantasy

import (
	"fmt"

	"github.com/boxlax/fantasy-core/internal/domain/player"
	"github.com/boxlax/fantasy-core/internal/domain/stats"
)

// Points is a fantasy point total in tenths of a point. Keeping the fixed
// denominator everywhere means recomputation can never drift.
type Points int64

const PointScale = 10

func (p Points) String() string {
	whole := p / PointScale
	frac := p % PointScale
	if frac < 0 {
		frac = -frac
	}
	return fmt.Sprintf("%d.%d", whole, frac)
}

type DrawPolicy string

const (
	// DrawPolicyNone awards no bonus when a game ends level.
	DrawPolicyNone DrawPolicy = "none"
	// DrawPolicyShared splits the win bonus between both sides.
	DrawPolicyShared DrawPolicy = "shared"
)

// Weights is the linear point value of each raw stat category for one
// positional rule, in tenths.
type Weights struct {
	Goal           Points
	Assist         Points
	LooseBall      Points
	CausedTurnover Points
	Save           Points
	GoalAgainst    Points
}

func (w Weights) apply(line stats.Line) Points {
	total := w.Goal * Points(line.Goals)
	total += w.Assist * Points(line.Assists)
	total += w.LooseBall * Points(line.LooseBalls)
	total += w.CausedTurnover * Points(line.CausedTurnovers)
	total += w.Save * Points(line.Saves)
	total += w.GoalAgainst * Points(line.GoalsAgainst)
	return total
}

// Rules carries the per-position weight tables plus the result-bonus policy.
type Rules struct {
	Offence    Weights
	Defence    Weights
	Goalie     Weights
	WinBonus   Points
	DrawPolicy DrawPolicy
}

func DefaultRules() Rules {
	return Rules{
		Offence: Weights{
			Goal:           30,
			Assist:         20,
			LooseBall:      5,
			CausedTurnover: 10,
		},
		Defence: Weights{
			Goal:           30,
			Assist:         20,
			LooseBall:      10,
			CausedTurnover: 20,
		},
		Goalie: Weights{
			Goal:        50,
			Assist:      20,
			LooseBall:   5,
			Save:        4,
			GoalAgainst: -10,
		},
		WinBonus:   20,
		DrawPolicy: DrawPolicyNone,
	}
}

// ScoringPosition resolves the rule a player scores under. Transition players
// follow their assigned side when the coach has set one; otherwise they stay
// on the blended transition rule. The result depends only on the player row.
func ScoringPosition(p player.Player) (player.Position, bool) {
	if p.Position != player.PositionTransition {
		return p.Position, false
	}
	switch p.AssignedSide {
	case player.SideOffence:
		return player.PositionOffence, false
	case player.SideDefence:
		return player.PositionDefence, false
	default:
		return player.PositionTransition, true
	}
}

// LinePoints converts one statline to fantasy points for the player who
// produced it. Pure: same inputs always give the same total.
func LinePoints(p player.Player, line stats.Line, rules Rules) Points {
	position, blended := ScoringPosition(p)
	if blended {
		// Unassigned transition: even split of the offence and defence
		// values, truncating toward zero in tenths.
		return (rules.Offence.apply(line) + rules.Defence.apply(line)) / 2
	}

	switch position {
	case player.PositionOffence:
		return rules.Offence.apply(line)
	case player.PositionDefence:
		return rules.Defence.apply(line)
	case player.PositionGoalie:
		return rules.Goalie.apply(line)
	default:
		return 0
	}
}

// ResultBonus is the per-player bonus for the game outcome. won/drawn refer
// to the player's own team.
func ResultBonus(won, drawn bool, rules Rules) Points {
	if won {
		return rules.WinBonus
	}
	if drawn && rules.DrawPolicy == DrawPolicyShared {
		return rules.WinBonus / 2
	}
	return 0
}

func ParseDrawPolicy(raw string) (DrawPolicy, error) {
	switch DrawPolicy(raw) {
	case DrawPolicyNone, "":
		return DrawPolicyNone, nil
	case DrawPolicyShared:
		return DrawPolicyShared, nil
	default:
		return "", fmt.Errorf("unknown draw policy %q: valid values are none, shared", raw)
	}
}
