package battle

import (
	"time"

	"github.com/baicaiyihao/omni-agent-arena/internal/constants"
	"github.com/baicaiyihao/omni-agent-arena/internal/game"
)

// Tuning collects every combat constant so battles are externally
// configurable and deterministic under test. Headless runs set TurnDelay to
// zero; the live server keeps the animation pacing.
type Tuning struct {
	MaxRounds      int
	TurnDelay      time.Duration
	StartingHealth int
	AttackDamage   int
	SkillDamage    int
	// Damage roll: floor(roll*RollSpan) + RollOffset added to the base.
	RollSpan   int
	RollOffset int
	CritChance     float64
	CritMultiplier float64
	FallbackAction game.Action
	Side1Chain     string
	Side2Chain     string
	DecideTimeout  time.Duration
	SubmitTimeout  time.Duration
}

// DefaultTuning mirrors the live game constants.
func DefaultTuning() Tuning {
	return Tuning{
		MaxRounds:      10,
		TurnDelay:      3500 * time.Millisecond,
		StartingHealth: 120,
		AttackDamage:   15,
		SkillDamage:    25,
		RollSpan:       10,
		RollOffset:     -3,
		CritChance:     0.15,
		CritMultiplier: 1.5,
		FallbackAction: game.ActionAttack,
		Side1Chain:     constants.ChainBase,
		Side2Chain:     constants.ChainEth,
		DecideTimeout:  30 * time.Second,
		SubmitTimeout:  60 * time.Second,
	}
}

// DefaultChain returns the chain a combatant on the given side uses when it
// did not pick one, modeling the two distinct cross-chain legs.
func (t Tuning) DefaultChain(side game.Side) string {
	if side == game.SideTwo {
		return t.Side2Chain
	}
	return t.Side1Chain
}
