package battle

import (
	"math"

	"github.com/baicaiyihao/omni-agent-arena/internal/game"
)

// Roller yields pseudo-random values in [0,1). *rand.Rand satisfies it;
// tests inject scripted sequences.
type Roller interface {
	Float64() float64
}

// Event describes the outcome of one resolved turn. DefenderHealth is the
// post-resolution value and is embedded verbatim in the log line as the
// [HP:n] marker front-end animations key on.
type Event struct {
	Action         game.Action
	DefenseRaised  bool
	Damage         int
	Critical       bool
	Blocked        bool
	DefenderHealth int
}

// Resolve applies one turn to the attacker/defender pair in place.
//
// A defend raises the attacker's guard for exactly one incoming hit: the
// flag is cleared when its owner next acts, not when the opponent takes a
// turn, so an unhit guard survives until consumed. Damage is
// base + floor(roll*span) + offset, multiplied by the crit factor (floored)
// on a critical roll, then halved (floored) against a raised guard. Health
// is clamped at zero; the damage itself is not clamped, so tuning must keep
// base+offset non-negative (config validation enforces this).
func Resolve(att, def *game.Combatant, action game.Action, roll Roller, t Tuning) Event {
	att.IsDefending = false

	if action == game.ActionDefend {
		att.IsDefending = true
		return Event{Action: action, DefenseRaised: true, DefenderHealth: def.Health}
	}

	base := t.AttackDamage
	if action == game.ActionSkill {
		base = t.SkillDamage
	}

	ev := Event{Action: action}
	ev.Damage = base + int(math.Floor(roll.Float64()*float64(t.RollSpan))) + t.RollOffset
	if roll.Float64() < t.CritChance {
		ev.Damage = int(math.Floor(float64(ev.Damage) * t.CritMultiplier))
		ev.Critical = true
	}
	if def.IsDefending {
		ev.Damage /= 2
		ev.Blocked = true
	}

	def.Health -= ev.Damage
	if def.Health < 0 {
		def.Health = 0
	}
	ev.DefenderHealth = def.Health
	return ev
}
