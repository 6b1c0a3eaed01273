package game

import "strings"

// Action is the closed set of moves a combatant may take in one turn.
// Using a dedicated type instead of plain string makes code safer and
// self-documenting.
type Action string

const (
	ActionAttack Action = "ATTACK"
	ActionDefend Action = "DEFEND"
	ActionSkill  Action = "SKILL"
)

// ParseAction maps free-text decision-provider output to an Action. Matching
// is by case-sensitive substring containment so replies carrying stray words
// ("I choose DEFEND.") still resolve; anything unrecognized is ATTACK.
func ParseAction(raw string) Action {
	switch {
	case strings.Contains(raw, string(ActionDefend)):
		return ActionDefend
	case strings.Contains(raw, string(ActionSkill)):
		return ActionSkill
	default:
		return ActionAttack
	}
}
