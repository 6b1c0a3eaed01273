package decision

import (
	"context"

	"github.com/baicaiyihao/omni-agent-arena/internal/game"
)

// Snapshot is the read-only view of a combatant handed to a provider for
// one turn's decision.
type Snapshot struct {
	Name        string
	Health      int
	IsDefending bool
}

// Provider chooses one action per turn given both fighters' snapshots.
// Implementations may take seconds (model inference latency); callers bound
// the call with ctx and apply their fallback policy on error. The lenient
// free-text parsing lives behind this interface so callers only ever see a
// validated game.Action.
type Provider interface {
	Decide(ctx context.Context, attacker, defender Snapshot) (game.Action, error)
}
