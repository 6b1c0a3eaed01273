package battle

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/baicaiyihao/omni-agent-arena/internal/constants"
	"github.com/baicaiyihao/omni-agent-arena/internal/decision"
	"github.com/baicaiyihao/omni-agent-arena/internal/game"
	"github.com/baicaiyihao/omni-agent-arena/internal/logging"
	"github.com/baicaiyihao/omni-agent-arena/internal/relay"
	"github.com/baicaiyihao/omni-agent-arena/internal/session"
	"github.com/baicaiyihao/omni-agent-arena/internal/storage"
)

// Orchestrator drives battles to completion, one goroutine per room. All
// collaborator failures are absorbed at this boundary: a decision failure
// becomes the fallback action, a relay failure becomes a placeholder
// reference, and the loop only ever exits through knockout, round
// exhaustion or participant departure.
type Orchestrator struct {
	rooms    *session.Registry
	provider decision.Provider
	relay    relay.Relay
	repo     storage.Repository
	tuning   Tuning

	// roll, when set, replaces the per-battle random source. *rand.Rand is
	// not safe for concurrent use, so each battle goroutine otherwise seeds
	// its own.
	roll Roller
}

func NewOrchestrator(rooms *session.Registry, provider decision.Provider, rly relay.Relay, repo storage.Repository, tuning Tuning) *Orchestrator {
	return &Orchestrator{
		rooms:    rooms,
		provider: provider,
		relay:    rly,
		repo:     repo,
		tuning:   tuning,
	}
}

// StartBattle spawns the battle goroutine for a room. The started flag is
// checked-and-set atomically inside the session, so concurrent readiness
// signals or repeated creation requests spawn at most one goroutine per
// room for its entire lifetime. A duplicate trigger is a benign no-op.
func (o *Orchestrator) StartBattle(roomID string) bool {
	s, ok := o.rooms.Get(roomID)
	if !ok {
		return false
	}
	if !s.TryStartBattle() {
		logging.Info("duplicate battle start ignored", logging.Fields{constants.LogFieldRoomID: roomID})
		return false
	}
	logging.Info("battle engine started", logging.Fields{constants.LogFieldRoomID: roomID})
	go o.run(s)
	return true
}

func (o *Orchestrator) run(s *session.Session) {
	t := o.tuning

	roll := o.roll
	if roll == nil {
		roll = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	p1, p2, ok := s.BeginBattle(t.StartingHealth)
	if !ok {
		s.AppendLog("Battle aborted: a fighter is missing")
		s.RecordResult(game.SideNone, game.EndReasonDeparture)
		o.persistOutcome(s, game.SideNone, game.EndReasonDeparture, 0)
		return
	}
	s.AppendLog(fmt.Sprintf("Battle Start! %s vs %s", p1.DisplayName, p2.DisplayName))

	round := 1
	reason := game.EndReasonRoundLimit
loop:
	for round <= t.MaxRounds {
		// Departure is only checked between rounds; an in-flight round
		// finishes with the external calls it already issued.
		if !s.BothPresent() {
			s.AppendLog("A fighter left; battle terminated")
			reason = game.EndReasonDeparture
			break loop
		}

		s.AppendLog(fmt.Sprintf("=== Round %d ===", round))

		if hp, resolved := o.takeTurn(s, game.SideOne, roll); resolved && hp <= 0 {
			reason = game.EndReasonKnockout
			break loop
		}
		o.pause()

		if hp, resolved := o.takeTurn(s, game.SideTwo, roll); resolved && hp <= 0 {
			reason = game.EndReasonKnockout
			break loop
		}

		round++
		o.pause()
	}

	// Round exhaustion exits with the counter one past the last played round.
	if round > t.MaxRounds {
		round = t.MaxRounds
	}

	winner := o.finish(s, reason)
	o.persistOutcome(s, winner, reason, round)
}

// takeTurn runs one side's full sequence: decide, relay, resolve, log. It
// returns the defender's post-turn health and whether the turn actually
// resolved (it does not when a slot was vacated mid-round).
func (o *Orchestrator) takeTurn(s *session.Session, side game.Side, roll Roller) (defenderHealth int, resolved bool) {
	att, ok1 := s.Fighter(side)
	def, ok2 := s.Fighter(side.Opponent())
	if !ok1 || !ok2 {
		return 0, false
	}

	action := o.decide(s.ID(), att, def)
	o.submit(s, side, att, action)

	var ev Event
	resolved = s.ResolveTurn(side, func(a, d *game.Combatant) string {
		ev = Resolve(a, d, action, roll, o.tuning)
		return turnMessage(a.DisplayName, ev)
	})
	if !resolved {
		return 0, false
	}
	if ev.DefenseRaised {
		// A defend never ends the battle; report the defender alive.
		return def.Health, true
	}
	return ev.DefenderHealth, true
}

// decide asks the provider for the attacker's move. Any failure, timeout or
// empty reply falls back to the configured action; a provider problem never
// aborts or stalls the battle.
func (o *Orchestrator) decide(roomID string, att, def game.Combatant) game.Action {
	ctx, cancel := context.WithTimeout(context.Background(), o.tuning.DecideTimeout)
	defer cancel()
	action, err := o.provider.Decide(ctx,
		decision.Snapshot{Name: att.DisplayName, Health: att.Health, IsDefending: att.IsDefending},
		decision.Snapshot{Name: def.DisplayName, Health: def.Health, IsDefending: def.IsDefending},
	)
	if err != nil {
		logging.Warn("decision provider failed; using fallback action", err, logging.Fields{
			constants.LogFieldRoomID:  roomID,
			constants.LogFieldFighter: att.DisplayName,
			constants.LogFieldAction:  string(o.tuning.FallbackAction),
		})
		return o.tuning.FallbackAction
	}
	return action
}

// submit relays the move best-effort. The call is awaited to preserve log
// ordering and pacing, but its result never influences combat resolution.
func (o *Orchestrator) submit(s *session.Session, side game.Side, att game.Combatant, action game.Action) {
	chain := att.Chain
	if chain == "" {
		chain = o.tuning.DefaultChain(side)
	}

	ctx, cancel := context.WithTimeout(context.Background(), o.tuning.SubmitTimeout)
	defer cancel()
	ref, err := o.relay.Submit(ctx, chain, action)
	if err != nil {
		logging.Warn("relay submission failed; continuing with placeholder", err, logging.Fields{
			constants.LogFieldRoomID: s.ID(),
			constants.LogFieldChain:  chain,
			constants.LogFieldAction: string(action),
		})
		ref = constants.TxRefError
	}
	s.AppendLog(fmt.Sprintf("%s move %s relayed on %s, tx: %s", att.DisplayName, action, chain, ref))
}

// finish declares the outcome and records it on the session. Departure ends
// the battle with no health-based winner; otherwise the surviving side wins,
// and on round exhaustion with both alive the first mover takes it (kept
// from the original rules).
func (o *Orchestrator) finish(s *session.Session, reason game.EndReason) game.Side {
	winner := game.SideNone
	if reason != game.EndReasonDeparture {
		winner = game.SideOne
		if f1, ok := s.Fighter(game.SideOne); ok && f1.Health <= 0 {
			winner = game.SideTwo
		}
		if f, ok := s.Fighter(winner); ok {
			s.AppendLog("Winner: " + f.DisplayName)
		}
	}
	s.RecordResult(winner, reason)
	return winner
}

// persistOutcome writes the battle record and aggregate stats best-effort.
func (o *Orchestrator) persistOutcome(s *session.Session, winner game.Side, reason game.EndReason, rounds int) {
	if o.repo == nil {
		return
	}
	snap := s.Snapshot()
	rec := &game.BattleRecord{
		RoomID:    s.ID(),
		Winner:    winner,
		EndReason: reason,
		Rounds:    rounds,
	}
	if snap.Side1 != nil {
		rec.Side1Address = snap.Side1.Address
	}
	if snap.Side2 != nil {
		rec.Side2Address = snap.Side2.Address
	}
	if err := o.repo.RecordBattle(rec); err != nil {
		logging.Error("failed to persist battle record", err, logging.Fields{constants.LogFieldRoomID: s.ID()})
	}

	winnerAddr := ""
	if winner == game.SideOne && snap.Side1 != nil {
		winnerAddr = snap.Side1.Address
	} else if winner == game.SideTwo && snap.Side2 != nil {
		winnerAddr = snap.Side2.Address
	}
	if err := o.repo.UpdateStatsOnBattleEnd(rec.Side1Address, rec.Side2Address, winnerAddr); err != nil {
		logging.Error("failed to update player stats", err, logging.Fields{constants.LogFieldRoomID: s.ID()})
	}
}

func (o *Orchestrator) pause() {
	if o.tuning.TurnDelay > 0 {
		time.Sleep(o.tuning.TurnDelay)
	}
}

func turnMessage(attacker string, ev Event) string {
	if ev.DefenseRaised {
		return attacker + " raises guard!"
	}
	prefix := ""
	if ev.Blocked {
		prefix = "Guard holds, damage halved! "
	}
	if ev.Critical {
		prefix += "CRITICAL! "
	}
	// The [HP:n] marker is the front-end animation sync key; keep it intact.
	return fmt.Sprintf("%s%s deals %d damage! [HP:%d]", prefix, attacker, ev.Damage, ev.DefenderHealth)
}
