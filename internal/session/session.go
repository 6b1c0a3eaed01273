package session

import (
	"sync"
	"time"

	"github.com/baicaiyihao/omni-agent-arena/internal/game"
)

// Session holds the authoritative state of one battle room. All fields are
// guarded by mu. Once a battle goroutine is running it is the sole writer of
// combat state while HTTP handlers read snapshots concurrently; the started
// flag is the only field that ever sees competing writers, and its
// check-and-set is a single critical section.
type Session struct {
	mu sync.RWMutex

	id        string
	roomType  game.RoomType
	createdAt time.Time

	side1      *game.Combatant
	side2      *game.Combatant
	spectators []string

	status    game.Status
	winner    game.Side
	endReason game.EndReason

	battleStarted bool
	logs          []game.LogEntry

	// departed collects addresses that left while the battle was running,
	// so outcome persistence can attribute the departure.
	departed []string
}

// Snapshot is a point-in-time copy of a session for polling readers.
type Snapshot struct {
	ID         string
	Type       game.RoomType
	Status     game.Status
	Side1      *game.Combatant
	Side2      *game.Combatant
	Winner     game.Side
	EndReason  game.EndReason
	Spectators int
	Logs       []game.LogEntry
}

// New creates a session in the given initial status. PvP rooms start
// waiting; PvE rooms start fighting because creation and readiness coincide.
func New(id string, roomType game.RoomType, status game.Status) *Session {
	return &Session{
		id:        id,
		roomType:  roomType,
		status:    status,
		createdAt: time.Now(),
	}
}

func (s *Session) ID() string { return s.id }

func (s *Session) Type() game.RoomType { return s.roomType }

// SetCombatant fills a slot, replacing whatever occupied it.
func (s *Session) SetCombatant(side game.Side, c *game.Combatant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if side == game.SideOne {
		s.side1 = c
	} else {
		s.side2 = c
	}
}

// Join seats c in the second slot if it is free.
func (s *Session) Join(c *game.Combatant) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.side2 != nil {
		return false
	}
	s.side2 = c
	return true
}

// AddSpectator registers a watching address once.
func (s *Session) AddSpectator(address string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sp := range s.spectators {
		if sp == address {
			return
		}
	}
	s.spectators = append(s.spectators, address)
}

// HasParticipant reports whether address occupies either combatant slot.
func (s *Session) HasParticipant(address string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.side1 != nil && s.side1.Address == address {
		return true
	}
	if s.side2 != nil && s.side2.Address == address {
		return true
	}
	return false
}

// SetReady marks the caller's slot ready with the chosen hero and reports
// whether both sides are now ready.
func (s *Session) SetReady(address string, hero game.Hero) (bothReady, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.side1 != nil && s.side1.Address == address {
		s.side1.Ready = true
		s.side1.Hero = hero
		ok = true
	}
	if s.side2 != nil && s.side2.Address == address {
		s.side2.Ready = true
		s.side2.Hero = hero
		ok = true
	}
	bothReady = s.side1 != nil && s.side1.Ready && s.side2 != nil && s.side2.Ready
	return bothReady, ok
}

// TryStartBattle atomically claims the right to spawn this session's battle
// goroutine. Exactly one caller ever gets true, no matter how many readiness
// signals or duplicate creation requests race; the flag is never reset.
func (s *Session) TryStartBattle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.battleStarted {
		return false
	}
	s.battleStarted = true
	return true
}

// MarkFighting advances waiting -> fighting. Any other transition is a no-op
// so status stays monotonic.
func (s *Session) MarkFighting() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == game.StatusWaiting {
		s.status = game.StatusFighting
	}
}

// BeginBattle initializes combat state for both fighters and returns copies
// of them. It fails when either slot is vacant.
func (s *Session) BeginBattle(startingHealth int) (p1, p2 game.Combatant, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.side1 == nil || s.side2 == nil {
		return game.Combatant{}, game.Combatant{}, false
	}
	if s.status == game.StatusWaiting {
		s.status = game.StatusFighting
	}
	initFighter(s.side1, "P1", game.Hero("Hero"), startingHealth)
	initFighter(s.side2, "P2", game.Hero("Villain"), startingHealth)
	return *s.side1, *s.side2, true
}

func initFighter(c *game.Combatant, label string, fallbackHero game.Hero, health int) {
	hero := c.Hero
	if hero == game.HeroNone {
		hero = fallbackHero
	}
	c.DisplayName = label + "(" + string(hero) + ")"
	c.Health = health
	c.IsDefending = false
}

// RecordResult finishes the battle. It is idempotent: once finished, later
// calls change nothing.
func (s *Session) RecordResult(winner game.Side, reason game.EndReason) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == game.StatusFinished {
		return
	}
	s.status = game.StatusFinished
	s.winner = winner
	s.endReason = reason
}

// Vacate clears the slot occupied by address and removes it from the
// spectator list. It reports whether a combatant slot was cleared, whether
// that happened mid-fight, and whether both slots are now empty.
func (s *Session) Vacate(address string) (removed, midFight, empty bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.side1 != nil && s.side1.Address == address {
		s.side1 = nil
		removed = true
	}
	if s.side2 != nil && s.side2.Address == address {
		s.side2 = nil
		removed = true
	}
	if removed && s.status == game.StatusFighting {
		midFight = true
		s.departed = append(s.departed, address)
	}
	filtered := s.spectators[:0]
	for _, sp := range s.spectators {
		if sp != address {
			filtered = append(filtered, sp)
		}
	}
	s.spectators = filtered
	empty = s.side1 == nil && s.side2 == nil
	return removed, midFight, empty
}

// Empty reports whether both combatant slots are vacant.
func (s *Session) Empty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.side1 == nil && s.side2 == nil
}

// BothPresent reports whether both combatant slots are occupied.
func (s *Session) BothPresent() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.side1 != nil && s.side2 != nil
}

// Fighter returns a copy of the combatant on the given side.
func (s *Session) Fighter(side game.Side) (game.Combatant, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c := s.side1
	if side == game.SideTwo {
		c = s.side2
	}
	if c == nil {
		return game.Combatant{}, false
	}
	return *c, true
}

// ResolveTurn runs fn against the two combatants under the write lock and
// appends the returned log line in the same critical section, so polling
// readers never observe resolved state without its log entry or vice versa.
// It returns false without calling fn when either slot is vacant.
func (s *Session) ResolveTurn(attacker game.Side, fn func(att, def *game.Combatant) string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	att, def := s.side1, s.side2
	if attacker == game.SideTwo {
		att, def = def, att
	}
	if att == nil || def == nil {
		return false
	}
	if msg := fn(att, def); msg != "" {
		s.appendLogLocked(msg)
	}
	return true
}

// AppendLog adds one timestamped entry to the battle log.
func (s *Session) AppendLog(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendLogLocked(msg)
}

func (s *Session) appendLogLocked(msg string) {
	s.logs = append(s.logs, game.LogEntry{
		Time: time.Now().Format("15:04:05"),
		Msg:  msg,
	})
}

func (s *Session) Status() game.Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *Session) Winner() game.Side {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.winner
}

func (s *Session) EndReason() game.EndReason {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.endReason
}

// Departed returns the addresses that left mid-fight, in order.
func (s *Session) Departed() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.departed))
	copy(out, s.departed)
	return out
}

// Snapshot copies the full externally visible state in one read lock, the
// read side of the polling contract: at least as recent as the last
// completed append, never torn.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{
		ID:         s.id,
		Type:       s.roomType,
		Status:     s.status,
		Winner:     s.winner,
		EndReason:  s.endReason,
		Spectators: len(s.spectators),
		Logs:       make([]game.LogEntry, len(s.logs)),
	}
	copy(snap.Logs, s.logs)
	if s.side1 != nil {
		c := *s.side1
		snap.Side1 = &c
	}
	if s.side2 != nil {
		c := *s.side2
		snap.Side2 = &c
	}
	return snap
}
