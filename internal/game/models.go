package game

import (
	"gorm.io/gorm"
)

// Side identifies one of a room's two combatant slots.
type Side string

const (
	SideNone Side = ""
	SideOne  Side = "p1"
	SideTwo  Side = "p2"
)

// Opponent returns the other slot.
func (s Side) Opponent() Side {
	if s == SideOne {
		return SideTwo
	}
	return SideOne
}

// Status is a room's battle lifecycle state. Transitions are monotonic:
// waiting -> fighting -> finished, never backward.
type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusFighting Status = "fighting"
	StatusFinished Status = "finished"
)

// EndReason records why a battle terminated. A departure is a distinct
// terminal condition from a knockout or the round limit and never carries a
// health-based winner.
type EndReason string

const (
	EndReasonNone       EndReason = ""
	EndReasonKnockout   EndReason = "knockout"
	EndReasonRoundLimit EndReason = "round_limit"
	EndReasonDeparture  EndReason = "departure"
)

// RoomType distinguishes player-vs-player rooms from rooms against the
// built-in agent opponent.
type RoomType string

const (
	RoomPvP RoomType = "PvP"
	RoomPvE RoomType = "PvE"
)

// Combatant is one side's mutable battle state. It is owned by its room's
// session; once a battle starts it is mutated only by that room's battle
// goroutine, under the session lock.
type Combatant struct {
	Address     string `json:"address"`
	Chain       string `json:"chain"`
	Hero        Hero   `json:"hero"`
	Ready       bool   `json:"ready"`
	DisplayName string `json:"name"`
	Health      int    `json:"hp"`
	IsDefending bool   `json:"is_defending"`
}

// LogEntry is one line of a room's append-only battle log.
type LogEntry struct {
	Time string `json:"time"`
	Msg  string `json:"msg"`
}

// PlayerProfile stores a wallet's identity and aggregate battle stats.
type PlayerProfile struct {
	gorm.Model
	Address       string `json:"address" gorm:"uniqueIndex"`
	DisplayName   string `json:"display_name"`
	BattlesPlayed int    `json:"battles_played"`
	Wins          int    `json:"wins"`
	Departures    int    `json:"departures"`
}

func (PlayerProfile) TableName() string { return "player_profiles" }

// BattleRecord is the persisted outcome of one finished battle. Live room
// state is process-local; only outcomes survive restarts.
type BattleRecord struct {
	gorm.Model
	RoomID       string    `json:"room_id" gorm:"index"`
	Side1Address string    `json:"side1_address"`
	Side2Address string    `json:"side2_address"`
	Winner       Side      `json:"winner"`
	EndReason    EndReason `json:"end_reason"`
	Rounds       int       `json:"rounds"`
}

func (BattleRecord) TableName() string { return "battle_records" }
