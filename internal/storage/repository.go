package storage

import (
	"github.com/baicaiyihao/omni-agent-arena/internal/game"
)

type Repository interface {
	// UpsertProfile ensures a profile row exists for the address.
	UpsertProfile(address string) error
	GetProfileByAddress(address string) (*game.PlayerProfile, error)
	SaveProfile(p *game.PlayerProfile) error
	// Leaderboard
	GetTopPlayers(limit int) ([]game.PlayerProfile, error)
	// Battle history and aggregate stats
	RecordBattle(rec *game.BattleRecord) error
	UpdateStatsOnBattleEnd(side1Address, side2Address, winnerAddress string) error
	AddDeparture(address string) error
}
