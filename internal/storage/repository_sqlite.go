package storage

import (
	"errors"

	"github.com/baicaiyihao/omni-agent-arena/internal/constants"
	"github.com/baicaiyihao/omni-agent-arena/internal/game"
	"gorm.io/gorm"
)

type sqliteRepository struct {
	db *gorm.DB
}

func NewSQLiteRepository(db *gorm.DB) Repository {
	return &sqliteRepository{db: db}
}

func (r *sqliteRepository) UpsertProfile(address string) error {
	var p game.PlayerProfile
	if err := r.db.Where("address = ?", address).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			p = game.PlayerProfile{Address: address}
			return r.db.Create(&p).Error
		}
		return err
	}
	return nil
}

func (r *sqliteRepository) GetProfileByAddress(address string) (*game.PlayerProfile, error) {
	var p game.PlayerProfile
	if err := r.db.Where("address = ?", address).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &game.PlayerProfile{Address: address}, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *sqliteRepository) SaveProfile(p *game.PlayerProfile) error {
	return r.db.Save(p).Error
}

// GetTopPlayers returns top N players ordered by Wins desc, then
// BattlesPlayed desc.
func (r *sqliteRepository) GetTopPlayers(limit int) ([]game.PlayerProfile, error) {
	if limit <= 0 {
		limit = 10
	}
	var players []game.PlayerProfile
	if err := r.db.Model(&game.PlayerProfile{}).
		Where("address != ?", constants.AIAgentAddress).
		Order("wins DESC").
		Order("battles_played DESC").
		Limit(limit).
		Find(&players).Error; err != nil {
		return nil, err
	}
	return players, nil
}

func (r *sqliteRepository) RecordBattle(rec *game.BattleRecord) error {
	return r.db.Create(rec).Error
}

func (r *sqliteRepository) UpdateStatsOnBattleEnd(side1Address, side2Address, winnerAddress string) error {
	// Helper to upsert and add deltas; the built-in agent keeps no stats.
	bump := func(address string, played, wins int) error {
		if address == "" || address == constants.AIAgentAddress {
			return nil
		}
		var p game.PlayerProfile
		if err := r.db.Where("address = ?", address).First(&p).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				p = game.PlayerProfile{Address: address}
			} else {
				return err
			}
		}
		p.BattlesPlayed += played
		p.Wins += wins
		return r.db.Save(&p).Error
	}
	if err := bump(side1Address, 1, 0); err != nil {
		return err
	}
	if err := bump(side2Address, 1, 0); err != nil {
		return err
	}
	if winnerAddress != "" {
		return bump(winnerAddress, 0, 1)
	}
	return nil
}

func (r *sqliteRepository) AddDeparture(address string) error {
	if address == "" || address == constants.AIAgentAddress {
		return nil
	}
	var p game.PlayerProfile
	if err := r.db.Where("address = ?", address).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			p = game.PlayerProfile{Address: address}
		} else {
			return err
		}
	}
	p.Departures++
	return r.db.Save(&p).Error
}
