package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/baicaiyihao/omni-agent-arena/internal/battle"
	"github.com/baicaiyihao/omni-agent-arena/internal/constants"
	"github.com/baicaiyihao/omni-agent-arena/internal/logging"
	"github.com/baicaiyihao/omni-agent-arena/internal/relay"

	"github.com/caarlos0/env/v11"
)

// Env holds settings read from the process environment. Secrets only come
// from here, never from the config file.
type Env struct {
	ConfigPath      string `env:"ARENA_CONFIG" envDefault:"arena_config.json"`
	DBPath          string `env:"ARENA_DB" envDefault:"arena.db"`
	ProviderAPIKey  string `env:"DASHSCOPE_API_KEY"`
	RelayPrivateKey string `env:"PRIVATE_KEY"`
}

func LoadEnv() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, fmt.Errorf("parse environment: %w", err)
	}
	return e, nil
}

// Config is the fully resolved runtime configuration.
type Config struct {
	ServerAddress string
	Tuning        battle.Tuning
	Provider      ProviderConfig
	Relay         relay.Options
}

type ProviderConfig struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// rawConfig mirrors the JSON file. Pointer fields distinguish "absent" from
// zero so the file only has to name what it overrides.
type rawConfig struct {
	Server struct {
		Address string `json:"address"`
	} `json:"server"`
	Battle struct {
		MaxRounds      *int     `json:"max_rounds"`
		TurnDelayMs    *int     `json:"turn_delay_ms"`
		StartingHealth *int     `json:"starting_health"`
		AttackDamage   *int     `json:"attack_damage"`
		SkillDamage    *int     `json:"skill_damage"`
		RollSpan       *int     `json:"roll_span"`
		RollOffset     *int     `json:"roll_offset"`
		CritChance     *float64 `json:"crit_chance"`
		CritMultiplier *float64 `json:"crit_multiplier"`
	} `json:"battle"`
	Provider struct {
		BaseURL        string `json:"base_url"`
		Model          string `json:"model"`
		TimeoutSeconds int    `json:"timeout_seconds"`
	} `json:"provider"`
	Relay struct {
		BaseURL        string                       `json:"base_url"`
		TargetToken    string                       `json:"target_token"`
		Amount         string                       `json:"amount"`
		GasLimit       int                          `json:"gas_limit"`
		FallbackChain  string                       `json:"fallback_chain"`
		TimeoutSeconds int                          `json:"timeout_seconds"`
		Chains         map[string]relay.ChainConfig `json:"chains"`
	} `json:"relay"`
}

// Load reads the JSON config file and merges it over defaults. A missing
// file is not an error; the defaults run a fully playable local arena.
func Load(path string) (Config, error) {
	cfg := Config{
		ServerAddress: ":3000",
		Tuning:        battle.DefaultTuning(),
		Provider: ProviderConfig{
			BaseURL: constants.ProviderBaseURL,
			Model:   constants.ProviderChatModel,
			Timeout: 30 * time.Second,
		},
		Relay: relay.Options{
			FallbackChain: constants.ChainBase,
			Timeout:       60 * time.Second,
		},
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logging.Info("config file not found, using defaults", logging.Fields{"path": path})
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	var raw rawConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	if raw.Server.Address != "" {
		cfg.ServerAddress = raw.Server.Address
	}

	b := raw.Battle
	if b.MaxRounds != nil {
		cfg.Tuning.MaxRounds = *b.MaxRounds
	}
	if b.TurnDelayMs != nil {
		cfg.Tuning.TurnDelay = time.Duration(*b.TurnDelayMs) * time.Millisecond
	}
	if b.StartingHealth != nil {
		cfg.Tuning.StartingHealth = *b.StartingHealth
	}
	if b.AttackDamage != nil {
		cfg.Tuning.AttackDamage = *b.AttackDamage
	}
	if b.SkillDamage != nil {
		cfg.Tuning.SkillDamage = *b.SkillDamage
	}
	if b.RollSpan != nil {
		cfg.Tuning.RollSpan = *b.RollSpan
	}
	if b.RollOffset != nil {
		cfg.Tuning.RollOffset = *b.RollOffset
	}
	if b.CritChance != nil {
		cfg.Tuning.CritChance = *b.CritChance
	}
	if b.CritMultiplier != nil {
		cfg.Tuning.CritMultiplier = *b.CritMultiplier
	}

	if raw.Provider.BaseURL != "" {
		cfg.Provider.BaseURL = raw.Provider.BaseURL
	}
	if raw.Provider.Model != "" {
		cfg.Provider.Model = raw.Provider.Model
	}
	if raw.Provider.TimeoutSeconds > 0 {
		cfg.Provider.Timeout = time.Duration(raw.Provider.TimeoutSeconds) * time.Second
	}

	cfg.Relay.BaseURL = raw.Relay.BaseURL
	cfg.Relay.TargetToken = raw.Relay.TargetToken
	cfg.Relay.Amount = raw.Relay.Amount
	cfg.Relay.GasLimit = raw.Relay.GasLimit
	if raw.Relay.FallbackChain != "" {
		cfg.Relay.FallbackChain = raw.Relay.FallbackChain
	}
	if raw.Relay.TimeoutSeconds > 0 {
		cfg.Relay.Timeout = time.Duration(raw.Relay.TimeoutSeconds) * time.Second
	}
	cfg.Relay.Chains = raw.Relay.Chains

	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	t := c.Tuning
	if t.MaxRounds <= 0 {
		return fmt.Errorf("battle.max_rounds must be positive, got %d", t.MaxRounds)
	}
	if t.StartingHealth <= 0 {
		return fmt.Errorf("battle.starting_health must be positive, got %d", t.StartingHealth)
	}
	if t.RollSpan <= 0 {
		return fmt.Errorf("battle.roll_span must be positive, got %d", t.RollSpan)
	}
	if t.CritChance < 0 || t.CritChance > 1 {
		return fmt.Errorf("battle.crit_chance must be in [0,1], got %v", t.CritChance)
	}
	if t.CritMultiplier < 1 {
		return fmt.Errorf("battle.crit_multiplier must be at least 1, got %v", t.CritMultiplier)
	}
	if t.AttackDamage+t.RollOffset < 0 {
		return fmt.Errorf("attack damage floor is negative (%d%+d)", t.AttackDamage, t.RollOffset)
	}
	if t.SkillDamage+t.RollOffset < 0 {
		return fmt.Errorf("skill damage floor is negative (%d%+d)", t.SkillDamage, t.RollOffset)
	}
	return nil
}
