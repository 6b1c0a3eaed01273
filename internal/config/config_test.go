package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "arena_config.json")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ServerAddress != ":3000" {
		t.Fatalf("expected default address, got %s", cfg.ServerAddress)
	}
	if cfg.Tuning.MaxRounds != 10 || cfg.Tuning.StartingHealth != 120 {
		t.Fatalf("expected default tuning, got %+v", cfg.Tuning)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `{
		"server": {"address": ":9999"},
		"battle": {"max_rounds": 3, "turn_delay_ms": 0, "crit_chance": 0.5},
		"provider": {"model": "qwen-max", "timeout_seconds": 5},
		"relay": {"base_url": "http://relay.local", "chains": {"Base": {"rpc_url": "https://r"}}}
	}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ServerAddress != ":9999" {
		t.Fatalf("expected overridden address, got %s", cfg.ServerAddress)
	}
	if cfg.Tuning.MaxRounds != 3 {
		t.Fatalf("expected 3 rounds, got %d", cfg.Tuning.MaxRounds)
	}
	if cfg.Tuning.TurnDelay != 0 {
		t.Fatalf("expected zero turn delay, got %v", cfg.Tuning.TurnDelay)
	}
	if cfg.Tuning.CritChance != 0.5 {
		t.Fatalf("expected crit chance 0.5, got %v", cfg.Tuning.CritChance)
	}
	// Unnamed fields keep their defaults.
	if cfg.Tuning.StartingHealth != 120 {
		t.Fatalf("expected default health, got %d", cfg.Tuning.StartingHealth)
	}
	if cfg.Provider.Model != "qwen-max" || cfg.Provider.Timeout != 5*time.Second {
		t.Fatalf("unexpected provider config %+v", cfg.Provider)
	}
	if cfg.Relay.BaseURL != "http://relay.local" {
		t.Fatalf("unexpected relay base url %s", cfg.Relay.BaseURL)
	}
	if _, ok := cfg.Relay.Chains["Base"]; !ok {
		t.Fatalf("expected Base chain leg, got %+v", cfg.Relay.Chains)
	}
}

func TestLoad_RejectsInvalidTuning(t *testing.T) {
	cases := []string{
		`{"battle": {"max_rounds": 0}}`,
		`{"battle": {"crit_chance": 1.5}}`,
		`{"battle": {"roll_span": -1}}`,
		`{"battle": {"roll_offset": -20}}`,
		`{"battle": {"crit_multiplier": 0.5}}`,
	}
	for _, body := range cases {
		if _, err := Load(writeConfig(t, body)); err == nil {
			t.Fatalf("expected validation error for %s", body)
		}
	}
}

func TestLoad_RejectsMalformedJSON(t *testing.T) {
	if _, err := Load(writeConfig(t, `{not json`)); err == nil {
		t.Fatalf("expected parse error")
	}
}
