// Package daemon manages the Grit daemon lifecycle and configuration.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/gritforge/grit/internal/app/progression"
	"github.com/gritforge/grit/internal/domain"
)

// Config holds all daemon configuration.
type Config struct {
	API       APIConfig       `toml:"api"`
	Poll      PollConfig      `toml:"poll"`
	Penalty   PenaltyConfig   `toml:"penalty"`
	Energy    EnergyConfig    `toml:"energy"`
	Logging   LoggingConfig   `toml:"logging"`
	Telemetry TelemetryConfig `toml:"telemetry"`
	PowerUps  []PowerUpConfig `toml:"powerup"`
}

// APIConfig controls the HTTP API server.
type APIConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// PollConfig controls the background job cadences.
type PollConfig struct {
	TickSeconds       int `toml:"tick_seconds"`
	ResetCheckSeconds int `toml:"reset_check_seconds"`
}

// PenaltyConfig tunes the day-boundary penalty policy.
type PenaltyConfig struct {
	InactivityXPFraction float64 `toml:"inactivity_xp_fraction"`
	EnergyPenalty        int     `toml:"energy_penalty"`
	OverdueXPFraction    float64 `toml:"overdue_xp_fraction"`
	OverdueXPCap         int64   `toml:"overdue_xp_cap"`
}

// EnergyConfig tunes regeneration cadence.
type EnergyConfig struct {
	BaseIntervalSec int64 `toml:"base_interval_sec"`
	MinIntervalSec  int64 `toml:"min_interval_sec"`
	MaxIntervalSec  int64 `toml:"max_interval_sec"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "text" or "json"
}

// TelemetryConfig controls observability surfaces.
type TelemetryConfig struct {
	Prometheus bool `toml:"prometheus"`
}

// PowerUpConfig overrides or extends the built-in power-up catalog.
// An entry whose id matches a built-in replaces it.
type PowerUpConfig struct {
	ID         string  `toml:"id"`
	Name       string  `toml:"name"`
	Type       string  `toml:"type"`
	Multiplier float64 `toml:"multiplier"`
	Duration   int     `toml:"duration_minutes"`
	Cost       int64   `toml:"cost_xp"`
	RewardXP   int64   `toml:"reward_xp"`
	Icon       string  `toml:"icon"`
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config {
	penalty := progression.DefaultPenaltyConfig()
	regen := progression.DefaultRegenConfig()
	return Config{
		API: APIConfig{
			Host: "127.0.0.1",
			Port: 7233,
		},
		Poll: PollConfig{
			TickSeconds:       30,
			ResetCheckSeconds: 60,
		},
		Penalty: PenaltyConfig{
			InactivityXPFraction: penalty.InactivityXPFraction,
			EnergyPenalty:        penalty.EnergyPenalty,
			OverdueXPFraction:    penalty.OverdueXPFraction,
			OverdueXPCap:         penalty.OverdueXPCap,
		},
		Energy: EnergyConfig{
			BaseIntervalSec: regen.BaseIntervalSec,
			MinIntervalSec:  regen.MinIntervalSec,
			MaxIntervalSec:  regen.MaxIntervalSec,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Telemetry: TelemetryConfig{
			Prometheus: true,
		},
	}
}

// LoadConfig reads config from <home>/config.toml, falling back to defaults.
// A .env file in the home directory is loaded first so GRIT_* variables can
// come from it.
func LoadConfig() (Config, error) {
	_ = godotenv.Load(filepath.Join(gritHome(), ".env"))

	cfg := DefaultConfig()
	path := filepath.Join(gritHome(), "config.toml")

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil // No config file yet — use defaults
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// SaveConfig writes the config to <home>/config.toml.
func SaveConfig(cfg Config) error {
	path := filepath.Join(gritHome(), "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// Engine builds the progression engine the config describes.
func (c Config) Engine() *progression.Engine {
	defs := progression.DefaultCatalog()
	catalog := progression.NewCatalog(defs)
	for _, p := range c.PowerUps {
		if p.ID == "" {
			continue
		}
		catalog[p.ID] = domain.PowerUpDef{
			ID:         p.ID,
			Name:       p.Name,
			Type:       domain.PowerUpType(p.Type),
			Multiplier: p.Multiplier,
			Duration:   p.Duration,
			Cost:       p.Cost,
			RewardXP:   p.RewardXP,
			Icon:       p.Icon,
		}
	}

	return &progression.Engine{
		Catalog: catalog,
		Regen: progression.RegenConfig{
			BaseIntervalSec: c.Energy.BaseIntervalSec,
			MinIntervalSec:  c.Energy.MinIntervalSec,
			MaxIntervalSec:  c.Energy.MaxIntervalSec,
		},
		Penalty: progression.PenaltyConfig{
			InactivityXPFraction: c.Penalty.InactivityXPFraction,
			EnergyPenalty:        c.Penalty.EnergyPenalty,
			OverdueXPFraction:    c.Penalty.OverdueXPFraction,
			OverdueXPCap:         c.Penalty.OverdueXPCap,
		},
	}
}

// gritHome returns the Grit data directory.
func gritHome() string {
	if env := os.Getenv("GRIT_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".grit")
}

// GritHome is exported for use by other packages.
func GritHome() string {
	return gritHome()
}
