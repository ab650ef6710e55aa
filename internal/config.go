/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds file-level settings. Command line flags override it.
type Config struct {
	Engine     EngineConfig     `yaml:"engine"`
	Simulation SimulationConfig `yaml:"simulation"`
	Roster     RosterConfig     `yaml:"roster"`
	Archive    ArchiveConfig    `yaml:"archive"`
	Report     ReportConfig     `yaml:"report"`
}

type EngineConfig struct {
	// Path to the pairing engine binary; empty searches WorkDir.
	Path       string `yaml:"path"`
	WorkDir    string `yaml:"work_dir"`
	Algorithm  string `yaml:"algorithm"`
	Compare    string `yaml:"compare"`
	KeepOutput bool   `yaml:"keep_output"`
	// Timeout is a duration string ("30s"); empty or "0" waits forever.
	Timeout      string `yaml:"timeout"`
	PointsForWin int    `yaml:"points_for_win"`
	FirstColor   string `yaml:"first_color"`
}

type SimulationConfig struct {
	// Model is "table" or "elo".
	Model     string  `yaml:"model"`
	DrawShare float64 `yaml:"draw_share"`
	Trials    int     `yaml:"trials"`
	Parallel  int     `yaml:"parallel"`
	// Seed fixes generated rosters; 0 picks a random seed.
	Seed uint64 `yaml:"seed"`
}

type RosterConfig struct {
	MinRating int    `yaml:"min_rating"`
	MaxRating int    `yaml:"max_rating"`
	URL       string `yaml:"url"`
	Event     string `yaml:"event"`
	// Section is a section name for registration pages and a section
	// number for rated events.
	Section string `yaml:"section"`
	// CacheBucket enables an S3 backed HTTP cache for remote rosters.
	CacheBucket string `yaml:"cache_bucket"`
	CacheTTL    string `yaml:"cache_ttl"`
}

type ArchiveConfig struct {
	Bucket string `yaml:"bucket"`
	Prefix string `yaml:"prefix"`
	Gzip   bool   `yaml:"gzip"`
}

type ReportConfig struct {
	DiscordWebhook string `yaml:"discord_webhook"`
}

// DefaultConfig returns the settings used when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			WorkDir:      ".",
			Algorithm:    "fast",
			PointsForWin: 7,
			FirstColor:   "black1",
		},
		Simulation: SimulationConfig{
			Model:     "table",
			DrawShare: 0.3,
			Trials:    1,
			Parallel:  1,
		},
		Roster: RosterConfig{
			MinRating: DefaultMinRating,
			MaxRating: DefaultMaxRating,
			CacheTTL:  "24h",
		},
		Archive: ArchiveConfig{
			Prefix: "pairingsim",
		},
	}
}

// LoadConfig reads path over the defaults. A missing file is not an error.
// Environment overrides apply either way.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %v: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %v: %w", path, err)
	}

	return cfg, nil
}

// Save writes the config as YAML, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(EnvEngine); v != "" {
		c.Engine.Path = v
	}
	if v := os.Getenv(EnvArchiveBucket); v != "" {
		c.Archive.Bucket = v
	}
	if v := os.Getenv(EnvDiscordWebhook); v != "" {
		c.Report.DiscordWebhook = v
	}
}

func (c *Config) Validate() error {
	if _, err := c.EngineTimeout(); err != nil {
		return err
	}
	if _, err := c.CacheTTL(); err != nil {
		return err
	}
	if c.Roster.MinRating < 0 || c.Roster.MinRating > c.Roster.MaxRating {
		return fmt.Errorf("rating range [%d, %d] is empty", c.Roster.MinRating,
			c.Roster.MaxRating)
	}
	if c.Simulation.DrawShare < 0 || c.Simulation.DrawShare > 1 {
		return fmt.Errorf("draw share %v outside [0, 1]", c.Simulation.DrawShare)
	}
	return nil
}

func (c *Config) EngineTimeout() (time.Duration, error) {
	return parseDuration("engine.timeout", c.Engine.Timeout)
}

func (c *Config) CacheTTL() (time.Duration, error) {
	return parseDuration("roster.cache_ttl", c.Roster.CacheTTL)
}

func parseDuration(field string, s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%v: %w", field, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%v: negative duration %v", field, s)
	}
	return d, nil
}
