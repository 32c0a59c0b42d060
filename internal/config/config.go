// Package config loads server configuration from the environment (with an
// optional .env file) and tournament settings from YAML.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/kcoltin/SWSDITAB-sub001/internal/models"
)

// Config holds the server settings
type Config struct {
	Port          int    `env:"PORT" envDefault:"8080"`
	DBPath        string `env:"DB_PATH" envDefault:"debatetab.db"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat     string `env:"LOG_FORMAT" envDefault:"text"`
	// BaseURL is used in posting QR codes; detected from the LAN address when empty
	BaseURL      string `env:"BASE_URL"`
	SettingsFile string `env:"SETTINGS_FILE"`
	TournamentID string `env:"TOURNAMENT_ID"`

	SearchNodeBudget int           `env:"SEARCH_NODE_BUDGET" envDefault:"2000000"`
	SearchTimeout    time.Duration `env:"SEARCH_TIMEOUT" envDefault:"10s"`
}

// Load reads .env (a missing file is fine) and then the environment
func Load() (*Config, error) {
	_ = godotenv.Load()
	return Parse()
}

// Parse reads the environment only
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges env tags cannot express
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}
	if c.SearchNodeBudget < 0 {
		return fmt.Errorf("SEARCH_NODE_BUDGET must not be negative, got %d", c.SearchNodeBudget)
	}
	if c.SearchTimeout < 0 {
		return fmt.Errorf("SEARCH_TIMEOUT must not be negative, got %s", c.SearchTimeout)
	}
	return nil
}

// Addr is the listen address for Port
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Settings describes a tournament event
type Settings struct {
	ID              string            `yaml:"id"`
	Name            string            `yaml:"name"`
	TeamSize        int               `yaml:"team_size"`
	JudgesPerDebate int               `yaml:"judges_per_debate"`
	SidePolicy      models.SidePolicy `yaml:"side_policy"`
	CleanBreak      bool              `yaml:"clean_break"`
	RandomSeed      uint64            `yaml:"random_seed"`
	Prelims         int               `yaml:"prelims"`
	BreakLevel      models.Outround   `yaml:"break_level"`
}

// DefaultSettings is a two-person, one-judge event with four prelims
func DefaultSettings() Settings {
	return Settings{
		Name:            "Debate Tournament",
		TeamSize:        2,
		JudgesPerDebate: 1,
		SidePolicy:      models.SidesFlip,
		Prelims:         4,
	}
}

// LoadSettings reads a YAML settings file over the defaults. An empty path
// returns the defaults.
func LoadSettings(path string) (Settings, error) {
	s := DefaultSettings()
	if path == "" {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("read settings: %w", err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	return s, s.Validate()
}

// Validate checks the settings describe a runnable event
func (s Settings) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("settings: name is required")
	}
	if s.TeamSize < 1 {
		return fmt.Errorf("settings: team_size must be at least 1, got %d", s.TeamSize)
	}
	if s.JudgesPerDebate < 0 {
		return fmt.Errorf("settings: judges_per_debate must not be negative, got %d", s.JudgesPerDebate)
	}
	if s.Prelims < 0 {
		return fmt.Errorf("settings: prelims must not be negative, got %d", s.Prelims)
	}
	if s.BreakLevel != 0 && !s.BreakLevel.Valid() {
		return fmt.Errorf("settings: invalid break_level %d", s.BreakLevel)
	}
	return nil
}
