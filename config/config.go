package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete engine configuration. It is read once at
// construction; a config error is fatal at startup.
type Config struct {
	Trading  TradingConfig  `json:"trading" yaml:"trading"`
	Strategy StrategyConfig `json:"strategy" yaml:"strategy"`
	Risk     RiskConfig     `json:"risk_management" yaml:"risk_management"`
	Filters  FiltersConfig  `json:"filters" yaml:"filters"`
	Journal  JournalConfig  `json:"journal" yaml:"journal"`
	Server   ServerConfig   `json:"server" yaml:"server"`
}

// TradingConfig identifies the instrument and account basics.
type TradingConfig struct {
	Symbol         string  `json:"symbol" yaml:"symbol"`
	PointValue     float64 `json:"point_value" yaml:"point_value"` // currency per point per contract
	Timezone       string  `json:"timezone" yaml:"timezone"`
	InitialBalance float64 `json:"initial_balance" yaml:"initial_balance"`
}

// StrategyConfig contains the opening-range breakout parameters.
type StrategyConfig struct {
	OpeningRangeMinutes int     `json:"opening_range_minutes" yaml:"opening_range_minutes"`
	WindowStart         string  `json:"window_start" yaml:"window_start"` // HH:MM local
	WindowEnd           string  `json:"window_end" yaml:"window_end"`     // HH:MM local
	RiskRewardRatio     float64 `json:"risk_reward_ratio" yaml:"risk_reward_ratio"`
	RiskPercent         float64 `json:"risk_percent" yaml:"risk_percent"`
	VolumeConfirmation  bool    `json:"volume_confirmation" yaml:"volume_confirmation"`
	VolumeMultiplier    float64 `json:"volume_multiplier" yaml:"volume_multiplier"`
	MinBreakoutPoints   float64 `json:"min_breakout_points" yaml:"min_breakout_points"`
}

// RiskConfig contains the hard risk limits.
type RiskConfig struct {
	MaxPositionSize int     `json:"max_position_size" yaml:"max_position_size"`
	MaxDailyLoss    float64 `json:"max_daily_loss" yaml:"max_daily_loss"`
	MaxDailyTrades  int     `json:"max_daily_trades" yaml:"max_daily_trades"`
}

// FiltersConfig controls the calendar gates.
type FiltersConfig struct {
	AvoidNewsDays bool `json:"avoid_news_days" yaml:"avoid_news_days"`
}

// JournalConfig selects where closed trades are recorded.
type JournalConfig struct {
	Type        string `json:"type" yaml:"type"` // "none", "csv" or "sqlite"
	TradesFile  string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	BalanceFile string `json:"balance_file,omitempty" yaml:"balance_file,omitempty"`
	DBPath      string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// ServerConfig contains the HTTP control surface settings.
type ServerConfig struct {
	Addr string `json:"addr" yaml:"addr"`
}

// LoadFromFile loads configuration from a file. YAML is tried first, then
// JSON, matching the file's extension-agnostic handling elsewhere in the CLI.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile writes the configuration as YAML (or JSON for .json paths).
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".json") {
		data, err = json.MarshalIndent(c, "", "  ")
	} else {
		data, err = yaml.Marshal(c)
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks the configuration. Any failure here must prevent startup.
func (c *Config) Validate() error {
	if c.Trading.Symbol == "" {
		return fmt.Errorf("trading.symbol is required")
	}
	if c.Trading.PointValue <= 0 {
		return fmt.Errorf("trading.point_value must be positive")
	}
	if c.Trading.InitialBalance <= 0 {
		return fmt.Errorf("trading.initial_balance must be positive")
	}
	if _, err := time.LoadLocation(c.Trading.Timezone); err != nil {
		return fmt.Errorf("trading.timezone: %w", err)
	}
	if c.Strategy.OpeningRangeMinutes <= 0 {
		return fmt.Errorf("strategy.opening_range_minutes must be positive")
	}
	start, err := ParseClock(c.Strategy.WindowStart)
	if err != nil {
		return fmt.Errorf("strategy.window_start: %w", err)
	}
	end, err := ParseClock(c.Strategy.WindowEnd)
	if err != nil {
		return fmt.Errorf("strategy.window_end: %w", err)
	}
	if !start.Before(end) {
		return fmt.Errorf("strategy.window_start must be earlier than window_end")
	}
	if c.Strategy.RiskRewardRatio <= 0 {
		return fmt.Errorf("strategy.risk_reward_ratio must be positive")
	}
	if c.Strategy.RiskPercent <= 0 || c.Strategy.RiskPercent > 1 {
		return fmt.Errorf("strategy.risk_percent must be between 0 and 1")
	}
	if c.Strategy.VolumeConfirmation && c.Strategy.VolumeMultiplier <= 0 {
		return fmt.Errorf("strategy.volume_multiplier must be positive when volume_confirmation is on")
	}
	if c.Strategy.MinBreakoutPoints < 0 {
		return fmt.Errorf("strategy.min_breakout_points must not be negative")
	}
	if c.Risk.MaxPositionSize <= 0 {
		return fmt.Errorf("risk_management.max_position_size must be positive")
	}
	if c.Risk.MaxDailyLoss <= 0 {
		return fmt.Errorf("risk_management.max_daily_loss must be positive")
	}
	if c.Risk.MaxDailyTrades <= 0 {
		return fmt.Errorf("risk_management.max_daily_trades must be positive")
	}
	switch c.Journal.Type {
	case "", "none":
	case "csv":
		if c.Journal.TradesFile == "" || c.Journal.BalanceFile == "" {
			return fmt.Errorf("journal trades_file and balance_file required for csv type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for sqlite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'none', 'csv' or 'sqlite'")
	}
	return nil
}

// Location returns the session timezone. Call Validate first; an invalid
// timezone falls back to UTC here.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Trading.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Default returns a configuration with sensible defaults for ES futures.
func Default() *Config {
	return &Config{
		Trading: TradingConfig{
			Symbol:         "ES",
			PointValue:     50,
			Timezone:       "America/New_York",
			InitialBalance: 100000,
		},
		Strategy: StrategyConfig{
			OpeningRangeMinutes: 5,
			WindowStart:         "09:30",
			WindowEnd:           "11:30",
			RiskRewardRatio:     2.0,
			RiskPercent:         0.02,
			VolumeConfirmation:  true,
			VolumeMultiplier:    1.5,
			MinBreakoutPoints:   0.25,
		},
		Risk: RiskConfig{
			MaxPositionSize: 2,
			MaxDailyLoss:    500,
			MaxDailyTrades:  3,
		},
		Filters: FiltersConfig{
			AvoidNewsDays: true,
		},
		Journal: JournalConfig{
			Type: "none",
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}
