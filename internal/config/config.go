// Package config is the settings store: body metrics and macro split for
// the goal calculator, plus product lookup settings. It only reads and
// writes the TOML file; the engine receives plain values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/saadjs/foodlog/internal/model"
	"github.com/saadjs/foodlog/internal/service"
)

const (
	EnvOFFBaseURL    = "FOODLOG_OFF_BASE_URL"
	EnvLookupTimeout = "FOODLOG_LOOKUP_TIMEOUT"
)

type Config struct {
	Profile ProfileConfig `toml:"profile"`
	Lookup  LookupConfig  `toml:"lookup"`
}

// ProfileConfig holds GoalProfile inputs. Zero values mean "not set yet".
type ProfileConfig struct {
	Sex        string  `toml:"sex,omitempty"`
	Age        int     `toml:"age,omitempty"`
	HeightCm   float64 `toml:"height_cm,omitempty"`
	WeightKg   float64 `toml:"weight_kg,omitempty"`
	Activity   string  `toml:"activity"`
	WeightGoal string  `toml:"weight_goal"`
	CarbPct    float64 `toml:"carb_pct"`
	ProteinPct float64 `toml:"protein_pct"`
	FatPct     float64 `toml:"fat_pct"`
}

type LookupConfig struct {
	BaseURL        string `toml:"base_url,omitempty"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	UseCache       bool   `toml:"use_cache"`
}

func DefaultConfig() Config {
	return Config{
		Profile: ProfileConfig{
			Activity:   string(service.ActivityModerate),
			WeightGoal: string(service.WeightGoalMaintain),
			CarbPct:    service.DefaultMacroSplit.CarbPct,
			ProteinPct: service.DefaultMacroSplit.ProteinPct,
			FatPct:     service.DefaultMacroSplit.FatPct,
		},
		Lookup: LookupConfig{
			TimeoutSeconds: int(service.DefaultLookupTimeout / time.Second),
			UseCache:       true,
		},
	}
}

// Load reads the config at path, returning defaults if it doesn't exist.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("create config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}

// ApplyEnv overlays lookup settings from the environment.
func (c *Config) ApplyEnv() error {
	if v := strings.TrimSpace(os.Getenv(EnvOFFBaseURL)); v != "" {
		c.Lookup.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLookupTimeout)); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return fmt.Errorf("invalid %s %q (expected a duration like 10s)", EnvLookupTimeout, v)
		}
		c.Lookup.TimeoutSeconds = int(d.Round(time.Second) / time.Second)
		if c.Lookup.TimeoutSeconds == 0 {
			c.Lookup.TimeoutSeconds = 1
		}
	}
	return nil
}

func (c Config) LookupTimeout() time.Duration {
	if c.Lookup.TimeoutSeconds <= 0 {
		return service.DefaultLookupTimeout
	}
	return time.Duration(c.Lookup.TimeoutSeconds) * time.Second
}

func (p ProfileConfig) MacroSplit() service.MacroSplit {
	return service.MacroSplit{CarbPct: p.CarbPct, ProteinPct: p.ProteinPct, FatPct: p.FatPct}
}

// GoalProfile converts the stored settings, failing if any body metric is
// missing or invalid.
func (p ProfileConfig) GoalProfile() (service.GoalProfile, error) {
	if p.Sex == "" || p.HeightCm == 0 || p.WeightKg == 0 {
		return service.GoalProfile{}, fmt.Errorf("profile incomplete: set sex, age, height, and weight with `foodlog profile set`")
	}
	sex, err := model.ParseSex(p.Sex)
	if err != nil {
		return service.GoalProfile{}, err
	}
	activity, err := service.ParseActivityLevel(p.Activity)
	if err != nil {
		return service.GoalProfile{}, err
	}
	goal, err := service.ParseWeightGoal(p.WeightGoal)
	if err != nil {
		return service.GoalProfile{}, err
	}
	gp := service.GoalProfile{
		Sex:        sex,
		Age:        p.Age,
		HeightCm:   p.HeightCm,
		WeightKg:   p.WeightKg,
		Activity:   activity,
		WeightGoal: goal,
		CarbPct:    p.CarbPct,
		ProteinPct: p.ProteinPct,
		FatPct:     p.FatPct,
	}
	if err := gp.Validate(); err != nil {
		return service.GoalProfile{}, err
	}
	return gp, nil
}
