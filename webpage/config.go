//go:build !solution

package webpage

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/pflag"

	"gitlab.com/slon/pageaccess/pageaccess"
)

// Config holds the run settings. Environment variables give the defaults,
// command line flags override them.
type Config struct {
	RosterPath string        `env:"PAGEACCESS_ROSTER"`
	Policy     string        `env:"PAGEACCESS_POLICY"`
	Unit       time.Duration `env:"PAGEACCESS_UNIT"`
	Debug      bool          `env:"PAGEACCESS_DEBUG"`
	LogFormat  string        `env:"PAGEACCESS_LOG_FORMAT" envDefault:"console"`
}

// LoadConfig reads Config from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// BindFlags registers flags on fs that write into cfg. Defaults are the
// current values of cfg.
func (cfg *Config) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&cfg.RosterPath, "roster", cfg.RosterPath, "path to a YAML roster; the built-in schedule is used when empty")
	fs.StringVar(&cfg.Policy, "policy", cfg.Policy, "admission policy: writer-preference or reader-preference")
	fs.DurationVar(&cfg.Unit, "unit", cfg.Unit, "length of one delay step, overrides the roster")
	fs.BoolVar(&cfg.Debug, "debug", cfg.Debug, "enable debug logging")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log encoding: console or json")
}

// Roster loads the roster named by cfg and applies policy and unit overrides.
func (cfg Config) Roster() (*Roster, error) {
	roster := DefaultRoster()
	if cfg.RosterPath != "" {
		var err error
		if roster, err = LoadRoster(cfg.RosterPath); err != nil {
			return nil, err
		}
	}

	if cfg.Policy != "" {
		p, err := pageaccess.ParsePolicy(cfg.Policy)
		if err != nil {
			return nil, err
		}
		roster.Policy = p
	}
	if cfg.Unit != 0 {
		roster.Unit = cfg.Unit
	}
	if err := roster.Validate(); err != nil {
		return nil, err
	}
	return roster, nil
}
