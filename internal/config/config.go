// Package config implements the layered, per-deployment configuration
// surface for the cmd/bwsimd embedder — spec.md's constructor-argument
// kernel takes none of this; only the daemon process does.
//
// Grounded on nstehr-vimy's and niceyeti-tabular's shared pattern: a
// YAML file loaded through spf13/viper with environment-variable
// overrides, unmarshaled into one typed struct, validated once at
// startup before anything else runs.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/stonehollow/bwsim/internal/errs"
)

// Config is every value that legitimately varies per deployment: listen
// address, log level, and the map/replay search paths. Arena capacities
// (fixed in internal/sim's NewWorld) and tick length (frameInterval in
// cmd/bwsimd) are genuinely static and are not configured here.
type Config struct {
	ListenAddr     string `mapstructure:"listen_addr"`
	LogLevel       string `mapstructure:"log_level"`
	MapSearchPath  string `mapstructure:"map_search_path"`
	ReplayOutDir   string `mapstructure:"replay_out_dir"`
	MetricsNamespace string `mapstructure:"metrics_namespace"`
	PlayerCount    int    `mapstructure:"player_count"`
}

// defaults populates every field Load falls back to when neither the
// file nor an environment variable sets it.
func defaults() Config {
	return Config{
		ListenAddr:       ":8080",
		LogLevel:         "info",
		MapSearchPath:    "./maps",
		ReplayOutDir:     "./replays",
		MetricsNamespace: "bwsim",
		PlayerCount:      2,
	}
}

// Load reads configPath (if non-empty) as YAML, overlays BWSIM_*
// environment variables, and returns the merged, validated Config.
func Load(configPath string) (Config, error) {
	v := viper.New()
	d := defaults()
	v.SetDefault("listen_addr", d.ListenAddr)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("map_search_path", d.MapSearchPath)
	v.SetDefault("replay_out_dir", d.ReplayOutDir)
	v.SetDefault("metrics_namespace", d.MetricsNamespace)
	v.SetDefault("player_count", d.PlayerCount)

	v.SetEnvPrefix("BWSIM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("%w: reading config file %s: %v", errs.ErrInvalidInput, configPath, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: unmarshaling config: %v", errs.ErrInvalidInput, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports whether cfg is self-consistent enough to start the
// daemon with.
func (c Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("%w: listen_addr must not be empty", errs.ErrInvalidInput)
	}
	if c.PlayerCount < 1 || c.PlayerCount > 8 {
		return fmt.Errorf("%w: player_count must be between 1 and 8, got %d", errs.ErrInvalidInput, c.PlayerCount)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unrecognized log_level %q", errs.ErrInvalidInput, c.LogLevel)
	}
	return nil
}
