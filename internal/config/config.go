// Package config loads fishlog settings from an optional YAML file and
// FISHLOG_-prefixed environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the complete fishlog configuration.
type Config struct {
	DB          DBConfig          `mapstructure:"db"`
	Log         LogConfig         `mapstructure:"log"`
	Feed        FeedConfig        `mapstructure:"feed"`
	Leaderboard LeaderboardConfig `mapstructure:"leaderboard"`
	Reconcile   ReconcileConfig   `mapstructure:"reconcile"`
	Watch       WatchConfig       `mapstructure:"watch"`
}

// DBConfig locates the SQLite database.
type DBConfig struct {
	Path string `mapstructure:"path"`
}

// LogConfig selects the slog level (debug, info, warn, error) and
// handler format (text or json).
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// FeedConfig bounds live update polls: the lookback used when no since is
// given and the maximum number of updates per poll.
type FeedConfig struct {
	DefaultWindow time.Duration `mapstructure:"default_window"`
	Limit         int           `mapstructure:"limit"`
}

// LeaderboardConfig sets how many entries a leaderboard keeps.
type LeaderboardConfig struct {
	Size int `mapstructure:"size"`
}

// ReconcileConfig holds the distance (meters) and time thresholds above
// which photo metadata disagrees with a claim.
type ReconcileConfig struct {
	DistanceThresholdM float64       `mapstructure:"distance_threshold_m"`
	TimeThreshold      time.Duration `mapstructure:"time_threshold"`
}

// WatchConfig is the cron schedule, with seconds, used by fishlog watch.
type WatchConfig struct {
	Schedule string `mapstructure:"schedule"`
}

// EnvPrefix is prepended to every environment variable, e.g. FISHLOG_DB_PATH.
const EnvPrefix = "FISHLOG"

// Load reads configuration. An empty path skips the config file and uses
// defaults plus environment only.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetDefault("db.path", "fishlog.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("feed.default_window", "5m")
	v.SetDefault("feed.limit", 20)
	v.SetDefault("leaderboard.size", 10)
	v.SetDefault("reconcile.distance_threshold_m", 100.0)
	v.SetDefault("reconcile.time_threshold", "5m")
	v.SetDefault("watch.schedule", "@every 15s")

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the engine cannot run with.
func (c Config) Validate() error {
	if c.DB.Path == "" {
		return fmt.Errorf("db.path must not be empty")
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	if c.Feed.DefaultWindow <= 0 {
		return fmt.Errorf("feed.default_window must be positive, got %s", c.Feed.DefaultWindow)
	}
	if c.Feed.Limit <= 0 {
		return fmt.Errorf("feed.limit must be positive, got %d", c.Feed.Limit)
	}
	if c.Leaderboard.Size <= 0 {
		return fmt.Errorf("leaderboard.size must be positive, got %d", c.Leaderboard.Size)
	}
	return nil
}
