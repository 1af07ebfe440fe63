// Package config loads settings from an optional file, TASKMASTER_* environment
// variables and defaults, and builds the storage clients they describe.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"taskmaster/app/store"
	"taskmaster/app/suggest"

	"github.com/spf13/viper"
)

const (
	// AppName names the config file and directory.
	AppName = "taskmaster"
	// EnvPrefix prefixes every environment override.
	EnvPrefix = "TASKMASTER"
)

// Config is the full application configuration.
type Config struct {
	Server  Server  `mapstructure:"server"`
	Store   Store   `mapstructure:"store"`
	Latency Latency `mapstructure:"latency"`
	AI      AI      `mapstructure:"ai"`
	Log     Log     `mapstructure:"log"`
}

// Server configures the HTTP server and the CLI's remote mode.
type Server struct {
	Addr string `mapstructure:"addr"`
	// URL, when set, makes CLI commands talk to a running server.
	URL string `mapstructure:"url"`
}

// Store selects and configures the key-value backend.
type Store struct {
	Driver string `mapstructure:"driver"`
	Key    string `mapstructure:"key"`
	Seed   bool   `mapstructure:"seed"`
	SQLite SQLite `mapstructure:"sqlite"`
	Redis  Redis  `mapstructure:"redis"`
	Neo4j  Neo4j  `mapstructure:"neo4j"`
}

type SQLite struct {
	Path string `mapstructure:"path"`
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type Neo4j struct {
	URI      string `mapstructure:"uri"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// Latency is the simulated network delay of the access API.
type Latency struct {
	Read    time.Duration `mapstructure:"read"`
	Write   time.Duration `mapstructure:"write"`
	Disable bool          `mapstructure:"disable"`
}

// AI configures the subtask-suggestion collaborator.
type AI struct {
	APIKey  string        `mapstructure:"api_key"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Log configures the logger.
type Log struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
	File   string `mapstructure:"file"`
}

// Store drivers.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
	DriverNeo4j  = "neo4j"
)

// SetDefaults registers the default of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", "0.0.0.0:8080")
	v.SetDefault("server.url", "")

	v.SetDefault("store.driver", DriverSQLite)
	v.SetDefault("store.key", store.DefaultKey)
	v.SetDefault("store.seed", true)
	v.SetDefault("store.sqlite.path", filepath.Join(DefaultDir(), "tasks.db"))
	v.SetDefault("store.redis.addr", "localhost:6379")
	v.SetDefault("store.redis.password", "")
	v.SetDefault("store.redis.db", 0)
	v.SetDefault("store.neo4j.uri", "neo4j://localhost:7687")
	v.SetDefault("store.neo4j.username", "neo4j")
	v.SetDefault("store.neo4j.password", "password")

	v.SetDefault("latency.read", 500*time.Millisecond)
	v.SetDefault("latency.write", 300*time.Millisecond)
	v.SetDefault("latency.disable", false)

	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.model", suggest.DefaultModel)
	v.SetDefault("ai.timeout", suggest.DefaultTimeout)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.output", "stderr")
	v.SetDefault("log.file", filepath.Join(DefaultDir(), "taskmaster.log"))
}

// New returns a viper instance reading file (or the default search path when
// file is empty) and the environment.
func New(file string) *viper.Viper {
	v := viper.New()
	SetDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(AppName)
		v.AddConfigPath(".")
		v.AddConfigPath(DefaultDir())
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file, if any, and decodes v into a Config.
// A missing file is only an error when it was named explicitly.
func Load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return Decode(v)
}

// Decode converts the current settings of v into a Config.
func Decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	switch cfg.Store.Driver {
	case DriverMemory, DriverSQLite, DriverRedis, DriverNeo4j:
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
	return &cfg, nil
}

// DefaultDir returns $XDG_CONFIG_HOME/taskmaster or $HOME/.config/taskmaster.
func DefaultDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}
