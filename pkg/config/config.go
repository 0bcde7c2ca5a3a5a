// Package config loads the depspace configuration from TOML.
//
// Configuration is optional: every field has a default that works for a
// single-instance development setup (in-memory session and snapshot
// backends, localhost listener). A config file is only needed to point
// the server at Redis or MongoDB, or to tune the listener.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the full application configuration.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Session SessionConfig `toml:"session"`
	Store   StoreConfig   `toml:"store"`
	Log     LogConfig     `toml:"log"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	// Addr is the listen address (host:port).
	Addr string `toml:"addr"`

	// AllowedOrigins lists CORS origins permitted to call the API.
	AllowedOrigins []string `toml:"allowed_origins"`

	// FrameIntervalMS is the frame loop cadence in milliseconds.
	FrameIntervalMS int `toml:"frame_interval_ms"`
}

// SessionConfig selects and configures the session backend.
type SessionConfig struct {
	// Backend is one of "memory", "redis", or "file".
	Backend string `toml:"backend"`

	// TTLHours is the session lifetime in hours.
	TTLHours int `toml:"ttl_hours"`

	// RedisAddr is the Redis address for the redis backend.
	RedisAddr string `toml:"redis_addr"`

	// RedisPassword is the optional Redis password.
	RedisPassword string `toml:"redis_password"`

	// RedisDB selects the Redis logical database.
	RedisDB int `toml:"redis_db"`

	// FileDir is the directory for the file backend. Empty uses the
	// per-user config directory.
	FileDir string `toml:"file_dir"`
}

// StoreConfig selects and configures the snapshot backend.
type StoreConfig struct {
	// Backend is one of "memory" or "mongo".
	Backend string `toml:"backend"`

	// Capacity bounds the memory backend.
	Capacity int `toml:"capacity"`

	// MongoURI is the MongoDB connection string for the mongo backend.
	MongoURI string `toml:"mongo_uri"`

	// MongoDatabase is the database name.
	MongoDatabase string `toml:"mongo_database"`

	// MongoCollection is the collection name.
	MongoCollection string `toml:"mongo_collection"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is one of "debug", "info", "warn", or "error".
	Level string `toml:"level"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            "localhost:8421",
			FrameIntervalMS: 33,
		},
		Session: SessionConfig{
			Backend:  "memory",
			TTLHours: 720,
		},
		Store: StoreConfig{
			Backend:  "memory",
			Capacity: 32,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ValidateAndSetDefaults checks the configuration and fills in defaults
// for unset fields.
func (c *Config) ValidateAndSetDefaults() error {
	def := Default()

	if c.Server.Addr == "" {
		c.Server.Addr = def.Server.Addr
	}
	if c.Server.FrameIntervalMS == 0 {
		c.Server.FrameIntervalMS = def.Server.FrameIntervalMS
	}
	if c.Server.FrameIntervalMS < 0 {
		return fmt.Errorf("config: negative frame interval")
	}

	if c.Session.Backend == "" {
		c.Session.Backend = def.Session.Backend
	}
	switch c.Session.Backend {
	case "memory", "file":
	case "redis":
		if c.Session.RedisAddr == "" {
			return fmt.Errorf("config: session backend %q requires redis_addr", c.Session.Backend)
		}
	default:
		return fmt.Errorf("config: unknown session backend %q", c.Session.Backend)
	}
	if c.Session.TTLHours == 0 {
		c.Session.TTLHours = def.Session.TTLHours
	}
	if c.Session.TTLHours < 0 {
		return fmt.Errorf("config: negative session ttl")
	}

	if c.Store.Backend == "" {
		c.Store.Backend = def.Store.Backend
	}
	switch c.Store.Backend {
	case "memory":
		if c.Store.Capacity == 0 {
			c.Store.Capacity = def.Store.Capacity
		}
		if c.Store.Capacity < 0 {
			return fmt.Errorf("config: negative store capacity")
		}
	case "mongo":
		if c.Store.MongoURI == "" {
			return fmt.Errorf("config: store backend %q requires mongo_uri", c.Store.Backend)
		}
	default:
		return fmt.Errorf("config: unknown store backend %q", c.Store.Backend)
	}

	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log level %q", c.Log.Level)
	}

	return nil
}

// Load reads the configuration from path. An empty path searches
// ./depspace.toml, then ~/.config/depspace/config.toml; when neither
// exists the defaults are returned.
func Load(path string) (Config, error) {
	if path == "" {
		found, ok := findConfig()
		if !ok {
			cfg := Default()
			return cfg, nil
		}
		path = found
	}

	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := cfg.ValidateAndSetDefaults(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func findConfig() (string, bool) {
	if _, err := os.Stat("depspace.toml"); err == nil {
		return "depspace.toml", true
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", false
	}
	p := filepath.Join(home, ".config", "depspace", "config.toml")
	if _, err := os.Stat(p); err == nil {
		return p, true
	}
	return "", false
}
