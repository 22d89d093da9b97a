// Package config loads the toolshed runtime configuration from YAML, TOML or
// JSON files with TOOLSHED_* environment overrides.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/aretw0/toolshed/internal/logging"
	"github.com/aretw0/toolshed/pkg/compare"
	"github.com/aretw0/toolshed/pkg/domain"
	"github.com/aretw0/toolshed/pkg/persistence/middleware"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Duration is a time.Duration written as "1.5s" in every file format.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Catalog sources.
const (
	SourceBuiltin = "builtin"
	SourceFile    = "file"
	SourceLoam    = "loam"
)

// Store drivers.
const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
	DriverSQLite = "sqlite"
	DriverFile   = "file"
)

type Config struct {
	LogLevel  string `yaml:"log_level" toml:"log_level" json:"log_level"`
	LogFormat string `yaml:"log_format" toml:"log_format" json:"log_format"`

	HTTP    HTTP    `yaml:"http" toml:"http" json:"http"`
	Catalog Catalog `yaml:"catalog" toml:"catalog" json:"catalog"`
	Store   Store   `yaml:"store" toml:"store" json:"store"`
	Session Session `yaml:"session" toml:"session" json:"session"`
	Payment Payment `yaml:"payment" toml:"payment" json:"payment"`
}

type HTTP struct {
	Addr            string   `yaml:"addr" toml:"addr" json:"addr"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout" toml:"shutdown_timeout" json:"shutdown_timeout"`
	Metrics         bool     `yaml:"metrics" toml:"metrics" json:"metrics"`
}

// Catalog selects where tool records come from.
// Path is a YAML/TOML/JSON file for "file" and a directory for "loam".
type Catalog struct {
	Source string `yaml:"source" toml:"source" json:"source"`
	Path   string `yaml:"path" toml:"path" json:"path"`
	Watch  bool   `yaml:"watch" toml:"watch" json:"watch"`
}

type Store struct {
	Driver     string     `yaml:"driver" toml:"driver" json:"driver"`
	Redis      Redis      `yaml:"redis" toml:"redis" json:"redis"`
	SQLite     SQLite     `yaml:"sqlite" toml:"sqlite" json:"sqlite"`
	File       File       `yaml:"file" toml:"file" json:"file"`
	Encryption Encryption `yaml:"encryption" toml:"encryption" json:"encryption"`
}

// Encryption seals snapshots at rest when Key is set.
// Keys are base64 encoded AES-256 keys; FallbackKeys only decrypt.
type Encryption struct {
	Key          string   `yaml:"key" toml:"key" json:"key"`
	FallbackKeys []string `yaml:"fallback_keys" toml:"fallback_keys" json:"fallback_keys"`
}

// Config decodes the keys. It returns nil when encryption is off.
func (e Encryption) Config() (*middleware.EncryptionConfig, error) {
	if e.Key == "" {
		return nil, nil
	}
	active, err := middleware.ParseKey(e.Key)
	if err != nil {
		return nil, fmt.Errorf("%w: encryption key: %v", ErrInvalid, err)
	}
	cfg := &middleware.EncryptionConfig{ActiveKey: active}
	for i, raw := range e.FallbackKeys {
		key, err := middleware.ParseKey(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: fallback key %d: %v", ErrInvalid, i, err)
		}
		cfg.FallbackKeys = append(cfg.FallbackKeys, key)
	}
	return cfg, nil
}

type Redis struct {
	Addr     string   `yaml:"addr" toml:"addr" json:"addr"`
	Password string   `yaml:"password" toml:"password" json:"password"`
	DB       int      `yaml:"db" toml:"db" json:"db"`
	Prefix   string   `yaml:"prefix" toml:"prefix" json:"prefix"`
	TTL      Duration `yaml:"ttl" toml:"ttl" json:"ttl"`
	// Lock enables the distributed session lock for multi-replica setups.
	Lock bool `yaml:"lock" toml:"lock" json:"lock"`
}

type SQLite struct {
	Path string `yaml:"path" toml:"path" json:"path"`
}

// File keeps one JSON document per session in Dir.
type File struct {
	Dir string `yaml:"dir" toml:"dir" json:"dir"`
}

type Session struct {
	NotificationDuration Duration     `yaml:"notification_duration" toml:"notification_duration" json:"notification_duration"`
	CompareCapacity      int          `yaml:"compare_capacity" toml:"compare_capacity" json:"compare_capacity"`
	Theme                domain.Theme `yaml:"theme" toml:"theme" json:"theme"`

	// MaxLive bounds the controllers a server keeps in memory.
	MaxLive int `yaml:"max_live" toml:"max_live" json:"max_live"`
	// IdleTimeout closes controllers without operations; zero disables it.
	IdleTimeout Duration `yaml:"idle_timeout" toml:"idle_timeout" json:"idle_timeout"`
}

type Payment struct {
	Delay Duration `yaml:"delay" toml:"delay" json:"delay"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		LogLevel:  "info",
		LogFormat: "text",
		HTTP: HTTP{
			Addr:            ":8080",
			ShutdownTimeout: Duration{5 * time.Second},
			Metrics:         true,
		},
		Catalog: Catalog{Source: SourceBuiltin},
		Store: Store{
			Driver: DriverMemory,
			Redis:  Redis{Addr: "localhost:6379", Prefix: "toolshed:session:"},
			SQLite: SQLite{Path: "toolshed.db"},
			File:   File{Dir: filepath.Join(".toolshed", "sessions")},
		},
		Session: Session{
			NotificationDuration: Duration{5 * time.Second},
			CompareCapacity:      3,
			Theme:                domain.ThemeLight,
			MaxLive:              1000,
			IdleTimeout:          Duration{30 * time.Minute},
		},
		Payment: Payment{Delay: Duration{1500 * time.Millisecond}},
	}
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config: %w", err)
		}
		if err := decode(data, filepath.Ext(path), &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func decode(data []byte, ext string, cfg *Config) error {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		return nil
	case ".toml":
		md, err := toml.Decode(string(data), cfg)
		if err != nil {
			return err
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return fmt.Errorf("unknown keys: %v", undecoded)
		}
		return nil
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		return dec.Decode(cfg)
	}
	return fmt.Errorf("%w: unsupported config extension %q", ErrInvalid, ext)
}

// Validate checks enumerations and ranges.
func (c Config) Validate() error {
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format %q", ErrInvalid, c.LogFormat)
	}
	switch c.Catalog.Source {
	case SourceBuiltin:
	case SourceFile, SourceLoam:
		if c.Catalog.Path == "" {
			return fmt.Errorf("%w: catalog source %q needs a path", ErrInvalid, c.Catalog.Source)
		}
	default:
		return fmt.Errorf("%w: catalog source %q", ErrInvalid, c.Catalog.Source)
	}
	switch c.Store.Driver {
	case DriverMemory:
	case DriverRedis:
		if c.Store.Redis.Addr == "" {
			return fmt.Errorf("%w: redis store needs an address", ErrInvalid)
		}
	case DriverSQLite:
		if c.Store.SQLite.Path == "" {
			return fmt.Errorf("%w: sqlite store needs a path", ErrInvalid)
		}
	case DriverFile:
		if c.Store.File.Dir == "" {
			return fmt.Errorf("%w: file store needs a directory", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: store driver %q", ErrInvalid, c.Store.Driver)
	}
	if _, err := c.Store.Encryption.Config(); err != nil {
		return err
	}
	if c.Session.CompareCapacity < compare.MinCompare {
		return fmt.Errorf("%w: compare_capacity must be at least %d", ErrInvalid, compare.MinCompare)
	}
	if c.Session.NotificationDuration.Duration <= 0 {
		return fmt.Errorf("%w: notification_duration must be positive", ErrInvalid)
	}
	if err := c.Session.Theme.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if c.Session.MaxLive < 1 {
		return fmt.Errorf("%w: max_live must be at least 1", ErrInvalid)
	}
	if c.Session.IdleTimeout.Duration < 0 {
		return fmt.Errorf("%w: idle_timeout must not be negative", ErrInvalid)
	}
	if c.Payment.Delay.Duration < 0 {
		return fmt.Errorf("%w: payment delay must not be negative", ErrInvalid)
	}
	return nil
}
