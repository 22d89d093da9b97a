package config

import (
	"fmt"
	"strconv"

	"github.com/aretw0/toolshed/pkg/domain"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "TOOLSHED_"

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

type envVar struct {
	name string
	set  func(c *Config, raw string) error
}

func str(field func(*Config) *string) func(*Config, string) error {
	return func(c *Config, raw string) error {
		*field(c) = raw
		return nil
	}
}

func boolean(field func(*Config) *bool) func(*Config, string) error {
	return func(c *Config, raw string) error {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		*field(c) = v
		return nil
	}
}

func integer(field func(*Config) *int) func(*Config, string) error {
	return func(c *Config, raw string) error {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return err
		}
		*field(c) = v
		return nil
	}
}

func duration(field func(*Config) *Duration) func(*Config, string) error {
	return func(c *Config, raw string) error {
		return field(c).UnmarshalText([]byte(raw))
	}
}

var envVars = []envVar{
	{"LOG_LEVEL", str(func(c *Config) *string { return &c.LogLevel })},
	{"LOG_FORMAT", str(func(c *Config) *string { return &c.LogFormat })},
	{"HTTP_ADDR", str(func(c *Config) *string { return &c.HTTP.Addr })},
	{"HTTP_METRICS", boolean(func(c *Config) *bool { return &c.HTTP.Metrics })},
	{"CATALOG_SOURCE", str(func(c *Config) *string { return &c.Catalog.Source })},
	{"CATALOG_PATH", str(func(c *Config) *string { return &c.Catalog.Path })},
	{"CATALOG_WATCH", boolean(func(c *Config) *bool { return &c.Catalog.Watch })},
	{"STORE_DRIVER", str(func(c *Config) *string { return &c.Store.Driver })},
	{"REDIS_ADDR", str(func(c *Config) *string { return &c.Store.Redis.Addr })},
	{"REDIS_PASSWORD", str(func(c *Config) *string { return &c.Store.Redis.Password })},
	{"REDIS_DB", integer(func(c *Config) *int { return &c.Store.Redis.DB })},
	{"REDIS_TTL", duration(func(c *Config) *Duration { return &c.Store.Redis.TTL })},
	{"REDIS_LOCK", boolean(func(c *Config) *bool { return &c.Store.Redis.Lock })},
	{"STORE_ENCRYPTION_KEY", str(func(c *Config) *string { return &c.Store.Encryption.Key })},
	{"FILE_DIR", str(func(c *Config) *string { return &c.Store.File.Dir })},
	{"SQLITE_PATH", str(func(c *Config) *string { return &c.Store.SQLite.Path })},
	{"NOTIFICATION_DURATION", duration(func(c *Config) *Duration { return &c.Session.NotificationDuration })},
	{"COMPARE_CAPACITY", integer(func(c *Config) *int { return &c.Session.CompareCapacity })},
	{"THEME", func(c *Config, raw string) error {
		c.Session.Theme = domain.Theme(raw)
		return nil
	}},
	{"SESSION_MAX_LIVE", integer(func(c *Config) *int { return &c.Session.MaxLive })},
	{"SESSION_IDLE_TIMEOUT", duration(func(c *Config) *Duration { return &c.Session.IdleTimeout })},
	{"PAYMENT_DELAY", duration(func(c *Config) *Duration { return &c.Payment.Delay })},
}

// ApplyEnv overrides fields from TOOLSHED_* variables found by lookup.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	for _, v := range envVars {
		raw, ok := lookup(EnvPrefix + v.name)
		if !ok {
			continue
		}
		if err := v.set(c, raw); err != nil {
			return fmt.Errorf("%w: %s%s=%q: %v", ErrInvalid, EnvPrefix, v.name, raw, err)
		}
	}
	return nil
}
