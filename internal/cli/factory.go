package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/toolshed"
	"github.com/aretw0/toolshed/internal/config"
	"github.com/aretw0/toolshed/internal/logging"
	"github.com/aretw0/toolshed/pkg/adapters/file"
	"github.com/aretw0/toolshed/pkg/adapters/loam"
	"github.com/aretw0/toolshed/pkg/adapters/memory"
	"github.com/aretw0/toolshed/pkg/adapters/redis"
	"github.com/aretw0/toolshed/pkg/adapters/sqlite"
	"github.com/aretw0/toolshed/pkg/catalog"
	"github.com/aretw0/toolshed/pkg/payment"
	"github.com/aretw0/toolshed/pkg/persistence/middleware"
	"github.com/aretw0/toolshed/pkg/ports"
)

// NewLogger builds the process logger from the configuration.
// Logs always go to stderr so stdout stays free for the simulator and MCP.
func NewLogger(cfg config.Config) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	if cfg.LogFormat == "json" {
		return logging.NewJSON(os.Stderr, level), nil
	}
	return logging.New(level), nil
}

// BuildCatalog opens the configured catalog source.
func BuildCatalog(cfg config.Catalog, logger *slog.Logger) (ports.Catalog, error) {
	switch cfg.Source {
	case config.SourceFile:
		return catalog.NewFile(cfg.Path, catalog.WithLogger(logger))
	case config.SourceLoam:
		c, err := loam.Open(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open loam catalog: %w", err)
		}
		return c, nil
	case config.SourceBuiltin, "":
		return catalog.Builtin(), nil
	}
	return nil, fmt.Errorf("%w: catalog source %q", config.ErrInvalid, cfg.Source)
}

// Persistence is a configured snapshot store plus its optional locker.
type Persistence struct {
	Store  ports.SnapshotStore
	Locker ports.DistributedLocker
	closer io.Closer
}

// Close releases the store connection, if any.
func (p Persistence) Close() error {
	if p.closer == nil {
		return nil
	}
	return p.closer.Close()
}

// BuildStore opens the configured snapshot store, sealing snapshots when an
// encryption key is configured.
func BuildStore(cfg config.Store) (Persistence, error) {
	enc, err := cfg.Encryption.Config()
	if err != nil {
		return Persistence{}, err
	}
	p, err := openStore(cfg)
	if err != nil || enc == nil {
		return p, err
	}
	mw, err := middleware.NewEncryptionMiddleware(*enc)
	if err != nil {
		p.Close()
		return Persistence{}, err
	}
	p.Store = middleware.Chain(p.Store, mw)
	return p, nil
}

func openStore(cfg config.Store) (Persistence, error) {
	switch cfg.Driver {
	case config.DriverRedis:
		opts := []redis.Option{redis.WithTTL(cfg.Redis.TTL.Duration)}
		if cfg.Redis.Prefix != "" {
			opts = append(opts, redis.WithPrefix(cfg.Redis.Prefix))
		}
		store := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, opts...)
		p := Persistence{Store: store, closer: store}
		if cfg.Redis.Lock {
			p.Locker = redis.NewLocker(store.Client(), store.Prefix())
		}
		return p, nil
	case config.DriverSQLite:
		store, err := sqlite.Open(cfg.SQLite.Path)
		if err != nil {
			return Persistence{}, err
		}
		return Persistence{Store: store, closer: store}, nil
	case config.DriverFile:
		return Persistence{Store: file.New(cfg.File.Dir)}, nil
	case config.DriverMemory, "":
		return Persistence{Store: memory.NewStore()}, nil
	}
	return Persistence{}, fmt.Errorf("%w: store driver %q", config.ErrInvalid, cfg.Driver)
}

// ControllerOptions translates the session settings into controller options.
func ControllerOptions(cfg config.Config, c ports.Catalog, logger *slog.Logger) []toolshed.Option {
	return []toolshed.Option{
		toolshed.WithCatalog(c),
		toolshed.WithLogger(logger),
		toolshed.WithNotificationDuration(cfg.Session.NotificationDuration.Duration),
		toolshed.WithCompareCapacity(cfg.Session.CompareCapacity),
		toolshed.WithTheme(cfg.Session.Theme),
		toolshed.WithPaymentGateway(payment.NewSimulator(
			payment.WithDelay(cfg.Payment.Delay.Duration),
			payment.WithLogger(logger),
		)),
	}
}
