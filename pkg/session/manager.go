package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/toolshed"
	"github.com/aretw0/toolshed/internal/logging"
	"github.com/aretw0/toolshed/pkg/domain"
	"github.com/aretw0/toolshed/pkg/ports"
	"github.com/golang/groupcache/lru"
	"github.com/jonboulle/clockwork"
)

// DefaultLockTTL bounds how long a crashed replica can hold a session's distributed lock.
const DefaultLockTTL = 30 * time.Second

const (
	// DefaultMaxLive is the number of controllers kept in memory.
	DefaultMaxLive = 1000
	// DefaultIdleTimeout closes controllers nobody touched for this long.
	DefaultIdleTimeout = 30 * time.Minute
)

// liveEntry is a cached controller and its idle timer.
type liveEntry struct {
	ctl      *toolshed.Controller
	lastUsed time.Time
	idle     clockwork.Timer
}

type retiredEntry struct {
	sessionID string
	ctl       *toolshed.Controller
}

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager keeps a bounded cache of live Controllers and persists a snapshot
// after each operation. The store is the source of truth: every operation
// restores the stored snapshot, and a session missing from the store starts
// over. Idle or least recently used controllers are closed, which drops their
// toasts and pending checkout. It uses Reference Counting to garbage collect
// unused locks.
type Manager struct {
	store ports.SnapshotStore

	mu      sync.Mutex            // Global lock for the maps
	locks   map[string]*lockEntry // Map of active locks
	live    *lru.Cache            // session id -> *liveEntry
	retired []retiredEntry        // evicted while in use, closed on release

	locker      ports.DistributedLocker // Optional distributed locker
	lockTTL     time.Duration
	maxLive     int
	idleTimeout time.Duration
	clock       clockwork.Clock
	opts        []toolshed.Option
	logger      *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking. With a locker, every operation
// reloads the stored snapshot first so replicas see each other's writes.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the expiry of distributed locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithMaxLive bounds the number of controllers held in memory.
// Non-positive values keep the default.
func WithMaxLive(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.maxLive = n
		}
	}
}

// WithIdleTimeout closes a controller after d without operations.
// Zero disables the timeout.
func WithIdleTimeout(d time.Duration) Option {
	return func(m *Manager) {
		m.idleTimeout = d
	}
}

// WithClock sets the clock of the idle timers.
func WithClock(clock clockwork.Clock) Option {
	return func(m *Manager) {
		m.clock = clock
	}
}

// WithControllerOptions configures the controllers the manager creates.
func WithControllerOptions(opts ...toolshed.Option) Option {
	return func(m *Manager) {
		m.opts = append(m.opts, opts...)
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a new Session Manager with the given persistence store.
func NewManager(store ports.SnapshotStore, opts ...Option) *Manager {
	m := &Manager{
		store:       store,
		locks:       make(map[string]*lockEntry),
		lockTTL:     DefaultLockTTL,
		maxLive:     DefaultMaxLive,
		idleTimeout: DefaultIdleTimeout,
		clock:       clockwork.NewRealClock(),
		logger:      logging.NewNop(), // Default to no-op
	}
	for _, opt := range opts {
		opt(m)
	}
	m.live = lru.New(m.maxLive)
	m.live.OnEvicted = m.evicted
	return m
}

// evicted runs with m.mu held, from the cache.
func (m *Manager) evicted(key lru.Key, value interface{}) {
	e := value.(*liveEntry)
	if e.idle != nil {
		e.idle.Stop()
	}
	m.retired = append(m.retired, retiredEntry{sessionID: key.(string), ctl: e.ctl})
}

// reap closes retired controllers whose session is not in use.
func (m *Manager) reap() {
	m.mu.Lock()
	var closable []retiredEntry
	kept := m.retired[:0]
	for _, r := range m.retired {
		if _, busy := m.locks[r.sessionID]; busy {
			kept = append(kept, r)
			continue
		}
		closable = append(closable, r)
	}
	m.retired = kept
	m.mu.Unlock()

	for _, r := range closable {
		r.ctl.Close()
		m.logger.Debug("session closed", "session_id", r.sessionID)
	}
}

// expireIdle is the idle timer callback of a session.
func (m *Manager) expireIdle(sessionID string, e *liveEntry) {
	m.mu.Lock()
	cur, ok := m.live.Get(sessionID)
	if !ok || cur.(*liveEntry) != e {
		m.mu.Unlock()
		return
	}
	if _, busy := m.locks[sessionID]; busy {
		e.idle.Reset(m.idleTimeout)
		m.mu.Unlock()
		return
	}
	if idle := m.clock.Since(e.lastUsed); idle < m.idleTimeout {
		e.idle.Reset(m.idleTimeout - idle)
		m.mu.Unlock()
		return
	}
	m.live.Remove(sessionID)
	m.mu.Unlock()

	m.logger.Debug("session idle", "session_id", sessionID)
	m.reap()
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// touch refreshes the idle deadline of a cached session. Callers hold m.mu.
func (m *Manager) touch(sessionID string, e *liveEntry) {
	e.lastUsed = m.clock.Now()
	if m.idleTimeout <= 0 {
		return
	}
	if e.idle == nil {
		e.idle = m.clock.AfterFunc(m.idleTimeout, func() { m.expireIdle(sessionID, e) })
		return
	}
	e.idle.Reset(m.idleTimeout)
}

// WithLock executes a function while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
		m.reap()
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

// controller returns the live controller of a session, creating it when
// needed, and restores the stored snapshot into it. A cached controller whose
// snapshot is gone from the store is replaced by a fresh one. Callers hold the
// session lock.
func (m *Manager) controller(ctx context.Context, sessionID string) (*toolshed.Controller, error) {
	snap, err := m.store.Load(ctx, sessionID)
	if err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	m.mu.Lock()
	var e *liveEntry
	if v, ok := m.live.Get(sessionID); ok {
		e = v.(*liveEntry)
		if snap == nil {
			m.live.Remove(sessionID)
			e = nil
			m.logger.Debug("session reset", "session_id", sessionID)
		} else {
			m.touch(sessionID, e)
		}
	}
	m.mu.Unlock()

	if e == nil {
		opts := append(append([]toolshed.Option{}, m.opts...), toolshed.WithSessionID(sessionID))
		ctl, err := toolshed.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create controller: %w", err)
		}
		e = &liveEntry{ctl: ctl}
		m.mu.Lock()
		m.live.Add(sessionID, e)
		m.touch(sessionID, e)
		m.mu.Unlock()
		m.logger.Debug("session opened", "session_id", sessionID, "restored", snap != nil)
	}

	if snap != nil {
		if err := e.ctl.Restore(snap); err != nil {
			return nil, fmt.Errorf("failed to restore session: %w", err)
		}
	}
	return e.ctl, nil
}

// Do runs fn against the session's controller, creating the session on first
// use, and saves the resulting snapshot. fn's error is returned after the save.
func (m *Manager) Do(ctx context.Context, sessionID string, fn func(context.Context, *toolshed.Controller) error) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		ctl, err := m.controller(ctx, sessionID)
		if err != nil {
			return err
		}

		fnErr := fn(ctx, ctl)

		if err := m.store.Save(ctx, sessionID, ctl.Snapshot()); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
		return fnErr
	})
}

// View returns what a host renders for the session.
func (m *Manager) View(ctx context.Context, sessionID string) (domain.View, error) {
	var view domain.View
	err := m.Do(ctx, sessionID, func(_ context.Context, ctl *toolshed.Controller) error {
		view = ctl.View()
		return nil
	})
	return view, err
}

// Delete closes the live controller and removes the stored snapshot.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		m.mu.Lock()
		m.live.Remove(sessionID)
		m.mu.Unlock()

		return m.store.Delete(ctx, sessionID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying snapshot store.
func (m *Manager) Store() ports.SnapshotStore {
	return m.store
}

// Live reports how many controllers are held in memory.
func (m *Manager) Live() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.live.Len()
}

// Close closes every live controller. Stored snapshots are kept.
func (m *Manager) Close() error {
	m.mu.Lock()
	m.live.Clear()
	retired := m.retired
	m.retired = nil
	m.mu.Unlock()

	for _, r := range retired {
		r.ctl.Close()
	}
	return nil
}
