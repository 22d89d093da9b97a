// Package notify implements the transient toast queue.
//
// Entries are kept in enqueue order and expire on their own after a duration
// measured on an injected clock. Dismissal removes an entry early and cancels
// its expiry.
package notify

import (
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/aretw0/toolshed/internal/logging"
	"github.com/aretw0/toolshed/pkg/domain"
	"github.com/aretw0/toolshed/pkg/idgen"
	"github.com/aretw0/toolshed/pkg/ports"
	"github.com/aretw0/toolshed/pkg/schedule"
	"github.com/jonboulle/clockwork"
)

type entry struct {
	n    domain.Notification
	task *schedule.Task
}

// Queue is a FIFO of notifications with automatic expiry.
// It is safe for concurrent use; expiry fires on clock goroutines.
type Queue struct {
	mu       sync.Mutex
	entries  []*entry
	closed   bool
	clock    clockwork.Clock
	ids      ports.IDGenerator
	ttl      time.Duration
	onExpire []func(domain.Notification)
	logger   *slog.Logger
}

// Option configures a Queue.
type Option func(*Queue)

// WithClock sets the clock used for timestamps and expiry.
func WithClock(c clockwork.Clock) Option {
	return func(q *Queue) {
		q.clock = c
	}
}

// WithIDGenerator sets the notification id source.
func WithIDGenerator(g ports.IDGenerator) Option {
	return func(q *Queue) {
		q.ids = g
	}
}

// WithDefaultDuration sets the lifetime of requests that carry no duration.
func WithDefaultDuration(d time.Duration) Option {
	return func(q *Queue) {
		if d > 0 {
			q.ttl = d
		}
	}
}

// WithExpireObserver registers a callback invoked with each expired entry.
// Callbacks run on the clock goroutine, outside the queue lock.
func WithExpireObserver(fn func(domain.Notification)) Option {
	return func(q *Queue) {
		q.onExpire = append(q.onExpire, fn)
	}
}

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(q *Queue) {
		q.logger = logger
	}
}

// New creates an empty queue.
func New(opts ...Option) *Queue {
	q := &Queue{
		clock:  clockwork.NewRealClock(),
		ids:    idgen.UUIDv7{},
		ttl:    domain.DefaultNotificationDuration,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Enqueue appends a notification and schedules its expiry.
// It returns the assigned id, or "" once the queue is closed.
func (q *Queue) Enqueue(req domain.NotificationRequest) string {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ""
	}

	d := req.Duration
	if d <= 0 {
		d = q.ttl
	}
	sev := req.Severity
	if sev == "" {
		sev = domain.SeverityInfo
	}

	now := q.clock.Now()
	e := &entry{n: domain.Notification{
		ID:          q.uniqueID(),
		Severity:    sev,
		Title:       req.Title,
		Description: req.Description,
		Duration:    d,
		CreatedAt:   now,
		ExpiresAt:   now.Add(d),
	}}
	e.task = schedule.After(q.clock, d, func() { q.expire(e) })
	q.entries = append(q.entries, e)

	q.logger.Debug("notification queued", "id", e.n.ID, "severity", sev, "ttl", d)
	return e.n.ID
}

// uniqueID must be called with mu held.
func (q *Queue) uniqueID() string {
	base := q.ids.Generate()
	id := base
	for n := 2; q.indexOf(id) >= 0; n++ {
		id = base + "-" + strconv.Itoa(n)
	}
	return id
}

func (q *Queue) indexOf(id string) int {
	for i, e := range q.entries {
		if e.n.ID == id {
			return i
		}
	}
	return -1
}

func (q *Queue) expire(e *entry) {
	q.mu.Lock()
	idx := -1
	for i, cur := range q.entries {
		if cur == e {
			idx = i
			break
		}
	}
	if idx < 0 {
		q.mu.Unlock()
		return
	}
	q.entries = append(q.entries[:idx], q.entries[idx+1:]...)
	observers := q.onExpire
	q.mu.Unlock()

	q.logger.Debug("notification expired", "id", e.n.ID)
	for _, fn := range observers {
		fn(e.n)
	}
}

// Dismiss removes the notification with the given id and cancels its expiry.
// Unknown ids are ignored. It reports whether an entry was removed.
func (q *Queue) Dismiss(id string) (domain.Notification, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	idx := q.indexOf(id)
	if idx < 0 {
		return domain.Notification{}, false
	}
	e := q.entries[idx]
	e.task.Cancel()
	q.entries = append(q.entries[:idx], q.entries[idx+1:]...)
	return e.n, true
}

// List returns the queued notifications in enqueue order.
func (q *Queue) List() []domain.Notification {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]domain.Notification, len(q.entries))
	for i, e := range q.entries {
		out[i] = e.n
	}
	return out
}

// Get returns a queued notification by id.
func (q *Queue) Get(id string) (domain.Notification, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if idx := q.indexOf(id); idx >= 0 {
		return q.entries[idx].n, true
	}
	return domain.Notification{}, false
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// Close cancels every pending expiry and empties the queue.
// It returns the entries that were still queued. Enqueue is a no-op afterwards.
func (q *Queue) Close() []domain.Notification {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]domain.Notification, len(q.entries))
	for i, e := range q.entries {
		e.task.Cancel()
		out[i] = e.n
	}
	q.entries = nil
	q.closed = true
	return out
}
