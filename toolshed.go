package toolshed

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/toolshed/internal/logging"
	"github.com/aretw0/toolshed/pkg/auth"
	"github.com/aretw0/toolshed/pkg/catalog"
	"github.com/aretw0/toolshed/pkg/compare"
	"github.com/aretw0/toolshed/pkg/domain"
	"github.com/aretw0/toolshed/pkg/idgen"
	"github.com/aretw0/toolshed/pkg/notify"
	"github.com/aretw0/toolshed/pkg/payment"
	"github.com/aretw0/toolshed/pkg/ports"
	"github.com/aretw0/toolshed/pkg/router"
	"github.com/aretw0/toolshed/pkg/wizard"
	"github.com/jonboulle/clockwork"
)

// Controller owns the state of one session: the active screen, the compare
// tray, the wizards, the toasts and the session context.
//
// Every mutation is serialized by a single mutex. Hooks run synchronously
// and must not call back into the controller.
type Controller struct {
	mu sync.Mutex

	sessionID string
	router    *router.Router
	compare   *compare.Set
	wizards   map[string]*wizard.Wizard
	queue     *notify.Queue
	session   domain.SessionContext
	checkout  *pendingCheckout
	seq       uint64
	closed    bool

	catalog  ports.Catalog
	auth     ports.Authenticator
	payments ports.PaymentGateway
	clock    clockwork.Clock
	ids      ports.IDGenerator
	hooks    domain.LifecycleHooks
	logger   *slog.Logger

	entry      domain.Route
	defs       []wizard.Definition
	toastTTL   time.Duration
	compareCap int
}

type pendingCheckout struct {
	seq    uint64
	plan   string
	handle ports.Cancellable // nil while Submit runs
	early  *domain.ChargeResult
}

// defaultAuthenticator is shared so each session does not re-hash the demo accounts.
var defaultAuthenticator = sync.OnceValues(func() (*auth.Stub, error) {
	return auth.NewStub(auth.DefaultAccounts())
})

// New creates a controller on the landing screen with the built-in catalog,
// the demo accounts and the payment simulator unless options say otherwise.
func New(opts ...Option) (*Controller, error) {
	c := &Controller{
		entry:      domain.Landing{},
		defs:       wizard.Defaults(),
		toastTTL:   domain.DefaultNotificationDuration,
		compareCap: compare.DefaultCapacity,
		session:    domain.SessionContext{Theme: domain.ThemeLight},
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.clock == nil {
		c.clock = clockwork.NewRealClock()
	}
	if c.ids == nil {
		c.ids = idgen.UUIDv7{}
	}
	if c.logger == nil {
		c.logger = logging.NewNop()
	}
	if c.sessionID == "" {
		c.sessionID = c.ids.Generate()
	}
	c.logger = c.logger.With("session_id", c.sessionID)

	if c.catalog == nil {
		c.catalog = catalog.Builtin()
	}
	if c.auth == nil {
		stub, err := defaultAuthenticator()
		if err != nil {
			return nil, fmt.Errorf("default authenticator: %w", err)
		}
		c.auth = stub
	}
	if c.payments == nil {
		c.payments = payment.NewSimulator(
			payment.WithClock(c.clock),
			payment.WithIDGenerator(c.ids),
			payment.WithLogger(c.logger),
		)
	}
	if err := c.session.Theme.Validate(); err != nil {
		return nil, err
	}

	c.wizards = make(map[string]*wizard.Wizard, len(c.defs))
	for _, def := range c.defs {
		if _, dup := c.wizards[def.Name]; dup {
			return nil, fmt.Errorf("duplicate wizard %q", def.Name)
		}
		for _, s := range def.Screens {
			if _, err := domain.RouteFor(s, nil); err != nil {
				return nil, fmt.Errorf("wizard %q: screen %s needs params: %w", def.Name, s, err)
			}
		}
		w, err := wizard.New(def)
		if err != nil {
			return nil, err
		}
		c.wizards[def.Name] = w
	}

	r, err := router.New(c.entry, router.WithGuard(c.guard), router.WithObserver(c.onNavigate))
	if err != nil {
		return nil, fmt.Errorf("entry route: %w", err)
	}
	c.router = r
	c.compare = compare.New(c.compareCap)
	c.queue = notify.New(
		notify.WithClock(c.clock),
		notify.WithIDGenerator(c.ids),
		notify.WithDefaultDuration(c.toastTTL),
		notify.WithLogger(c.logger),
		notify.WithExpireObserver(func(n domain.Notification) {
			c.emitNotification(domain.EventNotificationGone, n, "expired")
		}),
	)

	c.logger.Debug("controller created", "entry", c.entry.Screen())
	return c, nil
}

// SessionID identifies the session the controller belongs to.
func (c *Controller) SessionID() string {
	return c.sessionID
}

// Catalog returns the catalog the controller resolves tools from.
func (c *Controller) Catalog() ports.Catalog {
	return c.catalog
}

// Close cancels every pending timer: toast expiries and an unsettled checkout.
// Further mutations fail with domain.ErrClosed. Close is idempotent.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	if c.checkout != nil {
		if c.checkout.handle != nil {
			c.checkout.handle.Cancel()
		}
		c.emitCheckout(domain.EventCheckoutCancelled, c.checkout.plan, nil)
		c.checkout = nil
	}
	for _, n := range c.queue.Close() {
		c.emitNotification(domain.EventNotificationGone, n, "closed")
	}
	c.logger.Debug("controller closed")
	return nil
}

// lock acquires the mutex and fails if the controller is closed.
// Callers must unlock on success.
func (c *Controller) lock() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return domain.ErrClosed
	}
	return nil
}
