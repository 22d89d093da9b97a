package toolshed

import (
	"log/slog"
	"time"

	"github.com/aretw0/toolshed/pkg/domain"
	"github.com/aretw0/toolshed/pkg/ports"
	"github.com/aretw0/toolshed/pkg/wizard"
	"github.com/jonboulle/clockwork"
)

// Option defines a functional option for configuring the Controller.
type Option func(*Controller)

// WithCatalog sets the tool catalog. Defaults to the built-in seed.
func WithCatalog(c ports.Catalog) Option {
	return func(ctl *Controller) {
		ctl.catalog = c
	}
}

// WithAuthenticator sets the auth provider. Defaults to the demo account stub.
func WithAuthenticator(a ports.Authenticator) Option {
	return func(c *Controller) {
		c.auth = a
	}
}

// WithPaymentGateway sets the payment provider. Defaults to the simulator.
func WithPaymentGateway(g ports.PaymentGateway) Option {
	return func(c *Controller) {
		c.payments = g
	}
}

// WithClock sets the clock that drives toast expiry and the default payment simulator.
func WithClock(clock clockwork.Clock) Option {
	return func(c *Controller) {
		c.clock = clock
	}
}

// WithLogger sets a custom structured logger for the controller.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *Controller) {
		c.hooks = hooks
	}
}

// WithIDGenerator sets the source of session, toast and charge ids.
func WithIDGenerator(g ports.IDGenerator) Option {
	return func(c *Controller) {
		c.ids = g
	}
}

// WithWizards replaces the wizard definitions.
func WithWizards(defs ...wizard.Definition) Option {
	return func(c *Controller) {
		c.defs = defs
	}
}

// WithSessionID sets the session id instead of generating one.
func WithSessionID(id string) Option {
	return func(c *Controller) {
		c.sessionID = id
	}
}

// WithNotificationDuration sets how long toasts stay when the request carries no duration.
func WithNotificationDuration(d time.Duration) Option {
	return func(c *Controller) {
		c.toastTTL = d
	}
}

// WithCompareCapacity sets the compare tray size (default 3).
func WithCompareCapacity(n int) Option {
	return func(c *Controller) {
		c.compareCap = n
	}
}

// WithTheme sets the initial theme.
func WithTheme(t domain.Theme) Option {
	return func(c *Controller) {
		c.session.Theme = t
	}
}

// WithEntry configures the initial route (default: landing).
func WithEntry(route domain.Route) Option {
	return func(c *Controller) {
		c.entry = route
	}
}
