package observability

import (
	"strconv"

	"github.com/aretw0/toolshed/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics aggregates lifecycle events of every controller sharing it.
type Metrics struct {
	Navigations   *prometheus.CounterVec
	Compare       *prometheus.CounterVec
	Wizard        *prometheus.CounterVec
	Notifications *prometheus.CounterVec
	Visible       prometheus.Gauge
	Auth          *prometheus.CounterVec
	Checkouts     *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Navigations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "toolshed_navigations_total",
			Help: "Route changes by destination screen.",
		}, []string{"screen", "redirected"}),
		Compare: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "toolshed_compare_events_total",
			Help: "Comparison tray changes and refusals.",
		}, []string{"type", "reason"}),
		Wizard: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "toolshed_wizard_events_total",
			Help: "Wizard transitions by wizard name.",
		}, []string{"wizard", "type"}),
		Notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "toolshed_notifications_total",
			Help: "Toasts queued and removed, by severity.",
		}, []string{"type", "severity", "reason"}),
		Visible: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "toolshed_notifications_visible",
			Help: "Toasts currently visible across sessions.",
		}),
		Auth: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "toolshed_auth_events_total",
			Help: "Sign-in and sign-out outcomes.",
		}, []string{"type", "role"}),
		Checkouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "toolshed_checkouts_total",
			Help: "Checkout lifecycle by outcome.",
		}, []string{"outcome"}),
	}

	for _, c := range []prometheus.Collector{
		m.Navigations, m.Compare, m.Wizard, m.Notifications, m.Visible, m.Auth, m.Checkouts,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNavigate: func(e *domain.NavigationEvent) {
			m.Navigations.WithLabelValues(string(e.To), strconv.FormatBool(e.Requested != "")).Inc()
		},
		OnCompare: func(e *domain.CompareEvent) {
			m.Compare.WithLabelValues(string(e.Type), e.Reason).Inc()
		},
		OnWizard: func(e *domain.WizardEvent) {
			m.Wizard.WithLabelValues(e.Wizard, string(e.Type)).Inc()
		},
		OnNotification: func(e *domain.NotificationEvent) {
			m.Notifications.WithLabelValues(string(e.Type), string(e.Notification.Severity), e.Reason).Inc()
			switch e.Type {
			case domain.EventNotificationQueued:
				m.Visible.Inc()
			case domain.EventNotificationGone:
				m.Visible.Dec()
			}
		},
		OnAuth: func(e *domain.AuthEvent) {
			m.Auth.WithLabelValues(string(e.Type), string(e.Role)).Inc()
		},
		OnCheckout: func(e *domain.CheckoutEvent) {
			m.Checkouts.WithLabelValues(checkoutOutcome(e)).Inc()
		},
	}
}

func checkoutOutcome(e *domain.CheckoutEvent) string {
	switch e.Type {
	case domain.EventCheckoutStarted:
		return "started"
	case domain.EventCheckoutCancelled:
		return "cancelled"
	}
	if e.Result != nil && e.Result.Approved {
		return "approved"
	}
	return "declined"
}
