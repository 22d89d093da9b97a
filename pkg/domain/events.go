package domain

import (
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventNavigate           EventType = "navigate"
	EventCompareAdd         EventType = "compare_add"
	EventCompareReject      EventType = "compare_reject"
	EventCompareRemove      EventType = "compare_remove"
	EventCompareClear       EventType = "compare_clear"
	EventWizardAdvance      EventType = "wizard_advance"
	EventWizardRetreat      EventType = "wizard_retreat"
	EventWizardBlocked      EventType = "wizard_blocked"
	EventWizardReset        EventType = "wizard_reset"
	EventWizardSubmit       EventType = "wizard_submit"
	EventNotificationQueued EventType = "notification_queued"
	EventNotificationGone   EventType = "notification_gone"
	EventSignIn             EventType = "sign_in"
	EventSignInFailed       EventType = "sign_in_failed"
	EventSignOut            EventType = "sign_out"
	EventCheckoutStarted    EventType = "checkout_started"
	EventCheckoutSettled    EventType = "checkout_settled"
	EventCheckoutCancelled  EventType = "checkout_cancelled"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id,omitempty"`
}

// NavigationEvent records a route change.
type NavigationEvent struct {
	EventBase
	From Screen `json:"from"`
	To   Screen `json:"to"`
	// Requested is set when a guard replaced the requested screen.
	Requested Screen `json:"requested,omitempty"`
}

// CompareEvent records a change (or refused change) of the compare tray.
type CompareEvent struct {
	EventBase
	ItemID string `json:"item_id,omitempty"`
	Size   int    `json:"size"`
	Reason string `json:"reason,omitempty"`
}

// WizardEvent records wizard progress.
type WizardEvent struct {
	EventBase
	Wizard string `json:"wizard"`
	Step   int    `json:"step"`
	Steps  int    `json:"steps"`
}

// NotificationEvent records a toast entering or leaving the queue.
type NotificationEvent struct {
	EventBase
	Notification Notification `json:"notification"`
	// Reason is "dismissed", "expired" or "closed" for EventNotificationGone.
	Reason string `json:"reason,omitempty"`
}

// AuthEvent records sign-in outcomes.
type AuthEvent struct {
	EventBase
	Email string `json:"email,omitempty"`
	Role  Role   `json:"role,omitempty"`
	Error string `json:"error,omitempty"`
}

// CheckoutEvent records the lifecycle of a simulated payment.
type CheckoutEvent struct {
	EventBase
	Plan   string        `json:"plan,omitempty"`
	Result *ChargeResult `json:"result,omitempty"`
}

// LifecycleHooks defines callbacks for controller observability.
// Every field is optional.
type LifecycleHooks struct {
	OnNavigate     func(*NavigationEvent)
	OnCompare      func(*CompareEvent)
	OnWizard       func(*WizardEvent)
	OnNotification func(*NotificationEvent)
	OnAuth         func(*AuthEvent)
	OnCheckout     func(*CheckoutEvent)
}

// ChainHooks fans every event out to each of the given hooks, in order.
func ChainHooks(hooks ...LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnNavigate: func(e *NavigationEvent) {
			for _, h := range hooks {
				if h.OnNavigate != nil {
					h.OnNavigate(e)
				}
			}
		},
		OnCompare: func(e *CompareEvent) {
			for _, h := range hooks {
				if h.OnCompare != nil {
					h.OnCompare(e)
				}
			}
		},
		OnWizard: func(e *WizardEvent) {
			for _, h := range hooks {
				if h.OnWizard != nil {
					h.OnWizard(e)
				}
			}
		},
		OnNotification: func(e *NotificationEvent) {
			for _, h := range hooks {
				if h.OnNotification != nil {
					h.OnNotification(e)
				}
			}
		},
		OnAuth: func(e *AuthEvent) {
			for _, h := range hooks {
				if h.OnAuth != nil {
					h.OnAuth(e)
				}
			}
		},
		OnCheckout: func(e *CheckoutEvent) {
			for _, h := range hooks {
				if h.OnCheckout != nil {
					h.OnCheckout(e)
				}
			}
		},
	}
}
