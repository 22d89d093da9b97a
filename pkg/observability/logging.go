package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/toolshed/pkg/domain"
)

// LogHooks returns lifecycle hooks that write one record per event.
// Refusals and failures log at warn, everything else at debug.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNavigate: func(e *domain.NavigationEvent) {
			args := []any{"session_id", e.SessionID, "from", e.From, "to", e.To}
			if e.Requested != "" {
				args = append(args, "requested", e.Requested)
			}
			logger.Debug("navigate", args...)
		},
		OnCompare: func(e *domain.CompareEvent) {
			if e.Type == domain.EventCompareReject {
				logger.Warn("compare rejected", "session_id", e.SessionID, "item_id", e.ItemID, "reason", e.Reason)
				return
			}
			logger.Debug(string(e.Type), "session_id", e.SessionID, "item_id", e.ItemID, "size", e.Size)
		},
		OnWizard: func(e *domain.WizardEvent) {
			level := slog.LevelDebug
			if e.Type == domain.EventWizardBlocked {
				level = slog.LevelWarn
			}
			logger.Log(context.Background(), level, string(e.Type), "session_id", e.SessionID, "wizard", e.Wizard, "step", e.Step, "steps", e.Steps)
		},
		OnNotification: func(e *domain.NotificationEvent) {
			logger.Debug(string(e.Type), "session_id", e.SessionID,
				"id", e.Notification.ID,
				"severity", e.Notification.Severity,
				"title", e.Notification.Title,
				"reason", e.Reason,
			)
		},
		OnAuth: func(e *domain.AuthEvent) {
			if e.Type == domain.EventSignInFailed {
				logger.Warn("sign in failed", "session_id", e.SessionID, "email", e.Email, "err", e.Error)
				return
			}
			logger.Info(string(e.Type), "session_id", e.SessionID, "email", e.Email, "role", e.Role)
		},
		OnCheckout: func(e *domain.CheckoutEvent) {
			args := []any{"session_id", e.SessionID, "plan", e.Plan}
			if e.Result != nil {
				args = append(args, "approved", e.Result.Approved, "reference", e.Result.Reference, "reason", e.Result.Reason)
			}
			logger.Info(string(e.Type), args...)
		},
	}
}
