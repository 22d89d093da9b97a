package toolshed

import (
	"github.com/aretw0/toolshed/pkg/domain"
	"github.com/aretw0/toolshed/pkg/wizard"
)

func (c *Controller) base(t domain.EventType) domain.EventBase {
	return domain.EventBase{Timestamp: c.clock.Now(), Type: t, SessionID: c.sessionID}
}

func (c *Controller) onNavigate(from, to, requested domain.Route) {
	evt := &domain.NavigationEvent{
		EventBase: c.base(domain.EventNavigate),
		From:      from.Screen(),
		To:        to.Screen(),
	}
	if requested.Screen() != to.Screen() {
		evt.Requested = requested.Screen()
	}
	c.logger.Debug("navigated", "from", evt.From, "to", evt.To, "requested", evt.Requested)
	if c.hooks.OnNavigate != nil {
		c.hooks.OnNavigate(evt)
	}
}

func (c *Controller) emitCompare(t domain.EventType, itemID, reason string) {
	if c.hooks.OnCompare == nil {
		return
	}
	c.hooks.OnCompare(&domain.CompareEvent{
		EventBase: c.base(t),
		ItemID:    itemID,
		Size:      c.compare.Len(),
		Reason:    reason,
	})
}

func (c *Controller) emitWizard(t domain.EventType, w *wizard.Wizard) {
	if c.hooks.OnWizard == nil {
		return
	}
	c.hooks.OnWizard(&domain.WizardEvent{
		EventBase: c.base(t),
		Wizard:    w.Name(),
		Step:      w.Step(),
		Steps:     w.Steps(),
	})
}

// emitNotification may run on a clock goroutine without the controller lock.
func (c *Controller) emitNotification(t domain.EventType, n domain.Notification, reason string) {
	if c.hooks.OnNotification == nil {
		return
	}
	c.hooks.OnNotification(&domain.NotificationEvent{
		EventBase:    c.base(t),
		Notification: n,
		Reason:       reason,
	})
}

func (c *Controller) emitAuth(t domain.EventType, email string, role domain.Role, err error) {
	if c.hooks.OnAuth == nil {
		return
	}
	evt := &domain.AuthEvent{EventBase: c.base(t), Email: email, Role: role}
	if err != nil {
		evt.Error = err.Error()
	}
	c.hooks.OnAuth(evt)
}

func (c *Controller) emitCheckout(t domain.EventType, plan string, result *domain.ChargeResult) {
	if c.hooks.OnCheckout == nil {
		return
	}
	c.hooks.OnCheckout(&domain.CheckoutEvent{EventBase: c.base(t), Plan: plan, Result: result})
}
