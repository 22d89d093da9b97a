package toolshed

import (
	"github.com/aretw0/toolshed/pkg/domain"
)

// toast enqueues a notification; callers hold c.mu.
func (c *Controller) toast(sev domain.Severity, title, description string) string {
	return c.enqueue(domain.NotificationRequest{Severity: sev, Title: title, Description: description})
}

func (c *Controller) enqueue(req domain.NotificationRequest) string {
	id := c.queue.Enqueue(req)
	if id == "" {
		return ""
	}
	if n, ok := c.queue.Get(id); ok {
		c.emitNotification(domain.EventNotificationQueued, n, "")
	}
	return id
}

// Notify enqueues a toast and returns its id. It expires after its duration,
// or the configured default when the duration is zero.
func (c *Controller) Notify(req domain.NotificationRequest) (string, error) {
	if req.Severity != "" {
		if _, err := domain.ParseSeverity(string(req.Severity)); err != nil {
			return "", err
		}
	}
	if err := c.lock(); err != nil {
		return "", err
	}
	defer c.mu.Unlock()
	return c.enqueue(req), nil
}

// Dismiss removes a toast before it expires. Unknown ids are ignored.
func (c *Controller) Dismiss(id string) bool {
	if err := c.lock(); err != nil {
		return false
	}
	defer c.mu.Unlock()

	n, ok := c.queue.Dismiss(id)
	if ok {
		c.emitNotification(domain.EventNotificationGone, n, "dismissed")
	}
	return ok
}

// Notifications lists the visible toasts, oldest first.
func (c *Controller) Notifications() []domain.Notification {
	return c.queue.List()
}
