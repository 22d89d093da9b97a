package toolshed

import (
	"fmt"

	"github.com/aretw0/toolshed/pkg/compare"
	"github.com/aretw0/toolshed/pkg/domain"
	"github.com/aretw0/toolshed/pkg/wizard"
)

// Snapshot captures the persistent state. Toasts and a pending checkout are
// transient and left out.
func (c *Controller) Snapshot() *domain.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

func (c *Controller) snapshot() *domain.Snapshot {
	wizards := make(map[string]domain.WizardSnapshot, len(c.wizards))
	for name, w := range c.wizards {
		wizards[name] = w.Snapshot()
	}
	return &domain.Snapshot{
		SessionID: c.sessionID,
		Route:     domain.RecordOf(c.router.Current()),
		Compare:   c.compare.Items(),
		Wizards:   wizards,
		Context:   copySession(c.session),
	}
}

// Restore replaces the persistent state with a snapshot. Nothing changes if
// any part of the snapshot is invalid. Wizards missing from the snapshot are
// reset; snapshot wizards that are not configured are ignored.
func (c *Controller) Restore(snap *domain.Snapshot) error {
	if snap == nil {
		return fmt.Errorf("%w: nil snapshot", domain.ErrInvalidParams)
	}
	route, err := snap.Route.Route()
	if err != nil {
		return fmt.Errorf("restore route: %w", err)
	}
	session := copySession(snap.Context)
	if session.Theme == "" {
		session.Theme = domain.ThemeLight
	}
	if err := session.Theme.Validate(); err != nil {
		return err
	}
	// A stored route still has to pass the access check for the stored user.
	if route, err = admit(session, route); err != nil {
		route = domain.Dashboard{}
	}

	if err := c.lock(); err != nil {
		return err
	}
	defer c.mu.Unlock()

	wizards := make(map[string]*wizard.Wizard, len(c.defs))
	for _, def := range c.defs {
		w, err := wizard.New(def)
		if err != nil {
			return err
		}
		if ws, ok := snap.Wizards[def.Name]; ok {
			if err := w.Restore(ws); err != nil {
				return fmt.Errorf("restore wizard %s: %w", def.Name, err)
			}
		}
		wizards[def.Name] = w
	}

	tray := compare.New(c.compare.Capacity())
	tray.Restore(snap.Compare)

	if err := c.router.Restore(route); err != nil {
		return err
	}
	c.wizards = wizards
	c.compare = tray
	c.session = session
	return nil
}

// View returns the snapshot together with the visible toasts.
func (c *Controller) View() domain.View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return domain.View{
		Snapshot:        c.snapshot(),
		Notifications:   c.queue.List(),
		CanCompare:      c.compare.CanCompare(),
		CheckoutPending: c.checkout != nil,
	}
}
