package toolshed

import (
	"fmt"

	"github.com/aretw0/toolshed/pkg/domain"
	"github.com/aretw0/toolshed/pkg/wizard"
)

func (c *Controller) wizard(name string) (*wizard.Wizard, error) {
	w, ok := c.wizards[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrWizardNotFound, name)
	}
	return w, nil
}

// follow navigates to the screen bound to the wizard's current step, if any.
func (c *Controller) follow(w *wizard.Wizard) error {
	screen, ok := w.Definition().ScreenFor(w.Step())
	if !ok || screen == c.router.Screen() {
		return nil
	}
	route, err := domain.RouteFor(screen, nil)
	if err != nil {
		return err
	}
	return c.router.Navigate(route)
}

// AdvanceWizard moves a wizard forward when its current step is valid.
func (c *Controller) AdvanceWizard(name string) error {
	if err := c.lock(); err != nil {
		return err
	}
	defer c.mu.Unlock()

	w, err := c.wizard(name)
	if err != nil {
		return err
	}
	if err := w.Advance(); err != nil {
		c.emitWizard(domain.EventWizardBlocked, w)
		return err
	}
	c.emitWizard(domain.EventWizardAdvance, w)
	return c.follow(w)
}

// RetreatWizard moves a wizard back one step; on step 1 it does nothing.
func (c *Controller) RetreatWizard(name string) error {
	if err := c.lock(); err != nil {
		return err
	}
	defer c.mu.Unlock()

	w, err := c.wizard(name)
	if err != nil {
		return err
	}
	if w.Retreat() {
		c.emitWizard(domain.EventWizardRetreat, w)
	}
	return c.follow(w)
}

// SetWizardStepValid records whether a step's inputs are valid.
func (c *Controller) SetWizardStepValid(name string, step int, valid bool) error {
	if err := c.lock(); err != nil {
		return err
	}
	defer c.mu.Unlock()

	w, err := c.wizard(name)
	if err != nil {
		return err
	}
	return w.SetStepValid(step, valid)
}

// MarkWizardDirty flags unsaved changes.
func (c *Controller) MarkWizardDirty(name string) error {
	if err := c.lock(); err != nil {
		return err
	}
	defer c.mu.Unlock()

	w, err := c.wizard(name)
	if err != nil {
		return err
	}
	w.MarkDirty()
	return nil
}

// ResetWizard returns a wizard to step 1 with every flag cleared.
func (c *Controller) ResetWizard(name string) error {
	if err := c.lock(); err != nil {
		return err
	}
	defer c.mu.Unlock()

	w, err := c.wizard(name)
	if err != nil {
		return err
	}
	w.Reset()
	c.emitWizard(domain.EventWizardReset, w)
	return c.follow(w)
}

// SubmitWizard completes a wizard on its valid final step, resets it,
// enqueues a success toast and opens the wizard's submit screen.
func (c *Controller) SubmitWizard(name string) error {
	if err := c.lock(); err != nil {
		return err
	}
	defer c.mu.Unlock()

	w, err := c.wizard(name)
	if err != nil {
		return err
	}
	if err := w.Submit(); err != nil {
		c.emitWizard(domain.EventWizardBlocked, w)
		return err
	}
	c.emitWizard(domain.EventWizardSubmit, w)
	c.toast(domain.SeveritySuccess, "Submitted", fmt.Sprintf("Your %s form was submitted.", name))

	target := w.Definition().SubmitRoute
	if target == "" {
		return nil
	}
	route, err := domain.RouteFor(target, nil)
	if err != nil {
		return err
	}
	return c.router.Navigate(route)
}

// WizardStatus returns the progress of a wizard.
func (c *Controller) WizardStatus(name string) (domain.WizardSnapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	w, err := c.wizard(name)
	if err != nil {
		return domain.WizardSnapshot{}, err
	}
	return w.Snapshot(), nil
}

// Wizards lists the configured wizard names.
func (c *Controller) Wizards() []string {
	names := make([]string, 0, len(c.defs))
	for _, d := range c.defs {
		names = append(names, d.Name)
	}
	return names
}
