package toolshed

import (
	"fmt"

	"github.com/aretw0/toolshed/pkg/domain"
)

// guard runs with c.mu held, inside router.Navigate.
func (c *Controller) guard(from, to domain.Route) (domain.Route, error) {
	return admit(c.session, to)
}

// admit applies the access level of the target screen to a session: signed
// out visitors are sent to sign-in, members are refused admin screens.
func admit(session domain.SessionContext, to domain.Route) (domain.Route, error) {
	screen := to.Screen()
	access := screen.Access()
	if access == domain.AccessPublic {
		return to, nil
	}
	if !session.SignedIn() {
		return domain.Auth{Mode: domain.AuthSignIn, Next: screen}, nil
	}
	if access == domain.AccessAdmin && !session.User.IsAdmin() {
		return nil, fmt.Errorf("%w: %s requires an admin", domain.ErrForbidden, screen)
	}
	return to, nil
}

// Navigate switches to a typed route. Protected screens redirect to sign-in
// when nobody is signed in.
func (c *Controller) Navigate(route domain.Route) error {
	if err := c.lock(); err != nil {
		return err
	}
	defer c.mu.Unlock()
	return c.router.Navigate(route)
}

// NavigateTo switches to a screen named by string with loose params.
// Unknown screens fail with domain.ErrUnknownScreen and leave the route unchanged.
func (c *Controller) NavigateTo(target string, params domain.Params) error {
	if err := c.lock(); err != nil {
		return err
	}
	defer c.mu.Unlock()
	return c.router.NavigateTo(target, params)
}

// Current returns the active route.
func (c *Controller) Current() domain.Route {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.router.Current()
}

// Screen returns the active screen.
func (c *Controller) Screen() domain.Screen {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.router.Screen()
}
