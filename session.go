package toolshed

import (
	"context"
	"errors"

	"github.com/aretw0/toolshed/pkg/domain"
)

// SignIn authenticates through the auth provider.
//
// On failure an error toast is queued and the route does not change. On
// success the user is attached, a welcome toast is queued and the controller
// opens the screen the auth route was guarding, or the dashboard.
func (c *Controller) SignIn(ctx context.Context, email, password string) error {
	user, authErr := c.auth.SignIn(ctx, email, password)

	if err := c.lock(); err != nil {
		return err
	}
	defer c.mu.Unlock()

	if authErr != nil {
		c.toast(domain.SeverityError, "Sign in failed", "Check your email and password and try again.")
		c.emitAuth(domain.EventSignInFailed, email, "", authErr)
		c.logger.Info("sign in failed", "email", email, "error", authErr)
		return authErr
	}

	c.session.User = user
	c.emitAuth(domain.EventSignIn, user.Email, user.Role, nil)
	greeting := "Welcome back"
	if user.Name != "" {
		greeting += ", " + user.Name
	}
	c.toast(domain.SeveritySuccess, greeting, "")

	next := domain.ScreenDashboard
	if a, ok := c.router.Current().(domain.Auth); ok && a.Next != "" {
		next = a.Next
	}
	route, err := domain.RouteFor(next, nil)
	if err != nil {
		route = domain.Dashboard{}
	}
	if err := c.router.Navigate(route); err != nil {
		if !errors.Is(err, domain.ErrForbidden) {
			return err
		}
		return c.router.Navigate(domain.Dashboard{})
	}
	return nil
}

// SignOut detaches the user and returns to the landing screen.
func (c *Controller) SignOut() error {
	if err := c.lock(); err != nil {
		return err
	}
	defer c.mu.Unlock()

	if c.session.User == nil {
		return nil
	}
	u := c.session.User
	c.session.User = nil
	c.emitAuth(domain.EventSignOut, u.Email, u.Role, nil)
	return c.router.Navigate(domain.Landing{})
}

// SetTheme switches between light and dark.
func (c *Controller) SetTheme(theme domain.Theme) error {
	if err := theme.Validate(); err != nil {
		return err
	}
	if err := c.lock(); err != nil {
		return err
	}
	defer c.mu.Unlock()

	c.session.Theme = theme
	return nil
}

// Session returns a copy of the session context.
func (c *Controller) Session() domain.SessionContext {
	c.mu.Lock()
	defer c.mu.Unlock()
	return copySession(c.session)
}

func copySession(s domain.SessionContext) domain.SessionContext {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}
