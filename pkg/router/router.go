// Package router holds the single active screen route.
//
// There is no history stack: going back is a navigation to an explicit
// target, chosen by the host.
package router

import (
	"fmt"

	"github.com/aretw0/toolshed/pkg/domain"
)

// Guard inspects a transition before it happens. It returns the route to
// navigate to (the requested one, or a redirect) or an error to refuse it.
type Guard func(from, to domain.Route) (domain.Route, error)

// Observer is notified after every successful transition. requested differs
// from to when a guard redirected the navigation.
type Observer func(from, to, requested domain.Route)

// Router holds the current route. It is not safe for concurrent use;
// the controller serializes access.
type Router struct {
	current   domain.Route
	guard     Guard
	observers []Observer
}

// Option configures a Router.
type Option func(*Router)

// WithGuard installs a guard run before each navigation.
func WithGuard(g Guard) Option {
	return func(r *Router) {
		r.guard = g
	}
}

// WithObserver adds a transition observer.
func WithObserver(o Observer) Option {
	return func(r *Router) {
		r.observers = append(r.observers, o)
	}
}

// New creates a router positioned on entry, which must be a valid route.
// The guard is not consulted for the entry route.
func New(entry domain.Route, opts ...Option) (*Router, error) {
	if err := check(entry); err != nil {
		return nil, err
	}
	r := &Router{current: entry}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func check(route domain.Route) error {
	if route == nil {
		return fmt.Errorf("%w: nil route", domain.ErrInvalidParams)
	}
	return route.Validate()
}

// Navigate replaces the current route after validation and the guard.
// A refused navigation leaves the current route unchanged.
func (r *Router) Navigate(route domain.Route) error {
	if err := check(route); err != nil {
		return err
	}

	target := route
	if r.guard != nil {
		next, err := r.guard(r.current, route)
		if err != nil {
			return err
		}
		if err := check(next); err != nil {
			return fmt.Errorf("guard redirect: %w", err)
		}
		target = next
	}

	from := r.current
	r.current = target
	for _, o := range r.observers {
		o(from, target, route)
	}
	return nil
}

// NavigateTo resolves a string target and loose params into a typed route,
// then navigates. Unknown targets fail with ErrUnknownScreen.
func (r *Router) NavigateTo(target string, params domain.Params) error {
	screen, err := domain.ParseScreen(target)
	if err != nil {
		return err
	}
	route, err := domain.RouteFor(screen, params)
	if err != nil {
		return err
	}
	return r.Navigate(route)
}

// Current returns the active route.
func (r *Router) Current() domain.Route {
	return r.current
}

// Screen returns the active screen.
func (r *Router) Screen() domain.Screen {
	return r.current.Screen()
}

// Restore sets the current route without running the guard or observers.
func (r *Router) Restore(route domain.Route) error {
	if err := check(route); err != nil {
		return err
	}
	r.current = route
	return nil
}
