package domain

import "errors"

// Comparison tray.
var (
	// ErrCapacityExceeded is returned when the comparison set is already full.
	ErrCapacityExceeded = errors.New("comparison capacity exceeded")
	// ErrDuplicateItem is returned when the item is already selected.
	ErrDuplicateItem = errors.New("item already selected")
	// ErrInvalidItem is returned for items without an id.
	ErrInvalidItem = errors.New("invalid comparison item")
)

// Wizards.
var (
	// ErrStepInvalid is returned when advancing past a step whose validity flag is false.
	ErrStepInvalid = errors.New("current step is not valid")
	// ErrStepOutOfRange is returned for step numbers outside [1, N].
	ErrStepOutOfRange = errors.New("step out of range")
	// ErrWizardNotFound is returned when no wizard is registered under a name.
	ErrWizardNotFound = errors.New("wizard not found")
)

// Navigation.
var (
	// ErrUnknownScreen is returned when a navigation target is not a known screen.
	ErrUnknownScreen = errors.New("unknown screen")
	// ErrInvalidParams is returned when navigation params do not fit the target screen.
	ErrInvalidParams = errors.New("invalid navigation params")
	// ErrForbidden is returned when the signed-in user may not open a screen.
	ErrForbidden = errors.New("forbidden")
)

// Collaborators.
var (
	// ErrAuthFailure is returned by authenticators when sign-in is refused.
	ErrAuthFailure = errors.New("authentication failed")
	// ErrToolNotFound is returned when a catalog lookup misses.
	ErrToolNotFound = errors.New("tool not found")
	// ErrInvalidCard is returned when card details fail validation.
	ErrInvalidCard = errors.New("invalid card details")
	// ErrInvalidAmount is returned for non-positive charge amounts.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrCheckoutInProgress is returned when a checkout is already pending.
	ErrCheckoutInProgress = errors.New("checkout already in progress")
)

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrClosed is returned by operations on a closed controller.
var ErrClosed = errors.New("controller closed")
