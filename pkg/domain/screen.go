package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Screen identifies one full-page view. The set of screens is closed.
type Screen string

const (
	ScreenLanding        Screen = "landing"
	ScreenDiscover       Screen = "discover"
	ScreenToolDetail     Screen = "tool-detail"
	ScreenCompare        Screen = "compare"
	ScreenAuth           Screen = "auth"
	ScreenDashboard      Screen = "dashboard"
	ScreenWallet         Screen = "wallet"
	ScreenSubmit         Screen = "submit"
	ScreenAdmin          Screen = "admin"
	ScreenModeration     Screen = "moderation"
	ScreenOnboarding1    Screen = "onboarding-step-1"
	ScreenOnboarding2    Screen = "onboarding-step-2"
	ScreenOnboarding3    Screen = "onboarding-step-3"
	ScreenNews           Screen = "news"
	ScreenNewsDetail     Screen = "news-detail"
	ScreenTutorials      Screen = "tutorials"
	ScreenTutorialDetail Screen = "tutorial-detail"
	ScreenWorkflows      Screen = "workflows"
	ScreenWorkflowDetail Screen = "workflow-detail"
)

// OnboardingSteps is the number of onboarding screens.
const OnboardingSteps = 3

const onboardingPrefix = "onboarding-step-"

var screens = []Screen{
	ScreenLanding,
	ScreenDiscover,
	ScreenToolDetail,
	ScreenCompare,
	ScreenAuth,
	ScreenDashboard,
	ScreenWallet,
	ScreenSubmit,
	ScreenAdmin,
	ScreenModeration,
	ScreenOnboarding1,
	ScreenOnboarding2,
	ScreenOnboarding3,
	ScreenNews,
	ScreenNewsDetail,
	ScreenTutorials,
	ScreenTutorialDetail,
	ScreenWorkflows,
	ScreenWorkflowDetail,
}

// Access is who may open a screen.
type Access int

const (
	AccessPublic Access = iota
	// AccessMember screens redirect to sign-in when nobody is signed in.
	AccessMember
	// AccessAdmin screens additionally need the admin role.
	AccessAdmin
)

func (a Access) String() string {
	switch a {
	case AccessMember:
		return "member"
	case AccessAdmin:
		return "admin"
	}
	return "public"
}

// Access returns the access level of the screen.
func (s Screen) Access() Access {
	switch s {
	case ScreenDashboard, ScreenWallet, ScreenSubmit:
		return AccessMember
	case ScreenAdmin, ScreenModeration:
		return AccessAdmin
	}
	return AccessPublic
}

// Screens returns every known screen in declaration order.
func Screens() []Screen {
	out := make([]Screen, len(screens))
	copy(out, screens)
	return out
}

// Valid reports whether s is a member of the closed screen set.
func (s Screen) Valid() bool {
	for _, known := range screens {
		if s == known {
			return true
		}
	}
	return false
}

func (s Screen) String() string { return string(s) }

// ParseScreen converts a raw target into a Screen.
// Surrounding whitespace and case are ignored.
func ParseScreen(raw string) (Screen, error) {
	s := Screen(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownScreen, raw)
	}
	return s, nil
}

// OnboardingScreen returns the screen of an onboarding step (1-based).
func OnboardingScreen(step int) (Screen, error) {
	if step < 1 || step > OnboardingSteps {
		return "", fmt.Errorf("%w: onboarding step %d", ErrInvalidParams, step)
	}
	return Screen(onboardingPrefix + strconv.Itoa(step)), nil
}

func onboardingStep(s Screen) (int, bool) {
	rest, ok := strings.CutPrefix(string(s), onboardingPrefix)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 1 || n > OnboardingSteps {
		return 0, false
	}
	return n, true
}
