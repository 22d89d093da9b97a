package domain

import (
	"fmt"
	"strconv"

	"github.com/mitchellh/mapstructure"
)

// Params is the open key-value payload hosts send with a navigation request.
// It only exists at the string boundary; RouteFor turns it into a typed Route.
type Params map[string]any

// Route is the typed destination of a navigation: one struct per screen,
// carrying only the fields that screen uses.
type Route interface {
	Screen() Screen
	Validate() error
	isRoute()
}

// AuthMode selects the form shown on the auth screen.
type AuthMode string

const (
	AuthSignIn AuthMode = "signin"
	AuthSignUp AuthMode = "signup"
)

type Landing struct{}

type Discover struct {
	Query    string `mapstructure:"query,omitempty"`
	Category string `mapstructure:"category,omitempty"`
}

type ToolDetail struct {
	ToolID string `mapstructure:"tool_id,omitempty"`
}

type Compare struct{}

type Auth struct {
	Mode AuthMode `mapstructure:"mode,omitempty"`
	// Next is where a successful sign-in lands. Empty means the dashboard.
	Next Screen `mapstructure:"next,omitempty"`
}

type Dashboard struct {
	Tab string `mapstructure:"tab,omitempty"`
}

type Wallet struct{}

type Submit struct{}

type Admin struct{}

type Moderation struct{}

// Onboarding is one of the onboarding-step-N screens. The step lives in the
// screen identifier, never in params.
type Onboarding struct {
	Step int `mapstructure:"-"`
}

type News struct{}

type NewsDetail struct {
	ArticleID string `mapstructure:"article_id,omitempty"`
}

type Tutorials struct{}

type TutorialDetail struct {
	TutorialID string `mapstructure:"tutorial_id,omitempty"`
}

type Workflows struct{}

type WorkflowDetail struct {
	WorkflowID string `mapstructure:"workflow_id,omitempty"`
}

func (Landing) Screen() Screen        { return ScreenLanding }
func (Discover) Screen() Screen       { return ScreenDiscover }
func (ToolDetail) Screen() Screen     { return ScreenToolDetail }
func (Compare) Screen() Screen        { return ScreenCompare }
func (Auth) Screen() Screen           { return ScreenAuth }
func (Dashboard) Screen() Screen      { return ScreenDashboard }
func (Wallet) Screen() Screen         { return ScreenWallet }
func (Submit) Screen() Screen         { return ScreenSubmit }
func (Admin) Screen() Screen          { return ScreenAdmin }
func (Moderation) Screen() Screen     { return ScreenModeration }
func (News) Screen() Screen           { return ScreenNews }
func (NewsDetail) Screen() Screen     { return ScreenNewsDetail }
func (Tutorials) Screen() Screen      { return ScreenTutorials }
func (TutorialDetail) Screen() Screen { return ScreenTutorialDetail }
func (Workflows) Screen() Screen      { return ScreenWorkflows }
func (WorkflowDetail) Screen() Screen { return ScreenWorkflowDetail }

func (o Onboarding) Screen() Screen {
	return Screen(onboardingPrefix + strconv.Itoa(o.Step))
}

func (Landing) Validate() error    { return nil }
func (Discover) Validate() error   { return nil }
func (Compare) Validate() error    { return nil }
func (Dashboard) Validate() error  { return nil }
func (Wallet) Validate() error     { return nil }
func (Submit) Validate() error     { return nil }
func (Admin) Validate() error      { return nil }
func (Moderation) Validate() error { return nil }
func (News) Validate() error       { return nil }
func (Tutorials) Validate() error  { return nil }
func (Workflows) Validate() error  { return nil }

func (r ToolDetail) Validate() error     { return requireID(r.Screen(), "tool_id", r.ToolID) }
func (r NewsDetail) Validate() error     { return requireID(r.Screen(), "article_id", r.ArticleID) }
func (r TutorialDetail) Validate() error { return requireID(r.Screen(), "tutorial_id", r.TutorialID) }
func (r WorkflowDetail) Validate() error { return requireID(r.Screen(), "workflow_id", r.WorkflowID) }

func (r Auth) Validate() error {
	switch r.Mode {
	case "", AuthSignIn, AuthSignUp:
	default:
		return fmt.Errorf("%w: auth mode %q", ErrInvalidParams, r.Mode)
	}
	if r.Next == "" {
		return nil
	}
	if !r.Next.Valid() || r.Next == ScreenAuth {
		return fmt.Errorf("%w: auth next %q", ErrInvalidParams, r.Next)
	}
	return nil
}

func (o Onboarding) Validate() error {
	if o.Step < 1 || o.Step > OnboardingSteps {
		return fmt.Errorf("%w: onboarding step %d", ErrInvalidParams, o.Step)
	}
	return nil
}

func (Landing) isRoute()        {}
func (Discover) isRoute()       {}
func (ToolDetail) isRoute()     {}
func (Compare) isRoute()        {}
func (Auth) isRoute()           {}
func (Dashboard) isRoute()      {}
func (Wallet) isRoute()         {}
func (Submit) isRoute()         {}
func (Admin) isRoute()          {}
func (Moderation) isRoute()     {}
func (Onboarding) isRoute()     {}
func (News) isRoute()           {}
func (NewsDetail) isRoute()     {}
func (Tutorials) isRoute()      {}
func (TutorialDetail) isRoute() {}
func (Workflows) isRoute()      {}
func (WorkflowDetail) isRoute() {}

func requireID(s Screen, key, value string) error {
	if value == "" {
		return fmt.Errorf("%w: %s requires %s", ErrInvalidParams, s, key)
	}
	return nil
}

// RouteFor builds the typed route of a screen from loose params and validates it.
// Keys the screen does not use are rejected.
func RouteFor(screen Screen, params Params) (Route, error) {
	var (
		route Route
		err   error
	)

	switch screen {
	case ScreenLanding:
		route, err = decodeRoute(params, Landing{})
	case ScreenDiscover:
		route, err = decodeRoute(params, Discover{})
	case ScreenToolDetail:
		route, err = decodeRoute(params, ToolDetail{})
	case ScreenCompare:
		route, err = decodeRoute(params, Compare{})
	case ScreenAuth:
		route, err = decodeRoute(params, Auth{})
	case ScreenDashboard:
		route, err = decodeRoute(params, Dashboard{})
	case ScreenWallet:
		route, err = decodeRoute(params, Wallet{})
	case ScreenSubmit:
		route, err = decodeRoute(params, Submit{})
	case ScreenAdmin:
		route, err = decodeRoute(params, Admin{})
	case ScreenModeration:
		route, err = decodeRoute(params, Moderation{})
	case ScreenOnboarding1, ScreenOnboarding2, ScreenOnboarding3:
		step, _ := onboardingStep(screen)
		route, err = decodeRoute(params, Onboarding{Step: step})
	case ScreenNews:
		route, err = decodeRoute(params, News{})
	case ScreenNewsDetail:
		route, err = decodeRoute(params, NewsDetail{})
	case ScreenTutorials:
		route, err = decodeRoute(params, Tutorials{})
	case ScreenTutorialDetail:
		route, err = decodeRoute(params, TutorialDetail{})
	case ScreenWorkflows:
		route, err = decodeRoute(params, Workflows{})
	case ScreenWorkflowDetail:
		route, err = decodeRoute(params, WorkflowDetail{})
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownScreen, screen)
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidParams, screen, err)
	}
	if err := route.Validate(); err != nil {
		return nil, err
	}
	return route, nil
}

func decodeRoute[T Route](params Params, base T) (Route, error) {
	if len(params) == 0 {
		return base, nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &base,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(map[string]any(params)); err != nil {
		return nil, err
	}
	return base, nil
}

// RouteParams encodes the fields of a route back into loose params.
// Empty fields are omitted.
func RouteParams(route Route) Params {
	out := make(map[string]any)
	if route == nil {
		return out
	}
	_ = mapstructure.Decode(route, &out)
	delete(out, "-")
	for k, v := range out {
		if s, ok := v.(Screen); ok {
			out[k] = string(s)
		}
		if s, ok := v.(AuthMode); ok {
			out[k] = string(s)
		}
	}
	return out
}

// RouteRecord is the serializable form of a Route.
type RouteRecord struct {
	Screen Screen `json:"screen"`
	Params Params `json:"params,omitempty"`
}

// RecordOf captures a route as a record.
func RecordOf(route Route) RouteRecord {
	rec := RouteRecord{Screen: route.Screen()}
	if p := RouteParams(route); len(p) > 0 {
		rec.Params = p
	}
	return rec
}

// Route rebuilds the typed route of a record.
func (r RouteRecord) Route() (Route, error) {
	screen, err := ParseScreen(string(r.Screen))
	if err != nil {
		return nil, err
	}
	return RouteFor(screen, r.Params)
}
