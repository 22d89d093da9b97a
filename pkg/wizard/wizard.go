// Package wizard tracks progress through multi-step forms.
//
// A Wizard holds the current step in [1, N], one validity flag per step and an
// unsaved-changes flag. Forward progress is gated by the current step's flag;
// backward progress never is.
package wizard

import (
	"fmt"

	"github.com/aretw0/toolshed/pkg/domain"
)

// Definition describes a wizard. Screens, when set, binds each step to a
// screen so the controller can follow step changes with navigation.
type Definition struct {
	Name        string          `json:"name" yaml:"name" toml:"name"`
	Steps       int             `json:"steps" yaml:"steps" toml:"steps"`
	Screens     []domain.Screen `json:"screens,omitempty" yaml:"screens,omitempty" toml:"screens,omitempty"`
	SubmitRoute domain.Screen   `json:"submit_route,omitempty" yaml:"submit_route,omitempty" toml:"submit_route,omitempty"`
}

// Validate checks the definition is usable.
func (d Definition) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("wizard definition: missing name")
	}
	if d.Steps < 1 {
		return fmt.Errorf("wizard %q: steps must be at least 1, got %d", d.Name, d.Steps)
	}
	if len(d.Screens) > 0 && len(d.Screens) != d.Steps {
		return fmt.Errorf("wizard %q: %d screens bound for %d steps", d.Name, len(d.Screens), d.Steps)
	}
	for _, s := range d.Screens {
		if !s.Valid() {
			return fmt.Errorf("wizard %q: %w: %s", d.Name, domain.ErrUnknownScreen, s)
		}
	}
	if d.SubmitRoute != "" && !d.SubmitRoute.Valid() {
		return fmt.Errorf("wizard %q: %w: %s", d.Name, domain.ErrUnknownScreen, d.SubmitRoute)
	}
	return nil
}

// ScreenFor returns the screen bound to a step, if any.
func (d Definition) ScreenFor(step int) (domain.Screen, bool) {
	if step < 1 || step > len(d.Screens) {
		return "", false
	}
	return d.Screens[step-1], true
}

// Names of the built-in wizards.
const (
	Onboarding = "onboarding"
	SubmitTool = "submit-tool"
)

// Defaults returns the built-in wizard definitions.
func Defaults() []Definition {
	screens := make([]domain.Screen, domain.OnboardingSteps)
	for i := range screens {
		screens[i], _ = domain.OnboardingScreen(i + 1)
	}
	return []Definition{
		{Name: Onboarding, Steps: domain.OnboardingSteps, Screens: screens, SubmitRoute: domain.ScreenDashboard},
		{Name: SubmitTool, Steps: 4, SubmitRoute: domain.ScreenDashboard},
	}
}

// Wizard is the step state of one multi-step form.
// It is not safe for concurrent use.
type Wizard struct {
	def   Definition
	step  int
	valid []bool
	dirty bool
}

// New creates a wizard on step 1 with every step invalid.
func New(def Definition) (*Wizard, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	w := &Wizard{def: def}
	w.Reset()
	return w, nil
}

func (w *Wizard) Definition() Definition { return w.def }

func (w *Wizard) Name() string { return w.def.Name }

// Step returns the current step, 1-based.
func (w *Wizard) Step() int { return w.step }

// Steps returns N.
func (w *Wizard) Steps() int { return w.def.Steps }

func (w *Wizard) Dirty() bool { return w.dirty }

// StepValid reports the validity flag of a step. Out-of-range steps are never valid.
func (w *Wizard) StepValid(step int) bool {
	if step < 1 || step > w.def.Steps {
		return false
	}
	return w.valid[step-1]
}

// Advance moves to the next step if the current one is valid.
// On the final step it is a no-op apart from marking the form dirty.
func (w *Wizard) Advance() error {
	if !w.valid[w.step-1] {
		return fmt.Errorf("%w: step %d of %s", domain.ErrStepInvalid, w.step, w.def.Name)
	}
	if w.step < w.def.Steps {
		w.step++
	}
	w.dirty = true
	return nil
}

// Retreat moves to the previous step, floored at 1. It reports whether the step changed.
func (w *Wizard) Retreat() bool {
	if w.step <= 1 {
		return false
	}
	w.step--
	return true
}

// SetStepValid records the validity of a step's inputs.
func (w *Wizard) SetStepValid(step int, valid bool) error {
	if step < 1 || step > w.def.Steps {
		return fmt.Errorf("%w: %d not in [1, %d]", domain.ErrStepOutOfRange, step, w.def.Steps)
	}
	w.valid[step-1] = valid
	if valid {
		w.dirty = true
	}
	return nil
}

func (w *Wizard) MarkDirty() { w.dirty = true }

// Reset returns to step 1 and clears every flag.
func (w *Wizard) Reset() {
	w.step = 1
	w.valid = make([]bool, w.def.Steps)
	w.dirty = false
}

// CanSubmit reports whether the wizard is on its final step and that step is valid.
func (w *Wizard) CanSubmit() bool {
	return w.step == w.def.Steps && w.valid[w.step-1]
}

// Submit performs the terminal action and resets the wizard.
func (w *Wizard) Submit() error {
	if w.step != w.def.Steps {
		return fmt.Errorf("%w: %s is on step %d of %d", domain.ErrStepInvalid, w.def.Name, w.step, w.def.Steps)
	}
	if !w.valid[w.step-1] {
		return fmt.Errorf("%w: final step of %s", domain.ErrStepInvalid, w.def.Name)
	}
	w.Reset()
	return nil
}

// Snapshot returns the serializable state.
func (w *Wizard) Snapshot() domain.WizardSnapshot {
	return domain.WizardSnapshot{
		Step:  w.step,
		Steps: w.def.Steps,
		Valid: append([]bool(nil), w.valid...),
		Dirty: w.dirty,
	}
}

// Restore loads a snapshot taken from a wizard with the same number of steps.
func (w *Wizard) Restore(s domain.WizardSnapshot) error {
	if s.Steps != w.def.Steps || len(s.Valid) != w.def.Steps {
		return fmt.Errorf("%w: snapshot has %d steps, %s has %d", domain.ErrStepOutOfRange, s.Steps, w.def.Name, w.def.Steps)
	}
	if s.Step < 1 || s.Step > w.def.Steps {
		return fmt.Errorf("%w: %d not in [1, %d]", domain.ErrStepOutOfRange, s.Step, w.def.Steps)
	}
	w.step = s.Step
	w.valid = append([]bool(nil), s.Valid...)
	w.dirty = s.Dirty
	return nil
}
