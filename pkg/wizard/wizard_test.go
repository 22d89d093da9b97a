package wizard_test

import (
	"testing"

	"github.com/aretw0/toolshed/pkg/domain"
	"github.com/aretw0/toolshed/pkg/wizard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWizard(t *testing.T, steps int) *wizard.Wizard {
	t.Helper()
	w, err := wizard.New(wizard.Definition{Name: "form", Steps: steps})
	require.NoError(t, err)
	return w
}

func TestWizard_AdvanceGatedByValidity(t *testing.T) {
	w := newWizard(t, 3)

	err := w.Advance()
	assert.ErrorIs(t, err, domain.ErrStepInvalid)
	assert.Equal(t, 1, w.Step())
	assert.False(t, w.Dirty())

	require.NoError(t, w.SetStepValid(1, true))
	require.NoError(t, w.Advance())
	assert.Equal(t, 2, w.Step())
	assert.True(t, w.Dirty())

	assert.ErrorIs(t, w.Advance(), domain.ErrStepInvalid)
	assert.Equal(t, 2, w.Step())
}

func TestWizard_StepStaysInRange(t *testing.T) {
	w := newWizard(t, 3)
	for step := 1; step <= 3; step++ {
		require.NoError(t, w.SetStepValid(step, true))
	}

	for i := 0; i < 10; i++ {
		require.NoError(t, w.Advance())
		assert.GreaterOrEqual(t, w.Step(), 1)
		assert.LessOrEqual(t, w.Step(), 3)
	}
	assert.Equal(t, 3, w.Step())

	for i := 0; i < 10; i++ {
		w.Retreat()
		assert.GreaterOrEqual(t, w.Step(), 1)
	}
	assert.Equal(t, 1, w.Step())
	assert.False(t, w.Retreat())
}

func TestWizard_RetreatIgnoresValidity(t *testing.T) {
	w := newWizard(t, 2)
	require.NoError(t, w.SetStepValid(1, true))
	require.NoError(t, w.Advance())
	require.NoError(t, w.SetStepValid(1, false))

	assert.True(t, w.Retreat())
	assert.Equal(t, 1, w.Step())
}

func TestWizard_SetStepValidOutOfRange(t *testing.T) {
	w := newWizard(t, 2)
	assert.ErrorIs(t, w.SetStepValid(0, true), domain.ErrStepOutOfRange)
	assert.ErrorIs(t, w.SetStepValid(3, true), domain.ErrStepOutOfRange)
	assert.False(t, w.StepValid(3))
}

func TestWizard_ResetFromAnyState(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, w *wizard.Wizard)
	}{
		{"fresh", func(*testing.T, *wizard.Wizard) {}},
		{"dirty only", func(_ *testing.T, w *wizard.Wizard) { w.MarkDirty() }},
		{"middle step", func(t *testing.T, w *wizard.Wizard) {
			require.NoError(t, w.SetStepValid(1, true))
			require.NoError(t, w.Advance())
			require.NoError(t, w.SetStepValid(2, true))
		}},
		{"final step all valid", func(t *testing.T, w *wizard.Wizard) {
			for step := 1; step <= 4; step++ {
				require.NoError(t, w.SetStepValid(step, true))
			}
			for i := 0; i < 3; i++ {
				require.NoError(t, w.Advance())
			}
		}},
		{"retreated with later steps valid", func(t *testing.T, w *wizard.Wizard) {
			require.NoError(t, w.SetStepValid(1, true))
			require.NoError(t, w.Advance())
			require.NoError(t, w.SetStepValid(4, true))
			w.Retreat()
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newWizard(t, 4)
			tt.setup(t, w)

			w.Reset()

			assert.Equal(t, domain.WizardSnapshot{Step: 1, Steps: 4, Valid: []bool{false, false, false, false}}, w.Snapshot())
			assert.False(t, w.CanSubmit())
		})
	}
}

func TestWizard_Submit(t *testing.T) {
	w := newWizard(t, 2)

	assert.ErrorIs(t, w.Submit(), domain.ErrStepInvalid, "not on final step")

	require.NoError(t, w.SetStepValid(1, true))
	require.NoError(t, w.Advance())
	assert.False(t, w.CanSubmit())
	assert.ErrorIs(t, w.Submit(), domain.ErrStepInvalid, "final step invalid")

	require.NoError(t, w.SetStepValid(2, true))
	assert.True(t, w.CanSubmit())
	require.NoError(t, w.Submit())

	assert.Equal(t, 1, w.Step())
	assert.False(t, w.Dirty())
	assert.False(t, w.StepValid(1))
}

func TestWizard_SnapshotRestore(t *testing.T) {
	w := newWizard(t, 3)
	require.NoError(t, w.SetStepValid(1, true))
	require.NoError(t, w.Advance())

	snap := w.Snapshot()
	assert.Equal(t, domain.WizardSnapshot{Step: 2, Steps: 3, Valid: []bool{true, false, false}, Dirty: true}, snap)

	other := newWizard(t, 3)
	require.NoError(t, other.Restore(snap))
	assert.Equal(t, snap, other.Snapshot())

	snap.Valid[0] = false
	assert.True(t, other.StepValid(1), "restore must copy the flags")

	mismatch := newWizard(t, 4)
	assert.ErrorIs(t, mismatch.Restore(snap), domain.ErrStepOutOfRange)
}

func TestDefinition_Validate(t *testing.T) {
	tests := []struct {
		name string
		def  wizard.Definition
		ok   bool
	}{
		{"defaults onboarding", wizard.Defaults()[0], true},
		{"defaults submit", wizard.Defaults()[1], true},
		{"no name", wizard.Definition{Steps: 1}, false},
		{"zero steps", wizard.Definition{Name: "x"}, false},
		{"screens mismatch", wizard.Definition{Name: "x", Steps: 2, Screens: []domain.Screen{domain.ScreenLanding}}, false},
		{"unknown screen", wizard.Definition{Name: "x", Steps: 1, Screens: []domain.Screen{"nowhere"}}, false},
		{"unknown submit route", wizard.Definition{Name: "x", Steps: 1, SubmitRoute: "nowhere"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.def.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestDefinition_ScreenFor(t *testing.T) {
	def := wizard.Defaults()[0]
	s, ok := def.ScreenFor(2)
	assert.True(t, ok)
	assert.Equal(t, domain.ScreenOnboarding2, s)

	_, ok = def.ScreenFor(4)
	assert.False(t, ok)
}
