package toolshed_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/toolshed"
	"github.com/aretw0/toolshed/pkg/auth"
	"github.com/aretw0/toolshed/pkg/domain"
	"github.com/aretw0/toolshed/pkg/payment"
	"github.com/aretw0/toolshed/pkg/ports"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recorder struct {
	mu     sync.Mutex
	events []domain.EventType
}

func (r *recorder) hooks() domain.LifecycleHooks {
	add := func(t domain.EventType) {
		r.mu.Lock()
		r.events = append(r.events, t)
		r.mu.Unlock()
	}
	return domain.LifecycleHooks{
		OnNavigate:     func(e *domain.NavigationEvent) { add(e.Type) },
		OnCompare:      func(e *domain.CompareEvent) { add(e.Type) },
		OnWizard:       func(e *domain.WizardEvent) { add(e.Type) },
		OnNotification: func(e *domain.NotificationEvent) { add(e.Type) },
		OnAuth:         func(e *domain.AuthEvent) { add(e.Type) },
		OnCheckout:     func(e *domain.CheckoutEvent) { add(e.Type) },
	}
}

func (r *recorder) has(t domain.EventType) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e == t {
			return true
		}
	}
	return false
}

func newController(t *testing.T, opts ...toolshed.Option) (*toolshed.Controller, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClockAt(time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC))
	stub, err := auth.NewStub(auth.DefaultAccounts(), auth.WithCost(bcrypt.MinCost))
	require.NoError(t, err)

	base := []toolshed.Option{
		toolshed.WithClock(clock),
		toolshed.WithAuthenticator(stub),
		toolshed.WithSessionID("test-session"),
	}
	ctl, err := toolshed.New(append(base, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { ctl.Close() })
	return ctl, clock
}

func titles(ns []domain.Notification) []string {
	out := make([]string, 0, len(ns))
	for _, n := range ns {
		out = append(out, n.Title)
	}
	return out
}

func TestController_NoBackStack(t *testing.T) {
	ctl, _ := newController(t)

	require.NoError(t, ctl.NavigateTo("tool-detail", domain.Params{"tool_id": "chatgpt"}))
	assert.Equal(t, domain.ToolDetail{ToolID: "chatgpt"}, ctl.Current())

	require.NoError(t, ctl.NavigateTo("discover", nil))
	assert.Equal(t, domain.ScreenDiscover, ctl.Screen())
	assert.Equal(t, domain.Discover{}, ctl.Current(), "no params of tool-detail survive")
}

func TestController_UnknownTargetRejected(t *testing.T) {
	ctl, _ := newController(t)
	require.NoError(t, ctl.NavigateTo("compare", nil))

	err := ctl.NavigateTo("pricing", nil)
	assert.ErrorIs(t, err, domain.ErrUnknownScreen)
	assert.Equal(t, domain.ScreenCompare, ctl.Screen())
}

func TestController_CompareToasts(t *testing.T) {
	ctx := context.Background()
	ctl, _ := newController(t)

	for _, id := range []string{"chatgpt", "claude", "midjourney"} {
		require.NoError(t, ctl.AddToCompare(ctx, id))
	}
	assert.True(t, ctl.CanCompare())

	err := ctl.AddToCompare(ctx, "cursor")
	assert.ErrorIs(t, err, domain.ErrCapacityExceeded)
	assert.Len(t, ctl.CompareItems(), 3)

	err = ctl.AddToCompare(ctx, "claude")
	assert.ErrorIs(t, err, domain.ErrDuplicateItem)

	err = ctl.AddToCompare(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrToolNotFound)

	toasts := ctl.Notifications()
	require.Len(t, toasts, 5)
	assert.Equal(t, domain.SeverityWarning, toasts[3].Severity)
	assert.Equal(t, "Comparison is full", toasts[3].Title)
	assert.Equal(t, domain.SeverityInfo, toasts[4].Severity)

	assert.True(t, ctl.RemoveFromCompare("claude"))
	assert.False(t, ctl.RemoveFromCompare("claude"))
	ids := []string{}
	for _, it := range ctl.CompareItems() {
		ids = append(ids, it.ID)
	}
	assert.Equal(t, []string{"chatgpt", "midjourney"}, ids)

	require.NoError(t, ctl.ClearCompare())
	assert.False(t, ctl.CanCompare())
}

func TestController_ToastsExpire(t *testing.T) {
	ctl, clock := newController(t, toolshed.WithNotificationDuration(2*time.Second))

	id, err := ctl.Notify(domain.NotificationRequest{Severity: domain.SeverityInfo, Title: "Saved"})
	require.NoError(t, err)
	_, err = ctl.Notify(domain.NotificationRequest{Title: "Long", Duration: 10 * time.Second})
	require.NoError(t, err)

	_, err = ctl.Notify(domain.NotificationRequest{Severity: "loud"})
	assert.ErrorIs(t, err, domain.ErrInvalidParams)

	clock.Advance(2 * time.Second)
	assert.Eventually(t, func() bool { return len(ctl.Notifications()) == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, []string{"Long"}, titles(ctl.Notifications()))
	assert.False(t, ctl.Dismiss(id), "already expired")
}

func TestController_GuardAndSignIn(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}
	ctl, _ := newController(t, toolshed.WithLifecycleHooks(rec.hooks()))

	require.NoError(t, ctl.Navigate(domain.Wallet{}))
	assert.Equal(t, domain.Auth{Mode: domain.AuthSignIn, Next: domain.ScreenWallet}, ctl.Current())

	err := ctl.SignIn(ctx, "demo@toolshed.dev", "wrong")
	assert.ErrorIs(t, err, domain.ErrAuthFailure)
	assert.Equal(t, domain.ScreenAuth, ctl.Screen(), "failed sign-in stays put")
	assert.Equal(t, domain.SeverityError, ctl.Notifications()[0].Severity)

	require.NoError(t, ctl.SignIn(ctx, "demo@toolshed.dev", "demo1234"))
	assert.Equal(t, domain.ScreenWallet, ctl.Screen())
	assert.True(t, ctl.Session().SignedIn())

	assert.ErrorIs(t, ctl.Navigate(domain.Admin{}), domain.ErrForbidden)
	assert.Equal(t, domain.ScreenWallet, ctl.Screen())

	require.NoError(t, ctl.SignOut())
	assert.Equal(t, domain.ScreenLanding, ctl.Screen())
	assert.False(t, ctl.Session().SignedIn())

	assert.True(t, rec.has(domain.EventSignInFailed))
	assert.True(t, rec.has(domain.EventSignIn))
	assert.True(t, rec.has(domain.EventSignOut))
	assert.True(t, rec.has(domain.EventNavigate))
}

func TestController_AdminSignInToModeration(t *testing.T) {
	ctl, _ := newController(t)
	require.NoError(t, ctl.Navigate(domain.Moderation{}))
	require.NoError(t, ctl.SignIn(context.Background(), "admin@toolshed.dev", "admin1234"))
	assert.Equal(t, domain.ScreenModeration, ctl.Screen())
}

func TestController_MemberSignInToAdminFallsBackToDashboard(t *testing.T) {
	ctl, _ := newController(t)
	require.NoError(t, ctl.Navigate(domain.Admin{}))
	require.NoError(t, ctl.SignIn(context.Background(), "demo@toolshed.dev", "demo1234"))
	assert.Equal(t, domain.ScreenDashboard, ctl.Screen())
}

func TestController_OnboardingWizardFollowsScreens(t *testing.T) {
	ctl, _ := newController(t)

	assert.ErrorIs(t, ctl.AdvanceWizard("onboarding"), domain.ErrStepInvalid)
	assert.ErrorIs(t, ctl.AdvanceWizard("missing"), domain.ErrWizardNotFound)

	require.NoError(t, ctl.SetWizardStepValid("onboarding", 1, true))
	require.NoError(t, ctl.AdvanceWizard("onboarding"))
	assert.Equal(t, domain.ScreenOnboarding2, ctl.Screen())

	require.NoError(t, ctl.SetWizardStepValid("onboarding", 2, true))
	require.NoError(t, ctl.AdvanceWizard("onboarding"))
	assert.Equal(t, domain.ScreenOnboarding3, ctl.Screen())

	require.NoError(t, ctl.RetreatWizard("onboarding"))
	assert.Equal(t, domain.ScreenOnboarding2, ctl.Screen())
	require.NoError(t, ctl.AdvanceWizard("onboarding"))

	assert.ErrorIs(t, ctl.SubmitWizard("onboarding"), domain.ErrStepInvalid)
	require.NoError(t, ctl.SetWizardStepValid("onboarding", 3, true))
	require.NoError(t, ctl.SubmitWizard("onboarding"))

	status, err := ctl.WizardStatus("onboarding")
	require.NoError(t, err)
	assert.Equal(t, 1, status.Step)
	assert.False(t, status.Dirty)
	// dashboard is protected, so the submit lands on sign-in
	assert.Equal(t, domain.Auth{Mode: domain.AuthSignIn, Next: domain.ScreenDashboard}, ctl.Current())
	assert.Contains(t, titles(ctl.Notifications()), "Submitted")
}

func TestController_ResetWizardReturnsToFirstStep(t *testing.T) {
	rec := &recorder{}
	ctl, _ := newController(t, toolshed.WithLifecycleHooks(rec.hooks()))

	require.NoError(t, ctl.SetWizardStepValid("onboarding", 1, true))
	require.NoError(t, ctl.AdvanceWizard("onboarding"))
	require.NoError(t, ctl.SetWizardStepValid("onboarding", 2, true))
	require.NoError(t, ctl.AdvanceWizard("onboarding"))
	require.Equal(t, domain.ScreenOnboarding3, ctl.Screen())

	require.NoError(t, ctl.ResetWizard("onboarding"))

	assert.Equal(t, domain.ScreenOnboarding1, ctl.Screen())
	status, err := ctl.WizardStatus("onboarding")
	require.NoError(t, err)
	assert.Equal(t, domain.WizardSnapshot{Step: 1, Steps: 3, Valid: []bool{false, false, false}}, status)
	assert.True(t, rec.has(domain.EventWizardReset))

	assert.ErrorIs(t, ctl.ResetWizard("missing"), domain.ErrWizardNotFound)
}

func TestController_CheckoutSettles(t *testing.T) {
	ctx := context.Background()
	ctl, clock := newController(t)

	req := domain.ChargeRequest{CardNumber: "4242424242424242", Expiry: "12/30", CVC: "123", AmountCents: 1900, Plan: "pro"}
	require.NoError(t, ctl.Checkout(ctx, req))
	assert.True(t, ctl.CheckoutPending())
	assert.ErrorIs(t, ctl.Checkout(ctx, req), domain.ErrCheckoutInProgress)

	clock.Advance(payment.DefaultDelay)
	assert.Eventually(t, func() bool { return !ctl.CheckoutPending() }, time.Second, time.Millisecond)
	assert.Contains(t, titles(ctl.Notifications()), "Payment successful")
}

// instantGateway settles every charge before Submit returns.
type instantGateway struct {
	result domain.ChargeResult
}

func (g instantGateway) Submit(_ context.Context, _ domain.ChargeRequest, done func(domain.ChargeResult)) (ports.Cancellable, error) {
	done(g.result)
	return nil, nil
}

func TestController_CheckoutWithSynchronousGateway(t *testing.T) {
	rec := &recorder{}
	ctl, _ := newController(t,
		toolshed.WithPaymentGateway(instantGateway{result: domain.ChargeResult{Approved: true, Reference: "ch_1"}}),
		toolshed.WithLifecycleHooks(rec.hooks()),
	)

	errc := make(chan error, 1)
	go func() {
		errc <- ctl.Checkout(context.Background(), domain.ChargeRequest{CardNumber: "4242424242424242", Expiry: "12/30", CVC: "123", AmountCents: 1900})
	}()
	select {
	case err := <-errc:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("checkout blocked on a synchronous settlement")
	}

	assert.False(t, ctl.CheckoutPending())
	assert.Equal(t, []string{"Payment successful"}, titles(ctl.Notifications()))

	rec.mu.Lock()
	defer rec.mu.Unlock()
	started, settled := -1, -1
	for i, e := range rec.events {
		switch e {
		case domain.EventCheckoutStarted:
			started = i
		case domain.EventCheckoutSettled:
			settled = i
		}
	}
	require.NotEqual(t, -1, settled)
	assert.Less(t, started, settled)
	assert.NotEqual(t, -1, started)
}

func TestController_CheckoutDeclinedAndInvalid(t *testing.T) {
	ctx := context.Background()
	ctl, clock := newController(t)

	bad := domain.ChargeRequest{CardNumber: "1234", Expiry: "12/30", CVC: "123", AmountCents: 100}
	assert.ErrorIs(t, ctl.Checkout(ctx, bad), domain.ErrInvalidCard)
	assert.False(t, ctl.CheckoutPending())

	declined := domain.ChargeRequest{CardNumber: "4000000000000002", Expiry: "12/30", CVC: "123", AmountCents: 100}
	require.NoError(t, ctl.Checkout(ctx, declined))
	clock.Advance(payment.DefaultDelay)
	assert.Eventually(t, func() bool { return !ctl.CheckoutPending() }, time.Second, time.Millisecond)
	assert.Contains(t, titles(ctl.Notifications()), "Payment declined")
}

func TestController_CancelCheckout(t *testing.T) {
	ctl, clock := newController(t)

	req := domain.ChargeRequest{CardNumber: "4242424242424242", Expiry: "12/30", CVC: "123", AmountCents: 100}
	require.NoError(t, ctl.Checkout(context.Background(), req))
	assert.True(t, ctl.CancelCheckout())
	assert.False(t, ctl.CancelCheckout())

	clock.Advance(time.Minute)
	time.Sleep(10 * time.Millisecond)
	assert.NotContains(t, titles(ctl.Notifications()), "Payment successful")
}

func TestController_SnapshotRestore(t *testing.T) {
	ctx := context.Background()
	ctl, _ := newController(t)

	require.NoError(t, ctl.SignIn(ctx, "admin@toolshed.dev", "admin1234"))
	require.NoError(t, ctl.AddToCompare(ctx, "chatgpt"))
	require.NoError(t, ctl.SetWizardStepValid("submit-tool", 1, true))
	require.NoError(t, ctl.AdvanceWizard("submit-tool"))
	require.NoError(t, ctl.SetTheme(domain.ThemeDark))
	require.NoError(t, ctl.NavigateTo("tool-detail", domain.Params{"tool_id": "chatgpt"}))

	snap := ctl.Snapshot()
	assert.Equal(t, "test-session", snap.SessionID)

	other, _ := newController(t)
	require.NoError(t, other.Restore(snap))
	assert.Equal(t, snap, other.Snapshot())
	assert.Empty(t, other.Notifications(), "toasts are not part of a snapshot")

	broken := snap.Clone()
	broken.Route = domain.RouteRecord{Screen: "nowhere"}
	assert.ErrorIs(t, other.Restore(broken), domain.ErrUnknownScreen)
	assert.Equal(t, snap, other.Snapshot(), "a failed restore changes nothing")

	assert.Error(t, ctl.SetTheme("sepia"))
}

func TestController_RestoreAppliesAccess(t *testing.T) {
	member := &domain.User{ID: "u1", Email: "demo@toolshed.dev", Role: domain.RoleMember}
	admin := &domain.User{ID: "u2", Email: "admin@toolshed.dev", Role: domain.RoleAdmin}

	tests := []struct {
		name   string
		screen domain.Screen
		user   *domain.User
		want   domain.Route
	}{
		{"signed out on admin", domain.ScreenAdmin, nil, domain.Auth{Mode: domain.AuthSignIn, Next: domain.ScreenAdmin}},
		{"signed out on wallet", domain.ScreenWallet, nil, domain.Auth{Mode: domain.AuthSignIn, Next: domain.ScreenWallet}},
		{"member on admin", domain.ScreenAdmin, member, domain.Dashboard{}},
		{"member on wallet", domain.ScreenWallet, member, domain.Wallet{}},
		{"admin on admin", domain.ScreenAdmin, admin, domain.Admin{}},
		{"signed out on discover", domain.ScreenDiscover, nil, domain.Discover{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctl, _ := newController(t)
			snap := ctl.Snapshot()
			snap.Route = domain.RouteRecord{Screen: tt.screen}
			snap.Context.User = tt.user

			require.NoError(t, ctl.Restore(snap))
			assert.Equal(t, tt.want, ctl.Current())
		})
	}
}

func TestController_CloseCancelsTimers(t *testing.T) {
	ctl, clock := newController(t)

	_, err := ctl.Notify(domain.NotificationRequest{Title: "pending"})
	require.NoError(t, err)
	req := domain.ChargeRequest{CardNumber: "4242424242424242", Expiry: "12/30", CVC: "123", AmountCents: 100}
	require.NoError(t, ctl.Checkout(context.Background(), req))

	require.NoError(t, ctl.Close())
	require.NoError(t, ctl.Close())
	assert.Empty(t, ctl.Notifications())
	assert.False(t, ctl.CheckoutPending())

	assert.ErrorIs(t, ctl.NavigateTo("discover", nil), domain.ErrClosed)
	assert.ErrorIs(t, ctl.AddToCompare(context.Background(), "chatgpt"), domain.ErrClosed)

	clock.Advance(time.Hour)
}

func TestController_View(t *testing.T) {
	ctx := context.Background()
	ctl, _ := newController(t)
	require.NoError(t, ctl.AddToCompare(ctx, "chatgpt"))
	require.NoError(t, ctl.AddToCompare(ctx, "claude"))

	view := ctl.View()
	assert.True(t, view.CanCompare)
	assert.Len(t, view.Notifications, 2)
	assert.Len(t, view.Snapshot.Compare, 2)
	assert.False(t, view.CheckoutPending)
}

func TestController_ConcurrentMutations(t *testing.T) {
	ctx := context.Background()
	ctl, _ := newController(t)

	var wg sync.WaitGroup
	for _, id := range []string{"chatgpt", "claude", "midjourney", "cursor", "perplexity", "runway"} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_ = ctl.AddToCompare(ctx, id)
			_ = ctl.NavigateTo("discover", domain.Params{"query": id})
		}(id)
	}
	wg.Wait()

	assert.Len(t, ctl.CompareItems(), 3)
	assert.Equal(t, domain.ScreenDiscover, ctl.Screen())
}
