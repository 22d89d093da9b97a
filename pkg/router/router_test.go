package router_test

import (
	"testing"

	"github.com/aretw0/toolshed/pkg/domain"
	"github.com/aretw0/toolshed/pkg/router"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouter_ExactlyOneActiveScreen(t *testing.T) {
	r, err := router.New(domain.Landing{})
	require.NoError(t, err)

	steps := []struct {
		target string
		params domain.Params
		want   domain.Route
	}{
		{"discover", domain.Params{"query": "writing"}, domain.Discover{Query: "writing"}},
		{"tool-detail", domain.Params{"tool_id": "chatgpt"}, domain.ToolDetail{ToolID: "chatgpt"}},
		{"compare", nil, domain.Compare{}},
		{"onboarding-step-2", nil, domain.Onboarding{Step: 2}},
		{"landing", nil, domain.Landing{}},
	}
	for _, s := range steps {
		require.NoError(t, r.NavigateTo(s.target, s.params), s.target)
		if diff := cmp.Diff(s.want, r.Current()); diff != "" {
			t.Errorf("after %s (-want +got):\n%s", s.target, diff)
		}
		assert.Equal(t, s.want.Screen(), r.Screen())
	}
}

func TestRouter_RejectsInvalidTargets(t *testing.T) {
	r, err := router.New(domain.Discover{Query: "x"})
	require.NoError(t, err)
	before := r.Current()

	tests := []struct {
		name   string
		target string
		params domain.Params
		want   error
	}{
		{"unknown screen", "pricing", nil, domain.ErrUnknownScreen},
		{"empty target", "", nil, domain.ErrUnknownScreen},
		{"missing id", "tool-detail", nil, domain.ErrInvalidParams},
		{"unknown param", "compare", domain.Params{"tool_id": "a"}, domain.ErrInvalidParams},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.NavigateTo(tt.target, tt.params)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, before, r.Current(), "state must not change on refusal")
		})
	}

	assert.ErrorIs(t, r.Navigate(nil), domain.ErrInvalidParams)
}

func TestRouter_GuardRedirectsAndRefuses(t *testing.T) {
	var seen [][3]domain.Screen
	guard := func(from, to domain.Route) (domain.Route, error) {
		switch to.Screen() {
		case domain.ScreenDashboard:
			return domain.Auth{Next: domain.ScreenDashboard}, nil
		case domain.ScreenAdmin:
			return nil, domain.ErrForbidden
		}
		return to, nil
	}
	observer := func(from, to, requested domain.Route) {
		seen = append(seen, [3]domain.Screen{from.Screen(), to.Screen(), requested.Screen()})
	}

	r, err := router.New(domain.Landing{}, router.WithGuard(guard), router.WithObserver(observer))
	require.NoError(t, err)

	require.NoError(t, r.Navigate(domain.Dashboard{}))
	assert.Equal(t, domain.Auth{Next: domain.ScreenDashboard}, r.Current())

	assert.ErrorIs(t, r.Navigate(domain.Admin{}), domain.ErrForbidden)
	assert.Equal(t, domain.ScreenAuth, r.Screen())

	require.NoError(t, r.Navigate(domain.Compare{}))

	want := [][3]domain.Screen{
		{domain.ScreenLanding, domain.ScreenAuth, domain.ScreenDashboard},
		{domain.ScreenAuth, domain.ScreenCompare, domain.ScreenCompare},
	}
	if diff := cmp.Diff(want, seen); diff != "" {
		t.Errorf("observed transitions (-want +got):\n%s", diff)
	}
}

func TestRouter_GuardRedirectMustBeValid(t *testing.T) {
	guard := func(from, to domain.Route) (domain.Route, error) {
		return domain.ToolDetail{}, nil
	}
	r, err := router.New(domain.Landing{}, router.WithGuard(guard))
	require.NoError(t, err)

	assert.ErrorIs(t, r.Navigate(domain.Compare{}), domain.ErrInvalidParams)
	assert.Equal(t, domain.ScreenLanding, r.Screen())
}

func TestRouter_NewAndRestoreValidate(t *testing.T) {
	_, err := router.New(domain.NewsDetail{})
	assert.ErrorIs(t, err, domain.ErrInvalidParams)

	r, err := router.New(domain.Landing{})
	require.NoError(t, err)
	assert.Error(t, r.Restore(domain.Onboarding{Step: 9}))
	require.NoError(t, r.Restore(domain.NewsDetail{ArticleID: "a1"}))
	assert.Equal(t, domain.ScreenNewsDetail, r.Screen())
}
