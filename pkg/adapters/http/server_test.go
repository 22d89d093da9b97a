package http_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/toolshed"
	api "github.com/aretw0/toolshed/pkg/adapters/http"
	"github.com/aretw0/toolshed/pkg/adapters/memory"
	"github.com/aretw0/toolshed/pkg/auth"
	"github.com/aretw0/toolshed/pkg/domain"
	"github.com/aretw0/toolshed/pkg/observability"
	"github.com/aretw0/toolshed/pkg/session"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fixture struct {
	handler http.Handler
	server  *api.Server
	clock   *clockwork.FakeClock
}

func setup(t *testing.T, opts ...api.Option) *fixture {
	t.Helper()
	stub, err := auth.NewStub(auth.DefaultAccounts(), auth.WithCost(bcrypt.MinCost))
	require.NoError(t, err)

	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	streams := api.NewStreamManager()
	mgr := session.NewManager(memory.NewStore(), session.WithControllerOptions(
		toolshed.WithAuthenticator(stub),
		toolshed.WithClock(clock),
		toolshed.WithLifecycleHooks(streams.Hooks()),
	))
	t.Cleanup(func() { mgr.Close() })

	srv := api.NewServer(mgr, append([]api.Option{api.WithStreams(streams)}, opts...)...)
	return &fixture{handler: srv.Routes(), server: srv, clock: clock}
}

func (f *fixture) call(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)
	return rr
}

func viewOf(t *testing.T, rr *httptest.ResponseRecorder) domain.View {
	t.Helper()
	var view domain.View
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &view), rr.Body.String())
	return view
}

func titles(ns []domain.Notification) []string {
	out := make([]string, len(ns))
	for i, n := range ns {
		out[i] = n.Title
	}
	return out
}

func TestGetHealth(t *testing.T) {
	f := setup(t)
	rr := f.call(t, "GET", "/health", nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
}

func TestGetInfo(t *testing.T) {
	f := setup(t)
	rr := f.call(t, "GET", "/info", nil)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "toolshed-http", resp["app"])
	assert.NotEmpty(t, resp["version"])
	assert.Equal(t, "1.0.0", resp["api_version"])
}

func TestCatalogRoutes(t *testing.T) {
	f := setup(t)

	t.Run("search", func(t *testing.T) {
		rr := f.call(t, "GET", "/catalog?category=Code&limit=2", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		var tools []domain.Tool
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &tools))
		require.NotEmpty(t, tools)
		assert.LessOrEqual(t, len(tools), 2)
		for _, tool := range tools {
			assert.Equal(t, "Code", tool.Category)
		}
	})

	t.Run("bad query", func(t *testing.T) {
		rr := f.call(t, "GET", "/catalog?limit=lots", nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		rr = f.call(t, "GET", "/catalog?colour=red", nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("categories", func(t *testing.T) {
		rr := f.call(t, "GET", "/catalog/categories", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		var categories []string
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &categories))
		assert.Contains(t, categories, "Code")
	})

	t.Run("get", func(t *testing.T) {
		rr := f.call(t, "GET", "/catalog/claude", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"id":"claude"`)

		rr = f.call(t, "GET", "/catalog/nope", nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestCompareFlow(t *testing.T) {
	f := setup(t)

	for _, id := range []string{"chatgpt", "claude", "cursor"} {
		rr := f.call(t, "POST", "/sessions/s1/compare", map[string]string{"tool_id": id})
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	}

	rr := f.call(t, "POST", "/sessions/s1/compare", map[string]string{"tool_id": "perplexity"})
	assert.Equal(t, http.StatusConflict, rr.Code)
	var failed struct {
		Error string       `json:"error"`
		View  *domain.View `json:"view"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &failed))
	require.NotNil(t, failed.View)
	assert.Len(t, failed.View.Snapshot.Compare, 3)
	assert.Contains(t, titles(failed.View.Notifications), "Comparison is full")

	rr = f.call(t, "DELETE", "/sessions/s1/compare/claude", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, viewOf(t, rr).Snapshot.Compare, 2)

	rr = f.call(t, "DELETE", "/sessions/s1/compare/claude", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = f.call(t, "DELETE", "/sessions/s1/compare", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, viewOf(t, rr).Snapshot.Compare)

	rr = f.call(t, "GET", "/sessions", nil)
	assert.JSONEq(t, `["s1"]`, rr.Body.String())
}

func TestNavigationAndSignIn(t *testing.T) {
	f := setup(t)

	rr := f.call(t, "POST", "/sessions/s1/navigate", map[string]any{"screen": "dashboard"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, domain.ScreenAuth, viewOf(t, rr).Snapshot.Route.Screen)

	rr = f.call(t, "POST", "/sessions/s1/navigate", map[string]any{"screen": "nowhere"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = f.call(t, "POST", "/sessions/s1/signin", map[string]string{"email": "demo@toolshed.dev", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = f.call(t, "POST", "/sessions/s1/signin", map[string]string{"email": "demo@toolshed.dev", "password": "demo1234"})
	require.Equal(t, http.StatusOK, rr.Code)
	view := viewOf(t, rr)
	assert.Equal(t, domain.ScreenDashboard, view.Snapshot.Route.Screen)
	require.NotNil(t, view.Snapshot.Context.User)

	rr = f.call(t, "POST", "/sessions/s1/navigate", map[string]any{"screen": "admin"})
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = f.call(t, "PUT", "/sessions/s1/theme", map[string]string{"theme": "dark"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, domain.ThemeDark, viewOf(t, rr).Snapshot.Context.Theme)

	rr = f.call(t, "PUT", "/sessions/s1/theme", map[string]string{"theme": "sepia"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = f.call(t, "POST", "/sessions/s1/signout", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, domain.ScreenLanding, viewOf(t, rr).Snapshot.Route.Screen)
}

func TestWizardRoutes(t *testing.T) {
	f := setup(t)

	rr := f.call(t, "POST", "/sessions/s1/wizards/onboarding/advance", nil)
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = f.call(t, "PUT", "/sessions/s1/wizards/onboarding/steps/1", map[string]bool{"valid": true})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = f.call(t, "POST", "/sessions/s1/wizards/onboarding/advance", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 2, viewOf(t, rr).Snapshot.Wizards["onboarding"].Step)

	rr = f.call(t, "PUT", "/sessions/s1/wizards/onboarding/steps/9", map[string]bool{"valid": true})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = f.call(t, "PUT", "/sessions/s1/wizards/onboarding/steps/two", map[string]bool{"valid": true})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = f.call(t, "POST", "/sessions/s1/wizards/onboarding/jump", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = f.call(t, "POST", "/sessions/s1/wizards/unknown/advance", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = f.call(t, "POST", "/sessions/s1/wizards/onboarding/reset", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, viewOf(t, rr).Snapshot.Wizards["onboarding"].Step)
}

func TestNotificationRoutes(t *testing.T) {
	f := setup(t)

	rr := f.call(t, "POST", "/sessions/s1/notifications", map[string]string{"severity": "info", "title": "Hello"})
	require.Equal(t, http.StatusCreated, rr.Code)
	var created struct {
		ID   string      `json:"id"`
		View domain.View `json:"view"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)
	assert.Equal(t, []string{"Hello"}, titles(created.View.Notifications))

	rr = f.call(t, "POST", "/sessions/s1/notifications", map[string]string{"severity": "loud", "title": "x"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = f.call(t, "DELETE", "/sessions/s1/notifications/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, viewOf(t, rr).Notifications)

	rr = f.call(t, "DELETE", "/sessions/s1/notifications/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestNotify_DurationInMilliseconds(t *testing.T) {
	f := setup(t)

	rr := f.call(t, "POST", "/sessions/s1/notifications", map[string]any{"title": "t", "duration_ms": 100})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var raw struct {
		View struct {
			Notifications []map[string]any `json:"notifications"`
		} `json:"view"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &raw))
	require.Len(t, raw.View.Notifications, 1)
	assert.EqualValues(t, 100, raw.View.Notifications[0]["duration_ms"])

	view := viewOf(t, f.call(t, "GET", "/sessions/s1", nil))
	require.Len(t, view.Notifications, 1)
	n := view.Notifications[0]
	assert.Equal(t, 100*time.Millisecond, n.ExpiresAt.Sub(n.CreatedAt))

	f.clock.Advance(50 * time.Millisecond)
	assert.Len(t, viewOf(t, f.call(t, "GET", "/sessions/s1", nil)).Notifications, 1)

	f.clock.Advance(50 * time.Millisecond)
	assert.Eventually(t, func() bool {
		return len(viewOf(t, f.call(t, "GET", "/sessions/s1", nil)).Notifications) == 0
	}, time.Second, 10*time.Millisecond)

	rr = f.call(t, "POST", "/sessions/s1/notifications", map[string]any{"title": "t", "duration": 100})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCheckoutRoutes(t *testing.T) {
	f := setup(t)
	charge := domain.ChargeRequest{
		CardNumber:  "4242 4242 4242 4242",
		Expiry:      "12/30",
		CVC:         "123",
		AmountCents: 1900,
		Plan:        "pro",
	}

	rr := f.call(t, "POST", "/sessions/s1/checkout", charge)
	require.Equal(t, http.StatusAccepted, rr.Code, rr.Body.String())
	assert.True(t, viewOf(t, rr).CheckoutPending)

	rr = f.call(t, "POST", "/sessions/s1/checkout", charge)
	assert.Equal(t, http.StatusConflict, rr.Code)

	f.clock.Advance(2 * time.Second)
	assert.Eventually(t, func() bool {
		view := viewOf(t, f.call(t, "GET", "/sessions/s1", nil))
		return !view.CheckoutPending && assert.ObjectsAreEqual([]string{"Payment successful"}, titles(view.Notifications))
	}, time.Second, 10*time.Millisecond)

	bad := charge
	bad.CVC = "1"
	rr = f.call(t, "POST", "/sessions/s1/checkout", bad)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = f.call(t, "DELETE", "/sessions/s1/checkout", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDeleteSession(t *testing.T) {
	f := setup(t)
	f.call(t, "POST", "/sessions/s1/compare", map[string]string{"tool_id": "claude"})

	rr := f.call(t, "DELETE", "/sessions/s1", nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = f.call(t, "GET", "/sessions/s1", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, viewOf(t, rr).Snapshot.Compare)
}

func TestRejectsUnknownBodyFields(t *testing.T) {
	f := setup(t)
	rr := f.call(t, "POST", "/sessions/s1/compare", map[string]string{"tool": "claude"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	stub, err := auth.NewStub(auth.DefaultAccounts(), auth.WithCost(bcrypt.MinCost))
	require.NoError(t, err)
	mgr := session.NewManager(memory.NewStore(), session.WithControllerOptions(
		toolshed.WithAuthenticator(stub),
		toolshed.WithLifecycleHooks(metrics.Hooks()),
	))
	t.Cleanup(func() { mgr.Close() })
	handler := api.NewHandler(mgr, api.WithMetrics(reg))

	req := httptest.NewRequest("POST", "/sessions/m1/compare", strings.NewReader(`{"tool_id":"claude"}`))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `toolshed_compare_events_total{reason="",type="compare_add"} 1`)
}

func TestSubscribeEvents_Session(t *testing.T) {
	f := setup(t)
	ts := httptest.NewServer(f.handler)
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", ts.URL+"/sessions/sess-1/events?watch=compare", nil)
	require.NoError(t, err)
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := make(chan string, 16)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	next := func() string {
		for {
			select {
			case line, ok := <-lines:
				if !ok {
					return ""
				}
				if strings.HasPrefix(line, "data: ") {
					return strings.TrimPrefix(line, "data: ")
				}
			case <-time.After(2 * time.Second):
				t.Fatal("timed out waiting for event")
			}
		}
	}

	assert.Equal(t, "connected", next())
	require.Eventually(t, func() bool { return f.server.Streams.Subscribers("sess-1") == 1 }, time.Second, 5*time.Millisecond)

	// Route changes are filtered out; the compare change is delivered.
	f.call(t, "POST", "/sessions/sess-1/navigate", map[string]any{"screen": "discover"})
	f.call(t, "POST", "/sessions/sess-1/compare", map[string]string{"tool_id": "claude"})

	var diff domain.SnapshotDiff
	require.NoError(t, json.Unmarshal([]byte(next()), &diff))
	assert.Equal(t, "sess-1", diff.SessionID)
	require.Len(t, diff.Compare, 1)
	assert.Equal(t, "claude", diff.Compare[0].ID)
	assert.Nil(t, diff.Route)
}
