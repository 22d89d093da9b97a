package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aretw0/toolshed"
	"github.com/aretw0/toolshed/pkg/domain"
	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

type navigateRequest struct {
	Screen string        `json:"screen"`
	Params domain.Params `json:"params,omitempty"`
}

type compareRequest struct {
	ToolID string `json:"tool_id"`
}

type stepRequest struct {
	Valid bool `json:"valid"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type themeRequest struct {
	Theme domain.Theme `json:"theme"`
}

type notifyResponse struct {
	ID   string      `json:"id"`
	View domain.View `json:"view"`
}

// do runs fn on the session's controller and broadcasts the snapshot diff.
// The returned view reflects the controller after fn, even when fn failed.
func (s *Server) do(r *http.Request, fn func(context.Context, *toolshed.Controller) error) (*domain.View, error) {
	sid := chi.URLParam(r, "sid")

	var before, after *domain.Snapshot
	var view *domain.View
	err := s.Sessions.Do(r.Context(), sid, func(ctx context.Context, ctl *toolshed.Controller) error {
		before = ctl.Snapshot()
		fnErr := fn(ctx, ctl)
		after = ctl.Snapshot()
		v := ctl.View()
		view = &v
		return fnErr
	})
	if before != nil && after != nil {
		s.publish(sid, before, after)
	}
	return view, err
}

// mutate is do followed by the standard response: the view on success.
func (s *Server) mutate(w http.ResponseWriter, r *http.Request, status int, fn func(context.Context, *toolshed.Controller) error) {
	view, err := s.do(r, fn)
	if err != nil {
		s.fail(w, r, err, view)
		return
	}
	s.writeJSON(w, status, view)
}

func (s *Server) publish(sid string, before, after *domain.Snapshot) {
	diff := domain.Diff(before, after)
	if diff == nil {
		return
	}
	data, err := json.Marshal(diff)
	if err != nil {
		s.logger.Error("diff encode failed", "session_id", sid, "err", err)
		return
	}
	s.Streams.Broadcast(sid, string(data))
}

// ListSessions handles GET /sessions.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Sessions.List(r.Context())
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, http.StatusOK, ids)
}

// GetSession handles GET /sessions/{sid}. Unknown sessions are created.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	view, err := s.Sessions.View(r.Context(), chi.URLParam(r, "sid"))
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}
	s.writeJSON(w, http.StatusOK, view)
}

// DeleteSession handles DELETE /sessions/{sid}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.Sessions.Delete(r.Context(), chi.URLParam(r, "sid")); err != nil {
		s.fail(w, r, err, nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Navigate handles POST /sessions/{sid}/navigate.
func (s *Server) Navigate(w http.ResponseWriter, r *http.Request) {
	var body navigateRequest
	if err := decode(r, &body); err != nil {
		s.badRequest(w, "invalid request body", err)
		return
	}
	s.mutate(w, r, http.StatusOK, func(_ context.Context, ctl *toolshed.Controller) error {
		return ctl.NavigateTo(body.Screen, body.Params)
	})
}

// AddToCompare handles POST /sessions/{sid}/compare.
func (s *Server) AddToCompare(w http.ResponseWriter, r *http.Request) {
	var body compareRequest
	if err := decode(r, &body); err != nil {
		s.badRequest(w, "invalid request body", err)
		return
	}
	s.mutate(w, r, http.StatusOK, func(ctx context.Context, ctl *toolshed.Controller) error {
		return ctl.AddToCompare(ctx, body.ToolID)
	})
}

// ClearCompare handles DELETE /sessions/{sid}/compare.
func (s *Server) ClearCompare(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, http.StatusOK, func(_ context.Context, ctl *toolshed.Controller) error {
		return ctl.ClearCompare()
	})
}

// RemoveFromCompare handles DELETE /sessions/{sid}/compare/{toolID}.
func (s *Server) RemoveFromCompare(w http.ResponseWriter, r *http.Request) {
	toolID := chi.URLParam(r, "toolID")
	s.mutate(w, r, http.StatusOK, func(_ context.Context, ctl *toolshed.Controller) error {
		if !ctl.RemoveFromCompare(toolID) {
			return fmt.Errorf("%w: %q is not in the comparison", errNotFound, toolID)
		}
		return nil
	})
}

// WizardAction handles POST /sessions/{sid}/wizards/{name}/{action}.
func (s *Server) WizardAction(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var op func(*toolshed.Controller) error
	switch action := chi.URLParam(r, "action"); action {
	case "advance":
		op = func(ctl *toolshed.Controller) error { return ctl.AdvanceWizard(name) }
	case "retreat":
		op = func(ctl *toolshed.Controller) error { return ctl.RetreatWizard(name) }
	case "reset":
		op = func(ctl *toolshed.Controller) error { return ctl.ResetWizard(name) }
	case "submit":
		op = func(ctl *toolshed.Controller) error { return ctl.SubmitWizard(name) }
	case "dirty":
		op = func(ctl *toolshed.Controller) error { return ctl.MarkWizardDirty(name) }
	default:
		s.fail(w, r, fmt.Errorf("%w: wizard action %q", errNotFound, action), nil)
		return
	}

	s.mutate(w, r, http.StatusOK, func(_ context.Context, ctl *toolshed.Controller) error {
		return op(ctl)
	})
}

// SetWizardStep handles PUT /sessions/{sid}/wizards/{name}/steps/{step}.
func (s *Server) SetWizardStep(w http.ResponseWriter, r *http.Request) {
	var step int
	err := runtime.BindStyledParameterWithOptions("simple", "step", chi.URLParam(r, "step"), &step,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Required: true})
	if err != nil {
		s.badRequest(w, "step must be a number", err)
		return
	}
	var body stepRequest
	if err := decode(r, &body); err != nil {
		s.badRequest(w, "invalid request body", err)
		return
	}
	name := chi.URLParam(r, "name")
	s.mutate(w, r, http.StatusOK, func(_ context.Context, ctl *toolshed.Controller) error {
		return ctl.SetWizardStepValid(name, step, body.Valid)
	})
}

// Notify handles POST /sessions/{sid}/notifications.
func (s *Server) Notify(w http.ResponseWriter, r *http.Request) {
	var body domain.NotificationRequest
	if err := decode(r, &body); err != nil {
		s.badRequest(w, "invalid request body", err)
		return
	}
	var id string
	view, err := s.do(r, func(_ context.Context, ctl *toolshed.Controller) error {
		var err error
		id, err = ctl.Notify(body)
		return err
	})
	if err != nil {
		s.fail(w, r, err, view)
		return
	}
	s.writeJSON(w, http.StatusCreated, notifyResponse{ID: id, View: *view})
}

// Dismiss handles DELETE /sessions/{sid}/notifications/{id}.
func (s *Server) Dismiss(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mutate(w, r, http.StatusOK, func(_ context.Context, ctl *toolshed.Controller) error {
		if !ctl.Dismiss(id) {
			return fmt.Errorf("%w: notification %q", errNotFound, id)
		}
		return nil
	})
}

// SignIn handles POST /sessions/{sid}/signin.
func (s *Server) SignIn(w http.ResponseWriter, r *http.Request) {
	var body signInRequest
	if err := decode(r, &body); err != nil {
		s.badRequest(w, "invalid request body", err)
		return
	}
	s.mutate(w, r, http.StatusOK, func(ctx context.Context, ctl *toolshed.Controller) error {
		return ctl.SignIn(ctx, body.Email, body.Password)
	})
}

// SignOut handles POST /sessions/{sid}/signout.
func (s *Server) SignOut(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, http.StatusOK, func(_ context.Context, ctl *toolshed.Controller) error {
		return ctl.SignOut()
	})
}

// SetTheme handles PUT /sessions/{sid}/theme.
func (s *Server) SetTheme(w http.ResponseWriter, r *http.Request) {
	var body themeRequest
	if err := decode(r, &body); err != nil {
		s.badRequest(w, "invalid request body", err)
		return
	}
	s.mutate(w, r, http.StatusOK, func(_ context.Context, ctl *toolshed.Controller) error {
		return ctl.SetTheme(body.Theme)
	})
}

// Checkout handles POST /sessions/{sid}/checkout. Settlement is reported
// later through the session's notifications.
func (s *Server) Checkout(w http.ResponseWriter, r *http.Request) {
	var body domain.ChargeRequest
	if err := decode(r, &body); err != nil {
		s.badRequest(w, "invalid request body", err)
		return
	}
	s.mutate(w, r, http.StatusAccepted, func(ctx context.Context, ctl *toolshed.Controller) error {
		return ctl.Checkout(ctx, body)
	})
}

// CancelCheckout handles DELETE /sessions/{sid}/checkout.
func (s *Server) CancelCheckout(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, http.StatusOK, func(_ context.Context, ctl *toolshed.Controller) error {
		if !ctl.CancelCheckout() {
			return fmt.Errorf("%w: no pending checkout", errNotFound)
		}
		return nil
	})
}
