package http

import (
	"errors"
	"net/http"

	"github.com/aretw0/toolshed/pkg/domain"
)

// errorResponse is the body of every failed request. View is set when the
// refused operation still changed what the session shows, e.g. a toast.
type errorResponse struct {
	Error string       `json:"error"`
	View  *domain.View `json:"view,omitempty"`
}

var errNotFound = errors.New("not found")

// StatusFor maps domain errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, errNotFound),
		errors.Is(err, domain.ErrToolNotFound),
		errors.Is(err, domain.ErrWizardNotFound),
		errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrCapacityExceeded),
		errors.Is(err, domain.ErrDuplicateItem),
		errors.Is(err, domain.ErrStepInvalid),
		errors.Is(err, domain.ErrCheckoutInProgress):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidCard),
		errors.Is(err, domain.ErrInvalidAmount):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrInvalidItem),
		errors.Is(err, domain.ErrInvalidParams),
		errors.Is(err, domain.ErrUnknownScreen),
		errors.Is(err, domain.ErrStepOutOfRange):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrAuthFailure):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrClosed):
		return http.StatusGone
	}
	return http.StatusInternalServerError
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error, view *domain.View) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	} else {
		s.logger.Debug("request refused", "method", r.Method, "path", r.URL.Path, "status", status, "err", err)
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error(), View: view})
}

func (s *Server) badRequest(w http.ResponseWriter, msg string, err error) {
	s.logger.Debug("invalid request", "msg", msg, "err", err)
	s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}
