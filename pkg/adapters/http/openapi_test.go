package http_test

import (
	"net/http"
	"strings"
	"testing"

	api "github.com/aretw0/toolshed/pkg/adapters/http"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocument_Valid(t *testing.T) {
	doc, err := api.Document()
	require.NoError(t, err)
	assert.Equal(t, "Toolshed API", doc.Info.Title)
}

func TestDocument_CoversRoutes(t *testing.T) {
	doc, err := api.Document()
	require.NoError(t, err)

	undocumented := map[string]bool{"/metrics": true, "/openapi.yaml": true, "/swagger": true}
	srv := setup(t).server

	err = chi.Walk(srv.Router(), func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		if route != "/" {
			route = strings.TrimSuffix(route, "/")
		}
		if undocumented[route] {
			return nil
		}
		item := doc.Paths.Value(route)
		if assert.NotNil(t, item, "path %s missing", route) {
			assert.NotNil(t, item.GetOperation(method), "%s %s missing", method, route)
		}
		return nil
	})
	require.NoError(t, err)
}

func TestGetOpenAPI(t *testing.T) {
	f := setup(t)
	rr := f.call(t, "GET", "/openapi.yaml", nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/yaml", rr.Header().Get("Content-Type"))
	assert.Equal(t, api.RawDocument(), rr.Body.Bytes())

	rr = f.call(t, "GET", "/swagger", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "/openapi.yaml")
}
