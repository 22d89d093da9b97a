package http

import (
	"net/http"

	"github.com/aretw0/toolshed/pkg/catalog"
	"github.com/go-chi/chi/v5"
	"github.com/mitchellh/mapstructure"
)

// parseQuery decodes ?q=&category=&pricing=&status=&min_rating=&limit= into a Query.
func parseQuery(r *http.Request) (catalog.Query, error) {
	raw := make(map[string]any)
	for key, values := range r.URL.Query() {
		if len(values) == 0 {
			continue
		}
		if key == "q" {
			key = "text"
		}
		raw[key] = values[0]
	}

	var q catalog.Query
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           &q,
	})
	if err != nil {
		return q, err
	}
	return q, dec.Decode(raw)
}

// ListTools handles GET /catalog.
func (s *Server) ListTools(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		s.badRequest(w, "invalid catalog query", err)
		return
	}
	tools, err := catalog.Search(r.Context(), s.Catalog, q)
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}
	s.writeJSON(w, http.StatusOK, tools)
}

// ListCategories handles GET /catalog/categories.
func (s *Server) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := catalog.Categories(r.Context(), s.Catalog)
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}
	s.writeJSON(w, http.StatusOK, categories)
}

// GetTool handles GET /catalog/{toolID}.
func (s *Server) GetTool(w http.ResponseWriter, r *http.Request) {
	tool, err := s.Catalog.Get(r.Context(), chi.URLParam(r, "toolID"))
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}
	s.writeJSON(w, http.StatusOK, tool)
}
