package http

import (
	"context"
	_ "embed"
	"fmt"
	"net/http"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var rawDocument []byte

var (
	documentOnce sync.Once
	document     *openapi3.T
	documentErr  error
)

// Document parses and validates the embedded OpenAPI document. The result is
// cached.
func Document() (*openapi3.T, error) {
	documentOnce.Do(func() {
		doc, err := openapi3.NewLoader().LoadFromData(rawDocument)
		if err != nil {
			documentErr = fmt.Errorf("load openapi document: %w", err)
			return
		}
		if err := doc.Validate(context.Background()); err != nil {
			documentErr = fmt.Errorf("validate openapi document: %w", err)
			return
		}
		document = doc
	})
	return document, documentErr
}

// RawDocument returns the embedded OpenAPI document as YAML.
func RawDocument() []byte {
	return rawDocument
}

func apiVersion() string {
	doc, err := Document()
	if err != nil || doc.Info == nil {
		return "unknown"
	}
	return doc.Info.Version
}

// GetOpenAPI handles the GET /openapi.yaml request.
func (s *Server) GetOpenAPI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/yaml")
	if _, err := w.Write(rawDocument); err != nil {
		s.logger.Error("openapi write failed", "err", err)
	}
}

// GetSwagger serves a Swagger UI page reading /openapi.yaml.
func (s *Server) GetSwagger(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	_, _ = w.Write([]byte(swaggerHTML))
}

const swaggerHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8" />
<title>Toolshed API</title>
<link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
window.onload = () => {
  window.ui = SwaggerUIBundle({url: '/openapi.yaml', dom_id: '#swagger-ui'});
};
</script>
</body>
</html>
`
