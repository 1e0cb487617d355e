package handler

import (
	"net/http"

	"github.com/sakif/snippetbin/internal/highlight"
)

// MetaHandler serves the API root and the enumeration listings.
type MetaHandler struct {
	registry *highlight.Registry
}

func NewMetaHandler(registry *highlight.Registry) *MetaHandler {
	return &MetaHandler{registry: registry}
}

// HandleRoot handles GET /api: a map of the API's entry points, as fully
// qualified URLs built from the incoming request.
func (h *MetaHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	base := scheme + "://" + r.Host

	writeJSON(w, http.StatusOK, map[string]string{
		"snippets":  base + "/api/snippets",
		"users":     base + "/api/users",
		"languages": base + "/api/languages",
		"styles":    base + "/api/styles",
	})
}

// HandleLanguages handles GET /api/languages.
func (h *MetaHandler) HandleLanguages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"languages": h.registry.Languages()})
}

// HandleStyles handles GET /api/styles.
func (h *MetaHandler) HandleStyles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"styles": h.registry.Styles()})
}
