package handler

import (
	"net/http"
	"strconv"

	"github.com/sakif/snippetbin/internal/apperror"
	"github.com/sakif/snippetbin/internal/auth"
	"github.com/sakif/snippetbin/internal/highlight"
	"github.com/sakif/snippetbin/internal/serializer"
	"github.com/sakif/snippetbin/internal/service"
)

// SnippetHandler exposes the snippet resource over HTTP.
type SnippetHandler struct {
	service  *service.SnippetService
	registry *highlight.Registry
}

func NewSnippetHandler(service *service.SnippetService, registry *highlight.Registry) *SnippetHandler {
	return &SnippetHandler{service: service, registry: registry}
}

// callerID returns the authenticated user's ID, or the empty string for an
// anonymous request. Permission decisions belong to the service layer; the
// handler just forwards the identity.
func callerID(r *http.Request) string {
	id, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		return ""
	}
	return id
}

// snippetID parses the id path segment. A non-numeric id addresses nothing,
// so it gets the same not-found outcome as a numeric id with no record.
func snippetID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apperror.NotFound("snippet", raw)
	}
	return id, nil
}

// HandleList handles GET /api/snippets.
// Supports ?limit= and ?offset= query parameters.
func (h *SnippetHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	snippets, err := h.service.List(r.Context(), callerID(r), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, snippets)
}

// HandleCreate handles POST /api/snippets.
func (h *SnippetHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	raw, err := serializer.DecodeSnippet(r.Body)
	if err != nil {
		writeError(w, err)
		return
	}

	fields, err := serializer.ValidateSnippet(raw, h.registry)
	if err != nil {
		writeError(w, err)
		return
	}

	snippet, err := h.service.Create(r.Context(), callerID(r), fields)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, snippet)
}

// HandleGet handles GET /api/snippets/{id}.
func (h *SnippetHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := snippetID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	snippet, err := h.service.GetByID(r.Context(), callerID(r), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, snippet)
}

// HandleUpdate handles PUT /api/snippets/{id}.
func (h *SnippetHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := snippetID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	raw, err := serializer.DecodeSnippet(r.Body)
	if err != nil {
		writeError(w, err)
		return
	}

	fields, err := serializer.ValidateSnippet(raw, h.registry)
	if err != nil {
		writeError(w, err)
		return
	}

	snippet, err := h.service.Update(r.Context(), callerID(r), id, fields)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, snippet)
}

// HandleDelete handles DELETE /api/snippets/{id}.
func (h *SnippetHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := snippetID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.Delete(r.Context(), callerID(r), id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleHighlight handles GET /api/snippets/{id}/highlight. The response is
// the rendered HTML document itself, not a JSON wrapper around it.
func (h *SnippetHandler) HandleHighlight(w http.ResponseWriter, r *http.Request) {
	id, err := snippetID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	markup, err := h.service.Highlighted(r.Context(), callerID(r), id)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(markup))
}
