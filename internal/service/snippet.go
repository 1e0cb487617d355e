// Package service contains the business logic layer: it sits between the
// HTTP handlers and the repositories, enforcing permissions and
// orchestrating validation, rendering and persistence.
//
//	Handler (HTTP)      → parses requests, writes responses
//	Service (rules)     → permissions, defaults, rendering, orchestration
//	Repository (data)   → reads/writes the record store
//
// Services take repository interfaces, not concrete types, so tests inject
// in-memory fakes and the wiring in internal/server decides the real
// implementation.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/snippetbin/internal/apperror"
	"github.com/sakif/snippetbin/internal/highlight"
	"github.com/sakif/snippetbin/internal/model"
	"github.com/sakif/snippetbin/internal/permission"
	"github.com/sakif/snippetbin/internal/repository"
	"github.com/sakif/snippetbin/internal/serializer"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// SnippetService handles the snippet resource's business logic.
//
// Every mutating operation runs the same two-stage permission evaluation:
// the composed policy is asked once at the collection stage (before any
// record is fetched, so anonymous writers are turned away without a lookup)
// and once at the object stage (after the target is loaded, before any
// mutation). A denial at either stage leaves the store untouched.
type SnippetService struct {
	repo     repository.SnippetRepository
	renderer *highlight.Renderer
	policy   permission.Policy
	logger   *slog.Logger
}

// NewSnippetService creates a SnippetService with the standard policy:
// authenticated-or-read-only AND owner-or-read-only.
func NewSnippetService(repo repository.SnippetRepository, renderer *highlight.Renderer, logger *slog.Logger) *SnippetService {
	return &SnippetService{
		repo:     repo,
		renderer: renderer,
		policy:   permission.All(permission.AuthenticatedOrReadOnly{}, permission.OwnerOrReadOnly{}),
		logger:   logger,
	}
}

// authorize maps a policy denial to the transport outcome: an anonymous
// caller gets "unauthorized" (log in and retry), an identified caller gets
// "forbidden". The same mapping is applied for every action, so the signal
// never depends on which record was targeted.
func (s *SnippetService) authorize(action permission.Action, callerID string, target *model.Snippet) error {
	if s.policy.Allow(action, callerID, target) {
		return nil
	}
	if callerID == permission.Anonymous {
		return apperror.Unauthorized("authentication required")
	}
	return apperror.Forbidden("only the owner may modify this snippet")
}

// List retrieves snippets in creation order with pagination. Read-class:
// open to any caller.
func (s *SnippetService) List(ctx context.Context, callerID string, limit, offset int) ([]model.Snippet, error) {
	if err := s.authorize(permission.ActionList, callerID, nil); err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	snippets, err := s.repo.List(ctx, repository.ListOptions{Limit: limit, Offset: offset})
	if err != nil {
		s.logger.Error("failed to list snippets", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing snippets: %w", err)
	}

	return snippets, nil
}

// GetByID retrieves a single snippet. Read-class: open to any caller.
func (s *SnippetService) GetByID(ctx context.Context, callerID string, id int64) (*model.Snippet, error) {
	if err := s.authorize(permission.ActionRetrieve, callerID, nil); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// Highlighted returns the cached rendered markup for a snippet. The cache
// is recomputed on every write, so no rendering happens on the read path.
func (s *SnippetService) Highlighted(ctx context.Context, callerID string, id int64) (string, error) {
	if err := s.authorize(permission.ActionHighlight, callerID, nil); err != nil {
		return "", err
	}

	snippet, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return snippet.Highlighted, nil
}

// Create builds a new snippet from validated fields and persists it.
//
// The owner is always the caller, never a value from the request body.
// Absent optional fields take their defaults here (empty title, no line
// numbers, the registry's default language and style), and the highlighted
// markup is computed before the write so the stored record is complete.
func (s *SnippetService) Create(ctx context.Context, callerID string, fields *serializer.SnippetFields) (*model.Snippet, error) {
	if err := s.authorize(permission.ActionCreate, callerID, nil); err != nil {
		return nil, err
	}

	if fields == nil || fields.Code == nil {
		return nil, apperror.ValidationFailed("code", "code is required")
	}

	snippet := &model.Snippet{
		Code:     *fields.Code,
		Language: highlight.DefaultLanguage,
		Style:    highlight.DefaultStyle,
		OwnerID:  callerID,
	}
	if fields.Title != nil {
		snippet.Title = *fields.Title
	}
	if fields.LineNumbers != nil {
		snippet.LineNumbers = *fields.LineNumbers
	}
	if fields.Language != nil {
		snippet.Language = *fields.Language
	}
	if fields.Style != nil {
		snippet.Style = *fields.Style
	}

	if err := s.render(snippet); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, snippet); err != nil {
		s.logger.Error("failed to create snippet",
			slog.String("owner", callerID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating snippet: %w", err)
	}

	// Re-read so the response carries the canonical record, including the
	// owner's username from the store.
	created, err := s.repo.GetByID(ctx, snippet.ID)
	if err != nil {
		return nil, fmt.Errorf("reading back created snippet: %w", err)
	}

	s.logger.Info("snippet created",
		slog.Int64("id", created.ID),
		slog.String("owner", callerID),
		slog.String("language", created.Language),
	)

	return created, nil
}

// Update overlays the supplied fields onto an existing snippet and persists
// the result.
//
// Only fields present in the request change, each onto its own record field;
// id, created and owner are preserved unconditionally. The highlighted
// markup is recomputed before the write; the record never persists with a
// stale rendering.
func (s *SnippetService) Update(ctx context.Context, callerID string, id int64, fields *serializer.SnippetFields) (*model.Snippet, error) {
	if err := s.authorize(permission.ActionUpdate, callerID, nil); err != nil {
		return nil, err
	}

	snippet, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.authorize(permission.ActionUpdate, callerID, snippet); err != nil {
		return nil, err
	}

	if fields == nil || fields.Code == nil {
		return nil, apperror.ValidationFailed("code", "code is required")
	}

	snippet.Code = *fields.Code
	if fields.Title != nil {
		snippet.Title = *fields.Title
	}
	if fields.LineNumbers != nil {
		snippet.LineNumbers = *fields.LineNumbers
	}
	if fields.Language != nil {
		snippet.Language = *fields.Language
	}
	if fields.Style != nil {
		snippet.Style = *fields.Style
	}

	if err := s.render(snippet); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, snippet); err != nil {
		s.logger.Error("failed to update snippet",
			slog.Int64("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating snippet: %w", err)
	}

	s.logger.Info("snippet updated", slog.Int64("id", id), slog.String("owner", callerID))

	return snippet, nil
}

// Delete removes a snippet. Same two-stage permission evaluation as Update.
func (s *SnippetService) Delete(ctx context.Context, callerID string, id int64) error {
	if err := s.authorize(permission.ActionDelete, callerID, nil); err != nil {
		return err
	}

	snippet, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.authorize(permission.ActionDelete, callerID, snippet); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("snippet deleted", slog.Int64("id", id), slog.String("owner", callerID))
	return nil
}

func (s *SnippetService) render(snippet *model.Snippet) error {
	rendered, err := s.renderer.Render(
		snippet.Code,
		snippet.Language,
		snippet.Style,
		snippet.Title,
		snippet.LineNumbers,
	)
	if err != nil {
		return fmt.Errorf("rendering snippet: %w", err)
	}
	snippet.Highlighted = rendered
	return nil
}
