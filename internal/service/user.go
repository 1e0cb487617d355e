package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/snippetbin/internal/repository"
	"github.com/sakif/snippetbin/internal/serializer"
)

// UserService exposes the read-only user resource: each user is listed
// together with the IDs of the snippets they own.
type UserService struct {
	users    repository.UserRepository
	snippets repository.SnippetRepository
	logger   *slog.Logger
}

func NewUserService(users repository.UserRepository, snippets repository.SnippetRepository, logger *slog.Logger) *UserService {
	return &UserService{users: users, snippets: snippets, logger: logger}
}

// List returns all users in creation order, each with their snippet IDs.
func (s *UserService) List(ctx context.Context) ([]serializer.UserProjection, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		s.logger.Error("failed to list users", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing users: %w", err)
	}

	projections := make([]serializer.UserProjection, 0, len(users))
	for i := range users {
		ids, err := s.snippets.ListIDsByOwner(ctx, users[i].ID)
		if err != nil {
			return nil, fmt.Errorf("listing snippets for user %s: %w", users[i].ID, err)
		}
		projections = append(projections, serializer.ProjectUser(&users[i], ids))
	}

	return projections, nil
}

// GetByID returns a single user with their snippet IDs.
func (s *UserService) GetByID(ctx context.Context, id string) (*serializer.UserProjection, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	ids, err := s.snippets.ListIDsByOwner(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("listing snippets for user %s: %w", id, err)
	}

	projection := serializer.ProjectUser(user, ids)
	return &projection, nil
}
