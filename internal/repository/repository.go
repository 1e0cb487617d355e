// Package repository defines the storage contracts the service layer
// programs against. The sqlite subpackage provides the concrete
// implementation; tests substitute in-memory fakes.
package repository

import (
	"context"

	"github.com/sakif/snippetbin/internal/model"
)

type ListOptions struct {
	Limit  int
	Offset int
}

// SnippetRepository is the key-addressed record store for snippets. A create
// or update of one record is atomic against concurrent operations on the
// same id; cross-record ordering is unconstrained.
type SnippetRepository interface {
	Create(ctx context.Context, snippet *model.Snippet) error
	GetByID(ctx context.Context, id int64) (*model.Snippet, error)
	List(ctx context.Context, opts ListOptions) ([]model.Snippet, error)
	ListIDsByOwner(ctx context.Context, ownerID string) ([]int64, error)
	Update(ctx context.Context, snippet *model.Snippet) error
	Delete(ctx context.Context, id int64) error
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	Upsert(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
}
