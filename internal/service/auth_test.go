package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/snippetbin/internal/apperror"
	"github.com/sakif/snippetbin/internal/auth"
	"github.com/sakif/snippetbin/internal/model"
)

type fakeUserRepo struct {
	nextID int
	users  map[string]model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextID: 1, users: make(map[string]model.User)}
}

func (r *fakeUserRepo) CreateUser(_ context.Context, user *model.User) error {
	for _, u := range r.users {
		if u.Username == user.Username {
			return apperror.Conflict("username already taken")
		}
	}
	user.ID = string(rune('a' + r.nextID))
	r.nextID++
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) Upsert(ctx context.Context, user *model.User) error {
	for id, u := range r.users {
		if u.GitHubID != 0 && u.GitHubID == user.GitHubID {
			user.ID = id
			r.users[id] = *user
			return nil
		}
	}
	return r.CreateUser(ctx, user)
}

func (r *fakeUserRepo) GetUserByID(_ context.Context, id string) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	return &u, nil
}

func (r *fakeUserRepo) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			user := u
			return &user, nil
		}
	}
	return nil, apperror.NotFound("user", username)
}

func (r *fakeUserRepo) ListUsers(_ context.Context) ([]model.User, error) {
	out := make([]model.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	return out, nil
}

func newTestAuthService(t *testing.T) (*AuthService, *fakeUserRepo) {
	t.Helper()

	tokens, err := auth.NewTokenService("test-secret-0123456789")
	if err != nil {
		t.Fatalf("NewTokenService() error = %v", err)
	}

	repo := newFakeUserRepo()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewAuthService(repo, tokens, auth.NewPasswordServiceForTest(bcrypt.MinCost), logger), repo
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, "Alice", "correct horse battery")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if reg.User.Username != "alice" {
		t.Errorf("Username = %q, want lowercased %q", reg.User.Username, "alice")
	}
	if reg.Token == "" {
		t.Error("Register() returned empty token")
	}

	login, err := svc.Login(ctx, "alice", "correct horse battery")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if login.User.ID != reg.User.ID {
		t.Errorf("Login() user ID = %q, want %q", login.User.ID, reg.User.ID)
	}
}

func TestLoginAgainstStoredHash(t *testing.T) {
	// Seed the store with a pre-computed hash, bypassing Register, so login
	// is checked purely as (stored hash, submitted password).
	svc, repo := newTestAuthService(t)
	ctx := context.Background()

	hash, err := auth.NewPasswordServiceForTest(bcrypt.MinCost).Hash("password123")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if err := repo.CreateUser(ctx, &model.User{Username: "alice", PasswordHash: hash}); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	result, err := svc.Login(ctx, "alice", "password123")
	if err != nil {
		t.Fatalf("Login() error = %v, want success against stored hash", err)
	}
	if result.User.Username != "alice" {
		t.Errorf("Username = %q, want %q", result.User.Username, "alice")
	}

	if _, err := svc.Login(ctx, "alice", hash); !errors.Is(err, apperror.ErrUnauthorized) {
		t.Fatalf("Login() with the hash as password error = %v, want ErrUnauthorized", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestAuthService(t)

	tests := []struct {
		name     string
		username string
		password string
		fields   []string
	}{
		{"short username", "ab", "long enough pass", []string{"username"}},
		{"short password", "alice", "short", []string{"password"}},
		{"both invalid", "ab", "short", []string{"username", "password"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.username, tt.password)
			var verrs apperror.ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("Register() error = %v, want ValidationErrors", err)
			}
			for _, field := range tt.fields {
				if len(verrs[field]) == 0 {
					t.Errorf("no validation error for field %q", field)
				}
			}
		})
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice", "password123"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	_, err := svc.Register(ctx, "ALICE", "password456")
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("Register() error = %v, want ErrConflict", err)
	}
}

func TestLoginWrongCredentials(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice", "password123"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"wrong password", "alice", "nope nope nope"},
		{"unknown user", "nobody", "password123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(ctx, tt.username, tt.password)
			if !errors.Is(err, apperror.ErrUnauthorized) {
				t.Fatalf("Login() error = %v, want ErrUnauthorized", err)
			}
		})
	}
}

func TestGitHubLoginUpserts(t *testing.T) {
	svc, repo := newTestAuthService(t)
	ctx := context.Background()

	first, err := svc.LoginOrRegisterGitHub(ctx, &auth.GitHubUser{
		ID:    42,
		Login: "Octocat",
		Email: "octo@example.com",
	})
	if err != nil {
		t.Fatalf("LoginOrRegisterGitHub() error = %v", err)
	}
	if first.User.Username != "octocat" {
		t.Errorf("Username = %q, want %q", first.User.Username, "octocat")
	}

	second, err := svc.LoginOrRegisterGitHub(ctx, &auth.GitHubUser{
		ID:        42,
		Login:     "Octocat",
		AvatarURL: "https://example.com/new.png",
	})
	if err != nil {
		t.Fatalf("LoginOrRegisterGitHub() error = %v", err)
	}
	if second.User.ID != first.User.ID {
		t.Errorf("repeat login created new user %q, want %q", second.User.ID, first.User.ID)
	}
	if len(repo.users) != 1 {
		t.Errorf("store has %d users, want 1", len(repo.users))
	}
	if repo.users[first.User.ID].AvatarURL != "https://example.com/new.png" {
		t.Error("profile not refreshed on repeat login")
	}
}
