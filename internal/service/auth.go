package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/sakif/snippetbin/internal/apperror"
	"github.com/sakif/snippetbin/internal/auth"
	"github.com/sakif/snippetbin/internal/model"
	"github.com/sakif/snippetbin/internal/repository"
)

const (
	minUsernameLength = 3
	maxUsernameLength = 32
	minPasswordLength = 8
)

// AuthResult is returned by every operation that establishes a session.
type AuthResult struct {
	User  *model.User
	Token string
}

// AuthService handles account registration, password login and GitHub
// OAuth login. All three paths end the same way: a signed token for the
// user's ID.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewAuthService(users repository.UserRepository, tokens *auth.TokenService, passwords *auth.PasswordService, logger *slog.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, passwords: passwords, logger: logger}
}

// Register creates a password-based account. Usernames are stored
// lowercase so lookups are case-insensitive.
func (s *AuthService) Register(ctx context.Context, username, password string) (*AuthResult, error) {
	username = strings.ToLower(strings.TrimSpace(username))

	verrs := apperror.ValidationErrors{}
	if utf8.RuneCountInString(username) < minUsernameLength || utf8.RuneCountInString(username) > maxUsernameLength {
		verrs.Add("username", fmt.Sprintf("username must be between %d and %d characters", minUsernameLength, maxUsernameLength))
	}
	if len(password) < minPasswordLength {
		verrs.Add("password", fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	if len(verrs) > 0 {
		return nil, verrs
	}

	if _, err := s.users.GetUserByUsername(ctx, username); err == nil {
		return nil, apperror.Conflict("username already taken")
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("checking username: %w", err)
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &model.User{
		Username:     username,
		PasswordHash: hash,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", slog.String("username", username))

	return s.issueToken(user)
}

// Login verifies a username/password pair. Unknown usernames and wrong
// passwords produce the same error, so the response does not reveal which
// accounts exist.
func (s *AuthService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	username = strings.ToLower(strings.TrimSpace(username))

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized("invalid username or password")
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	if user.PasswordHash == "" || s.passwords.Verify(user.PasswordHash, password) != nil {
		return nil, apperror.Unauthorized("invalid username or password")
	}

	s.logger.Info("user logged in", slog.String("username", username))

	return s.issueToken(user)
}

// LoginOrRegisterGitHub upserts a user from a GitHub profile and issues a
// token. Repeat logins with the same GitHub account reuse the stored user.
func (s *AuthService) LoginOrRegisterGitHub(ctx context.Context, ghUser *auth.GitHubUser) (*AuthResult, error) {
	user := &model.User{
		Username:  strings.ToLower(ghUser.Login),
		Email:     ghUser.Email,
		AvatarURL: ghUser.AvatarURL,
		GitHubID:  ghUser.ID,
	}
	if err := s.users.Upsert(ctx, user); err != nil {
		return nil, fmt.Errorf("upserting github user: %w", err)
	}

	s.logger.Info("github login", slog.String("username", user.Username))

	return s.issueToken(user)
}

// GetUserByID resolves the current user for /me.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return s.users.GetUserByID(ctx, id)
}

func (s *AuthService) issueToken(user *model.User) (*AuthResult, error) {
	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("generating token: %w", err)
	}
	return &AuthResult{User: user, Token: token}, nil
}
