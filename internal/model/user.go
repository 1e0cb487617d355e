// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account: the owner side of the snippet
// relation.
//
// Accounts come from two places:
//   - local registration (username + bcrypt password hash)
//   - GitHub OAuth (GitHubID is GitHub's stable numeric user ID)
//
// Either way we generate our own internal string ID (xid) so primary keys
// are never tied to a third party's numbering scheme. GitHubID is 0 for
// local accounts; PasswordHash is empty for OAuth accounts.
//
// PasswordHash and GitHubID are json:"-"; credentials and provider
// internals never leave the server.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`     // may be empty (hidden on GitHub, or not given)
	AvatarURL    string    `json:"avatarUrl"` // empty for local accounts
	GitHubID     int64     `json:"-"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
