// Package model defines the data structures shared across the application.
package model

import "time"

// Snippet represents a stored piece of code with metadata and a cached
// highlighted rendering.
//
// The `json:"..."` tags define the wire shape:
//
//	{"id":7,"title":"","code":"foo = 1","line_numbers":false,
//	 "language":"python","style":"friendly","owner":"sakif"}
//
// Three fields never cross the API boundary as structured data:
//   - OwnerID is the internal user key; clients see the username (Owner).
//   - Highlighted is served only by the highlight action, as raw HTML.
//   - Created is internal ordering metadata.
//
// Highlighted is recomputed on every create and update, so the cached
// rendering always matches Code/Language/Style/Title/LineNumbers at rest.
type Snippet struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Code        string    `json:"code"`
	LineNumbers bool      `json:"line_numbers"`
	Language    string    `json:"language"`
	Style       string    `json:"style"`
	Owner       string    `json:"owner"` // owning user's username, filled on read
	OwnerID     string    `json:"-"`
	Highlighted string    `json:"-"`
	Created     time.Time `json:"-"`
}
