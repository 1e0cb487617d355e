// Package serializer converts between the API's wire representation and the
// snippet/user models.
//
// Inbound, a request body is decoded to an untyped field map and then pushed
// through an explicit per-field validation step. Validation is not
// fail-fast: every offending field gets its own entry in an
// apperror.ValidationErrors collection, so one 400 response describes the
// whole problem. Server-assigned fields (id, created, owner, highlighted)
// are never read from input, even when a client sends them.
//
// Outbound, the models' own json tags produce the structured wire shape; the
// one projection that needs assembly (a user with its snippets back-relation)
// lives here.
package serializer

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/sakif/snippetbin/internal/apperror"
	"github.com/sakif/snippetbin/internal/highlight"
	"github.com/sakif/snippetbin/internal/model"
)

// MaxTitleLength bounds the title field, counted in characters not bytes.
const MaxTitleLength = 100

// SnippetFields holds the validated inbound fields of a snippet request.
// Pointers record presence: a nil field was absent from the request and must
// not overwrite the corresponding record field on update. Code is never nil
// after successful validation.
type SnippetFields struct {
	Title       *string
	Code        *string
	LineNumbers *bool
	Language    *string
	Style       *string
}

// DecodeSnippet reads a JSON request body into an untyped field map.
// A malformed body is a single undifferentiated validation failure; field
// level problems are ValidateSnippet's job.
func DecodeSnippet(r io.Reader) (map[string]any, error) {
	var fields map[string]any
	if err := json.NewDecoder(r).Decode(&fields); err != nil {
		return nil, apperror.ValidationFailed("", "request body must be a JSON object")
	}
	return fields, nil
}

// ValidateSnippet checks the field map against the snippet constraints:
//
//   - title: optional string, ≤ MaxTitleLength characters, blank allowed
//   - code: required, non-empty string
//   - line_numbers: optional boolean
//   - language: optional, must be in the registry
//   - style: optional, must be in the registry
//
// Language and style are lowercased on the way in so the stored value, and
// therefore the cached rendering, is canonical.
//
// On failure it returns the accumulated apperror.ValidationErrors; the
// returned fields are only meaningful when err is nil.
func ValidateSnippet(fields map[string]any, registry *highlight.Registry) (*SnippetFields, error) {
	errs := apperror.ValidationErrors{}
	out := &SnippetFields{}

	if raw, ok := fields["title"]; ok {
		if s, isString := raw.(string); !isString {
			errs.Add("title", "title must be a string")
		} else if utf8.RuneCountInString(s) > MaxTitleLength {
			errs.Add("title", fmt.Sprintf("title must be %d characters or fewer", MaxTitleLength))
		} else {
			out.Title = &s
		}
	}

	if raw, ok := fields["code"]; !ok {
		errs.Add("code", "code is required")
	} else if s, isString := raw.(string); !isString {
		errs.Add("code", "code must be a string")
	} else if s == "" {
		errs.Add("code", "code must not be empty")
	} else {
		out.Code = &s
	}

	if raw, ok := fields["line_numbers"]; ok {
		if b, isBool := raw.(bool); !isBool {
			errs.Add("line_numbers", "line_numbers must be a boolean")
		} else {
			out.LineNumbers = &b
		}
	}

	if raw, ok := fields["language"]; ok {
		if s, isString := raw.(string); !isString {
			errs.Add("language", "language must be a string")
		} else if !registry.IsValidLanguage(s) {
			errs.Add("language", fmt.Sprintf("%q is not a recognised language", s))
		} else {
			lower := strings.ToLower(s)
			out.Language = &lower
		}
	}

	if raw, ok := fields["style"]; ok {
		if s, isString := raw.(string); !isString {
			errs.Add("style", "style must be a string")
		} else if !registry.IsValidStyle(s) {
			errs.Add("style", fmt.Sprintf("%q is not a recognised style", s))
		} else {
			lower := strings.ToLower(s)
			out.Style = &lower
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return out, nil
}

// UserProjection is the read-only wire shape of a user:
// the identity plus the ids of the snippets it owns.
type UserProjection struct {
	ID       string  `json:"id"`
	Username string  `json:"username"`
	Snippets []int64 `json:"snippets"`
}

// ProjectUser assembles the user wire shape. A user with no snippets gets an
// empty array, not null.
func ProjectUser(user *model.User, snippetIDs []int64) UserProjection {
	if snippetIDs == nil {
		snippetIDs = []int64{}
	}
	return UserProjection{
		ID:       user.ID,
		Username: user.Username,
		Snippets: snippetIDs,
	}
}
