package serializer

import (
	"errors"
	"strings"
	"testing"

	"github.com/sakif/snippetbin/internal/apperror"
	"github.com/sakif/snippetbin/internal/highlight"
	"github.com/sakif/snippetbin/internal/model"
)

func newTestRegistry(t *testing.T) *highlight.Registry {
	t.Helper()
	registry, err := highlight.NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	return registry
}

// fieldErrors runs ValidateSnippet and returns the error collection,
// failing the test if validation unexpectedly passed.
func fieldErrors(t *testing.T, fields map[string]any) apperror.ValidationErrors {
	t.Helper()
	_, err := ValidateSnippet(fields, newTestRegistry(t))
	if err == nil {
		t.Fatal("ValidateSnippet() should have failed")
	}
	var errs apperror.ValidationErrors
	if !errors.As(err, &errs) {
		t.Fatalf("error is %T, want ValidationErrors", err)
	}
	return errs
}

func TestDecodeSnippet(t *testing.T) {
	fields, err := DecodeSnippet(strings.NewReader(`{"code":"foo = 1","line_numbers":true}`))
	if err != nil {
		t.Fatalf("DecodeSnippet() error = %v", err)
	}
	if fields["code"] != "foo = 1" {
		t.Errorf("code = %v", fields["code"])
	}
	if fields["line_numbers"] != true {
		t.Errorf("line_numbers = %v", fields["line_numbers"])
	}
}

func TestDecodeSnippet_MalformedBody(t *testing.T) {
	_, err := DecodeSnippet(strings.NewReader(`{"code": `))
	if err == nil {
		t.Fatal("DecodeSnippet() should reject malformed JSON")
	}
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("error = %v, want ErrValidation", err)
	}
}

func TestValidateSnippet_MinimalValid(t *testing.T) {
	fields, err := ValidateSnippet(map[string]any{"code": "foo = 1"}, newTestRegistry(t))
	if err != nil {
		t.Fatalf("ValidateSnippet() error = %v", err)
	}

	if fields.Code == nil || *fields.Code != "foo = 1" {
		t.Errorf("Code = %v", fields.Code)
	}
	// Absent optional fields stay nil so update can tell "absent" from "zero".
	if fields.Title != nil || fields.LineNumbers != nil || fields.Language != nil || fields.Style != nil {
		t.Error("absent fields should be nil")
	}
}

func TestValidateSnippet_AllFields(t *testing.T) {
	fields, err := ValidateSnippet(map[string]any{
		"title":        "example",
		"code":         "func main() {}",
		"line_numbers": true,
		"language":     "go",
		"style":        "monokai",
	}, newTestRegistry(t))
	if err != nil {
		t.Fatalf("ValidateSnippet() error = %v", err)
	}

	if *fields.Title != "example" || !*fields.LineNumbers {
		t.Error("title/line_numbers not carried through")
	}
	if *fields.Language != "go" || *fields.Style != "monokai" {
		t.Error("language/style not carried through")
	}
}

func TestValidateSnippet_NormalisesCase(t *testing.T) {
	fields, err := ValidateSnippet(map[string]any{
		"code":     "x",
		"language": "Python",
	}, newTestRegistry(t))
	if err != nil {
		t.Fatalf("ValidateSnippet() error = %v", err)
	}
	if *fields.Language != "python" {
		t.Errorf("Language = %q, want lowercased %q", *fields.Language, "python")
	}
}

func TestValidateSnippet_MissingCode(t *testing.T) {
	errs := fieldErrors(t, map[string]any{"title": "no code"})
	if len(errs["code"]) == 0 {
		t.Errorf("errors = %v, want entry for code", errs)
	}
}

func TestValidateSnippet_EmptyCode(t *testing.T) {
	errs := fieldErrors(t, map[string]any{"code": ""})
	if len(errs["code"]) == 0 {
		t.Errorf("errors = %v, want entry for code", errs)
	}
}

func TestValidateSnippet_UnknownLanguage(t *testing.T) {
	errs := fieldErrors(t, map[string]any{"code": "x", "language": "not-a-real-lexer"})
	if len(errs["language"]) == 0 {
		t.Errorf("errors = %v, want entry for language", errs)
	}
}

func TestValidateSnippet_UnknownStyle(t *testing.T) {
	errs := fieldErrors(t, map[string]any{"code": "x", "style": "not-a-real-style"})
	if len(errs["style"]) == 0 {
		t.Errorf("errors = %v, want entry for style", errs)
	}
}

func TestValidateSnippet_TitleTooLong(t *testing.T) {
	errs := fieldErrors(t, map[string]any{
		"code":  "x",
		"title": strings.Repeat("a", MaxTitleLength+1),
	})
	if len(errs["title"]) == 0 {
		t.Errorf("errors = %v, want entry for title", errs)
	}
}

func TestValidateSnippet_TypeMismatches(t *testing.T) {
	errs := fieldErrors(t, map[string]any{
		"code":         42,
		"line_numbers": "yes",
		"language":     true,
	})
	for _, field := range []string{"code", "line_numbers", "language"} {
		if len(errs[field]) == 0 {
			t.Errorf("no error collected for %s: %v", field, errs)
		}
	}
}

func TestValidateSnippet_CollectsAllErrors(t *testing.T) {
	// Not fail-fast: every offending field appears at once.
	errs := fieldErrors(t, map[string]any{
		"title":    strings.Repeat("a", MaxTitleLength+1),
		"language": "not-a-real-lexer",
		"style":    "not-a-real-style",
	})
	if len(errs) != 4 { // title, code (missing), language, style
		t.Errorf("collected %d fields, want 4: %v", len(errs), errs)
	}
}

func TestValidateSnippet_IgnoresServerAssignedFields(t *testing.T) {
	// id, owner, created and highlighted in the body are neither errors nor
	// accepted values.
	fields, err := ValidateSnippet(map[string]any{
		"code":        "x",
		"id":          999,
		"owner":       "mallory",
		"created":     "2020-01-01T00:00:00Z",
		"highlighted": "<p>spoof</p>",
	}, newTestRegistry(t))
	if err != nil {
		t.Fatalf("ValidateSnippet() error = %v", err)
	}
	if fields.Code == nil {
		t.Error("code should still validate")
	}
}

func TestProjectUser(t *testing.T) {
	user := &model.User{ID: "u1", Username: "sakif", Email: "hidden@example.com"}

	projection := ProjectUser(user, []int64{3, 7})
	if projection.ID != "u1" || projection.Username != "sakif" {
		t.Errorf("projection = %+v", projection)
	}
	if len(projection.Snippets) != 2 || projection.Snippets[1] != 7 {
		t.Errorf("Snippets = %v", projection.Snippets)
	}

	// No snippets → empty array, not nil (serialises as [] not null).
	empty := ProjectUser(user, nil)
	if empty.Snippets == nil {
		t.Error("Snippets should be an empty slice, not nil")
	}
}
