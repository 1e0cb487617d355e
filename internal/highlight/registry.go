// Package highlight renders snippet code to HTML using the Chroma library.
//
// It has two halves:
//   - Registry: the fixed set of recognised language and style identifiers,
//     built once from Chroma's lexer and style registries at startup.
//   - Renderer: the deterministic transform from (code, language, style,
//     title, line numbers) to a standalone HTML document.
//
// The Registry is read-only after construction, so a single value can be
// shared across concurrent requests without locking. Components that need it
// receive it as a dependency; there is no package-level lookup.
package highlight

import (
	"fmt"
	"sort"
	"strings"

	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// Defaults applied when a snippet is created without an explicit language or
// style. NewRegistry verifies both exist in Chroma's registries.
const (
	DefaultLanguage = "python"
	DefaultStyle    = "friendly"
)

// Registry holds the recognised language and style identifiers.
//
// Language identifiers are Chroma lexer aliases, lowercased ("python", "go",
// "sh"). Every alias of a lexer validates; the presentation listing shows one
// entry per lexer (its primary alias). Style identifiers are Chroma style
// names, which are already lowercase ("friendly", "monokai").
type Registry struct {
	languages []string
	styles    []string
	langSet   map[string]struct{}
	styleSet  map[string]struct{}
}

// NewRegistry builds the registry from Chroma's capability lists.
//
// It fails, and the caller must refuse to start serving, if either list is
// empty or the configured defaults are missing. A service running with an
// empty registry would reject every create request.
func NewRegistry() (*Registry, error) {
	r := &Registry{
		langSet:  make(map[string]struct{}),
		styleSet: make(map[string]struct{}),
	}

	for _, lexer := range lexers.GlobalLexerRegistry.Lexers {
		cfg := lexer.Config()
		if cfg == nil || len(cfg.Aliases) == 0 {
			// Lexers without aliases have no usable identifier.
			continue
		}
		for _, alias := range cfg.Aliases {
			r.langSet[strings.ToLower(alias)] = struct{}{}
		}
		primary := strings.ToLower(cfg.Aliases[0])
		r.languages = append(r.languages, primary)
	}
	sort.Strings(r.languages)

	for _, name := range styles.Names() {
		r.styleSet[strings.ToLower(name)] = struct{}{}
		r.styles = append(r.styles, strings.ToLower(name))
	}
	sort.Strings(r.styles)

	if len(r.languages) == 0 {
		return nil, fmt.Errorf("highlight: chroma lexer registry is empty")
	}
	if len(r.styles) == 0 {
		return nil, fmt.Errorf("highlight: chroma style registry is empty")
	}
	if !r.IsValidLanguage(DefaultLanguage) {
		return nil, fmt.Errorf("highlight: default language %q not in registry", DefaultLanguage)
	}
	if !r.IsValidStyle(DefaultStyle) {
		return nil, fmt.Errorf("highlight: default style %q not in registry", DefaultStyle)
	}

	return r, nil
}

// IsValidLanguage reports whether id is a recognised language identifier.
// Matching is case-insensitive.
func (r *Registry) IsValidLanguage(id string) bool {
	_, ok := r.langSet[strings.ToLower(id)]
	return ok
}

// IsValidStyle reports whether id is a recognised style identifier.
// Matching is case-insensitive.
func (r *Registry) IsValidStyle(id string) bool {
	_, ok := r.styleSet[strings.ToLower(id)]
	return ok
}

// Languages returns the ordered language listing for presentation.
// The returned slice is a copy; callers can't mutate the registry.
func (r *Registry) Languages() []string {
	out := make([]string, len(r.languages))
	copy(out, r.languages)
	return out
}

// Styles returns the ordered style listing for presentation.
func (r *Registry) Styles() []string {
	out := make([]string, len(r.styles))
	copy(out, r.styles)
	return out
}
