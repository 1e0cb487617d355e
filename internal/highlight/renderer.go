package highlight

import (
	"bytes"
	"fmt"
	stdhtml "html"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// Renderer converts snippet fields into a standalone highlighted HTML
// document. It is a pure transform: no I/O, no shared mutable state, and the
// same inputs always produce byte-identical output, so it runs concurrently
// across requests without coordination.
type Renderer struct {
	registry *Registry
}

// NewRenderer creates a Renderer backed by the given registry.
func NewRenderer(registry *Registry) *Renderer {
	return &Renderer{registry: registry}
}

// Render produces the highlighted document for a snippet.
//
// Rendering options mirror the snippet fields:
//   - lineNumbers=true renders line numbers in a tabular layout
//   - a non-empty title becomes the document <title> and an <h2> heading
//   - inline styles make the output fully self-contained
//
// Language and style are assumed to have passed Registry validation already;
// an unknown value falls back to Chroma's fallback lexer/style rather than
// failing, since validation is the boundary's job, not the transform's.
func (r *Renderer) Render(code, language, style, title string, lineNumbers bool) (string, error) {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	chromaStyle := styles.Get(style)
	if chromaStyle == nil {
		chromaStyle = styles.Fallback
	}

	opts := []chromahtml.Option{
		chromahtml.TabWidth(4),
	}
	if lineNumbers {
		opts = append(opts,
			chromahtml.WithLineNumbers(true),
			chromahtml.LineNumbersInTable(true),
		)
	}
	formatter := chromahtml.New(opts...)

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return "", fmt.Errorf("highlight: tokenising code: %w", err)
	}

	var block bytes.Buffer
	if err := formatter.Format(&block, chromaStyle, iterator); err != nil {
		return "", fmt.Errorf("highlight: formatting code: %w", err)
	}

	var doc strings.Builder
	doc.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	if title != "" {
		fmt.Fprintf(&doc, "<title>%s</title>\n", stdhtml.EscapeString(title))
	}
	doc.WriteString("</head>\n<body>\n")
	if title != "" {
		fmt.Fprintf(&doc, "<h2>%s</h2>\n", stdhtml.EscapeString(title))
	}
	doc.Write(block.Bytes())
	doc.WriteString("\n</body>\n</html>\n")

	return doc.String(), nil
}
