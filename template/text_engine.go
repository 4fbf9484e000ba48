// Package template renders source templates for code generation.
package template

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"text/template"
)

// TextEngine implements TemplateEngine with text/template. Referencing a key
// missing from the data is an error.
type TextEngine struct {
	funcs template.FuncMap
}

// NewTextEngine creates a TextEngine with the default helper functions.
func NewTextEngine() *TextEngine {
	return &TextEngine{
		funcs: template.FuncMap{
			"quote": strconv.Quote,
			"join":  strings.Join,
		},
	}
}

// Render implements TemplateEngine.
func (e *TextEngine) Render(raw []byte, data map[string]any) ([]byte, error) {
	tmpl, err := template.New("source").
		Funcs(e.funcs).
		Option("missingkey=error").
		Parse(string(raw))
	if err != nil {
		return nil, fmt.Errorf("parsing template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("rendering template: %w", err)
	}
	return buf.Bytes(), nil
}

var _ TemplateEngine = (*TextEngine)(nil)
