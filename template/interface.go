package template

// TemplateEngine renders templates with provided data.
type TemplateEngine interface {
	// Render processes raw bytes as a template using the provided data.
	Render(raw []byte, data map[string]any) ([]byte, error)
}
