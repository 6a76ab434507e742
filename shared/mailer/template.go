package mailer

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

// Template names.
const (
	TemplateActivation    = "activation.html"
	TemplateQuestionReply = "question-reply.html"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates holds the parsed email templates.
type Templates struct {
	set *template.Template
}

// LoadTemplates parses every embedded email template.
func LoadTemplates() (*Templates, error) {
	set, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse email templates: %w", err)
	}

	return &Templates{set: set}, nil
}

// Render executes the named template with data.
func (t *Templates) Render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.set.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render email template %q: %w", name, err)
	}

	return buf.String(), nil
}
