package templates

import (
	"bytes"
	"embed"
	"fmt"
	htmpl "html/template"
)

//go:embed *.tmpl
var FS embed.FS

// Template names
const (
	VerificationCode = "verification_code"
)

// VerificationCodeData feeds the verification_code template. Code is
// rendered through html/template, so a non-alphanumeric value ends up
// escaped rather than interpreted as markup.
type VerificationCodeData struct {
	Code string
}

// RenderHTML loads and renders an HTML template: <name>.html.tmpl
func RenderHTML(name string, data any) (string, error) {
	filename := name + ".html.tmpl"
	tpl, err := htmpl.New(filename).ParseFS(FS, filename)
	if err != nil {
		return "", fmt.Errorf("parse html %q: %w", filename, err)
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("exec %q: %w", filename, err)
	}
	return buf.String(), nil
}
