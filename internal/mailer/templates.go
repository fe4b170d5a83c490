package mailer

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

// Template names an embedded email body under templates/.
type Template string

const (
	// TemplateNominationReceived 发给提名人的确认邮件。
	TemplateNominationReceived Template = "nomination_received"
	// TemplateNominationAlert 通知管理员有新的提名。
	TemplateNominationAlert Template = "nomination_alert"
	// TemplateLeadAlert 通知律所或管理员有新的咨询。
	TemplateLeadAlert Template = "lead_alert"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Render executes the named template with data.
func Render(name Template, data map[string]string) (string, error) {
	tmpl := templates.Lookup(string(name) + ".html")
	if tmpl == nil {
		return "", fmt.Errorf("unknown email template %q", name)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return "", fmt.Errorf("execute email template %s: %w", name, err)
	}
	return body.String(), nil
}
