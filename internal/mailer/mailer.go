package mailer

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed "templates"
var templateFS embed.FS

type Mailer interface {
	Send(recipient, templateFile string, data any) error
}

// Message is a rendered email, independent of how it is delivered.
type Message struct {
	Recipient string
	Subject   string
	PlainBody string
	HTMLBody  string
}

// Render executes the subject, plainBody and htmlBody blocks of
// templates/templateFile with data.
func Render(recipient, templateFile string, data any) (*Message, error) {
	tmpl, err := template.New("email").ParseFS(templateFS, "templates/"+templateFile)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", templateFile, err)
	}

	var subject, plainBody, htmlBody bytes.Buffer

	blocks := []struct {
		name string
		dst  *bytes.Buffer
	}{
		{"subject", &subject},
		{"plainBody", &plainBody},
		{"htmlBody", &htmlBody},
	}

	for _, b := range blocks {
		if err := tmpl.ExecuteTemplate(b.dst, b.name, data); err != nil {
			return nil, fmt.Errorf("render %s of %s: %w", b.name, templateFile, err)
		}
	}

	return &Message{
		Recipient: recipient,
		Subject:   subject.String(),
		PlainBody: plainBody.String(),
		HTMLBody:  htmlBody.String(),
	}, nil
}
