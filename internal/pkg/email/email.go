package email

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	htmltmpl "html/template"
	"net/mail"
	"sync"
	texttmpl "text/template"
)

// Template names a notification template under templates/.
type Template string

const (
	TemplateApplicationReceived Template = "application_received"
	TemplateApplicationApproved Template = "application_approved"
	TemplateApplicationRejected Template = "application_rejected"
	TemplateStudentCredentials  Template = "student_credentials"
	TemplateInterviewInvitation Template = "interview_invitation"
)

var subjects = map[Template]string{
	TemplateApplicationReceived: "Application received",
	TemplateApplicationApproved: "Your application has been approved",
	TemplateApplicationRejected: "Update on your application",
	TemplateStudentCredentials:  "Your student account",
	TemplateInterviewInvitation: "Admission interview invitation",
}

//go:embed templates/*.gohtml templates/*.txt
var templateFS embed.FS

type compiled struct {
	text *texttmpl.Template
	html *htmltmpl.Template
}

var (
	compiledTemplates map[Template]compiled
	compileOnce       sync.Once
	compileErr        error
)

func compileTemplates() {
	compiledTemplates = make(map[Template]compiled, len(subjects))
	for name := range subjects {
		text, err := texttmpl.New(string(name) + ".txt").Option("missingkey=zero").
			ParseFS(templateFS, "templates/"+string(name)+".txt")
		if err != nil {
			compileErr = fmt.Errorf("email: parse %s.txt: %w", name, err)
			return
		}
		html, err := htmltmpl.ParseFS(templateFS, "templates/_base.gohtml", "templates/"+string(name)+".gohtml")
		if err != nil {
			compileErr = fmt.Errorf("email: parse %s.gohtml: %w", name, err)
			return
		}
		compiledTemplates[name] = compiled{text: text, html: html}
	}
}

// Message is one notification to one recipient.
type Message struct {
	Template Template
	To       mail.Address
	Data     map[string]string

	// Filled by Render.
	Subject     string
	TextContent string
	HTMLContent string
}

type contextData struct {
	Data map[string]string
}

// Render fills Subject, TextContent and HTMLContent from the template.
func (m *Message) Render() error {
	compileOnce.Do(compileTemplates)
	if compileErr != nil {
		return compileErr
	}
	tmpl, ok := compiledTemplates[m.Template]
	if !ok {
		return fmt.Errorf("email: unknown template %q", m.Template)
	}
	data := contextData{Data: m.Data}

	var text bytes.Buffer
	if err := tmpl.text.Execute(&text, data); err != nil {
		return fmt.Errorf("email: render %s text: %w", m.Template, err)
	}
	var html bytes.Buffer
	if err := tmpl.html.ExecuteTemplate(&html, "base", data); err != nil {
		return fmt.Errorf("email: render %s html: %w", m.Template, err)
	}

	m.Subject = subjects[m.Template]
	m.TextContent = text.String()
	m.HTMLContent = html.String()
	return nil
}

// Notifier delivers one rendered message. Implementations must honour ctx.
type Notifier interface {
	Send(ctx context.Context, msg *Message) error
}

// Sender is what services depend on: hand a notification off and move on.
type Sender interface {
	Notify(template Template, to mail.Address, data map[string]string)
}
