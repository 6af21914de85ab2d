package core

import (
	"bytes"
	htmltmpl "html/template"
	"net/mail"
	"sync"
	texttmpl "text/template"

	"github.com/pkg/errors"

	appfs "github.com/trezcool/mtihani/fs"
)

var (
	htmlTemplates *htmltmpl.Template
	textTemplates *texttmpl.Template
	tmplInit      sync.Once
	tmplErr       error
)

type (
	EmailMessage struct {
		To      []mail.Address
		Subject string
		BodyStr string // simple text/plain, non-templated content

		// templated contents
		TemplateName string // without ext
		TemplateData interface{}
		TextContent  string
		HTMLContent  string
	}

	ContextData struct {
		AppName         string
		FrontendBaseURL string
		Data            interface{}
	}

	// EmailService is any service that can send emails.
	// Sends are best-effort: failures are logged by implementations, never returned.
	EmailService interface {
		// SendMessages sends messages concurrently
		SendMessages(messages ...*EmailMessage)
	}
)

func parseTemplates() {
	htmlTemplates, tmplErr = htmltmpl.ParseFS(appfs.FS, "templates/email/*.gohtml")
	if tmplErr != nil {
		return
	}
	textTemplates, tmplErr = texttmpl.ParseFS(appfs.FS, "templates/email/*.txt")
}

// Render resolves TextContent and HTMLContent from either BodyStr or the
// named templates in fs/templates/email.
func (m *EmailMessage) Render(conf *Config) error {
	if m.BodyStr != "" {
		m.TextContent = m.BodyStr
		return nil
	}
	if m.TemplateName == "" {
		return nil
	}

	tmplInit.Do(parseTemplates)
	if tmplErr != nil {
		return errors.Wrap(tmplErr, "parsing email templates")
	}

	data := ContextData{
		AppName:         conf.AppName,
		FrontendBaseURL: conf.FrontendBaseURL,
		Data:            m.TemplateData,
	}

	var buff bytes.Buffer
	if tmpl := textTemplates.Lookup(m.TemplateName + ".txt"); tmpl != nil {
		if err := tmpl.Execute(&buff, data); err != nil {
			return errors.Wrapf(err, "executing %s.txt", m.TemplateName)
		}
		m.TextContent = buff.String()
	}

	buff.Reset()
	if tmpl := htmlTemplates.Lookup(m.TemplateName + ".gohtml"); tmpl != nil {
		if err := tmpl.Execute(&buff, data); err != nil {
			return errors.Wrapf(err, "executing %s.gohtml", m.TemplateName)
		}
		m.HTMLContent = buff.String()
	}
	return nil
}

func (m *EmailMessage) HasRecipients() bool { return len(m.To) > 0 }
func (m *EmailMessage) HasContent() bool    { return (m.TextContent != "") || (m.HTMLContent != "") }
