// Package mail implements the outbound mail collaborator over plain SMTP.
// Message bodies come from embedded text templates; rendering intentionally
// sticks to the standard library.
package mail

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"net/smtp"
	"strings"
	"text/template"

	"github.com/stackbase/identity-api/internal/core/ports"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// SMTPMailer sends mail through a single SMTP endpoint.
type SMTPMailer struct {
	addr      string // host:port
	from      string
	auth      smtp.Auth
	templates *template.Template
}

// NewSMTPMailer parses the embedded templates and returns a mailer.
// username may be empty for unauthenticated relays.
func NewSMTPMailer(addr, from, username, password string) (*SMTPMailer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("mail: parse templates: %w", err)
	}

	var auth smtp.Auth
	if username != "" {
		host := addr
		if i := strings.IndexByte(addr, ':'); i >= 0 {
			host = addr[:i]
		}
		auth = smtp.PlainAuth("", username, password, host)
	}

	return &SMTPMailer{addr: addr, from: from, auth: auth, templates: tmpl}, nil
}

type templateData struct {
	To string
}

// Send renders the message body (when a template name is given and no body
// is set) and delivers it. The context is consulted before dialing;
// net/smtp itself does not support cancellation mid-send.
func (m *SMTPMailer) Send(ctx context.Context, msg ports.MailMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body := msg.Body
	if body == "" && msg.Template != "" {
		var buf bytes.Buffer
		if err := m.templates.ExecuteTemplate(&buf, msg.Template+".tmpl", templateData{To: msg.To}); err != nil {
			return fmt.Errorf("mail: render %q: %w", msg.Template, err)
		}
		body = buf.String()
	}

	var wire bytes.Buffer
	fmt.Fprintf(&wire, "From: %s\r\n", m.from)
	fmt.Fprintf(&wire, "To: %s\r\n", msg.To)
	fmt.Fprintf(&wire, "Subject: %s\r\n", msg.Subject)
	wire.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	wire.WriteString(body)

	if err := smtp.SendMail(m.addr, m.auth, m.from, []string{msg.To}, wire.Bytes()); err != nil {
		return fmt.Errorf("mail: send to %s: %w", msg.To, err)
	}
	return nil
}
