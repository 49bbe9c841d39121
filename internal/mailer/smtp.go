// Package mailer renders and delivers the outbound emails of the
// application: account verification codes, password reset tokens and
// responses to contact form submissions. Delivery happens over SMTP,
// either directly in a goroutine or through the message queue worker.
package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/modelhub-api/apiserver/config"
)

// SMTPSender delivers rendered messages over plain SMTP with AUTH.
type SMTPSender struct {
	host     string
	port     int
	username string
	password string
	from     string
	fromName string
}

// NewSMTPSender constructs a sender from SMTP config.
func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	return &SMTPSender{
		host:     cfg.Host,
		port:     cfg.Port,
		username: cfg.Username,
		password: cfg.Password,
		from:     cfg.From,
		fromName: cfg.FromName,
	}
}

// Send delivers a single HTML message to the recipient.
func (s *SMTPSender) Send(to, subject, htmlBody string) error {
	var auth smtp.Auth
	if s.username != "" {
		auth = smtp.PlainAuth("", s.username, s.password, s.host)
	}

	msg := []byte(fmt.Sprintf(
		"From: %s <%s>\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s\r\n",
		s.fromName, s.from, to, subject, htmlBody,
	))

	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	return smtp.SendMail(addr, auth, s.from, []string{to}, msg)
}

var (
	verificationTmpl = template.Must(template.New("verification").Parse(`
<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2>Welcome to {{.ProjectName}}!</h2>
    <p>Thank you for signing up. Use the code below to verify your account:</p>
    <p style="font-size: 28px; letter-spacing: 6px; font-weight: bold;">{{.Code}}</p>
    <p>The code expires in 24 hours. If you did not create an account, you can safely ignore this email.</p>
</body>
</html>
`))

	resetPasswordTmpl = template.Must(template.New("resetPassword").Parse(`
<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2>Password reset for {{.ProjectName}}</h2>
    <p>You requested a password reset. Use the token below to set a new password:</p>
    <p style="word-break: break-all; font-weight: bold;">{{.Token}}</p>
    <p>The token expires in 24 hours. If you did not request a reset, your password remains unchanged.</p>
</body>
</html>
`))

	contactResponseTmpl = template.Must(template.New("contactResponse").Parse(`
<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2>Hello {{.FirstName}} {{.LastName}},</h2>
    <p>Thank you for reaching out to {{.ProjectName}}. Regarding your message:</p>
    <blockquote style="border-left: 3px solid #ccc; margin: 10px 0; padding-left: 15px; color: #555;">{{.Message}}</blockquote>
    <p>{{.Response}}</p>
    <p>Best regards,<br>The {{.ProjectName}} team</p>
</body>
</html>
`))
)

func renderTemplate(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute template %q: %w", t.Name(), err)
	}
	return buf.String(), nil
}
