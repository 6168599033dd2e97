package utils

import (
	"context"
	"fmt"
	"html"
	"log"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

const senderName = "Quizgen"

// Mailer sends transactional email through SendGrid. A Mailer without an API
// key is disabled and drops every message.
type Mailer struct {
	apiKey string
	sender string
	host   string
}

func NewMailer(apiKey, sender string) *Mailer {
	return &Mailer{apiKey: apiKey, sender: sender}
}

func (m *Mailer) Enabled() bool {
	return m != nil && m.apiKey != "" && m.sender != ""
}

// Generic Send Email
func (m *Mailer) SendEmail(ctx context.Context, toEmail, toName, subject, htmlBody string) error {
	if !m.Enabled() {
		return fmt.Errorf("mailer is not configured")
	}

	from := mail.NewEmail(senderName, m.sender)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, subject, htmlBody)

	request := sendgrid.GetRequest(m.apiKey, "/v3/mail/send", m.host)
	request.Method = "POST"
	client := &sendgrid.Client{Request: request}

	resp, err := client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("send email to %s: %w", toEmail, err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("send email to %s: sendgrid returned %d: %s", toEmail, resp.StatusCode, resp.Body)
	}
	return nil
}

func getEmailTemplate(title string, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F4F6F8; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; }
			.header { background-color: #1E3A5F; padding: 24px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 22px; }
			.content { padding: 32px 28px; color: #1E3A5F; line-height: 1.6; }
			.footer { background-color: #F4F6F8; padding: 16px; text-align: center; font-size: 12px; color: #666666; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header"><h1>QUIZGEN</h1></div>
			<div class="content">
				<h2>%s</h2>
				%s
			</div>
			<div class="footer">You received this email because an account was created with this address.</div>
		</div>
	</body>
	</html>
	`, title, bodyContent)
}

// SendWelcomeEmail sends the registration email in the background. Failures
// are only logged.
func (m *Mailer) SendWelcomeEmail(email, username string) {
	if !m.Enabled() {
		return
	}

	subject := "Welcome to Quizgen"
	body := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>Your account has been created. Paste any text passage and Quizgen turns it into a multiple choice quiz
		you can rate, comment on and export to Moodle or Aiken.</p>
	`, html.EscapeString(username))

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := m.SendEmail(ctx, email, username, subject, getEmailTemplate("Welcome onboard!", body)); err != nil {
			log.Printf("welcome email: %v", err)
			return
		}
		log.Printf("welcome email sent to %s", email)
	}()
}
