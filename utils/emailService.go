package utils

import (
	"fmt"
	"net/smtp"
	"strings"
	"sync"

	"elearn/config"
	"elearn/logger"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Mailer sends one HTML email.
type Mailer interface {
	Send(to []string, subject, htmlBody string) error
}

// Mail is the process-wide mailer. Console until main configures a real one.
var Mail Mailer = ConsoleMailer{}

// NewMailer returns the mailer selected by EMAIL_PROVIDER.
func NewMailer(cfg *config.Config) Mailer {
	switch strings.ToLower(cfg.EmailProvider) {
	case "smtp":
		return &SMTPMailer{Host: cfg.SMTPHost, Port: cfg.SMTPPort, From: cfg.EmailSender, Password: cfg.Password}
	case "sendgrid":
		return &SendgridMailer{APIKey: cfg.SendgridAPIKey, From: cfg.EmailSender}
	default:
		return ConsoleMailer{}
	}
}

type SMTPMailer struct {
	Host     string
	Port     string
	From     string
	Password string
}

func (m *SMTPMailer) Send(to []string, subject string, htmlBody string) error {
	msg := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n"
	msg += fmt.Sprintf("From: E-Learn <%s>\r\n", m.From)
	msg += fmt.Sprintf("To: %s\r\n", strings.Join(to, ","))
	msg += fmt.Sprintf("Subject: %s\r\n\r\n", subject)
	msg += htmlBody

	auth := smtp.PlainAuth("", m.From, m.Password, m.Host)
	return smtp.SendMail(m.Host+":"+m.Port, auth, m.From, to, []byte(msg))
}

type SendgridMailer struct {
	APIKey string
	From   string
}

func (m *SendgridMailer) Send(to []string, subject string, htmlBody string) error {
	client := sendgrid.NewSendClient(m.APIKey)
	from := mail.NewEmail("E-Learn", m.From)
	for _, addr := range to {
		message := mail.NewSingleEmail(from, subject, mail.NewEmail("", addr), "", htmlBody)
		resp, err := client.Send(message)
		if err != nil {
			return err
		}
		if resp.StatusCode >= 300 {
			return fmt.Errorf("sendgrid: status %d: %s", resp.StatusCode, resp.Body)
		}
	}
	return nil
}

// ConsoleMailer logs instead of sending.
type ConsoleMailer struct{}

func (ConsoleMailer) Send(to []string, subject string, htmlBody string) error {
	logger.Log.Info("email (console)", "to", strings.Join(to, ","), "subject", subject)
	return nil
}

// RecordingMailer keeps sent emails in memory.
type RecordingMailer struct {
	mu   sync.Mutex
	Sent []SentEmail
}

type SentEmail struct {
	To      []string
	Subject string
	Body    string
}

func (r *RecordingMailer) Send(to []string, subject string, htmlBody string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Sent = append(r.Sent, SentEmail{To: to, Subject: subject, Body: htmlBody})
	return nil
}

func (r *RecordingMailer) Messages() []SentEmail {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]SentEmail(nil), r.Sent...)
}

func getEmailTemplate(title string, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; }
			.header { background-color: #1F3A5F; padding: 30px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 24px; }
			.content { padding: 40px 30px; color: #1F3A5F; line-height: 1.6; }
			.info-box { background: #E8F0FE; padding: 15px; border-radius: 4px; margin: 20px 0; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header"><h1>E-LEARN</h1></div>
			<div class="content">
				<h2>%s</h2>
				%s
			</div>
		</div>
	</body>
	</html>
	`, title, bodyContent)
}

// SendEnrollmentWelcomeEmail greets a student who just enrolled.
func SendEnrollmentWelcomeEmail(email, name, courseTitle, deadline string) error {
	subject := "Welcome to " + courseTitle
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>You are now enrolled in <strong>%s</strong>.</p>
		<div class="info-box">Complete the course before <strong>%s</strong>.</div>
	`, name, courseTitle, deadline)
	return Mail.Send([]string{email}, subject, getEmailTemplate("Enrollment Confirmed", body))
}

// SendCourseUpdateEmail tells enrolled students that a course changed.
func SendCourseUpdateEmail(emails []string, courseTitle string) error {
	if len(emails) == 0 {
		return nil
	}
	subject := "Course Updated: " + courseTitle
	body := fmt.Sprintf(`
		<p>The course <strong>%s</strong> has been updated by its instructor.</p>
		<p>Log in to see what is new.</p>
	`, courseTitle)
	return Mail.Send(emails, subject, getEmailTemplate("Course Update", body))
}
