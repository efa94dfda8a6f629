package mailer

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"gopkg.in/gomail.v2"

	"vendhansite/config"
	"vendhansite/database"
)

var ErrNotConfigured = errors.New("mail transport is not configured")

// Mailer sends transactional email over SMTP. All sends are synchronous;
// callers decide what a failure means for their request.
type Mailer struct {
	cfg *config.Config
}

func New(cfg *config.Config) *Mailer {
	return &Mailer{cfg: cfg}
}

func (m *Mailer) Configured() bool {
	return m.cfg.MailConfigured()
}

func (m *Mailer) send(msg *gomail.Message) error {
	if !m.Configured() {
		return ErrNotConfigured
	}

	sender := m.cfg.MailSender
	if sender == "" {
		sender = m.cfg.MailUsername
	}
	msg.SetHeader("From", sender)

	d := gomail.NewDialer(m.cfg.MailHost, m.cfg.MailPort, m.cfg.MailUsername, m.cfg.MailPassword)
	return d.DialAndSend(msg)
}

// SendOTP emails a verification code to the address that requested it.
func (m *Mailer) SendOTP(email, code string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("To", email)
	msg.SetHeader("Subject", "Your Vendhan Info Tech Verification Code")
	msg.SetBody("text/plain", fmt.Sprintf("Your verification code is: %s\nThis code will expire in 10 minutes.", code))
	msg.AddAlternative("text/html", otpBody(code))
	return m.send(msg)
}

// SendContactNotification forwards a new contact message to the configured
// administrative recipient.
func (m *Mailer) SendContactNotification(cm *database.ContactMessage) error {
	if m.cfg.MailRecipient == "" {
		return ErrNotConfigured
	}
	msg := gomail.NewMessage()
	msg.SetHeader("To", m.cfg.MailRecipient)
	msg.SetHeader("Subject", fmt.Sprintf("New Contact Form Submission from %s %s", cm.FirstName, cm.LastName))
	msg.SetBody("text/html", contactNotificationBody(cm))
	return m.send(msg)
}

// SendApplicationNotification forwards a new job application, attaching the
// uploaded documents.
func (m *Mailer) SendApplicationNotification(app *database.Application, attachmentPaths []string) error {
	if m.cfg.MailRecipient == "" {
		return ErrNotConfigured
	}
	msg := gomail.NewMessage()
	msg.SetHeader("To", m.cfg.MailRecipient)
	msg.SetHeader("Subject", fmt.Sprintf("New Job Application: %s - %s %s", app.Position, app.FirstName, app.LastName))
	msg.SetBody("text/html", applicationNotificationBody(app))
	for _, path := range attachmentPaths {
		msg.Attach(path)
	}
	return m.send(msg)
}

// SendReply delivers an admin's reply to the original submitter.
func (m *Mailer) SendReply(toEmail, regarding, replyContent string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("To", toEmail)
	msg.SetHeader("Subject", "Re: "+regarding)
	msg.SetBody("text/plain", replyContent)
	msg.AddAlternative("text/html", replyBody(replyContent))
	return m.send(msg)
}

// LogSendFailure is shared by handlers that commit first and mail second:
// the send failure is logged and swallowed, nothing is retried.
func LogSendFailure(context string, err error) {
	if err == nil {
		return
	}
	log.Printf("%s: email send failed (no retry): %v", strings.TrimSpace(context), err)
}
