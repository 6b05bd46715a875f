package service

import (
	"fmt"
	"net/smtp"

	"go.uber.org/zap"

	"github.com/tastebook/backend/config"
)

// EmailService sends transactional mail over SMTP. When SMTP is not
// configured the message is logged instead, which is how local development
// reads its magic links.
type EmailService struct {
	smtpHost     string
	smtpPort     string
	smtpUsername string
	smtpPassword string
	fromEmail    string
	logger       *zap.Logger
}

// NewEmailService creates a new EmailService instance
func NewEmailService(cfg *config.Config, logger *zap.Logger) *EmailService {
	return &EmailService{
		smtpHost:     cfg.SMTPHost,
		smtpPort:     cfg.SMTPPort,
		smtpUsername: cfg.SMTPUsername,
		smtpPassword: cfg.SMTPPassword,
		fromEmail:    cfg.EmailFrom,
		logger:       logger,
	}
}

// SendMagicLinkEmail mails a one-time sign-in link.
func (s *EmailService) SendMagicLinkEmail(to, link string) error {
	subject := "Sign in to Tastebook"
	body := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
	<h2>Sign in to Tastebook</h2>
	<p>Click the link below to sign in. It can be used once and expires in 15 minutes.</p>
	<p><a href="%s">Sign in</a></p>
	<p style="color: #666; font-size: 12px;">If you didn't request this email, you can safely ignore it.</p>
</body>
</html>
`, link)

	return s.SendEmail(to, subject, body)
}

// SendEmail delivers one message, or logs it when SMTP is unconfigured.
func (s *EmailService) SendEmail(to, subject, body string) error {
	if s.smtpHost == "" || s.smtpPort == "" {
		s.logger.Info("smtp not configured, logging email",
			zap.String("to", to),
			zap.String("subject", subject),
			zap.String("body", body),
		)
		return nil
	}

	auth := smtp.PlainAuth("", s.smtpUsername, s.smtpPassword, s.smtpHost)

	msg := []byte(fmt.Sprintf("To: %s\r\n"+
		"From: %s\r\n"+
		"Subject: %s\r\n"+
		"Content-Type: text/html; charset=UTF-8\r\n"+
		"\r\n"+
		"%s\r\n", to, s.fromEmail, subject, body))

	addr := fmt.Sprintf("%s:%s", s.smtpHost, s.smtpPort)
	if err := smtp.SendMail(addr, auth, s.fromEmail, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
