// File: /services/email_service.go
package services

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"runcrew-api/config"
)

type EmailService struct {
	config *config.Config
	dialer *gomail.Dialer
}

func NewEmailService(cfg *config.Config) *EmailService {
	dialer := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)

	return &EmailService{
		config: cfg,
		dialer: dialer,
	}
}

// SendCrewApprovedEmail mirrors a crew approval notification to email
func (es *EmailService) SendCrewApprovedEmail(email, nickname, crewName string) error {
	subject := fmt.Sprintf("Welcome to %s!", crewName)
	body := fmt.Sprintf(`
		<html>
		<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
			<h2 style="color: #2E7D32;">You're in, %s!</h2>
			<p>Your application to join <strong>%s</strong> has been approved.</p>
			<p>Head over to the crew board to say hi and check the latest notices.</p>
			<p style="color: #888; font-size: 12px;">You receive this email because crew
			notifications are enabled in your profile settings.</p>
		</body>
		</html>
	`, nickname, crewName)

	return es.send(email, subject, body)
}

func (es *EmailService) send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", fmt.Sprintf("%s <%s>", es.config.FromName, es.config.FromEmail))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := es.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
