package service

import (
	"fmt"
	"net/url"

	"github.com/rs/zerolog/log"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/vkotliar/profile-backend/internal/config"
)

// PasswordResetMailer delivers password change confirmation links.
type PasswordResetMailer interface {
	SendPasswordConfirmEmail(toEmail, toName, token string) error
}

// EmailService sends transactional email through SendGrid.
type EmailService struct {
	apiKey         string
	fromAddress    string
	fromName       string
	confirmBaseURL string
}

// NewEmailService creates a new EmailService.
func NewEmailService(emailCfg *config.EmailSettings, resetCfg *config.PasswordResetSettings) (*EmailService, error) {
	if emailCfg.SendGridAPIKey == "" {
		return nil, fmt.Errorf("sendgrid API key is not configured")
	}
	return &EmailService{
		apiKey:         emailCfg.SendGridAPIKey,
		fromAddress:    emailCfg.FromAddress,
		fromName:       emailCfg.FromName,
		confirmBaseURL: resetCfg.ConfirmBaseURL,
	}, nil
}

// SendPasswordConfirmEmail sends the confirmation link for a staged password
// change. The change only takes effect once the link is visited.
func (s *EmailService) SendPasswordConfirmEmail(toEmail, toName, token string) error {
	confirmLink := s.confirmLink(token)

	from := mail.NewEmail(s.fromName, s.fromAddress)
	to := mail.NewEmail(toName, toEmail)
	subject := "Confirm your password change"
	plainTextContent := fmt.Sprintf("A password change was requested for your account. To apply it, open the following link: %s\n\nIf you did not request this change, you can ignore this email.", confirmLink)
	htmlContent := fmt.Sprintf("<p>A password change was requested for your account.</p><p><a href=\"%s\">Confirm password change</a></p><p>If you did not request this change, you can ignore this email.</p>", confirmLink)

	message := mail.NewSingleEmail(from, subject, to, plainTextContent, htmlContent)
	client := sendgrid.NewSendClient(s.apiKey)
	response, err := client.Send(message)
	if err != nil {
		log.Error().Err(err).Msg("Failed to send password confirmation email")
		return err
	}

	log.Info().Int("status_code", response.StatusCode).Msg("Password confirmation email sent")
	return nil
}

// confirmLink appends the token to the configured confirmation base URL.
func (s *EmailService) confirmLink(token string) string {
	return s.confirmBaseURL + "?token=" + url.QueryEscape(token)
}

// LogMailer is a development fallback used when no email provider is
// configured. It writes the confirmation link to the log instead of
// delivering it, so the flow stays exercisable locally.
type LogMailer struct {
	confirmBaseURL string
}

// NewLogMailer creates a LogMailer.
func NewLogMailer(resetCfg *config.PasswordResetSettings) *LogMailer {
	return &LogMailer{confirmBaseURL: resetCfg.ConfirmBaseURL}
}

// SendPasswordConfirmEmail logs the confirmation link for the staged change.
func (m *LogMailer) SendPasswordConfirmEmail(toEmail, _, token string) error {
	log.Info().
		Str("email", toEmail).
		Str("confirm_link", m.confirmBaseURL+"?token="+url.QueryEscape(token)).
		Msg("Email delivery not configured, logging password confirmation link")
	return nil
}
