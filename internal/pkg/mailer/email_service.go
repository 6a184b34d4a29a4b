package mailer

import (
	"fmt"
	"html"
	"time"

	"udla-mentor-be/internal/pkg/logger"

	"gopkg.in/gomail.v2"
)

// EscalationAlert is what the mentor on duty reads about an escalated case.
type EscalationAlert struct {
	SessionID   string
	Source      string
	Certificate string
	Nickname    string
	Career      string
	Email       string
	At          time.Time
}

type IEmailService interface {
	SendEscalationAlert(alert EscalationAlert) error
}

type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type emailService struct {
	dialer      sender
	senderEmail string
	senderName  string
	mentorEmail string
	logger      logger.ILogger
}

func NewEmailService(host string, port int, username, password, senderName, mentorEmail string, log logger.ILogger) IEmailService {
	return &emailService{
		dialer:      gomail.NewDialer(host, port, username, password),
		senderEmail: username,
		senderName:  senderName,
		mentorEmail: mentorEmail,
		logger:      log,
	}
}

var sourceLabels = map[string]string{
	"message":  "mensaje del estudiante",
	"agent":    "respuesta del agente",
	"document": "documento subido",
}

func (s *emailService) buildEscalationMessage(alert EscalationAlert) *gomail.Message {
	m := gomail.NewMessage(gomail.SetEncoding(gomail.Unencoded))
	m.SetAddressHeader("From", s.senderEmail, s.senderName)
	m.SetHeader("To", s.mentorEmail)
	m.SetHeader("Subject", "Caso escalado a mentor")

	source := sourceLabels[alert.Source]
	if source == "" {
		source = alert.Source
	}
	row := func(label, value string) string {
		if value == "" {
			return ""
		}
		return fmt.Sprintf("<tr><td><strong>%s</strong></td><td>%s</td></tr>", label, html.EscapeString(value))
	}

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Un estudiante necesita acompañamiento</h2>
			<table>%s%s%s%s%s%s</table>
			<p>Revisa la conversación en el panel de mentores.</p>
		</div>
	`,
		row("Sesión", alert.SessionID),
		row("Origen", source),
		row("Certificado", alert.Certificate),
		row("Estudiante", alert.Nickname),
		row("Carrera", alert.Career),
		row("Correo", alert.Email),
	)
	m.SetBody("text/html", body)
	return m
}

func (s *emailService) SendEscalationAlert(alert EscalationAlert) error {
	if s.mentorEmail == "" {
		return nil
	}

	if err := s.dialer.DialAndSend(s.buildEscalationMessage(alert)); err != nil {
		s.logger.Error("Mailer", "Failed to send escalation alert", map[string]interface{}{
			"session_id": alert.SessionID,
			"error":      err.Error(),
		})
		return err
	}

	s.logger.Info("Mailer", "Escalation alert sent", map[string]interface{}{"session_id": alert.SessionID})
	return nil
}
