// Package email implementa el colaborador Mailer: entrega de códigos de
// verificación y links de reset por SMTP.
package email

import (
	"crypto/tls"
	"fmt"

	mail "github.com/go-mail/mail"

	"github.com/fitpulse/identity/internal/observability/logger"
)

// Sender es la interfaz para enviar emails. Implementada por SMTPSender.
// El destinatario recibe html y texto como multipart/alternative.
type Sender interface {
	Send(to string, subject string, htmlBody string, textBody string) error
}

type SMTPSender struct {
	Host               string
	Port               int
	From               string
	User               string
	Pass               string
	TLSMode            string // "auto" | "ssl" | "none"
	InsecureSkipVerify bool
}

func NewSMTPSender(host string, port int, from, user, pass string) *SMTPSender {
	return &SMTPSender{
		Host:    host,
		Port:    port,
		From:    from,
		User:    user,
		Pass:    pass,
		TLSMode: "auto",
	}
}

func (s *SMTPSender) Send(to, subject, htmlBody, textBody string) error {
	log := logger.Named("smtp")
	m := mail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)

	if textBody != "" {
		m.SetBody("text/plain", textBody)
	}
	if htmlBody != "" {
		if textBody == "" {
			m.SetBody("text/html", htmlBody)
		} else {
			m.AddAlternative("text/html", htmlBody)
		}
	}

	d := mail.NewDialer(s.Host, s.Port, s.User, s.Pass)
	d.TLSConfig = &tls.Config{
		ServerName:         s.Host,
		InsecureSkipVerify: s.InsecureSkipVerify, // sólo dev
	}
	switch s.TLSMode {
	case "ssl":
		d.SSL = true
	case "none":
		d.TLSConfig = &tls.Config{InsecureSkipVerify: s.InsecureSkipVerify}
	default:
		// "auto": go-mail negocia STARTTLS si corresponde
	}

	if err := d.DialAndSend(m); err != nil {
		log.Error("send failed", logger.Email(to), logger.Err(err))
		return fmt.Errorf("smtp send: %w", err)
	}
	log.Debug("send ok", logger.Email(to))
	return nil
}

// LogSender no envía nada: loguea el despacho. Para dev sin SMTP.
type LogSender struct{}

func (LogSender) Send(to, subject, _, _ string) error {
	logger.Named("smtp").Info("mail suppressed (log sender)",
		logger.Email(to), logger.String("subject", subject))
	return nil
}
