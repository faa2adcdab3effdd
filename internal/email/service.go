package email

import (
	"context"
	"fmt"
	"strings"

	"gopkg.in/gomail.v2"

	"github.com/jwalitptl/care-portal/internal/model"
)

type Service interface {
	SendAppointmentConfirmation(ctx context.Context, booked model.AppointmentBookedPayload) error
}

// Dialer is satisfied by *gomail.Dialer.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type smtpService struct {
	dialer Dialer
	from   string
}

func NewSMTPService(cfg Config) Service {
	return NewService(gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password), cfg.From)
}

func NewService(dialer Dialer, from string) Service {
	return &smtpService{dialer: dialer, from: from}
}

func (s *smtpService) SendAppointmentConfirmation(ctx context.Context, booked model.AppointmentBookedPayload) error {
	if booked.PatientEmail == "" {
		return fmt.Errorf("appointment %s has no patient email", booked.AppointmentID)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetAddressHeader("To", booked.PatientEmail, booked.PatientName)
	m.SetHeader("Subject", fmt.Sprintf("Appointment confirmed for %s at %s", booked.Date, booked.Time))
	m.SetBody("text/plain", confirmationBody(booked))

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send confirmation email: %w", err)
	}
	return nil
}

func confirmationBody(b model.AppointmentBookedPayload) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Hello %s,\n\n", b.PatientName)
	fmt.Fprintf(&sb, "Your appointment with %s is booked for %s at %s.\n", b.ClinicianName, b.Date, b.Time)
	if b.Reason != "" {
		fmt.Fprintf(&sb, "Reason: %s\n", b.Reason)
	}
	sb.WriteString("\nIf you cannot attend, please contact the clinic.\n")
	return sb.String()
}
