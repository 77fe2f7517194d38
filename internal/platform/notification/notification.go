// Package notification delivers supervisor escalation notices for SLA
// violations. Rendering and retry live here; actual transport is behind the
// EmailSender and SMSSender interfaces owned by the surrounding platform.
package notification

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// EmailSender is the interface for sending email messages.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// SMSSender is the interface for sending SMS messages.
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

// SupervisorDirectory resolves the escalation contact for a provider.
type SupervisorDirectory interface {
	SupervisorContact(ctx context.Context, providerID uuid.UUID) (email, phone string, err error)
}

const (
	violationSubject = "SLA violation: consultation {{consultation_id}}"
	violationBody    = "Consultation {{consultation_id}} assigned to provider {{provider_id}} " +
		"has exceeded its response-time SLA by {{violation_minutes}} minutes. " +
		"Please review and reassign if necessary."
)

// render substitutes {{key}} placeholders.
func render(tmpl string, data map[string]string) string {
	out := tmpl
	for k, v := range data {
		out = strings.ReplaceAll(out, "{{"+k+"}}", v)
	}
	return out
}

// Service renders and delivers supervisor notifications with bounded retry.
// It satisfies the SLA monitor's SupervisorNotifier interface.
type Service struct {
	directory  SupervisorDirectory
	email      EmailSender
	sms        SMSSender
	logger     zerolog.Logger
	maxRetries int
	backoff    time.Duration
}

func NewService(directory SupervisorDirectory, email EmailSender, sms SMSSender, logger zerolog.Logger) *Service {
	return &Service{
		directory:  directory,
		email:      email,
		sms:        sms,
		logger:     logger,
		maxRetries: 3,
		backoff:    500 * time.Millisecond,
	}
}

// NotifySupervisor renders the violation notice and delivers it to the
// provider's supervisor. Email is the primary channel; SMS is attempted as
// a fallback when email delivery exhausts its retries.
func (s *Service) NotifySupervisor(ctx context.Context, providerID, consultationID uuid.UUID, violationMinutes int) error {
	email, phone, err := s.directory.SupervisorContact(ctx, providerID)
	if err != nil {
		return fmt.Errorf("resolve supervisor for provider %s: %w", providerID, err)
	}

	data := map[string]string{
		"consultation_id":   consultationID.String(),
		"provider_id":       providerID.String(),
		"violation_minutes": fmt.Sprintf("%d", violationMinutes),
	}
	subject := render(violationSubject, data)
	body := render(violationBody, data)

	if email != "" && s.email != nil {
		if err := s.withRetry(ctx, func() error {
			return s.email.SendEmail(ctx, email, subject, body)
		}); err == nil {
			return nil
		} else {
			s.logger.Warn().Err(err).Str("provider_id", providerID.String()).
				Msg("email escalation failed, falling back to sms")
		}
	}

	if phone != "" && s.sms != nil {
		return s.withRetry(ctx, func() error {
			return s.sms.SendSMS(ctx, phone, body)
		})
	}

	return fmt.Errorf("no reachable escalation channel for provider %s", providerID)
}

func (s *Service) withRetry(ctx context.Context, send func() error) error {
	var err error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.backoff * time.Duration(attempt)):
			}
		}
		if err = send(); err == nil {
			return nil
		}
	}
	return err
}
