// Package notification delivers best-effort email notifications with
// template rendering. Delivery failures are logged, never propagated, so a
// broken mail relay cannot fail an API call.
package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// EmailSender is the interface for sending email messages.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// Template defines a reusable notification template.
type Template struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Built-in template IDs.
const (
	TemplateAppointmentScheduled = "appointment-scheduled"
	TemplateAppointmentBooked    = "appointment-booked-doctor"
	TemplateAppointmentUpdated   = "appointment-updated"
	TemplateStatusUpdated        = "appointment-status-updated"
	TemplateAppointmentCancelled = "appointment-cancelled"
)

// TemplateEngine manages notification templates and renders them with data.
type TemplateEngine struct {
	mu        sync.RWMutex
	templates map[string]*Template
}

// NewTemplateEngine creates a TemplateEngine with the built-in templates pre-registered.
func NewTemplateEngine() *TemplateEngine {
	e := &TemplateEngine{
		templates: make(map[string]*Template),
	}
	e.registerBuiltIn()
	return e
}

func (e *TemplateEngine) registerBuiltIn() {
	builtIn := []Template{
		{
			ID:      TemplateAppointmentScheduled,
			Name:    "Appointment Scheduled",
			Subject: "Appointment Scheduled",
			Body:    "Your appointment has been scheduled for {{date}} at {{time}}.",
		},
		{
			ID:      TemplateAppointmentBooked,
			Name:    "New Appointment",
			Subject: "New Appointment",
			Body:    "New appointment scheduled with {{patient_name}} on {{date}} at {{time}}.",
		},
		{
			ID:      TemplateAppointmentUpdated,
			Name:    "Appointment Updated",
			Subject: "Appointment Updated",
			Body:    "Your appointment has been updated. It is now on {{date}} at {{time}}.",
		},
		{
			ID:      TemplateStatusUpdated,
			Name:    "Appointment Status Updated",
			Subject: "Appointment Status Updated",
			Body:    "Your appointment status has been updated to: {{status}}",
		},
		{
			ID:      TemplateAppointmentCancelled,
			Name:    "Appointment Cancelled",
			Subject: "Appointment Cancelled",
			Body:    "Your appointment on {{date}} at {{time}} has been cancelled.",
		},
	}
	for i := range builtIn {
		e.templates[builtIn[i].ID] = &builtIn[i]
	}
}

// RegisterTemplate adds or replaces a template.
func (e *TemplateEngine) RegisterTemplate(t Template) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.templates[t.ID] = &t
}

// Render looks up a template by ID and performs {{key}} replacement using the
// supplied data map. Keys present in the template but absent from data are left
// as-is.
func (e *TemplateEngine) Render(templateID string, data map[string]string) (subject, body string, err error) {
	e.mu.RLock()
	t, ok := e.templates[templateID]
	e.mu.RUnlock()
	if !ok {
		return "", "", fmt.Errorf("template %q not found", templateID)
	}

	subject = t.Subject
	body = t.Body
	for k, v := range data {
		placeholder := "{{" + k + "}}"
		subject = strings.ReplaceAll(subject, placeholder, v)
		body = strings.ReplaceAll(body, placeholder, v)
	}
	return subject, body, nil
}

// Mailer renders templates and sends them through an EmailSender. Send
// failures are logged and swallowed.
type Mailer struct {
	sender    EmailSender
	templates *TemplateEngine
	logger    zerolog.Logger
}

// NewMailer creates a Mailer. A nil sender disables delivery entirely; sends
// become no-ops with a warning.
func NewMailer(sender EmailSender, tpl *TemplateEngine, logger zerolog.Logger) *Mailer {
	return &Mailer{sender: sender, templates: tpl, logger: logger}
}

// Send renders the template and delivers it. Always returns nil unless the
// template itself cannot be rendered, so callers can treat delivery as
// fire-and-forget.
func (m *Mailer) Send(ctx context.Context, templateID, to string, data map[string]string) error {
	subject, body, err := m.templates.Render(templateID, data)
	if err != nil {
		return err
	}

	if m.sender == nil {
		m.logger.Warn().Str("to", to).Str("template", templateID).
			Msg("email configuration not set, skipping email send")
		return nil
	}

	if err := m.sender.SendEmail(ctx, to, subject, body); err != nil {
		m.logger.Error().Err(err).Str("to", to).Str("template", templateID).
			Msg("email send error")
		return nil
	}

	m.logger.Info().Str("to", to).Str("template", templateID).Msg("email sent")
	return nil
}

// EmailCall records a single call to SendEmail.
type EmailCall struct {
	To      string
	Subject string
	Body    string
}

// MockEmailSender is a test double for EmailSender.
type MockEmailSender struct {
	mu         sync.Mutex
	calls      []EmailCall
	ShouldFail bool
	FailError  string
}

// SendEmail records the call and optionally returns an error.
func (m *MockEmailSender) SendEmail(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, EmailCall{To: to, Subject: subject, Body: body})
	if m.ShouldFail {
		return errors.New(m.FailError)
	}
	return nil
}

// Calls returns a copy of recorded email calls.
func (m *MockEmailSender) Calls() []EmailCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]EmailCall, len(m.calls))
	copy(out, m.calls)
	return out
}
