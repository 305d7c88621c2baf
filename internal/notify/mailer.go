package notify

import (
	"context"
	"html/template"

	"github.com/wneessen/go-mail"

	"github.com/wfplan-dev/wfplan-core/internal/domain"
)

// Mailer renders a domain.Notification into an email and sends it,
// mirroring cmd/mail's template-per-type switch.
type Mailer struct {
	client    *mail.Client
	from      string
	templates map[string]*template.Template
}

// NewMailer builds a Mailer for client, sending from the given
// address, rendering notifications with templates keyed by
// domain.Notification.Type.
func NewMailer(client *mail.Client, from string, templates map[string]*template.Template) *Mailer {
	return &Mailer{client: client, from: from, templates: templates}
}

// Send renders and delivers n, looking up its template by n.Type.
func (m *Mailer) Send(n domain.Notification) error {
	tmpl, ok := m.templates[n.Type]
	if !ok {
		return &UnsupportedNotificationError{Type: n.Type}
	}

	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return err
	}
	if err := msg.To(n.To); err != nil {
		return err
	}
	if err := msg.SetBodyHTMLTemplate(tmpl, n.Data); err != nil {
		return err
	}

	switch n.Type {
	case domain.NotificationPlanCompleted:
		msg.Subject("Your shift plan is ready")
	case domain.NotificationPlanFailed:
		msg.Subject("Your shift plan run failed")
	}

	return m.client.DialAndSend(msg)
}

// DialWithContext verifies SMTP connectivity, mirroring cmd/mail's
// startup check before it begins consuming.
func (m *Mailer) DialWithContext(ctx context.Context) error {
	return m.client.DialWithContext(ctx)
}

// UnsupportedNotificationError reports an unrecognized notification type.
type UnsupportedNotificationError struct {
	Type string
}

func (e *UnsupportedNotificationError) Error() string {
	return "notify: unsupported notification type " + e.Type
}
