package notify

import (
	"html/template"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wfplan-dev/wfplan-core/internal/domain"
)

func TestMailerSendRejectsUnknownType(t *testing.T) {
	templates := map[string]*template.Template{
		domain.NotificationPlanCompleted: template.Must(template.New("ok").Parse("ok")),
	}
	m := NewMailer(nil, "noreply@example.com", templates)

	err := m.Send(domain.Notification{Type: "unknown", To: "a@example.com"})
	require.Error(t, err)

	var unsupported *UnsupportedNotificationError
	require.ErrorAs(t, err, &unsupported)
	require.Equal(t, "unknown", unsupported.Type)
}
