package notify

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wfplan-dev/wfplan-core/internal/domain"
)

func TestPlanCompletedBuildsNotification(t *testing.T) {
	summary := domain.PlanResultSummary{PlanRunID: 7, TotalEnergyAfter: 1.5}
	n := PlanCompleted("ops@example.com", 7, "week 12 plan", summary)

	require.Equal(t, domain.NotificationPlanCompleted, n.Type)
	require.Equal(t, "ops@example.com", n.To)

	data, ok := n.Data.(domain.PlanCompletedData)
	require.True(t, ok)
	require.Equal(t, int64(7), data.PlanRunID)
	require.Equal(t, "week 12 plan", data.Description)
	require.Equal(t, summary, data.Summary)
}

func TestPlanFailedBuildsNotification(t *testing.T) {
	n := PlanFailed("ops@example.com", 9, "week 13 plan", "missing sampler")

	require.Equal(t, domain.NotificationPlanFailed, n.Type)
	data, ok := n.Data.(domain.PlanFailedData)
	require.True(t, ok)
	require.Equal(t, int64(9), data.PlanRunID)
	require.Equal(t, "missing sampler", data.Reason)
}
