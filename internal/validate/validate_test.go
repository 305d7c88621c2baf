package validate

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wfplan-dev/wfplan-core/internal/domain"
)

func TestStructNoErrorsOnValidRuleSpec(t *testing.T) {
	v, err := New()
	require.NoError(t, err)

	errs := v.Struct(domain.RuleSpec{Pattern: "(M+OFF)*"})
	require.Empty(t, errs)
}

func TestStructReportsMissingPattern(t *testing.T) {
	v, err := New()
	require.NoError(t, err)

	errs := v.Struct(domain.RuleSpec{})
	require.NotEmpty(t, errs)
	require.Equal(t, "Pattern", errs[0].Field)
}

func TestStructReportsOutOfRangeComfortWeight(t *testing.T) {
	v, err := New()
	require.NoError(t, err)

	errs := v.Struct(domain.PlanRun{Description: "x", TempSchedule: 0.9, ComfortWeight: -1})
	require.NotEmpty(t, errs)
}
