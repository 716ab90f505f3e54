package report_test

import (
	"testing"

	"github.com/leighmacdonald/mcbans/internal/report"
	"github.com/stretchr/testify/require"
)

func TestStripDecoration(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		input    string
		expected string
	}{
		{"Chat Abuse", "Chat Abuse"},
		{"§cChat Abuse", "Chat Abuse"},
		{"§c§lCheating (Hacks)§r", "Cheating (Hacks)"},
		{"§aBoosting / Exploits", "Boosting / Exploits"},
		{"", ""},
	}

	for _, testCase := range testCases {
		require.Equal(t, testCase.expected, report.StripDecoration(testCase.input))
	}
}

func TestValidReason(t *testing.T) {
	t.Parallel()

	for _, reason := range report.Reasons {
		require.True(t, report.ValidReason(reason))
		require.True(t, report.ValidReason("§c"+reason))
	}

	require.False(t, report.ValidReason("Being Rude"))
	// Case-sensitive match after stripping.
	require.False(t, report.ValidReason("chat abuse"))
	require.False(t, report.ValidReason(""))
}
