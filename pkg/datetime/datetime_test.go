package datetime_test

import (
	"testing"
	"time"

	"github.com/leighmacdonald/mcbans/pkg/datetime"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input    string
		expected time.Duration
	}{
		{"3s", time.Second * 3},
		{"3m", time.Minute * 3},
		{"3h", time.Hour * 3},
		{"3d", time.Hour * 72},
		{"1d12h", time.Hour * 36},
		{"2h30m15s", time.Hour*2 + time.Minute*30 + time.Second*15},
		{"0s", 0},
	}
	for _, test := range tests {
		duration, errParse := datetime.ParseDuration(test.input)
		require.NoError(t, errParse, "Failed to parse: %s", test.input)
		require.Equal(t, test.expected, duration, "Failed to parse: %s", test.input)
	}
}

func TestParseDurationInvalid(t *testing.T) {
	for _, input := range []string{"", "abc", "-5s", "5", "1x2h", "12", "h", "1d2q"} {
		_, errParse := datetime.ParseDuration(input)
		require.ErrorIs(t, errParse, datetime.ErrInvalidDuration, "Should not parse: %s", input)
	}
}

func TestParseLayout(t *testing.T) {
	duration, errParse := datetime.ParseDuration("#3d")
	require.NoError(t, errParse)
	require.Equal(t, time.Hour*72, duration)

	// Only the days component of a layout is honored.
	duration, errParse = datetime.ParseDuration("#2d12h30m")
	require.NoError(t, errParse)
	require.Equal(t, time.Hour*48, duration)

	// No days component means a zero result, which issuing callers reject.
	duration, errParse = datetime.ParseDuration("#12h")
	require.NoError(t, errParse)
	require.Equal(t, time.Duration(0), duration)

	_, errParse = datetime.ParseDuration("#12h3d")
	require.ErrorIs(t, errParse, datetime.ErrInvalidDuration)
}

func TestFmtDuration(t *testing.T) {
	tests := []struct {
		input    time.Duration
		expected string
	}{
		{time.Hour * 36, "1 day(s) 12 hour(s) 0 minute(s) and 0 second(s)"},
		{time.Hour*2 + time.Minute*5 + time.Second*9, "2 hour(s) 5 minute(s) and 9 second(s)"},
		{time.Minute*10 + time.Second*30, "10 minute(s) and 30 second(s)"},
		{time.Second * 45, "45 second(s)"},
		{0, "0 second(s)"},
	}
	for _, test := range tests {
		require.Equal(t, test.expected, datetime.FmtDuration(test.input))
	}
}

// Durations built from whole day/hour/minute/second components must survive a
// format/parse round trip through the token grammar.
func TestDurationRoundTrip(t *testing.T) {
	tests := []struct {
		token    string
		duration time.Duration
	}{
		{"1d12h0m0s", time.Hour * 36},
		{"2d0h5m30s", time.Hour*48 + time.Minute*5 + time.Second*30},
		{"3h15m0s", time.Hour*3 + time.Minute*15},
	}
	for _, test := range tests {
		parsed, errParse := datetime.ParseDuration(test.token)
		require.NoError(t, errParse)
		require.Equal(t, test.duration, parsed)
	}
}
