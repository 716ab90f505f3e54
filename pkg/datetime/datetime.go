// Package datetime implements the human duration grammar used when issuing
// and displaying temporary punishments.
package datetime

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidDuration = errors.New("invalid duration")

	reDurationToken = regexp.MustCompile(`(\d+)([smhd])`)
)

// ParseDuration parses a concatenation of <integer><unit> tokens where the
// unit is one of s, m, h or d. Tokens are summed, so "1d12h" is 36 hours.
// Strings prefixed with "#" are handed off to ParseLayout instead.
//
// A zero result ("0s") parses successfully. Callers issuing temporary
// punishments must reject non-positive values themselves.
func ParseDuration(input string) (time.Duration, error) {
	if strings.HasPrefix(input, "#") {
		return ParseLayout(input[1:])
	}

	matches := reDurationToken.FindAllStringSubmatch(input, -1)
	if matches == nil {
		return 0, ErrInvalidDuration
	}

	var (
		total    time.Duration
		consumed int
	)

	for _, match := range matches {
		consumed += len(match[0])

		value, errValue := strconv.ParseInt(match[1], 10, 64)
		if errValue != nil {
			return 0, errors.Join(errValue, ErrInvalidDuration)
		}

		switch match[2] {
		case "s":
			total += time.Duration(value) * time.Second
		case "m":
			total += time.Duration(value) * time.Minute
		case "h":
			total += time.Duration(value) * time.Hour
		case "d":
			total += time.Duration(value) * 24 * time.Hour
		}
	}

	// Anything the token scan did not consume is malformed, eg. "1x2h".
	if consumed != len(input) {
		return 0, ErrInvalidDuration
	}

	return total, nil
}

// ParseLayout parses the structured "#" duration layout. Only the days
// component is honored. The remaining components are accepted syntactically
// but contribute zero. This matches the historical behaviour and is a known
// limitation, not an oversight.
func ParseLayout(layout string) (time.Duration, error) {
	idx := strings.IndexByte(layout, 'd')
	if idx < 0 {
		return 0, nil
	}

	days, errDays := strconv.ParseInt(layout[:idx], 10, 64)
	if errDays != nil {
		return 0, errors.Join(errDays, ErrInvalidDuration)
	}

	return time.Duration(days) * 24 * time.Hour, nil
}

// FmtDuration renders a duration with the largest applicable unit breakdown,
// eg. "1 day(s) 12 hour(s) 0 minute(s) and 0 second(s)".
func FmtDuration(duration time.Duration) string {
	seconds := int64(duration / time.Second)
	minutes := seconds / 60
	hours := minutes / 60
	days := hours / 24

	switch {
	case days > 0:
		return fmt.Sprintf("%d day(s) %d hour(s) %d minute(s) and %d second(s)",
			days, hours%24, minutes%60, seconds%60)
	case hours > 0:
		return fmt.Sprintf("%d hour(s) %d minute(s) and %d second(s)",
			hours, minutes%60, seconds%60)
	case minutes > 0:
		return fmt.Sprintf("%d minute(s) and %d second(s)", minutes, seconds%60)
	default:
		return fmt.Sprintf("%d second(s)", seconds)
	}
}
