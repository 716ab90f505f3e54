// Package report implements the two-step player report workflow and the
// pending report queue worked by staff.
package report

import (
	"errors"
	"regexp"
	"time"

	"github.com/leighmacdonald/mcbans/pkg/fp"
)

var (
	ErrSelfReport    = errors.New("you cannot report yourself")
	ErrSessionClosed = errors.New("report session is closed")
	ErrSaveReport    = errors.New("failed to save report")
	ErrQueryReports  = errors.New("failed to query reports")
	ErrAcceptReport  = errors.New("failed to accept report")
)

// Status of a durable report record. Transitions only ever run
// pending -> accepted.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
)

// Reasons is the fixed selection set offered by the report UI. Matching is
// case-sensitive against these exact strings.
var Reasons = []string{ //nolint:gochecknoglobals
	"Chat Abuse",
	"Cheating (Hacks)",
	"Bad Name",
	"Bad Skin",
	"Other",
	"Bug Abuse",
	"Pet Name Abuse",
	"Boosting / Exploits",
}

// Clients send the selected reason back with its display decoration still
// attached (section-sign colour codes).
var reDecoration = regexp.MustCompile(`§.`)

// StripDecoration removes display colour codes from a reason label so it can
// be matched against the canonical set.
func StripDecoration(label string) string {
	return reDecoration.ReplaceAllString(label, "")
}

// ValidReason reports whether the decorated label matches one of the allowed
// reasons exactly once stripped.
func ValidReason(label string) bool {
	return fp.Contains(Reasons, StripDecoration(label))
}

// Report is a durable report record.
type Report struct {
	ReportID  int64     `json:"report_id"`
	Reporter  string    `json:"reporter"`
	Reported  string    `json:"reported"`
	Reason    string    `json:"reason"`
	CreatedOn time.Time `json:"created_on"`
	Status    Status    `json:"status"`
}
