// Package punishment implements the punishment lifecycle: issuance,
// time-bounded validity, expiry and revocation.
package punishment

import (
	"errors"
	"fmt"
	"net/netip"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/leighmacdonald/mcbans/pkg/datetime"
)

var (
	ErrNameEmpty          = errors.New("player name cannot be empty")
	ErrReasonEmpty        = errors.New("reason cannot be empty")
	ErrInvalidDuration    = errors.New("duration cannot be negative")
	ErrDurationRequired   = errors.New("temporary punishments require a positive duration")
	ErrDurationNotAllowed = errors.New("permanent punishments cannot have a duration")
	ErrInvalidKind        = errors.New("invalid punishment type")
	ErrInvalidGroup       = errors.New("invalid punishment group")
)

// Kind is the closed set of punishment types. The stored representation is
// the upper case name, eg. "TEMPBAN".
type Kind int

const (
	Ban Kind = iota
	TempBan
	IPBan
	TempIPBan
	Mute
	TempMute
	Warn
	TempWarn
	Note
	Kick
)

func (k Kind) String() string {
	switch k {
	case Ban:
		return "BAN"
	case TempBan:
		return "TEMPBAN"
	case IPBan:
		return "IPBAN"
	case TempIPBan:
		return "TEMPIPBAN"
	case Mute:
		return "MUTE"
	case TempMute:
		return "TEMPMUTE"
	case Warn:
		return "WARN"
	case TempWarn:
		return "TEMPWARN"
	case Note:
		return "NOTE"
	case Kick:
		return "KICK"
	default:
		return "UNKNOWN"
	}
}

// Temporary is true for kinds that carry an expiry.
func (k Kind) Temporary() bool {
	switch k {
	case TempBan, TempIPBan, TempMute, TempWarn:
		return true
	case Ban, IPBan, Mute, Warn, Note, Kick:
		return false
	default:
		return false
	}
}

func KindFromString(value string) (Kind, error) {
	for _, kind := range []Kind{Ban, TempBan, IPBan, TempIPBan, Mute, TempMute, Warn, TempWarn, Note, Kick} {
		if kind.String() == value {
			return kind, nil
		}
	}

	return Ban, ErrInvalidKind
}

// Group is a family of kinds used by the revoke and query predicates.
type Group int

const (
	GroupBan Group = iota
	GroupMute
)

func (g Group) String() string {
	if g == GroupMute {
		return "mute"
	}

	return "ban"
}

// Kinds returns every kind belonging to the group.
func (g Group) Kinds() []Kind {
	if g == GroupMute {
		return []Kind{Mute, TempMute}
	}

	return []Kind{Ban, TempBan, IPBan, TempIPBan}
}

func GroupFromString(value string) (Group, error) {
	switch value {
	case "ban":
		return GroupBan, nil
	case "mute":
		return GroupMute, nil
	default:
		return GroupBan, ErrInvalidGroup
	}
}

// Punishment is a single record in the append-only punishment audit trail.
// Rows are never deleted. Revocation flips Active to false and expiry is a
// computed property of EndTime, never a stored flag.
type Punishment struct {
	PunishmentID int64         `json:"punishment_id"`
	PlayerName   string        `json:"player_name"`
	PlayerUUID   uuid.NullUUID `json:"player_uuid"`
	PlayerIP     *netip.Addr   `json:"player_ip"`
	Kind         Kind          `json:"kind"`
	Reason       string        `json:"reason"`
	Operator     string        `json:"operator"`
	// Duration is zero for permanent punishments.
	Duration  time.Duration `json:"duration"`
	StartTime time.Time     `json:"start_time"`
	// EndTime is nil for permanent punishments.
	EndTime *time.Time `json:"end_time"`
	Active  bool       `json:"active"`
	Silent  bool       `json:"silent"`
}

// Permanent is true when the punishment never expires on its own.
func (p Punishment) Permanent() bool {
	return p.EndTime == nil
}

// Expired is true once a temporary punishment has run out. Permanent
// punishments never expire.
func (p Punishment) Expired(now time.Time) bool {
	return p.EndTime != nil && !p.EndTime.After(now)
}

// Live is the operative predicate everywhere: not revoked and not expired.
func (p Punishment) Live(now time.Time) bool {
	return p.Active && !p.Expired(now)
}

// DurationText renders the validity for user facing messages.
func (p Punishment) DurationText() string {
	if p.Permanent() {
		return "permanently"
	}

	return "for " + datetime.FmtDuration(p.Duration)
}

// BroadcastText renders the staff announcement for a freshly issued
// punishment.
func (p Punishment) BroadcastText() string {
	var verb string

	switch p.Kind {
	case Ban, TempBan, IPBan, TempIPBan:
		verb = "banned"
	case Mute, TempMute:
		verb = "muted"
	case Warn, TempWarn:
		verb = "warned"
	case Kick:
		verb = "kicked"
	case Note:
		verb = "noted"
	default:
		verb = "punished"
	}

	if p.Kind == Kick || p.Kind == Note {
		return fmt.Sprintf("%s got %s by %s for %s", p.PlayerName, verb, p.Operator, p.Reason)
	}

	return fmt.Sprintf("%s got %s by %s for %s %s", p.PlayerName, verb, p.Operator, p.Reason, p.DurationText())
}

// Opts are the caller supplied fields for a new punishment.
type Opts struct {
	PlayerName string
	PlayerUUID uuid.NullUUID
	PlayerIP   *netip.Addr
	Kind       Kind
	Reason     string
	Operator   string
	Duration   time.Duration
	Silent     bool
}

func (o Opts) validate() error {
	if o.PlayerName == "" {
		return ErrNameEmpty
	}

	if o.Reason == "" {
		return ErrReasonEmpty
	}

	if o.Duration < 0 {
		return ErrInvalidDuration
	}

	if o.Kind.Temporary() && o.Duration == 0 {
		return ErrDurationRequired
	}

	if !o.Kind.Temporary() && o.Duration > 0 {
		return ErrDurationNotAllowed
	}

	return nil
}

// NewPunishment builds an unsaved record, computing the expiry from the
// duration when one is set.
func NewPunishment(opts Opts, now time.Time) (Punishment, error) {
	if errValidate := opts.validate(); errValidate != nil {
		return Punishment{}, errValidate
	}

	record := Punishment{
		PlayerName: opts.PlayerName,
		PlayerUUID: opts.PlayerUUID,
		PlayerIP:   opts.PlayerIP,
		Kind:       opts.Kind,
		Reason:     opts.Reason,
		Operator:   opts.Operator,
		Duration:   opts.Duration,
		StartTime:  now,
		Active:     true,
		Silent:     opts.Silent,
	}

	if opts.Duration > 0 {
		endTime := now.Add(opts.Duration)
		record.EndTime = &endTime
	}

	return record, nil
}
