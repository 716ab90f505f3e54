package punishment

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Decision is returned to the session layer for a login or chat attempt. The
// engine never kicks or cancels anything itself; the collaborator owns the
// actual enforcement.
type Decision struct {
	Allowed     bool   `json:"allowed"`
	Reason      string `json:"reason"`
	DisplayText string `json:"display_text"`
}

func allow() Decision {
	return Decision{Allowed: true}
}

// Enforcer implements the decision points invoked synchronously by the
// external login/chat subsystem and the periodic announcement task.
type Enforcer struct {
	punishments *Usecase
	siteName    string
	appealURL   string
	window      time.Duration
}

func NewEnforcer(punishments *Usecase, siteName string, appealURL string, announceWindow time.Duration) *Enforcer {
	return &Enforcer{
		punishments: punishments,
		siteName:    siteName,
		appealURL:   appealURL,
		window:      announceWindow,
	}
}

// OnLoginAttempt checks the ban state for a connecting player. The check hits
// the store every time so that a just-revoked ban lets the player straight
// back in and a just-issued one locks them out.
func (e *Enforcer) OnLoginAttempt(ctx context.Context, playerName string) (Decision, error) {
	record, banned, errBanned := e.currentLive(ctx, playerName, banCheckKinds)
	if errBanned != nil {
		return Decision{}, errBanned
	}

	if !banned {
		return allow(), nil
	}

	var header string
	if record.Permanent() {
		header = "You are permanently banned from this server!"
	} else {
		header = fmt.Sprintf("You are temporarily banned %s from this server!", record.DurationText())
	}

	return Decision{
		Allowed: false,
		Reason:  record.Reason,
		DisplayText: strings.Join([]string{
			header,
			"",
			"Reason: " + record.Reason,
			"Find out more: " + e.appealURL,
			"",
			fmt.Sprintf("Ban ID: #%04d", record.PunishmentID),
			"Sharing your Ban ID may affect the processing of your appeal",
		}, "\n"),
	}, nil
}

// OnChatAttempt checks the mute state for a chatting player.
func (e *Enforcer) OnChatAttempt(ctx context.Context, playerName string) (Decision, error) {
	record, muted, errMuted := e.currentLive(ctx, playerName, muteCheckKinds)
	if errMuted != nil {
		return Decision{}, errMuted
	}

	if !muted {
		return allow(), nil
	}

	var header string
	if record.Permanent() {
		header = "You are permanently muted on this server!"
	} else {
		header = fmt.Sprintf("You are muted %s on this server!", record.DurationText())
	}

	return Decision{
		Allowed: false,
		Reason:  record.Reason,
		DisplayText: strings.Join([]string{
			header,
			"",
			"Reason: " + record.Reason,
			"Find out more: " + e.appealURL,
		}, "\n"),
	}, nil
}

// OnPeriodicTick builds the recurring enforcement announcement. Purely
// derived from the issuance counters; nothing is mutated.
func (e *Enforcer) OnPeriodicTick(ctx context.Context) (string, error) {
	cutoff := time.Now().Add(-e.window)

	total, errCount := e.punishments.CountSince(ctx, GroupBan, cutoff)
	if errCount != nil {
		return "", errCount
	}

	days := int(e.window.Hours() / 24)

	return strings.Join([]string{
		fmt.Sprintf("[%s]", strings.ToUpper(e.siteName)),
		fmt.Sprintf("%d players have been banned in the last %d days.", total, days),
		fmt.Sprintf("Staff have banned an additional %d in the last %d days.", total/2, days),
		"Blacklisted modifications are a bannable offense!",
	}, "\n"), nil
}

func (e *Enforcer) currentLive(ctx context.Context, playerName string, kinds []Kind) (Punishment, bool, error) {
	records, errQuery := e.punishments.store.QueryActive(ctx, playerName, kinds)
	if errQuery != nil {
		return Punishment{}, false, errQuery
	}

	if len(records) == 0 {
		return Punishment{}, false, nil
	}

	// Newest first, so the most recent live record drives the message.
	return records[0], true, nil
}
