package punishment_test

import (
	"testing"
	"time"

	"github.com/leighmacdonald/mcbans/internal/punishment"
	"github.com/stretchr/testify/require"
)

const (
	testSiteName  = "example"
	testAppealURL = "https://example.com/appeal"
)

func newTestEnforcer(store *fakeStore) (*punishment.Enforcer, *punishment.Usecase) {
	punishments := punishment.NewUsecase(store)

	return punishment.NewEnforcer(punishments, testSiteName, testAppealURL, time.Hour*24*7), punishments
}

func TestLoginAttemptAllowed(t *testing.T) {
	t.Parallel()

	enforcer, _ := newTestEnforcer(newFakeStore())

	decision, errDecision := enforcer.OnLoginAttempt(t.Context(), "alice")
	require.NoError(t, errDecision)
	require.True(t, decision.Allowed)
	require.Empty(t, decision.DisplayText)
}

func TestLoginAttemptDenied(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	enforcer, punishments := newTestEnforcer(store)
	ctx := t.Context()

	record, errIssue := punishments.Issue(ctx, punishment.Opts{
		PlayerName: "bob", Kind: punishment.Ban, Reason: "Cheating", Operator: "admin",
	})
	require.NoError(t, errIssue)

	decision, errDecision := enforcer.OnLoginAttempt(ctx, "bob")
	require.NoError(t, errDecision)
	require.False(t, decision.Allowed)
	require.Equal(t, "Cheating", decision.Reason)
	require.Contains(t, decision.DisplayText, "You are permanently banned from this server!")
	require.Contains(t, decision.DisplayText, "Reason: Cheating")
	require.Contains(t, decision.DisplayText, testAppealURL)
	require.Contains(t, decision.DisplayText, "Ban ID: #0001")
	require.Positive(t, record.PunishmentID)

	// A mute does not exist, so chat stays open even while banned.
	chat, errChat := enforcer.OnChatAttempt(ctx, "bob")
	require.NoError(t, errChat)
	require.True(t, chat.Allowed)
}

func TestLoginAttemptTemporaryText(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	enforcer, punishments := newTestEnforcer(store)
	ctx := t.Context()

	_, errIssue := punishments.Issue(ctx, punishment.Opts{
		PlayerName: "carol", Kind: punishment.TempBan, Reason: "Chat Abuse", Operator: "admin",
		Duration: time.Hour * 36,
	})
	require.NoError(t, errIssue)

	decision, errDecision := enforcer.OnLoginAttempt(ctx, "carol")
	require.NoError(t, errDecision)
	require.False(t, decision.Allowed)
	require.Contains(t, decision.DisplayText,
		"You are temporarily banned for 1 day(s) 12 hour(s) 0 minute(s) and 0 second(s) from this server!")
}

func TestLoginAttemptAfterRevoke(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	enforcer, punishments := newTestEnforcer(store)
	ctx := t.Context()

	_, errIssue := punishments.Issue(ctx, punishment.Opts{
		PlayerName: "dave", Kind: punishment.Ban, Reason: "Cheating", Operator: "admin",
	})
	require.NoError(t, errIssue)

	_, errRevoke := punishments.Revoke(ctx, "dave", punishment.GroupBan)
	require.NoError(t, errRevoke)

	// The revoke is visible to the very next login attempt.
	decision, errDecision := enforcer.OnLoginAttempt(ctx, "dave")
	require.NoError(t, errDecision)
	require.True(t, decision.Allowed)
}

func TestChatAttemptDenied(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	enforcer, punishments := newTestEnforcer(store)
	ctx := t.Context()

	_, errIssue := punishments.Issue(ctx, punishment.Opts{
		PlayerName: "erin", Kind: punishment.Mute, Reason: "Chat Abuse", Operator: "admin",
	})
	require.NoError(t, errIssue)

	decision, errDecision := enforcer.OnChatAttempt(ctx, "erin")
	require.NoError(t, errDecision)
	require.False(t, decision.Allowed)
	require.Contains(t, decision.DisplayText, "You are permanently muted on this server!")
	require.Contains(t, decision.DisplayText, testAppealURL)

	// But the muted player may still log in.
	login, errLogin := enforcer.OnLoginAttempt(ctx, "erin")
	require.NoError(t, errLogin)
	require.True(t, login.Allowed)
}

func TestPeriodicTick(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	enforcer, punishments := newTestEnforcer(store)
	ctx := t.Context()

	for _, name := range []string{"alice", "bob", "carol", "dave"} {
		_, errIssue := punishments.Issue(ctx, punishment.Opts{
			PlayerName: name, Kind: punishment.Ban, Reason: "Cheating", Operator: "admin",
		})
		require.NoError(t, errIssue)
	}

	announcement, errAnnounce := enforcer.OnPeriodicTick(ctx)
	require.NoError(t, errAnnounce)
	require.Contains(t, announcement, "[EXAMPLE]")
	require.Contains(t, announcement, "4 players have been banned in the last 7 days.")
	require.Contains(t, announcement, "Staff have banned an additional 2 in the last 7 days.")
	require.Contains(t, announcement, "Blacklisted modifications are a bannable offense!")
}
