package punishment_test

import (
	"testing"
	"time"

	"github.com/leighmacdonald/mcbans/internal/punishment"
	"github.com/stretchr/testify/require"
)

func TestKindRoundTrip(t *testing.T) {
	t.Parallel()

	for _, kind := range []punishment.Kind{
		punishment.Ban, punishment.TempBan, punishment.IPBan, punishment.TempIPBan,
		punishment.Mute, punishment.TempMute, punishment.Warn, punishment.TempWarn,
		punishment.Note, punishment.Kick,
	} {
		parsed, errParse := punishment.KindFromString(kind.String())
		require.NoError(t, errParse)
		require.Equal(t, kind, parsed)
	}

	_, errUnknown := punishment.KindFromString("SUPERBAN")
	require.ErrorIs(t, errUnknown, punishment.ErrInvalidKind)
}

func TestGroupKinds(t *testing.T) {
	t.Parallel()

	require.Equal(t, []punishment.Kind{
		punishment.Ban, punishment.TempBan, punishment.IPBan, punishment.TempIPBan,
	}, punishment.GroupBan.Kinds())
	require.Equal(t, []punishment.Kind{punishment.Mute, punishment.TempMute}, punishment.GroupMute.Kinds())

	group, errGroup := punishment.GroupFromString("mute")
	require.NoError(t, errGroup)
	require.Equal(t, punishment.GroupMute, group)

	_, errBad := punishment.GroupFromString("warn")
	require.ErrorIs(t, errBad, punishment.ErrInvalidGroup)
}

func TestNewPunishmentValidation(t *testing.T) {
	t.Parallel()

	now := time.Now()

	testCases := []struct {
		name string
		opts punishment.Opts
		err  error
	}{
		{
			name: "empty name",
			opts: punishment.Opts{Kind: punishment.Ban, Reason: "Cheating", Operator: "admin"},
			err:  punishment.ErrNameEmpty,
		},
		{
			name: "empty reason",
			opts: punishment.Opts{PlayerName: "alice", Kind: punishment.Ban, Operator: "admin"},
			err:  punishment.ErrReasonEmpty,
		},
		{
			name: "temp without duration",
			opts: punishment.Opts{PlayerName: "alice", Kind: punishment.TempBan, Reason: "Cheating"},
			err:  punishment.ErrDurationRequired,
		},
		{
			name: "permanent with duration",
			opts: punishment.Opts{PlayerName: "alice", Kind: punishment.Ban, Reason: "Cheating", Duration: time.Hour},
			err:  punishment.ErrDurationNotAllowed,
		},
		{
			name: "negative duration",
			opts: punishment.Opts{PlayerName: "alice", Kind: punishment.TempBan, Reason: "Cheating", Duration: -time.Hour},
			err:  punishment.ErrInvalidDuration,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			_, errCreate := punishment.NewPunishment(testCase.opts, now)
			require.ErrorIs(t, errCreate, testCase.err)
		})
	}
}

func TestNewPunishmentExpiry(t *testing.T) {
	t.Parallel()

	now := time.Now()

	permanent, errPermanent := punishment.NewPunishment(punishment.Opts{
		PlayerName: "alice", Kind: punishment.Ban, Reason: "Cheating", Operator: "admin",
	}, now)
	require.NoError(t, errPermanent)
	require.True(t, permanent.Permanent())
	require.Nil(t, permanent.EndTime)
	require.False(t, permanent.Expired(now.Add(time.Hour*24*365)))
	require.True(t, permanent.Live(now.Add(time.Hour*24*365)))
	require.Equal(t, "permanently", permanent.DurationText())

	temp, errTemp := punishment.NewPunishment(punishment.Opts{
		PlayerName: "bob", Kind: punishment.TempBan, Reason: "Chat Abuse", Operator: "admin", Duration: time.Hour,
	}, now)
	require.NoError(t, errTemp)
	require.False(t, temp.Permanent())
	require.NotNil(t, temp.EndTime)
	require.Equal(t, now.Add(time.Hour), *temp.EndTime)
	require.True(t, temp.Live(now))
	require.True(t, temp.Live(now.Add(time.Minute*59)))
	require.False(t, temp.Live(now.Add(time.Hour)))
	require.True(t, temp.Expired(now.Add(time.Hour)))
}

func TestBroadcastText(t *testing.T) {
	t.Parallel()

	now := time.Now()

	temp, errTemp := punishment.NewPunishment(punishment.Opts{
		PlayerName: "bob", Kind: punishment.TempBan, Reason: "Cheating", Operator: "admin", Duration: time.Hour,
	}, now)
	require.NoError(t, errTemp)
	require.Equal(t, "bob got banned by admin for Cheating for 1 hour(s) 0 minute(s) and 0 second(s)",
		temp.BroadcastText())

	kick, errKick := punishment.NewPunishment(punishment.Opts{
		PlayerName: "bob", Kind: punishment.Kick, Reason: "Spam", Operator: "admin",
	}, now)
	require.NoError(t, errKick)
	require.Equal(t, "bob got kicked by admin for Spam", kick.BroadcastText())
}
