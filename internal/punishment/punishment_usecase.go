package punishment

import (
	"context"
	"log/slog"
	"time"

	"github.com/leighmacdonald/mcbans/pkg/log"
)

// Store is the persistence contract for punishment records.
type Store interface {
	Save(ctx context.Context, record *Punishment) error
	QueryActive(ctx context.Context, playerName string, kinds []Kind) ([]Punishment, error)
	Revoke(ctx context.Context, playerName string, kinds []Kind) (int64, error)
	CountSince(ctx context.Context, kinds []Kind, since time.Time) (int64, error)
	History(ctx context.Context, playerName string, limit uint64, offset uint64) ([]Punishment, error)
}

// The login/chat checks test only the direct name-based kinds. IP variants
// are matched by the session layer against the connecting address, not the
// player name.
var (
	banCheckKinds  = []Kind{Ban, TempBan}
	muteCheckKinds = []Kind{Mute, TempMute}

	allKinds = []Kind{Ban, TempBan, IPBan, TempIPBan, Mute, TempMute, Warn, TempWarn, Note, Kick}
)

const historyPageSize = 20

type Usecase struct {
	store Store
}

func NewUsecase(store Store) *Usecase {
	return &Usecase{store: store}
}

// Issue validates and appends a new punishment record. The write path is an
// unconditional append. Duplicate-active checks belong to the callers, which
// are expected to consult IsBanned/IsMuted first.
func (u *Usecase) Issue(ctx context.Context, opts Opts) (Punishment, error) {
	record, errRecord := NewPunishment(opts, time.Now())
	if errRecord != nil {
		return Punishment{}, errRecord
	}

	if errSave := u.store.Save(ctx, &record); errSave != nil {
		slog.Error("Failed to save punishment", log.ErrAttr(errSave),
			slog.String("player", opts.PlayerName), slog.String("kind", opts.Kind.String()))

		return Punishment{}, errSave
	}

	slog.Info("Punishment issued",
		slog.Int64("punishment_id", record.PunishmentID),
		slog.String("player", record.PlayerName),
		slog.String("kind", record.Kind.String()),
		slog.String("operator", record.Operator),
		slog.Bool("silent", record.Silent))

	return record, nil
}

// IsBanned reports whether the player currently has a live ban. The check is
// evaluated fresh against the store on every call; nothing is cached, so a
// revoke is visible to the very next login attempt.
func (u *Usecase) IsBanned(ctx context.Context, playerName string) (bool, error) {
	records, errQuery := u.store.QueryActive(ctx, playerName, banCheckKinds)
	if errQuery != nil {
		return false, errQuery
	}

	return len(records) > 0, nil
}

// IsMuted reports whether the player currently has a live mute.
func (u *Usecase) IsMuted(ctx context.Context, playerName string) (bool, error) {
	records, errQuery := u.store.QueryActive(ctx, playerName, muteCheckKinds)
	if errQuery != nil {
		return false, errQuery
	}

	return len(records) > 0, nil
}

// Revoke deactivates all live records of the group for the player. The
// returned count of zero means there was nothing to revoke, which callers
// surface as its own outcome rather than an error.
func (u *Usecase) Revoke(ctx context.Context, playerName string, group Group) (int64, error) {
	revoked, errRevoke := u.store.Revoke(ctx, playerName, group.Kinds())
	if errRevoke != nil {
		slog.Error("Failed to revoke punishments", log.ErrAttr(errRevoke),
			slog.String("player", playerName), slog.String("group", group.String()))

		return 0, errRevoke
	}

	if revoked > 0 {
		slog.Info("Punishments revoked",
			slog.String("player", playerName),
			slog.String("group", group.String()),
			slog.Int64("count", revoked))
	}

	return revoked, nil
}

// CountSince counts issuance events of the group since the cutoff, revoked
// ones included.
func (u *Usecase) CountSince(ctx context.Context, group Group, since time.Time) (int64, error) {
	return u.store.CountSince(ctx, group.Kinds(), since)
}

// Active lists every live punishment for the player across all kinds.
func (u *Usecase) Active(ctx context.Context, playerName string) ([]Punishment, error) {
	return u.store.QueryActive(ctx, playerName, allKinds)
}

// History returns a page of the full punishment audit trail for the player,
// newest first.
func (u *Usecase) History(ctx context.Context, playerName string, page uint64) ([]Punishment, error) {
	return u.store.History(ctx, playerName, historyPageSize, page*historyPageSize)
}
