package punishment

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/leighmacdonald/mcbans/internal/database"
)

// Repository persists punishment rows. All predicates that care about
// liveness are evaluated against the clock at query time so that expiry never
// needs a background sweep.
type Repository struct {
	db database.Database
}

func NewRepository(database database.Database) *Repository {
	return &Repository{db: database}
}

func kindStrings(kinds []Kind) []string {
	values := make([]string, len(kinds))
	for i, kind := range kinds {
		values[i] = kind.String()
	}

	return values
}

func (r *Repository) Save(ctx context.Context, record *Punishment) error {
	var durationMs *int64
	if record.Duration > 0 {
		ms := record.Duration.Milliseconds()
		durationMs = &ms
	}

	const query = `INSERT INTO punishment (
			player_name, player_uuid, player_ip, punishment_type, reason, operator,
			duration_ms, start_time, end_time, active, silent
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING punishment_id`

	if errQuery := r.db.QueryRow(ctx, query,
		record.PlayerName,
		record.PlayerUUID,
		record.PlayerIP,
		record.Kind.String(),
		record.Reason,
		record.Operator,
		durationMs,
		record.StartTime,
		record.EndTime,
		record.Active,
		record.Silent,
	).Scan(&record.PunishmentID); errQuery != nil {
		return database.DBErr(errQuery)
	}

	return nil
}

// QueryActive returns the live records of the given kinds for a player:
// active and either permanent or not yet expired.
func (r *Repository) QueryActive(ctx context.Context, playerName string, kinds []Kind) ([]Punishment, error) {
	builder := r.db.
		Builder().
		Select("p.punishment_id", "p.player_name", "p.player_uuid", "p.player_ip",
			"p.punishment_type", "p.reason", "p.operator", "p.duration_ms",
			"p.start_time", "p.end_time", "p.active", "p.silent").
		From("punishment p").
		Where(sq.And{
			sq.Eq{"p.player_name": playerName},
			sq.Eq{"p.punishment_type": kindStrings(kinds)},
			sq.Eq{"p.active": true},
			sq.Or{sq.Eq{"p.end_time": nil}, sq.Gt{"p.end_time": time.Now()}},
		}).
		OrderBy("p.start_time DESC")

	return r.queryPunishments(ctx, builder)
}

// Revoke deactivates every live record of the given kinds for a player and
// returns how many rows changed. Zero is the normal nothing-to-revoke
// outcome, not an error.
func (r *Repository) Revoke(ctx context.Context, playerName string, kinds []Kind) (int64, error) {
	rows, errExec := r.db.ExecUpdateBuilderRows(ctx, r.db.
		Builder().
		Update("punishment").
		Set("active", false).
		Where(sq.And{
			sq.Eq{"player_name": playerName},
			sq.Eq{"punishment_type": kindStrings(kinds)},
			sq.Eq{"active": true},
		}))
	if errExec != nil {
		return 0, database.DBErr(errExec)
	}

	return rows, nil
}

// CountSince counts issuance events of the given kinds after the cutoff. This
// is an audit count: later revocations do not reduce it.
func (r *Repository) CountSince(ctx context.Context, kinds []Kind, since time.Time) (int64, error) {
	count, errCount := r.db.GetCount(ctx, r.db.
		Builder().
		Select("count(punishment_id)").
		From("punishment").
		Where(sq.And{
			sq.Eq{"punishment_type": kindStrings(kinds)},
			sq.Gt{"start_time": since},
		}))
	if errCount != nil {
		return 0, database.DBErr(errCount)
	}

	return count, nil
}

// History returns all punishment rows for a player, newest first, including
// revoked and expired ones.
func (r *Repository) History(ctx context.Context, playerName string, limit uint64, offset uint64) ([]Punishment, error) {
	builder := r.db.
		Builder().
		Select("p.punishment_id", "p.player_name", "p.player_uuid", "p.player_ip",
			"p.punishment_type", "p.reason", "p.operator", "p.duration_ms",
			"p.start_time", "p.end_time", "p.active", "p.silent").
		From("punishment p").
		Where(sq.Eq{"p.player_name": playerName}).
		OrderBy("p.start_time DESC").
		Limit(limit).
		Offset(offset)

	return r.queryPunishments(ctx, builder)
}

func (r *Repository) queryPunishments(ctx context.Context, builder sq.SelectBuilder) ([]Punishment, error) {
	rows, errQuery := r.db.QueryBuilder(ctx, builder)
	if errQuery != nil {
		return nil, database.DBErr(errQuery)
	}

	defer rows.Close()

	var records []Punishment

	for rows.Next() {
		var (
			record     Punishment
			kindValue  string
			durationMs *int64
		)

		if errScan := rows.Scan(
			&record.PunishmentID,
			&record.PlayerName,
			&record.PlayerUUID,
			&record.PlayerIP,
			&kindValue,
			&record.Reason,
			&record.Operator,
			&durationMs,
			&record.StartTime,
			&record.EndTime,
			&record.Active,
			&record.Silent,
		); errScan != nil {
			return nil, database.DBErr(errScan)
		}

		kind, errKind := KindFromString(kindValue)
		if errKind != nil {
			return nil, errKind
		}

		record.Kind = kind

		if durationMs != nil {
			record.Duration = time.Duration(*durationMs) * time.Millisecond
		}

		records = append(records, record)
	}

	if records == nil {
		records = []Punishment{}
	}

	return records, nil
}
