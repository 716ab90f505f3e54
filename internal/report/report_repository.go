package report

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/leighmacdonald/mcbans/internal/database"
)

type Repository struct {
	db database.Database
}

func NewRepository(database database.Database) *Repository {
	return &Repository{db: database}
}

func (r *Repository) Save(ctx context.Context, record *Report) error {
	const query = `INSERT INTO report (reporter, reported, reason, created_on, report_status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING report_id`

	if errQuery := r.db.QueryRow(ctx, query,
		record.Reporter,
		record.Reported,
		record.Reason,
		record.CreatedOn,
		string(record.Status),
	).Scan(&record.ReportID); errQuery != nil {
		return database.DBErr(errQuery)
	}

	return nil
}

// Pending returns the newest pending reports up to the limit.
func (r *Repository) Pending(ctx context.Context, limit uint64) ([]Report, error) {
	rows, errQuery := r.db.QueryBuilder(ctx, r.db.
		Builder().
		Select("r.report_id", "r.reporter", "r.reported", "r.reason", "r.created_on", "r.report_status").
		From("report r").
		Where(sq.Eq{"r.report_status": string(StatusPending)}).
		OrderBy("r.created_on DESC").
		Limit(limit))
	if errQuery != nil {
		return nil, database.DBErr(errQuery)
	}

	defer rows.Close()

	var records []Report

	for rows.Next() {
		var (
			record      Report
			statusValue string
		)

		if errScan := rows.Scan(
			&record.ReportID,
			&record.Reporter,
			&record.Reported,
			&record.Reason,
			&record.CreatedOn,
			&statusValue,
		); errScan != nil {
			return nil, database.DBErr(errScan)
		}

		record.Status = Status(statusValue)

		records = append(records, record)
	}

	if records == nil {
		records = []Report{}
	}

	return records, nil
}

// Accept flips every pending row matching the reporter/reported pair to
// accepted in one predicate-scoped update and returns the affected count.
func (r *Repository) Accept(ctx context.Context, reporter string, reported string) (int64, error) {
	rows, errExec := r.db.ExecUpdateBuilderRows(ctx, r.db.
		Builder().
		Update("report").
		Set("report_status", string(StatusAccepted)).
		Where(sq.And{
			sq.Eq{"reporter": reporter},
			sq.Eq{"reported": reported},
			sq.Eq{"report_status": string(StatusPending)},
		}))
	if errExec != nil {
		return 0, database.DBErr(errExec)
	}

	return rows, nil
}
