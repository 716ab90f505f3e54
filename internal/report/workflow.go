package report

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/leighmacdonald/mcbans/pkg/log"
)

// Store is the persistence contract for durable report records.
type Store interface {
	Save(ctx context.Context, record *Report) error
	Pending(ctx context.Context, limit uint64) ([]Report, error)
	Accept(ctx context.Context, reporter string, reported string) (int64, error)
}

const pendingLimit = 20

// Workflow drives the interactive report state machine. Sessions live in
// memory only; a record is persisted solely on confirm.
type Workflow struct {
	sessions *SessionStore
	store    Store
}

func NewWorkflow(store Store) *Workflow {
	return &Workflow{
		sessions: NewSessionStore(),
		store:    store,
	}
}

// Start opens a report session against the target. Any prior session for the
// reporter is silently discarded; the newest request always wins.
func (w *Workflow) Start(reporter string, target string) error {
	if reporter == target {
		return ErrSelfReport
	}

	w.sessions.Put(newSession(reporter, target))

	return nil
}

// SelectReason records the chosen reason and advances to confirmation. A
// label outside the allowed set is swallowed without advancing, since the
// client UI only offers the fixed set and anything else is a stray signal.
func (w *Workflow) SelectReason(reporter string, label string) error {
	session, found := w.sessions.Get(reporter)
	if !found {
		return ErrSessionClosed
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	if session.closed || session.state != awaitingReason {
		return ErrSessionClosed
	}

	if !ValidReason(label) {
		return nil
	}

	session.reason = StripDecoration(label)
	session.state = awaitingConfirmation

	return nil
}

// Confirm persists the pending report and discards the session. The session
// lock is held across the store write so a concurrent cancel cannot race the
// persist. On a store failure the session stays live for a retry.
func (w *Workflow) Confirm(ctx context.Context, reporter string) (Report, error) {
	session, found := w.sessions.Get(reporter)
	if !found {
		return Report{}, ErrSessionClosed
	}

	session.mu.Lock()

	if session.closed || session.state != awaitingConfirmation {
		session.mu.Unlock()

		return Report{}, ErrSessionClosed
	}

	record := Report{
		Reporter:  session.reporter,
		Reported:  session.target,
		Reason:    session.reason,
		CreatedOn: time.Now(),
		Status:    StatusPending,
	}

	if errSave := w.store.Save(ctx, &record); errSave != nil {
		session.mu.Unlock()

		slog.Error("Failed to save report", log.ErrAttr(errSave),
			slog.String("reporter", reporter))

		return Report{}, errors.Join(errSave, ErrSaveReport)
	}

	session.closed = true
	session.mu.Unlock()

	w.sessions.Delete(session)

	slog.Info("Report submitted",
		slog.Int64("report_id", record.ReportID),
		slog.String("reporter", record.Reporter),
		slog.String("reported", record.Reported),
		slog.String("reason", record.Reason))

	return record, nil
}

// Cancel discards the session without persisting anything.
func (w *Workflow) Cancel(reporter string) error {
	session, found := w.sessions.Get(reporter)
	if !found {
		return ErrSessionClosed
	}

	session.mu.Lock()

	if session.closed || session.state != awaitingConfirmation {
		session.mu.Unlock()

		return ErrSessionClosed
	}

	session.closed = true
	session.mu.Unlock()

	w.sessions.Delete(session)

	return nil
}

// Disconnect drops whatever session the reporter had. Signalled by the
// session layer when the player leaves so sessions cannot leak.
func (w *Workflow) Disconnect(reporter string) {
	w.sessions.DeleteReporter(reporter)
}

// Pending returns the newest pending reports for the staff queue.
func (w *Workflow) Pending(ctx context.Context) ([]Report, error) {
	return w.store.Pending(ctx, pendingLimit)
}

// Accept transitions every pending report matching the reporter/reported pair
// to accepted and returns how many changed. Zero means no such pending
// report. The match is deliberately set-based: duplicate pending reports for
// the same pair all resolve together.
func (w *Workflow) Accept(ctx context.Context, reporter string, reported string) (int64, error) {
	accepted, errAccept := w.store.Accept(ctx, reporter, reported)
	if errAccept != nil {
		slog.Error("Failed to accept reports", log.ErrAttr(errAccept),
			slog.String("reporter", reporter), slog.String("reported", reported))

		return 0, errAccept
	}

	if accepted > 0 {
		slog.Info("Reports accepted",
			slog.String("reporter", reporter),
			slog.String("reported", reported),
			slog.Int64("count", accepted))
	}

	return accepted, nil
}
