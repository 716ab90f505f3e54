package report_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/leighmacdonald/mcbans/internal/report"
	"github.com/stretchr/testify/require"
)

var errFakeStore = errors.New("store unavailable")

type fakeStore struct {
	mu      sync.Mutex
	nextID  int64
	records []report.Report
	failing bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{nextID: 1}
}

func (f *fakeStore) Save(_ context.Context, record *report.Report) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failing {
		return errFakeStore
	}

	record.ReportID = f.nextID
	f.nextID++
	f.records = append(f.records, *record)

	return nil
}

func (f *fakeStore) Pending(_ context.Context, limit uint64) ([]report.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failing {
		return nil, errFakeStore
	}

	matches := []report.Report{}

	// Appended in order, so walk backwards for newest first.
	for i := len(f.records) - 1; i >= 0 && uint64(len(matches)) < limit; i-- {
		if f.records[i].Status == report.StatusPending {
			matches = append(matches, f.records[i])
		}
	}

	return matches, nil
}

func (f *fakeStore) Accept(_ context.Context, reporter string, reported string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failing {
		return 0, errFakeStore
	}

	var accepted int64

	for i := range f.records {
		if f.records[i].Reporter == reporter && f.records[i].Reported == reported &&
			f.records[i].Status == report.StatusPending {
			f.records[i].Status = report.StatusAccepted
			accepted++
		}
	}

	return accepted, nil
}

func submit(t *testing.T, workflow *report.Workflow, reporter string, target string, reason string) report.Report {
	t.Helper()

	require.NoError(t, workflow.Start(reporter, target))
	require.NoError(t, workflow.SelectReason(reporter, reason))

	record, errConfirm := workflow.Confirm(t.Context(), reporter)
	require.NoError(t, errConfirm)

	return record
}

func TestReportHappyPath(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	workflow := report.NewWorkflow(store)

	record := submit(t, workflow, "alice", "bob", "Cheating (Hacks)")
	require.Equal(t, int64(1), record.ReportID)
	require.Equal(t, "alice", record.Reporter)
	require.Equal(t, "bob", record.Reported)
	require.Equal(t, "Cheating (Hacks)", record.Reason)
	require.Equal(t, report.StatusPending, record.Status)
	require.False(t, record.CreatedOn.IsZero())

	// The session is gone after a successful confirm.
	_, errAgain := workflow.Confirm(t.Context(), "alice")
	require.ErrorIs(t, errAgain, report.ErrSessionClosed)

	pending, errPending := workflow.Pending(t.Context())
	require.NoError(t, errPending)
	require.Len(t, pending, 1)
}

func TestSelfReportRejected(t *testing.T) {
	t.Parallel()

	workflow := report.NewWorkflow(newFakeStore())

	require.ErrorIs(t, workflow.Start("alice", "alice"), report.ErrSelfReport)

	// No session was created.
	require.ErrorIs(t, workflow.SelectReason("alice", "Other"), report.ErrSessionClosed)
}

func TestStartOverwritesPriorSession(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	workflow := report.NewWorkflow(store)

	require.NoError(t, workflow.Start("alice", "bob"))
	require.NoError(t, workflow.Start("alice", "carol"))

	require.NoError(t, workflow.SelectReason("alice", "Other"))

	record, errConfirm := workflow.Confirm(t.Context(), "alice")
	require.NoError(t, errConfirm)
	require.Equal(t, "carol", record.Reported)
}

func TestConfirmBeforeReason(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	workflow := report.NewWorkflow(store)

	require.NoError(t, workflow.Start("alice", "bob"))

	_, errConfirm := workflow.Confirm(t.Context(), "alice")
	require.ErrorIs(t, errConfirm, report.ErrSessionClosed)

	// Nothing was persisted and the session is still usable.
	require.Empty(t, store.records)
	require.NoError(t, workflow.SelectReason("alice", "Bad Name"))
}

func TestInvalidReasonIsNoOp(t *testing.T) {
	t.Parallel()

	workflow := report.NewWorkflow(newFakeStore())

	require.NoError(t, workflow.Start("alice", "bob"))

	// A stray label is swallowed without advancing the session.
	require.NoError(t, workflow.SelectReason("alice", "Being Rude"))

	_, errConfirm := workflow.Confirm(t.Context(), "alice")
	require.ErrorIs(t, errConfirm, report.ErrSessionClosed)

	// The session still accepts a valid selection afterwards.
	require.NoError(t, workflow.SelectReason("alice", "Chat Abuse"))

	_, errAfter := workflow.Confirm(t.Context(), "alice")
	require.NoError(t, errAfter)
}

func TestDecoratedReasonAccepted(t *testing.T) {
	t.Parallel()

	workflow := report.NewWorkflow(newFakeStore())

	require.NoError(t, workflow.Start("alice", "bob"))
	require.NoError(t, workflow.SelectReason("alice", "§cCheating (Hacks)§r"))

	record, errConfirm := workflow.Confirm(t.Context(), "alice")
	require.NoError(t, errConfirm)
	require.Equal(t, "Cheating (Hacks)", record.Reason)
}

func TestConfirmStoreFailureKeepsSession(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	workflow := report.NewWorkflow(store)

	require.NoError(t, workflow.Start("alice", "bob"))
	require.NoError(t, workflow.SelectReason("alice", "Other"))

	store.failing = true

	_, errConfirm := workflow.Confirm(t.Context(), "alice")
	require.ErrorIs(t, errConfirm, report.ErrSaveReport)

	// The session survived the failure, so the retry succeeds.
	store.failing = false

	record, errRetry := workflow.Confirm(t.Context(), "alice")
	require.NoError(t, errRetry)
	require.Equal(t, "bob", record.Reported)
}

func TestCancel(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	workflow := report.NewWorkflow(store)

	require.NoError(t, workflow.Start("alice", "bob"))

	// Cancel is only valid once a reason was chosen.
	require.ErrorIs(t, workflow.Cancel("alice"), report.ErrSessionClosed)

	require.NoError(t, workflow.SelectReason("alice", "Other"))
	require.NoError(t, workflow.Cancel("alice"))

	_, errConfirm := workflow.Confirm(t.Context(), "alice")
	require.ErrorIs(t, errConfirm, report.ErrSessionClosed)
	require.Empty(t, store.records)
}

func TestDisconnectDiscardsSession(t *testing.T) {
	t.Parallel()

	workflow := report.NewWorkflow(newFakeStore())

	require.NoError(t, workflow.Start("alice", "bob"))
	workflow.Disconnect("alice")

	require.ErrorIs(t, workflow.SelectReason("alice", "Other"), report.ErrSessionClosed)
}

func TestAcceptBulkMatch(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	workflow := report.NewWorkflow(store)

	submit(t, workflow, "bob", "alice", "Chat Abuse")
	submit(t, workflow, "bob", "alice", "Bad Skin")
	submit(t, workflow, "bob", "carol", "Other")

	// Both pending reports for the pair transition together.
	accepted, errAccept := workflow.Accept(t.Context(), "bob", "alice")
	require.NoError(t, errAccept)
	require.Equal(t, int64(2), accepted)

	// A second accept finds nothing pending for the pair.
	accepted, errAccept = workflow.Accept(t.Context(), "bob", "alice")
	require.NoError(t, errAccept)
	require.Zero(t, accepted)

	pending, errPending := workflow.Pending(t.Context())
	require.NoError(t, errPending)
	require.Len(t, pending, 1)
	require.Equal(t, "carol", pending[0].Reported)
}

func TestConcurrentReporters(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	workflow := report.NewWorkflow(store)

	var group sync.WaitGroup

	reporters := []string{"alice", "bob", "carol", "dave", "erin", "frank"}
	for _, reporter := range reporters {
		group.Add(1)

		go func() {
			defer group.Done()

			require.NoError(t, workflow.Start(reporter, "mallory"))
			require.NoError(t, workflow.SelectReason(reporter, "Cheating (Hacks)"))

			_, errConfirm := workflow.Confirm(context.Background(), reporter)
			require.NoError(t, errConfirm)
		}()
	}

	group.Wait()

	pending, errPending := workflow.Pending(context.Background())
	require.NoError(t, errPending)
	require.Len(t, pending, len(reporters))
}
