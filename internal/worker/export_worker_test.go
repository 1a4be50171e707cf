package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"hisab/internal/amqp"
	"hisab/internal/core"
	"hisab/internal/export/memory"
)

type fakeStore struct {
	reports     map[int64]core.DailyReport
	pending     []int64
	exported    []int64
	errored     []int64
	markExpErr  error
	listErr     error
	pendingSeen int // limit passed to the last List call
}

func (f *fakeStore) GetDailyReport(_ context.Context, id int64) (core.DailyReport, error) {
	rep, ok := f.reports[id]
	if !ok {
		return core.DailyReport{}, core.ErrNotFound
	}
	return rep, nil
}

func (f *fakeStore) ListPendingExportReports(_ context.Context, limit int) ([]core.DailyReport, error) {
	f.pendingSeen = limit
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []core.DailyReport
	for _, id := range f.pending {
		if len(out) == limit {
			break
		}
		out = append(out, f.reports[id])
	}
	return out, nil
}

func (f *fakeStore) MarkReportExported(_ context.Context, id int64) error {
	if f.markExpErr != nil {
		return f.markExpErr
	}
	f.exported = append(f.exported, id)
	return nil
}

func (f *fakeStore) MarkReportExportError(_ context.Context, id int64) error {
	f.errored = append(f.errored, id)
	return nil
}

func report(id int64, owner string) core.DailyReport {
	credit := decimal.RequireFromString("100.00")
	debit := decimal.RequireFromString("40.00")
	return core.DailyReport{
		ID:          id,
		OwnerID:     owner,
		ReportDate:  time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC),
		TotalCredit: credit,
		TotalDebit:  debit,
		NetChange:   credit.Sub(debit),
	}
}

func TestHandleExportMessage(t *testing.T) {
	store := &fakeStore{reports: map[int64]core.DailyReport{7: report(7, "u1")}}
	sink := memory.New()
	w := NewExportWorker(store, sink, 10)

	msg := amqp.NewReportExportMessage(7, "u1", "2025-03-02")
	if err := w.HandleExportMessage(context.Background(), msg); err != nil {
		t.Fatalf("HandleExportMessage: %v", err)
	}

	if got := sink.Reports(); len(got) != 1 || got[0].ID != 7 {
		t.Fatalf("sink got %+v, want report 7", got)
	}
	if len(store.exported) != 1 || store.exported[0] != 7 {
		t.Fatalf("exported = %v, want [7]", store.exported)
	}
	if len(store.errored) != 0 {
		t.Fatalf("errored = %v, want none", store.errored)
	}
}

func TestHandleExportMessageMissingReport(t *testing.T) {
	w := NewExportWorker(&fakeStore{reports: map[int64]core.DailyReport{}}, memory.New(), 10)
	msg := amqp.NewReportExportMessage(99, "u1", "2025-03-02")
	if err := w.HandleExportMessage(context.Background(), msg); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestHandleExportMessageSinkFailure(t *testing.T) {
	store := &fakeStore{reports: map[int64]core.DailyReport{7: report(7, "u1")}}
	sink := memory.New()
	sink.FailWith(errors.New("quota exceeded"))
	w := NewExportWorker(store, sink, 10)

	msg := amqp.NewReportExportMessage(7, "u1", "2025-03-02")
	if err := w.HandleExportMessage(context.Background(), msg); err == nil {
		t.Fatalf("expected error from failing sink")
	}
	if len(store.errored) != 1 || store.errored[0] != 7 {
		t.Fatalf("errored = %v, want [7]", store.errored)
	}
	if len(store.exported) != 0 {
		t.Fatalf("exported = %v, want none", store.exported)
	}
}

func TestProcessPending(t *testing.T) {
	store := &fakeStore{
		reports: map[int64]core.DailyReport{
			1: report(1, "u1"),
			2: report(2, "u2"),
		},
		pending: []int64{1, 2},
	}
	sink := memory.New()
	w := NewExportWorker(store, sink, 10)

	if err := w.ProcessPending(context.Background()); err != nil {
		t.Fatalf("ProcessPending: %v", err)
	}
	if len(sink.Reports()) != 2 {
		t.Fatalf("sink got %d reports, want 2", len(sink.Reports()))
	}
	if store.pendingSeen != 10 {
		t.Fatalf("batch size passed = %d, want 10", store.pendingSeen)
	}
}

func TestProcessPendingContinuesPastFailures(t *testing.T) {
	bad := report(1, "")
	store := &fakeStore{
		reports: map[int64]core.DailyReport{
			1: bad, // fails sink validation
			2: report(2, "u2"),
		},
		pending: []int64{1, 2},
	}
	sink := memory.New()
	w := NewExportWorker(store, sink, 10)

	if err := w.ProcessPending(context.Background()); err != nil {
		t.Fatalf("ProcessPending should not fail on a single bad report: %v", err)
	}
	if got := sink.Reports(); len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("sink got %+v, want only report 2", got)
	}
	if len(store.errored) != 1 || store.errored[0] != 1 {
		t.Fatalf("errored = %v, want [1]", store.errored)
	}
}

func TestStartupCheckUsesLargerBatch(t *testing.T) {
	store := &fakeStore{reports: map[int64]core.DailyReport{}}
	w := NewExportWorker(store, memory.New(), 10)

	if err := w.StartupCheck(context.Background()); err != nil {
		t.Fatalf("StartupCheck: %v", err)
	}
	if store.pendingSeen != 50 {
		t.Fatalf("startup batch = %d, want 50", store.pendingSeen)
	}
}

func TestStartupCheckPropagatesListError(t *testing.T) {
	boom := errors.New("db closed")
	w := NewExportWorker(&fakeStore{listErr: boom}, memory.New(), 10)
	if err := w.StartupCheck(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want list error", err)
	}
}
