package worker

import (
	"context"
	"fmt"
	"log/slog"

	"hisab/internal/amqp"
	"hisab/internal/core"
	"hisab/internal/export"
)

// ReportStore is the slice of the repository the export worker needs.
type ReportStore interface {
	GetDailyReport(ctx context.Context, id int64) (core.DailyReport, error)
	ListPendingExportReports(ctx context.Context, limit int) ([]core.DailyReport, error)
	MarkReportExported(ctx context.Context, id int64) error
	MarkReportExportError(ctx context.Context, id int64) error
}

// ExportWorker ships daily-report snapshots from SQLite to the configured
// report sink.
type ExportWorker struct {
	storage   ReportStore
	writer    export.ReportWriter
	batchSize int
}

func NewExportWorker(storage ReportStore, writer export.ReportWriter, batchSize int) *ExportWorker {
	return &ExportWorker{
		storage:   storage,
		writer:    writer,
		batchSize: batchSize,
	}
}

// HandleExportMessage processes a single report export message from AMQP.
// The snapshot is re-read from storage so the export always carries the
// totals current at export time, not at publish time.
func (w *ExportWorker) HandleExportMessage(ctx context.Context, msg *amqp.ReportExportMessage) error {
	slog.InfoContext(ctx, "Processing export message",
		"report_id", msg.ReportID,
		"owner_id", msg.OwnerID)

	rep, err := w.storage.GetDailyReport(ctx, msg.ReportID)
	if err != nil {
		return fmt.Errorf("get report from storage: %w", err)
	}

	return w.exportReport(ctx, rep)
}

// ProcessPending exports any snapshots still marked pending. This is a
// backup mechanism in case AMQP messages are lost.
func (w *ExportWorker) ProcessPending(ctx context.Context) error {
	pending, err := w.storage.ListPendingExportReports(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending reports: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending reports", "count", len(pending))

	for _, rep := range pending {
		if err := w.exportReport(ctx, rep); err != nil {
			slog.ErrorContext(ctx, "Failed to export report",
				"report_id", rep.ID, "error", err)
			continue
		}
	}
	return nil
}

// StartupCheck exports pending snapshots left over from missed messages or
// worker downtime, with a larger batch than the periodic scan.
func (w *ExportWorker) StartupCheck(ctx context.Context) error {
	pending, err := w.storage.ListPendingExportReports(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending reports for startup check: %w", err)
	}
	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending reports found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending reports on startup, processing...",
		"count", len(pending))

	exported := 0
	failed := 0
	for _, rep := range pending {
		if err := w.exportReport(ctx, rep); err != nil {
			slog.ErrorContext(ctx, "Failed to export report during startup",
				"report_id", rep.ID, "error", err)
			failed++
			continue
		}
		exported++
	}

	slog.InfoContext(ctx, "Startup export check completed",
		"total", len(pending),
		"exported", exported,
		"errors", failed)

	return nil
}

func (w *ExportWorker) exportReport(ctx context.Context, rep core.DailyReport) error {
	ref, err := w.writer.Append(ctx, rep)
	if err != nil {
		if markErr := w.storage.MarkReportExportError(ctx, rep.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark export error",
				"report_id", rep.ID, "error", markErr)
		}
		return fmt.Errorf("append to report sink: %w", err)
	}

	if err := w.storage.MarkReportExported(ctx, rep.ID); err != nil {
		// The export itself went through; the pending scan will retry the
		// marking by exporting again, which the sink tolerates.
		slog.ErrorContext(ctx, "Failed to mark as exported",
			"report_id", rep.ID, "error", err)
	}

	slog.InfoContext(ctx, "Report exported",
		"report_id", rep.ID,
		"owner_id", rep.OwnerID,
		"report_date", rep.ReportDate.Format(core.DateLayout),
		"sink_ref", ref)

	return nil
}
