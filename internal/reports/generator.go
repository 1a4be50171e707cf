package reports

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"hisab/internal/core"
)

// ReportStore is the slice of the repository the generator needs.
type ReportStore interface {
	ListTransactionsByDay(ctx context.Context, ownerID string, day time.Time) ([]core.Transaction, error)
	UpsertDailyReport(ctx context.Context, rep core.DailyReport) (core.DailyReport, error)
}

// ExportPublisher announces a stored snapshot to the export worker.
type ExportPublisher interface {
	PublishReportExport(ctx context.Context, reportID int64, ownerID, reportDate string) error
}

// Generator materializes daily-report snapshots from the transaction log.
type Generator struct {
	store     ReportStore
	publisher ExportPublisher
}

// NewGenerator creates a report generator. publisher may be nil, in which
// case snapshots are stored without announcing them; the worker's periodic
// pending scan still picks them up.
func NewGenerator(store ReportStore, publisher ExportPublisher) *Generator {
	return &Generator{store: store, publisher: publisher}
}

// Generate recomputes the owner's totals for one UTC calendar day and stores
// the snapshot. Running it twice for the same day replaces the previous
// snapshot; a day with no transactions yields an all-zero report.
//
// Publishing the export message is best effort: a broker outage must not
// make report generation fail, so publish errors are logged and swallowed.
func (g *Generator) Generate(ctx context.Context, ownerID string, day time.Time) (core.DailyReport, error) {
	if ownerID == "" {
		return core.DailyReport{}, core.ErrEmptyOwner
	}
	day = core.Day(day)

	txs, err := g.store.ListTransactionsByDay(ctx, ownerID, day)
	if err != nil {
		return core.DailyReport{}, fmt.Errorf("load transactions for report: %w", err)
	}

	s := core.Summarize(txs)
	rep, err := g.store.UpsertDailyReport(ctx, core.DailyReport{
		OwnerID:     ownerID,
		ReportDate:  day,
		TotalCredit: s.TotalCredit,
		TotalDebit:  s.TotalDebit,
		NetChange:   s.OutstandingBalance,
	})
	if err != nil {
		return core.DailyReport{}, fmt.Errorf("store daily report: %w", err)
	}

	slog.InfoContext(ctx, "Daily report generated",
		"owner_id", ownerID,
		"report_date", day.Format(core.DateLayout),
		"transactions", len(txs),
		"net_change", core.FormatAmount(rep.NetChange))

	if g.publisher != nil {
		dateStr := day.Format(core.DateLayout)
		if err := g.publisher.PublishReportExport(ctx, rep.ID, ownerID, dateStr); err != nil {
			slog.WarnContext(ctx, "Failed to publish report export message",
				"error", err,
				"report_id", rep.ID,
				"owner_id", ownerID)
		}
	}

	return rep, nil
}
