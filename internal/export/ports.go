package export

import (
	"context"

	"hisab/internal/core"
)

// Ports for outbound adapters.
type (
	// ReportWriter appends one daily-report snapshot to an external sink and
	// returns a reference to the written row.
	ReportWriter interface {
		Append(ctx context.Context, rep core.DailyReport) (rowRef string, err error)
	}
)
