package http

import (
	"time"

	"hisab/internal/core"
	"hisab/internal/storage"
)

// Wire shapes. Amounts are 2-decimal strings to keep precision across the
// boundary; dates are YYYY-MM-DD.
type (
	categoryJSON struct {
		ID        int64  `json:"id"`
		Name      string `json:"name"`
		Code      string `json:"code,omitempty"`
		Type      string `json:"type"`
		CreatedAt string `json:"createdAt"`
	}

	transactionJSON struct {
		ID         int64         `json:"id"`
		Serial     int64         `json:"serial"`
		CategoryID *int64        `json:"categoryId"`
		Category   *categoryJSON `json:"category,omitempty"`
		Amount     string        `json:"amount"`
		Less       string        `json:"less"`
		Type       string        `json:"type"`
		Notes      string        `json:"notes"`
		Date       string        `json:"date"`
		CreatedAt  string        `json:"createdAt"`
	}

	dailyReportJSON struct {
		ID          int64  `json:"id"`
		ReportDate  string `json:"reportDate"`
		TotalCredit string `json:"totalCredit"`
		TotalDebit  string `json:"totalDebit"`
		NetChange   string `json:"netChange"`
		CreatedAt   string `json:"createdAt"`
	}

	daySummaryJSON struct {
		Credit string `json:"credit"`
		Debit  string `json:"debit"`
	}

	dayTotalsJSON struct {
		Date        string `json:"date"`
		TotalCredit string `json:"totalCredit"`
		TotalDebit  string `json:"totalDebit"`
		NetChange   string `json:"netChange"`
	}

	dashboardJSON struct {
		TotalCredit        string          `json:"totalCredit"`
		TotalDebit         string          `json:"totalDebit"`
		OutstandingBalance string          `json:"outstandingBalance"`
		TodaySummary       daySummaryJSON  `json:"todaySummary"`
		Days               []dayTotalsJSON `json:"days"`
	}
)

func toCategoryJSON(c core.Category) categoryJSON {
	return categoryJSON{
		ID:        c.ID,
		Name:      c.Name,
		Code:      c.Code,
		Type:      string(c.Type),
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
	}
}

func toTransactionJSON(tx core.Transaction, cat *core.Category) transactionJSON {
	out := transactionJSON{
		ID:         tx.ID,
		Serial:     tx.Serial,
		CategoryID: tx.CategoryID,
		Amount:     core.FormatAmount(tx.Amount),
		Less:       core.FormatAmount(tx.Less),
		Type:       string(tx.Type),
		Notes:      tx.Detail,
		Date:       tx.Date.Format(core.DateLayout),
		CreatedAt:  tx.CreatedAt.Format(time.RFC3339),
	}
	if cat != nil {
		cj := toCategoryJSON(*cat)
		out.Category = &cj
	}
	return out
}

func toTransactionListJSON(recs []storage.TransactionRecord) []transactionJSON {
	out := make([]transactionJSON, 0, len(recs))
	for _, rec := range recs {
		out = append(out, toTransactionJSON(rec.Transaction, rec.Category))
	}
	return out
}

func toDailyReportJSON(rep core.DailyReport) dailyReportJSON {
	return dailyReportJSON{
		ID:          rep.ID,
		ReportDate:  rep.ReportDate.Format(core.DateLayout),
		TotalCredit: core.FormatAmount(rep.TotalCredit),
		TotalDebit:  core.FormatAmount(rep.TotalDebit),
		NetChange:   core.FormatAmount(rep.NetChange),
		CreatedAt:   rep.CreatedAt.Format(time.RFC3339),
	}
}

func toDashboardJSON(s core.Summary, today core.DaySummary, days []core.DayTotals) dashboardJSON {
	out := dashboardJSON{
		TotalCredit:        core.FormatAmount(s.TotalCredit),
		TotalDebit:         core.FormatAmount(s.TotalDebit),
		OutstandingBalance: core.FormatAmount(s.OutstandingBalance),
		TodaySummary: daySummaryJSON{
			Credit: core.FormatAmount(today.Credit),
			Debit:  core.FormatAmount(today.Debit),
		},
		Days: make([]dayTotalsJSON, 0, len(days)),
	}
	for _, d := range days {
		out.Days = append(out.Days, dayTotalsJSON{
			Date:        d.Date.Format(core.DateLayout),
			TotalCredit: core.FormatAmount(d.TotalCredit),
			TotalDebit:  core.FormatAmount(d.TotalDebit),
			NetChange:   core.FormatAmount(d.NetChange),
		})
	}
	return out
}
