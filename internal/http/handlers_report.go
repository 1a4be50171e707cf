package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"hisab/internal/core"
	"hisab/internal/storage"
)

type generateReportRequest struct {
	Date string `json:"date"`
}

// handleDashboard serves the owner's lifetime totals plus today's slice.
// Responses are cached per owner for a short TTL; every transaction
// mutation by the owner invalidates the entry.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	owner := ownerID(r)

	if cached, ok := s.dashboardCache.Get(owner); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	recs, err := s.storage.ListTransactions(r.Context(), owner, storage.TransactionFilter{})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	txs := make([]core.Transaction, 0, len(recs))
	for _, rec := range recs {
		txs = append(txs, rec.Transaction)
	}

	body := toDashboardJSON(core.Summarize(txs), core.SummarizeDay(txs, time.Now()), core.GroupByDay(txs))
	s.dashboardCache.Set(owner, body)
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleListDailyReports(w http.ResponseWriter, r *http.Request) {
	reps, err := s.storage.ListDailyReports(r.Context(), ownerID(r))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	out := make([]dailyReportJSON, 0, len(reps))
	for _, rep := range reps {
		out = append(out, toDailyReportJSON(rep))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGenerateReport(w http.ResponseWriter, r *http.Request) {
	// An empty body means "generate for today".
	var req generateReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "malformed JSON body", "")
		return
	}

	date := core.Day(time.Now())
	if strings.TrimSpace(req.Date) != "" {
		var err error
		if date, err = core.ParseDay(req.Date); err != nil {
			writeError(w, http.StatusBadRequest, "invalid date, want YYYY-MM-DD", "date")
			return
		}
	}

	rep, err := s.generator.Generate(r.Context(), ownerID(r), date)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toDailyReportJSON(rep))
}
