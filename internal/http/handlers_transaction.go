package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"hisab/internal/core"
	"hisab/internal/storage"
)

type createTransactionRequest struct {
	Amount     string `json:"amount"`
	Less       string `json:"less"`
	Type       string `json:"type"`
	CategoryID *int64 `json:"categoryId"`
	Notes      string `json:"notes"`
	Date       string `json:"date"`
}

// updateTransactionRequest distinguishes absent fields from zero values, so
// a PUT only touches what the client sent.
type updateTransactionRequest struct {
	Amount     *string `json:"amount"`
	Less       *string `json:"less"`
	Type       *string `json:"type"`
	CategoryID *int64  `json:"categoryId"`
	Notes      *string `json:"notes"`
	Date       *string `json:"date"`
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed JSON body", "")
		return
	}

	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount", "amount")
		return
	}
	less := decimal.Zero
	if strings.TrimSpace(req.Less) != "" {
		if less, err = core.ParseAmount(req.Less); err != nil {
			writeError(w, http.StatusBadRequest, "invalid amount", "less")
			return
		}
	}

	date := core.Day(time.Now())
	if strings.TrimSpace(req.Date) != "" {
		if date, err = core.ParseDay(req.Date); err != nil {
			writeError(w, http.StatusBadRequest, "invalid date, want YYYY-MM-DD", "date")
			return
		}
	}

	tx, err := s.storage.CreateTransaction(r.Context(), core.Transaction{
		OwnerID:    ownerID(r),
		CategoryID: req.CategoryID,
		Amount:     amount,
		Less:       less,
		Type:       core.TransactionType(req.Type),
		Detail:     req.Notes,
		Date:       date,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	s.dashboardCache.Delete(tx.OwnerID)
	writeJSON(w, http.StatusCreated, toTransactionJSON(tx, nil))
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	filter, ok := parseTransactionFilter(w, r)
	if !ok {
		return
	}

	recs, err := s.storage.ListTransactions(r.Context(), ownerID(r), filter)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionListJSON(recs))
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	tx, err := s.storage.GetTransaction(r.Context(), id, ownerID(r))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionJSON(tx, nil))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req updateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed JSON body", "")
		return
	}

	var patch storage.TransactionPatch
	if req.Amount != nil {
		amount, err := core.ParseAmount(*req.Amount)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid amount", "amount")
			return
		}
		patch.Amount = &amount
	}
	if req.Less != nil {
		less, err := core.ParseAmount(*req.Less)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid amount", "less")
			return
		}
		patch.Less = &less
	}
	if req.Type != nil {
		typ := core.TransactionType(*req.Type)
		if err := typ.Validate(); err != nil {
			writeDomainError(w, r, err)
			return
		}
		patch.Type = &typ
	}
	if req.CategoryID != nil {
		patch.CategoryID = req.CategoryID
	}
	if req.Notes != nil {
		patch.Detail = req.Notes
	}
	if req.Date != nil {
		date, err := core.ParseDay(*req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date, want YYYY-MM-DD", "date")
			return
		}
		patch.Date = &date
	}

	tx, err := s.storage.UpdateTransaction(r.Context(), id, ownerID(r), patch)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	s.dashboardCache.Delete(tx.OwnerID)
	writeJSON(w, http.StatusOK, toTransactionJSON(tx, nil))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	owner := ownerID(r)
	deleted, err := s.storage.DeleteTransaction(r.Context(), id, owner)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "not found", "")
		return
	}

	s.dashboardCache.Delete(owner)
	w.WriteHeader(http.StatusNoContent)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid id", "id")
		return 0, false
	}
	return id, true
}

func parseTransactionFilter(w http.ResponseWriter, r *http.Request) (storage.TransactionFilter, bool) {
	var f storage.TransactionFilter
	q := r.URL.Query()

	if v := strings.TrimSpace(q.Get("type")); v != "" {
		f.Type = core.TransactionType(v)
		if err := f.Type.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, "type must be credit or debit", "type")
			return storage.TransactionFilter{}, false
		}
	}
	if v := strings.TrimSpace(q.Get("categoryId")); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			writeError(w, http.StatusBadRequest, "invalid category id", "categoryId")
			return storage.TransactionFilter{}, false
		}
		f.CategoryID = id
	}
	if v := strings.TrimSpace(q.Get("startDate")); v != "" {
		d, err := core.ParseDay(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date, want YYYY-MM-DD", "startDate")
			return storage.TransactionFilter{}, false
		}
		f.StartDate = d
	}
	if v := strings.TrimSpace(q.Get("endDate")); v != "" {
		d, err := core.ParseDay(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date, want YYYY-MM-DD", "endDate")
			return storage.TransactionFilter{}, false
		}
		f.EndDate = d
	}
	return f, true
}
