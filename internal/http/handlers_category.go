package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"hisab/internal/core"
)

type createCategoryRequest struct {
	Name string `json:"name"`
	Code string `json:"code"`
	Type string `json:"type"`
}

// handleListCategories lists the owner's categories; the optional q
// parameter filters by name or code substring.
func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.storage.ListCategories(r.Context(), ownerID(r), strings.TrimSpace(r.URL.Query().Get("q")))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	out := make([]categoryJSON, 0, len(cats))
	for _, c := range cats {
		out = append(out, toCategoryJSON(c))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed JSON body", "")
		return
	}

	cat, err := s.storage.CreateCategory(r.Context(), core.Category{
		OwnerID: ownerID(r),
		Name:    req.Name,
		Code:    req.Code,
		Type:    core.TransactionType(req.Type),
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toCategoryJSON(cat))
}
