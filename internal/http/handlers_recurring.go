package http

import (
	"net/http"

	"finbook/internal/core"
)

type createRecurringRequest struct {
	AccountID  int64  `json:"account_id"`
	CategoryID *int64 `json:"category_id,omitempty"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	Amount     string `json:"amount"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date,omitempty"`
	Frequency  string `json:"frequency"`
}

func (s *Server) handleCreateRecurring(w http.ResponseWriter, r *http.Request) {
	var req createRecurringRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}
	start, err := core.ParseDate(req.StartDate)
	if err != nil {
		writeError(w, err)
		return
	}

	rd := core.RecurringDefinition{
		AccountID:  req.AccountID,
		CategoryID: req.CategoryID,
		Name:       req.Name,
		Type:       core.EntryType(req.Type),
		Amount:     core.Money{Cents: cents},
		StartDate:  start,
		Frequency:  core.Frequency(req.Frequency),
		IsActive:   true,
	}
	if req.EndDate != "" {
		end, err := core.ParseDate(req.EndDate)
		if err != nil {
			writeError(w, err)
			return
		}
		rd.EndDate = end
	}

	id, err := s.store.CreateRecurring(r.Context(), rd)
	if err != nil {
		writeError(w, err)
		return
	}

	s.invalidateReports()
	writeData(w, http.StatusCreated, createdResponse{ID: id})
}

// handleDisableRecurring soft-disables a definition rather than deleting it,
// so past projections stay reproducible.
func (s *Server) handleDisableRecurring(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.store.DisableRecurring(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	s.invalidateReports()
	writeData(w, http.StatusOK, struct {
		Disabled int64 `json:"disabled"`
	}{Disabled: id})
}
