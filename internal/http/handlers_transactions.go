package http

import (
	"net/http"

	"finbook/internal/core"
)

type createAccountRequest struct {
	Name    string `json:"name"`
	Balance string `json:"balance"`
}

type createCategoryRequest struct {
	Name            string `json:"name"`
	Type            string `json:"type"`
	BudgetAmount    string `json:"budget_amount,omitempty"`
	BudgetFrequency string `json:"budget_frequency,omitempty"`
}

type createTransactionRequest struct {
	AccountID   int64  `json:"account_id"`
	CategoryID  *int64 `json:"category_id,omitempty"`
	Type        string `json:"type"`
	Amount      string `json:"amount"`
	Date        string `json:"date"`
	Description string `json:"description"`
}

type createTransferRequest struct {
	FromAccountID int64  `json:"from_account_id"`
	ToAccountID   int64  `json:"to_account_id"`
	Amount        string `json:"amount"`
	Date          string `json:"date"`
	Description   string `json:"description"`
}

type createdResponse struct {
	ID int64 `json:"id"`
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	filter, err := parseAccounts(r)
	if err != nil {
		writeError(w, err)
		return
	}
	accounts, err := s.store.Accounts(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, accounts)
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	account := core.Account{Name: req.Name}
	if req.Balance != "" {
		// Opening balances may be negative (credit cards, overdrafts).
		cents, err := core.ParseSignedDecimalToCents(req.Balance)
		if err != nil {
			writeError(w, err)
			return
		}
		account.Balance = core.Money{Cents: cents}
	}

	id, err := s.store.CreateAccount(r.Context(), account)
	if err != nil {
		writeError(w, err)
		return
	}

	s.invalidateReports()
	writeData(w, http.StatusCreated, createdResponse{ID: id})
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.store.Categories(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, categories)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	category := core.Category{
		Name:            req.Name,
		Type:            core.EntryType(req.Type),
		BudgetFrequency: core.Frequency(req.BudgetFrequency),
	}
	if req.BudgetAmount != "" {
		cents, err := core.ParseDecimalToCents(req.BudgetAmount)
		if err != nil {
			writeError(w, err)
			return
		}
		category.BudgetAmount = core.Money{Cents: cents}
	}

	id, err := s.store.CreateCategory(r.Context(), category)
	if err != nil {
		writeError(w, err)
		return
	}

	s.invalidateReports()
	writeData(w, http.StatusCreated, createdResponse{ID: id})
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}
	date, err := core.ParseDate(req.Date)
	if err != nil {
		writeError(w, err)
		return
	}

	txn := core.Transaction{
		AccountID:   req.AccountID,
		CategoryID:  req.CategoryID,
		Type:        core.EntryType(req.Type),
		Amount:      core.Money{Cents: cents},
		Date:        date,
		Description: req.Description,
	}

	id, err := s.store.CreateTransaction(r.Context(), txn)
	if err != nil {
		writeError(w, err)
		return
	}

	s.invalidateReports()
	writeData(w, http.StatusCreated, createdResponse{ID: id})
}

func (s *Server) handleCreateTransfer(w http.ResponseWriter, r *http.Request) {
	var req createTransferRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}
	date, err := core.ParseDate(req.Date)
	if err != nil {
		writeError(w, err)
		return
	}

	fromID, toID, err := s.store.CreateTransferPair(r.Context(), req.FromAccountID, req.ToAccountID, core.Money{Cents: cents}, date, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}

	s.invalidateReports()
	writeData(w, http.StatusCreated, struct {
		FromID int64 `json:"from_id"`
		ToID   int64 `json:"to_id"`
	}{FromID: fromID, ToID: toID})
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.store.DeleteTransaction(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	s.invalidateReports()
	writeData(w, http.StatusOK, struct {
		Deleted int64 `json:"deleted"`
	}{Deleted: id})
}
