package http

import (
	"context"
	"net/http"

	"finbook/internal/core"
)

func (s *Server) handleIncomeExpense(w http.ResponseWriter, r *http.Request) {
	filter, p, err := filterAndPeriod(r)
	if err != nil {
		writeError(w, err)
		return
	}
	s.cachedReport(w, r, func(ctx context.Context) (any, error) {
		return s.engine.IncomeExpenseByMonth(ctx, filter, p)
	})
}

func (s *Server) handleExpenseCategories(w http.ResponseWriter, r *http.Request) {
	filter, p, err := filterAndPeriod(r)
	if err != nil {
		writeError(w, err)
		return
	}
	s.cachedReport(w, r, func(ctx context.Context) (any, error) {
		return s.engine.ExpenseCategories(ctx, filter, p)
	})
}

func (s *Server) handleTopCategories(w http.ResponseWriter, r *http.Request) {
	filter, p, err := filterAndPeriod(r)
	if err != nil {
		writeError(w, err)
		return
	}
	limit := parseLimit(r)
	if limit == 0 {
		limit = 5
	}
	s.cachedReport(w, r, func(ctx context.Context) (any, error) {
		return s.engine.TopSpendingCategories(ctx, filter, p, limit)
	})
}

func (s *Server) handleCashFlow(w http.ResponseWriter, r *http.Request) {
	filter, err := parseAccounts(r)
	if err != nil {
		writeError(w, err)
		return
	}
	s.cachedReport(w, r, func(ctx context.Context) (any, error) {
		return s.engine.CashFlow(ctx, filter)
	})
}

func (s *Server) handleBudgetProgress(w http.ResponseWriter, r *http.Request) {
	filter, p, err := filterAndPeriod(r)
	if err != nil {
		writeError(w, err)
		return
	}
	s.cachedReport(w, r, func(ctx context.Context) (any, error) {
		return s.engine.BudgetProgress(ctx, filter, p)
	})
}

func (s *Server) handleComparison(w http.ResponseWriter, r *http.Request) {
	filter, err := parseAccounts(r)
	if err != nil {
		writeError(w, err)
		return
	}
	s.cachedReport(w, r, func(ctx context.Context) (any, error) {
		return s.engine.MonthlyComparison(ctx, filter)
	})
}

func (s *Server) handleNetWorth(w http.ResponseWriter, r *http.Request) {
	filter, err := parseAccounts(r)
	if err != nil {
		writeError(w, err)
		return
	}
	s.cachedReport(w, r, func(ctx context.Context) (any, error) {
		return s.engine.NetWorth(ctx, filter)
	})
}

func (s *Server) handleUpcoming(w http.ResponseWriter, r *http.Request) {
	filter, err := parseAccounts(r)
	if err != nil {
		writeError(w, err)
		return
	}
	s.cachedReport(w, r, func(ctx context.Context) (any, error) {
		return s.engine.UpcomingPayments(ctx, filter, core.Date{})
	})
}
