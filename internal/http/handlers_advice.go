package http

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"fintech/internal/core"
	"fintech/internal/remote"
	"fintech/internal/services"
)

// handleAdvice serves the authenticated advice contract from the local
// responder over the caller's records.
func (s *Server) handleAdvice(w http.ResponseWriter, r *http.Request) {
	var req remote.Request
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	reply, err := s.assistant.Local(r.Context(), sanitizeInput(req.Message))
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(remote.Response{Response: reply.Text}).Write(w)
}

// handlePublicAdvice answers without reading any stored records.
func (s *Server) handlePublicAdvice(w http.ResponseWriter, r *http.Request) {
	var req remote.Request
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	reply, err := s.assistant.Anonymous(sanitizeInput(req.Message))
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(remote.Response{Response: reply.Text}).Write(w)
}

type financialHealthResponse struct {
	Health            core.HealthReport     `json:"financial_health"`
	ExpenseCategories []core.CategoryAmount `json:"expense_categories"`
	Budgets           []core.BudgetLine     `json:"budgets"`
	Goals             []core.Goal           `json:"goals"`
}

// handleFinancialHealth scores the reference summary and lists the recorded
// spending per category next to the budgets and goals.
func (s *Server) handleFinancialHealth(w http.ResponseWriter, r *http.Request) {
	sum, err := s.expenses.Summary(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	summary := s.assistant.Summary()
	resp := financialHealthResponse{
		Health:            core.AnalyzeHealth(summary),
		ExpenseCategories: sum.Categories,
		Budgets:           summary.Budgets,
		Goals:             summary.Goals,
	}
	if resp.Budgets == nil {
		resp.Budgets = []core.BudgetLine{}
	}
	if resp.Goals == nil {
		resp.Goals = []core.Goal{}
	}
	NewJSONResponse().Body(resp).Write(w)
}

type taxEstimateResponse struct {
	Year       int                    `json:"year,omitempty"`
	Deductions services.TaxSummary    `json:"deductions"`
	IncomeTax  core.IncomeTaxEstimate `json:"income_tax"`
}

// handleTaxEstimate estimates the yearly income tax on twelve months of the
// reference income, less the deductible expenses of ?year= (every year when
// absent).
func (s *Server) handleTaxEstimate(w http.ResponseWriter, r *http.Request) {
	var (
		f    services.Filter
		year int
	)
	if v := strings.TrimSpace(r.URL.Query().Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 1 || y > 9999 {
			writeError(w, r, fmt.Errorf("%w: year must be a calendar year", errBadRequest))
			return
		}
		year = y
		f.From = core.NewDate(year, 1, 1)
		f.To = core.NewDate(year, 12, 31)
	}

	deductions, err := s.expenses.TaxSummary(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	income := core.Money{Cents: s.assistant.Summary().MonthlyIncome.Cents * 12}
	NewJSONResponse().Body(taxEstimateResponse{
		Year:       year,
		Deductions: deductions,
		IncomeTax:  core.EstimateIncomeTax(income, deductions.Total, core.DefaultTaxBrackets()),
	}).Write(w)
}
