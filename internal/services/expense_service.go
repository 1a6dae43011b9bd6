// Package services holds the expense list operations behind the HTTP API and
// the CLI.
package services

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"fintech/internal/amqp"
	"fintech/internal/core"
	"fintech/internal/store"
)

const DefaultPageSize = 5

var (
	ErrExpenseNotFound = errors.New("expense not found")
	ErrInvalidSort     = errors.New("invalid sort field")
)

// EventPublisher receives expense write events. *amqp.Client implements it.
type EventPublisher interface {
	PublishExpenseEvent(ctx context.Context, ev amqp.ExpenseEvent) error
}

// Filter narrows List. Zero fields match everything.
type Filter struct {
	From          core.Date
	To            core.Date
	Category      string
	MinAmount     *core.Money
	MaxAmount     *core.Money
	Description   string
	TaxDeductible *bool
}

func (f Filter) matches(e core.Expense) bool {
	if !f.From.IsZero() && e.Date.Before(f.From.Time) {
		return false
	}
	if !f.To.IsZero() && e.Date.After(f.To.Time) {
		return false
	}
	if f.Category != "" && e.Category != f.Category {
		return false
	}
	if f.MinAmount != nil && e.Amount.Cents < f.MinAmount.Cents {
		return false
	}
	if f.MaxAmount != nil && e.Amount.Cents > f.MaxAmount.Cents {
		return false
	}
	if f.Description != "" && !strings.Contains(strings.ToLower(e.Description), strings.ToLower(f.Description)) {
		return false
	}
	if f.TaxDeductible != nil && e.IsTaxDeductible != *f.TaxDeductible {
		return false
	}
	return true
}

type SortField string

const (
	SortDate        SortField = "date"
	SortDescription SortField = "description"
	SortCategory    SortField = "category"
	SortAmount      SortField = "amount"
)

// Sort orders List results. The zero value sorts by date, newest first.
type Sort struct {
	Field SortField
	Asc   bool
}

// ParseSort reads "field" or "field:asc|desc". An empty string is the default.
func ParseSort(s string) (Sort, error) {
	if s == "" {
		return Sort{Field: SortDate}, nil
	}
	field, dir, _ := strings.Cut(s, ":")
	out := Sort{Field: SortField(strings.ToLower(field))}
	switch out.Field {
	case SortDate, SortDescription, SortCategory, SortAmount:
	default:
		return Sort{}, fmt.Errorf("%w: %q", ErrInvalidSort, field)
	}
	switch strings.ToLower(dir) {
	case "", "desc":
	case "asc":
		out.Asc = true
	default:
		return Sort{}, fmt.Errorf("%w: direction %q", ErrInvalidSort, dir)
	}
	return out, nil
}

func (s Sort) compare(a, b core.Expense) int {
	var c int
	switch s.Field {
	case SortDescription:
		c = cmp.Compare(a.Description, b.Description)
	case SortCategory:
		c = cmp.Compare(a.Category, b.Category)
	case SortAmount:
		c = cmp.Compare(a.Amount.Cents, b.Amount.Cents)
	default:
		c = a.Date.Compare(b.Date.Time)
	}
	if !s.Asc {
		c = -c
	}
	return c
}

// Page selects a 1-based page of Size items.
type Page struct {
	Number int
	Size   int
}

func (p Page) normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size < 1 {
		p.Size = DefaultPageSize
	}
	return p
}

type ListResult struct {
	Items    []core.Expense `json:"items"`
	Total    int            `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
	Pages    int            `json:"pages"`
}

// ExpenseSummary aggregates the whole expense list.
type ExpenseSummary struct {
	Count         int                   `json:"count"`
	Total         core.Money            `json:"total"`
	TaxDeductible core.Money            `json:"tax_deductible"`
	Categories    []core.CategoryAmount `json:"categories"`
}

// TaxSummary totals the tax deductible expenses and what deducting them is
// estimated to save at the configured tax rate.
type TaxSummary struct {
	Count           int                   `json:"count"`
	Total           core.Money            `json:"total"`
	Categories      []core.CategoryAmount `json:"categories"`
	TaxRate         core.Percent          `json:"tax_rate"`
	EstimatedSaving core.Money            `json:"estimated_saving"`
}

// ExpenseService reads and writes the expense list kept in the record store.
type ExpenseService struct {
	store     store.Store
	publisher EventPublisher
	// serializes read-modify-write cycles on the expenses document
	mu sync.Mutex
}

// NewExpenseService returns a service over s. publisher may be nil.
func NewExpenseService(s store.Store, publisher EventPublisher) *ExpenseService {
	return &ExpenseService{store: s, publisher: publisher}
}

// List filters, sorts and pages the expenses.
func (s *ExpenseService) List(ctx context.Context, f Filter, order Sort, p Page) (ListResult, error) {
	all, err := store.Expenses(ctx, s.store)
	if err != nil {
		return ListResult{}, fmt.Errorf("load expenses: %w", err)
	}

	var items []core.Expense
	for _, e := range all {
		if f.matches(e) {
			items = append(items, e)
		}
	}
	slices.SortStableFunc(items, order.compare)

	p = p.normalize()
	res := ListResult{
		Total:    len(items),
		Page:     p.Number,
		PageSize: p.Size,
		Pages:    pageCount(len(items), p.Size),
		Items:    []core.Expense{},
	}
	// pages past the end are empty; checking the page index first keeps the
	// offset product from overflowing
	if p.Number <= res.Pages {
		start := (p.Number - 1) * p.Size
		res.Items = items[start:min(start+p.Size, len(items))]
	}
	return res, nil
}

// All returns every expense in stored order.
func (s *ExpenseService) All(ctx context.Context) ([]core.Expense, error) {
	all, err := store.Expenses(ctx, s.store)
	if err != nil {
		return nil, fmt.Errorf("load expenses: %w", err)
	}
	return all, nil
}

func (s *ExpenseService) Get(ctx context.Context, id int64) (core.Expense, error) {
	all, err := store.Expenses(ctx, s.store)
	if err != nil {
		return core.Expense{}, fmt.Errorf("load expenses: %w", err)
	}
	i := indexOf(all, id)
	if i < 0 {
		return core.Expense{}, fmt.Errorf("%w: %d", ErrExpenseNotFound, id)
	}
	return all[i], nil
}

// Create validates e, assigns the next id and stores it. With automatic tax
// calculation on, the deductible flag follows the allowed categories.
func (s *ExpenseService) Create(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}

	s.mu.Lock()
	all, err := store.Expenses(ctx, s.store)
	if err != nil {
		s.mu.Unlock()
		return core.Expense{}, fmt.Errorf("load expenses: %w", err)
	}
	if err := s.applyTaxRule(ctx, &e); err != nil {
		s.mu.Unlock()
		return core.Expense{}, err
	}

	var maxID int64
	for _, x := range all {
		maxID = max(maxID, x.ID)
	}
	e.ID = maxID + 1

	if err := store.SaveExpenses(ctx, s.store, append(all, e)); err != nil {
		s.mu.Unlock()
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}
	s.mu.Unlock()

	slog.InfoContext(ctx, "Expense created", "id", e.ID, "category", e.Category, "amount", e.Amount.String())
	s.publish(ctx, amqp.ExpenseCreated, e)
	return e, nil
}

// Update replaces the expense with the given id. The automatic tax rule is
// applied only when the category changes.
func (s *ExpenseService) Update(ctx context.Context, id int64, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}

	s.mu.Lock()
	all, err := store.Expenses(ctx, s.store)
	if err != nil {
		s.mu.Unlock()
		return core.Expense{}, fmt.Errorf("load expenses: %w", err)
	}
	i := indexOf(all, id)
	if i < 0 {
		s.mu.Unlock()
		return core.Expense{}, fmt.Errorf("%w: %d", ErrExpenseNotFound, id)
	}
	if all[i].Category != e.Category {
		if err := s.applyTaxRule(ctx, &e); err != nil {
			s.mu.Unlock()
			return core.Expense{}, err
		}
	}
	e.ID = id
	all[i] = e

	if err := store.SaveExpenses(ctx, s.store, all); err != nil {
		s.mu.Unlock()
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}
	s.mu.Unlock()

	slog.InfoContext(ctx, "Expense updated", "id", id)
	s.publish(ctx, amqp.ExpenseUpdated, e)
	return e, nil
}

func (s *ExpenseService) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	all, err := store.Expenses(ctx, s.store)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("load expenses: %w", err)
	}
	i := indexOf(all, id)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrExpenseNotFound, id)
	}
	removed := all[i]
	if err := store.SaveExpenses(ctx, s.store, slices.Delete(all, i, i+1)); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("save expenses: %w", err)
	}
	s.mu.Unlock()

	slog.InfoContext(ctx, "Expense deleted", "id", id)
	s.publish(ctx, amqp.ExpenseDeleted, removed)
	return nil
}

// Summary totals the whole list per category.
func (s *ExpenseService) Summary(ctx context.Context) (ExpenseSummary, error) {
	all, err := store.Expenses(ctx, s.store)
	if err != nil {
		return ExpenseSummary{}, fmt.Errorf("load expenses: %w", err)
	}
	totals := core.CategoryTotals(all)
	if totals == nil {
		totals = []core.CategoryAmount{}
	}
	return ExpenseSummary{
		Count:         len(all),
		Total:         core.Sum(all),
		TaxDeductible: core.Sum(core.TaxDeductible(all)),
		Categories:    totals,
	}, nil
}

// TaxSummary totals the records flagged tax deductible that match f. The
// rate comes from the tax settings, or the defaults when none were saved.
func (s *ExpenseService) TaxSummary(ctx context.Context, f Filter) (TaxSummary, error) {
	all, err := store.Expenses(ctx, s.store)
	if err != nil {
		return TaxSummary{}, fmt.Errorf("load expenses: %w", err)
	}
	ts, err := store.TaxSettings(ctx, s.store)
	if err != nil {
		return TaxSummary{}, fmt.Errorf("load tax settings: %w", err)
	}
	rate := core.DefaultTaxSettings().DefaultTaxRate
	if ts != nil {
		rate = ts.DefaultTaxRate
	}

	deductible := true
	f.TaxDeductible = &deductible
	var matched []core.Expense
	for _, e := range all {
		if f.matches(e) {
			matched = append(matched, e)
		}
	}

	totals := core.CategoryTotals(matched)
	if totals == nil {
		totals = []core.CategoryAmount{}
	}
	total := core.Sum(matched)
	return TaxSummary{
		Count:           len(matched),
		Total:           total,
		Categories:      totals,
		TaxRate:         rate,
		EstimatedSaving: total.Share(rate),
	}, nil
}

func (s *ExpenseService) applyTaxRule(ctx context.Context, e *core.Expense) error {
	ts, err := store.TaxSettings(ctx, s.store)
	if err != nil {
		return fmt.Errorf("load tax settings: %w", err)
	}
	if ts != nil && ts.AutomaticTaxCalculation {
		e.IsTaxDeductible = ts.Allows(e.Category)
	}
	return nil
}

// publish sends the event; failures are logged and never fail the write.
func (s *ExpenseService) publish(ctx context.Context, typ string, e core.Expense) {
	if s.publisher == nil {
		slog.DebugContext(ctx, "No event publisher configured, skipping expense event", "type", typ, "id", e.ID)
		return
	}
	if err := s.publisher.PublishExpenseEvent(ctx, amqp.NewExpenseEvent(typ, e)); err != nil {
		slog.ErrorContext(ctx, "Failed to publish expense event", "type", typ, "id", e.ID, "error", err)
	}
}

func indexOf(all []core.Expense, id int64) int {
	return slices.IndexFunc(all, func(e core.Expense) bool { return e.ID == id })
}

func pageCount(n, size int) int {
	if n == 0 {
		return 0
	}
	return (n-1)/size + 1
}
