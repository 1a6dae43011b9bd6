package http

import (
	"encoding/csv"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"fintech/internal/core"
	applog "fintech/internal/log"
	"fintech/internal/services"
)

var exportHeader = []string{"ID", "Date", "Category", "Description", "Amount", "Tax deductible"}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	q, err := ParseListQuery(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := s.expenses.List(r.Context(), q.Filter, q.Sort, q.Page)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(res).Write(w)
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	e, err := s.expenses.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(e).Write(w)
}

// readExpense decodes and cleans an expense body. Ids in the body are ignored.
func readExpense(w http.ResponseWriter, r *http.Request) (core.Expense, error) {
	var e core.Expense
	if err := decodeJSON(w, r, &e); err != nil {
		return core.Expense{}, err
	}
	e.ID = 0
	e.Description = sanitizeInput(e.Description)
	e.Category = sanitizeInput(e.Category)
	return e, nil
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	e, err := readExpense(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	created, err := s.expenses.Create(r.Context(), e)
	if err != nil {
		writeError(w, r, err)
		return
	}
	applog.FromContext(r.Context()).WithComponent(applog.ComponentExpense).InfoContext(r.Context(), "Expense created via API",
		applog.NewFields().WithOperation(applog.OpCreate).WithExpense(created.ID, created.Category, created.Amount.String()).ToSlice()...)
	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/expenses/"+strconv.FormatInt(created.ID, 10)).
		Body(created).
		Write(w)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	e, err := readExpense(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	updated, err := s.expenses.Update(r.Context(), id, e)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(updated).Write(w)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.expenses.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

func (s *Server) handleExpenseSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := s.expenses.Summary(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(sum).Write(w)
}

// handleTaxSummary totals the tax deductible expenses matching the list
// filters.
func (s *Server) handleTaxSummary(w http.ResponseWriter, r *http.Request) {
	q, err := ParseListQuery(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	sum, err := s.expenses.TaxSummary(r.Context(), q.Filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(sum).Write(w)
}

// exportRows lists every expense matching the query, ignoring paging.
func (s *Server) exportRows(r *http.Request) ([]core.Expense, error) {
	q, err := ParseListQuery(r.URL.Query())
	if err != nil {
		return nil, err
	}
	res, err := s.expenses.List(r.Context(), q.Filter, q.Sort, services.Page{Number: 1, Size: math.MaxInt32})
	if err != nil {
		return nil, err
	}
	return res.Items, nil
}

func exportRecord(e core.Expense) []string {
	return []string{
		strconv.FormatInt(e.ID, 10),
		e.Date.String(),
		e.Category,
		e.Description,
		e.Amount.String(),
		strconv.FormatBool(e.IsTaxDeductible),
	}
}

func exportFilename(ext string) string {
	return fmt.Sprintf("expenses_%s.%s", time.Now().Format("20060102"), ext)
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	rows, err := s.exportRows(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportFilename("csv")))

	cw := csv.NewWriter(w)
	cw.Write(exportHeader)
	for _, e := range rows {
		cw.Write(exportRecord(e))
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "CSV export failed",
			applog.NewFields().WithOperation(applog.OpExport).WithError(err).ToSlice()...)
	}
}

const xlsxSheet = "Expenses"

// buildWorkbook lays the rows out on one sheet with numeric amounts.
func buildWorkbook(rows []core.Expense) (*excelize.File, error) {
	f := excelize.NewFile()
	index, err := f.NewSheet(xlsxSheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	if err := f.SetSheetRow(xlsxSheet, "A1", &exportHeader); err != nil {
		f.Close()
		return nil, fmt.Errorf("write header: %w", err)
	}
	for i, e := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		amount, _ := e.Amount.Decimal().Float64()
		row := []any{e.ID, e.Date.String(), e.Category, e.Description, amount, e.IsTaxDeductible}
		if err := f.SetSheetRow(xlsxSheet, cell, &row); err != nil {
			f.Close()
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	f.SetColWidth(xlsxSheet, "A", "A", 6)
	f.SetColWidth(xlsxSheet, "B", "B", 12)
	f.SetColWidth(xlsxSheet, "C", "C", 15)
	f.SetColWidth(xlsxSheet, "D", "D", 40)
	f.SetColWidth(xlsxSheet, "E", "E", 12)
	f.SetColWidth(xlsxSheet, "F", "F", 14)
	return f, nil
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	rows, err := s.exportRows(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	f, err := buildWorkbook(rows)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportFilename("xlsx")))
	if err := f.Write(w); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "XLSX export failed",
			applog.NewFields().WithOperation(applog.OpExport).WithError(err).ToSlice()...)
	}
}
