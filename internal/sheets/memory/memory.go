// Package memory is an in-process exporter used when no spreadsheet is
// configured and in tests.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"fintech/internal/core"
	"fintech/internal/sheets"
)

type Exporter struct {
	mu       sync.Mutex
	expenses [][]any
	chats    [][]any
}

var _ sheets.Exporter = (*Exporter)(nil)

func New() *Exporter { return &Exporter{} }

// AppendExpense stores the row and returns a synthetic row reference.
func (x *Exporter) AppendExpense(_ context.Context, action string, e core.Expense, at time.Time) (string, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.expenses = append(x.expenses, sheets.ExpenseValues(action, e, at))
	return fmt.Sprintf("mem:expenses:%d", len(x.expenses)), nil
}

func (x *Exporter) AppendChat(_ context.Context, c sheets.ChatRow) (string, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.chats = append(x.chats, sheets.ChatValues(c))
	return fmt.Sprintf("mem:chat:%d", len(x.chats)), nil
}

// ExpenseRows returns a copy of the exported expense rows.
func (x *Exporter) ExpenseRows() [][]any {
	x.mu.Lock()
	defer x.mu.Unlock()
	return append([][]any(nil), x.expenses...)
}

// ChatRows returns a copy of the exported chat rows.
func (x *Exporter) ChatRows() [][]any {
	x.mu.Lock()
	defer x.mu.Unlock()
	return append([][]any(nil), x.chats...)
}
