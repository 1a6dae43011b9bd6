// Package sheets defines the spreadsheet export ports and the row layout
// shared by every exporter.
package sheets

import (
	"context"
	"time"

	"fintech/internal/core"
)

// ChatRow is one exported chat exchange.
type ChatRow struct {
	Session string
	Message string
	Reply   string
	Source  string
	Topic   string
	At      time.Time
}

type (
	ExpenseExporter interface {
		AppendExpense(ctx context.Context, action string, e core.Expense, at time.Time) (rowRef string, err error)
	}

	ChatExporter interface {
		AppendChat(ctx context.Context, c ChatRow) (rowRef string, err error)
	}

	Exporter interface {
		ExpenseExporter
		ChatExporter
	}
)

// ExpenseHeader names the columns of ExpenseValues.
var ExpenseHeader = []any{"Timestamp", "Action", "ID", "Date", "Amount", "Category", "Description", "Tax deductible"}

// ExpenseValues is the row written for one expense event.
func ExpenseValues(action string, e core.Expense, at time.Time) []any {
	amount, _ := e.Amount.Decimal().Float64()
	return []any{
		at.UTC().Format(time.RFC3339),
		action,
		e.ID,
		e.Date.String(),
		amount,
		e.Category,
		e.Description,
		e.IsTaxDeductible,
	}
}

// ChatHeader names the columns of ChatValues.
var ChatHeader = []any{"Timestamp", "Session", "Source", "Topic", "Message", "Reply"}

func ChatValues(c ChatRow) []any {
	return []any{c.At.UTC().Format(time.RFC3339), c.Session, c.Source, c.Topic, c.Message, c.Reply}
}
