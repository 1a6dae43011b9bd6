// Package worker turns queued expense and chat events into spreadsheet rows.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"fintech/internal/amqp"
	"fintech/internal/core"
	"fintech/internal/sheets"
)

// ExportWorker appends one row per event through its exporter.
type ExportWorker struct {
	exporter sheets.Exporter
	expenses atomic.Int64
	chats    atomic.Int64
}

func NewExportWorker(exporter sheets.Exporter) *ExportWorker {
	return &ExportWorker{exporter: exporter}
}

// Handle is an amqp.Handler. A returned error makes the message requeue.
func (w *ExportWorker) Handle(ctx context.Context, env *amqp.Envelope) error {
	switch env.Kind {
	case amqp.KindExpense:
		return w.handleExpense(ctx, env.Expense)
	case amqp.KindChat:
		return w.handleChat(ctx, env.Chat)
	default:
		slog.WarnContext(ctx, "Ignoring envelope of unknown kind", "kind", env.Kind)
		return nil
	}
}

func (w *ExportWorker) handleExpense(ctx context.Context, ev *amqp.ExpenseEvent) error {
	ref, err := w.exporter.AppendExpense(ctx, ev.Type, ev.Expense, ev.Timestamp)
	if err != nil {
		return fmt.Errorf("export expense %d: %w", ev.Expense.ID, err)
	}
	w.expenses.Add(1)
	slog.InfoContext(ctx, "Exported expense event",
		"type", ev.Type,
		"id", ev.Expense.ID,
		"sheets_ref", ref,
		"amount", ev.Expense.Amount.String())
	return nil
}

func (w *ExportWorker) handleChat(ctx context.Context, ev *amqp.ChatEvent) error {
	ref, err := w.exporter.AppendChat(ctx, sheets.ChatRow{
		Session: ev.Session,
		Message: ev.Message,
		Reply:   ev.Reply,
		Source:  ev.Source,
		Topic:   ev.Topic,
		At:      ev.Timestamp,
	})
	if err != nil {
		return fmt.Errorf("export chat exchange: %w", err)
	}
	w.chats.Add(1)
	slog.DebugContext(ctx, "Exported chat exchange", "session", ev.Session, "sheets_ref", ref)
	return nil
}

// ExportAll writes every expense as a snapshot row. It backs up the event
// stream when the worker starts after missed messages.
func (w *ExportWorker) ExportAll(ctx context.Context, expenses []core.Expense) (int, error) {
	now := time.Now()
	for i, e := range expenses {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		if _, err := w.exporter.AppendExpense(ctx, "expense.snapshot", e, now); err != nil {
			return i, fmt.Errorf("export expense %d: %w", e.ID, err)
		}
	}
	slog.InfoContext(ctx, "Exported expense snapshot", "count", len(expenses))
	return len(expenses), nil
}

// Stats returns how many expense and chat events were exported.
func (w *ExportWorker) Stats() (expenses, chats int64) {
	return w.expenses.Load(), w.chats.Load()
}
