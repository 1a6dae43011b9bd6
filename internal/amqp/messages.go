package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"fintech/internal/core"
)

// Kinds of envelope carried on the export queue.
const (
	KindExpense = "expense"
	KindChat    = "chat"
)

// Expense event types.
const (
	ExpenseCreated = "expense.created"
	ExpenseUpdated = "expense.updated"
	ExpenseDeleted = "expense.deleted"
)

var ErrInvalidEnvelope = errors.New("invalid envelope")

// ExpenseEvent reports a write to the expense list. Deleted events carry the
// record as it was before removal.
type ExpenseEvent struct {
	Type      string       `json:"type"`
	Expense   core.Expense `json:"expense"`
	Timestamp time.Time    `json:"timestamp"`
}

// ChatEvent is one question and the reply given to it.
type ChatEvent struct {
	Session   string    `json:"session"`
	Message   string    `json:"message"`
	Reply     string    `json:"reply"`
	Source    string    `json:"source"`
	Topic     string    `json:"topic,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Envelope wraps exactly one event.
type Envelope struct {
	Kind    string        `json:"kind"`
	Expense *ExpenseEvent `json:"expense_event,omitempty"`
	Chat    *ChatEvent    `json:"chat_event,omitempty"`
}

func NewExpenseEvent(typ string, e core.Expense) ExpenseEvent {
	return ExpenseEvent{Type: typ, Expense: e, Timestamp: time.Now().UTC()}
}

func (m *Envelope) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// EnvelopeFromJSON decodes and checks an envelope.
func EnvelopeFromJSON(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEnvelope, err)
	}
	switch env.Kind {
	case KindExpense:
		if env.Expense == nil {
			return nil, fmt.Errorf("%w: expense envelope without event", ErrInvalidEnvelope)
		}
		switch env.Expense.Type {
		case ExpenseCreated, ExpenseUpdated, ExpenseDeleted:
		default:
			return nil, fmt.Errorf("%w: unknown expense event type %q", ErrInvalidEnvelope, env.Expense.Type)
		}
	case KindChat:
		if env.Chat == nil {
			return nil, fmt.Errorf("%w: chat envelope without event", ErrInvalidEnvelope)
		}
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidEnvelope, env.Kind)
	}
	return &env, nil
}
