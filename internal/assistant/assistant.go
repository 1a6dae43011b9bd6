// Package assistant answers chat messages. It asks the remote advisor when one
// is configured and falls back to the local rule-based responder on any
// failure, so a caller always gets an answer unless it gave up first.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"fintech/internal/advisor"
	"fintech/internal/amqp"
	"fintech/internal/core"
	"fintech/internal/store"
)

var ErrEmptyMessage = errors.New("empty message")

type Source string

const (
	SourceRemote Source = "remote"
	SourceLocal  Source = "local"
)

// Reply is the answer to one message. At is the only field that depends on
// the clock.
type Reply struct {
	Text   string    `json:"text"`
	Route  string    `json:"route,omitempty"`
	Topic  string    `json:"topic,omitempty"`
	Source Source    `json:"source"`
	At     time.Time `json:"at"`
}

// Advisor is the remote advice service.
type Advisor interface {
	Advise(ctx context.Context, message string) (string, error)
}

// ChatPublisher receives every answered exchange. *amqp.Client implements it.
type ChatPublisher interface {
	PublishChatEvent(ctx context.Context, ev amqp.ChatEvent) error
}

type Options struct {
	Store   store.Store
	Summary core.FinancialSummary
	// Remote may be nil, in which case every answer is local.
	Remote    Advisor
	Timeout   time.Duration
	Delay     time.Duration
	Publisher ChatPublisher
}

type Assistant struct {
	store     store.Store
	summary   core.FinancialSummary
	remote    Advisor
	timeout   time.Duration
	delay     time.Duration
	publisher ChatPublisher
	responder *advisor.Responder
	now       func() time.Time
}

func New(opts Options) *Assistant {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	return &Assistant{
		store:     opts.Store,
		summary:   opts.Summary,
		remote:    opts.Remote,
		timeout:   opts.Timeout,
		delay:     opts.Delay,
		publisher: opts.Publisher,
		responder: advisor.New(),
		now:       time.Now,
	}
}

// Summary returns the reference dataset answers are built from.
func (a *Assistant) Summary() core.FinancialSummary { return a.summary }

// Ask answers message outside any session.
func (a *Assistant) Ask(ctx context.Context, message string) (Reply, error) {
	return a.ask(ctx, "", message)
}

// Local answers message with the rule-based responder only.
func (a *Assistant) Local(ctx context.Context, message string) (Reply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return Reply{}, ErrEmptyMessage
	}
	return a.localReply(a.Context(ctx), message), nil
}

// Anonymous answers from the reference summary only; no stored records or
// settings are read.
func (a *Assistant) Anonymous(message string) (Reply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return Reply{}, ErrEmptyMessage
	}
	data := advisor.Context{Summary: a.summary, Settings: core.DefaultGeneralSettings()}
	return a.localReply(data, message), nil
}

// Context builds the responder input from a fresh store snapshot. A store
// failure degrades to an empty snapshot.
func (a *Assistant) Context(ctx context.Context) advisor.Context {
	c := advisor.Context{Summary: a.summary, Settings: core.DefaultGeneralSettings()}
	if a.store == nil {
		return c
	}
	snap, err := store.LoadSnapshot(ctx, a.store)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to load record snapshot, answering without records", "error", err)
		return c
	}
	c.Records = snap.Expenses
	c.TaxSettings = snap.TaxSettings
	c.Settings = snap.Settings
	return c
}

func (a *Assistant) ask(ctx context.Context, session, message string) (Reply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return Reply{}, ErrEmptyMessage
	}
	if err := a.wait(ctx); err != nil {
		return Reply{}, err
	}

	data := a.Context(ctx)
	local := a.localReply(data, message)

	reply := local
	if local.Route == "" && a.remote != nil {
		if text, err := a.askRemote(ctx, message); err == nil {
			reply = Reply{Text: text, Source: SourceRemote, At: a.now()}
		} else if ctx.Err() == nil {
			slog.WarnContext(ctx, "Remote advisor failed, answering locally", "error", err)
		}
	}

	if err := ctx.Err(); err != nil {
		return Reply{}, err
	}
	a.publish(ctx, session, message, reply)
	return reply, nil
}

func (a *Assistant) askRemote(ctx context.Context, message string) (string, error) {
	rctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	text, err := a.remote.Advise(rctx, message)
	if err != nil {
		return "", fmt.Errorf("advise: %w", err)
	}
	return text, nil
}

func (a *Assistant) localReply(data advisor.Context, message string) Reply {
	ans := a.responder.Answer(message, data)
	return Reply{
		Text:   ans.Text,
		Route:  ans.Route,
		Topic:  string(ans.Topic),
		Source: SourceLocal,
		At:     a.now(),
	}
}

// wait sleeps for the configured reply delay or until ctx is done.
func (a *Assistant) wait(ctx context.Context) error {
	if a.delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(a.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (a *Assistant) publish(ctx context.Context, session, message string, r Reply) {
	if a.publisher == nil {
		return
	}
	ev := amqp.ChatEvent{
		Session:   session,
		Message:   message,
		Reply:     r.Text,
		Source:    string(r.Source),
		Topic:     r.Topic,
		Timestamp: r.At.UTC(),
	}
	if err := a.publisher.PublishChatEvent(ctx, ev); err != nil {
		slog.ErrorContext(ctx, "Failed to publish chat event", "session", session, "error", err)
	}
}
