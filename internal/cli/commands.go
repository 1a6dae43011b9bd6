package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"fintech/internal/assistant"
	"fintech/internal/auth"
	"fintech/internal/config"
	"fintech/internal/core"
	applog "fintech/internal/log"
	"fintech/internal/store"
)

// App is what the command tree runs against. OpenStore is called lazily so
// commands that never touch records do not open the backend.
type App struct {
	Config    *config.Config
	Logger    *applog.Logger
	Summary   core.FinancialSummary
	Remote    assistant.Advisor
	OpenStore func(ctx context.Context) (store.Store, func() error, error)
}

// withStore opens the record store for the duration of fn.
func (a *App) withStore(ctx context.Context, fn func(store.Store) error) error {
	s, release, err := a.OpenStore(ctx)
	if err != nil {
		return fmt.Errorf("open record store: %w", err)
	}
	if release != nil {
		defer func() {
			if err := release(); err != nil {
				a.Logger.Warn("Failed to close record store", applog.FieldError, err)
			}
		}()
	}
	return fn(s)
}

// NewRootCommand creates the fintechctl command with all subcommands registered.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "fintechctl",
		Short: "Manage expenses and ask the finance assistant",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newAskCommand(app))
	rootCmd.AddCommand(newExpensesCommand(app))
	rootCmd.AddCommand(newSeedCommand(app))
	rootCmd.AddCommand(newTokenCommand(app))

	return rootCmd
}

func newAskCommand(app *App) *cobra.Command {
	var local, asJSON bool

	cmd := &cobra.Command{
		Use:   "ask <message>",
		Short: "Ask the assistant a question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			message := strings.Join(args, " ")
			return app.withStore(cmd.Context(), func(s store.Store) error {
				opts := assistant.Options{
					Store:   s,
					Summary: app.Summary,
					Timeout: app.Config.AdvisorTimeout,
				}
				if !local {
					opts.Remote = app.Remote
				}
				reply, err := assistant.New(opts).Ask(cmd.Context(), message)
				if err != nil {
					return err
				}
				return printReply(cmd.OutOrStdout(), reply, asJSON)
			})
		},
	}

	cmd.Flags().BoolVar(&local, "local", false, "answer with the local responder only")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full reply as JSON")

	return cmd
}

func printReply(w io.Writer, reply assistant.Reply, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(reply)
	}
	_, err := fmt.Fprintln(w, reply.Text)
	return err
}

func newSeedCommand(app *App) *cobra.Command {
	var demo bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Write default categories and settings for absent keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withStore(cmd.Context(), func(s store.Store) error {
				if err := store.Seed(cmd.Context(), s, demo); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "record store seeded")
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&demo, "demo", false, "also store the demo expenses when none exist")

	return cmd
}

func newTokenCommand(app *App) *cobra.Command {
	var (
		subject string
		secret  string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for the authenticated advice endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				secret = app.Config.JWTSecret
			}
			if secret == "" {
				return fmt.Errorf("no signing secret: set JWT_SECRET or pass --secret")
			}
			token, err := auth.GenerateToken(secret, subject, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "fintechctl", "token subject")
	cmd.Flags().StringVar(&secret, "secret", "", "signing secret (defaults to JWT_SECRET)")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")

	return cmd
}
