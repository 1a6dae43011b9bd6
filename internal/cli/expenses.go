package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"fintech/internal/core"
	applog "fintech/internal/log"
	"fintech/internal/services"
	"fintech/internal/store"
)

func newExpensesCommand(app *App) *cobra.Command {
	expensesCmd := &cobra.Command{
		Use:   "expenses",
		Short: "List and edit expense records",
	}
	expensesCmd.AddCommand(newExpensesListCommand(app))
	expensesCmd.AddCommand(newExpensesAddCommand(app))
	expensesCmd.AddCommand(newExpensesDeleteCommand(app))
	return expensesCmd
}

type listFlags struct {
	category string
	from     string
	to       string
	query    string
	sort     string
	page     int
	pageSize int
	asJSON   bool
}

func (f listFlags) filter() (services.Filter, error) {
	out := services.Filter{Category: f.category, Description: f.query}
	var err error
	if f.from != "" {
		if out.From, err = core.ParseDate(f.from); err != nil {
			return services.Filter{}, fmt.Errorf("--from: %w", err)
		}
	}
	if f.to != "" {
		if out.To, err = core.ParseDate(f.to); err != nil {
			return services.Filter{}, fmt.Errorf("--to: %w", err)
		}
	}
	return out, nil
}

func newExpensesListCommand(app *App) *cobra.Command {
	var flags listFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List expenses, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := flags.filter()
			if err != nil {
				return err
			}
			order, err := services.ParseSort(flags.sort)
			if err != nil {
				return err
			}
			return app.withStore(cmd.Context(), func(s store.Store) error {
				svc := services.NewExpenseService(s, nil)
				res, err := svc.List(cmd.Context(), filter, order, services.Page{Number: flags.page, Size: flags.pageSize})
				if err != nil {
					return err
				}
				if flags.asJSON {
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(res)
				}

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tDATE\tCATEGORY\tAMOUNT\tTAX\tDESCRIPTION")
				for _, e := range res.Items {
					tax := ""
					if e.IsTaxDeductible {
						tax = "yes"
					}
					fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", e.ID, e.Date, e.Category, e.Amount, tax, e.Description)
				}
				if err := tw.Flush(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "page %d of %d, %s expenses total\n",
					res.Page, max(res.Pages, 1), humanize.Comma(int64(res.Total)))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&flags.category, "category", "", "only this category")
	cmd.Flags().StringVar(&flags.from, "from", "", "earliest date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&flags.to, "to", "", "latest date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&flags.query, "query", "q", "", "description contains")
	cmd.Flags().StringVar(&flags.sort, "sort", "", "field[:asc|desc] over date, description, category, amount")
	cmd.Flags().IntVar(&flags.page, "page", 1, "page number")
	cmd.Flags().IntVar(&flags.pageSize, "page-size", services.DefaultPageSize, "items per page")
	cmd.Flags().BoolVar(&flags.asJSON, "json", false, "print the page as JSON")

	return cmd
}

func newExpensesAddCommand(app *App) *cobra.Command {
	var (
		date        string
		amount      string
		category    string
		description string
		tax         bool
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record an expense",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e := core.Expense{Category: category, Description: description, IsTaxDeductible: tax}
			var err error
			if e.Date, err = core.ParseDate(date); err != nil {
				return fmt.Errorf("--date: %w", err)
			}
			if e.Amount.Cents, err = core.ParseDecimalToCents(amount); err != nil {
				return fmt.Errorf("--amount: %w", err)
			}
			return app.withStore(cmd.Context(), func(s store.Store) error {
				created, err := services.NewExpenseService(s, nil).Create(cmd.Context(), e)
				if err != nil {
					return err
				}
				app.Logger.WithComponent(applog.ComponentCLI).Debug("Expense added",
					applog.NewFields().WithOperation(applog.OpCreate).WithExpense(created.ID, created.Category, created.Amount.String()).ToSlice()...)
				fmt.Fprintf(cmd.OutOrStdout(), "added expense %d (tax deductible: %t)\n", created.ID, created.IsTaxDeductible)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "expense date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&amount, "amount", "", "amount, e.g. 12.50")
	cmd.Flags().StringVar(&category, "category", "", "category name")
	cmd.Flags().StringVar(&description, "description", "", "what it was for")
	cmd.Flags().BoolVar(&tax, "tax", false, "mark as tax deductible")
	for _, name := range []string{"date", "amount", "category", "description"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

func newExpensesDeleteCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an expense",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id < 1 {
				return fmt.Errorf("invalid expense id %q", args[0])
			}
			return app.withStore(cmd.Context(), func(s store.Store) error {
				if err := services.NewExpenseService(s, nil).Delete(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted expense %d\n", id)
				return nil
			})
		},
	}
}
