package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"gastos/internal/core"
	"gastos/internal/log"
	"gastos/internal/query"
	"gastos/internal/services"
	"gastos/internal/shell"
	"gastos/internal/storage/csvfile"
)

// usageError turns a validation failure on a flag or argument into a
// short message for the command line.
func usageError(name string, err error) error {
	var ve *core.ValidationError
	if errors.As(err, &ve) {
		return fmt.Errorf("invalid %s %q: %s", name, ve.Input, ve.Reason)
	}
	return fmt.Errorf("invalid %s: %w", name, err)
}

// parseDate reads a DD/MM/YYYY argument with the configured strategy, so a
// split configuration accepts the same loose dates the menu does.
func parseDate(dates core.DateStrategy, raw string) (core.Date, error) {
	parts := dates.Parts()
	values := []string{strings.TrimSpace(raw)}
	if len(parts) > 1 {
		values = strings.Split(values[0], "/")
		if len(values) != len(parts) {
			return core.Date{}, &core.ValidationError{Field: "date", Input: raw, Reason: core.ReasonDateFormat, Err: core.ErrInvalidDate}
		}
	}
	for i, part := range parts {
		v, err := part.Validate(values[i])
		if err != nil {
			return core.Date{}, err
		}
		values[i] = v
	}
	return dates.Build(values)
}

func (a *app) addCmd() *cobra.Command {
	var kind, amount, category, description, date string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record one transaction",
		Example: `  gastos add --kind gasto --amount 250 --category almacén --description pan --date 05/06/2025
  gastos add --kind ingreso --amount 1000 --description sueldo --date 01/06/2025`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withService(cmd, func(ctx context.Context, svc *services.TransactionService) error {
				k, err := core.ValidateKind(kind)
				if err != nil {
					return usageError("--kind", err)
				}
				m, err := core.ValidateAmount(amount)
				if err != nil {
					return usageError("--amount", err)
				}
				c := core.IncomeCategory
				if k == core.Expense {
					if c, err = core.ValidateText("category", category); err != nil {
						return usageError("--category", err)
					}
				}
				desc, err := core.ValidateText("description", description)
				if err != nil {
					return usageError("--description", err)
				}
				d, err := parseDate(a.dates, date)
				if err != nil {
					return usageError("--date", err)
				}

				t, err := svc.Add(ctx, k, m, c, desc, d)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "✅ %s agregado correctamente: %s\n", t.Kind.Label(), query.Describe(t))
				return nil
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&kind, "kind", "", "ingreso or gasto")
	f.StringVar(&amount, "amount", "", "positive amount, e.g. 1234.56")
	f.StringVar(&category, "category", "", "category (ignored for ingreso)")
	f.StringVar(&description, "description", "", "short description")
	f.StringVar(&date, "date", "", "date as DD/MM/YYYY")
	for _, name := range []string{"kind", "amount", "description", "date"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func (a *app) byDateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "by-date DD/MM/YYYY",
		Short: "List transactions recorded on a date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withService(cmd, func(_ context.Context, svc *services.TransactionService) error {
				d, err := parseDate(a.dates, args[0])
				if err != nil {
					return usageError("date", err)
				}
				shell.RenderByDate(a.out, d, query.ByDate(svc.Ledger(), d))
				return nil
			})
		},
	}
}

func (a *app) byCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "by-category CATEGORY",
		Short: "List transactions of a category",
		Long:  "List transactions of a category. Accents matter: \"verduleria\" does not match \"Verdulería\".",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withService(cmd, func(_ context.Context, svc *services.TransactionService) error {
				category, err := core.ValidateText("category", strings.Join(args, " "))
				if err != nil {
					return usageError("category", err)
				}
				shell.RenderByCategory(a.out, category, query.ByCategory(svc.Ledger(), category))
				return nil
			})
		},
	}
}

func (a *app) byKindCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "by-kind ingreso|gasto",
		Short:     "List incomes or expenses",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{core.Income.String(), core.Expense.String()},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withService(cmd, func(ctx context.Context, svc *services.TransactionService) error {
				res, err := query.ByKind(svc.Ledger(), args[0])
				if err != nil {
					log.FromContext(ctx).DebugContext(ctx, "Rejected kind filter", log.FieldError, err, log.FieldOperation, log.OpQuery)
					return err
				}
				shell.RenderByKind(a.out, strings.ToLower(strings.TrimSpace(args[0])), res)
				return nil
			})
		},
	}
}

func (a *app) totalsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "totals",
		Short: "Show total income, total expense and balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withService(cmd, func(_ context.Context, svc *services.TransactionService) error {
				shell.RenderTotals(a.out, query.ComputeTotals(svc.Ledger()))
				return nil
			})
		},
	}
}

func (a *app) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every transaction in insertion order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withService(cmd, func(_ context.Context, svc *services.TransactionService) error {
				shell.RenderAll(a.out, query.AllFormatted(svc.Ledger()))
				return nil
			})
		},
	}
}

func (a *app) monthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "month MM YYYY",
		Short: "Summarize a month by category",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withService(cmd, func(_ context.Context, svc *services.TransactionService) error {
				month, err := core.ParseMonth(args[0])
				if err != nil {
					return usageError("month", err)
				}
				year, err := core.ParseYear(args[1])
				if err != nil {
					return usageError("year", err)
				}
				shell.RenderMonth(a.out, query.MonthOverview(svc.Ledger(), month, year))
				return nil
			})
		},
	}
}

func (a *app) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE.csv",
		Short: "Copy every readable row of a CSV ledger into the configured backend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withService(cmd, func(ctx context.Context, svc *services.TransactionService) error {
				src := csvfile.New(args[0], log.FromContext(ctx).WithComponent(log.ComponentStorage).Slog())
				report, err := svc.Import(ctx, src)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "✅ %d transacción(es) importada(s).\n", report.Imported)
				for _, rec := range report.Skipped {
					fmt.Fprintf(cmd.ErrOrStderr(), "⚠️ fila %d ignorada: %v\n", rec.Line, rec.Err)
				}
				return nil
			})
		},
	}
}
