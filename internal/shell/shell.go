// Package shell runs the interactive menu over a TransactionService.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gastos/internal/core"
	"gastos/internal/ledger"
	"gastos/internal/log"
	"gastos/internal/query"
	"gastos/internal/services"
)

type menuItem struct {
	name   string
	label  string
	action func(s *Shell, ctx context.Context) error
}

// errExit ends the loop from the exit menu item.
var errExit = errors.New("exit")

var menuItems = []menuItem{
	{"add", "Agregar transacción", (*Shell).add},
	{"by-date", "Ver transacciones por fecha", (*Shell).byDate},
	{"by-category", "Ver transacciones por categoría", (*Shell).byCategory},
	{"totals", "Ver totales", (*Shell).totals},
	{"list", "Ver todas las transacciones", (*Shell).listAll},
	{"by-kind", "Filtrar por tipo", (*Shell).byKind},
	{"exit", "Salir", func(*Shell, context.Context) error { return errExit }},
}

var datePrompts = map[string]string{
	"date":  "Fecha (DD/MM/AAAA): ",
	"day":   "Día (1-31): ",
	"month": "Mes (1-12): ",
	"year":  "Año (ej: 2025): ",
}

type Shell struct {
	svc    *services.TransactionService
	prompt *Prompter
	out    io.Writer
	dates  core.DateStrategy
	logger *log.Logger
}

// New builds a shell reading answers from in and writing to out. A nil
// dates strategy means strict DD/MM/YYYY input.
func New(svc *services.TransactionService, in io.Reader, out io.Writer, dates core.DateStrategy, logger *log.Logger) *Shell {
	if dates == nil {
		dates = core.StrictDate{}
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Shell{
		svc:    svc,
		prompt: NewPrompter(in, out),
		out:    out,
		dates:  dates,
		logger: logger.WithComponent(log.ComponentShell),
	}
}

// Run shows the menu until the user exits, the input ends or ctx is done.
func (s *Shell) Run(ctx context.Context) error {
	fmt.Fprintln(s.out, "Bienvenido/a al gestor de gastos e ingresos 📈")

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		renderMenu(s.out)
		choice, err := s.prompt.Line(ctx, fmt.Sprintf("\nElegí una opción (1-%d): ", len(menuItems)))
		if err != nil {
			return s.finish(err)
		}

		item, ok := parseChoice(choice)
		if !ok {
			s.logger.DebugContext(ctx, "Invalid menu choice", "choice", choice)
			fmt.Fprintf(s.out, "\n❌ Opción inválida. Elegí un número del 1 al %d.\n", len(menuItems))
			continue
		}

		fmt.Fprintln(s.out, "\n"+rule)
		actx, done := s.logger.StartAction(ctx, item.name)
		err = item.action(s, actx)
		if isExit(err) {
			done(nil)
		} else {
			done(err)
		}
		if err != nil {
			return s.finish(err)
		}
	}
}

// isExit reports whether err ends the session normally: the exit item,
// end of input or an interrupt.
func isExit(err error) bool {
	return errors.Is(err, errExit) || errors.Is(err, ErrInputClosed) ||
		errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func (s *Shell) finish(err error) error {
	if isExit(err) {
		fmt.Fprintln(s.out, "\n"+rule)
		fmt.Fprintln(s.out, "👋¡Hasta luego!")
		return nil
	}
	return err
}

func parseChoice(raw string) (menuItem, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 || n > len(menuItems) {
		return menuItem{}, false
	}
	return menuItems[n-1], true
}

func (s *Shell) askDate(ctx context.Context) (core.Date, error) {
	for {
		parts := s.dates.Parts()
		values := make([]string, len(parts))
		for i, part := range parts {
			v, err := Ask(ctx, s.prompt, datePrompts[part.Field], part.Validate)
			if err != nil {
				return core.Date{}, err
			}
			values[i] = v
		}
		d, err := s.dates.Build(values)
		if err == nil {
			return d, nil
		}
		fmt.Fprintf(s.out, "⚠️ %s\n", reason(err))
	}
}

func (s *Shell) add(ctx context.Context) error {
	kind, err := Ask(ctx, s.prompt, "Tipo (ingreso/gasto): ", core.ValidateKind)
	if err != nil {
		return err
	}
	amount, err := Ask(ctx, s.prompt, "Monto en pesos argentinos: ", core.ValidateAmount)
	if err != nil {
		return err
	}

	category := core.IncomeCategory
	if kind == core.Expense {
		category, err = Ask(ctx, s.prompt, "Categoría (ej: Verdulería, Almacén, Transporte, Otra): ", func(raw string) (string, error) {
			return core.ValidateText("category", raw)
		})
		if err != nil {
			return err
		}
	}

	description, err := Ask(ctx, s.prompt, "Descripción (ej: Colectivo, Fruta, Sueldo): ", func(raw string) (string, error) {
		return core.ValidateText("description", raw)
	})
	if err != nil {
		return err
	}

	date, err := s.askDate(ctx)
	if err != nil {
		return err
	}

	if _, err := s.svc.Add(ctx, kind, amount, category, description, date); err != nil {
		if ledger.IsPersistenceError(err) {
			fmt.Fprintf(s.out, "\n❌ No se pudo guardar la transacción: %v\n", err)
			return nil
		}
		fmt.Fprintf(s.out, "\n❌ Transacción inválida: %v\n", err)
		return nil
	}

	fmt.Fprintf(s.out, "\n✅ %s agregado correctamente.\n", kind.Label())
	return nil
}

func (s *Shell) byDate(ctx context.Context) error {
	fmt.Fprintln(s.out, "\n--- TRANSACCIONES POR FECHA ---")
	date, err := s.askDate(ctx)
	if err != nil {
		return err
	}
	RenderByDate(s.out, date, query.ByDate(s.svc.Ledger(), date))
	return nil
}

func (s *Shell) byCategory(ctx context.Context) error {
	fmt.Fprintln(s.out, "\n--- TRANSACCIONES POR CATEGORÍA ---")
	category, err := Ask(ctx, s.prompt, "¿Qué categoría querés consultar? ", func(raw string) (string, error) {
		return core.ValidateText("category", raw)
	})
	if err != nil {
		return err
	}
	RenderByCategory(s.out, category, query.ByCategory(s.svc.Ledger(), category))
	return nil
}

func (s *Shell) byKind(ctx context.Context) error {
	token, err := s.prompt.Line(ctx, "¿Qué tipo querés ver? (ingreso/gasto): ")
	if err != nil {
		return err
	}
	res, err := query.ByKind(s.svc.Ledger(), token)
	if err != nil {
		s.logger.DebugContext(ctx, "Rejected kind filter", log.FieldError, err)
		fmt.Fprintln(s.out, "\n❌ Tipo inválido. Usá 'ingreso' o 'gasto'.")
		return nil
	}
	RenderByKind(s.out, strings.ToLower(strings.TrimSpace(token)), res)
	return nil
}

func (s *Shell) totals(_ context.Context) error {
	RenderTotals(s.out, query.ComputeTotals(s.svc.Ledger()))
	return nil
}

func (s *Shell) listAll(_ context.Context) error {
	RenderAll(s.out, query.AllFormatted(s.svc.Ledger()))
	return nil
}
