// Package query filters and aggregates ledger transactions. Every function
// reads a snapshot from its Source and never modifies it.
package query

import (
	"fmt"
	"strings"

	"gastos/internal/core"
)

// Source is anything that can hand out the ledger's transactions in order.
type Source interface {
	All() []core.Transaction
}

// Result is a filtered subset and the plain sum of its amounts.
// Income and expense both add positively to Subtotal.
type Result struct {
	Matches  []core.Transaction
	Subtotal core.Money
}

func (r Result) Empty() bool {
	return len(r.Matches) == 0
}

// Totals nets income against expense over the whole ledger.
type Totals struct {
	Income  core.Money
	Expense core.Money
	Balance core.Money
}

// UsageError reports a query token that makes no sense, such as an unknown
// kind. It is returned before any data is read.
type UsageError struct {
	Token  string
	Reason string
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("invalid query %q: %s", e.Token, e.Reason)
}

func filter(src Source, keep func(core.Transaction) bool) Result {
	res := Result{Subtotal: core.Zero}
	for _, t := range src.All() {
		if keep(t) {
			res.Matches = append(res.Matches, t)
			res.Subtotal = res.Subtotal.Add(t.Amount)
		}
	}
	return res
}

// ByDate returns the transactions recorded on date.
func ByDate(src Source, date core.Date) Result {
	return filter(src, func(t core.Transaction) bool {
		return t.Date == date
	})
}

// ByCategory normalizes category the same way input is normalized and
// compares exactly. Accents are significant.
func ByCategory(src Source, category string) Result {
	want := core.NormalizeText(category)
	return filter(src, func(t core.Transaction) bool {
		return t.Category == want
	})
}

// ByKind filters on "ingreso" or "gasto".
func ByKind(src Source, token string) (Result, error) {
	kind, err := core.ParseKind(token)
	if err != nil {
		return Result{}, &UsageError{Token: strings.TrimSpace(token), Reason: "kind must be 'ingreso' or 'gasto'"}
	}
	return filter(src, func(t core.Transaction) bool {
		return t.Kind == kind
	}), nil
}

// ByMonth returns the transactions of a calendar month.
func ByMonth(src Source, month, year int) Result {
	return filter(src, func(t core.Transaction) bool {
		return t.Date.Month == month && t.Date.Year == year
	})
}

// ComputeTotals sums income and expense separately and derives the balance.
func ComputeTotals(src Source) Totals {
	tot := Totals{Income: core.Zero, Expense: core.Zero}
	for _, t := range src.All() {
		switch t.Kind {
		case core.Income:
			tot.Income = tot.Income.Add(t.Amount)
		case core.Expense:
			tot.Expense = tot.Expense.Add(t.Amount)
		}
	}
	tot.Balance = tot.Income.Sub(tot.Expense)
	return tot
}

// CategoryBreakdown returns one subtotal per category in first-seen order.
func CategoryBreakdown(src Source) []core.CategoryAmount {
	var out []core.CategoryAmount
	pos := map[string]int{}
	for _, t := range src.All() {
		i, ok := pos[t.Category]
		if !ok {
			i = len(out)
			pos[t.Category] = i
			out = append(out, core.CategoryAmount{Name: t.Category, Amount: core.Zero})
		}
		out[i].Amount = out[i].Amount.Add(t.Amount)
		out[i].Count++
	}
	return out
}

// MonthOverview combines ByMonth and CategoryBreakdown for one month.
func MonthOverview(src Source, month, year int) core.MonthOverview {
	res := ByMonth(src, month, year)
	return core.MonthOverview{
		Year:       year,
		Month:      month,
		Total:      res.Subtotal,
		ByCategory: CategoryBreakdown(snapshot(res.Matches)),
	}
}

type snapshot []core.Transaction

func (s snapshot) All() []core.Transaction { return s }

// Describe renders every field of t in a fixed order.
func Describe(t core.Transaction) string {
	return fmt.Sprintf("tipo: %s, monto: %s, categoria: %s, descripción: %s, fecha: %s",
		t.Kind, t.Amount.Display(), t.Category, t.Description, t.Date)
}

// AllFormatted returns one line per transaction, numbered from 1.
func AllFormatted(src Source) []string {
	all := src.All()
	lines := make([]string, len(all))
	for i, t := range all {
		lines[i] = fmt.Sprintf("Transacción %d: %s", i+1, Describe(t))
	}
	return lines
}
