package shell

import (
	"fmt"
	"io"

	"gastos/internal/core"
	"gastos/internal/query"
)

const rule = "------------------------"

func money(m core.Money) string {
	return "$" + m.Display()
}

func renderMenu(w io.Writer) {
	fmt.Fprintln(w, "\n--------- MENÚ ---------")
	fmt.Fprintln(w)
	for i, item := range menuItems {
		fmt.Fprintf(w, "%d. %s\n", i+1, item.label)
	}
}

func RenderByDate(w io.Writer, date core.Date, res query.Result) {
	if res.Empty() {
		fmt.Fprintln(w, "\n❌ No hay registros para esa fecha.")
		return
	}
	fmt.Fprintf(w, "\n📅 Fecha: %s\n\n", date)
	for _, t := range res.Matches {
		fmt.Fprintf(w, "%s | Monto: %s | Categoría: %s | Descripción: %s\n",
			t.Kind.Label(), money(t.Amount), t.Category, t.Description)
	}
	fmt.Fprintf(w, "\n🔸 Total en esa fecha: %s\n", money(res.Subtotal))
}

func RenderByCategory(w io.Writer, category string, res query.Result) {
	if res.Empty() {
		fmt.Fprintln(w, "\n❌ No hay registros para esa categoría.")
		return
	}
	fmt.Fprintln(w)
	for _, t := range res.Matches {
		fmt.Fprintf(w, "📌 Categoría: %s | Monto: %s | Descripción: %s | Fecha: %s\n",
			t.Category, money(t.Amount), t.Description, t.Date)
	}
	fmt.Fprintf(w, "\n🔸 Total en '%s': %s\n", category, money(res.Subtotal))
}

func RenderByKind(w io.Writer, kind string, res query.Result) {
	if res.Empty() {
		fmt.Fprintln(w, "\n❌ No hay registros de ese tipo.")
		return
	}
	fmt.Fprintln(w)
	for _, t := range res.Matches {
		fmt.Fprintf(w, "📌 %s | Monto: %s | Categoría: %s | Descripción: %s | Fecha: %s\n",
			t.Kind.Label(), money(t.Amount), t.Category, t.Description, t.Date)
	}
	fmt.Fprintf(w, "\n🔸 Total de %s: %s\n", kind, money(res.Subtotal))
}

func RenderTotals(w io.Writer, tot query.Totals) {
	fmt.Fprintln(w, "\n--------- TOTAL --------")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "💰 Ingresos: %s\n", money(tot.Income))
	fmt.Fprintf(w, "💵 Gastos: %s\n", money(tot.Expense))
	fmt.Fprintf(w, "📊 Balance: %s\n", money(tot.Balance))
}

func RenderAll(w io.Writer, lines []string) {
	fmt.Fprintln(w, "\n-- 💵 TODAS LAS TRANSACCIONES ---")
	fmt.Fprintln(w)
	if len(lines) == 0 {
		fmt.Fprintln(w, "❌ No hay transacciones cargadas.")
		return
	}
	for _, l := range lines {
		fmt.Fprintln(w, l)
	}
}

// RenderMonth prints a month total followed by per-category subtotals.
func RenderMonth(w io.Writer, ov core.MonthOverview) {
	fmt.Fprintf(w, "\n--- MES %02d/%04d ---\n\n", ov.Month, ov.Year)
	if len(ov.ByCategory) == 0 {
		fmt.Fprintln(w, "❌ No hay registros para ese mes.")
		return
	}
	for _, c := range ov.ByCategory {
		fmt.Fprintf(w, "📌 %s: %s (%d)\n", c.Name, money(c.Amount), c.Count)
	}
	fmt.Fprintf(w, "\n🔸 Total del mes: %s\n", money(ov.Total))
}
