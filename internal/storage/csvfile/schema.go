package csvfile

import (
	"fmt"
	"strings"

	"gastos/internal/core"
	"gastos/internal/storage"
)

// Column names as written in the header row.
const (
	ColKind        = "tipo"
	ColAmount      = "monto"
	ColCategory    = "categoria"
	ColDescription = "descripción"
	ColDate        = "fecha"
)

const (
	// SchemaV1 is the original layout, expenses only, no tipo column.
	SchemaV1 = 1
	// SchemaV2 is the canonical layout.
	SchemaV2 = 2
)

var (
	headerV1 = []string{ColAmount, ColCategory, ColDescription, ColDate}
	headerV2 = []string{ColKind, ColAmount, ColCategory, ColDescription, ColDate}
)

// Header returns the canonical header row.
func Header() []string {
	return append([]string(nil), headerV2...)
}

// schema maps column names to their position in a file's header.
type schema struct {
	version int
	index   map[string]int
	width   int
}

const utf8BOM = "\ufeff"

func normalizeColumn(name string) string {
	name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, utf8BOM)))
	if name == "descripcion" {
		return ColDescription
	}
	return name
}

// detectSchema reads the column set from a header row. Column order is
// free; the presence of tipo selects the version.
func detectSchema(header []string) (schema, error) {
	s := schema{index: make(map[string]int, len(header)), width: len(header)}
	for i, h := range header {
		s.index[normalizeColumn(h)] = i
	}
	for _, col := range headerV1 {
		if _, ok := s.index[col]; !ok {
			return schema{}, fmt.Errorf("%w: missing column %q in header %v", storage.ErrUnknownSchema, col, header)
		}
	}
	s.version = SchemaV1
	if _, ok := s.index[ColKind]; ok {
		s.version = SchemaV2
	}
	return s, nil
}

func canonicalSchema() schema {
	s, _ := detectSchema(headerV2)
	return s
}

func (s schema) field(row []string, col string) string {
	i, ok := s.index[col]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

// decode maps a data row to a transaction. Amount must parse and be
// positive, date must parse; text fields are taken as stored.
func (s schema) decode(line int, row []string) (core.Transaction, error) {
	if len(row) != s.width {
		return core.Transaction{}, &storage.RowError{
			Line:  line,
			Field: "*",
			Value: strings.Join(row, ","),
			Err:   fmt.Errorf("expected %d columns, got %d", s.width, len(row)),
		}
	}

	kind := core.Expense
	if s.version >= SchemaV2 {
		raw := s.field(row, ColKind)
		k, err := core.ParseKind(raw)
		if err != nil {
			return core.Transaction{}, &storage.RowError{Line: line, Field: ColKind, Value: raw, Err: err}
		}
		kind = k
	}

	rawAmount := strings.TrimSpace(s.field(row, ColAmount))
	amount, err := core.ParseMoney(rawAmount)
	if err == nil {
		err = amount.Validate()
	}
	if err != nil {
		return core.Transaction{}, &storage.RowError{Line: line, Field: ColAmount, Value: rawAmount, Err: err}
	}

	rawDate := s.field(row, ColDate)
	date, err := core.ParseDate(rawDate)
	if err != nil {
		return core.Transaction{}, &storage.RowError{Line: line, Field: ColDate, Value: rawDate, Err: err}
	}

	return core.Transaction{
		Kind:        kind,
		Amount:      amount,
		Category:    s.field(row, ColCategory),
		Description: s.field(row, ColDescription),
		Date:        date,
	}, nil
}

// encode lays the transaction out following the header's column order.
func (s schema) encode(t core.Transaction) []string {
	row := make([]string, s.width)
	set := func(col, v string) {
		if i, ok := s.index[col]; ok {
			row[i] = v
		}
	}
	set(ColKind, t.Kind.String())
	set(ColAmount, t.Amount.Storage())
	set(ColCategory, t.Category)
	set(ColDescription, t.Description)
	set(ColDate, t.Date.String())
	return row
}
