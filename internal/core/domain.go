package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Income  Kind = "ingreso"
	Expense Kind = "gasto"
)

// IncomeCategory is the fixed category stored for every income.
const IncomeCategory = "Ingreso"

type (
	Kind string

	// Date is a calendar date kept as its three components so that loosely
	// validated dates (e.g. 31/02) can still be stored and compared.
	Date struct {
		Day   int
		Month int
		Year  int
	}

	Transaction struct {
		Kind        Kind
		Amount      Money
		Category    string
		Description string
		Date        Date
	}
)

var (
	ErrInvalidKind        = errors.New("invalid transaction kind")
	ErrInvalidDay         = errors.New("invalid day")
	ErrInvalidMonth       = errors.New("invalid month")
	ErrInvalidYear        = errors.New("invalid year")
	ErrInvalidDate        = errors.New("invalid date")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrEmptyDescription   = errors.New("empty description")
	ErrEmptyCategory      = errors.New("empty category")
	ErrIncomeCategoryOnly = errors.New("income category must be " + IncomeCategory)
)

// ParseKind matches s case-insensitively against the known kind tokens.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case Income:
		return Income, nil
	case Expense:
		return Expense, nil
	}
	return "", ErrInvalidKind
}

func (k Kind) IsValid() bool {
	return k == Income || k == Expense
}

// Label returns the capitalized display form ("Ingreso", "Gasto").
func (k Kind) Label() string {
	return NormalizeText(string(k))
}

func (k Kind) String() string {
	return string(k)
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Day: day, Month: month, Year: year}
}

// ParseDate reads a DD/MM/YYYY string checking each component range only.
// Use IsReal to additionally reject impossible dates such as 31/02.
func ParseDate(s string) (Date, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 3 {
		return Date{}, ErrInvalidDate
	}
	day, err := ParseDay(parts[0])
	if err != nil {
		return Date{}, err
	}
	month, err := ParseMonth(parts[1])
	if err != nil {
		return Date{}, err
	}
	year, err := ParseYear(parts[2])
	if err != nil {
		return Date{}, err
	}
	return NewDate(year, month, day), nil
}

// Validate checks the component ranges.
func (d Date) Validate() error {
	if d.Day < MinDay || d.Day > MaxDay {
		return ErrInvalidDay
	}
	if d.Month < 1 || d.Month > 12 {
		return ErrInvalidMonth
	}
	if d.Year < MinYear || d.Year > MaxYear {
		return ErrInvalidYear
	}
	return nil
}

// IsReal reports whether d denotes an existing calendar day.
func (d Date) IsReal() bool {
	if d.Validate() != nil {
		return false
	}
	t := time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
	return t.Day() == d.Day && int(t.Month()) == d.Month && t.Year() == d.Year
}

// String renders the date as DD/MM/YYYY.
func (d Date) String() string {
	return fmt.Sprintf("%02d/%02d/%04d", d.Day, d.Month, d.Year)
}

// NewTransaction normalizes the free-text fields and validates the result.
// For incomes the category argument is ignored.
func NewTransaction(kind Kind, amount Money, category, description string, date Date) (Transaction, error) {
	t := Transaction{
		Kind:        kind,
		Amount:      amount,
		Category:    NormalizeText(category),
		Description: NormalizeText(description),
		Date:        date,
	}
	if kind == Income {
		t.Category = IncomeCategory
	}
	if err := t.Validate(); err != nil {
		return Transaction{}, err
	}
	return t, nil
}

func (t Transaction) Validate() error {
	if !t.Kind.IsValid() {
		return ErrInvalidKind
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Description) == "" {
		return ErrEmptyDescription
	}
	if t.Kind == Income && t.Category != IncomeCategory {
		return ErrIncomeCategoryOnly
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}
