package core

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	MinDay  = 1
	MaxDay  = 31
	MinYear = 2000
	MaxYear = 2100
)

// Reasons carried by ValidationError.
const (
	ReasonDigitsOnly     = "only digits are allowed"
	ReasonDayRange       = "day must be between 1 and 31"
	ReasonMonthRange     = "month must be between 1 and 12"
	ReasonYearRange      = "year must be between 2000 and 2100"
	ReasonDateFormat     = "date must look like DD/MM/YYYY"
	ReasonDateNotReal    = "date does not exist in the calendar"
	ReasonNotANumber     = "not a valid number"
	ReasonMustBePositive = "must be positive"
	ReasonEmpty          = "must not be empty"
	ReasonKind           = "must be 'ingreso' or 'gasto'"
)

// ValidationError reports raw input that cannot become a field value.
// Callers are expected to show Reason and ask again.
type ValidationError struct {
	Field  string
	Input  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %q: %s", e.Field, e.Input, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(field, input, reason string, err error) *ValidationError {
	return &ValidationError{Field: field, Input: input, Reason: reason, Err: err}
}

// IsValidationError reports whether err carries a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

var amountPattern = regexp.MustCompile(`^(\d+\.?\d*|\.\d+)$`)

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func parseRanged(field, s string, lo, hi int, rangeReason string, rangeErr error) (int, error) {
	s = strings.TrimSpace(s)
	if !isDigits(s) {
		return 0, invalid(field, s, ReasonDigitsOnly, rangeErr)
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < lo || n > hi {
		return 0, invalid(field, s, rangeReason, rangeErr)
	}
	return n, nil
}

// ParseDay is ValidateDay returning the integer.
func ParseDay(s string) (int, error) {
	return parseRanged("day", s, MinDay, MaxDay, ReasonDayRange, ErrInvalidDay)
}

// ParseMonth is ValidateMonth returning the integer.
func ParseMonth(s string) (int, error) {
	return parseRanged("month", s, 1, 12, ReasonMonthRange, ErrInvalidMonth)
}

// ParseYear is ValidateYear returning the integer.
func ParseYear(s string) (int, error) {
	return parseRanged("year", s, MinYear, MaxYear, ReasonYearRange, ErrInvalidYear)
}

// ValidateDay accepts 1..31 and returns it zero-padded ("05").
// It does not know the month, so 31 is always accepted.
func ValidateDay(s string) (string, error) {
	n, err := ParseDay(s)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%02d", n), nil
}

// ValidateMonth accepts 1..12 and returns it zero-padded.
func ValidateMonth(s string) (string, error) {
	n, err := ParseMonth(s)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%02d", n), nil
}

// ValidateYear accepts 2000..2100.
func ValidateYear(s string) (string, error) {
	n, err := ParseYear(s)
	if err != nil {
		return "", err
	}
	return strconv.Itoa(n), nil
}

// ValidateDate parses DD/MM/YYYY and rejects dates that do not exist.
func ValidateDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	d, err := ParseDate(s)
	if err != nil {
		if IsValidationError(err) {
			return Date{}, err
		}
		return Date{}, invalid("date", s, ReasonDateFormat, ErrInvalidDate)
	}
	if !d.IsReal() {
		return Date{}, invalid("date", s, ReasonDateNotReal, ErrInvalidDate)
	}
	return d, nil
}

// ValidateAmount accepts digits with at most one decimal point and a
// strictly positive value.
func ValidateAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if !amountPattern.MatchString(s) {
		return Money{}, invalid("amount", s, ReasonNotANumber, ErrInvalidAmount)
	}
	d, err := decimal.NewFromString(strings.TrimSuffix(s, "."))
	if err != nil {
		return Money{}, invalid("amount", s, ReasonNotANumber, ErrInvalidAmount)
	}
	m := Money{Decimal: d}
	if err := m.Validate(); err != nil {
		return Money{}, invalid("amount", s, ReasonMustBePositive, err)
	}
	return m, nil
}

// NormalizeText trims s and upper-cases its first rune. The rest of the
// string is left as typed. Empty input stays empty.
func NormalizeText(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

// ValidateText normalizes s and rejects empty results.
func ValidateText(field, s string) (string, error) {
	n := NormalizeText(s)
	if n == "" {
		return "", invalid(field, s, ReasonEmpty, nil)
	}
	return n, nil
}

// ValidateKind matches "ingreso" or "gasto" ignoring case.
func ValidateKind(s string) (Kind, error) {
	k, err := ParseKind(s)
	if err != nil {
		return "", invalid("kind", strings.TrimSpace(s), ReasonKind, err)
	}
	return k, nil
}
