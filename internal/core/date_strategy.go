package core

import (
	"fmt"
	"strings"
)

// DatePart is one raw answer a DateStrategy needs, with its own validator
// so that a prompt can retry that part alone.
type DatePart struct {
	Field    string
	Validate func(string) (string, error)
}

// DateStrategy turns raw answers into a Date.
type DateStrategy interface {
	Name() string
	Parts() []DatePart
	Build(values []string) (Date, error)
}

// StrictDate asks for one DD/MM/YYYY string and requires a real date.
type StrictDate struct{}

// SplitDate asks for day, month and year separately and checks each range
// on its own; 31/02/2025 is accepted.
type SplitDate struct{}

const (
	StrictDateName = "strict"
	SplitDateName  = "split"
)

// DateStrategyByName returns the strategy for a config value.
func DateStrategyByName(name string) (DateStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", StrictDateName:
		return StrictDate{}, nil
	case SplitDateName:
		return SplitDate{}, nil
	}
	return nil, fmt.Errorf("unknown date input strategy %q", name)
}

func (StrictDate) Name() string { return StrictDateName }

func (StrictDate) Parts() []DatePart {
	return []DatePart{{
		Field: "date",
		Validate: func(s string) (string, error) {
			d, err := ValidateDate(s)
			if err != nil {
				return "", err
			}
			return d.String(), nil
		},
	}}
}

func (StrictDate) Build(values []string) (Date, error) {
	if len(values) != 1 {
		return Date{}, ErrInvalidDate
	}
	return ValidateDate(values[0])
}

func (SplitDate) Name() string { return SplitDateName }

func (SplitDate) Parts() []DatePart {
	return []DatePart{
		{Field: "day", Validate: ValidateDay},
		{Field: "month", Validate: ValidateMonth},
		{Field: "year", Validate: ValidateYear},
	}
}

func (SplitDate) Build(values []string) (Date, error) {
	if len(values) != 3 {
		return Date{}, ErrInvalidDate
	}
	return ParseDate(strings.Join(values, "/"))
}
