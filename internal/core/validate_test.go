package core

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDay(t *testing.T) {
	for i := 1; i <= 31; i++ {
		got, err := ValidateDay(fmt.Sprint(i))
		require.NoError(t, err)
		assert.Len(t, got, 2)
		assert.Equal(t, fmt.Sprintf("%02d", i), got)
	}

	for _, in := range []string{"0", "32", "abc", "1.5", "", "-1", "+3"} {
		_, err := ValidateDay(in)
		assert.Error(t, err, "input %q", in)
		assert.True(t, IsValidationError(err), "input %q", in)
	}
}

func TestValidateDay_TrimsInput(t *testing.T) {
	got, err := ValidateDay(" 7 ")
	require.NoError(t, err)
	assert.Equal(t, "07", got)
}

func TestValidateMonth(t *testing.T) {
	got, err := ValidateMonth("2")
	require.NoError(t, err)
	assert.Equal(t, "02", got)

	for _, in := range []string{"0", "13", "feb"} {
		_, err := ValidateMonth(in)
		assert.ErrorIs(t, err, ErrInvalidMonth, "input %q", in)
	}
}

func TestValidateYear(t *testing.T) {
	got, err := ValidateYear("2025")
	require.NoError(t, err)
	assert.Equal(t, "2025", got)

	for _, in := range []string{"1999", "2101", "25x"} {
		_, err := ValidateYear(in)
		assert.ErrorIs(t, err, ErrInvalidYear, "input %q", in)
	}
}

func TestValidateDate(t *testing.T) {
	d, err := ValidateDate("5/6/2025")
	require.NoError(t, err)
	assert.Equal(t, "05/06/2025", d.String())

	_, err = ValidateDate("29/02/2024")
	assert.NoError(t, err)

	tests := []struct {
		in     string
		reason string
	}{
		{"31/02/2025", ReasonDateNotReal},
		{"31/04/2025", ReasonDateNotReal},
		{"05-06-2025", ReasonDateFormat},
		{"05/06", ReasonDateFormat},
		{"32/01/2025", ReasonDayRange},
		{"01/01/1999", ReasonYearRange},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			_, err := ValidateDate(tt.in)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.reason, ve.Reason)
		})
	}
}

// The component validators know nothing about each other: a date rejected
// by ValidateDate can be assembled from three accepted parts.
func TestSplitComponentsAcceptImpossibleDate(t *testing.T) {
	_, err := ValidateDate("31/02/2025")
	require.Error(t, err)

	day, err := ValidateDay("31")
	require.NoError(t, err)
	month, err := ValidateMonth("02")
	require.NoError(t, err)
	year, err := ValidateYear("2025")
	require.NoError(t, err)
	assert.Equal(t, "31/02/2025", day+"/"+month+"/"+year)
}

func TestValidateAmount(t *testing.T) {
	valid := map[string]float64{
		"1":       1,
		"250":     250,
		"250.0":   250,
		"1234.56": 1234.56,
		"0.01":    0.01,
		".5":      0.5,
		"5.":      5,
		" 12.30 ": 12.3,
	}
	for in, want := range valid {
		got, err := ValidateAmount(in)
		require.NoError(t, err, "input %q", in)
		assert.InDelta(t, want, got.Float64(), 1e-9, "input %q", in)
	}

	invalid := map[string]string{
		"12.3.4": ReasonNotANumber,
		"12..3":  ReasonNotANumber,
		"-5":     ReasonNotANumber,
		"abc":    ReasonNotANumber,
		"":       ReasonNotANumber,
		".":      ReasonNotANumber,
		"1,5":    ReasonNotANumber,
		"0":      ReasonMustBePositive,
		"0.00":   ReasonMustBePositive,
	}
	for in, reason := range invalid {
		_, err := ValidateAmount(in)
		var ve *ValidationError
		require.ErrorAs(t, err, &ve, "input %q", in)
		assert.Equal(t, reason, ve.Reason, "input %q", in)
		assert.ErrorIs(t, err, ErrInvalidAmount, "input %q", in)
	}
}

func TestValidateAmount_ExactValue(t *testing.T) {
	got, err := ValidateAmount("0.1")
	require.NoError(t, err)
	assert.Equal(t, "0.1", got.Storage())
}

func TestNormalizeText(t *testing.T) {
	tests := map[string]string{
		"  verdulería ": "Verdulería",
		"almacén":       "Almacén",
		"ÑANDÚ":         "ÑANDÚ",
		"pan de MIGA":   "Pan de MIGA",
		"":              "",
		"   ":           "",
		"élite":         "Élite",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeText(in), "input %q", in)
	}
}

func TestValidateText(t *testing.T) {
	got, err := ValidateText("category", " transporte")
	require.NoError(t, err)
	assert.Equal(t, "Transporte", got)

	_, err = ValidateText("category", "   ")
	assert.True(t, IsValidationError(err))
}

func TestValidateKind(t *testing.T) {
	k, err := ValidateKind("GASTO")
	require.NoError(t, err)
	assert.Equal(t, Expense, k)

	_, err = ValidateKind("ahorro")
	assert.ErrorIs(t, err, ErrInvalidKind)
}
