package csvfile

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gastos/internal/core"
	"gastos/internal/storage"
)

func mustTx(t *testing.T, kind core.Kind, amount float64, category, desc string, date core.Date) core.Transaction {
	t.Helper()
	tx, err := core.NewTransaction(kind, core.NewMoney(amount), category, desc, date)
	require.NoError(t, err)
	return tx
}

func TestReadAll_MissingFileIsEmpty(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "nope.csv"), nil)
	records, err := s.ReadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestAppend_WritesHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gastos.csv")
	s := New(path, nil)
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, mustTx(t, core.Expense, 250, "Almacén", "Pan", core.NewDate(2025, 6, 5))))
	require.NoError(t, s.Append(ctx, mustTx(t, core.Income, 1000, "", "Sueldo", core.NewDate(2025, 6, 5))))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(raw), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "tipo,monto,categoria,descripción,fecha", lines[0])
	assert.Equal(t, "gasto,250,Almacén,Pan,05/06/2025", lines[1])
	assert.Equal(t, "ingreso,1000,Ingreso,Sueldo,05/06/2025", lines[2])
}

func TestAppend_EmptyExistingFileGetsHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gastos.csv")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	s := New(path, nil)
	require.NoError(t, s.Append(context.Background(), mustTx(t, core.Expense, 1.5, "Otra", "Chicle", core.NewDate(2025, 1, 2))))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "tipo,monto"))
}

func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gastos.csv")
	s := New(path, nil)
	ctx := context.Background()

	want := []core.Transaction{
		mustTx(t, core.Expense, 250, "Almacén", "Pan", core.NewDate(2025, 6, 5)),
		mustTx(t, core.Income, 1000, "", "Sueldo", core.NewDate(2025, 6, 5)),
		mustTx(t, core.Expense, 0.1, "Transporte", "Colectivo, ida y vuelta", core.NewDate(2025, 6, 6)),
		mustTx(t, core.Expense, 1234.56, "Verdulería", `Fruta "fresca"`, core.NewDate(2024, 2, 29)),
	}
	for _, tx := range want {
		require.NoError(t, s.Append(ctx, tx))
	}

	records, err := New(path, nil).ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, len(want))
	for i, rec := range records {
		require.NoError(t, rec.Err)
		got := rec.Transaction
		assert.Equal(t, want[i].Kind, got.Kind)
		assert.InDelta(t, want[i].Amount.Float64(), got.Amount.Float64(), 1e-9)
		assert.Equal(t, want[i].Category, got.Category)
		assert.Equal(t, want[i].Description, got.Description)
		assert.Equal(t, want[i].Date, got.Date)
	}
	assert.Equal(t, 2, records[0].Line)
}

func TestReadAll_LegacySchemaDefaultsToExpense(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gastos.csv")
	legacy := "monto,categoria,descripción,fecha\n250.0,Almacén,Pan,05/06/2025\n80.5,Transporte,Colectivo,31/02/2025\n"
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))

	records, err := New(path, nil).ReadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	for _, rec := range records {
		require.NoError(t, rec.Err)
		assert.Equal(t, core.Expense, rec.Transaction.Kind)
	}
	assert.Equal(t, "250.00", records[0].Transaction.Amount.Display())
	assert.Equal(t, "31/02/2025", records[1].Transaction.Date.String())
}

func TestReadAll_ReportsMalformedRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gastos.csv")
	content := strings.Join([]string{
		"tipo,monto,categoria,descripción,fecha",
		"gasto,abc,Almacén,Pan,05/06/2025",
		"gasto,10,Almacén,Leche,05/06/2025",
		"ahorro,10,Almacén,Leche,05/06/2025",
		"gasto,10,Almacén,Leche,2025-06-05",
		"gasto,10,Almacén",
	}, "\n") + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	records, err := New(path, nil).ReadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 5)

	var rowErr *storage.RowError
	require.ErrorAs(t, records[0].Err, &rowErr)
	assert.Equal(t, ColAmount, rowErr.Field)
	assert.Equal(t, 2, rowErr.Line)

	assert.NoError(t, records[1].Err)

	require.ErrorAs(t, records[2].Err, &rowErr)
	assert.Equal(t, ColKind, rowErr.Field)

	require.ErrorAs(t, records[3].Err, &rowErr)
	assert.Equal(t, ColDate, rowErr.Field)

	assert.Error(t, records[4].Err)
}

func TestReadAll_RejectsNonPositiveAmounts(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"current schema", "tipo,monto,categoria,descripción,fecha\n" +
			"gasto,-5,Almacén,Pan,05/06/2025\n" +
			"gasto,0,Almacén,Pan,05/06/2025\n" +
			"gasto,10,Almacén,Pan,05/06/2025\n"},
		{"legacy schema", "monto,categoria,descripción,fecha\n" +
			"-5.0,Almacén,Pan,05/06/2025\n" +
			"0.0,Almacén,Pan,05/06/2025\n" +
			"10.0,Almacén,Pan,05/06/2025\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "gastos.csv")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			records, err := New(path, nil).ReadAll(context.Background())
			require.NoError(t, err)
			require.Len(t, records, 3)

			for i, line := range []int{2, 3} {
				var rowErr *storage.RowError
				require.ErrorAs(t, records[i].Err, &rowErr)
				assert.Equal(t, ColAmount, rowErr.Field)
				assert.Equal(t, line, rowErr.Line)
				assert.ErrorIs(t, records[i].Err, core.ErrInvalidAmount)
			}
			require.NoError(t, records[2].Err)
			assert.Equal(t, "10.00", records[2].Transaction.Amount.Display())
		})
	}
}

func TestReadAll_UnknownHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gastos.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b,c\n1,2,3\n"), 0o644))

	_, err := New(path, nil).ReadAll(context.Background())
	assert.ErrorIs(t, err, storage.ErrUnknownSchema)
}

func TestReadAll_HeaderWithBOMAndReorderedColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gastos.csv")
	content := "\ufefffecha,descripcion,monto,categoria,tipo\n05/06/2025,Sueldo,1000,Ingreso,INGRESO\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	s := New(path, nil)
	records, err := s.ReadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.NoError(t, records[0].Err)
	assert.Equal(t, core.Income, records[0].Transaction.Kind)
	assert.Equal(t, "Sueldo", records[0].Transaction.Description)

	// New rows follow the existing column order.
	require.NoError(t, s.Append(context.Background(), mustTx(t, core.Expense, 5, "Kiosco", "Agua", core.NewDate(2025, 6, 6))))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "06/06/2025,Agua,5,Kiosco,gasto\n")
}

func TestAppend_UpgradesLegacyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gastos.csv")
	legacy := "monto,categoria,descripción,fecha\n250.0,Almacén,Pan,05/06/2025\n"
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))

	s := New(path, nil)
	require.NoError(t, s.Append(context.Background(), mustTx(t, core.Income, 1000, "", "Sueldo", core.NewDate(2025, 6, 5))))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"tipo,monto,categoria,descripción,fecha\n"+
			"gasto,250.0,Almacén,Pan,05/06/2025\n"+
			"ingreso,1000,Ingreso,Sueldo,05/06/2025\n",
		string(raw))

	records, err := s.ReadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, core.Expense, records[0].Transaction.Kind)
	assert.Equal(t, core.Income, records[1].Transaction.Kind)
}

func TestAppend_AddsMissingTrailingNewline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gastos.csv")
	require.NoError(t, os.WriteFile(path, []byte("tipo,monto,categoria,descripción,fecha\ngasto,1,A,B,01/01/2025"), 0o644))

	s := New(path, nil)
	require.NoError(t, s.Append(context.Background(), mustTx(t, core.Expense, 2, "C", "D", core.NewDate(2025, 1, 2))))

	records, err := s.ReadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.NoError(t, records[0].Err)
	assert.NoError(t, records[1].Err)
}
