// Package csvfile persists the ledger as a delimited text file with a
// header row. The file is opened and closed on every operation.
package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gastos/internal/core"
	"gastos/internal/storage"
)

type Store struct {
	path   string
	logger *slog.Logger
}

var _ storage.Store = (*Store)(nil)

func New(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{path: path, logger: logger}
}

// ReadAll implements storage.TransactionReader.
func (s *Store) ReadAll(ctx context.Context) ([]storage.Record, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.logger.DebugContext(ctx, "Ledger file not found, starting empty", "path", s.path)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open ledger file: %w", err)
	}
	defer f.Close()

	r := newReader(f)
	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	sc, err := detectSchema(header)
	if err != nil {
		return nil, err
	}

	var records []storage.Record
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				records = append(records, storage.Record{Line: pe.Line, Err: err})
				continue
			}
			return nil, fmt.Errorf("read row: %w", err)
		}
		line, _ := r.FieldPos(0)
		t, err := sc.decode(line, row)
		records = append(records, storage.Record{Line: line, Transaction: t, Err: err})
	}

	s.logger.DebugContext(ctx, "Ledger file read",
		"path", s.path,
		"schema_version", sc.version,
		"rows", len(records))

	return records, nil
}

// Append implements storage.TransactionWriter. The header is written only
// when the file is new or empty. Files in the v1 layout are upgraded first.
func (s *Store) Append(ctx context.Context, t core.Transaction) error {
	if dir := filepath.Dir(s.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create ledger directory: %w", err)
		}
	}

	sc, err := s.currentSchema()
	if err != nil {
		return err
	}
	if sc != nil && sc.version < SchemaV2 {
		if err := s.upgrade(ctx, *sc); err != nil {
			return fmt.Errorf("upgrade ledger file: %w", err)
		}
		up := canonicalSchema()
		sc = &up
	}

	f, err := os.OpenFile(s.path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open ledger file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if sc == nil {
		if err := w.Write(Header()); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
		c := canonicalSchema()
		sc = &c
	} else if err := ensureTrailingNewline(f); err != nil {
		return err
	}
	if err := w.Write(sc.encode(t)); err != nil {
		return fmt.Errorf("write row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush row: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync ledger file: %w", err)
	}
	return f.Close()
}

// currentSchema returns nil when the file is missing or empty.
func (s *Store) currentSchema() (*schema, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open ledger file: %w", err)
	}
	defer f.Close()

	header, err := newReader(f).Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	sc, err := detectSchema(header)
	if err != nil {
		return nil, err
	}
	return &sc, nil
}

// upgrade rewrites a v1 file in the canonical layout, tagging every
// existing row as an expense. Rows that do not fit the old header are
// carried over untouched apart from the added tipo cell.
func (s *Store) upgrade(ctx context.Context, old schema) error {
	src, err := os.Open(s.path)
	if err != nil {
		return err
	}
	defer src.Close()

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".gastos-upgrade-*.csv")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	r := newReader(src)
	if _, err := r.Read(); err != nil {
		return err
	}
	w := csv.NewWriter(tmp)
	if err := w.Write(Header()); err != nil {
		return err
	}
	rows := 0
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		out := append([]string{string(core.Expense)}, row...)
		if len(row) == old.width {
			out = []string{
				string(core.Expense),
				old.field(row, ColAmount),
				old.field(row, ColCategory),
				old.field(row, ColDescription),
				old.field(row, ColDate),
			}
		}
		if err := w.Write(out); err != nil {
			return err
		}
		rows++
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Ledger file upgraded to current schema",
		"path", s.path,
		"from_version", old.version,
		"to_version", SchemaV2,
		"rows", rows)
	return nil
}

func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	return cr
}

func ensureTrailingNewline(f *os.File) error {
	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat ledger file: %w", err)
	}
	if info.Size() == 0 {
		return nil
	}
	last := make([]byte, 1)
	if _, err := f.ReadAt(last, info.Size()-1); err != nil {
		return fmt.Errorf("read ledger file: %w", err)
	}
	if last[0] == '\n' {
		return nil
	}
	_, err = f.Write([]byte("\n"))
	return err
}
