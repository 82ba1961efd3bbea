// Package xlsx writes each mart table to <dir>/<table>.xlsx for analysts who
// live in spreadsheets. Nested and repeated columns are written as JSON text.
package xlsx

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"moviemart/internal/schema"
	"moviemart/internal/storage"
)

// maxRows is the worksheet row limit, header included.
const maxRows = excelize.TotalRows

// Sink writes workbooks into a directory.
type Sink struct {
	dir string
}

// Open creates dir if needed.
func Open(dir string) (*Sink, error) {
	if dir == "" {
		return nil, fmt.Errorf("xlsx: dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("xlsx: %w", err)
	}
	return &Sink{dir: dir}, nil
}

func init() {
	storage.Register("xlsx", func(_ context.Context, cfg storage.Config) (storage.Sink, error) {
		return Open(cfg.Dir)
	})
}

// Path is where table is written.
func (s *Sink) Path(table string) string {
	return filepath.Join(s.dir, table+".xlsx")
}

// Replace builds the workbook in memory and swaps the file in atomically.
func (s *Sink) Replace(ctx context.Context, t schema.Table) (int64, error) {
	if len(t.Rows)+1 > maxRows {
		return 0, fmt.Errorf("xlsx: %s has %d rows, worksheet limit is %d", t.Name, len(t.Rows), maxRows-1)
	}
	f, err := workbook(ctx, t)
	if err != nil {
		return 0, fmt.Errorf("xlsx: %s: %w", t.Name, err)
	}
	defer f.Close()

	err = storage.WriteFileAtomic(s.Path(t.Name), func(out *os.File) error {
		_, err := f.WriteTo(out)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("xlsx: %w", err)
	}
	return int64(len(t.Rows)), nil
}

// Close is a no-op.
func (s *Sink) Close() error { return nil }

func workbook(ctx context.Context, t schema.Table) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := t.Name
	if len(sheet) > excelize.MaxSheetNameLength {
		sheet = sheet[:excelize.MaxSheetNameLength]
	}
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := fill(ctx, f, sheet, t); err != nil {
		_ = f.Close()
		return nil, err
	}
	return f, nil
}

func fill(ctx context.Context, f *excelize.File, sheet string, t schema.Table) error {
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return err
	}
	if err := sw.SetPanes(&excelize.Panes{
		Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft",
	}); err != nil {
		return err
	}

	header := make([]any, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = excelize.Cell{StyleID: bold, Value: c.Name}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}

	for i, r := range t.Rows {
		if i%10000 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		vals, err := storage.FlatRow(t.Columns, r)
		if err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, vals); err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
	}
	return sw.Flush()
}
