package codec

import (
	"fmt"
	"io"
	"os"

	"github.com/tealeg/xlsx"

	"github.com/mesh-intelligence/cellpatch/pkg/types"
)

// defaultSheetName names the sheet created by Write when none is configured.
const defaultSheetName = "Sheet1"

// xlsxCodec handles one sheet of an Excel workbook. Cells are read and
// written as text; the table is padded to rectangular on read.
type xlsxCodec struct {
	cfg types.Config
}

func (c *xlsxCodec) Format() types.Format { return types.FormatXLSX }

func (c *xlsxCodec) Read(path string) (*types.Table, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	wb, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, parseError(path, err)
	}

	sheet, err := c.sheet(wb)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if sheet == nil {
		return types.NewGrid(nil), nil
	}

	rows := make([][]string, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		if row == nil {
			rows = append(rows, []string{})
			continue
		}
		rec := make([]string, len(row.Cells))
		for i, cell := range row.Cells {
			if cell != nil {
				rec[i] = cell.String()
			}
		}
		rows = append(rows, rec)
	}

	t := types.NewGrid(rows)
	t.Pad("")
	return t, nil
}

// sheet picks the configured sheet, or the first one. It returns nil when
// the workbook has no sheets and none was requested.
func (c *xlsxCodec) sheet(wb *xlsx.File) (*xlsx.Sheet, error) {
	if c.cfg.Sheet != "" {
		sheet, ok := wb.Sheet[c.cfg.Sheet]
		if !ok {
			return nil, fmt.Errorf("%w: %q", types.ErrNoSheet, c.cfg.Sheet)
		}
		return sheet, nil
	}
	if len(wb.Sheets) == 0 {
		return nil, nil
	}
	return wb.Sheets[0], nil
}

func (c *xlsxCodec) Write(t *types.Table, path string) error {
	recs, err := t.Records()
	if err != nil {
		return err
	}

	name := c.cfg.Sheet
	if name == "" {
		name = defaultSheetName
	}
	wb := xlsx.NewFile()
	sheet, err := wb.AddSheet(name)
	if err != nil {
		return fmt.Errorf("adding sheet %q: %w", name, err)
	}
	for _, rec := range recs {
		row := sheet.AddRow()
		for _, v := range rec {
			row.AddCell().SetString(v)
		}
	}

	return writeAtomic(path, func(w io.Writer) error {
		if err := wb.Write(w); err != nil {
			return fmt.Errorf("writing workbook: %w", err)
		}
		return nil
	})
}
