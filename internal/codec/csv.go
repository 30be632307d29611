package codec

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mesh-intelligence/cellpatch/pkg/types"
)

// csvCodec handles delimited text. Rows are padded to the longest row on
// read so the table is always rectangular.
type csvCodec struct {
	cfg types.Config
}

func (c *csvCodec) Format() types.Format { return types.FormatCSV }

// Read returns one row per record. A blank line is a row of empty cells,
// so row indexes match the line layout of the file.
func (c *csvCodec) Read(path string) (*types.Table, error) {
	f, err := openRead(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	lc := &lineCounter{r: f}
	r := csv.NewReader(lc)
	r.Comma = c.comma()
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var rows [][]string
	lastLine := 0 // line on which the previous record ended
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				return nil, parseError(path, err)
			}
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		start, _ := r.FieldPos(0)
		rows = appendBlankRows(rows, start-lastLine-1)

		last := len(rec) - 1
		end, _ := r.FieldPos(last)
		lastLine = end + strings.Count(rec[last], "\n")
		rows = append(rows, rec)
	}
	rows = appendBlankRows(rows, lc.lines()-lastLine)

	t := types.NewGrid(rows)
	t.Pad("")
	return t, nil
}

func appendBlankRows(rows [][]string, n int) [][]string {
	for ; n > 0; n-- {
		rows = append(rows, []string{})
	}
	return rows
}

// Write emits one record per row. A row holding a single empty cell is
// written as "" because encoding/csv would write it as a blank line.
func (c *csvCodec) Write(t *types.Table, path string) error {
	recs, err := t.Records()
	if err != nil {
		return err
	}
	eol := "\n"
	if c.cfg.CRLF {
		eol = "\r\n"
	}
	return writeAtomic(path, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		cw.Comma = c.comma()
		cw.UseCRLF = c.cfg.CRLF
		for i, rec := range recs {
			if len(rec) == 1 && rec[0] == "" {
				cw.Flush()
				if err := cw.Error(); err != nil {
					return fmt.Errorf("writing csv: %w", err)
				}
				if _, err := io.WriteString(w, `""`+eol); err != nil {
					return fmt.Errorf("writing csv row %d: %w", i, err)
				}
				continue
			}
			if err := cw.Write(rec); err != nil {
				return fmt.Errorf("writing csv row %d: %w", i, err)
			}
		}
		cw.Flush()
		if err := cw.Error(); err != nil {
			return fmt.Errorf("writing csv: %w", err)
		}
		return nil
	})
}

func (c *csvCodec) comma() rune {
	if c.cfg.Comma == 0 {
		return types.DefaultComma
	}
	return c.cfg.Comma
}

// lineCounter counts the lines passing through it, so blank lines after the
// last record are not lost.
type lineCounter struct {
	r        io.Reader
	newlines int
	last     byte
	seen     bool
}

func (lc *lineCounter) Read(p []byte) (int, error) {
	n, err := lc.r.Read(p)
	if n > 0 {
		lc.newlines += bytes.Count(p[:n], []byte{'\n'})
		lc.last = p[n-1]
		lc.seen = true
	}
	return n, err
}

// lines reports the number of lines read, counting an unterminated final line.
func (lc *lineCounter) lines() int {
	if lc.seen && lc.last != '\n' {
		return lc.newlines + 1
	}
	return lc.newlines
}
