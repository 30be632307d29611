package codec

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/mesh-intelligence/cellpatch/pkg/types"
)

// jsonlCodec handles JSON Lines: each non-empty line is one row holding any
// JSON value.
type jsonlCodec struct{}

func (c *jsonlCodec) Format() types.Format { return types.FormatJSONL }

func (c *jsonlCodec) Read(path string) (*types.Table, error) {
	f, err := openRead(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows := []any{}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		v, err := decodeLine(line)
		if err != nil {
			return nil, parseError(path, fmt.Errorf("line %d: %w", lineNo, err))
		}
		rows = append(rows, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning %s: %w", path, err)
	}
	return types.NewTable(rows), nil
}

func (c *jsonlCodec) Write(t *types.Table, path string) error {
	rows, ok := t.Rows()
	if !ok {
		return types.ErrNotTabular
	}
	return writeAtomic(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		for i, row := range rows {
			// Encode terminates each record with a newline.
			if err := enc.Encode(row); err != nil {
				return fmt.Errorf("writing record %d: %w", i, err)
			}
		}
		return nil
	})
}
