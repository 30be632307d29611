package codec

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/mesh-intelligence/cellpatch/pkg/types"
)

// maxLineBytes bounds a single line for the line-oriented formats.
const maxLineBytes = 16 << 20

// textCodec handles line-delimited text: one row per line, cells split on
// commas with no quoting and no padding.
type textCodec struct{}

func (c *textCodec) Format() types.Format { return types.FormatText }

func (c *textCodec) Read(path string) (*types.Table, error) {
	f, err := openRead(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var rows [][]string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n")
		rows = append(rows, strings.Split(line, ","))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning %s: %w", path, err)
	}
	return types.NewGrid(rows), nil
}

func (c *textCodec) Write(t *types.Table, path string) error {
	recs, err := t.Records()
	if err != nil {
		return err
	}
	return writeAtomic(path, func(w io.Writer) error {
		for _, rec := range recs {
			if _, err := io.WriteString(w, strings.Join(rec, ",")+"\n"); err != nil {
				return fmt.Errorf("writing row: %w", err)
			}
		}
		return nil
	})
}
