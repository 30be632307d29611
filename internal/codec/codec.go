// Package codec reads and writes tables in the formats cellpatch supports.
// Each format has one Codec; ForPath selects it from a file name suffix.
package codec

import (
	"fmt"
	"strings"

	"github.com/mesh-intelligence/cellpatch/pkg/types"
)

// Codec reads a file into a Table and writes a Table back to a file.
type Codec interface {
	Format() types.Format
	Read(path string) (*types.Table, error)
	Write(t *types.Table, path string) error
}

// FormatInfo describes one registered format.
type FormatInfo struct {
	Format   types.Format
	Suffixes []string
}

// suffixes maps file name suffixes to formats. Matching is case-sensitive
// and the first match wins.
var suffixes = []struct {
	suffix string
	format types.Format
}{
	{".csv", types.FormatCSV},
	{".json", types.FormatJSON},
	{".txt", types.FormatText},
	{".pickle", types.FormatBinary},
	{".jsonl", types.FormatJSONL},
	{".yaml", types.FormatYAML},
	{".yml", types.FormatYAML},
	{".xlsx", types.FormatXLSX},
	{".sqlite", types.FormatSQLite},
	{".db", types.FormatSQLite},
}

// FormatFor returns the format selected by the suffix of path. It returns
// ErrUnknownFormat when no suffix matches.
func FormatFor(path string) (types.Format, error) {
	for _, s := range suffixes {
		if strings.HasSuffix(path, s.suffix) {
			return s.format, nil
		}
	}
	return "", fmt.Errorf("%w: %s", types.ErrUnknownFormat, path)
}

// New returns the codec for format f configured by cfg.
func New(f types.Format, cfg types.Config) (Codec, error) {
	switch f {
	case types.FormatCSV:
		return &csvCodec{cfg: cfg}, nil
	case types.FormatText:
		return &textCodec{}, nil
	case types.FormatJSON:
		return &jsonCodec{cfg: cfg}, nil
	case types.FormatBinary:
		return &binaryCodec{}, nil
	case types.FormatJSONL:
		return &jsonlCodec{}, nil
	case types.FormatYAML:
		return &yamlCodec{cfg: cfg}, nil
	case types.FormatXLSX:
		return &xlsxCodec{cfg: cfg}, nil
	case types.FormatSQLite:
		return &sqliteCodec{cfg: cfg}, nil
	default:
		return nil, fmt.Errorf("%w: %q", types.ErrUnknownFormat, f)
	}
}

// ForPath selects the codec for path by its suffix.
func ForPath(path string, cfg types.Config) (Codec, error) {
	f, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	return New(f, cfg)
}

// Formats lists the registered formats in registration order, each with
// every suffix that selects it.
func Formats() []FormatInfo {
	var out []FormatInfo
	index := make(map[types.Format]int)
	for _, s := range suffixes {
		i, ok := index[s.format]
		if !ok {
			index[s.format] = len(out)
			out = append(out, FormatInfo{Format: s.format})
			i = len(out) - 1
		}
		out[i].Suffixes = append(out[i].Suffixes, s.suffix)
	}
	return out
}
