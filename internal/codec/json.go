package codec

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mesh-intelligence/cellpatch/pkg/types"
)

// jsonCodec handles a single structured JSON document of arbitrary shape.
// Objects keep their key order and numbers keep their literal text.
type jsonCodec struct {
	cfg types.Config
}

func (c *jsonCodec) Format() types.Format { return types.FormatJSON }

func (c *jsonCodec) Read(path string) (*types.Table, error) {
	f, err := openRead(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	v, err := decodeDocument(bufio.NewReader(f))
	if err != nil {
		return nil, parseError(path, err)
	}
	return types.NewTable(v), nil
}

func (c *jsonCodec) Write(t *types.Table, path string) error {
	return writeAtomic(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", strings.Repeat(" ", c.cfg.Indent))
		if err := enc.Encode(t.Data); err != nil {
			return fmt.Errorf("encoding json: %w", err)
		}
		return nil
	})
}

// errEmptyDocument is returned when the input holds no JSON value.
var errEmptyDocument = errors.New("no JSON value found")

// decodeDocument reads exactly one JSON value from r. Trailing data other
// than whitespace is an error.
func decodeDocument(r io.Reader) (any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	v, err := decodeValue(dec)
	if errors.Is(err, io.EOF) {
		return nil, errEmptyDocument
	}
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errors.New("unexpected data after top-level value")
		}
		return nil, err
	}
	return v, nil
}

// decodeLine decodes one JSON Lines record.
func decodeLine(line []byte) (any, error) {
	return decodeDocument(bytes.NewReader(line))
}

// decodeValue reads the next value from dec, building *types.Object for
// objects so key order survives. A repeated key keeps its first position
// and its last value.
func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}

	switch delim {
	case '{':
		obj := types.NewObject()
		for dec.More() {
			kt, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := kt.(string)
			if !ok {
				return nil, fmt.Errorf("object key %v is not a string", kt)
			}
			v, err := decodeValue(dec)
			if err != nil {
				return nil, unexpectedEOF(err)
			}
			obj.Set(key, v)
		}
		if _, err := dec.Token(); err != nil {
			return nil, unexpectedEOF(err)
		}
		return obj, nil
	case '[':
		list := []any{}
		for dec.More() {
			v, err := decodeValue(dec)
			if err != nil {
				return nil, unexpectedEOF(err)
			}
			list = append(list, v)
		}
		if _, err := dec.Token(); err != nil {
			return nil, unexpectedEOF(err)
		}
		return list, nil
	default:
		return nil, fmt.Errorf("unexpected delimiter %q", delim)
	}
}

// unexpectedEOF turns io.EOF inside a value into io.ErrUnexpectedEOF so a
// truncated document is not mistaken for an empty one.
func unexpectedEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
