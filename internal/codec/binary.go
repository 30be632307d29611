package codec

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"

	"github.com/mesh-intelligence/cellpatch/pkg/types"
)

// binaryCodec handles the binary-serialized format selected by .pickle.
// Values are stored as MessagePack; files written by Python's pickle module
// cannot be read, and Python cannot read these files.
type binaryCodec struct{}

func (c *binaryCodec) Format() types.Format { return types.FormatBinary }

func (c *binaryCodec) Read(path string) (*types.Table, error) {
	f, err := openRead(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := msgpack.NewDecoder(bufio.NewReader(f))
	if _, err := dec.PeekCode(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, parseError(path, errors.New("empty file"))
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	v, err := decodeMsgpack(dec)
	if err != nil {
		return nil, parseError(path, err)
	}
	if _, err := dec.PeekCode(); !errors.Is(err, io.EOF) {
		return nil, parseError(path, errors.New("unexpected data after top-level value"))
	}
	return types.NewTable(v), nil
}

func (c *binaryCodec) Write(t *types.Table, path string) error {
	return writeAtomic(path, func(w io.Writer) error {
		if err := encodeMsgpack(msgpack.NewEncoder(w), t.Data); err != nil {
			return fmt.Errorf("encoding msgpack: %w", err)
		}
		return nil
	})
}

// encodeMsgpack writes v with objects as maps in key order. Integers that fit
// in int64 or uint64 are stored as integers and the rest as float64.
func encodeMsgpack(enc *msgpack.Encoder, v any) error {
	switch x := v.(type) {
	case nil:
		return enc.EncodeNil()
	case string:
		return enc.EncodeString(x)
	case bool:
		return enc.EncodeBool(x)
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return enc.EncodeInt(i)
		}
		if u, err := strconv.ParseUint(string(x), 10, 64); err == nil {
			return enc.EncodeUint(u)
		}
		f, err := x.Float64()
		if err != nil {
			return fmt.Errorf("number %q: %w", x, err)
		}
		return enc.EncodeFloat64(f)
	case []any:
		if err := enc.EncodeArrayLen(len(x)); err != nil {
			return err
		}
		for _, item := range x {
			if err := encodeMsgpack(enc, item); err != nil {
				return err
			}
		}
		return nil
	case *types.Object:
		if err := enc.EncodeMapLen(x.Len()); err != nil {
			return err
		}
		for _, k := range x.Keys() {
			if err := enc.EncodeString(k); err != nil {
				return err
			}
			val, _ := x.Get(k)
			if err := encodeMsgpack(enc, val); err != nil {
				return err
			}
		}
		return nil
	default:
		return enc.Encode(x)
	}
}

// decodeMsgpack reads the next value, building *types.Object for maps so key
// order survives. Map keys that are not strings are rendered as text.
func decodeMsgpack(dec *msgpack.Decoder) (any, error) {
	c, err := dec.PeekCode()
	if err != nil {
		return nil, unexpectedEOF(err)
	}

	switch {
	case msgpcode.IsFixedMap(c) || c == msgpcode.Map16 || c == msgpcode.Map32:
		n, err := dec.DecodeMapLen()
		if err != nil {
			return nil, err
		}
		obj := types.NewObject()
		for i := 0; i < n; i++ {
			k, err := decodeMsgpack(dec)
			if err != nil {
				return nil, err
			}
			v, err := decodeMsgpack(dec)
			if err != nil {
				return nil, err
			}
			obj.Set(types.Text(k), v)
		}
		return obj, nil
	case msgpcode.IsFixedArray(c) || c == msgpcode.Array16 || c == msgpcode.Array32:
		n, err := dec.DecodeArrayLen()
		if err != nil {
			return nil, err
		}
		list := make([]any, 0, n)
		for i := 0; i < n; i++ {
			v, err := decodeMsgpack(dec)
			if err != nil {
				return nil, err
			}
			list = append(list, v)
		}
		return list, nil
	}

	v, err := dec.DecodeInterface()
	if err != nil {
		return nil, unexpectedEOF(err)
	}
	switch x := v.(type) {
	case nil, string, bool:
		return x, nil
	case int8:
		return json.Number(strconv.FormatInt(int64(x), 10)), nil
	case int16:
		return json.Number(strconv.FormatInt(int64(x), 10)), nil
	case int32:
		return json.Number(strconv.FormatInt(int64(x), 10)), nil
	case int64:
		return json.Number(strconv.FormatInt(x, 10)), nil
	case uint8:
		return json.Number(strconv.FormatUint(uint64(x), 10)), nil
	case uint16:
		return json.Number(strconv.FormatUint(uint64(x), 10)), nil
	case uint32:
		return json.Number(strconv.FormatUint(uint64(x), 10)), nil
	case uint64:
		return json.Number(strconv.FormatUint(x, 10)), nil
	case float32:
		return floatNumber(float64(x)), nil
	case float64:
		return floatNumber(x), nil
	case []byte:
		return string(x), nil
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano), nil
	default:
		return nil, fmt.Errorf("unsupported value of type %T", v)
	}
}

// floatNumber renders f so that it reads back as a float: integral values
// keep a trailing ".0". NaN and infinities have no JSON literal and become
// text.
func floatNumber(f float64) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return json.Number(s)
}
