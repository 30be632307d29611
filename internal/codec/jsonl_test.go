package codec

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/cellpatch/pkg/types"
)

func TestJSONLRead(t *testing.T) {
	path := writeFile(t, t.TempDir(), "in.jsonl", "{\"b\":1,\"a\":2}\n\n[\"x\",\"y\"]\n\"solo\"\n")
	tbl, err := (&jsonlCodec{}).Read(path)
	require.NoError(t, err)

	rows, ok := tbl.Rows()
	require.True(t, ok)
	require.Len(t, rows, 3)

	obj, ok := rows[0].(*types.Object)
	require.True(t, ok)
	assert.Equal(t, []string{"b", "a"}, obj.Keys())
	assert.Equal(t, []any{"x", "y"}, rows[1])
	assert.Equal(t, "solo", rows[2])
}

func TestJSONLReadMalformedLine(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.jsonl", "[1]\n{oops\n")
	_, err := (&jsonlCodec{}).Read(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrParse))
	assert.Contains(t, err.Error(), "line 2")
}

func TestJSONLWrite(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.jsonl")
	obj := types.NewObject()
	obj.Set("k", "<v>")
	tbl := types.NewTable([]any{[]any{"a", json.Number("1")}, obj})

	require.NoError(t, (&jsonlCodec{}).Write(tbl, out))
	assert.Equal(t, "[\"a\",1]\n{\"k\":\"<v>\"}\n", readFile(t, out))
}

func TestJSONLRoundTrip(t *testing.T) {
	out := filepath.Join(t.TempDir(), "rt.jsonl")
	tbl := types.NewGrid([][]string{{"a", "b"}, {"c"}})

	require.NoError(t, (&jsonlCodec{}).Write(tbl, out))
	got, err := (&jsonlCodec{}).Read(out)
	require.NoError(t, err)
	assert.True(t, got.Equal(tbl), "got %v", got.Data)
}

func TestJSONLWriteNotTabular(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.jsonl")
	err := (&jsonlCodec{}).Write(types.NewTable(types.NewObject()), out)
	assert.True(t, errors.Is(err, types.ErrNotTabular))
}
