// Package edit parses "x,y,value" edit tokens and applies them to a table.
//
// Edits are applied in order and each one is committed before the next is
// considered. An edit whose coordinates do not address an existing cell is
// skipped without error, so a batch can be partially applicable. The
// replacement is always stored as text, which can change the type of a
// cell that held a number or boolean.
package edit

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mesh-intelligence/cellpatch/pkg/types"
)

// Edit replaces the cell at column X of row Y with Value.
type Edit struct {
	X, Y  int
	Value string
}

// String formats e as an x,y,value token.
func (e Edit) String() string {
	return fmt.Sprintf("%d,%d,%s", e.X, e.Y, e.Value)
}

// Result counts the outcome of Apply.
type Result struct {
	Applied int
	Skipped int
}

// ParseToken parses one edit token. The token must split on commas into
// exactly three fields and the first two must be integers. The value
// therefore cannot contain a comma.
func ParseToken(token string) (Edit, error) {
	parts := strings.Split(token, ",")
	if len(parts) != 3 {
		return Edit{}, fmt.Errorf("%w %q: want 3 comma-separated fields, got %d", types.ErrMalformedEdit, token, len(parts))
	}
	x, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return Edit{}, fmt.Errorf("%w %q: column %q is not an integer", types.ErrMalformedEdit, token, parts[0])
	}
	y, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return Edit{}, fmt.Errorf("%w %q: row %q is not an integer", types.ErrMalformedEdit, token, parts[1])
	}
	return Edit{X: x, Y: y, Value: parts[2]}, nil
}

// Parse parses every token. The first malformed token stops parsing; its
// 1-based position is included in the error.
func Parse(tokens []string) ([]Edit, error) {
	edits := make([]Edit, 0, len(tokens))
	for i, tok := range tokens {
		e, err := ParseToken(tok)
		if err != nil {
			return nil, fmt.Errorf("edit %d: %w", i+1, err)
		}
		edits = append(edits, e)
	}
	return edits, nil
}

// Apply applies edits to t in order. Edits that address a missing cell,
// including negative coordinates and tables that are not a sequence of
// rows, are skipped.
func Apply(t *types.Table, edits []Edit) Result {
	var res Result
	for _, e := range edits {
		if t.SetCell(e.X, e.Y, e.Value) {
			res.Applied++
		} else {
			res.Skipped++
		}
	}
	return res
}

// Modify parses tokens and applies them to t. Nothing is applied when any
// token is malformed.
func Modify(t *types.Table, tokens []string) (Result, error) {
	edits, err := Parse(tokens)
	if err != nil {
		return Result{}, err
	}
	return Apply(t, edits), nil
}
