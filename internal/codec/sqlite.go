package codec

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/cellpatch/pkg/types"
)

// sqliteCodec stores the rows of a table in one SQLite table. Columns are
// named c0..cN and declared without a type, so every value keeps its own
// storage class.
type sqliteCodec struct {
	cfg types.Config
}

func (c *sqliteCodec) Format() types.Format { return types.FormatSQLite }

func (c *sqliteCodec) Read(path string) (*types.Table, error) {
	// sql.Open would create a missing database file.
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer db.Close()

	rows, err := db.Query(fmt.Sprintf(`SELECT * FROM %s ORDER BY rowid`, quoteIdent(c.table())))
	if err != nil {
		return nil, parseError(path, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading columns of %s: %w", path, err)
	}

	data := []any{}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", path, err)
		}
		row := make([]any, len(cols))
		for i, v := range vals {
			row[i] = fromSQL(v)
		}
		data = append(data, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s: %w", path, err)
	}
	return types.NewTable(data), nil
}

func (c *sqliteCodec) Write(t *types.Table, path string) error {
	rows, ok := t.Rows()
	if !ok {
		return types.ErrNotTabular
	}

	width := 1
	for _, r := range rows {
		if row, ok := r.([]any); ok && len(row) > width {
			width = len(row)
		}
	}

	return replaceAtomic(path, func(tmpPath string) error {
		db, err := sql.Open("sqlite", tmpPath)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		if err := c.fill(db, rows, width); err != nil {
			db.Close()
			return err
		}
		if err := db.Close(); err != nil {
			return fmt.Errorf("closing database: %w", err)
		}
		return nil
	})
}

// fill creates the table and inserts every row inside one transaction.
// Short rows are completed with NULL.
func (c *sqliteCodec) fill(db *sql.DB, rows []any, width int) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning write transaction: %w", err)
	}
	defer tx.Rollback()

	cols := make([]string, width)
	marks := make([]string, width)
	for i := range cols {
		cols[i] = quoteIdent("c" + strconv.Itoa(i))
		marks[i] = "?"
	}
	table := quoteIdent(c.table())
	if _, err := tx.Exec(fmt.Sprintf(`CREATE TABLE %s (%s)`, table, strings.Join(cols, ", "))); err != nil {
		return fmt.Errorf("creating table: %w", err)
	}

	stmt, err := tx.Prepare(fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
		table, strings.Join(cols, ", "), strings.Join(marks, ", ")))
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	args := make([]any, width)
	for y, r := range rows {
		row, ok := r.([]any)
		if !ok {
			row = []any{r}
		}
		for i := range args {
			args[i] = nil
			if i < len(row) {
				args[i] = toSQL(row[i])
			}
		}
		if _, err := stmt.Exec(args...); err != nil {
			return fmt.Errorf("inserting row %d: %w", y, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing write transaction: %w", err)
	}
	return nil
}

func (c *sqliteCodec) table() string {
	if c.cfg.Table == "" {
		return types.DefaultTable
	}
	return c.cfg.Table
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// toSQL maps a cell to a driver value. Nested values and integers outside
// the int64 range are stored as text.
func toSQL(v any) any {
	switch x := v.(type) {
	case nil, string, bool:
		return x
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		if isInteger(x) {
			// SQLite integers are 64-bit signed.
			return x.String()
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	default:
		return types.Text(x)
	}
}

// isInteger reports whether n is an integer literal, whatever its size.
func isInteger(n json.Number) bool {
	s := strings.TrimPrefix(string(n), "-")
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func fromSQL(v any) any {
	switch x := v.(type) {
	case nil, string:
		return x
	case int64:
		return json.Number(strconv.FormatInt(x, 10))
	case float64:
		return floatNumber(x)
	case bool:
		return x
	case []byte:
		return string(x)
	case time.Time:
		return x.Format(time.RFC3339Nano)
	default:
		return types.Text(x)
	}
}
