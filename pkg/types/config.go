package types

import "regexp"

// Config holds the format options passed to codecs. The CLI fills it from
// flags, environment, and config.yaml; codecs never read configuration
// themselves.
type Config struct {
	// Comma is the field delimiter for delimited text.
	Comma rune `json:"comma" yaml:"comma"`
	// CRLF ends delimited-text records with \r\n instead of \n.
	CRLF bool `json:"crlf" yaml:"crlf"`
	// Indent is the number of spaces used by the JSON and YAML writers.
	Indent int `json:"indent" yaml:"indent"`
	// Sheet names the spreadsheet sheet to read. Empty means the first sheet.
	Sheet string `json:"sheet" yaml:"sheet"`
	// Table names the SQLite table that holds the rows.
	Table string `json:"table" yaml:"table"`
}

// Defaults applied when a field is left at its zero value.
const (
	DefaultComma  = ','
	DefaultIndent = 4
	DefaultTable  = "cells"
	maxIndent     = 16
)

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		Comma:  DefaultComma,
		Indent: DefaultIndent,
		Table:  DefaultTable,
	}
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Comma == 0 || c.Comma == '\r' || c.Comma == '\n' || c.Comma == '"' || c.Comma == 0xFFFD {
		return ErrCommaInvalid
	}
	if c.Indent < 0 || c.Indent > maxIndent {
		return ErrIndentInvalid
	}
	if !identPattern.MatchString(c.Table) {
		return ErrTableInvalid
	}
	return nil
}
