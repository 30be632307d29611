package types

import "errors"

// Selection and configuration errors. These are detected before any file I/O.
var (
	ErrUsage         = errors.New("invalid usage")
	ErrUnknownFormat = errors.New("unrecognized file format")
	ErrMalformedEdit = errors.New("malformed edit")
)

// Codec errors.
var (
	ErrParse      = errors.New("invalid file content")
	ErrNotTabular = errors.New("value is not a sequence of rows")
	ErrNoSheet    = errors.New("sheet not found")
)

// Config validation errors.
var (
	ErrCommaInvalid  = errors.New("delimiter must be a single non-newline character")
	ErrIndentInvalid = errors.New("indent must be between 0 and 16")
	ErrTableInvalid  = errors.New("sqlite table name must be a plain identifier")
)
