package types

// Format identifies an on-disk table format.
type Format string

// Supported formats. FormatBinary is selected by the .pickle suffix.
const (
	FormatCSV    Format = "csv"
	FormatText   Format = "txt"
	FormatJSON   Format = "json"
	FormatBinary Format = "pickle"
	FormatJSONL  Format = "jsonl"
	FormatYAML   Format = "yaml"
	FormatXLSX   Format = "xlsx"
	FormatSQLite Format = "sqlite"
)
