// Package cli implements the cellpatch command-line interface: argument
// parsing, configuration, logging, and exit codes around the
// read, edit, display, write pipeline.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/cellpatch/internal/codec"
	"github.com/mesh-intelligence/cellpatch/pkg/cellpatch"
	"github.com/mesh-intelligence/cellpatch/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// userErrors are reported with exitUserError; anything else is a system error.
var userErrors = []error{
	types.ErrUsage,
	types.ErrUnknownFormat,
	types.ErrMalformedEdit,
	types.ErrParse,
	types.ErrNotTabular,
	types.ErrNoSheet,
	types.ErrCommaInvalid,
	types.ErrIndentInvalid,
	types.ErrTableInvalid,
	errInvalidLogging,
}

// rootFlags holds flag values for one command instance.
type rootFlags struct {
	configFile string
	comma      string
	crlf       bool
	indent     int
	sheet      string
	table      string
	logLevel   string
	logFormat  string
}

// NewRootCmd creates the cellpatch command. stdout receives the rendered
// table; stderr receives logs.
func NewRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var flags rootFlags

	root := &cobra.Command{
		Use:   "cellpatch [flags] <input_file> <output_file> [x,y,value ...]",
		Short: "Edit cells of a table file and write it out, optionally in another format",
		Long: "cellpatch reads a table, replaces the cells named by each x,y,value edit\n" +
			"(x is the column, y the row, both 0-based), prints the result, and writes\n" +
			"it to the output file. The format of each file is chosen by its suffix:\n\n" +
			formatHelp() + "\n" +
			"Edits that address a missing cell are skipped. Edit values cannot contain\n" +
			"commas. Put -- before edits that start with a minus sign.",
		Version:       cellpatch.Version,
		Args:          positionalArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := loadConfig(cmd, flags.configFile)
			if err != nil {
				return err
			}
			s, err := settingsFrom(v)
			if err != nil {
				return err
			}
			return run(s, args[0], args[1], args[2:], stdout, stderr)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", types.ErrUsage, err)
	})

	f := root.Flags()
	f.StringVar(&flags.configFile, "config", "", "config file (default: $CELLPATCH_CONFIG_DIR or the user config dir, config.yaml)")
	f.StringVar(&flags.comma, flagComma, string(types.DefaultComma), `csv field delimiter (use \t for tab)`)
	f.BoolVar(&flags.crlf, flagCRLF, false, "end csv records with CRLF")
	f.IntVar(&flags.indent, flagIndent, types.DefaultIndent, "indent width for json and yaml output")
	f.StringVar(&flags.sheet, flagSheet, "", "xlsx sheet to read and write (default: first sheet, Sheet1 on write)")
	f.StringVar(&flags.table, flagTable, types.DefaultTable, "sqlite table holding the rows")
	f.StringVar(&flags.logLevel, flagLogLevel, defaultLogLevel, "log level: debug, info, warn, error")
	f.StringVar(&flags.logFormat, flagLogFormat, defaultLogFormat, "log format: text or json")

	return root
}

// positionalArgs requires the input and output file names.
func positionalArgs(cmd *cobra.Command, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("%w: need <input_file> and <output_file>, got %d argument(s)", types.ErrUsage, len(args))
	}
	return nil
}

func formatHelp() string {
	var b strings.Builder
	for _, info := range codec.Formats() {
		fmt.Fprintf(&b, "  %-8s %s\n", info.Format, strings.Join(info.Suffixes, " "))
	}
	return b.String()
}

// Run executes cellpatch with args and returns the process exit code.
func Run(args []string, stdout, stderr io.Writer) int {
	root := NewRootCmd(stdout, stderr)
	root.SetArgs(args)

	err := root.Execute()
	if err == nil {
		return exitSuccess
	}

	fmt.Fprintln(stderr, "cellpatch:", err)
	if errors.Is(err, types.ErrUsage) {
		fmt.Fprint(stderr, root.UsageString())
	}
	return exitCode(err)
}

// Execute runs cellpatch with the process arguments and exits.
func Execute() {
	os.Exit(Run(os.Args[1:], os.Stdout, os.Stderr))
}

func exitCode(err error) int {
	for _, target := range userErrors {
		if errors.Is(err, target) {
			return exitUserError
		}
	}
	return exitSysError
}
