package cli

import (
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/cellpatch/internal/codec"
	"github.com/mesh-intelligence/cellpatch/internal/display"
	"github.com/mesh-intelligence/cellpatch/internal/edit"
	"github.com/mesh-intelligence/cellpatch/internal/logging"
)

// run executes one invocation: select both codecs and parse every edit
// before touching any file, then read, apply edits, display, and write.
func run(s settings, input, output string, tokens []string, stdout, stderr io.Writer) error {
	logger, closeLog, err := logging.New(stderr, s.logging)
	if err != nil {
		return fmt.Errorf("%w: %v", errInvalidLogging, err)
	}
	defer closeLog()
	logger = logger.With("run_id", newRunID())

	in, err := codec.ForPath(input, s.codec)
	if err != nil {
		return fmt.Errorf("input: %w", err)
	}
	out, err := codec.ForPath(output, s.codec)
	if err != nil {
		return fmt.Errorf("output: %w", err)
	}
	edits, err := edit.Parse(tokens)
	if err != nil {
		return err
	}
	logger.Debug("codecs selected",
		"input", input, "input_format", in.Format(),
		"output", output, "output_format", out.Format(),
		"edits", len(edits))

	tbl, err := in.Read(input)
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}
	logger.Debug("table read", "path", input, "rows", tbl.Len())

	res := edit.Apply(tbl, edits)
	logger.Debug("edits applied", "applied", res.Applied, "skipped", res.Skipped)

	if err := display.Render(stdout, tbl); err != nil {
		return fmt.Errorf("display: %w", err)
	}

	if err := out.Write(tbl, output); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	logger.Info("table written", "path", output, "format", out.Format(), "rows", tbl.Len())
	return nil
}

// newRunID returns a time-ordered id that ties together the log records of
// one invocation.
func newRunID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
