package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/cellpatch/internal/logging"
	"github.com/mesh-intelligence/cellpatch/internal/paths"
	"github.com/mesh-intelligence/cellpatch/pkg/types"
)

const (
	configFileType = "yaml"
	envPrefix      = "CELLPATCH"

	// Config keys in config.yaml. Environment variables use the prefix and
	// underscores, e.g. CELLPATCH_CSV_COMMA.
	cfgKeyComma     = "csv.comma"
	cfgKeyCRLF      = "csv.crlf"
	cfgKeyIndent    = "json.indent"
	cfgKeySheet     = "xlsx.sheet"
	cfgKeyTable     = "sqlite.table"
	cfgKeyLogLevel  = "log.level"
	cfgKeyLogFormat = "log.format"
	cfgKeySeqURL    = "log.seq_url"

	defaultLogLevel  = "warn"
	defaultLogFormat = logging.FormatText
)

// Flag names bound to config keys.
const (
	flagComma     = "comma"
	flagCRLF      = "crlf"
	flagIndent    = "indent"
	flagSheet     = "sheet"
	flagTable     = "table"
	flagLogLevel  = "log-level"
	flagLogFormat = "log-format"
)

var flagKeys = map[string]string{
	flagComma:     cfgKeyComma,
	flagCRLF:      cfgKeyCRLF,
	flagIndent:    cfgKeyIndent,
	flagSheet:     cfgKeySheet,
	flagTable:     cfgKeyTable,
	flagLogLevel:  cfgKeyLogLevel,
	flagLogFormat: cfgKeyLogFormat,
}

var errInvalidLogging = errors.New("invalid logging configuration")

// settings is the resolved configuration for one run.
type settings struct {
	codec   types.Config
	logging logging.Options
}

// loadConfig layers flags, CELLPATCH_* environment variables, the config
// file, and defaults, in that order of precedence. A missing config file is
// not an error unless it was named with --config. The file is never created.
func loadConfig(cmd *cobra.Command, configFile string) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault(cfgKeyComma, string(types.DefaultComma))
	v.SetDefault(cfgKeyCRLF, false)
	v.SetDefault(cfgKeyIndent, types.DefaultIndent)
	v.SetDefault(cfgKeySheet, "")
	v.SetDefault(cfgKeyTable, types.DefaultTable)
	v.SetDefault(cfgKeyLogLevel, defaultLogLevel)
	v.SetDefault(cfgKeyLogFormat, defaultLogFormat)
	v.SetDefault(cfgKeySeqURL, "")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for name, key := range flagKeys {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
			return nil, fmt.Errorf("bind flag %s: %w", name, err)
		}
	}

	path, err := paths.ResolveConfigFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("resolve config file: %w", err)
	}
	v.SetConfigFile(path)
	v.SetConfigType(configFileType)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		missing := errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)
		if missing && configFile == "" {
			return v, nil
		}
		return nil, fmt.Errorf("%w: read config %s: %v", types.ErrUsage, path, err)
	}
	return v, nil
}

// settingsFrom converts the layered configuration into codec and logging
// options and validates them.
func settingsFrom(v *viper.Viper) (settings, error) {
	comma, err := parseComma(v.GetString(cfgKeyComma))
	if err != nil {
		return settings{}, err
	}

	s := settings{
		codec: types.Config{
			Comma:  comma,
			CRLF:   v.GetBool(cfgKeyCRLF),
			Indent: v.GetInt(cfgKeyIndent),
			Sheet:  v.GetString(cfgKeySheet),
			Table:  v.GetString(cfgKeyTable),
		},
		logging: logging.Options{
			Level:  v.GetString(cfgKeyLogLevel),
			Format: v.GetString(cfgKeyLogFormat),
			SeqURL: v.GetString(cfgKeySeqURL),
		},
	}
	if err := s.codec.Validate(); err != nil {
		return settings{}, err
	}
	return s, nil
}

// parseComma accepts a single character or the escape \t.
func parseComma(s string) (rune, error) {
	if s == `\t` {
		return '\t', nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("%w: %q", types.ErrCommaInvalid, s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}
