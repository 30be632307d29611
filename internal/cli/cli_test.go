package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/cellpatch/internal/paths"
	"github.com/mesh-intelligence/cellpatch/pkg/cellpatch"
)

// cliEnv is an isolated working directory with its own config directory.
type cliEnv struct {
	t         *testing.T
	dir       string
	configDir string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	dir := t.TempDir()
	configDir := filepath.Join(dir, "config")
	require.NoError(t, os.MkdirAll(configDir, 0o755))
	t.Setenv(paths.EnvConfigDir, configDir)
	return &cliEnv{t: t, dir: dir, configDir: configDir}
}

type cmdResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

func (e *cliEnv) run(args ...string) cmdResult {
	e.t.Helper()
	var stdout, stderr bytes.Buffer
	code := Run(args, &stdout, &stderr)
	return cmdResult{Stdout: stdout.String(), Stderr: stderr.String(), ExitCode: code}
}

func (e *cliEnv) path(name string) string {
	return filepath.Join(e.dir, name)
}

func (e *cliEnv) write(name, content string) string {
	e.t.Helper()
	p := e.path(name)
	require.NoError(e.t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func (e *cliEnv) read(name string) string {
	e.t.Helper()
	data, err := os.ReadFile(e.path(name))
	require.NoError(e.t, err)
	return string(data)
}

func TestUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "no arguments", args: nil},
		{name: "input only", args: []string{"in.csv"}},
		{name: "unknown flag", args: []string{"--bogus", "in.csv", "out.csv"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newCLIEnv(t)
			res := env.run(tt.args...)
			assert.Equal(t, exitUserError, res.ExitCode)
			assert.Contains(t, res.Stderr, "Usage:")
			assert.Empty(t, res.Stdout)
		})
	}
}

func TestEditAndWriteCSV(t *testing.T) {
	env := newCLIEnv(t)
	in := env.write("in.csv", "a,b\nc,d\n")

	res := env.run(in, env.path("out.csv"), "1,0,X", "5,5,ignored")
	require.Equal(t, exitSuccess, res.ExitCode, res.Stderr)

	assert.Equal(t, "a,X\nc,d\n", res.Stdout)
	assert.Equal(t, "a,X\nc,d\n", env.read("out.csv"))
	assert.Equal(t, "a,b\nc,d\n", env.read("in.csv"), "input must not change")
}

func TestNoEditsCopies(t *testing.T) {
	env := newCLIEnv(t)
	in := env.write("in.txt", "1,2\n3\n")

	res := env.run(in, env.path("out.txt"))
	require.Equal(t, exitSuccess, res.ExitCode, res.Stderr)
	assert.Equal(t, "1,2\n3\n", res.Stdout)
	assert.Equal(t, "1,2\n3\n", env.read("out.txt"))
}

func TestUnknownExtensionPerformsNoIO(t *testing.T) {
	env := newCLIEnv(t)

	t.Run("input", func(t *testing.T) {
		res := env.run(env.path("data.xyz"), env.path("out.csv"), "0,0,X")
		assert.Equal(t, exitUserError, res.ExitCode)
		assert.Contains(t, res.Stderr, "data.xyz")
		assert.NoFileExists(t, env.path("out.csv"))
	})

	t.Run("output", func(t *testing.T) {
		in := env.write("in.csv", "a\n")
		res := env.run(in, env.path("out.xyz"))
		assert.Equal(t, exitUserError, res.ExitCode)
		assert.Contains(t, res.Stderr, "out.xyz")
		assert.Empty(t, res.Stdout, "nothing is read or displayed")
		assert.NoFileExists(t, env.path("out.xyz"))
	})
}

func TestMalformedEdit(t *testing.T) {
	env := newCLIEnv(t)
	in := env.write("in.csv", "a,b\n")

	res := env.run(in, env.path("out.csv"), "0,0,ok", "x,0,bad")
	assert.Equal(t, exitUserError, res.ExitCode)
	assert.Contains(t, res.Stderr, `"x,0,bad"`)
	assert.Contains(t, res.Stderr, "edit 2")
	assert.Empty(t, res.Stdout)
	assert.NoFileExists(t, env.path("out.csv"))
}

func TestInvalidJSONInput(t *testing.T) {
	env := newCLIEnv(t)
	in := env.write("broken.json", `{"a": [1, 2}`)

	res := env.run(in, env.path("out.json"), "0,0,X")
	assert.Equal(t, exitUserError, res.ExitCode)
	assert.Contains(t, res.Stderr, "broken.json")
	assert.Empty(t, res.Stdout)
	assert.NoFileExists(t, env.path("out.json"))
}

func TestMissingInputIsSystemError(t *testing.T) {
	env := newCLIEnv(t)
	res := env.run(env.path("absent.csv"), env.path("out.csv"))
	assert.Equal(t, exitSysError, res.ExitCode)
	assert.Contains(t, res.Stderr, "absent.csv")
	assert.NoFileExists(t, env.path("out.csv"))
}

func TestCSVToJSONConversion(t *testing.T) {
	env := newCLIEnv(t)
	in := env.write("in.csv", "a,b\nc,d,e\nf\n")

	res := env.run(in, env.path("out.json"))
	require.Equal(t, exitSuccess, res.ExitCode, res.Stderr)
	assert.Equal(t, "a,b,\nc,d,e\nf,,\n", res.Stdout)

	var got [][]string
	require.NoError(t, json.Unmarshal([]byte(env.read("out.json")), &got))
	assert.Equal(t, [][]string{{"a", "b", ""}, {"c", "d", "e"}, {"f", "", ""}}, got)
	assert.Contains(t, env.read("out.json"), "\n    [\n        \"a\",")
}

func TestBinaryPipeline(t *testing.T) {
	env := newCLIEnv(t)
	in := env.write("in.txt", "a,b\nc\n")

	res := env.run(in, env.path("mid.pickle"), "0,1,C")
	require.Equal(t, exitSuccess, res.ExitCode, res.Stderr)

	res = env.run(env.path("mid.pickle"), env.path("out.json"), "1,0,B")
	require.Equal(t, exitSuccess, res.ExitCode, res.Stderr)
	assert.Equal(t, "a,B\nC\n", res.Stdout)

	var got [][]string
	require.NoError(t, json.Unmarshal([]byte(env.read("out.json")), &got))
	assert.Equal(t, [][]string{{"a", "B"}, {"C"}}, got)
}

func TestStructuredRootEditsAreNoOps(t *testing.T) {
	env := newCLIEnv(t)
	in := env.write("in.json", `{"b": 1, "a": "x"}`)

	res := env.run(in, env.path("out.json"), "0,0,X")
	require.Equal(t, exitSuccess, res.ExitCode, res.Stderr)
	assert.Equal(t, "{\"b\":1,\"a\":\"x\"}\n", res.Stdout)
	assert.Equal(t, "{\n    \"b\": 1,\n    \"a\": \"x\"\n}\n", env.read("out.json"))
}

func TestNonTabularToCSVFails(t *testing.T) {
	env := newCLIEnv(t)
	in := env.write("in.json", `{"a": 1}`)

	res := env.run(in, env.path("out.csv"))
	assert.Equal(t, exitUserError, res.ExitCode)
	assert.Contains(t, res.Stderr, "out.csv")
	assert.NoFileExists(t, env.path("out.csv"))
}

func TestTypedCellBecomesText(t *testing.T) {
	env := newCLIEnv(t)
	in := env.write("in.json", `[[1, true], [2.5, null]]`)

	res := env.run(in, env.path("out.json"), "0,0,10")
	require.Equal(t, exitSuccess, res.ExitCode, res.Stderr)

	var got [][]any
	require.NoError(t, json.Unmarshal([]byte(env.read("out.json")), &got))
	assert.Equal(t, [][]any{{"10", true}, {2.5, nil}}, got)
}

func TestEditAfterDoubleDash(t *testing.T) {
	env := newCLIEnv(t)
	in := env.write("in.csv", "a,b\n")

	res := env.run(in, env.path("out.csv"), "--", "-1,0,X", "0,0,Y")
	require.Equal(t, exitSuccess, res.ExitCode, res.Stderr)
	assert.Equal(t, "Y,b\n", res.Stdout)
}

func TestConfigFileAndFlagPrecedence(t *testing.T) {
	env := newCLIEnv(t)
	cfg := "csv:\n  comma: \";\"\njson:\n  indent: 2\n"
	require.NoError(t, os.WriteFile(filepath.Join(env.configDir, paths.ConfigFileName), []byte(cfg), 0o644))
	in := env.write("in.csv", "a;b\n")

	t.Run("config file applies", func(t *testing.T) {
		res := env.run(in, env.path("a.json"))
		require.Equal(t, exitSuccess, res.ExitCode, res.Stderr)
		assert.Equal(t, "[\n  [\n    \"a\",\n    \"b\"\n  ]\n]\n", env.read("a.json"))
	})

	t.Run("flag overrides config file", func(t *testing.T) {
		res := env.run("--comma", ",", "--indent", "4", in, env.path("b.json"))
		require.Equal(t, exitSuccess, res.ExitCode, res.Stderr)
		assert.Equal(t, "[\n    [\n        \"a;b\"\n    ]\n]\n", env.read("b.json"))
	})

	t.Run("env overrides config file", func(t *testing.T) {
		t.Setenv("CELLPATCH_JSON_INDENT", "0")
		res := env.run(in, env.path("c.json"))
		require.Equal(t, exitSuccess, res.ExitCode, res.Stderr)
		assert.Equal(t, "[[\"a\",\"b\"]]\n", env.read("c.json"))
	})
}

func TestExplicitConfigFile(t *testing.T) {
	env := newCLIEnv(t)
	in := env.write("in.csv", "a\tb\n")
	cfgPath := env.write("custom.yaml", "csv:\n  comma: \"\\\\t\"\n")

	res := env.run("--config", cfgPath, in, env.path("out.txt"))
	require.Equal(t, exitSuccess, res.ExitCode, res.Stderr)
	assert.Equal(t, "a,b\n", env.read("out.txt"))

	res = env.run("--config", env.path("missing.yaml"), in, env.path("out2.txt"))
	assert.Equal(t, exitUserError, res.ExitCode)
	assert.Contains(t, res.Stderr, "missing.yaml")
}

func TestInvalidSettings(t *testing.T) {
	env := newCLIEnv(t)
	in := env.write("in.csv", "a\n")

	tests := []struct {
		name string
		args []string
	}{
		{name: "indent too large", args: []string{"--indent", "99"}},
		{name: "multi-character comma", args: []string{"--comma", ";;"}},
		{name: "bad table name", args: []string{"--table", "drop table"}},
		{name: "bad log level", args: []string{"--log-level", "loud"}},
		{name: "bad log format", args: []string{"--log-format", "xml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := env.run(append(tt.args, in, env.path("out.csv"))...)
			assert.Equal(t, exitUserError, res.ExitCode, res.Stderr)
			assert.NoFileExists(t, env.path("out.csv"))
		})
	}
}

func TestDebugLogging(t *testing.T) {
	env := newCLIEnv(t)
	in := env.write("in.csv", "a,b\n")

	res := env.run("--log-level", "debug", in, env.path("out.csv"), "0,0,X", "9,9,Y")
	require.Equal(t, exitSuccess, res.ExitCode, res.Stderr)

	assert.Equal(t, "X,b\n", res.Stdout, "logs never go to stdout")
	assert.Contains(t, res.Stderr, "run_id=")
	assert.Contains(t, res.Stderr, "msg=\"table read\"")
	assert.Contains(t, res.Stderr, "applied=1 skipped=1")
}

func TestVersion(t *testing.T) {
	env := newCLIEnv(t)
	res := env.run("--version")
	assert.Equal(t, exitSuccess, res.ExitCode)
	assert.Contains(t, res.Stdout, cellpatch.Version)
}

func TestHelpListsFormats(t *testing.T) {
	env := newCLIEnv(t)
	res := env.run("--help")
	assert.Equal(t, exitSuccess, res.ExitCode)
	for _, suffix := range []string{".csv", ".json", ".txt", ".pickle", ".xlsx", ".sqlite"} {
		assert.Contains(t, res.Stdout, suffix)
	}
}
