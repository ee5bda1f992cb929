package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testdata = "../../parse/testdata"

// run executes graphc in a scratch working directory so no graphc.yaml is
// picked up by accident.
func run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	t.Chdir(t.TempDir())

	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func abs(t *testing.T, path string) string {
	t.Helper()
	p, err := filepath.Abs(path)
	require.NoError(t, err)
	return p
}

func writeGraph(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

const brokenGraph = `graph "Broken" {
  class = "C"
  node "b" "branch" {}
  connect {
    from = "entry.exec"
    to   = "b.exec"
  }
}
`

func TestTranslate_Stdout(t *testing.T) {
	file := abs(t, filepath.Join(testdata, "max.graph.hcl"))
	stdout, _, err := run(t, "translate", file)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "// Calculator.Max\npublic static System.Int32 Max("), stdout)
	assert.Contains(t, stdout, "varResult = System.Math.Max(a, b);")
}

func TestTranslate_NoSignature(t *testing.T) {
	file := abs(t, filepath.Join(testdata, "max.graph.hcl"))
	stdout, _, err := run(t, "translate", "--signature=false", file)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "{\n\t// Variables\n"), stdout)
}

func TestTranslate_OutputDirectory(t *testing.T) {
	dir := abs(t, testdata)
	out := filepath.Join(t.TempDir(), "gen")

	stdout, _, err := run(t, "translate", "-o", out, "--parallel", "2", dir)
	require.NoError(t, err)
	assert.Empty(t, stdout)

	for _, name := range []string{"Calculator.Max.cs", "Counter.Count.cs"} {
		data, err := os.ReadFile(filepath.Join(out, name))
		require.NoError(t, err, name)
		assert.Contains(t, string(data), "// Variables")
	}
}

func TestTranslate_ReportsFailures(t *testing.T) {
	dir := t.TempDir()
	broken := writeGraph(t, dir, "broken.graph.hcl", brokenGraph)
	good := abs(t, filepath.Join(testdata, "max.graph.hcl"))

	stdout, stderr, err := run(t, "translate", good, broken)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 graphs failed")
	assert.Contains(t, err.Error(), "condition")
	assert.Contains(t, stdout, "// Calculator.Max")
	assert.Contains(t, stderr, "translation failed")
	assert.Contains(t, stderr, "source="+broken)

	_, _, err = run(t, "translate", "--fail-fast", "--parallel", "1", broken, good)
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "graphs failed")
}

func TestTranslate_Trace(t *testing.T) {
	file := abs(t, filepath.Join(testdata, "max.graph.hcl"))
	_, stderr, err := run(t, "translate", "--trace", file)
	require.NoError(t, err)
	assert.Contains(t, stderr, "Translator.Translate")
	assert.Contains(t, stderr, "Calculator.Max")
}

func TestTranslate_ParseError(t *testing.T) {
	bad := writeGraph(t, t.TempDir(), "bad.graph.hcl", `graph "G" {`)
	_, _, err := run(t, "translate", bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.graph.hcl")
}

func TestTranslate_RequiresInput(t *testing.T) {
	_, _, err := run(t, "translate")
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	stdout, _, err := run(t, "validate", abs(t, testdata))
	require.NoError(t, err)
	assert.Equal(t, "ok Counter.Count\nok Calculator.Max\n", stdout)

	broken := writeGraph(t, t.TempDir(), "broken.graph.hcl", brokenGraph)
	_, _, err = run(t, "validate", broken)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "C.Broken")
}

func TestKinds(t *testing.T) {
	stdout, _, err := run(t, "kinds")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Built-in:\n  return\n")
	assert.Contains(t, stdout, "  for_loop\n")
	assert.NotContains(t, stdout, "  entry\n")
	assert.Contains(t, stdout, "Console:\n  Print\n")
	assert.Contains(t, stdout, "Annotation:\n  Comment\n")
}

func TestConfig(t *testing.T) {
	file := abs(t, filepath.Join(testdata, "max.graph.hcl"))

	t.Run("file settings apply", func(t *testing.T) {
		cfgPath := filepath.Join(t.TempDir(), "graphc.yaml")
		require.NoError(t, os.WriteFile(cfgPath, []byte("log:\n  level: debug\n  format: json\ntranslate:\n  signature: false\n"), 0o644))

		stdout, stderr, err := run(t, "--config", cfgPath, "translate", file)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(stdout, "{\n"), stdout)
		assert.Contains(t, stderr, `"msg":"configuration loaded"`)
	})

	t.Run("flags override the file", func(t *testing.T) {
		cfgPath := filepath.Join(t.TempDir(), "graphc.yaml")
		require.NoError(t, os.WriteFile(cfgPath, []byte("translate:\n  signature: false\n"), 0o644))

		stdout, _, err := run(t, "--config", cfgPath, "translate", "--signature", file)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(stdout, "// Calculator.Max\n"), stdout)
	})

	t.Run("missing explicit file", func(t *testing.T) {
		_, _, err := run(t, "--config", filepath.Join(t.TempDir(), "nope.yaml"), "kinds")
		require.Error(t, err)
	})

	t.Run("bad log level flag", func(t *testing.T) {
		_, _, err := run(t, "--log-level", "loud", "kinds")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown log level")
	})
}

func TestTranslate_DebugTrace(t *testing.T) {
	file := abs(t, filepath.Join(testdata, "max.graph.hcl"))

	_, stderr, err := run(t, "translate", "--debug-trace", "json", file)
	require.NoError(t, err)
	assert.Contains(t, stderr, `"type":"translate:start"`)
	assert.Contains(t, stderr, `"type":"node:emit"`)
	assert.Contains(t, stderr, `"graph":"Calculator.Max"`)

	_, stderr, err = run(t, "translate", "--debug-trace", "text", file)
	require.NoError(t, err)
	assert.Contains(t, stderr, "Calculator.Max translated")

	_, _, err = run(t, "translate", "--debug-trace", "xml", file)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown debug trace format")
}
