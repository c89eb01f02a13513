package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSource(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "t.lucid")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestCheckCmdPrintsInferredType(t *testing.T) {
	path := writeSource(t, "let id = \\x. x in id 1")
	cmd := newCheckCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{path})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Int")
}

func TestCheckCmdTraceTypesPrintsExpression(t *testing.T) {
	path := writeSource(t, "let id = \\x. x in id 1")
	cmd := newCheckCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--trace-types", path})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "let id = \\x. x in (id 1)")
}

func TestCheckCmdReportsTypeError(t *testing.T) {
	path := writeSource(t, "if 1 then 1 else 2")
	cmd := newCheckCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{path})
	assert.Error(t, cmd.Execute())
}

func TestBuildCmdWritesWasmFile(t *testing.T) {
	path := writeSource(t, "1")
	outPath := filepath.Join(t.TempDir(), "out.wasm")
	cmd := newBuildCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--out", outPath, path})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "wrote")

	bs, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x61, 0x73, 0x6D}, bs[0:4])
}

func TestBuildCmdDefaultsOutputNameFromInput(t *testing.T) {
	path := writeSource(t, "1")
	cmd := newBuildCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{path})
	require.NoError(t, cmd.Execute())

	defer os.Remove(outputName(path))
	_, err := os.Stat(outputName(path))
	require.NoError(t, err)
}

func TestBuildCmdEmitIRPrintsDeclarations(t *testing.T) {
	path := writeSource(t, "let rec fib = \\x. if eq_int x 1 then 1 else add (fib x) 1 in fib 2")
	outPath := filepath.Join(t.TempDir(), "out.wasm")
	cmd := newBuildCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--emit-ir", "--out", outPath, path})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "fib")
}

func TestRunCmdValidatesWithoutExecuting(t *testing.T) {
	path := writeSource(t, "1")
	cmd := newRunCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{path})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "functions")
	assert.Contains(t, out.String(), "main")
}

func TestRunCmdRejectsIllTypedProgram(t *testing.T) {
	path := writeSource(t, "\\x. x x")
	cmd := newRunCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{path})
	assert.Error(t, cmd.Execute())
}

func TestOutputNameReplacesExtension(t *testing.T) {
	assert.Equal(t, "foo.wasm", outputName("foo.lucid"))
	assert.Equal(t, "a/b/foo.wasm", outputName("a/b/foo.lucid"))
	assert.Equal(t, "noext.wasm", outputName("noext"))
}

func TestRootCmdRegistersAllSubcommands(t *testing.T) {
	root := newRootCmd()
	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"check", "build", "run", "repl"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}
