package repl

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvalLinePrintsPrincipalType(t *testing.T) {
	r := New("test")
	var out bytes.Buffer
	r.evalLine("let id = \\x. x in id 1", &out)
	assert.Contains(t, out.String(), "Int")
}

func TestEvalLineReportsTypeError(t *testing.T) {
	r := New("test")
	var out bytes.Buffer
	r.evalLine("if 1 then 1 else 2", &out)
	assert.Contains(t, out.String(), "error")
}

func TestEvalLineReportsParseError(t *testing.T) {
	r := New("test")
	var out bytes.Buffer
	r.evalLine("let x =", &out)
	assert.Contains(t, out.String(), "error")
}

func TestEvalLinePersistsConstructorTagsAcrossLines(t *testing.T) {
	r := New("test")
	var out bytes.Buffer
	r.evalLine("type Box<a> { Box(a) }\n1", &out)
	out.Reset()
	r.evalLine("match Box::Box(1) { Box::Box(n) -> n }", &out)
	assert.Contains(t, out.String(), "Int")
	assert.NotContains(t, out.String(), "error")
}

func TestHandleCommandHistoryListsPriorInput(t *testing.T) {
	r := New("test")
	r.history = append(r.history, "1", "2")
	var out bytes.Buffer
	r.handleCommand(":history", &out)
	assert.Contains(t, out.String(), "1")
	assert.Contains(t, out.String(), "2")
}

func TestHandleCommandClearResetsSession(t *testing.T) {
	r := New("test")
	var out bytes.Buffer
	r.evalLine("type Box<a> { Box(a) }\n1", &out)
	r.handleCommand(":clear", &out)
	out.Reset()
	r.evalLine("match Box::Box(1) { Box::Box(n) -> n }", &out)
	assert.Contains(t, out.String(), "error")
}

func TestHandleCommandUnknownReportsError(t *testing.T) {
	r := New("test")
	var out bytes.Buffer
	r.handleCommand(":bogus", &out)
	assert.Contains(t, out.String(), "unknown command")
}

func TestNewDefaultsVersionToDev(t *testing.T) {
	r := New("")
	require.Equal(t, "dev", r.version)
}
