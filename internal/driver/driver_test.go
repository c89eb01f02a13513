package driver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckInfersIdentityScheme(t *testing.T) {
	res, err := Check([]byte("let id = \\x. x in id 1"), "t.lucid")
	require.NoError(t, err)
	assert.NotNil(t, res.Type)
}

func TestCheckReportsUnifyMismatch(t *testing.T) {
	_, err := Check([]byte("if 1 then 1 else 2"), "t.lucid")
	require.Error(t, err)
}

func TestBuildProducesWasmMagic(t *testing.T) {
	out, err := Build([]byte("1"), "t.lucid")
	require.NoError(t, err)
	require.True(t, len(out) >= 4)
	assert.Equal(t, []byte{0x00, 0x61, 0x73, 0x6D}, out[0:4])
}

func TestBuildFibonacci(t *testing.T) {
	src := "let rec fib = \\x. if eq_int x 1 then 1 else if eq_int x 2 then 1 else " +
		"add (fib (sub x 1)) (fib (sub x 2)) in fib 10"
	out, err := Build([]byte(src), "t.lucid")
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestValidateRejectsIllTypedProgram(t *testing.T) {
	_, _, err := Validate([]byte("\\x. x x"), "t.lucid")
	require.Error(t, err)
}
