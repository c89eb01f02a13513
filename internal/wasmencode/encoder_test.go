package wasmencode

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucidlang/lucidc/internal/ir"
	"github.com/lucidlang/lucidc/internal/wasm"
)

func TestEncodeStartsWithMagicAndVersion(t *testing.T) {
	mod, err := wasm.Generate(&ir.Program{Expr: &ir.Int{Value: 1}})
	require.NoError(t, err)

	out, err := Encode(mod)
	require.NoError(t, err)

	require.True(t, len(out) >= 8)
	assert.Equal(t, []byte{0x00, 0x61, 0x73, 0x6D}, out[0:4])
	assert.Equal(t, []byte{0x01, 0x00, 0x00, 0x00}, out[4:8])
}

func TestEncodeIncludesEverySection(t *testing.T) {
	mod, err := wasm.Generate(&ir.Program{Expr: &ir.Int{Value: 1}})
	require.NoError(t, err)

	out, err := Encode(mod)
	require.NoError(t, err)

	ids := map[byte]bool{}
	i := 8
	for i < len(out) {
		id := out[i]
		i++
		n, size := readLEB128UForTest(out[i:])
		i += size
		ids[id] = true
		i += int(n)
	}
	for _, want := range []byte{sectionType, sectionFunction, sectionTable, sectionMemory, sectionGlobal, sectionExport, sectionElement, sectionCode} {
		assert.True(t, ids[want], "expected section %d present", want)
	}
}

// readLEB128UForTest mirrors writeLEB128U's encoding for the section-length
// prefix, used here only to walk the encoded module without re-decoding
// every instruction.
func readLEB128UForTest(b []byte) (uint64, int) {
	var result uint64
	var shift uint
	var n int
	for {
		byt := b[n]
		result |= uint64(byt&0x7F) << shift
		n++
		if byt&0x80 == 0 {
			break
		}
		shift += 7
	}
	return result, n
}

func TestWriteLEB128UEncodesKnownValues(t *testing.T) {
	var buf bytes.Buffer
	writeLEB128U(&buf, 624485)
	assert.Equal(t, []byte{0xE5, 0x8E, 0x26}, buf.Bytes())
}

func TestWriteLEB128SEncodesNegativeValues(t *testing.T) {
	var buf bytes.Buffer
	writeLEB128S(&buf, -123456)
	decoded := decodeLEB128SForTest(buf.Bytes())
	assert.EqualValues(t, -123456, decoded)
}

// decodeLEB128SForTest is a minimal signed-LEB128 decoder used only to
// round-trip writeLEB128S's output in tests.
func decodeLEB128SForTest(b []byte) int64 {
	var result int64
	var shift uint
	var n int
	var byt byte
	for {
		byt = b[n]
		result |= int64(byt&0x7F) << shift
		shift += 7
		n++
		if byt&0x80 == 0 {
			break
		}
	}
	if shift < 64 && byt&0x40 != 0 {
		result |= -1 << shift
	}
	return result
}
