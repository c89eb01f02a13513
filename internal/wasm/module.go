// Package wasm builds a structured representation of a WebAssembly module
// from lowered IR (internal/ir), without encoding it to bytes itself - that
// final serialization step belongs to internal/wasmencode, mirroring
// spec.md section 6's split between "the core" and its external
// collaborators. The generator-struct shape (append-only registries,
// signature-deduplicated type table) is grounded on the reference WASM
// backend retrieved alongside this pack's examples
// (other_examples/0938f648_lhaig-intent__internal-wasmbe-wasmbe.go.go);
// the instruction set itself is authored directly from the WebAssembly core
// binary-format spec, since that reference excerpt uses opcode/section
// constants it does not itself define.
package wasm

// ValType is a WASM value type. Every value in this backend is a boxed i32
// (spec.md section 4.7); the type is kept as its own type for readability
// and in case a future extension needs a second value type.
type ValType byte

const ValI32 ValType = 0x7F

// FuncType is a WASM function signature.
type FuncType struct {
	Params  []ValType
	Results []ValType
}

func (t FuncType) key() string {
	b := make([]byte, 0, len(t.Params)+len(t.Results)+1)
	for _, p := range t.Params {
		b = append(b, byte(p))
	}
	b = append(b, '>')
	for _, r := range t.Results {
		b = append(b, byte(r))
	}
	return string(b)
}

// Function is one WASM function: its signature (by index into Module.Types),
// its locals beyond its parameters, and its body.
type Function struct {
	Name       string
	TypeIndex  uint32
	NumParams  int
	Locals     []ValType
	Body       []Instr
	Exported   bool
	InTable    bool // registered as a call_indirect target
}

// Global is a mutable or immutable i32 global.
type Global struct {
	Mutable bool
	Init    int32
}

// Export names one function for the host embedder.
type Export struct {
	Name      string
	FuncIndex uint32
}

// Memory is the module's single linear memory, sized in 64KiB pages.
type Memory struct {
	MinPages uint32
}

// Module is the structured WASM program internal/wasm builds and
// internal/wasmencode serializes.
type Module struct {
	Types     []FuncType
	Functions []Function
	Globals   []Global
	Memory    Memory
	// Elements lists function indices in the order they populate table slot
	// 0, 1, 2, ... - a table-callable Function's code pointer (spec.md
	// section 4.7's closure/pack layouts) is its position in this slice.
	Elements []uint32
	Exports  []Export
}
