package wasm

// Runtime primitive names, fixed across every generated module (spec.md
// section 4.7). Arithmetic primitives are registered exactly like any
// user-level declaration (two-arg functions dispatched by name), which lets
// the same direct-call optimization that recognizes a saturated
// self-recursive call also recognize a saturated call to add/sub/div/eq_int
// instead of boxing them through a closure.
const (
	fnAllocate       = "allocate"
	fnMakeClosure    = "make_closure"
	fnCopyClosure    = "copy_closure"
	fnApplyClosure   = "apply_closure"
	fnMakePack       = "make_pack"
	fnWritePackField = "write_pack_field"
	fnReadPackField  = "read_pack_field"
	fnReadPackTag    = "read_pack_tag"
	fnAdd            = "add"
	fnSub            = "sub"
	fnDiv            = "div"
	fnEqInt          = "eq_int"
)

// closureHeaderBytes is |arity:i16|applied:i16|code_ptr:i32|; packHeaderBytes
// is |tag:i16|arity:i16| (spec.md section 4.7).
const (
	closureHeaderBytes = 8
	packHeaderBytes    = 4
)

// arithmeticPrimitives lists the two-arg arithmetic/comparison runtime
// builtins and the single instruction implementing each one's $inner body.
var arithmeticPrimitives = []struct {
	name string
	op   Instr
}{
	{fnAdd, I32Add{}},
	{fnSub, I32Sub{}},
	{fnDiv, I32DivS{}},
	{fnEqInt, I32Eq{}},
}

// emitAllocate builds allocate(bytes i32) -> i32: bump the watermark global
// by bytes and return its prior value.
func (cg *Codegen) emitAllocate() []Instr {
	ptr := uint32(1) // local 1: params occupy local 0 (bytes)
	return []Instr{
		GlobalGet{cg.watermarkGlobal},
		LocalSet{ptr},
		LocalGet{ptr},
		LocalGet{0},
		I32Add{},
		GlobalSet{cg.watermarkGlobal},
		LocalGet{ptr},
	}
}

// emitMakeClosure builds make_closure(arity i32, code_ptr i32) -> i32:
// allocate a closure record with applied=0 and the given code_ptr.
func (cg *Codegen) emitMakeClosure() []Instr {
	const arityParam, codePtrParam = 0, 1
	const ptr = 2
	return []Instr{
		LocalGet{arityParam},
		I32Const{4},
		I32Mul{},
		I32Const{closureHeaderBytes},
		I32Add{},
		Call{cg.funcIndex[fnAllocate]},
		LocalSet{ptr},

		LocalGet{ptr},
		LocalGet{arityParam},
		I32Store16{Offset: 0},

		LocalGet{ptr},
		I32Const{0},
		I32Store16{Offset: 2},

		LocalGet{ptr},
		LocalGet{codePtrParam},
		I32Store{Offset: 4},

		LocalGet{ptr},
	}
}

// emitCopyClosure builds copy_closure(ptr i32) -> i32: allocate a fresh
// record of the same arity and copy every header-plus-argument word across,
// word by word, since the word count is a runtime value (the closure's
// arity). Grounded on the while-loop idiom (block/loop/br_if) used for
// bounded iteration in the retrieved WASM backend reference.
func (cg *Codegen) emitCopyClosure() []Instr {
	const src = 0
	const arity, newPtr, wordCount, i = 1, 2, 3, 4

	return []Instr{
		LocalGet{src},
		I32Load16U{Offset: 0},
		LocalSet{arity},

		LocalGet{arity},
		I32Const{2}, // header is 2 words (arity/applied packed word + code_ptr word)
		I32Add{},
		LocalSet{wordCount},

		LocalGet{wordCount},
		I32Const{4},
		I32Mul{},
		Call{cg.funcIndex[fnAllocate]},
		LocalSet{newPtr},

		I32Const{0},
		LocalSet{i},

		Block{Body: []Instr{
			Loop{Body: []Instr{
				LocalGet{i},
				LocalGet{wordCount},
				I32GeS{},
				BrIf{Depth: 1},

				// newPtr[i*4] = src[i*4]
				LocalGet{newPtr},
				LocalGet{i},
				I32Const{4},
				I32Mul{},
				I32Add{},
				LocalGet{src},
				LocalGet{i},
				I32Const{4},
				I32Mul{},
				I32Add{},
				I32Load{Offset: 0},
				I32Store{Offset: 0},

				LocalGet{i},
				I32Const{1},
				I32Add{},
				LocalSet{i},

				Br{Depth: 0},
			}},
		}},

		LocalGet{newPtr},
	}
}

// emitApplyClosure builds apply_closure(closure i32, arg i32) -> i32: copy
// the closure (closures are immutable values; applying one must not mutate
// a shared record), write arg into its next free argument slot, and either
// return the now-more-applied closure or, once every slot is filled,
// call_indirect through its code_ptr.
func (cg *Codegen) emitApplyClosure() []Instr {
	const closureParam, argParam = 0, 1
	const copy, arity, applied = 2, 3, 4

	return []Instr{
		LocalGet{closureParam},
		Call{cg.funcIndex[fnCopyClosure]},
		LocalSet{copy},

		LocalGet{copy},
		I32Load16U{Offset: 0},
		LocalSet{arity},

		LocalGet{copy},
		I32Load16U{Offset: 2},
		LocalSet{applied},

		// copy[8 + 4*applied] = arg
		LocalGet{copy},
		LocalGet{applied},
		I32Const{4},
		I32Mul{},
		I32Const{closureHeaderBytes},
		I32Add{},
		I32Add{},
		LocalGet{argParam},
		I32Store{Offset: 0},

		LocalGet{applied},
		I32Const{1},
		I32Add{},
		LocalGet{arity},
		I32LtS{},
		If{HasResult: true, Result: ValI32, Then: []Instr{
			LocalGet{copy},
			LocalGet{applied},
			I32Const{1},
			I32Add{},
			I32Store16{Offset: 2},
			LocalGet{copy},
		}, Else: []Instr{
			LocalGet{copy},
			I32Const{closureHeaderBytes},
			I32Add{},
			LocalGet{copy},
			I32Load{Offset: 4},
			CallIndirect{TypeIndex: cg.argVecSigIndex},
		}},
	}
}

// emitMakePack builds make_pack(tag i32, arity i32) -> i32: allocate a pack
// record and write its header; fields are filled in afterward by
// write_pack_field calls (spec.md section 4.7).
func (cg *Codegen) emitMakePack() []Instr {
	const tag, arityParam = 0, 1
	const ptr = 2
	return []Instr{
		LocalGet{arityParam},
		I32Const{4},
		I32Mul{},
		I32Const{packHeaderBytes},
		I32Add{},
		Call{cg.funcIndex[fnAllocate]},
		LocalSet{ptr},

		LocalGet{ptr},
		LocalGet{tag},
		I32Store16{Offset: 0},

		LocalGet{ptr},
		LocalGet{arityParam},
		I32Store16{Offset: 2},

		LocalGet{ptr},
	}
}

// emitWritePackField builds write_pack_field(ptr, index, value) -> i32,
// returning value back (so callers that don't need the result simply Drop
// it, keeping every runtime primitive uniformly i32-returning).
func (cg *Codegen) emitWritePackField() []Instr {
	const ptr, index, value = 0, 1, 2
	return []Instr{
		LocalGet{ptr},
		LocalGet{index},
		I32Const{4},
		I32Mul{},
		I32Const{packHeaderBytes},
		I32Add{},
		I32Add{},
		LocalGet{value},
		I32Store{Offset: 0},
		LocalGet{value},
	}
}

// emitReadPackField builds read_pack_field(ptr, index) -> i32.
func (cg *Codegen) emitReadPackField() []Instr {
	const ptr, index = 0, 1
	return []Instr{
		LocalGet{ptr},
		LocalGet{index},
		I32Const{4},
		I32Mul{},
		I32Const{packHeaderBytes},
		I32Add{},
		I32Add{},
		I32Load{Offset: 0},
	}
}

// emitReadPackTag builds read_pack_tag(ptr) -> i32.
func (cg *Codegen) emitReadPackTag() []Instr {
	const ptr = 0
	return []Instr{
		LocalGet{ptr},
		I32Load16U{Offset: 0},
	}
}
