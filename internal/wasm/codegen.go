package wasm

import (
	"fmt"

	"github.com/lucidlang/lucidc/internal/ir"
)

// Codegen turns a lowered ir.Program into a Module. One Codegen is used per
// compilation; it is not safe for concurrent use (spec.md section 5 scopes
// compilation to a single goroutine per invocation, matching the teacher's
// internal/wasmbe generator).
type Codegen struct {
	prog *ir.Program

	types     []FuncType
	typeIndex map[string]int

	functions []Function
	funcIndex map[string]uint32 // by the table-callable name, e.g. "add", "fib_<uuid>", "main"
	innerIndex map[string]uint32 // by "<name>$inner"
	declArity  map[string]int

	elements        []uint32
	watermarkGlobal uint32
	argVecSigIndex  uint32
}

// mainDeclName is the synthetic zero-argument declaration wrapping the
// program's residual expression, so the top-level expression is emitted and
// exported through exactly the same two-function convention as every other
// declaration (spec.md section 6's "exported entry a host would call").
const mainDeclName = "main"

// Generate builds the Module for prog.
func Generate(prog *ir.Program) (*Module, error) {
	cg := &Codegen{
		prog:       prog,
		typeIndex:  map[string]int{},
		funcIndex:  map[string]uint32{},
		innerIndex: map[string]uint32{},
		declArity:  map[string]int{},
	}
	return cg.generate()
}

func (cg *Codegen) generate() (*Module, error) {
	// Global 0: the bump-allocator watermark (spec.md section 4.7).
	cg.watermarkGlobal = 0

	sigArgVec := cg.registerType(FuncType{Params: []ValType{ValI32}, Results: []ValType{ValI32}})
	cg.argVecSigIndex = uint32(sigArgVec)

	allDecls := make([]ir.Declaration, 0, len(cg.prog.Declarations)+1)
	allDecls = append(allDecls, cg.prog.Declarations...)
	allDecls = append(allDecls, ir.Declaration{Name: mainDeclName, Arguments: nil, Body: cg.prog.Expr})

	// Phase 1: reserve every function's index (runtime primitives, then
	// every declaration's $inner/trampoline pair) before any body is
	// generated, so calls to not-yet-emitted functions - including a
	// declaration's own direct self-recursive call - resolve correctly.
	cg.reserveRuntimeFunctions()
	for _, d := range allDecls {
		cg.reserveDeclaration(d)
	}

	// Phase 2: fill in bodies.
	cg.fillRuntimeFunctions()
	for _, d := range allDecls {
		if err := cg.fillDeclaration(d); err != nil {
			return nil, fmt.Errorf("wasm: generating %q: %w", d.Name, err)
		}
	}

	exports := make([]Export, 0, len(cg.functions))
	for i, fn := range cg.functions {
		if fn.Exported {
			exports = append(exports, Export{Name: fn.Name, FuncIndex: uint32(i)})
		}
	}

	return &Module{
		Types:     cg.types,
		Functions: cg.functions,
		Globals:   []Global{{Mutable: true, Init: 0}},
		Memory:    Memory{MinPages: 16},
		Elements:  cg.elements,
		Exports:   exports,
	}, nil
}

func (cg *Codegen) registerType(t FuncType) int {
	if idx, ok := cg.typeIndex[t.key()]; ok {
		return idx
	}
	idx := len(cg.types)
	cg.types = append(cg.types, t)
	cg.typeIndex[t.key()] = idx
	return idx
}

// reserveFunction appends a placeholder Function (signature only) and
// returns its index.
func (cg *Codegen) reserveFunction(name string, sig FuncType, exported, inTable bool) uint32 {
	idx := uint32(len(cg.functions))
	cg.functions = append(cg.functions, Function{
		Name:      name,
		TypeIndex: uint32(cg.registerType(sig)),
		NumParams: len(sig.Params),
		Exported:  exported,
		InTable:   inTable,
	})
	if inTable {
		cg.elements = append(cg.elements, idx)
	}
	return idx
}

func i32Params(n int) []ValType {
	p := make([]ValType, n)
	for i := range p {
		p[i] = ValI32
	}
	return p
}

func (cg *Codegen) reserveRuntimeFunctions() {
	sigs := map[string]int{
		fnAllocate:       1,
		fnMakeClosure:    2,
		fnCopyClosure:    1,
		fnApplyClosure:   2,
		fnMakePack:       2,
		fnWritePackField: 3,
		fnReadPackField:  2,
		fnReadPackTag:    1,
	}
	// Deterministic order so the generated module's function indices don't
	// depend on Go's (intentionally randomized) map iteration.
	order := []string{fnAllocate, fnMakeClosure, fnCopyClosure, fnApplyClosure, fnMakePack, fnWritePackField, fnReadPackField, fnReadPackTag}
	for _, name := range order {
		idx := cg.reserveFunction(name, FuncType{Params: i32Params(sigs[name]), Results: []ValType{ValI32}}, true, false)
		cg.funcIndex[name] = idx
	}
	for _, prim := range arithmeticPrimitives {
		cg.reserveArityTwoPrimitive(prim.name)
	}
}

// reserveArityTwoPrimitive reserves both the $inner(a,b)->i32 function and
// its (arg_ptr)->i32 table-callable trampoline, and records it in declArity
// so Application codegen can recognize a saturated call to it (spec.md
// section 4.7's direct-call optimization, applied uniformly to every
// two-argument declaration, not only user-written ones).
func (cg *Codegen) reserveArityTwoPrimitive(name string) {
	innerIdx := cg.reserveFunction(name+"$inner", FuncType{Params: i32Params(2), Results: []ValType{ValI32}}, false, false)
	cg.innerIndex[name] = innerIdx
	trampIdx := cg.reserveFunction(name, FuncType{Params: []ValType{ValI32}, Results: []ValType{ValI32}}, true, true)
	cg.funcIndex[name] = trampIdx
	cg.declArity[name] = 2
}

func (cg *Codegen) reserveDeclaration(d ir.Declaration) {
	arity := len(d.Arguments)
	innerIdx := cg.reserveFunction(d.Name+"$inner", FuncType{Params: i32Params(arity), Results: []ValType{ValI32}}, false, false)
	cg.innerIndex[d.Name] = innerIdx
	trampIdx := cg.reserveFunction(d.Name, FuncType{Params: []ValType{ValI32}, Results: []ValType{ValI32}}, true, true)
	cg.funcIndex[d.Name] = trampIdx
	cg.declArity[d.Name] = arity
}

func (cg *Codegen) fillRuntimeFunctions() {
	bodies := map[string][]Instr{
		fnAllocate:       cg.emitAllocate(),
		fnMakeClosure:    cg.emitMakeClosure(),
		fnCopyClosure:    cg.emitCopyClosure(),
		fnApplyClosure:   cg.emitApplyClosure(),
		fnMakePack:       cg.emitMakePack(),
		fnWritePackField: cg.emitWritePackField(),
		fnReadPackField:  cg.emitReadPackField(),
		fnReadPackTag:    cg.emitReadPackTag(),
	}
	locals := map[string][]ValType{
		fnAllocate:     {ValI32},
		fnMakeClosure:  {ValI32},
		fnCopyClosure:  {ValI32, ValI32, ValI32, ValI32},
		fnApplyClosure: {ValI32, ValI32, ValI32},
		fnMakePack:     {ValI32},
	}
	for name, body := range bodies {
		idx := cg.funcIndex[name]
		cg.functions[idx].Body = body
		cg.functions[idx].Locals = locals[name]
	}
	for _, prim := range arithmeticPrimitives {
		cg.fillTwoArgPrimitive(prim.name, prim.op)
	}
}

func (cg *Codegen) fillTwoArgPrimitive(name string, op Instr) {
	inner := cg.innerIndex[name]
	cg.functions[inner].Body = []Instr{LocalGet{0}, LocalGet{1}, op}

	tramp := cg.funcIndex[name]
	cg.functions[tramp].Body = []Instr{
		LocalGet{0}, I32Load{Offset: 0},
		LocalGet{0}, I32Load{Offset: 4},
		Call{inner},
	}
}

// frame is one codegen-time locally-nameless frame: the wasm local index
// holding each positional binder, mirroring internal/lower's frameEntry so
// Bound indices resolve identically on both sides of lowering.
type frame []uint32

func resolveLocal(scope []frame, index int) (uint32, error) {
	depth := 0
	for i := len(scope) - 1; i >= 0; i-- {
		f := scope[i]
		if index < depth+len(f) {
			return f[index-depth], nil
		}
		depth += len(f)
	}
	return 0, fmt.Errorf("wasm: unresolved bound index %d", index)
}

// builder accumulates a single function body's fresh locals beyond its
// parameters.
type builder struct {
	numParams int
	locals    []ValType
}

func (b *builder) fresh() uint32 {
	idx := uint32(b.numParams + len(b.locals))
	b.locals = append(b.locals, ValI32)
	return idx
}

func (cg *Codegen) fillDeclaration(d ir.Declaration) error {
	b := &builder{numParams: len(d.Arguments)}
	params := make([]uint32, len(d.Arguments))
	for i := range params {
		params[i] = uint32(i)
	}
	scope := []frame{frame(params)}

	body, err := cg.emit(b, scope, d.Body)
	if err != nil {
		return err
	}

	innerIdx := cg.innerIndex[d.Name]
	cg.functions[innerIdx].Body = body
	cg.functions[innerIdx].Locals = b.locals

	trampIdx := cg.funcIndex[d.Name]
	var tramp []Instr
	for i := range d.Arguments {
		tramp = append(tramp, LocalGet{0}, I32Load{Offset: uint32(4 * i)})
	}
	tramp = append(tramp, Call{innerIdx})
	cg.functions[trampIdx].Body = tramp
	return nil
}

// emit lowers one ir.Expr to the instruction sequence leaving exactly one
// i32 value on the stack.
func (cg *Codegen) emit(b *builder, scope []frame, e ir.Expr) ([]Instr, error) {
	switch e := e.(type) {
	case *ir.Int:
		return []Instr{I32Const{e.Value}}, nil

	case *ir.Bool:
		v := int32(0)
		if e.Value {
			v = 1
		}
		return []Instr{I32Const{v}}, nil

	case *ir.GetLocal:
		return []Instr{LocalGet{uint32(e.Index)}}, nil

	case *ir.Var:
		return cg.emitVar(scope, e)

	case *ir.Application:
		return cg.emitApplication(b, scope, e)

	case *ir.If:
		return cg.emitIf(b, scope, e)

	case *ir.Let:
		return cg.emitLet(b, scope, e)

	case *ir.Match:
		return cg.emitMatch(b, scope, e)

	case *ir.Pack:
		return cg.emitPack(b, scope, e)

	default:
		return nil, fmt.Errorf("wasm: unhandled IR node %T", e)
	}
}

func (cg *Codegen) emitVar(scope []frame, v *ir.Var) ([]Instr, error) {
	switch n := v.Name.(type) {
	case ir.Bound:
		idx, err := resolveLocal(scope, n.Index)
		if err != nil {
			return nil, err
		}
		return []Instr{LocalGet{idx}}, nil

	case ir.Free:
		// A bare, unapplied reference to a top-level declaration: build a
		// fresh zero-applied closure value over it (spec.md section 4.7's
		// make_closure). This is how a captured-nothing lambda or letrec
		// value flows into a Let binding before anything applies it.
		arity, ok := cg.declArity[n.Name]
		if !ok {
			return nil, fmt.Errorf("wasm: reference to unknown declaration %q", n.Name)
		}
		tableIdx, err := cg.tablePosition(n.Name)
		if err != nil {
			return nil, err
		}
		return []Instr{
			I32Const{int32(arity)},
			I32Const{int32(tableIdx)},
			Call{cg.funcIndex[fnMakeClosure]},
		}, nil

	default:
		return nil, fmt.Errorf("wasm: unhandled locally-nameless name %T", n)
	}
}

// tablePosition returns name's position within Elements, which doubles as
// its call_indirect code_ptr (spec.md section 4.7).
func (cg *Codegen) tablePosition(name string) (int, error) {
	target := cg.funcIndex[name]
	for pos, funcIdx := range cg.elements {
		if funcIdx == target {
			return pos, nil
		}
	}
	return 0, fmt.Errorf("wasm: %q is not registered in the function table", name)
}

// unfoldApplication flattens a left-leaning Application chain (f a b c) into
// its head and its arguments in left-to-right order.
func unfoldApplication(e ir.Expr) (ir.Expr, []ir.Expr) {
	var args []ir.Expr
	for {
		app, ok := e.(*ir.Application)
		if !ok {
			break
		}
		args = append(args, app.Arg)
		e = app.Func
	}
	for i, j := 0, len(args)-1; i < j; i, j = i+1, j-1 {
		args[i], args[j] = args[j], args[i]
	}
	return e, args
}

func (cg *Codegen) emitApplication(b *builder, scope []frame, top *ir.Application) ([]Instr, error) {
	head, args := unfoldApplication(top)

	if v, ok := head.(*ir.Var); ok {
		if free, ok := v.Name.(ir.Free); ok {
			if arity, known := cg.declArity[free.Name]; known && arity == len(args) {
				var out []Instr
				for _, a := range args {
					ai, err := cg.emit(b, scope, a)
					if err != nil {
						return nil, err
					}
					out = append(out, ai...)
				}
				out = append(out, Call{cg.innerIndex[free.Name]})
				return out, nil
			}
		}
	}

	headInstrs, err := cg.emit(b, scope, head)
	if err != nil {
		return nil, err
	}
	closureLocal := b.fresh()
	out := append(headInstrs, LocalSet{closureLocal})

	for _, a := range args {
		argInstrs, err := cg.emit(b, scope, a)
		if err != nil {
			return nil, err
		}
		argLocal := b.fresh()
		out = append(out, argInstrs...)
		out = append(out, LocalSet{argLocal})
		out = append(out, LocalGet{closureLocal}, LocalGet{argLocal}, Call{cg.funcIndex[fnApplyClosure]})
		out = append(out, LocalSet{closureLocal})
	}
	out = append(out, LocalGet{closureLocal})
	return out, nil
}

func (cg *Codegen) emitIf(b *builder, scope []frame, e *ir.If) ([]Instr, error) {
	cond, err := cg.emit(b, scope, e.Cond)
	if err != nil {
		return nil, err
	}
	then, err := cg.emit(b, scope, e.Then)
	if err != nil {
		return nil, err
	}
	els, err := cg.emit(b, scope, e.Else)
	if err != nil {
		return nil, err
	}
	out := append([]Instr{}, cond...)
	out = append(out, If{HasResult: true, Result: ValI32, Then: then, Else: els})
	return out, nil
}

func (cg *Codegen) emitLet(b *builder, scope []frame, e *ir.Let) ([]Instr, error) {
	val, err := cg.emit(b, scope, e.Value)
	if err != nil {
		return nil, err
	}
	slot := b.fresh()
	innerScope := append(append([]frame{}, scope...), frame{slot})
	body, err := cg.emit(b, innerScope, e.Body)
	if err != nil {
		return nil, err
	}
	out := append(append([]Instr{}, val...), LocalSet{slot})
	return append(out, body...), nil
}

// emitPack builds a Pack value: evaluate every field into a fresh local
// first (so construction order is independent of wasm stack discipline),
// allocate the record via make_pack, then write each field.
func (cg *Codegen) emitPack(b *builder, scope []frame, e *ir.Pack) ([]Instr, error) {
	var out []Instr
	fieldLocals := make([]uint32, len(e.Values))
	for i, v := range e.Values {
		vi, err := cg.emit(b, scope, v)
		if err != nil {
			return nil, err
		}
		local := b.fresh()
		fieldLocals[i] = local
		out = append(out, vi...)
		out = append(out, LocalSet{local})
	}

	packLocal := b.fresh()
	out = append(out,
		I32Const{int32(e.Tag)},
		I32Const{int32(len(e.Values))},
		Call{cg.funcIndex[fnMakePack]},
		LocalSet{packLocal},
	)
	for i, local := range fieldLocals {
		out = append(out,
			LocalGet{packLocal},
			I32Const{int32(i)},
			LocalGet{local},
			Call{cg.funcIndex[fnWritePackField]},
			Drop{},
		)
	}
	out = append(out, LocalGet{packLocal})
	return out, nil
}

// emitMatch evaluates the scrutinee once, reads its runtime tag, and
// dispatches to the matching case via a chained If/Else - each arm's
// pattern-declared field locals are populated from the pack's fields
// immediately before its body runs. A scrutinee whose tag matches no case
// falls through to unreachable (spec.md section 4.6's non-exhaustive-match
// behavior; see DESIGN.md).
func (cg *Codegen) emitMatch(b *builder, scope []frame, e *ir.Match) ([]Instr, error) {
	scrut, err := cg.emit(b, scope, e.Scrutinee)
	if err != nil {
		return nil, err
	}
	scrutLocal := b.fresh()
	out := append(append([]Instr{}, scrut...), LocalSet{scrutLocal})

	tagLocal := b.fresh()
	out = append(out, LocalGet{scrutLocal}, Call{cg.funcIndex[fnReadPackTag]}, LocalSet{tagLocal})

	chain, err := cg.emitCaseChain(b, scope, scrutLocal, tagLocal, e.Cases)
	if err != nil {
		return nil, err
	}
	return append(out, chain...), nil
}

func (cg *Codegen) emitCaseChain(b *builder, scope []frame, scrutLocal, tagLocal uint32, cases []ir.Case) ([]Instr, error) {
	if len(cases) == 0 {
		return []Instr{Unreachable{}}, nil
	}
	c := cases[0]

	var binderLocals []uint32
	loadFields := []Instr{}
	for i := 0; i < c.Binders; i++ {
		local := b.fresh()
		binderLocals = append(binderLocals, local)
		loadFields = append(loadFields,
			LocalGet{scrutLocal},
			I32Const{int32(i)},
			Call{cg.funcIndex[fnReadPackField]},
			LocalSet{local},
		)
	}
	innerScope := append(append([]frame{}, scope...), frame(binderLocals))
	body, err := cg.emit(b, innerScope, c.Body)
	if err != nil {
		return nil, err
	}
	then := append(loadFields, body...)

	els, err := cg.emitCaseChain(b, scope, scrutLocal, tagLocal, cases[1:])
	if err != nil {
		return nil, err
	}

	return []Instr{
		LocalGet{tagLocal},
		I32Const{int32(c.Tag)},
		I32Eq{},
		If{HasResult: true, Result: ValI32, Then: then, Else: els},
	}, nil
}
