package report

// Error codes, grouped by phase. Mirrors the phase-prefixed taxonomy the
// teacher uses (PAR###, MOD###, LDR###, ...) scaled down to this compiler's
// three fallible phases: parsing, type checking and code generation.
const (
	PhaseTypecheck = "typecheck"
	PhaseCodegen   = "codegen"
	PhaseParse     = "parse"

	// TYP001: reference to an unbound variable during inference.
	TYP001UnknownVariable = "TYP001"
	// TYP002: reference to an undeclared ADT name.
	TYP002UnknownType = "TYP002"
	// TYP003: reference to a constructor not declared on the named ADT.
	TYP003UnknownConstructor = "TYP003"
	// TYP004: occurs-check failure during unification.
	TYP004OccursCheck = "TYP004"
	// TYP005: structural unification mismatch.
	TYP005UnifyMismatch = "TYP005"

	// COD001: a Bound locally-nameless index reached code generation.
	COD001InternalBound = "COD001"

	// PAR001: surface syntax error from the lexer/parser.
	PAR001Syntax = "PAR001"
)
