// Package opcodes defines the bytecode instruction set executed by the
// virtual machine: the Opcode enumeration and the fixed-width Instruction
// operand struct the dispatch loop decodes.
package opcodes

import "fmt"

// Opcode identifies a single bytecode instruction.
type Opcode byte

// Data movement & literals (0-19)
const (
	OP_NOP Opcode = iota

	OP_LOAD_LITERAL               // Dst = Constants[Src1]
	OP_MOVE                       // Dst = regs[Src1]
	OP_GET_PARAMETER               // Dst = argv[Src1]
	OP_BINDING_CALLEE              // Dst = the callee function object of the current frame
	OP_LOAD_THIS                   // Dst = this binding
	OP_LOAD_REGEXP                 // Dst = new RegExp from Constants[Src1]
	OP_CREATE_OBJECT                // Dst = new plain object
	OP_CREATE_ARRAY                  // Dst = new fast-mode array, Src1 = initial length hint
	OP_CREATE_FUNCTION                // Dst = new function object bound to CodeBlock Constants[Src1]
	OP_CREATE_SPREAD_ARRAY_OBJECT       // Dst = array materialized from a spread source in regs[Src1]
	OP_CREATE_REST_ELEMENT               // Dst = array of remaining iterator values (rest binding)
)

// Arithmetic, binary (20-34)
const (
	OP_ADD Opcode = iota + 20
	OP_SUB
	OP_MUL
	OP_DIV
	OP_MOD
	OP_EXP // **
	OP_BW_AND
	OP_BW_OR
	OP_BW_XOR
	OP_SHL // <<
	OP_SAR // >> (signed)
	OP_SHR // >>> (unsigned)
)

// Arithmetic, unary (35-49)
const (
	OP_NEG Opcode = iota + 35 // unary -
	OP_UPLUS                 // unary +
	OP_NOT                    // !
	OP_BW_NOT                 // ~
	OP_TYPEOF
	OP_DELETE
	OP_TO_NUMBER
	OP_TO_NUMERIC_INC // ToNumeric step of ++ (pre/post split by result wiring)
	OP_TO_NUMERIC_DEC
	OP_INC
	OP_DEC
)

// Comparison (50-64)
const (
	OP_EQ Opcode = iota + 50
	OP_NEQ
	OP_STRICT_EQ
	OP_STRICT_NEQ
	OP_LT
	OP_LTE
	OP_GT
	OP_GTE
	OP_IN
	OP_INSTANCEOF
)

// Property access (65-84)
const (
	OP_GET_OBJECT Opcode = iota + 65 // generic, uncached Get
	OP_SET_OBJECT                    // generic, uncached Set
	OP_GET_OBJECT_PRECOMPUTED        // IC-backed Get by precomputed name (§4.3)
	OP_SET_OBJECT_PRECOMPUTED        // IC-backed Set by precomputed name (§4.3)
	OP_DEFINE_OWN_PROPERTY
	OP_DEFINE_OWN_PROPERTY_WITH_NAME
	OP_DEFINE_GETTER_SETTER
	OP_ARRAY_DEFINE_OWN_PROPERTY
	OP_ARRAY_DEFINE_OWN_PROPERTY_SPREAD
	OP_COMPLEX_GET_OBJECT // super / private-member get
	OP_COMPLEX_SET_OBJECT // super / private-member set
	OP_GET_METHOD
)

// Variable access (85-104)
const (
	OP_GET_GLOBAL_VAR Opcode = iota + 85
	OP_SET_GLOBAL_VAR
	OP_INIT_GLOBAL_VAR
	OP_LOAD_BY_NAME
	OP_STORE_BY_NAME
	OP_INIT_BY_NAME
	OP_LOAD_BY_HEAP_INDEX
	OP_STORE_BY_HEAP_INDEX
	OP_INIT_BY_HEAP_INDEX
	OP_RESOLVE_NAME_ADDRESS
	OP_STORE_BY_NAME_WITH_ADDRESS
)

// Control flow (105-119)
const (
	OP_JMP Opcode = iota + 105
	OP_JMP_IF_TRUE
	OP_JMP_IF_FALSE
	OP_JMP_IF_EQUAL
	OP_JMP_IF_UNDEF_OR_NULL
	OP_JMP_IF_NOT_FULFILLED
	OP_JMP_COMPLEX_CASE // resolves a pending ControlFlowRecord (break/continue/return) (§4.6)
)

// Call / construct (120-139)
const (
	OP_CALL Opcode = iota + 120 // CallFunction
	OP_CALL_WITH_RECEIVER       // CallFunctionWithReceiver
	OP_CALL_COMPLEX             // CallFunctionComplexCase, see CallComplexKind for sub-kind
	OP_NEW                      // NewOperation
	OP_NEW_SPREAD               // NewOperationWithSpreadElement
	OP_SUPER_REFERENCE
	OP_META_PROPERTY // new.target / import.meta, see MetaPropertyKind
)

// Scope / block / exceptions (140-159)
const (
	OP_TRY Opcode = iota + 140 // TryOperation state machine entry, see §4.6
	OP_THROW
	OP_THROW_STATIC_ERROR // carries an error-kind code + message template, see registry.StaticErrorCode
	OP_CLOSE_LEX_ENV
	OP_OPEN_LEX_ENV
	OP_BLOCK
	OP_REPLACE_BLOCK_LEX_ENV
	OP_ENSURE_ARGUMENTS_OBJECT
	OP_RETURN_SLOW // ReturnFunctionSlowCase: return through pending finally blocks
	OP_RETURN      // direct return, no pending finally on the frame's control-flow stack
)

// Iteration (160-174)
const (
	OP_ITERATOR_OP Opcode = iota + 160 // see IteratorOpKind for sub-kind
	OP_BINDING_REST_ELEMENT
	OP_CREATE_ENUMERATE_OBJECT
	OP_CHECK_LAST_ENUMERATE_KEY
	OP_GET_ENUMERATE_KEY
	OP_MARK_ENUMERATE_KEY
)

// Template / class / async / debug (175-199)
const (
	OP_TEMPLATE Opcode = iota + 175
	OP_TAGGED_TEMPLATE
	OP_INITIALIZE_CLASS // see ClassInitStage for sub-kind
	OP_EXECUTION_PAUSE  // see PauseKind
	OP_EXECUTION_RESUME
	OP_END // produces the block's final value; fires the debugger End hook
	OP_BREAKPOINT_ENABLED
	OP_BREAKPOINT_DISABLED
)

// CallComplexKind distinguishes OP_CALL_COMPLEX sub-behaviors (§4.5).
type CallComplexKind byte

const (
	CallInWithScope CallComplexKind = iota
	CallMayBuiltinApply
	CallMayBuiltinEval
	CallWithSpreadElement
	CallSuper
	CallImport
)

// MetaPropertyKind distinguishes OP_META_PROPERTY sub-behaviors.
type MetaPropertyKind byte

const (
	MetaNewTarget MetaPropertyKind = iota
	MetaImportMeta
)

// IteratorOpKind distinguishes OP_ITERATOR_OP sub-behaviors (§4.1 "Iteration").
type IteratorOpKind byte

const (
	IterGetIterator IteratorOpKind = iota
	IterClose
	IterBind
	IterTestDone
	IterNext
	IterTestResultIsObject
	IterValue
	IterCheckOngoingExceptionOnAsyncClose
)

// ClassInitStage distinguishes the stages of the multi-stage OP_INITIALIZE_CLASS
// opcode (§4.8).
type ClassInitStage byte

const (
	ClassStageCreateClass ClassInitStage = iota
	ClassStageSetFieldSize
	ClassStageInitField
	ClassStageInitPrivateField
	ClassStageSetFieldData
	ClassStageSetPrivateFieldData
	ClassStageInitStaticField
	ClassStageInitStaticPrivateField
	ClassStageSetStaticFieldData
	ClassStageSetStaticPrivateFieldData
	ClassStageCleanupStaticData
)

// PauseKind distinguishes OP_EXECUTION_PAUSE sub-behaviors (§4.7).
type PauseKind byte

const (
	PauseYield PauseKind = iota
	PauseAwait
	PauseGeneratorsInitialize
)

// FieldKind tags a class field as a value, method, getter, or setter for the
// InitField/InitPrivateField class-init sub-stages.
type FieldKind byte

const (
	FieldValue FieldKind = iota
	FieldMethod
	FieldGetter
	FieldSetter
)

// Instruction is the fixed-size operand struct every opcode handler decodes
// at the current program counter (§3 "CodeBlock", §4.1 "Opcode handler
// contract"). Operands are register indices into the current frame's
// register file except where a specific opcode's doc comment above says
// otherwise (literal/name-table/heap index). Dst/Src1/Src2 carry those
// register or table indices; Jump carries an absolute instruction-index
// jump target, or an inline-cache slot index for IC-bearing opcodes.
type Instruction struct {
	Opcode  Opcode
	SubKind byte // opcode-specific sub-kind: CallComplexKind, IteratorOpKind, ClassInitStage, MetaPropertyKind, PauseKind
	Flags   byte // bit flags: optional-chain skip, strict-mode override, etc.
	_       byte // reserved, keeps the struct naturally aligned

	Dst  uint32
	Src1 uint32
	Src2 uint32
	Jump int32
}

// Instruction flag bits (Flags field).
const (
	FlagOptionalChain  byte = 1 << iota // OP_CALL_COMPLEX: skip the call if callee is null/undefined
	FlagStrictMode                      // frame executes in strict mode; affects throw-on-failure opcodes
	FlagIsTryResume                     // OP_TRY: this execution is a resume into the try region, not a fresh entry
	FlagIsCatchResume
	FlagIsFinallyResume
)

func (op Opcode) String() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return fmt.Sprintf("OP(%d)", byte(op))
}

func (inst *Instruction) String() string {
	return fmt.Sprintf("%s dst=%d src1=%d src2=%d jump=%d sub=%d", inst.Opcode, inst.Dst, inst.Src1, inst.Src2, inst.Jump, inst.SubKind)
}

var opcodeNames = map[Opcode]string{
	OP_NOP:                        "NOP",
	OP_LOAD_LITERAL:               "LOAD_LITERAL",
	OP_MOVE:                       "MOVE",
	OP_GET_PARAMETER:              "GET_PARAMETER",
	OP_BINDING_CALLEE:             "BINDING_CALLEE",
	OP_LOAD_THIS:                  "LOAD_THIS",
	OP_LOAD_REGEXP:                "LOAD_REGEXP",
	OP_CREATE_OBJECT:              "CREATE_OBJECT",
	OP_CREATE_ARRAY:               "CREATE_ARRAY",
	OP_CREATE_FUNCTION:            "CREATE_FUNCTION",
	OP_CREATE_SPREAD_ARRAY_OBJECT: "CREATE_SPREAD_ARRAY_OBJECT",
	OP_CREATE_REST_ELEMENT:        "CREATE_REST_ELEMENT",

	OP_ADD: "ADD", OP_SUB: "SUB", OP_MUL: "MUL", OP_DIV: "DIV", OP_MOD: "MOD", OP_EXP: "EXP",
	OP_BW_AND: "BW_AND", OP_BW_OR: "BW_OR", OP_BW_XOR: "BW_XOR",
	OP_SHL: "SHL", OP_SAR: "SAR", OP_SHR: "SHR",

	OP_NEG: "NEG", OP_UPLUS: "UPLUS", OP_NOT: "NOT", OP_BW_NOT: "BW_NOT", OP_TYPEOF: "TYPEOF",
	OP_DELETE: "DELETE", OP_TO_NUMBER: "TO_NUMBER",
	OP_TO_NUMERIC_INC: "TO_NUMERIC_INC", OP_TO_NUMERIC_DEC: "TO_NUMERIC_DEC",
	OP_INC: "INC", OP_DEC: "DEC",

	OP_EQ: "EQ", OP_NEQ: "NEQ", OP_STRICT_EQ: "STRICT_EQ", OP_STRICT_NEQ: "STRICT_NEQ",
	OP_LT: "LT", OP_LTE: "LTE", OP_GT: "GT", OP_GTE: "GTE", OP_IN: "IN", OP_INSTANCEOF: "INSTANCEOF",

	OP_GET_OBJECT: "GET_OBJECT", OP_SET_OBJECT: "SET_OBJECT",
	OP_GET_OBJECT_PRECOMPUTED: "GET_OBJECT_PRECOMPUTED", OP_SET_OBJECT_PRECOMPUTED: "SET_OBJECT_PRECOMPUTED",
	OP_DEFINE_OWN_PROPERTY: "DEFINE_OWN_PROPERTY", OP_DEFINE_OWN_PROPERTY_WITH_NAME: "DEFINE_OWN_PROPERTY_WITH_NAME",
	OP_DEFINE_GETTER_SETTER:             "DEFINE_GETTER_SETTER",
	OP_ARRAY_DEFINE_OWN_PROPERTY:        "ARRAY_DEFINE_OWN_PROPERTY",
	OP_ARRAY_DEFINE_OWN_PROPERTY_SPREAD: "ARRAY_DEFINE_OWN_PROPERTY_SPREAD",
	OP_COMPLEX_GET_OBJECT:               "COMPLEX_GET_OBJECT",
	OP_COMPLEX_SET_OBJECT:               "COMPLEX_SET_OBJECT",
	OP_GET_METHOD:                       "GET_METHOD",

	OP_GET_GLOBAL_VAR: "GET_GLOBAL_VAR", OP_SET_GLOBAL_VAR: "SET_GLOBAL_VAR", OP_INIT_GLOBAL_VAR: "INIT_GLOBAL_VAR",
	OP_LOAD_BY_NAME: "LOAD_BY_NAME", OP_STORE_BY_NAME: "STORE_BY_NAME", OP_INIT_BY_NAME: "INIT_BY_NAME",
	OP_LOAD_BY_HEAP_INDEX: "LOAD_BY_HEAP_INDEX", OP_STORE_BY_HEAP_INDEX: "STORE_BY_HEAP_INDEX", OP_INIT_BY_HEAP_INDEX: "INIT_BY_HEAP_INDEX",
	OP_RESOLVE_NAME_ADDRESS: "RESOLVE_NAME_ADDRESS", OP_STORE_BY_NAME_WITH_ADDRESS: "STORE_BY_NAME_WITH_ADDRESS",

	OP_JMP: "JMP", OP_JMP_IF_TRUE: "JMP_IF_TRUE", OP_JMP_IF_FALSE: "JMP_IF_FALSE",
	OP_JMP_IF_EQUAL: "JMP_IF_EQUAL", OP_JMP_IF_UNDEF_OR_NULL: "JMP_IF_UNDEF_OR_NULL",
	OP_JMP_IF_NOT_FULFILLED: "JMP_IF_NOT_FULFILLED", OP_JMP_COMPLEX_CASE: "JMP_COMPLEX_CASE",

	OP_CALL: "CALL", OP_CALL_WITH_RECEIVER: "CALL_WITH_RECEIVER", OP_CALL_COMPLEX: "CALL_COMPLEX",
	OP_NEW: "NEW", OP_NEW_SPREAD: "NEW_SPREAD", OP_SUPER_REFERENCE: "SUPER_REFERENCE", OP_META_PROPERTY: "META_PROPERTY",

	OP_TRY: "TRY", OP_THROW: "THROW", OP_THROW_STATIC_ERROR: "THROW_STATIC_ERROR",
	OP_CLOSE_LEX_ENV: "CLOSE_LEX_ENV", OP_OPEN_LEX_ENV: "OPEN_LEX_ENV", OP_BLOCK: "BLOCK",
	OP_REPLACE_BLOCK_LEX_ENV: "REPLACE_BLOCK_LEX_ENV", OP_ENSURE_ARGUMENTS_OBJECT: "ENSURE_ARGUMENTS_OBJECT",
	OP_RETURN_SLOW: "RETURN_SLOW", OP_RETURN: "RETURN",

	OP_ITERATOR_OP: "ITERATOR_OP", OP_BINDING_REST_ELEMENT: "BINDING_REST_ELEMENT",
	OP_CREATE_ENUMERATE_OBJECT: "CREATE_ENUMERATE_OBJECT", OP_CHECK_LAST_ENUMERATE_KEY: "CHECK_LAST_ENUMERATE_KEY",
	OP_GET_ENUMERATE_KEY: "GET_ENUMERATE_KEY", OP_MARK_ENUMERATE_KEY: "MARK_ENUMERATE_KEY",

	OP_TEMPLATE: "TEMPLATE", OP_TAGGED_TEMPLATE: "TAGGED_TEMPLATE", OP_INITIALIZE_CLASS: "INITIALIZE_CLASS",
	OP_EXECUTION_PAUSE: "EXECUTION_PAUSE", OP_EXECUTION_RESUME: "EXECUTION_RESUME", OP_END: "END",
	OP_BREAKPOINT_ENABLED: "BREAKPOINT_ENABLED", OP_BREAKPOINT_DISABLED: "BREAKPOINT_DISABLED",
}
