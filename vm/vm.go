package vm

import (
	"github.com/wudi/escargot-core/env"
	"github.com/wudi/escargot-core/opcodes"
	"github.com/wudi/escargot-core/registry"
	"github.com/wudi/escargot-core/values"
)

// DebugLevel is the diagnostic verbosity stored on the VM (set from
// cmd/jsvm's --debug-level flag or the config file), the same knob the
// teacher's VM exposes for opt-in profiling verbosity. No opcode handler in
// this package reads it; execBreakpointEnabled records the same note at
// every level.
type DebugLevel int

const (
	DebugLevelNone DebugLevel = iota
	DebugLevelBasic
	DebugLevelDetailed
)

// VirtualMachine owns the realm-independent prototype objects every heap
// value's [[Prototype]] chain eventually bottoms out at, plus the profiling
// hooks a long-running REPL or debugger session needs (see vm/profiling.go,
// cmd/jsvmdbg). One VirtualMachine can drive many independent
// ExecutionStates, the way the teacher's single Interpreter served many
// concurrent ExecutionContexts.
type VirtualMachine struct {
	objectPrototype   *values.Object
	arrayPrototype    *values.Object
	functionPrototype *values.Object
	regExpPrototype   *values.Object

	profile    *profileState
	DebugLevel DebugLevel

	// OnInstruction, when set, is invoked before every instruction dispatch
	// with the owning CodeBlock and the IP about to execute -- the
	// per-opcode debugger callback of spec.md §6 ("may observe (codeBlock,
	// pcOffset, state) when a debugger is attached"). cmd/jsvmdbg uses this
	// to implement single-stepping and breakpoints without the VM itself
	// knowing anything about a REPL.
	OnInstruction func(code *registry.CodeBlock, pc int, st *ExecutionState)

	// OnEnd, when set, fires from execEnd with the program's completion
	// value -- the "dedicated hook fires at every End opcode" of spec.md §6.
	OnEnd func(st *ExecutionState, result values.Value)

	// maxCallDepth mirrors the teacher's MaxCallStackSize guard against
	// unbounded recursion blowing the host Go stack instead of raising a
	// script-visible RangeError. Overridable from config.Config so an
	// embedder can trade recursion headroom for Go-stack safety margin.
	maxCallDepth int
}

// NewVirtualMachine builds a VM with a fresh, empty prototype chain. A host
// embedding this package installs the actual Object.prototype/Array.prototype
// method tables onto these objects before running any script; the VM itself
// only needs them to exist as the anchor every new plain value's
// [[Prototype]] slot points at.
func NewVirtualMachine() *VirtualMachine {
	return NewVirtualMachineWithOptions(DebugLevelNone, 2000)
}

// NewVirtualMachineWithOptions builds a VM with an explicit debug verbosity
// and call-depth guard, the two knobs config.Config loads from YAML; kept
// distinct from NewVirtualMachine the way the teacher keeps
// NewVirtualMachineWithProfiling distinct from its own zero-config
// constructor.
func NewVirtualMachineWithOptions(level DebugLevel, maxCallDepth int) *VirtualMachine {
	objectProto := values.NewObject("Object", nil)
	arrayProto := values.NewObject("Array", objectProto)
	functionProto := values.NewObject("Function", objectProto)
	regExpProto := values.NewObject("RegExp", objectProto)

	if maxCallDepth <= 0 {
		maxCallDepth = 2000
	}

	return &VirtualMachine{
		objectPrototype:   objectProto,
		arrayPrototype:    arrayProto,
		functionPrototype: functionProto,
		regExpPrototype:   regExpProto,
		profile:           newProfileState(),
		DebugLevel:        level,
		maxCallDepth:      maxCallDepth,
	}
}

// RunProgram executes a top-level CodeBlock (a Program or Module body) to
// completion, the entry point a REPL or script host drives (cmd/jsvm). Unlike
// a function invocation, the top-level frame binds to the realm's global
// environment record rather than a fresh function-scoped one, so declarations
// land on st.Realm.GlobalObject the way var/function hoisting requires.
func (vm *VirtualMachine) RunProgram(st *ExecutionState, code *registry.CodeBlock) (values.Value, error) {
	globalEnv := env.New(env.NewGlobalEnvironmentRecord(st.Realm.GlobalObject), nil)
	frame := newCallFrame(code, nil, globalEnv)
	frame.This = values.FromPointer(st.Realm.GlobalObject)
	frame.ThisInitialized = true

	st.pushFrame(frame)
	defer st.popFrame()

	result, err := vm.runFrame(st, frame)
	if err != nil {
		return values.Undefined, err
	}
	if result.Returned {
		st.ResultValue = result.ReturnValue
	}
	st.Halted = true
	return st.ResultValue, nil
}

// runFrame is the main dispatch loop (§4.1 "Opcode handler contract"): it
// decodes and executes frame's instructions starting at frame.IP until the
// frame returns, suspends at a yield/await point, or an exception unwinds
// past every try handler the frame has registered. A frame that runs off the
// end of its instruction stream without an explicit OP_END/OP_RETURN
// completes with an undefined result, the same as falling off the end of a
// function body in source.
func (vm *VirtualMachine) runFrame(st *ExecutionState, frame *CallFrame) (*ExecutionResult, error) {
	if len(st.CallStack) > vm.maxCallDepth {
		return nil, NewRangeVMError("Maximum call stack size exceeded")
	}

	for {
		if frame.IP < 0 || frame.IP >= len(frame.Code.Instructions) {
			return returnResult(values.Undefined)
		}

		inst := &frame.Code.Instructions[frame.IP]
		vm.profile.observe(frame.IP, inst.Opcode)

		if vm.OnInstruction != nil {
			vm.OnInstruction(frame.Code, frame.IP, st)
		}

		result, err := vm.dispatch(st, frame, inst)
		if err != nil {
			if _, isThrown := err.(*thrownValue); !isThrown {
				err = DecorateError(err, frame, inst)
			}
			outcome, handled := vm.handleException(st, frame, err)
			if !handled {
				return nil, err
			}
			result = outcome
		}

		switch {
		case result.Returned, result.Suspend:
			return result, nil
		case result.ShouldAdvanceIP:
			frame.IP++
		default:
			frame.IP = result.JumpTo
		}
	}
}

// dispatch decodes a single instruction's opcode and routes it to the
// handler that implements it. The five self-dispatching families
// (arithmetic binary/unary, comparison, variable access, property access)
// each cover their own opcode sub-range internally (see arithmetic_executor.go,
// comparison_executor.go, variable_executor.go, instr_property.go), so this
// switch only needs one case per family rather than one per opcode; every
// other opcode gets an individual case routed at the specific exec* handler
// that implements it.
func (vm *VirtualMachine) dispatch(st *ExecutionState, frame *CallFrame, inst *opcodes.Instruction) (*ExecutionResult, error) {
	switch inst.Opcode {

	// Data movement & literals
	case opcodes.OP_NOP:
		return advanceResult()
	case opcodes.OP_LOAD_LITERAL:
		return vm.execLoadLiteral(st, frame, inst)
	case opcodes.OP_MOVE:
		return vm.execMove(frame, inst)
	case opcodes.OP_GET_PARAMETER:
		return vm.execGetParameter(frame, inst)
	case opcodes.OP_BINDING_CALLEE:
		return vm.execBindingCallee(frame, inst)
	case opcodes.OP_LOAD_THIS:
		return vm.execLoadThis(frame, inst)
	case opcodes.OP_LOAD_REGEXP:
		return vm.execLoadRegExp(frame, inst)
	case opcodes.OP_CREATE_OBJECT:
		return vm.execCreateObject(frame, inst)
	case opcodes.OP_CREATE_ARRAY:
		return vm.execCreateArray(frame, inst)
	case opcodes.OP_CREATE_FUNCTION:
		return vm.execCreateFunction(frame, inst)
	case opcodes.OP_CREATE_SPREAD_ARRAY_OBJECT:
		return vm.execCreateSpreadArray(st, frame, inst)
	case opcodes.OP_CREATE_REST_ELEMENT:
		return vm.execCreateRestElement(st, frame, inst)

	// Arithmetic, binary
	case opcodes.OP_ADD, opcodes.OP_SUB, opcodes.OP_MUL, opcodes.OP_DIV, opcodes.OP_MOD, opcodes.OP_EXP,
		opcodes.OP_BW_AND, opcodes.OP_BW_OR, opcodes.OP_BW_XOR, opcodes.OP_SHL, opcodes.OP_SAR, opcodes.OP_SHR:
		return NewArithmeticExecutor(st, frame, inst).Execute()

	// Arithmetic, unary
	case opcodes.OP_NEG, opcodes.OP_UPLUS, opcodes.OP_NOT, opcodes.OP_BW_NOT, opcodes.OP_TYPEOF,
		opcodes.OP_DELETE, opcodes.OP_TO_NUMBER, opcodes.OP_TO_NUMERIC_INC, opcodes.OP_TO_NUMERIC_DEC,
		opcodes.OP_INC, opcodes.OP_DEC:
		return NewUnaryExecutor(st, frame, inst).Execute()

	// Comparison
	case opcodes.OP_EQ, opcodes.OP_NEQ, opcodes.OP_STRICT_EQ, opcodes.OP_STRICT_NEQ,
		opcodes.OP_LT, opcodes.OP_LTE, opcodes.OP_GT, opcodes.OP_GTE, opcodes.OP_IN, opcodes.OP_INSTANCEOF:
		return NewComparisonExecutor(st, frame, inst).Execute()

	// Property access
	case opcodes.OP_GET_OBJECT, opcodes.OP_SET_OBJECT, opcodes.OP_GET_OBJECT_PRECOMPUTED, opcodes.OP_SET_OBJECT_PRECOMPUTED,
		opcodes.OP_DEFINE_OWN_PROPERTY, opcodes.OP_DEFINE_OWN_PROPERTY_WITH_NAME, opcodes.OP_DEFINE_GETTER_SETTER,
		opcodes.OP_ARRAY_DEFINE_OWN_PROPERTY, opcodes.OP_ARRAY_DEFINE_OWN_PROPERTY_SPREAD,
		opcodes.OP_COMPLEX_GET_OBJECT, opcodes.OP_COMPLEX_SET_OBJECT, opcodes.OP_GET_METHOD:
		return NewPropertyExecutor(st, frame, inst).Execute()

	// Variable access
	case opcodes.OP_GET_GLOBAL_VAR, opcodes.OP_SET_GLOBAL_VAR, opcodes.OP_INIT_GLOBAL_VAR,
		opcodes.OP_LOAD_BY_NAME, opcodes.OP_STORE_BY_NAME, opcodes.OP_INIT_BY_NAME,
		opcodes.OP_LOAD_BY_HEAP_INDEX, opcodes.OP_STORE_BY_HEAP_INDEX, opcodes.OP_INIT_BY_HEAP_INDEX,
		opcodes.OP_RESOLVE_NAME_ADDRESS, opcodes.OP_STORE_BY_NAME_WITH_ADDRESS:
		return NewVariableExecutor(st, frame, inst).Execute()

	// Control flow
	case opcodes.OP_JMP:
		return vm.execJmp(inst)
	case opcodes.OP_JMP_IF_TRUE:
		return vm.execJmpIfTrue(frame, inst)
	case opcodes.OP_JMP_IF_FALSE:
		return vm.execJmpIfFalse(frame, inst)
	case opcodes.OP_JMP_IF_EQUAL:
		return vm.execJmpIfEqual(frame, inst)
	case opcodes.OP_JMP_IF_UNDEF_OR_NULL:
		return vm.execJmpIfUndefOrNull(frame, inst)
	case opcodes.OP_JMP_IF_NOT_FULFILLED:
		return vm.execJmpIfNotFulfilled(frame, inst)
	case opcodes.OP_JMP_COMPLEX_CASE:
		return vm.execJmpComplexCase(st, frame)

	// Call / construct
	case opcodes.OP_CALL:
		return vm.execCall(st, frame, inst)
	case opcodes.OP_CALL_WITH_RECEIVER:
		return vm.execCallWithReceiver(st, frame, inst)
	case opcodes.OP_CALL_COMPLEX:
		return vm.execCallComplex(st, frame, inst)
	case opcodes.OP_NEW:
		return vm.execNew(st, frame, inst)
	case opcodes.OP_NEW_SPREAD:
		return vm.execNewSpread(st, frame, inst)
	case opcodes.OP_SUPER_REFERENCE:
		return vm.execSuperReference(frame, inst)
	case opcodes.OP_META_PROPERTY:
		return vm.execMetaProperty(frame, inst)

	// Scope / block / exceptions
	case opcodes.OP_TRY:
		return vm.execTry(frame, inst)
	case opcodes.OP_THROW:
		return vm.execThrow(st, frame, inst)
	case opcodes.OP_THROW_STATIC_ERROR:
		return vm.execThrowStaticError(st, frame, inst)
	case opcodes.OP_CLOSE_LEX_ENV:
		return vm.execCloseLexEnv(frame)
	case opcodes.OP_OPEN_LEX_ENV:
		return vm.execOpenLexEnv(frame, inst)
	case opcodes.OP_BLOCK:
		return vm.execBlock(frame, inst)
	case opcodes.OP_REPLACE_BLOCK_LEX_ENV:
		return vm.execReplaceBlockLexEnv(frame, inst)
	case opcodes.OP_ENSURE_ARGUMENTS_OBJECT:
		return vm.execEnsureArgumentsObject(frame, inst)
	case opcodes.OP_RETURN_SLOW:
		return vm.execReturnSlow(frame, inst)
	case opcodes.OP_RETURN:
		return vm.execReturn(frame, inst)

	// Iteration
	case opcodes.OP_ITERATOR_OP:
		return vm.execIteratorOp(st, frame, inst)
	case opcodes.OP_BINDING_REST_ELEMENT:
		return vm.execBindingRestElement(st, frame, inst)
	case opcodes.OP_CREATE_ENUMERATE_OBJECT:
		return vm.execCreateEnumerateObject(frame, inst)
	case opcodes.OP_CHECK_LAST_ENUMERATE_KEY:
		return vm.execCheckLastEnumerateKey(frame, inst)
	case opcodes.OP_GET_ENUMERATE_KEY:
		return vm.execGetEnumerateKey(frame, inst)
	case opcodes.OP_MARK_ENUMERATE_KEY:
		return vm.execMarkEnumerateKey()

	// Template / class / async / debug
	case opcodes.OP_TEMPLATE:
		return vm.execTemplate(frame, inst)
	case opcodes.OP_TAGGED_TEMPLATE:
		return vm.execTaggedTemplate(st, frame, inst)
	case opcodes.OP_INITIALIZE_CLASS:
		return vm.execInitializeClass(st, frame, inst)
	case opcodes.OP_EXECUTION_PAUSE:
		return vm.execExecutionPause(frame, inst)
	case opcodes.OP_EXECUTION_RESUME:
		return vm.execExecutionResume(frame, inst)
	case opcodes.OP_END:
		return vm.execEnd(st, frame, inst)
	case opcodes.OP_BREAKPOINT_ENABLED:
		return vm.execBreakpointEnabled(frame)
	case opcodes.OP_BREAKPOINT_DISABLED:
		return vm.execBreakpointDisabled()

	default:
		return nil, NewOpcodeError(inst.Opcode)
	}
}

// exceptionValue unwraps whatever Go error crossed an opcode handler's error
// return into the script-visible values.Value a catch clause binds: a plain
// thrown value (`throw <anything>`) passes through unchanged, a VMError
// carrying a JSError becomes a proper Error instance, and anything else
// becomes a string so a catch block always has something to inspect.
func (vm *VirtualMachine) exceptionValue(err error) values.Value {
	if tv, ok := err.(*thrownValue); ok {
		return tv.V
	}
	if vmErr, ok := err.(*VMError); ok {
		if vmErr.JS != nil {
			return values.FromPointer(values.NewErrorObject(vmErr.JS.Kind.Error(), vmErr.JS.Message, vm.objectPrototype))
		}
		return values.NewString(vmErr.Error())
	}
	return values.NewString(err.Error())
}

// handleException walks frame's own try-handler stack (innermost first)
// looking for a catch or finally entry point that hasn't already fired for
// this unwind. It never looks past frame: an exception a frame can't handle
// propagates to the caller as an ordinary Go error return, and the caller's
// own runFrame loop tries its own handleException against its own frame the
// same way, which is what makes exceptions cross function-call boundaries.
func (vm *VirtualMachine) handleException(st *ExecutionState, frame *CallFrame, err error) (*ExecutionResult, bool) {
	thrown := vm.exceptionValue(err)

	for {
		h := frame.peekTryHandler()
		if h == nil {
			return nil, false
		}

		if h.hasCatch && !h.catchUsed {
			h.catchUsed = true
			frame.PendingCatchValue = thrown
			if h.dstReg != noRegister {
				frame.setReg(h.dstReg, thrown)
			}
			outcome, _ := jumpResult(h.catchIP)
			return outcome, true
		}

		if h.hasFinally && !h.finallyUsed {
			h.finallyUsed = true
			frame.pushControlFlow(&controlFlowRecord{kind: cfThrow, value: thrown})
			outcome, _ := jumpResult(h.finallyIP)
			return outcome, true
		}

		frame.popTryHandler()
	}
}
