package vm

import (
	"fmt"
	"sync"

	"github.com/wudi/escargot-core/env"
	"github.com/wudi/escargot-core/registry"
	"github.com/wudi/escargot-core/values"
)

// ExecutionState carries the mutable state associated with executing one
// realm's worth of ECMAScript bytecode: the call stack, the realm's global
// object and symbol tables, and the halted/result outcome once the top-level
// program frame unwinds. Reshaped from the teacher's ExecutionContext, which
// held PHP's GlobalVars/Variables/ClassTable as sync.Maps; ECMAScript's
// binding model already gives every frame its own LexicalEnvironment
// (see env.LexicalEnvironment), so ExecutionState itself only needs to own
// the call stack and realm-wide tables.
type ExecutionState struct {
	Realm *registry.Realm

	// VM is a back-reference to the owning VirtualMachine, giving instruction
	// handlers access to realm-wide prototypes and cross-cutting helpers
	// (iterateToSlice, callFunctionValue) without threading an extra
	// parameter through every Executor.
	VM *VirtualMachine

	frameMu   sync.Mutex
	CallStack []*CallFrame

	Halted      bool
	ResultValue values.Value

	// PendingException is not written by any handler: thrown values travel
	// as Go errors through the dispatch loop's handleException instead.
	PendingException *values.Value

	debugLog []string

	classManager *ClassManager
}

// NewExecutionState constructs a fresh execution state bound to realm and
// the VM that will run its frames; instruction handlers reach back through
// VM for realm-independent prototypes and cross-cutting helpers
// (callFunctionValue, iterateToSlice) without threading an extra parameter
// through every Executor.
func NewExecutionState(vm *VirtualMachine, realm *registry.Realm) *ExecutionState {
	if realm == nil {
		realm = registry.NewRealm()
	}
	return &ExecutionState{
		Realm:        realm,
		VM:           vm,
		CallStack:    make([]*CallFrame, 0, 8),
		debugLog:     make([]string, 0, 32),
		classManager: NewClassManager(),
	}
}

func (st *ExecutionState) pushFrame(frame *CallFrame) {
	st.frameMu.Lock()
	defer st.frameMu.Unlock()
	st.CallStack = append(st.CallStack, frame)
}

func (st *ExecutionState) popFrame() *CallFrame {
	st.frameMu.Lock()
	defer st.frameMu.Unlock()
	if len(st.CallStack) == 0 {
		return nil
	}
	idx := len(st.CallStack) - 1
	frame := st.CallStack[idx]
	st.CallStack = st.CallStack[:idx]
	return frame
}

func (st *ExecutionState) currentFrame() *CallFrame {
	st.frameMu.Lock()
	defer st.frameMu.Unlock()
	if len(st.CallStack) == 0 {
		return nil
	}
	return st.CallStack[len(st.CallStack)-1]
}

func (st *ExecutionState) appendDebugRecord(record string) {
	st.frameMu.Lock()
	defer st.frameMu.Unlock()
	st.debugLog = append(st.debugLog, record)
}

func (st *ExecutionState) drainDebugRecords() []string {
	st.frameMu.Lock()
	defer st.frameMu.Unlock()
	out := make([]string, len(st.debugLog))
	copy(out, st.debugLog)
	return out
}

// controlFlowKind tags a ControlFlowRecord the way the try/catch/finally
// unwinding model requires: a pending break/continue/return has to thread
// itself through any intervening finally blocks before it takes effect.
type controlFlowKind byte

const (
	cfNormal controlFlowKind = iota
	cfBreak
	cfContinue
	cfReturn
	cfThrow
)

// controlFlowRecord is pushed onto a frame's control stack whenever a
// break/continue/return/throw needs to pass through a pending finally block
// before it resolves; OP_JMP_COMPLEX_CASE consumes the top entry once the
// finally completes normally.
type controlFlowRecord struct {
	kind   controlFlowKind
	value  values.Value
	target int32 // jump target for break/continue; unused for return/throw
}

// tryHandler records one live try region's catch/finally entry points, the
// way the teacher's exceptionHandler{catchIP, finallyIP} did for PHP
// try/catch/finally.
type tryHandler struct {
	catchIP    int
	finallyIP  int
	afterIP    int
	hasCatch   bool
	hasFinally bool
	dstReg     uint32

	// catchUsed/finallyUsed track whether this handler's catch/finally
	// entry point has already fired for the try region's current pass
	// through handleException, so a throw raised inside the catch block
	// falls straight through to finally instead of re-entering catch.
	catchUsed   bool
	finallyUsed bool
}

// CallFrame houses the interpreter state needed to execute one CodeBlock
// invocation: its register file, lexical environment, this/new.target
// bindings, and the exception/control-flow handler stacks. Reshaped from the
// teacher's CallFrame{Locals, TempVars, SlotNames, NameSlots, GlobalSlots},
// replacing PHP's name-keyed variable maps with a flat register file (the
// parser is assumed to have already assigned register indices, per
// registry.CodeBlock.NumRegisters) and an env.LexicalEnvironment chain for
// named-binding resolution.
type CallFrame struct {
	Code     *registry.CodeBlock
	Function *values.FunctionObject

	IP int

	Registers []values.Value

	Env *env.LexicalEnvironment

	This            values.Value
	ThisInitialized bool
	NewTarget       values.Value
	HomeObject      *values.Object
	Arguments       []values.Value

	// ReturnSlot/hasReturnSlot identify where the *caller* wants this frame's
	// result value written once it returns, mirroring the teacher's
	// ReturnTarget/operandTarget pair.
	ReturnSlot    uint32
	hasReturnSlot bool

	controlStack []*controlFlowRecord
	tryHandlers  []*tryHandler

	// Generator, non-nil only for generator/async function frames, holds the
	// cooperative pause/resume state described in the generator/async model.
	Generator *generatorState

	// PendingCatchValue is the thrown value handleException stores when it
	// jumps to a catch entry point (the same value is written to the OP_TRY
	// instruction's Dst register, which is where catch code reads it).
	PendingCatchValue values.Value

	// ResumeValue is the value a generator/async driver hands back in on
	// OP_EXECUTION_RESUME (the operand of `.next(v)` / the settled value of
	// an awaited promise).
	ResumeValue values.Value

	IsConstructorCall bool
}

// newCallFrame constructs an initialized call frame for one CodeBlock
// invocation.
func newCallFrame(code *registry.CodeBlock, fn *values.FunctionObject, lexEnv *env.LexicalEnvironment) *CallFrame {
	regCount := int(code.NumRegisters)
	if regCount == 0 {
		regCount = 8
	}
	registers := make([]values.Value, regCount)
	for i := range registers {
		registers[i] = values.Undefined
	}
	return &CallFrame{
		Code:         code,
		Function:     fn,
		Registers:    registers,
		Env:          lexEnv,
		This:         values.Undefined,
		NewTarget:    values.Undefined,
		tryHandlers:  make([]*tryHandler, 0, 4),
		controlStack: make([]*controlFlowRecord, 0, 4),
	}
}

func (f *CallFrame) getReg(idx uint32) values.Value {
	if int(idx) >= len(f.Registers) {
		return values.Undefined
	}
	return f.Registers[idx]
}

func (f *CallFrame) setReg(idx uint32, v values.Value) {
	if int(idx) >= len(f.Registers) {
		grown := make([]values.Value, idx+1)
		copy(grown, f.Registers)
		for i := len(f.Registers); i < len(grown); i++ {
			grown[i] = values.Undefined
		}
		f.Registers = grown
	}
	f.Registers[idx] = v
}

func (f *CallFrame) constant(idx uint32) (values.Value, error) {
	if f.Code == nil || int(idx) >= len(f.Code.Constants) {
		return values.Undefined, NewConstantError(idx, len(f.Code.Constants))
	}
	return f.Code.Constants[idx], nil
}

func (f *CallFrame) setReturnSlot(slot uint32) {
	f.ReturnSlot = slot
	f.hasReturnSlot = true
}

func (f *CallFrame) clearReturnSlot() {
	f.hasReturnSlot = false
}

func (f *CallFrame) pushTryHandler(h *tryHandler) {
	f.tryHandlers = append(f.tryHandlers, h)
}

func (f *CallFrame) popTryHandler() *tryHandler {
	if len(f.tryHandlers) == 0 {
		return nil
	}
	idx := len(f.tryHandlers) - 1
	h := f.tryHandlers[idx]
	f.tryHandlers = f.tryHandlers[:idx]
	return h
}

func (f *CallFrame) peekTryHandler() *tryHandler {
	if len(f.tryHandlers) == 0 {
		return nil
	}
	return f.tryHandlers[len(f.tryHandlers)-1]
}

func (f *CallFrame) pushControlFlow(rec *controlFlowRecord) {
	f.controlStack = append(f.controlStack, rec)
}

func (f *CallFrame) popControlFlow() *controlFlowRecord {
	if len(f.controlStack) == 0 {
		return nil
	}
	idx := len(f.controlStack) - 1
	rec := f.controlStack[idx]
	f.controlStack = f.controlStack[:idx]
	return rec
}

func (st *ExecutionState) recordAssignment(frame *CallFrame, slot uint32, value values.Value) {
	if frame == nil {
		return
	}
	st.appendDebugRecord(fmt.Sprintf("reg[%d] = %s", slot, value.String()))
}
