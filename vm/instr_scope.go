package vm

import (
	"github.com/wudi/escargot-core/env"
	"github.com/wudi/escargot-core/opcodes"
	"github.com/wudi/escargot-core/registry"
	"github.com/wudi/escargot-core/values"
)

// noTryTarget marks a missing catch/finally entry point in an OP_TRY
// instruction's Src1/Src2 operand (a try with no catch clause, or a
// try/catch with no finally). Uses the same out-of-band-sentinel
// convention execCall's noRegister does.
const noTryTarget uint32 = ^uint32(0)

// execTry implements OP_TRY (§4.6): installs a tryHandler describing the
// region's catch/finally entry points on the current frame's handler
// stack. Dst carries the register a caught value should land in once a
// throw inside the region jumps to catchIP; Jump is the instruction index
// execution resumes at once the whole try/catch/finally construct
// completes normally.
func (vm *VirtualMachine) execTry(frame *CallFrame, inst *opcodes.Instruction) (*ExecutionResult, error) {
	frame.pushTryHandler(&tryHandler{
		catchIP:    int(inst.Src1),
		finallyIP:  int(inst.Src2),
		afterIP:    int(inst.Jump),
		hasCatch:   inst.Src1 != noTryTarget,
		hasFinally: inst.Src2 != noTryTarget,
		dstReg:     inst.Dst,
	})
	return advanceResult()
}

// execThrow implements OP_THROW: regs[Src1] becomes the active exception,
// routed through handleException the same way any other failing opcode's
// error return is.
func (vm *VirtualMachine) execThrow(st *ExecutionState, frame *CallFrame, inst *opcodes.Instruction) (*ExecutionResult, error) {
	thrown := frame.getReg(inst.Src1)
	if outcome, handled := vm.handleException(st, frame, newThrownValue(thrown)); handled {
		return outcome, nil
	}
	return nil, newThrownValue(thrown)
}

// execThrowStaticError implements OP_THROW_STATIC_ERROR: raises one of the
// engine's own fixed diagnostic messages (SubKind selects which) rather
// than a value computed by the running program, the shape a failed
// destructuring pattern or a TDZ violation the compiler caught statically
// needs.
func (vm *VirtualMachine) execThrowStaticError(st *ExecutionState, frame *CallFrame, inst *opcodes.Instruction) (*ExecutionResult, error) {
	code := registry.StaticErrorCode(inst.SubKind)
	jsErr := code.NewError()
	if outcome, handled := vm.handleException(st, frame, NewJSVMError(jsErr)); handled {
		return outcome, nil
	}
	return nil, NewJSVMError(jsErr)
}

// execOpenLexEnv implements OP_OPEN_LEX_ENV: pushes a fresh indexed
// declarative environment (Src1 = binding-slot capacity) in front of the
// frame's current environment, for a new block/loop-body scope.
func (vm *VirtualMachine) execOpenLexEnv(frame *CallFrame, inst *opcodes.Instruction) (*ExecutionResult, error) {
	frame.Env = env.New(env.NewDeclarativeRecordIndexed(int(inst.Src1)), frame.Env)
	return advanceResult()
}

// execCloseLexEnv implements OP_CLOSE_LEX_ENV: pops back to the enclosing
// environment, the counterpart to execOpenLexEnv/execBlock.
func (vm *VirtualMachine) execCloseLexEnv(frame *CallFrame) (*ExecutionResult, error) {
	if frame.Env != nil {
		frame.Env = frame.Env.Outer
	}
	return advanceResult()
}

// execBlock implements OP_BLOCK: opens a block-scoped environment the same
// way execOpenLexEnv does; kept as a distinct opcode because the compiler
// emits it at plain `{ ... }` block boundaries, which close via
// OP_CLOSE_LEX_ENV rather than OP_REPLACE_BLOCK_LEX_ENV.
func (vm *VirtualMachine) execBlock(frame *CallFrame, inst *opcodes.Instruction) (*ExecutionResult, error) {
	frame.Env = env.New(env.NewDeclarativeRecordIndexed(int(inst.Src1)), frame.Env)
	return advanceResult()
}

// execReplaceBlockLexEnv implements OP_REPLACE_BLOCK_LEX_ENV: the
// fresh-binding-per-iteration semantics a `for (let x = ...; ...; ...)`
// loop needs (each iteration's closures must capture their own copy of
// x). Src1 is the binding-slot count to carry forward from the outgoing
// environment into the new one.
func (vm *VirtualMachine) execReplaceBlockLexEnv(frame *CallFrame, inst *opcodes.Instruction) (*ExecutionResult, error) {
	capacity := int(inst.Src1)
	fresh := env.NewDeclarativeRecordIndexed(capacity)

	var outer *env.LexicalEnvironment
	if frame.Env != nil {
		outer = frame.Env.Outer
		if oldRec, ok := frame.Env.Record.(*env.DeclarativeRecordIndexed); ok {
			for i := 0; i < capacity; i++ {
				if v, present := oldRec.GetBindingValueBySlot(i); present {
					slot := fresh.DeclareSlot(true)
					fresh.InitializeBindingByIndex(slot, v)
				}
			}
		}
	}
	frame.Env = env.New(fresh, outer)
	return advanceResult()
}

// execEnsureArgumentsObject implements OP_ENSURE_ARGUMENTS_OBJECT: builds
// the `arguments` array-like from the frame's raw argument list on first
// use, since most function bodies never reference it and materializing it
// unconditionally would be wasted work.
func (vm *VirtualMachine) execEnsureArgumentsObject(frame *CallFrame, inst *opcodes.Instruction) (*ExecutionResult, error) {
	arr := values.NewArray(vm.arrayPrototype)
	for i, a := range frame.Arguments {
		arr.SetIndex(uint32(i), a)
	}
	frame.setReg(inst.Dst, values.FromPointer(arr))
	return advanceResult()
}

// execReturn implements OP_RETURN: the fast path the compiler picks when
// static analysis proves no finally block is pending on the way out.
func (vm *VirtualMachine) execReturn(frame *CallFrame, inst *opcodes.Instruction) (*ExecutionResult, error) {
	return returnResult(frame.getReg(inst.Src1))
}

// execReturnSlow implements OP_RETURN_SLOW: a return that may need to run
// through one or more pending finally blocks first. If the innermost try
// handler has a finally, the return value is parked as a controlFlowRecord
// and execution jumps into the finally; OP_JMP_COMPLEX_CASE replays it
// once the finally completes. With no pending finally, this degrades to an
// ordinary return.
func (vm *VirtualMachine) execReturnSlow(frame *CallFrame, inst *opcodes.Instruction) (*ExecutionResult, error) {
	value := frame.getReg(inst.Src1)
	if h := frame.peekTryHandler(); h != nil && h.hasFinally {
		frame.pushControlFlow(&controlFlowRecord{kind: cfReturn, value: value})
		return jumpResult(h.finallyIP)
	}
	return returnResult(value)
}
