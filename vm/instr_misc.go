package vm

import (
	"fmt"

	"github.com/wudi/escargot-core/opcodes"
	"github.com/wudi/escargot-core/values"
)

// execTemplate implements OP_TEMPLATE: Src1 points at the constant pool's
// array of cooked template strings; Dst gets a plain array value built
// from it, the operand a following call or string-concat chain reads its
// pieces from.
func (vm *VirtualMachine) execTemplate(frame *CallFrame, inst *opcodes.Instruction) (*ExecutionResult, error) {
	lit, err := frame.constant(inst.Src1)
	if err != nil {
		return nil, err
	}
	strs, ok := lit.Ptr.(*values.Array)
	if !ok {
		return nil, NewTypeVMError("TEMPLATE constant is not a strings array")
	}
	frame.setReg(inst.Dst, values.FromPointer(strs))
	return advanceResult()
}

// execTaggedTemplate implements OP_TAGGED_TEMPLATE: invokes the tag
// function (Src1) with the cooked-strings array (Src2, carrying a `raw`
// companion the compiler already attached) as the first argument followed
// by the substitution values collected from the contiguous register run
// starting at Src2+1, Jump registers long.
func (vm *VirtualMachine) execTaggedTemplate(st *ExecutionState, frame *CallFrame, inst *opcodes.Instruction) (*ExecutionResult, error) {
	tag := frame.getReg(inst.Src1)
	strings := frame.getReg(inst.Src2)
	subs := collectArgs(frame, inst.Src2+1, uint32(inst.Jump))
	args := append([]values.Value{strings}, subs...)
	result, err := vm.CallFunction(st, tag, values.Undefined, args)
	if err != nil {
		return nil, err
	}
	frame.setReg(inst.Dst, result)
	return advanceResult()
}

// execInitializeClass implements OP_INITIALIZE_CLASS, dispatching on
// SubKind across the 11-stage class-definition pipeline (§4.8). The
// compiler emits one of these per stage of a class declaration in source
// order, so this handler never sees more than one stage per instruction;
// ClassManager accumulates state across the sequence until
// ClassStageCleanupStaticData hands back the finished constructor.
func (vm *VirtualMachine) execInitializeClass(st *ExecutionState, frame *CallFrame, inst *opcodes.Instruction) (*ExecutionResult, error) {
	cm := st.classManager

	switch opcodes.ClassInitStage(inst.SubKind) {
	case opcodes.ClassStageCreateClass:
		name, err := frame.constant(inst.Src1)
		if err != nil {
			return nil, err
		}
		var parent *values.ClassInfo
		if inst.Src2 != noRegister {
			if pfn, ok := frame.getReg(inst.Src2).Ptr.(*values.FunctionObject); ok {
				parent = pfn.OuterClass
			}
		}
		ctor := cm.BeginClass(name.AsString(), parent, vm.objectPrototype)
		frame.setReg(inst.Dst, values.FromPointer(ctor))
		return advanceResult()

	case opcodes.ClassStageSetFieldSize:
		cm.SetFieldSize(int(inst.Src1))
		return advanceResult()

	case opcodes.ClassStageInitField, opcodes.ClassStageInitPrivateField,
		opcodes.ClassStageInitStaticField, opcodes.ClassStageInitStaticPrivateField:
		name, err := frame.constant(inst.Src1)
		if err != nil {
			return nil, err
		}
		kind := opcodes.FieldKind(inst.Dst)
		var fn *values.FunctionObject
		if inst.Src2 != noRegister {
			fn, _ = frame.getReg(inst.Src2).Ptr.(*values.FunctionObject)
		}
		switch opcodes.ClassInitStage(inst.SubKind) {
		case opcodes.ClassStageInitField:
			cm.InitField(name.AsString(), kind, fn)
		case opcodes.ClassStageInitPrivateField:
			cm.InitPrivateField(name.AsString(), kind, fn)
		case opcodes.ClassStageInitStaticField:
			cm.InitStaticField(name.AsString(), kind, fn)
		case opcodes.ClassStageInitStaticPrivateField:
			cm.InitStaticPrivateField(name.AsString(), kind, fn)
		}
		return advanceResult()

	case opcodes.ClassStageSetFieldData:
		cm.SetFieldData(frame.getReg(inst.Src1))
		return advanceResult()

	case opcodes.ClassStageSetPrivateFieldData:
		cm.SetPrivateFieldData(frame.getReg(inst.Src1))
		return advanceResult()

	case opcodes.ClassStageSetStaticFieldData:
		cm.SetStaticFieldData(frame.getReg(inst.Src1))
		return advanceResult()

	case opcodes.ClassStageSetStaticPrivateFieldData:
		cm.SetStaticPrivateFieldData(frame.getReg(inst.Src1))
		return advanceResult()

	case opcodes.ClassStageCleanupStaticData:
		ctor := cm.FinishClass()
		if ctor != nil {
			frame.setReg(inst.Dst, values.FromPointer(ctor))
		}
		return advanceResult()

	default:
		return nil, NewOperandError("unknown INITIALIZE_CLASS sub-kind")
	}
}

// execExecutionPause implements OP_EXECUTION_PAUSE: suspends the current
// frame at a yield/await point, handing SuspendValue back to whatever
// driver (generatorState.Resume, or an async caller) is running this frame.
func (vm *VirtualMachine) execExecutionPause(frame *CallFrame, inst *opcodes.Instruction) (*ExecutionResult, error) {
	kind := opcodes.PauseKind(inst.SubKind)
	value := frame.getReg(inst.Src1)
	return suspendResult(kind, value)
}

// execExecutionResume implements OP_EXECUTION_RESUME: the instruction a
// generator body resumes into right after its OP_EXECUTION_PAUSE; Dst
// receives whatever value the driver handed back via Resume/Throw.
func (vm *VirtualMachine) execExecutionResume(frame *CallFrame, inst *opcodes.Instruction) (*ExecutionResult, error) {
	frame.setReg(inst.Dst, frame.ResumeValue)
	frame.ResumeValue = values.Undefined
	return advanceResult()
}

// execEnd implements OP_END: the final instruction of a top-level program
// or module body. Src1 carries the completion value a REPL or module
// loader cares about; function bodies never reach this opcode (they exit
// through OP_RETURN/OP_RETURN_SLOW instead).
func (vm *VirtualMachine) execEnd(st *ExecutionState, frame *CallFrame, inst *opcodes.Instruction) (*ExecutionResult, error) {
	result := frame.getReg(inst.Src1)
	st.ResultValue = result
	st.Halted = true
	if vm.OnEnd != nil {
		vm.OnEnd(st, result)
	}
	return returnResult(result)
}

// execBreakpointEnabled/execBreakpointDisabled implement
// OP_BREAKPOINT_ENABLED/OP_BREAKPOINT_DISABLED: markers a debugger attaches
// behavior to (see cmd/jsvmdbg). Both advance to the next instruction;
// execBreakpointEnabled also appends a "breakpoint hit at ip=N" record to
// the profile's debug log, whether or not a debugger is attached.
func (vm *VirtualMachine) execBreakpointEnabled(frame *CallFrame) (*ExecutionResult, error) {
	vm.profile.addDebug(fmt.Sprintf("breakpoint hit at ip=%d", frame.IP))
	return advanceResult()
}

func (vm *VirtualMachine) execBreakpointDisabled() (*ExecutionResult, error) {
	return advanceResult()
}
