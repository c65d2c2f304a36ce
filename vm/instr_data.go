package vm

import (
	"strings"

	"github.com/wudi/escargot-core/opcodes"
	"github.com/wudi/escargot-core/registry"
	"github.com/wudi/escargot-core/values"
)

// execLoadLiteral handles OP_LOAD_LITERAL: Dst = Constants[Src1].
func (vm *VirtualMachine) execLoadLiteral(st *ExecutionState, frame *CallFrame, inst *opcodes.Instruction) (*ExecutionResult, error) {
	v, err := frame.constant(inst.Src1)
	if err != nil {
		return nil, err
	}
	frame.setReg(inst.Dst, v)
	return advanceResult()
}

func (vm *VirtualMachine) execMove(frame *CallFrame, inst *opcodes.Instruction) (*ExecutionResult, error) {
	frame.setReg(inst.Dst, frame.getReg(inst.Src1))
	return advanceResult()
}

func (vm *VirtualMachine) execGetParameter(frame *CallFrame, inst *opcodes.Instruction) (*ExecutionResult, error) {
	var v values.Value = values.Undefined
	if int(inst.Src1) < len(frame.Arguments) {
		v = frame.Arguments[inst.Src1]
	}
	frame.setReg(inst.Dst, v)
	return advanceResult()
}

func (vm *VirtualMachine) execBindingCallee(frame *CallFrame, inst *opcodes.Instruction) (*ExecutionResult, error) {
	if frame.Function != nil {
		frame.setReg(inst.Dst, values.FromPointer(frame.Function))
	} else {
		frame.setReg(inst.Dst, values.Undefined)
	}
	return advanceResult()
}

func (vm *VirtualMachine) execLoadThis(frame *CallFrame, inst *opcodes.Instruction) (*ExecutionResult, error) {
	if !frame.ThisInitialized {
		return nil, NewReferenceVMError("must call super constructor before accessing 'this'")
	}
	frame.setReg(inst.Dst, frame.This)
	return advanceResult()
}

func (vm *VirtualMachine) execLoadRegExp(frame *CallFrame, inst *opcodes.Instruction) (*ExecutionResult, error) {
	lit, err := frame.constant(inst.Src1)
	if err != nil {
		return nil, err
	}
	// the lexer hands the constant pool the regex literal's raw "/source/flags"
	// text unmodified; split on the final slash to recover both halves.
	text := lit.AsString()
	source, flags := text, ""
	if i := strings.LastIndexByte(text, '/'); i > 0 {
		source, flags = text[1:i], text[i+1:]
	}
	re := &values.RegExpObject{
		Object: values.Object{Structure: values.RootStructure(), Prototype: vm.regExpPrototype, ClassName: "RegExp", Extensible: true},
		Source: source,
		Flags:  flags,
	}
	frame.setReg(inst.Dst, values.FromPointer(re))
	return advanceResult()
}

func (vm *VirtualMachine) execCreateObject(frame *CallFrame, inst *opcodes.Instruction) (*ExecutionResult, error) {
	obj := values.NewObject("Object", vm.objectPrototype)
	frame.setReg(inst.Dst, values.FromPointer(obj))
	return advanceResult()
}

func (vm *VirtualMachine) execCreateArray(frame *CallFrame, inst *opcodes.Instruction) (*ExecutionResult, error) {
	arr := values.NewArray(vm.arrayPrototype)
	if inst.Src1 > 0 {
		arr.Dense = make([]values.Value, 0, inst.Src1)
	}
	frame.setReg(inst.Dst, values.FromPointer(arr))
	return advanceResult()
}

// execCreateFunction handles OP_CREATE_FUNCTION: Dst = new closure bound to
// the CodeBlock referenced by Constants[Src1], capturing the current frame's
// lexical environment for the closure's [[Environment]] slot.
func (vm *VirtualMachine) execCreateFunction(frame *CallFrame, inst *opcodes.Instruction) (*ExecutionResult, error) {
	lit, err := frame.constant(inst.Src1)
	if err != nil {
		return nil, err
	}
	ref, ok := lit.Ptr.(*registry.CodeBlockRef)
	if !ok {
		return nil, NewTypeVMError("CREATE_FUNCTION constant is not a CodeBlock reference")
	}
	code := ref.Block
	fn := &values.FunctionObject{
		Object:    values.Object{Structure: values.RootStructure(), Prototype: vm.functionPrototype, ClassName: "Function", Extensible: true},
		FuncKind:  code.Kind,
		Name:      code.Name,
		CodeBlock: code,
	}
	// closureCapture (vm/instr_call.go) carries the defining frame's
	// environment and, for arrow functions, its lexical `this`/new.target so
	// invoke doesn't need a separate code path to tell them apart later.
	capture := &closureCapture{Env: frame.Env}
	if code.Kind == values.FunctionArrow {
		capture.This = frame.This
		capture.ThisInitialized = frame.ThisInitialized
		capture.NewTarget = frame.NewTarget
	}
	fn.Internal = capture
	if code.Kind != values.FunctionArrow {
		proto := values.NewObject("Object", vm.objectPrototype)
		proto.DefineOwn("constructor", values.PropertyDescriptor{Value: values.FromPointer(fn), Writable: true, Enumerable: false, Configurable: true})
		fn.DefineOwn("prototype", values.PropertyDescriptor{Value: values.FromPointer(proto), Writable: true, Enumerable: false, Configurable: false})
	}
	frame.setReg(inst.Dst, values.FromPointer(fn))
	return advanceResult()
}

func (vm *VirtualMachine) execCreateSpreadArray(st *ExecutionState, frame *CallFrame, inst *opcodes.Instruction) (*ExecutionResult, error) {
	source := frame.getReg(inst.Src1)
	arr := values.NewArray(vm.arrayPrototype)
	items, err := vm.iterateToSlice(st, source)
	if err != nil {
		return nil, err
	}
	for _, v := range items {
		arr.SetIndex(arr.Length, v)
	}
	frame.setReg(inst.Dst, values.FromPointer(arr))
	return advanceResult()
}

func (vm *VirtualMachine) execCreateRestElement(st *ExecutionState, frame *CallFrame, inst *opcodes.Instruction) (*ExecutionResult, error) {
	startIdx := int(inst.Src1)
	arr := values.NewArray(vm.arrayPrototype)
	for i := startIdx; i < len(frame.Arguments); i++ {
		arr.SetIndex(uint32(i-startIdx), frame.Arguments[i])
	}
	frame.setReg(inst.Dst, values.FromPointer(arr))
	return advanceResult()
}
