package vm

import (
	"github.com/wudi/escargot-core/env"
	"github.com/wudi/escargot-core/opcodes"
	"github.com/wudi/escargot-core/registry"
	"github.com/wudi/escargot-core/values"
)

// Call/construct opcodes repurpose Jump (these opcodes never branch) to
// carry an argument count, with the arguments themselves sitting in a
// contiguous run of registers immediately following the callee/receiver
// operand. This mirrors the one other place the format already uses a
// non-register literal operand (OP_ARRAY_DEFINE_OWN_PROPERTY's Src1 in
// instr_property.go), generalized to a count+run instead of a single
// literal index.

// noRegister marks an absent optional register operand (e.g.
// OP_INITIALIZE_CLASS's CreateClass stage when the class has no parent).
const noRegister uint32 = ^uint32(0)

// collectArgs gathers count consecutive registers starting at start into a
// fresh slice, the shape callFunctionValue/construct expect.
func collectArgs(frame *CallFrame, start uint32, count uint32) []values.Value {
	if count == 0 {
		return nil
	}
	args := make([]values.Value, count)
	for i := uint32(0); i < count; i++ {
		args[i] = frame.getReg(start + i)
	}
	return args
}

// execCall implements OP_CALL: Src1 is the callee register, args run from
// Src1+1 for Jump registers, result lands in Dst.
func (vm *VirtualMachine) execCall(st *ExecutionState, frame *CallFrame, inst *opcodes.Instruction) (*ExecutionResult, error) {
	callee := frame.getReg(inst.Src1)
	args := collectArgs(frame, inst.Src1+1, uint32(inst.Jump))
	result, err := vm.CallFunction(st, callee, values.Undefined, args)
	if err != nil {
		return nil, err
	}
	frame.setReg(inst.Dst, result)
	return advanceResult()
}

// execCallWithReceiver implements OP_CALL_WITH_RECEIVER: Src1 is the
// callee, Src2 is the explicit this-value register (a method call's
// `obj.method(...)` receiver), args run from Src2+1.
func (vm *VirtualMachine) execCallWithReceiver(st *ExecutionState, frame *CallFrame, inst *opcodes.Instruction) (*ExecutionResult, error) {
	callee := frame.getReg(inst.Src1)
	receiver := frame.getReg(inst.Src2)
	if inst.Flags&opcodes.FlagOptionalChain != 0 && callee.IsNullish() {
		frame.setReg(inst.Dst, values.Undefined)
		return advanceResult()
	}
	args := collectArgs(frame, inst.Src2+1, uint32(inst.Jump))
	result, err := vm.CallFunction(st, callee, receiver, args)
	if err != nil {
		return nil, err
	}
	frame.setReg(inst.Dst, result)
	return advanceResult()
}

// execCallComplex implements OP_CALL_COMPLEX, dispatching on SubKind to the
// handful of call shapes that need more than "evaluate callee, evaluate
// args, invoke" (§4.5).
func (vm *VirtualMachine) execCallComplex(st *ExecutionState, frame *CallFrame, inst *opcodes.Instruction) (*ExecutionResult, error) {
	switch opcodes.CallComplexKind(inst.SubKind) {
	case opcodes.CallInWithScope:
		callee := frame.getReg(inst.Src1)
		args := collectArgs(frame, inst.Src1+1, uint32(inst.Jump))
		result, err := vm.CallFunction(st, callee, values.Undefined, args)
		if err != nil {
			return nil, err
		}
		frame.setReg(inst.Dst, result)
		return advanceResult()

	case opcodes.CallMayBuiltinApply:
		callee := frame.getReg(inst.Src1)
		receiver := frame.getReg(inst.Src2)
		args := collectArgs(frame, inst.Src2+1, uint32(inst.Jump))
		fn, ok := callee.Ptr.(*values.FunctionObject)
		if ok && st.Realm.IsOriginalApply(fn) && len(args) >= 1 {
			// Function.prototype.apply's well-known fast path: args[0] is the
			// real receiver, args[1] (if present) is an array-like of the
			// spread argument list.
			applyThis := args[0]
			var spread []values.Value
			if len(args) >= 2 {
				var err error
				spread, err = vm.iterateToSlice(st, args[1])
				if err != nil {
					return nil, err
				}
			}
			result, err := vm.CallFunction(st, receiver, applyThis, spread)
			if err != nil {
				return nil, err
			}
			frame.setReg(inst.Dst, result)
			return advanceResult()
		}
		result, err := vm.CallFunction(st, callee, receiver, args)
		if err != nil {
			return nil, err
		}
		frame.setReg(inst.Dst, result)
		return advanceResult()

	case opcodes.CallMayBuiltinEval:
		// Direct eval would need its own compiler/parser entry point wired
		// through this callee; that boundary is out of scope here, so a
		// direct-eval call site behaves as an ordinary call against whatever
		// value is currently bound to the name `eval`.
		callee := frame.getReg(inst.Src1)
		args := collectArgs(frame, inst.Src1+1, uint32(inst.Jump))
		result, err := vm.CallFunction(st, callee, values.Undefined, args)
		if err != nil {
			return nil, err
		}
		frame.setReg(inst.Dst, result)
		return advanceResult()

	case opcodes.CallWithSpreadElement:
		callee := frame.getReg(inst.Src1)
		receiver := frame.getReg(inst.Src2)
		spreadSource := frame.getReg(inst.Src2 + 1)
		args, err := vm.iterateToSlice(st, spreadSource)
		if err != nil {
			return nil, err
		}
		result, err := vm.CallFunction(st, callee, receiver, args)
		if err != nil {
			return nil, err
		}
		frame.setReg(inst.Dst, result)
		return advanceResult()

	case opcodes.CallSuper:
		if frame.Function == nil || frame.Function.OuterClass == nil || frame.Function.OuterClass.ParentClass == nil {
			return nil, NewReferenceVMError("'super' keyword is only valid inside a derived class constructor")
		}
		parent := frame.Function.OuterClass.ParentClass
		args := collectArgs(frame, inst.Src1, uint32(inst.Jump))
		instance, err := vm.construct(st, parent.Constructor, args, frame.NewTarget)
		if err != nil {
			return nil, err
		}
		frame.This = instance
		frame.ThisInitialized = true
		frame.setReg(inst.Dst, instance)
		return advanceResult()

	case opcodes.CallImport:
		return nil, NewTypeVMError("dynamic import is not supported")

	default:
		return nil, NewOperandError("unknown CALL_COMPLEX sub-kind")
	}
}

// execNew implements OP_NEW: Src1 is the constructor register, args run
// from Src1+1 for Jump registers.
func (vm *VirtualMachine) execNew(st *ExecutionState, frame *CallFrame, inst *opcodes.Instruction) (*ExecutionResult, error) {
	ctor := frame.getReg(inst.Src1)
	args := collectArgs(frame, inst.Src1+1, uint32(inst.Jump))
	fn, ok := ctor.Ptr.(*values.FunctionObject)
	if !ok {
		return nil, NewTypeVMError("value is not a constructor")
	}
	instance, err := vm.construct(st, fn, args, ctor)
	if err != nil {
		return nil, err
	}
	frame.setReg(inst.Dst, instance)
	return advanceResult()
}

// execNewSpread implements OP_NEW_SPREAD: Src2 holds an iterable whose
// elements become the constructor's argument list.
func (vm *VirtualMachine) execNewSpread(st *ExecutionState, frame *CallFrame, inst *opcodes.Instruction) (*ExecutionResult, error) {
	ctor := frame.getReg(inst.Src1)
	spreadSource := frame.getReg(inst.Src2)
	fn, ok := ctor.Ptr.(*values.FunctionObject)
	if !ok {
		return nil, NewTypeVMError("value is not a constructor")
	}
	args, err := vm.iterateToSlice(st, spreadSource)
	if err != nil {
		return nil, err
	}
	instance, err := vm.construct(st, fn, args, ctor)
	if err != nil {
		return nil, err
	}
	frame.setReg(inst.Dst, instance)
	return advanceResult()
}

// execSuperReference implements OP_SUPER_REFERENCE: Dst receives the home
// object's prototype, the base every `super.prop` property lookup resolves
// against.
func (vm *VirtualMachine) execSuperReference(frame *CallFrame, inst *opcodes.Instruction) (*ExecutionResult, error) {
	if frame.HomeObject == nil || frame.HomeObject.Prototype == nil {
		return nil, NewReferenceVMError("'super' keyword is only valid inside a method")
	}
	frame.setReg(inst.Dst, values.FromPointer(frame.HomeObject.Prototype))
	return advanceResult()
}

// execMetaProperty implements OP_META_PROPERTY: new.target / import.meta.
func (vm *VirtualMachine) execMetaProperty(frame *CallFrame, inst *opcodes.Instruction) (*ExecutionResult, error) {
	switch opcodes.MetaPropertyKind(inst.SubKind) {
	case opcodes.MetaNewTarget:
		frame.setReg(inst.Dst, frame.NewTarget)
	case opcodes.MetaImportMeta:
		// No module loader is wired in; import.meta reads as an empty,
		// inert object rather than failing the whole evaluation.
		frame.setReg(inst.Dst, values.FromPointer(values.NewObject("Object", vm.objectPrototype)))
	default:
		return nil, NewOperandError("unknown META_PROPERTY sub-kind")
	}
	return advanceResult()
}

// applyFieldDefaults copies a class's captured field-initializer results
// onto a freshly allocated instance. Plain fields land as an ordinary own
// property via DefineOwn; private fields are appended into the
// []values.Value slot slice convention instr_property.go's
// readPrivateField/writePrivateField already established for
// obj.Internal, rather than a map.
func applyFieldDefaults(instance *values.Object, info *values.ClassInfo) {
	for name, v := range info.FieldDefaults {
		instance.DefineOwn(name, values.PropertyDescriptor{Value: v, Writable: true, Enumerable: true, Configurable: true})
	}
	if len(info.PrivateFieldDefaults) == 0 {
		return
	}
	maxSlot := -1
	for slot := range info.PrivateFieldDefaults {
		if slot > maxSlot {
			maxSlot = slot
		}
	}
	fields, _ := instance.Internal.([]values.Value)
	for len(fields) <= maxSlot {
		fields = append(fields, values.Undefined)
	}
	for slot, v := range info.PrivateFieldDefaults {
		fields[slot] = v
	}
	instance.Internal = fields
}

// construct implements the ECMAScript [[Construct]] internal method for a
// FunctionClassConstructor (or ordinary constructor function): allocates a
// fresh instance bound to the constructor's prototype, applies captured
// field defaults, then runs the constructor body with `this` already bound
// (base classes) or left uninitialized until a super() call binds it
// (derived classes, handled by execCallComplex's CallSuper case).
func (vm *VirtualMachine) construct(st *ExecutionState, fn *values.FunctionObject, args []values.Value, newTarget values.Value) (values.Value, error) {
	if fn == nil {
		return values.Undefined, NewTypeVMError("value is not a constructor")
	}
	if fn.Native != nil {
		return fn.Native(values.Undefined, args)
	}

	proto := vm.objectPrototype
	if pd, ok := fn.GetOwn("prototype"); ok {
		if p, ok := pd.Value.Ptr.(*values.Object); ok {
			proto = p
		}
	}
	instance := values.NewObject(fn.Name, proto)

	isDerived := fn.OuterClass != nil && fn.OuterClass.ParentClass != nil
	if !isDerived {
		if fn.OuterClass != nil {
			applyFieldDefaults(instance, fn.OuterClass)
		}
	}

	instanceValue := values.FromPointer(instance)
	result, err := vm.invoke(st, fn, instanceValue, args, newTarget, true)
	if err != nil {
		return values.Undefined, err
	}
	// A class constructor that explicitly returns an object overrides the
	// allocated instance (the one case [[Construct]] doesn't just discard
	// the return value); any other return type keeps the instance.
	if result.Type == values.TypePointer {
		if k := result.Ptr.Kind(); k == values.KindObject || k == values.KindArray || k == values.KindFunction {
			return result, nil
		}
	}
	return instanceValue, nil
}

// closureCapture is what OP_CREATE_FUNCTION stashes in a FunctionObject's
// Internal slot: the defining frame's lexical environment, plus (arrow
// functions only) the lexically-captured this/new.target, since arrows
// never get their own binding for either.
type closureCapture struct {
	Env             *env.LexicalEnvironment
	This            values.Value
	ThisInitialized bool
	NewTarget       values.Value
}

// invoke runs fn's body against an already-decided this-binding, shared by
// CallFunction (ordinary calls) and construct; generator/async resumption
// re-enters runFrame directly rather than going through here. Generator and async
// generator bodies suspend before their first instruction and hand back an
// IteratorObject instead of running eagerly; plain async/ordinary bodies
// run straight through runFrame.
func (vm *VirtualMachine) invoke(st *ExecutionState, fn *values.FunctionObject, thisArg values.Value, args []values.Value, newTarget values.Value, isConstructor bool) (values.Value, error) {
	if fn.Native != nil {
		return fn.Native(thisArg, args)
	}
	code, ok := fn.CodeBlock.(*registry.CodeBlock)
	if !ok || code == nil {
		return values.Undefined, NewTypeVMError("function %s has no executable body", fn.Name)
	}

	capture, _ := fn.Internal.(*closureCapture)
	var closureEnv *env.LexicalEnvironment
	if capture != nil {
		closureEnv = capture.Env
	}

	frame := newCallFrame(code, fn, closureEnv)
	frame.Arguments = args
	frame.HomeObject = fn.HomeObject
	frame.IsConstructorCall = isConstructor

	if code.Kind == values.FunctionArrow && capture != nil {
		frame.This = capture.This
		frame.ThisInitialized = capture.ThisInitialized
		frame.NewTarget = capture.NewTarget
	} else {
		frame.This = thisArg
		frame.ThisInitialized = !isConstructor || (fn.OuterClass == nil || fn.OuterClass.ParentClass == nil)
		frame.NewTarget = newTarget
	}

	if code.Kind == values.FunctionGenerator || code.Kind == values.FunctionAsyncGenerator {
		kind := opcodes.PauseYield
		gen := newGeneratorState(vm, st, frame, kind)
		iter := &values.IteratorObject{
			Object: values.Object{Structure: values.RootStructure(), Prototype: vm.objectPrototype, ClassName: "Generator", Extensible: true},
			Next: func() (values.IteratorRecord, error) {
				v, done, err := gen.Resume(values.Undefined)
				return values.IteratorRecord{Value: v, Done: done}, err
			},
			Return: func(v values.Value) (values.IteratorRecord, error) {
				rv, done, err := gen.Return(v)
				return values.IteratorRecord{Value: rv, Done: done}, err
			},
		}
		return values.FromPointer(iter), nil
	}

	st.pushFrame(frame)
	defer st.popFrame()

	result, err := vm.runFrame(st, frame)
	if err != nil {
		return values.Undefined, err
	}
	if result.Returned {
		return result.ReturnValue, nil
	}
	return values.Undefined, nil
}

// CallFunction implements the ECMAScript [[Call]] internal method: native
// functions run directly, bytecode-backed functions get a fresh CallFrame
// pushed onto state's call stack and run to completion (or suspension, for
// generator/async bodies) via runFrame.
func (vm *VirtualMachine) CallFunction(st *ExecutionState, callee values.Value, thisArg values.Value, args []values.Value) (values.Value, error) {
	fn, ok := callee.Ptr.(*values.FunctionObject)
	if !ok {
		return values.Undefined, NewTypeVMError("value is not a function")
	}
	if fn.FuncKind == values.FunctionClassConstructor {
		return values.Undefined, NewTypeVMError("Class constructor %s cannot be invoked without 'new'", fn.Name)
	}
	return vm.invoke(st, fn, thisArg, args, values.Undefined, false)
}
