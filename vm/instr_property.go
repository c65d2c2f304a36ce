package vm

import (
	"github.com/wudi/escargot-core/opcodes"
	"github.com/wudi/escargot-core/values"
)

// PropertyExecutor dispatches the property-access opcode family: generic
// get/set, the IC-backed precomputed get/set, own-property definition (object
// literals, array literals, accessor pairs), and the super/private-member
// complex forms. No teacher file shares this shape (PHP property access never
// needed an inline-cache layer); grounded on the OperandReader/BaseExecutor
// plumbing the teacher's executor family established, wired to package ic.
type PropertyExecutor struct {
	*BaseExecutor
}

func NewPropertyExecutor(state *ExecutionState, frame *CallFrame, inst *opcodes.Instruction) *PropertyExecutor {
	return &PropertyExecutor{BaseExecutor: NewBaseExecutor(state, frame, inst)}
}

func (p *PropertyExecutor) Execute() (*ExecutionResult, error) {
	switch p.inst.Opcode {
	case opcodes.OP_GET_OBJECT:
		return p.execGet()
	case opcodes.OP_SET_OBJECT:
		return p.execSet()
	case opcodes.OP_GET_OBJECT_PRECOMPUTED:
		return p.execGetPrecomputed()
	case opcodes.OP_SET_OBJECT_PRECOMPUTED:
		return p.execSetPrecomputed()
	case opcodes.OP_DEFINE_OWN_PROPERTY:
		return p.execDefineOwnProperty()
	case opcodes.OP_DEFINE_OWN_PROPERTY_WITH_NAME:
		return p.execDefineOwnPropertyWithName()
	case opcodes.OP_DEFINE_GETTER_SETTER:
		return p.execDefineGetterSetter()
	case opcodes.OP_ARRAY_DEFINE_OWN_PROPERTY:
		return p.execArrayDefineOwnProperty()
	case opcodes.OP_ARRAY_DEFINE_OWN_PROPERTY_SPREAD:
		return p.execArrayDefineOwnPropertySpread()
	case opcodes.OP_COMPLEX_GET_OBJECT:
		return p.execComplexGet()
	case opcodes.OP_COMPLEX_SET_OBJECT:
		return p.execComplexSet()
	case opcodes.OP_GET_METHOD:
		return p.execGetMethod()
	default:
		return nil, NewOpcodeError(p.inst.Opcode)
	}
}

func toPropertyKey(v values.Value) string {
	if v.IsSymbol() {
		return "@@symbol:" + v.AsSymbol().Description
	}
	return values.ToStringForConcat(v)
}

// execGet implements OP_GET_OBJECT: Dst = regs[Src1][ToPropertyKey(regs[Src2])].
func (p *PropertyExecutor) execGet() (*ExecutionResult, error) {
	receiver := p.reader.Src1()
	key := toPropertyKey(p.reader.Src2())
	obj := receiver.BaseObject()
	if obj == nil {
		return nil, NewTypeVMError("Cannot read properties of %s (reading '%s')", receiver.TypeName(false), key)
	}
	pd, found := obj.Get(key)
	if !found {
		return p.CreateAdvanceResult(values.Undefined)
	}
	return p.CreateAdvanceResult(pd.Value)
}

// execSet implements OP_SET_OBJECT: regs[Dst][ToPropertyKey(regs[Src1])] = regs[Src2].
func (p *PropertyExecutor) execSet() (*ExecutionResult, error) {
	receiver := p.frame.getReg(p.inst.Dst)
	key := toPropertyKey(p.reader.Src1())
	value := p.reader.Src2()
	obj := receiver.BaseObject()
	if obj == nil {
		return nil, NewTypeVMError("Cannot set properties of %s (setting '%s')", receiver.TypeName(false), key)
	}
	if pd, ok := obj.GetOwn(key); ok {
		pd.Value = value
		obj.DefineOwn(key, pd)
	} else if obj.Extensible {
		obj.DefineOwn(key, values.PropertyDescriptor{Value: value, Writable: true, Enumerable: true, Configurable: true})
	}
	return advanceResult()
}

// execGetPrecomputed implements OP_GET_OBJECT_PRECOMPUTED: Dst = regs[Src1].name,
// with name = Constants[Src2] and the call-site IC slot identified by Jump.
func (p *PropertyExecutor) execGetPrecomputed() (*ExecutionResult, error) {
	receiver := p.reader.Src1()
	nameVal, err := p.reader.Constant(p.inst.Src2)
	if err != nil {
		return nil, err
	}
	name := nameVal.AsString()
	obj := receiver.BaseObject()
	if obj == nil {
		return nil, NewTypeVMError("Cannot read properties of %s (reading '%s')", receiver.TypeName(false), name)
	}

	cache := p.frame.Code.GetCache(p.inst.Jump, name)
	if res, ok := cache.Lookup(obj); ok {
		if !res.Found {
			return p.CreateAdvanceResult(values.Undefined)
		}
		return p.CreateAdvanceResult(res.Value)
	}

	chain, idx, pd, found := walkPropertyChain(obj, name)
	cache.RecordMiss(chain, idx, found, found)
	if !found {
		return p.CreateAdvanceResult(values.Undefined)
	}
	return p.CreateAdvanceResult(pd.Value)
}

// execSetPrecomputed implements OP_SET_OBJECT_PRECOMPUTED: regs[Dst].name =
// regs[Src2], with name = Constants[Src1] and the call-site IC slot Jump.
func (p *PropertyExecutor) execSetPrecomputed() (*ExecutionResult, error) {
	receiver := p.frame.getReg(p.inst.Dst)
	nameVal, err := p.reader.Constant(p.inst.Src1)
	if err != nil {
		return nil, err
	}
	name := nameVal.AsString()
	value := p.reader.Src2()
	obj := receiver.BaseObject()
	if obj == nil {
		return nil, NewTypeVMError("Cannot set properties of %s (setting '%s')", receiver.TypeName(false), name)
	}

	cache := p.frame.Code.SetCache(p.inst.Jump)
	if cache.TryOwnWrite(obj, value) {
		return advanceResult()
	}
	if cache.TryTransition(obj, name, value) {
		return advanceResult()
	}

	if pd, ok := obj.GetOwn(name); ok {
		if pd.Getter != nil || pd.Setter != nil {
			cache.GiveUp()
			if setter, ok := pd.Setter.(*values.FunctionObject); ok && setter != nil {
				_, err := callFunctionValue(p.state, values.FromPointer(setter), receiver, []values.Value{value})
				return advanceResult2(err)
			}
			return advanceResult()
		}
		before := obj.Structure
		idx, _ := before.IndexOf(name)
		pd.Value = value
		obj.DefineOwn(name, pd)
		cache.RecordOwnWrite(before, idx)
		return advanceResult()
	}

	if !obj.Extensible {
		return advanceResult()
	}
	before := obj.Structure
	obj.DefineOwn(name, values.PropertyDescriptor{Value: value, Writable: true, Enumerable: true, Configurable: true})
	cache.RecordTransition(before, []*values.ObjectStructure{before}, obj.Structure)
	return advanceResult()
}

// walkPropertyChain mirrors Object.Get but also reports the chain of
// structures walked and the slot index found, the shape GetPrecomputedCache's
// RecordMiss needs to install a new probe.
func walkPropertyChain(obj *values.Object, name string) ([]*values.ObjectStructure, int, values.PropertyDescriptor, bool) {
	var chain []*values.ObjectStructure
	for cur := obj; cur != nil; cur = cur.Prototype {
		chain = append(chain, cur.Structure)
		if idx, ok := cur.Structure.IndexOf(name); ok {
			return chain, idx, cur.Slots[idx], true
		}
	}
	return chain, 0, values.PropertyDescriptor{}, false
}

// execDefineOwnProperty implements OP_DEFINE_OWN_PROPERTY: object-literal
// shorthand `{ name: value }` — regs[Dst].DefineOwn(Constants[Src1], regs[Src2]).
func (p *PropertyExecutor) execDefineOwnProperty() (*ExecutionResult, error) {
	target := p.frame.getReg(p.inst.Dst)
	nameVal, err := p.reader.Constant(p.inst.Src1)
	if err != nil {
		return nil, err
	}
	obj := target.BaseObject()
	if obj == nil {
		return nil, NewTypeVMError("cannot define property on non-object")
	}
	obj.DefineOwn(nameVal.AsString(), values.PropertyDescriptor{
		Value: p.reader.Src2(), Writable: true, Enumerable: true, Configurable: true,
	})
	return advanceResult()
}

// execDefineOwnPropertyWithName implements OP_DEFINE_OWN_PROPERTY_WITH_NAME:
// computed-key object-literal entry `{ [expr]: value }`.
func (p *PropertyExecutor) execDefineOwnPropertyWithName() (*ExecutionResult, error) {
	target := p.frame.getReg(p.inst.Dst)
	key := toPropertyKey(p.reader.Src1())
	obj := target.BaseObject()
	if obj == nil {
		return nil, NewTypeVMError("cannot define property on non-object")
	}
	obj.DefineOwn(key, values.PropertyDescriptor{Value: p.reader.Src2(), Writable: true, Enumerable: true, Configurable: true})
	return advanceResult()
}

// execDefineGetterSetter implements OP_DEFINE_GETTER_SETTER: installs an
// accessor property on regs[Dst] named Constants[Src1], function regs[Src2],
// SubKind (reused from FieldKind) distinguishing getter from setter.
func (p *PropertyExecutor) execDefineGetterSetter() (*ExecutionResult, error) {
	target := p.frame.getReg(p.inst.Dst)
	nameVal, err := p.reader.Constant(p.inst.Src1)
	if err != nil {
		return nil, err
	}
	obj := target.BaseObject()
	if obj == nil {
		return nil, NewTypeVMError("cannot define accessor on non-object")
	}
	name := nameVal.AsString()
	accessor := p.reader.Src2().Ptr

	pd, exists := obj.GetOwn(name)
	if !exists {
		pd = values.PropertyDescriptor{Enumerable: true, Configurable: true}
	}
	switch opcodes.FieldKind(p.inst.SubKind) {
	case opcodes.FieldGetter:
		pd.Getter = accessor
	case opcodes.FieldSetter:
		pd.Setter = accessor
	}
	obj.DefineOwn(name, pd)
	return advanceResult()
}

// execArrayDefineOwnProperty implements OP_ARRAY_DEFINE_OWN_PROPERTY: array
// literal element `arr[Src1] = regs[Src2]` (Src1 is the literal index, not a
// register).
func (p *PropertyExecutor) execArrayDefineOwnProperty() (*ExecutionResult, error) {
	target := p.frame.getReg(p.inst.Dst)
	arr, ok := target.Ptr.(*values.Array)
	if !ok {
		return nil, NewTypeVMError("ARRAY_DEFINE_OWN_PROPERTY on a non-array")
	}
	arr.SetIndex(p.inst.Src1, p.reader.Src2())
	return advanceResult()
}

// execArrayDefineOwnPropertySpread implements
// OP_ARRAY_DEFINE_OWN_PROPERTY_SPREAD: `[...regs[Src1]]` element, appending
// every value the source yields onto regs[Dst] starting at its current length.
func (p *PropertyExecutor) execArrayDefineOwnPropertySpread() (*ExecutionResult, error) {
	target := p.frame.getReg(p.inst.Dst)
	arr, ok := target.Ptr.(*values.Array)
	if !ok {
		return nil, NewTypeVMError("ARRAY_DEFINE_OWN_PROPERTY_SPREAD on a non-array")
	}
	items, err := p.state.VM.iterateToSlice(p.state, p.reader.Src1())
	if err != nil {
		return nil, err
	}
	for _, v := range items {
		arr.SetIndex(arr.Length, v)
	}
	return advanceResult()
}

// execComplexGet implements OP_COMPLEX_GET_OBJECT: super-property and
// private-field reads. SubKind selects which; a private name is resolved
// through the current frame's home object's OuterClass.PrivateFields table.
func (p *PropertyExecutor) execComplexGet() (*ExecutionResult, error) {
	nameVal, err := p.reader.Constant(p.inst.Src2)
	if err != nil {
		return nil, err
	}
	name := nameVal.AsString()

	if isPrivateName(name) {
		v, err := p.readPrivateField(p.reader.Src1(), name)
		if err != nil {
			return nil, err
		}
		return p.CreateAdvanceResult(v)
	}

	// super.prop: look up starting at the frame's HomeObject's prototype,
	// invoked with the current `this`.
	home := p.frame.HomeObject
	if home == nil || home.Prototype == nil {
		return nil, NewTypeVMError("'super' keyword is only valid inside a class")
	}
	pd, found := home.Prototype.Get(name)
	if !found {
		return p.CreateAdvanceResult(values.Undefined)
	}
	if getter, ok := pd.Getter.(*values.FunctionObject); ok && getter != nil {
		result, err := callFunctionValue(p.state, values.FromPointer(getter), p.frame.This, nil)
		if err != nil {
			return nil, err
		}
		return p.CreateAdvanceResult(result)
	}
	return p.CreateAdvanceResult(pd.Value)
}

// execComplexSet implements OP_COMPLEX_SET_OBJECT: super-property and
// private-field writes, mirroring execComplexGet's addressing.
func (p *PropertyExecutor) execComplexSet() (*ExecutionResult, error) {
	nameVal, err := p.reader.Constant(p.inst.Src1)
	if err != nil {
		return nil, err
	}
	name := nameVal.AsString()
	value := p.reader.Src2()

	if isPrivateName(name) {
		return advanceResult2(p.writePrivateField(p.frame.getReg(p.inst.Dst), name, value))
	}

	home := p.frame.HomeObject
	if home == nil || home.Prototype == nil {
		return nil, NewTypeVMError("'super' keyword is only valid inside a class")
	}
	if pd, found := home.Prototype.Get(name); found {
		if setter, ok := pd.Setter.(*values.FunctionObject); ok && setter != nil {
			_, err := callFunctionValue(p.state, values.FromPointer(setter), p.frame.This, []values.Value{value})
			return advanceResult2(err)
		}
	}
	return advanceResult()
}

// execGetMethod implements OP_GET_METHOD: like OP_GET_OBJECT but throws a
// TypeError immediately if the resolved value is not callable, the shape a
// `obj.method()` call site wants before invoking it.
func (p *PropertyExecutor) execGetMethod() (*ExecutionResult, error) {
	receiver := p.reader.Src1()
	key := toPropertyKey(p.reader.Src2())
	obj := receiver.BaseObject()
	if obj == nil {
		return nil, NewTypeVMError("Cannot read properties of %s (reading '%s')", receiver.TypeName(false), key)
	}
	pd, found := obj.Get(key)
	if !found || !pd.Value.IsCallable() {
		return nil, NewTypeVMError("%s is not a function", key)
	}
	return p.CreateAdvanceResult(pd.Value)
}

func isPrivateName(name string) bool {
	return len(name) > 0 && name[0] == '#'
}

func (p *PropertyExecutor) readPrivateField(receiver values.Value, name string) (values.Value, error) {
	obj := receiver.BaseObject()
	if obj == nil || p.frame.Function == nil || p.frame.Function.OuterClass == nil {
		return values.Undefined, NewTypeVMError("Cannot read private member %s from an object whose class did not declare it", name)
	}
	slot, ok := p.frame.Function.OuterClass.PrivateFields[name]
	if !ok {
		return values.Undefined, NewTypeVMError("Cannot read private member %s from an object whose class did not declare it", name)
	}
	fields, _ := obj.Internal.([]values.Value)
	if slot >= len(fields) {
		return values.Undefined, nil
	}
	return fields[slot], nil
}

func (p *PropertyExecutor) writePrivateField(receiver values.Value, name string, value values.Value) error {
	obj := receiver.BaseObject()
	if obj == nil || p.frame.Function == nil || p.frame.Function.OuterClass == nil {
		return NewTypeVMError("Cannot write private member %s to an object whose class did not declare it", name)
	}
	slot, ok := p.frame.Function.OuterClass.PrivateFields[name]
	if !ok {
		return NewTypeVMError("Cannot write private member %s to an object whose class did not declare it", name)
	}
	fields, _ := obj.Internal.([]values.Value)
	for len(fields) <= slot {
		fields = append(fields, values.Undefined)
	}
	fields[slot] = value
	obj.Internal = fields
	return nil
}

// advanceResult2 adapts a plain error into the (*ExecutionResult, error)
// shape for handlers whose only outcome is success-or-error.
func advanceResult2(err error) (*ExecutionResult, error) {
	if err != nil {
		return nil, err
	}
	return advanceResult()
}
