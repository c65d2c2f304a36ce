package vm

import (
	"sync"

	"github.com/wudi/escargot-core/opcodes"
	"github.com/wudi/escargot-core/values"
)

// ClassManager resolves class declarations into live ClassInfo/prototype
// pairs and drives the multi-stage OP_INITIALIZE_CLASS opcode (spec.md
// §4.8 "InitializeClass", an 11-stage pipeline: CreateClass,
// SetFieldSize, then Init*/Set*Data pairs for instance/static,
// private/public fields, ending in CleanupStaticData). Reshaped from the
// teacher's ClassManager{ClassTable, currentClass}: PHP classes resolve
// lazily against a name table because declarations can appear in any
// order and are case-insensitive; ECMAScript classes are resolved once, at
// the class declaration's own bytecode site, so this manager tracks only
// the one class under construction rather than a whole table of deferred
// ones.
type ClassManager struct {
	mu      sync.RWMutex
	current *classInit
}

// pendingField is the in-flight state between an Init*Field stage and the
// Set*FieldData stage that commits its value, the two-phase split
// OP_INITIALIZE_CLASS uses so a field's initializer bytecode (evaluated by
// the caller between the two stages, its result left in a register) can be
// threaded through without this package knowing anything about bytecode
// evaluation.
type pendingField struct {
	name      string
	kind      opcodes.FieldKind
	isPrivate bool
	isStatic  bool
	slot      int // private-field slot, meaningful only when isPrivate
}

// classInit accumulates the stages OP_INITIALIZE_CLASS feeds it before the
// finished ClassInfo and prototype Object are stamped onto the constructor
// FunctionObject.
type classInit struct {
	name       string
	info       *values.ClassInfo
	proto      *values.Object
	ctor       *values.FunctionObject
	staticData *values.Object
	fieldSlot  int

	pending *pendingField
}

func NewClassManager() *ClassManager {
	return &ClassManager{}
}

// BeginClass handles ClassStageCreateClass: allocates the prototype object,
// ClassInfo, and (if parent is non-nil) links ParentClass/Prototype onto it.
func (cm *ClassManager) BeginClass(name string, parent *values.ClassInfo, objectProto *values.Object) *values.FunctionObject {
	proto := values.NewObject(name+".prototype", objectProto)
	if parent != nil && parent.Constructor != nil {
		if parentProtoDesc, ok := parent.Constructor.GetOwn("prototype"); ok {
			proto.Prototype = parentProtoDesc.Value.BaseObject()
		}
	}

	info := &values.ClassInfo{
		Name:                name,
		ParentClass:         parent,
		PrivateFields:       make(map[string]int),
		FieldDefaults:       make(map[string]values.Value),
		PrivateFieldDefaults: make(map[int]values.Value),
		StaticPrivateFields: make(map[string]int),
	}

	ctor := &values.FunctionObject{
		Object:     values.Object{Structure: values.RootStructure(), Prototype: objectProto, ClassName: "Function", Extensible: true},
		FuncKind:   values.FunctionClassConstructor,
		Name:       name,
		OuterClass: info,
	}
	info.Constructor = ctor
	ctor.DefineOwn("prototype", values.PropertyDescriptor{Value: values.FromPointer(proto), Writable: false, Enumerable: false, Configurable: false})
	proto.DefineOwn("constructor", values.PropertyDescriptor{Value: values.FromPointer(ctor), Writable: true, Enumerable: false, Configurable: true})

	cm.mu.Lock()
	cm.current = &classInit{name: name, info: info, proto: proto, ctor: ctor}
	cm.mu.Unlock()

	return ctor
}

// DeclarePrivateField records a private field's slot index, used by
// ClassStageInitPrivateField and resolved later at private-member access
// opcodes via FunctionObject.OuterClass.PrivateFields.
func (cm *ClassManager) DeclarePrivateField(name string) int {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if cm.current == nil {
		return -1
	}
	slot := cm.current.fieldSlot
	cm.current.fieldSlot++
	cm.current.info.PrivateFields[name] = slot
	return slot
}

// SetFieldSize handles ClassStageSetFieldSize.
func (cm *ClassManager) SetFieldSize(size int) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if cm.current != nil {
		cm.current.info.FieldSize = size
	}
}

// DefineMethod installs a method (own, non-enumerable) on the prototype or
// the constructor object depending on isStatic. This is the entry point
// both InitField/InitStaticField's FieldMethod case and a future
// non-field-syntax method opcode can share, rather than each duplicating
// the HomeObject/DefineOwn bookkeeping.
func (cm *ClassManager) DefineMethod(name string, fn *values.FunctionObject, isStatic bool) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if cm.current == nil {
		return
	}
	cm.defineMethodLocked(name, fn, isStatic)
}

func (cm *ClassManager) defineMethodLocked(name string, fn *values.FunctionObject, isStatic bool) {
	target := cm.current.proto
	if isStatic {
		fn.HomeObject = &cm.current.ctor.Object
		target = &cm.current.ctor.Object
	} else {
		fn.HomeObject = cm.current.proto
	}
	target.DefineOwn(name, values.PropertyDescriptor{Value: values.FromPointer(fn), Writable: true, Enumerable: false, Configurable: true})
}

// EnsureStaticData handles the lazily-created static-field storage object
// ClassStageInitStaticField/SetStaticFieldData write into.
func (cm *ClassManager) EnsureStaticData() *values.Object {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if cm.current == nil {
		return nil
	}
	if cm.current.staticData == nil {
		cm.current.staticData = values.NewObject(cm.current.name+".static", nil)
		cm.current.info.StaticData = cm.current.staticData
	}
	return cm.current.staticData
}

// InitField handles ClassStageInitField: declares a public instance field
// named name, kind distinguishing a plain value field from a field whose
// value is a method/getter/setter (the rare "field holds a bound
// function" class-field-arrow pattern). Method/getter/setter fields are
// installed on the prototype immediately since their value (fn) is the
// method itself, not something a later initializer expression computes;
// plain value fields stash a pendingField for the paired SetFieldData
// stage to commit once the initializer expression's result is available.
func (cm *ClassManager) InitField(name string, kind opcodes.FieldKind, fn *values.FunctionObject) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if cm.current == nil {
		return
	}
	switch kind {
	case opcodes.FieldMethod:
		cm.defineMethodLocked(name, fn, false)
	case opcodes.FieldGetter:
		cm.defineAccessorLocked(name, fn, true, false)
	case opcodes.FieldSetter:
		cm.defineAccessorLocked(name, fn, false, true)
	default:
		cm.current.pending = &pendingField{name: name, kind: kind}
	}
}

// InitPrivateField handles ClassStageInitPrivateField: same shape as
// InitField but allocates (or reuses) a private-field slot rather than a
// named prototype property.
func (cm *ClassManager) InitPrivateField(name string, kind opcodes.FieldKind, fn *values.FunctionObject) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if cm.current == nil {
		return
	}
	slot, ok := cm.current.info.PrivateFields[name]
	if !ok {
		slot = cm.current.fieldSlot
		cm.current.fieldSlot++
		cm.current.info.PrivateFields[name] = slot
	}
	if kind != opcodes.FieldValue {
		// a private method/accessor still needs HomeObject set to the
		// prototype so `super` resolves correctly from inside it, even
		// though its storage is the private slot table, not a named
		// property.
		if fn != nil {
			fn.HomeObject = cm.current.proto
		}
	}
	cm.current.pending = &pendingField{name: name, kind: kind, isPrivate: true, slot: slot}
}

func (cm *ClassManager) defineAccessorLocked(name string, fn *values.FunctionObject, isGetter, isSetter bool) {
	fn.HomeObject = cm.current.proto
	pd, exists := cm.current.proto.GetOwn(name)
	if !exists {
		pd = values.PropertyDescriptor{Enumerable: false, Configurable: true}
	}
	switch {
	case isGetter:
		pd.Getter = fn
	case isSetter:
		pd.Setter = fn
	default:
		pd.Value = values.FromPointer(fn)
		pd.Writable = true
	}
	cm.current.proto.DefineOwn(name, pd)
}

// SetFieldData handles ClassStageSetFieldData: commits value as the
// pending public instance field's default, later copied onto every new
// instance at construction time.
func (cm *ClassManager) SetFieldData(value values.Value) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if cm.current == nil || cm.current.pending == nil || cm.current.pending.isPrivate {
		return
	}
	cm.current.info.FieldDefaults[cm.current.pending.name] = value
	cm.current.pending = nil
}

// SetPrivateFieldData handles ClassStageSetPrivateFieldData, the private
// counterpart to SetFieldData.
func (cm *ClassManager) SetPrivateFieldData(value values.Value) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if cm.current == nil || cm.current.pending == nil || !cm.current.pending.isPrivate {
		return
	}
	cm.current.info.PrivateFieldDefaults[cm.current.pending.slot] = value
	cm.current.pending = nil
}

// InitStaticField handles ClassStageInitStaticField: same two-phase split
// as InitField, but the commit stage (SetStaticFieldData) writes straight
// into the class's static storage object since statics run once, at class
// definition time, rather than being deferred to instance construction.
func (cm *ClassManager) InitStaticField(name string, kind opcodes.FieldKind, fn *values.FunctionObject) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if cm.current == nil {
		return
	}
	if kind == opcodes.FieldMethod {
		cm.defineMethodLocked(name, fn, true)
		return
	}
	if kind != opcodes.FieldValue {
		fn.HomeObject = &cm.current.ctor.Object
		pd, exists := cm.current.ctor.GetOwn(name)
		if !exists {
			pd = values.PropertyDescriptor{Enumerable: false, Configurable: true}
		}
		switch kind {
		case opcodes.FieldGetter:
			pd.Getter = fn
		case opcodes.FieldSetter:
			pd.Setter = fn
		}
		cm.current.ctor.DefineOwn(name, pd)
		return
	}
	cm.current.pending = &pendingField{name: name, kind: kind, isStatic: true}
}

// InitStaticPrivateField handles ClassStageInitStaticPrivateField.
func (cm *ClassManager) InitStaticPrivateField(name string, kind opcodes.FieldKind, fn *values.FunctionObject) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if cm.current == nil {
		return
	}
	slot, ok := cm.current.info.StaticPrivateFields[name]
	if !ok {
		slot = len(cm.current.info.StaticPrivateData)
		cm.current.info.StaticPrivateFields[name] = slot
		cm.current.info.StaticPrivateData = append(cm.current.info.StaticPrivateData, values.Undefined)
	}
	if kind != opcodes.FieldValue && fn != nil {
		fn.HomeObject = &cm.current.ctor.Object
	}
	cm.current.pending = &pendingField{name: name, kind: kind, isStatic: true, isPrivate: true, slot: slot}
}

// SetStaticFieldData handles ClassStageSetStaticFieldData: writes value
// directly into the lazily-created static-data object.
func (cm *ClassManager) SetStaticFieldData(value values.Value) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if cm.current == nil || cm.current.pending == nil || cm.current.pending.isPrivate || !cm.current.pending.isStatic {
		return
	}
	cm.ensureStaticDataLocked()
	cm.current.staticData.DefineOwn(cm.current.pending.name, values.PropertyDescriptor{Value: value, Writable: true, Enumerable: true, Configurable: true})
	cm.current.pending = nil
}

// SetStaticPrivateFieldData handles ClassStageSetStaticPrivateFieldData.
func (cm *ClassManager) SetStaticPrivateFieldData(value values.Value) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if cm.current == nil || cm.current.pending == nil || !cm.current.pending.isPrivate || !cm.current.pending.isStatic {
		return
	}
	cm.current.info.StaticPrivateData[cm.current.pending.slot] = value
	cm.current.pending = nil
}

func (cm *ClassManager) ensureStaticDataLocked() {
	if cm.current.staticData == nil {
		cm.current.staticData = values.NewObject(cm.current.name+".static", nil)
		cm.current.info.StaticData = cm.current.staticData
	}
}

// FinishClass handles ClassStageCleanupStaticData: returns the finished
// constructor and clears the in-progress state.
func (cm *ClassManager) FinishClass() *values.FunctionObject {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if cm.current == nil {
		return nil
	}
	ctor := cm.current.ctor
	cm.current = nil
	return ctor
}

// Current returns the ClassInfo under construction, or nil.
func (cm *ClassManager) Current() *values.ClassInfo {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	if cm.current == nil {
		return nil
	}
	return cm.current.info
}
