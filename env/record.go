// Package env implements the lexical environment chain and its
// EnvironmentRecord variants (spec "Environment"), and name-binding
// resolution (spec §4.4).
package env

import (
	"golang.org/x/exp/maps"

	"github.com/wudi/escargot-core/values"
)

// Record is the interface every EnvironmentRecord variant implements.
type Record interface {
	HasBinding(name string) (slot int, ok bool)
	CreateBinding(name string, mutable, deletable, strict bool)
	InitializeBindingByIndex(slot int, value values.Value)
	GetBindingValue(name string) (value values.Value, present bool)
	SetMutableBindingByBindingSlot(slot int, name string, value values.Value) error
	DeleteBinding(name string) bool
}

type bindingEntry struct {
	value      values.Value
	mutable    bool
	deletable  bool
	strict     bool
	initialized bool
}

// DeclarativeRecordNotIndexed addresses bindings by name in a plain map;
// grounded on the teacher's by-name `sync.Map` variable storage
// (`vm/variable_manager.go`), generalized to track the mutable/deletable/
// TDZ-initialized attributes ECMAScript declarative bindings need.
type DeclarativeRecordNotIndexed struct {
	bindings map[string]*bindingEntry
}

func NewDeclarativeRecordNotIndexed() *DeclarativeRecordNotIndexed {
	return &DeclarativeRecordNotIndexed{bindings: make(map[string]*bindingEntry)}
}

func (r *DeclarativeRecordNotIndexed) HasBinding(name string) (int, bool) {
	_, ok := r.bindings[name]
	if !ok {
		return 0, false
	}
	return 0, true
}

func (r *DeclarativeRecordNotIndexed) CreateBinding(name string, mutable, deletable, strict bool) {
	r.bindings[name] = &bindingEntry{mutable: mutable, deletable: deletable, strict: strict}
}

func (r *DeclarativeRecordNotIndexed) InitializeBindingByIndex(_ int, _ values.Value) {
	panic("DeclarativeRecordNotIndexed addresses bindings by name, not index")
}

// InitializeBinding sets a not-yet-initialized binding's value (the
// by-name counterpart to InitializeBindingByIndex), used for `let`/`const`
// TDZ exit and function/class hoisted declarations.
func (r *DeclarativeRecordNotIndexed) InitializeBinding(name string, value values.Value) {
	if e, ok := r.bindings[name]; ok {
		e.value = value
		e.initialized = true
	}
}

func (r *DeclarativeRecordNotIndexed) GetBindingValue(name string) (values.Value, bool) {
	e, ok := r.bindings[name]
	if !ok {
		return values.Undefined, false
	}
	if !e.initialized {
		return values.Empty, true // caller must recognize Empty as "uninitialized" and throw
	}
	return e.value, true
}

func (r *DeclarativeRecordNotIndexed) SetMutableBindingByBindingSlot(_ int, name string, value values.Value) error {
	e, ok := r.bindings[name]
	if !ok {
		return values.NewTypeError("binding %q does not exist", name)
	}
	if !e.mutable {
		return values.NewTypeError("assignment to constant variable %q", name)
	}
	e.value = value
	e.initialized = true
	return nil
}

func (r *DeclarativeRecordNotIndexed) DeleteBinding(name string) bool {
	e, ok := r.bindings[name]
	if !ok {
		return true
	}
	if !e.deletable {
		return false
	}
	delete(r.bindings, name)
	return true
}

// DeclarativeRecordIndexed addresses bindings by a precomputed slot index,
// the fast path the bytecode compiler emits for locals it can resolve
// statically; grounded on `vm/context.go`'s `CallFrame.Locals
// map[uint32]*values.Value` + `SlotNames`/`NameSlots` pair.
type DeclarativeRecordIndexed struct {
	slots     []bindingEntry
	nameSlots map[string]int
}

func NewDeclarativeRecordIndexed(capacity int) *DeclarativeRecordIndexed {
	return &DeclarativeRecordIndexed{
		slots:     make([]bindingEntry, 0, capacity),
		nameSlots: make(map[string]int, capacity),
	}
}

func (r *DeclarativeRecordIndexed) HasBinding(name string) (int, bool) {
	idx, ok := r.nameSlots[name]
	return idx, ok
}

func (r *DeclarativeRecordIndexed) CreateBinding(name string, mutable, deletable, strict bool) {
	if _, ok := r.nameSlots[name]; ok {
		return
	}
	idx := len(r.slots)
	r.slots = append(r.slots, bindingEntry{mutable: mutable, deletable: deletable, strict: strict})
	r.nameSlots[name] = idx
}

// DeclareSlot reserves a slot index without a name, for bindings the
// compiler already resolved statically (the common case on this fast
// path); returns the slot index.
func (r *DeclarativeRecordIndexed) DeclareSlot(mutable bool) int {
	idx := len(r.slots)
	r.slots = append(r.slots, bindingEntry{mutable: mutable})
	return idx
}

func (r *DeclarativeRecordIndexed) InitializeBindingByIndex(slot int, value values.Value) {
	r.slots[slot].value = value
	r.slots[slot].initialized = true
}

func (r *DeclarativeRecordIndexed) GetBindingValue(name string) (values.Value, bool) {
	idx, ok := r.nameSlots[name]
	if !ok {
		return values.Undefined, false
	}
	return r.GetBindingValueBySlot(idx)
}

func (r *DeclarativeRecordIndexed) GetBindingValueBySlot(slot int) (values.Value, bool) {
	if slot < 0 || slot >= len(r.slots) {
		return values.Undefined, false
	}
	e := r.slots[slot]
	if !e.initialized {
		return values.Empty, true
	}
	return e.value, true
}

func (r *DeclarativeRecordIndexed) SetMutableBindingByBindingSlot(slot int, name string, value values.Value) error {
	if slot < 0 || slot >= len(r.slots) {
		return values.NewTypeError("binding slot %d out of range for %q", slot, name)
	}
	if !r.slots[slot].mutable {
		return values.NewTypeError("assignment to constant variable %q", name)
	}
	r.slots[slot].value = value
	r.slots[slot].initialized = true
	return nil
}

func (r *DeclarativeRecordIndexed) DeleteBinding(name string) bool {
	// Indexed bindings are compiler-resolved locals; ECMAScript never
	// allows deleting a declared local/let/const/function binding.
	_, ok := r.nameSlots[name]
	return !ok
}

// ObjectEnvironmentRecord backs `with` statements and the global object's
// declarative-looking bindings: every binding is simply a property of a
// backing object. Grounded on the teacher's GlobalVars sync.Map, here
// generalized to any backing *values.Object.
type ObjectEnvironmentRecord struct {
	Bindings       *values.Object
	ProvideThis    bool
	withEnvironment bool
}

func NewObjectEnvironmentRecord(backing *values.Object, isWith bool) *ObjectEnvironmentRecord {
	return &ObjectEnvironmentRecord{Bindings: backing, withEnvironment: isWith}
}

func (r *ObjectEnvironmentRecord) HasBinding(name string) (int, bool) {
	_, ok := r.Bindings.Get(name)
	return 0, ok
}

func (r *ObjectEnvironmentRecord) CreateBinding(name string, mutable, deletable, _ bool) {
	r.Bindings.DefineOwn(name, values.PropertyDescriptor{
		Value: values.Undefined, Writable: mutable, Enumerable: true, Configurable: deletable,
	})
}

func (r *ObjectEnvironmentRecord) InitializeBindingByIndex(_ int, _ values.Value) {
	panic("ObjectEnvironmentRecord addresses bindings by name, not index")
}

func (r *ObjectEnvironmentRecord) GetBindingValue(name string) (values.Value, bool) {
	pd, ok := r.Bindings.Get(name)
	if !ok {
		return values.Undefined, false
	}
	return pd.Value, true
}

func (r *ObjectEnvironmentRecord) SetMutableBindingByBindingSlot(_ int, name string, value values.Value) error {
	pd, ok := r.Bindings.GetOwn(name)
	if !ok {
		r.Bindings.DefineOwn(name, values.PropertyDescriptor{Value: value, Writable: true, Enumerable: true, Configurable: true})
		return nil
	}
	if !pd.Writable {
		return values.NewTypeError("cannot assign to read only property %q", name)
	}
	idx, _ := r.Bindings.Structure.IndexOf(name)
	r.Bindings.SetOwnAt(idx, value)
	return nil
}

func (r *ObjectEnvironmentRecord) DeleteBinding(name string) bool {
	pd, ok := r.Bindings.GetOwn(name)
	if !ok {
		return true
	}
	if !pd.Configurable {
		return false
	}
	idx, _ := r.Bindings.Structure.IndexOf(name)
	r.Bindings.SetOwnAt(idx, values.Undefined)
	return true
}

// GlobalEnvironmentRecord composes an ObjectEnvironmentRecord (the global
// object, for `var`/function declarations) with a
// DeclarativeRecordNotIndexed (for `let`/`const`/class at top level),
// matching the two-record split ECMAScript specifies for the global
// environment.
type GlobalEnvironmentRecord struct {
	ObjectRecord      *ObjectEnvironmentRecord
	DeclarativeRecord *DeclarativeRecordNotIndexed
	varNames          map[string]bool
}

func NewGlobalEnvironmentRecord(globalObject *values.Object) *GlobalEnvironmentRecord {
	return &GlobalEnvironmentRecord{
		ObjectRecord:      NewObjectEnvironmentRecord(globalObject, false),
		DeclarativeRecord: NewDeclarativeRecordNotIndexed(),
		varNames:          make(map[string]bool),
	}
}

func (r *GlobalEnvironmentRecord) HasBinding(name string) (int, bool) {
	if _, ok := r.DeclarativeRecord.HasBinding(name); ok {
		return 0, true
	}
	return r.ObjectRecord.HasBinding(name)
}

func (r *GlobalEnvironmentRecord) HasVarDeclaration(name string) bool { return r.varNames[name] }

func (r *GlobalEnvironmentRecord) CreateBinding(name string, mutable, deletable, strict bool) {
	r.DeclarativeRecord.CreateBinding(name, mutable, deletable, strict)
}

// CreateGlobalVarBinding declares a `var`/function binding directly on the
// global object, per spec's ObjectEnvironmentRecord-backed var storage.
func (r *GlobalEnvironmentRecord) CreateGlobalVarBinding(name string, deletable bool) {
	if _, ok := r.ObjectRecord.Bindings.GetOwn(name); !ok {
		r.ObjectRecord.CreateBinding(name, true, deletable, false)
	}
	r.varNames[name] = true
}

func (r *GlobalEnvironmentRecord) InitializeBindingByIndex(slot int, value values.Value) {
	r.DeclarativeRecord.InitializeBindingByIndex(slot, value)
}

func (r *GlobalEnvironmentRecord) InitializeBinding(name string, value values.Value) {
	r.DeclarativeRecord.InitializeBinding(name, value)
}

func (r *GlobalEnvironmentRecord) GetBindingValue(name string) (values.Value, bool) {
	if v, ok := r.DeclarativeRecord.GetBindingValue(name); ok {
		return v, true
	}
	return r.ObjectRecord.GetBindingValue(name)
}

func (r *GlobalEnvironmentRecord) SetMutableBindingByBindingSlot(slot int, name string, value values.Value) error {
	if _, ok := r.DeclarativeRecord.HasBinding(name); ok {
		return r.DeclarativeRecord.SetMutableBindingByBindingSlot(slot, name, value)
	}
	return r.ObjectRecord.SetMutableBindingByBindingSlot(slot, name, value)
}

func (r *GlobalEnvironmentRecord) DeleteBinding(name string) bool {
	if _, ok := r.DeclarativeRecord.HasBinding(name); ok {
		return r.DeclarativeRecord.DeleteBinding(name)
	}
	if r.varNames[name] {
		return false
	}
	return r.ObjectRecord.DeleteBinding(name)
}

// FunctionEnvironmentRecord wraps a DeclarativeRecordIndexed with the
// per-call state a function body additionally needs: `this`, `new.target`,
// the arguments object, the running function object, and (for class
// methods) the home object used to resolve `super`.
type FunctionEnvironmentRecord struct {
	*DeclarativeRecordIndexed
	This          values.Value
	ThisInitialized bool
	NewTarget     values.Value
	Arguments     *values.Object
	FunctionObject *values.FunctionObject
	HomeObject    *values.Object
}

func NewFunctionEnvironmentRecord(capacity int, fn *values.FunctionObject) *FunctionEnvironmentRecord {
	return &FunctionEnvironmentRecord{
		DeclarativeRecordIndexed: NewDeclarativeRecordIndexed(capacity),
		NewTarget:                values.Undefined,
		FunctionObject:           fn,
		HomeObject:               fn.HomeObject,
	}
}

// BindThisValue initializes `this` exactly once; a second call (e.g. a
// derived-class constructor calling super() twice) is a ReferenceError at
// the call site, which the caller is responsible for raising.
func (r *FunctionEnvironmentRecord) BindThisValue(v values.Value) {
	r.This = v
	r.ThisInitialized = true
}

// ModuleEnvironmentRecord is a DeclarativeRecordNotIndexed specialization
// that additionally carries the module's name. It does not track which of
// its bindings are imports or re-exports from another module.
type ModuleEnvironmentRecord struct {
	*DeclarativeRecordNotIndexed
	ModuleName string
}

func NewModuleEnvironmentRecord(moduleName string) *ModuleEnvironmentRecord {
	return &ModuleEnvironmentRecord{
		DeclarativeRecordNotIndexed: NewDeclarativeRecordNotIndexed(),
		ModuleName:                  moduleName,
	}
}

// snapshotKeys returns the binding names of a by-name declarative map,
// backed by golang.org/x/exp/maps for the key collection. The names come
// back in map iteration order; they are not sorted.
func snapshotKeys(m map[string]*bindingEntry) []string {
	return maps.Keys(m)
}
