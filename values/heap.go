package values

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Kind distinguishes the heap object variants a PointerValue can be,
// mirroring the teacher's ValueType tag but for the pointer-only half of
// the representation (spec "PointerValue").
type Kind byte

const (
	_ Kind = iota
	KindObject
	KindArray
	KindString
	KindSymbol
	KindBigInt
	KindFunction
	KindIterator
	KindIteratorRecord
	KindEnumerateObject
	KindRegExp
	KindError
	KindModuleNamespace
	// KindHostRef tags opaque, not-user-observable PointerValues the VM
	// stashes in a constant pool (e.g. a nested CodeBlock reference) — never
	// reachable from script-visible typeof/instanceof.
	KindHostRef
)

// PointerValue is the interface every heap-allocated value implements; a
// Value in TypePointer state always holds one of these.
type PointerValue interface {
	Kind() Kind
	String() string
}

// StringValue boxes a string on the heap. Strings are immutable once built,
// the same guarantee the teacher's Data:string leaf carries by convention.
type StringValue struct {
	S string
}

func NewString(s string) Value { return FromPointer(&StringValue{S: s}) }

func (s *StringValue) Kind() Kind     { return KindString }
func (s *StringValue) String() string { return s.S }

// Symbol is a unique, possibly-described token; identity is pointer
// identity, the description is purely diagnostic.
type Symbol struct {
	Description string
	id          string
}

func NewSymbol(description string) Value {
	return FromPointer(&Symbol{Description: description, id: uuid.NewString()})
}

func (s *Symbol) Kind() Kind { return KindSymbol }
func (s *Symbol) String() string {
	return fmt.Sprintf("Symbol(%s)", s.Description)
}

// PropertyDescriptor is one entry of an Object's own-property storage: the
// hidden-class-indexed slot value plus the attribute bits ECMAScript
// tracks per property.
type PropertyDescriptor struct {
	Value        Value
	Writable     bool
	Enumerable   bool
	Configurable bool
	// Accessor properties set Getter/Setter instead of Value.
	Getter PointerValue
	Setter PointerValue
}

// Object is a plain ECMAScript object: an ObjectStructure (hidden class)
// pointer plus the parallel slot array it indexes, and a prototype link.
// Grounded on the teacher's Object{ClassName, Properties, Methods} but
// reshaped from a flat map to structure+slots so property-access inline
// caches (package ic) have something to validate against.
type Object struct {
	Structure *ObjectStructure
	Slots     []PropertyDescriptor
	Prototype *Object
	ClassName string
	// Extensible controls whether new own properties may be added.
	Extensible bool
	// IsHTMLDDA marks the Annex B "document.all" typeof exception (spec
	// Open Question); defaults false.
	IsHTMLDDA bool
	// Internal is an escape hatch for host/engine-internal slots (e.g. a
	// bound generator's pauser record, a module namespace's module record)
	// that don't participate in ordinary property lookup.
	Internal interface{}
}

func NewObject(className string, proto *Object) *Object {
	return &Object{
		Structure:  RootStructure(),
		Slots:      nil,
		Prototype:  proto,
		ClassName:  className,
		Extensible: true,
	}
}

func (o *Object) Kind() Kind { return KindObject }

func (o *Object) String() string {
	return fmt.Sprintf("[object %s]", o.ClassName)
}

// Get walks the own-property slot (via the hidden class) then the
// prototype chain. It does not invoke accessors; callers needing the full
// [[Get]] semantics (accessor invocation, proxy traps) build on top of this.
func (o *Object) Get(name string) (PropertyDescriptor, bool) {
	for cur := o; cur != nil; cur = cur.Prototype {
		if idx, ok := cur.Structure.IndexOf(name); ok {
			return cur.Slots[idx], true
		}
	}
	return PropertyDescriptor{}, false
}

// GetOwn looks up only this object's own slot, skipping the prototype
// chain — the shape a [[GetOwnProperty]] implementation needs.
func (o *Object) GetOwn(name string) (PropertyDescriptor, bool) {
	if idx, ok := o.Structure.IndexOf(name); ok {
		return o.Slots[idx], true
	}
	return PropertyDescriptor{}, false
}

// DefineOwn adds or overwrites an own property. Adding a new property
// transitions the object to a new (possibly shared) ObjectStructure, the
// hidden-class mechanism inline caches key off of.
func (o *Object) DefineOwn(name string, pd PropertyDescriptor) {
	if idx, ok := o.Structure.IndexOf(name); ok {
		o.Slots[idx] = pd
		return
	}
	o.Structure = o.Structure.Transition(name)
	o.Slots = append(o.Slots, pd)
}

// SetOwnAt overwrites the value of an existing own data property without
// touching its attributes; used by the fast property-store path once an
// inline cache has already validated the slot index.
func (o *Object) SetOwnAt(idx int, v Value) {
	o.Slots[idx].Value = v
}

// Array is the exotic Array object: index 0..length-1 use dense storage
// when contiguous ("fast mode", grounded on the teacher's
// Array{Elements, NextIndex, IsIndexed}), falling back to the embedded
// Object's ordinary sparse slot storage for named/out-of-range properties.
type Array struct {
	Object
	Dense     []Value // contiguous element storage for indices 0..len(Dense)-1
	FastMode  bool    // true while Dense covers every integer index densely
	Length    uint32
}

func NewArray(proto *Object) *Array {
	return &Array{
		Object:   Object{Structure: RootStructure(), Prototype: proto, ClassName: "Array", Extensible: true},
		FastMode: true,
	}
}

func (a *Array) Kind() Kind { return KindArray }

func (a *Array) String() string {
	if !a.FastMode {
		return "[object Array]"
	}
	parts := make([]string, len(a.Dense))
	for i, v := range a.Dense {
		parts[i] = v.String()
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func (a *Array) GetIndex(i uint32) (Value, bool) {
	if a.FastMode && i < uint32(len(a.Dense)) {
		return a.Dense[i], true
	}
	pd, ok := a.Object.GetOwn(fmt.Sprintf("%d", i))
	return pd.Value, ok
}

func (a *Array) SetIndex(i uint32, v Value) {
	if a.FastMode {
		if i == uint32(len(a.Dense)) {
			a.Dense = append(a.Dense, v)
			if i+1 > a.Length {
				a.Length = i + 1
			}
			return
		}
		if i < uint32(len(a.Dense)) {
			a.Dense[i] = v
			return
		}
		// non-contiguous index: fall out of fast mode permanently.
		a.FastMode = false
	}
	a.Object.DefineOwn(fmt.Sprintf("%d", i), PropertyDescriptor{Value: v, Writable: true, Enumerable: true, Configurable: true})
	if i+1 > a.Length {
		a.Length = i + 1
	}
}

// FunctionKind tags the taxonomy resolved from original_source/'s
// per-kind ScriptFunctionObject header split (ordinary/arrow/method/
// constructor/generator/async/async-generator) collapsed into one struct.
type FunctionKind byte

const (
	FunctionOrdinary FunctionKind = iota
	FunctionArrow
	FunctionClassMethod
	FunctionClassConstructor
	FunctionGenerator
	FunctionAsync
	FunctionAsyncGenerator
)

// FunctionObject is every callable heap value: bound natives and
// bytecode-backed user functions alike. CodeBlock is an opaque pointer
// into the registry package (avoiding an import cycle); native functions
// leave it nil and populate Native instead.
type FunctionObject struct {
	Object
	FuncKind   FunctionKind
	Name       string
	CodeBlock  interface{} // *registry.CodeBlock for bytecode functions
	Native     func(thisArg Value, args []Value) (Value, error)
	HomeObject *Object // enables `super` / private-member resolution
	// OuterClass is set only for FunctionClassConstructor kind, grounded
	// on ScriptClassConstructorFunctionObject.h's outer-class pointer used
	// to resolve private fields/methods.
	OuterClass *ClassInfo
	// IsOriginalApply marks the well-known Function.prototype.apply
	// descriptor for the MayBuiltinApply fast path; cleared permanently if
	// a host ever replaces the descriptor.
	IsOriginalApply bool
}

// Kind shadows the embedded Object's method so a FunctionObject reports
// KindFunction rather than KindObject.
func (f *FunctionObject) Kind() Kind { return KindFunction }

func (f *FunctionObject) String() string {
	if f.Name == "" {
		return "function () { [native code] }"
	}
	return fmt.Sprintf("function %s() { ... }", f.Name)
}

// ClassInfo carries per-class metadata a FunctionClassConstructor needs for
// private-member and static-field resolution (spec "InitializeClass").
type ClassInfo struct {
	Name          string
	Constructor   *FunctionObject
	ParentClass   *ClassInfo
	PrivateFields map[string]int // private name -> field slot index
	FieldSize     int
	StaticData    *Object

	// FieldDefaults/PrivateFieldDefaults hold the per-instance field
	// initializer results captured at class-definition time (spec
	// "InitializeClass" stages InitField/SetFieldData and their private
	// counterparts); the construct path copies these onto every new
	// instance before running the constructor body.
	FieldDefaults        map[string]Value
	PrivateFieldDefaults map[int]Value

	// StaticPrivateFields maps a private static name to its slot in
	// StaticPrivateData, mirroring PrivateFields' instance-side table.
	StaticPrivateFields map[string]int
	StaticPrivateData   []Value
}

// IteratorObject wraps a live iterator's next/return/throw trio together
// with its done flag, the runtime shape behind the %IteratorPrototype%
// protocol (spec "iteration opcodes").
type IteratorObject struct {
	Object
	Next   func() (IteratorRecord, error)
	Return func(Value) (IteratorRecord, error)
	Done   bool
}

func (it *IteratorObject) Kind() Kind { return KindIterator }
func (it *IteratorObject) String() string { return "[object Iterator]" }

// IteratorRecord is the {value, done} pair produced by IteratorNext,
// stored directly (not boxed as an ordinary object) on the hot iteration
// path per spec's "IteratorRecord" pointer kind.
type IteratorRecord struct {
	Value Value
	Done  bool
}

func (r IteratorRecord) Kind() Kind     { return KindIteratorRecord }
func (r IteratorRecord) String() string { return fmt.Sprintf("{value: %s, done: %t}", r.Value, r.Done) }

// EnumerateObject backs for-in: a snapshot of enumerable key order plus a
// cursor, captured once at loop entry per spec's "EnumerateObject".
type EnumerateObject struct {
	Object
	Keys  []string
	Index int
}

func (e *EnumerateObject) Kind() Kind { return KindEnumerateObject }
func (e *EnumerateObject) String() string { return "[object Enumerate]" }

func (e *EnumerateObject) Next() (string, bool) {
	if e.Index >= len(e.Keys) {
		return "", false
	}
	k := e.Keys[e.Index]
	e.Index++
	return k, true
}

// ErrorObject is the heap shape behind TypeError/RangeError/etc (spec §7).
type ErrorObject struct {
	Object
	Name    string
	Message string
	Stack   []string
}

func NewErrorObject(name, message string, proto *Object) *ErrorObject {
	return &ErrorObject{
		Object:  Object{Structure: RootStructure(), Prototype: proto, ClassName: "Error", Extensible: true},
		Name:    name,
		Message: message,
	}
}

func (e *ErrorObject) Kind() Kind { return KindError }
func (e *ErrorObject) String() string {
	if e.Message == "" {
		return e.Name
	}
	return fmt.Sprintf("%s: %s", e.Name, e.Message)
}

// ModuleNamespaceObject exposes a module's exported bindings as a
// non-extensible object whose Exports map is kept in no particular key
// order; stamped with a debugging uuid so a debugger frontend can correlate
// namespaces across reloads.
type ModuleNamespaceObject struct {
	Object
	ModuleName string
	Exports    map[string]*Value
	DebugID    string
}

func NewModuleNamespaceObject(name string) *ModuleNamespaceObject {
	return &ModuleNamespaceObject{
		Object:     Object{Structure: RootStructure(), ClassName: "Module", Extensible: false},
		ModuleName: name,
		Exports:    make(map[string]*Value),
		DebugID:    uuid.NewString(),
	}
}

func (m *ModuleNamespaceObject) Kind() Kind { return KindModuleNamespace }
func (m *ModuleNamespaceObject) String() string {
	return fmt.Sprintf("[Module: %s]", m.ModuleName)
}

// RegExpObject is a minimal compiled-pattern holder; the interpreter core
// treats it opaquely (pattern matching lives outside this module's scope),
// but a PointerValue kind is still needed so RegExp literals round-trip
// through registers and property slots.
type RegExpObject struct {
	Object
	Source string
	Flags  string
}

func (r *RegExpObject) Kind() Kind { return KindRegExp }
func (r *RegExpObject) String() string {
	return fmt.Sprintf("/%s/%s", r.Source, r.Flags)
}
