package registry

import "github.com/wudi/escargot-core/values"

// FunctionDescriptor binds a CodeBlock to the metadata a FunctionObject
// needs at call time: name, arity, and (for class members) visibility.
// Grounded on the teacher's Function/Parameter pair in registry.go,
// generalized from PHP's visibility strings to the private-name concept
// spec.md §4.8 needs for class-field access.
type FunctionDescriptor struct {
	Name       string
	Code       *CodeBlock
	Kind       values.FunctionKind
	IsPrivate  bool
	// HomeObjectName, when set, is the owning class/prototype's name —
	// used to stamp FunctionObject.HomeObject at instantiation time.
	HomeObjectName string
}

// FieldDescriptor is one instance or static field declared by a class,
// consumed by the multi-stage InitializeClass opcode (spec.md §4.8).
type FieldDescriptor struct {
	Name       string
	IsPrivate  bool
	IsStatic   bool
	// Initializer, when non-nil, is bytecode run (with `this` bound) to
	// produce the field's initial value; nil means "initialize to
	// undefined".
	Initializer *CodeBlock
}

// ClassDescriptor is the compile-time shape of a class declaration:
// constructor, methods, fields, and the parent class name (resolved to an
// actual ClassDescriptor at class-initialization time). Reshaped from the
// teacher's registry.ClassDescriptor{Name, Parent, Interfaces, Traits,
// Properties, Methods, Constants}.
type ClassDescriptor struct {
	Name          string
	ParentName    string
	Constructor   *FunctionDescriptor
	Methods       map[string]*FunctionDescriptor
	StaticMethods map[string]*FunctionDescriptor
	Fields        []FieldDescriptor
	StaticFields  []FieldDescriptor
	IsAbstract    bool
}

func NewClassDescriptor(name string) *ClassDescriptor {
	return &ClassDescriptor{
		Name:          name,
		Methods:       make(map[string]*FunctionDescriptor),
		StaticMethods: make(map[string]*FunctionDescriptor),
	}
}
