package registry

import "github.com/wudi/escargot-core/values"

// StaticErrorCode names one of the engine's own fixed diagnostics, raised
// by OP_THROW_STATIC_ERROR for failures the compiler proves statically
// (an illegal destructuring target, a TDZ read, a duplicate lexical
// binding) rather than a value the running program computed. Carried
// directly in an Instruction's SubKind byte, so the set is small and
// fixed instead of open-ended like a registered diagnostics table would
// be.
type StaticErrorCode byte

const (
	ErrAssignToConstBinding StaticErrorCode = iota
	ErrAccessBeforeInitialization
	ErrInvalidDestructuringTarget
	ErrDuplicateLexicalBinding
	ErrSuperNotAllowed
	ErrNewTargetNotAllowed
	ErrIteratorResultNotObject
	ErrClassConstructorNoNew
	ErrDerivedConstructorReturnedPrimitive
	ErrUnsupportedDynamicImport
)

// Message returns the diagnostic text a thrown JSError should carry.
func (c StaticErrorCode) Message() string {
	switch c {
	case ErrAssignToConstBinding:
		return "Assignment to constant variable."
	case ErrAccessBeforeInitialization:
		return "Cannot access variable before initialization."
	case ErrInvalidDestructuringTarget:
		return "Invalid destructuring assignment target."
	case ErrDuplicateLexicalBinding:
		return "Identifier has already been declared."
	case ErrSuperNotAllowed:
		return "'super' keyword is only valid inside a class."
	case ErrNewTargetNotAllowed:
		return "'new.target' expression is not allowed here."
	case ErrIteratorResultNotObject:
		return "Iterator result is not an object."
	case ErrClassConstructorNoNew:
		return "Class constructor cannot be invoked without 'new'."
	case ErrDerivedConstructorReturnedPrimitive:
		return "Derived constructor may only return object or undefined."
	case ErrUnsupportedDynamicImport:
		return "Dynamic import is not supported."
	default:
		return "Unknown engine error."
	}
}

// NewError wraps the code's message in the appropriate JSError kind
// (ReferenceError for a read before initialization, SyntaxError for a
// duplicate lexical binding, TypeError for everything else, including
// assignment to a const binding), matching how these same situations
// throw in a conforming engine.
func (c StaticErrorCode) NewError() *values.JSError {
	switch c {
	case ErrAccessBeforeInitialization:
		return values.NewReferenceError(c.Message())
	case ErrDuplicateLexicalBinding:
		return values.NewSyntaxError(c.Message())
	default:
		return values.NewTypeError(c.Message())
	}
}
