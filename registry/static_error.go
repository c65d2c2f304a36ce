package registry

// StaticErrorCode tags a compile-time-known error OP_THROW_STATIC_ERROR
// raises without needing a constant-pool message string built by the
// (absent, out of scope) parser — the handful of errors the bytecode
// itself can determine are unconditional (redeclaration of a lexical
// binding, assignment to an uninitialized const, malformed destructuring
// target) rather than resolved against a runtime value.
type StaticErrorCode byte

const (
	StaticErrorSyntaxGeneric StaticErrorCode = iota
	StaticErrorDuplicateLexicalDeclaration
	StaticErrorAssignToConstBeforeInit
	StaticErrorInvalidDestructuringTarget
	StaticErrorIllegalReturn
	StaticErrorIllegalSuperCall
)

// Messages are deliberately short; they mirror the kind of terse,
// non-interpolated diagnostic a bytecode-level check (rather than the
// parser) is in a position to produce.
var staticErrorMessages = map[StaticErrorCode]string{
	StaticErrorSyntaxGeneric:                "Unexpected token",
	StaticErrorDuplicateLexicalDeclaration:  "Identifier has already been declared",
	StaticErrorAssignToConstBeforeInit:      "Assignment to constant variable",
	StaticErrorInvalidDestructuringTarget:   "Invalid destructuring assignment target",
	StaticErrorIllegalReturn:                "Illegal return statement",
	StaticErrorIllegalSuperCall:             "'super' keyword is only valid inside a derived class constructor",
}

// Message returns the fixed diagnostic text for code.
func (code StaticErrorCode) Message() string {
	if msg, ok := staticErrorMessages[code]; ok {
		return msg
	}
	return "Unknown error"
}
