package vm

import "github.com/wudi/escargot-core/values"

// callFunctionValue invokes a callable value with an explicit this-binding
// and argument list, the primitive every accessor invocation (getter/setter)
// and Reflect-style call site needs on top of the ordinary OP_CALL path.
// Delegates to VirtualMachine.CallFunction, which re-enters the dispatch loop
// for bytecode-backed functions or invokes Native directly.
func callFunctionValue(state *ExecutionState, fn values.Value, thisArg values.Value, args []values.Value) (values.Value, error) {
	return state.VM.CallFunction(state, fn, thisArg, args)
}
