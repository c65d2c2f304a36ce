package vm

import (
	"github.com/wudi/escargot-core/opcodes"
	"github.com/wudi/escargot-core/values"
)

// generatorStatus tracks where a generator/async frame sits in its
// suspended-running-done lifecycle, the three states the teacher's own
// Generator{started, suspended, finished} booleans modeled as a trio of
// bools that could briefly disagree with each other.
type generatorStatus byte

const (
	generatorSuspendedStart generatorStatus = iota
	generatorSuspendedYield
	generatorRunning
	generatorDone
)

// generatorState is the cooperative pause/resume handle for one
// generator or async function activation. The teacher's runtime.Generator
// held the same shape of problem (preserve VM state at a yield point,
// restore it on the next call) but, by its own architecture note, never
// finished wiring it to a real call frame: "Generator needs to invoke
// VM.ExecuteFunction() with proper state management... Yield suspension
// needs to preserve complete VM execution state (frames, locals, PC)".
// This is that wiring: CallFrame already carries its own register file and
// IP, so suspending a generator is just holding onto the frame and not
// resuming the dispatch loop, and resuming it is calling back into
// runFrame with ResumeValue populated.
type generatorState struct {
	vm    *VirtualMachine
	state *ExecutionState
	frame *CallFrame

	status generatorStatus
	kind   opcodes.PauseKind // Yield or Await, fixed at generator creation

	// returnValue holds the frame's final value once status reaches
	// generatorDone, for IteratorResult{value: returnValue, done: true}.
	returnValue values.Value
}

// newGeneratorState builds a generator handle over frame without running
// any of its bytecode; actual execution begins on the first Resume call,
// per the "GeneratorStart" behavior of suspending before the first
// instruction.
func newGeneratorState(vm *VirtualMachine, state *ExecutionState, frame *CallFrame, kind opcodes.PauseKind) *generatorState {
	g := &generatorState{vm: vm, state: state, frame: frame, status: generatorSuspendedStart, kind: kind}
	frame.Generator = g
	return g
}

// Resume drives the generator forward with sent as the value handed back
// from the suspension point (`.next(sent)`'s argument, or an awaited
// promise's settled value), returning the next yielded/returned value and
// whether the generator is now finished.
func (g *generatorState) Resume(sent values.Value) (values.Value, bool, error) {
	if g.status == generatorDone {
		return values.Undefined, true, nil
	}
	if g.status == generatorRunning {
		return values.Undefined, false, NewTypeVMError("generator is already running")
	}

	g.frame.ResumeValue = sent
	g.status = generatorRunning
	g.state.pushFrame(g.frame)
	defer g.state.popFrame()

	for {
		result, err := g.vm.runFrame(g.state, g.frame)
		if err != nil {
			g.status = generatorDone
			return values.Undefined, true, err
		}

		if result.Suspend {
			g.status = generatorSuspendedYield
			return result.SuspendValue, false, nil
		}

		if result.Returned {
			g.status = generatorDone
			g.returnValue = result.ReturnValue
			return result.ReturnValue, true, nil
		}

		// advanceResult/jumpResult outcomes are consumed by runFrame's own
		// internal loop; reaching here means runFrame returned control
		// without a terminal outcome, which only happens when the frame
		// ran off the end of its instruction stream without an explicit
		// OP_END or OP_RETURN.
		g.status = generatorDone
		return values.Undefined, true, nil
	}
}

// Return forces the generator to its done state as if a `return` statement
// had executed at the current suspension point, the behavior backing
// Generator.prototype.return.
func (g *generatorState) Return(value values.Value) (values.Value, bool, error) {
	g.status = generatorDone
	g.returnValue = value
	return value, true, nil
}

// Throw injects an exception at the generator's current suspension point,
// backing Generator.prototype.throw; if no try handler inside the
// generator body catches it, the generator completes abruptly and Throw
// propagates the error to the caller.
func (g *generatorState) Throw(exception values.Value) (values.Value, bool, error) {
	if g.status == generatorDone || g.status == generatorSuspendedStart {
		g.status = generatorDone
		return values.Undefined, true, newThrownValue(exception)
	}

	g.status = generatorRunning
	g.state.pushFrame(g.frame)
	defer g.state.popFrame()

	_, handled := g.vm.handleException(g.state, g.frame, newThrownValue(exception))
	if !handled {
		g.status = generatorDone
		return values.Undefined, true, newThrownValue(exception)
	}

	for {
		result, err := g.vm.runFrame(g.state, g.frame)
		if err != nil {
			g.status = generatorDone
			return values.Undefined, true, err
		}
		if result.Suspend {
			g.status = generatorSuspendedYield
			return result.SuspendValue, false, nil
		}
		if result.Returned {
			g.status = generatorDone
			g.returnValue = result.ReturnValue
			return result.ReturnValue, true, nil
		}
		g.status = generatorDone
		return values.Undefined, true, nil
	}
}

// Done reports whether the generator has run to completion.
func (g *generatorState) Done() bool {
	return g.status == generatorDone
}
