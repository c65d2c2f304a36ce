package vm

import (
	"github.com/wudi/escargot-core/opcodes"
	"github.com/wudi/escargot-core/values"
)

// ExecutionResult reports what the dispatch loop should do after one
// instruction handler ran. Extended from the teacher's
// ExecutionResult{ShouldAdvanceIP, Result, JumpTo} with a Suspend outcome for
// OP_EXECUTION_PAUSE (generator yield / async await), which needs to stop the
// run loop entirely and hand control back to the host rather than advance or
// jump within the current frame.
type ExecutionResult struct {
	ShouldAdvanceIP bool
	JumpTo          int // -1 means no jump

	// Returned marks that the frame's CodeBlock has produced its final
	// value (OP_RETURN/OP_RETURN_SLOW, or IP running off the end); the
	// dispatch loop stops advancing this frame and hands ReturnValue to
	// whatever invoked it (the caller frame, or a generator driver).
	Returned    bool
	ReturnValue values.Value

	Suspend      bool
	SuspendValue values.Value
	SuspendKind  opcodes.PauseKind
}

func advanceResult() (*ExecutionResult, error) {
	return &ExecutionResult{ShouldAdvanceIP: true, JumpTo: -1}, nil
}

func jumpResult(target int) (*ExecutionResult, error) {
	return &ExecutionResult{ShouldAdvanceIP: false, JumpTo: target}, nil
}

func noAdvanceResult() (*ExecutionResult, error) {
	return &ExecutionResult{ShouldAdvanceIP: false, JumpTo: -1}, nil
}

func suspendResult(kind opcodes.PauseKind, value values.Value) (*ExecutionResult, error) {
	return &ExecutionResult{ShouldAdvanceIP: false, JumpTo: -1, Suspend: true, SuspendValue: value, SuspendKind: kind}, nil
}

func returnResult(value values.Value) (*ExecutionResult, error) {
	return &ExecutionResult{ShouldAdvanceIP: false, JumpTo: -1, Returned: true, ReturnValue: value}, nil
}

// BaseExecutor provides the operand-decoding plumbing every instruction
// handler family embeds, mirroring the teacher's BaseExecutor/OperandReader
// split.
type BaseExecutor struct {
	state  *ExecutionState
	frame  *CallFrame
	inst   *opcodes.Instruction
	reader *OperandReader
}

func NewBaseExecutor(state *ExecutionState, frame *CallFrame, inst *opcodes.Instruction) *BaseExecutor {
	return &BaseExecutor{
		state:  state,
		frame:  frame,
		inst:   inst,
		reader: NewOperandReader(frame, inst),
	}
}

func (b *BaseExecutor) CreateAdvanceResult(result values.Value) (*ExecutionResult, error) {
	b.reader.WriteDst(result)
	return advanceResult()
}
