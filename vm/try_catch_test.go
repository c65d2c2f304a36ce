package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wudi/escargot-core/opcodes"
	"github.com/wudi/escargot-core/registry"
	"github.com/wudi/escargot-core/values"
)

// TestTryCatch_CatchesThrownValue covers OP_TRY/OP_THROW/OP_JMP_COMPLEX_CASE
// for a try region with a catch but no finally: the thrown value lands in
// OP_TRY's Dst register and the after-block runs normally.
func TestTryCatch_CatchesThrownValue(t *testing.T) {
	b := registry.NewCodeBlockBuilder("catch-only")
	cMsg := b.Const(values.NewString("oops"))
	const (
		rCaught = uint32(iota)
		rThrown
		regCount
	)
	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_LOAD_LITERAL, Dst: rThrown, Src1: cMsg})

	tryIdx := b.Emit(opcodes.Instruction{Opcode: opcodes.OP_TRY, Dst: rCaught})
	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_THROW, Src1: rThrown})
	catchIP := b.Here()
	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_JMP_COMPLEX_CASE})
	afterIP := b.Here()
	b.PatchTryTargets(tryIdx, catchIP, int32(noTryTarget), afterIP)

	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_END, Src1: rCaught})
	b.SetNumRegisters(regCount)

	out := run(t, b)
	require.True(t, out.IsString())
	assert.Equal(t, "oops", out.AsString())
}

// TestTryCatch_FinallyRunsWhenNoExceptionThrown covers a try region whose
// body completes normally, still falling through its finally block before
// reaching the after-label -- finally always runs, thrown or not.
func TestTryCatch_FinallyRunsWhenNoExceptionThrown(t *testing.T) {
	b := registry.NewCodeBlockBuilder("finally-only")
	cZero := b.Const(values.Int32(0))
	cTen := b.Const(values.Int32(10))
	const (
		rCaught = uint32(iota)
		rOut
		regCount
	)
	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_LOAD_LITERAL, Dst: rOut, Src1: cZero})

	// An empty try body: normal completion falls straight through from TRY
	// into the finally block, the same as any try region with no catch.
	tryIdx := b.Emit(opcodes.Instruction{Opcode: opcodes.OP_TRY, Dst: rCaught})
	finallyIP := b.Here()
	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_LOAD_LITERAL, Dst: rOut, Src1: cTen})
	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_JMP_COMPLEX_CASE})
	afterIP := b.Here()
	b.PatchTryTargets(tryIdx, int32(noTryTarget), finallyIP, afterIP)

	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_END, Src1: rOut})
	b.SetNumRegisters(regCount)

	out := run(t, b)
	assert.Equal(t, int32(10), out.Int32Val())
}
