package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wudi/escargot-core/opcodes"
	"github.com/wudi/escargot-core/registry"
	"github.com/wudi/escargot-core/values"
)

// TestControlFlow_JmpIfTrueTakesBranch covers OP_JMP_IF_TRUE branching on a
// truthy register and OP_JMP closing the taken branch, the shape an `if`
// with an else arm lowers to.
func TestControlFlow_JmpIfTrueTakesBranch(t *testing.T) {
	b := registry.NewCodeBlockBuilder("if-true")
	cTrue := b.Const(values.True)
	cOne := b.Const(values.Int32(1))
	cTwo := b.Const(values.Int32(2))
	const (
		rCond = uint32(iota)
		rResult
		regCount
	)
	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_LOAD_LITERAL, Dst: rCond, Src1: cTrue})
	jmpTrue := b.Emit(opcodes.Instruction{Opcode: opcodes.OP_JMP_IF_TRUE, Src1: rCond})
	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_LOAD_LITERAL, Dst: rResult, Src1: cTwo})
	jmpEnd := b.Emit(opcodes.Instruction{Opcode: opcodes.OP_JMP})
	b.PatchJump(jmpTrue, b.Here())
	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_LOAD_LITERAL, Dst: rResult, Src1: cOne})
	b.PatchJump(jmpEnd, b.Here())
	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_END, Src1: rResult})
	b.SetNumRegisters(regCount)

	out := run(t, b)
	assert.Equal(t, int32(1), out.Int32Val())
}

// TestControlFlow_CountingLoop covers a full loop (OP_LT, OP_JMP_IF_FALSE
// exit, OP_ADD body, OP_JMP back-edge), the same shape
// buildOverflowLoop (cmd/jsvm) exercises end-to-end, isolated here as a
// focused dispatch-loop test.
func TestControlFlow_CountingLoop(t *testing.T) {
	b := registry.NewCodeBlockBuilder("counting-loop")
	cZero := b.Const(values.Int32(0))
	cFive := b.Const(values.Int32(5))
	cOne := b.Const(values.Int32(1))
	const (
		rSum = uint32(iota)
		rI
		rFive
		rOne
		rCond
		regCount
	)
	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_LOAD_LITERAL, Dst: rSum, Src1: cZero})
	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_LOAD_LITERAL, Dst: rI, Src1: cZero})
	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_LOAD_LITERAL, Dst: rFive, Src1: cFive})
	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_LOAD_LITERAL, Dst: rOne, Src1: cOne})

	loopStart := b.Here()
	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_LT, Dst: rCond, Src1: rI, Src2: rFive})
	jmpExit := b.Emit(opcodes.Instruction{Opcode: opcodes.OP_JMP_IF_FALSE, Src1: rCond})
	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_ADD, Dst: rSum, Src1: rSum, Src2: rI})
	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_ADD, Dst: rI, Src1: rI, Src2: rOne})
	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_JMP, Jump: loopStart})
	b.PatchJump(jmpExit, b.Here())
	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_END, Src1: rSum})
	b.SetNumRegisters(regCount)

	out := run(t, b)
	assert.Equal(t, int32(0+1+2+3+4), out.Int32Val())
}
