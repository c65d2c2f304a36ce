package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wudi/escargot-core/opcodes"
	"github.com/wudi/escargot-core/registry"
	"github.com/wudi/escargot-core/values"
)

// buildAdder assembles a two-parameter function body: `function(a, b) {
// return a + b; }`, the callee OP_CALL/OP_NEW tests invoke.
func buildAdder() *registry.CodeBlock {
	fb := registry.NewCodeBlockBuilder("adder")
	const (
		fa = uint32(iota)
		fbReg
		fSum
		fRegCount
	)
	fb.Emit(opcodes.Instruction{Opcode: opcodes.OP_GET_PARAMETER, Dst: fa, Src1: 0})
	fb.Emit(opcodes.Instruction{Opcode: opcodes.OP_GET_PARAMETER, Dst: fbReg, Src1: 1})
	fb.Emit(opcodes.Instruction{Opcode: opcodes.OP_ADD, Dst: fSum, Src1: fa, Src2: fbReg})
	fb.Emit(opcodes.Instruction{Opcode: opcodes.OP_RETURN, Src1: fSum})
	return fb.SetNumRegisters(fRegCount).Build()
}

// TestCall_InvokesBytecodeFunction covers OP_CREATE_FUNCTION materializing
// a closure from a nested CodeBlock constant and OP_CALL invoking it with a
// contiguous argument-register run.
func TestCall_InvokesBytecodeFunction(t *testing.T) {
	b := registry.NewCodeBlockBuilder("call-adder")
	cFn := b.Const(registry.WrapCodeBlock(buildAdder()))
	cTwo := b.Const(values.Int32(2))
	cThree := b.Const(values.Int32(3))
	const (
		rFn = uint32(iota)
		rArg0
		rArg1
		rResult
		regCount
	)
	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_CREATE_FUNCTION, Dst: rFn, Src1: cFn})
	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_LOAD_LITERAL, Dst: rArg0, Src1: cTwo})
	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_LOAD_LITERAL, Dst: rArg1, Src1: cThree})
	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_CALL, Dst: rResult, Src1: rFn, Jump: 2})
	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_END, Src1: rResult})
	b.SetNumRegisters(regCount)

	out := run(t, b)
	assert.Equal(t, int32(5), out.Int32Val())
}

// buildPointCtor assembles a constructor body: `function(x) { this.x = x;
// }`, the callee OP_NEW tests invoke.
func buildPointCtor() *registry.CodeBlock {
	fb := registry.NewCodeBlockBuilder("point-ctor")
	cKey := fb.Const(values.NewString("x"))
	const (
		fThis = uint32(iota)
		fArg
		fKey
		fRegCount
	)
	fb.Emit(opcodes.Instruction{Opcode: opcodes.OP_LOAD_THIS, Dst: fThis})
	fb.Emit(opcodes.Instruction{Opcode: opcodes.OP_GET_PARAMETER, Dst: fArg, Src1: 0})
	fb.Emit(opcodes.Instruction{Opcode: opcodes.OP_LOAD_LITERAL, Dst: fKey, Src1: cKey})
	fb.Emit(opcodes.Instruction{Opcode: opcodes.OP_DEFINE_OWN_PROPERTY_WITH_NAME, Dst: fThis, Src1: fKey, Src2: fArg})
	fb.Emit(opcodes.Instruction{Opcode: opcodes.OP_RETURN, Src1: fThis})
	return fb.SetNumRegisters(fRegCount).Build()
}

// TestConstruct_NewAllocatesInstanceAndRunsConstructor covers OP_NEW: a
// fresh instance is allocated against the constructor's own `prototype`
// property and bound as `this` for the duration of the constructor body.
func TestConstruct_NewAllocatesInstanceAndRunsConstructor(t *testing.T) {
	b := registry.NewCodeBlockBuilder("new-point")
	cCtor := b.Const(registry.WrapCodeBlock(buildPointCtor()))
	cSeven := b.Const(values.Int32(7))
	cKey := b.Const(values.NewString("x"))
	const (
		rCtor = uint32(iota)
		rArg
		rInstance
		rField
		regCount
	)
	icSlot := b.AllocICSlot()

	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_CREATE_FUNCTION, Dst: rCtor, Src1: cCtor})
	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_LOAD_LITERAL, Dst: rArg, Src1: cSeven})
	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_NEW, Dst: rInstance, Src1: rCtor, Jump: 1})
	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_GET_OBJECT_PRECOMPUTED, Dst: rField, Src1: rInstance, Src2: cKey, Jump: icSlot})
	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_END, Src1: rField})
	b.SetNumRegisters(regCount)

	out := run(t, b)
	require.True(t, out.IsInt32())
	assert.Equal(t, int32(7), out.Int32Val())
}
