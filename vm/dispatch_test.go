package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wudi/escargot-core/opcodes"
	"github.com/wudi/escargot-core/registry"
	"github.com/wudi/escargot-core/values"
)

// run assembles b, drives it to completion on a fresh VM/realm, and returns
// the program's completion value (OP_END's operand).
func run(t *testing.T, b *registry.CodeBlockBuilder) values.Value {
	t.Helper()
	machine := NewVirtualMachine()
	state := NewExecutionState(machine, registry.NewRealm())
	result, err := machine.RunProgram(state, b.Build())
	require.NoError(t, err)
	return result
}

func TestDispatch_ArithmeticAdd(t *testing.T) {
	b := registry.NewCodeBlockBuilder("add")
	c2 := b.Const(values.Int32(2))
	c3 := b.Const(values.Int32(3))
	const (
		r0 = uint32(iota)
		r1
		r2
		regCount
	)
	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_LOAD_LITERAL, Dst: r0, Src1: c2})
	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_LOAD_LITERAL, Dst: r1, Src1: c3})
	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_ADD, Dst: r2, Src1: r0, Src2: r1})
	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_END, Src1: r2})
	b.SetNumRegisters(regCount)

	out := run(t, b)
	assert.True(t, out.IsInt32())
	assert.Equal(t, int32(5), out.Int32Val())
}

func TestDispatch_ArithmeticOverflowWidensToDouble(t *testing.T) {
	b := registry.NewCodeBlockBuilder("overflow")
	cMax := b.Const(values.Int32(2147483647))
	cOne := b.Const(values.Int32(1))
	const (
		r0 = uint32(iota)
		r1
		r2
		regCount
	)
	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_LOAD_LITERAL, Dst: r0, Src1: cMax})
	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_LOAD_LITERAL, Dst: r1, Src1: cOne})
	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_ADD, Dst: r2, Src1: r0, Src2: r1})
	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_END, Src1: r2})
	b.SetNumRegisters(regCount)

	out := run(t, b)
	assert.True(t, out.IsDouble())
	assert.Equal(t, "2147483648", out.String())
}

func TestDispatch_Comparison(t *testing.T) {
	b := registry.NewCodeBlockBuilder("lt")
	cOne := b.Const(values.Int32(1))
	cTwo := b.Const(values.Int32(2))
	const (
		r0 = uint32(iota)
		r1
		r2
		regCount
	)
	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_LOAD_LITERAL, Dst: r0, Src1: cOne})
	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_LOAD_LITERAL, Dst: r1, Src1: cTwo})
	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_LT, Dst: r2, Src1: r0, Src2: r1})
	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_END, Src1: r2})
	b.SetNumRegisters(regCount)

	out := run(t, b)
	assert.True(t, out.IsBool())
	assert.True(t, out.BoolVal())
}

func TestDispatch_UnknownOpcodeErrors(t *testing.T) {
	b := registry.NewCodeBlockBuilder("bad-delete")
	const regCount = uint32(1)
	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_DELETE, Dst: 0})
	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_END, Src1: 0})
	b.SetNumRegisters(regCount)

	machine := NewVirtualMachine()
	state := NewExecutionState(machine, registry.NewRealm())
	_, err := machine.RunProgram(state, b.Build())
	require.Error(t, err)
}
