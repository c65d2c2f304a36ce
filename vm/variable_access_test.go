package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wudi/escargot-core/opcodes"
	"github.com/wudi/escargot-core/registry"
	"github.com/wudi/escargot-core/values"
)

// TestVariableAccess_GlobalInitGetSet covers OP_INIT_GLOBAL_VAR binding a
// `var`, OP_GET_GLOBAL_VAR reading it back, and OP_SET_GLOBAL_VAR mutating
// it, the three operations a top-level `var x = 1; x = x + 41;` lowers to.
func TestVariableAccess_GlobalInitGetSet(t *testing.T) {
	b := registry.NewCodeBlockBuilder("global-var")
	cName := b.Const(values.NewString("x"))
	cOne := b.Const(values.Int32(1))
	cFortyOne := b.Const(values.Int32(41))
	const (
		rInit = uint32(iota)
		rGet
		rAddend
		rSum
		regCount
	)
	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_LOAD_LITERAL, Dst: rInit, Src1: cOne})
	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_INIT_GLOBAL_VAR, Src1: cName, Src2: rInit})
	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_GET_GLOBAL_VAR, Dst: rGet, Src1: cName})
	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_LOAD_LITERAL, Dst: rAddend, Src1: cFortyOne})
	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_ADD, Dst: rSum, Src1: rGet, Src2: rAddend})
	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_SET_GLOBAL_VAR, Src1: cName, Src2: rSum})
	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_GET_GLOBAL_VAR, Dst: rGet, Src1: cName})
	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_END, Src1: rGet})
	b.SetNumRegisters(regCount)

	out := run(t, b)
	assert.Equal(t, int32(42), out.Int32Val())
}

// TestVariableAccess_GetUndeclaredGlobalErrors covers the ReferenceError an
// undeclared identifier raises, since OP_GET_GLOBAL_VAR never auto-vivifies
// a binding the way OP_SET_GLOBAL_VAR can in sloppy mode.
func TestVariableAccess_GetUndeclaredGlobalErrors(t *testing.T) {
	b := registry.NewCodeBlockBuilder("undeclared")
	cName := b.Const(values.NewString("neverDeclared"))
	const regCount = uint32(1)
	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_GET_GLOBAL_VAR, Dst: 0, Src1: cName})
	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_END, Src1: 0})
	b.SetNumRegisters(regCount)

	machine := NewVirtualMachine()
	state := NewExecutionState(machine, registry.NewRealm())
	_, err := machine.RunProgram(state, b.Build())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "neverDeclared")
}

// TestVariableAccess_SloppySetCreatesImplicitGlobal covers OP_SET_GLOBAL_VAR
// on a name with no prior binding in non-strict mode, which silently
// declares the global the way `y = 5;` with no `var`/`let` does in sloppy
// scripts.
func TestVariableAccess_SloppySetCreatesImplicitGlobal(t *testing.T) {
	b := registry.NewCodeBlockBuilder("implicit-global")
	cName := b.Const(values.NewString("y"))
	cFive := b.Const(values.Int32(5))
	const (
		rVal = uint32(iota)
		rGet
		regCount
	)
	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_LOAD_LITERAL, Dst: rVal, Src1: cFive})
	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_SET_GLOBAL_VAR, Src1: cName, Src2: rVal})
	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_GET_GLOBAL_VAR, Dst: rGet, Src1: cName})
	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_END, Src1: rGet})
	b.SetNumRegisters(regCount)

	out := run(t, b)
	assert.Equal(t, int32(5), out.Int32Val())
}
