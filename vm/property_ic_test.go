package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wudi/escargot-core/opcodes"
	"github.com/wudi/escargot-core/registry"
	"github.com/wudi/escargot-core/values"
)

// TestPropertyAccess_DefineThenPrecomputedGet covers
// OP_DEFINE_OWN_PROPERTY_WITH_NAME followed by OP_GET_OBJECT_PRECOMPUTED
// reading the same property back through an inline-cache slot.
func TestPropertyAccess_DefineThenPrecomputedGet(t *testing.T) {
	b := registry.NewCodeBlockBuilder("define-then-get")
	cKey := b.Const(values.NewString("x"))
	cVal := b.Const(values.Int32(9))
	const (
		rObj = uint32(iota)
		rKey
		rVal
		rGet
		regCount
	)
	icSlot := b.AllocICSlot()

	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_CREATE_OBJECT, Dst: rObj})
	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_LOAD_LITERAL, Dst: rKey, Src1: cKey})
	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_LOAD_LITERAL, Dst: rVal, Src1: cVal})
	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_DEFINE_OWN_PROPERTY_WITH_NAME, Dst: rObj, Src1: rKey, Src2: rVal})
	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_GET_OBJECT_PRECOMPUTED, Dst: rGet, Src1: rObj, Src2: cKey, Jump: icSlot})
	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_END, Src1: rGet})
	b.SetNumRegisters(regCount)

	out := run(t, b)
	assert.Equal(t, int32(9), out.Int32Val())
}

// TestPropertyAccess_InlineCacheStaysHitAcrossRepeatedReads covers
// several reads through the same call site: with the default
// MinCacheFillCount of 4, reads one to four miss, the fourth miss installs
// the entry, and the fifth read is a hit; the sum is the same either way.
func TestPropertyAccess_InlineCacheStaysHitAcrossRepeatedReads(t *testing.T) {
	b := registry.NewCodeBlockBuilder("repeated-get")
	cKey := b.Const(values.NewString("x"))
	cVal := b.Const(values.Int32(4))
	cZero := b.Const(values.Int32(0))
	const (
		rObj = uint32(iota)
		rKey
		rVal
		rSum
		rTemp
		regCount
	)
	icSlot := b.AllocICSlot()

	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_CREATE_OBJECT, Dst: rObj})
	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_LOAD_LITERAL, Dst: rKey, Src1: cKey})
	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_LOAD_LITERAL, Dst: rVal, Src1: cVal})
	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_DEFINE_OWN_PROPERTY_WITH_NAME, Dst: rObj, Src1: rKey, Src2: rVal})
	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_LOAD_LITERAL, Dst: rSum, Src1: cZero})

	for i := 0; i < 5; i++ {
		b.Emit(opcodes.Instruction{Opcode: opcodes.OP_GET_OBJECT_PRECOMPUTED, Dst: rTemp, Src1: rObj, Src2: cKey, Jump: icSlot})
		b.Emit(opcodes.Instruction{Opcode: opcodes.OP_ADD, Dst: rSum, Src1: rSum, Src2: rTemp})
	}
	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_END, Src1: rSum})
	b.SetNumRegisters(regCount)

	out := run(t, b)
	assert.Equal(t, int32(4*5), out.Int32Val())
}
