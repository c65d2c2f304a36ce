package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wudi/escargot-core/opcodes"
	"github.com/wudi/escargot-core/values"
)

func TestRealm_RegisterAndGetFunction(t *testing.T) {
	r := NewRealm()
	fd := &FunctionDescriptor{Name: "f", Code: NewCodeBlock("f")}
	require.NoError(t, r.RegisterFunction(fd))

	got, ok := r.GetFunction("f")
	require.True(t, ok)
	assert.Same(t, fd, got)
}

func TestRealm_CaseSensitiveNames(t *testing.T) {
	r := NewRealm()
	require.NoError(t, r.RegisterFunction(&FunctionDescriptor{Name: "Foo", Code: NewCodeBlock("Foo")}))
	_, ok := r.GetFunction("foo")
	assert.False(t, ok, "ECMAScript identifiers are case sensitive")
}

func TestRealm_ApplyFastPathInvalidation(t *testing.T) {
	r := NewRealm()
	apply := &values.FunctionObject{Name: "apply"}
	r.BindOriginalApply(apply)
	assert.True(t, r.IsOriginalApply(apply))

	r.InvalidateOriginalApply()
	assert.False(t, r.IsOriginalApply(apply))
}

func TestCodeBlockBuilder_ConstAndPatchJump(t *testing.T) {
	b := NewCodeBlockBuilder("demo")
	idx := b.Const(values.Int32(42))
	assert.Equal(t, uint32(0), idx)

	jumpAt := b.Emit(opcodes.Instruction{Opcode: opcodes.OP_JMP})
	b.PatchJump(jumpAt, b.Here())
	block := b.Build()
	assert.Equal(t, int32(len(block.Instructions)), block.Instructions[jumpAt].Jump)
}
