package registry

import (
	"github.com/wudi/escargot-core/opcodes"
	"github.com/wudi/escargot-core/values"
)

// CodeBlockBuilder hand-assembles a CodeBlock one instruction at a time.
// The interpreter trusts its parser to emit only well-formed, validated
// bytecode (spec.md §6); since no parser is in scope here, tests and the
// cmd/jsvm demo programs use this builder in its place.
type CodeBlockBuilder struct {
	block *CodeBlock
}

func NewCodeBlockBuilder(name string) *CodeBlockBuilder {
	return &CodeBlockBuilder{block: NewCodeBlock(name)}
}

// Const appends a literal to the constant pool and returns its index.
func (b *CodeBlockBuilder) Const(v values.Value) uint32 {
	b.block.Constants = append(b.block.Constants, v)
	return uint32(len(b.block.Constants) - 1)
}

// Emit appends one instruction and returns its index (useful for patching
// Jump fields once a forward target's position is known).
func (b *CodeBlockBuilder) Emit(inst opcodes.Instruction) int {
	b.block.Instructions = append(b.block.Instructions, inst)
	return len(b.block.Instructions) - 1
}

// PatchJump rewrites the Jump field of a previously emitted instruction,
// typically to the current instruction count (the "here" label pattern
// every hand-assembler needs for forward branches).
func (b *CodeBlockBuilder) PatchJump(instIndex int, target int32) {
	b.block.Instructions[instIndex].Jump = target
}

// Here returns the index the next Emit call will use, for computing
// relative or absolute jump targets.
func (b *CodeBlockBuilder) Here() int32 { return int32(len(b.block.Instructions)) }

// PatchTryTargets rewrites an already-emitted OP_TRY's catch/finally/after
// entry points once their positions are known; a try region's body has to
// be assembled before its catch and finally blocks exist, so OP_TRY is
// always emitted with placeholder operands and patched afterward.
func (b *CodeBlockBuilder) PatchTryTargets(instIndex int, catchIP, finallyIP, afterIP int32) {
	inst := &b.block.Instructions[instIndex]
	inst.Src1 = uint32(catchIP)
	inst.Src2 = uint32(finallyIP)
	inst.Jump = afterIP
}

func (b *CodeBlockBuilder) SetNumRegisters(n uint32) *CodeBlockBuilder {
	b.block.NumRegisters = n
	return b
}

func (b *CodeBlockBuilder) SetVariadic(v bool) *CodeBlockBuilder {
	b.block.IsVariadic = v
	return b
}

func (b *CodeBlockBuilder) SetKind(k values.FunctionKind) *CodeBlockBuilder {
	b.block.Kind = k
	return b
}

func (b *CodeBlockBuilder) AddParameter(p ParameterInfo) *CodeBlockBuilder {
	b.block.Parameters = append(b.block.Parameters, p)
	return b
}

// AllocICSlot reserves the next inline-cache slot for a GET/SET precomputed
// call site being assembled; see CodeBlock.AllocICSlot.
func (b *CodeBlockBuilder) AllocICSlot() int32 { return b.block.AllocICSlot() }

func (b *CodeBlockBuilder) Build() *CodeBlock { return b.block }
