// Package registry holds the bytecode-level metadata the interpreter
// consumes but does not itself produce: CodeBlocks, function/class
// descriptors, the literal table, and the per-realm symbol registry
// (spec.md §3 "CodeBlock", §6 "Object/Function vtable (consumed)").
// Reshaped field-by-field from the teacher's registry/types.go
// Function/Class/Property/descriptor structs.
package registry

import (
	"github.com/wudi/escargot-core/ic"
	"github.com/wudi/escargot-core/opcodes"
	"github.com/wudi/escargot-core/values"
)

// ParameterInfo describes one formal parameter slot.
type ParameterInfo struct {
	Name       string
	SlotIndex  int
	IsRest     bool
	HasDefault bool
	// DefaultCode, when non-nil, is the bytecode evaluated to produce the
	// default value when the caller omitted the argument.
	DefaultCode *CodeBlock
}

// CodeBlock is the unit of compiled bytecode the interpreter executes: a
// flat instruction stream, its literal/constant pool, and the register-
// file sizing the parser computed ahead of time. Grounded on the
// teacher's Function{Name, Instructions, Constants, Parameters,
// IsVariadic, IsGenerator, IsAnonymous}.
type CodeBlock struct {
	Name            string
	Instructions    []opcodes.Instruction
	Constants       []values.Value
	Parameters      []ParameterInfo
	NumRegisters    uint32
	IsVariadic      bool
	IsAnonymous     bool
	Kind            values.FunctionKind
	IsStrict        bool
	// LexicalDepth is the number of enclosing function scopes, used by
	// ResolveNameAddress-style fast environment access.
	LexicalDepth int
	// SourceName/Line are diagnostic only (stack traces, debugger REPL).
	SourceName string
	Line       int

	// getCaches/setCaches hold one inline-cache slot per
	// OP_GET_OBJECT_PRECOMPUTED / OP_SET_OBJECT_PRECOMPUTED call site,
	// indexed by the instruction's Jump field (spec.md §4.3 "Property
	// access and inline caches"). A CodeBlock, not an Instruction value, is
	// the right home for these: caches accumulate state across every
	// execution of the same call site, and Instruction is copied by value.
	getCaches []*ic.GetPrecomputedCache
	setCaches []*ic.SetPrecomputedCache
}

func NewCodeBlock(name string) *CodeBlock {
	return &CodeBlock{Name: name}
}

// GetCache returns the inline cache for a GET_OBJECT_PRECOMPUTED call site,
// creating it (for propName, under the default tuning) the first time slot
// is seen.
func (c *CodeBlock) GetCache(slot int32, propName string) *ic.GetPrecomputedCache {
	if slot < 0 {
		return ic.NewGetCache(propName, ic.DefaultConfig())
	}
	for int32(len(c.getCaches)) <= slot {
		c.getCaches = append(c.getCaches, nil)
	}
	if c.getCaches[slot] == nil {
		c.getCaches[slot] = ic.NewGetCache(propName, ic.DefaultConfig())
	}
	return c.getCaches[slot]
}

// SetCache returns the inline cache for a SET_OBJECT_PRECOMPUTED call site,
// creating it the first time slot is seen.
func (c *CodeBlock) SetCache(slot int32) *ic.SetPrecomputedCache {
	if slot < 0 {
		return ic.NewSetCache(ic.DefaultConfig())
	}
	for int32(len(c.setCaches)) <= slot {
		c.setCaches = append(c.setCaches, nil)
	}
	if c.setCaches[slot] == nil {
		c.setCaches[slot] = ic.NewSetCache(ic.DefaultConfig())
	}
	return c.setCaches[slot]
}

// AllocICSlot reserves the next GET/SET cache slot index for a new call
// site, for use by CodeBlockBuilder when hand-assembling IC-bearing
// instructions.
func (c *CodeBlock) AllocICSlot() int32 {
	slot := int32(len(c.getCaches))
	if int32(len(c.setCaches)) > slot {
		slot = int32(len(c.setCaches))
	}
	for int32(len(c.getCaches)) <= slot {
		c.getCaches = append(c.getCaches, nil)
	}
	for int32(len(c.setCaches)) <= slot {
		c.setCaches = append(c.setCaches, nil)
	}
	return slot
}

// CodeBlockRef wraps a *CodeBlock so a nested function/class body can travel
// through an enclosing CodeBlock's own Constants pool (itself []values.Value)
// as an opaque PointerValue, the shape OP_CREATE_FUNCTION and
// OP_INITIALIZE_CLASS expect their operand to be.
type CodeBlockRef struct {
	Block *CodeBlock
}

func (c *CodeBlockRef) Kind() values.Kind { return values.KindHostRef }
func (c *CodeBlockRef) String() string    { return "[code block " + c.Block.Name + "]" }

// WrapCodeBlock packages a CodeBlock for insertion into a constant pool via
// CodeBlockBuilder.Const(registry.WrapCodeBlock(nested)).
func WrapCodeBlock(block *CodeBlock) values.Value {
	return values.FromPointer(&CodeBlockRef{Block: block})
}

// Constant fetches a literal by index, per spec.md's constant-index
// operand decoding; panics on an out-of-range index the way the teacher's
// NewConstantError path guards against at the VM layer (this package only
// stores the table, the VM is responsible for bounds-checking against
// user-supplied indices).
func (c *CodeBlock) Constant(idx uint32) values.Value {
	return c.Constants[idx]
}
