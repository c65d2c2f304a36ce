package main

import (
	"fmt"

	"github.com/wudi/escargot-core/opcodes"
	"github.com/wudi/escargot-core/registry"
	"github.com/wudi/escargot-core/values"
)

// demo pairs a hand-assembled CodeBlock with the prose description of the
// end-to-end scenario it exercises, since there is no source-level parser
// in escargot-core to drive a script file through. Grounded on
// registry.CodeBlockBuilder's own doc comment ("tests and the cmd/jsvm demo
// programs use this builder in its place") and spec.md §8's "End-to-end
// scenarios".
type demo struct {
	name        string
	description string
	build       func() *registry.CodeBlock
}

var demos = []demo{
	{
		name:        "overflow-loop",
		description: "let s=0; for (let i=0;i<3;i++) s = s + 1000000000; s  -- expect 3000000000 as a double",
		build:       buildOverflowLoop,
	},
	{
		name:        "try-catch-finally",
		description: "try { throw \"boom\" } catch (e) { out = 1 } finally { out += 10 }  -- expect 11",
		build:       buildTryCatchFinally,
	},
	{
		name:        "property-ic",
		description: "const o={x:7}; let r=0; for (let i=0;i<3;i++) r += o.x  -- expect 21; all three reads miss, since the IC slot only fills on its fourth miss",
		build:       buildPropertyIC,
	},
}

func findDemo(name string) (demo, bool) {
	for _, d := range demos {
		if d.name == name {
			return d, true
		}
	}
	return demo{}, false
}

// buildOverflowLoop assembles the arithmetic-invariant scenario: three
// additions of 1e9 into a register that starts at int32 zero, crossing the
// int32 range on the last iteration so the result widens to a double
// (values.BinaryAdd hands the out-of-range sum to values.Number, which
// keeps it as a double).
func buildOverflowLoop() *registry.CodeBlock {
	b := registry.NewCodeBlockBuilder("overflow-loop")

	cZero := b.Const(values.Int32(0))
	cBillion := b.Const(values.Int32(1000000000))
	cThree := b.Const(values.Int32(3))
	cOne := b.Const(values.Int32(1))

	const (
		regS = uint32(iota)
		regI
		regBillion
		regThree
		regOne
		regCond
		regCount
	)

	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_LOAD_LITERAL, Dst: regS, Src1: cZero})
	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_LOAD_LITERAL, Dst: regI, Src1: cZero})
	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_LOAD_LITERAL, Dst: regBillion, Src1: cBillion})
	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_LOAD_LITERAL, Dst: regThree, Src1: cThree})
	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_LOAD_LITERAL, Dst: regOne, Src1: cOne})

	loopStart := b.Here()
	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_LT, Dst: regCond, Src1: regI, Src2: regThree})
	jmpExit := b.Emit(opcodes.Instruction{Opcode: opcodes.OP_JMP_IF_FALSE, Src1: regCond})
	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_ADD, Dst: regS, Src1: regS, Src2: regBillion})
	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_ADD, Dst: regI, Src1: regI, Src2: regOne})
	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_JMP, Jump: loopStart})

	b.PatchJump(jmpExit, b.Here())
	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_END, Src1: regS})

	return b.SetNumRegisters(regCount).Build()
}

// buildTryCatchFinally assembles the control-flow scenario: a throw inside
// a try region whose catch clause sets out=1, falling straight through into
// the finally clause (out += 10) the way a compiler lowers a catch arm that
// completes normally, then OP_JMP_COMPLEX_CASE closes the region with no
// pending break/continue/return to replay.
func buildTryCatchFinally() *registry.CodeBlock {
	b := registry.NewCodeBlockBuilder("try-catch-finally")

	cZero := b.Const(values.Int32(0))
	cOne := b.Const(values.Int32(1))
	cTen := b.Const(values.Int32(10))
	cBoom := b.Const(values.NewString("boom"))

	const (
		regOut = uint32(iota)
		regCaught
		regThrown
		regTemp
		regCount
	)

	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_LOAD_LITERAL, Dst: regOut, Src1: cZero})
	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_LOAD_LITERAL, Dst: regThrown, Src1: cBoom})

	tryIdx := b.Emit(opcodes.Instruction{Opcode: opcodes.OP_TRY, Dst: regCaught})

	// try body
	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_THROW, Src1: regThrown})

	catchIP := b.Here()
	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_LOAD_LITERAL, Dst: regOut, Src1: cOne})

	finallyIP := b.Here()
	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_LOAD_LITERAL, Dst: regTemp, Src1: cTen})
	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_ADD, Dst: regOut, Src1: regOut, Src2: regTemp})
	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_JMP_COMPLEX_CASE})

	afterIP := b.Here()
	b.PatchTryTargets(tryIdx, catchIP, finallyIP, afterIP)

	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_END, Src1: regOut})

	return b.SetNumRegisters(regCount).Build()
}

// buildPropertyIC assembles the property-access invariant scenario: one
// GET_OBJECT_PRECOMPUTED call site, read three times against the same
// object structure. With the default MinCacheFillCount of 4 the call site
// installs no cache entry before its fourth miss, so all three reads record
// a miss (ic.GetPrecomputedCache.RecordMiss).
func buildPropertyIC() *registry.CodeBlock {
	b := registry.NewCodeBlockBuilder("property-ic")

	cSeven := b.Const(values.Int32(7))
	cKeyReg := b.Const(values.NewString("x"))
	cZero := b.Const(values.Int32(0))

	const (
		regObj = uint32(iota)
		regKey
		regSeven
		regSum
		regTemp
		regCount
	)

	icSlot := b.AllocICSlot()

	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_CREATE_OBJECT, Dst: regObj})
	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_LOAD_LITERAL, Dst: regKey, Src1: cKeyReg})
	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_LOAD_LITERAL, Dst: regSeven, Src1: cSeven})
	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_DEFINE_OWN_PROPERTY_WITH_NAME, Dst: regObj, Src1: regKey, Src2: regSeven})
	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_LOAD_LITERAL, Dst: regSum, Src1: cZero})

	for i := 0; i < 3; i++ {
		b.Emit(opcodes.Instruction{Opcode: opcodes.OP_GET_OBJECT_PRECOMPUTED, Dst: regTemp, Src1: regObj, Src2: cKeyReg, Jump: icSlot})
		b.Emit(opcodes.Instruction{Opcode: opcodes.OP_ADD, Dst: regSum, Src1: regSum, Src2: regTemp})
	}

	b.Emit(opcodes.Instruction{Opcode: opcodes.OP_END, Src1: regSum})

	return b.SetNumRegisters(regCount).Build()
}

func listDemos() string {
	out := ""
	for _, d := range demos {
		out += fmt.Sprintf("  %-20s %s\n", d.name, d.description)
	}
	return out
}
