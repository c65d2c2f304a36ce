package vm

import (
	"github.com/wudi/escargot-core/opcodes"
	"github.com/wudi/escargot-core/values"
)

// OperandReader decodes an instruction's Dst/Src1/Src2 register operands
// against the current frame's register file. The teacher's OperandReader
// dispatched on an explicit OpType tag per operand (IS_CONST/IS_TMP_VAR/
// IS_VAR/IS_CV) because PHP's Zend-derived bytecode encodes where an operand
// lives inline; the new Instruction struct is a flat register machine, so
// every Src/Dst is simply a register index and this reader collapses to
// direct register-file access plus the one opcode-documented exception
// (literal-table and name-table indices, handled by the callers that need
// them instead of by this type).
type OperandReader struct {
	frame *CallFrame
	inst  *opcodes.Instruction
}

func NewOperandReader(frame *CallFrame, inst *opcodes.Instruction) *OperandReader {
	return &OperandReader{frame: frame, inst: inst}
}

func (r *OperandReader) Src1() values.Value { return r.frame.getReg(r.inst.Src1) }
func (r *OperandReader) Src2() values.Value { return r.frame.getReg(r.inst.Src2) }
func (r *OperandReader) Dst() values.Value  { return r.frame.getReg(r.inst.Dst) }

func (r *OperandReader) ReadBoth() (values.Value, values.Value) {
	return r.Src1(), r.Src2()
}

func (r *OperandReader) WriteDst(v values.Value) {
	r.frame.setReg(r.inst.Dst, v)
}

// Constant fetches a literal from the frame's CodeBlock constant pool.
func (r *OperandReader) Constant(idx uint32) (values.Value, error) {
	return r.frame.constant(idx)
}
