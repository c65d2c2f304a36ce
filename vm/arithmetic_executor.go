package vm

import (
	"github.com/wudi/escargot-core/opcodes"
	"github.com/wudi/escargot-core/values"
)

// ArithmeticExecutor dispatches the binary/unary arithmetic opcodes to the
// values package's coercion-aware operators. The teacher's ArithmeticExecutor
// implemented PHP's loose int/float coercion ladder by hand inline
// (add/subtract/multiply/divide/modulo/power methods); that ladder now lives
// in values/arithmetic.go as the full ToPrimitive/ToNumeric/BigInt-aware
// rule set, so this executor is a thin dispatch table instead of an
// implementation.
type ArithmeticExecutor struct {
	*BaseExecutor
}

func NewArithmeticExecutor(state *ExecutionState, frame *CallFrame, inst *opcodes.Instruction) *ArithmeticExecutor {
	return &ArithmeticExecutor{BaseExecutor: NewBaseExecutor(state, frame, inst)}
}

func (a *ArithmeticExecutor) Execute() (*ExecutionResult, error) {
	op1, op2 := a.reader.ReadBoth()
	inst := a.inst

	var result values.Value
	var err error

	switch inst.Opcode {
	case opcodes.OP_ADD:
		result, err = values.BinaryAdd(op1, op2)
	case opcodes.OP_SUB:
		result, err = values.BinarySub(op1, op2)
	case opcodes.OP_MUL:
		result, err = values.BinaryMul(op1, op2)
	case opcodes.OP_DIV:
		result, err = values.BinaryDiv(op1, op2)
	case opcodes.OP_MOD:
		result, err = values.BinaryMod(op1, op2)
	case opcodes.OP_EXP:
		result, err = values.BinaryPow(op1, op2)
	case opcodes.OP_BW_AND:
		result, err = values.BinaryBitwiseAnd(op1, op2)
	case opcodes.OP_BW_OR:
		result, err = values.BinaryBitwiseOr(op1, op2)
	case opcodes.OP_BW_XOR:
		result, err = values.BinaryBitwiseXor(op1, op2)
	case opcodes.OP_SHL:
		result, err = values.BinaryLeftShift(op1, op2)
	case opcodes.OP_SAR:
		result, err = values.BinarySignedRightShift(op1, op2)
	case opcodes.OP_SHR:
		result, err = values.BinaryUnsignedRightShift(op1, op2)
	default:
		return nil, NewOpcodeError(inst.Opcode)
	}
	if err != nil {
		if js, ok := err.(*values.JSError); ok {
			return nil, NewJSVMError(js)
		}
		return nil, err
	}

	return a.CreateAdvanceResult(result)
}

// UnaryExecutor dispatches the unary arithmetic opcodes (negation, bitwise
// not, typeof, ToNumeric steps for ++/--). OP_DELETE is routed here too but
// has no case of its own, so it is rejected as an unimplemented opcode.
type UnaryExecutor struct {
	*BaseExecutor
}

func NewUnaryExecutor(state *ExecutionState, frame *CallFrame, inst *opcodes.Instruction) *UnaryExecutor {
	return &UnaryExecutor{BaseExecutor: NewBaseExecutor(state, frame, inst)}
}

func (u *UnaryExecutor) Execute() (*ExecutionResult, error) {
	op1 := u.reader.Src1()
	inst := u.inst

	var result values.Value
	var err error

	switch inst.Opcode {
	case opcodes.OP_NEG:
		result, err = values.UnaryMinus(op1)
	case opcodes.OP_UPLUS:
		numeric, _ := values.ToNumeric(op1)
		result = numeric
	case opcodes.OP_NOT:
		result = values.Bool(!op1.ToBoolean())
	case opcodes.OP_BW_NOT:
		result, err = values.UnaryBitwiseNot(op1)
	case opcodes.OP_TYPEOF:
		htmlDDA := false
		if obj := op1.BaseObject(); obj != nil {
			htmlDDA = obj.IsHTMLDDA
		}
		result = values.NewString(op1.TypeName(htmlDDA))
	case opcodes.OP_TO_NUMBER, opcodes.OP_TO_NUMERIC_INC, opcodes.OP_TO_NUMERIC_DEC:
		numeric, ok := values.ToNumeric(op1)
		if !ok {
			return nil, NewTypeVMError("Cannot convert value to a number")
		}
		result = numeric
	case opcodes.OP_INC:
		numeric, ok := values.ToNumeric(op1)
		if !ok {
			return nil, NewTypeVMError("Cannot convert value to a number")
		}
		result, err = values.BinaryAdd(numeric, values.Int32(1))
	case opcodes.OP_DEC:
		numeric, ok := values.ToNumeric(op1)
		if !ok {
			return nil, NewTypeVMError("Cannot convert value to a number")
		}
		result, err = values.BinarySub(numeric, values.Int32(1))
	default:
		return nil, NewOpcodeError(inst.Opcode)
	}
	if err != nil {
		if js, ok := err.(*values.JSError); ok {
			return nil, NewJSVMError(js)
		}
		return nil, err
	}

	return u.CreateAdvanceResult(result)
}
