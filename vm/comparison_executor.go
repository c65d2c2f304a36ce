package vm

import (
	"github.com/wudi/escargot-core/opcodes"
	"github.com/wudi/escargot-core/values"
)

// ComparisonExecutor dispatches the equality/relational/in/instanceof
// opcodes. Grounded on the teacher's ComparisonExecutor dispatch shape;
// the actual coercion ladders now live in values/compare.go.
type ComparisonExecutor struct {
	*BaseExecutor
}

func NewComparisonExecutor(state *ExecutionState, frame *CallFrame, inst *opcodes.Instruction) *ComparisonExecutor {
	return &ComparisonExecutor{BaseExecutor: NewBaseExecutor(state, frame, inst)}
}

func (c *ComparisonExecutor) Execute() (*ExecutionResult, error) {
	op1, op2 := c.reader.ReadBoth()
	inst := c.inst

	var result values.Value

	switch inst.Opcode {
	case opcodes.OP_EQ:
		result = values.Bool(values.AbstractEquals(op1, op2))
	case opcodes.OP_NEQ:
		result = values.Bool(!values.AbstractEquals(op1, op2))
	case opcodes.OP_STRICT_EQ:
		result = values.Bool(values.StrictEquals(op1, op2))
	case opcodes.OP_STRICT_NEQ:
		result = values.Bool(!values.StrictEquals(op1, op2))
	case opcodes.OP_LT:
		lt, valid := values.LessThan(op1, op2)
		result = values.Bool(valid && lt)
	case opcodes.OP_LTE:
		gt, valid := values.LessThan(op2, op1)
		result = values.Bool(valid && !gt)
	case opcodes.OP_GT:
		gt, valid := values.LessThan(op2, op1)
		result = values.Bool(valid && gt)
	case opcodes.OP_GTE:
		lt, valid := values.LessThan(op1, op2)
		result = values.Bool(valid && !lt)
	case opcodes.OP_IN:
		res, err := c.opIn(op1, op2)
		if err != nil {
			return nil, err
		}
		result = res
	case opcodes.OP_INSTANCEOF:
		res, err := c.opInstanceof(op1, op2)
		if err != nil {
			return nil, err
		}
		result = res
	default:
		return nil, NewOpcodeError(inst.Opcode)
	}

	return c.CreateAdvanceResult(result)
}

// opIn implements the `in` operator: op1 is the property key, op2 must be an
// object.
func (c *ComparisonExecutor) opIn(key, target values.Value) (values.Value, error) {
	obj := target.BaseObject()
	if obj == nil {
		return values.Undefined, NewTypeVMError("Cannot use 'in' operator to search for '%s' in non-object", values.ToStringForConcat(key))
	}
	_, found := obj.Get(values.ToStringForConcat(key))
	return values.Bool(found), nil
}

// opInstanceof walks target's prototype chain looking for ctor's "prototype"
// own property, the standard OrdinaryHasInstance algorithm.
func (c *ComparisonExecutor) opInstanceof(target, ctor values.Value) (values.Value, error) {
	if !ctor.IsCallable() {
		return values.Undefined, NewTypeVMError("Right-hand side of 'instanceof' is not callable")
	}
	targetObj := target.BaseObject()
	if targetObj == nil {
		return values.Bool(false), nil
	}
	ctorObj := ctor.BaseObject()
	protoDesc, ok := ctorObj.GetOwn("prototype")
	if !ok {
		return values.Bool(false), nil
	}
	proto := protoDesc.Value.BaseObject()
	if proto == nil {
		return values.Bool(false), nil
	}
	for cur := targetObj.Prototype; cur != nil; cur = cur.Prototype {
		if cur == proto {
			return values.Bool(true), nil
		}
	}
	return values.Bool(false), nil
}
