package vm

import (
	"github.com/wudi/escargot-core/env"
	"github.com/wudi/escargot-core/opcodes"
	"github.com/wudi/escargot-core/values"
)

// VariableExecutor dispatches the variable-access opcode family: global
// bindings, by-name lookup/store/init through the lexical environment
// chain, and the by-heap-index fast path a closure-capture analysis can
// pick for a binding it knows statically resolves to a fixed depth+slot.
// No teacher file shares this shape (PHP variables are a flat per-frame map
// with no TDZ or closure-capture concept); grounded on package env's
// LoadByName/StoreByName/DeleteByName and the BaseExecutor plumbing the
// teacher's executor family established.
type VariableExecutor struct {
	*BaseExecutor
}

func NewVariableExecutor(state *ExecutionState, frame *CallFrame, inst *opcodes.Instruction) *VariableExecutor {
	return &VariableExecutor{BaseExecutor: NewBaseExecutor(state, frame, inst)}
}

func (v *VariableExecutor) Execute() (*ExecutionResult, error) {
	switch v.inst.Opcode {
	case opcodes.OP_GET_GLOBAL_VAR:
		return v.execGetGlobal()
	case opcodes.OP_SET_GLOBAL_VAR:
		return v.execSetGlobal()
	case opcodes.OP_INIT_GLOBAL_VAR:
		return v.execInitGlobal()
	case opcodes.OP_LOAD_BY_NAME:
		return v.execLoadByName()
	case opcodes.OP_STORE_BY_NAME:
		return v.execStoreByName()
	case opcodes.OP_INIT_BY_NAME:
		return v.execInitByName()
	case opcodes.OP_LOAD_BY_HEAP_INDEX:
		return v.execLoadByHeapIndex()
	case opcodes.OP_STORE_BY_HEAP_INDEX:
		return v.execStoreByHeapIndex()
	case opcodes.OP_INIT_BY_HEAP_INDEX:
		return v.execInitByHeapIndex()
	case opcodes.OP_RESOLVE_NAME_ADDRESS:
		return v.execResolveNameAddress()
	case opcodes.OP_STORE_BY_NAME_WITH_ADDRESS:
		return v.execStoreByNameWithAddress()
	default:
		return nil, NewOpcodeError(v.inst.Opcode)
	}
}

func (v *VariableExecutor) nameConstant(idx uint32) (string, error) {
	lit, err := v.reader.Constant(idx)
	if err != nil {
		return "", err
	}
	return lit.AsString(), nil
}

func (v *VariableExecutor) global() *env.GlobalEnvironmentRecord {
	return env.NearestGlobalEnvironment(v.frame.Env)
}

// execGetGlobal implements OP_GET_GLOBAL_VAR: Dst = globalRecord[Constants[Src1]].
func (v *VariableExecutor) execGetGlobal() (*ExecutionResult, error) {
	name, err := v.nameConstant(v.inst.Src1)
	if err != nil {
		return nil, err
	}
	g := v.global()
	if g == nil {
		return nil, NewReferenceVMError("%s is not defined", name)
	}
	val, present := g.GetBindingValue(name)
	if !present {
		return nil, NewReferenceVMError("%s is not defined", name)
	}
	return v.CreateAdvanceResult(val)
}

// execSetGlobal implements OP_SET_GLOBAL_VAR: globalRecord[Constants[Src1]] = regs[Src2].
func (v *VariableExecutor) execSetGlobal() (*ExecutionResult, error) {
	name, err := v.nameConstant(v.inst.Src1)
	if err != nil {
		return nil, err
	}
	g := v.global()
	if g == nil {
		return nil, NewReferenceVMError("%s is not defined", name)
	}
	slot, ok := g.HasBinding(name)
	if !ok {
		if v.inst.Flags&opcodes.FlagStrictMode != 0 {
			return nil, NewReferenceVMError("%s is not defined", name)
		}
		g.CreateGlobalVarBinding(name, true)
		slot, _ = g.HasBinding(name)
	}
	if err := g.SetMutableBindingByBindingSlot(slot, name, v.reader.Src2()); err != nil {
		return nil, wrapEnvError(err)
	}
	return advanceResult()
}

// execInitGlobal implements OP_INIT_GLOBAL_VAR: declares and initializes a
// global `var`/function binding, bypassing const/TDZ checks.
func (v *VariableExecutor) execInitGlobal() (*ExecutionResult, error) {
	name, err := v.nameConstant(v.inst.Src1)
	if err != nil {
		return nil, err
	}
	g := v.global()
	if g == nil {
		return nil, NewReferenceVMError("%s is not defined", name)
	}
	g.CreateGlobalVarBinding(name, false)
	g.InitializeBinding(name, v.reader.Src2())
	return advanceResult()
}

// execLoadByName implements OP_LOAD_BY_NAME: Dst = LoadByName(Constants[Src1]).
func (v *VariableExecutor) execLoadByName() (*ExecutionResult, error) {
	name, err := v.nameConstant(v.inst.Src1)
	if err != nil {
		return nil, err
	}
	val, loadErr := env.LoadByName(v.frame.Env, name, nil, true)
	if loadErr != nil {
		return nil, wrapEnvError(loadErr)
	}
	return v.CreateAdvanceResult(val)
}

// execStoreByName implements OP_STORE_BY_NAME: StoreByName(Constants[Src1], regs[Src2]).
func (v *VariableExecutor) execStoreByName() (*ExecutionResult, error) {
	name, err := v.nameConstant(v.inst.Src1)
	if err != nil {
		return nil, err
	}
	strict := v.inst.Flags&opcodes.FlagStrictMode != 0
	if storeErr := env.StoreByName(v.frame.Env, v.global(), name, v.reader.Src2(), strict); storeErr != nil {
		return nil, wrapEnvError(storeErr)
	}
	return advanceResult()
}

// execInitByName implements OP_INIT_BY_NAME: initializes a let/const/function
// binding already declared (by a prior hoisting pass) somewhere in the chain,
// bypassing the const-reassignment and TDZ checks StoreByName enforces.
func (v *VariableExecutor) execInitByName() (*ExecutionResult, error) {
	name, err := v.nameConstant(v.inst.Src1)
	if err != nil {
		return nil, err
	}
	value := v.reader.Src2()
	for e := v.frame.Env; e != nil; e = e.Outer {
		if slot, ok := e.Record.HasBinding(name); ok {
			e.Record.InitializeBindingByIndex(slot, value)
			return advanceResult()
		}
	}
	return nil, NewReferenceVMError("%s is not defined", name)
}

func heapEnvAt(start *env.LexicalEnvironment, depth uint32) *env.LexicalEnvironment {
	cur := start
	for ; depth > 0 && cur != nil; depth-- {
		cur = cur.Outer
	}
	return cur
}

// execLoadByHeapIndex implements OP_LOAD_BY_HEAP_INDEX: Dst = the binding at
// (Src1 environment hops outward, Src2 slot index), a fast path reserved for
// indexed declarative records a closure-capture analysis resolved statically.
func (v *VariableExecutor) execLoadByHeapIndex() (*ExecutionResult, error) {
	e := heapEnvAt(v.frame.Env, v.inst.Src1)
	if e == nil {
		return nil, NewReferenceVMError("heap-indexed binding depth out of range")
	}
	rec, ok := e.Record.(*env.DeclarativeRecordIndexed)
	if !ok {
		return nil, NewReferenceVMError("heap-indexed binding targets a non-indexed environment record")
	}
	val, present := rec.GetBindingValueBySlot(int(v.inst.Src2))
	if !present {
		return nil, NewReferenceVMError("Cannot access binding before initialization")
	}
	return v.CreateAdvanceResult(val)
}

// execStoreByHeapIndex implements OP_STORE_BY_HEAP_INDEX: the heap-indexed
// binding at (Src1 depth, Src2 slot) = regs[Dst].
func (v *VariableExecutor) execStoreByHeapIndex() (*ExecutionResult, error) {
	e := heapEnvAt(v.frame.Env, v.inst.Src1)
	if e == nil {
		return nil, NewReferenceVMError("heap-indexed binding depth out of range")
	}
	rec, ok := e.Record.(*env.DeclarativeRecordIndexed)
	if !ok {
		return nil, NewReferenceVMError("heap-indexed binding targets a non-indexed environment record")
	}
	value := v.frame.getReg(v.inst.Dst)
	if err := rec.SetMutableBindingByBindingSlot(int(v.inst.Src2), "", value); err != nil {
		return nil, wrapEnvError(err)
	}
	return advanceResult()
}

// execInitByHeapIndex implements OP_INIT_BY_HEAP_INDEX: same addressing as
// execStoreByHeapIndex, bypassing const/TDZ checks.
func (v *VariableExecutor) execInitByHeapIndex() (*ExecutionResult, error) {
	e := heapEnvAt(v.frame.Env, v.inst.Src1)
	if e == nil {
		return nil, NewReferenceVMError("heap-indexed binding depth out of range")
	}
	rec, ok := e.Record.(*env.DeclarativeRecordIndexed)
	if !ok {
		return nil, NewReferenceVMError("heap-indexed binding targets a non-indexed environment record")
	}
	rec.InitializeBindingByIndex(int(v.inst.Src2), v.frame.getReg(v.inst.Dst))
	return advanceResult()
}

// nameAddressRef is the opaque value OP_RESOLVE_NAME_ADDRESS caches: which
// lexical environment (and slot, when that environment's record is indexed)
// a name resolved to, so OP_STORE_BY_NAME_WITH_ADDRESS can skip the chain
// walk on repeated execution of the same call site.
type nameAddressRef struct {
	name string
	env  *env.LexicalEnvironment
	slot int
}

func (n *nameAddressRef) Kind() values.Kind { return values.KindHostRef }
func (n *nameAddressRef) String() string    { return "[name address " + n.name + "]" }

// execResolveNameAddress implements OP_RESOLVE_NAME_ADDRESS: Dst = an opaque
// address for Constants[Src1], resolved once by walking the environment
// chain.
func (v *VariableExecutor) execResolveNameAddress() (*ExecutionResult, error) {
	name, err := v.nameConstant(v.inst.Src1)
	if err != nil {
		return nil, err
	}
	for e := v.frame.Env; e != nil; e = e.Outer {
		if slot, ok := e.Record.HasBinding(name); ok {
			return v.CreateAdvanceResult(values.FromPointer(&nameAddressRef{name: name, env: e, slot: slot}))
		}
	}
	return nil, NewReferenceVMError("%s is not defined", name)
}

// execStoreByNameWithAddress implements OP_STORE_BY_NAME_WITH_ADDRESS:
// regs[Dst] (a nameAddressRef) = regs[Src1], the fast-path companion to
// OP_RESOLVE_NAME_ADDRESS.
func (v *VariableExecutor) execStoreByNameWithAddress() (*ExecutionResult, error) {
	addrVal := v.frame.getReg(v.inst.Dst)
	ref, ok := addrVal.Ptr.(*nameAddressRef)
	if !ok {
		return nil, NewTypeVMError("STORE_BY_NAME_WITH_ADDRESS operand is not a resolved address")
	}
	if err := ref.env.Record.SetMutableBindingByBindingSlot(ref.slot, ref.name, v.reader.Src1()); err != nil {
		return nil, wrapEnvError(err)
	}
	return advanceResult()
}

// wrapEnvError lifts a values.JSError surfaced by the env package into a
// VMError carrying it, so it crosses try/catch the way any other thrown
// value does.
func wrapEnvError(err error) error {
	if js, ok := err.(*values.JSError); ok {
		return NewJSVMError(js)
	}
	return err
}
