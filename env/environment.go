package env

import "github.com/wudi/escargot-core/values"

// LexicalEnvironment is one frame of the environment chain: a record plus
// a link to the (possibly nil) outer environment.
type LexicalEnvironment struct {
	Record Record
	Outer  *LexicalEnvironment
}

func New(record Record, outer *LexicalEnvironment) *LexicalEnvironment {
	return &LexicalEnvironment{Record: record, Outer: outer}
}

// VirtualIdentifierHook lets a host intercept a name that resolved to no
// binding anywhere in the chain, the escape hatch spec.md's LoadByName
// describes for names a global proxy/import binding might still supply.
type VirtualIdentifierHook func(name string) (values.Value, bool)

// LoadByName walks outward from env asking each record whether it has a
// binding for name. Per spec.md §4.4 "Lookup by name": a binding found but
// holding the `empty` sentinel is a TDZ read and becomes a ReferenceError;
// an unresolved name falls through to hook, then (if throwException) to a
// ReferenceError "is not defined".
func LoadByName(start *LexicalEnvironment, name string, hook VirtualIdentifierHook, throwException bool) (values.Value, error) {
	for e := start; e != nil; e = e.Outer {
		if slot, ok := e.Record.HasBinding(name); ok {
			v, present := e.Record.GetBindingValue(name)
			if !present {
				_ = slot
				continue
			}
			if v.IsEmpty() {
				return values.Undefined, values.NewReferenceError("Cannot access %q before initialization", name)
			}
			return v, nil
		}
	}
	if hook != nil {
		if v, ok := hook(name); ok {
			return v, nil
		}
	}
	if throwException {
		return values.Undefined, values.NewReferenceError("%s is not defined", name)
	}
	return values.Undefined, nil
}

// StoreByName walks outward as LoadByName does; on the first record that
// has the binding, delegates to SetMutableBindingByBindingSlot (which
// enforces const-reassignment/strict failures). If nothing in the chain
// has the binding: non-strict code creates the property on the global
// object (the "sloppy set" path via global), strict code throws
// ReferenceError.
func StoreByName(start *LexicalEnvironment, global *GlobalEnvironmentRecord, name string, value values.Value, strict bool) error {
	for e := start; e != nil; e = e.Outer {
		if slot, ok := e.Record.HasBinding(name); ok {
			return e.Record.SetMutableBindingByBindingSlot(slot, name, value)
		}
	}
	if strict {
		return values.NewReferenceError("%s is not defined", name)
	}
	if global != nil {
		global.CreateGlobalVarBinding(name, true)
		return global.SetMutableBindingByBindingSlot(0, name, value)
	}
	return values.NewReferenceError("%s is not defined", name)
}

// DeleteByName implements `delete name` (spec.md §4.4 "Delete operation"):
// legal only outside strict mode; the with-scope ObjectEnvironmentRecord
// in the chain may refuse (non-configurable binding).
func DeleteByName(start *LexicalEnvironment, name string, strict bool) (bool, error) {
	if strict {
		return false, values.NewTypeError("delete of an unqualified identifier in strict mode")
	}
	for e := start; e != nil; e = e.Outer {
		if _, ok := e.Record.HasBinding(name); ok {
			return e.Record.DeleteBinding(name), nil
		}
	}
	return true, nil
}

// NearestFunctionEnvironment walks outward to find the innermost
// FunctionEnvironmentRecord, the record `this`/`new.target`/arguments
// resolution needs (arrow functions have none of their own and delegate
// here, per original_source/'s ScriptArrowFunctionObject behavior).
func NearestFunctionEnvironment(start *LexicalEnvironment) *FunctionEnvironmentRecord {
	for e := start; e != nil; e = e.Outer {
		if fr, ok := e.Record.(*FunctionEnvironmentRecord); ok {
			return fr
		}
	}
	return nil
}

// NearestGlobalEnvironment walks outward to find the GlobalEnvironmentRecord.
func NearestGlobalEnvironment(start *LexicalEnvironment) *GlobalEnvironmentRecord {
	for e := start; e != nil; e = e.Outer {
		if gr, ok := e.Record.(*GlobalEnvironmentRecord); ok {
			return gr
		}
	}
	return nil
}
