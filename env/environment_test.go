package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wudi/escargot-core/values"
)

func TestLoadByName_IndexedBindingFoundInOuter(t *testing.T) {
	outer := NewDeclarativeRecordIndexed(1)
	slot := outer.DeclareSlot(true)
	outer.InitializeBindingByIndex(slot, values.Int32(42))
	outer.nameSlots["x"] = slot

	outerEnv := New(outer, nil)
	innerEnv := New(NewDeclarativeRecordNotIndexed(), outerEnv)

	v, err := LoadByName(innerEnv, "x", nil, true)
	require.NoError(t, err)
	assert.Equal(t, int32(42), v.Int32Val())
}

func TestLoadByName_TDZThrowsReferenceError(t *testing.T) {
	rec := NewDeclarativeRecordNotIndexed()
	rec.CreateBinding("x", false, false, true)
	e := New(rec, nil)

	_, err := LoadByName(e, "x", nil, true)
	require.Error(t, err)
	je := err.(*values.JSError)
	assert.Equal(t, values.ErrReferenceError, je.Kind)
}

func TestLoadByName_UnresolvedThrows(t *testing.T) {
	e := New(NewDeclarativeRecordNotIndexed(), nil)
	_, err := LoadByName(e, "missing", nil, true)
	require.Error(t, err)
}

func TestLoadByName_VirtualIdentifierHook(t *testing.T) {
	e := New(NewDeclarativeRecordNotIndexed(), nil)
	v, err := LoadByName(e, "fallback", func(name string) (values.Value, bool) {
		if name == "fallback" {
			return values.NewString("hooked"), true
		}
		return values.Undefined, false
	}, true)
	require.NoError(t, err)
	assert.Equal(t, "hooked", v.AsString())
}

func TestStoreByName_ConstReassignmentFails(t *testing.T) {
	rec := NewDeclarativeRecordNotIndexed()
	rec.CreateBinding("x", false, false, true)
	rec.InitializeBinding("x", values.Int32(1))
	e := New(rec, nil)

	err := StoreByName(e, nil, "x", values.Int32(2), true)
	require.Error(t, err)
}

func TestStoreByName_SloppyCreatesGlobal(t *testing.T) {
	global := NewGlobalEnvironmentRecord(values.NewObject("global", nil))
	e := New(global, nil)

	err := StoreByName(e, global, "g", values.Int32(9), false)
	require.NoError(t, err)
	v, ok := global.GetBindingValue("g")
	require.True(t, ok)
	assert.Equal(t, int32(9), v.Int32Val())
}

func TestStoreByName_StrictUnresolvedThrows(t *testing.T) {
	e := New(NewDeclarativeRecordNotIndexed(), nil)
	err := StoreByName(e, nil, "missing", values.Int32(1), true)
	require.Error(t, err)
}

func TestDeleteByName_StrictModeThrows(t *testing.T) {
	e := New(NewDeclarativeRecordNotIndexed(), nil)
	_, err := DeleteByName(e, "x", true)
	require.Error(t, err)
}

func TestNearestFunctionEnvironment_SkipsBlockScopes(t *testing.T) {
	fnRecord := NewFunctionEnvironmentRecord(0, &values.FunctionObject{})
	fnEnv := New(fnRecord, nil)
	blockEnv := New(NewDeclarativeRecordNotIndexed(), fnEnv)

	found := NearestFunctionEnvironment(blockEnv)
	assert.Same(t, fnRecord, found)
}
