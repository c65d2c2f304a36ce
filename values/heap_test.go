package values

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObject_DefineAndGet(t *testing.T) {
	o := NewObject("Object", nil)
	o.DefineOwn("x", PropertyDescriptor{Value: Int32(1), Writable: true, Enumerable: true, Configurable: true})
	pd, ok := o.Get("x")
	require.True(t, ok)
	assert.Equal(t, int32(1), pd.Value.Int32Val())
}

func TestObject_PrototypeChainLookup(t *testing.T) {
	proto := NewObject("Object", nil)
	proto.DefineOwn("inherited", PropertyDescriptor{Value: NewString("base")})
	child := NewObject("Object", proto)
	pd, ok := child.Get("inherited")
	require.True(t, ok)
	assert.Equal(t, "base", pd.Value.AsString())

	_, ok = child.GetOwn("inherited")
	assert.False(t, ok, "GetOwn must not walk the prototype chain")
}

func TestArray_DenseFastModeAppend(t *testing.T) {
	a := NewArray(nil)
	a.SetIndex(0, Int32(10))
	a.SetIndex(1, Int32(20))
	assert.True(t, a.FastMode)
	assert.Equal(t, uint32(2), a.Length)

	v, ok := a.GetIndex(1)
	require.True(t, ok)
	assert.Equal(t, int32(20), v.Int32Val())
}

func TestArray_SparseIndexFallsOutOfFastMode(t *testing.T) {
	a := NewArray(nil)
	a.SetIndex(0, Int32(1))
	a.SetIndex(10, Int32(2))
	assert.False(t, a.FastMode)
	assert.Equal(t, uint32(11), a.Length)

	v, ok := a.GetIndex(10)
	require.True(t, ok)
	assert.Equal(t, int32(2), v.Int32Val())
}

func TestFunctionObject_KindOverridesObjectKind(t *testing.T) {
	fn := &FunctionObject{Object: Object{Structure: RootStructure()}, Name: "f"}
	assert.Equal(t, KindFunction, fn.Kind())
}

func TestEnumerateObject_Cursor(t *testing.T) {
	e := &EnumerateObject{Keys: []string{"a", "b"}}
	k, ok := e.Next()
	require.True(t, ok)
	assert.Equal(t, "a", k)
	k, ok = e.Next()
	require.True(t, ok)
	assert.Equal(t, "b", k)
	_, ok = e.Next()
	assert.False(t, ok)
}
