package ic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wudi/escargot-core/values"
)

func TestGetCache_SimpleHitAfterPromotion(t *testing.T) {
	obj := values.NewObject("Object", nil)
	obj.DefineOwn("x", values.PropertyDescriptor{Value: values.Int32(7), Writable: true, Enumerable: true, Configurable: true})

	cache := NewGetCache("x", Config{MinCacheFillCount: 1, MaxCacheCount: 24, MaxCacheMissCount: 32})

	_, hit := cache.Lookup(obj)
	require.False(t, hit)

	idx, _ := obj.Structure.IndexOf("x")
	cache.RecordMiss([]*values.ObjectStructure{obj.Structure}, idx, true, true)

	res, hit := cache.Lookup(obj)
	require.True(t, hit)
	assert.True(t, res.Found)
	assert.Equal(t, int32(7), res.Value.Int32Val())
}

func TestGetCache_GivesUpAboveMaxMissCount(t *testing.T) {
	cache := NewGetCache("x", Config{MinCacheFillCount: 1, MaxCacheCount: 24, MaxCacheMissCount: 2})
	cache.RecordMiss(nil, 0, false, false)
	cache.RecordMiss(nil, 0, false, false)
	cache.RecordMiss(nil, 0, false, false)
	assert.True(t, cache.giveUp)
}

func TestSetCache_OwnWriteFastPath(t *testing.T) {
	obj := values.NewObject("Object", nil)
	obj.DefineOwn("x", values.PropertyDescriptor{Value: values.Int32(1), Writable: true, Enumerable: true, Configurable: true})
	idx, _ := obj.Structure.IndexOf("x")

	cache := NewSetCache(DefaultConfig())
	cache.RecordOwnWrite(obj.Structure, idx)

	ok := cache.TryOwnWrite(obj, values.Int32(99))
	require.True(t, ok)
	pd, _ := obj.GetOwn("x")
	assert.Equal(t, int32(99), pd.Value.Int32Val())
}

func TestSetCache_TransitionFastPath(t *testing.T) {
	obj := values.NewObject("Object", nil)
	before := obj.Structure
	after := before.Transition("y")

	cache := NewSetCache(DefaultConfig())
	cache.RecordTransition(before, []*values.ObjectStructure{before}, after)

	ok := cache.TryTransition(obj, "y", values.Int32(5))
	require.True(t, ok)
	assert.Same(t, after, obj.Structure)
	pd, found := obj.GetOwn("y")
	require.True(t, found)
	assert.Equal(t, int32(5), pd.Value.Int32Val())
}

func TestGlobalVariableAccessCacheItem_LexicalInvalidatesOnShrink(t *testing.T) {
	c := NewGlobalVariableAccessCacheItem("g")
	c.BindLexical(3, 10)
	_, ok := c.LexicalSlot(10)
	assert.True(t, ok)
	_, ok = c.LexicalSlot(5)
	assert.False(t, ok)
}

func TestGlobalVariableAccessCacheItem_ObjectInvalidatesOnShapeChange(t *testing.T) {
	obj := values.NewObject("global", nil)
	c := NewGlobalVariableAccessCacheItem("g")
	c.BindObject(obj.Structure, 0)
	_, ok := c.ObjectSlot(obj)
	assert.True(t, ok)

	obj.DefineOwn("other", values.PropertyDescriptor{})
	_, ok = c.ObjectSlot(obj)
	assert.False(t, ok)
}
