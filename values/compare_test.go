package values

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStrictEquals_PlusZeroAndMinusZero(t *testing.T) {
	assert.True(t, StrictEquals(Double(0), Double(-0.0)))
}

func TestStrictEquals_NaNNeverEqual(t *testing.T) {
	n := Double(math.NaN())
	assert.False(t, StrictEquals(n, n))
}

func TestStrictEquals_Int32AndDoubleCrossType(t *testing.T) {
	assert.True(t, StrictEquals(Int32(5), Double(5)))
}

func TestAbstractEquals_NullUndefined(t *testing.T) {
	assert.True(t, AbstractEquals(Null, Undefined))
}

func TestAbstractEquals_StringNumberCoercion(t *testing.T) {
	assert.True(t, AbstractEquals(NewString("5"), Int32(5)))
}

func TestLessThan_NaNYieldsInvalid(t *testing.T) {
	_, valid := LessThan(Double(math.NaN()), Int32(1))
	assert.False(t, valid)
}

func TestLessThan_StringLexicographic(t *testing.T) {
	lt, valid := LessThan(NewString("a"), NewString("b"))
	assert.True(t, valid)
	assert.True(t, lt)
}

func TestLessThan_BigIntNumberCrossCompare(t *testing.T) {
	lt, valid := LessThan(NewBigIntFromInt64(5), Double(10))
	assert.True(t, valid)
	assert.True(t, lt)
}

func TestTypeName(t *testing.T) {
	assert.Equal(t, "undefined", Undefined.TypeName(false))
	assert.Equal(t, "object", Null.TypeName(false))
	assert.Equal(t, "boolean", True.TypeName(false))
	assert.Equal(t, "number", Int32(1).TypeName(false))
	assert.Equal(t, "string", NewString("x").TypeName(false))
	assert.Equal(t, "bigint", NewBigIntFromInt64(1).TypeName(false))
}

func TestTypeName_HTMLDDAUnderFlag(t *testing.T) {
	o := NewObject("Object", nil)
	o.IsHTMLDDA = true
	v := FromPointer(o)
	assert.Equal(t, "object", v.TypeName(false))
	assert.Equal(t, "undefined", v.TypeName(true))
}
