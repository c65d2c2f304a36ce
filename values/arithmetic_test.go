package values

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBinaryAdd_Int32FastPath(t *testing.T) {
	v, err := BinaryAdd(Int32(2), Int32(3))
	require.NoError(t, err)
	assert.True(t, v.IsInt32())
	assert.Equal(t, int32(5), v.Int32Val())
}

func TestBinaryAdd_OverflowWidensToDouble(t *testing.T) {
	v, err := BinaryAdd(Int32(math.MaxInt32), Int32(1))
	require.NoError(t, err)
	assert.True(t, v.IsDouble())
	assert.Equal(t, float64(math.MaxInt32)+1, v.Float64Val())
}

func TestBinaryAdd_StringConcatenation(t *testing.T) {
	v, err := BinaryAdd(NewString("a"), NewString("b"))
	require.NoError(t, err)
	assert.Equal(t, "ab", v.String())
}

func TestBinaryAdd_PlusZero(t *testing.T) {
	for _, x := range []Value{Double(0), Double(-0.0), Int32(5), Double(math.Inf(1))} {
		v, err := BinaryAdd(Double(0), x)
		require.NoError(t, err)
		assert.Equal(t, x.Float64Val(), v.Float64Val())

		v2, err := BinaryAdd(x, Double(-0.0))
		require.NoError(t, err)
		assert.Equal(t, x.Float64Val(), v2.Float64Val())
	}
}

func TestBinaryMultiply_SignOfZero(t *testing.T) {
	v, err := BinaryMul(Int32(-1), Int32(0))
	require.NoError(t, err)
	assert.True(t, v.IsDouble())
	assert.True(t, math.Signbit(v.Float64Val()))
}

func TestBinaryMultiply_NaNPropagates(t *testing.T) {
	v, err := BinaryMul(Double(math.NaN()), Int32(5))
	require.NoError(t, err)
	assert.True(t, math.IsNaN(v.Float64Val()))
}

func TestBinaryMod_PositiveInt32FastPath(t *testing.T) {
	v, err := BinaryMod(Int32(7), Int32(3))
	require.NoError(t, err)
	assert.Equal(t, int32(1), v.Int32Val())
}

func TestBinaryMod_ZeroDivisorIsNaN(t *testing.T) {
	v, err := BinaryMod(Double(5), Double(0))
	require.NoError(t, err)
	assert.True(t, math.IsNaN(v.Float64Val()))
}

func TestBinaryMod_BigIntZeroDivisorRangeErrors(t *testing.T) {
	_, err := BinaryMod(NewBigIntFromInt64(5), NewBigIntFromInt64(0))
	require.Error(t, err)
	je, ok := err.(*JSError)
	require.True(t, ok)
	assert.Equal(t, ErrRangeError, je.Kind)
}

func TestBinaryExponentiation_LegacyOneToInfinityIsNaN(t *testing.T) {
	v, err := BinaryPow(Double(1), Double(math.Inf(1)))
	require.NoError(t, err)
	assert.True(t, math.IsNaN(v.Float64Val()))

	v2, err := BinaryPow(Double(-1), Double(math.Inf(-1)))
	require.NoError(t, err)
	assert.True(t, math.IsNaN(v2.Float64Val()))
}

func TestMixedBigIntAndNumber_ThrowsTypeError(t *testing.T) {
	ops := []func(a, b Value) (Value, error){
		BinaryAdd, BinarySub, BinaryMul, BinaryDiv, BinaryMod, BinaryPow,
		BinaryBitwiseAnd, BinaryBitwiseOr, BinaryBitwiseXor,
	}
	for _, op := range ops {
		_, err := op(NewBigIntFromInt64(1), Int32(1))
		require.Error(t, err)
		je, ok := err.(*JSError)
		require.True(t, ok)
		assert.Equal(t, ErrTypeError, je.Kind)
	}
}

func TestBigIntUnsignedRightShift_ThrowsTypeError(t *testing.T) {
	_, err := BinaryUnsignedRightShift(NewBigIntFromInt64(1), NewBigIntFromInt64(1))
	require.Error(t, err)
	je, ok := err.(*JSError)
	require.True(t, ok)
	assert.Equal(t, ErrTypeError, je.Kind)
}

func TestShift_MasksWith0x1F(t *testing.T) {
	v, err := BinaryLeftShift(Int32(1), Int32(33))
	require.NoError(t, err)
	assert.Equal(t, int32(2), v.Int32Val())
}
