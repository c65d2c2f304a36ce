package values

import (
	"math"
	"math/big"
)

// StrictEquals implements strict equality: SameValue-style except
// +0 ≡ -0 (strict equality treats them equal) and NaN ≢ NaN.
func StrictEquals(a, b Value) bool {
	switch a.Type {
	case TypeUndefined, TypeEmpty:
		return b.Type == TypeUndefined || b.Type == TypeEmpty
	case TypeNull:
		return b.Type == TypeNull
	case TypeBool:
		return b.Type == TypeBool && a.b == b.b
	case TypeInt32, TypeDouble:
		if !b.IsNumber() {
			return false
		}
		x, y := a.Float64Val(), b.Float64Val()
		if math.IsNaN(x) || math.IsNaN(y) {
			return false
		}
		return x == y // IEEE == already treats +0 == -0
	case TypePointer:
		if b.Type != TypePointer || a.Ptr == nil || b.Ptr == nil {
			return a.Type == b.Type && a.Ptr == b.Ptr
		}
		if a.Ptr.Kind() != b.Ptr.Kind() {
			return false
		}
		switch a.Ptr.Kind() {
		case KindString:
			return a.Ptr.(*StringValue).S == b.Ptr.(*StringValue).S
		case KindBigInt:
			return a.Ptr.(*BigIntValue).V.Cmp(b.Ptr.(*BigIntValue).V) == 0
		default:
			return a.Ptr == b.Ptr // Symbol/Object/Array/Function: reference identity
		}
	}
	return false
}

// AbstractEquals implements the standard `==` coercion ladder.
func AbstractEquals(a, b Value) bool {
	if sameTypeClass(a, b) {
		return StrictEquals(a, b)
	}
	if a.IsNullish() && b.IsNullish() {
		return true
	}
	if a.IsNullish() || b.IsNullish() {
		return false
	}
	switch {
	case a.IsNumber() && b.IsString():
		return AbstractEquals(a, Number(parseFloatOrNaN(b.AsString())))
	case a.IsString() && b.IsNumber():
		return AbstractEquals(Number(parseFloatOrNaN(a.AsString())), b)
	case a.IsBigInt() && b.IsString():
		bi, ok := new(big.Int).SetString(b.AsString(), 10)
		return ok && a.AsBigInt().V.Cmp(bi) == 0
	case a.IsString() && b.IsBigInt():
		return AbstractEquals(b, a)
	case a.IsBool():
		return AbstractEquals(Number(boolToFloat(a.b)), b)
	case b.IsBool():
		return AbstractEquals(a, Number(boolToFloat(b.b)))
	case (a.IsNumber() || a.IsBigInt() || a.IsString()) && b.IsObjectLike():
		return AbstractEquals(a, ToPrimitive(b))
	case a.IsObjectLike() && (b.IsNumber() || b.IsBigInt() || b.IsString()):
		return AbstractEquals(ToPrimitive(a), b)
	case a.IsBigInt() && b.IsNumber():
		return bigIntNumberEqual(a.AsBigInt(), b)
	case a.IsNumber() && b.IsBigInt():
		return bigIntNumberEqual(b.AsBigInt(), a)
	}
	return false
}

func bigIntNumberEqual(bi *BigIntValue, num Value) bool {
	f := num.Float64Val()
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return false
	}
	bf := new(big.Float).SetInt(bi.V)
	other := new(big.Float).SetFloat64(f)
	return bf.Cmp(other) == 0
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func sameTypeClass(a, b Value) bool {
	return typeClass(a) == typeClass(b)
}

func typeClass(v Value) byte {
	switch v.Type {
	case TypeUndefined, TypeEmpty:
		return 'u'
	case TypeNull:
		return 'n'
	case TypeBool:
		return 'b'
	case TypeInt32, TypeDouble:
		return '#'
	case TypePointer:
		switch v.Ptr.Kind() {
		case KindString:
			return 's'
		case KindSymbol:
			return 'y'
		case KindBigInt:
			return 'i'
		default:
			return 'o'
		}
	}
	return '?'
}

// LessThan implements the abstract-less-than relation used by <, <=, >, >=
// (callers flip operands/negate the result for the latter three). Returns
// (result, valid) where valid=false means the comparison was undefined
// because NaN participated — every relational operator maps that to false.
func LessThan(a, b Value) (bool, bool) {
	pa, pb := ToPrimitive(a), ToPrimitive(b)
	if pa.IsString() && pb.IsString() {
		return pa.AsString() < pb.AsString(), true
	}
	na, aBig := ToNumeric(pa)
	nb, bBig := ToNumeric(pb)
	switch {
	case aBig && bBig:
		return na.AsBigInt().V.Cmp(nb.AsBigInt().V) < 0, true
	case aBig && !bBig:
		return bigIntLessThanNumber(na.AsBigInt(), nb.Float64Val())
	case !aBig && bBig:
		gt, ok := bigIntLessThanNumber(nb.AsBigInt(), na.Float64Val())
		if !ok {
			return false, false
		}
		eq := bigIntNumberEqual(nb.AsBigInt(), na)
		return !gt && !eq, true
	default:
		x, y := na.Float64Val(), nb.Float64Val()
		if math.IsNaN(x) || math.IsNaN(y) {
			return false, false
		}
		return x < y, true
	}
}

// bigIntLessThanNumber reports whether bi < f, using the BigIntData
// (fromDouble) style comparison the spec calls for: NaN makes the
// comparison invalid, ±Infinity compares directly against any finite
// BigInt.
func bigIntLessThanNumber(bi *BigIntValue, f float64) (bool, bool) {
	if math.IsNaN(f) {
		return false, false
	}
	if math.IsInf(f, 1) {
		return true, true
	}
	if math.IsInf(f, -1) {
		return false, true
	}
	bf := new(big.Float).SetInt(bi.V)
	return bf.Cmp(big.NewFloat(f)) < 0, true
}
