// Package values implements the runtime value representation: the tagged
// Value cell (spec "Value") and the heap object kinds it can point to
// (spec "PointerValue"), together with the numeric/primitive coercion and
// arithmetic rules ("Numeric fast paths", "Typeof").
package values

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Type tags the payload a Value carries.
type Type byte

const (
	TypeUndefined Type = iota
	TypeNull
	TypeBool
	TypeInt32  // fast-path 32-bit integer
	TypeDouble // IEEE-754 double, used once an int32 computation overflows
	TypeEmpty  // uninitialized-slot sentinel; never observable from user code
	TypePointer
)

// Value is the tagged cell every register and property slot holds. Only one
// of i32/f64/b/Ptr is meaningful, selected by Type.
type Value struct {
	Type Type
	i32  int32
	f64  float64
	b    bool
	Ptr  PointerValue
}

// Singletons for the stateless tags, so callers compare against a named
// value instead of constructing zero-value structs by hand.
var (
	Undefined = Value{Type: TypeUndefined}
	Null      = Value{Type: TypeNull}
	Empty     = Value{Type: TypeEmpty}
	True      = Value{Type: TypeBool, b: true}
	False     = Value{Type: TypeBool, b: false}
)

func Bool(b bool) Value {
	if b {
		return True
	}
	return False
}

func Int32(i int32) Value { return Value{Type: TypeInt32, i32: i} }

func Double(f float64) Value { return Value{Type: TypeDouble, f64: f} }

// Number picks the narrowest representation: an int32 when f round-trips
// exactly, a double otherwise. Arithmetic slow paths funnel their result
// through this so a computation that happens to land back in int32 range
// narrows again, instead of every call site re-checking the range by hand.
func Number(f float64) Value {
	if i := int32(f); float64(i) == f && !(f == 0 && math.Signbit(f)) {
		return Int32(i)
	}
	return Double(f)
}

func FromPointer(p PointerValue) Value {
	if p == nil {
		return Null
	}
	return Value{Type: TypePointer, Ptr: p}
}

func (v Value) IsUndefined() bool { return v.Type == TypeUndefined }
func (v Value) IsNull() bool      { return v.Type == TypeNull }
func (v Value) IsNullish() bool   { return v.Type == TypeUndefined || v.Type == TypeNull }
func (v Value) IsEmpty() bool     { return v.Type == TypeEmpty }
func (v Value) IsBool() bool      { return v.Type == TypeBool }
func (v Value) IsInt32() bool     { return v.Type == TypeInt32 }
func (v Value) IsDouble() bool    { return v.Type == TypeDouble }
func (v Value) IsNumber() bool    { return v.Type == TypeInt32 || v.Type == TypeDouble }
func (v Value) IsPointer() bool   { return v.Type == TypePointer }

func (v Value) pointerKind() Kind {
	if v.Type != TypePointer || v.Ptr == nil {
		return 0
	}
	return v.Ptr.Kind()
}

func (v Value) IsString() bool { return v.pointerKind() == KindString }
func (v Value) IsSymbol() bool { return v.pointerKind() == KindSymbol }
func (v Value) IsBigInt() bool { return v.pointerKind() == KindBigInt }
func (v Value) IsArray() bool  { return v.pointerKind() == KindArray }
func (v Value) IsCallable() bool {
	return v.pointerKind() == KindFunction
}

// IsObjectLike reports whether v is anything typeof reports as "object" or
// "function" — i.e. a pointer value that is not a boxed Symbol or BigInt.
func (v Value) IsObjectLike() bool {
	k := v.pointerKind()
	return k != 0 && k != KindSymbol && k != KindBigInt
}

// AsString panics if v is not a string; callers are expected to have
// checked IsString first.
func (v Value) AsString() string { return v.Ptr.(*StringValue).S }
func (v Value) AsObject() *Object { return v.Ptr.(*Object) }
func (v Value) AsArray() *Array   { return v.Ptr.(*Array) }
func (v Value) AsSymbol() *Symbol { return v.Ptr.(*Symbol) }
func (v Value) AsBigInt() *BigIntValue {
	return v.Ptr.(*BigIntValue)
}

// BaseObject returns the common *Object embedded in any object-like
// PointerValue (plain Object, Array, FunctionObject, ErrorObject, ...), or
// nil if v does not carry one. Unlike AsObject, which only handles the
// plain-Object case, this walks the variants that embed Object by value.
func (v Value) BaseObject() *Object {
	switch p := v.Ptr.(type) {
	case *Object:
		return p
	case *Array:
		return &p.Object
	case *FunctionObject:
		return &p.Object
	case *ErrorObject:
		return &p.Object
	case *EnumerateObject:
		return &p.Object
	case *IteratorObject:
		return &p.Object
	case *ModuleNamespaceObject:
		return &p.Object
	case *RegExpObject:
		return &p.Object
	default:
		return nil
	}
}

func (v Value) BoolVal() bool    { return v.b }
func (v Value) Int32Val() int32  { return v.i32 }
func (v Value) Float64Val() float64 {
	if v.Type == TypeInt32 {
		return float64(v.i32)
	}
	return v.f64
}

// TypeName implements the `typeof` operator.
func (v Value) TypeName(htmlddaAsUndefined bool) string {
	switch v.Type {
	case TypeUndefined, TypeEmpty:
		return "undefined"
	case TypeNull:
		return "object"
	case TypeBool:
		return "boolean"
	case TypeInt32, TypeDouble:
		return "number"
	case TypePointer:
		switch v.Ptr.Kind() {
		case KindString:
			return "string"
		case KindSymbol:
			return "symbol"
		case KindBigInt:
			return "bigint"
		case KindFunction:
			return "function"
		case KindObject:
			if htmlddaAsUndefined {
				if o, ok := v.Ptr.(*Object); ok && o.IsHTMLDDA {
					return "undefined"
				}
			}
			return "object"
		default:
			return "object"
		}
	}
	return "undefined"
}

// ToBoolean implements the ToBoolean abstract operation. Document.all-flagged
// objects (the Annex B HTMLDDA exotic behavior) coerce to false like
// undefined; every other object is truthy regardless of contents.
func (v Value) ToBoolean() bool {
	switch v.Type {
	case TypeUndefined, TypeNull, TypeEmpty:
		return false
	case TypeBool:
		return v.b
	case TypeInt32:
		return v.i32 != 0
	case TypeDouble:
		return v.f64 != 0 && !math.IsNaN(v.f64)
	case TypePointer:
		switch v.pointerKind() {
		case KindString:
			return v.AsString() != ""
		case KindBigInt:
			return v.AsBigInt().V.Sign() != 0
		default:
			if obj := v.BaseObject(); obj != nil {
				return !obj.IsHTMLDDA
			}
			return true
		}
	}
	return false
}

func (v Value) String() string {
	switch v.Type {
	case TypeUndefined:
		return "undefined"
	case TypeNull:
		return "null"
	case TypeEmpty:
		return "<empty>"
	case TypeBool:
		if v.b {
			return "true"
		}
		return "false"
	case TypeInt32:
		return fmt.Sprintf("%d", v.i32)
	case TypeDouble:
		return formatDouble(v.f64)
	case TypePointer:
		if v.Ptr == nil {
			return "null"
		}
		return v.Ptr.String()
	}
	return "?"
}

// formatDouble renders f the way ECMAScript's Number::toString does:
// plain decimal notation except for magnitudes so large or small that
// decimal notation would be unreasonably long, which Go's general '%g'
// verb switches to scientific notation for far sooner than the spec does
// (around 1e+06 rather than 1e21).
func formatDouble(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}

	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		return normalizeExponent(s)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// normalizeExponent reshapes Go's "1e+09"/"1e-07" exponent form into the
// unpadded "1e+9"/"1e-7" ECMAScript uses.
func normalizeExponent(s string) string {
	idx := strings.IndexAny(s, "eE")
	if idx < 0 {
		return s
	}
	mantissa, exp := s[:idx], s[idx+1:]
	sign := "+"
	if len(exp) > 0 && (exp[0] == '+' || exp[0] == '-') {
		if exp[0] == '-' {
			sign = "-"
		}
		exp = exp[1:]
	}
	exp = strings.TrimLeft(exp, "0")
	if exp == "" {
		exp = "0"
	}
	return mantissa + "e" + sign + exp
}
