package values

import "math/big"

// BigIntValue boxes an arbitrary-precision integer. ECMAScript BigInt
// never implicitly mixes with Number; every arithmetic entry point in
// arithmetic.go enforces that before ever reaching here.
type BigIntValue struct {
	V *big.Int
}

func NewBigInt(v *big.Int) Value {
	return FromPointer(&BigIntValue{V: new(big.Int).Set(v)})
}

func NewBigIntFromInt64(i int64) Value {
	return FromPointer(&BigIntValue{V: big.NewInt(i)})
}

func (b *BigIntValue) Kind() Kind     { return KindBigInt }
func (b *BigIntValue) String() string { return b.V.String() + "n" }
