package expr

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSorts(t *testing.T) {
	x := IntConst("x")
	y := RealConst("y")

	assert.Equal(t, SortInt, SortOf(x))
	assert.Equal(t, SortReal, SortOf(y))
	assert.Equal(t, SortInt, SortOf(Add(x, IntVal(2))))
	assert.Equal(t, SortReal, SortOf(Add(x, y)), "mixed sums are real")
	assert.Equal(t, SortReal, SortOf(Neg(y)))
	assert.Equal(t, SortInt, SortOf(Mod(x, IntVal(3))))
	assert.Equal(t, SortInt, SortOf(Ite(Le(x, IntVal(0)), x, IntVal(2))))
	assert.Equal(t, SortReal, SortOf(Ite(Le(x, IntVal(0)), x, y)), "a conditional joins both branch sorts")
	assert.Equal(t, SortReal, SortOf(Ite(Le(x, IntVal(0)), y, x)))
	assert.Equal(t, SortBool, SortOf(Le(x, y)))
	assert.Equal(t, SortBool, SortOf(&Distinct{Args: []Term{x, y}}))
	assert.True(t, IsArith(x))
	assert.False(t, IsArith(Eq(x, y)))
}

func TestKeyIdentity(t *testing.T) {
	x := IntConst("x")
	a := Le(Add(x, IntVal(1)), Mul(IntVal(2), x))
	b := Le(Add(IntConst("x"), IntVal(1)), Mul(IntVal(2), IntConst("x")))
	assert.Equal(t, Key(a), Key(b), "structurally equal terms share a key")

	c := Le(Add(x, IntVal(1)), Mul(IntVal(3), x))
	assert.NotEqual(t, Key(a), Key(c))

	// int and real numerals of the same value are distinct terms
	assert.NotEqual(t, Key(IntVal(1)), Key(RatVal(big.NewRat(1, 1), false)))
}

func TestNotCollapsesDoubleNegation(t *testing.T) {
	l := Le(IntConst("x"), IntVal(0))
	assert.Equal(t, Key(l), Key(Not(Not(l))))
}

func TestOccurs(t *testing.T) {
	x := IntConst("x")
	y := IntConst("y")
	lit := Le(Add(Mul(IntVal(2), x), IntVal(1)), IntVal(10))

	assert.True(t, Occurs(x, lit))
	assert.False(t, Occurs(y, lit))
	assert.True(t, Occurs(lit, lit))
}

func TestWalkPreOrder(t *testing.T) {
	x := IntConst("x")
	sum := Add(x, IntVal(1), Neg(x))
	var keys []string
	Walk(sum, func(s Term) bool {
		keys = append(keys, Key(s))
		return true
	})
	assert.Equal(t, Key(sum), keys[0])
	assert.Len(t, keys, 5)
}
