// Package expr defines the arithmetic term and literal representation consumed
// by the projection core.
//
// The grammar is closed: every term is one of the variant structs below, and
// consumers dispatch with exhaustive type switches (an unknown variant is a
// programming error and panics). Terms are immutable once built; structural
// identity is provided by Key, so no pointer-keyed maps are needed.
package expr

import "math/big"

// Sort of a term.
type Sort uint8

const (
	SortBool Sort = iota
	SortInt
	SortReal
)

// Term is an arithmetic or boolean expression node.
type Term interface {
	term()
}

// CmpOp enumerates comparison operators.
type CmpOp uint8

const (
	OpLe CmpOp = iota
	OpLt
	OpGe
	OpGt
	OpEq
)

// Numeral is a rational constant. IsInt records the declared sort, not a
// property of the value: integer-sorted numerals always have denominator 1.
type Numeral struct {
	Val   *big.Rat
	IsInt bool
}

// Var is an uninterpreted constant.
type Var struct {
	Name  string
	IsInt bool
}

// Sum is an n-ary addition.
type Sum struct {
	Args []Term
}

// Diff is a binary subtraction A - B.
type Diff struct {
	A, B Term
}

// Minus is a unary negation.
type Minus struct {
	A Term
}

// Product is a binary multiplication.
type Product struct {
	A, B Term
}

// Modulo is A mod M. M is expected to fold to a positive integer numeral for
// the term to be interpreted; otherwise the whole node is treated as opaque.
type Modulo struct {
	A, M Term
}

// Cond is a conditional term: if If then Then else Else.
type Cond struct {
	If         Term
	Then, Else Term
}

// BoolVal is a boolean constant.
type BoolVal struct {
	Val bool
}

// Negation is a logical not.
type Negation struct {
	A Term
}

// Cmp is a binary comparison A op B.
type Cmp struct {
	Op   CmpOp
	A, B Term
}

// Distinct asserts pairwise disequality of its arguments.
type Distinct struct {
	Args []Term
}

func (*Numeral) term()  {}
func (*Var) term()      {}
func (*Sum) term()      {}
func (*Diff) term()     {}
func (*Minus) term()    {}
func (*Product) term()  {}
func (*Modulo) term()   {}
func (*Cond) term()     {}
func (*BoolVal) term()  {}
func (*Negation) term() {}
func (*Cmp) term()      {}
func (*Distinct) term() {}

// SortOf returns the sort of t. Arithmetic operators are Real as soon as one
// operand is Real, Int otherwise.
func SortOf(t Term) Sort {
	switch tt := t.(type) {
	case *Numeral:
		if tt.IsInt {
			return SortInt
		}
		return SortReal
	case *Var:
		if tt.IsInt {
			return SortInt
		}
		return SortReal
	case *Sum:
		return joinSorts(tt.Args...)
	case *Diff:
		return joinSorts(tt.A, tt.B)
	case *Minus:
		return SortOf(tt.A)
	case *Product:
		return joinSorts(tt.A, tt.B)
	case *Modulo:
		return SortInt
	case *Cond:
		return joinSorts(tt.Then, tt.Else)
	case *BoolVal, *Negation, *Cmp, *Distinct:
		return SortBool
	default:
		panic("expr: unknown term variant")
	}
}

func joinSorts(args ...Term) Sort {
	for _, a := range args {
		if SortOf(a) == SortReal {
			return SortReal
		}
	}
	return SortInt
}

// IsArith reports whether t has an arithmetic (Int or Real) sort.
func IsArith(t Term) bool {
	return SortOf(t) != SortBool
}

// IntVal returns an integer numeral.
func IntVal(v int64) *Numeral {
	return &Numeral{Val: new(big.Rat).SetInt64(v), IsInt: true}
}

// RatVal returns a numeral of the given sort; the value is copied.
func RatVal(r *big.Rat, isInt bool) *Numeral {
	return &Numeral{Val: new(big.Rat).Set(r), IsInt: isInt}
}

// IntConst returns an integer-sorted uninterpreted constant.
func IntConst(name string) *Var {
	return &Var{Name: name, IsInt: true}
}

// RealConst returns a real-sorted uninterpreted constant.
func RealConst(name string) *Var {
	return &Var{Name: name}
}

// Add builds an n-ary sum. A single argument is returned as is.
func Add(args ...Term) Term {
	if len(args) == 1 {
		return args[0]
	}
	return &Sum{Args: args}
}

// Sub builds a - b.
func Sub(a, b Term) Term { return &Diff{A: a, B: b} }

// Neg builds -a.
func Neg(a Term) Term { return &Minus{A: a} }

// Mul builds a * b.
func Mul(a, b Term) Term { return &Product{A: a, B: b} }

// Mod builds a mod m.
func Mod(a, m Term) Term { return &Modulo{A: a, M: m} }

// Ite builds the conditional term "if c then a else b".
func Ite(c, a, b Term) Term { return &Cond{If: c, Then: a, Else: b} }

// True returns the boolean constant true.
func True() Term { return &BoolVal{Val: true} }

// False returns the boolean constant false.
func False() Term { return &BoolVal{Val: false} }

// Not negates a boolean term, collapsing a double negation.
func Not(a Term) Term {
	if n, ok := a.(*Negation); ok {
		return n.A
	}
	return &Negation{A: a}
}

func Le(a, b Term) Term { return &Cmp{Op: OpLe, A: a, B: b} }
func Lt(a, b Term) Term { return &Cmp{Op: OpLt, A: a, B: b} }
func Ge(a, b Term) Term { return &Cmp{Op: OpGe, A: a, B: b} }
func Gt(a, b Term) Term { return &Cmp{Op: OpGt, A: a, B: b} }
func Eq(a, b Term) Term { return &Cmp{Op: OpEq, A: a, B: b} }
