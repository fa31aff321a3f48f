package qelim

import (
	"math/big"

	"github.com/consensys/qelim/debug"
	"github.com/consensys/qelim/expr"
	"github.com/consensys/qelim/mbo"
)

// reconstruct turns a surviving engine row back into a literal, or nil for
// rows that carry no residual information.
func (p *projector) reconstruct(r mbo.Row) expr.Term {
	if len(r.Expr) == 0 {
		return nil
	}
	var lit expr.Term
	if len(r.Expr) == 1 && r.Expr[0].Coeff.Sign() < 0 && r.Kind != mbo.ModEQ {
		lit = p.unitBound(r)
	} else {
		lit = p.rowLiteral(r)
	}
	if debug.Debug {
		v, ok := p.eval.Holds(lit)
		debug.Assert(ok && v, "qelim: reconstructed literal not satisfied by model")
	}
	return lit
}

// unitBound rebuilds a single-atom row with negative coefficient as a lower
// bound on the (scaled) atom: -c*x + k (rel) 0 becomes c*x (mirror rel) k.
func (p *projector) unitBound(r mbo.Row) expr.Term {
	v := &r.Expr[0]
	t := p.atoms.byID[v.VID]
	isInt := expr.SortOf(t) == expr.SortInt
	minusOne := big.NewRat(-1, 1)
	if v.Coeff.Cmp(minusOne) != 0 {
		var c big.Rat
		c.Neg(&v.Coeff)
		t = expr.Mul(expr.RatVal(&c, isInt && c.IsInt()), t)
	}
	s := expr.RatVal(&r.Coeff, isInt && r.Coeff.IsInt())
	switch r.Kind {
	case mbo.LT:
		return expr.Gt(t, s)
	case mbo.LE:
		return expr.Ge(t, s)
	case mbo.EQ:
		return expr.Eq(t, s)
	}
	panic("qelim: unexpected row kind")
}

// rowLiteral rebuilds a general row as "sum of scaled atoms (rel) -constant";
// divisibility rows become "(sum - (-constant)) mod m = 0".
func (p *projector) rowLiteral(r mbo.Row) expr.Term {
	one := big.NewRat(1, 1)
	ts := make([]expr.Term, 0, len(r.Expr))
	isInt := false
	for i := range r.Expr {
		v := &r.Expr[i]
		t := p.atoms.byID[v.VID]
		isInt = expr.SortOf(t) == expr.SortInt
		if v.Coeff.Cmp(one) != 0 {
			// equality pivots can leave fractional coefficients on integer
			// atoms; the numeral sort must track the value, not the atom
			t = expr.Mul(expr.RatVal(&v.Coeff, isInt && v.Coeff.IsInt()), t)
		}
		ts = append(ts, t)
	}
	var negC big.Rat
	negC.Neg(&r.Coeff)
	s := expr.RatVal(&negC, isInt && negC.IsInt())
	sum := expr.Add(ts...)
	switch r.Kind {
	case mbo.LT:
		return expr.Lt(sum, s)
	case mbo.LE:
		return expr.Le(sum, s)
	case mbo.EQ:
		return expr.Eq(sum, s)
	case mbo.ModEQ:
		if r.Coeff.Sign() != 0 {
			sum = expr.Sub(sum, s)
		}
		m := &expr.Numeral{Val: new(big.Rat).SetInt(&r.Mod), IsInt: true}
		return expr.Eq(expr.Mod(sum, m), expr.IntVal(0))
	}
	panic("qelim: unexpected row kind")
}
