package qelim

import (
	"math/big"

	"github.com/consensys/qelim/debug"
	"github.com/consensys/qelim/expr"
	"github.com/consensys/qelim/mbo"
	"github.com/consensys/qelim/model"
)

// Maximize computes the supremum of objective under lits, relative to a model
// satisfying them. The objective must be real-sorted.
//
// As an explicit side effect, atoms that are uninterpreted constants receive
// their optimized values in mdl. The returned boundGE and boundGT are
// predicates on the objective usable to force equal-or-better and strictly
// better values on re-maximization: when the supremum is not attained (or the
// objective is unbounded) both anchor at the model's current evaluation of
// the objective rather than the unreached supremum.
func Maximize(lits []expr.Term, mdl *model.Model, objective expr.Term) (mbo.InfEps, expr.Term, expr.Term) {
	debug.Assert(expr.SortOf(objective) == expr.SortReal, "qelim: objective must be real")
	p := newProjector(mdl)
	fmls := append([]expr.Term(nil), lits...)

	ts := newCoeffMap()
	c := new(big.Rat)
	p.linearizeTerm(big.NewRat(1, 1), objective, c, &fmls, ts)
	p.opt.SetObjective(p.extractCoefficients(ts), c)

	// best effort: literals outside the linear fragment are simply not
	// constraints, which can only raise the computed bound
	for i := 0; i < len(fmls); i++ {
		p.linearizeLit(fmls[i], &fmls)
	}

	value := p.opt.Maximize()

	// write optimized values back; compound atoms have no model slot
	for id, t := range p.atoms.byID {
		if t == nil {
			continue
		}
		if v, ok := t.(*expr.Var); ok {
			mdl.Assign(v.Name, p.opt.Value(id))
		} else {
			p.log.Debug().Str("atom", expr.Key(t)).Msg("omitting model update for compound atom")
		}
	}

	tval := p.mustValue(objective)
	val := expr.RatVal(value.Rational(), false)
	var ge, gt expr.Term
	switch {
	case !value.IsFinite():
		ge = expr.Ge(objective, expr.RatVal(tval, false))
		gt = expr.False()
	case value.Eps() < 0:
		// the supremum is not attained, anchor both bounds at the value the
		// model actually reaches
		ge = expr.Ge(objective, expr.RatVal(tval, false))
		gt = expr.Gt(objective, expr.RatVal(tval, false))
	default:
		ge = expr.Ge(objective, val)
		gt = expr.Gt(objective, val)
	}
	return value, ge, gt
}
