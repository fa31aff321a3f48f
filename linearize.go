package qelim

import (
	"math/big"
	"slices"

	"github.com/rs/zerolog"

	"github.com/consensys/qelim/debug"
	"github.com/consensys/qelim/expr"
	"github.com/consensys/qelim/logger"
	"github.com/consensys/qelim/mbo"
	"github.com/consensys/qelim/model"
)

// projector holds the per-call state of one elimination or maximization:
// evaluator, engine, and atom registry. It is discarded on return.
type projector struct {
	eval  *model.Evaluator
	opt   *mbo.Optimizer
	atoms atomRegistry
	log   zerolog.Logger
}

func newProjector(mdl *model.Model) *projector {
	return &projector{
		eval:  model.NewEvaluator(mdl),
		opt:   mbo.New(),
		atoms: newAtomRegistry(),
		log:   logger.Logger().With().Str("component", "qelim").Logger(),
	}
}

// linearizeLit extracts a linear constraint from lit into the engine. It
// returns false when lit does not fit the linear fragment, leaving it for the
// residue. Side conditions (conditional guards) are appended to fmls.
//
// Precondition: the model satisfies lit.
func (p *projector) linearizeLit(lit expr.Term, fmls *[]expr.Term) bool {
	if debug.Debug {
		v, ok := p.eval.Holds(lit)
		debug.Assert(ok && v, "qelim: literal not satisfied by model")
	}
	mul := big.NewRat(1, 1)
	body := lit
	isNot := false
	if n, ok := body.(*expr.Negation); ok {
		body = n.A
		isNot = true
		mul.Neg(mul)
	}

	ts := newCoeffMap()
	c := new(big.Rat)
	var kind mbo.Kind

	switch l := body.(type) {
	case *expr.Cmp:
		e1, e2 := l.A, l.B
		switch l.Op {
		case expr.OpLe, expr.OpGe:
			if l.Op == expr.OpGe {
				e1, e2 = e2, e1
			}
			kind = mbo.LE
			if isNot {
				kind = mbo.LT
			}
		case expr.OpLt, expr.OpGt:
			if l.Op == expr.OpGt {
				e1, e2 = e2, e1
			}
			kind = mbo.LT
			if isNot {
				kind = mbo.LE
			}
		case expr.OpEq:
			if !expr.IsArith(l.A) {
				return false
			}
			if !isNot {
				kind = mbo.EQ
			} else {
				// disequality: the model tells the two sides apart,
				// orient as smaller < larger
				r1 := p.mustValue(e1)
				r2 := p.mustValue(e2)
				debug.Assert(r1.Cmp(r2) != 0, "qelim: disequality with equal model values")
				if r1.Cmp(r2) < 0 {
					e1, e2 = e2, e1
				}
				kind = mbo.LT
			}
		}
		p.linearizeTerm(mul, e1, c, fmls, ts)
		p.linearizeTerm(new(big.Rat).Neg(mul), e2, c, fmls, ts)

	case *expr.Distinct:
		if len(l.Args) == 0 || !expr.IsArith(l.Args[0]) {
			return false
		}
		if !isNot {
			return p.linearizeDistinct(l, fmls)
		}
		// negated distinct: some pair of arguments collides under the model,
		// pin the first such pair with an equality
		seen := make(map[string]expr.Term, len(l.Args))
		for _, arg := range l.Args {
			v := p.mustValue(arg)
			prev, ok := seen[v.RatString()]
			if !ok {
				seen[v.RatString()] = arg
				continue
			}
			kind = mbo.EQ
			p.linearizeTerm(mul, arg, c, fmls, ts)
			p.linearizeTerm(new(big.Rat).Neg(mul), prev, c, fmls, ts)
			p.opt.AddConstraint(p.extractCoefficients(ts), c, kind)
			return true
		}
		panic("qelim: negated distinct without a model-level collision")

	default:
		p.log.Debug().Str("lit", expr.Key(lit)).Msg("skipping literal")
		return false
	}

	p.opt.AddConstraint(p.extractCoefficients(ts), c, kind)
	return true
}

// linearizeDistinct orders the arguments by model value and emits a strict
// chain between adjacent ones.
func (p *projector) linearizeDistinct(l *expr.Distinct, fmls *[]expr.Term) bool {
	type valued struct {
		t expr.Term
		v *big.Rat
	}
	nums := make([]valued, len(l.Args))
	for i, arg := range l.Args {
		nums[i] = valued{t: arg, v: p.mustValue(arg)}
	}
	slices.SortStableFunc(nums, func(a, b valued) int { return a.v.Cmp(b.v) })
	for i := 0; i+1 < len(nums); i++ {
		debug.Assert(nums[i].v.Cmp(nums[i+1].v) < 0, "qelim: distinct with equal model values")
		if !p.linearizeLit(expr.Lt(nums[i].t, nums[i+1].t), fmls) {
			return false
		}
	}
	return true
}

// linearizeTerm folds mul*t into the coefficient map and constant. Model
// choices made along the way (conditional guards) are appended to fmls;
// modulus terms additionally submit a divisibility constraint.
func (p *projector) linearizeTerm(mul *big.Rat, t expr.Term, c *big.Rat, fmls *[]expr.Term, ts *coeffMap) {
	switch tt := t.(type) {
	case *expr.Product:
		if k, ok := numeralValue(tt.A); ok {
			p.linearizeTerm(k.Mul(k, mul), tt.B, c, fmls, ts)
			return
		}
		if k, ok := numeralValue(tt.B); ok {
			p.linearizeTerm(k.Mul(k, mul), tt.A, c, fmls, ts)
			return
		}
		// non-linear product, treat as atom
		ts.add(t, mul)
	case *expr.Sum:
		for _, a := range tt.Args {
			p.linearizeTerm(mul, a, c, fmls, ts)
		}
	case *expr.Diff:
		p.linearizeTerm(mul, tt.A, c, fmls, ts)
		p.linearizeTerm(new(big.Rat).Neg(mul), tt.B, c, fmls, ts)
	case *expr.Minus:
		p.linearizeTerm(new(big.Rat).Neg(mul), tt.A, c, fmls, ts)
	case *expr.Numeral:
		var v big.Rat
		v.Mul(mul, tt.Val)
		c.Add(c, &v)
	case *expr.Cond:
		val, ok := p.eval.Holds(tt.If)
		if !ok {
			ts.add(t, mul)
			return
		}
		if val {
			*fmls = append(*fmls, tt.If)
			p.linearizeTerm(mul, tt.Then, c, fmls, ts)
		} else {
			*fmls = append(*fmls, expr.Not(tt.If))
			p.linearizeTerm(mul, tt.Else, c, fmls, ts)
		}
	case *expr.Modulo:
		if p.linearizeMod(mul, tt, c, fmls) {
			return
		}
		ts.add(t, mul)
	default:
		ts.add(t, mul)
	}
}

// linearizeMod treats mul*(a mod k) as mul*r where r is the model value of
// the whole term, and separately submits a ≡ r (mod k) to the engine.
func (p *projector) linearizeMod(mul *big.Rat, tt *expr.Modulo, c *big.Rat, fmls *[]expr.Term) bool {
	k, ok := numeralValue(tt.M)
	if !ok || !k.IsInt() || k.Sign() <= 0 {
		return false
	}
	r, ok := p.eval.Value(tt)
	if !ok {
		return false
	}
	var v big.Rat
	v.Mul(mul, r)
	c.Add(c, &v)
	c0 := new(big.Rat).Neg(r)
	ts0 := newCoeffMap()
	p.linearizeTerm(big.NewRat(1, 1), tt.A, c0, fmls, ts0)
	p.opt.AddDivides(p.extractCoefficients(ts0), c0, k.Num())
	return true
}

// extractCoefficients turns the accumulated coefficient map into an engine
// row, registering unseen atoms. Model completion is enabled first: every
// atom must have some value.
func (p *projector) extractCoefficients(ts *coeffMap) mbo.LinearExpression {
	p.eval.SetCompletion(true)
	var e mbo.LinearExpression
	for _, t := range ts.order {
		id, ok := p.atoms.lookup(t)
		if !ok {
			id = p.registerAtom(t)
		}
		v := ts.coeff[expr.Key(t)]
		if v.Sign() == 0 {
			p.log.Debug().Str("atom", expr.Key(t)).Msg("atom has coefficient 0")
			continue
		}
		var mt mbo.Term
		mt.VID = id
		mt.Coeff.Set(v)
		e = append(e, mt)
	}
	return e
}

// registerAtom adds t as an engine variable valued from the model (zero when
// the model leaves it unevaluated and completion is off).
func (p *projector) registerAtom(t expr.Term) int {
	v, ok := p.eval.Value(t)
	if !ok {
		v = new(big.Rat)
	}
	id := p.opt.AddVar(v, expr.SortOf(t) == expr.SortInt)
	p.atoms.record(t, id)
	p.log.Debug().Str("atom", expr.Key(t)).Int("id", id).Msg("registered atom")
	return id
}

// mustValue evaluates a term whose value the model is required to define.
func (p *projector) mustValue(t expr.Term) *big.Rat {
	v, ok := p.eval.Value(t)
	if !ok {
		panic("qelim: term not evaluable under model")
	}
	return v
}

// numeralValue folds compile-time numeral terms: numerals, negations,
// products, sums and differences of numerals.
func numeralValue(t expr.Term) (*big.Rat, bool) {
	switch tt := t.(type) {
	case *expr.Numeral:
		return new(big.Rat).Set(tt.Val), true
	case *expr.Minus:
		if v, ok := numeralValue(tt.A); ok {
			return v.Neg(v), true
		}
	case *expr.Product:
		a, ok := numeralValue(tt.A)
		if !ok {
			return nil, false
		}
		b, ok := numeralValue(tt.B)
		if !ok {
			return nil, false
		}
		return a.Mul(a, b), true
	case *expr.Sum:
		acc := new(big.Rat)
		for _, arg := range tt.Args {
			v, ok := numeralValue(arg)
			if !ok {
				return nil, false
			}
			acc.Add(acc, v)
		}
		return acc, true
	case *expr.Diff:
		a, ok := numeralValue(tt.A)
		if !ok {
			return nil, false
		}
		b, ok := numeralValue(tt.B)
		if !ok {
			return nil, false
		}
		return a.Sub(a, b), true
	}
	return nil, false
}
