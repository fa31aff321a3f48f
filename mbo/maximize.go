// Copyright 2020 ConsenSys AG
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package mbo

import "math/big"

type elimStep struct {
	x    int
	rows []Row // live rows mentioning x just before its elimination
}

// Maximize computes the supremum of the objective over the live rows.
//
// The optimum is found by introducing a fresh variable equal to the objective
// and eliminating every other variable from a scratch copy of the system; the
// surviving bounds on the fresh variable give the supremum. When the optimum
// is attained (no strict row binds it), variable values are moved onto an
// optimal point by back-substituting along the elimination trail, so Value
// afterwards reports an assignment realizing the returned value. When the
// result is unbounded or only approached, values are left untouched.
//
// Integer variables are relaxed to rationals during maximization; when a
// back-substitution interval of an integer variable contains an integer
// point, it is preferred.
func (o *Optimizer) Maximize() InfEps {
	if !o.hasObj {
		return Finite(new(big.Rat))
	}
	s := o.clone()
	objVal := s.exprValue(s.obj, &s.objConst)
	z := s.AddVar(objVal, false)
	e := s.obj.Clone()
	var zt Term
	zt.VID = z
	zt.Coeff.SetInt64(-1)
	e = append(e, zt)
	var mod big.Int
	s.addRow(e, &s.objConst, EQ, &mod)

	var trail []elimStep
	for x := 0; x < z; x++ {
		idxs := s.liveRowsWith(x)
		if len(idxs) == 0 {
			continue
		}
		snap := make([]Row, len(idxs))
		for i, idx := range idxs {
			snap[i] = s.rows[idx].clone()
		}
		trail = append(trail, elimStep{x: x, rows: snap})
		s.eliminate(x, true)
	}

	best, bestStrict, bounded := s.objectiveBound(z)
	if !bounded {
		o.log.Debug().Msg("objective unbounded")
		return Unbounded()
	}
	if bestStrict {
		o.log.Debug().Str("sup", best.RatString()).Msg("objective supremum not attained")
		return FiniteEps(best, -1)
	}

	s.vars[z].value.Set(best)
	for i := len(trail) - 1; i >= 0; i-- {
		s.chooseValue(trail[i].x, trail[i].rows)
	}
	for id := range o.vars {
		o.vars[id].value.Set(&s.vars[id].value)
	}
	o.log.Debug().Str("max", best.RatString()).Msg("objective maximized")
	return Finite(best)
}

// objectiveBound scans the fully projected system for the least upper bound
// on z. It returns the bound, whether the binding row is strict, and whether
// any upper bound exists.
func (s *Optimizer) objectiveBound(z int) (*big.Rat, bool, bool) {
	var best *big.Rat
	bestStrict := false
	for i := range s.rows {
		r := &s.rows[i]
		if !r.alive || r.Kind == ModEQ {
			continue
		}
		a := r.Expr.coeffOf(z)
		if a == nil {
			continue
		}
		bound := new(big.Rat).Quo(&r.Coeff, a)
		bound.Neg(bound)
		if r.Kind == EQ {
			return bound, false, true
		}
		if a.Sign() < 0 {
			continue // lower bound on z
		}
		strict := r.Kind == LT
		if best == nil || bound.Cmp(best) < 0 || (bound.Cmp(best) == 0 && strict) {
			best = bound
			bestStrict = strict
		}
	}
	return best, bestStrict, best != nil
}

// chooseValue assigns a value to x satisfying the snapshot rows, given that
// every other variable occurring in them already has its final value.
func (s *Optimizer) chooseValue(x int, rows []Row) {
	var lo, hi *big.Rat
	loStrict, hiStrict := false, false
	for i := range rows {
		r := &rows[i]
		b := r.Expr.coeffOf(x)
		rest := new(big.Rat).Set(&r.Coeff)
		var t big.Rat
		for j := range r.Expr {
			if r.Expr[j].VID == x {
				continue
			}
			t.Mul(&r.Expr[j].Coeff, &s.vars[r.Expr[j].VID].value)
			rest.Add(rest, &t)
		}
		bound := new(big.Rat).Quo(rest, b)
		bound.Neg(bound)
		switch r.Kind {
		case EQ:
			s.vars[x].value.Set(bound)
			return
		case ModEQ:
			// relaxed during maximization
			continue
		}
		strict := r.Kind == LT
		if b.Sign() > 0 { // upper bound
			if hi == nil || bound.Cmp(hi) < 0 || (bound.Cmp(hi) == 0 && strict) {
				hi, hiStrict = bound, strict
			}
		} else { // lower bound
			if lo == nil || bound.Cmp(lo) > 0 || (bound.Cmp(lo) == 0 && strict) {
				lo, loStrict = bound, strict
			}
		}
	}
	cur := &s.vars[x].value
	if inInterval(cur, lo, loStrict, hi, hiStrict) {
		return
	}
	s.vars[x].value.Set(pickInInterval(lo, loStrict, hi, hiStrict, s.vars[x].isInt))
}

func inInterval(v, lo *big.Rat, loStrict bool, hi *big.Rat, hiStrict bool) bool {
	if lo != nil {
		if c := v.Cmp(lo); c < 0 || (c == 0 && loStrict) {
			return false
		}
	}
	if hi != nil {
		if c := v.Cmp(hi); c > 0 || (c == 0 && hiStrict) {
			return false
		}
	}
	return true
}

// pickInInterval chooses a point of the (non-empty) interval, preferring the
// upper endpoint, then an integer point for integer variables.
func pickInInterval(lo *big.Rat, loStrict bool, hi *big.Rat, hiStrict bool, isInt bool) *big.Rat {
	var v *big.Rat
	switch {
	case hi != nil && !hiStrict:
		v = new(big.Rat).Set(hi)
	case lo != nil && !loStrict:
		v = new(big.Rat).Set(lo)
	case hi != nil && lo != nil:
		v = new(big.Rat).Add(lo, hi)
		v.Mul(v, big.NewRat(1, 2))
	case hi != nil:
		v = new(big.Rat).Sub(hi, big.NewRat(1, 1))
	case lo != nil:
		v = new(big.Rat).Add(lo, big.NewRat(1, 1))
	default:
		return new(big.Rat)
	}
	if isInt && !v.IsInt() {
		if p := integerPoint(lo, loStrict, hi, hiStrict); p != nil {
			return p
		}
	}
	return v
}

// integerPoint returns an integer of the interval, or nil if none fits.
func integerPoint(lo *big.Rat, loStrict bool, hi *big.Rat, hiStrict bool) *big.Rat {
	if hi != nil {
		f := ratFloor(hi)
		if hiStrict && f.Cmp(hi) == 0 {
			f.Sub(f, big.NewRat(1, 1))
		}
		if inInterval(f, lo, loStrict, hi, hiStrict) {
			return f
		}
		return nil
	}
	if lo != nil {
		c := ratCeil(lo)
		if loStrict && c.Cmp(lo) == 0 {
			c.Add(c, big.NewRat(1, 1))
		}
		if inInterval(c, lo, loStrict, hi, hiStrict) {
			return c
		}
	}
	return nil
}

func ratFloor(r *big.Rat) *big.Rat {
	q := new(big.Int).Div(r.Num(), r.Denom())
	return new(big.Rat).SetInt(q)
}

func ratCeil(r *big.Rat) *big.Rat {
	f := ratFloor(r)
	if f.Cmp(r) != 0 {
		f.Add(f, big.NewRat(1, 1))
	}
	return f
}
