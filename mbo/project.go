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

// Project eliminates the given variables from the live rows, in order. The
// surviving rows are implied by the original system and still hold under the
// variable values the caller supplied.
func (o *Optimizer) Project(ids []int) {
	for _, id := range ids {
		o.eliminate(id, false)
	}
}

// eliminate removes variable x from every live row.
//
// An equality row containing x, when present, is used as pivot and substituted
// through the other rows. Otherwise bounds on x are resolved away; in
// model-based mode (full=false) only the model-tightest bound of the sparser
// side is resolved against the opposite side, in full mode every lower/upper
// pair is resolved (Maximize needs the projected system to be exact so that
// back-substitution cannot run into an empty interval).
func (o *Optimizer) eliminate(x int, full bool) {
	idxs := o.liveRowsWith(x)
	if len(idxs) == 0 {
		return
	}

	pivot := -1
	var pivotAbs big.Rat
	for _, idx := range idxs {
		if o.rows[idx].Kind != EQ {
			continue
		}
		var abs big.Rat
		abs.Abs(o.rows[idx].Expr.coeffOf(x))
		if pivot < 0 || abs.Cmp(&pivotAbs) < 0 {
			pivot = idx
			pivotAbs.Set(&abs)
		}
	}
	if pivot >= 0 {
		o.substitutePivot(x, pivot, idxs)
		return
	}

	var lowers, uppers []int
	for _, idx := range idxs {
		r := &o.rows[idx]
		if r.Kind == ModEQ {
			// no definition for x: the congruence cannot be rewritten,
			// dropping it only weakens the system
			o.log.Debug().Int("var", x).Msg("dropping divisibility row of eliminated variable")
			o.kill(idx)
			continue
		}
		if r.Expr.coeffOf(x).Sign() > 0 {
			uppers = append(uppers, idx)
		} else {
			lowers = append(lowers, idx)
		}
	}
	if len(lowers) == 0 || len(uppers) == 0 {
		// x is unbounded on one side, its rows carry no joint information
		for _, idx := range append(lowers, uppers...) {
			o.kill(idx)
		}
		return
	}

	if full {
		for _, l := range lowers {
			for _, u := range uppers {
				o.addResolvent(x, l, u)
			}
		}
	} else {
		side, opp := lowers, uppers
		if len(uppers) < len(lowers) {
			side, opp = uppers, lowers
		}
		chosen := o.tightestBound(x, side)
		for _, idx := range opp {
			if o.rows[chosen].Expr.coeffOf(x).Sign() < 0 {
				o.addResolvent(x, chosen, idx)
			} else {
				o.addResolvent(x, idx, chosen)
			}
		}
	}
	for _, idx := range lowers {
		o.kill(idx)
	}
	for _, idx := range uppers {
		o.kill(idx)
	}
}

// substitutePivot rewrites every row of idxs through the equality row pivot
// and retires the pivot. For an integer variable with a non-unit integral
// pivot the induced divisibility constraint is added.
func (o *Optimizer) substitutePivot(x, pivot int, idxs []int) {
	a := new(big.Rat).Set(o.rows[pivot].Expr.coeffOf(x))
	prow := o.rows[pivot].clone()
	for _, idx := range idxs {
		if idx == pivot {
			continue
		}
		r := &o.rows[idx]
		// r + k*pivot with k = -b/a: exact, the pivot row equals zero
		k := new(big.Rat).Quo(r.Expr.coeffOf(x), a)
		k.Neg(k)
		e := r.Expr.Clone()
		for i := range prow.Expr {
			var t Term
			t.VID = prow.Expr[i].VID
			t.Coeff.Mul(k, &prow.Expr[i].Coeff)
			e = append(e, t)
		}
		c := new(big.Rat).Mul(k, &prow.Coeff)
		c.Add(c, &r.Coeff)
		o.kill(idx)
		o.addRow(e, c, r.Kind, &r.Mod)
	}
	o.kill(pivot)

	var absA big.Rat
	absA.Abs(a)
	one := big.NewRat(1, 1)
	if o.vars[x].isInt && absA.Cmp(one) != 0 {
		// a*x + rest = 0 with integral coefficients forces |a| to divide rest
		rest := make(LinearExpression, 0, len(prow.Expr)-1)
		for i := range prow.Expr {
			if prow.Expr[i].VID != x {
				rest = append(rest, prow.Expr[i])
			}
		}
		if isIntegral(rest, &prow.Coeff) && absA.IsInt() {
			o.AddDivides(rest.Clone(), &prow.Coeff, absA.Num())
		}
	}
}

// tightestBound returns the row of side whose bound on x is tightest under
// the current variable values. All rows of side must bound x from the same
// direction. Ties prefer strict rows.
func (o *Optimizer) tightestBound(x int, side []int) int {
	best := -1
	var bestVal big.Rat
	upper := o.rows[side[0]].Expr.coeffOf(x).Sign() > 0
	for _, idx := range side {
		v := o.boundValue(x, idx)
		better := best < 0
		if !better {
			c := v.Cmp(&bestVal)
			if upper {
				better = c < 0 || (c == 0 && o.rows[idx].Kind == LT)
			} else {
				better = c > 0 || (c == 0 && o.rows[idx].Kind == LT)
			}
		}
		if better {
			best = idx
			bestVal.Set(v)
		}
	}
	return best
}

// boundValue is the bound row idx places on x given the current values of the
// other variables: x <= v for positive coefficients, x >= v for negative.
func (o *Optimizer) boundValue(x, idx int) *big.Rat {
	b := o.rows[idx].Expr.coeffOf(x)
	rest := o.rowValue(idx)
	var bx big.Rat
	bx.Mul(b, &o.vars[x].value)
	rest.Sub(rest, &bx)
	rest.Quo(rest, b)
	return rest.Neg(rest)
}

// addResolvent combines lower bound row l (negative x coefficient) with upper
// bound row u (positive x coefficient) into a row free of x. The combination
// uses positive multipliers only, so it is implied by the pair.
func (o *Optimizer) addResolvent(x, l, u int) {
	bl := o.rows[l].Expr.coeffOf(x) // < 0
	bu := o.rows[u].Expr.coeffOf(x) // > 0
	k1 := new(big.Rat).Set(bu)      // multiplier for l
	k2 := new(big.Rat).Neg(bl)      // multiplier for u
	e := make(LinearExpression, 0, len(o.rows[l].Expr)+len(o.rows[u].Expr))
	for i := range o.rows[l].Expr {
		var t Term
		t.VID = o.rows[l].Expr[i].VID
		t.Coeff.Mul(k1, &o.rows[l].Expr[i].Coeff)
		e = append(e, t)
	}
	for i := range o.rows[u].Expr {
		var t Term
		t.VID = o.rows[u].Expr[i].VID
		t.Coeff.Mul(k2, &o.rows[u].Expr[i].Coeff)
		e = append(e, t)
	}
	c := new(big.Rat).Mul(k1, &o.rows[l].Coeff)
	var cu big.Rat
	cu.Mul(k2, &o.rows[u].Coeff)
	c.Add(c, &cu)
	kind := LE
	if o.rows[l].Kind == LT || o.rows[u].Kind == LT {
		kind = LT
	}
	var mod big.Int
	o.addRow(e, c, kind, &mod)
}
