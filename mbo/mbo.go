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

// Package mbo implements the linear-constraint engine behind model-based
// projection: a store of rational-valued variables, linear constraint rows
// (inequalities, equalities and divisibilities), variable elimination and
// objective maximization.
//
// Every variable carries the value it has under the caller's model; projection
// and maximization use those values to steer case choices. All state is local
// to one Optimizer and one elimination or maximization call.
package mbo

import (
	"math/big"

	"github.com/bits-and-blooms/bitset"
	"github.com/rs/zerolog"

	"github.com/consensys/qelim/debug"
	"github.com/consensys/qelim/logger"
)

// Kind tags the relation of a row against zero.
type Kind uint8

const (
	// LE is Expr + Coeff <= 0.
	LE Kind = iota
	// LT is Expr + Coeff < 0.
	LT
	// EQ is Expr + Coeff == 0.
	EQ
	// ModEQ is Expr + Coeff == 0 (mod Mod).
	ModEQ
)

// Term is one coeff * variable entry of a linear expression.
type Term struct {
	VID   int
	Coeff big.Rat
}

// A LinearExpression is a linear combination of Term.
type LinearExpression []Term

// Clone returns a deep copy of the underlying slice.
func (l LinearExpression) Clone() LinearExpression {
	res := make(LinearExpression, len(l))
	for i := range l {
		res[i].VID = l[i].VID
		res[i].Coeff.Set(&l[i].Coeff)
	}
	return res
}

// coeffOf returns the coefficient of x, or nil if x does not occur.
func (l LinearExpression) coeffOf(x int) *big.Rat {
	for i := range l {
		if l[i].VID == x {
			return &l[i].Coeff
		}
	}
	return nil
}

// Row is a constraint as stored by the engine: Expr + Coeff (Kind) 0.
type Row struct {
	Expr  LinearExpression
	Coeff big.Rat
	Kind  Kind
	Mod   big.Int // modulus, ModEQ rows only
}

func (r *Row) clone() Row {
	var c Row
	c.Expr = r.Expr.Clone()
	c.Coeff.Set(&r.Coeff)
	c.Kind = r.Kind
	c.Mod.Set(&r.Mod)
	return c
}

type varInfo struct {
	value big.Rat
	isInt bool
	occ   *bitset.BitSet // indices of rows mentioning this variable
}

type engineRow struct {
	Row
	alive bool
}

// Optimizer is the constraint engine. The zero value is not usable; call New.
type Optimizer struct {
	vars []varInfo
	rows []engineRow

	obj      LinearExpression
	objConst big.Rat
	hasObj   bool

	log zerolog.Logger
}

// New returns an empty engine.
func New() *Optimizer {
	return &Optimizer{
		log: logger.Logger().With().Str("component", "mbo").Logger(),
	}
}

// AddVar registers a variable with its model value and returns its id.
func (o *Optimizer) AddVar(value *big.Rat, isInt bool) int {
	id := len(o.vars)
	v := varInfo{isInt: isInt, occ: bitset.New(8)}
	v.value.Set(value)
	o.vars = append(o.vars, v)
	return id
}

// Value returns the current value of a variable. After a successful bounded
// Maximize, values lie on an optimal point.
func (o *Optimizer) Value(id int) *big.Rat {
	return new(big.Rat).Set(&o.vars[id].value)
}

// AddConstraint adds the row e + c (kind) 0. Duplicate variable entries are
// summed and exact-zero coefficients dropped.
func (o *Optimizer) AddConstraint(e LinearExpression, c *big.Rat, kind Kind) {
	var mod big.Int
	o.addRow(e, c, kind, &mod)
}

// AddDivides adds the divisibility row e + c == 0 (mod m). m must be a
// positive integer.
func (o *Optimizer) AddDivides(e LinearExpression, c *big.Rat, m *big.Int) {
	debug.Assert(m.Sign() > 0, "mbo: non-positive modulus")
	o.addRow(e, c, ModEQ, m)
}

// SetObjective records the objective e + c for a later Maximize call.
func (o *Optimizer) SetObjective(e LinearExpression, c *big.Rat) {
	o.obj = normalize(e)
	o.objConst.Set(c)
	o.hasObj = true
}

// LiveRows returns copies of the rows that survived projection.
func (o *Optimizer) LiveRows() []Row {
	var res []Row
	for i := range o.rows {
		if o.rows[i].alive {
			res = append(res, o.rows[i].clone())
		}
	}
	return res
}

func (o *Optimizer) addRow(e LinearExpression, c *big.Rat, kind Kind, mod *big.Int) int {
	idx := len(o.rows)
	var r engineRow
	r.Expr = normalize(e)
	r.Coeff.Set(c)
	r.Kind = kind
	r.Mod.Set(mod)
	r.alive = true
	o.rows = append(o.rows, r)
	for i := range r.Expr {
		o.vars[r.Expr[i].VID].occ.Set(uint(idx))
	}
	if debug.Debug {
		debug.Assert(o.rowSatisfied(idx), "mbo: row not satisfied by variable values")
	}
	return idx
}

func (o *Optimizer) kill(idx int) {
	o.rows[idx].alive = false
}

// rowValue is Expr + Coeff under the current variable values.
func (o *Optimizer) rowValue(idx int) *big.Rat {
	return o.exprValue(o.rows[idx].Expr, &o.rows[idx].Coeff)
}

func (o *Optimizer) exprValue(e LinearExpression, c *big.Rat) *big.Rat {
	acc := new(big.Rat).Set(c)
	var t big.Rat
	for i := range e {
		t.Mul(&e[i].Coeff, &o.vars[e[i].VID].value)
		acc.Add(acc, &t)
	}
	return acc
}

func (o *Optimizer) rowSatisfied(idx int) bool {
	v := o.rowValue(idx)
	switch o.rows[idx].Kind {
	case LE:
		return v.Sign() <= 0
	case LT:
		return v.Sign() < 0
	case EQ:
		return v.Sign() == 0
	case ModEQ:
		if !v.IsInt() {
			return false
		}
		var r big.Int
		r.Mod(v.Num(), &o.rows[idx].Mod)
		return r.Sign() == 0
	}
	return false
}

// liveRowsWith returns the indices of live rows mentioning x.
func (o *Optimizer) liveRowsWith(x int) []int {
	var res []int
	occ := o.vars[x].occ
	for i, ok := occ.NextSet(0); ok; i, ok = occ.NextSet(i + 1) {
		idx := int(i)
		if o.rows[idx].alive && o.rows[idx].Expr.coeffOf(x) != nil {
			res = append(res, idx)
		}
	}
	return res
}

func (o *Optimizer) clone() *Optimizer {
	c := &Optimizer{
		vars:   make([]varInfo, len(o.vars)),
		rows:   make([]engineRow, len(o.rows)),
		hasObj: o.hasObj,
		log:    o.log,
	}
	for i := range o.vars {
		c.vars[i].isInt = o.vars[i].isInt
		c.vars[i].value.Set(&o.vars[i].value)
		c.vars[i].occ = o.vars[i].occ.Clone()
	}
	for i := range o.rows {
		c.rows[i].Row = o.rows[i].Row.clone()
		c.rows[i].alive = o.rows[i].alive
	}
	c.obj = o.obj.Clone()
	c.objConst.Set(&o.objConst)
	return c
}

// normalize merges duplicate variable entries (first-occurrence order) and
// drops exact-zero coefficients.
func normalize(e LinearExpression) LinearExpression {
	pos := make(map[int]int, len(e))
	out := make(LinearExpression, 0, len(e))
	for i := range e {
		if j, ok := pos[e[i].VID]; ok {
			out[j].Coeff.Add(&out[j].Coeff, &e[i].Coeff)
			continue
		}
		pos[e[i].VID] = len(out)
		var t Term
		t.VID = e[i].VID
		t.Coeff.Set(&e[i].Coeff)
		out = append(out, t)
	}
	j := 0
	for i := range out {
		if out[i].Coeff.Sign() != 0 {
			out[j] = out[i]
			j++
		}
	}
	return out[:j]
}

// isIntegral reports whether every coefficient of e and c are integers.
func isIntegral(e LinearExpression, c *big.Rat) bool {
	if !c.IsInt() {
		return false
	}
	for i := range e {
		if !e[i].Coeff.IsInt() {
			return false
		}
	}
	return true
}
