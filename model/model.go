// Package model holds concrete assignments for uninterpreted constants and an
// evaluator that interprets terms under such an assignment.
package model

import (
	"math/big"

	"github.com/consensys/qelim/expr"
)

// Model maps uninterpreted-constant names to rational values. It is mutable:
// the maximizer records freshly optimized values through Assign, and the
// evaluator records completion defaults.
type Model struct {
	vals map[string]*big.Rat
}

// New returns an empty model.
func New() *Model {
	return &Model{vals: make(map[string]*big.Rat)}
}

// Value returns the assigned value of the named constant.
func (m *Model) Value(name string) (*big.Rat, bool) {
	v, ok := m.vals[name]
	if !ok {
		return nil, false
	}
	return new(big.Rat).Set(v), true
}

// Assign sets (or overwrites) the value of the named constant.
func (m *Model) Assign(name string, v *big.Rat) {
	m.vals[name] = new(big.Rat).Set(v)
}

// Clone returns a deep copy of the model.
func (m *Model) Clone() *Model {
	c := New()
	for k, v := range m.vals {
		c.vals[k] = new(big.Rat).Set(v)
	}
	return c
}

// Evaluator interprets terms under a model.
//
// With completion enabled, constants the model does not constrain are assigned
// a default value (zero) which is recorded in the model, so repeated
// evaluations stay consistent.
type Evaluator struct {
	mdl        *Model
	completion bool
}

// NewEvaluator returns an evaluator reading (and, under completion, writing)
// mdl.
func NewEvaluator(mdl *Model) *Evaluator {
	return &Evaluator{mdl: mdl}
}

// SetCompletion toggles model completion.
func (e *Evaluator) SetCompletion(on bool) {
	e.completion = on
}

// Value evaluates an arithmetic term to a rational. It returns false when the
// term cannot be interpreted: an unassigned constant without completion, a
// modulus that is not a positive integer, or a boolean node.
func (e *Evaluator) Value(t expr.Term) (*big.Rat, bool) {
	switch tt := t.(type) {
	case *expr.Numeral:
		return new(big.Rat).Set(tt.Val), true
	case *expr.Var:
		if v, ok := e.mdl.Value(tt.Name); ok {
			return v, true
		}
		if !e.completion {
			return nil, false
		}
		v := new(big.Rat)
		e.mdl.Assign(tt.Name, v)
		return v, true
	case *expr.Sum:
		acc := new(big.Rat)
		for _, a := range tt.Args {
			v, ok := e.Value(a)
			if !ok {
				return nil, false
			}
			acc.Add(acc, v)
		}
		return acc, true
	case *expr.Diff:
		a, ok := e.Value(tt.A)
		if !ok {
			return nil, false
		}
		b, ok := e.Value(tt.B)
		if !ok {
			return nil, false
		}
		return a.Sub(a, b), true
	case *expr.Minus:
		a, ok := e.Value(tt.A)
		if !ok {
			return nil, false
		}
		return a.Neg(a), true
	case *expr.Product:
		a, ok := e.Value(tt.A)
		if !ok {
			return nil, false
		}
		b, ok := e.Value(tt.B)
		if !ok {
			return nil, false
		}
		return a.Mul(a, b), true
	case *expr.Modulo:
		a, ok := e.Value(tt.A)
		if !ok {
			return nil, false
		}
		m, ok := e.Value(tt.M)
		if !ok {
			return nil, false
		}
		return euclideanMod(a, m)
	case *expr.Cond:
		c, ok := e.Holds(tt.If)
		if !ok {
			return nil, false
		}
		if c {
			return e.Value(tt.Then)
		}
		return e.Value(tt.Else)
	default:
		return nil, false
	}
}

// Holds evaluates a boolean term under the model.
func (e *Evaluator) Holds(t expr.Term) (bool, bool) {
	switch tt := t.(type) {
	case *expr.BoolVal:
		return tt.Val, true
	case *expr.Negation:
		v, ok := e.Holds(tt.A)
		return !v, ok
	case *expr.Cmp:
		a, ok := e.Value(tt.A)
		if !ok {
			return false, false
		}
		b, ok := e.Value(tt.B)
		if !ok {
			return false, false
		}
		c := a.Cmp(b)
		switch tt.Op {
		case expr.OpLe:
			return c <= 0, true
		case expr.OpLt:
			return c < 0, true
		case expr.OpGe:
			return c >= 0, true
		case expr.OpGt:
			return c > 0, true
		case expr.OpEq:
			return c == 0, true
		}
		return false, false
	case *expr.Distinct:
		seen := make(map[string]struct{}, len(tt.Args))
		for _, a := range tt.Args {
			v, ok := e.Value(a)
			if !ok {
				return false, false
			}
			k := v.RatString()
			if _, dup := seen[k]; dup {
				return false, true
			}
			seen[k] = struct{}{}
		}
		return true, true
	default:
		return false, false
	}
}

// euclideanMod computes a mod m with the result in [0, m), following SMT-LIB
// integer semantics. Both operands must be integers and m positive.
func euclideanMod(a, m *big.Rat) (*big.Rat, bool) {
	if !a.IsInt() || !m.IsInt() || m.Sign() <= 0 {
		return nil, false
	}
	r := new(big.Int).Mod(a.Num(), m.Num())
	return new(big.Rat).SetInt(r), true
}
