package qelim

import (
	"math/big"

	"github.com/consensys/qelim/expr"
)

// atomRegistry maps opaque arithmetic sub-terms to engine variable ids and
// back. Registration is idempotent per instance; ids are the engine's, dense
// from zero, so the reverse map is a slice. A registry lives for one
// elimination or maximization call.
type atomRegistry struct {
	ids  map[string]int // canonical key -> variable id
	byID []expr.Term
}

func newAtomRegistry() atomRegistry {
	return atomRegistry{ids: make(map[string]int)}
}

func (a *atomRegistry) lookup(t expr.Term) (int, bool) {
	id, ok := a.ids[expr.Key(t)]
	return id, ok
}

func (a *atomRegistry) record(t expr.Term, id int) {
	a.ids[expr.Key(t)] = id
	for len(a.byID) <= id {
		a.byID = append(a.byID, nil)
	}
	a.byID[id] = t
}

// coeffMap accumulates per-atom coefficients in first-insertion order, merging
// multiplicities of the same atom.
type coeffMap struct {
	order []expr.Term
	coeff map[string]*big.Rat
}

func newCoeffMap() *coeffMap {
	return &coeffMap{coeff: make(map[string]*big.Rat)}
}

// add sums v into the coefficient of t.
func (m *coeffMap) add(t expr.Term, v *big.Rat) {
	k := expr.Key(t)
	if c, ok := m.coeff[k]; ok {
		c.Add(c, v)
		return
	}
	m.order = append(m.order, t)
	m.coeff[k] = new(big.Rat).Set(v)
}
