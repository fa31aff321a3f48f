package qelim

import (
	"github.com/consensys/qelim/expr"
	"github.com/consensys/qelim/model"
)

// Eliminate removes the given variables from lits, guided by a model that
// satisfies every literal. It returns the variables that could not be
// eliminated (original relative order), the resulting literals, and whether
// any elimination took place.
//
// The result is implied by ∃vars.lits and still holds under the model. A
// variable survives when it occurs in a literal outside the linear fragment,
// or inside an opaque atom that itself survives: dropping it there could lose
// information the residue still depends on.
func Eliminate(mdl *model.Model, vars []*expr.Var, lits []expr.Term) ([]*expr.Var, []expr.Term, bool) {
	if len(vars) == 0 {
		return vars, lits, false
	}
	p := newProjector(mdl)

	// fmls can grow while we iterate: conditional guards recorded during
	// linearization are appended and considered in turn
	fmls := lits
	j := 0
	for i := 0; i < len(fmls); i++ {
		if !p.linearizeLit(fmls[i], &fmls) {
			fmls[j] = fmls[i]
			j++
		}
	}
	fmls = fmls[:j]

	// requested variables that never occurred in a linear literal still take
	// part in projection, valued from the model
	requested := make(map[string]bool, len(vars))
	for _, v := range vars {
		requested[expr.Key(v)] = true
		if _, ok := p.atoms.lookup(v); !ok {
			p.registerAtom(v)
		}
	}

	// frozen: anything occurring in the residue, or inside an atom that is
	// not itself up for elimination
	frozen := make(map[string]bool)
	for _, fml := range fmls {
		markRec(frozen, fml)
	}
	for _, t := range p.atoms.byID {
		if t != nil && !requested[expr.Key(t)] {
			markRec(frozen, t)
		}
	}

	j = 0
	var elim []int
	for _, v := range vars {
		if frozen[expr.Key(v)] {
			vars[j] = v
			j++
			continue
		}
		id, _ := p.atoms.lookup(v)
		elim = append(elim, id)
	}
	vars = vars[:j]

	p.opt.Project(elim)
	for _, r := range p.opt.LiveRows() {
		if lit := p.reconstruct(r); lit != nil {
			fmls = append(fmls, lit)
		}
	}
	return vars, fmls, len(elim) > 0
}

func markRec(marks map[string]bool, t expr.Term) {
	expr.Walk(t, func(s expr.Term) bool {
		marks[expr.Key(s)] = true
		return true
	})
}
