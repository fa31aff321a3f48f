package qelim

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/consensys/qelim/expr"
	"github.com/consensys/qelim/model"
)

func mval(t *testing.T, mdl *model.Model, name string) *big.Rat {
	t.Helper()
	v, ok := mdl.Value(name)
	require.True(t, ok, "model has no value for %s", name)
	return v
}

func TestMaximizeAttainedBound(t *testing.T) {
	x := expr.RealConst("x")
	mdl := mdlOf(t, map[string]int64{"x": 3})
	lits := []expr.Term{expr.Le(x, expr.IntVal(5))}

	opt, ge, gt := Maximize(lits, mdl, x)

	require.True(t, opt.IsFinite())
	assert.Zero(t, opt.Eps())
	assert.Equal(t, 0, opt.Rational().Cmp(big.NewRat(5, 1)))

	// the model is moved to the optimum
	assert.Equal(t, 0, mval(t, mdl, "x").Cmp(big.NewRat(5, 1)))
	assert.Equal(t, "(>= x 5r)", expr.Key(ge))
	assert.Equal(t, "(> x 5r)", expr.Key(gt))

	eval := model.NewEvaluator(mdl)
	v, ok := eval.Holds(ge)
	require.True(t, ok)
	assert.True(t, v)
	v, ok = eval.Holds(gt)
	require.True(t, ok)
	assert.False(t, v, "the strict bound excludes the optimum itself")
}

func TestMaximizeSupremumNotAttained(t *testing.T) {
	// sup{x : x < 5} is 5 but no point reaches it; the model stays put and
	// both certificates are anchored at the model value
	x := expr.RealConst("x")
	mdl := mdlOf(t, map[string]int64{"x": 3})
	lits := []expr.Term{expr.Lt(x, expr.IntVal(5))}

	opt, ge, gt := Maximize(lits, mdl, x)

	require.True(t, opt.IsFinite())
	assert.Equal(t, -1, opt.Eps())
	assert.Equal(t, 0, opt.Rational().Cmp(big.NewRat(5, 1)))

	assert.Equal(t, 0, mval(t, mdl, "x").Cmp(big.NewRat(3, 1)))
	assert.Equal(t, "(>= x 3r)", expr.Key(ge))
	assert.Equal(t, "(> x 3r)", expr.Key(gt))
}

func TestMaximizeUnbounded(t *testing.T) {
	x := expr.RealConst("x")
	mdl := mdlOf(t, map[string]int64{"x": 3})
	lits := []expr.Term{expr.Ge(x, expr.IntVal(0))}

	opt, ge, gt := Maximize(lits, mdl, x)

	assert.False(t, opt.IsFinite())
	assert.Equal(t, "(>= x 3r)", expr.Key(ge))
	assert.Equal(t, "false", expr.Key(gt))
}

func TestMaximizeJointObjective(t *testing.T) {
	x := expr.RealConst("x")
	y := expr.RealConst("y")
	mdl := mdlOf(t, map[string]int64{"x": 0, "y": 0})
	lits := []expr.Term{
		expr.Le(expr.Add(x, y), expr.IntVal(4)),
		expr.Le(x, expr.IntVal(3)),
	}

	opt, ge, _ := Maximize(lits, mdl, expr.Add(x, y))

	require.True(t, opt.IsFinite())
	assert.Zero(t, opt.Eps())
	assert.Equal(t, 0, opt.Rational().Cmp(big.NewRat(4, 1)))

	sum := new(big.Rat).Add(mval(t, mdl, "x"), mval(t, mdl, "y"))
	assert.Equal(t, 0, sum.Cmp(big.NewRat(4, 1)))
	assertModelHolds(t, mdl, lits)

	eval := model.NewEvaluator(mdl)
	v, ok := eval.Holds(ge)
	require.True(t, ok)
	assert.True(t, v)
}

func TestMaximizeOpaqueAtomNotWrittenBack(t *testing.T) {
	// y*z is opaque; the engine may move its value but only proper variables
	// are written back into the model
	x := expr.RealConst("x")
	y := expr.RealConst("y")
	z := expr.RealConst("z")
	mdl := mdlOf(t, map[string]int64{"x": 3, "y": 2, "z": 2})
	yz := expr.Mul(y, z)
	lits := []expr.Term{
		expr.Le(x, yz),
		expr.Le(yz, expr.IntVal(4)),
	}

	opt, _, _ := Maximize(lits, mdl, x)

	require.True(t, opt.IsFinite())
	assert.Zero(t, opt.Eps())
	assert.Equal(t, 0, opt.Rational().Cmp(big.NewRat(4, 1)))

	assert.Equal(t, 0, mval(t, mdl, "x").Cmp(big.NewRat(4, 1)))
	assert.Equal(t, 0, mval(t, mdl, "y").Cmp(big.NewRat(2, 1)))
	assert.Equal(t, 0, mval(t, mdl, "z").Cmp(big.NewRat(2, 1)))
}

func TestMaximizeMonotonicBounds(t *testing.T) {
	// conjoining the returned nonstrict bound and re-maximizing reaches the
	// same optimum, from a model the first round already moved onto it
	x := expr.RealConst("x")
	mdl := mdlOf(t, map[string]int64{"x": 3})
	lits := []expr.Term{expr.Le(x, expr.IntVal(5))}

	opt1, ge, _ := Maximize(lits, mdl, x)
	require.True(t, opt1.IsFinite())

	assertModelHolds(t, mdl, append(lits, ge))
	opt2, ge2, _ := Maximize(append(lits, ge), mdl, x)
	assert.Equal(t, 0, opt1.Cmp(opt2))
	assertModelHolds(t, mdl, append(lits, ge, ge2))
}

func TestMaximizeStrictBoundForcesImprovement(t *testing.T) {
	// the first round follows the model into the then-branch and tops out at
	// 2; a model satisfying the strict bound takes the else-branch, and the
	// second optimum is strictly larger
	x := expr.RealConst("x")
	y := expr.RealConst("y")
	lit := expr.Le(x, expr.Ite(expr.Le(y, expr.IntVal(0)), expr.IntVal(2), expr.IntVal(10)))

	mdl1 := mdlOf(t, map[string]int64{"x": 1, "y": 0})
	opt1, _, gt := Maximize([]expr.Term{lit}, mdl1, x)
	require.True(t, opt1.IsFinite())
	assert.Zero(t, opt1.Eps())
	assert.Equal(t, 0, opt1.Rational().Cmp(big.NewRat(2, 1)))
	assert.Equal(t, "(> x 2r)", expr.Key(gt))

	mdl2 := mdlOf(t, map[string]int64{"x": 3, "y": 1})
	lits2 := []expr.Term{lit, gt}
	assertModelHolds(t, mdl2, lits2)

	opt2, _, _ := Maximize(lits2, mdl2, x)
	require.True(t, opt2.IsFinite())
	assert.Equal(t, 0, opt2.Rational().Cmp(big.NewRat(10, 1)))
	assert.Equal(t, -1, opt1.Cmp(opt2), "each strict-bound round strictly improves")
}

func TestMaximizeConstantObjective(t *testing.T) {
	x := expr.RealConst("x")
	mdl := mdlOf(t, map[string]int64{"x": 3})
	lits := []expr.Term{expr.Le(x, expr.IntVal(5))}

	opt, ge, gt := Maximize(lits, mdl, expr.RatVal(big.NewRat(42, 1), false))

	require.True(t, opt.IsFinite())
	assert.Zero(t, opt.Eps())
	assert.Equal(t, 0, opt.Rational().Cmp(big.NewRat(42, 1)))
	assert.Equal(t, "(>= 42r 42r)", expr.Key(ge))
	assert.Equal(t, "(> 42r 42r)", expr.Key(gt))
}
