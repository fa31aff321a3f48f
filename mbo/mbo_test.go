package mbo

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rat(num, den int64) *big.Rat {
	return big.NewRat(num, den)
}

func entry(vid int, num, den int64) Term {
	var t Term
	t.VID = vid
	t.Coeff.Set(rat(num, den))
	return t
}

func lin(ts ...Term) LinearExpression {
	return LinearExpression(ts)
}

func TestAddVarValue(t *testing.T) {
	o := New()
	x := o.AddVar(rat(3, 1), true)
	y := o.AddVar(rat(1, 2), false)

	assert.Equal(t, 0, x)
	assert.Equal(t, 1, y)
	assert.Equal(t, 0, o.Value(x).Cmp(rat(3, 1)))
	assert.Equal(t, 0, o.Value(y).Cmp(rat(1, 2)))
}

func TestNormalizeMergesAndDropsZeros(t *testing.T) {
	e := normalize(lin(entry(0, 1, 1), entry(1, 2, 1), entry(0, -1, 1)))
	require.Len(t, e, 1, "variable 0 cancels out")
	assert.Equal(t, 1, e[0].VID)
	assert.Equal(t, 0, e[0].Coeff.Cmp(rat(2, 1)))
}

func TestLiveRows(t *testing.T) {
	o := New()
	x := o.AddVar(rat(3, 1), false)
	// x - 5 <= 0
	o.AddConstraint(lin(entry(x, 1, 1)), rat(-5, 1), LE)
	// 1 - x <= 0
	o.AddConstraint(lin(entry(x, -1, 1)), rat(1, 1), LE)

	rows := o.LiveRows()
	require.Len(t, rows, 2)
	assert.Equal(t, LE, rows[0].Kind)
}

func TestProjectBoundedVariable(t *testing.T) {
	o := New()
	x := o.AddVar(rat(3, 1), false)
	o.AddConstraint(lin(entry(x, 1, 1)), rat(-5, 1), LE)
	o.AddConstraint(lin(entry(x, -1, 1)), rat(1, 1), LE)

	o.Project([]int{x})

	for _, r := range o.LiveRows() {
		assert.Empty(t, r.Expr, "only trivial rows survive")
		assert.True(t, r.Coeff.Sign() <= 0)
	}
}

func TestProjectResolvesThroughSharedRows(t *testing.T) {
	o := New()
	x := o.AddVar(rat(2, 1), false)
	y := o.AddVar(rat(1, 1), false)
	// y - x < 0
	o.AddConstraint(lin(entry(y, 1, 1), entry(x, -1, 1)), rat(0, 1), LT)
	// -y <= 0
	o.AddConstraint(lin(entry(y, -1, 1)), rat(0, 1), LE)

	o.Project([]int{y})

	var survivors []Row
	for _, r := range o.LiveRows() {
		if len(r.Expr) > 0 {
			survivors = append(survivors, r)
		}
	}
	require.Len(t, survivors, 1)
	// resolving 0 <= y < x leaves -x < 0
	require.Len(t, survivors[0].Expr, 1)
	assert.Equal(t, x, survivors[0].Expr[0].VID)
	assert.Equal(t, 0, survivors[0].Expr[0].Coeff.Cmp(rat(-1, 1)))
	assert.Equal(t, LT, survivors[0].Kind)
}

func TestProjectOneSidedDropsRows(t *testing.T) {
	o := New()
	x := o.AddVar(rat(1, 1), false)
	y := o.AddVar(rat(2, 1), false)
	// x + 2y - 10 <= 0: y has an upper bound only
	o.AddConstraint(lin(entry(x, 1, 1), entry(y, 2, 1)), rat(-10, 1), LE)

	o.Project([]int{y})

	for _, r := range o.LiveRows() {
		assert.Empty(t, r.Expr)
	}
}

func TestProjectEqualityPivot(t *testing.T) {
	o := New()
	x := o.AddVar(rat(2, 1), false)
	y := o.AddVar(rat(3, 1), false)
	// x - y + 1 = 0
	o.AddConstraint(lin(entry(x, 1, 1), entry(y, -1, 1)), rat(1, 1), EQ)
	// y - 5 <= 0
	o.AddConstraint(lin(entry(y, 1, 1)), rat(-5, 1), LE)

	o.Project([]int{y})

	var survivors []Row
	for _, r := range o.LiveRows() {
		if len(r.Expr) > 0 {
			survivors = append(survivors, r)
		}
	}
	// substituting y = x + 1 into y <= 5 gives x - 4 <= 0
	require.Len(t, survivors, 1)
	require.Len(t, survivors[0].Expr, 1)
	assert.Equal(t, x, survivors[0].Expr[0].VID)
	assert.Equal(t, 0, survivors[0].Expr[0].Coeff.Cmp(rat(1, 1)))
	assert.Equal(t, 0, survivors[0].Coeff.Cmp(rat(-4, 1)))
}

func TestProjectIntegerPivotAddsDivisibility(t *testing.T) {
	o := New()
	x := o.AddVar(rat(2, 1), true)
	y := o.AddVar(rat(3, 1), true)
	// 2x - y - 1 = 0 forces y + 1 ≡ 0 (mod 2) once x is gone
	o.AddConstraint(lin(entry(x, 2, 1), entry(y, -1, 1)), rat(-1, 1), EQ)

	o.Project([]int{x})

	var mods []Row
	for _, r := range o.LiveRows() {
		if r.Kind == ModEQ {
			mods = append(mods, r)
		}
	}
	require.Len(t, mods, 1)
	assert.Equal(t, 0, mods[0].Mod.Cmp(big.NewInt(2)))
	require.Len(t, mods[0].Expr, 1)
	assert.Equal(t, y, mods[0].Expr[0].VID)
}

func TestProjectDropsOrphanDivisibility(t *testing.T) {
	o := New()
	x := o.AddVar(rat(5, 1), true)
	// x ≡ 1 (mod 4), no defining equality for x
	o.AddDivides(lin(entry(x, 1, 1)), rat(-1, 1), big.NewInt(4))

	o.Project([]int{x})

	assert.Empty(t, o.LiveRows())
}
