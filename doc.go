// Package qelim eliminates existentially quantified arithmetic variables from
// a conjunction of literals, guided by a model that satisfies them, and
// maximizes linear objectives under the same constraints.
//
// Literals are translated into linear rows over "atoms" (sub-terms the
// translation treats as opaque variables); conditionals, disequalities and
// distinctness are resolved by consulting the model instead of case
// splitting. Rows are handed to the mbo engine for projection or
// maximization, and surviving rows are rebuilt into quantifier-free literals.
// Literals that do not fit the linear fragment pass through unchanged, so the
// transformation is weaker than the input but never wrong.
package qelim
