package expr

// Walk calls f on t and every subterm of t, pre-order. Traversal of a subtree
// stops when f returns false.
func Walk(t Term, f func(Term) bool) {
	if !f(t) {
		return
	}
	switch tt := t.(type) {
	case *Numeral, *Var, *BoolVal:
	case *Sum:
		for _, a := range tt.Args {
			Walk(a, f)
		}
	case *Diff:
		Walk(tt.A, f)
		Walk(tt.B, f)
	case *Minus:
		Walk(tt.A, f)
	case *Product:
		Walk(tt.A, f)
		Walk(tt.B, f)
	case *Modulo:
		Walk(tt.A, f)
		Walk(tt.M, f)
	case *Cond:
		Walk(tt.If, f)
		Walk(tt.Then, f)
		Walk(tt.Else, f)
	case *Negation:
		Walk(tt.A, f)
	case *Cmp:
		Walk(tt.A, f)
		Walk(tt.B, f)
	case *Distinct:
		for _, a := range tt.Args {
			Walk(a, f)
		}
	default:
		panic("expr: unknown term variant")
	}
}

// Occurs reports whether needle occurs (structurally) in haystack.
func Occurs(needle, haystack Term) bool {
	key := Key(needle)
	found := false
	Walk(haystack, func(t Term) bool {
		if found {
			return false
		}
		if Key(t) == key {
			found = true
			return false
		}
		return true
	})
	return found
}
