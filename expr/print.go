package expr

import "strings"

// Key returns a canonical s-expression encoding of t. Two terms have the same
// key exactly when they are structurally identical, so keys serve as map keys
// wherever expression identity is needed.
func Key(t Term) string {
	var sbb strings.Builder
	writeKey(&sbb, t)
	return sbb.String()
}

func writeKey(sbb *strings.Builder, t Term) {
	switch tt := t.(type) {
	case *Numeral:
		sbb.WriteString(tt.Val.RatString())
		if !tt.IsInt {
			sbb.WriteString("r")
		}
	case *Var:
		sbb.WriteString(tt.Name)
	case *Sum:
		writeOp(sbb, "+", tt.Args...)
	case *Diff:
		writeOp(sbb, "-", tt.A, tt.B)
	case *Minus:
		writeOp(sbb, "-", tt.A)
	case *Product:
		writeOp(sbb, "*", tt.A, tt.B)
	case *Modulo:
		writeOp(sbb, "mod", tt.A, tt.M)
	case *Cond:
		writeOp(sbb, "ite", tt.If, tt.Then, tt.Else)
	case *BoolVal:
		if tt.Val {
			sbb.WriteString("true")
		} else {
			sbb.WriteString("false")
		}
	case *Negation:
		writeOp(sbb, "not", tt.A)
	case *Cmp:
		writeOp(sbb, cmpSymbol[tt.Op], tt.A, tt.B)
	case *Distinct:
		writeOp(sbb, "distinct", tt.Args...)
	default:
		panic("expr: unknown term variant")
	}
}

var cmpSymbol = map[CmpOp]string{
	OpLe: "<=",
	OpLt: "<",
	OpGe: ">=",
	OpGt: ">",
	OpEq: "=",
}

func writeOp(sbb *strings.Builder, op string, args ...Term) {
	sbb.WriteByte('(')
	sbb.WriteString(op)
	for _, a := range args {
		sbb.WriteByte(' ')
		writeKey(sbb, a)
	}
	sbb.WriteByte(')')
}
