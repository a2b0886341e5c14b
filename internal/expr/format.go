package expr

import (
	"math/big"
	"strings"
)

func formatAdd(a *Add) string {
	var sb strings.Builder
	for i, t := range a.terms {
		s := t.String()
		switch {
		case i == 0:
			sb.WriteString(s)
		case strings.HasPrefix(s, "-"):
			sb.WriteString(" - ")
			sb.WriteString(s[1:])
		default:
			sb.WriteString(" + ")
			sb.WriteString(s)
		}
	}
	return sb.String()
}

// formatMul prints a product as numerator/denominator, moving factors with
// negative rational exponents below the line.
func formatMul(m *Mul) string {
	var num, den []string
	sign := ""
	for _, a := range m.args {
		switch v := a.(type) {
		case Number:
			r := v.rat()
			if r.Sign() < 0 {
				sign = "-"
				r = new(big.Rat).Neg(r)
			}
			if !r.Num().IsInt64() || r.Num().Int64() != 1 {
				num = append(num, r.Num().String())
			}
			if !r.IsInt() {
				den = append(den, r.Denom().String())
			}
		case *Pow:
			if e, ok := v.exp.(Number); ok && e.Sign() < 0 {
				den = append(den, denominatorString(NewPow(v.base, Neg(e))))
				continue
			}
			num = append(num, factorString(v))
		default:
			num = append(num, factorString(v))
		}
	}
	out := "1"
	if len(num) > 0 {
		out = strings.Join(num, "*")
	}
	switch len(den) {
	case 0:
	case 1:
		out += "/" + den[0]
	default:
		out += "/(" + strings.Join(den, "*") + ")"
	}
	return sign + out
}

func formatPow(p *Pow) string {
	return operandString(p.base) + "**" + operandString(p.exp)
}

func factorString(e Expr) string {
	if _, ok := e.(*Add); ok {
		return "(" + e.String() + ")"
	}
	return e.String()
}

func denominatorString(e Expr) string {
	if _, ok := e.(*Mul); ok {
		return "(" + e.String() + ")"
	}
	return factorString(e)
}

func operandString(e Expr) string {
	switch v := e.(type) {
	case *Add, *Mul, *Pow:
		return "(" + e.String() + ")"
	case Number:
		if v.Sign() < 0 || !v.IsInt() {
			return "(" + v.String() + ")"
		}
	}
	return e.String()
}
