package expr

import (
	"math/big"
	"sort"
	"strings"
)

// maxIntPower bounds exact evaluation of integer powers of rationals.
const maxIntPower = 4096

// NewAdd builds a canonical sum: nested sums are flattened, numeric terms are
// folded together and like terms are collected by their rational coefficients.
// Terms are ordered by the key of their non-numeric part.
func NewAdd(args ...Expr) Expr {
	constant := new(big.Rat)
	coeffs := make(map[string]*big.Rat)
	rests := make(map[string]Expr)
	var order []string

	var visit func(e Expr)
	visit = func(e Expr) {
		switch v := e.(type) {
		case *Add:
			for _, t := range v.terms {
				visit(t)
			}
		case Number:
			constant.Add(constant, v.rat())
		default:
			c, rest := splitCoefficient(e)
			k := rest.Key()
			if cur, ok := coeffs[k]; ok {
				cur.Add(cur, c)
				return
			}
			coeffs[k] = new(big.Rat).Set(c)
			rests[k] = rest
			order = append(order, k)
		}
	}
	for _, a := range args {
		visit(a)
	}

	sort.Strings(order)
	terms := make([]Expr, 0, len(order)+1)
	for _, k := range order {
		if coeffs[k].Sign() == 0 {
			continue
		}
		terms = append(terms, NewMul(Number{r: coeffs[k]}, rests[k]))
	}
	if constant.Sign() != 0 {
		terms = append([]Expr{Number{r: constant}}, terms...)
	}

	switch len(terms) {
	case 0:
		return Zero
	case 1:
		return terms[0]
	}
	return &Add{terms: terms, key: compoundKey("+", terms)}
}

// NewMul builds a canonical product: nested products are flattened, rational
// factors are multiplied into a single coefficient and powers of the same base
// are combined by adding their exponents.
func NewMul(args ...Expr) Expr {
	coeff := big.NewRat(1, 1)
	type power struct {
		base Expr
		exp  Expr
	}
	powers := make(map[string]*power)
	var order []string

	var visit func(e Expr)
	visit = func(e Expr) {
		switch v := e.(type) {
		case *Mul:
			for _, a := range v.args {
				visit(a)
			}
		case Number:
			coeff.Mul(coeff, v.rat())
		default:
			base, exp := asPower(e)
			k := base.Key()
			if p, ok := powers[k]; ok {
				p.exp = NewAdd(p.exp, exp)
				return
			}
			powers[k] = &power{base: base, exp: exp}
			order = append(order, k)
		}
	}
	for _, a := range args {
		visit(a)
	}
	if coeff.Sign() == 0 {
		return Zero
	}

	factors := make([]Expr, 0, len(order))
	var regroup []Expr
	for _, k := range order {
		p := powers[k]
		switch f := NewPow(p.base, p.exp).(type) {
		case Number:
			coeff.Mul(coeff, f.rat())
		case *Mul:
			regroup = append(regroup, f)
		default:
			factors = append(factors, f)
		}
	}
	if len(regroup) > 0 {
		all := append([]Expr{Number{r: coeff}}, factors...)
		return NewMul(append(all, regroup...)...)
	}
	if coeff.Sign() == 0 {
		return Zero
	}

	sortByKey(factors)
	if len(factors) == 0 {
		return Number{r: coeff}
	}
	if coeff.Cmp(big.NewRat(1, 1)) == 0 {
		if len(factors) == 1 {
			return factors[0]
		}
	} else {
		factors = append([]Expr{Number{r: coeff}}, factors...)
	}
	return &Mul{args: factors, key: compoundKey("*", factors)}
}

// NewPow builds base**exp, evaluating exact rational powers and folding nested
// powers where that is valid.
func NewPow(base, exp Expr) Expr {
	e, numeric := exp.(Number)
	if !numeric {
		if b, ok := base.(Number); ok && b.rat().Cmp(big.NewRat(1, 1)) == 0 {
			return One
		}
		return newPowNode(base, exp)
	}
	if e.Sign() == 0 {
		return One
	}
	if e.rat().Cmp(big.NewRat(1, 1)) == 0 {
		return base
	}

	switch b := base.(type) {
	case Number:
		if r, ok := ratPow(b.rat(), e.rat()); ok {
			return Number{r: r}
		}
	case *Pow:
		if inner, ok := b.exp.(Number); ok && (e.IsInt() || isPositive(b.base)) {
			return NewPow(b.base, Number{r: new(big.Rat).Mul(inner.rat(), e.rat())})
		}
	case *Mul:
		if e.IsInt() || isPositive(b) {
			factors := make([]Expr, len(b.args))
			for i, a := range b.args {
				factors[i] = NewPow(a, e)
			}
			return NewMul(factors...)
		}
	}
	return newPowNode(base, exp)
}

func newPowNode(base, exp Expr) *Pow {
	return &Pow{base: base, exp: exp, key: "^(" + base.Key() + "," + exp.Key() + ")"}
}

func Sub(a, b Expr) Expr { return NewAdd(a, NewMul(MinusOne, b)) }

func Neg(a Expr) Expr { return NewMul(MinusOne, a) }

func Div(a, b Expr) Expr { return NewMul(a, NewPow(b, MinusOne)) }

func Powi(base Expr, n int64) Expr { return NewPow(base, Int(n)) }

func Sqrt(e Expr) Expr { return NewPow(e, Half) }

// splitCoefficient separates the rational coefficient of a term from the rest.
func splitCoefficient(e Expr) (*big.Rat, Expr) {
	m, ok := e.(*Mul)
	if !ok {
		return big.NewRat(1, 1), e
	}
	n, ok := m.args[0].(Number)
	if !ok {
		return big.NewRat(1, 1), e
	}
	rest := m.args[1:]
	if len(rest) == 1 {
		return n.rat(), rest[0]
	}
	return n.rat(), &Mul{args: rest, key: compoundKey("*", rest)}
}

func asPower(e Expr) (Expr, Expr) {
	if p, ok := e.(*Pow); ok {
		return p.base, p.exp
	}
	return e, One
}

// ratPow computes b**e exactly when the result is rational.
func ratPow(b, e *big.Rat) (*big.Rat, bool) {
	if b.Sign() == 0 {
		if e.Sign() > 0 {
			return new(big.Rat), true
		}
		return nil, false
	}
	if b.Cmp(big.NewRat(1, 1)) == 0 {
		return big.NewRat(1, 1), true
	}
	if !e.Denom().IsInt64() || !e.Num().IsInt64() {
		return nil, false
	}
	p, q := e.Num().Int64(), e.Denom().Int64()
	base := new(big.Rat).Set(b)
	if q != 1 {
		if b.Sign() < 0 {
			return nil, false
		}
		num, ok := intRoot(b.Num(), q)
		if !ok {
			return nil, false
		}
		den, ok := intRoot(b.Denom(), q)
		if !ok {
			return nil, false
		}
		base.SetFrac(num, den)
	}
	return ratPowInt(base, p)
}

func ratPowInt(b *big.Rat, n int64) (*big.Rat, bool) {
	if n > maxIntPower || n < -maxIntPower {
		return nil, false
	}
	neg := n < 0
	if neg {
		n = -n
	}
	num := new(big.Int).Exp(b.Num(), big.NewInt(n), nil)
	den := new(big.Int).Exp(b.Denom(), big.NewInt(n), nil)
	if neg {
		num, den = den, num
	}
	if den.Sign() < 0 {
		num.Neg(num)
		den.Neg(den)
	}
	return new(big.Rat).SetFrac(num, den), true
}

// intRoot returns the exact q-th root of a non-negative integer.
func intRoot(x *big.Int, q int64) (*big.Int, bool) {
	if x.Sign() < 0 || q <= 0 || q > 64 {
		return nil, false
	}
	if q == 2 {
		r := new(big.Int).Sqrt(x)
		return r, new(big.Int).Mul(r, r).Cmp(x) == 0
	}
	lo, hi := big.NewInt(0), new(big.Int).Lsh(big.NewInt(1), uint(x.BitLen()/int(q)+1))
	exp := big.NewInt(q)
	one := big.NewInt(1)
	for lo.Cmp(hi) < 0 {
		mid := new(big.Int).Add(lo, hi)
		mid.Add(mid, one).Rsh(mid, 1)
		if new(big.Int).Exp(mid, exp, nil).Cmp(x) <= 0 {
			lo = mid
		} else {
			hi = mid.Sub(mid, one)
		}
	}
	return lo, new(big.Int).Exp(lo, exp, nil).Cmp(x) == 0
}

func sortByKey(es []Expr) {
	sort.SliceStable(es, func(i, j int) bool { return es[i].Key() < es[j].Key() })
}

func compoundKey(op string, args []Expr) string {
	var sb strings.Builder
	sb.WriteString(op)
	sb.WriteByte('(')
	for i, a := range args {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(a.Key())
	}
	sb.WriteByte(')')
	return sb.String()
}
