package expr

// maxExpandPower bounds the integer powers of sums that Expand multiplies out.
const maxExpandPower = 8

// Replace rebuilds e bottom-up and substitutes every node for which match
// reports true with f(node). Parents are rebuilt through the canonical
// constructors, so the result is canonical again.
func Replace(e Expr, match func(Expr) bool, f func(Expr) Expr) Expr {
	out, _ := ReplaceErr(e, match, func(x Expr) (Expr, error) { return f(x), nil })
	return out
}

// ReplaceErr is Replace with a fallible substitution; the first error aborts
// the rewrite.
func ReplaceErr(e Expr, match func(Expr) bool, f func(Expr) (Expr, error)) (Expr, error) {
	rebuilt := e
	if args := Args(e); args != nil {
		next := make([]Expr, len(args))
		for i, a := range args {
			r, err := ReplaceErr(a, match, f)
			if err != nil {
				return nil, err
			}
			next[i] = r
		}
		rebuilt = rebuild(e, next)
	}
	if match(rebuilt) {
		return f(rebuilt)
	}
	return rebuilt, nil
}

// Xreplace substitutes exact sub-expressions, matched top-down by Key.
func Xreplace(e Expr, table map[string]Expr) Expr {
	if r, ok := table[e.Key()]; ok {
		return r
	}
	args := Args(e)
	if args == nil {
		return e
	}
	next := make([]Expr, len(args))
	for i, a := range args {
		next[i] = Xreplace(a, table)
	}
	return rebuild(e, next)
}

// Subs replaces every occurrence of from with to.
func Subs(e, from, to Expr) Expr {
	return Xreplace(e, map[string]Expr{from.Key(): to})
}

// Walk visits e and its descendants in pre-order. Returning false from fn
// skips the children of the current node.
func Walk(e Expr, fn func(Expr) bool) {
	if !fn(e) {
		return
	}
	for _, a := range Args(e) {
		Walk(a, fn)
	}
}

// Has reports whether any node of e satisfies pred.
func Has(e Expr, pred func(Expr) bool) bool {
	found := false
	Walk(e, func(x Expr) bool {
		if found {
			return false
		}
		if pred(x) {
			found = true
			return false
		}
		return true
	})
	return found
}

// Atoms returns the distinct non-numeric leaves of e in first-seen order:
// symbols, placeholders and opaque atoms alike.
func Atoms(e Expr) []Expr {
	seen := make(map[string]bool)
	var out []Expr
	Walk(e, func(x Expr) bool {
		if Args(x) != nil {
			return true
		}
		switch x.(type) {
		case Number, Constant:
			return false
		}
		if !seen[x.Key()] {
			seen[x.Key()] = true
			out = append(out, x)
		}
		return false
	})
	return out
}

// IsSymbol reports whether e is a free variable or a placeholder.
func IsSymbol(e Expr) bool {
	switch e.(type) {
	case Symbol, Dummy:
		return true
	}
	return false
}

// Expand distributes products over sums and multiplies out small positive
// integer powers of sums.
func Expand(e Expr) Expr {
	switch v := e.(type) {
	case *Add:
		terms := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			terms[i] = Expand(t)
		}
		return NewAdd(terms...)
	case *Mul:
		out := Expr(One)
		for _, a := range v.args {
			out = distribute(out, Expand(a))
		}
		return out
	case *Pow:
		base := Expand(v.base)
		exp := Expand(v.exp)
		if n, ok := exp.(Number); ok && n.IsInt() && n.Sign() > 0 {
			if _, isAdd := base.(*Add); isAdd && n.rat().Num().Int64() <= maxExpandPower {
				out := Expr(One)
				for i := int64(0); i < n.rat().Num().Int64(); i++ {
					out = distribute(out, base)
				}
				return out
			}
		}
		return NewPow(base, exp)
	}
	return e
}

// Simplify returns the canonical expanded form of e. Because every
// constructor already collects like terms and powers, expanding is enough to
// cancel ratios such as (2*x*m + x*m)/m.
func Simplify(e Expr) Expr {
	return Expand(e)
}

func distribute(a, b Expr) Expr {
	ta, tb := addTerms(a), addTerms(b)
	out := make([]Expr, 0, len(ta)*len(tb))
	for _, x := range ta {
		for _, y := range tb {
			out = append(out, NewMul(x, y))
		}
	}
	return NewAdd(out...)
}

func addTerms(e Expr) []Expr {
	if a, ok := e.(*Add); ok {
		return a.terms
	}
	return []Expr{e}
}

func rebuild(e Expr, args []Expr) Expr {
	switch e.(type) {
	case *Add:
		return NewAdd(args...)
	case *Mul:
		return NewMul(args...)
	case *Pow:
		return NewPow(args[0], args[1])
	}
	return e
}
