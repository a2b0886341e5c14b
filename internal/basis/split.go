package basis

import (
	"numbasis/internal/expr"
	"numbasis/internal/units"
)

// SplitUnit splits e into (factor, unit) with factor*unit == e.
//
// It recurses into products and into powers with numeric exponents. Any other
// quantity-bearing shape (sums, symbolic exponents) is opaque: in strict mode
// it becomes the unit part, which keeps factor free of quantities; with loose
// set it stays in the factor part, so only the units that could be pulled out
// are moved to unit.
func SplitUnit(e expr.Expr, loose bool) (factor, unit expr.Expr) {
	if !expr.Has(e, units.IsQuantity) {
		return e, expr.One
	}
	switch v := e.(type) {
	case *units.Quantity:
		return expr.One, v
	case *expr.Mul:
		args := v.Factors()
		factors := make([]expr.Expr, len(args))
		unitParts := make([]expr.Expr, len(args))
		for i, a := range args {
			factors[i], unitParts[i] = SplitUnit(a, loose)
		}
		return expr.NewMul(factors...), expr.NewMul(unitParts...)
	case *expr.Pow:
		if _, ok := expr.AsNumber(v.Exp()); ok {
			f, u := SplitUnit(v.Base(), loose)
			return expr.NewPow(f, v.Exp()), expr.NewPow(u, v.Exp())
		}
	}
	if loose {
		return e, expr.One
	}
	return expr.One, e
}

// Form is an unevaluated factor*unit product.
type Form struct {
	Factor expr.Expr
	Unit   expr.Expr
}

// SplitUnitForm returns e as an explicit factor/unit pair; loose splitting is
// the usual choice for display.
func SplitUnitForm(e expr.Expr, loose bool) Form {
	f, u := SplitUnit(e, loose)
	return Form{Factor: f, Unit: u}
}

// Expr multiplies the form back together.
func (f Form) Expr() expr.Expr { return expr.NewMul(f.Factor, f.Unit) }

func (f Form) String() string {
	if expr.Equal(f.Unit, expr.One) {
		return f.Factor.String()
	}
	if expr.Equal(f.Factor, expr.One) {
		return f.Unit.String()
	}
	return "(" + f.Factor.String() + ")*" + f.Unit.String()
}
