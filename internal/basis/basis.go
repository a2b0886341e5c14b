// Package basis rewrites quantity-bearing expressions in terms of a unit
// system's base units.
package basis

import (
	"numbasis/internal/expr"
	"numbasis/internal/units"
)

// ToBasis replaces every quantity in e by its equivalent in the base units of
// sys. The result contains only numbers, constants, free symbols and base units.
//
// Each quantity is converted to the base units plus the literal 1: the
// conversion primitive has no path for dimensionless quantities such as
// radian or percent unless a dimensionless target is offered.
func ToBasis(sys *units.System, e expr.Expr) (expr.Expr, error) {
	base := sys.BaseUnits()
	targets := make([]expr.Expr, 0, len(base)+1)
	for _, b := range base {
		targets = append(targets, b)
	}
	targets = append(targets, expr.One)

	return expr.ReplaceErr(e, units.IsQuantity, func(q expr.Expr) (expr.Expr, error) {
		return sys.ConvertTo(q, targets)
	})
}

// SafeConvert expresses e in units of target by decomposing both to base
// units, simplifying their ratio and multiplying target back in. It avoids
// converting directly between two non-base quantities.
func SafeConvert(sys *units.System, e, target expr.Expr) (expr.Expr, error) {
	num, err := ToBasis(sys, e)
	if err != nil {
		return nil, err
	}
	den, err := ToBasis(sys, target)
	if err != nil {
		return nil, err
	}
	return expr.NewMul(expr.Simplify(expr.Div(num, den)), target), nil
}
