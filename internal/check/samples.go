package check

import (
	"numbasis/internal/catalog"
	"numbasis/internal/expr"
)

// Samples returns a small set of engineering formulas, including one with a
// deliberate dimensional mistake.
func Samples(c *catalog.Catalog) []Formula {
	kg, m, s := c.Kilogram, c.Meter, c.Second

	return []Formula{
		{
			Name:   "newton-second-law",
			Expr:   expr.NewMul(expr.Int(2), kg, expr.Int(3), m, expr.Powi(s, -2)),
			Target: c.Newton,
		},
		{
			// time where length belongs
			Name:   "newton-second-law-broken",
			Expr:   expr.NewMul(expr.Int(2), kg, expr.Int(3), s, expr.Powi(s, -2)),
			Target: c.Newton,
		},
		{
			Name:   "rpm-period",
			Expr:   expr.Div(expr.One, expr.NewMul(expr.Int(120), c.RPM)),
			Target: s,
		},
		{
			Name:   "ohms-law",
			Expr:   expr.Div(expr.NewMul(expr.Int(5), c.Millivolt), expr.NewMul(expr.Int(2), c.Kiloohm)),
			Target: c.Ampere,
		},
		{
			Name: "lc-resonance",
			Expr: expr.Div(expr.One, expr.NewMul(expr.Int(2), expr.Pi,
				expr.Sqrt(expr.NewMul(c.Millihenry, expr.Rat(1, 1_000_000), c.Farad)))),
			Target: c.Kilohertz,
		},
		{
			Name:   "slope-rise",
			Expr:   expr.NewMul(expr.Int(15), c.Percent, expr.Int(2), c.Kilometer),
			Target: m,
		},
	}
}
