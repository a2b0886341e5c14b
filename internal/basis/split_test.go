package basis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"numbasis/internal/catalog"
	"numbasis/internal/expr"
	"numbasis/internal/units"
)

func TestSplitUnit(t *testing.T) {
	c := catalog.Default()
	m, s := c.Meter, c.Second
	x := expr.NewSymbol("x")
	sum := expr.NewAdd(c.Kilometer, m)

	tests := []struct {
		name       string
		in         expr.Expr
		loose      bool
		wantFactor expr.Expr
		wantUnit   expr.Expr
	}{
		{"Number", expr.Int(5), false, expr.Int(5), expr.One},
		{"Quantity", m, false, expr.One, m},
		{"Product", expr.NewMul(expr.Int(3), x, m, expr.Powi(s, -1)), false,
			expr.NewMul(expr.Int(3), x), expr.Div(m, s)},
		{"Rational power", expr.Sqrt(expr.NewMul(expr.Int(4), m)), false,
			expr.Int(2), expr.Sqrt(m)},
		{"Sum strict", expr.NewMul(expr.Int(2), sum), false, expr.Int(2), sum},
		{"Sum loose", expr.NewMul(expr.Int(2), sum), true, expr.NewMul(expr.Int(2), sum), expr.One},
		{"Symbolic exponent strict", expr.NewPow(m, x), false, expr.One, expr.NewPow(m, x)},
		{"Symbolic exponent loose", expr.NewMul(s, expr.NewPow(m, x)), true, expr.NewPow(m, x), s},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			factor, unit := SplitUnit(tt.in, tt.loose)
			assert.True(t, expr.Equal(tt.wantFactor, factor), "factor %s, want %s", factor, tt.wantFactor)
			assert.True(t, expr.Equal(tt.wantUnit, unit), "unit %s, want %s", unit, tt.wantUnit)
			assert.True(t, expr.Equal(tt.in, expr.NewMul(factor, unit)))
			if !tt.loose {
				assert.False(t, expr.Has(factor, units.IsQuantity))
			}
		})
	}
}

func TestSplitUnitForm(t *testing.T) {
	c := catalog.Default()

	f := SplitUnitForm(expr.NewMul(expr.Int(3), c.Newton), true)
	assert.Equal(t, "(3)*[newton]", f.String())
	assert.True(t, expr.Equal(expr.NewMul(expr.Int(3), c.Newton), f.Expr()))

	assert.Equal(t, "[newton]", SplitUnitForm(c.Newton, true).String())
	assert.Equal(t, "7", SplitUnitForm(expr.Int(7), false).String())
}
