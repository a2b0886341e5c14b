package guard

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"numbasis/internal/catalog"
	"numbasis/internal/expr"
	"numbasis/internal/units"
)

func identity(_ Dummify, e expr.Expr) expr.Expr { return e }

func TestWithoutUnits_Identity(t *testing.T) {
	c := catalog.Default()
	x := expr.NewSymbol("x")

	for _, e := range []expr.Expr{
		expr.Int(3),
		c.Meter,
		expr.NewMul(x, c.Newton, expr.Powi(c.Second, -1)),
		expr.NewAdd(expr.NewMul(x, c.Meter), c.Kilometer),
		expr.NewPow(c.Meter, x),
	} {
		got := WithoutUnits(e, identity)
		assert.True(t, expr.Equal(e, got), "got %s, want %s", got, e)
	}
}

func TestWithoutUnits_HidesQuantities(t *testing.T) {
	c := catalog.Default()
	x := expr.NewSymbol("x")
	y := expr.NewSymbol("y")
	e := expr.NewAdd(expr.NewMul(x, c.Meter), expr.NewMul(y, c.Meter, c.Second))

	got := WithoutUnits(e, func(dummify Dummify, d expr.Expr) expr.Expr {
		assert.False(t, expr.Has(d, units.IsQuantity))

		var placeholders []expr.Expr
		for _, a := range expr.Atoms(d) {
			if _, ok := a.(expr.Dummy); ok {
				placeholders = append(placeholders, a)
			}
		}
		assert.Len(t, placeholders, 2, "one placeholder per distinct quantity")

		// Substitute x and introduce a new quantity through dummify.
		out := expr.Subs(d, x, expr.Int(2))
		return expr.NewAdd(out, dummify(expr.NewMul(expr.Int(3), c.Meter)))
	})

	want := expr.NewAdd(expr.NewMul(expr.Int(5), c.Meter), expr.NewMul(y, c.Meter, c.Second))
	assert.True(t, expr.Equal(want, got), "got %s, want %s", got, want)
}

func TestWithoutUnits_PlaceholdersAreFresh(t *testing.T) {
	c := catalog.Default()
	var first, second expr.Expr
	WithoutUnits(c.Meter, func(_ Dummify, d expr.Expr) expr.Expr {
		first = d
		return d
	})
	WithoutUnits(c.Meter, func(_ Dummify, d expr.Expr) expr.Expr {
		second = d
		return d
	})
	assert.False(t, expr.Equal(first, second))
}

func TestWithoutUnitsErr(t *testing.T) {
	c := catalog.Default()
	boom := errors.New("boom")

	_, err := WithoutUnitsErr(c.Meter, func(Dummify, expr.Expr) (expr.Expr, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := WithoutUnitsErr(expr.NewMul(expr.Int(4), c.Meter), func(_ Dummify, d expr.Expr) (expr.Expr, error) {
		return expr.Simplify(expr.Div(d, expr.Int(2))), nil
	})
	require.NoError(t, err)
	assert.True(t, expr.Equal(expr.NewMul(expr.Int(2), c.Meter), got))
}
