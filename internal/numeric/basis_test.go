package numeric

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"numbasis/internal/catalog"
	"numbasis/internal/expr"
	"numbasis/internal/units"
)

func TestBasis_RoundTrip(t *testing.T) {
	c := catalog.Default()
	for _, seed := range []uint64{1, 2, 0xdeadbeef} {
		b := NewBasis(c.System, NewMapper(seed))
		for _, u := range c.System.BaseUnits() {
			for _, coeff := range []float64{1, 2.5, -3, 1e-3, 12345.678} {
				n, err := b.ToNumeric(expr.NewMul(expr.Float(coeff), u))
				require.NoError(t, err)

				got, err := b.ToScalar(u, n)
				require.NoError(t, err)
				assert.InEpsilon(t, coeff, got.Real(), 1e-12, "%s seed=%d", u.Name(), seed)
			}
		}
	}
}

func TestBasis_ToNumeric_BaseUnitValues(t *testing.T) {
	c := catalog.Default()
	b := NewBasis(c.System, NewMapper(99))

	values, err := b.NumericMap()
	require.NoError(t, err)
	require.Len(t, values, 7)

	n, err := b.ToNumeric(c.Newton)
	require.NoError(t, err)
	want := values["kilogram"] * values["meter"] / (values["second"] * values["second"])
	assert.InEpsilon(t, want, n.Real(), 1e-12)

	n, err = b.ToNumeric(c.Kilometer)
	require.NoError(t, err)
	assert.InEpsilon(t, 1000*values["meter"], n.Real(), 1e-12)

	symb, err := b.SymbBasis()
	require.NoError(t, err)
	assert.True(t, expr.Equal(expr.Float(values["meter"]), symb[c.Meter.Key()]))
}

func TestBasis_Unitary(t *testing.T) {
	c := catalog.Default()
	b := New(c.System, true)
	assert.True(t, b.Mapper().IsUnitary())

	t.Run("Base units only", func(t *testing.T) {
		e := expr.NewMul(expr.Int(3), c.Meter, c.Kilogram, expr.Powi(c.Second, -1))
		n, err := b.ToNumeric(e)
		require.NoError(t, err)
		assert.Equal(t, Real(3), n)
	})

	t.Run("Dimensionless ratio", func(t *testing.T) {
		n, err := b.ToNumeric(expr.Div(c.Kilometer, c.Meter))
		require.NoError(t, err)
		assert.Equal(t, Real(1000), n)

		n, err = b.ToNumeric(expr.NewMul(expr.Int(25), c.Percent))
		require.NoError(t, err)
		assert.Equal(t, Real(0.25), n)
	})
}

func TestBasis_SameSeedAgrees(t *testing.T) {
	c := catalog.Default()
	e := expr.Div(expr.NewMul(c.Millivolt, c.RPMS), c.Kiloohm)

	a, err := NewBasis(c.System, NewMapper(5)).ToNumeric(e)
	require.NoError(t, err)
	b, err := NewBasis(c.System, NewMapper(5)).ToNumeric(e)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestBasis_DimensionalBugDetection(t *testing.T) {
	c := catalog.Default()
	mass := expr.NewMul(expr.Int(2), c.Kilogram)
	accel := expr.NewMul(expr.Int(3), c.Meter, expr.Powi(c.Second, -2))
	broken := expr.NewMul(expr.Int(3), c.Second, expr.Powi(c.Second, -2))

	scalar := func(b *Basis, e expr.Expr) float64 {
		n, err := b.ToNumeric(e)
		require.NoError(t, err)
		s, err := b.ToScalar(c.Newton, n)
		require.NoError(t, err)
		v, err := s.Float64()
		require.NoError(t, err)
		return v
	}

	b1 := NewBasis(c.System, NewMapper(1))
	b2 := NewBasis(c.System, NewMapper(2))

	correct := expr.NewMul(mass, accel)
	assert.InEpsilon(t, 6.0, scalar(b1, correct), 1e-12)
	assert.InEpsilon(t, scalar(b1, correct), scalar(b2, correct), 1e-12)

	wrong := expr.NewMul(mass, broken)
	w1, w2 := scalar(b1, wrong), scalar(b2, wrong)
	assert.Greater(t, math.Abs(w1-w2)/math.Abs(w1), 1e-6)
}

func TestBasis_ComplexResults(t *testing.T) {
	c := catalog.Default()
	b := NewBasis(c.System, NewMapper(3))
	values, err := b.NumericMap()
	require.NoError(t, err)

	e := expr.Sqrt(expr.NewMul(expr.Int(-4), expr.Powi(c.Meter, 2)))

	n, err := b.ToNumeric(e)
	require.NoError(t, err)
	assert.False(t, n.IsReal())
	assert.InEpsilon(t, 2*values["meter"], n.Imag(), 1e-9)

	_, err = ToNumericAs(b, e, Float64)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCoercion)

	var coercion *CoercionError
	require.True(t, errors.As(err, &coercion))
	assert.Equal(t, "float64", coercion.Type)

	z, err := ToNumericAs(b, expr.NewMul(expr.I, c.Meter), Complex128)
	require.NoError(t, err)
	assert.InEpsilon(t, values["meter"], imag(z), 1e-12)
}

func TestIndex(t *testing.T) {
	c := catalog.Default()
	b := New(c.System, true)

	n, err := Index(b, expr.NewMul(expr.Int(3), expr.Div(c.Kilometer, c.Meter)), Int64)
	require.NoError(t, err)
	assert.Equal(t, int64(3000), n)

	_, err = Index(b, expr.Div(c.Meter, c.Kilometer), Int64)
	assert.ErrorIs(t, err, ErrCoercion)

	f, err := Index(b, expr.Div(c.Meter, c.Kilometer), Float64)
	require.NoError(t, err)
	assert.Equal(t, 0.001, f)
}

func TestBasis_ToSymb(t *testing.T) {
	c := catalog.Default()
	b := NewBasis(c.System, NewMapper(11))

	n, err := b.ToNumeric(expr.NewMul(expr.Int(5), c.Newton))
	require.NoError(t, err)

	got, err := b.ToSymb(c.Newton, n)
	require.NoError(t, err)
	assert.True(t, expr.Has(got, units.IsQuantity))

	coeff, err := Float64(expr.Div(got, c.Newton))
	require.NoError(t, err)
	assert.InEpsilon(t, 5.0, coeff, 1e-12)

	v, err := ToScalarAs(b, c.Millinewton, n.Expr(), Float64)
	require.NoError(t, err)
	assert.InEpsilon(t, 5000.0, v, 1e-12)
}

func TestBasis_Errors(t *testing.T) {
	c := catalog.Default()
	b := NewBasis(c.System, NewMapper(1))

	_, err := b.ToNumeric(expr.NewMul(expr.NewSymbol("x"), c.Meter))
	assert.ErrorIs(t, err, expr.ErrNotNumeric)

	_, err = b.ToNumeric(units.NewQuantity("cubit"))
	assert.ErrorIs(t, err, units.ErrUndefinedScale)
}
