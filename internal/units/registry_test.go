package units

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"numbasis/internal/expr"
)

func TestRegistry_SetScaleOnce(t *testing.T) {
	reg := NewRegistry()
	s := NewQuantity("second", WithDimension(Time))
	minute := NewQuantity("minute")

	require.NoError(t, reg.SetScale(minute, expr.Int(60), s))
	err := reg.SetScale(minute, expr.Int(61), s)
	assert.ErrorIs(t, err, ErrScaleRedefined)
}

func TestRegistry_RejectsCycles(t *testing.T) {
	reg := NewRegistry()
	a := NewQuantity("a")
	b := NewQuantity("b")
	c := NewQuantity("c")

	require.NoError(t, reg.SetScale(a, expr.Int(2), b))
	require.NoError(t, reg.SetScale(b, expr.Int(3), c))

	assert.ErrorIs(t, reg.SetScale(c, expr.Int(5), a), ErrScaleCycle)

	self := NewQuantity("self")
	assert.ErrorIs(t, reg.SetScale(self, expr.Int(2), self), ErrScaleCycle)
}

func TestRegistry_RejectsUnitsInFactor(t *testing.T) {
	reg := NewRegistry()
	m := NewQuantity("meter", WithDimension(Length))
	assert.Error(t, reg.SetScale(NewQuantity("odd"), m, m))
}

func TestRegistry_DuplicateNames(t *testing.T) {
	reg := NewRegistry()
	q := NewQuantity("meter", WithAbbrev("m"))
	require.NoError(t, reg.Register(q, q))
	assert.ErrorIs(t, reg.Register(NewQuantity("meter")), ErrDuplicateQuantity)
}

func TestRegistry_FreezesOnFirstConversion(t *testing.T) {
	f := newFixture(t)
	assert.False(t, f.reg.Frozen())

	_, err := f.sys.Expand(f.km)
	require.NoError(t, err)
	assert.True(t, f.reg.Frozen())

	_, err = f.reg.Relative("mile", expr.Int(1609), f.m)
	assert.ErrorIs(t, err, ErrRegistryFrozen)
}

func TestRegistry_Lookup(t *testing.T) {
	f := newFixture(t)

	q, ok := f.reg.Lookup("kilometer")
	require.True(t, ok)
	assert.Same(t, f.km, q)

	q, ok = f.reg.Lookup("km")
	require.True(t, ok)
	assert.Same(t, f.km, q)

	_, ok = f.reg.Lookup("parsec")
	assert.False(t, ok)
}

func TestRegistry_Graph(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, []*Quantity{f.minute}, f.reg.Dependencies(f.hour))
	assert.Equal(t, []*Quantity{f.hour}, f.reg.Dependents(f.minute))
	assert.ElementsMatch(t, []*Quantity{f.kg, f.m, f.s}, f.reg.Dependencies(f.n))
}

func TestRegistry_WithPrefix(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, "kilometer", f.km.Name())
	assert.Equal(t, "km", f.km.Abbrev())
	assert.Equal(t, `\mathrm{k} {\text{m}}`, f.km.LaTeX())
}
