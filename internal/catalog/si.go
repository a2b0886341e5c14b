package catalog

import (
	"fmt"
	"sync"

	"numbasis/internal/expr"
	"numbasis/internal/units"
)

// Catalog is a unit system together with its named quantities.
type Catalog struct {
	Registry *units.Registry
	System   *units.System

	// Base units
	Meter, Kilogram, Second, Ampere, Kelvin, Mole, Candela *units.Quantity

	// Derived units
	Gram, Newton, Joule, Watt, Pascal, Hertz, Coulomb, Volt, Ohm, Farad, Henry *units.Quantity

	Minute, Hour, Liter, Kilometer, Centimeter, Millimeter, Millisecond *units.Quantity

	Radian, Degree, Percent *units.Quantity

	// Engineering units
	Micronewton, Millinewton, Millivolt, Kilohertz, Kiloohm, Milliohm, Millihenry *units.Quantity

	RPM, RPS, RPMS *units.Quantity
}

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
)

// Default returns the process-wide SI catalog. Its registry freezes on first
// use, so definitions must be added to a catalog from NewSI instead.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := NewSI()
		if err != nil {
			panic(fmt.Sprintf("catalog: building SI: %v", err))
		}
		defaultCat = c
	})
	return defaultCat
}

type builder struct {
	reg *units.Registry
	err error
}

func (b *builder) rel(name string, factor, ref expr.Expr, opts ...units.QuantityOption) *units.Quantity {
	q, err := b.reg.Relative(name, factor, ref, opts...)
	if err != nil {
		if b.err == nil {
			b.err = err
		}
		return units.NewQuantity(name, opts...)
	}
	return q
}

func (b *builder) prefixed(p units.Prefix, unit *units.Quantity) *units.Quantity {
	q, err := b.reg.WithPrefix(p, unit)
	if err != nil {
		if b.err == nil {
			b.err = err
		}
		return units.NewQuantity(p.Name + unit.Name())
	}
	return q
}

// NewSI builds a fresh SI catalog on its own registry.
func NewSI() (*Catalog, error) {
	reg := units.NewRegistry()
	c := &Catalog{Registry: reg}

	c.Meter = units.NewQuantity("meter", units.WithAbbrev("m"), units.WithDimension(units.Length))
	c.Kilogram = units.NewQuantity("kilogram", units.WithAbbrev("kg"), units.WithDimension(units.Mass))
	c.Second = units.NewQuantity("second", units.WithAbbrev("s"), units.WithDimension(units.Time))
	c.Ampere = units.NewQuantity("ampere", units.WithAbbrev("A"), units.WithDimension(units.Current))
	c.Kelvin = units.NewQuantity("kelvin", units.WithAbbrev("K"), units.WithDimension(units.Temperature))
	c.Mole = units.NewQuantity("mole", units.WithAbbrev("mol"), units.WithDimension(units.Amount))
	c.Candela = units.NewQuantity("candela", units.WithAbbrev("cd"), units.WithDimension(units.LuminousIntensity))

	sys, err := units.NewSystem("SI", reg,
		[]*units.Quantity{c.Meter, c.Kilogram, c.Second, c.Ampere, c.Kelvin, c.Mole, c.Candela},
		units.WithDimensionless(units.Angle))
	if err != nil {
		return nil, err
	}
	c.System = sys

	b := &builder{reg: reg}
	one := expr.One
	m, kg, s, A := c.Meter, c.Kilogram, c.Second, c.Ampere

	c.Gram = b.rel("gram", expr.Rat(1, 1000), kg, units.WithAbbrev("g"))
	c.Newton = b.rel("newton", one, expr.NewMul(kg, m, expr.Powi(s, -2)), units.WithAbbrev("N"))
	c.Joule = b.rel("joule", one, expr.NewMul(c.Newton, m), units.WithAbbrev("J"))
	c.Watt = b.rel("watt", one, expr.Div(c.Joule, s), units.WithAbbrev("W"))
	c.Pascal = b.rel("pascal", one, expr.Div(c.Newton, expr.Powi(m, 2)), units.WithAbbrev("Pa"))
	c.Hertz = b.rel("hertz", one, expr.Powi(s, -1), units.WithAbbrev("Hz"))
	c.Coulomb = b.rel("coulomb", one, expr.NewMul(A, s), units.WithAbbrev("C"))
	c.Volt = b.rel("volt", one, expr.Div(c.Joule, c.Coulomb), units.WithAbbrev("V"))
	c.Ohm = b.rel("ohm", one, expr.Div(c.Volt, A), units.WithAbbrev("ohm"), units.WithLaTeX(`\Omega`))
	c.Farad = b.rel("farad", one, expr.Div(c.Coulomb, c.Volt), units.WithAbbrev("F"))
	c.Henry = b.rel("henry", one, expr.Div(expr.NewMul(c.Volt, s), A), units.WithAbbrev("H"))

	c.Minute = b.rel("minute", expr.Int(60), s, units.WithAbbrev("min"))
	c.Hour = b.rel("hour", expr.Int(60), c.Minute, units.WithAbbrev("h"))
	c.Liter = b.rel("liter", expr.Rat(1, 1000), expr.Powi(m, 3), units.WithAbbrev("L"))
	c.Kilometer = b.prefixed(units.Kilo, m)
	c.Centimeter = b.prefixed(units.Centi, m)
	c.Millimeter = b.prefixed(units.Milli, m)
	c.Millisecond = b.prefixed(units.Milli, s)

	c.Radian = units.NewQuantity("radian", units.WithAbbrev("rad"), units.WithDimension(units.Angle))
	if err := reg.SetScale(c.Radian, one, one); err != nil && b.err == nil {
		b.err = err
	}
	c.Degree = b.rel("degree", expr.Div(expr.Pi, expr.Int(180)), c.Radian, units.WithAbbrev("deg"), units.WithLaTeX(`^\circ`))
	c.Percent = b.rel("percent", expr.Rat(1, 100), one, units.WithLaTeX(`\%`))

	c.Micronewton = b.prefixed(units.Micro, c.Newton)
	c.Millinewton = b.prefixed(units.Milli, c.Newton)
	c.Millivolt = b.prefixed(units.Milli, c.Volt)
	c.Kilohertz = b.prefixed(units.Kilo, c.Hertz)
	c.Kiloohm = b.prefixed(units.Kilo, c.Ohm)
	c.Milliohm = b.prefixed(units.Milli, c.Ohm)
	c.Millihenry = b.prefixed(units.Milli, c.Henry)
	c.RPM = b.rel("rpm", expr.Rat(1, 60), expr.Powi(s, -1))

	// Angular frequency: rad/s is not Hz, a full turn is 2*pi rad.
	c.RPS = b.rel("radians_per_second", expr.Div(one, expr.NewMul(expr.Int(2), expr.Pi)), expr.Powi(s, -1),
		units.WithAbbrev("rps"), units.WithLaTeX(`\text{rad/s}`))
	c.RPMS = b.rel("radians_per_millisecond", units.Kilo.Factor, c.RPS,
		units.WithAbbrev("rpms"), units.WithLaTeX(`\text{rad/ms}`))

	if b.err != nil {
		return nil, b.err
	}
	return c, nil
}

// Lookup finds a quantity by name or abbreviation.
func (c *Catalog) Lookup(name string) (*units.Quantity, bool) {
	return c.Registry.Lookup(name)
}
