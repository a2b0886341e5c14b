package units

import (
	"fmt"

	"numbasis/internal/expr"
)

// Quantity is a named unit of measurement. It is an opaque, strictly positive
// leaf of the expression tree, identified by its name.
//
// A quantity either declares its dimension (base units, radians) or takes it
// from the scale relation registered for it in a Registry.
type Quantity struct {
	name   string
	abbrev string
	latex  string
	dim    *Dimension
}

type QuantityOption func(*Quantity)

func WithAbbrev(abbrev string) QuantityOption {
	return func(q *Quantity) { q.abbrev = abbrev }
}

func WithLaTeX(latex string) QuantityOption {
	return func(q *Quantity) { q.latex = latex }
}

func WithDimension(d Dimension) QuantityOption {
	return func(q *Quantity) { q.dim = &d }
}

func NewQuantity(name string, opts ...QuantityOption) *Quantity {
	q := &Quantity{name: name}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

func (q *Quantity) Name() string { return q.name }

// Abbrev is the short display form; it defaults to the name.
func (q *Quantity) Abbrev() string {
	if q.abbrev == "" {
		return q.name
	}
	return q.abbrev
}

// LaTeX is the display form for formatted output.
func (q *Quantity) LaTeX() string {
	if q.latex == "" {
		return fmt.Sprintf(`\text{%s}`, q.Abbrev())
	}
	return q.latex
}

// DeclaredDimension returns the dimension given at construction, if any.
func (q *Quantity) DeclaredDimension() (Dimension, bool) {
	if q.dim == nil {
		return Dimension{}, false
	}
	return *q.dim, true
}

func (q *Quantity) Key() string { return "q:" + q.name }

// String brackets the name so that a quantity never prints like a symbol.
func (q *Quantity) String() string { return "[" + q.name + "]" }

func (q *Quantity) IsPositive() bool { return true }

// IsQuantity reports whether e is a unit leaf.
func IsQuantity(e expr.Expr) bool {
	_, ok := e.(*Quantity)
	return ok
}

// Quantities returns the distinct quantities appearing in e.
func Quantities(e expr.Expr) []*Quantity {
	var out []*Quantity
	for _, a := range expr.Atoms(e) {
		if q, ok := a.(*Quantity); ok {
			out = append(out, q)
		}
	}
	return out
}

// Prefix is a decimal scale prefix such as kilo or micro.
type Prefix struct {
	Name   string
	Abbrev string
	LaTeX  string
	Factor expr.Number
}

var (
	Giga  = Prefix{Name: "giga", Abbrev: "G", LaTeX: "G", Factor: expr.Int(1_000_000_000)}
	Mega  = Prefix{Name: "mega", Abbrev: "M", LaTeX: "M", Factor: expr.Int(1_000_000)}
	Kilo  = Prefix{Name: "kilo", Abbrev: "k", LaTeX: "k", Factor: expr.Int(1000)}
	Centi = Prefix{Name: "centi", Abbrev: "c", LaTeX: "c", Factor: expr.Rat(1, 100)}
	Milli = Prefix{Name: "milli", Abbrev: "m", LaTeX: "m", Factor: expr.Rat(1, 1000)}
	Micro = Prefix{Name: "micro", Abbrev: "mu", LaTeX: `\mu`, Factor: expr.Rat(1, 1_000_000)}
	Nano  = Prefix{Name: "nano", Abbrev: "n", LaTeX: "n", Factor: expr.Rat(1, 1_000_000_000)}
)

// Prefixes lists the known prefixes by name.
var Prefixes = map[string]Prefix{
	Giga.Name: Giga, Mega.Name: Mega, Kilo.Name: Kilo, Centi.Name: Centi,
	Milli.Name: Milli, Micro.Name: Micro, Nano.Name: Nano,
}
