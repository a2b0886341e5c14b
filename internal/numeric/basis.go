package numeric

import (
	"fmt"

	"numbasis/internal/basis"
	"numbasis/internal/expr"
	"numbasis/internal/units"
)

// Basis pairs a unit system with a mapper and evaluates quantity-bearing
// expressions as numbers.
type Basis struct {
	mapper *QuantityMapper
	system *units.System
}

func NewBasis(sys *units.System, m *QuantityMapper) *Basis {
	return &Basis{mapper: m, system: sys}
}

// New returns a basis over sys with a fresh random mapper, or the unitary
// mapper when unitary is set.
func New(sys *units.System, unitary bool) *Basis {
	if unitary {
		return NewBasis(sys, Unitary())
	}
	return NewBasis(sys, Random())
}

func (b *Basis) Mapper() *QuantityMapper { return b.mapper }

func (b *Basis) System() *units.System { return b.system }

// NumericMap returns the value assigned to every base unit, keyed by name.
func (b *Basis) NumericMap() (map[string]float64, error) {
	out := make(map[string]float64)
	for _, q := range b.system.BaseUnits() {
		v, err := b.value(q)
		if err != nil {
			return nil, err
		}
		out[q.Name()] = v
	}
	return out, nil
}

// SymbBasis returns the substitution from base units to their values.
func (b *Basis) SymbBasis() (map[string]expr.Expr, error) {
	out := make(map[string]expr.Expr)
	for _, q := range b.system.BaseUnits() {
		v, err := b.value(q)
		if err != nil {
			return nil, err
		}
		out[q.Key()] = expr.Float(v)
	}
	return out, nil
}

func (b *Basis) value(q *units.Quantity) (float64, error) {
	dim, err := b.system.DimensionOf(q)
	if err != nil {
		return 0, err
	}
	return b.mapper.Map(q, dim), nil
}

// ToExpr decomposes e to base units and substitutes their values. The result
// is a numeric expression unless e contains free symbols.
func (b *Basis) ToExpr(e expr.Expr) (expr.Expr, error) {
	decomposed, err := basis.ToBasis(b.system, e)
	if err != nil {
		return nil, err
	}
	table, err := b.SymbBasis()
	if err != nil {
		return nil, err
	}
	return expr.Xreplace(decomposed, table), nil
}

// ToNumeric evaluates e, real when possible and complex otherwise.
func (b *Basis) ToNumeric(e expr.Expr) (Scalar, error) {
	return ToNumericAs(b, e, FloatOrComplex)
}

// ToNumericAs evaluates e and coerces the result with as.
func ToNumericAs[T any](b *Basis, e expr.Expr, as Coercer[T]) (T, error) {
	var zero T
	v, err := b.ToExpr(e)
	if err != nil {
		return zero, err
	}
	out, err := as(v)
	if err != nil {
		return zero, fmt.Errorf("evaluate %s: %w", e, err)
	}
	return out, nil
}

// Index is the slice-style shorthand b[e:as], equivalent to ToNumericAs.
func Index[T any](b *Basis, e expr.Expr, as Coercer[T]) (T, error) {
	return ToNumericAs(b, e, as)
}

// ToScalar interprets numeric as a multiple of unitsOf: numeric divided by
// the value of one unitsOf in this basis.
func (b *Basis) ToScalar(unitsOf expr.Expr, numeric Scalar) (Scalar, error) {
	return ToScalarAs(b, unitsOf, numeric.Expr(), FloatOrComplex)
}

// ToScalarExpr is ToScalar for a numeric value still in expression form.
func (b *Basis) ToScalarExpr(unitsOf, numeric expr.Expr) (expr.Expr, error) {
	unit, err := b.ToExpr(unitsOf)
	if err != nil {
		return nil, err
	}
	return expr.Div(numeric, unit), nil
}

// ToScalarAs is ToScalarExpr followed by coercion with as.
func ToScalarAs[T any](b *Basis, unitsOf, numeric expr.Expr, as Coercer[T]) (T, error) {
	var zero T
	v, err := b.ToScalarExpr(unitsOf, numeric)
	if err != nil {
		return zero, err
	}
	out, err := as(v)
	if err != nil {
		return zero, fmt.Errorf("scalar in %s: %w", unitsOf, err)
	}
	return out, nil
}

// ToSymb re-attaches units: unitsOf times ToScalar(unitsOf, numeric).
func (b *Basis) ToSymb(unitsOf expr.Expr, numeric Scalar) (expr.Expr, error) {
	v, err := b.ToScalarExpr(unitsOf, numeric.Expr())
	if err != nil {
		return nil, err
	}
	return expr.NewMul(unitsOf, v), nil
}
