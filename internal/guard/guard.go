// Package guard runs expression transformations with units hidden behind
// anonymous placeholders, so the transformation sees them as plain variables
// it does not know about and leaves them intact.
package guard

import (
	"fmt"

	"numbasis/internal/expr"
	"numbasis/internal/units"
)

// Dummify replaces every quantity in an expression with the placeholder
// assigned to it for the current call.
type Dummify func(expr.Expr) expr.Expr

// MapFunc transforms an already dummified expression. It may call dummify on
// any further expressions it introduces.
type MapFunc func(dummify Dummify, e expr.Expr) expr.Expr

// WithoutUnits dummifies e, applies mapf and substitutes the placeholders back
// to their quantities.
func WithoutUnits(e expr.Expr, mapf MapFunc) expr.Expr {
	out, _ := WithoutUnitsErr(e, func(d Dummify, x expr.Expr) (expr.Expr, error) {
		return mapf(d, x), nil
	})
	return out
}

// WithoutUnitsErr is WithoutUnits for fallible transformations.
func WithoutUnitsErr(e expr.Expr, mapf func(Dummify, expr.Expr) (expr.Expr, error)) (expr.Expr, error) {
	t := newTable()
	dummify := func(x expr.Expr) expr.Expr {
		return expr.Replace(x, units.IsQuantity, t.placeholder)
	}
	out, err := mapf(dummify, dummify(e))
	if err != nil {
		return nil, err
	}
	return expr.Xreplace(out, t.reverse), nil
}

// table is the call-scoped bijection between quantities and placeholders.
type table struct {
	forward map[*units.Quantity]expr.Dummy
	reverse map[string]expr.Expr
}

func newTable() *table {
	return &table{
		forward: make(map[*units.Quantity]expr.Dummy),
		reverse: make(map[string]expr.Expr),
	}
}

func (t *table) placeholder(e expr.Expr) expr.Expr {
	q := e.(*units.Quantity)
	if d, ok := t.forward[q]; ok {
		return d
	}
	d := expr.NewDummy()
	if prev, taken := t.reverse[d.Key()]; taken {
		panic(fmt.Sprintf("guard: placeholder %s already stands for %s", d, prev))
	}
	t.forward[q] = d
	t.reverse[d.Key()] = q
	return d
}
