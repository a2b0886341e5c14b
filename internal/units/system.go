package units

import (
	"fmt"
	"math/big"

	"numbasis/internal/expr"
)

// System is a named choice of one base unit per fundamental dimension, backed
// by a Registry holding the derivation rules for every other quantity.
type System struct {
	name     string
	registry *Registry
	base     []*Quantity
	dims     []string
	baseOf   map[string]*Quantity
	reduced  map[string]bool
}

type SystemOption func(*System)

// WithDimensionless declares fundamental dimensions that the system treats as
// dimensionless, such as angle in SI.
func WithDimensionless(ds ...Dimension) SystemOption {
	return func(s *System) {
		for _, d := range ds {
			for name := range d.Vector() {
				s.reduced[name] = true
			}
		}
	}
}

// NewSystem builds a unit system. Every base unit must declare a single
// fundamental dimension, and no two base units may share one.
func NewSystem(name string, reg *Registry, base []*Quantity, opts ...SystemOption) (*System, error) {
	s := &System{
		name:     name,
		registry: reg,
		baseOf:   make(map[string]*Quantity),
		reduced:  make(map[string]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	for _, q := range base {
		d, ok := q.DeclaredDimension()
		if !ok {
			return nil, fmt.Errorf("base unit %s has no declared dimension", q.name)
		}
		vec := d.Vector()
		if len(vec) != 1 {
			return nil, fmt.Errorf("base unit %s must have a single fundamental dimension, got %s", q.name, d)
		}
		for dim, exp := range vec {
			if exp.Cmp(big.NewRat(1, 1)) != 0 {
				return nil, fmt.Errorf("base unit %s must have unit exponent, got %s", q.name, d)
			}
			if other, dup := s.baseOf[dim]; dup {
				return nil, fmt.Errorf("base units %s and %s share dimension %s", other.name, q.name, dim)
			}
			s.baseOf[dim] = q
			s.dims = append(s.dims, dim)
		}
		if err := reg.Register(q); err != nil {
			return nil, err
		}
		s.base = append(s.base, q)
	}
	return s, nil
}

func (s *System) Name() string { return s.name }

func (s *System) Registry() *Registry { return s.registry }

// BaseUnits returns the ordered base units.
func (s *System) BaseUnits() []*Quantity {
	return append([]*Quantity(nil), s.base...)
}

func (s *System) IsBase(q *Quantity) bool {
	for _, b := range s.base {
		if b == q {
			return true
		}
	}
	return false
}

// DimensionOf computes the full dimension of e. Numbers, constants and free
// symbols are dimensionless; the terms of a sum must agree.
func (s *System) DimensionOf(e expr.Expr) (Dimension, error) {
	return s.dimensionOf(e, make(map[*Quantity]bool))
}

func (s *System) dimensionOf(e expr.Expr, visiting map[*Quantity]bool) (Dimension, error) {
	switch v := e.(type) {
	case *Quantity:
		if d, ok := v.DeclaredDimension(); ok {
			return d, nil
		}
		rel, ok := s.registry.relation(v)
		if !ok {
			return Dimension{}, &ConversionError{Expr: v.name, System: s.name, Err: ErrUndefinedScale}
		}
		if visiting[v] {
			return Dimension{}, &ConversionError{Expr: v.name, System: s.name, Err: ErrScaleCycle}
		}
		visiting[v] = true
		defer delete(visiting, v)
		return s.dimensionOf(rel.ref, visiting)
	case *expr.Mul:
		out := Dimensionless
		for _, f := range v.Factors() {
			d, err := s.dimensionOf(f, visiting)
			if err != nil {
				return Dimension{}, err
			}
			out = out.Mul(d)
		}
		return out, nil
	case *expr.Pow:
		d, err := s.dimensionOf(v.Base(), visiting)
		if err != nil {
			return Dimension{}, err
		}
		if d.IsDimensionless() {
			return d, nil
		}
		n, ok := expr.AsNumber(v.Exp())
		if !ok {
			return Dimension{}, &ConversionError{Expr: e.String(), System: s.name,
				Err: fmt.Errorf("%w: non-numeric exponent on dimensional base", ErrIncompatible)}
		}
		return d.Pow(n), nil
	case *expr.Add:
		terms := v.Terms()
		first, err := s.dimensionOf(terms[0], visiting)
		if err != nil {
			return Dimension{}, err
		}
		for _, t := range terms[1:] {
			d, err := s.dimensionOf(t, visiting)
			if err != nil {
				return Dimension{}, err
			}
			if !s.sameVector(first, d) {
				return Dimension{}, &ConversionError{Expr: e.String(), System: s.name,
					Err: fmt.Errorf("%w: %s + %s", ErrIncompatible, first, d)}
			}
		}
		return first, nil
	}
	return Dimensionless, nil
}

// Vector is the dimension vector of e restricted to the system's base
// dimensions; dimensions the system treats as dimensionless are dropped.
func (s *System) Vector(e expr.Expr) (map[string]*big.Rat, error) {
	d, err := s.DimensionOf(e)
	if err != nil {
		return nil, err
	}
	return s.reduce(e, d)
}

func (s *System) reduce(e expr.Expr, d Dimension) (map[string]*big.Rat, error) {
	vec := d.Vector()
	for name := range vec {
		if s.reduced[name] {
			delete(vec, name)
			continue
		}
		if _, ok := s.baseOf[name]; !ok {
			return nil, &ConversionError{Expr: e.String(), System: s.name,
				Err: fmt.Errorf("%w: dimension %s has no base unit", ErrIncompatible, name)}
		}
	}
	return vec, nil
}

func (s *System) sameVector(a, b Dimension) bool {
	va, vb := a.Vector(), b.Vector()
	for name := range s.reduced {
		delete(va, name)
		delete(vb, name)
	}
	return FormatVector(va) == FormatVector(vb)
}

// Expand rewrites q as a numeric coefficient times a product of base units by
// following its chain of scale relations.
func (s *System) Expand(q *Quantity) (expr.Expr, error) {
	return s.expand(q, make(map[*Quantity]bool))
}

func (s *System) expand(q *Quantity, visiting map[*Quantity]bool) (expr.Expr, error) {
	if s.IsBase(q) {
		return q, nil
	}
	rel, ok := s.registry.relation(q)
	if !ok {
		return nil, &ConversionError{Expr: q.name, System: s.name, Err: ErrUndefinedScale}
	}
	if visiting[q] {
		return nil, &ConversionError{Expr: q.name, System: s.name, Err: ErrScaleCycle}
	}
	visiting[q] = true
	defer delete(visiting, q)

	ref, err := expr.ReplaceErr(rel.ref, IsQuantity, func(e expr.Expr) (expr.Expr, error) {
		return s.expand(e.(*Quantity), visiting)
	})
	if err != nil {
		return nil, err
	}
	return expr.NewMul(rel.factor, ref), nil
}

// ScaleFactor replaces every quantity in e by its coefficient relative to the
// base units, leaving a quantity-free expression.
func (s *System) ScaleFactor(e expr.Expr) (expr.Expr, error) {
	ones := make(map[string]expr.Expr, len(s.base))
	for _, b := range s.base {
		ones[b.Key()] = expr.One
	}
	return expr.ReplaceErr(e, IsQuantity, func(x expr.Expr) (expr.Expr, error) {
		expanded, err := s.Expand(x.(*Quantity))
		if err != nil {
			return nil, err
		}
		return expr.Xreplace(expanded, ones), nil
	})
}

// ConvertTo rewrites e as a combination of the target units. It is the
// system's conversion primitive: the exponents of the targets are found by
// solving the dimension equations exactly.
//
// A dimensionless e can only be converted when a dimensionless target (for
// example expr.One) is present; otherwise ErrNoConversionPath is returned.
func (s *System) ConvertTo(e expr.Expr, targets []expr.Expr) (expr.Expr, error) {
	if add, ok := e.(*expr.Add); ok {
		terms := add.Terms()
		for i, t := range terms {
			c, err := s.ConvertTo(t, targets)
			if err != nil {
				return nil, err
			}
			terms[i] = c
		}
		return expr.NewAdd(terms...), nil
	}
	if !expr.Has(e, IsQuantity) {
		return e, nil
	}

	want, err := s.Vector(e)
	if err != nil {
		return nil, err
	}
	cols := make([]map[string]*big.Rat, len(targets))
	dimensionlessTarget := false
	for i, t := range targets {
		v, err := s.Vector(t)
		if err != nil {
			return nil, err
		}
		if len(v) == 0 {
			dimensionlessTarget = true
		}
		cols[i] = v
	}
	if len(want) == 0 && !dimensionlessTarget {
		return nil, &ConversionError{Expr: e.String(), System: s.name, Err: ErrNoConversionPath}
	}

	exps, ok := solve(s.dims, cols, want)
	if !ok {
		return nil, &ConversionError{Expr: e.String(), System: s.name,
			Err: fmt.Errorf("%w: %s", ErrIncompatible, FormatVector(want))}
	}

	out, err := s.ScaleFactor(e)
	if err != nil {
		return nil, err
	}
	for i, t := range targets {
		if exps[i].Sign() == 0 {
			continue
		}
		ts, err := s.ScaleFactor(t)
		if err != nil {
			return nil, err
		}
		unit := expr.Div(t, ts)
		out = expr.NewMul(out, expr.NewPow(unit, expr.FromRat(exps[i])))
	}
	return out, nil
}

// solve finds x with sum_j x_j*cols[j] == want over the given dimensions,
// by Gauss-Jordan elimination over the rationals. Free variables are zero.
func solve(dims []string, cols []map[string]*big.Rat, want map[string]*big.Rat) ([]*big.Rat, bool) {
	rows, n := len(dims), len(cols)
	m := make([][]*big.Rat, rows)
	for i, d := range dims {
		m[i] = make([]*big.Rat, n+1)
		for j, c := range cols {
			m[i][j] = ratOrZero(c[d])
		}
		m[i][n] = ratOrZero(want[d])
	}
	for name := range want {
		if !contains(dims, name) {
			return nil, false
		}
	}

	pivots := make([]int, 0, n)
	r := 0
	for c := 0; c < n && r < rows; c++ {
		p := -1
		for i := r; i < rows; i++ {
			if m[i][c].Sign() != 0 {
				p = i
				break
			}
		}
		if p < 0 {
			continue
		}
		m[r], m[p] = m[p], m[r]
		inv := new(big.Rat).Inv(m[r][c])
		for k := c; k <= n; k++ {
			m[r][k].Mul(m[r][k], inv)
		}
		for i := 0; i < rows; i++ {
			if i == r || m[i][c].Sign() == 0 {
				continue
			}
			f := new(big.Rat).Set(m[i][c])
			for k := c; k <= n; k++ {
				m[i][k].Sub(m[i][k], new(big.Rat).Mul(f, m[r][k]))
			}
		}
		pivots = append(pivots, c)
		r++
	}
	for i := r; i < rows; i++ {
		if m[i][n].Sign() != 0 {
			return nil, false
		}
	}

	x := make([]*big.Rat, n)
	for j := range x {
		x[j] = new(big.Rat)
	}
	for i, c := range pivots {
		x[c].Set(m[i][n])
	}
	return x, true
}

func ratOrZero(r *big.Rat) *big.Rat {
	if r == nil {
		return new(big.Rat)
	}
	return new(big.Rat).Set(r)
}

func contains(xs []string, s string) bool {
	for _, x := range xs {
		if x == s {
			return true
		}
	}
	return false
}
