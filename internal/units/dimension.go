package units

import (
	"fmt"
	"math/big"
	"sort"
	"strings"

	"numbasis/internal/expr"
)

// Dimension is the algebraic signature of a quantity: a product of powers of
// the fundamental dimensions, kept as an expression over dimension symbols.
// The zero value is dimensionless.
type Dimension struct {
	e expr.Expr
}

var (
	Dimensionless     = Dimension{e: expr.One}
	Length            = baseDimension("length")
	Mass              = baseDimension("mass")
	Time              = baseDimension("time")
	Current           = baseDimension("current")
	Temperature       = baseDimension("temperature")
	Amount            = baseDimension("amount_of_substance")
	LuminousIntensity = baseDimension("luminous_intensity")
	Angle             = baseDimension("angle")
)

func baseDimension(name string) Dimension {
	return Dimension{e: expr.NewSymbol(name)}
}

func (d Dimension) get() expr.Expr {
	if d.e == nil {
		return expr.One
	}
	return d.e
}

func (d Dimension) Mul(o Dimension) Dimension {
	return Dimension{e: expr.NewMul(d.get(), o.get())}
}

func (d Dimension) Div(o Dimension) Dimension {
	return Dimension{e: expr.Div(d.get(), o.get())}
}

func (d Dimension) Pow(exp expr.Number) Dimension {
	return Dimension{e: expr.NewPow(d.get(), exp)}
}

func (d Dimension) Equal(o Dimension) bool { return expr.Equal(d.get(), o.get()) }

func (d Dimension) IsDimensionless() bool { return expr.Equal(d.get(), expr.One) }

// Key is a stable identity string for the dimension.
func (d Dimension) Key() string { return d.get().Key() }

func (d Dimension) String() string {
	if d.IsDimensionless() {
		return "dimensionless"
	}
	return d.get().String()
}

// Vector returns the exponent of every fundamental dimension present in d.
func (d Dimension) Vector() map[string]*big.Rat {
	out := make(map[string]*big.Rat)
	var add func(e expr.Expr, scale *big.Rat)
	add = func(e expr.Expr, scale *big.Rat) {
		switch v := e.(type) {
		case expr.Symbol:
			cur, ok := out[v.Name()]
			if !ok {
				cur = new(big.Rat)
				out[v.Name()] = cur
			}
			cur.Add(cur, scale)
		case *expr.Pow:
			n, ok := expr.AsNumber(v.Exp())
			if !ok {
				panic(fmt.Sprintf("units: non-numeric dimension exponent in %s", e))
			}
			add(v.Base(), new(big.Rat).Mul(scale, n.Rat()))
		case *expr.Mul:
			for _, f := range v.Factors() {
				add(f, scale)
			}
		}
	}
	add(d.get(), big.NewRat(1, 1))
	for k, v := range out {
		if v.Sign() == 0 {
			delete(out, k)
		}
	}
	return out
}

// FormatVector prints a dimension vector in a fixed order, e.g. "length:1 time:-2".
func FormatVector(v map[string]*big.Rat) string {
	names := make([]string, 0, len(v))
	for k := range v {
		names = append(names, k)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = n + ":" + v[n].RatString()
	}
	return strings.Join(parts, " ")
}
