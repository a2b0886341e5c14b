package expr

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"sync/atomic"
)

// ErrNotNumeric is returned when evaluation reaches a leaf that has no numeric value
// (a free symbol, a placeholder or an opaque atom such as a unit).
var ErrNotNumeric = errors.New("expression is not numeric")

// Expr is an immutable node of a symbolic expression tree.
//
// Key is a canonical identity string: two expressions are structurally equal
// exactly when their keys are equal. Compound nodes are built only through
// NewAdd, NewMul and NewPow, which keep them in canonical form.
type Expr interface {
	Key() string
	String() string
}

// Positive is implemented by leaves that are known to be strictly positive.
type Positive interface {
	IsPositive() bool
}

// Number is an exact rational constant.
type Number struct {
	r *big.Rat
}

var (
	Zero     = Int(0)
	One      = Int(1)
	MinusOne = Int(-1)
	Half     = Rat(1, 2)
)

func Int(n int64) Number {
	return Number{r: new(big.Rat).SetInt64(n)}
}

func Rat(a, b int64) Number {
	return Number{r: big.NewRat(a, b)}
}

// FromRat copies r into a Number.
func FromRat(r *big.Rat) Number {
	return Number{r: new(big.Rat).Set(r)}
}

// ParseRat reads "3", "-1/60" or "2.5" into an exact Number.
func ParseRat(s string) (Number, error) {
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return Number{}, fmt.Errorf("invalid rational %q", s)
	}
	return Number{r: r}, nil
}

// Float converts f exactly into a rational. Non-finite values become constants
// so that they still evaluate to themselves.
func Float(f float64) Expr {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Constant{name: strconv.FormatFloat(f, 'g', -1, 64), value: complex(f, 0)}
	}
	return Number{r: new(big.Rat).SetFloat64(f)}
}

func (n Number) rat() *big.Rat {
	if n.r == nil {
		return new(big.Rat)
	}
	return n.r
}

// Rat returns a copy of the underlying rational.
func (n Number) Rat() *big.Rat { return new(big.Rat).Set(n.rat()) }

func (n Number) Sign() int { return n.rat().Sign() }

func (n Number) IsInt() bool { return n.rat().IsInt() }

func (n Number) Float64() float64 {
	f, _ := n.rat().Float64()
	return f
}

func (n Number) Key() string { return "n:" + n.rat().RatString() }
func (n Number) String() string { return n.rat().RatString() }
func (n Number) IsPositive() bool { return n.Sign() > 0 }

// Constant is a named numeric constant such as pi.
type Constant struct {
	name  string
	value complex128
}

var (
	Pi = Constant{name: "pi", value: complex(math.Pi, 0)}
	E  = Constant{name: "E", value: complex(math.E, 0)}
	I  = Constant{name: "I", value: complex(0, 1)}
)

func NewConstant(name string, value complex128) Constant {
	return Constant{name: name, value: value}
}

func (c Constant) Name() string { return c.name }
func (c Constant) Value() complex128 { return c.value }
func (c Constant) Key() string { return "c:" + c.name }
func (c Constant) String() string { return c.name }
func (c Constant) IsPositive() bool { return imag(c.value) == 0 && real(c.value) > 0 }

// Symbol is a free algebraic variable.
type Symbol struct {
	name string
}

func NewSymbol(name string) Symbol { return Symbol{name: name} }

func (s Symbol) Name() string { return s.name }
func (s Symbol) Key() string { return "s:" + s.name }
func (s Symbol) String() string { return s.name }

var dummyCounter atomic.Uint64

// Dummy is an anonymous placeholder variable. Every call to NewDummy returns a
// placeholder distinct from all others created in the process.
type Dummy struct {
	id uint64
}

func NewDummy() Dummy { return Dummy{id: dummyCounter.Add(1)} }

func (d Dummy) ID() uint64 { return d.id }
func (d Dummy) Key() string { return "d:" + strconv.FormatUint(d.id, 10) }
func (d Dummy) String() string { return "_Dummy_" + strconv.FormatUint(d.id, 10) }

// Add is a canonical sum. The numeric term, if any, comes first.
type Add struct {
	terms []Expr
	key   string
}

func (a *Add) Terms() []Expr { return append([]Expr(nil), a.terms...) }
func (a *Add) Key() string { return a.key }
func (a *Add) String() string { return formatAdd(a) }

// Mul is a canonical product. The rational coefficient, if not 1, comes first.
type Mul struct {
	args []Expr
	key  string
}

func (m *Mul) Factors() []Expr { return append([]Expr(nil), m.args...) }
func (m *Mul) Key() string { return m.key }
func (m *Mul) String() string { return formatMul(m) }

// Coefficient returns the rational coefficient of the product.
func (m *Mul) Coefficient() Number {
	if n, ok := m.args[0].(Number); ok {
		return n
	}
	return One
}

// Pow is base**exp.
type Pow struct {
	base, exp Expr
	key       string
}

func (p *Pow) Base() Expr { return p.base }
func (p *Pow) Exp() Expr { return p.exp }
func (p *Pow) Key() string { return p.key }
func (p *Pow) String() string { return formatPow(p) }

func (p *Pow) IsPositive() bool {
	_, ok := p.exp.(Number)
	return ok && isPositive(p.base)
}

// Args returns the direct children of e.
func Args(e Expr) []Expr {
	switch v := e.(type) {
	case *Add:
		return v.Terms()
	case *Mul:
		return v.Factors()
	case *Pow:
		return []Expr{v.base, v.exp}
	}
	return nil
}

// Equal reports structural equality.
func Equal(a, b Expr) bool { return a.Key() == b.Key() }

// AsNumber returns the rational value of e when e is a Number.
func AsNumber(e Expr) (Number, bool) {
	n, ok := e.(Number)
	return n, ok
}

func isPositive(e Expr) bool {
	switch v := e.(type) {
	case *Mul:
		for _, a := range v.args {
			if !isPositive(a) {
				return false
			}
		}
		return true
	case Positive:
		return v.IsPositive()
	}
	return false
}
