package numeric

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/spf13/cast"

	"numbasis/internal/expr"
)

// ErrCoercion is wrapped by every CoercionError.
var ErrCoercion = errors.New("cannot coerce value")

// CoercionError reports a numeric result that cannot be represented as the
// requested type, e.g. a complex number requested as a real.
type CoercionError struct {
	Value complex128
	Type  string
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("%v: %v as %s", ErrCoercion, e.Value, e.Type)
}

func (e *CoercionError) Unwrap() error { return ErrCoercion }

// Scalar is a plain numeric result: real unless its imaginary part is nonzero.
type Scalar complex128

func Real(f float64) Scalar { return Scalar(complex(f, 0)) }

func (s Scalar) Real() float64 { return real(complex128(s)) }

func (s Scalar) Imag() float64 { return imag(complex128(s)) }

func (s Scalar) Complex() complex128 { return complex128(s) }

func (s Scalar) IsReal() bool { return s.Imag() == 0 }

// Float64 returns the real value, failing on a nonzero imaginary part instead
// of discarding it.
func (s Scalar) Float64() (float64, error) {
	if !s.IsReal() {
		return 0, &CoercionError{Value: complex128(s), Type: "float64"}
	}
	return s.Real(), nil
}

// Expr returns the exact rational expression of s.
func (s Scalar) Expr() expr.Expr {
	if s.IsReal() {
		return expr.Float(s.Real())
	}
	return expr.NewAdd(expr.Float(s.Real()), expr.NewMul(expr.Float(s.Imag()), expr.I))
}

func (s Scalar) String() string {
	if s.IsReal() {
		return strconv.FormatFloat(s.Real(), 'g', -1, 64)
	}
	return strconv.FormatComplex(complex128(s), 'g', -1, 128)
}

// Coercer turns a numeric expression into a concrete Go value.
type Coercer[T any] func(expr.Expr) (T, error)

// FloatOrComplex evaluates e, real when possible and complex otherwise.
func FloatOrComplex(e expr.Expr) (Scalar, error) {
	v, err := expr.Evaluate(e)
	if err != nil {
		return 0, err
	}
	return Scalar(v), nil
}

// Float64 evaluates e as a real number.
func Float64(e expr.Expr) (float64, error) {
	s, err := FloatOrComplex(e)
	if err != nil {
		return 0, err
	}
	return s.Float64()
}

// Complex128 evaluates e as a complex number.
func Complex128(e expr.Expr) (complex128, error) {
	s, err := FloatOrComplex(e)
	if err != nil {
		return 0, err
	}
	return s.Complex(), nil
}

// Int64 evaluates e as an integer; non-integral values are rejected.
func Int64(e expr.Expr) (int64, error) {
	f, err := Float64(e)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || f >= 1<<63 || f < -1<<63 {
		return 0, &CoercionError{Value: complex(f, 0), Type: "int64"}
	}
	return cast.ToInt64E(f)
}
