package expr

import (
	"fmt"
	"math"
	"math/cmplx"
)

// Evaluate computes the closed-form value of a numeric expression. Real
// arithmetic is used whenever the operands allow it, so real inputs only
// produce an imaginary part when the result is genuinely complex (for example
// a fractional power of a negative number).
func Evaluate(e Expr) (complex128, error) {
	switch v := e.(type) {
	case Number:
		return complex(v.Float64(), 0), nil
	case Constant:
		return v.value, nil
	case *Add:
		var sum complex128
		for _, t := range v.terms {
			x, err := Evaluate(t)
			if err != nil {
				return 0, err
			}
			sum += x
		}
		return sum, nil
	case *Mul:
		prod := complex(1, 0)
		for _, a := range v.args {
			x, err := Evaluate(a)
			if err != nil {
				return 0, err
			}
			prod *= x
		}
		return prod, nil
	case *Pow:
		b, err := Evaluate(v.base)
		if err != nil {
			return 0, err
		}
		x, err := Evaluate(v.exp)
		if err != nil {
			return 0, err
		}
		return pow(b, x), nil
	}
	return 0, fmt.Errorf("%w: %s", ErrNotNumeric, e)
}

func pow(b, x complex128) complex128 {
	if imag(b) == 0 && imag(x) == 0 {
		rb, rx := real(b), real(x)
		if rb >= 0 || rx == math.Trunc(rx) {
			return complex(math.Pow(rb, rx), 0)
		}
	}
	return cmplx.Pow(b, x)
}
