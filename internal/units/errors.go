package units

import (
	"errors"
	"fmt"
)

var (
	// ErrNoConversionPath is returned by ConvertTo when a dimensionless
	// expression is converted to a target set without a dimensionless target.
	ErrNoConversionPath = errors.New("no conversion path")
	ErrIncompatible     = errors.New("incompatible dimensions")
	ErrUndefinedScale   = errors.New("scale factor not defined")
	ErrScaleCycle       = errors.New("cyclic scale definition")

	ErrScaleRedefined    = errors.New("scale factor already defined")
	ErrRegistryFrozen    = errors.New("registry is frozen")
	ErrDuplicateQuantity = errors.New("duplicate quantity")
)

// ConversionError reports a failed decomposition or conversion.
type ConversionError struct {
	Expr   string
	System string
	Err    error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("convert %s in %s: %v", e.Expr, e.System, e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }
