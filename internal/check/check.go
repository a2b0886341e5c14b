// Package check detects dimensional mistakes in formulas by evaluating them
// under several independent random numeric bases: a dimensionally correct
// formula converts back to the same scalar in every basis.
package check

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/cmplx"
	"time"

	"github.com/google/uuid"

	"numbasis/internal/expr"
	"numbasis/internal/numeric"
	"numbasis/internal/units"
)

// Formula is an expression together with the quantity its result is
// expected to be measured in.
type Formula struct {
	Name   string
	Expr   expr.Expr
	Target expr.Expr
}

// Trial is the outcome of one evaluation under a random basis.
type Trial struct {
	Seed    uint64
	Numeric numeric.Scalar
	Scalar  numeric.Scalar
}

// Report summarizes one check run.
type Report struct {
	ID      string
	Formula string
	Expr    string
	Target  string

	// Nominal is the result in units of Target under the unitary basis.
	Nominal numeric.Scalar
	Trials  []Trial

	// Spread is the largest relative deviation of a trial's scalar from the
	// first trial's.
	Spread     float64
	Consistent bool
	CreatedAt  time.Time
}

// MapperSource supplies the mapper for each trial.
type MapperSource func() *numeric.QuantityMapper

// Seeds returns a source cycling through fixed seeds. It is not safe for
// concurrent use.
func Seeds(seeds ...uint64) MapperSource {
	i := 0
	return func() *numeric.QuantityMapper {
		m := numeric.NewMapper(seeds[i%len(seeds)])
		i++
		return m
	}
}

const (
	DefaultTrials    = 3
	DefaultTolerance = 1e-9
)

type Checker struct {
	system    *units.System
	trials    int
	tolerance float64
	source    MapperSource
	logger    *slog.Logger
}

type Option func(*Checker)

// WithTrials sets the number of random bases; fewer than two cannot detect
// anything and is raised to two.
func WithTrials(n int) Option {
	return func(c *Checker) {
		if n < 2 {
			n = 2
		}
		c.trials = n
	}
}

func WithTolerance(tol float64) Option {
	return func(c *Checker) { c.tolerance = tol }
}

func WithMapperSource(src MapperSource) Option {
	return func(c *Checker) { c.source = src }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Checker) { c.logger = l }
}

func NewChecker(sys *units.System, opts ...Option) *Checker {
	c := &Checker{
		system:    sys,
		trials:    DefaultTrials,
		tolerance: DefaultTolerance,
		source:    numeric.Random,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Check evaluates f under the configured number of random bases and reports
// whether the scalar in units of f.Target agreed across all of them.
func (c *Checker) Check(ctx context.Context, f Formula) (*Report, error) {
	r := &Report{
		ID:        uuid.New().String(),
		Formula:   f.Name,
		Expr:      f.Expr.String(),
		Target:    f.Target.String(),
		CreatedAt: time.Now().UTC(),
	}

	nominal, err := c.scalar(numeric.NewBasis(c.system, numeric.Unitary()), f)
	if err != nil {
		return nil, fmt.Errorf("check %s: %w", f.Name, err)
	}
	r.Nominal = nominal.Scalar

	for i := 0; i < c.trials; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		m := c.source()
		tr, err := c.scalar(numeric.NewBasis(c.system, m), f)
		if err != nil {
			return nil, fmt.Errorf("check %s: %w", f.Name, err)
		}
		tr.Seed, _ = m.Seed()
		r.Trials = append(r.Trials, tr)
	}

	r.Spread = spread(r.Trials)
	r.Consistent = r.Spread <= c.tolerance

	c.logger.Debug("formula checked",
		"formula", f.Name,
		"trials", len(r.Trials),
		"spread", r.Spread,
		"consistent", r.Consistent,
	)
	return r, nil
}

// CheckAll checks every formula, stopping at the first error.
func (c *Checker) CheckAll(ctx context.Context, fs []Formula) ([]*Report, error) {
	reports := make([]*Report, 0, len(fs))
	for _, f := range fs {
		r, err := c.Check(ctx, f)
		if err != nil {
			return reports, err
		}
		if !r.Consistent {
			c.logger.Warn("dimensional inconsistency", "formula", f.Name, "spread", r.Spread)
		}
		reports = append(reports, r)
	}
	return reports, nil
}

func (c *Checker) scalar(b *numeric.Basis, f Formula) (Trial, error) {
	n, err := b.ToNumeric(f.Expr)
	if err != nil {
		return Trial{}, err
	}
	s, err := b.ToScalar(f.Target, n)
	if err != nil {
		return Trial{}, err
	}
	return Trial{Numeric: n, Scalar: s}, nil
}

func spread(trials []Trial) float64 {
	if len(trials) < 2 {
		return 0
	}
	ref := trials[0].Scalar.Complex()
	scale := cmplx.Abs(ref)
	if scale == 0 {
		scale = 1
	}
	worst := 0.0
	for _, t := range trials[1:] {
		worst = math.Max(worst, cmplx.Abs(t.Scalar.Complex()-ref)/scale)
	}
	return worst
}
