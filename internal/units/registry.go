package units

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"numbasis/internal/expr"
)

type relation struct {
	factor expr.Expr
	ref    expr.Expr
}

// Registry holds the one-time scale relations between quantities.
//
// It is populated during start-up and becomes read-only the first time a
// conversion consults it: from then on SetScale fails with ErrRegistryFrozen.
// Each quantity may be given a scale exactly once.
type Registry struct {
	mu        sync.RWMutex
	byName    map[string]*Quantity
	byAbbrev  map[string]*Quantity
	relations map[*Quantity]relation
	graph     *scaleGraph
	frozen    atomic.Bool
}

func NewRegistry() *Registry {
	return &Registry{
		byName:    make(map[string]*Quantity),
		byAbbrev:  make(map[string]*Quantity),
		relations: make(map[*Quantity]relation),
		graph:     newScaleGraph(),
	}
}

// Register adds quantities to the name index. A quantity may be registered
// more than once; a different quantity with an existing name may not.
func (r *Registry) Register(qs ...*Quantity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, q := range qs {
		if err := r.registerLocked(q); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) registerLocked(q *Quantity) error {
	if existing, ok := r.byName[q.name]; ok {
		if existing == q {
			return nil
		}
		return fmt.Errorf("%w: %s", ErrDuplicateQuantity, q.name)
	}
	if r.frozen.Load() {
		return fmt.Errorf("register %s: %w", q.name, ErrRegistryFrozen)
	}
	r.byName[q.name] = q
	if _, taken := r.byAbbrev[q.Abbrev()]; !taken {
		r.byAbbrev[q.Abbrev()] = q
	}
	r.graph.addUnit(q)
	return nil
}

// SetScale defines q as factor*ref, where ref is an expression over other
// quantities (or expr.One for dimensionless units). It fails if q already has
// a scale, if the registry is frozen, or if the relation would be cyclic.
func (r *Registry) SetScale(q *Quantity, factor, ref expr.Expr) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen.Load() {
		return fmt.Errorf("set scale of %s: %w", q.name, ErrRegistryFrozen)
	}
	if _, ok := r.relations[q]; ok {
		return fmt.Errorf("set scale of %s: %w", q.name, ErrScaleRedefined)
	}
	if expr.Has(factor, IsQuantity) {
		return fmt.Errorf("set scale of %s: factor %s contains units", q.name, factor)
	}
	refs := Quantities(ref)
	for _, dep := range refs {
		if dep == q || r.graph.reaches(dep.name, q.name) {
			return fmt.Errorf("set scale of %s relative to %s: %w", q.name, ref, ErrScaleCycle)
		}
	}
	if err := r.registerLocked(q); err != nil {
		return err
	}
	for _, dep := range refs {
		if err := r.registerLocked(dep); err != nil {
			return err
		}
	}
	r.relations[q] = relation{factor: factor, ref: ref}
	r.graph.link(q, refs)
	return nil
}

// Relative creates a quantity defined as factor*ref and registers its scale.
func (r *Registry) Relative(name string, factor, ref expr.Expr, opts ...QuantityOption) (*Quantity, error) {
	q := NewQuantity(name, opts...)
	if err := r.SetScale(q, factor, ref); err != nil {
		return nil, err
	}
	return q, nil
}

// WithPrefix creates the prefixed unit, e.g. kilo+hertz -> kilohertz (kHz).
func (r *Registry) WithPrefix(p Prefix, unit *Quantity) (*Quantity, error) {
	return r.Relative(p.Name+unit.Name(), p.Factor, unit,
		WithAbbrev(p.Abbrev+unit.Abbrev()),
		WithLaTeX(fmt.Sprintf(`\mathrm{%s} {%s}`, p.LaTeX, unit.LaTeX())))
}

// Lookup finds a quantity by name, falling back to its abbreviation.
func (r *Registry) Lookup(name string) (*Quantity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if q, ok := r.byName[name]; ok {
		return q, true
	}
	q, ok := r.byAbbrev[name]
	return q, ok
}

// Quantities returns every registered quantity sorted by name.
func (r *Registry) Quantities() []*Quantity {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Quantity, 0, len(r.byName))
	for _, q := range r.byName {
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// Dependencies returns the quantities q's scale is directly defined against.
func (r *Registry) Dependencies(q *Quantity) []*Quantity {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.graph.dependencies(q.name)
}

// Dependents returns the quantities whose scale is directly defined against q.
func (r *Registry) Dependents(q *Quantity) []*Quantity {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.graph.dependents(q.name)
}

// Freeze makes the registry read-only.
func (r *Registry) Freeze() { r.frozen.Store(true) }

func (r *Registry) Frozen() bool { return r.frozen.Load() }

// relation returns the scale relation of q and freezes the registry.
func (r *Registry) relation(q *Quantity) (relation, bool) {
	r.frozen.Store(true)
	r.mu.RLock()
	defer r.mu.RUnlock()
	rel, ok := r.relations[q]
	return rel, ok
}
