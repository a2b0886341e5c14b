package numeric

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"numbasis/internal/catalog"
	"numbasis/internal/units"
)

func TestQuantityMapper_Deterministic(t *testing.T) {
	c := catalog.Default()
	a, b := NewMapper(42), NewMapper(42)

	for _, q := range c.System.BaseUnits() {
		d, ok := q.DeclaredDimension()
		require.True(t, ok)
		assert.Equal(t, a.Map(q, d), b.Map(q, d), q.Name())
		assert.Equal(t, a.Map(q, d), a.Map(q, d), q.Name())
	}

	seed, ok := a.Seed()
	assert.True(t, ok)
	assert.Equal(t, uint64(42), seed)
}

func TestQuantityMapper_Range(t *testing.T) {
	c := catalog.Default()
	for i := 0; i < 200; i++ {
		m := Random()
		for _, q := range c.System.BaseUnits() {
			d, _ := q.DeclaredDimension()
			v := m.Map(q, d)
			assert.GreaterOrEqual(t, v, 0.01)
			assert.Less(t, v, 100.0)
		}
	}
}

func TestQuantityMapper_IndependentSeedsDisagree(t *testing.T) {
	c := catalog.Default()
	base := c.System.BaseUnits()

	const trials = 500
	agreeing := 0
	for i := 0; i < trials; i++ {
		a, b := Random(), Random()
		same := true
		for _, q := range base {
			d, _ := q.DeclaredDimension()
			if a.Map(q, d) != b.Map(q, d) {
				same = false
				break
			}
		}
		if same {
			agreeing++
		}
	}
	assert.Zero(t, agreeing, "independent mappers agreed on every base unit")

	// Distinct fixed seeds also spread values: the mean of log10 values sits
	// near the middle of [-2, 2).
	m := c.Meter
	d, _ := m.DeclaredDimension()
	var sum float64
	for seed := uint64(0); seed < trials; seed++ {
		sum += math.Log10(NewMapper(seed).Map(m, d))
	}
	assert.InDelta(t, 0, sum/trials, 0.5)
}

func TestQuantityMapper_Unitary(t *testing.T) {
	c := catalog.Default()
	u := Unitary()
	assert.True(t, u.IsUnitary())

	_, ok := u.Seed()
	assert.False(t, ok)

	for _, q := range c.System.BaseUnits() {
		d, _ := q.DeclaredDimension()
		assert.Equal(t, 1.0, u.Map(q, d))
	}
}

func TestQuantityMapper_ConcurrentUse(t *testing.T) {
	m := NewMapper(7)
	q := units.NewQuantity("meter")
	want := NewMapper(7).Map(q, units.Length)

	var wg sync.WaitGroup
	results := make([]float64, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = m.Map(q, units.Length)
		}(i)
	}
	wg.Wait()
	for _, got := range results {
		assert.Equal(t, want, got)
	}
}

func TestQuantityMapper_NeighbouringSeedsDisagree(t *testing.T) {
	c := catalog.Default()
	base := c.System.BaseUnits()

	a, b := NewMapper(1), NewMapper(2)
	for _, q := range base {
		d, _ := q.DeclaredDimension()
		assert.NotEqual(t, a.Map(q, d), b.Map(q, d), q.Name())
	}

	tests := []struct {
		name string
		x, y uint64
	}{
		{"Consecutive", 42, 43},
		{"Low bit", 1 << 10, 1<<10 | 1},
		{"High bit", 7, 7 | 1<<63},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := NewMapper(tt.x), NewMapper(tt.y)
			for _, q := range base {
				d, _ := q.DeclaredDimension()
				assert.NotEqual(t, x.Map(q, d), y.Map(q, d), q.Name())
			}
		})
	}

	m := c.Meter
	d, _ := m.DeclaredDimension()
	seen := make(map[float64]uint64)
	for seed := uint64(0); seed < 1024; seed++ {
		v := NewMapper(seed).Map(m, d)
		prev, dup := seen[v]
		require.False(t, dup, "seeds %d and %d share a value", prev, seed)
		seen[v] = seed
	}
}
