// Package numeric evaluates symbolic quantity expressions as plain numbers by
// assigning a pseudo-random scale to every base unit.
package numeric

import (
	"encoding/binary"
	"math"
	"math/rand"
	"sync"

	"github.com/cespare/xxhash/v2"

	"numbasis/internal/units"
)

// QuantityMapper assigns every base unit a value in [0.01, 100), uniformly
// distributed in log-space, as a deterministic function of the seed and the
// unit. A unitary mapper assigns 1 to everything.
//
// Values are memoized per mapper; the cache is safe for concurrent use.
type QuantityMapper struct {
	seed    uint64
	unitary bool
	cache   sync.Map // *units.Quantity -> float64
}

// NewMapper returns the mapper for a fixed seed. Two mappers with the same
// seed map every quantity to the same value.
func NewMapper(seed uint64) *QuantityMapper {
	return &QuantityMapper{seed: seed}
}

// Random returns a mapper with a fresh 64-bit seed.
func Random() *QuantityMapper {
	return NewMapper(rand.Uint64())
}

// Unitary returns the mapper that sends every quantity to 1.
func Unitary() *QuantityMapper {
	return &QuantityMapper{unitary: true}
}

// Seed returns the mapper's seed; ok is false for the unitary mapper.
func (m *QuantityMapper) Seed() (seed uint64, ok bool) {
	return m.seed, !m.unitary
}

func (m *QuantityMapper) IsUnitary() bool { return m.unitary }

// Map returns the value of q with dimension dim.
//
// The top 53 bits of hash are read as x in [0, 1) and the result is
// 10**(4x-2).
func (m *QuantityMapper) Map(q *units.Quantity, dim units.Dimension) float64 {
	if m.unitary {
		return 1
	}
	if v, ok := m.cache.Load(q); ok {
		return v.(float64)
	}
	zeroToOne := float64(m.hash(q, dim)>>11) / (1 << 53)
	v, _ := m.cache.LoadOrStore(q, math.Pow(10, zeroToOne*4-2))
	return v.(float64)
}

// hash digests the seed, the quantity's name and its dimension key in one
// xxhash pass, so every seed bit reaches every output bit.
func (m *QuantityMapper) hash(q *units.Quantity, dim units.Dimension) uint64 {
	var seed [8]byte
	binary.LittleEndian.PutUint64(seed[:], m.seed)

	d := xxhash.New()
	d.Write(seed[:])
	d.WriteString(q.Name())
	d.WriteString("|")
	d.WriteString(dim.Key())
	return d.Sum64()
}
