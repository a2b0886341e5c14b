package numeric

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"numbasis/internal/expr"
)

func TestInt64(t *testing.T) {
	tests := []struct {
		name string
		in   expr.Expr
		want int64
	}{
		{"Small", expr.Int(3000), 3000},
		{"Negative", expr.Int(-7), -7},
		{"Largest float below 2^63", expr.Float(math.Nextafter(1<<63, 0)), 1<<63 - 1024},
		{"Min int64", expr.Float(-1 << 63), math.MinInt64},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Int64(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInt64_Rejects(t *testing.T) {
	tests := []struct {
		name string
		in   expr.Expr
	}{
		{"2^63", expr.Float(math.Pow(2, 63))},
		{"Below min int64", expr.Float(-math.Pow(2, 64))},
		{"Fraction", expr.Rat(1, 2)},
		{"Complex", expr.I},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Int64(tt.in)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrCoercion)
		})
	}
}
