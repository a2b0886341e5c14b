package storage

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"numbasis/internal/check"
	"numbasis/internal/numeric"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testReport(id string, created time.Time) *check.Report {
	return &check.Report{
		ID:      id,
		Formula: "newton-second-law",
		Expr:    "6*[kilogram]*[meter]/[second]**2",
		Target:  "[newton]",
		Nominal: numeric.Real(6),
		Trials: []check.Trial{
			{Seed: 1, Numeric: numeric.Real(12.5), Scalar: numeric.Real(6)},
			{Seed: math.MaxUint64, Numeric: numeric.Scalar(complex(0.25, -1)), Scalar: numeric.Real(6.000000001)},
		},
		Spread:     1.6e-10,
		Consistent: true,
		CreatedAt:  created,
	}
}

func TestSQLiteStore_SaveAndGetReport(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	created := time.Date(2026, 3, 1, 12, 0, 0, 123, time.UTC)
	want := testReport("run-1", created)
	require.NoError(t, store.SaveReport(ctx, want))

	got, err := store.GetReport(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, want.Formula, got.Formula)
	assert.Equal(t, want.Expr, got.Expr)
	assert.Equal(t, want.Target, got.Target)
	assert.Equal(t, want.Nominal, got.Nominal)
	assert.Equal(t, want.Spread, got.Spread)
	assert.True(t, got.Consistent)
	assert.True(t, created.Equal(got.CreatedAt))
	assert.Equal(t, want.Trials, got.Trials)
}

func TestSQLiteStore_SaveReport_ReplacesTrials(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	r := testReport("run-1", time.Now().UTC())
	require.NoError(t, store.SaveReport(ctx, r))

	r.Trials = r.Trials[:1]
	r.Consistent = false
	require.NoError(t, store.SaveReport(ctx, r))

	got, err := store.GetReport(ctx, "run-1")
	require.NoError(t, err)
	assert.Len(t, got.Trials, 1)
	assert.False(t, got.Consistent)
}

func TestSQLiteStore_ListReports(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, store.SaveReport(ctx, testReport(id, base.Add(time.Duration(i)*time.Hour))))
	}

	all, err := store.ListReports(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c", all[0].ID)
	assert.Equal(t, "a", all[2].ID)
	assert.Empty(t, all[0].Trials)

	recent, err := store.ListReports(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, recent, 2)
}

func TestSQLiteStore_GetReport_NotFound(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer store.Close()

	_, err = store.GetReport(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
