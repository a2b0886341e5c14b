package storage

import (
	"context"
	"errors"

	"numbasis/internal/check"
)

// ErrNotFound is returned when a report id is unknown.
var ErrNotFound = errors.New("report not found")

// ReportStore persists dimensional check reports.
type ReportStore interface {
	// SaveReport upserts a report together with its trials.
	SaveReport(ctx context.Context, r *check.Report) error

	// GetReport retrieves a report by its ID.
	GetReport(ctx context.Context, id string) (*check.Report, error)

	// ListReports returns the most recent reports first, without trials.
	ListReports(ctx context.Context, limit int) ([]*check.Report, error)

	Close() error
}
