// Package repository declares persistence for check reports. Implementations live in
// subpackages.
package repository

import (
	"context"
	"errors"

	"plagcheck/internal/model"
)

// ErrNotFound is returned when no report has the requested id.
var ErrNotFound = errors.New("report not found")

// ReportRepository stores and reads reports. It holds no business rules.
type ReportRepository interface {
	Create(ctx context.Context, r *model.Report) (*model.Report, error)
	FindByID(ctx context.Context, id string) (*model.Report, error)
	// List returns summaries newest first; Files is left empty.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Report], error)
	// Delete reports ErrNotFound when the row did not exist.
	Delete(ctx context.Context, id string) error
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a page of items plus the total row count.
type PageResult[T any] struct {
	Items []T
	Total int
}
