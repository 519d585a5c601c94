// Package repository holds loaded datasets for the service.
package repository

import (
	"context"

	model "github.com/okian/labviz/internal/domain/model"
)

// Store provides read/write access to loaded datasets.
type Store interface {
	// Put stores ds under ds.Name, replacing any previous dataset.
	Put(ctx context.Context, ds *model.Dataset) error

	// Get returns the dataset for name.
	// Returns ErrNotFound if the name is unknown.
	Get(ctx context.Context, name string) (*model.Dataset, error)

	// List returns summaries ordered by name.
	List(ctx context.Context) []model.Summary

	// Count returns the number of stored datasets.
	Count(ctx context.Context) int
}
