package model

import (
	"context"
	"errors"
	"fmt"
)

var ErrUserNotFound = errors.New("user not found")

// NetworkError reports a failed call to the REST data source: the request
// never completed, or it completed with a non-2xx status.
type NetworkError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: unexpected status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Retryable reports whether retrying the same call may succeed.
func (e *NetworkError) Retryable() bool {
	return e.StatusCode == 0 || e.StatusCode == 408 || e.StatusCode == 429 || e.StatusCode >= 500
}

type CatalogRepository interface {
	ListProducts(ctx context.Context) ([]Product, error)
	ListProductsByCategory(ctx context.Context, categoryID ID) ([]Product, error)
	GetProduct(ctx context.Context, id ID) (*Product, error)
	ListCategories(ctx context.Context) ([]Category, error)
}

type AdminRepository interface {
	CatalogRepository

	CreateProduct(ctx context.Context, product Product) (*Product, error)
	UpdateProduct(ctx context.Context, id ID, product Product) (*Product, error)
	DeleteProduct(ctx context.Context, id ID) error

	CreateCategory(ctx context.Context, category Category) (*Category, error)
	DeleteCategory(ctx context.Context, id ID) error

	ListUsers(ctx context.Context) ([]AdminUser, error)
	PatchUser(ctx context.Context, id ID, patch UserPatch) (*AdminUser, error)
	DeleteUser(ctx context.Context, id ID) error
}
