package repositories

import (
	"context"
	"time"

	"github.com/mark-schultz-wu/envelope-buddy/internal/core/domain"
)

// ProductReader defines read operations for product data
type ProductReader interface {
	// FindProductByID retrieves a product by id, including soft-deleted rows.
	FindProductByID(ctx context.Context, id int64) (*domain.Product, error)

	// FindProductByName retrieves an active product by exact name.
	FindProductByName(ctx context.Context, name string) (*domain.Product, error)

	// ListProducts lists active products ordered by name.
	ListProducts(ctx context.Context) ([]domain.Product, error)
}

// ProductWriter defines write operations for product data
type ProductWriter interface {
	// SaveProduct persists a new product and returns it with its id set.
	SaveProduct(ctx context.Context, product domain.Product) (*domain.Product, error)

	// UpdateProduct updates an existing product's mutable fields.
	UpdateProduct(ctx context.Context, product domain.Product) error

	// SoftDeleteProduct marks a product as deleted.
	SoftDeleteProduct(ctx context.Context, id int64, now time.Time) error
}

// ProductRepositoryFacade combines all product-related repository interfaces
type ProductRepositoryFacade interface {
	ProductReader
	ProductWriter
}
