package services

import (
	"context"

	"github.com/mark-schultz-wu/envelope-buddy/internal/core/domain"
	"github.com/mark-schultz-wu/envelope-buddy/internal/dto"
)

// ProductSvcFacade manages fixed-price products and their use.
type ProductSvcFacade interface {
	// CreateProduct validates and persists a product bound to the named
	// envelope.
	CreateProduct(ctx context.Context, req dto.CreateProductRequest, userID string) (*domain.Product, error)

	// GetProductByName retrieves an active product.
	GetProductByName(ctx context.Context, name string) (*domain.Product, error)

	// ListProducts lists active products.
	ListProducts(ctx context.Context) ([]domain.Product, error)

	// UpdateProduct updates a product's price or envelope binding.
	UpdateProduct(ctx context.Context, name string, req dto.UpdateProductRequest, userID string) (*domain.Product, error)

	// DeleteProduct soft-deletes the named product; the bool reports whether
	// a row changed.
	DeleteProduct(ctx context.Context, name string) (bool, error)

	// UseProduct records quantity uses of the product as a single spend
	// against its envelope.
	UseProduct(ctx context.Context, name string, quantity int, userID string, refID *string) (*domain.Transaction, error)
}
