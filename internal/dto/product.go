package dto

import (
	"time"

	"github.com/mark-schultz-wu/envelope-buddy/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateProductRequest defines the data needed to create a product.
type CreateProductRequest struct {
	Name     string  `json:"name" binding:"required"`
	Price    float64 `json:"price" binding:"gte=0"`
	Envelope string  `json:"envelope" binding:"required"` // Envelope name the price is charged to
}

// UpdateProductRequest defines the data allowed for updating a product.
// Pointers distinguish zero-value updates from fields not provided.
type UpdateProductRequest struct {
	Price    *float64 `json:"price"`
	Envelope *string  `json:"envelope"` // Rebind to another envelope by name
}

// UseProductRequest records one or more uses of a product as a spend.
type UseProductRequest struct {
	Product  string  `json:"product" binding:"required"`
	Quantity int     `json:"quantity" binding:"omitempty,gte=1"`
	RefID    *string `json:"refID"`
}

// ProductResponse defines the data returned for a product.
type ProductResponse struct {
	ID         int64           `json:"id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	EnvelopeID int64           `json:"envelopeID"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// ToProductResponse converts a domain.Product to ProductResponse DTO
func ToProductResponse(p *domain.Product) ProductResponse {
	return ProductResponse{
		ID:         p.ID,
		Name:       p.Name,
		Price:      p.Price,
		EnvelopeID: p.EnvelopeID,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

// ToListProductResponse converts domain products to response DTOs
func ToListProductResponse(products []domain.Product) []ProductResponse {
	res := make([]ProductResponse, len(products))
	for i := range products {
		res[i] = ToProductResponse(&products[i])
	}
	return res
}
