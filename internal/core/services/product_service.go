package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/mark-schultz-wu/envelope-buddy/internal/apperrors"
	"github.com/mark-schultz-wu/envelope-buddy/internal/core/domain"
	portsrepo "github.com/mark-schultz-wu/envelope-buddy/internal/core/ports/repositories"
	portssvc "github.com/mark-schultz-wu/envelope-buddy/internal/core/ports/services"
	"github.com/mark-schultz-wu/envelope-buddy/internal/dto"
	"github.com/mark-schultz-wu/envelope-buddy/internal/middleware"
	"github.com/shopspring/decimal"
)

type ProductService struct {
	productRepo    portsrepo.ProductRepositoryFacade
	envelopeSvc    portssvc.EnvelopeReaderSvc
	transactionSvc portssvc.TransactionWriterSvc
}

func NewProductService(repo portsrepo.ProductRepositoryFacade, envelopeSvc portssvc.EnvelopeReaderSvc, transactionSvc portssvc.TransactionWriterSvc) *ProductService {
	return &ProductService{
		productRepo:    repo,
		envelopeSvc:    envelopeSvc,
		transactionSvc: transactionSvc,
	}
}

func (s *ProductService) CreateProduct(ctx context.Context, req dto.CreateProductRequest, userID string) (*domain.Product, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("product name must not be empty: %w", apperrors.ErrConfig)
	}
	if math.IsNaN(req.Price) || math.IsInf(req.Price, 0) || req.Price < 0 {
		return nil, fmt.Errorf("price must be a non-negative finite number: %w", apperrors.ErrInvalidAmount)
	}

	envelope, err := s.envelopeSvc.GetEnvelopeByName(ctx, req.Envelope, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	product := domain.Product{
		Name:       name,
		Price:      decimal.NewFromFloat(req.Price),
		EnvelopeID: envelope.ID,
		AuditFields: domain.AuditFields{
			CreatedAt: now,
			UpdatedAt: now,
		},
	}

	saved, err := s.productRepo.SaveProduct(ctx, product)
	if err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			logger.Error("Failed to save product", slog.String("error", err.Error()), slog.String("name", name))
		}
		return nil, err
	}

	logger.Info("Product created", slog.Int64("product_id", saved.ID), slog.String("name", saved.Name))
	return saved, nil
}

func (s *ProductService) GetProductByName(ctx context.Context, name string) (*domain.Product, error) {
	return s.productRepo.FindProductByName(ctx, strings.TrimSpace(name))
}

func (s *ProductService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.productRepo.ListProducts(ctx)
}

func (s *ProductService) UpdateProduct(ctx context.Context, name string, req dto.UpdateProductRequest, userID string) (*domain.Product, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	product, err := s.productRepo.FindProductByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, err
	}

	if req.Price != nil {
		if math.IsNaN(*req.Price) || math.IsInf(*req.Price, 0) || *req.Price < 0 {
			return nil, fmt.Errorf("price must be a non-negative finite number: %w", apperrors.ErrInvalidAmount)
		}
		product.Price = decimal.NewFromFloat(*req.Price)
	}
	if req.Envelope != nil {
		envelope, err := s.envelopeSvc.GetEnvelopeByName(ctx, *req.Envelope, userID)
		if err != nil {
			return nil, err
		}
		product.EnvelopeID = envelope.ID
	}
	product.UpdatedAt = time.Now()

	if err := s.productRepo.UpdateProduct(ctx, *product); err != nil {
		logger.Error("Failed to update product", slog.String("error", err.Error()), slog.Int64("product_id", product.ID))
		return nil, err
	}

	logger.Info("Product updated", slog.Int64("product_id", product.ID), slog.String("name", product.Name))
	return product, nil
}

func (s *ProductService) DeleteProduct(ctx context.Context, name string) (bool, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	product, err := s.productRepo.FindProductByName(ctx, strings.TrimSpace(name))
	if errors.Is(err, apperrors.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := s.productRepo.SoftDeleteProduct(ctx, product.ID, time.Now()); err != nil {
		logger.Error("Failed to soft-delete product", slog.String("error", err.Error()), slog.Int64("product_id", product.ID))
		return false, err
	}

	logger.Info("Product deleted", slog.Int64("product_id", product.ID), slog.String("name", product.Name))
	return true, nil
}

// UseProduct records quantity uses of a product as one spend against its
// envelope, described as "2x Coffee".
func (s *ProductService) UseProduct(ctx context.Context, name string, quantity int, userID string, refID *string) (*domain.Transaction, error) {
	if quantity < 1 {
		quantity = 1
	}

	product, err := s.productRepo.FindProductByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, err
	}

	total := product.Price.Mul(decimal.NewFromInt(int64(quantity)))

	return s.transactionSvc.RecordEntry(ctx, product.EnvelopeID, total.Neg(),
		fmt.Sprintf("%dx %s", quantity, product.Name),
		domain.TransactionUseProduct, userID, refID)
}
