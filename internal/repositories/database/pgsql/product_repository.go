package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mark-schultz-wu/envelope-buddy/internal/apperrors"
	"github.com/mark-schultz-wu/envelope-buddy/internal/core/domain"
	portsrepo "github.com/mark-schultz-wu/envelope-buddy/internal/core/ports/repositories"
	"github.com/mark-schultz-wu/envelope-buddy/internal/models"
)

const productColumns = "id, name, price, envelope_id, is_deleted, created_at, updated_at"

// PgxProductRepository implements product persistence using pgx.
type PgxProductRepository struct {
	BaseRepository
}

func newPgxProductRepository(pool *pgxpool.Pool) *PgxProductRepository {
	return &PgxProductRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.ProductRepositoryFacade = (*PgxProductRepository)(nil)

// Helper to convert models.Product from DB to domain.Product
func toDomainProduct(m models.Product) domain.Product {
	return domain.Product{
		ID:         m.ID,
		Name:       m.Name,
		Price:      m.Price,
		EnvelopeID: m.EnvelopeID,
		IsDeleted:  m.IsDeleted,
		AuditFields: domain.AuditFields{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
	}
}

func scanProduct(row pgx.Row) (models.Product, error) {
	var m models.Product
	err := row.Scan(
		&m.ID,
		&m.Name,
		&m.Price,
		&m.EnvelopeID,
		&m.IsDeleted,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	return m, err
}

// SaveProduct inserts a new product and returns it with its id set.
func (r *PgxProductRepository) SaveProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	query := `
		INSERT INTO products (name, price, envelope_id, is_deleted, created_at, updated_at)
		VALUES ($1, $2, $3, FALSE, $4, $5)
		RETURNING id;
	`
	err := r.Pool.QueryRow(ctx, query,
		product.Name,
		product.Price,
		product.EnvelopeID,
		product.CreatedAt,
		product.UpdatedAt,
	).Scan(&product.ID)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // Unique violation
				return nil, fmt.Errorf("%w: product %q already exists", apperrors.ErrDuplicate, product.Name)
			}
		}
		return nil, fmt.Errorf("failed to save product %q: %w", product.Name, err)
	}
	return &product, nil
}

// FindProductByID retrieves a product by id, including soft-deleted rows.
func (r *PgxProductRepository) FindProductByID(ctx context.Context, id int64) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1;`

	m, err := scanProduct(r.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find product %d: %w", id, err)
	}

	product := toDomainProduct(m)
	return &product, nil
}

// FindProductByName retrieves an active product by exact name.
func (r *PgxProductRepository) FindProductByName(ctx context.Context, name string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE name = $1 AND NOT is_deleted LIMIT 1;`

	m, err := scanProduct(r.Pool.QueryRow(ctx, query, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find product %q: %w", name, err)
	}

	product := toDomainProduct(m)
	return &product, nil
}

// ListProducts lists active products ordered by name.
func (r *PgxProductRepository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE NOT is_deleted ORDER BY name;`

	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		m, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product row: %w", err)
		}
		products = append(products, toDomainProduct(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate product rows: %w", err)
	}
	return products, nil
}

// UpdateProduct updates an existing product's mutable fields.
func (r *PgxProductRepository) UpdateProduct(ctx context.Context, product domain.Product) error {
	query := `
		UPDATE products
		SET name = $2, price = $3, envelope_id = $4, is_deleted = $5, updated_at = $6
		WHERE id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query,
		product.ID,
		product.Name,
		product.Price,
		product.EnvelopeID,
		product.IsDeleted,
		product.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update product %d: %w", product.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// SoftDeleteProduct marks a product as deleted.
func (r *PgxProductRepository) SoftDeleteProduct(ctx context.Context, id int64, now time.Time) error {
	query := `UPDATE products SET is_deleted = TRUE, updated_at = $2 WHERE id = $1 AND NOT is_deleted;`

	tag, err := r.Pool.Exec(ctx, query, id, now)
	if err != nil {
		return fmt.Errorf("failed to soft-delete product %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
