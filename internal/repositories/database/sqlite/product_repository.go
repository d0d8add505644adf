package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mark-schultz-wu/envelope-buddy/internal/apperrors"
	"github.com/mark-schultz-wu/envelope-buddy/internal/core/domain"
	portsrepo "github.com/mark-schultz-wu/envelope-buddy/internal/core/ports/repositories"
	"github.com/mark-schultz-wu/envelope-buddy/internal/models"
)

const productColumns = "id, name, price, envelope_id, is_deleted, created_at, updated_at"

// SQLiteProductRepository implements product persistence on database/sql.
type SQLiteProductRepository struct {
	BaseRepository
}

func newSQLiteProductRepository(db *sql.DB) *SQLiteProductRepository {
	return &SQLiteProductRepository{BaseRepository{DB: db}}
}

var _ portsrepo.ProductRepositoryFacade = (*SQLiteProductRepository)(nil)

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

func scanProduct(row rowScanner) (models.Product, error) {
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
func (r *SQLiteProductRepository) SaveProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	query := `
		INSERT INTO products (name, price, envelope_id, is_deleted, created_at, updated_at)
		VALUES (?, ?, ?, FALSE, ?, ?);
	`
	res, err := r.DB.ExecContext(ctx, query,
		product.Name,
		product.Price,
		product.EnvelopeID,
		product.CreatedAt,
		product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: product %q already exists", apperrors.ErrDuplicate, product.Name)
		}
		return nil, fmt.Errorf("failed to save product %q: %w", product.Name, err)
	}

	product.ID, err = res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read product id: %w", err)
	}
	return &product, nil
}

// FindProductByID retrieves a product by id, including soft-deleted rows.
func (r *SQLiteProductRepository) FindProductByID(ctx context.Context, id int64) (*domain.Product, error) {
	m, err := scanProduct(r.DB.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = ?;`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find product %d: %w", id, err)
	}

	product := toDomainProduct(m)
	return &product, nil
}

// FindProductByName retrieves an active product by exact name.
func (r *SQLiteProductRepository) FindProductByName(ctx context.Context, name string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE name = ? AND NOT is_deleted LIMIT 1;`

	m, err := scanProduct(r.DB.QueryRowContext(ctx, query, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find product %q: %w", name, err)
	}

	product := toDomainProduct(m)
	return &product, nil
}

// ListProducts lists active products ordered by name.
func (r *SQLiteProductRepository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+productColumns+` FROM products WHERE NOT is_deleted ORDER BY name;`)
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
func (r *SQLiteProductRepository) UpdateProduct(ctx context.Context, product domain.Product) error {
	query := `
		UPDATE products
		SET name = ?, price = ?, envelope_id = ?, is_deleted = ?, updated_at = ?
		WHERE id = ?;
	`
	res, err := r.DB.ExecContext(ctx, query,
		product.Name,
		product.Price,
		product.EnvelopeID,
		product.IsDeleted,
		product.UpdatedAt,
		product.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update product %d: %w", product.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// SoftDeleteProduct marks a product as deleted.
func (r *SQLiteProductRepository) SoftDeleteProduct(ctx context.Context, id int64, now time.Time) error {
	query := `UPDATE products SET is_deleted = TRUE, updated_at = ? WHERE id = ? AND NOT is_deleted;`

	res, err := r.DB.ExecContext(ctx, query, now, id)
	if err != nil {
		return fmt.Errorf("failed to soft-delete product %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
