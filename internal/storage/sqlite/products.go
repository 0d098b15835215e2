package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/palengke-ph/backend/internal/models"
	"github.com/palengke-ph/backend/internal/storage"
)

// CreateProduct inserts a new product listing.
func (s *SQLiteStore) CreateProduct(ctx context.Context, product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if product.CreatedAt.IsZero() {
		product.CreatedAt = time.Now().UTC()
	}
	if product.Status == "" {
		product.Status = models.ProductAvailable
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (id, seller_id, title, description, price, image_url, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		product.ID,
		product.SellerID,
		product.Title,
		product.Description,
		product.Price.String(),
		product.ImageURL,
		string(product.Status),
		unix(product.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// GetProduct retrieves a product by ID.
func (s *SQLiteStore) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	product := &models.Product{}
	var price string
	var status string
	var createdAt int64
	err := s.db.QueryRowContext(ctx, `
		SELECT id, seller_id, title, description, price, image_url, status, created_at
		FROM products
		WHERE id = ?`,
		id,
	).Scan(
		&product.ID,
		&product.SellerID,
		&product.Title,
		&product.Description,
		&price,
		&product.ImageURL,
		&status,
		&createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	product.Price, err = decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("failed to parse product price: %w", err)
	}
	product.Status = models.ProductStatus(status)
	product.CreatedAt = fromUnix(createdAt)
	return product, nil
}

// UpdateProductStatus sets the listing status (available/reserved/sold).
func (s *SQLiteStore) UpdateProductStatus(ctx context.Context, id string, status models.ProductStatus) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE products SET status = ? WHERE id = ?",
		string(status), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update product status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return storage.ErrNotFound
	}
	return nil
}
