package repositories

import (
	"context"
	"errors"

	"produtos/internal/models"
)

// ErrProductNotFound is returned when no product matches an identifier.
var ErrProductNotFound = errors.New("product not found")

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	Find(ctx context.Context, filter models.ProductFilter) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, id string, input models.ProductInput) error
	Delete(ctx context.Context, id string) error
}
