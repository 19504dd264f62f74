package repositories

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"produtos/internal/models"

	"github.com/google/uuid"
)

// MockProductRepository is an in-memory implementation of ProductRepository.
type MockProductRepository struct {
	products map[string]models.Product
	mu       sync.RWMutex
}

// NewMockProductRepository creates a new instance of MockProductRepository.
func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{
		products: make(map[string]models.Product),
	}
}

// Find returns the products matching filter.
func (r *MockProductRepository) Find(_ context.Context, filter models.ProductFilter) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	productList := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		if matches(p, filter) {
			productList = append(productList, p)
		}
	}
	return productList, nil
}

// nameContains reports whether sub occurs in name, ignoring Unicode case.
func nameContains(name, sub string) bool {
	return strings.Contains(strings.ToLower(name), strings.ToLower(sub))
}

func matches(p models.Product, f models.ProductFilter) bool {
	if f.Nome != "" && !nameContains(p.Nome, f.Nome) {
		return false
	}
	if f.Categoria != "" && p.Categoria != f.Categoria {
		return false
	}
	if f.PrecoMin != nil && p.Preco < *f.PrecoMin {
		return false
	}
	if f.PrecoMax != nil && p.Preco > *f.PrecoMax {
		return false
	}
	return true
}

// GetByID returns a product by its ID.
func (r *MockProductRepository) GetByID(_ context.Context, id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("product with ID %s: %w", id, ErrProductNotFound)
	}
	return &product, nil
}

// Create adds a new product, assigning a UUID when it has no ID.
func (r *MockProductRepository) Create(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	r.products[product.ID] = *product
	return nil
}

// Update modifies an existing product.
func (r *MockProductRepository) Update(_ context.Context, id string, input models.ProductInput) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok {
		return fmt.Errorf("product with ID %s not updated: %w", id, ErrProductNotFound)
	}
	input.Apply(&product)
	r.products[id] = product
	return nil
}

// Delete removes a product by its ID.
func (r *MockProductRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return fmt.Errorf("product with ID %s not deleted: %w", id, ErrProductNotFound)
	}
	delete(r.products, id)
	return nil
}
