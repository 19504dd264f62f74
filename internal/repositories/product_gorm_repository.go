package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"produtos/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Find retrieves the products matching filter from the database.
//
// SQLite's LOWER and LIKE only fold ASCII, so on anything but PostgreSQL the
// name constraint is applied after the query.
func (r *GORMProductRepository) Find(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	q := r.db.WithContext(ctx)
	nameInSQL := r.db.Dialector.Name() == "postgres"
	if filter.Nome != "" && nameInSQL {
		pattern := "%" + likeEscaper.Replace(filter.Nome) + "%"
		q = q.Where(`nome ILIKE ? ESCAPE '\'`, pattern)
	}
	if filter.Categoria != "" {
		q = q.Where("categoria = ?", filter.Categoria)
	}
	if filter.PrecoMin != nil {
		q = q.Where("preco >= ?", *filter.PrecoMin)
	}
	if filter.PrecoMax != nil {
		q = q.Where("preco <= ?", *filter.PrecoMax)
	}

	var products []models.Product
	if err := q.Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to find products: %w", err)
	}
	if filter.Nome != "" && !nameInSQL {
		matched := products[:0]
		for _, p := range products {
			if nameContains(p.Nome, filter.Nome) {
				matched = append(matched, p)
			}
		}
		products = matched
	}
	return products, nil
}

// GetByID retrieves a single product by its ID from the database.
func (r *GORMProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product with ID %s: %w", id, ErrProductNotFound)
		}
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, err)
	}
	return &product, nil
}

// Create creates a new product in the database. A product without an ID
// gets a fresh UUID, so the repository can be used without ProductService.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Update writes the supplied attributes onto an existing product.
func (r *GORMProductRepository) Update(ctx context.Context, id string, input models.ProductInput) error {
	res := r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Updates(input.Fields())
	if res.Error != nil {
		return fmt.Errorf("failed to update product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product with ID %s not updated: %w", id, ErrProductNotFound)
	}
	return nil
}

// Delete deletes a product by its ID from the database.
func (r *GORMProductRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product with ID %s not deleted: %w", id, ErrProductNotFound)
	}
	return nil
}
