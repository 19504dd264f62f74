package repositories

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"produtos/internal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoProductRepository stores products as documents in a MongoDB collection.
type MongoProductRepository struct {
	coll *mongo.Collection
}

// NewMongoProductRepository creates a repository backed by coll.
func NewMongoProductRepository(coll *mongo.Collection) *MongoProductRepository {
	return &MongoProductRepository{coll: coll}
}

// buildFilter translates a ProductFilter into a MongoDB query document.
func buildFilter(f models.ProductFilter) bson.M {
	filter := bson.M{}
	if f.Nome != "" {
		filter["nome"] = bson.M{"$regex": regexp.QuoteMeta(f.Nome), "$options": "i"}
	}
	if f.Categoria != "" {
		filter["categoria"] = f.Categoria
	}
	price := bson.M{}
	if f.PrecoMin != nil {
		price["$gte"] = *f.PrecoMin
	}
	if f.PrecoMax != nil {
		price["$lte"] = *f.PrecoMax
	}
	if len(price) > 0 {
		filter["preco"] = price
	}
	return filter
}

// Find returns every product matching filter.
func (r *MongoProductRepository) Find(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	cursor, err := r.coll.Find(ctx, buildFilter(filter))
	if err != nil {
		return nil, fmt.Errorf("failed to find products: %w", err)
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return products, nil
}

// GetByID returns the product stored under id.
func (r *MongoProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("product with ID %s: %w", id, ErrProductNotFound)
		}
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, err)
	}
	return &product, nil
}

// Create inserts product, assigning a UUID when it has no ID so the
// repository can be used without ProductService.
func (r *MongoProductRepository) Create(ctx context.Context, product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if _, err := r.coll.InsertOne(ctx, product); err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Update sets the supplied attributes on the product stored under id.
func (r *MongoProductRepository) Update(ctx context.Context, id string, input models.ProductInput) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M(input.Fields())})
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("product with ID %s not updated: %w", id, ErrProductNotFound)
	}
	return nil
}

// Delete removes the product stored under id.
func (r *MongoProductRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("product with ID %s not deleted: %w", id, ErrProductNotFound)
	}
	return nil
}
