package services

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"produtos/internal/models"
	"produtos/internal/repositories"
	"produtos/pkg/logx"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// ErrInvalidProductID is returned for identifiers that are not UUIDs.
var ErrInvalidProductID = errors.New("invalid product ID")

// ValidationError describes the first rule a product input violated.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Publisher sends product events to a broker.
type Publisher interface {
	PublishJSON(v interface{}) error
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo      repositories.ProductRepository
	publisher Publisher
	validate  *validator.Validate
}

// NewProductService creates a new ProductService. publisher may be nil.
func NewProductService(repo repositories.ProductRepository, publisher Publisher) *ProductService {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &ProductService{
		repo:      repo,
		publisher: publisher,
		validate:  validate,
	}
}

// Validate checks input against the product schema and reports the first
// violation.
func (s *ProductService) Validate(input models.ProductInput) error {
	err := s.validate.Struct(input)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return fmt.Errorf("failed to validate product: %w", err)
	}
	e := validationErrors[0]
	return &ValidationError{
		Field:   e.Field(),
		Message: describe(e),
	}
}

func describe(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%q is required", e.Field())
	case "min":
		return fmt.Sprintf("%q must have at least %s characters", e.Field(), e.Param())
	case "max":
		return fmt.Sprintf("%q must have at most %s characters", e.Field(), e.Param())
	case "gt":
		return fmt.Sprintf("%q must be greater than %s", e.Field(), e.Param())
	case "gte":
		return fmt.Sprintf("%q must be greater than or equal to %s", e.Field(), e.Param())
	case "lte":
		return fmt.Sprintf("%q must be less than or equal to %s", e.Field(), e.Param())
	case "url":
		return fmt.Sprintf("%q must be a valid URL", e.Field())
	default:
		return fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
}

func checkID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w %q: %v", ErrInvalidProductID, id, err)
	}
	return nil
}

// ListProducts retrieves the products matching filter.
func (s *ProductService) ListProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	return s.repo.Find(ctx, filter)
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// CreateProduct validates input and persists it under a new identifier.
func (s *ProductService) CreateProduct(ctx context.Context, input models.ProductInput) (*models.Product, error) {
	if err := s.Validate(input); err != nil {
		return nil, err
	}
	product := input.ToProduct(uuid.New().String())
	if err := s.repo.Create(ctx, &product); err != nil {
		return nil, err
	}
	s.publish(models.ProductCreated, product.ID, &product)
	return &product, nil
}

// UpdateProduct validates input and then writes it onto the product with id.
// Nothing is written when validation fails.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, input models.ProductInput) error {
	if err := s.Validate(input); err != nil {
		return err
	}
	if err := checkID(id); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, id, input); err != nil {
		return err
	}
	s.publish(models.ProductUpdated, id, nil)
	return nil
}

// DeleteProduct deletes a product by its ID.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(models.ProductDeleted, id, nil)
	return nil
}

// publish is best effort: the write already succeeded.
func (s *ProductService) publish(eventType, id string, product *models.Product) {
	if s.publisher == nil {
		return
	}
	event := models.ProductEvent{
		Type:       eventType,
		ProductID:  id,
		Product:    product,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.publisher.PublishJSON(event); err != nil {
		logx.Error().Err(err).Str("event", eventType).Str("id", id).Msg("failed to publish product event")
	}
}
