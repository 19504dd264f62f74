package handlers

import (
	"context"
	"errors"
	"strconv"
	"time"

	"produtos/internal/models"
	"produtos/internal/repositories"
	"produtos/internal/services"
	"produtos/pkg/logx"

	"github.com/gofiber/fiber/v2"
)

const genericErrorMessage = "Ocorreu um erro"

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service *services.ProductService
	timeout time.Duration
}

// NewProductHandler creates a new ProductHandler. Every storage call made
// on behalf of a request is bounded by timeout.
func NewProductHandler(service *services.ProductService, timeout time.Duration) *ProductHandler {
	return &ProductHandler{
		service: service,
		timeout: timeout,
	}
}

// RegisterRoutes registers the product routes with the Fiber app.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/produtos")
	productRoutes.Post("/", h.HandleCreateProduct)
	productRoutes.Get("/", h.HandleListProducts)
	productRoutes.Get("/:id", h.HandleGetProductByID)
	productRoutes.Put("/:id", h.HandleUpdateProduct)
	productRoutes.Delete("/:id", h.HandleDeleteProduct)
}

func (h *ProductHandler) requestContext(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.UserContext(), h.timeout)
}

func validationFailed(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Erro na validação dos dados",
		"error":   err.Error(),
	})
}

func internalError(c *fiber.Ctx, err error, msg string) error {
	logx.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg(msg)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": genericErrorMessage,
	})
}

// HandleCreateProduct creates a new product.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var input models.ProductInput
	if err := c.BodyParser(&input); err != nil {
		return validationFailed(c, err)
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	product, err := h.service.CreateProduct(ctx, input)
	if err != nil {
		var validationErr *services.ValidationError
		if errors.As(err, &validationErr) {
			return validationFailed(c, validationErr)
		}
		return internalError(c, err, "Error creating product")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Produto criado com sucesso",
		"product": product,
	})
}

// parseFilter reads the listing query parameters. Absent parameters leave
// the corresponding constraint unset.
func parseFilter(c *fiber.Ctx) (models.ProductFilter, error) {
	filter := models.ProductFilter{
		Nome:      c.Query("nome"),
		Categoria: c.Query("categoria"),
	}
	for key, dst := range map[string]**float64{
		"precoMin": &filter.PrecoMin,
		"precoMax": &filter.PrecoMax,
	} {
		raw := c.Query(key)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return filter, &services.ValidationError{Field: key, Message: "\"" + key + "\" must be a number"}
		}
		*dst = &v
	}
	return filter, nil
}

// HandleListProducts lists products, optionally narrowed by nome, categoria,
// precoMin and precoMax.
func (h *ProductHandler) HandleListProducts(c *fiber.Ctx) error {
	filter, err := parseFilter(c)
	if err != nil {
		return validationFailed(c, err)
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	products, err := h.service.ListProducts(ctx, filter)
	if err != nil {
		return internalError(c, err, "Error listing products")
	}
	if len(products) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Nenhum produto encontrado!",
		})
	}
	return c.JSON(products)
}

// HandleGetProductByID retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	productID := c.Params("id")

	ctx, cancel := h.requestContext(c)
	defer cancel()

	product, err := h.service.GetProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repositories.ErrProductNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Produto não encontrado!",
			})
		}
		return internalError(c, err, "Error getting product by ID")
	}
	return c.JSON(fiber.Map{
		"message": "Produto encontrado",
		"product": product,
	})
}

// HandleUpdateProduct writes the request body onto an existing product.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	productID := c.Params("id")

	var input models.ProductInput
	if err := c.BodyParser(&input); err != nil {
		return validationFailed(c, err)
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	err := h.service.UpdateProduct(ctx, productID, input)
	if err != nil {
		var validationErr *services.ValidationError
		switch {
		case errors.As(err, &validationErr):
			return validationFailed(c, validationErr)
		case errors.Is(err, repositories.ErrProductNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Produto não encontrado.",
			})
		}
		return internalError(c, err, "Error updating product")
	}
	return c.JSON(fiber.Map{
		"message": "Produto editado!",
	})
}

// HandleDeleteProduct deletes a product by its ID.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	productID := c.Params("id")

	ctx, cancel := h.requestContext(c)
	defer cancel()

	if err := h.service.DeleteProduct(ctx, productID); err != nil {
		if errors.Is(err, repositories.ErrProductNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Produto não encontrado.",
			})
		}
		return internalError(c, err, "Error deleting product")
	}
	return c.JSON(fiber.Map{
		"message": "Produto excluído.",
	})
}
