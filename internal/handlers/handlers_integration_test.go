package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"testing"
	"time"

	"produtos/internal/database"
	"produtos/internal/handlers"
	"produtos/internal/models"
	"produtos/internal/repositories"
	"produtos/internal/services"
	"produtos/pkg/logx"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupApp sets up a Fiber app backed by a fresh in-memory SQLite database.
func setupApp(t *testing.T) *fiber.App {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := database.OpenGORM("sqlite", dsn)
	require.NoError(t, err)

	productRepo := repositories.NewGORMProductRepository(db)
	productService := services.NewProductService(productRepo, nil)
	productHandler := handlers.NewProductHandler(productService, 5*time.Second)

	app := fiber.New()
	productHandler.RegisterRoutes(app)
	return app
}

// TestMain runs setup and teardown for all tests
func TestMain(m *testing.M) {
	// Suppress logging during tests for cleaner output
	logx.Init(logx.Options{Production: true, Output: io.Discard})
	os.Exit(m.Run())
}

func doJSON(t *testing.T, app *fiber.App, method, target string, body interface{}) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(jsonBody)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1) // -1 for no timeout
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, dst interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
}

type productEnvelope struct {
	Message string         `json:"message"`
	Product models.Product `json:"product"`
	Error   string         `json:"error"`
}

func createProduct(t *testing.T, app *fiber.App, body map[string]interface{}) models.Product {
	t.Helper()
	resp := doJSON(t, app, http.MethodPost, "/produtos", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created productEnvelope
	decode(t, resp, &created)
	return created.Product
}

func listProducts(t *testing.T, app *fiber.App, query url.Values) (int, []models.Product) {
	t.Helper()
	target := "/produtos"
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	resp := doJSON(t, app, http.MethodGet, target, nil)
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return resp.StatusCode, nil
	}
	var products []models.Product
	decode(t, resp, &products)
	return resp.StatusCode, products
}

func names(products []models.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.Nome)
	}
	return out
}

func seedCatalogue(t *testing.T, app *fiber.App) {
	t.Helper()
	for _, p := range []map[string]interface{}{
		{"nome": "Mesa", "preco": 250.0, "categoria": "moveis", "quantidade": 4},
		{"nome": "Cama", "preco": 900.0, "categoria": "moveis"},
		{"nome": "Fone", "preco": 49.9, "categoria": "eletronicos"},
		{"nome": "Mouse", "preco": 10.0, "categoria": "eletronicos"},
		{"nome": "Monitor", "preco": 50.0, "categoria": "eletronicos-usados"},
		{"nome": "Óculos de sol", "preco": 120.0, "categoria": "acessorios"},
	} {
		createProduct(t, app, p)
	}
}

func TestCreateProduct(t *testing.T) {
	app := setupApp(t)

	body := map[string]interface{}{
		"nome":         "Smartphone",
		"descricao":    "Latest model smartphone",
		"quantidade":   50,
		"preco":        799.99,
		"desconto":     10.0,
		"dataDesconto": "2026-12-01T00:00:00Z",
		"categoria":    "eletronicos",
		"imagem":       "https://example.com/phone.png",
	}
	resp := doJSON(t, app, http.MethodPost, "/produtos", body)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var created productEnvelope
	decode(t, resp, &created)
	assert.Equal(t, "Produto criado com sucesso", created.Message)
	_, err := uuid.Parse(created.Product.ID)
	assert.NoError(t, err)
	assert.Equal(t, "Smartphone", created.Product.Nome)
	assert.Equal(t, "Latest model smartphone", created.Product.Descricao)
	assert.Equal(t, 50, created.Product.Quantidade)
	assert.Equal(t, 799.99, created.Product.Preco)
	assert.Equal(t, 10.0, created.Product.Desconto)
	require.NotNil(t, created.Product.DataDesconto)
	assert.True(t, created.Product.DataDesconto.Equal(time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "eletronicos", created.Product.Categoria)
	assert.Equal(t, "https://example.com/phone.png", created.Product.Imagem)

	other := createProduct(t, app, map[string]interface{}{"nome": "Tablet", "preco": 1.0, "categoria": "eletronicos"})
	assert.NotEqual(t, created.Product.ID, other.ID)
}

func TestCreateProductValidation(t *testing.T) {
	app := setupApp(t)
	seedCatalogue(t, app)
	_, before := listProducts(t, app, nil)

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"missing nome", map[string]interface{}{"preco": 10.0, "categoria": "x"}},
		{"missing preco", map[string]interface{}{"nome": "Lapis", "categoria": "x"}},
		{"wrong type", map[string]interface{}{"nome": "Lapis", "preco": "caro", "categoria": "x"}},
		{"bad image", map[string]interface{}{"nome": "Lapis", "preco": 1.0, "categoria": "x", "imagem": "lapis"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doJSON(t, app, http.MethodPost, "/produtos", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			var failed productEnvelope
			decode(t, resp, &failed)
			assert.Equal(t, "Erro na validação dos dados", failed.Message)
			assert.NotEmpty(t, failed.Error)
		})
	}

	_, after := listProducts(t, app, nil)
	assert.Len(t, after, len(before))
}

func TestCreateProductReportsFirstViolation(t *testing.T) {
	app := setupApp(t)

	resp := doJSON(t, app, http.MethodPost, "/produtos", map[string]interface{}{"preco": 10.0, "categoria": "x"})
	var failed productEnvelope
	decode(t, resp, &failed)
	assert.Equal(t, `"nome" is required`, failed.Error)
}

func TestListProducts(t *testing.T) {
	app := setupApp(t)

	status, _ := listProducts(t, app, nil)
	assert.Equal(t, http.StatusNotFound, status)

	seedCatalogue(t, app)

	status, products := listProducts(t, app, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.ElementsMatch(t, []string{"Mesa", "Cama", "Fone", "Mouse", "Monitor", "Óculos de sol"}, names(products))
}

func TestListProductsFilters(t *testing.T) {
	app := setupApp(t)
	seedCatalogue(t, app)

	tests := []struct {
		name  string
		query url.Values
		want  []string
	}{
		{"category exact", url.Values{"categoria": {"eletronicos"}}, []string{"Fone", "Mouse"}},
		{"name substring case-insensitive", url.Values{"nome": {"ME"}}, []string{"Mesa"}},
		{"name substring inside word", url.Values{"nome": {"on"}}, []string{"Fone", "Monitor"}},
		{"price range inclusive", url.Values{"precoMin": {"10"}, "precoMax": {"50"}}, []string{"Fone", "Mouse", "Monitor"}},
		{"price min only", url.Values{"precoMin": {"250"}}, []string{"Mesa", "Cama"}},
		{"price max only", url.Values{"precoMax": {"49.9"}}, []string{"Fone", "Mouse"}},
		{"combined", url.Values{"categoria": {"moveis"}, "precoMax": {"500"}}, []string{"Mesa"}},
		{"like wildcards are literal", url.Values{"nome": {"%"}}, nil},
		{"accented name lowercase query", url.Values{"nome": {"óculos"}}, []string{"Óculos de sol"}},
		{"accented name uppercase query", url.Values{"nome": {"ÓCULOS"}}, []string{"Óculos de sol"}},
		{"accented name with other constraints", url.Values{"nome": {"ÓC"}, "precoMin": {"100"}}, []string{"Óculos de sol"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, products := listProducts(t, app, tt.query)
			if tt.want == nil {
				assert.Equal(t, http.StatusNotFound, status)
				return
			}
			assert.Equal(t, http.StatusOK, status)
			assert.ElementsMatch(t, tt.want, names(products))
		})
	}
}

func TestListProductsNoMatch(t *testing.T) {
	app := setupApp(t)
	seedCatalogue(t, app)

	resp := doJSON(t, app, http.MethodGet, "/produtos?categoria=livros", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	var body map[string]string
	decode(t, resp, &body)
	assert.Equal(t, "Nenhum produto encontrado!", body["message"])
}

func TestListProductsRejectsNonNumericPrice(t *testing.T) {
	app := setupApp(t)
	seedCatalogue(t, app)

	resp := doJSON(t, app, http.MethodGet, "/produtos?precoMin=barato", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestGetProductByID(t *testing.T) {
	app := setupApp(t)
	created := createProduct(t, app, map[string]interface{}{"nome": "Mesa", "preco": 250.0, "categoria": "moveis"})

	resp := doJSON(t, app, http.MethodGet, "/produtos/"+created.ID, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var fetched productEnvelope
	decode(t, resp, &fetched)
	assert.Equal(t, created, fetched.Product)

	resp = doJSON(t, app, http.MethodGet, "/produtos/"+uuid.New().String(), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodGet, "/produtos/not-an-id", nil)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	var failed map[string]string
	decode(t, resp, &failed)
	assert.Equal(t, "Ocorreu um erro", failed["message"])
}

func TestUpdateProduct(t *testing.T) {
	app := setupApp(t)
	created := createProduct(t, app, map[string]interface{}{
		"nome": "Mesa", "descricao": "Mesa de jantar", "preco": 250.0, "categoria": "moveis", "quantidade": 4,
	})

	update := map[string]interface{}{"nome": "Mesa Grande", "preco": 300.0, "categoria": "moveis", "quantidade": 2}
	resp := doJSON(t, app, http.MethodPut, "/produtos/"+created.ID, update)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var updated map[string]string
	decode(t, resp, &updated)
	assert.Equal(t, "Produto editado!", updated["message"])

	resp = doJSON(t, app, http.MethodGet, "/produtos/"+created.ID, nil)
	var fetched productEnvelope
	decode(t, resp, &fetched)
	assert.Equal(t, "Mesa Grande", fetched.Product.Nome)
	assert.Equal(t, 300.0, fetched.Product.Preco)
	assert.Equal(t, 2, fetched.Product.Quantidade)
	// Attributes absent from the body are left alone.
	assert.Equal(t, "Mesa de jantar", fetched.Product.Descricao)
}

func TestUpdateProductInvalidBodyLeavesRecordUnchanged(t *testing.T) {
	app := setupApp(t)
	created := createProduct(t, app, map[string]interface{}{"nome": "Mesa", "preco": 250.0, "categoria": "moveis"})

	resp := doJSON(t, app, http.MethodPut, "/produtos/"+created.ID, map[string]interface{}{"nome": "Mesa Nova", "preco": -1.0, "categoria": "moveis"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodGet, "/produtos/"+created.ID, nil)
	var fetched productEnvelope
	decode(t, resp, &fetched)
	assert.Equal(t, created, fetched.Product)
}

func TestUpdateProductNotFound(t *testing.T) {
	app := setupApp(t)

	body := map[string]interface{}{"nome": "Mesa", "preco": 250.0, "categoria": "moveis"}
	resp := doJSON(t, app, http.MethodPut, "/produtos/"+uuid.New().String(), body)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodPut, "/produtos/123", body)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	resp.Body.Close()
}

func TestDeleteProduct(t *testing.T) {
	app := setupApp(t)
	created := createProduct(t, app, map[string]interface{}{"nome": "Mesa", "preco": 250.0, "categoria": "moveis"})

	resp := doJSON(t, app, http.MethodDelete, "/produtos/"+created.ID, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var deleted map[string]string
	decode(t, resp, &deleted)
	assert.Equal(t, "Produto excluído.", deleted["message"])

	// Verify deletion
	resp = doJSON(t, app, http.MethodGet, "/produtos/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodDelete, "/produtos/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}
