package v1_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gestaopro/internal/app"
	"gestaopro/internal/config"
	v1 "gestaopro/internal/infrastructure/http/v1"
	"gestaopro/internal/infrastructure/http/v1/handlers"
	"gestaopro/pkg/logger"
)

type client struct {
	t      *testing.T
	router http.Handler
	token  string
}

func newClient(t *testing.T) *client {
	t.Helper()
	logger.SetDefault(logger.NewNop())

	cfg := config.Config{JWTSecret: "test-secret", IdempotencyTTL: time.Hour}
	backend := app.NewMemoryBackend(cfg.IdempotencyTTL)
	services, err := app.NewServices(cfg, backend, nil)
	require.NoError(t, err)

	router := v1.NewRouter(v1.RouterConfig{
		Services:           services,
		Logger:             logger.NewNop(),
		HealthChecks:       map[string]handlers.Pinger{"storage": backend},
		IdempotencyEnabled: true,
		Version:            "test",
	})
	return &client{t: t, router: router}
}

func (c *client) do(method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	c.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	c.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

// login registers a fresh account and keeps its access token.
func (c *client) login(email string) {
	c.t.Helper()
	c.token = ""
	rec := c.do(http.MethodPost, "/api/v1/auth/register", map[string]any{
		"email": email, "password": "s3cret-pass", "name": "Owner",
	})
	require.Equal(c.t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = c.do(http.MethodPost, "/api/v1/auth/login", map[string]any{
		"email": email, "password": "s3cret-pass",
	})
	require.Equal(c.t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[struct {
		Tokens struct {
			AccessToken string `json:"accessToken"`
		} `json:"tokens"`
	}](c.t, rec)
	c.token = resp.Tokens.AccessToken
}

type errorBody struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details"`
}

type productBody struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	StockQuantity string `json:"stockQuantity"`
	CategoryID    string `json:"categoryId"`
}

type saleBody struct {
	ID          string `json:"id"`
	Number      string `json:"number"`
	TotalAmount string `json:"totalAmount"`
	CustomerID  string `json:"customerId"`
	Items       []struct {
		ProductID string `json:"productId"`
		Subtotal  string `json:"subtotal"`
	} `json:"items"`
}

func (c *client) createProduct(name, price, stock string) productBody {
	c.t.Helper()
	rec := c.do(http.MethodPost, "/api/v1/products", map[string]any{
		"name": name, "costPrice": "1.00", "salePrice": price, "stockQuantity": stock,
	})
	require.Equal(c.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[productBody](c.t, rec)
}

func (c *client) stockOf(productID string) string {
	c.t.Helper()
	rec := c.do(http.MethodGet, "/api/v1/products/"+productID, nil)
	require.Equal(c.t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[productBody](c.t, rec).StockQuantity
}

func TestHealth(t *testing.T) {
	c := newClient(t)

	rec := c.do(http.MethodGet, "/health/live", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = c.do(http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"storage":"healthy"`)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestAuth_RequiredOnBusinessRoutes(t *testing.T) {
	c := newClient(t)

	rec := c.do(http.MethodGet, "/api/v1/products", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", decode[errorBody](t, rec).Code)

	c.token = "garbage"
	rec = c.do(http.MethodGet, "/api/v1/products", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_MeAndLogout(t *testing.T) {
	c := newClient(t)
	c.login("owner@example.com")

	rec := c.do(http.MethodGet, "/api/v1/auth/me", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "owner@example.com", decode[map[string]any](t, rec)["email"])

	rec = c.do(http.MethodPost, "/api/v1/auth/logout", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestAuth_DuplicateRegistration(t *testing.T) {
	c := newClient(t)
	c.login("dup@example.com")
	c.token = ""

	rec := c.do(http.MethodPost, "/api/v1/auth/register", map[string]any{
		"email": "DUP@example.com", "password": "another-pass",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCategories_CRUDAndDuplicateName(t *testing.T) {
	c := newClient(t)
	c.login("cat@example.com")

	rec := c.do(http.MethodPost, "/api/v1/categories", map[string]any{"name": "Drinks"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[map[string]any](t, rec)
	catID := created["id"].(string)

	rec = c.do(http.MethodPost, "/api/v1/categories", map[string]any{"name": "drinks"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "DUPLICATE_ENTRY", decode[errorBody](t, rec).Code)

	rec = c.do(http.MethodPatch, "/api/v1/categories/"+catID, map[string]any{"description": "cold"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "cold", decode[map[string]any](t, rec)["description"])

	rec = c.do(http.MethodGet, "/api/v1/categories/search?q=dri", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[struct{ Items []any }](t, rec).Items, 1)

	rec = c.do(http.MethodDelete, "/api/v1/categories/"+catID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = c.do(http.MethodGet, "/api/v1/categories/"+catID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCategoryDelete_DetachesProducts(t *testing.T) {
	c := newClient(t)
	c.login("detach@example.com")

	rec := c.do(http.MethodPost, "/api/v1/categories", map[string]any{"name": "Snacks"})
	require.Equal(t, http.StatusCreated, rec.Code)
	catID := decode[map[string]any](t, rec)["id"].(string)

	p := c.createProduct("Chips", "4.00", "3")
	rec = c.do(http.MethodPatch, "/api/v1/products/"+p.ID, map[string]any{"categoryId": catID})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, catID, decode[productBody](t, rec).CategoryID)

	rec = c.do(http.MethodDelete, "/api/v1/categories/"+catID, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = c.do(http.MethodGet, "/api/v1/products/"+p.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[productBody](t, rec).CategoryID)
}

func TestProducts_ListPaginationAndValidation(t *testing.T) {
	c := newClient(t)
	c.login("list@example.com")

	for i := 0; i < 3; i++ {
		c.createProduct(fmt.Sprintf("Item %d", i), "2.00", "10")
	}

	rec := c.do(http.MethodGet, "/api/v1/products?page=2&limit=2", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	page := decode[struct {
		Items      []productBody `json:"items"`
		TotalCount int64         `json:"totalCount"`
		Page       int           `json:"page"`
		TotalPages int           `json:"totalPages"`
	}](t, rec)
	assert.Len(t, page.Items, 1)
	assert.Equal(t, int64(3), page.TotalCount)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 2, page.TotalPages)

	rec = c.do(http.MethodPost, "/api/v1/products", map[string]any{
		"name": "Cheap", "costPrice": "5.00", "salePrice": "4.00",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", decode[errorBody](t, rec).Code)

	rec = c.do(http.MethodGet, "/api/v1/products/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProducts_StockAndLowStock(t *testing.T) {
	c := newClient(t)
	c.login("stock@example.com")
	p := c.createProduct("Soap", "3.00", "10")

	rec := c.do(http.MethodPatch, "/api/v1/products/"+p.ID+"/stock", map[string]any{"delta": "-7"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "3", decode[productBody](t, rec).StockQuantity)

	rec = c.do(http.MethodPatch, "/api/v1/products/"+p.ID+"/stock", map[string]any{"delta": "-4"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "INSUFFICIENT_STOCK", decode[errorBody](t, rec).Code)

	rec = c.do(http.MethodPatch, "/api/v1/products/"+p.ID+"/stock", map[string]any{"delta": "1", "quantity": "2"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = c.do(http.MethodGet, "/api/v1/products/low-stock", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	low := decode[struct{ Items []productBody }](t, rec)
	require.Len(t, low.Items, 1)
	assert.Equal(t, p.ID, low.Items[0].ID)

	rec = c.do(http.MethodPatch, "/api/v1/products/"+p.ID+"/stock", map[string]any{"quantity": "50"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = c.do(http.MethodGet, "/api/v1/products/low-stock", nil)
	assert.Empty(t, decode[struct{ Items []productBody }](t, rec).Items)
}

func TestExpenses_RecurrenceAndMonthlyTotal(t *testing.T) {
	c := newClient(t)
	c.login("exp@example.com")

	rec := c.do(http.MethodPost, "/api/v1/expenses", map[string]any{
		"description": "Rent", "amount": "1000", "category": "Fixed",
		"date": "2024-03-01", "isRecurring": true,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "RECURRENCE_PERIOD_REQUIRED", decode[errorBody](t, rec).Code)

	for _, e := range []map[string]any{
		{"description": "Rent", "amount": "1000", "category": "Fixed", "date": "2024-03-01", "isRecurring": true, "recurrencePeriod": "monthly"},
		{"description": "Power", "amount": "150.50", "category": "fixed", "date": "2024-03-31T23:00:00Z"},
		{"description": "Old", "amount": "99", "category": "Other", "date": "2024-02-29"},
	} {
		rec = c.do(http.MethodPost, "/api/v1/expenses", e)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec = c.do(http.MethodGet, "/api/v1/expenses/monthly-total?year=2024&month=3", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	total := decode[map[string]any](t, rec)
	assert.Equal(t, "1150.5", total["total"])
	assert.EqualValues(t, 2, total["count"])

	rec = c.do(http.MethodGet, "/api/v1/expenses?category=FIXED&startDate=2024-03-01&endDate=2024-03-31", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 2, decode[map[string]any](t, rec)["totalCount"])

	rec = c.do(http.MethodGet, "/api/v1/expenses/monthly-total?year=2024&month=13", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSales_Lifecycle(t *testing.T) {
	c := newClient(t)
	c.login("sales@example.com")
	a := c.createProduct("Product A", "5.00", "10")
	b := c.createProduct("Product B", "2.50", "4")

	rec := c.do(http.MethodPost, "/api/v1/sales", map[string]any{
		"paymentMethod": "cash",
		"saleDate":      "2024-05-10",
		"items": []map[string]any{
			{"productId": a.ID, "quantity": "2", "unitPrice": "5.00"},
			{"productId": b.ID, "quantity": "1", "unitPrice": "2.50"},
		},
		"totalAmount": "999",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	sale := decode[saleBody](t, rec)
	assert.Equal(t, "12.5", sale.TotalAmount)
	assert.NotEmpty(t, sale.Number)
	assert.Len(t, sale.Items, 2)
	assert.Equal(t, "8", c.stockOf(a.ID))
	assert.Equal(t, "3", c.stockOf(b.ID))

	rec = c.do(http.MethodPatch, "/api/v1/sales/"+sale.ID, map[string]any{
		"items": []map[string]any{
			{"productId": a.ID, "quantity": "5", "unitPrice": "5.00"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "25", decode[saleBody](t, rec).TotalAmount)
	assert.Equal(t, "5", c.stockOf(a.ID))
	assert.Equal(t, "4", c.stockOf(b.ID))

	rec = c.do(http.MethodGet, "/api/v1/sales/monthly-total?year=2024&month=5", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "25", decode[map[string]any](t, rec)["total"])

	rec = c.do(http.MethodGet, "/api/v1/sales/top-products?limit=5", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	top := decode[struct {
		Items []struct {
			ProductID string `json:"productId"`
		} `json:"items"`
	}](t, rec)
	require.Len(t, top.Items, 1)
	assert.Equal(t, a.ID, top.Items[0].ProductID)

	rec = c.do(http.MethodGet, "/api/v1/sales/"+sale.ID+"/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[struct{ Items []any }](t, rec).Items, 2)

	rec = c.do(http.MethodDelete, "/api/v1/sales/"+sale.ID, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "10", c.stockOf(a.ID))

	rec = c.do(http.MethodGet, "/api/v1/sales/"+sale.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSales_InsufficientStockRollsBack(t *testing.T) {
	c := newClient(t)
	c.login("rollback@example.com")
	a := c.createProduct("Product A", "5.00", "10")
	b := c.createProduct("Product B", "5.00", "1")

	rec := c.do(http.MethodPost, "/api/v1/sales", map[string]any{
		"paymentMethod": "card",
		"saleDate":      "2024-05-10T12:00:00Z",
		"items": []map[string]any{
			{"productId": a.ID, "quantity": "3", "unitPrice": "5.00"},
			{"productId": b.ID, "quantity": "2", "unitPrice": "5.00"},
		},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "INSUFFICIENT_STOCK", decode[errorBody](t, rec).Code)
	assert.Equal(t, "10", c.stockOf(a.ID))
	assert.Equal(t, "1", c.stockOf(b.ID))

	rec = c.do(http.MethodGet, "/api/v1/sales", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 0, decode[map[string]any](t, rec)["totalCount"])
}

func TestSales_ListFilters(t *testing.T) {
	c := newClient(t)
	c.login("filters@example.com")
	a := c.createProduct("Apple", "1.00", "100")
	b := c.createProduct("Banana", "1.00", "100")

	for _, s := range []struct {
		product string
		date    string
	}{{a.ID, "2024-01-05"}, {b.ID, "2024-01-20"}, {a.ID, "2024-02-01"}} {
		rec := c.do(http.MethodPost, "/api/v1/sales", map[string]any{
			"paymentMethod": "cash",
			"saleDate":      s.date,
			"items":         []map[string]any{{"productId": s.product, "quantity": "1", "unitPrice": "1.00"}},
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := c.do(http.MethodGet, "/api/v1/sales?products="+a.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 2, decode[map[string]any](t, rec)["totalCount"])

	rec = c.do(http.MethodGet, "/api/v1/sales?startDate=2024-01-01&endDate=2024-01-31", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 2, decode[map[string]any](t, rec)["totalCount"])

	rec = c.do(http.MethodGet, "/api/v1/sales?search=banana", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode[map[string]any](t, rec)["totalCount"])

	rec = c.do(http.MethodGet, "/api/v1/sales?products=nope", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOwnersAreIsolated(t *testing.T) {
	c := newClient(t)
	c.login("first@example.com")
	p := c.createProduct("Secret", "1.00", "1")

	c.login("second@example.com")
	rec := c.do(http.MethodGet, "/api/v1/products/"+p.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = c.do(http.MethodGet, "/api/v1/products", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 0, decode[map[string]any](t, rec)["totalCount"])
}

func TestIdempotency_ReplaysCreate(t *testing.T) {
	c := newClient(t)
	c.login("idem@example.com")
	a := c.createProduct("Product A", "5.00", "10")

	body := map[string]any{
		"paymentMethod": "cash",
		"saleDate":      "2024-05-10",
		"items":         []map[string]any{{"productId": a.ID, "quantity": "1", "unitPrice": "5.00"}},
	}
	first := c.do(http.MethodPost, "/api/v1/sales", body, "X-Idempotency-Key", "k-1")
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())

	second := c.do(http.MethodPost, "/api/v1/sales", body, "X-Idempotency-Key", "k-1")
	require.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, "true", second.Header().Get("Idempotent-Replayed"))
	assert.Equal(t, decode[saleBody](t, first).ID, decode[saleBody](t, second).ID)
	assert.Equal(t, "9", c.stockOf(a.ID))

	body["paymentMethod"] = "card"
	rec := c.do(http.MethodPost, "/api/v1/sales", body, "X-Idempotency-Key", "k-1")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestDashboard(t *testing.T) {
	c := newClient(t)
	c.login("dash@example.com")
	a := c.createProduct("Product A", "5.00", "10")

	rec := c.do(http.MethodPost, "/api/v1/sales", map[string]any{
		"paymentMethod": "cash",
		"saleDate":      "2024-05-10",
		"items":         []map[string]any{{"productId": a.ID, "quantity": "6", "unitPrice": "5.00"}},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = c.do(http.MethodPost, "/api/v1/expenses", map[string]any{
		"description": "Rent", "amount": "10", "category": "Fixed", "date": "2024-05-01",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = c.do(http.MethodGet, "/api/v1/dashboard?year=2024&month=5", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	dash := decode[map[string]any](t, rec)
	assert.Equal(t, "30", dash["salesTotal"])
	assert.Equal(t, "10", dash["expensesTotal"])
	assert.Equal(t, "20", dash["netResult"])
	assert.Len(t, dash["lowStock"], 1)
}
