package adminapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karadag/storefront/config"
	"github.com/karadag/storefront/internal/app"
	"github.com/karadag/storefront/internal/webserver"
)

type client struct {
	t     *testing.T
	e     *echo.Echo
	token string
}

func newTestServer(t *testing.T) *client {
	t.Helper()
	cfg := config.DefaultAppConfig()
	cfg.System.Workdir = t.TempDir()
	cfg.Database.Type = "sqlite"
	cfg.Database.Name = "api_test"
	a := app.NewApplication(cfg)
	t.Cleanup(a.Release)
	require.NoError(t, a.InitDb(context.Background()))

	webserver.Init(a)
	Init()
	return &client{t: t, e: webserver.Root()}
}

func (c *client) do(method, path string, body interface{}, cookies ...*http.Cookie) (*httptest.ResponseRecorder, map[string]interface{}) {
	c.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, "/api"+path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if c.token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+c.token)
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c.e.ServeHTTP(rec, req)

	out := map[string]interface{}{}
	if strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		require.NoError(c.t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec, out
}

func (c *client) as(token string) *client {
	return &client{t: c.t, e: c.e, token: token}
}

func (c *client) login(email, password string) (string, []*http.Cookie) {
	c.t.Helper()
	rec, body := c.do(http.MethodPost, "/auth/login", map[string]string{"email": email, "password": password})
	require.Equal(c.t, http.StatusOK, rec.Code, rec.Body.String())
	return body["access_token"].(string), rec.Result().Cookies()
}

func (c *client) registerCustomer(email string) string {
	c.t.Helper()
	rec, _ := c.do(http.MethodPost, "/auth/register", map[string]string{
		"first_name": "Ayşe",
		"last_name":  "Yılmaz",
		"email":      email,
		"password":   "secret1",
		"phone":      "05550000000",
	})
	require.Equal(c.t, http.StatusCreated, rec.Code, rec.Body.String())
	token, _ := c.login(email, "secret1")
	return token
}

func firstProductID(t *testing.T, c *client, alias string) string {
	t.Helper()
	rec, body := c.do(http.MethodGet, "/products?category="+alias, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data := body["data"].([]interface{})
	require.NotEmpty(t, data)
	return data[0].(map[string]interface{})["id"].(string)
}

func TestHealth(t *testing.T) {
	c := newTestServer(t)
	rec, body := c.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestCatalogEndpoints(t *testing.T) {
	c := newTestServer(t)

	rec, body := c.do(http.MethodGet, "/categories", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 6, body["total"])

	rec, body = c.do(http.MethodGet, "/products?category=black-pepper", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 2, body["total"])

	rec, body = c.do(http.MethodGet, "/products?category=saffron", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 0, body["total"])
	assert.Equal(t, []interface{}{}, body["data"])

	rec, body = c.do(http.MethodGet, "/products?limit=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 6, body["total"])
	assert.Len(t, body["data"], 2)

	rec, _ = c.do(http.MethodGet, "/products?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = c.do(http.MethodGet, "/products/not-a-number", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec, body = c.do(http.MethodGet, "/products/12345", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Product not found", body["message"])
}

func TestProductAdminFlow(t *testing.T) {
	c := newTestServer(t)
	adminToken, _ := c.login("admin@karadagbaharat.com", "admin123")
	admin := c.as(adminToken)
	customer := c.as(c.registerCustomer("ayse@example.com"))

	rec, body := c.do(http.MethodGet, "/categories", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	catID := body["data"].([]interface{})[0].(map[string]interface{})["id"].(string)

	payload := map[string]interface{}{
		"name":        "Pul Biber - 200gr",
		"description": "Acı ve lezzetli pul biber.",
		"quantity":    25,
		"weight":      200,
		"price":       "65.00",
		"sku":         "pbr-200",
		"category_id": catID,
	}

	rec, body = c.do(http.MethodPost, "/products", payload)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHENTICATED", body["code"])

	rec, _ = customer.do(http.MethodPost, "/products", payload)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, body = admin.do(http.MethodPost, "/products", payload)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "Product created", body["message"])
	created := body["data"].(map[string]interface{})
	assert.Equal(t, "PBR-200", created["sku"])
	assert.EqualValues(t, 65, created["price"])
	id := created["id"].(string)

	rec, _ = admin.do(http.MethodPost, "/products", payload)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "duplicate sku")

	missingCat := map[string]interface{}{}
	for k, v := range payload {
		missingCat[k] = v
	}
	missingCat["sku"] = "PBR-201"
	missingCat["category_id"] = "999"
	rec, _ = admin.do(http.MethodPost, "/products", missingCat)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, body = admin.do(http.MethodPut, "/products/"+id, map[string]interface{}{"price": 70.5, "quantity": 20})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.EqualValues(t, 70.5, body["data"].(map[string]interface{})["price"])

	rec, _ = admin.do(http.MethodPut, "/products/"+id, map[string]interface{}{"sku": "MRB-100"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = admin.do(http.MethodDelete, "/products/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body = c.do(http.MethodGet, "/products/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, body["data"].(map[string]interface{})["is_active"])

	rec, body = c.do(http.MethodGet, "/products?search=pul", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 0, body["total"])

	rec, body = admin.do(http.MethodGet, "/admin/products?active=false", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, body["total"])
	assert.EqualValues(t, 20, body["pageSize"])

	rec, body = admin.do(http.MethodGet, "/admin/oprlogs", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec, _ = customer.do(http.MethodGet, "/admin/oprlogs", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCategoryCreate(t *testing.T) {
	c := newTestServer(t)
	adminToken, _ := c.login("admin@karadagbaharat.com", "admin123")
	admin := c.as(adminToken)

	rec, body := admin.do(http.MethodPost, "/categories", map[string]string{"name": "Tarçın", "description": "Seylan tarçını"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "tarcin", body["data"].(map[string]interface{})["alias"])

	rec, body = admin.do(http.MethodPost, "/categories", map[string]string{"name": "Tarçın"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_FAILED", body["code"])
}

func TestCartEndpoints(t *testing.T) {
	c := newTestServer(t)
	customer := c.as(c.registerCustomer("mehmet@example.com"))
	productID := firstProductID(t, c, "sumac")

	rec, body := c.do(http.MethodGet, "/cart", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, false, body["success"])

	rec, body = customer.do(http.MethodGet, "/cart", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, []interface{}{}, body["data"].(map[string]interface{})["items"])

	rec, body = customer.do(http.MethodPost, "/cart", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, body["success"])

	rec, _ = customer.do(http.MethodPost, "/cart", map[string]interface{}{"product_id": "4242"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, body = customer.do(http.MethodPost, "/cart", map[string]interface{}{"product_id": productID, "quantity": 2})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	cart := body["data"].(map[string]interface{})
	assert.EqualValues(t, 110, cart["total_amount"])

	rec, _ = customer.do(http.MethodPut, "/cart", map[string]interface{}{"product_id": productID})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body = customer.do(http.MethodPut, "/cart", map[string]interface{}{"product_id": productID, "quantity": 1})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 55, body["data"].(map[string]interface{})["total_amount"])

	rec, body = customer.do(http.MethodDelete, "/cart/"+productID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 0, body["data"].(map[string]interface{})["total_amount"])

	rec, _ = customer.do(http.MethodDelete, "/cart/"+productID, nil)
	assert.Equal(t, http.StatusOK, rec.Code, "removing a missing line is a no-op")

	rec, body = customer.do(http.MethodPost, "/cart", map[string]interface{}{"product_id": productID})
	require.Equal(t, http.StatusOK, rec.Code)
	rec, body = customer.do(http.MethodDelete, "/cart/not-a-product", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, body["success"])
	assert.Len(t, body["data"].(map[string]interface{})["items"], 1)

	rec, body = customer.do(http.MethodDelete, "/cart", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Cart cleared", body["message"])

	// removing from a cart that was never created
	other := c.as(c.registerCustomer("nocart@example.com"))
	rec, body = other.do(http.MethodDelete, "/cart/not-a-product", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, false, body["success"])
}

func TestCartWithSessionCookie(t *testing.T) {
	c := newTestServer(t)
	c.registerCustomer("cookie@example.com")
	_, cookies := c.login("cookie@example.com", "secret1")
	require.NotEmpty(t, cookies)

	rec, body := c.do(http.MethodGet, "/cart", nil, cookies...)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, body["success"])

	// a bad bearer token falls back to the session
	rec, _ = c.as("garbage").do(http.MethodGet, "/cart", nil, cookies...)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthErrors(t *testing.T) {
	c := newTestServer(t)

	rec, _ := c.do(http.MethodPost, "/auth/login", map[string]string{"email": "admin@karadagbaharat.com"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body := c.do(http.MethodPost, "/auth/login", map[string]string{"email": "admin@karadagbaharat.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid email or password", body["message"])

	c.registerCustomer("dup@example.com")
	rec, _ = c.do(http.MethodPost, "/auth/register", map[string]string{
		"first_name": "A", "last_name": "B", "email": "DUP@example.com", "password": "secret1", "phone": "1",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = c.do(http.MethodPost, "/auth/register", map[string]string{
		"first_name": "A", "last_name": "B", "email": "short@example.com", "password": "123", "phone": "1",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminReports(t *testing.T) {
	c := newTestServer(t)
	adminToken, _ := c.login("admin@karadagbaharat.com", "admin123")
	admin := c.as(adminToken)
	customer := c.as(c.registerCustomer("report@example.com"))

	rec, body := admin.do(http.MethodGet, "/users", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 2, body["total"])
	for _, u := range body["data"].([]interface{}) {
		assert.NotContains(t, u.(map[string]interface{}), "password")
	}
	rec, _ = customer.do(http.MethodGet, "/users", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, body = admin.do(http.MethodGet, "/admin/dashboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 6, body["data"].(map[string]interface{})["products"])

	rec, _ = admin.do(http.MethodGet, "/admin/products/export?format=csv", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), ".csv")
	assert.Equal(t, 7, strings.Count(strings.TrimSpace(rec.Body.String()), "\n")+1)

	rec, _ = admin.do(http.MethodGet, "/admin/products/export?format=pdf", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body = admin.do(http.MethodGet, "/admin/metrics/storefront_cpuuse", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "storefront_cpuuse", body["name"])
}
