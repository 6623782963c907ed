package adminapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/karadag/storefront/internal/catalog"
	"github.com/karadag/storefront/internal/webserver"
)

// registerProductRoutes registers the public catalog and admin product CRUD
func registerProductRoutes() {
	webserver.ApiGET("/products", listProducts)
	webserver.ApiGET("/products/:id", getProduct)
	webserver.ApiPOST("/products", createProduct, requireAuth(failErr))
	webserver.ApiPUT("/products/:id", updateProduct, requireAuth(failErr))
	webserver.ApiDELETE("/products/:id", deleteProduct, requireAuth(failErr))
}

func listProducts(c echo.Context) error {
	q := catalog.ProductQuery{
		Category: strings.TrimSpace(c.QueryParam("category")),
		Search:   strings.TrimSpace(c.QueryParam("search")),
	}
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "limit must be a non-negative integer", nil)
		}
		q.Limit = limit
	}

	page, err := GetAppContext(c).CatalogService().ListProducts(c.Request().Context(), q)
	if err != nil {
		return failErr(c, err)
	}
	return list(c, page.Data, page.Total)
}

func getProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	p, err := GetAppContext(c).CatalogService().GetProduct(c.Request().Context(), id)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, p)
}

func createProduct(c echo.Context) error {
	var payload catalog.ProductInput
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product", nil)
	}
	p, err := GetAppContext(c).CatalogService().CreateProduct(c.Request().Context(), principal(c), payload)
	if err != nil {
		return failErr(c, err)
	}
	return withMessage(c, http.StatusCreated, "Product created", p)
}

func updateProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	// decoded as a plain map so that only the keys present are applied
	raw := map[string]interface{}{}
	if err := c.Echo().JSONSerializer.Deserialize(c, &raw); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product", nil)
	}
	p, err := GetAppContext(c).CatalogService().UpdateProduct(c.Request().Context(), principal(c), id, raw)
	if err != nil {
		return failErr(c, err)
	}
	return withMessage(c, http.StatusOK, "Product updated", p)
}

// deleteProduct is a soft delete; the product stays readable by id
func deleteProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	p, err := GetAppContext(c).CatalogService().DeactivateProduct(c.Request().Context(), principal(c), id)
	if err != nil {
		return failErr(c, err)
	}
	return withMessage(c, http.StatusOK, "Product deleted", p)
}
