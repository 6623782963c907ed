package adminapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/karadag/storefront/internal/catalog"
	"github.com/karadag/storefront/internal/webserver"
)

// registerCategoryRoutes registers the category listing and admin creation
func registerCategoryRoutes() {
	webserver.ApiGET("/categories", listCategories)
	webserver.ApiPOST("/categories", createCategory, requireAuth(failErr))
}

func listCategories(c echo.Context) error {
	rows, err := GetAppContext(c).CatalogService().ListCategories(c.Request().Context())
	if err != nil {
		return failErr(c, err)
	}
	return list(c, rows, int64(len(rows)))
}

func createCategory(c echo.Context) error {
	var payload catalog.CategoryInput
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse category parameters", nil)
	}

	cat, err := GetAppContext(c).CatalogService().CreateCategory(c.Request().Context(), principal(c), payload)
	if err != nil {
		return failErr(c, err)
	}
	return withMessage(c, http.StatusCreated, "Category created", cat)
}
