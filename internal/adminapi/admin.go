package adminapi

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/karadag/storefront/internal/catalog"
	"github.com/karadag/storefront/internal/domain"
	"github.com/karadag/storefront/internal/webserver"
	"github.com/karadag/storefront/pkg/metrics"
)

func registerUserRoutes() {
	webserver.ApiGET("/users", listUsers, requireAuth(failErr))
}

func registerAdminRoutes() {
	auth := requireAuth(failErr)
	webserver.ApiGET("/admin/products", adminListProducts, auth)
	webserver.ApiGET("/admin/products/export", exportProducts, auth)
	webserver.ApiGET("/admin/dashboard", dashboard, auth)
	webserver.ApiGET("/admin/oprlogs", listOprLogs, auth, requireAdmin)
	webserver.ApiGET("/admin/metrics/:name", queryMetric, auth, requireAdmin)
}

func listUsers(c echo.Context) error {
	users, err := GetAppContext(c).AuthService().ListUsers(c.Request().Context(), principal(c))
	if err != nil {
		return failErr(c, err)
	}
	return list(c, users, int64(len(users)))
}

func adminListProducts(c echo.Context) error {
	page, pageSize := parsePagination(c)
	q := catalog.AdminProductQuery{
		Page:     page,
		PageSize: pageSize,
		Q:        strings.TrimSpace(c.QueryParam("q")),
		Sort:     strings.TrimSpace(c.QueryParam("sort")),
		Order:    strings.ToUpper(strings.TrimSpace(c.QueryParam("order"))),
	}
	if raw := c.QueryParam("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "active must be true or false", nil)
		}
		q.Active = &active
	}

	rows, total, err := GetAppContext(c).CatalogService().AdminListProducts(c.Request().Context(), principal(c), q)
	if err != nil {
		return failErr(c, err)
	}
	return paged(c, rows, total, page, pageSize)
}

func exportProducts(c echo.Context) error {
	format := strings.ToLower(strings.TrimSpace(c.QueryParam("format")))
	if format == "" {
		format = "csv"
	}
	var buf bytes.Buffer
	if err := GetAppContext(c).CatalogService().Export(c.Request().Context(), principal(c), format, &buf); err != nil {
		return failErr(c, err)
	}

	contentType := "text/csv; charset=utf-8"
	if format == "xlsx" {
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	filename := fmt.Sprintf("products-%s.%s", time.Now().Format("20060102-150405"), format)
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, contentType, buf.Bytes())
}

func dashboard(c echo.Context) error {
	d, err := GetAppContext(c).CatalogService().Dashboard(c.Request().Context(), principal(c))
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, d)
}

func listOprLogs(c echo.Context) error {
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit < 1 || limit > 1000 {
		limit = 100
	}
	st, err := GetAppContext(c).Stores(c.Request().Context())
	if err != nil {
		return failErr(c, domain.Unexpected(err))
	}
	logs, err := st.OprLogs.List(c.Request().Context(), limit)
	if err != nil {
		return failErr(c, domain.Unexpected(err))
	}
	return list(c, logs, int64(len(logs)))
}

// queryMetric returns the samples of one metric over the last ?hours (default 1)
func queryMetric(c echo.Context) error {
	name := strings.TrimSpace(c.Param("name"))
	hours, err := strconv.Atoi(c.QueryParam("hours"))
	if err != nil || hours < 1 || hours > 24*14 {
		hours = 1
	}
	end := time.Now()
	points, err := metrics.Query(name, end.Add(-time.Duration(hours)*time.Hour), end)
	if err != nil {
		return failErr(c, domain.Unexpected(err))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"name": name, "data": points})
}
