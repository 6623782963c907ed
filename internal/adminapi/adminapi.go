// Package adminapi registers the storefront HTTP handlers on the webserver.
package adminapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/karadag/storefront/internal/app"
	"github.com/karadag/storefront/internal/domain"
	"github.com/karadag/storefront/internal/webserver"
	"github.com/karadag/storefront/pkg/common"
)

const principalKey = "principal"

// Init registers every route; webserver.Init must run first
func Init() {
	webserver.ApiGET("/health", health)
	registerAuthRoutes()
	registerUserRoutes()
	registerCategoryRoutes()
	registerProductRoutes()
	registerCartRoutes()
	registerAdminRoutes()
}

func GetAppContext(c echo.Context) app.AppContext {
	return c.Get(webserver.AppContextKey).(app.AppContext)
}

// Response envelope for errors outside the cart endpoints
type ErrorResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Detail  interface{} `json:"detail,omitempty"`
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, map[string]interface{}{"data": data})
}

// list renders {data, total}
func list(c echo.Context, data interface{}, total int64) error {
	return c.JSON(http.StatusOK, map[string]interface{}{"data": data, "total": total})
}

func paged(c echo.Context, data interface{}, total int64, page, pageSize int) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"data":     data,
		"total":    total,
		"page":     page,
		"pageSize": pageSize,
	})
}

func withMessage(c echo.Context, status int, message string, data interface{}) error {
	return c.JSON(status, map[string]interface{}{"message": message, "data": data})
}

func fail(c echo.Context, status int, code, message string, detail interface{}) error {
	return c.JSON(status, ErrorResponse{Code: code, Message: message, Detail: detail})
}

// statusOf maps a domain error kind to its HTTP status
func statusOf(kind domain.Kind) int {
	switch kind {
	case domain.KindUnauthenticated:
		return http.StatusUnauthorized
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindValidationFailed:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func logUnexpected(c echo.Context, err error) {
	if domain.KindOf(err) == domain.KindUnexpected {
		zap.L().Error("request failed",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Path()),
			zap.Error(err))
	}
}

// failErr renders a service error
func failErr(c echo.Context, err error) error {
	logUnexpected(c, err)
	kind := domain.KindOf(err)
	return fail(c, statusOf(kind), string(kind), domain.MessageOf(err), nil)
}

func handleValidationError(c echo.Context, err error) error {
	return fail(c, http.StatusBadRequest, string(domain.KindValidationFailed), common.ValidationMessage(err), nil)
}

// parsePagination reads page and perPage (or pageSize), defaulting to 1 and 20
func parsePagination(c echo.Context) (int, int) {
	page, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil || page < 1 {
		page = 1
	}
	raw := c.QueryParam("perPage")
	if raw == "" {
		raw = c.QueryParam("pageSize")
	}
	pageSize, err := strconv.Atoi(raw)
	if err != nil || pageSize < 1 || pageSize > 500 {
		pageSize = 20
	}
	return page, pageSize
}

func parseIDParam(c echo.Context, name string) (int64, error) {
	return common.ParseInt64(c.Param(name))
}

// requireAuth resolves the caller through the auth gate; render writes the 401
func requireAuth(render func(c echo.Context, err error) error) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, err := GetAppContext(c).Gate().Resolve(c.Request())
			if err != nil {
				return render(c, err)
			}
			c.Set(principalKey, p)
			return next(c)
		}
	}
}

// requireAdmin must run after requireAuth
func requireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !principal(c).IsAdmin() {
			return failErr(c, domain.Forbidden("Admin role required"))
		}
		return next(c)
	}
}

func principal(c echo.Context) *domain.Principal {
	p, _ := c.Get(principalKey).(*domain.Principal)
	return p
}

func health(c echo.Context) error {
	status := "ok"
	code := http.StatusOK
	if _, err := GetAppContext(c).Stores(c.Request().Context()); err != nil {
		status = "unavailable"
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, map[string]interface{}{"status": status})
}
