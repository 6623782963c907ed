package adminapi

import (
	"net/http"

	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/karadag/storefront/internal/auth"
	"github.com/karadag/storefront/internal/webserver"
)

type loginPayload struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func registerAuthRoutes() {
	webserver.ApiPOST("/auth/register", register)
	webserver.ApiPOST("/auth/login", login)
	webserver.ApiPOST("/auth/logout", logout)
}

func register(c echo.Context) error {
	var payload auth.RegisterInput
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse registration", nil)
	}
	u, err := GetAppContext(c).AuthService().Register(c.Request().Context(), payload)
	if err != nil {
		return failErr(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message": "Registration successful",
		"user":    u,
	})
}

// login issues a bearer token and also opens a cookie session
func login(c echo.Context) error {
	var payload loginPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse login", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}
	appCtx := GetAppContext(c)
	result, err := appCtx.AuthService().Login(c.Request().Context(), payload.Email, payload.Password)
	if err != nil {
		return failErr(c, err)
	}

	sess, err := session.Get(appCtx.Config().Web.SessionName, c)
	if err == nil {
		sess.Values[auth.SessionUserID] = result.User.ID
		sess.Values[auth.SessionRole] = string(result.User.Role)
		if err := sess.Save(c.Request(), c.Response()); err != nil {
			zap.L().Warn("failed to save login session", zap.Error(err))
		}
	}
	return c.JSON(http.StatusOK, result)
}

func logout(c echo.Context) error {
	sess, err := session.Get(GetAppContext(c).Config().Web.SessionName, c)
	if err == nil && !sess.IsNew {
		sess.Options.MaxAge = -1
		_ = sess.Save(c.Request(), c.Response())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"message": "Logged out"})
}
