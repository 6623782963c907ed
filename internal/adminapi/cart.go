package adminapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/karadag/storefront/internal/domain"
	"github.com/karadag/storefront/internal/webserver"
)

// flexID accepts an id as a JSON string or a bare number without going through float64
type flexID int64

func (f *flexID) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return err
	}
	*f = flexID(id)
	return nil
}

type cartPayload struct {
	ProductID flexID `json:"product_id"`
	Quantity  *int   `json:"quantity"`
}

func (p cartPayload) productID() (int64, bool) {
	return int64(p.ProductID), p.ProductID > 0
}

func registerCartRoutes() {
	auth := requireAuth(cartFailErr)
	webserver.ApiGET("/cart", getCart, auth)
	webserver.ApiPOST("/cart", addCartItem, auth)
	webserver.ApiPUT("/cart", updateCartItem, auth)
	webserver.ApiDELETE("/cart", clearCart, auth)
	webserver.ApiDELETE("/cart/:product_id", removeCartItem, auth)
}

func cartOK(c echo.Context, message string, cart *domain.Cart) error {
	body := map[string]interface{}{"success": true, "data": cart}
	if message != "" {
		body["message"] = message
	}
	return c.JSON(http.StatusOK, body)
}

func cartFail(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]interface{}{"success": false, "message": message})
}

func cartFailErr(c echo.Context, err error) error {
	logUnexpected(c, err)
	return cartFail(c, statusOf(domain.KindOf(err)), domain.MessageOf(err))
}

func getCart(c echo.Context) error {
	cart, err := GetAppContext(c).CartService().Get(c.Request().Context(), principal(c))
	if err != nil {
		return cartFailErr(c, err)
	}
	return cartOK(c, "", cart)
}

func addCartItem(c echo.Context) error {
	var payload cartPayload
	if err := c.Bind(&payload); err != nil {
		return cartFail(c, http.StatusBadRequest, "Unable to parse cart parameters")
	}
	id, ok := payload.productID()
	if !ok {
		return cartFail(c, http.StatusBadRequest, "Product ID is required")
	}
	cart, err := GetAppContext(c).CartService().AddItem(c.Request().Context(), principal(c), id, payload.Quantity)
	if err != nil {
		return cartFailErr(c, err)
	}
	return cartOK(c, "Product added to cart", cart)
}

func updateCartItem(c echo.Context) error {
	var payload cartPayload
	if err := c.Bind(&payload); err != nil {
		return cartFail(c, http.StatusBadRequest, "Unable to parse cart parameters")
	}
	id, ok := payload.productID()
	if !ok || payload.Quantity == nil {
		return cartFail(c, http.StatusBadRequest, "Product ID and quantity are required")
	}
	cart, err := GetAppContext(c).CartService().UpdateQuantity(c.Request().Context(), principal(c), id, *payload.Quantity)
	if err != nil {
		return cartFailErr(c, err)
	}
	return cartOK(c, "Cart updated", cart)
}

// removeCartItem filters the line out; an id that cannot be a product matches no line
func removeCartItem(c echo.Context) error {
	id, err := parseIDParam(c, "product_id")
	if err != nil {
		id = 0
	}
	cart, err := GetAppContext(c).CartService().RemoveItem(c.Request().Context(), principal(c), id)
	if err != nil {
		return cartFailErr(c, err)
	}
	return cartOK(c, "Product removed from cart", cart)
}

func clearCart(c echo.Context) error {
	cart, err := GetAppContext(c).CartService().Clear(c.Request().Context(), principal(c))
	if err != nil {
		return cartFailErr(c, err)
	}
	return cartOK(c, "Cart cleared", cart)
}
