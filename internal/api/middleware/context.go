package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/robark/destiny-matrix/internal/core/domain"
)

// Keys under which stages store request-scoped state on echo.Context.
const (
	UserKey  = "user"
	OrderKey = "order"
)

// UserFrom returns the user attached by the authentication stage.
func UserFrom(c echo.Context) (*domain.User, bool) {
	u, ok := c.Get(UserKey).(*domain.User)
	return u, ok && u != nil
}

// OrderFrom returns the order attached by the order stage.
func OrderFrom(c echo.Context) (*domain.OrderContext, bool) {
	o, ok := c.Get(OrderKey).(*domain.OrderContext)
	return o, ok && o != nil
}
