package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/robark/destiny-matrix/internal/api/middleware"
	"github.com/robark/destiny-matrix/internal/core/domain"
)

// requestScope collects what the pipeline stages attached to the request.
// User and order are nil when the route is served without the pipeline.
func requestScope(c echo.Context) (user *domain.User, order *domain.OrderContext, requestID string) {
	user, _ = middleware.UserFrom(c)
	order, _ = middleware.OrderFrom(c)
	requestID = c.Response().Header().Get(echo.HeaderXRequestID)
	if requestID == "" {
		requestID = c.Request().Header.Get(echo.HeaderXRequestID)
	}
	return user, order, requestID
}
