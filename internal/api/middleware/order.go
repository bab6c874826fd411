package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/robark/destiny-matrix/internal/api/metrics"
	"github.com/robark/destiny-matrix/internal/core/domain"
	"github.com/robark/destiny-matrix/internal/core/ports"
)

const (
	MsgCatalogUnavailable  = "Service list could not be retrieved."
	MsgInsufficientBalance = "Insufficient balance. Please top up your account."
	MsgOrderFailed         = "Order could not be created."
	MsgVerificationFailed  = "An error occurred during service verification."
)

// OrderStage finds the configured service in the platform catalog and buys
// it for the caller. It reads the bearer token itself so it does not depend
// on an earlier stage having run.
type OrderStage struct {
	desk        ports.OrderDesk
	serviceName string
	log         zerolog.Logger
}

func NewOrderStage(desk ports.OrderDesk, serviceName string, log zerolog.Logger) *OrderStage {
	return &OrderStage{
		desk:        desk,
		serviceName: serviceName,
		log:         log.With().Str("stage", "order").Logger(),
	}
}

func (s *OrderStage) Name() string { return "order" }

func (s *OrderStage) Run(c echo.Context) error {
	req := c.Request()
	ctx := req.Context()

	log := s.log.With().Str("path", req.URL.Path).Logger()
	if u, ok := UserFrom(c); ok {
		log = log.With().Str("user_id", u.ID).Logger()
	}
	log.Info().Msg("service order verification")

	token, err := BearerToken(req)
	if err != nil {
		log.Warn().Msg("missing authorization header in order stage")
		return stageError(http.StatusUnauthorized, MsgMissingBearer, err)
	}

	services, err := s.desk.ListServices(ctx, token)
	switch {
	case errors.Is(err, domain.ErrCatalogUnavailable):
		log.Error().Err(err).Msg("failed to retrieve service list")
		return stageError(http.StatusInternalServerError, MsgCatalogUnavailable, err)
	case err != nil:
		log.Error().Err(err).Msg("service list request failed")
		return stageError(http.StatusInternalServerError, MsgVerificationFailed, err)
	}

	svc, ok := domain.FindService(services, s.serviceName)
	if !ok {
		log.Error().Str("service", s.serviceName).Int("catalog_size", len(services)).Msg("service not found in catalog")
		return stageError(http.StatusNotFound, fmt.Sprintf("%s service not found.", s.serviceName), domain.ErrServiceNotFound)
	}
	log = log.With().Str("service_id", svc.IDString()).Logger()

	order, err := s.desk.CreateOrder(ctx, token, svc)
	switch {
	case errors.Is(err, domain.ErrInsufficientBalance):
		log.Warn().Msg("order creation failed: insufficient balance")
		return stageError(http.StatusForbidden, MsgInsufficientBalance, err)
	case errors.Is(err, domain.ErrOrderFailed):
		log.Error().Err(err).Msg("order creation failed")
		return stageError(http.StatusInternalServerError, MsgOrderFailed, err)
	case err != nil:
		log.Error().Err(err).Msg("order request failed")
		return stageError(http.StatusInternalServerError, MsgVerificationFailed, err)
	}

	c.Set(OrderKey, order)
	metrics.OrdersCreatedTotal.Inc()
	log.Info().Str("order_id", order.OrderID).Msg("order created")
	return nil
}
