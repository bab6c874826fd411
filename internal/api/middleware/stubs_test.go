package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/robark/destiny-matrix/internal/core/domain"
)

type stubAuth struct {
	user  *domain.User
	err   error
	calls int
	token string
}

func (s *stubAuth) CurrentUser(_ context.Context, token string) (*domain.User, error) {
	s.calls++
	s.token = token
	return s.user, s.err
}

type stubDesk struct {
	services   []domain.Service
	listErr    error
	order      *domain.OrderContext
	orderErr   error
	listCalls  int
	orderCalls int
	ordered    domain.Service
}

func (s *stubDesk) ListServices(context.Context, string) ([]domain.Service, error) {
	s.listCalls++
	return s.services, s.listErr
}

func (s *stubDesk) CreateOrder(_ context.Context, _ string, svc domain.Service) (*domain.OrderContext, error) {
	s.orderCalls++
	s.ordered = svc
	return s.order, s.orderErr
}

type stubLimiter struct {
	allowed bool
	retry   time.Duration
	err     error
	keys    []string
}

func (s *stubLimiter) Allow(_ context.Context, key string) (bool, time.Duration, error) {
	s.keys = append(s.keys, key)
	return s.allowed, s.retry, s.err
}

func newContext(authHeader string) (*echo.Echo, echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/analyze-matrix", nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	rec := httptest.NewRecorder()
	return e, e.NewContext(req, rec), rec
}

func httpError(err error) *echo.HTTPError {
	he, _ := err.(*echo.HTTPError)
	return he
}
