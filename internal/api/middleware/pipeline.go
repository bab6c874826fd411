package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/robark/destiny-matrix/internal/api/metrics"
	"github.com/robark/destiny-matrix/internal/core/domain"
)

// Stage is one step of the request pipeline. Run either enriches the echo
// context for later stages and the handler, or returns the error that ends
// the request. Stages format their own client-facing errors.
type Stage interface {
	Name() string
	Run(c echo.Context) error
}

// Pipeline runs stages in order in front of the wrapped handler. The first
// failing stage ends the request; its error reaches the HTTP error handler
// unchanged and no later stage or handler runs.
func Pipeline(stages ...Stage) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			for _, s := range stages {
				if err := s.Run(c); err != nil {
					metrics.StageFailuresTotal.WithLabelValues(s.Name(), strconv.Itoa(statusOf(err))).Inc()
					return err
				}
			}
			return next(c)
		}
	}
}

const bearerPrefix = "Bearer "

// BearerToken extracts the credential from the Authorization header. The
// scheme must be exactly "Bearer " and the token non-blank.
func BearerToken(r *http.Request) (string, error) {
	h := r.Header.Get(echo.HeaderAuthorization)
	if !strings.HasPrefix(h, bearerPrefix) {
		return "", domain.ErrMissingCredential
	}
	token := h[len(bearerPrefix):]
	if strings.TrimSpace(token) == "" {
		return "", domain.ErrMissingCredential
	}
	return token, nil
}

func stageError(status int, msg string, cause error) *echo.HTTPError {
	return echo.NewHTTPError(status, msg).SetInternal(cause)
}

func statusOf(err error) int {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	return http.StatusInternalServerError
}
