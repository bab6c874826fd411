package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/robark/destiny-matrix/internal/core/domain"
	"github.com/robark/destiny-matrix/internal/core/ports"
)

const (
	MsgMissingBearer = "Please send Bearer token in Authorization header."
	MsgInvalidToken  = "Expired or invalid bearer token."
	MsgAuthFailed    = "An error occurred during authentication."
)

// AuthStage validates the bearer token against the platform and attaches the
// resulting user to the request.
type AuthStage struct {
	auth ports.Authenticator
	log  zerolog.Logger
}

func NewAuthStage(auth ports.Authenticator, log zerolog.Logger) *AuthStage {
	return &AuthStage{auth: auth, log: log.With().Str("stage", "auth").Logger()}
}

func (s *AuthStage) Name() string { return "auth" }

func (s *AuthStage) Run(c echo.Context) error {
	req := c.Request()
	path := req.URL.Path
	s.log.Info().Str("path", path).Msg("authentication request")

	token, err := BearerToken(req)
	if err != nil {
		s.log.Warn().Str("path", path).Msg("missing or invalid authorization header")
		return stageError(http.StatusUnauthorized, MsgMissingBearer, err)
	}

	user, err := s.auth.CurrentUser(req.Context(), token)
	switch {
	case errors.Is(err, domain.ErrInvalidCredential):
		s.log.Warn().Err(err).
			Str("path", path).
			Str("token", Fingerprint(token)).
			Msg("authentication failed")
		return stageError(http.StatusUnauthorized, MsgInvalidToken, err)
	case err != nil:
		s.log.Error().Err(err).
			Str("path", path).
			Str("token", Fingerprint(token)).
			Msg("authentication error")
		return stageError(http.StatusInternalServerError, MsgAuthFailed, err)
	}

	c.Set(UserKey, user)
	s.log.Info().
		Str("path", path).
		Str("user_id", user.ID).
		Str("email", user.Email).
		Msg("user authenticated")
	return nil
}
