package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/micromarket/marketplace-api/internal/core/domain"
	"github.com/micromarket/marketplace-api/internal/core/ports"
	"github.com/micromarket/marketplace-api/internal/pkg/metrics"
)

const actorKey = "actor"

// Auth verifies the bearer token and injects the live identity into context.
func Auth(verifier ports.TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				metrics.AuthAttemptsTotal.WithLabelValues("verify", "invalid").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
				metrics.AuthAttemptsTotal.WithLabelValues("verify", "invalid").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			user, err := verifier.Authenticate(c.Request().Context(), strings.TrimSpace(parts[1]))
			if err != nil {
				if errors.Is(err, domain.ErrUnauthenticated) {
					metrics.AuthAttemptsTotal.WithLabelValues("verify", "invalid").Inc()
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
				}
				metrics.AuthAttemptsTotal.WithLabelValues("verify", "error").Inc()
				return err
			}

			metrics.AuthAttemptsTotal.WithLabelValues("verify", "ok").Inc()
			SetActor(c, user)
			return next(c)
		}
	}
}

// SetActor stores the verified identity on the request context.
func SetActor(c echo.Context, user *domain.User) {
	c.Set(actorKey, user)
}

// Actor returns the identity injected by Auth, or nil.
func Actor(c echo.Context) *domain.User {
	user, _ := c.Get(actorKey).(*domain.User)
	return user
}
