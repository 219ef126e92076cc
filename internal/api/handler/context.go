package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/micromarket/marketplace-api/internal/api/middleware"
	"github.com/micromarket/marketplace-api/internal/core/domain"
)

// ctxActor returns the identity injected by the Auth middleware. A missing
// identity means the route was mounted without Auth.
func ctxActor(c echo.Context) (*domain.User, error) {
	actor := middleware.Actor(c)
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	return actor, nil
}

// pathID validates an object id path parameter.
func pathID(c echo.Context, name string) (string, error) {
	id := c.Param(name)
	if err := c.Validate(objectIDParam{ID: id}); err != nil {
		return "", err
	}
	return id, nil
}

func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return domain.Invalid("invalid payload")
	}
	return c.Validate(req)
}

func bindQuery(c echo.Context, req any) error {
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, req); err != nil {
		return domain.Invalid("invalid query parameters")
	}
	return c.Validate(req)
}
