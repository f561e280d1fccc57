package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/lemon/task-api/internal/api/middleware"
	"github.com/lemon/task-api/internal/core/domain"
)

// principal returns the identity attached by the Authenticate middleware.
// Protected groups guarantee it is non-nil; services re-check anyway.
func principal(c echo.Context) *domain.Principal {
	return middleware.PrincipalFrom(c)
}

// pathID parses the :id path parameter as a positive int64.
func pathID(c echo.Context) (int64, error) {
	return parseID(c.Param("id"), "id")
}

func parseID(raw, name string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}
