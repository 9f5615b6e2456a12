package middleware

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// UUIDPath rejects requests whose named path parameter is not a valid UUID
// before the handler or any storage access runs.
func UUIDPath(param string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, err := uuid.Parse(c.Param(param)); err != nil {
				return echo.NewHTTPError(http.StatusBadRequest,
					"path parameter "+param+" must be a valid UUID")
			}
			return next(c)
		}
	}
}
