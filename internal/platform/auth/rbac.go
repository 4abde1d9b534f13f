package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// RequireRole returns middleware that checks if the caller holds one of the
// listed roles. Matching is exact: admin is not implicitly granted, because
// several clinical routes deliberately exclude the admin role.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			callerRole := RoleFromContext(c.Request().Context())
			for _, required := range roles {
				if callerRole == required {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden,
				fmt.Sprintf("required role: %s", strings.Join(roles, " or ")))
		}
	}
}

// DenyRole returns middleware that rejects callers holding any of the listed
// roles. Used to keep admins out of participant-facing clinical data.
func DenyRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			callerRole := RoleFromContext(c.Request().Context())
			for _, denied := range roles {
				if callerRole == denied {
					return echo.NewHTTPError(http.StatusForbidden,
						fmt.Sprintf("role %s may not access this resource", callerRole))
				}
			}
			return next(c)
		}
	}
}
