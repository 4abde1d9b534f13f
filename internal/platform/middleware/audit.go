package middleware

import (
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clinichq/clinic/internal/platform/auth"
)

// Audit returns middleware that logs who touched which clinic resource.
// Patient-identifying records (participants, appointments, enrollments,
// tasks) are health data, so every authenticated access is recorded with
// the caller, action, and outcome.
func Audit(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			path := req.URL.Path

			if !strings.HasPrefix(path, "/api/v1/") {
				return next(c)
			}

			// Run the handler first so the response status is known.
			err := next(c)

			ctx := req.Context()
			rid, _ := c.Get("request_id").(string)

			logger.Info().
				Time("ts", time.Now().UTC()).
				Str("request_id", rid).
				Str("user_id", auth.UserIDFromContext(ctx).String()).
				Str("role", auth.RoleFromContext(ctx)).
				Str("action", actionForMethod(req.Method)).
				Str("resource", resourceFromPath(path)).
				Str("path", path).
				Int("status", c.Response().Status).
				Str("remote_ip", c.RealIP()).
				Msg("access")

			return err
		}
	}
}

func actionForMethod(method string) string {
	switch method {
	case "GET":
		return "read"
	case "POST":
		return "create"
	case "PUT", "PATCH":
		return "update"
	case "DELETE":
		return "delete"
	default:
		return strings.ToLower(method)
	}
}

// resourceFromPath extracts the first path segment after /api/v1/.
func resourceFromPath(path string) string {
	rest := strings.TrimPrefix(path, "/api/v1/")
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		return rest[:i]
	}
	return rest
}
