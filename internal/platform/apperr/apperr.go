// Package apperr defines the error taxonomy shared by the domain services
// and the mapping from those errors to HTTP responses.
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

var (
	// ErrNotFound marks a missing record. Maps to 404.
	ErrNotFound = errors.New("not found")
	// ErrConflict marks a uniqueness or referential violation. Maps to 400.
	ErrConflict = errors.New("conflict")
	// ErrForbidden marks an operation the caller's role may not perform. Maps to 403.
	ErrForbidden = errors.New("forbidden")
	// ErrValidation marks rejected input. Maps to 400.
	ErrValidation = errors.New("validation")
)

func NotFoundf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
}

func Conflictf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrConflict)...)
}

func Forbiddenf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrForbidden)...)
}

func Validationf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrValidation)...)
}

// response is the JSON error body for every non-2xx result.
type response struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// kindAndStatus classifies an error into a taxonomy name and HTTP status.
func kindAndStatus(err error) (string, int) {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found", http.StatusNotFound
	case errors.Is(err, ErrValidation):
		return "validation_error", http.StatusBadRequest
	case errors.Is(err, ErrConflict):
		return "conflict", http.StatusBadRequest
	case errors.Is(err, ErrForbidden):
		return "authorization_error", http.StatusForbidden
	}
	return "internal_error", http.StatusInternalServerError
}

// message strips the sentinel suffix that errors.Is matching relies on, so
// clients see "username already taken" rather than "username already taken:
// conflict".
func message(err error) string {
	msg := err.Error()
	for _, sentinel := range []error{ErrNotFound, ErrConflict, ErrForbidden, ErrValidation} {
		suffix := ": " + sentinel.Error()
		if len(msg) > len(suffix) && msg[len(msg)-len(suffix):] == suffix {
			return msg[:len(msg)-len(suffix)]
		}
	}
	return msg
}

// HTTPErrorHandler builds the echo error handler for the API. Domain sentinel
// errors map to their taxonomy status; echo.HTTPError passes through; anything
// else becomes a generic 500 with the detail kept in the server log.
func HTTPErrorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var body response
		status := http.StatusInternalServerError

		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
			body = response{Error: kindForStatus(status), Message: fmt.Sprintf("%v", he.Message)}
		} else {
			kind, st := kindAndStatus(err)
			status = st
			if status == http.StatusInternalServerError {
				logger.Error().Err(err).
					Str("method", c.Request().Method).
					Str("path", c.Request().URL.Path).
					Msg("unhandled error")
				body = response{Error: kind, Message: "internal server error"}
			} else {
				body = response{Error: kind, Message: message(err)}
			}
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, body)
	}
}

func kindForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "validation_error"
	case http.StatusUnauthorized:
		return "authentication_error"
	case http.StatusForbidden:
		return "authorization_error"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusTooManyRequests:
		return "rate_limited"
	}
	return "internal_error"
}
