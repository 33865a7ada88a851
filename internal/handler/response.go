package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/uniprbooks/backend/internal/blob"
	"github.com/uniprbooks/backend/internal/repository"
	"github.com/uniprbooks/backend/internal/service"
)

// Envelope is the uniform response shape. Error messages are static, generic
// strings; internals never leak to the client.
type Envelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func successData(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, Envelope{Status: "success", Data: data})
}

func errorJSON(c echo.Context, code int, message string) error {
	return c.JSON(code, Envelope{Status: "error", Message: message})
}

// fail maps service and storage errors to an HTTP status and the fixed
// client-facing message for that condition.
func fail(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return errorJSON(c, http.StatusBadRequest, "Invalid input")
	case errors.Is(err, service.ErrInvalidCredentials):
		return errorJSON(c, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, service.ErrEmailTaken):
		return errorJSON(c, http.StatusConflict, "Email already registered")
	case errors.Is(err, service.ErrNotFound), errors.Is(err, repository.ErrBookNotFound):
		return errorJSON(c, http.StatusNotFound, "Book not found")
	case errors.Is(err, service.ErrUserNotFound):
		return errorJSON(c, http.StatusNotFound, "User not found")
	case errors.Is(err, service.ErrForbidden):
		return errorJSON(c, http.StatusForbidden, "Forbidden")
	case errors.Is(err, repository.ErrBookSold):
		return errorJSON(c, http.StatusConflict, "Book already sold")
	case errors.Is(err, repository.ErrOwnBook):
		return errorJSON(c, http.StatusConflict, "Cannot purchase your own book")
	case errors.Is(err, service.ErrSelfMessage):
		return errorJSON(c, http.StatusConflict, "Cannot message yourself")
	case errors.Is(err, service.ErrEmptyMessage):
		return errorJSON(c, http.StatusBadRequest, "Message content required")
	case errors.Is(err, blob.ErrInvalidData):
		return errorJSON(c, http.StatusBadRequest, "Invalid base64 data")
	case errors.Is(err, blob.ErrUnsupportedFormat):
		return errorJSON(c, http.StatusBadRequest, "Invalid file format")
	case errors.Is(err, blob.ErrTooLarge):
		return errorJSON(c, http.StatusBadRequest, "File too large")
	default:
		return errorJSON(c, http.StatusInternalServerError, "Server error")
	}
}
