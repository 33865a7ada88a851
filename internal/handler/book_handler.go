package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	appmw "github.com/uniprbooks/backend/internal/middleware"
	"github.com/uniprbooks/backend/internal/service"
)

type BookHandler struct {
	svc service.BookService
}

func NewBookHandler(svc service.BookService) *BookHandler {
	return &BookHandler{svc: svc}
}

type createBookResponse struct {
	Status  string `json:"status"`
	ID      uint64 `json:"id"`
	Message string `json:"message"`
}

// List serves the public catalog. Anonymous callers see everything;
// authenticated callers see everyone else's books.
func (h *BookHandler) List(c echo.Context) error {
	userID, _, _ := appmw.CurrentUser(c)
	books, err := h.svc.List(c.Request().Context(), userID, false)
	if err != nil {
		return fail(c, err)
	}
	return successData(c, books)
}

// ListMine serves only the caller's own listings.
func (h *BookHandler) ListMine(c echo.Context) error {
	userID, _, ok := appmw.CurrentUser(c)
	if !ok {
		return errorJSON(c, http.StatusUnauthorized, "Unauthorized")
	}
	books, err := h.svc.List(c.Request().Context(), userID, true)
	if err != nil {
		return fail(c, err)
	}
	return successData(c, books)
}

func (h *BookHandler) Create(c echo.Context) error {
	userID, _, ok := appmw.CurrentUser(c)
	if !ok {
		return errorJSON(c, http.StatusUnauthorized, "Unauthorized")
	}
	var in service.CreateBookInput
	if err := c.Bind(&in); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid input")
	}
	id, err := h.svc.Create(c.Request().Context(), in, userID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, createBookResponse{
		Status:  "success",
		ID:      id,
		Message: "Book listed successfully",
	})
}

func (h *BookHandler) Update(c echo.Context) error {
	userID, _, ok := appmw.CurrentUser(c)
	if !ok {
		return errorJSON(c, http.StatusUnauthorized, "Unauthorized")
	}
	var in service.UpdateBookInput
	if err := c.Bind(&in); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid input")
	}
	if err := h.svc.Update(c.Request().Context(), in, userID); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, Envelope{Status: "success", Message: "Book updated"})
}

func (h *BookHandler) Delete(c echo.Context) error {
	userID, _, ok := appmw.CurrentUser(c)
	if !ok {
		return errorJSON(c, http.StatusUnauthorized, "Unauthorized")
	}
	var in service.DeleteBookInput
	if err := c.Bind(&in); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid input")
	}
	if err := h.svc.Delete(c.Request().Context(), in, userID); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, Envelope{Status: "success", Message: "Book deleted"})
}
