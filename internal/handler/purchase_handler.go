package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	appmw "github.com/uniprbooks/backend/internal/middleware"
	"github.com/uniprbooks/backend/internal/service"
)

type PurchaseHandler struct {
	svc service.PurchaseService
}

func NewPurchaseHandler(svc service.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{svc: svc}
}

type purchaseRequest struct {
	BookID uint64 `json:"bookId"`
}

type purchaseResponse struct {
	Status      string `json:"status"`
	Message     string `json:"message"`
	OrderID     uint64 `json:"orderId"`
	SellerEmail string `json:"sellerEmail"`
}

func (h *PurchaseHandler) Purchase(c echo.Context) error {
	buyerID, _, ok := appmw.CurrentUser(c)
	if !ok {
		return errorJSON(c, http.StatusUnauthorized, "Unauthorized")
	}
	var req purchaseRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid input")
	}
	result, err := h.svc.Purchase(c.Request().Context(), req.BookID, buyerID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, purchaseResponse{
		Status:      "success",
		Message:     "Purchase completed successfully",
		OrderID:     result.OrderID,
		SellerEmail: result.SellerEmail,
	})
}

func (h *PurchaseHandler) ListPurchases(c echo.Context) error {
	buyerID, _, ok := appmw.CurrentUser(c)
	if !ok {
		return errorJSON(c, http.StatusUnauthorized, "Unauthorized")
	}
	purchases, err := h.svc.ListPurchases(c.Request().Context(), buyerID)
	if err != nil {
		return fail(c, err)
	}
	return successData(c, purchases)
}

func (h *PurchaseHandler) ListSales(c echo.Context) error {
	sellerID, _, ok := appmw.CurrentUser(c)
	if !ok {
		return errorJSON(c, http.StatusUnauthorized, "Unauthorized")
	}
	sales, err := h.svc.ListSales(c.Request().Context(), sellerID)
	if err != nil {
		return fail(c, err)
	}
	return successData(c, sales)
}
