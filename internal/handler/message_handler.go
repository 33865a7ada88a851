package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	appmw "github.com/uniprbooks/backend/internal/middleware"
	"github.com/uniprbooks/backend/internal/service"
)

type MessageHandler struct {
	svc service.MessageService
}

func NewMessageHandler(svc service.MessageService) *MessageHandler {
	return &MessageHandler{svc: svc}
}

type sendMessageResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	MessageID uint64 `json:"messageId"`
}

func (h *MessageHandler) ListConversations(c echo.Context) error {
	userID, _, ok := appmw.CurrentUser(c)
	if !ok {
		return errorJSON(c, http.StatusUnauthorized, "Unauthorized")
	}
	conversations, err := h.svc.ListConversations(c.Request().Context(), userID)
	if err != nil {
		return fail(c, err)
	}
	return successData(c, conversations)
}

func (h *MessageHandler) GetMessages(c echo.Context) error {
	userID, _, ok := appmw.CurrentUser(c)
	if !ok {
		return errorJSON(c, http.StatusUnauthorized, "Unauthorized")
	}
	// A missing or malformed userId param reads as 0 and reports the same
	// "User not found" as an unknown id.
	otherID, _ := strconv.ParseUint(c.QueryParam("userId"), 10, 64)
	messages, err := h.svc.GetMessages(c.Request().Context(), userID, otherID)
	if err != nil {
		return fail(c, err)
	}
	return successData(c, messages)
}

func (h *MessageHandler) Send(c echo.Context) error {
	senderID, _, ok := appmw.CurrentUser(c)
	if !ok {
		return errorJSON(c, http.StatusUnauthorized, "Unauthorized")
	}
	var in service.SendMessageInput
	if err := c.Bind(&in); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid input")
	}
	id, err := h.svc.SendMessage(c.Request().Context(), in, senderID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, sendMessageResponse{
		Status:    "success",
		Message:   "Message sent",
		MessageID: id,
	})
}
