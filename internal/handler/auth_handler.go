package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	appmw "github.com/uniprbooks/backend/internal/middleware"
	"github.com/uniprbooks/backend/internal/service"
)

type AuthHandler struct {
	svc service.AuthService
}

func NewAuthHandler(svc service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

type loginResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Token   string `json:"token"`
}

func (h *AuthHandler) Register(c echo.Context) error {
	var in service.RegisterInput
	if err := c.Bind(&in); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid input")
	}
	if err := h.svc.Register(c.Request().Context(), in); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, Envelope{Status: "success", Message: "User registered successfully"})
}

func (h *AuthHandler) Login(c echo.Context) error {
	var in service.LoginInput
	if err := c.Bind(&in); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid input")
	}
	token, err := h.svc.Login(c.Request().Context(), in)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, loginResponse{
		Status:  "success",
		Message: "Login successful",
		Token:   token,
	})
}

// Me echoes the identity claims carried by the bearer token.
func (h *AuthHandler) Me(c echo.Context) error {
	userID, email, ok := appmw.CurrentUser(c)
	if !ok {
		return errorJSON(c, http.StatusUnauthorized, "Unauthorized")
	}
	return successData(c, map[string]any{"id": userID, "email": email})
}
