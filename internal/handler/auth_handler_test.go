package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/uniprbooks/backend/internal/auth"
	"github.com/uniprbooks/backend/internal/handler"
	appmw "github.com/uniprbooks/backend/internal/middleware"
	"github.com/uniprbooks/backend/internal/repository"
	"github.com/uniprbooks/backend/internal/service"
)

func newTestRouter(t *testing.T) *echo.Echo {
	t.Helper()
	store := repository.NewMemoryStore()
	tokens := auth.NewTokenService("test-secret")
	h := handler.NewAuthHandler(service.NewAuthService(store.Users(), tokens))
	mw := appmw.NewAuthMiddleware(tokens)

	e := echo.New()
	e.POST("/api/register", h.Register)
	e.POST("/api/login", h.Login)
	e.GET("/api/me", h.Me, mw.RequireAuth)
	return e
}

func doJSON(e *echo.Echo, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAuthFlow(t *testing.T) {
	e := newTestRouter(t)

	rec := doJSON(e, http.MethodPost, "/api/register",
		`{"username":"alice","email":"alice@example.com","password":"longenough"}`, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d, want 201, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(e, http.MethodPost, "/api/register",
		`{"username":"alice2","email":"alice@example.com","password":"longenough"}`, "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate register status = %d, want 409", rec.Code)
	}
	var env struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Status != "error" || env.Message != "Email already registered" {
		t.Errorf("duplicate register body = %+v", env)
	}

	rec = doJSON(e, http.MethodPost, "/api/login",
		`{"email":"alice@example.com","password":"wrongwrong"}`, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad login status = %d, want 401", rec.Code)
	}

	rec = doJSON(e, http.MethodPost, "/api/login",
		`{"email":"alice@example.com","password":"longenough"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}
	var login struct {
		Status string `json:"status"`
		Token  string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &login); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if login.Token == "" {
		t.Fatal("login response missing token")
	}

	rec = doJSON(e, http.MethodGet, "/api/me", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated /me status = %d, want 401", rec.Code)
	}
	rec = doJSON(e, http.MethodGet, "/api/me", "", "not-a-token")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token /me status = %d, want 401", rec.Code)
	}

	rec = doJSON(e, http.MethodGet, "/api/me", "", login.Token)
	if rec.Code != http.StatusOK {
		t.Fatalf("/me status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}
	var me struct {
		Data struct {
			ID    uint64 `json:"id"`
			Email string `json:"email"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &me); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if me.Data.Email != "alice@example.com" || me.Data.ID == 0 {
		t.Errorf("/me data = %+v", me.Data)
	}
}
