package server

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/uniprbooks/backend/internal/auth"
	"github.com/uniprbooks/backend/internal/blob"
	"github.com/uniprbooks/backend/internal/config"
	"github.com/uniprbooks/backend/internal/handler"
	appmw "github.com/uniprbooks/backend/internal/middleware"
	"github.com/uniprbooks/backend/internal/repository"
	"github.com/uniprbooks/backend/internal/service"
	"gorm.io/gorm"
)

type Server struct {
	e        *echo.Echo
	userRepo repository.UserRepository
	bookRepo repository.BookRepository
	txnRepo  repository.TransactionRepository
	msgRepo  repository.MessageRepository
}

func New(db *gorm.DB, cfg *config.Config, images blob.Store) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		AllowOriginFunc: func(origin string) (bool, error) {
			low := strings.ToLower(origin)
			if strings.HasPrefix(low, "http://localhost:") || strings.HasPrefix(low, "http://127.0.0.1:") ||
				strings.HasPrefix(low, "https://localhost:") || strings.HasPrefix(low, "https://127.0.0.1:") {
				return true, nil
			}
			if cfg.AllowedOrigin == "" {
				return false, nil
			}
			u, err := url.Parse(origin)
			if err != nil {
				return false, nil
			}
			if u.Scheme != "http" && u.Scheme != "https" {
				return false, nil
			}
			return strings.EqualFold(origin, cfg.AllowedOrigin) || strings.EqualFold(u.Host, cfg.AllowedOrigin), nil
		},
	}))

	tokens := auth.NewTokenService(cfg.JWTSecret)
	authMw := appmw.NewAuthMiddleware(tokens)

	userRepo := repository.NewUserRepository(db)
	bookRepo := repository.NewBookRepository(db)
	txnRepo := repository.NewTransactionRepository(db)
	msgRepo := repository.NewMessageRepository(db)

	authSvc := service.NewAuthService(userRepo, tokens)
	bookSvc := service.NewBookService(bookRepo, userRepo, images)
	purchaseSvc := service.NewPurchaseService(txnRepo, bookRepo, userRepo, images)
	messageSvc := service.NewMessageService(msgRepo, userRepo)

	authHandler := handler.NewAuthHandler(authSvc)
	bookHandler := handler.NewBookHandler(bookSvc)
	purchaseHandler := handler.NewPurchaseHandler(purchaseSvc)
	messageHandler := handler.NewMessageHandler(messageSvc)

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "success", "message": "UniprBooks API is running"})
	})

	api := e.Group("/api")
	api.POST("/register", authHandler.Register)
	api.POST("/login", authHandler.Login)
	api.GET("/me", authHandler.Me, authMw.RequireAuth)

	api.GET("/books", bookHandler.List, authMw.OptionalAuth)
	api.GET("/my-books", bookHandler.ListMine, authMw.RequireAuth)
	api.POST("/books", bookHandler.Create, authMw.RequireAuth)
	api.PUT("/books", bookHandler.Update, authMw.RequireAuth)
	api.DELETE("/books", bookHandler.Delete, authMw.RequireAuth)

	api.POST("/purchase", purchaseHandler.Purchase, authMw.RequireAuth)
	api.GET("/purchases", purchaseHandler.ListPurchases, authMw.RequireAuth)
	api.GET("/sales", purchaseHandler.ListSales, authMw.RequireAuth)

	api.GET("/conversations", messageHandler.ListConversations, authMw.RequireAuth)
	api.GET("/messages", messageHandler.GetMessages, authMw.RequireAuth)
	api.POST("/messages", messageHandler.Send, authMw.RequireAuth)

	return &Server{
		e:        e,
		userRepo: userRepo,
		bookRepo: bookRepo,
		txnRepo:  txnRepo,
		msgRepo:  msgRepo,
	}
}

func (s *Server) Start(addr string) error {
	return s.e.Start(addr)
}

// SetDB injects the database connection once it is available; the repos run
// every call through it from then on.
func (s *Server) SetDB(db *gorm.DB) {
	s.userRepo.SetDB(db)
	s.bookRepo.SetDB(db)
	s.txnRepo.SetDB(db)
	s.msgRepo.SetDB(db)
}
