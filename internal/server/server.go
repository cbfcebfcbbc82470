package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/pramrakhani/Mentor-Bridge/internal/admin"
	"github.com/pramrakhani/Mentor-Bridge/internal/auth"
	"github.com/pramrakhani/Mentor-Bridge/internal/chat"
	"github.com/pramrakhani/Mentor-Bridge/internal/config"
	"github.com/pramrakhani/Mentor-Bridge/internal/ledger"
	"github.com/pramrakhani/Mentor-Bridge/internal/notification"
	"github.com/pramrakhani/Mentor-Bridge/internal/payout"
	"github.com/pramrakhani/Mentor-Bridge/internal/session"
	"github.com/pramrakhani/Mentor-Bridge/internal/user"
	"github.com/pramrakhani/Mentor-Bridge/internal/withdrawal"
)

type Server struct {
	router   *gin.Engine
	httpSrv  *http.Server
	db       *sqlx.DB
	config   *config.Config
	notifier *notification.Service
}

func New(db *sqlx.DB, cfg *config.Config, notifier *notification.Service) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())
	router.Use(RateLimitMiddleware(50, 100))

	ledgerRepo := ledger.NewRepository(db)
	userRepo := user.NewRepository(db, ledgerRepo, cfg.Economy.StartingGrant)
	chatRepo := chat.NewRepository(db)
	sessionRepo := session.NewRepository(db)
	withdrawalRepo := withdrawal.NewRepository(db)

	calculator := payout.NewCalculator(cfg.Economy.TokenToCurrencyRate, cfg.Economy.CommissionRate)

	userService := user.NewService(userRepo, cfg.JWTSecret, cfg.Economy.DefaultHourlyRate)
	sessionService := session.NewService(db, sessionRepo, userRepo, ledgerRepo, chatRepo, notifier, cfg.Economy)
	withdrawalService := withdrawal.NewService(db, withdrawalRepo, userRepo, ledgerRepo, calculator, notifier)

	userHandler := user.NewHandler(userService, ledgerRepo)
	ledgerHandler := ledger.NewHandler(ledgerRepo)
	chatHandler := chat.NewHandler(chatRepo)
	sessionHandler := session.NewHandler(sessionService)
	withdrawalHandler := withdrawal.NewHandler(withdrawalService)
	adminHandler := admin.NewHandler(userRepo, ledgerRepo, sessionRepo, withdrawalService, withdrawalRepo)

	public := router.Group("/auth")
	{
		public.POST("/register", userHandler.Register)
		public.POST("/login", userHandler.Login)
		public.POST("/refresh", userHandler.Refresh)
	}

	authMiddleware := auth.AuthMiddleware(cfg.JWTSecret)
	protected := router.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", userHandler.GetMe)
		protected.GET("/advisors", userHandler.ListAdvisors)

		protected.GET("/tokens/balance", ledgerHandler.GetBalance)
		protected.GET("/tokens/transactions", ledgerHandler.ListTransactions)

		protected.POST("/sessions", sessionHandler.Book)
		protected.GET("/sessions", sessionHandler.ListMySessions)
		protected.POST("/sessions/:sessionID/complete", sessionHandler.Complete)
		protected.POST("/sessions/:sessionID/cancel", sessionHandler.Cancel)

		protected.GET("/conversations", chatHandler.ListConversations)
		protected.GET("/conversations/:conversationID/messages", chatHandler.ListMessages)
		protected.POST("/conversations/:conversationID/messages", chatHandler.SendMessage)

		protected.GET("/withdrawals", withdrawalHandler.ListMine)
	}

	tutorOnly := router.Group("/withdrawals")
	tutorOnly.Use(authMiddleware, auth.RequireUserType(user.TypeTutor))
	{
		tutorOnly.POST("", withdrawalHandler.Submit)
	}

	adminOnly := router.Group("/admin")
	adminOnly.Use(authMiddleware, auth.RequireUserType(user.TypeAdmin))
	{
		adminOnly.GET("/stats", adminHandler.GetStats)
		adminOnly.GET("/withdrawals", adminHandler.ListPendingWithdrawals)
		adminOnly.POST("/withdrawals/:withdrawalID/approve", adminHandler.ApproveWithdrawal)
		adminOnly.POST("/withdrawals/:withdrawalID/reject", adminHandler.RejectWithdrawal)
		adminOnly.POST("/topup", adminHandler.TopUp)
	}

	router.GET("/health", Health)
	router.GET("/metrics", Metrics())
	router.GET("/test-email", TestEmail(notifier))
	SetupSwagger(router)

	return &Server{
		router:   router,
		db:       db,
		config:   cfg,
		notifier: notifier,
	}
}

func (s *Server) Start(port string) error {
	s.httpSrv = &http.Server{
		Addr:              ":" + port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s.httpSrv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, Idempotency-Key, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
