package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/jkowalczyk/FinanceTracker/internal/auth"
	"github.com/jkowalczyk/FinanceTracker/internal/config"
	database "github.com/jkowalczyk/FinanceTracker/internal/db"
	emailService "github.com/jkowalczyk/FinanceTracker/internal/email"
	"github.com/jkowalczyk/FinanceTracker/internal/finance/application"
	"github.com/jkowalczyk/FinanceTracker/internal/finance/infrastructure"
	"github.com/jkowalczyk/FinanceTracker/internal/finance/interfaces"
	"github.com/jkowalczyk/FinanceTracker/internal/logging"
	"github.com/jkowalczyk/FinanceTracker/internal/middleware/ratelimit"
	"github.com/jkowalczyk/FinanceTracker/internal/scheduler"
	"github.com/jkowalczyk/FinanceTracker/internal/seed"
	"github.com/jkowalczyk/FinanceTracker/internal/user"
)

type Response struct {
	Message string `json:"message"`
}

func loggingMiddleware(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		next.ServeHTTP(w, r)

		logger.Info("request handled",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start).String())
	})
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string, errors ...[]string) {
	payload := map[string]interface{}{
		"status":  "error",
		"message": message,
		"code":    status,
	}
	if len(errors) > 0 && len(errors[0]) > 0 {
		payload["errors"] = errors[0]
	}
	respondJSON(w, status, payload)
}

type Server struct {
	router             *http.ServeMux
	dbService          *database.DBService
	authHandler        *auth.Handler
	authService        auth.Service
	userHandler        *user.Handler
	transactionHandler *interfaces.TransactionHandler
	categoryHandler    *interfaces.CategoryHandler
	budgetHandler      *interfaces.BudgetHandler
	csvHandler         *interfaces.CSVHandler
	authLimiter        *ratelimit.Limiter
	apiLimiter         *ratelimit.Limiter
	strictLimiter      *ratelimit.Limiter
}

func notFoundHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	json.NewEncoder(w).Encode(Response{Message: "Path not found"})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	health := s.dbService.Health()
	status := http.StatusOK
	if health["status"] != "up" {
		status = http.StatusServiceUnavailable
	}
	respondJSON(w, status, health)
}

func (s *Server) RegisterRoutes() {
	authenticated := s.authService.JWTAccessTokenMiddleware()

	// Public routes
	publicRoutes := http.NewServeMux()
	publicRoutes.Handle("POST /api/auth/register", http.HandlerFunc(s.userHandler.HandleRegister))
	publicRoutes.Handle("POST /api/auth/login", http.HandlerFunc(s.authHandler.HandleLogin))
	publicRoutes.Handle("POST /api/auth/logout", http.HandlerFunc(s.authHandler.HandleLogout))
	publicRoutes.Handle("POST /api/password-reset/request", http.HandlerFunc(s.authHandler.RequestPasswordResetHandler))
	publicRoutes.Handle("POST /api/password-reset/confirm", http.HandlerFunc(s.authHandler.ResetPasswordHandler))
	publicRoutes.Handle("GET /api/ready", http.HandlerFunc(s.handleReady))
	publicRoutes.Handle("GET /api/health", http.HandlerFunc(s.handleHealth))

	// Protected routes (JWT access token)
	protectedRoutes := http.NewServeMux()
	protectedRoutes.Handle("GET /api/protected/profile", authenticated(http.HandlerFunc(s.userHandler.HandleGetUserProfile)))
	protectedRoutes.Handle("POST /api/protected/change-password",
		s.strictLimiter.Middleware()(authenticated(http.HandlerFunc(s.userHandler.HandleChangePassword))))

	protectedRoutes.Handle("GET /api/protected/user/preferences", authenticated(http.HandlerFunc(s.userHandler.HandleGetPreferences)))
	protectedRoutes.Handle("PUT /api/protected/user/preferences", authenticated(http.HandlerFunc(s.userHandler.HandleUpdatePreferences)))

	// TRANSACTIONS API
	protectedRoutes.Handle("POST /api/protected/transactions", authenticated(http.HandlerFunc(s.transactionHandler.CreateTransaction)))
	protectedRoutes.Handle("GET /api/protected/transactions", authenticated(http.HandlerFunc(s.transactionHandler.GetUserTransactions)))
	protectedRoutes.Handle("POST /api/protected/transactions/bulk", authenticated(http.HandlerFunc(s.transactionHandler.CreateTransactionsBulk)))
	protectedRoutes.Handle("DELETE /api/protected/transactions/bulk", authenticated(http.HandlerFunc(s.transactionHandler.DeleteTransactionsBulk)))
	protectedRoutes.Handle("GET /api/protected/transactions/summary", authenticated(http.HandlerFunc(s.transactionHandler.GetTransactionSummary)))
	protectedRoutes.Handle("GET /api/protected/transactions/summary/categories", authenticated(http.HandlerFunc(s.transactionHandler.GetTransactionSummaryByCategory)))
	protectedRoutes.Handle("GET /api/protected/transactions/{transactionID}", authenticated(http.HandlerFunc(s.transactionHandler.GetTransaction)))
	protectedRoutes.Handle("PUT /api/protected/transactions/{transactionID}", authenticated(http.HandlerFunc(s.transactionHandler.UpdateTransaction)))
	protectedRoutes.Handle("DELETE /api/protected/transactions/{transactionID}", authenticated(http.HandlerFunc(s.transactionHandler.DeleteTransaction)))
	protectedRoutes.Handle("POST /api/protected/transactions/{transactionID}/restore", authenticated(http.HandlerFunc(s.transactionHandler.RestoreTransaction)))
	protectedRoutes.Handle("DELETE /api/protected/transactions/{transactionID}/force", authenticated(http.HandlerFunc(s.transactionHandler.ForceDeleteTransaction)))

	// CSV exchange; the bare and /csv paths serve the same handlers
	protectedRoutes.Handle("GET /api/protected/transactions/export", authenticated(http.HandlerFunc(s.csvHandler.ExportTransactions)))
	protectedRoutes.Handle("GET /api/protected/transactions/export/csv", authenticated(http.HandlerFunc(s.csvHandler.ExportTransactions)))
	protectedRoutes.Handle("POST /api/protected/transactions/import", authenticated(http.HandlerFunc(s.csvHandler.ImportTransactions)))
	protectedRoutes.Handle("POST /api/protected/transactions/import/csv", authenticated(http.HandlerFunc(s.csvHandler.ImportTransactions)))

	// CATEGORIES API
	protectedRoutes.Handle("GET /api/protected/categories", authenticated(http.HandlerFunc(s.categoryHandler.GetCategories)))
	protectedRoutes.Handle("POST /api/protected/categories", authenticated(http.HandlerFunc(s.categoryHandler.CreateCategory)))
	protectedRoutes.Handle("GET /api/protected/categories/{categoryID}", authenticated(http.HandlerFunc(s.categoryHandler.GetCategory)))
	protectedRoutes.Handle("PUT /api/protected/categories/{categoryID}", authenticated(http.HandlerFunc(s.categoryHandler.UpdateCategory)))
	protectedRoutes.Handle("DELETE /api/protected/categories/{categoryID}", authenticated(http.HandlerFunc(s.categoryHandler.DeleteCategory)))
	protectedRoutes.Handle("POST /api/protected/categories/{categoryID}/restore", authenticated(http.HandlerFunc(s.categoryHandler.RestoreCategory)))

	// BUDGETS API
	protectedRoutes.Handle("GET /api/protected/budgets", authenticated(http.HandlerFunc(s.budgetHandler.GetUserBudgets)))
	protectedRoutes.Handle("POST /api/protected/budgets", authenticated(http.HandlerFunc(s.budgetHandler.CreateBudget)))
	protectedRoutes.Handle("GET /api/protected/budgets/status", authenticated(http.HandlerFunc(s.budgetHandler.GetBudgetStatuses)))
	protectedRoutes.Handle("GET /api/protected/budgets/{budgetID}", authenticated(http.HandlerFunc(s.budgetHandler.GetBudget)))
	protectedRoutes.Handle("PUT /api/protected/budgets/{budgetID}", authenticated(http.HandlerFunc(s.budgetHandler.UpdateBudget)))
	protectedRoutes.Handle("DELETE /api/protected/budgets/{budgetID}", authenticated(http.HandlerFunc(s.budgetHandler.DeleteBudget)))
	protectedRoutes.Handle("POST /api/protected/budgets/{budgetID}/restore", authenticated(http.HandlerFunc(s.budgetHandler.RestoreBudget)))

	// Refresh token routes
	refreshTokenRoutes := http.NewServeMux()
	refreshTokenRoutes.Handle("PUT /api/refresh/token", s.authService.JWTRefreshTokenMiddleware()(http.HandlerFunc(s.authHandler.RefreshAccessToken)))

	// Main router
	mainRouter := http.NewServeMux()
	mainRouter.Handle("/api/", s.authLimiter.Middleware()(publicRoutes))
	mainRouter.Handle("/api/protected/", s.apiLimiter.Middleware()(protectedRoutes))
	mainRouter.Handle("/api/refresh/", s.authLimiter.Middleware()(refreshTokenRoutes))
	mainRouter.Handle("/", http.HandlerFunc(notFoundHandler))

	s.router = mainRouter
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Missing configuration, update to start server: %v", err)
	}

	logger := logging.New(logging.DefaultConfig())

	if err := database.RunMigrations(cfg.Database.ConnectionString); err != nil {
		log.Fatalf("Could not run migrations: %v", err)
	}

	dbService, err := database.NewDBService(cfg.Database.ConnectionString)
	if err != nil {
		log.Fatalf("Could not initialize database: %v", err)
	}
	defer dbService.Close()

	emailSvc := emailService.NewEmailService(emailService.Config{
		From:         cfg.Email.Address,
		Password:     cfg.Email.Password,
		SMTPHost:     cfg.Email.SMTPHost,
		SMTPPort:     cfg.Email.SMTPPort,
		TemplatesDir: cfg.Email.TemplatesDir,
	}, logger)

	userRepo := user.NewUserRepository(dbService.DB)
	userService := user.NewUserService(userRepo)
	userHandler := user.NewHandler(userService)

	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret)
	authService := auth.NewAuthService(userService, jwtManager, emailSvc)
	authHandler := auth.NewHandler(authService)

	categoryRepo := infrastructure.NewCategoryRepository(dbService.DB)
	transactionRepo := infrastructure.NewTransactionRepository(dbService.DB)
	budgetRepo := infrastructure.NewBudgetRepository(dbService.DB)

	categoryService := application.NewCategoryService(categoryRepo)
	transactionService := application.NewTransactionService(transactionRepo, categoryService)
	budgetService := application.NewBudgetService(budgetRepo, transactionRepo, categoryService)
	csvService := application.NewCSVService(transactionService, categoryService)

	transactionHandler := interfaces.NewTransactionHandler(transactionService, respondJSON, respondError)
	categoryHandler := interfaces.NewCategoryHandler(categoryService, respondJSON, respondError)
	budgetHandler := interfaces.NewBudgetHandler(budgetService, respondJSON, respondError)
	csvHandler := interfaces.NewCSVHandler(csvService, respondJSON, respondError)

	// Shared default categories must exist before the first request.
	seeder := seed.NewSeeder(categoryRepo, transactionRepo, userService, logger)
	if err := seeder.SeedDefaultCategories(context.Background()); err != nil {
		log.Fatalf("Could not seed default categories: %v", err)
	}

	authLimiter := ratelimit.NewLimiter(ratelimit.Config{Name: "auth", RequestsPerMinute: cfg.RateLimit.AuthPerMinute})
	apiLimiter := ratelimit.NewLimiter(ratelimit.Config{Name: "api", RequestsPerMinute: cfg.RateLimit.APIPerMinute})
	strictLimiter := ratelimit.NewLimiter(ratelimit.Config{Name: "strict", RequestsPerMinute: cfg.RateLimit.StrictPerMinute})
	defer authLimiter.Stop()
	defer apiLimiter.Stop()
	defer strictLimiter.Stop()

	server := &Server{
		dbService:          dbService,
		authHandler:        authHandler,
		authService:        authService,
		userHandler:        userHandler,
		transactionHandler: transactionHandler,
		categoryHandler:    categoryHandler,
		budgetHandler:      budgetHandler,
		csvHandler:         csvHandler,
		authLimiter:        authLimiter,
		apiLimiter:         apiLimiter,
		strictLimiter:      strictLimiter,
	}
	server.RegisterRoutes()

	jobs := scheduler.New(userService, budgetService, transactionService, csvService, emailSvc, cfg.Backup, logger)
	if err := jobs.Start(); err != nil {
		log.Fatalf("Scheduler didn't start, stopping the app: %v", err)
	}
	defer jobs.Stop()

	handler := loggingMiddleware(logger.WithComponent(logging.ComponentHTTP), server.router)
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	logger.Info("server starting", "addr", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
