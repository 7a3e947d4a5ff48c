package main

import (
	"backend/internal/config"
	"backend/internal/database"
	"backend/internal/handler"
	"backend/internal/middleware"
	"backend/internal/repository"
	"backend/internal/service"
	"backend/internal/websocket"
	"backend/pkg/logger"
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// @title           Expense & Leave Management API
// @version         1.0
// @description     Internal expense approval workflow and leave management backend.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	zapLogger, err := logger.New(cfg.GinMode)
	if err != nil {
		log.Fatalf("Logger initialization failed: %v", err)
	}
	defer func() { _ = zapLogger.Sync() }()

	db, err := database.NewConnection(cfg.DSN())
	if err != nil {
		zapLogger.Fatal("database connection failed", zap.Error(err))
	}
	zapLogger.Info("connected to PostgreSQL")

	if err := database.Seed(db); err != nil {
		zapLogger.Fatal("seeding default data failed", zap.Error(err))
	}

	// Set up WebSocket Hub
	wsHub := websocket.NewHub(zapLogger)
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewRefreshTokenRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	workflowRepo := repository.NewWorkflowRepository(db)
	expenseRepo := repository.NewExpenseRepository(db)
	approvalRepo := repository.NewApprovalRepository(db)
	billRepo := repository.NewBillRepository(db)
	budgetRepo := repository.NewBudgetRepository(db)
	reportRepo := repository.NewReportRepository(db)
	leaveRepo := repository.NewLeaveRepository(db)
	leaveBalanceRepo := repository.NewLeaveBalanceRepository(db)
	leavePolicyRepo := repository.NewLeavePolicyRepository(db)
	clientRepo := repository.NewClientRepository(db)
	salesRepo := repository.NewSalesRepository(db)

	userService := service.NewUserService(userRepo, tokenRepo)
	auditService := service.NewAuditService(auditRepo)
	budgetService := service.NewBudgetService(budgetRepo, auditRepo, txManager, wsHub, zapLogger)
	workflowService := service.NewWorkflowService(workflowRepo, auditRepo, txManager)
	expenseService := service.NewExpenseService(
		expenseRepo, approvalRepo, categoryRepo, workflowRepo, userRepo, auditRepo,
		txManager, budgetService, wsHub, zapLogger,
	)
	billService := service.NewBillService(billRepo, auditRepo, txManager, wsHub, zapLogger)
	reportService := service.NewReportService(expenseRepo, categoryRepo, reportRepo, auditRepo, txManager, zapLogger)
	leaveService := service.NewLeaveService(
		leaveRepo, leaveBalanceRepo, leavePolicyRepo, userRepo, auditRepo,
		txManager, wsHub, zapLogger,
	)
	crmService := service.NewCRMService(clientRepo, salesRepo, auditRepo, txManager, zapLogger)

	// Initialize Handlers
	userHandler := handler.NewUserHandler(userService)
	auditHandler := handler.NewAuditHandler(auditService)
	expenseHandler := handler.NewExpenseHandler(expenseService, workflowService)
	billHandler := handler.NewBillHandler(billService)
	budgetHandler := handler.NewBudgetHandler(budgetService)
	reportHandler := handler.NewReportHandler(reportService)
	leaveHandler := handler.NewLeaveHandler(leaveService)
	crmHandler := handler.NewCRMHandler(crmService)

	// Set up Gin Router
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.AllowedOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	// Register API Routes
	userHandler.RegisterRoutes(router.Group(""))
	auditHandler.RegisterRoutes(router.Group(""))
	expenseHandler.RegisterRoutes(router.Group(""))
	billHandler.RegisterRoutes(router.Group(""))
	budgetHandler.RegisterRoutes(router.Group(""))
	reportHandler.RegisterRoutes(router.Group(""))
	leaveHandler.RegisterRoutes(router.Group(""))
	crmHandler.RegisterRoutes(router.Group(""))

	zapLogger.Info("server starting", zap.String("port", cfg.Port))
	if err := router.Run(":" + cfg.Port); err != nil {
		zapLogger.Fatal("server exited", zap.Error(err))
	}
}
