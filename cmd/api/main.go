package main

import (
	"fmt"
	"net/http"
	"os"

	"fundpool/internal/config"
	"fundpool/internal/database"
	"fundpool/internal/handlers"
	"fundpool/internal/logger"
	"fundpool/internal/middleware"
	"fundpool/internal/services"
	"fundpool/internal/validator"

	"github.com/gin-gonic/gin"
)

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.Migrate(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	validator.Register()

	// Initialize services
	db := dbManager.DB()
	userService := services.NewUserService(db)
	groupService := services.NewGroupService(db)
	memberService := services.NewMemberService(db, groupService)
	fundService := services.NewFundService(db, groupService)
	ledger := services.NewTransactionService(db, groupService)
	reportService := services.NewReportService(db, groupService, ledger)
	planService := services.NewExpensePlanService(db)
	debtService := services.NewDebtService(db)
	snapshotService := services.NewSnapshotService(db, groupService)
	tagService := services.NewTagService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService)
	groupHandler := handlers.NewGroupHandler(groupService)
	memberHandler := handlers.NewMemberHandler(memberService)
	fundHandler := handlers.NewFundHandler(fundService, ledger)
	transactionHandler := handlers.NewTransactionHandler(ledger)
	reportHandler := handlers.NewReportHandler(reportService)
	planHandler := handlers.NewExpensePlanHandler(planService)
	debtHandler := handlers.NewDebtHandler(debtService)
	snapshotHandler := handlers.NewSnapshotHandler(snapshotService)
	tagHandler := handlers.NewTagHandler(tagService)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	// User profile
	protected.GET("/profile", authHandler.GetProfile)

	// Group routes
	groups := protected.Group("/groups")
	groups.POST("", groupHandler.CreateGroup)
	groups.GET("", groupHandler.ListGroups)
	groups.GET("/:id", groupHandler.GetGroup)
	groups.PUT("/:id", groupHandler.UpdateGroup)
	groups.DELETE("/:id", groupHandler.DeleteGroup)
	groups.GET("/:id/balance", transactionHandler.GetGroupBalance)

	// Group-scoped collections
	groups.POST("/:id/members", memberHandler.CreateMember)
	groups.GET("/:id/members", memberHandler.ListMembers)
	groups.POST("/:id/funds", fundHandler.CreateFund)
	groups.GET("/:id/funds", fundHandler.ListFunds)
	groups.POST("/:id/transactions", transactionHandler.CreateTransaction)
	groups.GET("/:id/transactions", transactionHandler.ListTransactions)
	groups.POST("/:id/transfers", transactionHandler.CreateTransfer)
	groups.POST("/:id/snapshots", snapshotHandler.CreateSnapshot)
	groups.GET("/:id/snapshots", snapshotHandler.ListSnapshots)

	// Group reports
	groups.GET("/:id/reports/funds", reportHandler.FundsReport)
	groups.GET("/:id/reports/members", reportHandler.MembersReport)
	groups.GET("/:id/reports/transactions", reportHandler.TransactionsReport)
	groups.GET("/:id/reports/overview", reportHandler.Overview)

	// Member routes
	members := protected.Group("/members")
	members.GET("/:id", memberHandler.GetMember)
	members.PUT("/:id", memberHandler.UpdateMember)
	members.DELETE("/:id", memberHandler.DeleteMember)

	// Fund routes
	funds := protected.Group("/funds")
	funds.GET("/:id", fundHandler.GetFund)
	funds.PUT("/:id", fundHandler.UpdateFund)
	funds.DELETE("/:id", fundHandler.DeleteFund)
	funds.GET("/:id/members", fundHandler.ListFundMembers)
	funds.POST("/:id/members", fundHandler.AddFundMember)
	funds.DELETE("/:id/members/:memberId", fundHandler.RemoveFundMember)

	// Transaction routes
	transactions := protected.Group("/transactions")
	transactions.GET("/:id", transactionHandler.GetTransaction)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	// Tag routes
	tags := protected.Group("/tags")
	tags.POST("", tagHandler.CreateTag)
	tags.GET("", tagHandler.ListTags)
	tags.GET("/:id", tagHandler.GetTag)
	tags.PUT("/:id", tagHandler.UpdateTag)
	tags.DELETE("/:id", tagHandler.DeleteTag)

	// Expense plan routes
	plans := protected.Group("/plans")
	plans.POST("", planHandler.CreatePlan)
	plans.GET("", planHandler.ListPlans)
	plans.GET("/:id", planHandler.GetPlan)
	plans.PUT("/:id", planHandler.UpdatePlan)
	plans.DELETE("/:id", planHandler.DeletePlan)

	// Debt routes
	debts := protected.Group("/debts")
	debts.POST("", debtHandler.CreateDebt)
	debts.GET("", debtHandler.ListDebts)
	debts.GET("/summary", debtHandler.Summary)
	debts.GET("/:id", debtHandler.GetDebt)
	debts.PUT("/:id", debtHandler.UpdateDebt)
	debts.DELETE("/:id", debtHandler.DeleteDebt)
	debts.POST("/:id/details", debtHandler.LinkTransaction)
	debts.GET("/:id/details", debtHandler.ListDetails)
	debts.DELETE("/:id/details/:detailId", debtHandler.UnlinkDetail)

	// Snapshot routes
	snapshots := protected.Group("/snapshots")
	snapshots.GET("/:id/funds", snapshotHandler.GetSnapshotFunds)
	snapshots.DELETE("/:id", snapshotHandler.DeleteSnapshot)

	log.Infof("Starting Fundpool backend server on port %s", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
