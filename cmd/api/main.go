package main

import (
	"fmt"
	"net/http"
	"os"

	"dreistrom/internal/config"
	"dreistrom/internal/database"
	"dreistrom/internal/events"
	"dreistrom/internal/handlers"
	"dreistrom/internal/logger"
	"dreistrom/internal/middleware"
	"dreistrom/internal/observability"
	"dreistrom/internal/services"
	"dreistrom/internal/validator"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "dreistrom/internal/docs" // Import swagger docs
)

// @title           DreiStrom API
// @version         1.0
// @description     DreiStrom tracks the three income streams of a moonlighting founder (employment, Freiberuf, Gewerbe) and keeps the German tax obligations that follow from them visible and on time.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

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
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Register custom binding validators
	validator.Register()

	// Initialize services. The notifier sits between the ledger services
	// and the SSE broker, so the read-only services come first.
	db := dbManager.DB()
	auditService := services.NewAuditService(db)
	userService := services.NewUserService(db)
	statusService := services.NewStatusService(db)
	flagService := services.NewFeatureFlagService(db, statusService)

	broker := events.NewBroker()
	notifier := services.NewNotifier(broker, statusService, flagService)

	incomeService := services.NewIncomeService(db, notifier)
	expenseService := services.NewExpenseService(db, notifier)
	ruleService := services.NewAllocationRuleService(db, notifier)
	clientService := services.NewClientService(db)
	siService := services.NewSocialInsuranceService(db, notifier)
	taxService := services.NewTaxService(db)
	vzService := services.NewVorauszahlungService(db, taxService)
	calendarService := services.NewCalendarService(db, notifier)
	onboardingService := services.NewOnboardingService(db)
	invoiceService := services.NewInvoiceService(db, notifier)
	deductionService := services.NewDeductionService(db, notifier)
	importService := services.NewImportService(db, notifier)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, auditService)
	incomeHandler := handlers.NewIncomeHandler(incomeService)
	expenseHandler := handlers.NewExpenseHandler(expenseService)
	ruleHandler := handlers.NewAllocationRuleHandler(ruleService)
	clientHandler := handlers.NewClientHandler(clientService)
	statusHandler := handlers.NewStatusHandler(statusService, siService)
	taxHandler := handlers.NewTaxHandler(taxService, vzService)
	bookkeepingHandler := handlers.NewBookkeepingHandler(taxService)
	invoiceHandler := handlers.NewInvoiceHandler(invoiceService, userService, auditService)
	calendarHandler := handlers.NewCalendarHandler(calendarService)
	onboardingHandler := handlers.NewOnboardingHandler(onboardingService, auditService)
	flagHandler := handlers.NewFeatureFlagHandler(flagService)
	deductionHandler := handlers.NewDeductionHandler(deductionService)
	importHandler := handlers.NewImportHandler(importService, auditService)
	eventsHandler := handlers.NewEventsHandler(broker, notifier)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	router.Use(observability.Metrics())

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

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Operational endpoints
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", observability.Handler())

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	// User profile
	protected.GET("/profile", authHandler.GetProfile)
	protected.PUT("/profile/tax", authHandler.UpdateTaxProfile)

	// Income ledger
	income := protected.Group("/income")
	income.POST("", incomeHandler.CreateEntry)
	income.GET("", incomeHandler.ListEntries)
	income.GET("/:id", incomeHandler.GetEntry)
	income.PUT("/:id", incomeHandler.UpdateEntry)
	income.DELETE("/:id", incomeHandler.DeleteEntry)

	// Expense ledger
	expenses := protected.Group("/expenses")
	expenses.POST("", expenseHandler.CreateEntry)
	expenses.GET("", expenseHandler.ListEntries)
	expenses.GET("/:id", expenseHandler.GetEntry)
	expenses.PUT("/:id", expenseHandler.UpdateEntry)
	expenses.DELETE("/:id", expenseHandler.DeleteEntry)

	// Allocation rules
	rules := protected.Group("/allocation-rules")
	rules.POST("", ruleHandler.CreateRule)
	rules.GET("", ruleHandler.ListRules)
	rules.PUT("/:id", ruleHandler.UpdateRule)
	rules.DELETE("/:id", ruleHandler.DeleteRule)

	// Clients
	clients := protected.Group("/clients")
	clients.POST("", clientHandler.CreateClient)
	clients.GET("", clientHandler.ListClients)
	clients.GET("/:id", clientHandler.GetClient)
	clients.PUT("/:id", clientHandler.UpdateClient)
	clients.DELETE("/:id", clientHandler.DeleteClient)

	// Threshold monitors
	dashboard := protected.Group("/dashboard")
	dashboard.GET("/abfaerbung", statusHandler.Abfaerbung)
	dashboard.GET("/gewerbesteuer", statusHandler.Gewerbesteuer)
	dashboard.GET("/mandatory-filing", statusHandler.MandatoryFiling)
	dashboard.GET("/bilanzierung", statusHandler.Bilanzierung)
	dashboard.GET("/arbzg", statusHandler.ArbZG)
	protected.GET("/vat/kleinunternehmer", statusHandler.Kleinunternehmer)

	// Social insurance
	social := protected.Group("/social-insurance")
	social.GET("/status", statusHandler.SocialInsuranceStatus)
	social.GET("/entries", statusHandler.ListSocialInsuranceEntries)
	social.PUT("/entries", statusHandler.UpsertSocialInsuranceEntry)

	// Tax assessment and prepayments
	tax := protected.Group("/tax")
	tax.GET("/assessment", taxHandler.Assessment)
	tax.GET("/gewerbesteuer", taxHandler.Gewerbesteuer)
	tax.GET("/reserve", taxHandler.Reserve)
	tax.GET("/vorauszahlungen", taxHandler.ListVorauszahlungen)
	tax.POST("/vorauszahlungen/generate", taxHandler.GenerateVorauszahlungen)
	tax.POST("/vorauszahlungen/:id/pay", taxHandler.PayVorauszahlung)
	tax.GET("/vorauszahlungen/deviation", taxHandler.VorauszahlungDeviation)

	// Bookkeeping
	bookkeeping := protected.Group("/bookkeeping")
	bookkeeping.GET("/eur/dual", bookkeepingHandler.DualEuer)
	bookkeeping.GET("/eur/:stream", bookkeepingHandler.Euer)
	bookkeeping.GET("/eur/:stream/pdf", bookkeepingHandler.EuerPDF)

	// Deductions
	deductions := protected.Group("/deductions")
	deductions.GET("/home-office", deductionHandler.HomeOffice)
	deductions.POST("/assets", deductionHandler.CreateAsset)
	deductions.GET("/assets", deductionHandler.ListAssets)
	deductions.GET("/assets/:id/schedule", deductionHandler.AssetSchedule)
	deductions.DELETE("/assets/:id", deductionHandler.DeleteAsset)

	// Invoices
	invoices := protected.Group("/invoices")
	invoices.POST("", invoiceHandler.CreateInvoice)
	invoices.GET("", invoiceHandler.ListInvoices)
	invoices.GET("/:id", invoiceHandler.GetInvoice)
	invoices.PUT("/:id", invoiceHandler.UpdateInvoice)
	invoices.DELETE("/:id", invoiceHandler.DeleteInvoice)
	invoices.POST("/:id/status", invoiceHandler.TransitionInvoice)
	invoices.GET("/:id/pdf", invoiceHandler.InvoicePDF)

	// Compliance calendar
	calendar := protected.Group("/calendar")
	calendar.GET("/events", calendarHandler.ListEvents)
	calendar.POST("/events", calendarHandler.CreateCustomEvent)
	calendar.POST("/generate", calendarHandler.GenerateEvents)
	calendar.POST("/events/:id/complete", calendarHandler.CompleteEvent)
	calendar.POST("/events/:id/cancel", calendarHandler.CancelEvent)
	calendar.GET("/export.ics", calendarHandler.ExportICS)

	// Onboarding
	onboarding := protected.Group("/onboarding")
	onboarding.POST("/initialize", onboardingHandler.Initialize)
	onboarding.GET("/progress", onboardingHandler.Progress)
	onboarding.POST("/steps/:number/start", onboardingHandler.StartStep)
	onboarding.POST("/steps/:number/complete", onboardingHandler.CompleteStep)
	onboarding.POST("/steps/:number/skip", onboardingHandler.SkipStep)
	onboarding.POST("/decisions/:id", onboardingHandler.Decide)
	onboarding.GET("/decisions/kleinunternehmer/evaluate", onboardingHandler.EvaluateKleinunternehmer)

	// Feature flags
	protected.GET("/features/flags", flagHandler.Flags)

	// Payout imports
	imports := protected.Group("/imports")
	imports.POST("/apple", importHandler.ImportApple)
	imports.POST("/google", importHandler.ImportGoogle)
	imports.GET("/batches", importHandler.ListBatches)

	// Event stream
	protected.GET("/events/stream", eventsHandler.Stream)

	log.Infof("Starting DreiStrom backend server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
