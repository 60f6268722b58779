package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"

	"stocktrack/internal/caching"
	"stocktrack/internal/handlers"
	"stocktrack/internal/jobs"
	"stocktrack/internal/jobs/background"
	"stocktrack/internal/middleware"
	"stocktrack/internal/repositories"
	"stocktrack/internal/services"
	"stocktrack/pkg/database"
)

const version = "1.0.0"

const (
	accessTokenTTLSeconds  = 3600
	refreshTokenTTLSeconds = 7 * 24 * 3600
)

func main() {
	// Database connection
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := database.NewPool(databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// JWT configuration
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = random.String(32) // Generate random secret for development
		log.Printf("WARNING: Using generated JWT secret, sessions will not survive restarts")
	}

	// Redis configuration
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDB := 0
	if redisDBStr := os.Getenv("REDIS_DB"); redisDBStr != "" {
		if db, err := strconv.Atoi(redisDBStr); err == nil {
			redisDB = db
		}
	}

	// MinIO configuration
	minioEndpoint := os.Getenv("MINIO_ENDPOINT")
	if minioEndpoint == "" {
		minioEndpoint = "localhost:9000"
	}
	minioAccessKey := os.Getenv("MINIO_ACCESS_KEY")
	if minioAccessKey == "" {
		minioAccessKey = "minioadmin" // Default for development
	}
	minioSecretKey := os.Getenv("MINIO_SECRET_KEY")
	if minioSecretKey == "" {
		minioSecretKey = "minioadmin" // Default for development
	}
	useSSL := os.Getenv("MINIO_USE_SSL") == "true"

	reportBucket := os.Getenv("REPORT_BUCKET")
	if reportBucket == "" {
		reportBucket = "stocktrack-reports"
	}

	storageSvc, err := services.NewMinioStorageService(minioEndpoint, minioAccessKey, minioSecretKey, useSSL)
	if err != nil {
		log.Fatalf("Failed to initialize storage service: %v", err)
	}

	// Create repositories
	itemRepo := repositories.NewItemRepository(pool)
	warehouseRepo := repositories.NewWarehouseRepository(pool)
	saleRepo := repositories.NewSaleRepository(pool)
	wastageRepo := repositories.NewWastageRepository(pool)
	userRepo := repositories.NewUserRepository(pool)
	dashboardRepo := repositories.NewDashboardRepository(pool)

	// Create cache service
	cacheSvc := caching.NewRedisCacheService(redisAddr, redisPassword, redisDB)

	// Create services
	inventorySvc := services.NewInventoryService(pool, itemRepo, warehouseRepo, saleRepo, wastageRepo, cacheSvc)
	warehouseSvc := services.NewWarehouseService(warehouseRepo, cacheSvc)
	dashboardSvc := services.NewDashboardService(dashboardRepo, cacheSvc)
	reportSvc := services.NewReportService(itemRepo, warehouseRepo, storageSvc, reportBucket)
	authSvc := services.NewAuthService(cacheSvc, jwtSecret, accessTokenTTLSeconds, refreshTokenTTLSeconds)

	// Create handlers
	authHandlers := handlers.NewAuthHandlers(authSvc, userRepo)
	inventoryHandlers := handlers.NewInventoryHandlers(inventorySvc)
	warehouseHandlers := handlers.NewWarehouseHandlers(warehouseSvc)
	reportHandlers := handlers.NewReportHandlers(dashboardSvc, reportSvc, inventorySvc)
	healthHandlers := handlers.NewHealthHandlers(pool, cacheSvc)

	// Background jobs
	alertSvc := jobs.NewStockAlertService(itemRepo)
	scheduler := background.NewJobScheduler(cacheSvc, itemRepo, warehouseRepo, dashboardRepo, alertSvc, reportSvc)
	if err := scheduler.Start(); err != nil {
		log.Fatalf("Failed to start job scheduler: %v", err)
	}
	defer scheduler.Stop()

	// Create Echo instance
	e := echo.New()

	// Global middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Pre(echoMiddleware.RemoveTrailingSlash())

	// Health endpoints (no auth required)
	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/live", healthHandlers.LivenessCheck)

	// API routes
	v1 := e.Group("/v1")

	// Authentication routes (no JWT required for signup/login)
	auth := v1.Group("/auth")
	auth.POST("/signup", authHandlers.Signup)
	auth.POST("/login", authHandlers.Login)
	auth.POST("/refresh", authHandlers.Refresh)
	auth.POST("/logout", authHandlers.Logout)

	// Protected routes (require JWT)
	protected := v1.Group("")
	protected.Use(echojwt.WithConfig(middleware.JWTConfig(jwtSecret)))

	protected.GET("/me", authHandlers.Me)

	// Item routes
	protected.GET("/items", inventoryHandlers.ListItems)
	protected.POST("/items", inventoryHandlers.CreateItem)
	protected.GET("/items/search", inventoryHandlers.SearchItems)
	protected.GET("/items/:id", inventoryHandlers.GetItem)
	protected.PUT("/items/:id", inventoryHandlers.UpdateItem)
	protected.DELETE("/items/:id", inventoryHandlers.DeleteItem)

	// Stock movement workflows
	protected.POST("/items/:id/transfer", inventoryHandlers.TransferItem)
	protected.POST("/items/:id/sale", inventoryHandlers.RecordSale)
	protected.POST("/items/:id/wastage", inventoryHandlers.RecordWastage)

	// Ledger reads
	protected.GET("/sales", inventoryHandlers.ListSales)
	protected.GET("/wastage", inventoryHandlers.ListWastage)

	// Warehouse routes
	protected.GET("/warehouses", warehouseHandlers.ListWarehouses)
	protected.POST("/warehouses", warehouseHandlers.CreateWarehouse)
	protected.GET("/warehouses/:id", warehouseHandlers.GetWarehouse)
	protected.PUT("/warehouses/:id", warehouseHandlers.UpdateWarehouse)
	protected.DELETE("/warehouses/:id", warehouseHandlers.DeleteWarehouse)

	// Dashboard and reports
	protected.GET("/dashboard/summary", reportHandlers.DashboardSummary)
	protected.GET("/reports/stock", reportHandlers.StockReport)
	protected.GET("/reports/low-stock", reportHandlers.LowStockItems)
	protected.POST("/reports/export", reportHandlers.ExportStock)

	// Start server
	portStr := os.Getenv("PORT")
	if portStr == "" {
		portStr = "8080"
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		log.Fatalf("Invalid port %s: %v", portStr, err)
	}

	log.Printf("Stocktrack server v%s starting on port %d", version, port)

	e.Logger.Fatal(e.Start(fmt.Sprintf(":%d", port)))
}
