package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"carproban-backend/internal/handler"
	"carproban-backend/internal/middleware"
	"carproban-backend/internal/model"
	"carproban-backend/internal/repository"
	"carproban-backend/internal/service"
	"carproban-backend/internal/ws"
	"carproban-backend/pkg/cache"
	"carproban-backend/pkg/database"
)

func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		logrus.Warn(".env file not found, relying on system env")
	}
	if os.Getenv("LOG_FORMAT") == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	// 2. Setup Database
	db := database.ConnectDB()
	// Auto Migrate (use a dedicated migration tool in production)
	if err := db.AutoMigrate(
		&model.Outlet{},
		&model.Brand{},
		&model.Category{},
		&model.Product{},
		&model.StockEntry{},
		&model.Customer{},
		&model.User{},
		&model.Transfer{},
		&model.TransferItem{},
		&model.Transaction{},
		&model.TransactionItem{},
		&model.TransactionPayment{},
		&model.DocumentCounter{},
	); err != nil {
		logrus.WithError(err).Fatal("auto migrate failed")
	}

	// 3. Seed default super admin
	seedSuperAdmin(db)

	// 4. WebSocket hub + optional redis cache
	wsHub := ws.NewHub()
	go wsHub.Run()
	redisCache := cache.Connect()
	events := &service.Events{Hub: wsHub, Cache: redisCache}

	// 5. Dependency Injection (Wiring Layers)
	userRepo := repository.NewUserRepo(db)
	outletRepo := repository.NewOutletRepo(db)
	brandRepo := repository.NewBrandRepo(db)
	categoryRepo := repository.NewCategoryRepo(db)
	productRepo := repository.NewProductRepo(db)
	stockRepo := repository.NewStockRepo(db)
	customerRepo := repository.NewCustomerRepo(db)
	transferRepo := repository.NewTransferRepo(db)
	transactionRepo := repository.NewTransactionRepo(db)
	seqRepo := repository.NewSequenceRepo(db)

	authService := service.NewAuthService(userRepo)
	userService := service.NewUserService(userRepo, outletRepo)
	stockService := service.NewStockService(stockRepo, productRepo, outletRepo, db, events)
	masterService := service.NewMasterService(outletRepo, brandRepo, categoryRepo, productRepo, events)
	transferService := service.NewTransferService(transferRepo, outletRepo, productRepo, stockRepo, seqRepo, stockService, db, events)
	transactionService := service.NewTransactionService(transactionRepo, customerRepo, productRepo, outletRepo, seqRepo, stockService, db, events)
	receivableService := service.NewReceivableService(transactionRepo, db, events)
	snapshotService := service.NewSnapshotService(outletRepo, brandRepo, categoryRepo, productRepo, stockRepo, transferRepo, transactionRepo, customerRepo, redisCache)

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	masterHandler := handler.NewMasterHandler(masterService, stockService)
	transferHandler := handler.NewTransferHandler(transferService)
	transactionHandler := handler.NewTransactionHandler(transactionService)
	receivableHandler := handler.NewReceivableHandler(receivableService)
	snapshotHandler := handler.NewSnapshotHandler(snapshotService)

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "CarProBan Backend v1.0",
	})

	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(cors.New())

	// 7. Routes
	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/validate-token", authHandler.ValidateToken)
	auth.Post("/heartbeat", middleware.RequireAuth(userRepo), authHandler.Heartbeat)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", middleware.RequireAuth(userRepo))

	// Bulk hydration payload
	protected.Get("/initial-data", snapshotHandler.InitialData)

	// Master data
	protected.Get("/outlets", masterHandler.ListOutlets)
	protected.Post("/outlets", masterHandler.CreateOutlet)
	protected.Put("/outlets/:id", masterHandler.UpdateOutlet)
	protected.Delete("/outlets/:id", masterHandler.DeleteOutlet)

	protected.Get("/brands", masterHandler.ListBrands)
	protected.Post("/brands", masterHandler.CreateBrand)
	protected.Delete("/brands/:id", masterHandler.DeleteBrand)

	protected.Get("/categories", masterHandler.ListCategories)
	protected.Post("/categories", masterHandler.CreateCategory)
	protected.Delete("/categories/:id", masterHandler.DeleteCategory)

	protected.Get("/products", masterHandler.ListProducts)
	protected.Post("/products", masterHandler.CreateProduct)
	protected.Put("/products/:id", masterHandler.UpdateProduct)
	protected.Delete("/products/:id", masterHandler.DeleteProduct)

	// Stock
	protected.Get("/stocks", masterHandler.ListStocks)
	protected.Put("/stocks", masterHandler.UpsertStock)

	// Transfers
	protected.Get("/transfers", transferHandler.List)
	protected.Get("/transfers/:id", transferHandler.Get)
	protected.Post("/transfers", transferHandler.Create)
	protected.Patch("/transfers/:id", transferHandler.Transition)

	// Transactions (sales)
	protected.Get("/transactions", transactionHandler.List)
	protected.Get("/transactions/:id", transactionHandler.Get)
	protected.Post("/transactions", transactionHandler.Create)
	protected.Delete("/transactions/:id", transactionHandler.Cancel)

	// Receivables
	protected.Get("/receivables", receivableHandler.List)
	protected.Patch("/receivables/:id", receivableHandler.Settle)

	// User management
	protected.Get("/users", userHandler.List)
	protected.Post("/users", userHandler.Create)

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		wsHub.Register <- c
		defer func() { wsHub.Unregister <- c }()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 8. Graceful Shutdown
	go func() {
		port := os.Getenv("PORT")
		if port == "" {
			port = "3000"
		}
		if err := app.Listen(":" + port); err != nil {
			logrus.WithError(err).Fatal("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("shutting down server")
	if err := app.Shutdown(); err != nil {
		logrus.WithError(err).Fatal("server forced to shutdown")
	}
	logrus.Info("server exited")
}

// seedSuperAdmin creates the initial cross-outlet admin account if no user
// exists yet. Credentials come from env so deployments don't ship defaults.
func seedSuperAdmin(db *gorm.DB) {
	userRepo := repository.NewUserRepo(db)

	email := os.Getenv("SEED_ADMIN_EMAIL")
	if email == "" {
		email = "admin@carproban.local"
	}
	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if password == "" {
		password = "admin123"
	}

	if _, err := userRepo.FindByEmail(email); err == nil {
		return
	}

	admin := &model.User{
		Email:    email,
		FullName: "Super Administrator",
		Role:     model.RoleSuperAdmin,
		IsActive: true,
	}
	admin.CreatedBy = "system"
	admin.UpdatedBy = "system"

	if err := admin.SetPassword(password); err != nil {
		logrus.WithError(err).Warn("failed to hash seed admin password")
		return
	}
	if err := userRepo.Create(admin); err != nil {
		logrus.WithError(err).Warn("failed to create seed admin")
		return
	}
	logrus.WithField("email", email).Info("seed super admin created")
}
