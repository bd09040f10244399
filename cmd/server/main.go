package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/ekrako/AcadeMaster/internal/config"
	"github.com/ekrako/AcadeMaster/internal/database"
	"github.com/ekrako/AcadeMaster/internal/handlers"
	"github.com/ekrako/AcadeMaster/internal/middleware"
	"github.com/ekrako/AcadeMaster/internal/services"
	"github.com/ekrako/AcadeMaster/internal/types"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"

	_ "github.com/ekrako/AcadeMaster/docs/api" // Swagger docs
)

// @title AcadeMaster API
// @version 1.0.0
// @description Hour bank allocation service for primary schools
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/ekrako/AcadeMaster

// @host localhost:3000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name cookie_session

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize the Authorizer client up front; auth middleware rejects
	// requests until it is reachable.
	if err := services.InitAuthorizer(cfg, "http", "localhost:"+cfg.Port); err != nil {
		log.Printf("Authorizer not available: %v", err)
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())

	// Prometheus metrics
	prometheus := fiberprometheus.New("academaster")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API routes under /api, all behind user authentication
	api := app.Group("/api")
	api.Use(middleware.APIVersion())
	api.Use(middleware.AuthUser())

	hourTypeHandler := &handlers.HourTypeHandler{DB: db}
	scenarioHandler := &handlers.ScenarioHandler{DB: db}
	allocationHandler := &handlers.AllocationHandler{DB: db}
	transferHandler := &handlers.TransferHandler{DB: db}
	reportHandler := &handlers.ReportHandler{DB: db}

	// Hour type registry
	api.Get("/hour-types", hourTypeHandler.ListHourTypes)
	api.Post("/hour-types", hourTypeHandler.CreateHourType)
	api.Get("/hour-types/:id", hourTypeHandler.GetHourType)
	api.Put("/hour-types/:id", hourTypeHandler.UpdateHourType)
	api.Delete("/hour-types/:id", hourTypeHandler.DeleteHourType)

	// Scenarios. Import routes precede the :id routes so "import" is not
	// captured as a scenario id.
	api.Post("/scenarios/import/validate", transferHandler.ValidateImport)
	api.Post("/scenarios/import", transferHandler.ImportScenario)
	api.Get("/scenarios", scenarioHandler.ListScenarios)
	api.Post("/scenarios", scenarioHandler.CreateScenario)
	api.Get("/scenarios/:id", scenarioHandler.GetScenario)
	api.Put("/scenarios/:id", scenarioHandler.UpdateScenario)
	api.Delete("/scenarios/:id", scenarioHandler.DeleteScenario)
	api.Post("/scenarios/:id/duplicate", scenarioHandler.DuplicateScenario)
	api.Get("/scenarios/:id/export", transferHandler.ExportScenario)

	// Teachers and classes
	api.Post("/scenarios/:id/teachers", scenarioHandler.AddTeacher)
	api.Put("/scenarios/:id/teachers/:teacherId", scenarioHandler.UpdateTeacher)
	api.Delete("/scenarios/:id/teachers/:teacherId", scenarioHandler.RemoveTeacher)
	api.Post("/scenarios/:id/classes", scenarioHandler.AddClass)
	api.Put("/scenarios/:id/classes/:classId", scenarioHandler.UpdateClass)
	api.Delete("/scenarios/:id/classes/:classId", scenarioHandler.RemoveClass)

	// Allocations
	api.Put("/scenarios/:id/teachers/:teacherId/allocations", allocationHandler.ReplaceTeacherAllocations)
	api.Post("/scenarios/:id/allocations", allocationHandler.CreateAllocation)
	api.Delete("/scenarios/:id/allocations/:allocationId", allocationHandler.RemoveAllocation)

	// Reports
	api.Get("/scenarios/:id/report", reportHandler.GetReport)
	api.Get("/scenarios/:id/report/detailed", reportHandler.GetDetailedReport)
	api.Get("/scenarios/:id/report/export", reportHandler.ExportReport)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status":    fiber.StatusNotFound,
			"message":   "[404] Resource Not Found",
			"ok":        false,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"url":       c.OriginalURL(),
		})
	})

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("Gracefully shutting down...")
		_ = app.Shutdown()
	}()

	// Start server
	port := cfg.Port
	log.Printf("Starting server on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	log.Println("Server stopped")
}

// customErrorHandler handles errors globally
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := err.Error()
	errorType := "unknown"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}
	if e, ok := err.(*types.CustomError); ok {
		code = e.Code
		message = e.Message
		errorType = e.Type
	}

	// Check for version errors
	versionError := false
	if code == fiber.StatusConflict || (message != "" && len(message) >= 9 && message[:9] == "E_VERSION") {
		versionError = true
		errorType = "version"
		code = fiber.StatusConflict
	}

	return c.Status(code).JSON(fiber.Map{
		"status":       code,
		"message":      message,
		"ok":           false,
		"versionError": versionError,
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
		"url":          c.OriginalURL(),
		"type":         errorType,
	})
}
