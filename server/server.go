package server

import (
	"strings"

	"mir4tracker/application"
	"mir4tracker/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// SchedulerReporter exposes the state of background jobs
type SchedulerReporter interface {
	Status() application.SchedulerStatus
}

// Options configures the HTTP application
type Options struct {
	// Comma-separated list of allowed origins, "*" allows any
	CORSOrigins string
}

// Server holds the services behind the HTTP API
type Server struct {
	accountService service.AccountService
	priceService   service.PriceService
	statsService   service.StatsService
	scheduler      SchedulerReporter
}

// New creates the HTTP API
func New(
	accountService service.AccountService,
	priceService service.PriceService,
	statsService service.StatsService,
	scheduler SchedulerReporter,
) *Server {
	return &Server{
		accountService: accountService,
		priceService:   priceService,
		statsService:   statsService,
		scheduler:      scheduler,
	}
}

// App builds the Fiber application with middleware and routes registered
func (s *Server) App(opts Options) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "MIR4 Account Manager API",
		ErrorHandler:          errorHandler,
		// Params and bodies outlive the handler in stored records and async events
		Immutable: true,
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(cors.New(corsConfig(opts.CORSOrigins)))
	app.Use(requestLogger())

	s.registerRoutes(app)
	return app
}

func (s *Server) registerRoutes(app *fiber.App) {
	api := app.Group("/api")

	api.Get("/", s.handleRoot)
	api.Get("/scheduler-status", s.handleSchedulerStatus)

	api.Get("/boss-prices", s.handleGetPrices)
	api.Put("/boss-prices", s.handleUpdatePrices)

	api.Get("/accounts", s.handleListAccounts)
	api.Post("/accounts", s.handleCreateAccount)
	api.Get("/accounts/:id", s.handleGetAccount)
	api.Put("/accounts/:id", s.handleUpdateAccount)
	api.Delete("/accounts/:id", s.handleDeleteAccount)
	api.Post("/accounts/:id/confirm", s.handleConfirmAccount)
	api.Get("/accounts/:id/objectives", s.handleGetObjectives)

	api.Get("/statistics", s.handleGetStatistics)
}

func corsConfig(origins string) cors.Config {
	var allowed []string
	for _, origin := range strings.Split(origins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			allowed = append(allowed, origin)
		}
	}
	joined := strings.Join(allowed, ",")
	if joined == "" {
		joined = "*"
	}

	return cors.Config{
		AllowOrigins: joined,
		AllowMethods: "GET,POST,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization,X-Requested-With",
		// Fiber refuses credentials together with a wildcard origin
		AllowCredentials: !strings.Contains(joined, "*"),
	}
}
