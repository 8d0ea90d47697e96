// Package main provides the StreamSuite API server implementation.
package main

import (
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"

	"github.com/thecyberginehost/streamsuite-sub000/pkg/ledger"
	"github.com/thecyberginehost/streamsuite-sub000/pkg/pipeline"
	"github.com/thecyberginehost/streamsuite-sub000/pkg/web"
)

type API struct {
	logger   *slog.Logger
	service  *pipeline.Service
	store    ledger.Store
	validate *validator.Validate
}

func NewAPI(logger *slog.Logger, service *pipeline.Service, store ledger.Store) *API {
	return &API{
		logger:   logger,
		service:  service,
		store:    store,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	handlers := web.NewAPIHandlers(a.service, a.store, a.validate)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("StreamSuite API")
	})

	handlers.Register(app)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	return app.Listen(":" + strconv.Itoa(port))
}
