// Package main provides the Sequor API server implementation.
package main

import (
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"

	"github.com/sequor-io/sequor/pkg/client"
	"github.com/sequor-io/sequor/pkg/eventbus"
	"github.com/sequor-io/sequor/pkg/persistence"
	"github.com/sequor-io/sequor/pkg/registry"
	"github.com/sequor-io/sequor/pkg/sequence"
	"github.com/sequor-io/sequor/pkg/services"
	"github.com/sequor-io/sequor/pkg/web"
)

type API struct {
	logger       *slog.Logger
	persistence  persistence.Persistence
	registry     *registry.Registry
	collaborator *client.Client
	eventBus     eventbus.EventBus
	validate     *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	store persistence.Persistence,
	reg *registry.Registry,
	collaborator *client.Client,
	eventBus eventbus.EventBus,
) *API {
	return &API{
		logger:       logger,
		persistence:  store,
		registry:     reg,
		collaborator: collaborator,
		eventBus:     eventBus,
		validate:     validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	var catalog sequence.ActionCatalog
	if a.collaborator != nil {
		catalog = a.collaborator
	}

	var bus eventbus.EventPublisher
	if a.eventBus != nil {
		bus = a.eventBus
	}

	sequenceService := services.NewSequence(a.logger, a.persistence, catalog, bus)

	handlers := web.NewAPIHandlers(sequenceService, a.collaborator, a.validate, a.registry)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Sequor API")
	})

	s := app.Group("/sequences")
	s.Get("/", handlers.GetSequences)
	s.Post("/", handlers.CreateSequence)
	s.Get("/:id", handlers.GetSequence)
	s.Put("/:id", handlers.UpdateSequence)
	s.Delete("/:id", handlers.DeleteSequence)
	s.Post("/:id/publish", handlers.PublishSequence)
	s.Get("/:id/references", handlers.GetSequenceReferences)

	app.Get("/node-kinds", handlers.GetNodeKinds)

	// Catalog proxy endpoints, backed by the collaborator API.
	app.Get("/events", handlers.GetEvents)
	app.Get("/connectors", handlers.GetConnectors)
	app.Get("/actions", handlers.GetActions)
	app.Get("/actions/:id/credential_sets", handlers.GetCredentialSets)

	app.Get("/health", handlers.HealthCheck)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	return app.Listen(":" + strconv.Itoa(port))
}
