// Package web provides the HTTP handlers of the sequence editing API.
package web

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/sequor-io/sequor/pkg/client"
	"github.com/sequor-io/sequor/pkg/registry"
	"github.com/sequor-io/sequor/pkg/scope"
	"github.com/sequor-io/sequor/pkg/services"
)

var errCollaboratorUnavailable = errors.New("collaborator API is not configured")

type APIHandlers struct {
	sequenceService *services.Sequence
	collaborator    *client.Client
	validator       *validator.Validate
	registry        *registry.Registry
}

func NewAPIHandlers(
	sequenceService *services.Sequence,
	collaborator *client.Client,
	validate *validator.Validate,
	reg *registry.Registry,
) *APIHandlers {
	return &APIHandlers{
		sequenceService: sequenceService,
		collaborator:    collaborator,
		validator:       validate,
		registry:        reg,
	}
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	repositoryCheck, repOk := h.sequenceService.HealthCheck(c.Context())
	registryErr := h.registry.HealthCheck()

	status := "unhealthy"
	message := "Sequor API is unhealthy"
	httpStatus := http.StatusInternalServerError

	registryCheck := "Node registry is healthy"
	if registryErr != nil {
		registryCheck = registryErr.Error()
	}

	if repOk && registryErr == nil {
		status = "healthy"
		message = "Sequor API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"registry":   registryCheck,
			"repository": repositoryCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}

func (h *APIHandlers) GetSequences(c fiber.Ctx) error {
	sequences, err := h.sequenceService.ListSequences(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{"sequences": sequences})
}

func (h *APIHandlers) GetSequence(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Sequence ID is required")
	}

	seq, err := h.sequenceService.FetchByID(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(seq)
}

func (h *APIHandlers) CreateSequence(c fiber.Ctx) error {
	var payload SequencePayload
	if err := c.Bind().JSON(&payload); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(payload); err != nil {
		return badRequest(c, err.Error())
	}

	seq, err := payload.ToModel(h.registry)
	if err != nil {
		return badRequest(c, err.Error())
	}

	created, err := h.sequenceService.Create(c.Context(), seq)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) UpdateSequence(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Sequence ID is required")
	}

	var payload SequencePayload
	if err := c.Bind().JSON(&payload); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(payload); err != nil {
		return badRequest(c, err.Error())
	}

	seq, err := payload.ToModel(h.registry)
	if err != nil {
		return badRequest(c, err.Error())
	}

	updated, err := h.sequenceService.Update(c.Context(), id, seq)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(updated)
}

func (h *APIHandlers) DeleteSequence(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Sequence ID is required")
	}

	if err := h.sequenceService.Delete(c.Context(), id); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) PublishSequence(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Sequence ID is required")
	}

	published, err := h.sequenceService.Publish(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(published)
}

// GetSequenceReferences returns the merged variable scope of a sequence:
// every resolvable reference, tagged with origin and declared type. The
// editor uses it to populate selection choices.
func (h *APIHandlers) GetSequenceReferences(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Sequence ID is required")
	}

	seq, err := h.sequenceService.FetchByID(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	resolver := scope.ResolverForSequence(seq)

	return c.JSON(fiber.Map{"references": resolver.References()})
}

// GetNodeKinds lists the registered node definitions with their
// configuration schemas.
func (h *APIHandlers) GetNodeKinds(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"kinds": h.registry.Definitions()})
}

// Catalog proxy endpoints. The canvas reads events, connectors, actions and
// credential sets through the API so the browser never talks to the
// collaborator directly.

func (h *APIHandlers) GetEvents(c fiber.Ctx) error {
	if h.collaborator == nil {
		return internalError(c, errCollaboratorUnavailable)
	}

	events, err := h.collaborator.Events(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{"events": events})
}

func (h *APIHandlers) GetConnectors(c fiber.Ctx) error {
	if h.collaborator == nil {
		return internalError(c, errCollaboratorUnavailable)
	}

	connectors, err := h.collaborator.Connectors(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{"connectors": connectors})
}

func (h *APIHandlers) GetActions(c fiber.Ctx) error {
	if h.collaborator == nil {
		return internalError(c, errCollaboratorUnavailable)
	}

	connectorID := c.Query("connector")
	if connectorID == "" {
		return badRequest(c, "connector query parameter is required")
	}

	actions, err := h.collaborator.Actions(c.Context(), connectorID)
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{"actions": actions})
}

func (h *APIHandlers) GetCredentialSets(c fiber.Ctx) error {
	if h.collaborator == nil {
		return internalError(c, errCollaboratorUnavailable)
	}

	actionID := c.Params("id")
	if actionID == "" {
		return badRequest(c, "Action ID is required")
	}

	sets, err := h.collaborator.CredentialSets(c.Context(), actionID)
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{"credential_sets": sets})
}
