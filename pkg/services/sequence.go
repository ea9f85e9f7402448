package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/sequor-io/sequor/pkg/codec"
	"github.com/sequor-io/sequor/pkg/eventbus"
	"github.com/sequor-io/sequor/pkg/events"
	"github.com/sequor-io/sequor/pkg/models"
	"github.com/sequor-io/sequor/pkg/otelhelper"
	"github.com/sequor-io/sequor/pkg/persistence"
	"github.com/sequor-io/sequor/pkg/sequence"
)

var tracer = otel.Tracer("sequor.services")

// Sequence is the management service behind the editing API: CRUD plus
// publish, every write funneled through the session's validation gate.
type Sequence struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	catalog     sequence.ActionCatalog
	eventBus    eventbus.EventPublisher
	validator   *validator.Validate
}

// NewSequence creates a new sequence service. The event bus may be nil, in
// which case lifecycle notifications are skipped.
func NewSequence(
	logger *slog.Logger,
	store persistence.Persistence,
	catalog sequence.ActionCatalog,
	bus eventbus.EventPublisher,
) *Sequence {
	return &Sequence{
		logger:      logger,
		persistence: store,
		catalog:     catalog,
		eventBus:    bus,
		validator:   validator.New(),
	}
}

// HealthCheck checks the health of the persistence layer.
func (s *Sequence) HealthCheck(ctx context.Context) (string, bool) {
	if s.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := s.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// ListSequences retrieves all sequences.
func (s *Sequence) ListSequences(ctx context.Context) ([]*models.Sequence, error) {
	sequences, err := s.persistence.Sequences(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sequences: %w", err)
	}

	return sequences, nil
}

// FetchByID retrieves a sequence by its ID.
func (s *Sequence) FetchByID(ctx context.Context, id string) (*models.Sequence, error) {
	seq, err := s.persistence.SequenceByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return seq, nil
}

// Create persists a new sequence document as a draft.
func (s *Sequence) Create(ctx context.Context, seq *models.Sequence) (*models.Sequence, error) {
	if seq == nil {
		return nil, ErrSequenceNil
	}

	if err := s.validator.Struct(seq); err != nil {
		return nil, NewValidationError("Create", "INVALID_SEQUENCE", err.Error(), ErrInvalidRequest)
	}

	seq.ID = ""

	if seq.Version == "" {
		seq.Version = "1.0"
	}

	// Status is left alone here: an unset status is resolved by the save
	// codec, which persists it as active.
	session := sequence.Resume(s.logger, s.persistence, s.catalog, seq)

	saved, err := session.Save(ctx, codec.SaveDraft)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, events.SequenceCreated{
		BaseEvent: events.NewBaseEvent(events.SequenceCreatedEvent, saved.ID),
		Name:      saved.Name,
		Version:   saved.Version,
	})

	return saved, nil
}

// Update replaces an existing sequence document, preserving its identity.
func (s *Sequence) Update(ctx context.Context, id string, seq *models.Sequence) (*models.Sequence, error) {
	if seq == nil {
		return nil, ErrSequenceNil
	}

	if err := s.validator.Struct(seq); err != nil {
		return nil, NewValidationError("Update", "INVALID_SEQUENCE", err.Error(), ErrInvalidRequest)
	}

	existing, err := s.persistence.SequenceByID(ctx, id)
	if err != nil {
		return nil, err
	}

	seq.ID = existing.ID

	if seq.Version == "" {
		seq.Version = existing.Version
	}

	session := sequence.Resume(s.logger, s.persistence, s.catalog, seq)

	saved, err := session.Save(ctx, codec.SaveDraft)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, events.SequenceUpdated{
		BaseEvent: events.NewBaseEvent(events.SequenceUpdatedEvent, saved.ID),
		Name:      saved.Name,
		Version:   saved.Version,
		Status:    string(saved.Status),
	})

	return saved, nil
}

// Publish performs the privileged save: the stored sequence is revalidated,
// its version bumped by 0.1 and its status forced to active.
func (s *Sequence) Publish(ctx context.Context, id string) (*models.Sequence, error) {
	ctx, span := otelhelper.StartSpan(ctx, tracer, "sequence.publish",
		attribute.String(otelhelper.SequenceIDKey, id))
	defer span.End()

	session, err := sequence.LoadSession(ctx, s.logger, s.persistence, s.catalog, id)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	if err := s.validateForPublishing(session.Sequence()); err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	published, err := session.Save(ctx, codec.SavePublish)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	span.SetAttributes(attribute.String(otelhelper.SequenceVersionKey, published.Version))

	s.notify(ctx, events.SequencePublished{
		BaseEvent: events.NewBaseEvent(events.SequencePublishedEvent, published.ID),
		Name:      published.Name,
		Version:   published.Version,
	})

	return published, nil
}

// Delete removes a sequence by its ID.
func (s *Sequence) Delete(ctx context.Context, id string) error {
	if err := s.persistence.DeleteSequence(ctx, id); err != nil {
		return err
	}

	s.notify(ctx, events.SequenceDeleted{
		BaseEvent: events.NewBaseEvent(events.SequenceDeletedEvent, id),
	})

	return nil
}

// validateForPublishing ensures a sequence is ready to go live.
func (s *Sequence) validateForPublishing(seq *models.Sequence) error {
	if seq.Name == "" {
		return ErrSequenceNameRequired
	}

	if _, ok := seq.TriggerNode(); !ok {
		return ErrTriggerNodeRequired
	}

	return nil
}

func (s *Sequence) notify(ctx context.Context, event eventbus.Event) {
	if s.eventBus == nil {
		return
	}

	if err := s.eventBus.Publish(ctx, string(event.GetType()), event); err != nil {
		s.logger.WarnContext(ctx, "failed to publish lifecycle event",
			"event_type", event.GetType(), "error", err)
	}
}
