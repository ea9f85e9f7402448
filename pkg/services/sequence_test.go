package services_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sequor-io/sequor/pkg/channels/gochannel"
	"github.com/sequor-io/sequor/pkg/eventbus"
	"github.com/sequor-io/sequor/pkg/events"
	"github.com/sequor-io/sequor/pkg/mocks"
	"github.com/sequor-io/sequor/pkg/models"
	"github.com/sequor-io/sequor/pkg/persistence/file"
	"github.com/sequor-io/sequor/pkg/services"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testSequence() *models.Sequence {
	return &models.Sequence{
		Name:          "Welcome Flow",
		TriggerEvents: []string{"evt-signup"},
		Nodes: []*models.Node{
			{ID: "node_1", Kind: models.NodeKindTrigger, Config: &models.TriggerConfig{
				Events: []models.EventDescriptor{{ID: "evt-signup", Name: "user_signed_up"}},
			}},
		},
	}
}

func newService(t *testing.T) *services.Sequence {
	t.Helper()

	return services.NewSequence(testLogger(), file.NewFilePersistence(t.TempDir()), nil, nil)
}

func TestSequence_CreateAssignsIdentityAndDefaults(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	created, err := svc.Create(ctx, testSequence())
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "1.0", created.Version)
	assert.Equal(t, models.SequenceStatusActive, created.Status,
		"an unset status persists as active")

	fetched, err := svc.FetchByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Name, fetched.Name)
}

func TestSequence_CreatePreservesExplicitDraftStatus(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	seq := testSequence()
	seq.Status = models.SequenceStatusDraft

	created, err := svc.Create(ctx, seq)
	require.NoError(t, err)
	assert.Equal(t, models.SequenceStatusDraft, created.Status)

	fetched, err := svc.FetchByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SequenceStatusDraft, fetched.Status)
}

func TestSequence_CreateRejectsShortName(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	seq := testSequence()
	seq.Name = "ab"

	_, err := svc.Create(ctx, seq)
	require.Error(t, err)
	assert.True(t, services.IsValidationError(err))
}

func TestSequence_UpdatePreservesIdentity(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	created, err := svc.Create(ctx, testSequence())
	require.NoError(t, err)

	replacement := testSequence()
	replacement.Name = "Welcome Flow v2"

	updated, err := svc.Update(ctx, created.ID, replacement)
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Welcome Flow v2", updated.Name)
	assert.Equal(t, created.Version, updated.Version)
}

func TestSequence_UpdateUnknownSequence(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	_, err := svc.Update(ctx, "missing", testSequence())
	require.Error(t, err)
	assert.True(t, services.IsNotFoundError(err))
}

func TestSequence_PublishBumpsVersion(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	created, err := svc.Create(ctx, testSequence())
	require.NoError(t, err)

	published, err := svc.Publish(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "1.1", published.Version)
	assert.Equal(t, models.SequenceStatusActive, published.Status)

	again, err := svc.Publish(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "1.2", again.Version)
}

func TestSequence_PublishRequiresTrigger(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	seq := testSequence()
	seq.Nodes = nil
	seq.TriggerEvents = nil

	created, err := svc.Create(ctx, seq)
	require.NoError(t, err)

	_, err = svc.Publish(ctx, created.ID)
	require.ErrorIs(t, err, services.ErrTriggerNodeRequired)
	assert.True(t, services.IsValidationError(err))
}

func TestSequence_DeleteRemovesSequence(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	created, err := svc.Create(ctx, testSequence())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))

	_, err = svc.FetchByID(ctx, created.ID)
	assert.True(t, services.IsNotFoundError(err))
}

func TestSequence_CreatePublishesLifecycleEvent(t *testing.T) {
	ctx := context.Background()

	pub, sub, err := gochannel.CreateTestChannel(watermill.NopLogger{})
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(pub, sub)

	received := make(chan *events.SequenceCreated, 1)

	require.NoError(t, bus.Handle(events.SequenceCreatedEvent, func(ctx context.Context, event any) error {
		created, ok := event.(*events.SequenceCreated)
		require.True(t, ok)
		received <- created

		return nil
	}))
	require.NoError(t, bus.Subscribe(ctx))

	svc := services.NewSequence(testLogger(), file.NewFilePersistence(t.TempDir()), nil, bus)

	created, err := svc.Create(ctx, testSequence())
	require.NoError(t, err)

	select {
	case event := <-received:
		assert.Equal(t, created.ID, event.SequenceID)
		assert.Equal(t, created.Name, event.Name)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a sequence.created event")
	}
}

func TestSequence_ListPropagatesStoreFailure(t *testing.T) {
	store := new(mocks.MockPersistence)
	store.On("Sequences", mock.Anything).Return(nil, errors.New("connection refused"))

	svc := services.NewSequence(testLogger(), store, nil, nil)

	_, err := svc.ListSequences(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	store.AssertExpectations(t)
}

func TestSequence_DeleteNotifiesEventBus(t *testing.T) {
	ctx := context.Background()

	store := new(mocks.MockPersistence)
	store.On("DeleteSequence", mock.Anything, "seq-1").Return(nil)

	bus := new(mocks.MockEventBus)
	bus.On("Publish", mock.Anything, string(events.SequenceDeletedEvent), mock.MatchedBy(func(event eventbus.Event) bool {
		deleted, ok := event.(events.SequenceDeleted)

		return ok && deleted.SequenceID == "seq-1"
	})).Return(nil)

	svc := services.NewSequence(testLogger(), store, nil, bus)

	require.NoError(t, svc.Delete(ctx, "seq-1"))
	store.AssertExpectations(t)
	bus.AssertExpectations(t)
}
