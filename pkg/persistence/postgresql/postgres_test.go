package postgresql_test

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/sequor-io/sequor/pkg/models"
	"github.com/sequor-io/sequor/pkg/persistence"
	"github.com/sequor-io/sequor/pkg/persistence/postgresql"
)

var postgresContainer *postgres.PostgresContainer

func dropDb(ctx context.Context, t *testing.T, databaseURL string) {
	t.Helper()

	db, err := sql.Open("postgres", databaseURL)
	require.NoError(t, err)

	// Drop tables in reverse dependency order (children first, parents last)
	for _, table := range []string{"sequence_edges", "sequence_nodes", "sequences", "schema_migrations"} {
		_, err = db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE")
		require.NoError(t, err)
	}

	err = db.Close()
	require.NoError(t, err)
}

func setupTestDB(t *testing.T) (*postgresql.Persistence, context.Context, string) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)

	if postgresContainer == nil || !postgresContainer.IsRunning() {
		var err error

		postgresContainer, err = postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("sequor_test"),
			postgres.WithUsername("sequor"),
			postgres.WithPassword("sequor"),
			postgres.BasicWaitStrategies(),
		)
		require.NoError(t, err)
	}

	databaseURL, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	dropDb(ctx, t, databaseURL)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	p, err := postgresql.NewPersistence(ctx, logger, databaseURL)
	require.NoError(t, err)

	t.Cleanup(func() {
		dropDb(ctx, t, databaseURL)

		err = p.Close(ctx)
		require.NoError(t, err)

		cancel()
	})

	return p, ctx, databaseURL
}

func TestNewPersistence_Migrations(t *testing.T) {
	_, ctx, databaseURL := setupTestDB(t)

	db, err := sql.Open("postgres", databaseURL)
	require.NoError(t, err)

	defer func() {
		err := db.Close()
		require.NoError(t, err)
	}()

	var exists bool

	err = db.QueryRowContext(ctx, `SELECT EXISTS (SELECT FROM
information_schema.tables WHERE table_name = 'sequences')`).Scan(&exists)
	require.NoError(t, err)
	assert.True(t, exists, "sequences table should exist")

	err = db.QueryRowContext(ctx, `SELECT EXISTS (SELECT FROM
information_schema.tables WHERE table_name = 'schema_migrations')`).Scan(&exists)
	require.NoError(t, err)
	assert.True(t, exists, "schema_migrations table should exist")

	var version int

	err = db.QueryRowContext(ctx, "SELECT version FROM schema_migrations WHERE version = 1").Scan(&version)
	require.NoError(t, err)
	assert.Equal(t, 1, version)
}

func TestNewPersistence_HealthCheck(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	err := p.HealthCheck(ctx)
	assert.NoError(t, err)
}

func TestNewPersistence_SaveAndRetrieveSequence(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	defaultURL := "https://api.example.com"
	sequence := &models.Sequence{
		ID:            uuid.New().String(),
		Name:          "Order Follow-up",
		Version:       "1.2",
		Status:        models.SequenceStatusActive,
		TriggerEvents: []string{"order_created"},
		Variables: []*models.Variable{
			{ID: "var-1", Name: "api_url", Kind: models.VariableKindSingle, DefaultValue: &defaultURL},
		},
		Nodes: []*models.Node{
			{
				ID:   "node_1",
				Kind: models.NodeKindTrigger,
				Config: &models.TriggerConfig{
					Events: []models.EventDescriptor{{ID: "evt-1", Name: "order_created", EventType: "commerce"}},
				},
			},
			{
				ID:       "node_2",
				Kind:     models.NodeKindCondition,
				Position: models.Position{X: 120, Y: 80},
				Config: &models.ConditionConfig{
					ConditionSets: []*models.ConditionSet{
						{
							ID: "set-1",
							Conditions: []*models.Condition{
								{
									ID:          "cond-1",
									Variable:    "@event.total",
									Operator:    models.OperatorGreaterThan,
									ValueType:   models.ConditionValueStatic,
									StaticValue: "100",
								},
							},
						},
					},
				},
			},
		},
		Edges: []*models.Edge{
			{ID: "edge-1", Source: "node_1", SourcePort: models.PortDefault, Target: "node_2"},
		},
	}

	err := p.SaveSequence(ctx, sequence)
	require.NoError(t, err)

	loaded, err := p.SequenceByID(ctx, sequence.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)

	assert.Equal(t, sequence.Name, loaded.Name)
	assert.Equal(t, sequence.Version, loaded.Version)
	assert.Equal(t, sequence.Status, loaded.Status)
	assert.Equal(t, sequence.TriggerEvents, loaded.TriggerEvents)
	require.Len(t, loaded.Variables, 1)
	assert.Equal(t, "api_url", loaded.Variables[0].Name)

	require.Len(t, loaded.Nodes, 2)
	assert.Equal(t, models.NodeKindTrigger, loaded.Nodes[0].Kind)

	condition, ok := loaded.Nodes[1].Config.(*models.ConditionConfig)
	require.True(t, ok, "condition node config should decode to its concrete type")
	require.Len(t, condition.ConditionSets, 1)
	assert.Equal(t, models.OperatorGreaterThan, condition.ConditionSets[0].Conditions[0].Operator)

	require.Len(t, loaded.Edges, 1)
	assert.Equal(t, "node_1", loaded.Edges[0].Source)
	assert.Equal(t, models.PortDefault, loaded.Edges[0].SourcePort)
}

func TestNewPersistence_UpdateReplacesGraph(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	sequence := &models.Sequence{
		ID:      uuid.New().String(),
		Name:    "Greeting",
		Version: "1.0",
		Status:  models.SequenceStatusDraft,
		Nodes: []*models.Node{
			{ID: "node_1", Kind: models.NodeKindTrigger, Config: &models.TriggerConfig{
				Events: []models.EventDescriptor{{ID: "evt-1", Name: "signup"}},
			}},
			{ID: "node_2", Kind: models.NodeKindParallel, Config: &models.ParallelConfig{}},
		},
		Edges: []*models.Edge{
			{ID: "edge-1", Source: "node_1", SourcePort: models.PortDefault, Target: "node_2"},
		},
	}

	require.NoError(t, p.SaveSequence(ctx, sequence))

	sequence.Nodes = sequence.Nodes[:1]
	sequence.Edges = nil
	require.NoError(t, p.SaveSequence(ctx, sequence))

	loaded, err := p.SequenceByID(ctx, sequence.ID)
	require.NoError(t, err)
	assert.Len(t, loaded.Nodes, 1)
	assert.Empty(t, loaded.Edges)
}

func TestNewPersistence_SequenceNotFound(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	_, err := p.SequenceByID(ctx, uuid.New().String())
	require.Error(t, err)
	assert.True(t, persistence.IsSequenceNotFound(err))
}

func TestNewPersistence_DeleteSequence(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	sequence := &models.Sequence{
		ID:      uuid.New().String(),
		Name:    "Disposable",
		Version: "1.0",
		Status:  models.SequenceStatusDraft,
	}

	require.NoError(t, p.SaveSequence(ctx, sequence))
	require.NoError(t, p.DeleteSequence(ctx, sequence.ID))

	_, err := p.SequenceByID(ctx, sequence.ID)
	assert.True(t, persistence.IsSequenceNotFound(err))

	err = p.DeleteSequence(ctx, sequence.ID)
	assert.True(t, persistence.IsSequenceNotFound(err))
}
