package registry_test

import (
	"encoding/json"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sequor-io/sequor/pkg/models"
	"github.com/sequor-io/sequor/pkg/registry"
)

func newRegistry() *registry.Registry {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	r := registry.NewRegistry(logger)
	r.RegisterDefaultNodes()

	return r
}

func TestRegistry_HealthCheck(t *testing.T) {
	r := newRegistry()
	assert.NoError(t, r.HealthCheck())

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	empty := registry.NewRegistry(logger)
	assert.Error(t, empty.HealthCheck())
}

func TestRegistry_DefinitionsCoverAllKinds(t *testing.T) {
	r := newRegistry()

	definitions := r.Definitions()
	assert.Len(t, definitions, len(models.NodeKinds))

	for _, kind := range models.NodeKinds {
		_, ok := r.Definition(kind)
		assert.True(t, ok, "kind %s should be registered", kind)
	}
}

func TestRegistry_ValidateConfig(t *testing.T) {
	r := newRegistry()

	err := r.ValidateConfig(models.NodeKindCustomRule, map[string]any{
		"name": "score",
		"code": "return 1",
	})
	assert.NoError(t, err)

	err = r.ValidateConfig(models.NodeKindCustomRule, map[string]any{
		"name": "score",
	})
	assert.Error(t, err, "code is required")

	err = r.ValidateConfig(models.NodeKind("mystery"), map[string]any{})
	assert.Error(t, err)
}

func TestRegistry_DecodeConfig(t *testing.T) {
	r := newRegistry()

	raw := json.RawMessage(`{
		"connectorId": "conn-1",
		"actionId": "act-1",
		"httpMethod": "POST",
		"mappingMode": {"body": "dsl"},
		"dslExpressions": {"body": "{\"x\": 1}"}
	}`)

	config, err := r.DecodeConfig(models.NodeKindAction, raw)
	require.NoError(t, err)

	action, ok := config.(*models.ActionConfig)
	require.True(t, ok)
	assert.Equal(t, "conn-1", action.ConnectorID)
	assert.Equal(t, models.GroupModeDSL, action.MappingMode.Mode(models.GroupBody))

	_, err = r.DecodeConfig(models.NodeKindAction, json.RawMessage(`{"connectorId": "conn-1"}`))
	assert.Error(t, err, "actionId is required by the schema")

	config, err = r.DecodeConfig(models.NodeKindParallel, nil)
	require.NoError(t, err)
	assert.IsType(t, &models.ParallelConfig{}, config)
}
