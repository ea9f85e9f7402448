package mapping_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sequor-io/sequor/pkg/mapping"
	"github.com/sequor-io/sequor/pkg/models"
	"github.com/sequor-io/sequor/pkg/scope"
)

func testEngine() *mapping.Engine {
	resolver := scope.NewResolver(
		[]models.EventDescriptor{
			{ID: "evt-signup", Name: "user_signed_up", Fields: []models.EventField{
				{Path: "email", Type: models.FieldTypeString},
				{Path: "document_id", Type: models.FieldTypeString},
			}},
		},
		[]*models.Variable{
			{ID: "var-1", Name: "api_url", Kind: models.VariableKindSingle},
		},
	)

	return mapping.NewEngine(resolver)
}

func testAction() *models.ActionDescriptor {
	return &models.ActionDescriptor{
		ID:          "act-send-email",
		ConnectorID: "conn-mailer",
		Name:        "Send Email",
		HTTPMethod:  "POST",
		Path:        "/messages/{message_id}",
		PathParams: models.ParameterDefs{
			"message_id": {Type: models.FieldTypeString, Mandatory: true},
		},
		QueryParams: models.ParameterDefs{
			"dry_run": {Type: models.FieldTypeString, Default: "false"},
		},
		RequestBodyParams: models.ParameterDefs{
			"to": {Type: models.FieldTypeString, Mandatory: true},
			"options": {
				Type: models.FieldTypeObject,
				Properties: map[string]models.ParameterDef{
					"priority": {Type: models.FieldTypeString, Mandatory: true},
					"track":    {Type: models.FieldTypeString},
				},
			},
		},
	}
}

func leaf(source models.MappingSource, value string) *models.MappingNode {
	return &models.MappingNode{Leaf: &models.ParameterMapping{Type: source, Value: value}}
}

func completeConfig() *models.ActionConfig {
	return &models.ActionConfig{
		ConnectorID: "conn-mailer",
		ActionID:    "act-send-email",
		Mappings: models.GroupMappings{
			models.GroupPath: {
				"message_id": leaf(models.MappingSourceVariable, "@event.document_id"),
			},
			models.GroupBody: {
				"to": leaf(models.MappingSourceVariable, "@event.email"),
				"options": {Children: map[string]*models.MappingNode{
					"priority": leaf(models.MappingSourceStatic, "high"),
				}},
			},
		},
	}
}

func TestEngine_ValidateAction_Complete(t *testing.T) {
	t.Parallel()

	require.NoError(t, testEngine().ValidateAction(testAction(), completeConfig()))
}

func TestEngine_ValidateAction_UnmappedMandatory(t *testing.T) {
	t.Parallel()

	config := completeConfig()
	delete(config.Mappings[models.GroupBody], "to")

	err := testEngine().ValidateAction(testAction(), config)
	require.Error(t, err)
	assert.ErrorIs(t, err, mapping.ErrUnmappedMandatory)

	var groupErr *mapping.GroupError
	require.ErrorAs(t, err, &groupErr)
	assert.Equal(t, models.GroupBody, groupErr.Group)
}

func TestEngine_ValidateAction_EmptyLeafDoesNotSatisfyMandatory(t *testing.T) {
	t.Parallel()

	config := completeConfig()
	config.Mappings[models.GroupBody]["to"] = leaf(models.MappingSourceStatic, "")

	err := testEngine().ValidateAction(testAction(), config)
	assert.ErrorIs(t, err, mapping.ErrUnmappedMandatory)
}

func TestEngine_ValidateAction_NestedMandatory(t *testing.T) {
	t.Parallel()

	config := completeConfig()
	config.Mappings[models.GroupBody]["options"] = &models.MappingNode{Children: map[string]*models.MappingNode{}}

	err := testEngine().ValidateAction(testAction(), config)
	require.Error(t, err)
	assert.ErrorIs(t, err, mapping.ErrUnmappedMandatory)
	assert.Contains(t, err.Error(), "priority")
}

func TestEngine_ValidateAction_DanglingReference(t *testing.T) {
	t.Parallel()

	config := completeConfig()
	config.Mappings[models.GroupBody]["to"] = leaf(models.MappingSourceVariable, "@workflow.removed")

	err := testEngine().ValidateAction(testAction(), config)
	require.Error(t, err)
	assert.True(t, scope.IsUnknownReference(err))
}

func TestEngine_ValidateAction_UndeclaredParameter(t *testing.T) {
	t.Parallel()

	config := completeConfig()
	config.Mappings[models.GroupQuery] = models.MappingTree{
		"verbose": leaf(models.MappingSourceStatic, "true"),
	}

	err := testEngine().ValidateAction(testAction(), config)
	assert.ErrorIs(t, err, mapping.ErrUndeclaredParameter)
}

func TestEngine_ValidateAction_DSLMode(t *testing.T) {
	t.Parallel()

	config := completeConfig()
	config.MappingMode = models.GroupModes{models.GroupBody: models.GroupModeDSL}
	config.Mappings[models.GroupBody] = nil

	// Mandatory body parameters exist, so an empty expression cannot stand
	// in for them.
	err := testEngine().ValidateAction(testAction(), config)
	require.Error(t, err)
	assert.ErrorIs(t, err, mapping.ErrEmptyExpression)

	config.DSLExpressions = models.GroupExpressions{
		models.GroupBody: `{"to": event.email}`,
	}
	require.NoError(t, testEngine().ValidateAction(testAction(), config))
}

func TestMappedCount(t *testing.T) {
	t.Parallel()

	config := completeConfig()

	// message_id, to, options.priority. The options container itself does
	// not count.
	assert.Equal(t, 3, mapping.MappedCount(config.Mappings))

	config.Mappings[models.GroupBody]["cc"] = leaf(models.MappingSourceStatic, "")
	assert.Equal(t, 3, mapping.MappedCount(config.Mappings), "empty leaves never count")

	config.Mappings[models.GroupQuery] = models.MappingTree{
		"dry_run": leaf(models.MappingSourceStatic, "true"),
	}
	assert.Equal(t, 4, mapping.MappedCount(config.Mappings))
}

func TestSwitchMode_PreservesInactiveRepresentation(t *testing.T) {
	t.Parallel()

	config := completeConfig()
	config.DSLExpressions = models.GroupExpressions{
		models.GroupBody: `{"to": event.email}`,
	}

	mapping.SwitchMode(config, models.GroupBody, models.GroupModeDSL)
	assert.Equal(t, models.GroupModeDSL, config.MappingMode.Mode(models.GroupBody))
	assert.NotEmpty(t, config.Mappings[models.GroupBody], "mappings survive the switch")

	mapping.SwitchMode(config, models.GroupBody, models.GroupModeParameters)
	assert.Equal(t, models.GroupModeParameters, config.MappingMode.Mode(models.GroupBody))
	assert.Equal(t, `{"to": event.email}`, config.DSLExpressions[models.GroupBody], "expression survives the switch back")
}

func TestEngine_BuildFragment(t *testing.T) {
	t.Parallel()

	engine := testEngine()
	action := testAction()
	config := completeConfig()

	body := engine.BuildFragment(
		action.RequestBodyParams,
		config.Mappings[models.GroupBody],
		models.GroupModeParameters,
		"",
	)
	assert.Equal(t, "@event.email", body["to"], "variable references stay symbolic")

	options, ok := body["options"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "high", options["priority"])

	query := engine.BuildFragment(
		action.QueryParams,
		config.Mappings[models.GroupQuery],
		models.GroupModeParameters,
		"",
	)
	assert.Equal(t, "false", query["dry_run"], "unmapped parameters fall back to defaults")

	dsl := engine.BuildFragment(
		action.RequestBodyParams,
		nil,
		models.GroupModeDSL,
		`{"to": event.email}`,
	)
	assert.Equal(t, `{"to": event.email}`, dsl[mapping.ExpressionKey])
}
