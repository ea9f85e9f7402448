package sequence_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sequor-io/sequor/pkg/models"
	"github.com/sequor-io/sequor/pkg/persistence/file"
	"github.com/sequor-io/sequor/pkg/scope"
	"github.com/sequor-io/sequor/pkg/sequence"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func signupEvent() models.EventDescriptor {
	return models.EventDescriptor{
		ID:        "evt-signup",
		Name:      "user_signed_up",
		EventType: "identity",
		Fields: []models.EventField{
			{Path: "email", Type: models.FieldTypeString},
			{Path: "age", Type: models.FieldTypeNumber},
		},
	}
}

func newBoundSession(t *testing.T) *sequence.Session {
	t.Helper()

	store := file.NewFilePersistence(t.TempDir())
	s := sequence.NewSession(testLogger(), store, nil)
	s.Rename("Welcome Flow")
	s.BindTriggerEvents([]models.EventDescriptor{signupEvent()})

	return s
}

func TestSession_BindTriggerEventsInsertsTriggerOnce(t *testing.T) {
	s := newBoundSession(t)

	trigger, ok := s.Sequence().TriggerNode()
	require.True(t, ok)
	assert.Equal(t, "node_1", trigger.ID)

	// Rebinding must update the existing trigger, not insert a second one.
	s.BindTriggerEvents([]models.EventDescriptor{signupEvent()})

	count := 0

	for _, node := range s.Sequence().Nodes {
		if node.Kind == models.NodeKindTrigger {
			count++
		}
	}

	assert.Equal(t, 1, count)
}

func TestSession_TriggerNodeIsProtected(t *testing.T) {
	s := newBoundSession(t)

	trigger, _ := s.Sequence().TriggerNode()

	err := s.RemoveNode(trigger.ID)
	assert.ErrorIs(t, err, sequence.ErrTriggerProtected)

	_, err = s.AddNode(models.NodeKindTrigger, models.Position{})
	assert.ErrorIs(t, err, sequence.ErrTriggerProtected)
}

func TestSession_AddNodeAllocatesMonotonicIDs(t *testing.T) {
	s := newBoundSession(t)

	first, err := s.AddNode(models.NodeKindAction, models.Position{X: 10})
	require.NoError(t, err)
	assert.Equal(t, "node_2", first.ID)

	second, err := s.AddNode(models.NodeKindCondition, models.Position{X: 20})
	require.NoError(t, err)
	assert.Equal(t, "node_3", second.ID)

	require.NoError(t, s.RemoveNode(first.ID))

	third, err := s.AddNode(models.NodeKindMerge, models.Position{})
	require.NoError(t, err)
	assert.Equal(t, "node_4", third.ID, "deleted IDs are never reused")
}

func TestSession_RemoveNodeDropsIncidentEdges(t *testing.T) {
	s := newBoundSession(t)

	action, err := s.AddNode(models.NodeKindAction, models.Position{})
	require.NoError(t, err)

	trigger, _ := s.Sequence().TriggerNode()

	_, err = s.Connect(trigger.ID, "", action.ID)
	require.NoError(t, err)
	require.Len(t, s.Sequence().Edges, 1)

	require.NoError(t, s.RemoveNode(action.ID))
	assert.Empty(t, s.Sequence().Edges)
}

func TestSession_ConnectValidatesPorts(t *testing.T) {
	s := newBoundSession(t)

	condition, err := s.AddNode(models.NodeKindCondition, models.Position{})
	require.NoError(t, err)

	action, err := s.AddNode(models.NodeKindAction, models.Position{})
	require.NoError(t, err)

	require.NoError(t, s.ConfigureNode(condition.ID, &models.ConditionConfig{
		ConditionSets: []*models.ConditionSet{
			{
				ID:    "set-1",
				Label: "High value",
				Conditions: []*models.Condition{
					{
						ID:          "cond-1",
						Variable:    "@event.age",
						Operator:    models.OperatorGreaterThan,
						ValueType:   models.ConditionValueStatic,
						StaticValue: "18",
					},
				},
			},
		},
	}))

	// A condition node routes through its set ports and the else port.
	_, err = s.Connect(condition.ID, "set-1", action.ID)
	require.NoError(t, err)

	_, err = s.Connect(condition.ID, models.PortElse, action.ID)
	require.NoError(t, err)

	_, err = s.Connect(condition.ID, "set-2", action.ID)
	assert.ErrorIs(t, err, sequence.ErrInvalidPort)

	_, err = s.Connect(condition.ID, models.PortDefault, action.ID)
	assert.ErrorIs(t, err, sequence.ErrInvalidPort)
}

func TestSession_ConnectRejectsDuplicateAndSelfEdges(t *testing.T) {
	s := newBoundSession(t)

	trigger, _ := s.Sequence().TriggerNode()

	action, err := s.AddNode(models.NodeKindAction, models.Position{})
	require.NoError(t, err)

	_, err = s.Connect(trigger.ID, "", action.ID)
	require.NoError(t, err)

	_, err = s.Connect(trigger.ID, "", action.ID)
	assert.ErrorIs(t, err, sequence.ErrDuplicateEdge)

	_, err = s.Connect(action.ID, "", action.ID)
	require.Error(t, err)

	_, err = s.Connect(action.ID, "", trigger.ID)
	require.Error(t, err, "trigger accepts no incoming edges")
}

func TestSession_MergeAllowsSingleOutgoingEdge(t *testing.T) {
	s := newBoundSession(t)

	merge, err := s.AddNode(models.NodeKindMerge, models.Position{})
	require.NoError(t, err)

	first, err := s.AddNode(models.NodeKindAction, models.Position{})
	require.NoError(t, err)

	second, err := s.AddNode(models.NodeKindAction, models.Position{})
	require.NoError(t, err)

	// Many incoming edges are fine.
	_, err = s.Connect(first.ID, "", merge.ID)
	require.NoError(t, err)

	_, err = s.Connect(second.ID, "", merge.ID)
	require.NoError(t, err)

	_, err = s.Connect(merge.ID, "", first.ID)
	require.NoError(t, err)

	_, err = s.Connect(merge.ID, "", second.ID)
	assert.ErrorIs(t, err, sequence.ErrMergeFanOut)
}

func TestSession_ConfigureNodeChecksKind(t *testing.T) {
	s := newBoundSession(t)

	action, err := s.AddNode(models.NodeKindAction, models.Position{})
	require.NoError(t, err)

	err = s.ConfigureNode(action.ID, &models.CustomRuleConfig{Name: "x", Code: "y"})
	assert.ErrorIs(t, err, sequence.ErrKindMismatch)

	err = s.ConfigureNode(action.ID, &models.ActionConfig{
		ConnectorID: "conn-1",
		ActionID:    "act-1",
	})
	require.NoError(t, err)
}

func TestSession_VariableManager(t *testing.T) {
	s := newBoundSession(t)

	require.NoError(t, s.AddVariable(&models.Variable{
		Name: "api_url",
		Kind: models.VariableKindSingle,
	}))

	err := s.AddVariable(&models.Variable{Name: "api_url", Kind: models.VariableKindSingle})
	assert.ErrorIs(t, err, sequence.ErrDuplicateVariable)

	err = s.AddVariable(&models.Variable{Name: "9bad", Kind: models.VariableKindSingle})
	require.Error(t, err, "names must start with a letter")

	// The new variable is resolvable in scope immediately.
	ref, err := s.Resolver().Resolve(scope.WorkflowRoot + "api_url")
	require.NoError(t, err)
	assert.Equal(t, scope.OriginWorkflow, ref.Origin)
}

func TestSession_RemoveVariableLeavesDanglingReferenceForSaveGate(t *testing.T) {
	s := newBoundSession(t)

	variable := &models.Variable{Name: "threshold", Kind: models.VariableKindSingle}
	require.NoError(t, s.AddVariable(variable))

	condition, err := s.AddNode(models.NodeKindCondition, models.Position{})
	require.NoError(t, err)

	require.NoError(t, s.ConfigureNode(condition.ID, &models.ConditionConfig{
		ConditionSets: []*models.ConditionSet{
			{
				ID: "set-1",
				Conditions: []*models.Condition{
					{
						ID:          "cond-1",
						Variable:    "@workflow.threshold",
						Operator:    models.OperatorEquals,
						ValueType:   models.ConditionValueStatic,
						StaticValue: "10",
					},
				},
			},
		},
	}))

	require.NoError(t, s.RemoveVariable(variable.ID))

	err = s.Validate(context.Background())
	require.Error(t, err)
	assert.True(t, scope.IsUnknownReference(err))
}

func TestHookTable_DispatchesByKind(t *testing.T) {
	table := sequence.NewHookTable()

	var opened string

	table.Register(models.NodeKindAction, sequence.Hooks{
		OpenSettings: func(node *models.Node) { opened = node.ID },
	})

	node := &models.Node{ID: "node_3", Kind: models.NodeKindAction}
	require.NoError(t, table.OpenSettings(node))
	assert.Equal(t, "node_3", opened)

	broken := &models.Node{ID: "node_9", Kind: ""}
	err := table.OpenSettings(broken)
	assert.ErrorIs(t, err, sequence.ErrNodeUnconfigurable)
}
