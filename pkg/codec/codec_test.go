package codec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sequor-io/sequor/pkg/codec"
	"github.com/sequor-io/sequor/pkg/models"
)

func TestMarshalUnmarshal_RoundTrip(t *testing.T) {
	t.Parallel()

	seq := &models.Sequence{
		ID:            "seq-1",
		Name:          "Welcome Flow",
		Version:       "1.1",
		Status:        models.SequenceStatusActive,
		TriggerEvents: []string{"evt-signup"},
		Variables: []*models.Variable{
			{ID: "var-1", Name: "api_url", Kind: models.VariableKindSingle},
		},
		Nodes: []*models.Node{
			{ID: "node_1", Kind: models.NodeKindTrigger, Config: &models.TriggerConfig{
				Events: []models.EventDescriptor{{ID: "evt-signup", Name: "user_signed_up"}},
			}},
			{
				ID:       "node_2",
				Kind:     models.NodeKindCondition,
				Position: models.Position{X: 120, Y: 80},
				Config: &models.ConditionConfig{
					ConditionSets: []*models.ConditionSet{
						{ID: "set-1", Conditions: []*models.Condition{
							{
								ID:          "c1",
								Variable:    "@event.age",
								Operator:    models.OperatorGreaterThan,
								ValueType:   models.ConditionValueStatic,
								StaticValue: "18",
							},
						}},
					},
				},
			},
		},
		Edges: []*models.Edge{
			{ID: "edge-1", Source: "node_1", SourcePort: models.PortDefault, Target: "node_2"},
		},
	}

	data, err := codec.Marshal(seq)
	require.NoError(t, err)

	decoded, err := codec.Unmarshal(data)
	require.NoError(t, err)

	assert.Equal(t, seq.ID, decoded.ID)
	assert.Equal(t, seq.Version, decoded.Version)
	require.Len(t, decoded.Nodes, 2)

	condition, ok := decoded.Nodes[1].Config.(*models.ConditionConfig)
	require.True(t, ok)
	require.Len(t, condition.ConditionSets, 1)
	assert.Equal(t, "18", condition.ConditionSets[0].Conditions[0].StaticValue)
	assert.Equal(t, float64(120), decoded.Nodes[1].Position.X)
}

func TestMarshal_RejectsUntaggedNodes(t *testing.T) {
	t.Parallel()

	seq := &models.Sequence{
		Name:  "Broken Flow",
		Nodes: []*models.Node{{ID: "node_1"}},
	}

	_, err := codec.Marshal(seq)
	assert.ErrorIs(t, err, codec.ErrMissingKind)

	seq.Nodes[0].Kind = "teleport"
	_, err = codec.Marshal(seq)
	require.Error(t, err)
}

func TestBumpVersion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		version  string
		expected string
	}{
		{version: "1.0", expected: "1.1"},
		{version: "1.1", expected: "1.2"},
		{version: "1.9", expected: "2"},
		{version: "2", expected: "2.1"},
		{version: "10.3", expected: "10.4"},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			t.Parallel()

			bumped, err := codec.BumpVersion(tt.version)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, bumped)
		})
	}

	_, err := codec.BumpVersion("one.zero")
	require.Error(t, err)
}

func TestPrepare(t *testing.T) {
	t.Parallel()

	t.Run("publish bumps version and activates", func(t *testing.T) {
		t.Parallel()

		seq := &models.Sequence{Version: "1.0", Status: models.SequenceStatusDraft}
		require.NoError(t, codec.Prepare(seq, codec.SavePublish))
		assert.Equal(t, "1.1", seq.Version)
		assert.Equal(t, models.SequenceStatusActive, seq.Status)
	})

	t.Run("draft save preserves version and status", func(t *testing.T) {
		t.Parallel()

		seq := &models.Sequence{Version: "1.3", Status: models.SequenceStatusDraft}
		require.NoError(t, codec.Prepare(seq, codec.SaveDraft))
		assert.Equal(t, "1.3", seq.Version)
		assert.Equal(t, models.SequenceStatusDraft, seq.Status)
	})

	t.Run("draft save defaults unset status", func(t *testing.T) {
		t.Parallel()

		seq := &models.Sequence{Version: "1.0"}
		require.NoError(t, codec.Prepare(seq, codec.SaveDraft))
		assert.Equal(t, models.SequenceStatusActive, seq.Status)
	})

	t.Run("unknown action fails", func(t *testing.T) {
		t.Parallel()

		assert.Error(t, codec.Prepare(&models.Sequence{Version: "1.0"}, "archive"))
	})
}

func TestIDAllocator(t *testing.T) {
	t.Parallel()

	allocator := codec.NewIDAllocator()
	assert.Equal(t, "node_1", allocator.Next())
	assert.Equal(t, "node_2", allocator.Next())
}

func TestSeedIDAllocator(t *testing.T) {
	t.Parallel()

	allocator := codec.SeedIDAllocator([]*models.Node{
		{ID: "node_2"},
		{ID: "node_7"},
		{ID: "imported-uuid"}, // foreign IDs do not advance the counter
		{ID: "node_x"},
	})

	assert.Equal(t, "node_8", allocator.Next())
}

func TestSeedIDAllocator_EmptySequence(t *testing.T) {
	t.Parallel()

	allocator := codec.SeedIDAllocator(nil)
	assert.Equal(t, "node_1", allocator.Next())
}
