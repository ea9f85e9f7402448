package web

import (
	"encoding/json"

	"github.com/sequor-io/sequor/pkg/models"
	"github.com/sequor-io/sequor/pkg/registry"
)

// NodePayload is one node as submitted by the editor: the configuration
// arrives raw and is validated against the kind's schema before decoding.
type NodePayload struct {
	ID       string          `json:"id"`
	Kind     models.NodeKind `json:"kind"     validate:"required"`
	Position models.Position `json:"position"`
	Config   json.RawMessage `json:"config,omitempty"`
}

// SequencePayload is the full sequence document accepted on create and
// update.
type SequencePayload struct {
	Name          string              `json:"name"           validate:"required,min=3"`
	Version       string              `json:"version"`
	Status        string              `json:"status"`
	TriggerEvents []string            `json:"trigger_events"`
	Variables     []*models.Variable  `json:"variables"`
	Nodes         []NodePayload       `json:"flow_nodes"`
	Edges         []*models.Edge      `json:"flow_edges"`
}

// ToModel decodes the payload into a sequence, validating every node
// configuration against its kind's registered schema.
func (p *SequencePayload) ToModel(reg *registry.Registry) (*models.Sequence, error) {
	nodes := make([]*models.Node, 0, len(p.Nodes))

	for _, payload := range p.Nodes {
		config, err := reg.DecodeConfig(payload.Kind, payload.Config)
		if err != nil {
			return nil, err
		}

		nodes = append(nodes, &models.Node{
			ID:       payload.ID,
			Kind:     payload.Kind,
			Position: payload.Position,
			Config:   config,
		})
	}

	return &models.Sequence{
		Name:          p.Name,
		Version:       p.Version,
		Status:        models.SequenceStatus(p.Status),
		TriggerEvents: p.TriggerEvents,
		Variables:     p.Variables,
		Nodes:         nodes,
		Edges:         p.Edges,
	}, nil
}
