// Package codec serializes sequences to their stable persisted form and
// back, manages node-ID allocation and applies save/publish version
// semantics.
package codec

import (
	"encoding/json"
	"fmt"

	"github.com/sequor-io/sequor/pkg/models"
)

// Marshal writes a sequence in the external persisted representation. Node
// configurations are typed and carry only declarative data, so everything
// reaching this point survives serialization; nodes without a kind tag are
// rejected rather than written.
func Marshal(seq *models.Sequence) ([]byte, error) {
	for _, node := range seq.Nodes {
		if node.Kind == "" {
			return nil, fmt.Errorf("node %q: %w", node.ID, ErrMissingKind)
		}

		if !node.Kind.Known() {
			return nil, fmt.Errorf("node %q has unknown kind %q", node.ID, node.Kind)
		}
	}

	return json.Marshal(seq)
}

// Unmarshal reads a persisted sequence. Runtime-only fields a foreign
// editor may have written into node configs (canvas callbacks, rendered
// labels) are dropped by the typed decode; only declarative data survives.
func Unmarshal(data []byte) (*models.Sequence, error) {
	var seq models.Sequence
	if err := json.Unmarshal(data, &seq); err != nil {
		return nil, fmt.Errorf("decoding sequence: %w", err)
	}

	return &seq, nil
}

// SaveAction distinguishes a plain draft save from publishing.
type SaveAction string

const (
	SaveDraft   SaveAction = "draft"
	SavePublish SaveAction = "publish"
)

// Prepare applies the save-time version and status transitions in place.
// Publishing increments the version by 0.1 and forces active status; a
// plain save preserves both, defaulting an unset status to active.
func Prepare(seq *models.Sequence, action SaveAction) error {
	switch action {
	case SavePublish:
		bumped, err := BumpVersion(seq.Version)
		if err != nil {
			return err
		}

		seq.Version = bumped
		seq.Status = models.SequenceStatusActive
	case SaveDraft:
		if seq.Status == "" {
			seq.Status = models.SequenceStatusActive
		}
	default:
		return fmt.Errorf("unknown save action %q", action)
	}

	return nil
}
