// Package persistence provides the data storage abstraction for sequences.
package persistence

import (
	"context"

	"github.com/sequor-io/sequor/pkg/models"
)

type Persistence interface {
	Sequences(ctx context.Context) ([]*models.Sequence, error)
	SaveSequence(ctx context.Context, sequence *models.Sequence) error
	SequenceByID(ctx context.Context, id string) (*models.Sequence, error)
	DeleteSequence(ctx context.Context, id string) error
	HealthCheck(ctx context.Context) error

	Close(ctx context.Context) error
}
