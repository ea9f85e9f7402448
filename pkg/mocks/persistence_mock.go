// Package mocks provides testify mocks for the persistence and event bus
// interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sequor-io/sequor/pkg/models"
)

// MockPersistence is a mock implementation of persistence.Persistence.
type MockPersistence struct {
	mock.Mock
}

func (m *MockPersistence) Sequences(ctx context.Context) ([]*models.Sequence, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.Sequence), args.Error(1)
}

func (m *MockPersistence) SaveSequence(ctx context.Context, sequence *models.Sequence) error {
	args := m.Called(ctx, sequence)

	return args.Error(0)
}

func (m *MockPersistence) SequenceByID(ctx context.Context, id string) (*models.Sequence, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Sequence), args.Error(1)
}

func (m *MockPersistence) DeleteSequence(ctx context.Context, id string) error {
	args := m.Called(ctx, id)

	return args.Error(0)
}

func (m *MockPersistence) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

func (m *MockPersistence) Close(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}
