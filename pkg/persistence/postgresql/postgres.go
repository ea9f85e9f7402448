// Package postgresql provides PostgreSQL persistence for sequences.
package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	// PostgreSQL driver.
	_ "github.com/lib/pq"

	"github.com/sequor-io/sequor/pkg/models"
	"github.com/sequor-io/sequor/pkg/persistence/sqlbase"
)

// Persistence implements the persistence layer for PostgreSQL.
type Persistence struct {
	db           *sql.DB
	logger       *slog.Logger
	sequenceRepo *SequenceRepository
}

// NewPersistence creates a new PostgreSQL persistence layer.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	err = database.PingContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	migrationManager := sqlbase.NewMigrationManager(logger, database, migrations())
	sequenceRepo := NewSequenceRepository(database, logger)

	postgres := &Persistence{
		db:           database,
		logger:       logger,
		sequenceRepo: sequenceRepo,
	}

	// Run migrations on initialization
	err = migrationManager.RunMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return postgres, nil
}

// Close closes the database connection.
func (p *Persistence) Close(ctx context.Context) error {
	if p.db != nil {
		err := p.db.Close()
		if err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}

// HealthCheck verifies the database connection is healthy.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	err := p.db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

// Sequences returns all sequences from the database.
func (p *Persistence) Sequences(ctx context.Context) ([]*models.Sequence, error) {
	return p.sequenceRepo.GetAll(ctx)
}

// SequenceByID returns a sequence by its ID.
func (p *Persistence) SequenceByID(ctx context.Context, id string) (*models.Sequence, error) {
	return p.sequenceRepo.GetByID(ctx, id)
}

// SaveSequence saves a sequence to the database.
func (p *Persistence) SaveSequence(ctx context.Context, sequence *models.Sequence) error {
	return p.sequenceRepo.Save(ctx, sequence)
}

// DeleteSequence soft deletes a sequence by setting deleted_at timestamp.
func (p *Persistence) DeleteSequence(ctx context.Context, id string) error {
	return p.sequenceRepo.Delete(ctx, id)
}
