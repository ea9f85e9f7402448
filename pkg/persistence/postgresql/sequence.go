package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/sequor-io/sequor/pkg/models"
	"github.com/sequor-io/sequor/pkg/persistence"
)

// SequenceRepository handles sequence-related database operations.
type SequenceRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSequenceRepository creates a new sequence repository.
func NewSequenceRepository(db *sql.DB, logger *slog.Logger) *SequenceRepository {
	return &SequenceRepository{db: db, logger: logger}
}

// GetAll returns all sequences from the database.
func (r *SequenceRepository) GetAll(ctx context.Context) ([]*models.Sequence, error) {
	query := `
		SELECT
			id
		  , name
		  , version
		  , status
		  , trigger_events
		  , variables
		FROM sequences
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query sequences: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	sequences := make([]*models.Sequence, 0)

	for rows.Next() {
		sequence, err := r.scanSequenceBase(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sequence: %w", err)
		}

		err = r.loadGraph(ctx, sequence)
		if err != nil {
			return nil, fmt.Errorf("failed to load sequence graph: %w", err)
		}

		sequences = append(sequences, sequence)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating sequences: %w", err)
	}

	return sequences, nil
}

// GetByID returns a sequence by its ID.
func (r *SequenceRepository) GetByID(ctx context.Context, id string) (*models.Sequence, error) {
	query := `
		SELECT
			id
		  , name
		  , version
		  , status
		  , trigger_events
		  , variables
		FROM sequences
		WHERE id = $1 AND deleted_at IS NULL
	`

	row := r.db.QueryRowContext(ctx, query, id)

	sequence, err := r.scanSequenceBase(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewSequenceError("GetByID", id, persistence.ErrSequenceNotFound)
		}

		return nil, fmt.Errorf("failed to scan sequence: %w", err)
	}

	if err := r.loadGraph(ctx, sequence); err != nil {
		return nil, fmt.Errorf("failed to load sequence graph: %w", err)
	}

	return sequence, nil
}

// Save upserts a sequence and replaces its node and edge rows.
func (r *SequenceRepository) Save(ctx context.Context, sequence *models.Sequence) error {
	if sequence.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate sequence ID: %w", err)
		}

		sequence.ID = id.String()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	triggerEventsJSON, err := json.Marshal(sequence.TriggerEvents)
	if err != nil {
		return fmt.Errorf("failed to marshal trigger events: %w", err)
	}

	variablesJSON, err := json.Marshal(sequence.Variables)
	if err != nil {
		return fmt.Errorf("failed to marshal variables: %w", err)
	}

	sequenceQuery := `
		INSERT INTO sequences (id, name, version, status, trigger_events, variables, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			version = EXCLUDED.version,
			status = EXCLUDED.status,
			trigger_events = EXCLUDED.trigger_events,
			variables = EXCLUDED.variables,
			updated_at = EXCLUDED.updated_at
	`

	_, err = tx.ExecContext(ctx, sequenceQuery,
		sequence.ID,
		sequence.Name,
		sequence.Version,
		sequence.Status,
		triggerEventsJSON,
		variablesJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to save sequence base: %w", err)
	}

	// Replace graph rows wholesale (for updates)
	_, err = tx.ExecContext(ctx, "DELETE FROM sequence_edges WHERE sequence_id = $1", sequence.ID)
	if err != nil {
		return fmt.Errorf("failed to delete existing edges: %w", err)
	}

	_, err = tx.ExecContext(ctx, "DELETE FROM sequence_nodes WHERE sequence_id = $1", sequence.ID)
	if err != nil {
		return fmt.Errorf("failed to delete existing nodes: %w", err)
	}

	if err = r.saveNodes(ctx, tx, sequence); err != nil {
		return fmt.Errorf("failed to save sequence nodes: %w", err)
	}

	if err = r.saveEdges(ctx, tx, sequence); err != nil {
		return fmt.Errorf("failed to save sequence edges: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Delete soft deletes a sequence by setting deleted_at timestamp.
func (r *SequenceRepository) Delete(ctx context.Context, id string) error {
	query := `UPDATE sequences SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete sequence: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return persistence.NewSequenceError("Delete", id, persistence.ErrSequenceNotFound)
	}

	return nil
}

func (r *SequenceRepository) loadGraph(ctx context.Context, sequence *models.Sequence) error {
	nodesQuery := `
		SELECT id, kind, config, position_x, position_y
		FROM sequence_nodes
		WHERE sequence_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, nodesQuery, sequence.ID)
	if err != nil {
		return fmt.Errorf("failed to query sequence nodes: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	var nodes []*models.Node

	for rows.Next() {
		var (
			node       models.Node
			configJSON []byte
		)

		err := rows.Scan(
			&node.ID,
			&node.Kind,
			&configJSON,
			&node.Position.X,
			&node.Position.Y,
		)
		if err != nil {
			return fmt.Errorf("failed to scan node: %w", err)
		}

		config, err := models.NewConfigForKind(node.Kind)
		if err != nil {
			return fmt.Errorf("node %q: %w", node.ID, err)
		}

		if configJSON != nil {
			err := json.Unmarshal(configJSON, config)
			if err != nil {
				return fmt.Errorf("failed to unmarshal node configuration: %w", err)
			}
		}

		node.Config = config
		nodes = append(nodes, &node)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating nodes: %w", err)
	}

	sequence.Nodes = nodes

	edgesQuery := `
		SELECT id, source_node_id, source_port, target_node_id
		FROM sequence_edges
		WHERE sequence_id = $1
		ORDER BY created_at
	`

	rows, err = r.db.QueryContext(ctx, edgesQuery, sequence.ID)
	if err != nil {
		return fmt.Errorf("failed to query sequence edges: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	var edges []*models.Edge

	for rows.Next() {
		var edge models.Edge

		err := rows.Scan(
			&edge.ID,
			&edge.Source,
			&edge.SourcePort,
			&edge.Target,
		)
		if err != nil {
			return fmt.Errorf("failed to scan edge: %w", err)
		}

		edges = append(edges, &edge)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating edges: %w", err)
	}

	sequence.Edges = edges

	return nil
}

// saveNodes saves nodes for a sequence.
func (r *SequenceRepository) saveNodes(ctx context.Context, tx *sql.Tx, sequence *models.Sequence) error {
	for _, node := range sequence.Nodes {
		configJSON, err := json.Marshal(node.Config)
		if err != nil {
			return fmt.Errorf("failed to marshal node configuration: %w", err)
		}

		query := `
			INSERT INTO sequence_nodes (id, sequence_id, kind, config, position_x, position_y)
			VALUES ($1, $2, $3, $4, $5, $6)
		`

		_, err = tx.ExecContext(ctx, query,
			node.ID,
			sequence.ID,
			node.Kind,
			configJSON,
			node.Position.X,
			node.Position.Y,
		)
		if err != nil {
			return fmt.Errorf("failed to save node: %w", err)
		}
	}

	return nil
}

// saveEdges saves edges for a sequence.
func (r *SequenceRepository) saveEdges(ctx context.Context, tx *sql.Tx, sequence *models.Sequence) error {
	for _, edge := range sequence.Edges {
		port := edge.SourcePort
		if port == "" {
			port = models.PortDefault
		}

		query := `
			INSERT INTO sequence_edges (id, sequence_id, source_node_id, source_port, target_node_id)
			VALUES ($1, $2, $3, $4, $5)
		`

		_, err := tx.ExecContext(ctx, query,
			edge.ID,
			sequence.ID,
			edge.Source,
			port,
			edge.Target,
		)
		if err != nil {
			return fmt.Errorf("failed to save edge: %w", err)
		}
	}

	return nil
}

func (r *SequenceRepository) scanSequenceBase(scanner interface {
	Scan(dest ...any) error
}) (*models.Sequence, error) {
	var (
		sequence                         models.Sequence
		triggerEventsJSON, variablesJSON []byte
	)

	err := scanner.Scan(
		&sequence.ID,
		&sequence.Name,
		&sequence.Version,
		&sequence.Status,
		&triggerEventsJSON,
		&variablesJSON,
	)
	if err != nil {
		return nil, err
	}

	if triggerEventsJSON != nil {
		err := json.Unmarshal(triggerEventsJSON, &sequence.TriggerEvents)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal trigger events: %w", err)
		}
	}

	if variablesJSON != nil {
		err := json.Unmarshal(variablesJSON, &sequence.Variables)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal variables: %w", err)
		}
	}

	return &sequence, nil
}
