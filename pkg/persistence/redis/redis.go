// Package redis provides Redis-backed sequence persistence. Sequences are
// stored as JSON documents with a set index for listing.
package redis

import (
	"context"
	"errors"
	"fmt"

	backend "github.com/redis/go-redis/v9"

	"github.com/sequor-io/sequor/pkg/codec"
	"github.com/sequor-io/sequor/pkg/models"
	"github.com/sequor-io/sequor/pkg/persistence"
)

const defaultPrefix = "sequor:sequence:"

// Persistence implements the persistence layer on top of Redis.
type Persistence struct {
	client *backend.Client
	prefix string
}

type Option func(*Persistence)

// WithPrefix sets the key prefix for sequence documents.
func WithPrefix(prefix string) Option {
	return func(p *Persistence) {
		p.prefix = prefix
	}
}

// NewPersistence creates a Redis persistence layer from a connection URL.
func NewPersistence(redisURL string, opts ...Option) (*Persistence, error) {
	options, err := backend.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	p := &Persistence{
		client: backend.NewClient(options),
		prefix: defaultPrefix,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

// NewFromClient creates a Redis persistence layer from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Persistence {
	p := &Persistence{
		client: client,
		prefix: defaultPrefix,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

func (p *Persistence) key(id string) string {
	return p.prefix + id
}

func (p *Persistence) indexKey() string {
	return p.prefix + "index"
}

// Sequences returns all sequences known to the index.
func (p *Persistence) Sequences(ctx context.Context) ([]*models.Sequence, error) {
	ids, err := p.client.SMembers(ctx, p.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read sequence index: %w", err)
	}

	sequences := make([]*models.Sequence, 0, len(ids))

	for _, id := range ids {
		sequence, err := p.SequenceByID(ctx, id)
		if err != nil {
			// Index entries can outlive their documents when a key is
			// deleted out of band. Skip, do not fail the listing.
			if persistence.IsSequenceNotFound(err) {
				continue
			}

			return nil, err
		}

		sequences = append(sequences, sequence)
	}

	return sequences, nil
}

// SequenceByID returns a sequence by its ID.
func (p *Persistence) SequenceByID(ctx context.Context, id string) (*models.Sequence, error) {
	val, err := p.client.Get(ctx, p.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, persistence.NewSequenceError("SequenceByID", id, persistence.ErrSequenceNotFound)
		}

		return nil, fmt.Errorf("failed to read sequence: %w", err)
	}

	sequence, err := codec.Unmarshal(val)
	if err != nil {
		return nil, persistence.NewSequenceError("SequenceByID", id, err)
	}

	return sequence, nil
}

// SaveSequence stores the sequence document and registers it in the index.
func (p *Persistence) SaveSequence(ctx context.Context, sequence *models.Sequence) error {
	data, err := codec.Marshal(sequence)
	if err != nil {
		return persistence.NewSequenceError("SaveSequence", sequence.ID, err)
	}

	pipe := p.client.Pipeline()
	pipe.Set(ctx, p.key(sequence.ID), data, 0)
	pipe.SAdd(ctx, p.indexKey(), sequence.ID)

	_, err = pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to save sequence: %w", err)
	}

	return nil
}

// DeleteSequence removes the sequence document and its index entry.
func (p *Persistence) DeleteSequence(ctx context.Context, id string) error {
	deleted, err := p.client.Del(ctx, p.key(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete sequence: %w", err)
	}

	if err := p.client.SRem(ctx, p.indexKey(), id).Err(); err != nil {
		return fmt.Errorf("failed to remove sequence from index: %w", err)
	}

	if deleted == 0 {
		return persistence.NewSequenceError("DeleteSequence", id, persistence.ErrSequenceNotFound)
	}

	return nil
}

// HealthCheck verifies the Redis connection is healthy.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

// Close closes the Redis client.
func (p *Persistence) Close(ctx context.Context) error {
	return p.client.Close()
}
