// Package cmd provides common initialization for the command-line
// applications.
package cmd

import (
	"context"
	"log/slog"
	"strings"

	"github.com/sequor-io/sequor/pkg/persistence"
	"github.com/sequor-io/sequor/pkg/persistence/file"
	"github.com/sequor-io/sequor/pkg/persistence/postgresql"
	"github.com/sequor-io/sequor/pkg/persistence/redis"
)

// NewPersistence creates the persistence backend selected by the database
// URL scheme. Anything without a recognized scheme is treated as a file
// path.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (persistence.Persistence, error) {
	switch parsePersistenceProvider(databaseURL) {
	case "postgresql":
		return postgresql.NewPersistence(ctx, logger, databaseURL)
	case "redis":
		return redis.NewPersistence(databaseURL)
	default:
		return file.NewFilePersistence(strings.TrimPrefix(databaseURL, "file://")), nil
	}
}

func parsePersistenceProvider(databaseURL string) string {
	scheme, _, found := strings.Cut(databaseURL, "://")
	if !found {
		return "file"
	}

	switch scheme {
	case "postgres", "postgresql":
		return "postgresql"
	case "redis", "rediss":
		return "redis"
	default:
		return "file"
	}
}
