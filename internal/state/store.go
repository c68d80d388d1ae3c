package state

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Load when no record exists for the identifier.
var ErrNotFound = errors.New("state: version record not found")

// Store is the persistence contract for version records. Save performs an
// upsert keyed by SourceIdentifier and stamps UpdatedAt; at most one record
// exists per identifier. Implementations are safe for a single caller at a
// time, which is all the pipeline requires.
type Store interface {
	Load(ctx context.Context, sourceIdentifier string) (*VersionRecord, error)
	Save(ctx context.Context, rec *VersionRecord) (*VersionRecord, error)
	Close(ctx context.Context) error
}

// Backend names accepted by Open.
const (
	BackendFile     = "file"
	BackendMongo    = "mongo"
	BackendPostgres = "postgres"
)

// Options selects and configures a Store backend.
type Options struct {
	Backend     string
	FilePath    string // file backend
	MongoURI    string // mongo backend
	DatabaseURL string // postgres backend
}

// Open creates the configured Store. The caller owns the returned Store and
// must Close it on shutdown.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case BackendFile:
		if opts.FilePath == "" {
			return nil, fmt.Errorf("state: file backend requires a state file path")
		}
		return NewFileStore(opts.FilePath), nil
	case BackendMongo:
		if opts.MongoURI == "" {
			return nil, fmt.Errorf("state: mongo backend requires a connection URI")
		}
		return openMongo(ctx, opts.MongoURI)
	case BackendPostgres:
		if opts.DatabaseURL == "" {
			return nil, fmt.Errorf("state: postgres backend requires a database URL")
		}
		return openPostgres(ctx, opts.DatabaseURL)
	default:
		return nil, fmt.Errorf("state: unknown backend %q", opts.Backend)
	}
}
