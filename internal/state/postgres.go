package state

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// postgresStore implements Store on PostgreSQL via a pgx connection pool.
type postgresStore struct {
	pool *pgxpool.Pool
}

func openPostgres(ctx context.Context, databaseURL string) (*postgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("state: failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("state: failed to ping database: %w", err)
	}

	_, err = pool.Exec(ctx,
		`CREATE TABLE IF NOT EXISTS version_records (
			source_identifier     TEXT PRIMARY KEY,
			scraped_version       TEXT NOT NULL DEFAULT '',
			manifest_version_name TEXT NOT NULL DEFAULT '',
			manifest_version_code TEXT NOT NULL DEFAULT '',
			filename              TEXT NOT NULL DEFAULT '',
			downloaded_at         TIMESTAMPTZ NOT NULL,
			updated_at            TIMESTAMPTZ NOT NULL
		)`)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("state: creating version_records table: %w", err)
	}

	return &postgresStore{pool: pool}, nil
}

func (s *postgresStore) Load(ctx context.Context, sourceIdentifier string) (*VersionRecord, error) {
	var rec VersionRecord
	err := s.pool.QueryRow(ctx,
		`SELECT source_identifier, scraped_version, manifest_version_name,
		        manifest_version_code, filename, downloaded_at, updated_at
		   FROM version_records
		  WHERE source_identifier = $1`,
		sourceIdentifier,
	).Scan(&rec.SourceIdentifier, &rec.ScrapedVersion, &rec.ManifestVersionName,
		&rec.ManifestVersionCode, &rec.Filename, &rec.DownloadedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("state: loading version record: %w", err)
	}
	return &rec, nil
}

func (s *postgresStore) Save(ctx context.Context, rec *VersionRecord) (*VersionRecord, error) {
	saved := *rec
	saved.UpdatedAt = time.Now()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO version_records
		        (source_identifier, scraped_version, manifest_version_name,
		         manifest_version_code, filename, downloaded_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (source_identifier) DO UPDATE
		    SET scraped_version = $2, manifest_version_name = $3,
		        manifest_version_code = $4, filename = $5,
		        downloaded_at = $6, updated_at = $7`,
		saved.SourceIdentifier, saved.ScrapedVersion, saved.ManifestVersionName,
		saved.ManifestVersionCode, saved.Filename, saved.DownloadedAt, saved.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("state: saving version record: %w", err)
	}
	return &saved, nil
}

func (s *postgresStore) Close(_ context.Context) error {
	s.pool.Close()
	return nil
}
