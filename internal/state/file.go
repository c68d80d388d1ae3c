package state

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jonathan/apkwatch/internal/schemas"
)

// FileStore keeps the version record as a single JSON document on disk.
// The document is validated against a schema on load and written atomically
// (temp file + rename) so a crash mid-save never leaves a half-written record.
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed store at path. The parent directory is
// created on first Save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the record from disk. A missing file, or a file belonging to a
// different source identifier, yields ErrNotFound.
func (s *FileStore) Load(_ context.Context, sourceIdentifier string) (*VersionRecord, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading state file %s: %w", s.path, err)
	}

	if err := schemas.ValidateJSONString(versionRecordSchema, string(data)); err != nil {
		return nil, fmt.Errorf("state file %s is not a valid version record: %w", s.path, err)
	}

	var rec VersionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parsing state file %s: %w", s.path, err)
	}

	if rec.SourceIdentifier != sourceIdentifier {
		return nil, ErrNotFound
	}
	return &rec, nil
}

// Save upserts the record, stamping UpdatedAt.
func (s *FileStore) Save(_ context.Context, rec *VersionRecord) (*VersionRecord, error) {
	saved := *rec
	saved.UpdatedAt = time.Now()

	data, err := json.MarshalIndent(&saved, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding version record: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".version_record-*.json")
	if err != nil {
		return nil, fmt.Errorf("creating temp state file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return nil, fmt.Errorf("writing temp state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("closing temp state file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("replacing state file %s: %w", s.path, err)
	}
	return &saved, nil
}

// Close is a no-op for the file backend.
func (s *FileStore) Close(_ context.Context) error {
	return nil
}
