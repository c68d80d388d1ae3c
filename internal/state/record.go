// Package state persists the version record for a tracked artifact.
// It defines the Store contract and three interchangeable backends
// (flat file, MongoDB, PostgreSQL) selected via configuration.
package state

import "time"

// VersionRecord is the single persisted entity: the last fully processed
// outcome for one tracked artifact. Empty string fields mean "unknown"
// (the value was never observed, or the manifest read failed on the run
// that produced this record).
type VersionRecord struct {
	SourceIdentifier    string    `json:"source_identifier" bson:"source_identifier"`
	ScrapedVersion      string    `json:"scraped_version,omitempty" bson:"scraped_version,omitempty"`
	ManifestVersionName string    `json:"manifest_version_name,omitempty" bson:"manifest_version_name,omitempty"`
	ManifestVersionCode string    `json:"manifest_version_code,omitempty" bson:"manifest_version_code,omitempty"`
	Filename            string    `json:"filename,omitempty" bson:"filename,omitempty"`
	DownloadedAt        time.Time `json:"downloaded_at" bson:"downloaded_at"`
	UpdatedAt           time.Time `json:"updated_at" bson:"updated_at"`
}
