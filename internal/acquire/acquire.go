// Package acquire downloads a changed artifact and reconciles its on-disk
// name against the manifest version.
package acquire

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/apkwatch/internal/fetch"
	"github.com/jonathan/apkwatch/internal/manifest"
	"github.com/jonathan/apkwatch/internal/version"
)

// artifactExt is the extension appended to derived filenames.
const artifactExt = ".apk"

// Artifact describes a successfully acquired download: where it ended up and
// what its manifest says. Manifest fields are empty when the manifest read
// failed (acquisition still succeeds in that case).
type Artifact struct {
	Path                string
	Filename            string
	ManifestVersionName string
	ManifestVersionCode string
}

// Acquirer runs the download-then-extract-then-reconcile sequence into a
// managed download directory.
type Acquirer struct {
	DownloadDir string

	// Swappable for tests.
	fetchFile    func(ctx context.Context, url, destPath string, opts *fetch.Options) error
	readManifest func(path string) (*manifest.Version, error)
}

// New creates an Acquirer writing into downloadDir (created on demand).
func New(downloadDir string) *Acquirer {
	return &Acquirer{
		DownloadDir:  downloadDir,
		fetchFile:    fetch.ToFile,
		readManifest: manifest.ReadVersion,
	}
}

// Acquire downloads the artifact from apiURL and names it after
// scrapedVersion, then reads the manifest and relocates the file to a
// manifest-derived name when the two disagree.
//
// Failure policy: a download error cleans up the temp file (best effort) and
// fails the acquisition; a manifest read error degrades to empty manifest
// fields; a relocation error keeps the provisional name. Only the download
// step can fail the whole acquisition.
func (a *Acquirer) Acquire(ctx context.Context, apiURL, scrapedVersion string) (*Artifact, error) {
	if err := os.MkdirAll(a.DownloadDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating download directory %s: %w", a.DownloadDir, err)
	}

	// Millisecond timestamp plus a random suffix: unique even across
	// overlapping or immediately retried runs in one process.
	tempName := fmt.Sprintf("temp_apk_%d_%s%s", time.Now().UnixMilli(), uuid.NewString()[:8], artifactExt)
	tempPath := filepath.Join(a.DownloadDir, tempName)

	if err := a.fetchFile(ctx, apiURL, tempPath, nil); err != nil {
		if rmErr := os.Remove(tempPath); rmErr != nil && !os.IsNotExist(rmErr) {
			log.Printf("cleaning up temp file %s: %v", tempPath, rmErr)
		}
		return nil, fmt.Errorf("downloading artifact: %w", err)
	}

	provisional := version.SanitizeFilename(scrapedVersion) + artifactExt
	finalPath := filepath.Join(a.DownloadDir, provisional)
	if err := replace(tempPath, finalPath); err != nil {
		if rmErr := os.Remove(tempPath); rmErr != nil && !os.IsNotExist(rmErr) {
			log.Printf("cleaning up temp file %s: %v", tempPath, rmErr)
		}
		return nil, fmt.Errorf("renaming artifact to %s: %w", provisional, err)
	}

	art := &Artifact{Path: finalPath, Filename: provisional}

	mv, err := a.readManifest(finalPath)
	if err != nil {
		log.Printf("reading apk manifest: %v (continuing without manifest versions)", err)
		return art, nil
	}
	art.ManifestVersionName = mv.Name
	art.ManifestVersionCode = mv.Code

	// The manifest is authoritative for naming. When the page shows a longer
	// display string, relocate to the manifest-derived name.
	if mv.Name != "" && mv.Name != scrapedVersion {
		relocated := version.SanitizeFilename(mv.Name) + artifactExt
		if relocated == provisional {
			// Both names sanitize to the same filename; the file is
			// already where it belongs.
			return art, nil
		}
		target := filepath.Join(a.DownloadDir, relocated)
		if err := replace(finalPath, target); err != nil {
			log.Printf("relocating artifact to %s: %v (keeping %s)", relocated, err, provisional)
		} else {
			art.Path = target
			art.Filename = relocated
		}
	}

	return art, nil
}

// replace renames src to dst, removing any pre-existing file at dst first
// (last write wins).
func replace(src, dst string) error {
	if _, err := os.Stat(dst); err == nil {
		if err := os.Remove(dst); err != nil {
			return fmt.Errorf("removing existing %s: %w", dst, err)
		}
	}
	return os.Rename(src, dst)
}
