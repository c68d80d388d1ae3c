// Package version holds the pure decision logic for update detection: the
// unchanged/changed comparison and the filename derivation rules.
package version

import (
	"strings"

	"github.com/jonathan/apkwatch/internal/state"
)

// Result is the outcome of comparing a scraped version against the prior record.
type Result int

const (
	Unchanged Result = iota
	Changed
)

func (r Result) String() string {
	if r == Unchanged {
		return "unchanged"
	}
	return "changed"
}

// Compare decides whether the freshly scraped version string represents a new
// version relative to the previous record.
//
// The scraped string is unchanged when it contains the previous record's
// manifest version name as a substring (textual equality is a special case).
// The substring rule exists because the page sometimes embeds the manifest
// version as one token of a longer display string, e.g. "1.0.6 (build 106)".
// Only the manifest value is consulted for the unchanged test: once obtained
// it is ground truth, while the scraped value merely triggers rechecks.
//
// With no previous record, or a previous record whose manifest version name
// is blank (a run whose manifest read failed), the result is always Changed.
func Compare(prev *state.VersionRecord, scraped string) Result {
	if prev == nil {
		return Changed
	}
	known := strings.TrimSpace(prev.ManifestVersionName)
	if known == "" {
		return Changed
	}
	if strings.Contains(scraped, known) {
		return Unchanged
	}
	return Changed
}

// SanitizeFilename maps a version string to a filesystem-safe base name:
// every character outside [A-Za-z0-9.-] becomes an underscore.
func SanitizeFilename(v string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-':
			return r
		default:
			return '_'
		}
	}, v)
}
