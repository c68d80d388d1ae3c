// Package report maps pipeline outcomes to notification messages. Pure and
// deterministic: same inputs, same message.
package report

import (
	"fmt"
	"time"

	"github.com/jonathan/apkwatch/internal/notify"
	"github.com/jonathan/apkwatch/internal/state"
)

// timestampLayout renders localized day-first timestamps, e.g. "30/08/2026 14:05:09".
const timestampLayout = "02/01/2006 15:04:05"

// none is the placeholder for values never observed.
const none = "none"

func orNone(s string) string {
	if s == "" {
		return none
	}
	return s
}

// Unchanged builds the "still current" message: the previous record's values
// and its last-checked timestamp localized to loc.
func Unchanged(prev *state.VersionRecord, scraped string, loc *time.Location) notify.Message {
	if loc == nil {
		loc = time.Local
	}

	lastChecked := none
	prevScraped := ""
	prevManifest := ""
	if prev != nil {
		lastChecked = prev.UpdatedAt.In(loc).Format(timestampLayout)
		prevScraped = prev.ScrapedVersion
		prevManifest = prev.ManifestVersionName
	}

	return notify.Message{
		Title: "APK Update Check",
		Body:  fmt.Sprintf("No new APK version detected. Current version: %s.", scraped),
		Color: notify.ColorGreen,
		Fields: []notify.Field{
			{Name: "Last checked", Value: lastChecked, Inline: true},
			{Name: "Scraped version", Value: orNone(prevScraped), Inline: true},
			{Name: "Manifest version", Value: orNone(prevManifest), Inline: true},
		},
	}
}

// Updated builds the "update available" message from the freshly persisted
// record.
func Updated(rec *state.VersionRecord) notify.Message {
	return notify.Message{
		Title: "APK Update Check",
		Body:  fmt.Sprintf("New APK version available: %s", orNone(rec.Filename)),
		Color: notify.ColorGreen,
		Fields: []notify.Field{
			{Name: "Scraped version", Value: orNone(rec.ScrapedVersion), Inline: true},
			{Name: "Manifest version", Value: orNone(rec.ManifestVersionName), Inline: true},
			{Name: "Manifest version code", Value: orNone(rec.ManifestVersionCode), Inline: true},
			{Name: "Downloaded file", Value: orNone(rec.Filename), Inline: true},
		},
	}
}

// Failure builds the optional failure message for aborted runs.
func Failure(stage string, err error) notify.Message {
	detail := none
	if err != nil {
		detail = err.Error()
	}
	return notify.Message{
		Title: "APK Update Check",
		Body:  fmt.Sprintf("Check aborted during %s.", stage),
		Color: notify.ColorRed,
		Fields: []notify.Field{
			{Name: "Stage", Value: stage, Inline: true},
			{Name: "Error", Value: detail, Inline: false},
		},
	}
}
