package report

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/apkwatch/internal/notify"
	"github.com/jonathan/apkwatch/internal/state"
)

func TestUnchanged(t *testing.T) {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	prev := &state.VersionRecord{
		SourceIdentifier:    "apk_check",
		ScrapedVersion:      "1.0.6",
		ManifestVersionName: "1.0.6",
		UpdatedAt:           time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
	}

	msg := Unchanged(prev, "1.0.6 (build 106)", loc)

	assert.Equal(t, "APK Update Check", msg.Title)
	assert.Contains(t, msg.Body, "No new APK version detected")
	assert.Contains(t, msg.Body, "1.0.6 (build 106)")

	require.Len(t, msg.Fields, 3)
	// Sao Paulo is UTC-3: 12:00 UTC renders as 09:00, day-first.
	assert.Equal(t, notify.Field{Name: "Last checked", Value: "30/08/2026 09:00:00", Inline: true}, msg.Fields[0])
	assert.Equal(t, notify.Field{Name: "Scraped version", Value: "1.0.6", Inline: true}, msg.Fields[1])
	assert.Equal(t, notify.Field{Name: "Manifest version", Value: "1.0.6", Inline: true}, msg.Fields[2])
}

func TestUnchanged_NilPrevious(t *testing.T) {
	msg := Unchanged(nil, "1.0.6", time.UTC)

	require.Len(t, msg.Fields, 3)
	assert.Equal(t, "none", msg.Fields[0].Value)
	assert.Equal(t, "none", msg.Fields[1].Value)
	assert.Equal(t, "none", msg.Fields[2].Value)
}

func TestUnchanged_NilLocation(t *testing.T) {
	prev := &state.VersionRecord{UpdatedAt: time.Now()}
	msg := Unchanged(prev, "1.0.6", nil)
	assert.NotEqual(t, "none", msg.Fields[0].Value)
}

func TestUpdated(t *testing.T) {
	rec := &state.VersionRecord{
		SourceIdentifier:    "apk_check",
		ScrapedVersion:      "1.0.6",
		ManifestVersionName: "1.0.6",
		ManifestVersionCode: "106",
		Filename:            "1.0.6.apk",
	}

	msg := Updated(rec)

	assert.Contains(t, msg.Body, "New APK version available: 1.0.6.apk")
	require.Len(t, msg.Fields, 4)
	assert.Equal(t, "1.0.6", msg.Fields[0].Value)
	assert.Equal(t, "1.0.6", msg.Fields[1].Value)
	assert.Equal(t, "106", msg.Fields[2].Value)
	assert.Equal(t, "1.0.6.apk", msg.Fields[3].Value)
}

func TestUpdated_ManifestUnavailable(t *testing.T) {
	rec := &state.VersionRecord{
		ScrapedVersion: "1.0.7",
		Filename:       "1.0.7.apk",
	}

	msg := Updated(rec)
	assert.Equal(t, "none", msg.Fields[1].Value)
	assert.Equal(t, "none", msg.Fields[2].Value)
}

func TestUpdated_Deterministic(t *testing.T) {
	rec := &state.VersionRecord{ScrapedVersion: "1.0.6", Filename: "1.0.6.apk"}
	assert.Equal(t, Updated(rec), Updated(rec))
}

func TestFailure(t *testing.T) {
	msg := Failure("download", errors.New("unexpected status 502"))

	assert.Equal(t, notify.ColorRed, msg.Color)
	assert.Contains(t, msg.Body, "download")
	require.Len(t, msg.Fields, 2)
	assert.Equal(t, "download", msg.Fields[0].Value)
	assert.Equal(t, "unexpected status 502", msg.Fields[1].Value)
}
