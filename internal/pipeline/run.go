// Package pipeline ties the watcher together: load prior state, scrape,
// compare, acquire on change, persist, notify, clean up. One linear pass per
// invocation; a crash mid-run leaves the prior record intact for the next run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/jonathan/apkwatch/internal/acquire"
	"github.com/jonathan/apkwatch/internal/notify"
	"github.com/jonathan/apkwatch/internal/report"
	"github.com/jonathan/apkwatch/internal/state"
	"github.com/jonathan/apkwatch/internal/version"
)

// Scraper fetches the displayed version text for a page/selector pair.
type Scraper interface {
	VersionText(ctx context.Context, pageURL, selector string) (string, error)
}

// Acquirer downloads and reconciles a changed artifact.
type Acquirer interface {
	Acquire(ctx context.Context, apiURL, scrapedVersion string) (*acquire.Artifact, error)
}

// OutcomeKind labels how a completed run ended.
type OutcomeKind int

const (
	OutcomeUnchanged OutcomeKind = iota
	OutcomeUpdated
)

// Outcome summarizes a completed (non-aborted) run.
type Outcome struct {
	Kind     OutcomeKind
	Scraped  string
	Previous *state.VersionRecord // record loaded at entry, nil on cold start
	Record   *state.VersionRecord // record persisted this run, nil when unchanged
}

// Options holds the collaborators and settings for one run.
type Options struct {
	Store    state.Store
	Scraper  Scraper
	Acquirer Acquirer
	Notifier notify.Notifier

	SourceIdentifier string
	PageURL          string
	VersionSelector  string
	DownloadURL      string

	KeepArtifact   bool
	NotifyFailures bool
	Location       *time.Location
	Verbose        bool
}

// Overlapping invocations for the same identifier would race on the download
// directory and the record; serialize them in-process.
var (
	sourceMu    sync.Mutex
	sourceLocks = map[string]*sync.Mutex{}
)

func lockSource(id string) func() {
	sourceMu.Lock()
	mu, ok := sourceLocks[id]
	if !ok {
		mu = &sync.Mutex{}
		sourceLocks[id] = mu
	}
	sourceMu.Unlock()

	mu.Lock()
	return mu.Unlock
}

// Run performs one full check. It returns a nil error with an Outcome on the
// unchanged and updated paths, and an error when the run aborts (scrape or
// download failure). Aborted runs send no notification unless NotifyFailures
// is set, and never mutate state.
func Run(ctx context.Context, opts Options) (*Outcome, error) {
	unlock := lockSource(opts.SourceIdentifier)
	defer unlock()

	fmt.Printf("Step 1/4: Loading last version record for %s...\n", opts.SourceIdentifier)
	prev, err := opts.Store.Load(ctx, opts.SourceIdentifier)
	if err != nil {
		if errors.Is(err, state.ErrNotFound) {
			log.Printf("no prior version record for %s, treating as first run", opts.SourceIdentifier)
		} else {
			// Load trouble is a cold start, not a fatal condition.
			log.Printf("loading version record: %v (continuing without prior state)", err)
		}
		prev = nil
	}

	fmt.Printf("Step 2/4: Scraping current version from %s...\n", opts.PageURL)
	scraped, err := opts.Scraper.VersionText(ctx, opts.PageURL, opts.VersionSelector)
	scraped = strings.TrimSpace(scraped)
	if err != nil || scraped == "" {
		if err == nil {
			err = fmt.Errorf("scraper returned empty version text for %s", opts.PageURL)
		}
		notifyFailure(ctx, opts, "scrape", err)
		return nil, fmt.Errorf("scraping version: %w", err)
	}
	if opts.Verbose {
		log.Printf("scraped version text: %q", scraped)
	}

	if version.Compare(prev, scraped) == version.Unchanged {
		fmt.Printf("Version %s is still current, nothing to do.\n", scraped)
		send(ctx, opts, report.Unchanged(prev, scraped, opts.Location))
		return &Outcome{Kind: OutcomeUnchanged, Scraped: scraped, Previous: prev}, nil
	}

	fmt.Printf("Step 3/4: New version detected (%s), downloading artifact...\n", scraped)
	art, err := opts.Acquirer.Acquire(ctx, opts.DownloadURL, scraped)
	if err != nil {
		notifyFailure(ctx, opts, "download", err)
		return nil, fmt.Errorf("acquiring artifact: %w", err)
	}

	fmt.Printf("Step 4/4: Persisting new version record and notifying...\n")
	rec := &state.VersionRecord{
		SourceIdentifier:    opts.SourceIdentifier,
		ScrapedVersion:      scraped,
		ManifestVersionName: art.ManifestVersionName,
		ManifestVersionCode: art.ManifestVersionCode,
		Filename:            art.Filename,
		DownloadedAt:        time.Now(),
	}
	saved, err := opts.Store.Save(ctx, rec)
	if err != nil {
		// Accepted inconsistency: the notification below may report a version
		// that failed to persist, so the next run re-detects it as changed.
		log.Printf("saving version record: %v (continuing to notification)", err)
		saved = rec
	}

	send(ctx, opts, report.Updated(saved))

	if opts.KeepArtifact {
		log.Printf("keeping downloaded artifact at %s", art.Path)
	} else if err := os.Remove(art.Path); err != nil {
		log.Printf("removing downloaded artifact %s: %v", art.Path, err)
	}

	return &Outcome{Kind: OutcomeUpdated, Scraped: scraped, Previous: prev, Record: saved}, nil
}

func send(ctx context.Context, opts Options, msg notify.Message) {
	if err := opts.Notifier.Send(ctx, msg); err != nil {
		log.Printf("sending notification: %v", err)
	}
}

func notifyFailure(ctx context.Context, opts Options, stage string, cause error) {
	if !opts.NotifyFailures {
		return
	}
	send(ctx, opts, report.Failure(stage, cause))
}
