package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/apkwatch/internal/acquire"
	"github.com/jonathan/apkwatch/internal/config"
	"github.com/jonathan/apkwatch/internal/notify"
	"github.com/jonathan/apkwatch/internal/pipeline"
	"github.com/jonathan/apkwatch/internal/scrape"
	"github.com/jonathan/apkwatch/internal/state"
)

var checkCommand = &cobra.Command{
	Use:   "check",
	Short: "Run one update check end-to-end",
	Long: `Performs a single check pass: load prior state -> scrape the page version -> compare -> on change, download the APK, read its manifest, reconcile naming and persist -> notify.

Configuration is read from the environment (and an optional .env file); a JSON file passed via --config supplies fallback values. Command-line flags override both.`,
	RunE: runCheckCmd,
}

var (
	checkConfigPath     string
	checkKeepArtifact   bool
	checkScrapeMode     string
	checkNotifyFailures bool
	checkVerbose        bool
)

func init() {
	checkCommand.Flags().StringVar(&checkConfigPath, "config", "", "Path to config.json file (environment and flags take precedence)")
	checkCommand.Flags().BoolVar(&checkKeepArtifact, "keep-apk", false, "Keep the downloaded artifact instead of deleting it after notification")
	checkCommand.Flags().StringVar(&checkScrapeMode, "scrape-mode", "", "Scrape mode: browser (headless Chrome) or static (plain HTTP)")
	checkCommand.Flags().BoolVar(&checkNotifyFailures, "notify-failures", false, "Also send a notification when a run aborts on scrape or download failure")
	checkCommand.Flags().BoolVarP(&checkVerbose, "verbose", "v", false, "Print detailed debug information")

	rootCmd.AddCommand(checkCommand)
}

func runCheckCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg := config.FromEnv()

	if checkConfigPath != "" {
		fileCfg, err := config.Load(checkConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = cfg.MergeWithDefaults(*fileCfg)
	}

	if cmd.Flags().Changed("keep-apk") {
		cfg.KeepArtifact = checkKeepArtifact
	}
	if cmd.Flags().Changed("scrape-mode") {
		cfg.ScrapeMode = checkScrapeMode
	}
	if cmd.Flags().Changed("notify-failures") {
		cfg.NotifyFailures = checkNotifyFailures
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = checkVerbose
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}

	loc, err := time.LoadLocation(cfg.NotifyTimezone)
	if err != nil {
		return fmt.Errorf("config error: invalid notify_timezone %q: %w", cfg.NotifyTimezone, err)
	}

	store, err := state.Open(ctx, state.Options{
		Backend:     cfg.StateBackend,
		FilePath:    cfg.StateFile,
		MongoURI:    cfg.MongoURI,
		DatabaseURL: cfg.DatabaseURL,
	})
	if err != nil {
		return fmt.Errorf("opening state store: %w", err)
	}
	defer store.Close(ctx)

	outcome, err := pipeline.Run(ctx, pipeline.Options{
		Store:            store,
		Scraper:          scrape.New(cfg.ScrapeMode, time.Duration(cfg.ScrapeTimeoutSeconds)*time.Second),
		Acquirer:         acquire.New(cfg.DownloadDir),
		Notifier:         notify.NewDiscordWebhook(cfg.WebhookURL, cfg.MentionUserID),
		SourceIdentifier: cfg.SourceIdentifier,
		PageURL:          cfg.PageURL,
		VersionSelector:  cfg.VersionSelector,
		DownloadURL:      cfg.DownloadURL,
		KeepArtifact:     cfg.KeepArtifact,
		NotifyFailures:   cfg.NotifyFailures,
		Location:         loc,
		Verbose:          cfg.Verbose,
	})
	if err != nil {
		return err
	}

	if outcome.Kind == pipeline.OutcomeUpdated {
		fmt.Printf("Check complete: updated to %s (manifest %s).\n",
			outcome.Scraped, outcome.Record.ManifestVersionName)
	} else {
		fmt.Printf("Check complete: %s is still current.\n", outcome.Scraped)
	}
	return nil
}
