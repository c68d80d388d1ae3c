// Package config provides configuration loading and validation for the CLI.
// Precedence: defaults < JSON config file < environment < CLI flags.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-playground/validator/v10"
)

// Defaults applied by ApplyDefaults.
const (
	DefaultSourceIdentifier = "apk_check"
	DefaultStateFile        = "state/version_record.json"
	DefaultDownloadDir      = "downloads"
	DefaultScrapeMode       = "browser"
	DefaultScrapeTimeout    = 15
	DefaultNotifyTimezone   = "America/Sao_Paulo"
)

// Config is the full configuration surface. Required fields are fatal at
// startup when absent; everything else has a default or is optional.
type Config struct {
	// Required endpoints
	WebhookURL      string `json:"webhook_url,omitempty" validate:"required,url"`
	PageURL         string `json:"page_url,omitempty" validate:"required,url"`
	DownloadURL     string `json:"download_url,omitempty" validate:"required,url"`
	VersionSelector string `json:"version_selector,omitempty" validate:"required"`

	// Persistence
	StateBackend string `json:"state_backend,omitempty" validate:"required,oneof=file mongo postgres"`
	MongoURI     string `json:"mongo_uri,omitempty"`    // required when state_backend=mongo
	DatabaseURL  string `json:"database_url,omitempty"` // required when state_backend=postgres
	StateFile    string `json:"state_file,omitempty"`   // file backend path

	// Behavior
	SourceIdentifier     string `json:"source_identifier,omitempty"`
	DownloadDir          string `json:"download_dir,omitempty"`
	KeepArtifact         bool   `json:"keep_artifact,omitempty"`
	ScrapeMode           string `json:"scrape_mode,omitempty" validate:"omitempty,oneof=browser static"`
	ScrapeTimeoutSeconds int    `json:"scrape_timeout_seconds,omitempty" validate:"omitempty,min=1"`
	NotifyTimezone       string `json:"notify_timezone,omitempty"`
	MentionUserID        string `json:"mention_user_id,omitempty"`
	NotifyFailures       bool   `json:"notify_failures,omitempty"`
	Verbose              bool   `json:"verbose,omitempty"`
}

// Load loads configuration from a JSON file.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv builds a Config from environment variables. Unset variables leave
// zero values for the file/default layers to fill.
func FromEnv() Config {
	return Config{
		WebhookURL:           os.Getenv("WEBHOOK_URL"),
		PageURL:              os.Getenv("VERSION_PAGE_URL"),
		DownloadURL:          os.Getenv("APK_DOWNLOAD_URL"),
		VersionSelector:      os.Getenv("VERSION_SELECTOR"),
		StateBackend:         os.Getenv("STATE_BACKEND"),
		MongoURI:             os.Getenv("MONGODB_URI"),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		StateFile:            os.Getenv("STATE_FILE"),
		SourceIdentifier:     os.Getenv("SOURCE_IDENTIFIER"),
		DownloadDir:          os.Getenv("DOWNLOAD_DIR"),
		KeepArtifact:         envBool("KEEP_APK"),
		ScrapeMode:           os.Getenv("SCRAPE_MODE"),
		ScrapeTimeoutSeconds: envInt("SCRAPE_TIMEOUT_SECONDS"),
		NotifyTimezone:       os.Getenv("NOTIFY_TIMEZONE"),
		MentionUserID:        os.Getenv("DISCORD_MENTION_ID"),
		NotifyFailures:       envBool("NOTIFY_FAILURES"),
	}
}

func envBool(key string) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && v
}

func envInt(key string) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return 0
	}
	return v
}

// MergeWithDefaults returns a new Config with empty fields filled from
// defaults. Used to layer env values over a config file.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.WebhookURL == "" {
		result.WebhookURL = defaults.WebhookURL
	}
	if result.PageURL == "" {
		result.PageURL = defaults.PageURL
	}
	if result.DownloadURL == "" {
		result.DownloadURL = defaults.DownloadURL
	}
	if result.VersionSelector == "" {
		result.VersionSelector = defaults.VersionSelector
	}
	if result.StateBackend == "" {
		result.StateBackend = defaults.StateBackend
	}
	if result.MongoURI == "" {
		result.MongoURI = defaults.MongoURI
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.StateFile == "" {
		result.StateFile = defaults.StateFile
	}
	if result.SourceIdentifier == "" {
		result.SourceIdentifier = defaults.SourceIdentifier
	}
	if result.DownloadDir == "" {
		result.DownloadDir = defaults.DownloadDir
	}
	if result.ScrapeMode == "" {
		result.ScrapeMode = defaults.ScrapeMode
	}
	if result.ScrapeTimeoutSeconds == 0 {
		result.ScrapeTimeoutSeconds = defaults.ScrapeTimeoutSeconds
	}
	if result.NotifyTimezone == "" {
		result.NotifyTimezone = defaults.NotifyTimezone
	}
	if result.MentionUserID == "" {
		result.MentionUserID = defaults.MentionUserID
	}

	// Bool fields: cannot distinguish unset from false, so true wins.
	result.KeepArtifact = result.KeepArtifact || defaults.KeepArtifact
	result.NotifyFailures = result.NotifyFailures || defaults.NotifyFailures
	result.Verbose = result.Verbose || defaults.Verbose

	return result
}

// ApplyDefaults fills remaining blanks with the package defaults.
func (c *Config) ApplyDefaults() {
	if c.SourceIdentifier == "" {
		c.SourceIdentifier = DefaultSourceIdentifier
	}
	if c.StateFile == "" {
		c.StateFile = DefaultStateFile
	}
	if c.DownloadDir == "" {
		c.DownloadDir = DefaultDownloadDir
	}
	if c.ScrapeMode == "" {
		c.ScrapeMode = DefaultScrapeMode
	}
	if c.ScrapeTimeoutSeconds == 0 {
		c.ScrapeTimeoutSeconds = DefaultScrapeTimeout
	}
	if c.NotifyTimezone == "" {
		c.NotifyTimezone = DefaultNotifyTimezone
	}
}

// Validate checks that the configuration is complete and consistent. Any
// error here is fatal at startup, before pipeline logic runs.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			e := verrs[0]
			return fmt.Errorf("config error: field %s failed %q validation", e.Field(), e.Tag())
		}
		return fmt.Errorf("config error: %w", err)
	}

	switch c.StateBackend {
	case "mongo":
		if c.MongoURI == "" {
			return fmt.Errorf("config error: 'mongo_uri' (MONGODB_URI) is required when state_backend is mongo")
		}
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("config error: 'database_url' (DATABASE_URL) is required when state_backend is postgres")
		}
	}

	return nil
}
