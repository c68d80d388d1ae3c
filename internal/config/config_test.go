package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		WebhookURL:      "https://discord.com/api/webhooks/1/abc",
		PageURL:         "https://example.com/download",
		DownloadURL:     "https://example.com/api/apk",
		VersionSelector: "span.version",
		StateBackend:    "file",
	}
}

func TestValidate_OK(t *testing.T) {
	cfg := validConfig()
	cfg.ApplyDefaults()
	require.NoError(t, cfg.Validate())
}

func TestValidate_MissingRequired(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"webhook", func(c *Config) { c.WebhookURL = "" }},
		{"page url", func(c *Config) { c.PageURL = "" }},
		{"download url", func(c *Config) { c.DownloadURL = "" }},
		{"selector", func(c *Config) { c.VersionSelector = "" }},
		{"backend", func(c *Config) { c.StateBackend = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidate_BadURL(t *testing.T) {
	cfg := validConfig()
	cfg.WebhookURL = "not a url"
	assert.Error(t, cfg.Validate())
}

func TestValidate_UnknownBackend(t *testing.T) {
	cfg := validConfig()
	cfg.StateBackend = "cassandra"
	assert.Error(t, cfg.Validate())
}

func TestValidate_BackendConnectionStrings(t *testing.T) {
	cfg := validConfig()
	cfg.StateBackend = "mongo"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mongo_uri")

	cfg.MongoURI = "mongodb://localhost:27017"
	assert.NoError(t, cfg.Validate())

	cfg = validConfig()
	cfg.StateBackend = "postgres"
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database_url")

	cfg.DatabaseURL = "postgres://localhost:5432/apkwatch"
	assert.NoError(t, cfg.Validate())
}

func TestValidate_ScrapeMode(t *testing.T) {
	cfg := validConfig()
	cfg.ScrapeMode = "telepathy"
	assert.Error(t, cfg.Validate())

	cfg.ScrapeMode = "static"
	assert.NoError(t, cfg.Validate())
}

func TestLoad_ValidJSON(t *testing.T) {
	content := `{
		"webhook_url": "https://discord.com/api/webhooks/1/abc",
		"page_url": "https://example.com/download",
		"state_backend": "mongo",
		"scrape_timeout_seconds": 30,
		"keep_artifact": true
	}`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(tmpFile, []byte(content), 0o644))

	cfg, err := Load(tmpFile)
	require.NoError(t, err)
	assert.Equal(t, "https://discord.com/api/webhooks/1/abc", cfg.WebhookURL)
	assert.Equal(t, "mongo", cfg.StateBackend)
	assert.Equal(t, 30, cfg.ScrapeTimeoutSeconds)
	assert.True(t, cfg.KeepArtifact)
}

func TestLoad_InvalidJSON(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(tmpFile, []byte(`{ invalid json }`), 0o644))

	cfg, err := Load(tmpFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoad_FileNotFound(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_EmptyPath(t *testing.T) {
	cfg, err := Load("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestFromEnv(t *testing.T) {
	t.Setenv("WEBHOOK_URL", "https://discord.com/api/webhooks/1/abc")
	t.Setenv("VERSION_PAGE_URL", "https://example.com/download")
	t.Setenv("APK_DOWNLOAD_URL", "https://example.com/api/apk")
	t.Setenv("VERSION_SELECTOR", "span.version")
	t.Setenv("STATE_BACKEND", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/apkwatch")
	t.Setenv("KEEP_APK", "true")
	t.Setenv("SCRAPE_TIMEOUT_SECONDS", "45")

	cfg := FromEnv()
	assert.Equal(t, "https://example.com/download", cfg.PageURL)
	assert.Equal(t, "postgres", cfg.StateBackend)
	assert.True(t, cfg.KeepArtifact)
	assert.Equal(t, 45, cfg.ScrapeTimeoutSeconds)

	cfg.ApplyDefaults()
	assert.NoError(t, cfg.Validate())
}

func TestMergeWithDefaults(t *testing.T) {
	env := Config{WebhookURL: "https://env.example.com/hook"}
	file := Config{
		WebhookURL:   "https://file.example.com/hook",
		PageURL:      "https://file.example.com/page",
		KeepArtifact: true,
	}

	merged := env.MergeWithDefaults(file)
	assert.Equal(t, "https://env.example.com/hook", merged.WebhookURL, "env wins over file")
	assert.Equal(t, "https://file.example.com/page", merged.PageURL, "file fills blanks")
	assert.True(t, merged.KeepArtifact)
}

func TestApplyDefaults(t *testing.T) {
	cfg := validConfig()
	cfg.ApplyDefaults()

	assert.Equal(t, DefaultSourceIdentifier, cfg.SourceIdentifier)
	assert.Equal(t, DefaultStateFile, cfg.StateFile)
	assert.Equal(t, DefaultDownloadDir, cfg.DownloadDir)
	assert.Equal(t, DefaultScrapeMode, cfg.ScrapeMode)
	assert.Equal(t, DefaultScrapeTimeout, cfg.ScrapeTimeoutSeconds)
	assert.Equal(t, DefaultNotifyTimezone, cfg.NotifyTimezone)
}
