package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalConfig = `
session_key: secret
football_data:
  api_key: fd-key
openai:
  api_key: oa-key
auth:
  owner_email: "  Owner@Example.com "
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:3000", cfg.Listen)
	assert.Equal(t, "Europe/Budapest", cfg.Timezone)
	assert.Equal(t, DatabaseDriverSQLite, cfg.Database.Driver)
	assert.Equal(t, CacheTypeMemory, cfg.Cache.Type)
	assert.Equal(t, 10*time.Minute, cfg.Cache.FixturesTTL)
	assert.Equal(t, 45, cfg.FootballData.MaxCandidates)
	assert.Equal(t, "Róka", cfg.Assistant.Name)
	assert.NotEmpty(t, cfg.Assistant.TipPersona)
	assert.NotEmpty(t, cfg.Quotes)
	assert.Equal(t, 10, cfg.GetChatHistory())
	assert.Equal(t, 30*24*time.Hour, cfg.GetLicenseDuration())
	assert.Equal(t, "owner@example.com", cfg.Auth.OwnerEmail)
}

func TestLoad_EnvOverridesSecrets(t *testing.T) {
	t.Setenv("FOXTIP_OPENAI_API_KEY", "from-env")
	cfg, err := Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.OpenAI.APIKey)
}

func TestLoad_SanitizesURLs(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig+`
server_url: "https://tips.example.com/ "
`))
	require.NoError(t, err)
	assert.Equal(t, "https://tips.example.com", cfg.ServerURL)
	assert.Equal(t, "https://api.football-data.org", cfg.FootballData.URL)
}

func TestValidateConfig(t *testing.T) {
	valid := func() *Config {
		return &Config{
			SessionKey:   "secret",
			Timezone:     "Europe/Budapest",
			Database:     &DatabaseConfig{Driver: DatabaseDriverSQLite, Path: "foxtip.db"},
			FootballData: &FootballDataConfig{URL: "http://fd", APIKey: "k", MaxCandidates: 45},
			OpenAI:       &OpenAIConfig{URL: "http://oa", APIKey: "k", Model: "m"},
			Assistant:    &AssistantConfig{Name: "Róka", TipPersona: "tip", ChatPersona: "chat"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "missing session key", mutate: func(c *Config) { c.SessionKey = "" }, wantErr: "session key is required"},
		{name: "invalid timezone", mutate: func(c *Config) { c.Timezone = "Mars/Olympus" }, wantErr: "invalid timezone"},
		{name: "mysql without dsn", mutate: func(c *Config) { c.Database.Driver = DatabaseDriverMySQL }, wantErr: "dsn is required"},
		{name: "unknown driver", mutate: func(c *Config) { c.Database.Driver = "mongo" }, wantErr: "unknown database driver"},
		{name: "redis without url", mutate: func(c *Config) { c.Cache = &CacheConfig{Type: CacheTypeRedis} }, wantErr: "Redis URL is required"},
		{name: "missing football key", mutate: func(c *Config) { c.FootballData.APIKey = "" }, wantErr: "football_data API key is required"},
		{name: "missing openai key", mutate: func(c *Config) { c.OpenAI.APIKey = "" }, wantErr: "openai API key is required"},
		{name: "bad schedule", mutate: func(c *Config) { c.Generator = &GeneratorConfig{Schedule: "every day"} }, wantErr: "cron expression"},
		{name: "email without host", mutate: func(c *Config) { c.Email = &EmailConfig{Enabled: true} }, wantErr: "SMTP host is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := validateConfig(c)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				assert.NotNil(t, c.Cache)
				assert.NotNil(t, c.Auth)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
