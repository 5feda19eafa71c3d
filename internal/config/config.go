package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type CacheType string

const (
	CacheTypeMemory CacheType = "memory"
	CacheTypeRedis  CacheType = "redis"
)

type DatabaseDriver string

const (
	DatabaseDriverSQLite DatabaseDriver = "sqlite"
	DatabaseDriverMySQL  DatabaseDriver = "mysql"
)

// Config holds the configuration for the foxtip server and its dependencies.
type Config struct {
	// Listen is the address the foxtip server will listen on.
	Listen string `yaml:"listen" mapstructure:"listen"`
	// ServerURL is the public base URL of the foxtip server, used in emails.
	ServerURL string `yaml:"server_url" mapstructure:"server_url"`
	// Timezone is the civil timezone that defines "today" for tips and kickoff times.
	Timezone string `yaml:"timezone" mapstructure:"timezone"`
	// SessionKey is the key used to sign session cookies.
	SessionKey string `yaml:"session_key" mapstructure:"session_key"`
	// SessionMaxAge is the maximum age of a session in seconds.
	SessionMaxAge int `yaml:"session_max_age" mapstructure:"session_max_age"`
	// LicenseDuration is how long a license stays valid after an admin enables it.
	LicenseDuration time.Duration `yaml:"license_duration" mapstructure:"license_duration"`
	// Quotes are shown on the member dashboard, one per day.
	Quotes []string `yaml:"quotes" mapstructure:"quotes"`

	// Database holds the database configuration.
	Database *DatabaseConfig `yaml:"database" mapstructure:"database"`
	// Cache holds the cache configuration.
	Cache *CacheConfig `yaml:"cache" mapstructure:"cache"`
	// FootballData holds the configuration for the football-data.org API.
	FootballData *FootballDataConfig `yaml:"football_data" mapstructure:"football_data"`
	// OpenAI holds the configuration for the chat completion provider.
	OpenAI *OpenAIConfig `yaml:"openai" mapstructure:"openai"`
	// Assistant holds the persona used for tips and the admin chat.
	Assistant *AssistantConfig `yaml:"assistant" mapstructure:"assistant"`
	// Auth holds the authorization configuration.
	Auth *AuthConfig `yaml:"auth" mapstructure:"auth"`
	// Generator holds the configuration of the scheduled tip generation.
	Generator *GeneratorConfig `yaml:"generator" mapstructure:"generator"`
	// Email holds the email notification configuration.
	Email *EmailConfig `yaml:"email" mapstructure:"email"`
	// Ntfy holds the ntfy notification configuration.
	Ntfy *NtfyConfig `yaml:"ntfy" mapstructure:"ntfy"`
	// Metrics holds the prometheus configuration.
	Metrics *MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
	// Gravatar holds the avatar configuration.
	Gravatar *GravatarConfig `yaml:"gravatar" mapstructure:"gravatar"`
}

// DatabaseConfig holds the database configuration.
type DatabaseConfig struct {
	// Driver selects the gorm dialector. Options: "sqlite", "mysql".
	Driver DatabaseDriver `yaml:"driver" mapstructure:"driver"`
	// Path is the path to the sqlite database file.
	Path string `yaml:"path" mapstructure:"path"`
	// DSN is the connection string used by the mysql driver.
	DSN string `yaml:"dsn" mapstructure:"dsn"`
}

// CacheConfig holds the cache configuration.
type CacheConfig struct {
	// Type is the cache type. Options: "memory", "redis".
	Type CacheType `yaml:"type" mapstructure:"type"`
	// RedisURL is the address of the redis server.
	RedisURL string `yaml:"redis_url" mapstructure:"redis_url"`
	// FixturesTTL is how long fetched fixtures are reused.
	FixturesTTL time.Duration `yaml:"fixtures_ttl" mapstructure:"fixtures_ttl"`
}

// FootballDataConfig holds the configuration for the football-data.org API.
type FootballDataConfig struct {
	// URL is the base URL of the API.
	URL string `yaml:"url" mapstructure:"url"`
	// APIKey is the token sent with every request.
	APIKey string `yaml:"api_key" mapstructure:"api_key"`
	// MaxCandidates caps the number of scheduled matches put into the prompt.
	MaxCandidates int `yaml:"max_candidates" mapstructure:"max_candidates"`
}

// OpenAIConfig holds the configuration for an OpenAI compatible chat completion API.
type OpenAIConfig struct {
	// URL is the base URL of the API.
	URL string `yaml:"url" mapstructure:"url"`
	// APIKey is the bearer token.
	APIKey string `yaml:"api_key" mapstructure:"api_key"`
	// Model is the model name.
	Model string `yaml:"model" mapstructure:"model"`
	// Temperature is the sampling temperature.
	Temperature float64 `yaml:"temperature" mapstructure:"temperature"`
	// RequestsPerMinute throttles outgoing completion requests.
	RequestsPerMinute int `yaml:"requests_per_minute" mapstructure:"requests_per_minute"`
}

// AssistantConfig holds the persona of the AI assistant.
type AssistantConfig struct {
	// Name is the chat sender label of the assistant.
	Name string `yaml:"name" mapstructure:"name"`
	// TipPersona is the system instruction for tip generation. It fixes the JSON output contract.
	TipPersona string `yaml:"tip_persona" mapstructure:"tip_persona"`
	// ChatPersona is the system instruction for the admin chat. It fixes the reply language.
	ChatPersona string `yaml:"chat_persona" mapstructure:"chat_persona"`
	// ChatHistory is the number of previous chat messages sent as context.
	ChatHistory int `yaml:"chat_history" mapstructure:"chat_history"`
}

// AuthConfig holds the authorization configuration.
type AuthConfig struct {
	// OwnerEmail is always treated as admin, regardless of the stored role.
	OwnerEmail string `yaml:"owner_email" mapstructure:"owner_email"`
	// LoginRatePerMinute limits login and register attempts per client IP.
	LoginRatePerMinute int `yaml:"login_rate_per_minute" mapstructure:"login_rate_per_minute"`
}

// GeneratorConfig holds the configuration of the scheduled tip generation.
type GeneratorConfig struct {
	// Schedule is a cron expression for automatic generation. Empty disables it.
	Schedule string `yaml:"schedule" mapstructure:"schedule"`
}

// EmailConfig holds the email notification configuration.
type EmailConfig struct {
	// Enabled indicates whether email notifications are enabled.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// SMTPHost is the SMTP server host.
	SMTPHost string `yaml:"smtp_host" mapstructure:"smtp_host"`
	// SMTPPort is the SMTP server port.
	SMTPPort int `yaml:"smtp_port" mapstructure:"smtp_port"`
	// Username is the SMTP username.
	Username string `yaml:"username" mapstructure:"username"`
	// Password is the SMTP password.
	Password string `yaml:"password" mapstructure:"password"`
	// FromEmail is the email address from which notifications are sent.
	FromEmail string `yaml:"from_email" mapstructure:"from_email"`
	// FromName is the name from which notifications are sent.
	FromName string `yaml:"from_name" mapstructure:"from_name"`
	// UseTLS indicates whether to use STARTTLS for the SMTP connection.
	UseTLS bool `yaml:"use_tls" mapstructure:"use_tls"`
	// UseSSL indicates whether to use implicit TLS for the SMTP connection.
	UseSSL bool `yaml:"use_ssl" mapstructure:"use_ssl"`
	// InsecureSkipVerify indicates whether to skip TLS certificate verification.
	InsecureSkipVerify bool `yaml:"insecure_skip_verify" mapstructure:"insecure_skip_verify"`
}

// NtfyConfig holds the ntfy notification configuration.
type NtfyConfig struct {
	// Enabled indicates whether ntfy notifications are enabled.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// ServerURL is the URL of the ntfy server.
	ServerURL string `yaml:"server_url" mapstructure:"server_url"`
	// Topic is the ntfy topic to publish notifications to.
	Topic string `yaml:"topic" mapstructure:"topic"`
	// Token is the ntfy access token.
	Token string `yaml:"token" mapstructure:"token"`
}

// MetricsConfig holds the prometheus configuration.
type MetricsConfig struct {
	// Enabled exposes /metrics.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
}

// GravatarConfig holds the avatar configuration.
type GravatarConfig struct {
	// Enabled shows gravatar images next to member names.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// DefaultImage is the fallback image style (mp, identicon, retro, ...).
	DefaultImage string `yaml:"default_image" mapstructure:"default_image"`
	// Rating is the maximum image rating (g, pg, r, x).
	Rating string `yaml:"rating" mapstructure:"rating"`
	// Size is the image size in pixels (1-2048).
	Size int `yaml:"size" mapstructure:"size"`
}

// Load reads the configuration from the specified path and returns a Config struct.
// If path is empty, it will use default search paths for config files.
func Load(path string) (*Config, error) {
	// a .env file is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn("failed to load .env file", "error", err)
	}

	v := viper.New()

	bindNestedEnv(v)
	setDefaults(v)

	v.SetConfigType("yaml")
	v.SetEnvPrefix("FOXTIP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var configFileFound bool
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.foxtip")
		v.AddConfigPath("/etc/foxtip")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		configFileFound = true
	}

	if configFileFound {
		log.Debug("Using config file", "file", v.ConfigFileUsed())
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	sanitizeConfig(&c)

	if err := validateConfig(&c); err != nil {
		return nil, err
	}

	return &c, nil
}

const defaultTipPersona = `Te Róka vagy, egy tapasztalt futball-elemző. A megadott meccslistából válaszd ki a nap legjobb fogadási tippjét.
Kizárólag egyetlen JSON objektummal válaszolj, pontosan ezekkel a mezőkkel:
{"league": string, "match": string, "prediction": string, "odds": string, "reasoning": string, "memberMessage": string, "matchTime": string}`

const defaultChatPersona = `Te Róka vagy, a foxtip elemző asszisztense. Mindig magyarul válaszolj, röviden és szakmailag.`

// setDefaults sets default values for the configuration.
func setDefaults(v *viper.Viper) {
	v.SetDefault("listen", "0.0.0.0:3000")
	v.SetDefault("server_url", "http://localhost:3000")
	v.SetDefault("timezone", "Europe/Budapest")
	v.SetDefault("session_key", "")
	v.SetDefault("session_max_age", 604800) // 7 days
	v.SetDefault("license_duration", 30*24*time.Hour)
	v.SetDefault("quotes", []string{
		"A türelem a bankroll legjobb barátja.",
		"Nem minden nap kell fogadni.",
		"A fegyelem többet ér, mint a szerencse.",
	})

	v.SetDefault("database.driver", DatabaseDriverSQLite)
	v.SetDefault("database.path", "./data/foxtip.db")
	v.SetDefault("database.dsn", "")

	v.SetDefault("cache.type", CacheTypeMemory)
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.fixtures_ttl", 10*time.Minute)

	v.SetDefault("football_data.url", "https://api.football-data.org")
	v.SetDefault("football_data.max_candidates", 45)

	v.SetDefault("openai.url", "https://api.openai.com")
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("openai.temperature", 0.7)
	v.SetDefault("openai.requests_per_minute", 30)

	v.SetDefault("assistant.name", "Róka")
	v.SetDefault("assistant.tip_persona", defaultTipPersona)
	v.SetDefault("assistant.chat_persona", defaultChatPersona)
	v.SetDefault("assistant.chat_history", 10)

	v.SetDefault("auth.owner_email", "")
	v.SetDefault("auth.login_rate_per_minute", 10)

	v.SetDefault("generator.schedule", "")

	v.SetDefault("email.enabled", false)
	v.SetDefault("email.smtp_host", "")
	v.SetDefault("email.smtp_port", 587)
	v.SetDefault("email.username", "")
	v.SetDefault("email.password", "")
	v.SetDefault("email.from_name", "foxtip")
	v.SetDefault("email.use_tls", true)
	v.SetDefault("email.use_ssl", false)
	v.SetDefault("email.insecure_skip_verify", false)

	v.SetDefault("ntfy.enabled", false)
	v.SetDefault("ntfy.server_url", "https://ntfy.sh")
	v.SetDefault("ntfy.topic", "foxtip")
	v.SetDefault("ntfy.token", "")

	v.SetDefault("metrics.enabled", false)

	v.SetDefault("gravatar.enabled", false)
	v.SetDefault("gravatar.default_image", "identicon")
	v.SetDefault("gravatar.rating", "g")
	v.SetDefault("gravatar.size", 64)
}

// secrets have no default, so AutomaticEnv would never see them in nested structs.
func bindNestedEnv(v *viper.Viper) {
	v.MustBindEnv("football_data.api_key", "FOXTIP_FOOTBALL_DATA_API_KEY")
	v.MustBindEnv("openai.api_key", "FOXTIP_OPENAI_API_KEY")
}

// validateConfig validates the configuration.
func validateConfig(c *Config) error {
	if c == nil {
		return fmt.Errorf("missing foxtip config")
	}

	if c.SessionKey == "" {
		return fmt.Errorf("session key is required")
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}

	if c.Database == nil {
		return fmt.Errorf("missing database config")
	}
	switch c.Database.Driver {
	case DatabaseDriverSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("database path is required for the sqlite driver")
		}
	case DatabaseDriverMySQL:
		if c.Database.DSN == "" {
			return fmt.Errorf("database dsn is required for the mysql driver")
		}
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}

	if c.Cache != nil {
		if c.Cache.Type == "" {
			return fmt.Errorf("cache type is required when cache is enabled")
		}
		if c.Cache.Type == CacheTypeRedis && c.Cache.RedisURL == "" {
			return fmt.Errorf("Redis URL is required when Redis cache is enabled") //nolint:staticcheck
		}
	} else {
		c.Cache = &CacheConfig{
			Type: CacheTypeMemory,
		}
	}

	if c.FootballData == nil || c.FootballData.URL == "" {
		return fmt.Errorf("football_data URL is required")
	}
	if c.FootballData.APIKey == "" {
		return fmt.Errorf("football_data API key is required")
	}
	if c.FootballData.MaxCandidates <= 0 {
		return fmt.Errorf("football_data max_candidates must be greater than 0")
	}

	if c.OpenAI == nil || c.OpenAI.URL == "" {
		return fmt.Errorf("openai URL is required")
	}
	if c.OpenAI.APIKey == "" {
		return fmt.Errorf("openai API key is required")
	}
	if c.OpenAI.Model == "" {
		return fmt.Errorf("openai model is required")
	}

	if c.Assistant == nil || c.Assistant.Name == "" {
		return fmt.Errorf("assistant name is required")
	}
	if c.Assistant.TipPersona == "" || c.Assistant.ChatPersona == "" {
		return fmt.Errorf("assistant personas are required")
	}

	if c.Auth == nil {
		c.Auth = &AuthConfig{}
	}

	if c.Generator != nil && c.Generator.Schedule != "" {
		if len(strings.Fields(c.Generator.Schedule)) != 5 {
			return fmt.Errorf("generator schedule must be a valid cron expression with 5 fields (minute hour day month weekday)")
		}
	}

	if c.Email != nil && c.Email.Enabled {
		if c.Email.SMTPHost == "" {
			return fmt.Errorf("SMTP host is required when email is enabled")
		}
		if c.Email.FromEmail == "" {
			return fmt.Errorf("from email is required when email is enabled")
		}
	}

	if c.Ntfy != nil && c.Ntfy.Enabled && c.Ntfy.ServerURL == "" {
		return fmt.Errorf("ntfy server URL is required when ntfy is enabled")
	}

	if c.Gravatar != nil && c.Gravatar.Enabled {
		if c.Gravatar.DefaultImage != "" && !validGravatarDefaults[c.Gravatar.DefaultImage] {
			return fmt.Errorf("invalid gravatar default image %q", c.Gravatar.DefaultImage)
		}
		if c.Gravatar.Rating != "" && !validGravatarRatings[c.Gravatar.Rating] {
			return fmt.Errorf("invalid gravatar rating %q", c.Gravatar.Rating)
		}
		if c.Gravatar.Size != 0 && (c.Gravatar.Size < 1 || c.Gravatar.Size > 2048) {
			return fmt.Errorf("gravatar size must be between 1 and 2048")
		}
	}

	return nil
}

var validGravatarDefaults = map[string]bool{
	"404": true, "mp": true, "identicon": true, "monsterid": true,
	"wavatar": true, "retro": true, "robohash": true, "blank": true,
}

var validGravatarRatings = map[string]bool{"g": true, "pg": true, "r": true, "x": true}

// sanitizeConfig sanitizes the configuration values.
func sanitizeConfig(c *Config) {
	if c == nil {
		return
	}

	c.Listen = urlSanitize(c.Listen)

	if c.ServerURL != "" {
		c.ServerURL = urlSanitize(c.ServerURL)
	}

	if c.FootballData != nil {
		c.FootballData.URL = urlSanitize(c.FootballData.URL)
	}

	if c.OpenAI != nil {
		c.OpenAI.URL = urlSanitize(c.OpenAI.URL)
	}

	if c.Ntfy != nil {
		c.Ntfy.ServerURL = urlSanitize(c.Ntfy.ServerURL)
	}

	if c.Auth != nil {
		c.Auth.OwnerEmail = strings.ToLower(strings.TrimSpace(c.Auth.OwnerEmail))
	}
}

func urlSanitize(url string) string {
	return strings.TrimSuffix(strings.TrimSpace(url), "/")
}

// Location returns the configured timezone. It falls back to UTC for an invalid value,
// which validateConfig rejects on load.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// GetChatHistory returns the chat context size with proper defaults.
func (c *Config) GetChatHistory() int {
	if c == nil || c.Assistant == nil || c.Assistant.ChatHistory <= 0 {
		return 10
	}
	return c.Assistant.ChatHistory
}

// GetLicenseDuration returns the license duration with proper defaults.
func (c *Config) GetLicenseDuration() time.Duration {
	if c == nil || c.LicenseDuration <= 0 {
		return 30 * 24 * time.Hour
	}
	return c.LicenseDuration
}
