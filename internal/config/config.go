package config

import (
	"fmt"

	"github.com/skillsenselab/medscribe/internal/credentials"
	"github.com/skillsenselab/medscribe/internal/logger"
	"github.com/skillsenselab/medscribe/internal/server"
	"github.com/skillsenselab/medscribe/internal/validation"
)

// ServiceConfig identifies the running service.
type ServiceConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// DatabaseConfig holds note-store connection configuration.
type DatabaseConfig struct {
	// DSN is the sqlite connection string (file path or :memory:).
	DSN string `mapstructure:"dsn"`
	// MaxOpenConns sets the maximum number of open connections.
	MaxOpenConns int `mapstructure:"max_open_conns"`
	// MaxIdleConns sets the maximum number of idle connections.
	MaxIdleConns int `mapstructure:"max_idle_conns"`
	// AutoMigrate controls whether schema migration runs on startup.
	AutoMigrate bool `mapstructure:"auto_migrate"`
}

// ApplyDefaults sets sensible defaults for zero-valued fields.
func (c *DatabaseConfig) ApplyDefaults() {
	if c.DSN == "" {
		c.DSN = "medscribe.db"
	}
	if c.MaxOpenConns <= 0 {
		c.MaxOpenConns = 10
	}
	if c.MaxIdleConns <= 0 {
		c.MaxIdleConns = 2
	}
}

// TranscriptionConfig holds transcription pipeline configuration.
type TranscriptionConfig struct {
	// SpeechModel is the speech provider model (e.g. "whisper-1").
	SpeechModel string `mapstructure:"speech_model"`
	// FallbackModel is the generative model used as a transcription fallback.
	FallbackModel string `mapstructure:"fallback_model"`
	// Language is the expected audio language tag.
	Language string `mapstructure:"language"`
	// ProxyOrigin is the same-origin proxy base URL used on the web target.
	ProxyOrigin string `mapstructure:"proxy_origin" validate:"omitempty,url"`
}

// ApplyDefaults sets sensible defaults for zero-valued fields.
func (c *TranscriptionConfig) ApplyDefaults() {
	if c.SpeechModel == "" {
		c.SpeechModel = "whisper-1"
	}
	if c.FallbackModel == "" {
		c.FallbackModel = "gemini-1.5-flash"
	}
	if c.Language == "" {
		c.Language = "en"
	}
}

// NotesConfig holds note-compilation configuration.
type NotesConfig struct {
	// Model is the generative model used for note compilation.
	Model string `mapstructure:"model"`
}

// ApplyDefaults sets sensible defaults for zero-valued fields.
func (c *NotesConfig) ApplyDefaults() {
	if c.Model == "" {
		c.Model = "gemini-1.5-flash"
	}
}

// ObservabilityConfig holds OpenTelemetry exporter configuration.
type ObservabilityConfig struct {
	Enabled    bool    `mapstructure:"enabled"`
	Endpoint   string  `mapstructure:"endpoint"`
	Insecure   bool    `mapstructure:"insecure"`
	SampleRate float64 `mapstructure:"sample_rate"`
}

// ApplyDefaults sets sensible defaults for zero-valued fields.
func (c *ObservabilityConfig) ApplyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = "localhost:4318"
	}
	if c.SampleRate <= 0 {
		c.SampleRate = 1.0
	}
}

// AuthConfig holds note-route authentication configuration.
type AuthConfig struct {
	// JWTSecret signs and verifies bearer tokens for the note routes.
	JWTSecret string `mapstructure:"jwt_secret"`
}

// Config is the top-level application configuration.
type Config struct {
	Service       ServiceConfig       `mapstructure:"service"`
	Platform      string              `mapstructure:"platform" validate:"omitempty,oneof=native web"`
	Logging       logger.Config       `mapstructure:"logging"`
	Server        server.Config       `mapstructure:"server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Credentials   credentials.Config  `mapstructure:"credentials"`
	Transcription TranscriptionConfig `mapstructure:"transcription"`
	Notes         NotesConfig         `mapstructure:"notes"`
	Observability ObservabilityConfig `mapstructure:"observability"`
	Auth          AuthConfig          `mapstructure:"auth"`
}

// ApplyDefaults fills in zero-valued fields across all sections.
func (c *Config) ApplyDefaults() {
	if c.Service.Name == "" {
		c.Service.Name = "medscribe"
	}
	if c.Service.Version == "" {
		c.Service.Version = "dev"
	}
	if c.Service.Environment == "" {
		c.Service.Environment = "development"
	}
	if c.Platform == "" {
		c.Platform = "native"
	}
	c.Logging.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Database.ApplyDefaults()
	c.Credentials.ApplyDefaults()
	c.Transcription.ApplyDefaults()
	c.Notes.ApplyDefaults()
	c.Observability.ApplyDefaults()
}

// Validate checks the configuration across all sections.
func (c *Config) Validate() error {
	if err := c.Logging.Validate(); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if c.Platform == "web" && c.Transcription.ProxyOrigin == "" {
		return fmt.Errorf("transcription.proxy_origin is required on the web platform")
	}
	return validation.Validate(c)
}
