// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig               `mapstructure:"app"`
	Camunda  CamundaConfig           `mapstructure:"camunda"`
	Database DatabaseConfig          `mapstructure:"database"`
	Workers  map[string]WorkerConfig `mapstructure:"workers"`
	APIs     APIsConfig              `mapstructure:"apis"`
	Logging  LoggingConfig           `mapstructure:"logging"`
	Server   ServerConfig            `mapstructure:"server"`
	NLU      NLUConfig               `mapstructure:"nlu"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	// RegistryPath points at the activity registry; empty skips the check.
	RegistryPath string `mapstructure:"registry_path"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// Enabled reports whether a corpus database is configured.
func (p PostgresConfig) Enabled() bool { return p.Host != "" }

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Enabled reports whether a snapshot cache is configured.
func (r RedisConfig) Enabled() bool { return r.Address != "" }

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

// APIsConfig holds settings for external API integrations.
type APIsConfig struct {
	GenAI struct {
		BaseURL string `mapstructure:"base_url"`
		APIKey  string `mapstructure:"api_key"`
		Timeout int    `mapstructure:"timeout"` // milliseconds
	} `mapstructure:"genai"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// ServerConfig holds the HTTP API, health and metrics listener.
type ServerConfig struct {
	Port            int `mapstructure:"port" validate:"gte=1,lte=65535"`
	ReadTimeout     int `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int `mapstructure:"write_timeout"`    // milliseconds
	ShutdownTimeout int `mapstructure:"shutdown_timeout"` // milliseconds
}

// NLUConfig tunes training, routing and model persistence.
type NLUConfig struct {
	Epochs              int     `mapstructure:"epochs" validate:"gte=1,lte=10000"`
	LearningRate        float64 `mapstructure:"learning_rate" validate:"gt=0,lte=10"`
	EarlyStopTolerance  float64 `mapstructure:"early_stop_tolerance" validate:"gte=0"`
	ConfidenceThreshold float64 `mapstructure:"confidence_threshold" validate:"gte=0,lte=1"`
	TypoRate            float64 `mapstructure:"typo_rate" validate:"gte=0,lte=1"`
	Seed                int64   `mapstructure:"seed"`
	TestFraction        float64 `mapstructure:"test_fraction" validate:"gt=0,lt=1"`
	BatchConcurrency    int     `mapstructure:"batch_concurrency" validate:"gte=1,lte=256"`
	SnapshotKey         string  `mapstructure:"snapshot_key" validate:"required"`
	LoadSnapshot        bool    `mapstructure:"load_snapshot"`
	CorpusTable         string  `mapstructure:"corpus_table" validate:"omitempty,max=63"`
}

// DefaultNLU returns the settings used when nothing is configured.
func DefaultNLU() NLUConfig {
	return NLUConfig{
		Epochs:              100,
		LearningRate:        0.01,
		EarlyStopTolerance:  0,
		ConfidenceThreshold: 0.4,
		TypoRate:            0.3,
		Seed:                42,
		TestFraction:        0.2,
		BatchConcurrency:    8,
		SnapshotKey:         "nlu:model:v1",
		LoadSnapshot:        true,
		CorpusTable:         "nlu_training_examples",
	}
}
