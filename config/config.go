package config

import (
	"fmt"
	"time"

	"github.com/Gobusters/ectoenv"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/Ramsey-B/clover/pkg/database"
	"github.com/Ramsey-B/clover/pkg/graph"
	"github.com/Ramsey-B/clover/pkg/matching"
	"github.com/Ramsey-B/clover/pkg/redis"
	"github.com/Ramsey-B/clover/pkg/search"
	"github.com/Ramsey-B/clover/pkg/server"
	"github.com/Ramsey-B/clover/pkg/tracing"
	"github.com/Ramsey-B/clover/pkg/validate"
)

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Search   SearchConfig   `mapstructure:"search"`
	Graph    GraphConfig    `mapstructure:"graph"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Matching MatchingConfig `mapstructure:"matching"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
}

type AppConfig struct {
	Name               string `mapstructure:"name" env:"APP_NAME" validate:"required"`
	LogLevel           string `mapstructure:"log_level" env:"APP_LOG_LEVEL" validate:"oneof=debug info warn error"`
	PrettyLogs         bool   `mapstructure:"pretty_logs" env:"APP_PRETTY_LOGS"`
	StartupMaxAttempts int    `mapstructure:"startup_max_attempts" env:"APP_STARTUP_MAX_ATTEMPTS" validate:"gte=1"`
}

type HTTPConfig struct {
	Port              int           `mapstructure:"port" env:"HTTP_PORT" validate:"gte=1,lte=65535"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout" env:"HTTP_READ_TIMEOUT"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout" env:"HTTP_WRITE_TIMEOUT"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout" env:"HTTP_IDLE_TIMEOUT"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" env:"HTTP_READ_HEADER_TIMEOUT"`
	MaxHeaderBytes    int           `mapstructure:"max_header_bytes" env:"HTTP_MAX_HEADER_BYTES" validate:"gte=0"`
	AllowOrigins      []string      `mapstructure:"allow_origins" env:"HTTP_ALLOW_ORIGINS"`
}

type DatabaseConfig struct {
	Host             string        `mapstructure:"host" env:"DATABASE_HOST" validate:"required"`
	Port             int           `mapstructure:"port" env:"DATABASE_PORT" validate:"gte=1,lte=65535"`
	User             string        `mapstructure:"user" env:"DATABASE_USER"`
	Password         string        `mapstructure:"password" env:"DATABASE_PASSWORD"`
	Name             string        `mapstructure:"name" env:"DATABASE_NAME" validate:"required"`
	SSLMode          string        `mapstructure:"sslmode" env:"DATABASE_SSLMODE"`
	MaxOpenConns     int           `mapstructure:"max_open_conns" env:"DATABASE_MAX_OPEN_CONNS" validate:"gte=0"`
	MaxIdleConns     int           `mapstructure:"max_idle_conns" env:"DATABASE_MAX_IDLE_CONNS" validate:"gte=0"`
	ConnMaxLifetime  time.Duration `mapstructure:"conn_max_lifetime" env:"DATABASE_CONN_MAX_LIFETIME"`
	MigrationFolder  string        `mapstructure:"migration_folder" env:"DATABASE_MIGRATION_FOLDER" validate:"required"`
	MigrationVersion int           `mapstructure:"migration_version" env:"DATABASE_MIGRATION_VERSION" validate:"gte=0"`
	MigrationForce   int           `mapstructure:"migration_force" env:"DATABASE_MIGRATION_FORCE"`
}

type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled" env:"REDIS_ENABLED"`
	Host     string        `mapstructure:"host" env:"REDIS_HOST" validate:"required_if=Enabled true"`
	Port     int           `mapstructure:"port" env:"REDIS_PORT"`
	Password string        `mapstructure:"password" env:"REDIS_PASSWORD"`
	DB       int           `mapstructure:"db" env:"REDIS_DB" validate:"gte=0"`
	CacheTTL time.Duration `mapstructure:"cache_ttl" env:"REDIS_CACHE_TTL"`
}

type SearchConfig struct {
	Addresses    []string      `mapstructure:"addresses" env:"SEARCH_ADDRESSES" validate:"required,min=1"`
	Username     string        `mapstructure:"username" env:"SEARCH_USERNAME"`
	Password     string        `mapstructure:"password" env:"SEARCH_PASSWORD"`
	Index        string        `mapstructure:"index" env:"SEARCH_INDEX" validate:"required"`
	MaxRetries   int           `mapstructure:"max_retries" env:"SEARCH_MAX_RETRIES" validate:"gte=0"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff" env:"SEARCH_RETRY_BACKOFF"`
}

type GraphConfig struct {
	Enabled  bool   `mapstructure:"enabled" env:"GRAPH_ENABLED"`
	URI      string `mapstructure:"uri" env:"GRAPH_URI" validate:"required_if=Enabled true"`
	User     string `mapstructure:"user" env:"GRAPH_USER"`
	Password string `mapstructure:"password" env:"GRAPH_PASSWORD"`
	Database string `mapstructure:"database" env:"GRAPH_DATABASE"`
}

type KafkaConfig struct {
	Brokers             []string      `mapstructure:"brokers" env:"KAFKA_BROKERS" validate:"required,min=1"`
	DedupeTopic         string        `mapstructure:"dedupe_topic" env:"KAFKA_DEDUPE_TOPIC" validate:"required"`
	MatchCompletedTopic string        `mapstructure:"match_completed_topic" env:"KAFKA_MATCH_COMPLETED_TOPIC" validate:"required"`
	ConsumerGroup       string        `mapstructure:"consumer_group" env:"KAFKA_CONSUMER_GROUP" validate:"required"`
	ConsumerEnabled     bool          `mapstructure:"consumer_enabled" env:"KAFKA_CONSUMER_ENABLED"`
	BatchSize           int           `mapstructure:"batch_size" env:"KAFKA_BATCH_SIZE" validate:"gte=1"`
	BatchTimeout        time.Duration `mapstructure:"batch_timeout" env:"KAFKA_BATCH_TIMEOUT"`
	RequiredAcks        int           `mapstructure:"required_acks" env:"KAFKA_REQUIRED_ACKS" validate:"oneof=-1 0 1"`
	Compression         string        `mapstructure:"compression" env:"KAFKA_COMPRESSION" validate:"omitempty,oneof=none gzip snappy lz4 zstd"`
}

type MatchingConfig struct {
	PerPage         int      `mapstructure:"per_page" env:"MATCHING_PER_PAGE" validate:"gte=1,lte=100"`
	WorkerCount     int      `mapstructure:"worker_count" env:"MATCHING_WORKER_COUNT" validate:"gte=1"`
	Fields          []string `mapstructure:"fields" env:"MATCHING_FIELDS" validate:"min=1"`
	Normalizers     []string `mapstructure:"normalizers" env:"MATCHING_NORMALIZERS"`
	ShortLength     int      `mapstructure:"short_length" env:"MATCHING_SHORT_LENGTH" validate:"gte=0"`
	ShortMaxEdits   int      `mapstructure:"short_max_edits" env:"MATCHING_SHORT_MAX_EDITS" validate:"gte=0"`
	LongMaxEdits    int      `mapstructure:"long_max_edits" env:"MATCHING_LONG_MAX_EDITS" validate:"gte=0"`
	DefaultKeywords []string `mapstructure:"default_keywords" env:"MATCHING_DEFAULT_KEYWORDS"`
}

type TracingConfig struct {
	Enabled      bool    `mapstructure:"enabled" env:"TRACING_ENABLED"`
	Exporter     string  `mapstructure:"exporter" env:"TRACING_EXPORTER" validate:"oneof=otlp console"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint" env:"TRACING_OTLP_ENDPOINT" validate:"required_if=Exporter otlp"`
	OTLPProtocol string  `mapstructure:"otlp_protocol" env:"TRACING_OTLP_PROTOCOL" validate:"oneof=grpc http"`
	OTLPInsecure bool    `mapstructure:"otlp_insecure" env:"TRACING_OTLP_INSECURE"`
	SampleRatio  float64 `mapstructure:"sample_ratio" env:"TRACING_SAMPLE_RATIO" validate:"gte=0,lte=1"`
}

// defaults are the values used when neither the file nor the environment
// sets a key.
var defaults = map[string]any{
	"app.name":                 "clover",
	"app.log_level":            "info",
	"app.pretty_logs":          false,
	"app.startup_max_attempts": 5,

	"http.port":                3004,
	"http.read_timeout":        10 * time.Second,
	"http.write_timeout":       10 * time.Second,
	"http.idle_timeout":        10 * time.Second,
	"http.read_header_timeout": 10 * time.Second,
	"http.max_header_bytes":    64000,
	"http.allow_origins":       []string{"*"},

	"database.host":              "localhost",
	"database.port":              5432,
	"database.user":              "",
	"database.password":          "",
	"database.name":              "clover",
	"database.sslmode":           "disable",
	"database.max_open_conns":    25,
	"database.max_idle_conns":    10,
	"database.conn_max_lifetime": 10 * time.Second,
	"database.migration_folder":  "db/pg",
	"database.migration_version": 0,
	"database.migration_force":   0,

	"redis.enabled":   false,
	"redis.host":      "localhost",
	"redis.port":      6379,
	"redis.password":  "",
	"redis.db":        0,
	"redis.cache_ttl": time.Hour,

	"search.addresses":     []string{"http://localhost:9200"},
	"search.username":      "",
	"search.password":      "",
	"search.index":         "entities",
	"search.max_retries":   3,
	"search.retry_backoff": 100 * time.Millisecond,

	"graph.enabled":  false,
	"graph.uri":      "bolt://localhost:7687",
	"graph.user":     "",
	"graph.password": "",
	"graph.database": "",

	"kafka.brokers":               []string{"localhost:9092"},
	"kafka.dedupe_topic":          "dedupe.requested",
	"kafka.match_completed_topic": "match.completed",
	"kafka.consumer_group":        "clover-dedupe",
	"kafka.consumer_enabled":      true,
	"kafka.batch_size":            100,
	"kafka.batch_timeout":         100 * time.Millisecond,
	"kafka.required_acks":         1,
	"kafka.compression":           "snappy",

	"matching.per_page":         search.DefaultPerPage,
	"matching.worker_count":     4,
	"matching.fields":           search.DefaultFields,
	"matching.normalizers":      matching.DefaultScorerConfig().Normalizers,
	"matching.short_length":     matching.DefaultScorerConfig().ShortLength,
	"matching.short_max_edits":  matching.DefaultScorerConfig().ShortMaxEdits,
	"matching.long_max_edits":   matching.DefaultScorerConfig().LongMaxEdits,
	"matching.default_keywords": []string{},

	"tracing.enabled":       false,
	"tracing.exporter":      "console",
	"tracing.otlp_endpoint": "",
	"tracing.otlp_protocol": "grpc",
	"tracing.otlp_insecure": true,
	"tracing.sample_ratio":  1.0,
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	return v
}

// Load reads .env when present, then the optional YAML file at path, then the
// environment. Environment variables win: DATABASE_HOST overrides
// database.host. Each field names its variable in its env tag.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := ectoenv.BindEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to bind environment: %w", err)
	}

	if _, err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (c DatabaseConfig) Connection() database.Config {
	return database.Config{
		Host:            c.Host,
		Port:            c.Port,
		User:            c.User,
		Password:        c.Password,
		Name:            c.Name,
		SSLMode:         c.SSLMode,
		MaxOpenConns:    c.MaxOpenConns,
		MaxIdleConns:    c.MaxIdleConns,
		ConnMaxLifetime: c.ConnMaxLifetime,
	}
}

func (c DatabaseConfig) Migration() database.MigrationConfig {
	return database.MigrationConfig{
		Folder:  c.MigrationFolder,
		Version: uint(c.MigrationVersion),
		Force:   c.MigrationForce,
	}
}

func (c RedisConfig) Client() redis.Config {
	return redis.Config{
		Host:     c.Host,
		Port:     c.Port,
		Password: c.Password,
		DB:       c.DB,
	}
}

func (c GraphConfig) Client() graph.Config {
	return graph.Config{
		URI:      c.URI,
		Username: c.User,
		Password: c.Password,
		Database: c.Database,
	}
}

// Server returns the listener settings. dependsOn names the startup
// dependencies that must be up before the port is bound.
func (c Config) Server(dependsOn ...string) server.Config {
	return server.Config{
		ServiceName:       c.App.Name,
		Port:              c.HTTP.Port,
		ReadTimeout:       c.HTTP.ReadTimeout,
		WriteTimeout:      c.HTTP.WriteTimeout,
		IdleTimeout:       c.HTTP.IdleTimeout,
		ReadHeaderTimeout: c.HTTP.ReadHeaderTimeout,
		MaxHeaderBytes:    c.HTTP.MaxHeaderBytes,
		AllowOrigins:      c.HTTP.AllowOrigins,
		DependsOn:         dependsOn,
	}
}

func (c SearchConfig) OpenSearch() search.OpenSearchConfig {
	return search.OpenSearchConfig{
		Addresses:    c.Addresses,
		Username:     c.Username,
		Password:     c.Password,
		Index:        c.Index,
		MaxRetries:   c.MaxRetries,
		RetryBackoff: c.RetryBackoff,
	}
}

func (c MatchingConfig) Matcher() matching.MatcherConfig {
	return matching.MatcherConfig{
		PerPage:     c.PerPage,
		WorkerCount: c.WorkerCount,
		Fields:      c.Fields,
	}
}

func (c MatchingConfig) Scorer() matching.ScorerConfig {
	cfg := matching.DefaultScorerConfig()
	if len(c.Normalizers) > 0 {
		cfg.Normalizers = c.Normalizers
	}
	cfg.ShortLength = c.ShortLength
	cfg.ShortMaxEdits = c.ShortMaxEdits
	cfg.LongMaxEdits = c.LongMaxEdits
	return cfg
}

func (c Config) TracingSetup() tracing.Config {
	return tracing.Config{
		ServiceName:  c.App.Name,
		Exporter:     c.Tracing.Exporter,
		OTLPEndpoint: c.Tracing.OTLPEndpoint,
		OTLPProtocol: c.Tracing.OTLPProtocol,
		OTLPInsecure: c.Tracing.OTLPInsecure,
		SampleRatio:  c.Tracing.SampleRatio,
	}
}
