package config

import (
	"time"

	"github.com/kbukum/seqkit/logger"
	"github.com/kbukum/seqkit/query"
	"github.com/kbukum/seqkit/validation"
)

const (
	DefaultBufferCapacity  = query.DefaultBufferCapacity
	DefaultMetricsEndpoint = "localhost:4318"
	DefaultMetricsInterval = 15 * time.Second
	DefaultTracingEndpoint = "localhost:4318"
	DefaultSampleRate      = 1.0
)

var environments = []string{"development", "staging", "production"}

// Config is the root configuration of an application embedding the engine.
type Config struct {
	Name        string        `yaml:"name" mapstructure:"name" validate:"required"`
	Environment string        `yaml:"environment" mapstructure:"environment"`
	Version     string        `yaml:"version" mapstructure:"version"`
	Debug       bool          `yaml:"debug" mapstructure:"debug"`
	Logging     logger.Config `yaml:"logging" mapstructure:"logging"`
	Query       QueryConfig   `yaml:"query" mapstructure:"query"`
	Metrics     MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
	Tracing     TracingConfig `yaml:"tracing" mapstructure:"tracing"`
}

// QueryConfig tunes the query engine.
type QueryConfig struct {
	// BufferCapacity is the initial capacity of materialization buffers
	// when the source size is unknown.
	BufferCapacity int `yaml:"buffer_capacity" mapstructure:"buffer_capacity" validate:"gte=1,lte=1048576"`
	// TraceBuildPhases logs lookup builds, sorts and materializations at debug level.
	TraceBuildPhases bool `yaml:"trace_build_phases" mapstructure:"trace_build_phases"`
}

// MetricsConfig configures the OTLP metrics exporter.
type MetricsConfig struct {
	Enabled  bool          `yaml:"enabled" mapstructure:"enabled"`
	Endpoint string        `yaml:"endpoint" mapstructure:"endpoint" validate:"omitempty,hostname_port"`
	Insecure bool          `yaml:"insecure" mapstructure:"insecure"`
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`
}

// TracingConfig configures the OTLP trace exporter.
type TracingConfig struct {
	Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint" validate:"omitempty,hostname_port"`
	Insecure bool   `yaml:"insecure" mapstructure:"insecure"`
	// SampleRate is the fraction of traces kept; zero means DefaultSampleRate.
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate" validate:"gte=0,lte=1"`
}

// ApplyDefaults fills zero values.
func (c *Config) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
	if c.Logging.ServiceName == "" && c.Name != "" {
		c.Logging.ServiceName = c.Name
	}
	c.Logging.ApplyDefaults()
	c.Query.ApplyDefaults()
	c.Metrics.ApplyDefaults()
	c.Tracing.ApplyDefaults()
}

// Options converts the query section into engine options.
//
//	query.Configure(cfg.Query.Options()...)
func (c QueryConfig) Options() []query.Option {
	return []query.Option{
		query.WithBufferCapacity(c.BufferCapacity),
		query.WithTraceBuildPhases(c.TraceBuildPhases),
	}
}

// ApplyDefaults fills zero values.
func (c *QueryConfig) ApplyDefaults() {
	if c.BufferCapacity == 0 {
		c.BufferCapacity = DefaultBufferCapacity
	}
}

// ApplyDefaults fills zero values.
func (c *MetricsConfig) ApplyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = DefaultMetricsEndpoint
	}
	if c.Interval == 0 {
		c.Interval = DefaultMetricsInterval
	}
}

// ApplyDefaults fills zero values.
func (c *TracingConfig) ApplyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = DefaultTracingEndpoint
	}
	if c.SampleRate == 0 {
		c.SampleRate = DefaultSampleRate
	}
}

// Validate checks struct tags first, then the rules that span fields.
func (c *Config) Validate() error {
	return validation.New().
		Merge("config", validation.Validate(c)).
		OneOf("environment", c.Environment, environments).
		Merge("logging", c.Logging.Validate()).
		RequiredIf(c.Metrics.Enabled, "metrics.endpoint", c.Metrics.Endpoint).
		Custom(!c.Metrics.Enabled || c.Metrics.Interval > 0, "metrics.interval", "must be a positive duration").
		RequiredIf(c.Tracing.Enabled, "tracing.endpoint", c.Tracing.Endpoint).
		Err()
}
