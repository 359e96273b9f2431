package spanz

import (
	"fmt"
	"runtime"

	"github.com/kelseyhightower/envconfig"
)

// envPrefix namespaces every configuration variable, e.g. SPANZ_LOG_LEVEL.
const envPrefix = "SPANZ"

// Config holds tracer configuration.
type Config struct {
	Logging LogConfig

	// IDPoolSize is the number of pre-generated span ids; 0 sizes it by CPU count.
	IDPoolSize int `envconfig:"ID_POOL_SIZE" default:"0"`

	// AsyncWorkers and AsyncQueueSize enable a bounded pool for async
	// handlers when both are positive.
	AsyncWorkers   int `envconfig:"ASYNC_WORKERS" default:"0"`
	AsyncQueueSize int `envconfig:"ASYNC_QUEUE_SIZE" default:"0"`

	// CollectorBuffer is the channel size used by NewCollectorFromConfig.
	CollectorBuffer int `envconfig:"COLLECTOR_BUFFER" default:"1000"`

	// Metrics registers prometheus collectors on the default registerer.
	Metrics bool `envconfig:"METRICS" default:"false"`
}

// LoadConfig reads configuration from SPANZ_* environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadConfigOrDefault loads configuration from the environment or
// returns the default.
func LoadConfigOrDefault() *Config {
	cfg, err := LoadConfig()
	if err != nil {
		return DefaultConfig()
	}
	return cfg
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() *Config {
	return &Config{
		Logging: LogConfig{
			Level:       "warn",
			Development: false,
			OutputPaths: []string{"stderr"},
		},
		CollectorBuffer: 1000,
	}
}

func (c *Config) idPoolSize() int {
	if c == nil || c.IDPoolSize <= 0 {
		return runtime.NumCPU() * 100
	}
	return c.IDPoolSize
}
