package reliability

import (
	"testing"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// ReliabilityConfig holds configuration for reliability testing.
// Read from SPANZ_RELIABILITY_LEVEL, SPANZ_RELIABILITY_DURATION and so on.
type ReliabilityConfig struct {
	Level         string        `envconfig:"LEVEL"` // "basic" or "stress"
	Duration      time.Duration `envconfig:"DURATION" default:"30s"`
	MaxGoroutines int           `envconfig:"MAX_GOROUTINES" default:"100"`
	MaxMemoryMB   int           `envconfig:"MAX_MEMORY_MB" default:"512"`
}

// getReliabilityConfig reads the configuration, failing the test on
// malformed values.
func getReliabilityConfig(t *testing.T) ReliabilityConfig {
	t.Helper()
	var cfg ReliabilityConfig
	if err := envconfig.Process("SPANZ_RELIABILITY", &cfg); err != nil {
		t.Fatalf("reliability config: %v", err)
	}
	return cfg
}

// requireLevel skips the test unless reliability testing is enabled.
func requireLevel(t *testing.T) ReliabilityConfig {
	t.Helper()
	cfg := getReliabilityConfig(t)
	if cfg.Level == "" {
		t.Skip("SPANZ_RELIABILITY_LEVEL not set, skipping reliability tests")
	}
	return cfg
}

func (c ReliabilityConfig) isStress() bool { return c.Level == "stress" }

// scale picks the basic or stress variant of a load parameter.
func (c ReliabilityConfig) scale(basic, stress int) int {
	if c.isStress() {
		return stress
	}
	return basic
}
