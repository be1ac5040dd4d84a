// Package config holds the runtime configuration for a tlogd process,
// as listed in SPEC_FULL.md §6 "Configuration inputs".
package config

import (
	"fmt"
	"os"
	"time"
)

// SpillType selects how a storage team's overflowed messages are written
// to the KeyValueStore once they age out of memory (SPEC_FULL.md §4.3).
type SpillType int

const (
	SpillValue SpillType = iota
	SpillReference
)

func (t SpillType) String() string {
	switch t {
	case SpillValue:
		return "value"
	case SpillReference:
		return "reference"
	default:
		return "unknown"
	}
}

const (
	KB uint64 = 1024
	MB        = 1024 * KB
)

// Config is the full set of knobs a TLog process is started with. Defaults
// below are chosen to be workable for a single-box deployment, not tuned
// for any particular cluster size.
type Config struct {
	// ListenAddr is where the TLogService grpc server listens.
	ListenAddr string
	// StatusAddr serves /status and /metrics over plain HTTP.
	StatusAddr string
	LogLevel   string

	// DataDir is the root directory; each group gets DataDir/<groupID>/{kv,queue}.
	DataDir string

	NumLoaders  int
	NumAppliers int
	SpillType   SpillType

	SpillThresholdBytes      uint64
	HardLimitBytes           uint64
	MaxQueueCommitBytes      uint64
	DefaultBlockBytes        uint64
	MaxMessageSize           uint64
	PeekMemoryBytes          uint64
	ConcurrentLogRouterReads int

	TlogMaxCreateDuration time.Duration
	WarningTimeout        time.Duration

	// InMemoryOnly skips FramedQueue durability entirely; see SPEC_FULL.md
	// §9 decision 1. Defaults to false — durable queue commit is required.
	InMemoryOnly bool
}

func (c *Config) Validate() error {
	if c.HardLimitBytes == 0 {
		return fmt.Errorf("hard limit bytes must be greater than 0")
	}
	if c.SpillThresholdBytes >= c.HardLimitBytes {
		return fmt.Errorf("spill threshold (%d) must be less than the hard limit (%d)", c.SpillThresholdBytes, c.HardLimitBytes)
	}
	if c.MaxMessageSize == 0 {
		return fmt.Errorf("max message size must be greater than 0")
	}
	if c.DataDir == "" {
		return fmt.Errorf("data dir must be set")
	}
	return nil
}

func getLogLevel() string {
	if l := os.Getenv("LOG_LEVEL"); l != "" {
		return l
	}
	return "info"
}

func Default() *Config {
	return &Config{
		ListenAddr:               "127.0.0.1:4500",
		StatusAddr:               "127.0.0.1:4501",
		LogLevel:                 getLogLevel(),
		DataDir:                  "/tmp/tlogd",
		NumLoaders:               4,
		NumAppliers:              4,
		SpillType:                SpillValue,
		SpillThresholdBytes:      1500 * MB,
		HardLimitBytes:           2000 * MB,
		MaxQueueCommitBytes:      30 * MB,
		DefaultBlockBytes:        10 * MB,
		MaxMessageSize:           MB,
		PeekMemoryBytes:          2000 * MB,
		ConcurrentLogRouterReads: 5,
		TlogMaxCreateDuration:    20 * time.Second,
		WarningTimeout:           100 * time.Millisecond,
	}
}

func TestConfig() *Config {
	c := Default()
	c.DataDir = os.TempDir()
	c.SpillThresholdBytes = 16 * KB
	c.HardLimitBytes = 64 * KB
	c.MaxQueueCommitBytes = 8 * KB
	c.DefaultBlockBytes = 4 * KB
	c.MaxMessageSize = KB
	c.PeekMemoryBytes = 8 * MB
	c.TlogMaxCreateDuration = 2 * time.Second
	c.WarningTimeout = 20 * time.Millisecond
	return c
}
