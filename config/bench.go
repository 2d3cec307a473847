package config

import (
	"fmt"
	"time"

	"github.com/YaCodeDev/GoYaRSABench/yabench"
	"github.com/YaCodeDev/GoYaRSABench/yaerrors"
	"github.com/YaCodeDev/GoYaRSABench/yalogger"
	"github.com/YaCodeDev/GoYaRSABench/yaprime"
	"github.com/YaCodeDev/GoYaRSABench/yarsa"
)

// Bench is the environment of the yarsabench runner.
type Bench struct {
	BitWidthLow         uint           `default:"10"`
	BitWidthHigh        uint           `default:"11"`
	BatchSize           int            `default:"190"`
	SampleInterval      time.Duration  `default:"10ms"`
	Workers             int            `default:"0"`
	Seed                string         `default:""`
	MaxPrimeAttempts    int            `default:"1048576"`
	MaxExponentAttempts int            `default:"65536"`
	LogLevel            yalogger.Level `default:"info"`
	Baselines           []string       `default:""`
	OutputDir           string         `default:""`
	WriteCiphertext     bool           `default:"false"`
	SqlitePath          string         `default:""`
	Redis               Redis
}

// Redis configures the optional Redis telemetry sink; an empty Addr disables it.
// The first ping is retried ConnectAttempts times with exponential backoff
// starting at ConnectBackoff.
type Redis struct {
	Addr     string        `default:""`
	Password string        `default:""`
	DB       int           `default:"0"`
	TTL      time.Duration `default:"0"`

	ConnectAttempts int           `default:"3"`
	ConnectBackoff  time.Duration `default:"200ms"`
}

// Validate reports the first setting that would make a run impossible.
func (b *Bench) Validate() yaerrors.Error {
	switch {
	case b.BatchSize <= 0:
		return yaerrors.Configuration(fmt.Sprintf("BATCH_SIZE must be positive, got %d", b.BatchSize))
	case b.BitWidthLow >= b.BitWidthHigh:
		return yaerrors.Configuration(
			fmt.Sprintf("BIT_WIDTH_LOW (%d) must be below BIT_WIDTH_HIGH (%d)", b.BitWidthLow, b.BitWidthHigh),
		)
	case b.BitWidthHigh > yaprime.MaxBitWidth:
		return yaerrors.Configuration(
			fmt.Sprintf("BIT_WIDTH_HIGH (%d) exceeds %d", b.BitWidthHigh, yaprime.MaxBitWidth),
		)
	case b.SampleInterval <= 0:
		return yaerrors.Configuration("SAMPLE_INTERVAL must be positive")
	case b.Workers < 0:
		return yaerrors.Configuration("WORKERS must not be negative")
	case b.MaxPrimeAttempts <= 0 || b.MaxExponentAttempts <= 0:
		return yaerrors.Configuration("attempt ceilings must be positive")
	}

	return nil
}

// KeyOpts maps the key settings onto yarsa.KeyOpts.
func (b *Bench) KeyOpts() yarsa.KeyOpts {
	opts := yarsa.KeyOpts{
		BitWidthLow:         b.BitWidthLow,
		BitWidthHigh:        b.BitWidthHigh,
		MaxPrimeAttempts:    b.MaxPrimeAttempts,
		MaxExponentAttempts: b.MaxExponentAttempts,
	}

	if b.Seed != "" {
		opts.Seed = []byte(b.Seed)
	}

	return opts
}

// HarnessOpts maps the measurement settings onto yabench.HarnessOpts.
func (b *Bench) HarnessOpts(collector yabench.Collector, log yalogger.Logger) *yabench.HarnessOpts {
	return &yabench.HarnessOpts{
		Collector:      collector,
		SampleInterval: b.SampleInterval,
		Logger:         log,
	}
}
