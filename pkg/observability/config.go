// Package observability provides OpenTelemetry-based tracing, metrics, and
// structured logging for annorewrite commands.
package observability

import (
	"io"
	"log/slog"
)

// AppMode identifies the application execution mode.
type AppMode string

const (
	// ModeRun rewrites files once.
	ModeRun AppMode = "run"
	// ModeCheck reports pending rewrites without writing.
	ModeCheck AppMode = "check"
	// ModeWatch rewrites files as they change.
	ModeWatch AppMode = "watch"
)

const (
	defaultServiceName        = "annorewrite"
	defaultShutdownTimeoutSec = 5
)

// Config holds all observability configuration.
type Config struct {
	// LogWriter receives log output; nil means os.Stderr.
	LogWriter io.Writer

	// OTLPHeaders are additional gRPC metadata headers for the OTLP exporter.
	OTLPHeaders map[string]string

	ServiceName    string
	ServiceVersion string
	Mode           AppMode

	// OTLPEndpoint is the OTLP gRPC collector address (e.g. "localhost:4317").
	// Empty disables OTLP export.
	OTLPEndpoint string

	// MetricsFile, when set, receives a Prometheus text exposition of all
	// metrics on shutdown.
	MetricsFile string

	// SampleRatio is the trace sampling ratio (0.0 to 1.0).
	// Zero uses parent-based always-on sampling.
	SampleRatio float64

	LogLevel slog.Level

	// ShutdownTimeoutSec is the maximum seconds to wait for flush on shutdown.
	ShutdownTimeoutSec int

	OTLPInsecure bool
	LogJSON      bool

	// DebugTrace logs span attributes dropped by the attribute filter.
	DebugTrace bool
}

// DefaultConfig returns a Config with sensible defaults for zero-config startup.
func DefaultConfig() Config {
	return Config{
		ServiceName:        defaultServiceName,
		Mode:               ModeRun,
		LogLevel:           slog.LevelInfo,
		ShutdownTimeoutSec: defaultShutdownTimeoutSec,
	}
}

// ParseLevel maps a level name to a slog level; unknown names yield info.
func ParseLevel(name string) slog.Level {
	var level slog.Level

	if err := level.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo
	}

	return level
}
