package config

import "time"

// Run defaults.
const (
	DefaultRunWorkers     = 0
	DefaultRunMaxFileSize = "1MB"
	DefaultRunWrite       = false
	DefaultRunDiff        = true
)

// Rewrite defaults.
const (
	DefaultRewriteStrict  = false
	DefaultRewriteImports = "qualify"
)

// Recipe defaults.
const (
	DefaultRecipeName = "swagger.MigrateApiResponses"
	DefaultRecipeFile = ""
)

// Logging defaults.
const (
	DefaultLoggingLevel  = "info"
	DefaultLoggingFormat = "text"
)

// Telemetry defaults.
const (
	DefaultTelemetryEndpoint    = ""
	DefaultTelemetryInsecure    = false
	DefaultTelemetrySampleRatio = 1.0
	DefaultTelemetryMetricsFile = ""
)

// DefaultWatchDebounce is the quiet period before a changed file is rewritten.
const DefaultWatchDebounce = 300 * time.Millisecond

// DefaultRunInclude matches every Java source file.
func DefaultRunInclude() []string {
	return []string{"**/*.java"}
}

// DefaultRunExclude skips build output and VCS metadata.
func DefaultRunExclude() []string {
	return []string{"**/.git/**", "**/target/**", "**/build/**"}
}
