package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricFilesTotal   = "annorewrite.files.total"
	metricNodesTotal   = "annorewrite.nodes.total"
	metricFileDuration = "annorewrite.file.duration.seconds"
	metricBytesWritten = "annorewrite.bytes.written"

	attrRecipe = "recipe"
	attrStatus = "status"
	attrState  = "state"
)

// FileStatus is the outcome of processing one file.
type FileStatus string

// File outcomes.
const (
	FileChanged   FileStatus = "changed"
	FileUnchanged FileStatus = "unchanged"
	FileDeleted   FileStatus = "deleted"
	FileSkipped   FileStatus = "skipped"
	FileFailed    FileStatus = "failed"
)

// durationBucketBoundaries covers 100µs to 10s per file.
var durationBucketBoundaries = []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10}

// RewriteMetrics holds the instruments recorded per rewritten file.
type RewriteMetrics struct {
	files        metric.Int64Counter
	nodes        metric.Int64Counter
	fileDuration metric.Float64Histogram
	bytesWritten metric.Int64Counter
}

// NewRewriteMetrics creates the rewrite instruments from the given meter.
func NewRewriteMetrics(mt metric.Meter) (*RewriteMetrics, error) {
	files, err := mt.Int64Counter(metricFilesTotal,
		metric.WithDescription("Files processed, by outcome"),
		metric.WithUnit("{file}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricFilesTotal, err)
	}

	nodes, err := mt.Int64Counter(metricNodesTotal,
		metric.WithDescription("Annotation nodes visited, by final rewrite state"),
		metric.WithUnit("{node}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricNodesTotal, err)
	}

	duration, err := mt.Float64Histogram(metricFileDuration,
		metric.WithDescription("Time spent rewriting one file"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricFileDuration, err)
	}

	written, err := mt.Int64Counter(metricBytesWritten,
		metric.WithDescription("Bytes of rewritten source written back"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricBytesWritten, err)
	}

	return &RewriteMetrics{
		files:        files,
		nodes:        nodes,
		fileDuration: duration,
		bytesWritten: written,
	}, nil
}

// RecordFile records one processed file.
func (rm *RewriteMetrics) RecordFile(ctx context.Context, recipe string, status FileStatus, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String(attrRecipe, recipe),
		attribute.String(attrStatus, string(status)),
	)

	rm.files.Add(ctx, 1, attrs)
	rm.fileDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordNodes adds per-state node counts.
func (rm *RewriteMetrics) RecordNodes(ctx context.Context, recipe string, byState map[string]int) {
	for state, n := range byState {
		if n == 0 {
			continue
		}

		rm.nodes.Add(ctx, int64(n), metric.WithAttributes(
			attribute.String(attrRecipe, recipe),
			attribute.String(attrState, state),
		))
	}
}

// RecordWrite records bytes written back to disk.
func (rm *RewriteMetrics) RecordWrite(ctx context.Context, n int) {
	rm.bytesWritten.Add(ctx, int64(n))
}
