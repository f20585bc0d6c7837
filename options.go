package feeddown

import (
	"log/slog"
	"runtime"

	"github.com/hupe1980/feeddown/bpm"
	"github.com/hupe1980/feeddown/codec"
	"github.com/hupe1980/feeddown/group"
	"github.com/hupe1980/feeddown/internal/compress"
	"github.com/hupe1980/feeddown/outlier"
	"github.com/hupe1980/feeddown/storage"
)

type options struct {
	logger           *Logger
	metricsCollector MetricsCollector
	workers          int
	threshold        float64
	classifier       *bpm.Classifier
	mergePolicy      group.MergePolicy
	compression      Compression
	codec            codec.Codec
	store            storage.Store
}

func defaultOptions() options {
	return options{
		logger:           NewLogger(nil),
		metricsCollector: NoopMetricsCollector{},
		workers:          runtime.GOMAXPROCS(0),
		threshold:        outlier.DefaultThreshold,
		classifier:       bpm.DefaultClassifier(),
		mergePolicy:      group.MergeRejectConflicts,
		compression:      CompressionNone,
		codec:            codec.Default,
	}
}

// Option configures an Analyzer.
type Option func(*options)

// WithLogger sets the logger for skipped inputs, failed fits and rejected
// files. If nil is passed, the default stderr text logger is kept.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithLogLevel replaces the logger with a text logger at the given level.
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector sets the collector notified after every operation.
//
// Example:
//
//	collector := &feeddown.BasicMetricsCollector{}
//	a := feeddown.New(feeddown.WithMetricsCollector(collector))
//	// ...
//	stats := collector.GetStats()
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithWorkers bounds the number of concurrent fits, builds and loads.
// Values <= 0 keep the default of GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithOutlierThreshold sets the z-score threshold of the outlier filter.
func WithOutlierThreshold(t float64) Option {
	return func(o *options) {
		if t >= 0 {
			o.threshold = t
		}
	}
}

// WithClassifier sets the monitor classifier used for aggregation and
// simulation responses.
func WithClassifier(c *bpm.Classifier) Option {
	return func(o *options) {
		if c != nil {
			o.classifier = c
		}
	}
}

// WithMergePolicy sets how grouping treats a monitor present in several
// datasets of one beam. Defaults to group.MergeRejectConflicts.
func WithMergePolicy(p group.MergePolicy) Option {
	return func(o *options) {
		o.mergePolicy = p
	}
}

// WithCompression sets the compression of saved datasets.
func WithCompression(c Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithCodec sets the codec for saved datasets.
//
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithStore sets the result store used by SaveDataset, LoadDataset and
// GroupStored.
func WithStore(s storage.Store) Option {
	return func(o *options) {
		o.store = s
	}
}

// Compression selects how saved datasets are compressed.
type Compression = compress.Type

const (
	CompressionNone = compress.None
	CompressionLZ4  = compress.LZ4
	CompressionZSTD = compress.ZSTD
)

// ParseCompression parses "none", "lz4" or "zstd".
func ParseCompression(s string) (Compression, error) {
	return compress.Parse(s)
}
