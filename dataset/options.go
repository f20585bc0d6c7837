package dataset

import (
	"log/slog"
	"os"
	"runtime"

	"github.com/hupe1980/feeddown/bpm"
	"github.com/hupe1980/feeddown/outlier"
)

// Option configures Build, BuildResponse and Fit.
type Option func(*options)

type options struct {
	logger     *slog.Logger
	threshold  float64
	workers    int
	classifier *bpm.Classifier
}

func defaultOptions() options {
	return options{
		threshold:  outlier.DefaultThreshold,
		workers:    runtime.GOMAXPROCS(0),
		classifier: bpm.DefaultClassifier(),
	}
}

func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	return o
}

// WithLogger sets the logger for skipped scans and failed fits.
// Without one, diagnostics go to a text logger on stderr.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithThreshold sets the outlier z-score threshold.
func WithThreshold(t float64) Option {
	return func(o *options) {
		if t >= 0 {
			o.threshold = t
		}
	}
}

// WithWorkers bounds the number of concurrent fits.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithClassifier sets the classifier used by BuildResponse.
func WithClassifier(c *bpm.Classifier) Option {
	return func(o *options) {
		if c != nil {
			o.classifier = c
		}
	}
}
