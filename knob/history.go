package knob

import (
	"context"
	"fmt"
	"math"
	"time"

	"golang.org/x/time/rate"
)

// HistoryClient looks up the setting of a knob at a point in time.
// Implementations return ErrNotFound when no setting is recorded.
type HistoryClient interface {
	Value(ctx context.Context, knob string, at time.Time) (float64, error)
}

// HistoryResolver resolves a source by querying the knob history at every
// acquisition time behind it. All acquisitions must agree within Tolerance.
type HistoryResolver struct {
	knob      string
	client    HistoryClient
	lister    Lister
	limiter   *rate.Limiter
	tolerance float64
}

// HistoryOption configures a HistoryResolver.
type HistoryOption func(*HistoryResolver)

// WithLister replaces the default FileNameLister(time.UTC).
func WithLister(l Lister) HistoryOption {
	return func(h *HistoryResolver) { h.lister = l }
}

// WithRateLimit bounds the number of history queries per second.
// A value <= 0 disables limiting.
func WithRateLimit(perSecond float64, burst int) HistoryOption {
	return func(h *HistoryResolver) {
		if perSecond <= 0 {
			h.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		h.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithTolerance sets the absolute difference up to which two acquisitions
// count as the same setting. Defaults to 1e-9.
func WithTolerance(tol float64) HistoryOption {
	return func(h *HistoryResolver) { h.tolerance = tol }
}

// NewHistoryResolver creates a resolver for the named knob.
func NewHistoryResolver(knob string, client HistoryClient, optFns ...HistoryOption) *HistoryResolver {
	h := &HistoryResolver{
		knob:      knob,
		client:    client,
		lister:    FileNameLister(time.UTC),
		limiter:   rate.NewLimiter(rate.Limit(10), 5),
		tolerance: 1e-9,
	}
	for _, fn := range optFns {
		fn(h)
	}
	return h
}

// Knob returns the knob name.
func (h *HistoryResolver) Knob() string { return h.knob }

// Resolve implements Resolver.
func (h *HistoryResolver) Resolve(ctx context.Context, source string) (float64, error) {
	times, err := h.lister(source)
	if err != nil {
		return 0, err
	}
	if len(times) == 0 {
		return 0, fmt.Errorf("%w: %s has no acquisitions", ErrNotFound, source)
	}

	values := make([]float64, 0, len(times))
	for _, at := range times {
		if h.limiter != nil {
			if err := h.limiter.Wait(ctx); err != nil {
				return 0, err
			}
		}
		v, err := h.client.Value(ctx, h.knob, at)
		if err != nil {
			return 0, fmt.Errorf("%s at %s: %w", source, at.Format(time.RFC3339Nano), err)
		}
		values = append(values, v)
	}

	for _, v := range values[1:] {
		if math.Abs(v-values[0]) > h.tolerance {
			return 0, &InconsistentError{Source: source, Knob: h.knob, Values: values}
		}
	}
	return values[0], nil
}
