package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricOpts holds options for creating metrics
type MetricOpts struct {
	Name        string
	Description string
	Unit        string
}

// Counter wraps an OTel counter
type Counter struct {
	counter metric.Int64Counter
}

// NewCounter creates a counter on the process meter
func NewCounter(opts MetricOpts) (*Counter, error) {
	c, err := GetMeter().Int64Counter(
		opts.Name,
		metric.WithDescription(opts.Description),
		metric.WithUnit(opts.Unit),
	)
	if err != nil {
		return nil, err
	}
	return &Counter{counter: c}, nil
}

// MustCounter is NewCounter for package-level wiring; the meter API only fails on invalid names
func MustCounter(opts MetricOpts) *Counter {
	c, err := NewCounter(opts)
	if err != nil {
		panic(err)
	}
	return c
}

// Inc increments the counter by 1
func (c *Counter) Inc(ctx context.Context, attrs ...attribute.KeyValue) {
	c.counter.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// Add increments the counter by value
func (c *Counter) Add(ctx context.Context, value int64, attrs ...attribute.KeyValue) {
	c.counter.Add(ctx, value, metric.WithAttributes(attrs...))
}

// Histogram wraps an OTel float histogram
type Histogram struct {
	histogram metric.Float64Histogram
}

// NewHistogram creates a histogram, with explicit bucket boundaries when given
func NewHistogram(opts MetricOpts, boundaries ...float64) (*Histogram, error) {
	hopts := []metric.Float64HistogramOption{
		metric.WithDescription(opts.Description),
		metric.WithUnit(opts.Unit),
	}
	if len(boundaries) > 0 {
		hopts = append(hopts, metric.WithExplicitBucketBoundaries(boundaries...))
	}

	h, err := GetMeter().Float64Histogram(opts.Name, hopts...)
	if err != nil {
		return nil, err
	}
	return &Histogram{histogram: h}, nil
}

// MustHistogram is NewHistogram that panics on an invalid definition
func MustHistogram(opts MetricOpts, boundaries ...float64) *Histogram {
	h, err := NewHistogram(opts, boundaries...)
	if err != nil {
		panic(err)
	}
	return h
}

// Record records a value in the histogram
func (h *Histogram) Record(ctx context.Context, value float64, attrs ...attribute.KeyValue) {
	h.histogram.Record(ctx, value, metric.WithAttributes(attrs...))
}

// Attribute keys
const (
	AttrHostelID  = "hostel.id"
	AttrUserRole  = "user.role"
	AttrOperation = "operation"
	AttrOutcome   = "outcome"
)

func HostelIDAttr(id string) attribute.KeyValue     { return attribute.String(AttrHostelID, id) }
func UserRoleAttr(role string) attribute.KeyValue   { return attribute.String(AttrUserRole, role) }
func OperationAttr(op string) attribute.KeyValue    { return attribute.String(AttrOperation, op) }
func OutcomeAttr(outcome string) attribute.KeyValue { return attribute.String(AttrOutcome, outcome) }
