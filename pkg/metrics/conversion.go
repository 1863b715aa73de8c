package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/Suhaibinator/SConvert/pkg/radix"
	"github.com/prometheus/client_golang/prometheus"
)

// Conversion outcomes used as the "outcome" label.
const (
	OutcomeOK               = "ok"
	OutcomeInvalidBase      = "invalid_base"
	OutcomeInvalidDigit     = "invalid_digit"
	OutcomeMalformed        = "malformed"
	OutcomeInvalidPrecision = "invalid_precision"
	OutcomeOverflow         = "overflow"
	OutcomeError            = "error"
)

// Outcome classifies a conversion error for labelling.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, radix.ErrInvalidBase):
		return OutcomeInvalidBase
	case errors.Is(err, radix.ErrInvalidDigit):
		return OutcomeInvalidDigit
	case errors.Is(err, radix.ErrMalformedNumber):
		return OutcomeMalformed
	case errors.Is(err, radix.ErrInvalidPrecision):
		return OutcomeInvalidPrecision
	case errors.Is(err, radix.ErrOverflow):
		return OutcomeOverflow
	default:
		return OutcomeError
	}
}

// ConversionMetrics records the results of calls into the conversion core.
type ConversionMetrics struct {
	total    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	digits   prometheus.Histogram
}

// NewConversionMetrics creates the conversion metrics and registers them with r.
func NewConversionMetrics(r *Registry) (*ConversionMetrics, error) {
	m := &ConversionMetrics{
		total: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: r.namespace,
			Name:      "conversions_total",
			Help:      "Number of conversions by source base, target base and outcome.",
		}, []string{"from", "to", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: r.namespace,
			Name:      "conversion_duration_seconds",
			Help:      "Time spent converting a single number.",
			Buckets:   prometheus.ExponentialBuckets(1e-7, 4, 10),
		}, []string{"outcome"}),
		digits: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: r.namespace,
			Name:      "conversion_output_digits",
			Help:      "Length of successful conversion results.",
			Buckets:   []float64{1, 4, 8, 16, 32, 64, 128, 1024, 65536},
		}),
	}

	for _, c := range []prometheus.Collector{m.total, m.duration, m.digits} {
		if err := r.register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Observe records one conversion. Out-of-range bases are labelled "invalid"
// so that arbitrary client input cannot grow the label set.
func (m *ConversionMetrics) Observe(from, to int, err error, d time.Duration, digits int) {
	if m == nil {
		return
	}
	outcome := Outcome(err)
	m.total.WithLabelValues(baseLabel(from), baseLabel(to), outcome).Inc()
	m.duration.WithLabelValues(outcome).Observe(d.Seconds())
	if err == nil {
		m.digits.Observe(float64(digits))
	}
}

func baseLabel(base int) string {
	if radix.ValidateBase(base) != nil {
		return "invalid"
	}
	return strconv.Itoa(base)
}
