package metric

import (
	"encoding/json"

	"kratos/libs/utils"

	kitmetrics "github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/generic"
	rmetrics "github.com/rcrowley/go-metrics"
)

// Sample is an Item that tracks a stream of durations/counts for one
// label: a go-kit generic.Histogram for quantiles plus an
// rcrowley/go-metrics Counter for a raw total, combining the two
// metrics substrates the domain stack calls for behind one JSONString
// report instead of exposing either library's own reporter.
type Sample struct {
	name string
	hist kitmetrics.Histogram
	n    rmetrics.Counter
}

func NewSample(name string) *Sample {
	return &Sample{
		name: name,
		hist: generic.NewHistogram(name, 50),
		n:    rmetrics.NewCounter(),
	}
}

// Observe records one occurrence (a round duration in seconds, a
// mempool size, ...).
func (s *Sample) Observe(v float64) {
	s.hist.Observe(v)
	s.n.Inc(1)
}

type sampleReport struct {
	Name  string  `json:"name"`
	Count int64   `json:"count"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	P50   float64 `json:"p50"`
	P99   float64 `json:"p99"`
}

func (s *Sample) JSONString() string {
	q := s.quantiles(0, 0.5, 0.99, 1)
	report := sampleReport{
		Name:  s.name,
		Count: s.n.Count(),
		Min:   utils.Min(q[0], q[1]),
		Max:   utils.Max(q[2], q[3]),
		P50:   q[1],
		P99:   q[2],
	}
	buf, err := json.Marshal(report)
	if err != nil {
		return "{}"
	}
	return string(buf)
}

func (s *Sample) quantiles(qs ...float64) []float64 {
	g, ok := s.hist.(*generic.Histogram)
	out := make([]float64, len(qs))
	if !ok {
		return out
	}
	for i, q := range qs {
		out[i] = g.Quantile(q)
	}
	return out
}
