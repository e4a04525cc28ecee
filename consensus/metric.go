package consensus

import (
	"time"

	"kratos/libs/metric"
)

// roundDuration and roundOutcomes report round latency and completed
// vs. timed-out counts into the shared metric.DefaultSet, the
// consensus-side counterpart to mempool's metric.go — both report
// into the shared libs/metric.Set registry.
var (
	roundDuration = metric.NewSample("consensus.round_duration_seconds")
	roundOutcomes = metric.NewSample("consensus.round_outcomes")
)

func init() {
	_ = metric.DefaultSet.Register("consensus.round_duration_seconds", roundDuration)
	_ = metric.DefaultSet.Register("consensus.round_outcomes", roundOutcomes)
}

const (
	outcomeCompleted = 1.0
	outcomeFailed    = 0.0
)

func observeRoundEnd(startedAt time.Time, now time.Time, completed bool) {
	roundDuration.Observe(now.Sub(startedAt).Seconds())
	if completed {
		roundOutcomes.Observe(outcomeCompleted)
	} else {
		roundOutcomes.Observe(outcomeFailed)
	}
}
