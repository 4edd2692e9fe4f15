package measure

import "time"

type Measure interface {
	AddMetric(name string) Metric
	GetMetric(name string) Metric
	AllMetrics() map[string]Metric
	SetTotalDuration(dataset string, elapsed time.Duration)
	AllTotalDurations() map[string]time.Duration
}

type Metric interface {
	AddDuration(combination string, elapsed time.Duration)
	AVGDuration() time.Duration
	Invocations() int64
	CombinationInvocations(combination string) int64
}
