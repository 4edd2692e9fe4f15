package measure

import (
	"sync"
	"time"
)

// DefaultMetric counts the invocations of one step across every dataset.
type DefaultMetric struct {
	combinations map[string]int64
	mu           *sync.Mutex
	stepElapsed  time.Duration
	total        int64
}

func (mt *DefaultMetric) AddDuration(combination string, elapsed time.Duration) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.total++
	mt.stepElapsed += elapsed
	mt.combinations[combination]++
}

func (mt *DefaultMetric) AVGDuration() time.Duration {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	if mt.total == 0 {
		return time.Duration(0)
	}

	return round(time.Duration(float64(mt.stepElapsed) / float64(mt.total)))
}

func (mt *DefaultMetric) Invocations() int64 {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	return mt.total
}

func (mt *DefaultMetric) CombinationInvocations(combination string) int64 {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	return mt.combinations[combination]
}

func round(d time.Duration) time.Duration {
	switch {
	case d > time.Hour:
		d = d.Round(time.Hour)
	case d > time.Minute:
		d = d.Round(time.Minute)
	case d > time.Second:
		d = d.Round(time.Second)
	case d > time.Millisecond:
		d = d.Round(time.Millisecond)
	case d > time.Microsecond:
		d = d.Round(time.Microsecond)
	}

	return d
}
