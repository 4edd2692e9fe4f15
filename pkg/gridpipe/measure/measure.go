package measure

import (
	"sync"
	"time"
)

type DefaultMeasure struct {
	Steps    map[string]Metric
	datasets map[string]time.Duration
	mu       sync.RWMutex
}

func NewDefaultMeasure() *DefaultMeasure {
	return &DefaultMeasure{
		Steps:    make(map[string]Metric),
		datasets: make(map[string]time.Duration),
	}
}

func (m *DefaultMeasure) AddMetric(name string) Metric {
	m.mu.Lock()
	defer m.mu.Unlock()

	if mt, ok := m.Steps[name]; ok {
		return mt
	}

	mt := &DefaultMetric{
		mu:           &sync.Mutex{},
		combinations: make(map[string]int64),
	}
	m.Steps[name] = mt

	return mt
}

func (m *DefaultMeasure) GetMetric(name string) Metric {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.Steps[name]
}

func (m *DefaultMeasure) AllMetrics() map[string]Metric {
	m.mu.RLock()
	defer m.mu.RUnlock()

	res := make(map[string]Metric, len(m.Steps))
	for name, mt := range m.Steps {
		res[name] = mt
	}

	return res
}

func (m *DefaultMeasure) SetTotalDuration(dataset string, elapsed time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.datasets[dataset] = elapsed
}

func (m *DefaultMeasure) AllTotalDurations() map[string]time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()

	res := make(map[string]time.Duration, len(m.datasets))
	for dataset, elapsed := range m.datasets {
		res[dataset] = elapsed
	}

	return res
}

var _ Measure = (*DefaultMeasure)(nil)
