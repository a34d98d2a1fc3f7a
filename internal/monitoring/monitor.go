package monitoring

import (
	"sync"
	"time"
)

// Monitor keeps a JSON-friendly snapshot of assistant activity: monotonic
// counters, point-in-time gauges and the most recent value of text labels.
// Names share one namespace in the snapshot.
type Monitor struct {
	mu        sync.RWMutex
	counters  map[string]int
	gauges    map[string]int
	labels    map[string]string
	startTime time.Time
}

// NewMonitor creates an empty monitor
func NewMonitor() *Monitor {
	m := &Monitor{startTime: time.Now()}
	m.Reset()
	return m
}

// Increment adds one to a counter, creating it if needed
func (m *Monitor) Increment(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[name]++
}

// SetGauge records the current value of a gauge
func (m *Monitor) SetGauge(name string, value int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gauges[name] = value
}

// SetLabel records the latest value of a text label
func (m *Monitor) SetLabel(name, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.labels[name] = value
}

// Value returns the counter, gauge or label stored under name
func (m *Monitor) Value(name string) (interface{}, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if n, ok := m.counters[name]; ok {
		return n, true
	}
	if n, ok := m.gauges[name]; ok {
		return n, true
	}
	if s, ok := m.labels[name]; ok {
		return s, true
	}
	return nil, false
}

// Snapshot returns every value plus the process uptime
func (m *Monitor) Snapshot() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]interface{}, len(m.counters)+len(m.gauges)+len(m.labels)+2)
	for k, v := range m.labels {
		out[k] = v
	}
	for k, v := range m.gauges {
		out[k] = v
	}
	for k, v := range m.counters {
		out[k] = v
	}
	out["started_at"] = m.startTime.UTC().Format(time.RFC3339)
	out["uptime_seconds"] = time.Since(m.startTime).Seconds()
	return out
}

// Reset clears all values. Uptime keeps counting from construction.
func (m *Monitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters = make(map[string]int)
	m.gauges = make(map[string]int)
	m.labels = make(map[string]string)
}
