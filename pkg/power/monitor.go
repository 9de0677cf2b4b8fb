package power

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// DefaultThresholds are the charge levels that trigger a warning,
// checked highest first.
var DefaultThresholds = []int{20, 10, 5}

// DefaultInterval throttles how often the battery is actually read.
const DefaultInterval = 300 * time.Second

// Monitor raises a spoken warning the first time charge falls to each
// threshold. All thresholds re-arm once charge recovers above the
// highest one.
type Monitor struct {
	source     Source
	interval   time.Duration
	thresholds []int
	logger     *slog.Logger

	mu        sync.Mutex
	lastCheck time.Time
	alerted   map[int]bool
}

// MonitorOption configures a Monitor.
type MonitorOption func(*Monitor)

// WithInterval overrides the check throttle.
func WithInterval(d time.Duration) MonitorOption {
	return func(m *Monitor) {
		if d > 0 {
			m.interval = d
		}
	}
}

// WithThresholds overrides the warning thresholds.
func WithThresholds(thresholds ...int) MonitorOption {
	return func(m *Monitor) {
		if len(thresholds) > 0 {
			m.thresholds = thresholds
		}
	}
}

// NewMonitor creates a monitor over the given source. The throttle
// window starts at construction, so the first read happens one interval
// later.
func NewMonitor(source Source, opts ...MonitorOption) *Monitor {
	m := &Monitor{
		source:     source,
		interval:   DefaultInterval,
		thresholds: DefaultThresholds,
		logger:     slog.Default().With("component", "power.monitor"),
		lastCheck:  time.Now(),
		alerted:    make(map[int]bool),
	}
	for _, opt := range opts {
		opt(m)
	}

	sorted := make([]int, len(m.thresholds))
	copy(sorted, m.thresholds)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))
	m.thresholds = sorted

	return m
}

// Check reads the battery if the throttle window has passed and returns
// a warning to speak, or "" when nothing is due. Read failures are
// logged and swallowed; machines without a battery stay silent.
func (m *Monitor) Check(now time.Time) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if now.Sub(m.lastCheck) < m.interval {
		return ""
	}
	m.lastCheck = now

	percent, err := m.source.Percent()
	if err != nil {
		m.logger.Debug("battery read failed", "source", m.source.Name(), "error", err)
		return ""
	}

	for _, threshold := range m.thresholds {
		if percent <= threshold && !m.alerted[threshold] {
			m.alerted[threshold] = true
			m.logger.Warn("battery low", "percent", percent, "threshold", threshold)
			return fmt.Sprintf("Battery at %d%%. Please charge soon.", percent)
		}
	}

	if percent > m.thresholds[0] {
		for t := range m.alerted {
			m.alerted[t] = false
		}
	}
	return ""
}
