package securelogin

import "sync/atomic"

// MetricID identifies one engine counter.
type MetricID uint16

const (
	// MetricLoginSuccess counts fully authenticated attempts.
	MetricLoginSuccess MetricID = iota
	// MetricLoginFailure counts attempts rejected for bad credentials.
	MetricLoginFailure
	// MetricLoginRateLimited counts attempts rejected by the throttle.
	MetricLoginRateLimited
	// MetricTwoFactorRequired counts password-valid attempts awaiting a code.
	MetricTwoFactorRequired
	// MetricTwoFactorSuccess counts accepted one-time codes.
	MetricTwoFactorSuccess
	// MetricTwoFactorFailure counts rejected one-time codes.
	MetricTwoFactorFailure
	// MetricTwoFactorReplay counts codes rejected for counter reuse.
	MetricTwoFactorReplay
	// MetricTwoFactorEnabled counts successful enrollments.
	MetricTwoFactorEnabled
	// MetricTwoFactorDisabled counts enrollment removals.
	MetricTwoFactorDisabled
	// MetricRegisterSuccess counts created accounts.
	MetricRegisterSuccess
	// MetricRegisterDuplicate counts registrations rejected for an existing username.
	MetricRegisterDuplicate
	// MetricCredentialUpgraded counts transparent re-hashes on login.
	MetricCredentialUpgraded
	metricIDCount
)

const (
	cacheLineSize = 64
)

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics is a fixed-size atomic counter registry. All methods are safe
// for concurrent use; a nil or disabled registry is a no-op.
type Metrics struct {
	enabled  bool
	counters [metricIDCount]paddedCounter
}

// MetricsSnapshot is a point-in-time copy of all counters.
type MetricsSnapshot struct {
	Counters map[MetricID]uint64
}

// NewMetrics creates the counter registry.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{enabled: cfg.Enabled}
}

// Enabled reports whether counters are being recorded.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// Inc adds one to the counter.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Value reads one counter.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot copies all counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}

	s := MetricsSnapshot{
		Counters: make(map[MetricID]uint64, int(metricIDCount)),
	}
	for id := MetricID(0); id < metricIDCount; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}
	return s
}
