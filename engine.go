package securelogin

import (
	"github.com/gourab-0/secure-login-system/internal/rate"
	"github.com/gourab-0/secure-login-system/password"
)

// Engine evaluates login attempts and manages two-factor enrollment. It
// holds no mutable authentication state; construct it once through
// [Builder.Build] and share it across goroutines.
type Engine struct {
	config  Config
	hasher  password.Hasher
	decoy   password.Credential
	totp    *totpManager
	limiter *rate.Limiter
	audit   *auditDispatcher
	metrics *Metrics
	users   UserProvider
}

// Close flushes the audit dispatcher. Safe to call on a nil engine.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped returns how many audit events were discarded because the
// buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot copies the current counter values.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}
