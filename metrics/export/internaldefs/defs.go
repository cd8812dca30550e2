package internaldefs

import (
	goSession "github.com/MrEthical07/goSession"
)

// CounterDef maps an engine counter to its exported name.
type CounterDef struct {
	ID   goSession.MetricID
	Name string
	Help string
}

// HistogramDef maps an engine histogram to its exported name.
type HistogramDef struct {
	ID   goSession.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter in a stable order.
var CounterDefs = []CounterDef{
	{ID: goSession.MetricLoginSuccess, Name: "gosession_login_success_total", Help: "Logins that issued a session."},
	{ID: goSession.MetricLoginFailure, Name: "gosession_login_failure_total", Help: "Rejected logins."},
	{ID: goSession.MetricLoginRateLimited, Name: "gosession_login_rate_limited_total", Help: "Rate-limited login attempts."},
	{ID: goSession.MetricSessionCreated, Name: "gosession_session_created_total", Help: "Issued token pairs."},
	{ID: goSession.MetricSessionCreationFailed, Name: "gosession_session_creation_failed_total", Help: "Refresh tokens discarded after a failed store write."},
	{ID: goSession.MetricGateAllowAccess, Name: "gosession_gate_allow_access_total", Help: "Gated requests allowed by the access token."},
	{ID: goSession.MetricGateAllowRefresh, Name: "gosession_gate_allow_refresh_total", Help: "Gated requests allowed by the refresh fallback."},
	{ID: goSession.MetricGateReject, Name: "gosession_gate_reject_total", Help: "Gated requests rejected as expired or invalid."},
	{ID: goSession.MetricGateUserNotFound, Name: "gosession_gate_user_not_found_total", Help: "Verified subjects without a user record."},
	{ID: goSession.MetricAccessExpired, Name: "gosession_access_expired_total", Help: "Access tokens rejected on expiry."},
	{ID: goSession.MetricAccessRenewed, Name: "gosession_access_renewed_total", Help: "Access tokens re-issued by the gate."},
	{ID: goSession.MetricRefreshRevoked, Name: "gosession_refresh_revoked_total", Help: "Refresh tokens without a store record."},
	{ID: goSession.MetricRefreshRateLimited, Name: "gosession_refresh_rate_limited_total", Help: "Rate-limited refresh-path attempts."},
	{ID: goSession.MetricStoreUnavailable, Name: "gosession_store_unavailable_total", Help: "Refresh store I/O failures."},
	{ID: goSession.MetricLogout, Name: "gosession_logout_total", Help: "Single-token logouts."},
	{ID: goSession.MetricLogoutAll, Name: "gosession_logout_all_total", Help: "Logout-all operations."},
}

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: goSession.MetricGateLatency, Name: "gosession_gate_latency_seconds", Help: "Request gate latency."},
}

// AuditDroppedName is the counter for audit events lost to backpressure.
const AuditDroppedName = "gosession_audit_dropped_total"

// AuditDroppedHelp describes [AuditDroppedName].
const AuditDroppedHelp = "Dropped audit events due to dispatcher backpressure."

// UpperBounds are the finite bucket bounds in seconds; the last engine
// bucket is +Inf.
var UpperBounds = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5}

// HistogramBoundSuffix names each bucket for exporters that flatten
// histograms into gauges.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets copies raw into a fixed-size array, zero-filling.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets turns per-bucket counts into running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
