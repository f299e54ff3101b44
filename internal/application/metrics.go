package application

import "expvar"

// Counters published under /debug/vars as "auth".
var (
	metrics = expvar.NewMap("auth")

	mRegistrations     = newCounter("registrations")
	mActivations       = newCounter("activations")
	mLoginsOK          = newCounter("logins_ok")
	mLoginsFailed      = newCounter("logins_failed")
	mResetRequests     = newCounter("reset_requests")
	mResetsCompleted   = newCounter("resets_completed")
	mPasswordChanges   = newCounter("password_changes")
	mDispatchFailures  = newCounter("dispatch_failures")
	mSessionsRefreshed = newCounter("sessions_refreshed")
)

func newCounter(name string) *expvar.Int {
	v := new(expvar.Int)
	metrics.Set(name, v)
	return v
}
