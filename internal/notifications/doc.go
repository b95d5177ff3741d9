// Package notifications announces analysis outcomes over ntfy.
//
// NewService returns a no-op implementation when no topic is configured, so
// callers never branch on whether notifications are enabled. Delivery errors
// are returned to the caller, which logs them as warnings; a failed
// notification never fails a run.
package notifications
