// Package preflight provides readiness checks for the media tools, hosted
// APIs, and filesystem paths that starreview depends on.
//
// The CLI "starreview doctor" command runs every check and exits non-zero
// when a required one fails. "starreview analyze" runs RunAll before the
// first video so a missing directory or a bad key fails fast.
//
// Hosted checks are gated by their API key; without a key the feature is
// reported as disabled.
package preflight
