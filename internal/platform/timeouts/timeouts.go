// Package timeouts defines shared timeout constants used by ledgerdesk
// processes.
package timeouts

import "time"

// BackendRequest caps a single REST call from the web process to the
// product backend. The session gate itself never sets a deadline; this is
// the HTTP client's policy.
const BackendRequest = 10 * time.Second

// LoadingWait bounds how long a page request waits for an in-flight profile
// fetch before the loading placeholder is rendered instead.
const LoadingWait = 1500 * time.Millisecond

// FetchRetry is the minimum delay before a failed profile fetch is retried.
const FetchRetry = 2 * time.Second

// SessionIdle evicts cached sessions that saw no requests for this long.
const SessionIdle = 30 * time.Minute

// ReadHeader limits how long an HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long an HTTP server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second

// SessionSweep is how often idle sessions and expired stored tokens are
// swept.
const SessionSweep = time.Minute
