// Package sandbox is the HTTP client for the analysis backend's REST API.
//
// Every call is rate limited, passes through a circuit breaker that trips on
// transport errors and 5xx answers only, and carries the caller's
// RequestContext and correlation ID. Non-2xx answers become *errors.Error
// values built from the backend's {"detail": ...} body.
package sandbox
