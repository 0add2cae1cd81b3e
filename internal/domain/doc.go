// Package domain defines the core domain types and interfaces.
//
// This package contains concept-oriented files (session.go, submission.go, detail.go, etc.)
// with shared types and cross-cutting interfaces. No I/O - just contracts and value objects.
// Keeps session, dashboard, sandbox and credstore free of imports on each other.
package domain
