package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Upstream clients return these
// (optionally wrapped) so services can translate them into domain errors.
//
// These represent factual states reported by an upstream, not validation
// failures:
// - ErrNotFound: the upstream has no record (e.g. user lookup by email)
// - ErrConflict: the resource already exists (e.g. channel name taken)
// - ErrUnavailable: the upstream is unreachable or timed out
//
// For validation errors (bad input, missing fields), use pkg/domain-errors
// directly.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("unavailable")
)
