package observability

import "go.uber.org/zap"

// Re-exported zap field constructors so callers outside the HTTP layer do
// not import zap directly for log fields.
//
//nolint:gochecknoglobals // Function aliases, not mutable state
var (
	String   = zap.String
	Int      = zap.Int
	Int64    = zap.Int64
	Bool     = zap.Bool
	Float64  = zap.Float64
	Duration = zap.Duration
	Error    = zap.Error
)
