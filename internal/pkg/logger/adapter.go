package logger

import "wallet_state/internal/app/port"

// slogAdapter implements port.Logger on top of the package-level helpers.
type slogAdapter struct {
	attrs []any
}

// NewSlogAdapter returns a port.Logger backed by the process logger.
func NewSlogAdapter() port.Logger {
	return &slogAdapter{}
}

// With returns an adapter that adds attrs to every entry.
func (a *slogAdapter) With(attrs ...any) port.Logger {
	merged := make([]any, 0, len(a.attrs)+len(attrs))
	merged = append(merged, a.attrs...)
	merged = append(merged, attrs...)
	return &slogAdapter{attrs: merged}
}

func (a *slogAdapter) args(args []any) []any {
	if len(a.attrs) == 0 {
		return args
	}
	return append(append([]any{}, a.attrs...), args...)
}

func (a *slogAdapter) Info(msg string, args ...any)  { Info(msg, a.args(args)...) }
func (a *slogAdapter) Debug(msg string, args ...any) { Debug(msg, a.args(args)...) }
func (a *slogAdapter) Warn(msg string, args ...any)  { Warn(msg, a.args(args)...) }
func (a *slogAdapter) Error(msg string, args ...any) { Error(msg, a.args(args)...) }
