// Package logx binds shell identifiers to pslog loggers.
package logx

import (
	"context"
	"strings"

	"pkt.systems/pslog"

	"github.com/jakebf/layershell/core"
	"github.com/jakebf/layershell/platform"
)

type contextKey int

const windowKey contextKey = iota

// Ctx returns the logger bound to the provided context.
func Ctx(ctx context.Context) pslog.Logger {
	return pslog.Ctx(ctx)
}

// WithWindow annotates the logger with a window id.
func WithWindow(log pslog.Logger, id core.WindowID) pslog.Logger {
	return log.With("window", uint64(id))
}

// WithSurface annotates the logger with a window id and its surface handle.
func WithSurface(log pslog.Logger, id core.WindowID, surface platform.SurfaceID) pslog.Logger {
	return WithWindow(log, id).With("surface", uint64(surface))
}

// WindowCtx returns the context logger annotated with the window id, unless
// the context already carries that window marker.
func WindowCtx(ctx context.Context, id core.WindowID) pslog.Logger {
	log := pslog.Ctx(ctx)
	if current, ok := ctx.Value(windowKey).(core.WindowID); ok && current == id {
		return log
	}
	return WithWindow(log, id)
}

// ContextWithWindowLogger attaches the logger and window marker to the
// context.
func ContextWithWindowLogger(ctx context.Context, log pslog.Logger, id core.WindowID) context.Context {
	ctx = pslog.ContextWithLogger(ctx, WithWindow(log, id))
	return context.WithValue(ctx, windowKey, id)
}

// ParseLevel maps a config level name to a pslog level. Unknown names map to
// info.
func ParseLevel(name string) pslog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "trace":
		return pslog.TraceLevel
	case "debug":
		return pslog.DebugLevel
	case "warn", "warning":
		return pslog.WarnLevel
	case "error":
		return pslog.ErrorLevel
	}
	return pslog.InfoLevel
}
