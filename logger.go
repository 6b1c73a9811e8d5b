package paintmatch

import (
	"log/slog"
	"sync/atomic"
)

// silent is the logger in effect until SetLogger installs another one.
var silent = slog.New(slog.DiscardHandler)

var current atomic.Pointer[slog.Logger]

func init() {
	current.Store(silent)
}

// SetLogger routes paintmatch diagnostics to l and hands l to the
// registered kernel. A nil l silences logging again. It may be called at
// any time from any goroutine.
//
// Records paintmatch emits, by level:
//   - Debug: buffer allocation, every dispatch, every computed score
//   - Info: kernel registration, round starts, pool completion
//   - Warn: a GPU kernel that failed to start, a round the recorder lost
//
// A host that already logs through slog passes its own logger, usually
// scoped to the component:
//
//	paintmatch.SetLogger(slog.Default().With("component", "scoring"))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = silent
	}
	current.Store(l)

	if k := RegisteredKernel(); k != nil {
		propagateLogger(k, l)
	}
}

// Logger returns the logger set by SetLogger. Backend packages log through
// it so they follow the host's configuration.
func Logger() *slog.Logger {
	return current.Load()
}

// propagateLogger gives l to k when k accepts one.
func propagateLogger(k DifferenceKernel, l *slog.Logger) {
	if ls, ok := k.(interface{ SetLogger(*slog.Logger) }); ok {
		ls.SetLogger(l)
	}
}
