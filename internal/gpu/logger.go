//go:build !nogpu

package gpu

import (
	"log/slog"
	"sync/atomic"
)

var discard = slog.New(slog.DiscardHandler)

// kernelLogger is the logger used by the wgpu kernel and its buffers.
var kernelLogger atomic.Pointer[slog.Logger]

func init() {
	kernelLogger.Store(discard)
}

// slogger returns the kernel logger. Records carry kernel=wgpu.
func slogger() *slog.Logger { return kernelLogger.Load() }

// setLogger installs l, tagged with the kernel name. A nil l discards.
func setLogger(l *slog.Logger) {
	if l == nil {
		kernelLogger.Store(discard)
		return
	}
	kernelLogger.Store(l.With("kernel", "wgpu"))
}
