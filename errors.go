package paintmatch

import "errors"

var (
	// ErrInvalidConfiguration is returned by Configure when a player surface
	// is missing, the resolution is not positive, or a surface does not match
	// the resolution. The caller may retry with valid inputs.
	ErrInvalidConfiguration = errors.New("paintmatch: invalid configuration")

	// ErrNotConfigured is returned when Dispatch or ComputeScore is called
	// before a successful Configure (and, for ComputeScore, Dispatch).
	ErrNotConfigured = errors.New("paintmatch: engine not configured")

	// ErrNoReferencesAvailable is returned when a reference is selected from
	// an empty pool or after a sequential pool has been completed.
	ErrNoReferencesAvailable = errors.New("paintmatch: no references available")

	// ErrNotStarted is returned by Controller.Advance before Start.
	ErrNotStarted = errors.New("paintmatch: controller not started")

	// ErrKernelUnavailable is returned when a kernel has no usable device,
	// for example when no GPU adapter is present.
	ErrKernelUnavailable = errors.New("paintmatch: difference kernel unavailable")

	// ErrBufferMismatch is returned when a kernel is handed a difference
	// buffer it did not allocate.
	ErrBufferMismatch = errors.New("paintmatch: difference buffer belongs to another kernel")

	// ErrBufferReleased is returned when operating on a released buffer.
	ErrBufferReleased = errors.New("paintmatch: difference buffer has been released")
)
