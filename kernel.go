package paintmatch

import (
	"context"
	"errors"
	"sync"
)

// WorkgroupSize is the edge length of a difference kernel workgroup.
// Must match @workgroup_size in difference.wgsl.
const WorkgroupSize = 8

// WorkgroupCount returns the number of workgroups along one dimension
// needed to cover resolution pixels: ceil(resolution / WorkgroupSize).
func WorkgroupCount(resolution int) uint32 {
	if resolution <= 0 {
		return 0
	}
	return uint32((resolution + WorkgroupSize - 1) / WorkgroupSize) //nolint:gosec // resolution is positive
}

// KernelParams holds the bindings for one difference kernel dispatch.
// Target surfaces are borrowed read-only; the kernel never mutates any surface.
type KernelParams struct {
	PlayerColor  *ColorSurface
	TargetColor  *ColorSurface
	PlayerHeight *HeightSurface
	TargetHeight *HeightSurface

	// Difficulty scales every per-pixel difference before it is clamped to 1.
	Difficulty float32

	// Resolution is the edge length R of all four surfaces.
	Resolution int
}

// DifferenceBuffer is a linear buffer of per-pixel difference values
// allocated by a DifferenceKernel.
type DifferenceBuffer interface {
	// Len returns the number of float32 values (resolution squared).
	Len() int

	// Read waits for the most recent dispatch into the buffer to finish and
	// copies Len values into dst. This is the synchronization point with
	// the device.
	Read(ctx context.Context, dst []float32) error

	// Release frees the buffer. A dispatch still in flight is waited for
	// before the underlying memory is released. Release is idempotent.
	Release()
}

// DifferenceKernel computes per-pixel disagreement between player surfaces
// and a reference.
//
// For each pixel within the resolution, the kernel writes one value in
// [0, 1]: the mean absolute RGBA difference and the absolute height
// difference, averaged, multiplied by the difficulty and clamped to 1.
// Threads of edge workgroups that fall outside the resolution are no-ops.
//
// Implementations are provided by the root package (SoftwareKernel) and by
// GPU backend packages. Users opt in to GPU scoring via blank import:
//
//	import _ "github.com/gogpu/paintmatch/gpu" // enables GPU scoring
type DifferenceKernel interface {
	// Name returns the kernel name (e.g., "software", "wgpu").
	Name() string

	// Init initializes device resources. Called once during registration.
	Init() error

	// Close releases device resources.
	Close()

	// NewBuffer allocates a difference buffer of n float32 values.
	NewBuffer(n int) (DifferenceBuffer, error)

	// Dispatch enqueues the kernel over ceil(R/8) x ceil(R/8) workgroups,
	// writing into buf. It does not wait for the work to finish.
	Dispatch(buf DifferenceBuffer, p KernelParams) error
}

// DeviceProviderAware is an optional interface for kernels that can share
// GPU resources with an external provider (e.g., a gogpu window).
type DeviceProviderAware interface {
	SetDeviceProvider(provider any) error
}

var (
	kernelMu sync.RWMutex
	kernel   DifferenceKernel
)

// RegisterKernel registers a difference kernel used by engines created
// without WithKernel.
//
// Only one kernel can be registered. Subsequent calls replace the previous one
// and close it. The kernel's Init() method is called during registration.
// If Init() fails, the kernel is not registered and the error is returned.
func RegisterKernel(k DifferenceKernel) error {
	if k == nil {
		return errors.New("paintmatch: kernel must not be nil")
	}
	if err := k.Init(); err != nil {
		return err
	}
	propagateLogger(k, Logger())
	kernelMu.Lock()
	old := kernel
	kernel = k
	kernelMu.Unlock()
	if old != nil && old != k {
		old.Close()
	}
	Logger().Info("paintmatch: kernel registered", "kernel", k.Name())
	return nil
}

// RegisteredKernel returns the currently registered kernel, or nil if none.
func RegisteredKernel() DifferenceKernel {
	kernelMu.RLock()
	k := kernel
	kernelMu.RUnlock()
	return k
}

// SetKernelDeviceProvider passes a device provider to the registered
// kernel, enabling GPU device sharing. If no kernel is registered
// or it doesn't support device sharing, this is a no-op.
func SetKernelDeviceProvider(provider any) error {
	k := RegisteredKernel()
	if k == nil {
		return nil
	}
	if dpa, ok := k.(DeviceProviderAware); ok {
		return dpa.SetDeviceProvider(provider)
	}
	return nil
}

var softwareKernel = sync.OnceValue(func() *SoftwareKernel {
	k := NewSoftwareKernel(0)
	_ = k.Init()
	return k
})

// defaultKernel returns the registered kernel, falling back to the shared
// software kernel.
func defaultKernel() DifferenceKernel {
	if k := RegisteredKernel(); k != nil {
		return k
	}
	Logger().Debug("paintmatch: no kernel registered, using software kernel")
	return softwareKernel()
}
