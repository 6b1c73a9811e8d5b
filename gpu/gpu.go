//go:build !nogpu

// Package gpu registers the wgpu difference kernel for GPU scoring.
//
// Import this package to score paintings with a wgpu/hal compute shader
// instead of the software kernel. If GPU initialization fails (no Vulkan
// adapter available), registration is skipped with a warning and engines
// fall back to the software kernel.
//
// Usage:
//
//	import _ "github.com/gogpu/paintmatch/gpu" // enable GPU scoring
package gpu

import (
	"github.com/gogpu/gpucontext"

	"github.com/gogpu/paintmatch"
	gpuimpl "github.com/gogpu/paintmatch/internal/gpu"
)

func init() {
	if err := paintmatch.RegisterKernel(&gpuimpl.Kernel{}); err != nil {
		paintmatch.Logger().Warn("GPU difference kernel not available", "err", err)
	}
}

// SetDeviceProvider configures the GPU kernel to use a shared GPU device
// from an external provider (e.g., a gogpu window). This avoids creating a
// separate GPU instance.
//
// The provider must also expose HalDevice() and HalQueue() for direct HAL
// access. Call this before the first engine is configured: the kernel
// refuses to switch devices while difference buffers are allocated.
func SetDeviceProvider(provider gpucontext.DeviceProvider) error {
	return paintmatch.SetKernelDeviceProvider(provider)
}
