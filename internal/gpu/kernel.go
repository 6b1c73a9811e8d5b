//go:build !nogpu

package gpu

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/paintmatch"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// Kernel computes per-pixel differences on the GPU using wgpu/hal compute
// shaders. It implements paintmatch.DifferenceKernel.
type Kernel struct {
	mu sync.Mutex

	instance hal.Instance
	device   hal.Device
	queue    hal.Queue

	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.ComputePipeline

	live           int  // buffers allocated and not yet released
	externalDevice bool // true when using shared device (don't destroy on Close)
}

var (
	_ paintmatch.DifferenceKernel    = (*Kernel)(nil)
	_ paintmatch.DeviceProviderAware = (*Kernel)(nil)
)

// Name returns "wgpu".
func (k *Kernel) Name() string { return "wgpu" }

// Init opens a Vulkan device and builds the compute pipeline. Init fails if
// no adapter is available, in which case engines fall back to the software
// kernel.
func (k *Kernel) Init() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.pipeline != nil {
		return nil
	}
	if err := k.initGPU(); err != nil {
		k.destroyPipeline()
		k.destroyDevice()
		return fmt.Errorf("gpu: init: %w: %w", paintmatch.ErrKernelUnavailable, err)
	}
	return nil
}

// Close destroys the pipeline and, unless the device is shared, the device
// and instance. Buffers must be released first.
func (k *Kernel) Close() {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.live > 0 {
		slogger().Warn("gpu: closing kernel with live difference buffers", "buffers", k.live)
	}
	k.destroyPipeline()
	k.destroyDevice()
}

// SetLogger receives the logger propagated by paintmatch.SetLogger.
func (k *Kernel) SetLogger(l *slog.Logger) {
	setLogger(l)
}

// SetDeviceProvider switches the kernel to a shared GPU device from an
// external provider (e.g., gogpu). The provider must implement
// HalDevice() any and HalQueue() any returning hal.Device and hal.Queue.
// It fails while difference buffers allocated on the previous device are
// still alive.
func (k *Kernel) SetDeviceProvider(provider any) error {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return fmt.Errorf("gpu: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return fmt.Errorf("gpu: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return fmt.Errorf("gpu: provider HalQueue is not hal.Queue")
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	if err := k.useDevice(device, queue, true); err != nil {
		return err
	}
	slogger().Info("gpu: switched to shared GPU device")
	return nil
}

// useDevice replaces the current device. Must be called with k.mu held.
func (k *Kernel) useDevice(device hal.Device, queue hal.Queue, external bool) error {
	if k.live > 0 {
		return fmt.Errorf("gpu: %d difference buffers still allocated on the current device", k.live)
	}
	k.destroyPipeline()
	k.destroyDevice()

	k.device = device
	k.queue = queue
	k.externalDevice = external
	if err := k.createPipeline(); err != nil {
		k.destroyPipeline()
		return fmt.Errorf("gpu: create pipeline: %w", err)
	}
	return nil
}

func (k *Kernel) initGPU() error {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return fmt.Errorf("vulkan backend not available")
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return fmt.Errorf("create instance: %w", err)
	}
	k.instance = instance
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		return fmt.Errorf("no GPU adapters found")
	}
	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}
	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		return fmt.Errorf("open device: %w", err)
	}
	k.device = openDev.Device
	k.queue = openDev.Queue
	if err := k.createPipeline(); err != nil {
		k.destroyPipeline()
		return fmt.Errorf("create pipeline: %w", err)
	}
	slogger().Info("gpu: difference kernel initialized", "adapter", selected.Info.Name)
	return nil
}

// createShader prefers SPIR-V compiled by naga and falls back to handing
// the WGSL source to the backend.
func (k *Kernel) createShader() (hal.ShaderModule, error) {
	words, err := compileSPIRV(differenceShaderSource)
	if err == nil {
		mod, err := k.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
			Label:  "difference",
			Source: hal.ShaderSource{SPIRV: words},
		})
		if err == nil {
			return mod, nil
		}
		slogger().Debug("gpu: SPIR-V shader module rejected, using WGSL", "err", err)
	} else {
		slogger().Debug("gpu: naga compile failed, using WGSL", "err", err)
	}
	return k.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "difference",
		Source: hal.ShaderSource{WGSL: differenceShaderSource},
	})
}

func (k *Kernel) createPipeline() error {
	shader, err := k.createShader()
	if err != nil {
		return fmt.Errorf("compile difference shader: %w", err)
	}
	k.shader = shader

	storage := func(binding uint32, t gputypes.BufferBindingType) gputypes.BindGroupLayoutEntry {
		return gputypes.BindGroupLayoutEntry{
			Binding: binding, Visibility: gputypes.ShaderStageCompute,
			Buffer: &gputypes.BufferBindingLayout{Type: t},
		}
	}
	bindLayout, err := k.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "difference_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			storage(0, gputypes.BufferBindingTypeUniform),
			storage(1, gputypes.BufferBindingTypeReadOnlyStorage),
			storage(2, gputypes.BufferBindingTypeReadOnlyStorage),
			storage(3, gputypes.BufferBindingTypeReadOnlyStorage),
			storage(4, gputypes.BufferBindingTypeReadOnlyStorage),
			storage(5, gputypes.BufferBindingTypeStorage),
		},
	})
	if err != nil {
		return fmt.Errorf("create bind group layout: %w", err)
	}
	k.bindLayout = bindLayout

	pipeLayout, err := k.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label: "difference_pipe_layout", BindGroupLayouts: []hal.BindGroupLayout{k.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("create pipeline layout: %w", err)
	}
	k.pipeLayout = pipeLayout

	pipeline, err := k.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label: "difference_pipeline", Layout: k.pipeLayout,
		Compute: hal.ComputeState{Module: k.shader, EntryPoint: "main"},
	})
	if err != nil {
		return fmt.Errorf("create compute pipeline: %w", err)
	}
	k.pipeline = pipeline
	return nil
}

func (k *Kernel) destroyPipeline() {
	if k.device == nil {
		return
	}
	if k.pipeline != nil {
		k.device.DestroyComputePipeline(k.pipeline)
		k.pipeline = nil
	}
	if k.pipeLayout != nil {
		k.device.DestroyPipelineLayout(k.pipeLayout)
		k.pipeLayout = nil
	}
	if k.bindLayout != nil {
		k.device.DestroyBindGroupLayout(k.bindLayout)
		k.bindLayout = nil
	}
	if k.shader != nil {
		k.device.DestroyShaderModule(k.shader)
		k.shader = nil
	}
}

func (k *Kernel) destroyDevice() {
	if !k.externalDevice {
		if k.device != nil {
			k.device.Destroy()
		}
		if k.instance != nil {
			k.instance.Destroy()
		}
	}
	// Shared resources belong to the provider.
	k.device = nil
	k.instance = nil
	k.queue = nil
	k.externalDevice = false
}
