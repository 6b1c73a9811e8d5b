//go:build !nogpu

package gpu

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/paintmatch"
)

// createNoopDevice creates a noop device and queue for testing.
// Returns the device, queue, and a cleanup function.
func createNoopDevice(t *testing.T) (hal.Device, hal.Queue, func()) {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	cleanup := func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
	return openDev.Device, openDev.Queue, cleanup
}

// newNoopKernel returns a kernel bound to a noop device as a shared device.
func newNoopKernel(t *testing.T) *Kernel {
	t.Helper()
	device, queue, cleanup := createNoopDevice(t)
	k := &Kernel{}
	k.mu.Lock()
	err := k.useDevice(device, queue, true)
	k.mu.Unlock()
	if err != nil {
		cleanup()
		t.Fatalf("useDevice failed: %v", err)
	}
	t.Cleanup(func() {
		k.Close()
		cleanup()
	})
	return k
}

type halProvider struct {
	device hal.Device
	queue  hal.Queue
}

func (p halProvider) HalDevice() any { return p.device }
func (p halProvider) HalQueue() any  { return p.queue }

func testParams(r int) paintmatch.KernelParams {
	pc, tc := paintmatch.NewColorSurface(r), paintmatch.NewColorSurface(r)
	ph, th := paintmatch.NewHeightSurface(r), paintmatch.NewHeightSurface(r)
	tc.Fill(paintmatch.White)
	th.Fill(1)
	return paintmatch.KernelParams{
		PlayerColor: pc, TargetColor: tc,
		PlayerHeight: ph, TargetHeight: th,
		Difficulty: 1, Resolution: r,
	}
}

func TestKernelPipelineCreated(t *testing.T) {
	k := newNoopKernel(t)
	if k.Name() != "wgpu" {
		t.Errorf("Name() = %q, want wgpu", k.Name())
	}
	if k.shader == nil || k.bindLayout == nil || k.pipeLayout == nil || k.pipeline == nil {
		t.Error("expected pipeline objects after useDevice")
	}
	if !k.externalDevice {
		t.Error("expected externalDevice for a shared device")
	}
}

func TestKernelBufferLifecycle(t *testing.T) {
	k := newNoopKernel(t)

	buf, err := k.NewBuffer(64)
	if err != nil {
		t.Fatalf("NewBuffer failed: %v", err)
	}
	if buf.Len() != 64 {
		t.Errorf("Len() = %d, want 64", buf.Len())
	}
	if k.live != 1 {
		t.Errorf("live = %d, want 1", k.live)
	}

	b := buf.(*differenceBuffer)
	if b.bindGroup == nil || b.diff == nil || b.staging == nil || b.params == nil {
		t.Error("expected device buffers and bind group")
	}

	buf.Release()
	buf.Release()
	if k.live != 0 {
		t.Errorf("live = %d after Release, want 0", k.live)
	}
	if b.staging != nil || b.bindGroup != nil {
		t.Error("device resources not destroyed on Release")
	}
}

func TestKernelNewBufferInvalid(t *testing.T) {
	k := newNoopKernel(t)
	if _, err := k.NewBuffer(0); !errors.Is(err, paintmatch.ErrInvalidConfiguration) {
		t.Errorf("NewBuffer(0) = %v, want ErrInvalidConfiguration", err)
	}

	var uninit Kernel
	if _, err := uninit.NewBuffer(16); !errors.Is(err, paintmatch.ErrKernelUnavailable) {
		t.Errorf("NewBuffer on an uninitialized kernel = %v, want ErrKernelUnavailable", err)
	}
}

func TestKernelDispatchAndRead(t *testing.T) {
	k := newNoopKernel(t)
	const r = 20
	buf, err := k.NewBuffer(r * r)
	if err != nil {
		t.Fatal(err)
	}
	defer buf.Release()

	dst := make([]float32, r*r)
	if err := buf.Read(context.Background(), dst); !errors.Is(err, errNoDispatch) {
		t.Errorf("Read before Dispatch = %v, want errNoDispatch", err)
	}

	if err := k.Dispatch(buf, testParams(r)); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	b := buf.(*differenceBuffer)
	if !b.pending {
		t.Error("expected a pending submission after Dispatch")
	}
	if err := buf.Read(context.Background(), dst); err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if b.pending || b.cmdBuf != nil {
		t.Error("submission not finished after Read")
	}
	// Reading again without a new dispatch re-reads the staging buffer.
	if err := buf.Read(context.Background(), dst); err != nil {
		t.Fatalf("second Read failed: %v", err)
	}

	// A second dispatch supersedes one that was never read.
	if err := k.Dispatch(buf, testParams(r)); err != nil {
		t.Fatal(err)
	}
	if err := k.Dispatch(buf, testParams(r)); err != nil {
		t.Fatalf("Dispatch over a pending dispatch failed: %v", err)
	}
}

func TestKernelDispatchErrors(t *testing.T) {
	k := newNoopKernel(t)
	other := newNoopKernel(t)

	foreign, err := other.NewBuffer(16)
	if err != nil {
		t.Fatal(err)
	}
	defer foreign.Release()
	if err := k.Dispatch(foreign, testParams(4)); !errors.Is(err, paintmatch.ErrBufferMismatch) {
		t.Errorf("foreign buffer: %v, want ErrBufferMismatch", err)
	}

	buf, err := k.NewBuffer(16)
	if err != nil {
		t.Fatal(err)
	}
	if err := k.Dispatch(buf, testParams(8)); !errors.Is(err, paintmatch.ErrInvalidConfiguration) {
		t.Errorf("wrong resolution: %v, want ErrInvalidConfiguration", err)
	}
	p := testParams(4)
	p.PlayerHeight = nil
	if err := k.Dispatch(buf, p); !errors.Is(err, paintmatch.ErrInvalidConfiguration) {
		t.Errorf("nil binding: %v, want ErrInvalidConfiguration", err)
	}

	buf.Release()
	if err := k.Dispatch(buf, testParams(4)); !errors.Is(err, paintmatch.ErrBufferReleased) {
		t.Errorf("released buffer: %v, want ErrBufferReleased", err)
	}
	if err := buf.Read(context.Background(), make([]float32, 16)); !errors.Is(err, paintmatch.ErrBufferReleased) {
		t.Errorf("Read released buffer: %v, want ErrBufferReleased", err)
	}
}

func TestKernelReadMapsStaging(t *testing.T) {
	k := newNoopKernel(t)
	const r = 2
	buf, err := k.NewBuffer(r * r)
	if err != nil {
		t.Fatal(err)
	}
	defer buf.Release()
	if err := k.Dispatch(buf, testParams(r)); err != nil {
		t.Fatal(err)
	}

	// The noop backend does not run shaders; stand in for the copy pass.
	want := []float32{0, 0.25, 0.5, 1}
	b := buf.(*differenceBuffer)
	if err := b.queue.WriteBuffer(b.staging, 0, packFloats(nil, want)); err != nil {
		t.Fatal(err)
	}

	got := make([]float32, r*r)
	if err := buf.Read(context.Background(), got); err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("value %d = %v, want %v", i, got[i], want[i])
		}
	}
	if b.submission == 0 {
		t.Error("expected a queue submission index after Dispatch")
	}
}

func TestKernelReadCanceledContext(t *testing.T) {
	k := newNoopKernel(t)
	buf, err := k.NewBuffer(16)
	if err != nil {
		t.Fatal(err)
	}
	defer buf.Release()
	if err := k.Dispatch(buf, testParams(4)); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := buf.Read(ctx, make([]float32, 16)); !errors.Is(err, context.Canceled) {
		t.Errorf("Read = %v, want context.Canceled", err)
	}
	if err := buf.Read(context.Background(), make([]float32, 16)); err != nil {
		t.Errorf("Read after canceled attempt = %v", err)
	}
}

func TestKernelSetDeviceProvider(t *testing.T) {
	k := newNoopKernel(t)

	if err := k.SetDeviceProvider("not a provider"); err == nil {
		t.Error("expected error for provider without HAL types")
	}
	if err := k.SetDeviceProvider(halProvider{}); err == nil {
		t.Error("expected error for nil HAL device")
	}

	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()
	defer k.Close() // before the shared device goes away

	buf, err := k.NewBuffer(16)
	if err != nil {
		t.Fatal(err)
	}
	err = k.SetDeviceProvider(halProvider{device: device, queue: queue})
	if err == nil || !strings.Contains(err.Error(), "still allocated") {
		t.Errorf("SetDeviceProvider with live buffers = %v, want error", err)
	}
	buf.Release()

	if err := k.SetDeviceProvider(halProvider{device: device, queue: queue}); err != nil {
		t.Fatalf("SetDeviceProvider failed: %v", err)
	}
	if k.device != device || k.pipeline == nil {
		t.Error("kernel did not switch to the shared device")
	}
}

func TestKernelImplementsLoggerSetter(t *testing.T) {
	var k any = &Kernel{}
	if _, ok := k.(interface{ SetLogger(*slog.Logger) }); !ok {
		t.Error("Kernel does not implement SetLogger")
	}
}

func TestSetLoggerTagsKernel(t *testing.T) {
	var out strings.Builder
	k := &Kernel{}
	k.SetLogger(slog.New(slog.NewTextHandler(&out, nil)))
	defer k.SetLogger(nil)

	slogger().Info("kernel ready")
	if !strings.Contains(out.String(), "kernel=wgpu") {
		t.Errorf("log output %q lacks kernel=wgpu", out.String())
	}

	k.SetLogger(nil)
	if slogger().Enabled(context.Background(), slog.LevelError) {
		t.Error("nil logger should discard")
	}
}

func TestDifferenceShaderCompilation(t *testing.T) {
	if differenceShaderSource == "" {
		t.Fatal("difference shader source is empty")
	}
	if !strings.Contains(differenceShaderSource, "@workgroup_size(8, 8, 1)") {
		t.Errorf("shader workgroup size must match paintmatch.WorkgroupSize = %d", paintmatch.WorkgroupSize)
	}

	words, err := compileSPIRV(differenceShaderSource)
	if err != nil {
		if strings.Contains(err.Error(), "not yet implemented") || strings.Contains(err.Error(), "not supported") {
			t.Skipf("Skipping: naga feature not yet implemented: %v", err)
		}
		t.Fatalf("failed to compile difference shader: %v", err)
	}
	if len(words) == 0 {
		t.Fatal("SPIR-V output is empty")
	}
	// SPIR-V magic number.
	if words[0] != 0x07230203 {
		t.Errorf("invalid SPIR-V magic: 0x%08X, want 0x07230203", words[0])
	}
}

func TestCheckParams(t *testing.T) {
	if err := checkParams(testParams(4), 16); err != nil {
		t.Errorf("valid params: %v", err)
	}
	if err := checkParams(testParams(4), 15); !errors.Is(err, paintmatch.ErrInvalidConfiguration) {
		t.Errorf("size mismatch: %v", err)
	}
	p := testParams(4)
	p.TargetColor = paintmatch.NewColorSurface(8)
	if err := checkParams(p, 16); !errors.Is(err, paintmatch.ErrInvalidConfiguration) {
		t.Errorf("surface size mismatch: %v", err)
	}
}
