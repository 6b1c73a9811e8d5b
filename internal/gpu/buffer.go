//go:build !nogpu

package gpu

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/paintmatch"
)

const (
	// submitTimeout bounds a wait for a submitted dispatch when the caller
	// gives no deadline.
	submitTimeout = 5 * time.Second

	// pollInterval is how often a waiting Read polls the queue.
	pollInterval = 100 * time.Microsecond
)

// errNoDispatch is returned by Read before the first Dispatch.
var errNoDispatch = errors.New("gpu: difference buffer has not been dispatched")

// differenceBuffer owns every device buffer one dispatch binds: the
// parameter uniform, the four input surfaces, the difference output and the
// staging buffer it is copied into for readback.
type differenceBuffer struct {
	mu     sync.Mutex
	owner  *Kernel
	device hal.Device
	queue  hal.Queue
	n      int

	params       hal.Buffer
	playerColor  hal.Buffer
	targetColor  hal.Buffer
	playerHeight hal.Buffer
	targetHeight hal.Buffer
	diff         hal.Buffer
	staging      hal.Buffer
	bindGroup    hal.BindGroup

	scratch  []byte
	readback []byte

	cmdBuf     hal.CommandBuffer
	submission uint64 // queue submission index of the last dispatch
	pending    bool   // submitted, completion not observed yet
	ready      bool   // staging holds the last dispatch's results
	released   bool
}

var _ paintmatch.DifferenceBuffer = (*differenceBuffer)(nil)

// NewBuffer allocates device buffers for n difference values.
func (k *Kernel) NewBuffer(n int) (paintmatch.DifferenceBuffer, error) {
	if n <= 0 {
		return nil, fmt.Errorf("gpu: buffer size %d: %w", n, paintmatch.ErrInvalidConfiguration)
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.device == nil || k.pipeline == nil {
		return nil, fmt.Errorf("gpu: kernel not initialized: %w", paintmatch.ErrKernelUnavailable)
	}

	b := &differenceBuffer{owner: k, device: k.device, queue: k.queue, n: n}
	if err := b.create(k); err != nil {
		b.destroy()
		return nil, err
	}
	k.live++
	slogger().Debug("gpu: difference buffer allocated", "values", n, "bytes", b.valueBytes())
	return b, nil
}

func (b *differenceBuffer) valueBytes() uint64 { return uint64(b.n) * 4 } //nolint:gosec // n is positive

func (b *differenceBuffer) create(k *Kernel) error {
	size := b.valueBytes()
	input := gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst

	descs := []struct {
		dst   *hal.Buffer
		label string
		size  uint64
		usage gputypes.BufferUsage
	}{
		{&b.params, "difference_params", paramsSize, gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst},
		{&b.playerColor, "difference_player_color", size, input},
		{&b.targetColor, "difference_target_color", size, input},
		{&b.playerHeight, "difference_player_height", size, input},
		{&b.targetHeight, "difference_target_height", size, input},
		{&b.diff, "difference_output", size, gputypes.BufferUsageStorage | gputypes.BufferUsageCopySrc},
		{&b.staging, "difference_staging", size, gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst},
	}
	for _, d := range descs {
		buf, err := b.device.CreateBuffer(&hal.BufferDescriptor{Label: d.label, Size: d.size, Usage: d.usage})
		if err != nil {
			return fmt.Errorf("gpu: create %s buffer: %w", d.label, err)
		}
		*d.dst = buf
	}

	binding := func(i uint32, buf hal.Buffer, size uint64) gputypes.BindGroupEntry {
		return gputypes.BindGroupEntry{Binding: i, Resource: gputypes.BufferBinding{Buffer: buf.NativeHandle(), Offset: 0, Size: size}}
	}
	bg, err := b.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label: "difference_bind", Layout: k.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			binding(0, b.params, paramsSize),
			binding(1, b.playerColor, size),
			binding(2, b.targetColor, size),
			binding(3, b.playerHeight, size),
			binding(4, b.targetHeight, size),
			binding(5, b.diff, size),
		},
	})
	if err != nil {
		return fmt.Errorf("gpu: create bind group: %w", err)
	}
	b.bindGroup = bg
	b.readback = make([]byte, size)
	return nil
}

// Dispatch uploads the surfaces and submits one compute pass followed by a
// copy into the staging buffer. It returns once the work is submitted.
func (k *Kernel) Dispatch(buf paintmatch.DifferenceBuffer, p paintmatch.KernelParams) error {
	b, ok := buf.(*differenceBuffer)
	if !ok || b.owner != k {
		return paintmatch.ErrBufferMismatch
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.released {
		return paintmatch.ErrBufferReleased
	}
	if err := checkParams(p, b.n); err != nil {
		return err
	}
	// A dispatch that was never read is superseded.
	if b.pending {
		ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
		err := b.waitLocked(ctx)
		cancel()
		if err != nil {
			return err
		}
	}
	b.ready = false

	k.mu.Lock()
	defer k.mu.Unlock()
	if k.pipeline == nil || k.device != b.device {
		return fmt.Errorf("gpu: dispatch: kernel closed or device changed: %w", paintmatch.ErrKernelUnavailable)
	}

	if err := b.upload(p); err != nil {
		return err
	}

	groups := paintmatch.WorkgroupCount(p.Resolution)
	if err := b.submit(k, groups); err != nil {
		return err
	}
	slogger().Debug("gpu: difference dispatch submitted",
		"resolution", p.Resolution, "groups", groups, "difficulty", p.Difficulty)
	return nil
}

// upload writes the parameters and the four surfaces into their device
// buffers.
func (b *differenceBuffer) upload(p paintmatch.KernelParams) error {
	write := func(dst hal.Buffer, label string, data []byte) error {
		if err := b.queue.WriteBuffer(dst, 0, data); err != nil {
			return fmt.Errorf("gpu: upload %s: %w", label, err)
		}
		return nil
	}

	pixels := p.Resolution * p.Resolution
	if err := write(b.params, "params", packParams(uint32(p.Resolution), p.Difficulty)); err != nil { //nolint:gosec // resolution is positive
		return err
	}
	b.scratch = packColor(b.scratch, p.PlayerColor.Data(), pixels)
	if err := write(b.playerColor, "player color", b.scratch); err != nil {
		return err
	}
	b.scratch = packColor(b.scratch, p.TargetColor.Data(), pixels)
	if err := write(b.targetColor, "target color", b.scratch); err != nil {
		return err
	}
	b.scratch = packFloats(b.scratch, p.PlayerHeight.Data())
	if err := write(b.playerHeight, "player height", b.scratch); err != nil {
		return err
	}
	b.scratch = packFloats(b.scratch, p.TargetHeight.Data())
	return write(b.targetHeight, "target height", b.scratch)
}

// submit encodes and submits the pass. Must be called with both locks held.
func (b *differenceBuffer) submit(k *Kernel, groups uint32) error {
	encoder, err := k.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "difference_encoder"})
	if err != nil {
		return fmt.Errorf("gpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("difference"); err != nil {
		return fmt.Errorf("gpu: begin encoding: %w", err)
	}

	pass := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: "difference_pass"})
	pass.SetPipeline(k.pipeline)
	pass.SetBindGroup(0, b.bindGroup, nil)
	pass.Dispatch(groups, groups, 1)
	pass.End()

	encoder.CopyBufferToBuffer(b.diff, b.staging, []hal.BufferCopy{
		{SrcOffset: 0, DstOffset: 0, Size: b.valueBytes()},
	})
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("gpu: end encoding: %w", err)
	}

	index, err := b.queue.Submit([]hal.CommandBuffer{cmdBuf})
	if err != nil {
		k.device.FreeCommandBuffer(cmdBuf)
		return fmt.Errorf("gpu: submit: %w", err)
	}
	b.cmdBuf = cmdBuf
	b.submission = index
	b.pending = true
	return nil
}

func (b *differenceBuffer) Len() int { return b.n }

// Read waits for the last dispatch and copies the differences into dst
// through a mapping of the staging buffer. The wait is bounded by the
// context deadline and by five seconds. Reading again without a new
// dispatch returns the same values.
func (b *differenceBuffer) Read(ctx context.Context, dst []float32) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.released {
		return paintmatch.ErrBufferReleased
	}
	if len(dst) < b.n {
		return fmt.Errorf("gpu: read destination holds %d values, need %d", len(dst), b.n)
	}
	if b.pending {
		if err := ctx.Err(); err != nil {
			return err
		}
		waitCtx, cancel := context.WithTimeout(ctx, submitTimeout)
		err := b.waitLocked(waitCtx)
		cancel()
		if err != nil {
			return err
		}
	}
	if !b.ready {
		return errNoDispatch
	}
	if err := b.mapStaging(); err != nil {
		return err
	}
	unpackFloats(dst[:b.n], b.readback)
	return nil
}

// mapStaging copies the staging buffer into b.readback.
func (b *differenceBuffer) mapStaging() error {
	size := b.valueBytes()
	m, err := b.device.MapBuffer(b.staging, 0, size)
	if err != nil {
		return fmt.Errorf("gpu: map staging buffer: %w", err)
	}
	copy(b.readback, unsafe.Slice((*byte)(m.Ptr), size))
	if err := b.device.UnmapBuffer(b.staging); err != nil {
		return fmt.Errorf("gpu: unmap staging buffer: %w", err)
	}
	return nil
}

// waitLocked polls the queue until the pending submission completes, then
// frees its command buffer. If ctx ends first the submission stays pending.
func (b *differenceBuffer) waitLocked(ctx context.Context) error {
	if b.queue.PollCompleted() < b.submission {
		ticker := time.NewTicker(pollInterval)
		defer ticker.Stop()
		for b.queue.PollCompleted() < b.submission {
			select {
			case <-ctx.Done():
				return fmt.Errorf("gpu: wait for submission %d: %w", b.submission, ctx.Err())
			case <-ticker.C:
			}
		}
	}
	b.finishLocked()
	b.ready = true
	return nil
}

func (b *differenceBuffer) finishLocked() {
	if b.cmdBuf != nil {
		b.device.FreeCommandBuffer(b.cmdBuf)
		b.cmdBuf = nil
	}
	b.pending = false
}

// Release waits for an in-flight dispatch and destroys the device buffers.
func (b *differenceBuffer) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.released {
		return
	}
	b.released = true

	if b.pending {
		ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
		if err := b.waitLocked(ctx); err != nil {
			slogger().Warn("gpu: releasing difference buffer with unfinished dispatch", "err", err)
		}
		cancel()
	}

	k := b.owner
	k.mu.Lock()
	defer k.mu.Unlock()
	k.live--
	if k.device != b.device {
		// The device is gone; its resources went with it.
		return
	}
	b.finishLocked()
	b.destroy()
}

func (b *differenceBuffer) destroy() {
	if b.bindGroup != nil {
		b.device.DestroyBindGroup(b.bindGroup)
		b.bindGroup = nil
	}
	for _, buf := range []*hal.Buffer{
		&b.params, &b.playerColor, &b.targetColor, &b.playerHeight,
		&b.targetHeight, &b.diff, &b.staging,
	} {
		if *buf != nil {
			b.device.DestroyBuffer(*buf)
			*buf = nil
		}
	}
	b.scratch = nil
	b.readback = nil
}

// checkParams verifies that every binding is present and matches the
// buffer size.
func checkParams(p paintmatch.KernelParams, n int) error {
	if p.Resolution <= 0 || p.Resolution*p.Resolution != n {
		return fmt.Errorf("gpu: resolution %d does not fit a buffer of %d values: %w",
			p.Resolution, n, paintmatch.ErrInvalidConfiguration)
	}
	if p.PlayerColor == nil || p.TargetColor == nil || p.PlayerHeight == nil || p.TargetHeight == nil {
		return fmt.Errorf("gpu: missing surface binding: %w", paintmatch.ErrInvalidConfiguration)
	}
	r := p.Resolution
	if p.PlayerColor.Size() != r || p.TargetColor.Size() != r ||
		p.PlayerHeight.Size() != r || p.TargetHeight.Size() != r {
		return fmt.Errorf("gpu: surfaces must be %dx%d: %w", r, r, paintmatch.ErrInvalidConfiguration)
	}
	return nil
}
