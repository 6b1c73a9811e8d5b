package paintmatch

import (
	"context"
	"fmt"
	"sync"

	"github.com/gogpu/paintmatch/internal/parallel"
)

// SoftwareKernel is the CPU implementation of DifferenceKernel.
//
// It walks the same ceil(R/8) x ceil(R/8) workgroup grid the GPU kernel
// uses, running one row of workgroups per worker task. Dispatch returns
// immediately; the work completes on the pool and Read waits for it.
type SoftwareKernel struct {
	mu      sync.Mutex
	workers int
	pool    *parallel.WorkerPool
}

var _ DifferenceKernel = (*SoftwareKernel)(nil)

// NewSoftwareKernel creates a software kernel. If workers is 0 or negative,
// GOMAXPROCS workers are used.
func NewSoftwareKernel(workers int) *SoftwareKernel {
	return &SoftwareKernel{workers: workers}
}

// Name returns "software".
func (k *SoftwareKernel) Name() string { return "software" }

// Init starts the worker pool.
func (k *SoftwareKernel) Init() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.pool == nil {
		k.pool = parallel.NewWorkerPool(k.workers)
	}
	return nil
}

// Close stops the worker pool. Dispatches after Close run on a
// background goroutine without the pool.
func (k *SoftwareKernel) Close() {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.pool != nil {
		k.pool.Close()
		k.pool = nil
	}
}

// NewBuffer allocates a host-memory difference buffer of n values.
func (k *SoftwareKernel) NewBuffer(n int) (DifferenceBuffer, error) {
	if n <= 0 {
		return nil, fmt.Errorf("paintmatch: software buffer size %d: %w", n, ErrInvalidConfiguration)
	}
	return &softwareBuffer{owner: k, values: make([]float32, n)}, nil
}

// Dispatch starts computing differences into buf.
func (k *SoftwareKernel) Dispatch(buf DifferenceBuffer, p KernelParams) error {
	sb, ok := buf.(*softwareBuffer)
	if !ok || sb.owner != k {
		return ErrBufferMismatch
	}
	if sb.values == nil {
		return ErrBufferReleased
	}
	if err := validateParams(p); err != nil {
		return err
	}
	if len(sb.values) != p.Resolution*p.Resolution {
		return fmt.Errorf("paintmatch: buffer holds %d values, resolution %d needs %d: %w",
			len(sb.values), p.Resolution, p.Resolution*p.Resolution, ErrInvalidConfiguration)
	}

	k.mu.Lock()
	pool := k.pool
	k.mu.Unlock()

	if sb.done != nil {
		<-sb.done
	}

	groups := int(WorkgroupCount(p.Resolution))
	done := make(chan struct{})
	sb.done = done

	go func() {
		defer close(done)
		row := func(gy int) { differenceGroupRow(sb.values, p, gy, groups) }
		if pool != nil {
			pool.ForEach(groups, row)
			return
		}
		for gy := range groups {
			row(gy)
		}
	}()

	Logger().Debug("paintmatch: software dispatch",
		"resolution", p.Resolution, "groups", groups, "difficulty", p.Difficulty)
	return nil
}

// differenceGroupRow evaluates every workgroup in row gy. Threads that fall
// outside the resolution do nothing.
func differenceGroupRow(out []float32, p KernelParams, gy, groups int) {
	r := p.Resolution
	pc, tc := p.PlayerColor.Data(), p.TargetColor.Data()
	ph, th := p.PlayerHeight.Data(), p.TargetHeight.Data()

	for gx := 0; gx < groups; gx++ {
		for ly := 0; ly < WorkgroupSize; ly++ {
			y := gy*WorkgroupSize + ly
			if y >= r {
				break
			}
			for lx := 0; lx < WorkgroupSize; lx++ {
				x := gx*WorkgroupSize + lx
				if x >= r {
					break
				}
				i := y*r + x
				out[i] = pixelDifference(pc[i*4:i*4+4], tc[i*4:i*4+4], ph[i], th[i], p.Difficulty)
			}
		}
	}
}

type softwareBuffer struct {
	owner  *SoftwareKernel
	values []float32
	done   chan struct{} // closed when the last dispatch finished; nil before first dispatch
}

func (b *softwareBuffer) Len() int { return len(b.values) }

func (b *softwareBuffer) Read(ctx context.Context, dst []float32) error {
	if b.values == nil {
		return ErrBufferReleased
	}
	if len(dst) < len(b.values) {
		return fmt.Errorf("paintmatch: read destination holds %d values, need %d", len(dst), len(b.values))
	}
	if b.done != nil {
		select {
		case <-b.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	copy(dst, b.values)
	return nil
}

func (b *softwareBuffer) Release() {
	if b.done != nil {
		<-b.done
	}
	b.values = nil
	b.done = nil
}
