package parallel

import (
	"runtime"
	"sync/atomic"
	"testing"
)

func TestWorkerPool_Create(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	if pool.Workers() != 4 {
		t.Errorf("Workers() = %d, want 4", pool.Workers())
	}
	if !pool.IsRunning() {
		t.Error("Pool should be running after creation")
	}
}

func TestWorkerPool_CreateDefaultWorkers(t *testing.T) {
	for _, n := range []int{0, -5} {
		pool := NewWorkerPool(n)
		if pool.Workers() != runtime.GOMAXPROCS(0) {
			t.Errorf("NewWorkerPool(%d).Workers() = %d, want GOMAXPROCS", n, pool.Workers())
		}
		pool.Close()
	}
}

func TestWorkerPool_ForEach(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	const n = 100
	var hits [n]atomic.Int32
	pool.ForEach(n, func(i int) {
		hits[i].Add(1)
	})

	for i := range hits {
		if got := hits[i].Load(); got != 1 {
			t.Errorf("index %d visited %d times, want 1", i, got)
		}
	}
}

func TestWorkerPool_ForEachEmpty(t *testing.T) {
	pool := NewWorkerPool(2)
	defer pool.Close()

	called := false
	pool.ForEach(0, func(int) { called = true })
	pool.ForEach(3, nil)
	if called {
		t.Error("ForEach(0) should not call fn")
	}
}

func TestWorkerPool_ForEachAfterClose(t *testing.T) {
	pool := NewWorkerPool(2)
	pool.Close()

	var count atomic.Int32
	pool.ForEach(10, func(int) { count.Add(1) })
	if got := count.Load(); got != 10 {
		t.Errorf("ForEach after Close ran %d items, want 10 (inline)", got)
	}
}

func TestWorkerPool_CloseIdempotent(t *testing.T) {
	pool := NewWorkerPool(2)
	pool.Close()
	pool.Close()
	if pool.IsRunning() {
		t.Error("Pool should not be running after Close")
	}
}

func TestWorkerPool_ConcurrentForEach(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	var total atomic.Int64
	done := make(chan struct{})
	for range 8 {
		go func() {
			pool.ForEach(50, func(int) { total.Add(1) })
			done <- struct{}{}
		}()
	}
	for range 8 {
		<-done
	}
	if got := total.Load(); got != 400 {
		t.Errorf("total = %d, want 400", got)
	}
}

func BenchmarkWorkerPool_ForEach(b *testing.B) {
	pool := NewWorkerPool(0)
	defer pool.Close()

	b.ReportAllocs()
	for b.Loop() {
		pool.ForEach(64, func(int) {})
	}
}
