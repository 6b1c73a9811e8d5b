package main

import (
	"fmt"

	"github.com/gogpu/paintmatch"
	"github.com/gogpu/paintmatch/internal/config"
)

// selectKernel resolves a kernel name. The returned release function closes
// kernels created here; the registered GPU kernel stays open.
func selectKernel(name string, workers int) (paintmatch.DifferenceKernel, func(), error) {
	switch name {
	case config.KernelSoftware:
		return newSoftware(workers)
	case config.KernelGPU:
		k := paintmatch.RegisteredKernel()
		if k == nil {
			return nil, nil, fmt.Errorf("gpu kernel requested: %w", paintmatch.ErrKernelUnavailable)
		}
		return k, func() {}, nil
	case config.KernelAuto, "":
		if k := paintmatch.RegisteredKernel(); k != nil {
			return k, func() {}, nil
		}
		return newSoftware(workers)
	default:
		return nil, nil, fmt.Errorf("unknown kernel %q", name)
	}
}

func newSoftware(workers int) (paintmatch.DifferenceKernel, func(), error) {
	k := paintmatch.NewSoftwareKernel(workers)
	if err := k.Init(); err != nil {
		return nil, nil, err
	}
	return k, k.Close, nil
}
