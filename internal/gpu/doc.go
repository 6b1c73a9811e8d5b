//go:build !nogpu

// Package gpu implements the paintmatch difference kernel on wgpu/hal
// compute shaders.
//
// The player and reference surfaces are uploaded into storage buffers
// (color packed as one u32 per pixel, height as f32), a single compute pass
// of ceil(R/8) x ceil(R/8) workgroups writes one difference value per pixel,
// and the result is copied into a staging buffer for readback.
//
// Dispatch submits the command buffer and keeps the queue's submission
// index. Read polls the queue until that index completes, then maps the
// staging buffer. A single Kernel owns one
// pipeline; every DifferenceBuffer owns its own storage, staging and
// parameter buffers and bind group.
//
// The package is selected by importing github.com/gogpu/paintmatch/gpu.
// Build with -tags nogpu to exclude it.
package gpu
