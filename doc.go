// Package paintmatch scores a player's painting against a reference image.
//
// # Overview
//
// A painting is a pair of square surfaces of edge length R: a color surface
// (RGBA8) and a height surface (one float per pixel in [0, 1]). A Reference
// is the same pair for the target image. The Engine compares both pairs with
// a DifferenceKernel, one value per pixel, and reduces the result to a
// similarity score from 0 to 100. A score at or above the threshold (40 by
// default) is advance-worthy.
//
// # Quick Start
//
//	import "github.com/gogpu/paintmatch"
//
//	engine := paintmatch.NewEngine()
//	defer engine.Close()
//
//	if err := engine.ConfigureReference(canvas, heights, ref, 1.0); err != nil {
//	    return err
//	}
//	if err := engine.Dispatch(); err != nil {
//	    return err
//	}
//	score, err := engine.ComputeScore(ctx)
//
// # Rounds
//
// A Controller rotates through a pool of references, randomly without
// replacement or in order, and clears the player surfaces between rounds.
// A Session ties an Engine to a Controller, optionally advancing as soon as
// a score is advance-worthy and recording every finished round.
//
// # Kernels
//
// The SoftwareKernel runs on a worker pool and is always available. Import
// the gpu package to register a wgpu compute kernel:
//
//	import _ "github.com/gogpu/paintmatch/gpu"
//
// Both kernels evaluate the same ceil(R/8) x ceil(R/8) grid of 8x8
// workgroups and produce the same per-pixel values.
//
// # Observers
//
// Score and round events are published to a Sink. The package provides
// NopSink, MultiSink and the buffered ChannelSink; presentation layers
// implement their own.
package paintmatch

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)
