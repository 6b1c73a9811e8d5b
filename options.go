package paintmatch

import "math/rand/v2"

// EngineOption configures an Engine during creation.
//
// Example:
//
//	// Default kernel (registered GPU kernel, else software)
//	e := paintmatch.NewEngine()
//
//	// Explicit kernel and presentation sink (dependency injection)
//	e := paintmatch.NewEngine(
//	    paintmatch.WithKernel(paintmatch.NewSoftwareKernel(4)),
//	    paintmatch.WithSink(ui),
//	)
type EngineOption func(*engineOptions)

type engineOptions struct {
	kernel     DifferenceKernel
	sink       Sink
	threshold  int
	difficulty float32
}

func defaultEngineOptions() engineOptions {
	return engineOptions{
		kernel:     nil, // resolved by defaultKernel in NewEngine
		sink:       NopSink{},
		threshold:  DefaultThreshold,
		difficulty: 1,
	}
}

// WithKernel sets the difference kernel used by the Engine.
// Without it the Engine uses the registered kernel, falling back to the
// software kernel.
func WithKernel(k DifferenceKernel) EngineOption {
	return func(o *engineOptions) {
		if k != nil {
			o.kernel = k
		}
	}
}

// WithSink sets the sink that receives a ScoreEvent for every ComputeScore.
func WithSink(s Sink) EngineOption {
	return func(o *engineOptions) {
		if s != nil {
			o.sink = s
		}
	}
}

// WithThreshold sets the score at or above which a result is advance-worthy.
// Values outside [0, 100] are clamped.
func WithThreshold(score int) EngineOption {
	return func(o *engineOptions) {
		o.threshold = min(max(score, 0), 100)
	}
}

// WithDifficulty sets the initial difficulty weight. Values outside
// (0, MaxDifficulty] are ignored.
func WithDifficulty(d float32) EngineOption {
	return func(o *engineOptions) {
		if validDifficulty(d) {
			o.difficulty = d
		}
	}
}

// ControllerOption configures a Controller during creation.
type ControllerOption func(*controllerOptions)

type controllerOptions struct {
	mode Mode
	rng  *rand.Rand
	sink Sink
}

func defaultControllerOptions() controllerOptions {
	return controllerOptions{
		mode: ModeRandom,
		sink: NopSink{},
	}
}

// WithMode sets the reference selection policy. The default is ModeRandom.
func WithMode(m Mode) ControllerOption {
	return func(o *controllerOptions) {
		o.mode = m
	}
}

// WithRand sets the random source used by ModeRandom.
func WithRand(r *rand.Rand) ControllerOption {
	return func(o *controllerOptions) {
		o.rng = r
	}
}

// WithSeed seeds a PCG random source for reproducible ModeRandom selection.
func WithSeed(seed uint64) ControllerOption {
	return func(o *controllerOptions) {
		o.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}

// WithControllerSink sets the sink that receives round transitions.
func WithControllerSink(s Sink) ControllerOption {
	return func(o *controllerOptions) {
		if s != nil {
			o.sink = s
		}
	}
}

// SessionOption configures a Session during creation.
type SessionOption func(*Session)

// WithAutoAdvance makes Evaluate advance the round as soon as a score is
// advance-worthy.
func WithAutoAdvance(enabled bool) SessionOption {
	return func(s *Session) {
		s.autoAdvance = enabled
	}
}

// WithRecorder sets a recorder that receives a RoundResult every time the
// session leaves a scored round.
func WithRecorder(r RoundRecorder) SessionOption {
	return func(s *Session) {
		s.recorder = r
	}
}
