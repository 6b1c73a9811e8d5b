package paintmatch

import (
	"context"
	"fmt"
)

// Engine compares player surfaces against a reference with a difference
// kernel and reduces the result to a similarity score.
//
// The call order is Configure, Dispatch, ComputeScore. An Engine owns its
// difference buffer exclusively and is not safe for concurrent use: a second
// Dispatch before the previous ComputeScore finished overwrites in-flight
// results. Serializing calls is the caller's responsibility.
type Engine struct {
	kernel     DifferenceKernel
	sink       Sink
	threshold  int
	difficulty float32

	params     KernelParams
	buf        DifferenceBuffer
	dispatched bool
	readback   []float32

	last   ScoreEvent
	scored bool
}

// ScoreResult is delivered by ComputeScoreAsync.
type ScoreResult struct {
	Event ScoreEvent
	Err   error
}

// NewEngine creates an Engine.
func NewEngine(opts ...EngineOption) *Engine {
	o := defaultEngineOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.kernel == nil {
		o.kernel = defaultKernel()
	}
	return &Engine{
		kernel:     o.kernel,
		sink:       o.sink,
		threshold:  o.threshold,
		difficulty: o.difficulty,
	}
}

// Kernel returns the difference kernel used by the engine.
func (e *Engine) Kernel() DifferenceKernel { return e.kernel }

// Threshold returns the advance threshold.
func (e *Engine) Threshold() int { return e.threshold }

// Difficulty returns the current difficulty weight.
func (e *Engine) Difficulty() float32 { return e.difficulty }

// Configure binds the four surfaces, the resolution and the difficulty, and
// makes sure a difference buffer of resolution² values exists.
//
// A buffer of the same size is reused; otherwise the previous buffer is
// released (after any in-flight dispatch finished) before the new one is
// allocated. If allocation fails the engine holds no buffer. Configure
// invalidates any previous dispatch. After a failed Configure the engine is
// unconfigured: Dispatch and ComputeScore return ErrNotConfigured until a
// Configure succeeds.
func (e *Engine) Configure(
	playerColor *ColorSurface, playerHeight *HeightSurface,
	targetColor *ColorSurface, targetHeight *HeightSurface,
	resolution int, difficulty float32,
) error {
	e.params = KernelParams{}
	e.dispatched = false
	if playerColor == nil || playerHeight == nil {
		return fmt.Errorf("paintmatch: configure: player surface is nil: %w", ErrInvalidConfiguration)
	}
	if resolution <= 0 {
		return fmt.Errorf("paintmatch: configure: resolution %d: %w", resolution, ErrInvalidConfiguration)
	}
	if !validDifficulty(difficulty) {
		return fmt.Errorf("paintmatch: configure: difficulty %v: %w", difficulty, ErrInvalidConfiguration)
	}
	p := KernelParams{
		PlayerColor:  playerColor,
		TargetColor:  targetColor,
		PlayerHeight: playerHeight,
		TargetHeight: targetHeight,
		Difficulty:   difficulty,
		Resolution:   resolution,
	}
	if err := validateParams(p); err != nil {
		return fmt.Errorf("paintmatch: configure: surfaces must be present and %dx%d: %w",
			resolution, resolution, err)
	}

	n := resolution * resolution
	if e.buf != nil && e.buf.Len() != n {
		e.releaseBuffer()
	}
	if e.buf == nil {
		buf, err := e.kernel.NewBuffer(n)
		if err != nil {
			return fmt.Errorf("paintmatch: configure: allocate %d values on %s: %w", n, e.kernel.Name(), err)
		}
		e.buf = buf
		e.readback = make([]float32, n)
		Logger().Debug("paintmatch: difference buffer allocated",
			"kernel", e.kernel.Name(), "resolution", resolution, "bytes", n*4)
	}

	e.params = p
	e.difficulty = difficulty
	return nil
}

// ConfigureReference is Configure with the targets taken from ref and the
// resolution taken from the player color surface.
func (e *Engine) ConfigureReference(playerColor *ColorSurface, playerHeight *HeightSurface, ref Reference, difficulty float32) error {
	if playerColor == nil {
		e.params = KernelParams{}
		e.dispatched = false
		return fmt.Errorf("paintmatch: configure: player surface is nil: %w", ErrInvalidConfiguration)
	}
	return e.Configure(playerColor, playerHeight, ref.Color, ref.Height, playerColor.Size(), difficulty)
}

// SetDifficulty stores the difficulty weight. It is forwarded to the kernel
// on the next Dispatch.
func (e *Engine) SetDifficulty(d float32) error {
	if !validDifficulty(d) {
		return fmt.Errorf("paintmatch: difficulty %v: %w", d, ErrInvalidConfiguration)
	}
	e.difficulty = d
	return nil
}

// Dispatch enqueues the difference kernel over the configured surfaces.
// It does not wait for the kernel to finish.
func (e *Engine) Dispatch() error {
	if e.buf == nil || e.params.Resolution == 0 {
		return fmt.Errorf("paintmatch: dispatch: %w", ErrNotConfigured)
	}
	e.params.Difficulty = e.difficulty
	if err := e.kernel.Dispatch(e.buf, e.params); err != nil {
		e.dispatched = false
		return fmt.Errorf("paintmatch: dispatch on %s: %w", e.kernel.Name(), err)
	}
	e.dispatched = true
	return nil
}

// ComputeScore waits for the dispatched kernel, reads the difference buffer
// back and reduces it to a score in [0, 100]. The score becomes the current
// score and is published to the sink.
//
// Calling ComputeScore again without a new Dispatch re-reads the same
// buffer and returns the same score.
func (e *Engine) ComputeScore(ctx context.Context) (int, error) {
	if e.buf == nil || !e.dispatched {
		return 0, fmt.Errorf("paintmatch: compute score: %w", ErrNotConfigured)
	}
	if err := e.buf.Read(ctx, e.readback); err != nil {
		return 0, fmt.Errorf("paintmatch: read difference buffer: %w", err)
	}

	score := Reduce(e.readback, e.params.Resolution)
	e.last = ScoreEvent{
		Score:         score,
		AdvanceWorthy: score >= e.threshold,
		Threshold:     e.threshold,
		Tier:          ScoreTier(score),
		Resolution:    e.params.Resolution,
		Difficulty:    e.params.Difficulty,
	}
	e.scored = true

	Logger().Debug("paintmatch: score computed",
		"score", score, "advance", e.last.AdvanceWorthy, "resolution", e.params.Resolution)
	e.sink.ScoreChanged(e.last)
	return score, nil
}

// ComputeScoreAsync runs ComputeScore on a new goroutine and delivers the
// result on the returned channel, which receives exactly one value. The
// sink is notified from that goroutine. The engine must not be used until
// the result arrives.
func (e *Engine) ComputeScoreAsync(ctx context.Context) <-chan ScoreResult {
	ch := make(chan ScoreResult, 1)
	go func() {
		_, err := e.ComputeScore(ctx)
		if err != nil {
			ch <- ScoreResult{Err: err}
			return
		}
		ch <- ScoreResult{Event: e.last}
	}()
	return ch
}

// Score returns the last computed score, or 0 before the first ComputeScore.
func (e *Engine) Score() int { return e.last.Score }

// LastEvent returns the last computed score event and whether one exists.
func (e *Engine) LastEvent() (ScoreEvent, bool) { return e.last, e.scored }

// AdvanceWorthy reports whether the last computed score reached the threshold.
func (e *Engine) AdvanceWorthy() bool { return e.scored && e.last.AdvanceWorthy }

// Discard forgets the last score and any dispatched results. The buffer
// stays allocated.
func (e *Engine) Discard() {
	e.last = ScoreEvent{}
	e.scored = false
	e.dispatched = false
}

// Close releases the difference buffer. The kernel is shared and stays open.
// Close is safe to call multiple times.
func (e *Engine) Close() {
	e.releaseBuffer()
	e.Discard()
}

func (e *Engine) releaseBuffer() {
	if e.buf == nil {
		return
	}
	e.buf.Release()
	e.buf = nil
	e.readback = nil
	e.dispatched = false
}

// MaxDifficulty is the largest accepted difficulty weight.
const MaxDifficulty = 10

// validDifficulty reports whether d is in (0, MaxDifficulty]. NaN fails
// both comparisons.
func validDifficulty(d float32) bool {
	return d > 0 && d <= MaxDifficulty
}
