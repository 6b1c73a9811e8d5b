package paintmatch

import (
	"fmt"
	"math/rand/v2"
)

// Mode is a reference selection policy.
type Mode uint8

const (
	// ModeRandom picks references uniformly at random without replacement.
	// When every reference has been used the pool is reshuffled; a random
	// controller never completes.
	ModeRandom Mode = iota

	// ModeSequential walks the pool in order and completes after the last
	// reference.
	ModeSequential
)

// String returns the string representation of the mode.
func (m Mode) String() string {
	switch m {
	case ModeRandom:
		return "random"
	case ModeSequential:
		return "sequential"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode parses "random" or "sequential".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "random", "":
		return ModeRandom, nil
	case "sequential":
		return ModeSequential, nil
	default:
		return ModeRandom, fmt.Errorf("paintmatch: unknown mode %q", s)
	}
}

// RoundState is the state of a Controller.
type RoundState uint8

const (
	// StateIdle is the state before Start.
	StateIdle RoundState = iota
	// StateActive means a reference is selected and the player surfaces are live.
	StateActive
	// StateTransitioning is the state between rounds, inside Advance.
	StateTransitioning
	// StateCompleted is terminal: a sequential pool has been exhausted.
	StateCompleted
)

// String returns the string representation of the state.
func (s RoundState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateActive:
		return "Active"
	case StateTransitioning:
		return "Transitioning"
	case StateCompleted:
		return "Completed"
	default:
		return fmt.Sprintf("RoundState(%d)", int(s))
	}
}

// Controller rotates through a pool of references and resets the player
// surfaces between rounds.
//
// Reference surfaces are only read. The player surfaces are cleared to
// zero on Start and on every Advance.
type Controller struct {
	pool         []Reference
	playerColor  *ColorSurface
	playerHeight *HeightSurface

	mode Mode
	rng  *rand.Rand
	sink Sink

	state     RoundState
	index     int
	round     int
	remaining []int // unused pool indices (ModeRandom)
}

// NewController creates a controller over a copy of pool. The player
// surfaces may be nil if the host clears them itself.
func NewController(pool []Reference, playerColor *ColorSurface, playerHeight *HeightSurface, opts ...ControllerOption) *Controller {
	o := defaultControllerOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.rng == nil {
		o.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())) //nolint:gosec // gameplay randomness
	}
	return &Controller{
		pool:         append([]Reference(nil), pool...),
		playerColor:  playerColor,
		playerHeight: playerHeight,
		mode:         o.mode,
		rng:          o.rng,
		sink:         o.sink,
		index:        -1,
	}
}

// Start clears the player surfaces and selects the initial reference: the
// first one in ModeSequential, a random one in ModeRandom. Calling Start
// again restarts from round 1.
func (c *Controller) Start() error {
	if len(c.pool) == 0 {
		return fmt.Errorf("paintmatch: start: %w", ErrNoReferencesAvailable)
	}
	c.clearPlayer()
	c.round = 0
	c.remaining = nil

	switch c.mode {
	case ModeSequential:
		c.index = 0
	default:
		c.refill(-1)
		c.index = c.take()
	}
	c.activate()
	return nil
}

// Advance ends the current round: it clears the player surfaces and selects
// the next reference. In ModeSequential, advancing past the last reference
// moves the controller to StateCompleted and notifies the sink; Advance then
// returns ErrNoReferencesAvailable.
func (c *Controller) Advance() error {
	switch c.state {
	case StateIdle:
		return fmt.Errorf("paintmatch: advance: %w", ErrNotStarted)
	case StateCompleted:
		return fmt.Errorf("paintmatch: advance: pool completed: %w", ErrNoReferencesAvailable)
	}

	c.state = StateTransitioning
	c.clearPlayer()

	switch c.mode {
	case ModeSequential:
		if c.index+1 >= len(c.pool) {
			c.state = StateCompleted
			c.index = len(c.pool)
			Logger().Info("paintmatch: all references completed", "rounds", c.round)
			c.sink.Completed()
			return nil
		}
		c.index++
	default:
		if len(c.remaining) == 0 {
			c.refill(c.index)
		}
		c.index = c.take()
	}
	c.activate()
	return nil
}

// Current returns the active reference.
func (c *Controller) Current() (Reference, error) {
	switch c.state {
	case StateIdle:
		return Reference{}, ErrNotStarted
	case StateCompleted:
		return Reference{}, ErrNoReferencesAvailable
	}
	return c.pool[c.index], nil
}

// State returns the controller state.
func (c *Controller) State() RoundState { return c.state }

// Mode returns the selection policy.
func (c *Controller) Mode() Mode { return c.mode }

// Round returns the 1-based number of the current round, 0 before Start.
func (c *Controller) Round() int { return c.round }

// Index returns the pool index of the current reference, -1 before Start.
func (c *Controller) Index() int { return c.index }

// Len returns the pool size.
func (c *Controller) Len() int { return len(c.pool) }

// PlayerColor returns the player color surface.
func (c *Controller) PlayerColor() *ColorSurface { return c.playerColor }

// PlayerHeight returns the player height surface.
func (c *Controller) PlayerHeight() *HeightSurface { return c.playerHeight }

func (c *Controller) activate() {
	c.round++
	c.state = StateActive
	ref := c.pool[c.index]
	Logger().Info("paintmatch: round started",
		"round", c.round, "reference", ref.Name, "index", c.index, "mode", c.mode.String())
	c.sink.RoundAdvanced(RoundEvent{Round: c.round, Index: c.index, Reference: ref.Name})
}

func (c *Controller) clearPlayer() {
	if c.playerColor != nil {
		c.playerColor.Clear()
	}
	if c.playerHeight != nil {
		c.playerHeight.Clear()
	}
}

// refill shuffles every pool index except exclude into remaining. exclude is
// kept when it is the only reference.
func (c *Controller) refill(exclude int) {
	c.remaining = c.remaining[:0]
	for i := range c.pool {
		if i != exclude || len(c.pool) == 1 {
			c.remaining = append(c.remaining, i)
		}
	}
	c.rng.Shuffle(len(c.remaining), func(i, j int) {
		c.remaining[i], c.remaining[j] = c.remaining[j], c.remaining[i]
	})
}

func (c *Controller) take() int {
	last := len(c.remaining) - 1
	i := c.remaining[last]
	c.remaining = c.remaining[:last]
	return i
}
