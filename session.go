package paintmatch

import (
	"context"
	"fmt"
	"time"
)

// RoundResult summarizes a scored round when the session leaves it.
type RoundResult struct {
	Round     int
	Reference string
	Score     int
	Advanced  bool // the round ended because the score was advance-worthy
	At        time.Time
}

// RoundRecorder persists round results (for example a history store).
type RoundRecorder interface {
	RecordRound(RoundResult) error
}

// Session drives an Engine from a Controller: every Evaluate scores the
// player surfaces against the controller's current reference.
type Session struct {
	engine      *Engine
	controller  *Controller
	autoAdvance bool
	recorder    RoundRecorder
}

// NewSession creates a session. The engine and controller are owned by the
// caller; Close does not close them.
func NewSession(engine *Engine, controller *Controller, opts ...SessionOption) *Session {
	s := &Session{engine: engine, controller: controller}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Engine returns the comparison engine.
func (s *Session) Engine() *Engine { return s.engine }

// Controller returns the rotation controller.
func (s *Session) Controller() *Controller { return s.controller }

// Start starts the controller and discards any previous score.
func (s *Session) Start() error {
	s.engine.Discard()
	return s.controller.Start()
}

// Evaluate configures the engine with the current reference, dispatches the
// kernel and computes the score. With auto-advance enabled, an
// advance-worthy score ends the round before Evaluate returns.
func (s *Session) Evaluate(ctx context.Context) (ScoreEvent, error) {
	ref, err := s.controller.Current()
	if err != nil {
		return ScoreEvent{}, fmt.Errorf("paintmatch: evaluate: %w", err)
	}
	if err := s.engine.ConfigureReference(s.controller.PlayerColor(), s.controller.PlayerHeight(), ref, s.engine.Difficulty()); err != nil {
		return ScoreEvent{}, err
	}
	if err := s.engine.Dispatch(); err != nil {
		return ScoreEvent{}, err
	}
	if _, err := s.engine.ComputeScore(ctx); err != nil {
		return ScoreEvent{}, err
	}

	ev, _ := s.engine.LastEvent()
	if s.autoAdvance && ev.AdvanceWorthy {
		if err := s.Next(); err != nil {
			return ev, err
		}
	}
	return ev, nil
}

// Next records the current round (if it was scored) and advances the
// controller. The engine's last score is discarded.
func (s *Session) Next() error {
	if ev, ok := s.engine.LastEvent(); ok && s.recorder != nil {
		ref, _ := s.controller.Current()
		res := RoundResult{
			Round:     s.controller.Round(),
			Reference: ref.Name,
			Score:     ev.Score,
			Advanced:  ev.AdvanceWorthy,
			At:        time.Now(),
		}
		if err := s.recorder.RecordRound(res); err != nil {
			Logger().Warn("paintmatch: record round failed", "round", res.Round, "err", err)
		}
	}
	s.engine.Discard()
	return s.controller.Advance()
}

// Completed reports whether the controller has exhausted its pool.
func (s *Session) Completed() bool {
	return s.controller.State() == StateCompleted
}
