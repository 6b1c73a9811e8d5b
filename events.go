package paintmatch

import (
	"fmt"
	"sync/atomic"
)

// ScoreEvent is published once per ComputeScore call.
type ScoreEvent struct {
	Score         int
	AdvanceWorthy bool // Score >= Threshold
	Threshold     int
	Tier          Tier
	Resolution    int
	Difficulty    float32
}

// RoundEvent is published when the controller selects a reference.
type RoundEvent struct {
	Round     int // 1-based round number
	Index     int // index of the reference in the pool
	Reference string
}

// Sink consumes scores and round transitions. Host presentation code
// (progress bars, color-coded text, success screens) implements Sink; the
// core never depends on a concrete UI type.
//
// Sink methods are called synchronously on the caller's goroutine.
type Sink interface {
	// ScoreChanged receives every computed score.
	ScoreChanged(ScoreEvent)

	// RoundAdvanced receives every reference selection, including the first.
	RoundAdvanced(RoundEvent)

	// Completed is called once when a sequential pool is exhausted.
	Completed()
}

// NopSink discards all events.
type NopSink struct{}

// ScoreChanged does nothing.
func (NopSink) ScoreChanged(ScoreEvent) {}

// RoundAdvanced does nothing.
func (NopSink) RoundAdvanced(RoundEvent) {}

// Completed does nothing.
func (NopSink) Completed() {}

// MultiSink fans every event out to each sink in order.
type MultiSink []Sink

// ScoreChanged forwards e to every sink.
func (m MultiSink) ScoreChanged(e ScoreEvent) {
	for _, s := range m {
		s.ScoreChanged(e)
	}
}

// RoundAdvanced forwards e to every sink.
func (m MultiSink) RoundAdvanced(e RoundEvent) {
	for _, s := range m {
		s.RoundAdvanced(e)
	}
}

// Completed notifies every sink.
func (m MultiSink) Completed() {
	for _, s := range m {
		s.Completed()
	}
}

// EventKind identifies the payload of an Event.
type EventKind uint8

const (
	// EventScore carries a ScoreEvent.
	EventScore EventKind = iota
	// EventRound carries a RoundEvent.
	EventRound
	// EventCompleted marks an exhausted pool and has no payload.
	EventCompleted
)

// String returns the string representation of the event kind.
func (k EventKind) String() string {
	switch k {
	case EventScore:
		return "Score"
	case EventRound:
		return "Round"
	case EventCompleted:
		return "Completed"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event is a tagged union of the Sink callbacks, delivered by ChannelSink.
type Event struct {
	Kind  EventKind
	Score ScoreEvent // valid when Kind == EventScore
	Round RoundEvent // valid when Kind == EventRound
}

// ChannelSink publishes events onto a buffered channel without blocking.
// Events that do not fit are dropped and counted.
type ChannelSink struct {
	ch      chan Event
	dropped atomic.Uint64
}

var _ Sink = (*ChannelSink)(nil)

// NewChannelSink creates a channel sink with the given buffer size (minimum 1).
func NewChannelSink(size int) *ChannelSink {
	return &ChannelSink{ch: make(chan Event, max(size, 1))}
}

// Events returns the receive side of the channel.
func (c *ChannelSink) Events() <-chan Event { return c.ch }

// Dropped returns the number of events dropped because the channel was full.
func (c *ChannelSink) Dropped() uint64 { return c.dropped.Load() }

func (c *ChannelSink) publish(e Event) {
	select {
	case c.ch <- e:
	default:
		c.dropped.Add(1)
	}
}

// ScoreChanged publishes an EventScore.
func (c *ChannelSink) ScoreChanged(e ScoreEvent) { c.publish(Event{Kind: EventScore, Score: e}) }

// RoundAdvanced publishes an EventRound.
func (c *ChannelSink) RoundAdvanced(e RoundEvent) { c.publish(Event{Kind: EventRound, Round: e}) }

// Completed publishes an EventCompleted.
func (c *ChannelSink) Completed() { c.publish(Event{Kind: EventCompleted}) }
