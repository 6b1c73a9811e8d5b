package paintmatch

import "testing"

type recordingSink struct {
	scores    []ScoreEvent
	rounds    []RoundEvent
	completed int
}

func (r *recordingSink) ScoreChanged(e ScoreEvent)  { r.scores = append(r.scores, e) }
func (r *recordingSink) RoundAdvanced(e RoundEvent) { r.rounds = append(r.rounds, e) }
func (r *recordingSink) Completed()                 { r.completed++ }

func TestMultiSink(t *testing.T) {
	a, b := &recordingSink{}, &recordingSink{}
	m := MultiSink{a, NopSink{}, b}

	m.ScoreChanged(ScoreEvent{Score: 42})
	m.RoundAdvanced(RoundEvent{Round: 2})
	m.Completed()

	for i, r := range []*recordingSink{a, b} {
		if len(r.scores) != 1 || r.scores[0].Score != 42 {
			t.Errorf("sink %d scores = %+v", i, r.scores)
		}
		if len(r.rounds) != 1 || r.rounds[0].Round != 2 {
			t.Errorf("sink %d rounds = %+v", i, r.rounds)
		}
		if r.completed != 1 {
			t.Errorf("sink %d completed = %d, want 1", i, r.completed)
		}
	}
}

func TestChannelSinkDropsWhenFull(t *testing.T) {
	c := NewChannelSink(2)
	c.ScoreChanged(ScoreEvent{Score: 1})
	c.RoundAdvanced(RoundEvent{Round: 1})
	c.Completed()

	if got := c.Dropped(); got != 1 {
		t.Errorf("Dropped() = %d, want 1", got)
	}

	e := <-c.Events()
	if e.Kind != EventScore || e.Score.Score != 1 {
		t.Errorf("first event = %+v, want score 1", e)
	}
	e = <-c.Events()
	if e.Kind != EventRound || e.Round.Round != 1 {
		t.Errorf("second event = %+v, want round 1", e)
	}
}

func TestEventKindString(t *testing.T) {
	tests := map[EventKind]string{
		EventScore:     "Score",
		EventRound:     "Round",
		EventCompleted: "Completed",
		EventKind(7):   "EventKind(7)",
	}
	for k, want := range tests {
		if got := k.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", k, got, want)
		}
	}
}
