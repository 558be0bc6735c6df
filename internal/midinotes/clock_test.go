package midinotes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClock_DefaultTempo(t *testing.T) {
	c := NewClock(480)
	assert.Equal(t, uint32(DefaultTempo), c.Tempo())
	assert.InDelta(t, 0.0, c.Advance(0, Other()), 1e-12)
	assert.InDelta(t, 0.5, c.Advance(480, Other()), 1e-12)
	assert.InDelta(t, 1.25, c.Advance(1200, Other()), 1e-12)
}

func TestClock_TempoAppliesAfterItsTick(t *testing.T) {
	c := NewClock(100)
	assert.InDelta(t, 0.5, c.Advance(100, Tempo(1000000)), 1e-12)
	assert.Equal(t, uint32(1000000), c.Tempo())
	// Second quarter runs at the new tempo.
	assert.InDelta(t, 1.5, c.Advance(200, Other()), 1e-12)
	assert.InDelta(t, 1.5, c.Advance(200, Tempo(250000)), 1e-12)
	assert.InDelta(t, 1.75, c.Advance(300, Other()), 1e-12)
}

func TestClockEvents_NonDecreasing(t *testing.T) {
	events := []TimedEvent{
		{Tick: 0, Kind: Tempo(300000)},
		{Tick: 0, Kind: NoteOn(0, 60, 10)},
		{Tick: 240, Kind: Tempo(900000)},
		{Tick: 240, Kind: NoteOff(0, 60, 0)},
		{Tick: 480, Kind: Other()},
	}

	clocked := ClockEvents(events, 480)

	want := []float64{0, 0, 0.15, 0.15, 0.6}
	assert.Len(t, clocked, len(want))
	for i, ev := range clocked {
		assert.InDelta(t, want[i], ev.Seconds, 1e-12, "event %d", i)
		assert.Equal(t, events[i].Kind, ev.Kind)
		if i > 0 {
			assert.GreaterOrEqual(t, ev.Seconds, clocked[i-1].Seconds)
		}
	}
}
