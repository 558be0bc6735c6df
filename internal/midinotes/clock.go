package midinotes

// Clock converts absolute ticks to seconds under a piecewise constant tempo.
type Clock struct {
	ticksPerQuarter float64
	lastTick        int64
	tempo           uint32
	seconds         float64
}

func NewClock(ticksPerQuarter uint16) *Clock {
	return &Clock{
		ticksPerQuarter: float64(ticksPerQuarter),
		tempo:           DefaultTempo,
	}
}

// Advance moves the clock to tick and returns the time of the event there.
// Ticks must not decrease between calls. A tempo event only affects later ticks.
func (c *Clock) Advance(tick int64, kind Kind) float64 {
	if delta := tick - c.lastTick; delta > 0 {
		c.seconds += float64(delta) * float64(c.tempo) / c.ticksPerQuarter / 1000000
	}
	c.lastTick = tick
	if kind.Type == EventTempo {
		c.tempo = kind.Tempo
	}
	return c.seconds
}

// Tempo returns the current tempo in microseconds per quarter note.
func (c *Clock) Tempo() uint32 {
	return c.tempo
}

// ClockEvents places merged events in wall-clock time.
func ClockEvents(events []TimedEvent, ticksPerQuarter uint16) []ClockedEvent {
	clock := NewClock(ticksPerQuarter)
	clocked := make([]ClockedEvent, 0, len(events))
	for _, ev := range events {
		clocked = append(clocked, ClockedEvent{
			Seconds: clock.Advance(ev.Tick, ev.Kind),
			Kind:    ev.Kind,
		})
	}
	return clocked
}
