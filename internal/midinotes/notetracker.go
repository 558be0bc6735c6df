package midinotes

import (
	"log/slog"
	"sort"
)

type key struct {
	ch, note uint8
}

type onset struct {
	seconds  float64
	velocity uint8
}

// noteTracker pairs note starts with note ends per channel and pitch.
type noteTracker struct {
	activeNotes map[key]onset
	notes       []Note

	retriggered int
	orphaned    int
}

func newNoteTracker() *noteTracker {
	return &noteTracker{
		activeNotes: map[key]onset{},
	}
}

// Playing reports whether any note is sounding.
func (t *noteTracker) Playing() bool {
	return len(t.activeNotes) > 0
}

// Handle processes one clocked event. It returns true if the event completed a note.
func (t *noteTracker) Handle(ev ClockedEvent) bool {
	k := key{ev.Kind.Channel, ev.Kind.Pitch}
	switch {
	case ev.Kind.Type == EventNoteOn && ev.Kind.Velocity > 0:
		if _, found := t.activeNotes[k]; found {
			// The earlier interval is lost.
			t.retriggered++
		}
		t.activeNotes[k] = onset{seconds: ev.Seconds, velocity: ev.Kind.Velocity}
		return false
	case ev.Kind.Type == EventNoteOn, ev.Kind.Type == EventNoteOff:
		start, found := t.activeNotes[k]
		if !found {
			t.orphaned++
			return false
		}
		delete(t.activeNotes, k)
		t.notes = append(t.notes, Note{
			Pitch:    int(k.note),
			Start:    start.seconds,
			Duration: ev.Seconds - start.seconds,
			Velocity: float64(start.velocity),
			Channel:  k.ch,
		})
		return true
	}
	return false
}

// Notes returns the completed notes ordered by onset. Notes still sounding are dropped.
func (t *noteTracker) Notes() []Note {
	if t.retriggered > 0 || t.orphaned > 0 || t.Playing() {
		slog.Debug("Discarded unmatched note events.",
			"retriggered", t.retriggered,
			"orphaned", t.orphaned,
			"unclosed", len(t.activeNotes))
	}
	notes := make([]Note, len(t.notes))
	copy(notes, t.notes)
	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].Start < notes[j].Start
	})
	return notes
}

// Reconstruct turns a clocked event stream into notes.
func Reconstruct(events []ClockedEvent) []Note {
	tracker := newNoteTracker()
	for _, ev := range events {
		tracker.Handle(ev)
	}
	return tracker.Notes()
}
