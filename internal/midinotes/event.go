package midinotes

import (
	"fmt"
)

// DefaultTempo is the tempo in effect before the first tempo event (120 bpm).
const DefaultTempo = 500000

// EventType selects which fields of a Kind are meaningful.
type EventType uint8

const (
	// EventOther is any event the decoder does not interpret.
	EventOther EventType = iota
	EventNoteOn
	EventNoteOff
	EventTempo
)

func (t EventType) String() string {
	switch t {
	case EventNoteOn:
		return "NoteOn"
	case EventNoteOff:
		return "NoteOff"
	case EventTempo:
		return "Tempo"
	default:
		return "Other"
	}
}

// Kind is the closed set of events the decoder cares about.
type Kind struct {
	Type     EventType
	Channel  uint8
	Pitch    uint8
	Velocity uint8
	// Tempo is in microseconds per quarter note. Only set for EventTempo.
	Tempo uint32
}

func NoteOn(ch, pitch, velocity uint8) Kind {
	return Kind{Type: EventNoteOn, Channel: ch, Pitch: pitch, Velocity: velocity}
}

func NoteOff(ch, pitch, velocity uint8) Kind {
	return Kind{Type: EventNoteOff, Channel: ch, Pitch: pitch, Velocity: velocity}
}

func Tempo(microsPerQuarter uint32) Kind {
	return Kind{Type: EventTempo, Tempo: microsPerQuarter}
}

func Other() Kind {
	return Kind{Type: EventOther}
}

func (k Kind) String() string {
	switch k.Type {
	case EventNoteOn, EventNoteOff:
		return fmt.Sprintf("%v{ch=%d pitch=%d vel=%d}", k.Type, k.Channel, k.Pitch, k.Velocity)
	case EventTempo:
		return fmt.Sprintf("Tempo{%dus}", k.Tempo)
	default:
		return "Other"
	}
}

// RawEvent is a delta-encoded event as found in a track.
type RawEvent struct {
	Delta uint32
	Kind  Kind
}

// Track is the ordered event list of one track chunk.
type Track []RawEvent

// File is the parsed form of a Standard MIDI File.
type File struct {
	TicksPerQuarter uint16
	Tracks          []Track
}

// TimedEvent is an event placed on the merged timeline.
type TimedEvent struct {
	Tick  int64
	Track int
	Kind  Kind
}

// ClockedEvent is an event placed in wall-clock time.
type ClockedEvent struct {
	Seconds float64
	Kind    Kind
}
