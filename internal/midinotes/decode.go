// Package midinotes decodes Standard MIDI Files into timed notes.
//
// Decoding runs in four stages: Parse reads the tracks, Merge puts all tracks
// on one tick timeline, ClockEvents applies the tempo map and Reconstruct
// pairs note starts with note ends. Decode runs all of them. The package keeps
// no global state, so concurrent calls are independent.
package midinotes

// Decode converts a complete MIDI file into notes ordered by onset.
// It returns either all notes or an error, never both.
func Decode(data []byte) ([]Note, error) {
	f, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return f.Notes(), nil
}

// Notes runs the timeline stages on an already parsed file.
func (f *File) Notes() []Note {
	events := Merge(f.Tracks)
	return Reconstruct(ClockEvents(events, f.TicksPerQuarter))
}
