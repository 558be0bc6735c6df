package midinotes

// Note is a sounding interval reconstructed from a note-on/note-off pair.
type Note struct {
	Pitch int `json:"note"`
	// Start is the onset in seconds.
	Start float64 `json:"start"`
	// Duration is in seconds.
	Duration float64 `json:"duration"`
	Velocity float64 `json:"velocity"`
	// Channel is the MIDI channel (0-15).
	Channel uint8 `json:"channel"`
	// Confidence is reserved for heuristic transcriptions. Decoded files leave it nil.
	Confidence *float64 `json:"confidence"`
}

// End returns the time the note stops sounding.
func (n Note) End() float64 {
	return n.Start + n.Duration
}
