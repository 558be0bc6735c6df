package midinotes

import (
	"errors"
)

var (
	// ErrMalformedFile is returned when the input does not follow the SMF chunk structure.
	ErrMalformedFile = errors.New("malformed MIDI file")

	// ErrUnsupportedTiming is returned for files using SMPTE time code instead of metric ticks.
	ErrUnsupportedTiming = errors.New("unsupported MIDI timing")
)
