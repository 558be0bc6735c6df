package midinotes

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"gitlab.com/gomidi/midi/v2/smf"
)

const (
	headerMagic = "MThd"
	// headerSize is the chunk header (magic + length) plus the minimal MThd payload.
	headerSize = 8 + 6
	// smpteBit marks the division word as SMPTE time code.
	smpteBit = 0x8000
)

type header struct {
	numTracks uint16
	division  uint16
}

// checkHeader validates the MThd chunk and rejects time code timing before the
// track data is looked at.
func checkHeader(data []byte) (header, error) {
	var h header
	if len(data) < headerSize {
		return h, fmt.Errorf("%w: %d bytes is too short for a header chunk", ErrMalformedFile, len(data))
	}
	if string(data[0:4]) != headerMagic {
		return h, fmt.Errorf("%w: header not supported %q", ErrMalformedFile, data[0:4])
	}
	length := binary.BigEndian.Uint32(data[4:8])
	if length < 6 {
		return h, fmt.Errorf("%w: expected header size to be at least 6, was %d", ErrMalformedFile, length)
	}
	h.numTracks = binary.BigEndian.Uint16(data[10:12])
	h.division = binary.BigEndian.Uint16(data[12:14])
	if h.division&smpteBit != 0 {
		fps := -int8(h.division >> 8)
		return h, fmt.Errorf("%w: SMPTE time code at %d fps", ErrUnsupportedTiming, fps)
	}
	if h.division == 0 {
		return h, fmt.Errorf("%w: zero ticks per quarter note", ErrMalformedFile)
	}
	return h, nil
}

// Parse reads a Standard MIDI File into its resolution and per-track events.
func Parse(data []byte) (f *File, err error) {
	h, err := checkHeader(data)
	if err != nil {
		return nil, err
	}
	// The smf reader stops quietly at a chunk that ends between events and
	// accepts overlong lengths, so the layout is checked first.
	err = checkChunks(data, h.numTracks)
	if err != nil {
		return nil, err
	}
	if h.numTracks == 0 {
		return &File{TicksPerQuarter: h.division}, nil
	}

	// The smf reader panics on some corrupt inputs.
	defer func() {
		if r := recover(); r != nil {
			f = nil
			err = fmt.Errorf("%w: %v", ErrMalformedFile, r)
		}
	}()

	mid, err := smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFile, err)
	}

	ticks, ok := mid.TimeFormat.(smf.MetricTicks)
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedTiming, mid.TimeFormat)
	}
	if ticks == 0 {
		return nil, fmt.Errorf("%w: zero ticks per quarter note", ErrMalformedFile)
	}

	f = &File{
		TicksPerQuarter: uint16(ticks),
		Tracks:          make([]Track, 0, len(mid.Tracks)),
	}
	for _, t := range mid.Tracks {
		track := make(Track, 0, len(t))
		for _, ev := range t {
			track = append(track, RawEvent{
				Delta: ev.Delta,
				Kind:  kindOf(ev.Message),
			})
		}
		f.Tracks = append(f.Tracks, track)
	}
	return f, nil
}

// kindOf classifies a message. A note-on with velocity 0 stays a NoteOn; the
// reconstructor treats it as a note end.
func kindOf(msg smf.Message) Kind {
	var ch, key, vel uint8
	if msg.GetNoteOn(&ch, &key, &vel) {
		return NoteOn(ch, key, vel)
	}
	if msg.GetNoteOff(&ch, &key, &vel) {
		return NoteOff(ch, key, vel)
	}
	var bpm float64
	if msg.GetMetaTempo(&bpm) {
		return Tempo(microsPerQuarter(bpm))
	}
	return Other()
}

// microsPerQuarter undoes the reader's bpm conversion. Tempo payloads are
// 24-bit integers, so rounding recovers them exactly.
func microsPerQuarter(bpm float64) uint32 {
	if bpm <= 0 || math.IsInf(bpm, 0) || math.IsNaN(bpm) {
		return 0
	}
	return uint32(math.Round(60000000 / bpm))
}
