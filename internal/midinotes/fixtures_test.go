package midinotes

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// writeSMF serializes tracks with the smf writer.
func writeSMF(t *testing.T, ticks uint16, tracks ...smf.Track) []byte {
	t.Helper()
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(ticks)
	for _, tr := range tracks {
		s.Add(tr)
	}
	var b bytes.Buffer
	_, err := s.WriteTo(&b)
	require.NoError(t, err)
	return b.Bytes()
}

// track builds a closed smf track from (delta, message) pairs.
func track(events ...smf.Event) smf.Track {
	var tr smf.Track
	for _, ev := range events {
		tr.Add(ev.Delta, ev.Message)
	}
	tr.Close(0)
	return tr
}

func at(delta uint32, msg []byte) smf.Event {
	return smf.Event{Delta: delta, Message: smf.Message(msg)}
}

func on(ch, key, vel uint8) []byte {
	return midi.NoteOn(ch, key, vel)
}

func off(ch, key uint8) []byte {
	return midi.NoteOff(ch, key)
}

func vlq(v uint32) []byte {
	out := []byte{byte(v & 0x7F)}
	for v >>= 7; v > 0; v >>= 7 {
		out = append([]byte{byte(v&0x7F) | 0x80}, out...)
	}
	return out
}

// rawEvent encodes one track event by hand.
func rawEvent(delta uint32, b ...byte) []byte {
	return append(vlq(delta), b...)
}

// rawSMF assembles a format 1 file by hand, for inputs the writer refuses to produce.
func rawSMF(division uint16, tracks ...[]byte) []byte {
	var b bytes.Buffer
	b.WriteString("MThd")
	_ = binary.Write(&b, binary.BigEndian, uint32(6))
	_ = binary.Write(&b, binary.BigEndian, uint16(1))
	_ = binary.Write(&b, binary.BigEndian, uint16(len(tracks)))
	_ = binary.Write(&b, binary.BigEndian, division)
	for _, tr := range tracks {
		b.WriteString("MTrk")
		_ = binary.Write(&b, binary.BigEndian, uint32(len(tr)))
		b.Write(tr)
	}
	return b.Bytes()
}

func rawTrack(events ...[]byte) []byte {
	var b []byte
	for _, ev := range events {
		b = append(b, ev...)
	}
	return append(b, rawEvent(0, 0xFF, 0x2F, 0x00)...)
}

// malformedFiles lists structurally broken files, each of which must be
// rejected as a whole.
func malformedFiles() []struct {
	name string
	data []byte
} {
	midMessage := rawSMF(480, []byte{0x00, 0x90, 0x3C})
	// Claim a longer track than present.
	midMessage[len(midMessage)-4] = 100

	twoNotes := rawSMF(480, rawTrack(
		rawEvent(0, 0x90, 0x3C, 0x40),
		rawEvent(480, 0x80, 0x3C, 0x40),
		rawEvent(0, 0x90, 0x3E, 0x40),
		rawEvent(480, 0x80, 0x3E, 0x40),
	))
	// Cut the end of track event, leaving whole note events only.
	cutAtEvent := twoNotes[:len(twoNotes)-4]
	// Cut the last note off as well.
	cutAtNote := twoNotes[:len(twoNotes)-8]

	missingTrack := rawSMF(480, rawTrack())
	missingTrack[11] = 2

	return []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"short header", []byte("MThd\x00\x00")},
		{"bad magic", []byte("RIFF\x00\x00\x00\x06\x00\x01\x00\x01\x01\xe0")},
		{"header too small", []byte("MThd\x00\x00\x00\x02\x00\x01\x00\x01\x01\xe0")},
		{"header longer than file", []byte("MThd\x00\x00\x00\x64\x00\x01\x00\x00\x01\xe0")},
		{"truncated mid message", midMessage},
		{"truncated at event boundary", cutAtEvent},
		{"truncated after first note", cutAtNote},
		{"fewer tracks than announced", missingTrack},
		{"overlong delta", rawSMF(480, rawTrack(
			[]byte{0x81, 0x81, 0x81, 0x81, 0x81, 0x00, 0x90, 0x3C, 0x40},
		))},
		{"overlong delta before note", rawSMF(480, rawTrack(
			[]byte{0xFF, 0xFF, 0xFF, 0xFF, 0x7F, 0x90, 0x3C, 0x40},
		))},
		{"overlong meta length", rawSMF(480, rawTrack(
			[]byte{0x00, 0xFF, 0x01, 0x80, 0x80, 0x80, 0x80, 0x00},
		))},
		{"data byte without status", rawSMF(480, rawTrack(rawEvent(0, 0x3C, 0x40)))},
		{"zero resolution", rawSMF(0, rawTrack())},
	}
}
