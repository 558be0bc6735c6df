package midinotes

import (
	"encoding/binary"
	"fmt"
)

const (
	trackMagic = "MTrk"
	// maxVarLen is the longest variable-length quantity a file may use.
	maxVarLen = 4
)

// chunkReader walks a byte slice and reports overruns instead of stopping
// early.
type chunkReader struct {
	data []byte
	pos  int
}

func (r *chunkReader) remaining() int {
	return len(r.data) - r.pos
}

func (r *chunkReader) readByte() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, fmt.Errorf("%w: unexpected end of chunk at byte %d", ErrMalformedFile, r.pos)
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

func (r *chunkReader) skip(n uint32) error {
	if uint64(n) > uint64(r.remaining()) {
		return fmt.Errorf("%w: %d bytes needed at byte %d, %d left", ErrMalformedFile, n, r.pos, r.remaining())
	}
	r.pos += int(n)
	return nil
}

// readVarLen reads a variable-length quantity of at most four bytes.
func (r *chunkReader) readVarLen() (uint32, error) {
	var v uint32
	for i := 0; i < maxVarLen; i++ {
		b, err := r.readByte()
		if err != nil {
			return 0, err
		}
		v = v<<7 | uint32(b&0x7F)
		if b < 0x80 {
			return v, nil
		}
	}
	return 0, fmt.Errorf("%w: variable-length quantity longer than %d bytes at byte %d", ErrMalformedFile, maxVarLen, r.pos)
}

// checkChunks validates the chunk layout after the header: every declared
// chunk length fits the data, at least numTracks track chunks exist, and each
// track decodes into whole events with valid variable-length quantities.
// Chunks after the last announced track are not looked at.
func checkChunks(data []byte, numTracks uint16) error {
	headerLen := binary.BigEndian.Uint32(data[4:8])
	r := &chunkReader{data: data}
	if err := r.skip(8); err != nil {
		return err
	}
	if err := r.skip(headerLen); err != nil {
		return fmt.Errorf("header chunk: %w", err)
	}

	found := 0
	for found < int(numTracks) {
		if r.remaining() < 8 {
			return fmt.Errorf("%w: found %d of %d track chunks", ErrMalformedFile, found, numTracks)
		}
		magic := string(data[r.pos : r.pos+4])
		length := binary.BigEndian.Uint32(data[r.pos+4 : r.pos+8])
		r.pos += 8
		start := r.pos
		if err := r.skip(length); err != nil {
			return fmt.Errorf("chunk %q: %w", magic, err)
		}
		if magic != trackMagic {
			// Unknown chunk types are skipped.
			continue
		}
		err := checkTrack(data[start:r.pos])
		if err != nil {
			return fmt.Errorf("track %d: %w", found, err)
		}
		found++
	}
	return nil
}

// checkTrack walks the events of one track chunk payload.
func checkTrack(payload []byte) error {
	r := &chunkReader{data: payload}
	var running byte
	for r.remaining() > 0 {
		if _, err := r.readVarLen(); err != nil {
			return err
		}
		status, err := r.readByte()
		if err != nil {
			return err
		}
		switch {
		case status == 0xFF:
			if _, err := r.readByte(); err != nil {
				return err
			}
			fallthrough
		case status == 0xF0 || status == 0xF7:
			n, err := r.readVarLen()
			if err != nil {
				return err
			}
			if err := r.skip(n); err != nil {
				return err
			}
		case status >= 0xF0:
			return fmt.Errorf("%w: status byte %#x is not allowed in a file", ErrMalformedFile, status)
		case status >= 0x80:
			running = status
			if err := r.skip(channelDataLen(status)); err != nil {
				return err
			}
		default:
			if running == 0 {
				return fmt.Errorf("%w: data byte %#x without running status", ErrMalformedFile, status)
			}
			// status is the first data byte.
			if err := r.skip(channelDataLen(running) - 1); err != nil {
				return err
			}
		}
	}
	return nil
}

func channelDataLen(status byte) uint32 {
	switch status & 0xF0 {
	case 0xC0, 0xD0:
		return 1
	default:
		return 2
	}
}
