package midinotes

import (
	"errors"
)

// StopIteration can be returned to return without failure.
var StopIteration = errors.New("ForEachEvent: StopIteration")

// ForEachEvent runs the given function for each event of all tracks, in order of absolute tick.
// Events at the same tick come in track order, then in track position order.
func ForEachEvent(tracks []Track, yield func(tick int64, track int, kind Kind) error) error {
	// trackPos is the index of the NEXT event from each track.
	trackPos := make([]int, len(tracks))
	// trackTime is the time of the LAST event from each track.
	trackTime := make([]int64, len(tracks))
	for {
		earliestTrack := -1
		var earliestTime int64
		for i, t := range tracks {
			p := trackPos[i]
			if p >= len(t) {
				// End of track.
				continue
			}
			time := trackTime[i] + int64(t[p].Delta)
			if earliestTrack < 0 || time < earliestTime {
				earliestTime = time
				earliestTrack = i
			}
		}
		if earliestTrack < 0 {
			// End of MIDI.
			return nil
		}
		err := yield(earliestTime, earliestTrack, tracks[earliestTrack][trackPos[earliestTrack]].Kind)
		if errors.Is(err, StopIteration) {
			return nil
		}
		if err != nil {
			return err
		}
		trackPos[earliestTrack]++
		trackTime[earliestTrack] = earliestTime
	}
}

// Merge flattens all tracks into one timeline.
func Merge(tracks []Track) []TimedEvent {
	n := 0
	for _, t := range tracks {
		n += len(t)
	}
	events := make([]TimedEvent, 0, n)
	// The callback never fails.
	_ = ForEachEvent(tracks, func(tick int64, track int, kind Kind) error {
		events = append(events, TimedEvent{Tick: tick, Track: track, Kind: kind})
		return nil
	})
	return events
}
