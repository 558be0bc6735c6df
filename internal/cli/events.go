package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/klokapp/klok/internal/midinotes"
)

// dumpEvents prints the merged timeline of f, one event per line.
func dumpEvents(w io.Writer, f *midinotes.File, all bool) error {
	clock := midinotes.NewClock(f.TicksPerQuarter)
	return midinotes.ForEachEvent(f.Tracks, func(tick int64, track int, kind midinotes.Kind) error {
		seconds := clock.Advance(tick, kind)
		switch kind.Type {
		case midinotes.EventTempo:
			_, err := fmt.Fprintf(w, "%d @ %.3fs: track %d: tempo is %.2f bpm.\n", tick, seconds, track, 60000000/float64(kind.Tempo))
			return err
		case midinotes.EventOther:
			if !all {
				return nil
			}
		}
		_, err := fmt.Fprintf(w, "%d @ %.3fs: track %d: %v\n", tick, seconds, track, kind)
		return err
	})
}

func (a *app) eventsCommand() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "events <name>",
		Short: "Print the merged event timeline of a MIDI resource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := a.library()
			if err != nil {
				return err
			}
			f, err := lib.LoadFile(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			_, err = fmt.Fprintf(out, "%d tracks, %d ticks per quarter note.\n", len(f.Tracks), f.TicksPerQuarter)
			if err != nil {
				return err
			}
			return dumpEvents(out, f, all)
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "also print events that are neither notes nor tempo changes")
	return cmd
}
