package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/klokapp/klok/internal/midinotes"
	"github.com/klokapp/klok/internal/playlist"
	"github.com/klokapp/klok/internal/resource"
	"github.com/klokapp/klok/internal/server"
	"github.com/klokapp/klok/internal/version"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeNotesTable(w io.Writer, notes []midinotes.Note) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "NOTE\tSTART\tDURATION\tVELOCITY\tCHANNEL\t")
	for _, n := range notes {
		fmt.Fprintf(tw, "%d\t%.3f\t%.3f\t%.0f\t%d\t\n", n.Pitch, n.Start, n.Duration, n.Velocity, n.Channel)
	}
	return tw.Flush()
}

func (a *app) notesCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "notes <name>",
		Short: "Print the notes of a MIDI resource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := a.library()
			if err != nil {
				return err
			}
			notes, err := lib.LoadMIDI(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON || !isTerminal(out) {
				return writeJSON(out, notes)
			}
			return writeNotesTable(out, notes)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON even on a terminal")
	return cmd
}

func (a *app) metadataCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "metadata <name>",
		Short: "Print title, artist, duration and lyrics of a song",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := a.library()
			if err != nil {
				return err
			}
			md, err := lib.GetMetadata(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), md)
		},
	}
}

func (a *app) playlistCommand() *cobra.Command {
	var (
		exts  []string
		watch bool
	)
	cmd := &cobra.Command{
		Use:   "playlist",
		Short: "List the songs in the resource directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := a.library()
			if err != nil {
				return err
			}
			items, err := lib.LoadPlaylist(exts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			err = writeJSON(out, items)
			if err != nil || !watch {
				return err
			}
			return lib.WatchPlaylist(cmd.Context(), exts, func(items []playlist.Item) {
				err := writeJSON(out, items)
				if err != nil {
					a.logger.Warn("Could not print playlist.", "error", err)
				}
			})
		},
	}
	cmd.Flags().StringSliceVar(&exts, "ext", nil, "file extensions to list, e.g. --ext .mp3,.flac")
	cmd.Flags().BoolVar(&watch, "watch", false, "print the playlist again whenever it changes")
	return cmd
}

func (a *app) serveCommand() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the library over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := a.library()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = a.config.Listen
			}
			srv := server.New(lib, server.Options{
				AllowedOrigins: a.config.AllowedOrigins,
				Version:        version.Version(),
				Logger:         a.logger,
			})
			return srv.ListenAndServe(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides listen")
	return cmd
}

func (a *app) encryptCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "encrypt <file>",
		Short: "Write an encrypted copy <file>" + resource.EncryptedSuffix + " using the configured passphrase",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			if a.config.Passphrase == "" {
				return fmt.Errorf("passphrase must be set in the config file")
			}
			src, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer src.Close()
			dstName := args[0] + resource.EncryptedSuffix
			dst, err := os.Create(dstName)
			if err != nil {
				return err
			}
			defer func() {
				closeErr := dst.Close()
				if closeErr != nil && err == nil {
					err = closeErr
				}
			}()
			err = resource.Encrypt(dst, src, a.config.Passphrase)
			if err != nil {
				return fmt.Errorf("could not encrypt %v: %w", args[0], err)
			}
			a.logger.Info("Encrypted.", "path", dstName)
			return nil
		},
	}
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the klok version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version.Version())
			return err
		},
	}
}
