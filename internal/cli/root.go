// Package cli implements the klok command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/klokapp/klok/internal/file"
	"github.com/klokapp/klok/internal/library"
	"github.com/klokapp/klok/internal/logger"
	"github.com/klokapp/klok/internal/metadata"
	"github.com/klokapp/klok/internal/resource"
	"github.com/klokapp/klok/internal/tags"
)

const defaultConfigFile = "klok.yml"

type app struct {
	configFile string
	logLevel   string
	root       string

	config *file.Config
	logger *slog.Logger
}

// NewRootCommand builds the klok command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "klok",
		Short:         "Karaoke library: MIDI notes, lyrics and playlists",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file name (YAML), default "+defaultConfigFile+" if present")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn or error")
	flags.StringVar(&a.root, "root", "", "resource directory, overrides resource_root")

	root.AddCommand(
		a.notesCommand(),
		a.eventsCommand(),
		a.metadataCommand(),
		a.playlistCommand(),
		a.serveCommand(),
		a.encryptCommand(),
		versionCommand(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	config, err := a.loadConfig()
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	if a.logLevel != "" {
		config.LogLevel = a.logLevel
	}
	if a.root != "" {
		config.ResourceRoot = a.root
	}
	a.config = config
	a.logger = logger.SetDefault(logger.Config{
		Writer: cmd.ErrOrStderr(),
		Format: config.LogFormat,
		Level:  logger.ParseLevel(config.LogLevel),
		Color:  isTerminal(cmd.ErrOrStderr()),
	})
	return nil
}

func (a *app) loadConfig() (*file.Config, error) {
	if a.configFile == "" {
		return file.LoadConfig(os.DirFS("."), defaultConfigFile)
	}
	dir, name := filepath.Split(a.configFile)
	if dir == "" {
		dir = "."
	}
	config, err := file.ReadConfig(os.DirFS(dir), name)
	if err != nil {
		return nil, err
	}
	err = config.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid %v: %w", a.configFile, err)
	}
	return config, nil
}

func (a *app) store() (*resource.Store, error) {
	return resource.New(a.config.ResourceRoot,
		resource.WithMaxSize(a.config.MaxFileSize),
		resource.WithPassphrase(a.config.Passphrase))
}

func (a *app) library() (*library.Service, error) {
	store, err := a.store()
	if err != nil {
		return nil, err
	}
	return library.New(store, library.Options{
		Tags:       tags.NewAudioMeta(a.config.TagTimeout, a.logger),
		Fallbacks:  metadata.DetectFallbacks(),
		Extensions: a.config.PlaylistExtensions(),
		Logger:     a.logger,
	}), nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Execute runs klok until it finishes or is interrupted.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	err := NewRootCommand().ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
