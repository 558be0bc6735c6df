package file

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/klokapp/klok/internal/logger"
)

// DefaultExtensions are the audio file extensions listed in playlists.
var DefaultExtensions = []string{".mp3", ".m4a", ".flac"}

// Config is the klok configuration file.
type Config struct {
	// ResourceRoot is the directory songs, lyrics and MIDI files are loaded from.
	ResourceRoot string `yaml:"resource_root"`

	// Extensions overrides DefaultExtensions for playlists.
	Extensions []string `yaml:"extensions,omitempty"`

	// MaxFileSize limits the size of resources read into memory, in bytes.
	MaxFileSize int64 `yaml:"max_file_size"`

	// Passphrase unlocks age encrypted resources (name + ".age").
	Passphrase string `yaml:"passphrase,omitempty"`

	// TagTimeout bounds reading tags of one audio file.
	TagTimeout time.Duration `yaml:"tag_timeout"`

	Listen         string   `yaml:"listen"`
	AllowedOrigins []string `yaml:"allowed_origins,omitempty"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

func DefaultConfig() *Config {
	return &Config{
		ResourceRoot: "res",
		MaxFileSize:  32 << 20,
		TagTimeout:   10 * time.Second,
		Listen:       ":8080",
		LogLevel:     "info",
		LogFormat:    logger.FormatPretty,
	}
}

// PlaylistExtensions returns the configured extensions or the defaults.
func (c *Config) PlaylistExtensions() []string {
	if len(c.Extensions) == 0 {
		return DefaultExtensions
	}
	return c.Extensions
}

func (c *Config) Validate() error {
	if c.ResourceRoot == "" {
		return fmt.Errorf("resource_root must be set")
	}
	if c.MaxFileSize <= 0 {
		return fmt.Errorf("max_file_size must be positive, got %d", c.MaxFileSize)
	}
	if c.TagTimeout <= 0 {
		return fmt.Errorf("tag_timeout must be positive, got %v", c.TagTimeout)
	}
	for _, ext := range c.Extensions {
		if len(ext) < 2 || ext[0] != '.' {
			return fmt.Errorf("extension %q must start with a dot", ext)
		}
	}
	switch c.LogFormat {
	case logger.FormatJSON, logger.FormatPretty:
	default:
		return fmt.Errorf("log_format must be %q or %q, got %q", logger.FormatJSON, logger.FormatPretty, c.LogFormat)
	}
	return nil
}

// ReadConfig decodes the given YAML file on top of the defaults.
func ReadConfig(fsys fs.FS, configFile string) (*Config, error) {
	f, err := fsys.Open(configFile)
	if err != nil {
		return nil, fmt.Errorf("could not open: %w", err)
	}
	defer f.Close()
	config := DefaultConfig()
	err = yaml.NewDecoder(f).Decode(config)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("could not decode: %v", err)
	}
	return config, nil
}

// LoadConfig is ReadConfig, but a missing file yields the defaults.
func LoadConfig(fsys fs.FS, configFile string) (*Config, error) {
	config, err := ReadConfig(fsys, configFile)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, err
	}
	err = config.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid %v: %v", configFile, err)
	}
	return config, nil
}

func WriteConfig(configFile string, config *Config) (err error) {
	f, err := os.Create(configFile)
	if err != nil {
		return fmt.Errorf("could not recreate %v: %v", configFile, err)
	}
	defer func() {
		closeErr := f.Close()
		if closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	enc := yaml.NewEncoder(f)
	enc.SetIndent(2) // Match yq.
	return enc.Encode(config)
}
