package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Format: FormatJSON, Level: slog.LevelInfo})
	log.Info("Decoded file.", "notes", 3)

	assert.Contains(t, buf.String(), `"msg":"Decoded file."`)
	assert.Contains(t, buf.String(), `"notes":3`)
}

func TestNew_PrettyWithoutColor(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Format: FormatPretty, Level: slog.LevelDebug})
	log.With("path", "a.mid").WithGroup("scan").Debug("Scanning.", "files", 2)

	out := buf.String()
	assert.Contains(t, out, "DBG Scanning.")
	assert.Contains(t, out, "path=a.mid")
	assert.Contains(t, out, "scan.files=2")
	assert.NotContains(t, out, "\033[")
}

func TestPrettyHandler_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Level: slog.LevelWarn})
	log.Info("hidden")
	log.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "WRN shown")
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, ParseLevel(in))
		})
	}
}

func TestPrettyHandler_Color(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Level: slog.LevelInfo, Color: true})
	log.Error("Failed.", "path", "a.mid")
	log.Log(context.Background(), slog.LevelInfo+2, "Custom.")

	out := buf.String()
	assert.Contains(t, out, colorRed+"ERR"+colorReset+" Failed.")
	assert.Contains(t, out, colorCyan+"path=a.mid"+colorReset)
	assert.Contains(t, out, " INFO+2 Custom.")
}
