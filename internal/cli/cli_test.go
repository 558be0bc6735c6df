package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/klokapp/klok/internal/midinotes"
	"github.com/klokapp/klok/internal/version"
)

func midiFile(t *testing.T) []byte {
	t.Helper()
	var tr smf.Track
	tr.Add(0, smf.MetaTempo(60))
	tr.Add(0, midi.NoteOn(2, 67, 90))
	tr.Add(240, midi.NoteOff(2, 67))
	tr.Close(0)
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(480)
	_ = s.Add(tr)
	var b bytes.Buffer
	_, err := s.WriteTo(&b)
	require.NoError(t, err)
	return b.Bytes()
}

// run executes klok against a fresh resource directory.
func run(t *testing.T, files map[string][]byte, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	for name, data := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
	}
	config := filepath.Join(t.TempDir(), "klok.yml")
	require.NoError(t, os.WriteFile(config, []byte("resource_root: "+dir+"\nlog_level: error\n"), 0o644))

	var out, errOut bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--config", config}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestNotes(t *testing.T) {
	out, err := run(t, map[string][]byte{"song.mid": midiFile(t)}, "notes", "song.mid")
	require.NoError(t, err)

	var notes []midinotes.Note
	require.NoError(t, json.Unmarshal([]byte(out), &notes))
	require.Len(t, notes, 1)
	assert.Equal(t, 67, notes[0].Pitch)
	assert.Equal(t, uint8(2), notes[0].Channel)
	assert.InDelta(t, 0.5, notes[0].Duration, 1e-9)
}

func TestNotes_Errors(t *testing.T) {
	_, err := run(t, nil, "notes", "missing.mid")
	assert.ErrorContains(t, err, "resource not found")

	_, err = run(t, nil, "notes")
	assert.Error(t, err)
}

func TestEvents(t *testing.T) {
	out, err := run(t, map[string][]byte{"song.mid": midiFile(t)}, "events", "song.mid")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "1 tracks, 480 ticks per quarter note.", lines[0])
	assert.Equal(t, "0 @ 0.000s: track 0: tempo is 60.00 bpm.", lines[1])
	assert.Equal(t, "0 @ 0.000s: track 0: NoteOn{ch=2 pitch=67 vel=90}", lines[2])
	assert.True(t, strings.HasPrefix(lines[3], "240 @ 0.500s: track 0: NoteOff{ch=2 pitch=67"), lines[3])
}

func TestMetadata(t *testing.T) {
	out, err := run(t, map[string][]byte{"song.lrc": []byte("[00:04.00]hey")}, "metadata", "song.lrc")
	require.NoError(t, err)

	var md struct {
		Title    string  `json:"title"`
		Duration float64 `json:"duration"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &md))
	assert.Equal(t, "song", md.Title)
	assert.Equal(t, 14.0, md.Duration)
}

func TestPlaylist(t *testing.T) {
	files := map[string][]byte{"a.mp3": nil, "b.flac": nil, "c.ogg": nil}

	out, err := run(t, files, "playlist")
	require.NoError(t, err)
	assert.Contains(t, out, `"a.mp3"`)
	assert.Contains(t, out, `"b.flac"`)
	assert.NotContains(t, out, `"c.ogg"`)

	out, err = run(t, files, "playlist", "--ext", ".ogg")
	require.NoError(t, err)
	assert.Contains(t, out, `"c.ogg"`)
	assert.NotContains(t, out, `"a.mp3"`)
}

func TestVersion(t *testing.T) {
	out, err := run(t, nil, "version")
	require.NoError(t, err)
	assert.Equal(t, version.Version()+"\n", out)
}

func TestInvalidConfig(t *testing.T) {
	config := filepath.Join(t.TempDir(), "klok.yml")
	require.NoError(t, os.WriteFile(config, []byte("log_format: xml\n"), 0o644))

	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", config, "version"})
	assert.ErrorContains(t, cmd.Execute(), "log_format")
}

func TestEncrypt(t *testing.T) {
	dir := t.TempDir()
	song := filepath.Join(dir, "song.mid")
	require.NoError(t, os.WriteFile(song, midiFile(t), 0o644))
	config := filepath.Join(dir, "klok.yml")
	require.NoError(t, os.WriteFile(config, []byte("resource_root: "+dir+"\npassphrase: pw\nlog_level: error\n"), 0o644))

	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", config, "encrypt", song})
	require.NoError(t, cmd.Execute())
	require.NoError(t, os.Remove(song))

	var out bytes.Buffer
	cmd = NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", config, "notes", "song.mid"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), `"note": 67`)
}

func TestWriteNotesTable(t *testing.T) {
	var b bytes.Buffer
	require.NoError(t, writeNotesTable(&b, []midinotes.Note{
		{Pitch: 60, Start: 0.5, Duration: 0.25, Velocity: 100, Channel: 9},
	}))
	lines := strings.Split(strings.TrimRight(b.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, []string{"NOTE", "START", "DURATION", "VELOCITY", "CHANNEL"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"60", "0.500", "0.250", "100", "9"}, strings.Fields(lines[1]))
}
