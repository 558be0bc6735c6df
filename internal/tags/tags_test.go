package tags

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAudioMeta_UnreadableFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "noise.mp3")
	require.NoError(t, os.WriteFile(p, []byte("definitely not audio"), 0o644))

	info, ok := NewAudioMeta(time.Second, nil).Read(context.Background(), p)
	assert.False(t, ok)
	assert.Equal(t, Info{}, info)
}

func TestAudioMeta_MissingFile(t *testing.T) {
	_, ok := NewAudioMeta(0, nil).Read(context.Background(), filepath.Join(t.TempDir(), "gone.flac"))
	assert.False(t, ok)
}

func TestStatic(t *testing.T) {
	r := Static{"/a.mp3": {Duration: 3 * time.Second, Artist: "Ann"}}

	info, ok := r.Read(context.Background(), "/a.mp3")
	assert.True(t, ok)
	assert.Equal(t, "Ann", info.Artist)

	_, ok = r.Read(context.Background(), "/b.mp3")
	assert.False(t, ok)
}
