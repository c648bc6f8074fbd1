package cvhist

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"race-clock/internal/scene"
)

func TestHistogram(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 200, G: 100, B: 30, A: 255})
		}
	}
	path := filepath.Join(t.TempDir(), "test_0000.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())

	h, err := NewSource().Histogram(path)
	require.NoError(t, err)
	require.Len(t, h, scene.Bins)
	assert.Equal(t, 64.0, h[30])
	assert.Equal(t, 0.0, h[200])
}

func TestHistogram_UnreadableFrame(t *testing.T) {
	dir := t.TempDir()
	_, err := NewSource().Histogram(filepath.Join(dir, "missing.png"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.png")
	require.NoError(t, os.WriteFile(bad, []byte("not an image"), 0644))
	_, err = NewSource().Histogram(bad)
	assert.Error(t, err)
}
