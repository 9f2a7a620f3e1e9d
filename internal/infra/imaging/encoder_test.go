package imaging

import (
	"context"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zaigie/record2screenshot/internal/stitch"
	"go.uber.org/zap"
)

func testCanvas(w, h int) *stitch.Canvas {
	c := &stitch.Canvas{Width: w, Height: h, Pix: make([]uint8, w*h*3)}
	for i := range c.Pix {
		c.Pix[i] = byte(i % 251)
	}
	return c
}

func decodeBounds(t *testing.T, path string) (int, int) {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := jpeg.Decode(f)
	require.NoError(t, err)
	return img.Bounds().Dx(), img.Bounds().Dy()
}

func TestEncodeSingleFile(t *testing.T) {
	enc := NewEncoder(100, 90, zap.NewNop())
	out := filepath.Join(t.TempDir(), "shot.jpg")

	paths, err := enc.Encode(context.Background(), testCanvas(8, 20), out, false)
	require.NoError(t, err)
	require.Equal(t, []string{out}, paths)

	w, h := decodeBounds(t, out)
	assert.Equal(t, 8, w)
	assert.Equal(t, 20, h)
}

func TestEncodeZeroMaxHeightFallsBackToDefault(t *testing.T) {
	enc := NewEncoder(0, 90, zap.NewNop())
	out := filepath.Join(t.TempDir(), "shot.jpg")

	paths, err := enc.Encode(context.Background(), testCanvas(8, 20), out, false)
	require.NoError(t, err)
	require.Equal(t, []string{out}, paths)

	_, h := decodeBounds(t, out)
	assert.Equal(t, 20, h)
}

func TestEncodeSplitsTallCanvas(t *testing.T) {
	enc := NewEncoder(16, 90, zap.NewNop())
	dir := t.TempDir()
	out := filepath.Join(dir, "shot.jpg")

	// 40 rows with a 16-row limit: bands of 16, 16 and 8.
	paths, err := enc.Encode(context.Background(), testCanvas(6, 40), out, false)
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(dir, "shot.jpg"),
		filepath.Join(dir, "shot_1.jpg"),
		filepath.Join(dir, "shot_2.jpg"),
	}, paths)

	_, h0 := decodeBounds(t, paths[0])
	_, h1 := decodeBounds(t, paths[1])
	_, h2 := decodeBounds(t, paths[2])
	assert.Equal(t, 16, h0)
	assert.Equal(t, 16, h1)
	assert.Equal(t, 8, h2)
}

func TestEncodeExactMultipleLeavesNoEmptyBand(t *testing.T) {
	enc := NewEncoder(10, 90, zap.NewNop())
	out := filepath.Join(t.TempDir(), "shot.jpg")

	paths, err := enc.Encode(context.Background(), testCanvas(4, 20), out, false)
	require.NoError(t, err)
	assert.Len(t, paths, 2)
}

func TestEncodeTranspose(t *testing.T) {
	enc := NewEncoder(1000, 90, zap.NewNop())
	out := filepath.Join(t.TempDir(), "shot.jpg")

	paths, err := enc.Encode(context.Background(), testCanvas(8, 20), out, true)
	require.NoError(t, err)
	require.Len(t, paths, 1)

	w, h := decodeBounds(t, paths[0])
	assert.Equal(t, 20, w)
	assert.Equal(t, 8, h)
}

func TestEncodeDefaultsExtension(t *testing.T) {
	enc := NewEncoder(100, 90, zap.NewNop())
	out := filepath.Join(t.TempDir(), "shot")

	paths, err := enc.Encode(context.Background(), testCanvas(4, 6), out, false)
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Equal(t, ".jpg", filepath.Ext(paths[0]))
}
