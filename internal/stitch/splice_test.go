package stitch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoFrames builds a 2-frame sequence where every sample encodes
// (frame, plane, row) so canvas rows can be traced to their source.
func twoFrames(t *testing.T, w, h int) *FrameSequence {
	t.Helper()
	buf := make([]byte, 2*numPlanes*w*h)
	for f := 0; f < 2; f++ {
		for p := 0; p < numPlanes; p++ {
			for r := 0; r < h; r++ {
				for c := 0; c < w; c++ {
					buf[((f*numPlanes+p)*h+r)*w+c] = byte(100*f + 10*p + r)
				}
			}
		}
	}
	frames, err := NewFrameSequence(buf, w, h)
	require.NoError(t, err)
	return frames
}

// assertCanvasRow checks that one canvas row holds the given frame's
// planes at the given source row.
func assertCanvasRow(t *testing.T, c *Canvas, canvasRow, frame, srcRow int) {
	t.Helper()
	off := canvasRow * c.Width * numPlanes
	for x := 0; x < c.Width; x++ {
		for p := 0; p < numPlanes; p++ {
			require.Equal(t, byte(100*frame+10*p+srcRow), c.Pix[off+numPlanes*x+p],
				"canvas row %d col %d plane %d", canvasRow, x, p)
		}
	}
}

func TestSpliceLayout(t *testing.T) {
	const w, h = 4, 10
	frames := twoFrames(t, w, h)
	opts := Options{CropTop: 2, CropBottom: 2}
	entries := []AlignmentEntry{{FrameIndex: 1, Offset: 3}}

	c := Splice(frames, entries, opts)
	require.Equal(t, 13, c.Height) // (3-0) + 10
	require.Equal(t, w, c.Width)

	// Top strip from the top-extreme frame (frame 0 here), uncropped.
	assertCanvasRow(t, c, 0, 0, 0)
	assertCanvasRow(t, c, 1, 0, 1)
	// Frame 0 body at its baseline.
	assertCanvasRow(t, c, 2, 0, 2)
	assertCanvasRow(t, c, 4, 0, 4)
	// Frame 1 body pasted at cumulative position, overwriting frame 0.
	assertCanvasRow(t, c, 5, 1, 2)
	assertCanvasRow(t, c, 10, 1, 7)
	// Bottom strip from the bottom-extreme frame (frame 1), uncropped.
	assertCanvasRow(t, c, 11, 1, 8)
	assertCanvasRow(t, c, 12, 1, 9)
}

func TestSpliceNegativeOffset(t *testing.T) {
	const w, h = 4, 10
	frames := twoFrames(t, w, h)
	opts := Options{CropTop: 2, CropBottom: 2}
	entries := []AlignmentEntry{{FrameIndex: 1, Offset: -3}}

	c := Splice(frames, entries, opts)
	require.Equal(t, 13, c.Height)

	// Frame 1 reached the minimum position, so it supplies the top strip.
	assertCanvasRow(t, c, 0, 1, 0)
	assertCanvasRow(t, c, 1, 1, 1)
	// Frame 1 body at rows 2..7, frame 0 body keeps rows 8..10.
	assertCanvasRow(t, c, 2, 1, 2)
	assertCanvasRow(t, c, 7, 1, 7)
	assertCanvasRow(t, c, 8, 0, 5)
	assertCanvasRow(t, c, 10, 0, 7)
	// Frame 0 is the bottom extreme.
	assertCanvasRow(t, c, 11, 0, 8)
	assertCanvasRow(t, c, 12, 0, 9)
}

func TestSpliceExtentMatchesOffsetSum(t *testing.T) {
	const h = 30
	seq := scrollSequence(t, 4, 50, h, 0)
	entries := []AlignmentEntry{
		{FrameIndex: 1, Offset: 5},
		{FrameIndex: 2, Offset: 7},
		{FrameIndex: 3, Offset: 3},
	}
	c := Splice(seq, entries, Options{CropTop: 3, CropBottom: 3})
	assert.Equal(t, 5+7+3+h, c.Height)
}

func TestSpliceSeamMarker(t *testing.T) {
	const w, h = 4, 10
	frames := twoFrames(t, w, h)
	opts := Options{CropTop: 2, CropBottom: 2, SeamWidth: 2}
	entries := []AlignmentEntry{{FrameIndex: 1, Offset: 3}}

	c := Splice(frames, entries, opts)

	// Frame 0's body is never seam-marked.
	assertCanvasRow(t, c, 2, 0, 2)

	// The first two rows of the pasted block carry the marker color.
	for _, row := range []int{5, 6} {
		off := row * w * numPlanes
		for x := 0; x < w; x++ {
			assert.Equal(t, seamColor[0], c.Pix[off+numPlanes*x+0])
			assert.Equal(t, seamColor[1], c.Pix[off+numPlanes*x+1])
			assert.Equal(t, seamColor[2], c.Pix[off+numPlanes*x+2])
		}
	}
	// Rows after the marker are normal frame content.
	assertCanvasRow(t, c, 7, 1, 4)
}

func TestSpliceNoCropStrips(t *testing.T) {
	const w, h = 4, 10
	frames := twoFrames(t, w, h)
	entries := []AlignmentEntry{{FrameIndex: 1, Offset: 4}}

	c := Splice(frames, entries, Options{})
	require.Equal(t, 14, c.Height)
	assertCanvasRow(t, c, 0, 0, 0)
	assertCanvasRow(t, c, 3, 0, 3)
	assertCanvasRow(t, c, 4, 1, 0)
	assertCanvasRow(t, c, 13, 1, 9)
}
