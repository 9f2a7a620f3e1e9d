package stitch

// Canvas is the composited output image: Height×Width samples with the
// three channels interleaved, unlike the planar input frames. It is
// allocated once the full alignment is known and never resized.
type Canvas struct {
	Pix    []uint8
	Width  int
	Height int
}

// seamColor marks pasted block boundaries in debug mode (YCbCr).
var seamColor = [numPlanes]uint8{76, 84, 255}

// Splice composites the aligned frames into a single canvas.
//
// The extent walk accumulates the running position over the alignment list
// and tracks which frame reached the extreme top and bottom positions. The
// canvas's outermost crop strips are filled from those frames' uncropped
// edges: they are the absolute visual boundaries of the capture, so they
// bypass the per-entry loop. Note the strips each come from a single
// extreme frame, never from a blend of edges.
func Splice(frames *FrameSequence, entries []AlignmentEntry, opts Options) *Canvas {
	fullH, w := frames.Height(), frames.Width()
	bodyH := fullH - opts.CropTop - opts.CropBottom

	yMin, yMax, yCur := 0, 0, 0
	topFrame, bottomFrame := 0, 0
	for _, e := range entries {
		yCur += e.Offset
		if yCur > yMax {
			yMax = yCur
			bottomFrame = e.FrameIndex
		}
		if yCur < yMin {
			yMin = yCur
			topFrame = e.FrameIndex
		}
	}

	c := &Canvas{Width: w, Height: yMax - yMin + fullH}
	c.Pix = make([]uint8, c.Height*w*numPlanes)

	// Frame 0's cropped body at its baseline, then the boundary strips.
	y := opts.CropTop - yMin
	c.pasteRows(frames, 0, y, opts.CropTop, bodyH, 0)
	if opts.CropTop > 0 {
		c.pasteRows(frames, topFrame, 0, 0, opts.CropTop, 0)
	}
	if opts.CropBottom > 0 {
		c.pasteRows(frames, bottomFrame, c.Height-opts.CropBottom, fullH-opts.CropBottom, opts.CropBottom, 0)
	}

	// Replay the alignment, pasting each frame's body at its cumulative
	// position.
	for _, e := range entries {
		y += e.Offset
		c.pasteRows(frames, e.FrameIndex, y, opts.CropTop, bodyH, opts.SeamWidth)
	}
	return c
}

// pasteRows interleaves rows [srcRow, srcRow+n) of a frame's three planes
// into the canvas starting at dstRow. The first seamWidth rows are
// overwritten with the marker color.
func (c *Canvas) pasteRows(frames *FrameSequence, frame, dstRow, srcRow, n, seamWidth int) {
	w := c.Width
	p0 := frames.Plane(frame, 0)
	p1 := frames.Plane(frame, 1)
	p2 := frames.Plane(frame, 2)

	for r := 0; r < n; r++ {
		dst := (dstRow + r) * w * numPlanes
		if r < seamWidth {
			for x := 0; x < w; x++ {
				c.Pix[dst+numPlanes*x+0] = seamColor[0]
				c.Pix[dst+numPlanes*x+1] = seamColor[1]
				c.Pix[dst+numPlanes*x+2] = seamColor[2]
			}
			continue
		}
		src := (srcRow + r) * w
		for x := 0; x < w; x++ {
			c.Pix[dst+numPlanes*x+0] = p0[src+x]
			c.Pix[dst+numPlanes*x+1] = p1[src+x]
			c.Pix[dst+numPlanes*x+2] = p2[src+x]
		}
	}
}
