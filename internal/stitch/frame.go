package stitch

import "fmt"

// numPlanes is the fixed plane count per frame (luma + two chroma planes,
// e.g. yuv444p output of the decoder).
const numPlanes = 3

// FrameSequence is a read-only view over a decoded video: N frames of
// numPlanes planes, each plane height×width uint8 samples, laid out
// plane-major within each frame.
type FrameSequence struct {
	data   []byte
	width  int
	height int
	n      int
}

// NewFrameSequence validates the raw buffer against the declared dimensions
// and wraps it. The buffer is not copied; callers must not mutate it while
// the sequence is in use.
func NewFrameSequence(data []byte, width, height int) (*FrameSequence, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: invalid dimensions %dx%d", ErrMalformedFrameData, width, height)
	}
	frameSize := numPlanes * width * height
	if len(data) == 0 || len(data)%frameSize != 0 {
		return nil, fmt.Errorf("%w: buffer size %d is not a multiple of frame size %d",
			ErrMalformedFrameData, len(data), frameSize)
	}
	n := len(data) / frameSize
	if n < 2 {
		return nil, fmt.Errorf("%w: got %d frame(s)", ErrEmptySequence, n)
	}
	return &FrameSequence{data: data, width: width, height: height, n: n}, nil
}

// Len returns the number of frames.
func (s *FrameSequence) Len() int { return s.n }

// Width returns the sample count per row.
func (s *FrameSequence) Width() int { return s.width }

// Height returns the row count per plane.
func (s *FrameSequence) Height() int { return s.height }

// Plane returns the raw height×width samples of one plane of one frame.
func (s *FrameSequence) Plane(frame, plane int) []byte {
	planeSize := s.width * s.height
	off := (frame*numPlanes + plane) * planeSize
	return s.data[off : off+planeSize]
}
