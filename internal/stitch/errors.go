package stitch

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedFrameData reports a raw buffer whose size is inconsistent
	// with the declared dimensions and plane layout.
	ErrMalformedFrameData = errors.New("malformed frame data")

	// ErrEmptySequence reports a sequence with fewer than two frames.
	ErrEmptySequence = errors.New("not enough frames to align")
)

// InsufficientOverlapError reports a frame pair whose valid offset range is
// empty: the cropped region holds fewer rows than the configured minimum
// overlap, so no shift can be evaluated.
type InsufficientOverlapError struct {
	FrameIndex int
	Rows       int
	MinOverlap int
}

func (e *InsufficientOverlapError) Error() string {
	return fmt.Sprintf("insufficient overlap at frame %d: %d cropped rows < minimum overlap %d",
		e.FrameIndex, e.Rows, e.MinOverlap)
}
