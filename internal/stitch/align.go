package stitch

import (
	"fmt"

	"go.uber.org/zap"
)

// AlignmentEntry records the alignment of one processed frame against the
// previously processed frame (not necessarily the previous frame index,
// since frames may be skipped). Offset is the signed row shift, DiffScore
// the mean absolute sample difference at that shift; lower is better.
type AlignmentEntry struct {
	FrameIndex int
	Offset     int
	DiffScore  float64
}

// AlignSequence walks the frame sequence and produces one alignment entry
// per processed frame, in traversal order. Frame 0 is the implicit origin
// and gets no entry. Each frame's signature is computed exactly once and
// carried forward as the "previous" signature of the next step.
func AlignSequence(frames *FrameSequence, opts Options, log *zap.Logger) ([]AlignmentEntry, error) {
	if log == nil {
		log = zap.NewNop()
	}

	w, h := frames.Width(), frames.Height()
	sigRows := h - opts.CropTop - opts.CropBottom
	if sigRows < 1 {
		return nil, fmt.Errorf("%w: crop %d+%d consumes frame height %d",
			ErrMalformedFrameData, opts.CropTop, opts.CropBottom, h)
	}
	if sigRows-opts.MinOverlap < 0 {
		return nil, &InsufficientOverlapError{FrameIndex: 1, Rows: sigRows, MinOverlap: opts.MinOverlap}
	}

	cols := opts.SampleColumns
	if cols == nil {
		cols = DefaultSampleColumns(w)
	}
	if err := validateColumns(cols, w); err != nil {
		return nil, err
	}

	cur := SampleSignature(frames.Plane(0, 0), w, h, opts.CropTop, opts.CropBottom, cols)
	entries := make([]AlignmentEntry, 0, frames.Len()-1)

	for i := 1; i < frames.Len(); {
		next := SampleSignature(frames.Plane(i, 0), w, h, opts.CropTop, opts.CropBottom, cols)

		hist := entries
		if len(hist) > 3 {
			hist = hist[len(hist)-3:]
		}
		step, predicted := predictStep(hist, opts.ExpectOffset)

		offset, score := evalOverlap(cur, next, predicted, opts.ApproxDiff, opts.MinOverlap)
		entries = append(entries, AlignmentEntry{FrameIndex: i, Offset: offset, DiffScore: score})

		if opts.Verbose {
			log.Info("frame aligned",
				zap.Int("frame", i),
				zap.Int("offset", offset),
				zap.Int("predicted", predicted),
				zap.Float64("diff", score),
				zap.Int("step", step),
			)
		}

		i += step
		cur = next
	}
	return entries, nil
}

// Convert is the pure core entry point: align the whole sequence and
// composite it into one canvas. It never returns a canvas for a sequence it
// could not fully align.
func Convert(frames *FrameSequence, opts Options, log *zap.Logger) (*Canvas, error) {
	entries, err := AlignSequence(frames, opts, log)
	if err != nil {
		return nil, err
	}
	return Splice(frames, entries, opts), nil
}
