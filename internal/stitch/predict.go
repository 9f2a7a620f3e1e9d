package stitch

import "math"

// maxAlignStep caps how many frames the aligner may skip at once.
const maxAlignStep = 3

// predictStep estimates, from recent alignment history, how many frames can
// safely be skipped before the next alignment and the expected offset at
// that future frame. The prediction keeps the offset search centered and
// small; it never affects correctness, only cost.
func predictStep(history []AlignmentEntry, expectOffset int) (step, offset int) {
	if len(history) == 0 {
		return 1, 0
	}
	if len(history) == 1 {
		return 1, history[0].Offset
	}

	prev := history[len(history)-2]
	last := history[len(history)-1]
	velocity := float64(last.Offset) / float64(last.FrameIndex-prev.FrameIndex)

	if velocity == 0 {
		if prev.Offset == 0 {
			// Static scene: skip ahead aggressively.
			return maxAlignStep, 0
		}
		return 1, prev.Offset
	}

	step = int(math.Floor(float64(expectOffset) / math.Abs(velocity)))
	if step > maxAlignStep {
		step = maxAlignStep
	}
	if step < 1 {
		step = 1
	}
	return step, int(float64(step) * velocity)
}
