package stitch

import "math"

// evalOverlap scores candidate shifts between two signatures and returns
// the lowest-scoring offset found, searching in the order given by the
// predicted offset. The score of a shift is the mean absolute difference
// over the rows the two signatures share after shifting.
//
// The search short-circuits once more than ten candidates have scored below
// approxDiff, or a single candidate scores below approxDiff/4: a strong
// early match ends the search, a weak signal forces it through the whole
// range. Callers must guarantee cur.rows >= minOverlap.
func evalOverlap(cur, next *Signature, predicted int, approxDiff float64, minOverlap int) (int, float64) {
	bestOffset, bestScore := 0, 255.0
	approachCount := 0
	maxOffset := cur.rows - minOverlap

	order := newOffsetOrder(maxOffset, predicted)
	for o, ok := order.Next(); ok; o, ok = order.Next() {
		score := diffAt(cur, next, o)
		if score < bestScore {
			bestOffset, bestScore = o, score
		}
		if score < approxDiff {
			approachCount++
			if approachCount > 10 || score < approxDiff/4 {
				return bestOffset, bestScore
			}
		}
	}
	return bestOffset, bestScore
}

// diffAt computes the mean absolute difference between cur and next over
// the region that overlaps after shifting by offset: a positive offset
// compares cur's tail against next's head, a negative one the reverse.
func diffAt(cur, next *Signature, offset int) float64 {
	n := cur.rows
	if offset > 0 {
		n -= offset
	} else {
		n += offset
	}
	cnt := n * cur.groups
	if cnt <= 0 {
		return 255
	}

	curStart, nextStart := 0, 0
	if offset > 0 {
		curStart = offset
	} else {
		nextStart = -offset
	}

	var sum float64
	for r := 0; r < n; r++ {
		ci := (curStart + r) * cur.groups
		ni := (nextStart + r) * next.groups
		for g := 0; g < cur.groups; g++ {
			sum += math.Abs(cur.v[ci+g] - next.v[ni+g])
		}
	}
	return sum / float64(cnt)
}
