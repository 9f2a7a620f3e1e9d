package stitch

// offsetOrder enumerates every candidate shift in [-maxOffset, maxOffset]
// exactly once, ordered so the most likely offsets come first: zero is the
// unconditional baseline, then candidates alternate outward from the
// predicted offset in both directions; once one side of the range is
// exhausted the remaining candidates on the other side follow, still moving
// away from the exhausted boundary. With a prediction near zero this
// degenerates to a plain expanding search.
type offsetOrder struct {
	max       int
	predicted int

	down     int // next candidate moving toward -max
	up       int // next candidate moving toward +max
	downTurn bool
	zeroDone bool
}

func newOffsetOrder(maxOffset, predicted int) *offsetOrder {
	if predicted > maxOffset {
		predicted = maxOffset
	}
	if predicted < -maxOffset {
		predicted = -maxOffset
	}
	o := &offsetOrder{max: maxOffset, predicted: predicted}
	o.Reset()
	return o
}

// Reset rewinds the order so it can be replayed from the start.
func (o *offsetOrder) Reset() {
	if o.predicted > 0 {
		o.down = o.predicted
		o.up = o.predicted + 1
	} else {
		o.down = o.predicted - 1
		o.up = o.predicted
	}
	if o.down == 0 {
		o.down = -1
	}
	if o.up == 0 {
		o.up = 1
	}
	o.downTurn = true
	o.zeroDone = false
}

// Next returns the next candidate offset, or false once the range is
// exhausted.
func (o *offsetOrder) Next() (int, bool) {
	if !o.zeroDone {
		o.zeroDone = true
		return 0, true
	}
	downOK := o.down >= -o.max
	upOK := o.up <= o.max
	switch {
	case downOK && upOK:
		if o.downTurn {
			o.downTurn = false
			return o.takeDown(), true
		}
		o.downTurn = true
		return o.takeUp(), true
	case downOK:
		return o.takeDown(), true
	case upOK:
		return o.takeUp(), true
	}
	return 0, false
}

func (o *offsetOrder) takeDown() int {
	v := o.down
	o.down--
	if o.down == 0 {
		o.down = -1
	}
	return v
}

func (o *offsetOrder) takeUp() int {
	v := o.up
	o.up++
	if o.up == 0 {
		o.up = 1
	}
	return v
}
