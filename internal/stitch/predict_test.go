package stitch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPredictStep(t *testing.T) {
	tests := []struct {
		name       string
		history    []AlignmentEntry
		expect     int
		wantStep   int
		wantOffset int
	}{
		{
			name:     "no history",
			history:  nil,
			expect:   30,
			wantStep: 1, wantOffset: 0,
		},
		{
			name:       "single entry assumes constant velocity",
			history:    []AlignmentEntry{{FrameIndex: 1, Offset: 14}},
			expect:     30,
			wantStep:   1, wantOffset: 14,
		},
		{
			name: "static scene skips ahead",
			history: []AlignmentEntry{
				{FrameIndex: 1, Offset: 0},
				{FrameIndex: 2, Offset: 0},
			},
			expect:   30,
			wantStep: maxAlignStep, wantOffset: 0,
		},
		{
			name: "pause after motion stays careful",
			history: []AlignmentEntry{
				{FrameIndex: 1, Offset: 12},
				{FrameIndex: 2, Offset: 0},
			},
			expect:   30,
			wantStep: 1, wantOffset: 12,
		},
		{
			name: "slow scroll widens the step",
			history: []AlignmentEntry{
				{FrameIndex: 1, Offset: 10},
				{FrameIndex: 2, Offset: 10},
			},
			expect:   30,
			wantStep: 3, wantOffset: 30,
		},
		{
			name: "fast scroll keeps step one",
			history: []AlignmentEntry{
				{FrameIndex: 1, Offset: 30},
				{FrameIndex: 2, Offset: 40},
			},
			expect:   30,
			wantStep: 1, wantOffset: 40,
		},
		{
			name: "step accounts for skipped frames",
			history: []AlignmentEntry{
				{FrameIndex: 2, Offset: 10},
				{FrameIndex: 5, Offset: 15},
			},
			expect:   30,
			wantStep: 3, wantOffset: 15,
		},
		{
			name: "negative velocity predicts negative offset",
			history: []AlignmentEntry{
				{FrameIndex: 1, Offset: -12},
				{FrameIndex: 2, Offset: -12},
			},
			expect:   24,
			wantStep: 2, wantOffset: -24,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			step, offset := predictStep(tt.history, tt.expect)
			assert.Equal(t, tt.wantStep, step)
			assert.Equal(t, tt.wantOffset, offset)
		})
	}
}
